package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/lysyi3m/release-radar/app/release"
)

// MaxListed caps how many releases a single message spells out.
const MaxListed = 5

const DefaultAPIBase = "https://api.telegram.org"

// Notifier delivers a summary of newly found releases.
type Notifier interface {
	Notify(ctx context.Context, releases []release.Release) error
}

type TelegramConfig struct {
	Token     string
	ChatID    string
	APIBase   string
	SiteURL   string // Info link target for releases without a detail page
	PublicURL string // optional footer link to the running presentation layer
	Timeout   time.Duration
}

type Telegram struct {
	cfg        TelegramConfig
	httpClient *http.Client
}

func NewTelegram(c TelegramConfig) *Telegram {
	if c.APIBase == "" {
		c.APIBase = DefaultAPIBase
	}
	if c.Timeout <= 0 {
		c.Timeout = 15 * time.Second
	}
	return &Telegram{
		cfg:        c,
		httpClient: &http.Client{Timeout: c.Timeout},
	}
}

func (t *Telegram) Enabled() bool {
	return t.cfg.Token != "" && t.cfg.ChatID != ""
}

type sendMessageRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// Notify sends one summary message for releases, given newest first.
// Missing credentials or an empty list make it a no-op.
func (t *Telegram) Notify(ctx context.Context, releases []release.Release) error {
	if len(releases) == 0 {
		return nil
	}
	if !t.Enabled() {
		slog.Debug("Telegram credentials not set, skipping notification", "releases", len(releases))
		return nil
	}

	body, err := json.Marshal(sendMessageRequest{
		ChatID:                t.cfg.ChatID,
		Text:                  FormatSummary(releases, t.cfg.SiteURL, t.cfg.PublicURL),
		ParseMode:             "HTML",
		DisableWebPagePreview: true,
	})
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}

	url := strings.TrimRight(t.cfg.APIBase, "/") + "/bot" + t.cfg.Token + "/sendMessage"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		// The URL carries the bot token, keep it out of logs.
		return fmt.Errorf("failed to send telegram message: %w", redact(err, t.cfg.Token))
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var result sendMessageResponse
	if err := json.Unmarshal(data, &result); err != nil && resp.StatusCode == http.StatusOK {
		return fmt.Errorf("failed to decode telegram response: %w", err)
	}
	if resp.StatusCode != http.StatusOK || !result.OK {
		return fmt.Errorf("telegram API error: %d %s", resp.StatusCode, result.Description)
	}

	slog.Info("Telegram notification sent", "releases", len(releases))
	return nil
}

// FormatSummary renders the HTML message body: a header with the count, at
// most MaxListed releases and a remainder line.
func FormatSummary(releases []release.Release, siteURL, publicURL string) string {
	var b strings.Builder

	noun := "releases"
	if len(releases) == 1 {
		noun = "release"
	}
	fmt.Fprintf(&b, "<b>🎵 Release Radar: %d new %s!</b>\n\n", len(releases), noun)

	for i, r := range releases {
		if i == MaxListed {
			break
		}

		fmt.Fprintf(&b, "• <b>%s</b>", html.EscapeString(r.Artist))
		if r.Album != "" {
			fmt.Fprintf(&b, " - %s", html.EscapeString(r.Album))
		}
		if len(r.Genres) > 0 {
			genres := r.Genres
			if len(genres) > 2 {
				genres = genres[:2]
			}
			fmt.Fprintf(&b, " (%s)", html.EscapeString(strings.Join(genres, ", ")))
		}
		b.WriteString("\n")

		info := r.DetailURL
		if info == "" {
			info = siteURL
		}
		fmt.Fprintf(&b, "  <a href='%s'>▶ YouTube</a> | <a href='%s'>Info</a>\n\n",
			html.EscapeString(r.Links.YouTube), html.EscapeString(info))
	}

	if len(releases) > MaxListed {
		fmt.Fprintf(&b, "<i>...and %d more.</i>\n", len(releases)-MaxListed)
	}

	if publicURL != "" {
		fmt.Fprintf(&b, "\n<a href='%s'>Open Release Radar</a>", html.EscapeString(publicURL))
	}

	return strings.TrimRight(b.String(), "\n")
}

func redact(err error, token string) error {
	if token == "" {
		return err
	}
	return fmt.Errorf("%s", strings.ReplaceAll(err.Error(), token, "<token>"))
}
