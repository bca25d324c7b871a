package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lysyi3m/release-radar/app/release"
)

func rel(artist, album string, genres ...string) release.Release {
	return release.Release{
		ID:     artist + " / " + album,
		Artist: artist,
		Album:  album,
		Genres: genres,
		Links:  release.SearchLinks(artist, album),
	}
}

func TestFormatSummaryCapsListedReleases(t *testing.T) {
	var releases []release.Release
	for _, name := range []string{"A", "B", "C", "D", "E", "F", "G"} {
		releases = append(releases, rel(name, "Album"))
	}

	msg := FormatSummary(releases, "https://nodata.tv/", "")

	if !strings.HasPrefix(msg, "<b>🎵 Release Radar: 7 new releases!</b>") {
		t.Errorf("Expected header with count, got: %s", msg)
	}
	if strings.Count(msg, "• <b>") != MaxListed {
		t.Errorf("Expected %d listed releases, got: %d", MaxListed, strings.Count(msg, "• <b>"))
	}
	if !strings.Contains(msg, "<i>...and 2 more.</i>") {
		t.Errorf("Expected remainder line, got: %s", msg)
	}
	if strings.Contains(msg, "<b>F</b>") {
		t.Errorf("Expected sixth release to be omitted, got: %s", msg)
	}
}

func TestFormatSummaryItemDetails(t *testing.T) {
	withDetail := rel("Artist", "Album", "Ambient", "Drone", "Techno")
	withDetail.DetailURL = "https://nodata.tv/artist-album/"
	noAlbum := rel("Solo & Co", "")

	msg := FormatSummary([]release.Release{withDetail, noAlbum}, "https://nodata.tv/", "https://radar.example.com/")

	if !strings.Contains(msg, "• <b>Artist</b> - Album (Ambient, Drone)\n") {
		t.Errorf("Expected first two genres, got: %s", msg)
	}
	if strings.Contains(msg, "Techno") {
		t.Errorf("Expected third genre to be dropped, got: %s", msg)
	}
	if !strings.Contains(msg, "<a href='https://nodata.tv/artist-album/'>Info</a>") {
		t.Errorf("Expected detail URL as Info link, got: %s", msg)
	}
	if !strings.Contains(msg, "• <b>Solo &amp; Co</b>\n") {
		t.Errorf("Expected escaped artist without album, got: %s", msg)
	}
	if !strings.Contains(msg, "<a href='https://nodata.tv/'>Info</a>") {
		t.Errorf("Expected site URL fallback for Info link, got: %s", msg)
	}
	if !strings.HasSuffix(msg, "<a href='https://radar.example.com/'>Open Release Radar</a>") {
		t.Errorf("Expected public URL footer, got: %s", msg)
	}
	if strings.Contains(msg, "more.") {
		t.Errorf("Expected no remainder line, got: %s", msg)
	}
}

func TestNotifySendsMessage(t *testing.T) {
	var got sendMessageRequest
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	tg := NewTelegram(TelegramConfig{Token: "123:abc", ChatID: "42", APIBase: server.URL, SiteURL: "https://nodata.tv/"})

	if err := tg.Notify(context.Background(), []release.Release{rel("A", "B")}); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if gotPath != "/bot123:abc/sendMessage" {
		t.Errorf("Expected sendMessage path, got: %s", gotPath)
	}
	if got.ChatID != "42" || got.ParseMode != "HTML" || !got.DisableWebPagePreview {
		t.Errorf("Expected HTML message without preview to chat 42, got: %+v", got)
	}
	if !strings.Contains(got.Text, "1 new release!") {
		t.Errorf("Expected singular header, got: %s", got.Text)
	}
}

func TestNotifyReportsAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"ok":false,"description":"Bad Request: chat not found"}`))
	}))
	defer server.Close()

	tg := NewTelegram(TelegramConfig{Token: "t", ChatID: "c", APIBase: server.URL})

	err := tg.Notify(context.Background(), []release.Release{rel("A", "B")})
	if err == nil || !strings.Contains(err.Error(), "chat not found") {
		t.Errorf("Expected API error description, got: %v", err)
	}
}

func TestNotifyWithoutCredentialsIsNoop(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	tg := NewTelegram(TelegramConfig{ChatID: "42", APIBase: server.URL})
	if tg.Enabled() {
		t.Error("Expected notifier to be disabled without token")
	}
	if err := tg.Notify(context.Background(), []release.Release{rel("A", "B")}); err != nil {
		t.Errorf("Expected no error, got: %v", err)
	}
	if called {
		t.Error("Expected no request without credentials")
	}
}

func TestNotifyEmptyIsNoop(t *testing.T) {
	tg := NewTelegram(TelegramConfig{Token: "t", ChatID: "c", APIBase: "http://127.0.0.1:1"})
	if err := tg.Notify(context.Background(), nil); err != nil {
		t.Errorf("Expected no error for empty list, got: %v", err)
	}
}
