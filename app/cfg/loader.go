package cfg

import (
	"cmp"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
)

// Version is set at build time via -ldflags
var Version = "dev"

// MinDetailDelay is the smallest pause allowed between detail page fetches.
const MinDetailDelay = 200 * time.Millisecond

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	Mode string `long:"mode" env:"MODE" default:"scrape" choice:"scrape" choice:"serve" choice:"notify" description:"Run mode: one scrape, HTTP server with scheduler, or notify about today's releases"`

	// Scraping configuration
	BaseURL        string        `long:"base-url" env:"BASE_URL" default:"https://nodata.tv/" description:"Listing site base URL"`
	Source         string        `long:"source" env:"SOURCE" default:"html" choice:"html" choice:"feed" description:"Listing source: HTML pages or the WordPress RSS feed"`
	Pages          int           `long:"pages" env:"PAGES" default:"1" description:"Number of listing pages per run"`
	StartPage      int           `long:"start-page" env:"START_PAGE" default:"1" description:"First listing page to fetch"`
	Deep           bool          `long:"deep" env:"DEEP_SCRAPE" description:"Fetch each release's detail page for genres and an excerpt"`
	StrategiesFile string        `long:"strategies" env:"STRATEGIES_FILE" description:"YAML file overriding the markup selector strategies"`
	PageDelay      time.Duration `long:"page-delay" env:"PAGE_DELAY" default:"1s" description:"Pause between listing page fetches"`
	DetailDelay    time.Duration `long:"detail-delay" env:"DETAIL_DELAY" default:"300ms" description:"Pause before each detail page fetch (minimum 200ms)"`
	Timeout        time.Duration `long:"timeout" env:"HTTP_TIMEOUT" default:"30s" description:"Per-request timeout"`
	UserAgent      string        `long:"user-agent" env:"USER_AGENT" default:"Mozilla/5.0 (compatible; ReleaseRadar/1.0)" description:"User agent string for HTTP requests"`

	// Storage configuration
	DataFile string `long:"data-file" env:"DATA_FILE" default:"releases.json" description:"Release collection JSON file"`
	DBPath   string `long:"db-path" env:"DB_PATH" default:"radar.db" description:"SQLite database for sessions and run history"`

	// Presentation layer configuration
	Port              string        `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	APIAccessKey      string        `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`
	SchedulerInterval time.Duration `long:"scheduler-interval" env:"SCHEDULER_INTERVAL" default:"6h" description:"Interval between scheduled scrapes in serve mode (0 disables)"`
	DeepTarget        int           `long:"deep-target" env:"DEEP_TARGET" default:"8" description:"New releases a load-more search stops at"`
	DeepMaxAttempts   int           `long:"deep-max-attempts" env:"DEEP_MAX_ATTEMPTS" default:"20" description:"Maximum pages a load-more search fetches"`

	// Notification configuration
	TelegramToken  string `long:"telegram-token" env:"TELEGRAM_TOKEN" description:"Telegram bot token (notifications disabled when empty)"`
	TelegramChatID string `long:"telegram-chat-id" env:"TELEGRAM_CHAT_ID" description:"Telegram chat id"`
	PublicURL      string `long:"public-url" env:"PUBLIC_URL" description:"Public URL of the presentation layer, linked from notifications"`

	// S3 mirror configuration
	S3Bucket   string `long:"s3-bucket" env:"S3_BUCKET" description:"Bucket receiving a copy of the collection after each update (optional)"`
	S3Key      string `long:"s3-key" env:"S3_KEY" default:"releases.json" description:"Object key of the mirrored collection"`
	S3Region   string `long:"s3-region" env:"S3_REGION" default:"us-east-1" description:"S3 region"`
	S3Endpoint string `long:"s3-endpoint" env:"S3_ENDPOINT" description:"S3 compatible endpoint (optional)"`
	S3KeyID    string `long:"s3-access-key-id" env:"S3_ACCESS_KEY_ID" description:"S3 access key id (default credential chain when empty)"`
	S3Secret   string `long:"s3-secret-access-key" env:"S3_SECRET_ACCESS_KEY" description:"S3 secret access key"`

	// Application metadata
	Timezone string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for dates (e.g., UTC, Europe/Berlin)"`
	Debug    bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

// Load reads .env when present, then flags and environment.
func Load() (*Cfg, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	return LoadArgs(os.Args[1:])
}

// LoadArgs parses args and the environment. It returns nil, nil when help
// was requested.
func LoadArgs(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.ParseArgs(args); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		Mode:              raw.Mode,
		BaseURL:           raw.BaseURL,
		Source:            raw.Source,
		Pages:             raw.Pages,
		StartPage:         raw.StartPage,
		Deep:              raw.Deep,
		StrategiesFile:    raw.StrategiesFile,
		PageDelay:         raw.PageDelay,
		DetailDelay:       raw.DetailDelay,
		Timeout:           raw.Timeout,
		UserAgent:         raw.UserAgent,
		DataFile:          raw.DataFile,
		DBPath:            raw.DBPath,
		Port:              raw.Port,
		APIAccessKey:      raw.APIAccessKey,
		SchedulerInterval: raw.SchedulerInterval,
		DeepTarget:        raw.DeepTarget,
		DeepMaxAttempts:   raw.DeepMaxAttempts,
		TelegramToken:     raw.TelegramToken,
		TelegramChatID:    raw.TelegramChatID,
		PublicURL:         raw.PublicURL,
		S3Bucket:          raw.S3Bucket,
		S3Key:             raw.S3Key,
		S3Region:          raw.S3Region,
		S3Endpoint:        raw.S3Endpoint,
		S3KeyID:           raw.S3KeyID,
		S3Secret:          raw.S3Secret,
		Timezone:          raw.Timezone,
		Debug:             raw.Debug,
		Version:           GetVersion(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		slog.Warn("Invalid timezone, using system default", "timezone", cfg.Timezone, "error", err)
	}

	globalCfg = cfg

	return cfg, nil
}

func (c *Cfg) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("base URL must be an absolute http(s) URL: %q", c.BaseURL)
	}
	if c.Pages < 1 {
		return fmt.Errorf("pages must be positive, got %d", c.Pages)
	}
	if c.StartPage < 1 {
		return fmt.Errorf("start page must be positive, got %d", c.StartPage)
	}
	if c.PageDelay < 0 {
		return fmt.Errorf("page delay cannot be negative, got %s", c.PageDelay)
	}
	if c.DetailDelay < MinDetailDelay {
		return fmt.Errorf("detail delay must be at least %s, got %s", MinDetailDelay, c.DetailDelay)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if c.SchedulerInterval < 0 {
		return fmt.Errorf("scheduler interval cannot be negative, got %s", c.SchedulerInterval)
	}
	if c.DeepTarget < 1 || c.DeepMaxAttempts < 1 {
		return fmt.Errorf("deep search target and max attempts must be positive, got %d/%d", c.DeepTarget, c.DeepMaxAttempts)
	}
	return nil
}

// NextPage is the first listing page beyond the regular scrape window.
func (c *Cfg) NextPage() int {
	return c.StartPage + c.Pages
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
			slog.Debug("Timezone configured", "timezone", timezone)
		}
	}
	return nil
}
