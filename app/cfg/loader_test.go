package cfg

import (
	"strings"
	"testing"
	"time"
)

func TestGetVersion(t *testing.T) {
	if GetVersion() == "" {
		t.Error("GetVersion should never return empty string")
	}

	version := GetVersion()
	if version != "dev" && version != "unknown" {
		// Version could be set at build time
		t.Logf("Version: %s", version)
	}
}

func TestLoadArgsDefaults(t *testing.T) {
	t.Setenv("TZ", "UTC")

	cfg, err := LoadArgs([]string{})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if cfg.Mode != ModeScrape {
		t.Errorf("Expected mode 'scrape', got '%s'", cfg.Mode)
	}
	if cfg.BaseURL != "https://nodata.tv/" {
		t.Errorf("Expected default base URL, got '%s'", cfg.BaseURL)
	}
	if cfg.Source != SourceHTML {
		t.Errorf("Expected html source, got '%s'", cfg.Source)
	}
	if cfg.Pages != 1 || cfg.StartPage != 1 {
		t.Errorf("Expected pages 1 from page 1, got %d from %d", cfg.Pages, cfg.StartPage)
	}
	if cfg.PageDelay != time.Second {
		t.Errorf("Expected page delay 1s, got %s", cfg.PageDelay)
	}
	if cfg.DetailDelay != 300*time.Millisecond {
		t.Errorf("Expected detail delay 300ms, got %s", cfg.DetailDelay)
	}
	if cfg.DataFile != "releases.json" {
		t.Errorf("Expected data file 'releases.json', got '%s'", cfg.DataFile)
	}
	if cfg.DeepTarget != 8 || cfg.DeepMaxAttempts != 20 {
		t.Errorf("Expected deep search 8/20, got %d/%d", cfg.DeepTarget, cfg.DeepMaxAttempts)
	}
	if cfg.NextPage() != 2 {
		t.Errorf("Expected next page 2, got %d", cfg.NextPage())
	}
	if Get() != cfg {
		t.Error("Expected Get to return the loaded configuration")
	}
}

func TestLoadArgsFlagsAndEnvironment(t *testing.T) {
	t.Setenv("TZ", "UTC")
	t.Setenv("TELEGRAM_TOKEN", "123:abc")
	t.Setenv("TELEGRAM_CHAT_ID", "42")
	t.Setenv("PAGES", "4")

	cfg, err := LoadArgs([]string{"--mode", "serve", "--source", "feed", "--start-page", "3", "--deep", "--detail-delay", "500ms"})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if cfg.Mode != ModeServe || cfg.Source != SourceFeed {
		t.Errorf("Expected serve/feed, got %s/%s", cfg.Mode, cfg.Source)
	}
	if cfg.Pages != 4 || cfg.StartPage != 3 || !cfg.Deep {
		t.Errorf("Expected 4 deep pages from 3, got %d from %d deep=%v", cfg.Pages, cfg.StartPage, cfg.Deep)
	}
	if cfg.DetailDelay != 500*time.Millisecond {
		t.Errorf("Expected detail delay 500ms, got %s", cfg.DetailDelay)
	}
	if cfg.TelegramToken != "123:abc" || cfg.TelegramChatID != "42" {
		t.Errorf("Expected Telegram credentials from environment, got %q/%q", cfg.TelegramToken, cfg.TelegramChatID)
	}
	if cfg.NextPage() != 7 {
		t.Errorf("Expected next page 7, got %d", cfg.NextPage())
	}
}

func TestLoadArgsValidation(t *testing.T) {
	t.Setenv("TZ", "UTC")

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"invalid mode", []string{"--mode", "daemon"}, "failed to parse configuration"},
		{"zero pages", []string{"--pages", "0"}, "pages must be positive"},
		{"zero start page", []string{"--start-page", "0"}, "start page must be positive"},
		{"detail delay too short", []string{"--detail-delay", "100ms"}, "detail delay must be at least"},
		{"relative base URL", []string{"--base-url", "nodata.tv"}, "base URL"},
		{"zero deep target", []string{"--deep-target", "0"}, "deep search target"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadArgs(tt.args)
			if err == nil {
				t.Fatalf("Expected error containing '%s', got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing '%s', got '%v'", tt.wantErr, err)
			}
		})
	}
}

func TestLoadArgsHelp(t *testing.T) {
	cfg, err := LoadArgs([]string{"--help"})
	if err != nil || cfg != nil {
		t.Errorf("Expected nil config and nil error for help, got %v, %v", cfg, err)
	}
}
