package scraper

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/lysyi3m/release-radar/app/release"
)

func TestEnricherFiltersIgnoredCategories(t *testing.T) {
	site := newFakeSite(t, nil)
	site.tags = []string{"EP", "Ambient", "Uncategorized", "ambient", "Drone"}

	enricher := NewEnricher(NewClient("ua", time.Second), release.DefaultStrategies().Detail)
	detail := enricher.Run(context.Background(), site.server.URL+"/release/1-0/")

	expected := []string{"Ambient", "Drone"}
	if len(detail.Genres) != len(expected) {
		t.Fatalf("Expected %v, got: %v", expected, detail.Genres)
	}
	for i := range expected {
		if detail.Genres[i] != expected[i] {
			t.Errorf("Expected %s at %d, got: %s", expected[i], i, detail.Genres[i])
		}
	}
}

func TestEnricherFailureYieldsEmptyDetail(t *testing.T) {
	site := newFakeSite(t, nil)
	site.failPages[1] = true

	enricher := NewEnricher(NewClient("ua", time.Second), release.DefaultStrategies().Detail)
	detail := enricher.Run(context.Background(), site.server.URL+"/")

	if detail.Genres == nil {
		t.Error("Expected non-nil genres on failure")
	}
	if len(detail.Genres) != 0 || detail.Excerpt != "" {
		t.Errorf("Expected empty detail, got: %+v", detail)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short text", 20); got != "short text" {
		t.Errorf("Expected text unchanged, got: %s", got)
	}

	long := strings.Repeat("word ", 100)
	got := truncate(long, 50)
	if !strings.HasSuffix(got, "…") {
		t.Errorf("Expected ellipsis suffix, got: %s", got)
	}
	if len([]rune(got)) > 51 {
		t.Errorf("Expected at most 51 runes, got: %d", len([]rune(got)))
	}
	if strings.HasSuffix(strings.TrimSuffix(got, "…"), " ") {
		t.Errorf("Expected no trailing space before ellipsis, got: %q", got)
	}
}
