package release

import (
	"strings"
	"testing"
)

func TestGeneratorRun(t *testing.T) {
	releases := []Release{
		{
			ID:        "Artist & Friends / Album [2025]",
			Artist:    "Artist & Friends",
			Album:     "Album",
			Image:     "https://nodata.tv/cover.png",
			DateFound: "2025-03-05",
			Genres:    []string{"Ambient", "Drone"},
			DetailURL: "https://nodata.tv/artist-album/",
			Links:     SearchLinks("Artist & Friends", "Album"),
		},
		{
			ID:        "Solo Artist",
			Artist:    "Solo Artist",
			DateFound: "2025-03-04",
			Genres:    []string{},
			Links:     SearchLinks("Solo Artist", ""),
		},
	}

	generator := NewGenerator()
	rss, err := generator.Run(Channel{Title: "Radar", Link: "https://nodata.tv/", SelfLink: "https://radar.example.com/feed.xml"}, releases)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	expected := []string{
		`<rss version="2.0"`,
		"<title>Radar</title>",
		"<title>Artist &amp; Friends - Album</title>",
		"<title>Solo Artist</title>",
		"<link>https://nodata.tv/artist-album/</link>",
		"<category>Ambient</category>",
		"<category>Drone</category>",
		`<guid isPermaLink="false">Artist &amp; Friends / Album [2025]</guid>`,
		`type="image/png"`,
		`rel="self"`,
	}
	for _, e := range expected {
		if !strings.Contains(rss, e) {
			t.Errorf("Expected RSS to contain %q", e)
		}
	}

	if strings.Count(rss, "<item>") != 2 {
		t.Errorf("Expected 2 items, got %d", strings.Count(rss, "<item>"))
	}
}
