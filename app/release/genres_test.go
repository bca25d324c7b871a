package release

import (
	"slices"
	"testing"
)

func TestFilterGenres(t *testing.T) {
	tests := []struct {
		name     string
		tags     []string
		expected []string
	}{
		{"ignore list", []string{"EP", "Ambient", "Uncategorized"}, []string{"Ambient"}},
		{"case insensitive", []string{"album", "Techno", "various artists"}, []string{"Techno"}},
		{"keeps order and drops duplicates", []string{"Dub", "Techno", "dub", " "}, []string{"Dub", "Techno"}},
		{"nil input", nil, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterGenres(tt.tags)
			if got == nil {
				t.Fatal("Expected non-nil genres")
			}
			if !slices.Equal(got, tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestMergeGenres(t *testing.T) {
	got := MergeGenres([]string{"Ambient"}, []string{"Single", "Drone", "ambient"})
	expected := []string{"Ambient", "Drone"}

	if !slices.Equal(got, expected) {
		t.Errorf("Expected %v, got %v", expected, got)
	}
}
