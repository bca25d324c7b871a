package release

import (
	"strings"

	"golang.org/x/text/cases"
)

// IgnoredCategories are format or housekeeping labels that upstream files
// alongside real genres.
var IgnoredCategories = []string{
	"EP",
	"LP",
	"Album",
	"Single",
	"Various Artists",
	"Compilation",
	"Uncategorized",
}

var ignoreSet = buildIgnoreSet(IgnoredCategories)

// foldKey case-folds s. Casers carry state, so each call gets its own.
func foldKey(s string) string {
	return cases.Fold().String(s)
}

func buildIgnoreSet(labels []string) map[string]struct{} {
	set := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		set[foldKey(l)] = struct{}{}
	}
	return set
}

// IsIgnoredCategory reports whether label is a non-genre category.
func IsIgnoredCategory(label string) bool {
	_, ok := ignoreSet[foldKey(strings.TrimSpace(label))]
	return ok
}

// FilterGenres drops ignored categories, blanks and duplicates while keeping
// the original order. The result is never nil.
func FilterGenres(tags []string) []string {
	genres := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))

	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || IsIgnoredCategory(tag) {
			continue
		}
		key := foldKey(tag)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		genres = append(genres, tag)
	}

	return genres
}

// MergeGenres appends the genres of extra that are not already in base.
func MergeGenres(base, extra []string) []string {
	merged := make([]string, 0, len(base)+len(extra))
	merged = append(merged, base...)
	merged = append(merged, extra...)
	return FilterGenres(merged)
}
