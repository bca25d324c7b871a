package release

import "net/url"

// SearchLinks builds the platform search URLs for an artist/title pair.
// Empty inputs still yield four URLs with an (almost) empty query.
func SearchLinks(artist, title string) Links {
	query := url.QueryEscape(artist + " " + title)

	return Links{
		YouTube:    "https://www.youtube.com/results?search_query=" + query,
		Bandcamp:   "https://bandcamp.com/search?q=" + query,
		SoundCloud: "https://soundcloud.com/search?q=" + query,
		Apple:      "https://music.apple.com/de/search?term=" + query,
	}
}

// Map returns the links keyed by platform name.
func (l Links) Map() map[string]string {
	return map[string]string{
		"youtube":    l.YouTube,
		"bandcamp":   l.Bandcamp,
		"soundcloud": l.SoundCloud,
		"apple":      l.Apple,
	}
}
