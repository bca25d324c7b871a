package release

// Release is a single release posting as persisted in the collection file.
// ID is the raw scraped title and doubles as the dedup key.
type Release struct {
	ID        string   `json:"id"`
	Artist    string   `json:"artist"`
	Album     string   `json:"album"`
	Image     string   `json:"image"`
	DateFound string   `json:"date_found"`
	Genres    []string `json:"genres"`
	DetailURL string   `json:"detail_url,omitempty"`
	Links     Links    `json:"links"`
	Excerpt   string   `json:"excerpt,omitempty"`
}

type Links struct {
	YouTube    string `json:"youtube"`
	Bandcamp   string `json:"bandcamp"`
	SoundCloud string `json:"soundcloud"`
	Apple      string `json:"apple"`
}

// Detail holds the secondary attributes found on a release's own page.
type Detail struct {
	Genres  []string
	Excerpt string
}

// ParseWarning describes an extraction step that did not succeed for a
// single item. Warnings never abort a page.
type ParseWarning struct {
	Item    int
	Field   string
	Message string
}

func (w ParseWarning) String() string {
	return w.Field + ": " + w.Message
}

// DateLayout is the ISO calendar date format used for DateFound.
const DateLayout = "2006-01-02"
