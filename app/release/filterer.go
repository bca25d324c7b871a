package release

import "strings"

// Filterer narrows a collection for browsing. Matching is case-insensitive
// substring search over the configured fields.
type Filterer struct {
	fields []string
}

func NewFilterer() *Filterer {
	return &Filterer{fields: []string{"artist", "album", "genres"}}
}

// Query describes a browse request.
type Query struct {
	Text       string
	UnseenOnly bool
	Seen       map[string]struct{}
}

func (f *Filterer) Run(releases []Release, q Query) []Release {
	needle := foldKey(strings.TrimSpace(q.Text))

	matched := make([]Release, 0, len(releases))
	for _, r := range releases {
		if q.UnseenOnly {
			if _, seen := q.Seen[r.ID]; seen {
				continue
			}
		}
		if needle != "" && !f.matches(r, needle) {
			continue
		}
		matched = append(matched, r)
	}

	return matched
}

func (f *Filterer) matches(r Release, needle string) bool {
	for _, field := range f.fields {
		if strings.Contains(foldKey(f.getFieldValue(r, field)), needle) {
			return true
		}
	}
	return false
}

func (f *Filterer) getFieldValue(r Release, field string) string {
	switch field {
	case "artist":
		return r.Artist
	case "album":
		return r.Album
	case "genres":
		return strings.Join(r.Genres, " ")
	default:
		return ""
	}
}

const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// Page returns one page of releases and the total page count. Out of range
// pages are empty. perPage is clamped to MaxPerPage.
func Page(releases []Release, page, perPage int) ([]Release, int) {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	perPage = min(perPage, MaxPerPage)
	if page < 1 {
		page = 1
	}

	total := (len(releases) + perPage - 1) / perPage
	// Compared before multiplying so huge page numbers cannot overflow.
	if len(releases) == 0 || page-1 > (len(releases)-1)/perPage {
		return []Release{}, total
	}
	start := (page - 1) * perPage
	end := min(start+perPage, len(releases))

	return releases[start:end], total
}
