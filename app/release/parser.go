package release

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

type Parser struct {
	strategies *Strategies
}

func NewParser(strategies *Strategies) *Parser {
	if strategies == nil {
		strategies = DefaultStrategies()
	}
	return &Parser{strategies: strategies}
}

// Run turns one listing page into candidate releases in page order. Items
// that cannot be read are skipped and reported as warnings; an error is
// returned only when the markup itself cannot be loaded.
func (p *Parser) Run(data []byte, pageURL string, today time.Time) ([]Release, []ParseWarning, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse listing markup: %w", err)
	}

	base, _ := url.Parse(pageURL)

	strategy, items := p.selectItems(doc)
	if strategy == nil {
		return []Release{}, nil, nil
	}

	var warnings []ParseWarning
	releases := make([]Release, 0, items.Length())

	items.Each(func(i int, item *goquery.Selection) {
		rel, itemWarnings, ok := p.parseItem(i, item, strategy, base, today)
		warnings = append(warnings, itemWarnings...)
		if ok {
			releases = append(releases, rel)
		}
	})

	return releases, warnings, nil
}

// selectItems returns the first strategy whose item selector matches.
func (p *Parser) selectItems(doc *goquery.Document) (*ItemStrategy, *goquery.Selection) {
	for i := range p.strategies.Items {
		strategy := &p.strategies.Items[i]
		items := doc.Find(strategy.Item)
		if items.Length() > 0 {
			return strategy, items
		}
	}
	return nil, nil
}

func (p *Parser) parseItem(index int, item *goquery.Selection, strategy *ItemStrategy, base *url.URL, today time.Time) (Release, []ParseWarning, bool) {
	var warnings []ParseWarning

	title := firstText(item, strategy.Title)
	if title == "" {
		warnings = append(warnings, ParseWarning{Item: index, Field: "title", Message: fmt.Sprintf("no title matched %s strategy", strategy.Name)})
		return Release{}, warnings, false
	}

	detailURL := firstAttr(item, strategy.Link, "href")
	if detailURL == "" {
		warnings = append(warnings, ParseWarning{Item: index, Field: "link", Message: "no detail link found"})
	} else {
		detailURL = resolve(base, detailURL)
	}

	image := imageSource(item, strategy.Image)
	if image != "" {
		image = resolve(base, image)
	}

	dateFound, ok := ExtractDate(metaText(item, strategy.Meta))
	if !ok {
		dateFound = today.Format(DateLayout)
	}

	artist, album := SplitTitle(title)

	return Release{
		ID:        title,
		Artist:    artist,
		Album:     album,
		Image:     image,
		DateFound: dateFound,
		Genres:    []string{},
		DetailURL: detailURL,
		Links:     SearchLinks(artist, album),
	}, warnings, true
}

func firstText(s *goquery.Selection, selectors []string) string {
	for _, sel := range selectors {
		if text := strings.TrimSpace(s.Find(sel).First().Text()); text != "" {
			return text
		}
	}
	return ""
}

func firstAttr(s *goquery.Selection, selectors []string, attr string) string {
	for _, sel := range selectors {
		if v, ok := s.Find(sel).First().Attr(attr); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

var lazyImageAttrs = []string{"src", "data-src", "data-lazy-src"}

func imageSource(s *goquery.Selection, selectors []string) string {
	for _, sel := range selectors {
		img := s.Find(sel).First()
		if img.Length() == 0 {
			continue
		}
		for _, attr := range lazyImageAttrs {
			v, ok := img.Attr(attr)
			v = strings.TrimSpace(v)
			// Lazy loaders put a data: placeholder into src.
			if ok && v != "" && !strings.HasPrefix(v, "data:") {
				return v
			}
		}
	}
	return ""
}

func metaText(s *goquery.Selection, selectors []string) string {
	var parts []string
	for _, sel := range selectors {
		s.Find(sel).Each(func(_ int, m *goquery.Selection) {
			if dt, ok := m.Attr("datetime"); ok {
				parts = append(parts, dt)
			}
			parts = append(parts, strings.TrimSpace(m.Text()))
		})
	}
	s.Find("time[datetime]").Each(func(_ int, m *goquery.Selection) {
		dt, _ := m.Attr("datetime")
		parts = append(parts, dt)
	})
	return strings.Join(parts, " ")
}

func resolve(base *url.URL, ref string) string {
	if base == nil {
		return ref
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return base.ResolveReference(u).String()
}
