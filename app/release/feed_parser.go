package release

import (
	"bytes"
	"fmt"
	"time"

	"github.com/mmcdole/gofeed"
)

// FeedParser reads the WordPress RSS rendition of the listing. Feed items
// already carry their categories, so genres are filled without a detail
// fetch.
type FeedParser struct {
	gofeedParser *gofeed.Parser
}

func NewFeedParser() *FeedParser {
	return &FeedParser{
		gofeedParser: gofeed.NewParser(),
	}
}

func (p *FeedParser) Run(data []byte, today time.Time) ([]Release, error) {
	feed, err := p.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	releases := make([]Release, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil || item.Title == "" {
			continue
		}
		releases = append(releases, p.normalizeItem(item, today))
	}

	return releases, nil
}

func (p *FeedParser) normalizeItem(item *gofeed.Item, today time.Time) Release {
	artist, album := SplitTitle(item.Title)

	dateFound := today.Format(DateLayout)
	if item.PublishedParsed != nil {
		dateFound = item.PublishedParsed.Format(DateLayout)
	}

	var image string
	if item.Image != nil {
		image = item.Image.URL
	}
	if image == "" {
		for _, enclosure := range item.Enclosures {
			if enclosure != nil && enclosure.URL != "" {
				image = enclosure.URL
				break
			}
		}
	}

	return Release{
		ID:        item.Title,
		Artist:    artist,
		Album:     album,
		Image:     image,
		DateFound: dateFound,
		Genres:    FilterGenres(item.Categories),
		DetailURL: item.Link,
		Links:     SearchLinks(artist, album),
	}
}
