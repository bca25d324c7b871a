package scraper

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/lysyi3m/release-radar/app/release"
)

// Lister turns one listing page number into candidate releases.
type Lister interface {
	List(ctx context.Context, page int, today time.Time) ([]release.Release, []release.ParseWarning, error)
}

// Fetcher resolves and downloads listing pages of the site.
type Fetcher struct {
	client  *Client
	baseURL string
}

func NewFetcher(client *Client, baseURL string) *Fetcher {
	return &Fetcher{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/") + "/",
	}
}

// PageURL returns the listing URL for page n. Page 1 is the base URL.
func (f *Fetcher) PageURL(n int) string {
	if n <= 1 {
		return f.baseURL
	}
	return f.baseURL + "page/" + strconv.Itoa(n) + "/"
}

// FeedURL returns the WordPress RSS URL for page n.
func (f *Fetcher) FeedURL(n int) string {
	if n <= 1 {
		return f.baseURL + "feed/"
	}
	return f.baseURL + "feed/?paged=" + strconv.Itoa(n)
}

func (f *Fetcher) Fetch(ctx context.Context, n int) ([]byte, error) {
	return f.client.Get(ctx, f.PageURL(n))
}

// HTMLLister reads the HTML listing pages.
type HTMLLister struct {
	fetcher *Fetcher
	parser  *release.Parser
}

func NewHTMLLister(fetcher *Fetcher, parser *release.Parser) *HTMLLister {
	return &HTMLLister{fetcher: fetcher, parser: parser}
}

func (l *HTMLLister) List(ctx context.Context, page int, today time.Time) ([]release.Release, []release.ParseWarning, error) {
	data, err := l.fetcher.Fetch(ctx, page)
	if err != nil {
		return nil, nil, err
	}
	return l.parser.Run(data, l.fetcher.PageURL(page), today)
}

// FeedLister reads the RSS rendition of the listing.
type FeedLister struct {
	fetcher *Fetcher
	parser  *release.FeedParser
}

func NewFeedLister(fetcher *Fetcher, parser *release.FeedParser) *FeedLister {
	return &FeedLister{fetcher: fetcher, parser: parser}
}

func (l *FeedLister) List(ctx context.Context, page int, today time.Time) ([]release.Release, []release.ParseWarning, error) {
	data, err := l.fetcher.client.Get(ctx, l.fetcher.FeedURL(page))
	if err != nil {
		return nil, nil, err
	}
	releases, err := l.parser.Run(data, today)
	return releases, nil, err
}
