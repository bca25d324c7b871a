package scraper

import (
	"bytes"
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"

	"github.com/lysyi3m/release-radar/app/metrics"
	"github.com/lysyi3m/release-radar/app/release"
)

// ExcerptLength is the maximum excerpt size in runes.
const ExcerptLength = 280

// DetailSource fetches the secondary attributes of a release.
type DetailSource interface {
	Run(ctx context.Context, detailURL string) release.Detail
}

// Enricher reads genres and a short text excerpt from a release's own page.
// Failures are logged and yield an empty Detail.
type Enricher struct {
	client   *Client
	strategy release.DetailStrategy
}

func NewEnricher(client *Client, strategy release.DetailStrategy) *Enricher {
	return &Enricher{client: client, strategy: strategy}
}

func (e *Enricher) Run(ctx context.Context, detailURL string) release.Detail {
	empty := release.Detail{Genres: []string{}}

	data, err := e.client.Get(ctx, detailURL)
	if err != nil {
		metrics.DetailsFetched.WithLabelValues("error").Inc()
		slog.Warn("Failed to fetch detail page", "url", detailURL, "error", err)
		return empty
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		metrics.DetailsFetched.WithLabelValues("error").Inc()
		slog.Warn("Failed to parse detail page", "url", detailURL, "error", err)
		return empty
	}
	metrics.DetailsFetched.WithLabelValues("ok").Inc()

	detail := release.Detail{
		Genres:  release.FilterGenres(e.tagLabels(doc)),
		Excerpt: excerpt(data, detailURL),
	}

	slog.Debug("Detail page enriched", "url", detailURL, "genres", len(detail.Genres), "excerpt_length", len(detail.Excerpt))
	return detail
}

// tagLabels returns the category link labels inside the first metadata
// region found, or anywhere in the page when no region matches.
func (e *Enricher) tagLabels(doc *goquery.Document) []string {
	scope := doc.Selection
	for _, sel := range e.strategy.Meta {
		if found := doc.Find(sel); found.Length() > 0 {
			scope = found.First()
			break
		}
	}

	var labels []string
	for _, sel := range e.strategy.Tags {
		scope.Find(sel).Each(func(_ int, a *goquery.Selection) {
			labels = append(labels, a.Text())
		})
		if len(labels) > 0 {
			break
		}
	}
	return labels
}

func excerpt(data []byte, pageURL string) string {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}

	article, err := readability.FromReader(bytes.NewReader(data), parsed)
	if err != nil {
		slog.Debug("No readable content on detail page", "url", pageURL, "error", err)
		return ""
	}

	return truncate(strings.Join(strings.Fields(article.TextContent), " "), ExcerptLength)
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	cut := strings.TrimSpace(string(runes[:limit]))
	if i := strings.LastIndex(cut, " "); i > limit/2 {
		cut = cut[:i]
	}
	return cut + "…"
}
