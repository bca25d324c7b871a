package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lysyi3m/release-radar/app/metrics"
	"github.com/lysyi3m/release-radar/app/release"
)

var ErrInvalidPaging = errors.New("pages and start page must be positive")

type Options struct {
	PageDelay   time.Duration
	DetailDelay time.Duration
}

// Driver walks listing pages serially and aggregates their candidates.
//
// Example usage:
//
//	driver := NewDriver(lister, enricher, Options{PageDelay: time.Second, DetailDelay: 300 * time.Millisecond})
//	candidates, err := driver.Scrape(ctx, 3, 1, false)
type Driver struct {
	lister   Lister
	enricher DetailSource
	opts     Options
	sleep    func(ctx context.Context, d time.Duration) error
	now      func() time.Time
}

func NewDriver(lister Lister, enricher DetailSource, opts Options) *Driver {
	return &Driver{
		lister:   lister,
		enricher: enricher,
		opts:     opts,
		sleep:    Sleep,
		now:      time.Now,
	}
}

// Scrape fetches pages start..start+pages-1 and returns their candidates in
// page order. An empty or failed page ends the walk.
func (d *Driver) Scrape(ctx context.Context, pages, startPage int, deep bool) ([]release.Release, error) {
	if pages < 1 || startPage < 1 {
		return nil, ErrInvalidPaging
	}

	var all []release.Release
	for i := 0; i < pages; i++ {
		page := startPage + i

		if i > 0 {
			if err := d.sleep(ctx, d.opts.PageDelay); err != nil {
				return all, err
			}
		}

		candidates, err := d.ScrapePage(ctx, page, deep)
		if err != nil {
			return all, err
		}
		if len(candidates) == 0 {
			slog.Info("No releases on page, stopping", "page", page)
			break
		}
		all = append(all, candidates...)
	}

	slog.Info("Scrape finished", "pages", pages, "start", startPage, "candidates", len(all), "deep", deep)
	return all, nil
}

// ScrapePage fetches and parses a single listing page. Fetch and markup
// failures are logged and reported as an empty page; only context
// cancellation is returned as an error.
func (d *Driver) ScrapePage(ctx context.Context, page int, deep bool) ([]release.Release, error) {
	if page < 1 {
		return nil, ErrInvalidPaging
	}

	candidates, warnings, err := d.lister.List(ctx, page, d.now())
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil {
		metrics.PagesFetched.WithLabelValues("error").Inc()
		slog.Error("Failed to fetch listing page", "page", page, "error", err)
		return []release.Release{}, nil
	}

	for _, w := range warnings {
		slog.Warn("Listing item skipped or incomplete", "page", page, "item", w.Item, "field", w.Field, "message", w.Message)
	}
	metrics.ParseWarnings.Add(float64(len(warnings)))

	if len(candidates) == 0 {
		metrics.PagesFetched.WithLabelValues("empty").Inc()
		return []release.Release{}, nil
	}
	metrics.PagesFetched.WithLabelValues("ok").Inc()
	slog.Debug("Listing page parsed", "page", page, "candidates", len(candidates))

	if deep && d.enricher != nil {
		if err := d.enrich(ctx, candidates); err != nil {
			return nil, err
		}
	}

	return candidates, nil
}

func (d *Driver) enrich(ctx context.Context, candidates []release.Release) error {
	for i := range candidates {
		if candidates[i].DetailURL == "" {
			continue
		}
		if err := d.sleep(ctx, d.opts.DetailDelay); err != nil {
			return err
		}
		detail := d.enricher.Run(ctx, candidates[i].DetailURL)
		candidates[i].Genres = release.MergeGenres(candidates[i].Genres, detail.Genres)
		if detail.Excerpt != "" {
			candidates[i].Excerpt = detail.Excerpt
		}
	}
	return nil
}

// Sleep pauses for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return fmt.Errorf("sleep interrupted: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}
