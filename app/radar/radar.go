package radar

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lysyi3m/release-radar/app/database"
	"github.com/lysyi3m/release-radar/app/metrics"
	"github.com/lysyi3m/release-radar/app/notify"
	"github.com/lysyi3m/release-radar/app/release"
	"github.com/lysyi3m/release-radar/app/scraper"
	"github.com/lysyi3m/release-radar/app/store"
)

const (
	TriggerScrape   = "scrape"
	TriggerSchedule = "schedule"
	TriggerLoadMore = "load_more"
)

const (
	DefaultDeepTarget      = 8
	DefaultDeepMaxAttempts = 20
)

// Scraper yields candidate releases from the listing.
type Scraper interface {
	Scrape(ctx context.Context, pages, startPage int, deep bool) ([]release.Release, error)
	ScrapePage(ctx context.Context, page int, deep bool) ([]release.Release, error)
}

// Store persists the whole collection, newest first.
type Store interface {
	Load() ([]release.Release, error)
	Save(releases []release.Release) error
}

type Options struct {
	PageDelay time.Duration
}

// Radar runs the scrape and reconcile pipeline. Runs are serialized so that
// a scheduled scrape and an interactive load-more never write concurrently.
type Radar struct {
	mu       sync.Mutex
	scraper  Scraper
	store    Store
	mirror   store.Mirror
	notifier notify.Notifier
	runs     database.RunRepository
	opts     Options
	sleep    func(ctx context.Context, d time.Duration) error
	now      func() time.Time
}

// New wires a Radar. mirror, notifier and runs may be nil.
func New(s Scraper, st Store, mirror store.Mirror, notifier notify.Notifier, runs database.RunRepository, opts Options) *Radar {
	return &Radar{
		scraper:  s,
		store:    st,
		mirror:   mirror,
		notifier: notifier,
		runs:     runs,
		opts:     opts,
		sleep:    scraper.Sleep,
		now:      time.Now,
	}
}

type RunResult struct {
	RunID      string
	Candidates int
	Added      []release.Release // newest first
	Collection []release.Release
}

// Run scrapes pages starting at startPage, merges the candidates into the
// stored collection and notifies about the new releases.
func (r *Radar) Run(ctx context.Context, trigger string, pages, startPage int, deep bool) (*RunResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	run := database.Run{
		ID:        uuid.New().String(),
		Trigger:   trigger,
		StartedAt: r.now(),
		StartPage: startPage,
		Pages:     pages,
	}

	result, err := r.run(ctx, &run, deep)
	r.finish(&run, err)
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *Radar) run(ctx context.Context, run *database.Run, deep bool) (*RunResult, error) {
	existing, err := r.store.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load collection: %w", err)
	}

	candidates, err := r.scraper.Scrape(ctx, run.Pages, run.StartPage, deep)
	if err != nil {
		return nil, fmt.Errorf("failed to scrape listing: %w", err)
	}
	run.Candidates = len(candidates)

	updated, added, err := r.merge(ctx, run.Trigger, existing, candidates)
	if err != nil {
		return nil, err
	}
	run.Added = len(added)

	newestFirst := newestFirst(added)
	if r.notifier != nil && len(newestFirst) > 0 {
		if err := r.notifier.Notify(ctx, newestFirst); err != nil {
			slog.Error("Failed to send notification", "releases", len(newestFirst), "error", err)
		}
	}

	return &RunResult{
		RunID:      run.ID,
		Candidates: len(candidates),
		Added:      newestFirst,
		Collection: updated,
	}, nil
}

// merge reconciles candidates into existing and persists the result when
// anything is new. added is oldest first.
func (r *Radar) merge(ctx context.Context, trigger string, existing, candidates []release.Release) ([]release.Release, []release.Release, error) {
	updated, added := release.Reconcile(existing, candidates)
	metrics.CollectionSize.Set(float64(len(updated)))

	if len(added) == 0 {
		slog.Info("No new releases", "trigger", trigger, "candidates", len(candidates))
		return updated, added, nil
	}

	if err := r.store.Save(updated); err != nil {
		return nil, nil, fmt.Errorf("failed to save collection: %w", err)
	}
	metrics.ReleasesAdded.WithLabelValues(trigger).Add(float64(len(added)))
	slog.Info("Collection updated", "trigger", trigger, "added", len(added), "total", len(updated))

	r.publish(ctx, updated)
	return updated, added, nil
}

func (r *Radar) publish(ctx context.Context, releases []release.Release) {
	if r.mirror == nil {
		return
	}
	data, err := store.Encode(releases)
	if err != nil {
		slog.Warn("Failed to encode collection for mirror", "error", err)
		return
	}
	if err := r.mirror.Publish(ctx, data); err != nil {
		slog.Warn("Failed to mirror collection", "error", err)
	}
}

func (r *Radar) finish(run *database.Run, err error) {
	run.FinishedAt = r.now()
	if err != nil {
		run.Error = err.Error()
	}
	metrics.RunDuration.WithLabelValues(run.Trigger).Observe(run.FinishedAt.Sub(run.StartedAt).Seconds())

	if r.runs == nil {
		return
	}
	if recordErr := r.runs.RecordRun(*run); recordErr != nil {
		slog.Warn("Failed to record scrape run", "run", run.ID, "error", recordErr)
	}
}

type SearchResult struct {
	Attempts  int
	Found     int
	Exhausted bool // an empty page was reached
	Added     []release.Release
}

// SearchDeeper fetches one page per attempt from the session cursor until
// target new releases were found, maxAttempts pages were fetched or the
// archive ran out. The session cursor advances past every fetched page.
func (r *Radar) SearchDeeper(ctx context.Context, sess *Session, target, maxAttempts int, deep bool) (*SearchResult, error) {
	if target < 1 {
		target = DefaultDeepTarget
	}
	if maxAttempts < 1 {
		maxAttempts = DefaultDeepMaxAttempts
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	sess.mu.Lock()
	defer sess.mu.Unlock()

	run := database.Run{
		ID:        uuid.New().String(),
		Trigger:   TriggerLoadMore,
		StartedAt: r.now(),
		StartPage: sess.Cursor,
	}

	result, err := r.searchDeeper(ctx, sess, &run, target, maxAttempts, deep)
	r.finish(&run, err)
	if err != nil {
		return result, err
	}

	slog.Info("Deep search finished",
		"session", sess.ID,
		"attempts", result.Attempts,
		"found", result.Found,
		"exhausted", result.Exhausted,
		"cursor", sess.Cursor)

	return result, nil
}

func (r *Radar) searchDeeper(ctx context.Context, sess *Session, run *database.Run, target, maxAttempts int, deep bool) (*SearchResult, error) {
	existing, err := r.store.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load collection: %w", err)
	}

	known := release.IDSet(existing)
	result := &SearchResult{}
	var candidates []release.Release

	for result.Attempts < maxAttempts && result.Found < target {
		if result.Attempts > 0 {
			if err := r.sleep(ctx, r.opts.PageDelay); err != nil {
				break
			}
		}

		batch, err := r.scraper.ScrapePage(ctx, sess.Cursor, deep)
		if err != nil {
			break
		}
		result.Attempts++
		sess.Cursor++

		if len(batch) == 0 {
			result.Exhausted = true
			break
		}

		result.Found += release.CountNew(known, batch)
		candidates = append(candidates, batch...)
	}
	run.Pages = result.Attempts
	run.Candidates = len(candidates)

	// Whatever was found before a cancellation is still merged.
	updated, added, err := r.merge(context.WithoutCancel(ctx), TriggerLoadMore, existing, candidates)
	if err != nil {
		return nil, err
	}
	run.Added = len(added)

	sess.Collection = updated
	result.Added = newestFirst(added)

	if ctxErr := ctx.Err(); ctxErr != nil {
		return result, fmt.Errorf("deep search interrupted: %w", ctxErr)
	}
	return result, nil
}

// NotifyToday sends the summary for releases found on the current date.
func (r *Radar) NotifyToday(ctx context.Context) (int, error) {
	if r.notifier == nil {
		return 0, errors.New("no notifier configured")
	}

	releases, err := r.store.Load()
	if err != nil {
		return 0, fmt.Errorf("failed to load collection: %w", err)
	}

	today := r.now().Format(release.DateLayout)
	var found []release.Release
	for _, rel := range releases {
		if rel.DateFound == today {
			found = append(found, rel)
		}
	}

	if len(found) == 0 {
		slog.Info("No releases found today", "date", today)
		return 0, nil
	}

	if err := r.notifier.Notify(ctx, found); err != nil {
		return 0, fmt.Errorf("failed to notify: %w", err)
	}
	return len(found), nil
}

// Collection returns the stored collection.
func (r *Radar) Collection() ([]release.Release, error) {
	return r.store.Load()
}

func newestFirst(added []release.Release) []release.Release {
	out := slices.Clone(added)
	slices.Reverse(out)
	if out == nil {
		out = []release.Release{}
	}
	return out
}
