package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/release-radar/app/radar"
)

// Runner is the part of radar.Radar a scheduled scrape needs.
type Runner interface {
	Run(ctx context.Context, trigger string, pages, startPage int, deep bool) (*radar.RunResult, error)
}

type ScrapeTask struct {
	Task
	runner    Runner
	pages     int
	startPage int
	deep      bool
}

func NewScrapeTask(source string, runner Runner, pages, startPage int, deep bool) *ScrapeTask {
	return &ScrapeTask{
		Task:      NewTask(TaskTypeScrape, source),
		runner:    runner,
		pages:     pages,
		startPage: startPage,
		deep:      deep,
	}
}

func (t *ScrapeTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	result, err := t.runner.Run(ctx, radar.TriggerSchedule, t.pages, t.startPage, t.deep)
	if err != nil {
		return fmt.Errorf("failed to run scrape: %w", err)
	}

	slog.Info("Task completed",
		"type", t.GetType(),
		"source", t.Source,
		"duration", t.GetDuration(),
		"candidates", result.Candidates,
		"added", len(result.Added),
		"total", len(result.Collection))

	return nil
}
