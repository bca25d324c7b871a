package api

import (
	"context"

	"github.com/lysyi3m/release-radar/app/database"
	"github.com/lysyi3m/release-radar/app/radar"
	"github.com/lysyi3m/release-radar/app/release"
)

type GeneratorInterface interface {
	Run(channel release.Channel, releases []release.Release) (string, error)
}

var _ GeneratorInterface = (*release.Generator)(nil)

// Pipeline is the part of radar.Radar the handlers drive.
type Pipeline interface {
	Collection() ([]release.Release, error)
	SearchDeeper(ctx context.Context, sess *radar.Session, target, maxAttempts int, deep bool) (*radar.SearchResult, error)
}

var _ Pipeline = (*radar.Radar)(nil)

type SessionStore interface {
	// Get resolves a session for reading without creating one.
	Get(id string) (*radar.Session, error)
	// Open resolves a session for writing, creating it when unknown.
	Open(id string) (*radar.Session, error)
	MarkSeen(sess *radar.Session, ids []string) error
	SaveCursor(sess *radar.Session) error
}

var _ SessionStore = (*radar.Sessions)(nil)

type DeepSearchOptions struct {
	Target      int
	MaxAttempts int
	Deep        bool
}

type Handler struct {
	pipeline  Pipeline
	sessions  SessionStore
	runs      database.RunRepository
	generator GeneratorInterface
	filterer  *release.Filterer
	channel   release.Channel
	search    DeepSearchOptions
	feedSize  int
}

type releaseView struct {
	release.Release
	Seen bool `json:"seen"`
}

type markSeenRequest struct {
	IDs []string `json:"ids" binding:"required"`
}

type loadMoreRequest struct {
	Target      int `json:"target"`
	MaxAttempts int `json:"max_attempts"`
}
