package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/release-radar/app/database"
	"github.com/lysyi3m/release-radar/app/radar"
	"github.com/lysyi3m/release-radar/app/release"
)

const sessionKey = "session"

// DefaultFeedSize is how many of the newest releases /feed.xml carries.
const DefaultFeedSize = 50

func NewHandler(pipeline Pipeline, sessions SessionStore, runs database.RunRepository,
	channel release.Channel, search DeepSearchOptions) *Handler {
	return &Handler{
		pipeline:  pipeline,
		sessions:  sessions,
		runs:      runs,
		generator: release.NewGenerator(),
		filterer:  release.NewFilterer(),
		channel:   channel,
		search:    search,
		feedSize:  DefaultFeedSize,
	}
}

func currentSession(c *gin.Context) *radar.Session {
	return c.MustGet(sessionKey).(*radar.Session)
}

func (h *Handler) ListReleases(c *gin.Context) {
	sess := currentSession(c)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", strconv.Itoa(release.DefaultPerPage)))
	perPage = min(perPage, release.MaxPerPage)

	// The first page refreshes the snapshot; later pages keep paging through
	// it so a concurrent scrape does not shift them.
	collection, ok := sess.Snapshot()
	if !ok || page <= 1 {
		var err error
		collection, err = h.pipeline.Collection()
		if err != nil {
			slog.Error("Failed to load collection", "session", sess.ID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load releases"})
			return
		}
		sess.SetCollection(collection)
	}
	unseen, _ := strconv.ParseBool(c.DefaultQuery("unseen", "false"))

	seen := sess.SeenSet()
	matched := h.filterer.Run(collection, release.Query{
		Text:       c.Query("q"),
		UnseenOnly: unseen,
		Seen:       seen,
	})
	items, totalPages := release.Page(matched, page, perPage)

	views := make([]releaseView, 0, len(items))
	for _, r := range items {
		_, isSeen := seen[r.ID]
		views = append(views, releaseView{Release: r, Seen: isSeen})
	}

	c.JSON(http.StatusOK, gin.H{
		"releases":    views,
		"total":       len(matched),
		"page":        max(page, 1),
		"total_pages": totalPages,
		"cursor":      sess.CurrentCursor(),
	})
}

func (h *Handler) MarkSeen(c *gin.Context) {
	sess := currentSession(c)

	var req markSeenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "message": err.Error()})
		return
	}

	if err := h.sessions.MarkSeen(sess, req.IDs); err != nil {
		slog.Error("Failed to mark releases as seen", "session", sess.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark releases as seen"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"seen": len(sess.SeenSet())})
}

func (h *Handler) LoadMore(c *gin.Context) {
	sess := currentSession(c)

	req := loadMoreRequest{Target: h.search.Target, MaxAttempts: h.search.MaxAttempts}
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "message": err.Error()})
		return
	}
	if req.MaxAttempts > h.search.MaxAttempts && h.search.MaxAttempts > 0 {
		req.MaxAttempts = h.search.MaxAttempts
	}

	result, err := h.pipeline.SearchDeeper(c.Request.Context(), sess, req.Target, req.MaxAttempts, h.search.Deep)

	if saveErr := h.sessions.SaveCursor(sess); saveErr != nil {
		slog.Warn("Failed to save session cursor", "session", sess.ID, "error", saveErr)
	}

	if err != nil {
		slog.Error("Deep search failed", "session", sess.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Deep search failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"attempts":  result.Attempts,
		"found":     result.Found,
		"exhausted": result.Exhausted,
		"added":     result.Added,
		"cursor":    sess.CurrentCursor(),
	})
}

func (h *Handler) GetFeed(c *gin.Context) {
	collection, err := h.pipeline.Collection()
	if err != nil {
		slog.Error("Failed to load collection", "operation", "feed", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	items := collection
	if len(items) > h.feedSize {
		items = items[:h.feedSize]
	}

	rss, err := h.generator.Run(h.channel, items)
	if err != nil {
		slog.Error("RSS generation error", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Header("Content-Type", "application/xml; charset=utf-8")
	c.Header("X-Feed-Items", strconv.Itoa(len(items)))

	c.String(http.StatusOK, rss)
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if collection, err := h.pipeline.Collection(); err == nil {
		health["releases"] = len(collection)
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	if h.runs == nil {
		c.JSON(http.StatusOK, gin.H{"runs": []database.Run{}})
		return
	}

	stats, err := h.runs.GetRunStats()
	if err != nil {
		slog.Error("Database error", "operation", "get_run_stats", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	recent, err := h.runs.GetRecentRuns(10)
	if err != nil {
		slog.Error("Database error", "operation", "get_recent_runs", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	runs := make([]map[string]interface{}, 0, len(recent))
	for _, run := range recent {
		runs = append(runs, map[string]interface{}{
			"id":         run.ID,
			"trigger":    run.Trigger,
			"started_at": run.StartedAt.Format(time.RFC3339),
			"duration":   run.FinishedAt.Sub(run.StartedAt).String(),
			"start_page": run.StartPage,
			"pages":      run.Pages,
			"candidates": run.Candidates,
			"added":      run.Added,
			"error":      run.Error,
		})
	}

	body := gin.H{
		"total_runs":  stats.TotalRuns,
		"total_added": stats.TotalAdded,
		"failed_runs": stats.FailedRuns,
		"runs":        runs,
	}
	if stats.LastRunAt != nil {
		body["last_run_at"] = stats.LastRunAt.Format(time.RFC3339)
	}

	c.JSON(http.StatusOK, body)
}
