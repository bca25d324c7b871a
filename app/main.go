package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/lysyi3m/release-radar/app/api"
	"github.com/lysyi3m/release-radar/app/cfg"
	"github.com/lysyi3m/release-radar/app/database"
	"github.com/lysyi3m/release-radar/app/notify"
	"github.com/lysyi3m/release-radar/app/radar"
	"github.com/lysyi3m/release-radar/app/release"
	"github.com/lysyi3m/release-radar/app/scraper"
	"github.com/lysyi3m/release-radar/app/store"
	"github.com/lysyi3m/release-radar/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		return
	}

	level := slog.LevelInfo
	if appCfg.Debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	slog.Info("Starting Release Radar", "version", appCfg.Version, "mode", appCfg.Mode, "source", appCfg.Source, "base_url", appCfg.BaseURL)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, appCfg); err != nil {
		slog.Error("Release Radar failed", "mode", appCfg.Mode, "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, appCfg *cfg.Cfg) error {
	db, err := database.Open(appCfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		return err
	}
	slog.Debug("Database ready", "path", appCfg.DBPath, "schema_version", version, "dirty", dirty)

	strategies, err := release.LoadStrategies(appCfg.StrategiesFile)
	if err != nil {
		return err
	}

	client := scraper.NewClient(appCfg.UserAgent, appCfg.Timeout)
	fetcher := scraper.NewFetcher(client, appCfg.BaseURL)

	var lister scraper.Lister
	switch appCfg.Source {
	case cfg.SourceFeed:
		lister = scraper.NewFeedLister(fetcher, release.NewFeedParser())
	default:
		lister = scraper.NewHTMLLister(fetcher, release.NewParser(strategies))
	}

	driver := scraper.NewDriver(lister, scraper.NewEnricher(client, strategies.Detail), scraper.Options{
		PageDelay:   appCfg.PageDelay,
		DetailDelay: appCfg.DetailDelay,
	})

	var mirror store.Mirror
	if appCfg.S3Bucket != "" {
		s3Mirror, err := store.NewS3Mirror(store.S3Config{
			Bucket:   appCfg.S3Bucket,
			Key:      appCfg.S3Key,
			Region:   appCfg.S3Region,
			Endpoint: appCfg.S3Endpoint,
			KeyID:    appCfg.S3KeyID,
			Secret:   appCfg.S3Secret,
		})
		if err != nil {
			return err
		}
		mirror = s3Mirror
	}

	notifier := notify.NewTelegram(notify.TelegramConfig{
		Token:     appCfg.TelegramToken,
		ChatID:    appCfg.TelegramChatID,
		SiteURL:   appCfg.BaseURL,
		PublicURL: appCfg.PublicURL,
	})

	runRepo := database.NewRunRepository(db)
	pipeline := radar.New(driver, store.NewJSONStore(appCfg.DataFile), mirror, notifier, runRepo, radar.Options{
		PageDelay: appCfg.PageDelay,
	})

	switch appCfg.Mode {
	case cfg.ModeNotify:
		count, err := pipeline.NotifyToday(ctx)
		if err != nil {
			return err
		}
		slog.Info("Notify finished", "releases", count)
		return nil

	case cfg.ModeServe:
		return serve(ctx, appCfg, pipeline, database.NewSessionRepository(db), runRepo)

	default:
		result, err := pipeline.Run(ctx, radar.TriggerScrape, appCfg.Pages, appCfg.StartPage, appCfg.Deep)
		if err != nil {
			return err
		}
		slog.Info("Scrape finished",
			"candidates", result.Candidates,
			"added", len(result.Added),
			"total", len(result.Collection))
		return nil
	}
}

func serve(ctx context.Context, appCfg *cfg.Cfg, pipeline *radar.Radar, sessionRepo database.SessionRepository, runRepo database.RunRepository) error {
	if appCfg.SchedulerInterval > 0 {
		scheduler := tasks.NewScheduler(pipeline, tasks.ScheduleOptions{
			Source:    appCfg.BaseURL,
			Interval:  appCfg.SchedulerInterval,
			Pages:     appCfg.Pages,
			StartPage: appCfg.StartPage,
			Deep:      appCfg.Deep,
		})
		scheduler.Start()
		defer scheduler.Stop()
	} else {
		slog.Info("Scheduler disabled")
	}

	handler := api.NewHandler(pipeline, radar.NewSessions(sessionRepo, appCfg.NextPage()), runRepo,
		release.Channel{
			Title:       "Release Radar",
			Link:        appCfg.BaseURL,
			SelfLink:    feedSelfLink(appCfg.PublicURL, appCfg.Port),
			Description: "New releases found on " + appCfg.BaseURL,
		},
		api.DeepSearchOptions{
			Target:      appCfg.DeepTarget,
			MaxAttempts: appCfg.DeepMaxAttempts,
			Deep:        appCfg.Deep,
		})

	httpServer := &http.Server{
		Addr:        ":" + appCfg.Port,
		Handler:     api.NewServer(handler, appCfg.APIAccessKey),
		ReadTimeout: 30 * time.Second,
		// A load-more search walks up to DeepMaxAttempts pages with delays.
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("Shutdown signal received")
	case err := <-serverErrChan:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	return nil
}

// feedSelfLink is the public address of /feed.xml.
func feedSelfLink(publicURL, port string) string {
	if publicURL == "" {
		publicURL = "http://localhost:" + port
	}
	return strings.TrimRight(publicURL, "/") + "/feed.xml"
}
