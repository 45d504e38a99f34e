// Package app wires the configuration into a runnable application.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	_ "github.com/lib/pq"

	"AIDailyNews/internal/analyze"
	"AIDailyNews/internal/classify"
	"AIDailyNews/internal/collector"
	"AIDailyNews/internal/config"
	"AIDailyNews/internal/dedup"
	"AIDailyNews/internal/infrastructure/llm"
	"AIDailyNews/internal/infrastructure/notify"
	"AIDailyNews/internal/infrastructure/scheduler"
	"AIDailyNews/internal/infrastructure/storage"
	"AIDailyNews/internal/ports"
	"AIDailyNews/internal/report"
	"AIDailyNews/internal/usecase"
)

// App holds the assembled pipeline and its lifecycle resources.
type App struct {
	cfg      config.Config
	logger   *slog.Logger
	pipeline *usecase.Pipeline
	runner   *usecase.ScheduledRunner
	db       *sql.DB
}

// New assembles the application from configuration. Optional adapters
// (LLM, database, email) are wired only when configured.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	client := &http.Client{Timeout: cfg.Collection.Timeout()}

	collectors := buildCollectors(client, cfg, logger)

	var llmClient ports.LLMClient
	if cfg.LLM.APIKey != "" {
		llmClient = llm.NewClient(cfg.LLM)
	} else {
		logger.Warn("no llm api key configured, runs will use fallback synthesis")
	}

	var db *sql.DB
	var repository ports.RunRepository
	if cfg.Database.DSN != "" {
		conn, err := sql.Open("postgres", cfg.Database.DSN)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		repo := storage.NewPostgresRunRepository(conn, logger)
		if err := repo.EnsureSchema(ctx); err != nil {
			conn.Close()
			return nil, err
		}
		db = conn
		repository = repo
	}

	var notifier ports.Notifier
	if cfg.Notifications.Email.Enabled {
		notifier = notify.NewEmailNotifier(cfg.Notifications.Email, logger)
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Collectors:   collectors,
		Deduplicator: dedup.New(cfg.ContentFilter.DedupThreshold, logger),
		Classifier:   classify.New(cfg.Sources.Categories, logger),
		Analyzer:     analyze.New(llmClient, logger),
		Assembler:    report.NewAssembler(cfg.Output.BaseDir, logger),
		Repository:   repository,
		Notifier:     notifier,
		MaxAge:       cfg.ContentFilter.MaxAge(),
		Logger:       logger,
	})

	cronDriver := scheduler.NewCronScheduler(cfg.Scheduler.CronExpression, cfg.Scheduler.Location(), logger)
	runner := usecase.NewScheduledRunner(pipeline, cronDriver, logger)

	return &App{
		cfg:      cfg,
		logger:   logger,
		pipeline: pipeline,
		runner:   runner,
		db:       db,
	}, nil
}

// RunOnce executes a single pipeline run for the current time and returns
// the report path.
func (a *App) RunOnce(ctx context.Context) (string, error) {
	return a.pipeline.Run(ctx, time.Now().In(a.cfg.Scheduler.Location()))
}

// RunScheduled runs the pipeline on the configured cron schedule until the
// context is canceled.
func (a *App) RunScheduled(ctx context.Context) error {
	if err := a.runner.Start(ctx); err != nil {
		return fmt.Errorf("start scheduled runs: %w", err)
	}
	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return a.runner.Stop(stopCtx)
}

// Close releases application resources.
func (a *App) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

func buildCollectors(client *http.Client, cfg config.Config, logger *slog.Logger) []ports.Collector {
	interval := cfg.Collection.Interval()

	github := collector.NewGitHub(client, collector.GitHubConfig{
		Topics:       cfg.Sources.GitHub.Topics,
		Repositories: cfg.Sources.GitHub.Repositories,
		Since:        cfg.Sources.GitHub.Since,
		Throttle:     interval,
	}, logger)

	feeds := make([]collector.Feed, 0, len(cfg.Sources.RSSFeeds))
	for _, feed := range cfg.Sources.RSSFeeds {
		feeds = append(feeds, collector.Feed{
			Name:    feed.Name,
			URL:     feed.URL,
			Enabled: feed.On(),
		})
	}
	rss := collector.NewRSS(client, feeds, interval, logger)

	blogs := make([]collector.BlogSource, 0, len(cfg.Sources.Blogs))
	for _, blog := range cfg.Sources.Blogs {
		blogs = append(blogs, collector.BlogSource{
			Name:    blog.Name,
			URL:     blog.URL,
			Parser:  blog.Parser,
			Enabled: blog.On(),
		})
	}
	web := collector.NewWeb(client, blogs, collector.NewParserRegistry(), interval, logger)

	return []ports.Collector{github, rss, web}
}
