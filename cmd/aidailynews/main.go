package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"

	"AIDailyNews/internal/app"
	"AIDailyNews/internal/config"
	"AIDailyNews/internal/logging"
)

type options struct {
	Config   string `short:"c" long:"config" description:"Path to the YAML configuration file"`
	RunNow   bool   `long:"run-now" description:"Execute one pipeline run and exit"`
	Schedule bool   `long:"schedule" description:"Run on the configured cron schedule"`
	LogLevel string `long:"log-level" description:"Override the configured log level"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	var opts options
	if _, err := flags.Parse(&opts); err != nil {
		if flags.WroteHelp(err) {
			return nil
		}
		return err
	}

	cfg, err := config.Load(opts.Config)
	if err != nil {
		return err
	}

	level := cfg.Logging.Level
	if opts.LogLevel != "" {
		level = opts.LogLevel
	}
	logger := logging.New(level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer application.Close()

	if opts.Schedule && !opts.RunNow {
		return application.RunScheduled(ctx)
	}

	reportPath, err := application.RunOnce(ctx)
	if err != nil {
		return err
	}
	if reportPath == "" {
		logger.Warn("run produced no report")
		return nil
	}
	fmt.Println(reportPath)
	return nil
}
