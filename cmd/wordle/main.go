package main

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pixil98/go-service"
	"github.com/pixil98/go-wordle/cmd/wordle/command"
)

func main() {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel(os.Getenv("LOG_LEVEL"))}))
	slog.SetDefault(logger)

	app, err := service.NewApp(&command.Config{}, command.BuildWorkers)
	if err != nil {
		logger.Error("creating application", "error", err)
		os.Exit(1)
	}

	err = app.Run(context.Background())
	if err != nil {
		logger.Error("running application", "error", err)
		os.Exit(1)
	}

	logger.Info("exiting")
}

func logLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo
	}
	return level
}
