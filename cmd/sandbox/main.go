package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/alovak/cardvault/sandbox"
	"golang.org/x/exp/slog"
)

func main() {
	var level slog.Level
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		if err := level.UnmarshalText([]byte(v)); err != nil {
			slog.Error("parsing LOG_LEVEL", "err", err)
			os.Exit(1)
		}
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	app := sandbox.NewApp(logger, sandbox.FromEnv())
	if err := app.Start(); err != nil {
		logger.Error("starting sandbox", "err", err)
		os.Exit(1)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("received shutdown signal", "signal", sig.String())

	app.Shutdown()
}
