package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ViniZap4/notepads/config"
	"github.com/ViniZap4/notepads/controller"
	"github.com/ViniZap4/notepads/events"
	"github.com/ViniZap4/notepads/filesystem"
	httphandlers "github.com/ViniZap4/notepads/http"
	"github.com/ViniZap4/notepads/logging"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	log, err := logging.New(cfg.LogLevel, cfg.LogPretty, os.Stderr)
	if err != nil {
		return fmt.Errorf("log level %q: %w", cfg.LogLevel, err)
	}

	store, err := filesystem.NewStore(cfg.Root,
		filesystem.WithLogger(logging.Component(log, "store")),
		filesystem.WithTitleIndex(cfg.TitleIndex),
	)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := events.NewHub(logging.Component(log, "events"))
	go hub.Run(ctx)

	loop := controller.NewLoop(controller.New(store, hub, logging.Component(log, "controller")))
	go loop.Run(ctx)

	app := httphandlers.NewServer(loop, hub, logging.Component(log, "http")).App(cfg.PasswordHash)

	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr).Str("root", store.Root()).Bool("title_index", cfg.TitleIndex).Msg("server starting")
		errc <- app.Listen(cfg.Addr)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	log.Info().Msg("shutting down")
	return app.ShutdownWithTimeout(5 * time.Second)
}
