// Package app assembles the server: configuration, logging, the connection
// hub, matchmaking, the match manager, background schedules, and the HTTP
// listener with graceful shutdown.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron/v2"

	"rift-arena/server/internal/config"
	"rift-arena/server/internal/game"
	"rift-arena/server/internal/generator"
	"rift-arena/server/internal/hub"
	"rift-arena/server/internal/logging"
	"rift-arena/server/internal/matchmaking"
	servernet "rift-arena/server/internal/net"
	"rift-arena/server/internal/proto"
)

// Run boots the server and blocks until the context is cancelled or a
// shutdown signal arrives.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, closeLogs := logging.New(cfg.LogFile)
	defer closeLogs()

	connections := hub.New(cfg.SendQueueSize, logger)

	var gen game.Generator
	if cfg.GeneratorURL != "" {
		gen = generator.NewHTTP(cfg.GeneratorURL, logger)
		logger.Infow("weapon generator enabled", "url", cfg.GeneratorURL)
	} else {
		gen = generator.Disabled{}
		logger.Infow("weapon generator disabled, using fallback templates")
	}

	matches := game.NewManager(cfg, connections, gen, logger)

	start := func(roster []game.RosterEntry) {
		matches.StartMatch(roster)
	}
	onTimeout := func(playerID string, waited time.Duration) {
		frame, err := proto.Encode(proto.TypeQueueTimeout, proto.QueueTimeout{WaitedMs: waited.Milliseconds()}, time.Now())
		if err != nil {
			logger.Errorw("encode queue_timeout", "err", err)
			return
		}
		connections.Send(playerID, frame)
	}
	queue := matchmaking.New(cfg, start, onTimeout, logger)
	go queue.Run()
	defer queue.Close()

	sched, schedErr := gocron.NewScheduler()
	if schedErr != nil {
		return fmt.Errorf("create scheduler: %w", schedErr)
	}
	_, err = sched.NewJob(
		gocron.DurationRandomJob(cfg.AutoModMinInterval, cfg.AutoModMaxInterval),
		gocron.NewTask(matches.ProposeAutoModifications),
	)
	if err != nil {
		return fmt.Errorf("schedule auto modifications: %w", err)
	}
	_, err = sched.NewJob(
		gocron.DurationJob(cfg.SpectatorGrace),
		gocron.NewTask(matches.Sweep),
	)
	if err != nil {
		return fmt.Errorf("schedule match sweep: %w", err)
	}
	sched.Start()
	defer func() {
		if serr := sched.Shutdown(); serr != nil {
			logger.Warnw("scheduler shutdown", "err", serr)
		}
	}()

	handler := servernet.NewHandler(cfg, connections, queue, matches, logger)
	srv := &http.Server{Addr: cfg.ListenAddr, Handler: handler}

	errCh := make(chan error, 1)
	go func() {
		logger.Infow("server listening", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-sigCh:
		logger.Infow("shutting down", "signal", sig.String())
	case <-ctx.Done():
		logger.Infow("shutting down", "reason", "context cancelled")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
