package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"github.com/stevemurr/simple-todo-server/config"
	"github.com/stevemurr/simple-todo-server/handler"
	"github.com/stevemurr/simple-todo-server/notify"
	"github.com/stevemurr/simple-todo-server/store"
)

const shutdownGrace = 5 * time.Second

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Error(err.Error())
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.Load(flag.NewFlagSet("todo-server", flag.ContinueOnError), args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	logger := cfg.NewLogger(os.Stderr)

	s, err := store.New(cfg.Backend)
	if err != nil {
		return err
	}
	if c, ok := s.(interface{ Close() error }); ok {
		defer c.Close()
	}

	h := handler.New(s,
		handler.WithLogger(logger),
		handler.WithNotifier(notify.New(cfg.Telegram, logger)),
		handler.WithAllowedOrigins(cfg.AllowedOrigins),
	)
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Simple Todo Server starting",
			"addr", srv.Addr,
			"store", cfg.Backend,
			"notifications", cfg.Telegram.Enabled(),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	// Pending notifications are best-effort and are not waited for.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
