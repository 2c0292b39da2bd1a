package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// exitInterrupted is the exit status after a forced quit (128 + SIGINT).
const exitInterrupted = 130

// shutdownContext returns a context for one command's API calls. The first
// SIGINT/SIGTERM cancels it, aborting in-flight and queued requests; a second
// signal exits immediately. Call stop when the command is done to release
// the signal handler.
func shutdownContext(parent context.Context, logger *slog.Logger) (context.Context, func()) {
	ctx, cancel := context.WithCancel(parent)
	done := make(chan struct{})

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigCh)

		select {
		case sig := <-sigCh:
			logger.Info("received signal, canceling requests",
				slog.String("signal", sig.String()),
			)
			cancel()
		case <-done:
			return
		}

		select {
		case sig := <-sigCh:
			logger.Warn("received second signal, forcing exit",
				slog.String("signal", sig.String()),
			)
			os.Exit(exitInterrupted)
		case <-done:
		}
	}()

	stop := sync.OnceFunc(func() {
		cancel()
		close(done)
	})

	return ctx, stop
}
