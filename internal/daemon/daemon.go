// Package daemon exposes the tracker as a local HTTP service. The browser
// extension posts events to it; the popup and analytics surfaces read their
// projections back out.
package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/runnerr0/mindful/internal/aggregate"
)

const shutdownTimeout = 5 * time.Second

// Server wraps the tracker in an HTTP surface bound to a local address.
type Server struct {
	tracker *aggregate.Tracker
	addr    string
	maxBody int64
}

// New constructs a Server. maxBody caps the accepted request body size in
// bytes; zero falls back to 1MB.
func New(tracker *aggregate.Tracker, addr string, maxBody int64) *Server {
	if maxBody <= 0 {
		maxBody = 1 << 20
	}
	return &Server{
		tracker: tracker,
		addr:    addr,
		maxBody: maxBody,
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully. A daily
// rollover check runs once a minute so the day boundary is honored even when
// no events arrive.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.Handler(),
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("daemon listening", "addr", s.addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				if err := s.tracker.Rollover(ctx); err != nil {
					slog.Error("scheduled rollover failed", "error", err)
				}
			}
		}
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
