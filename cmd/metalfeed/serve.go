package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/Sternrassler/metal-archives-client/pkg/feed"
	"github.com/Sternrassler/metal-archives-client/pkg/metrics"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the homepage sections as JSON over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr == "" {
				addr = a.cfg.Server.Addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			bus := feed.NewBus(32)
			defer bus.Close()
			events, unsubscribe := bus.Subscribe()
			defer unsubscribe()
			go logEvents(a.logger, events)

			srv := newServer(a.homepage(bus), a.ping, a.logger)

			// Initial load failures are not fatal; the sections can be
			// refreshed later.
			if err := srv.home.Load(ctx); err != nil {
				a.logger.Warn().Err(err).Msg("Initial homepage load incomplete")
			}

			httpServer := &http.Server{
				Addr:              addr,
				Handler:           srv.routes(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				a.logger.Info().Str("addr", addr).Msg("Starting metalfeed server")
				errCh <- httpServer.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-ctx.Done():
			}

			a.logger.Info().Msg("Shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
			defer cancel()
			return httpServer.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default server.addr)")
	return cmd
}

// server exposes a Homepage over HTTP.
type server struct {
	home   *feed.Homepage
	ping   func(context.Context) error
	logger zerolog.Logger
}

func newServer(home *feed.Homepage, ping func(context.Context) error, logger zerolog.Logger) *server {
	if ping == nil {
		ping = func(context.Context) error { return nil }
	}
	return &server{home: home, ping: ping, logger: logger}
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /ready", s.handleReady)
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("GET /feed", s.handleIndex)
	mux.HandleFunc("GET /feed/{section}", s.handleSection)
	mux.HandleFunc("POST /feed/{section}/more", s.handleMore)
	mux.HandleFunc("POST /feed/refresh", s.handleRefresh)
	return mux
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.ping(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("Readiness check failed")
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("READY"))
}

func (s *server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	snaps := make([]feed.Snapshot, 0, len(feed.Sections()))
	for _, section := range feed.Sections() {
		snap, err := s.home.ShortList(section)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		snaps = append(snaps, snap)
	}
	writeJSON(w, http.StatusOK, snaps)
}

func (s *server) handleSection(w http.ResponseWriter, r *http.Request) {
	section, err := feed.ParseSection(r.PathValue("section"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if limit, err = strconv.Atoi(v); err != nil || limit < 0 {
			writeError(w, http.StatusBadRequest, errors.New("limit must be a non-negative integer"))
			return
		}
	}

	snap, err := s.home.Snapshot(section, limit)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *server) handleMore(w http.ResponseWriter, r *http.Request) {
	section, err := feed.ParseSection(r.PathValue("section"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}

	if err := s.home.LoadMore(r.Context(), section); err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, feed.ErrNotPaged) {
			status = http.StatusBadRequest
		}
		writeError(w, status, err)
		return
	}

	snap, err := s.home.Snapshot(section, 0)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

type refreshResponse struct {
	Month string `json:"month"`
	Error string `json:"error,omitempty"`
}

// handleRefresh reports partial failures in the body; sections that failed
// keep their previous data.
func (s *server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	err := s.home.Refresh(r.Context())

	resp := refreshResponse{Month: s.home.Month().String()}
	status := http.StatusOK
	if err != nil {
		resp.Error = err.Error()
		status = http.StatusBadGateway
	}
	writeJSON(w, status, resp)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// logEvents logs homepage events until the channel closes.
func logEvents(logger zerolog.Logger, events <-chan feed.Event) {
	for ev := range events {
		switch e := ev.(type) {
		case feed.SectionLoaded:
			logger.Debug().Str("section", string(e.Section)).Int("count", e.Count).Msg("Section loaded")
		case feed.SectionFailed:
			logger.Warn().Err(e.Err).Str("section", string(e.Section)).Msg("Section failed")
		case feed.Refreshed:
			logger.Info().Str("month", e.Month.String()).Int("failed", len(e.Failed)).Msg("Homepage refreshed")
		}
	}
}
