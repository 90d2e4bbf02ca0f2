// Package server exposes the nugraph pipeline over HTTP.
//
// Routes:
//
//	GET  /healthz
//	POST /v1/encode?service=<name>|format=<format>   body: diagram text
//	GET  /v1/packages/{id}?version=&framework=
//	GET  /v1/graph/{id}?version=&framework=&runtime=&format=
//
// Only package ids are accepted as graph sources, never local paths. Every
// request runs its own pipeline.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/nugraph/pkg/buildinfo"
	nerrors "github.com/matzehuels/nugraph/pkg/errors"
	"github.com/matzehuels/nugraph/pkg/pipeline"
)

// maxBodySize caps /v1/encode request bodies.
const maxBodySize = 4 << 20

// requestTimeout bounds a single request, restore included.
const requestTimeout = 5 * time.Minute

// Server serves the HTTP API.
type Server struct {
	runner   *pipeline.Runner
	defaults pipeline.Options
	logger   *log.Logger
}

// New creates a server. defaults provides the format, direction, ignore
// patterns and temp root of every graph request.
func New(runner *pipeline.Runner, defaults pipeline.Options, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Server{runner: runner, defaults: defaults, logger: logger}
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/encode", s.handleEncode)
		r.Get("/packages/{id}", s.handlePackage)
		r.Get("/graph/{id}", s.handleGraph)
	})
	return r
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      requestTimeout + 10*time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", "http://"+ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": buildinfo.Version})
}

type errorResponse struct {
	Error string       `json:"error"`
	Code  nerrors.Code `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
	}
	code := nerrors.GetCode(err)
	if code == "" {
		code = nerrors.ErrCodeInternal
	}
	writeJSON(w, status, errorResponse{Error: nerrors.UserMessage(err), Code: code})
}

// statusFor maps error codes to HTTP statuses.
func statusFor(err error) int {
	if nerrors.IsCancelled(err) {
		return http.StatusGatewayTimeout
	}
	switch nerrors.GetCode(err) {
	case nerrors.ErrCodeNotFound, nerrors.ErrCodePackageNotFound:
		return http.StatusNotFound
	case nerrors.ErrCodeInvalidInput, nerrors.ErrCodeInvalidPackage, nerrors.ErrCodeInvalidFormat:
		return http.StatusBadRequest
	case nerrors.ErrCodeRestoreFailed, nerrors.ErrCodeInvalidManifest:
		return http.StatusUnprocessableEntity
	case nerrors.ErrCodeNetwork:
		return http.StatusBadGateway
	case nerrors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}
