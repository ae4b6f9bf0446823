// Package devserver exposes the widget pipeline over HTTP for development:
// compiled artifacts by hash, layout previews, an on-demand compile endpoint,
// and the hot reload websocket.
package devserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/weft-ui/weft/internal/compiler"
	"github.com/weft-ui/weft/internal/layout"
	"github.com/weft-ui/weft/internal/watch"
)

// Config holds dev server settings.
type Config struct {
	Host string
	Port int
}

// Server is the development HTTP server.
type Server struct {
	config    Config
	compiler  *compiler.Compiler
	artifacts *compiler.ArtifactStore
	reload    *watch.ReloadServer
	logger    *zap.Logger
	http      *http.Server
}

// New creates a dev server over the given pipeline pieces. reload may be nil
// when hot reload is disabled.
func New(config Config, c *compiler.Compiler, artifacts *compiler.ArtifactStore, reload *watch.ReloadServer, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		config:    config,
		compiler:  c,
		artifacts: artifacts,
		reload:    reload,
		logger:    logger,
	}
	s.http = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler: s.routes(),
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestLogger)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Get("/artifacts/{hash}", s.handleArtifact)
	r.Get("/layouts/{preset}", s.handleLayout)
	r.Post("/compile", s.handleCompile)
	if s.reload != nil {
		r.Get("/ws", s.reload.HandleWebSocket)
	}

	return r
}

// ListenAndServe blocks serving HTTP until Shutdown.
func (s *Server) ListenAndServe() error {
	s.logger.Info("dev server listening", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.reload != nil {
		s.reload.Close()
	}
	return s.http.Shutdown(ctx)
}

func (s *Server) handleArtifact(w http.ResponseWriter, r *http.Request) {
	hash := strings.TrimSuffix(chi.URLParam(r, "hash"), ".mjs")
	code, err := s.artifacts.Code(hash)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/javascript; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.Write(code)
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "preset")
	preset, ok := layout.GetPreset(name)
	if !ok {
		http.Error(w, fmt.Sprintf("unknown preset %q", name), http.StatusNotFound)
		return
	}
	mgr := layout.NewBrowserLayoutManager(preset, layout.BrowserOptions{})
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(mgr.Render()))
}

// compileRequest mirrors the external compile interface.
type compileRequest struct {
	Source        compiler.WidgetSource  `json:"source"`
	TargetOptions compiler.TargetOptions `json:"target_options"`
}

func (s *Server) handleCompile(w http.ResponseWriter, r *http.Request) {
	var req compileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid compile request: %v", err), http.StatusBadRequest)
		return
	}
	if req.TargetOptions.Platform == "" {
		req.TargetOptions.Platform = compiler.PlatformBrowser
	}

	result := s.compiler.Compile(req.Source, req.TargetOptions)
	if result.OK() && s.artifacts != nil {
		if err := s.artifacts.Save(result); err != nil {
			s.logger.Warn("failed to persist artifact", zap.Error(err))
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if !result.OK() {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}
	json.NewEncoder(w).Encode(result)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("took", time.Since(start)))
	})
}
