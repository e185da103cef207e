// Package server exposes the article service over HTTP.
package server

import (
	"compress/gzip"
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Kush-Singh-26/lectern/archive/config"
	"github.com/Kush-Singh-26/lectern/archive/service"
)

// Server wires the API routes onto an http.Server.
type Server struct {
	cfg    *config.Config
	svc    service.ArticleService
	logger *slog.Logger
	mux    *http.ServeMux
}

// New creates the server and registers all /api/v1 routes.
func New(cfg *config.Config, svc service.ArticleService, logger *slog.Logger) *Server {
	s := &Server{
		cfg:    cfg,
		svc:    svc,
		logger: logger,
		mux:    http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /api/v1/articles", s.handleListArticles)
	s.mux.HandleFunc("GET /api/v1/articles/pages", s.handleArticlePages)
	s.mux.HandleFunc("GET /api/v1/articles/{id}", s.handleGetArticle)
	s.mux.HandleFunc("GET /api/v1/articles/tags/{tag}", s.handleListByTag)
	s.mux.HandleFunc("GET /api/v1/articles/tags/{tag}/pages", s.handleTagPages)
	s.mux.HandleFunc("GET /api/v1/articles/keywords/{keyword}", s.handleListByKeyword)
	s.mux.HandleFunc("POST /api/v1/articles/index/refresh", s.handleRebuildIndex)
	s.mux.HandleFunc("POST /api/v1/articles/{id}/refresh", s.handleRefreshArticle)
	s.mux.HandleFunc("DELETE /api/v1/articles/cache", s.handleClearCache)
	s.mux.HandleFunc("GET /api/v1/articles/cache/stats", s.handleCacheStats)
	s.mux.HandleFunc("POST /api/v1/articles/cache/stats/reset", s.handleResetStats)
}

// Handler returns the full middleware-wrapped handler, exported for tests.
func (s *Server) Handler() http.Handler {
	return gzipHandler(s.mux.ServeHTTP)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:    s.cfg.ListenAddr(),
		Handler: s.Handler(),
	}

	go func() {
		<-ctx.Done()
		s.logger.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("HTTP server shutdown error", "error", err)
		}
	}()

	s.logger.Info("serving", "addr", httpServer.Addr)
	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// gzipResponseWriter wraps the underlying ResponseWriter to enable gzip
// compression.
type gzipResponseWriter struct {
	io.Writer
	http.ResponseWriter
}

func (w *gzipResponseWriter) Write(b []byte) (int, error) {
	return w.Writer.Write(b)
}

func (w *gzipResponseWriter) WriteHeader(code int) {
	w.Header().Del("Content-Length")
	w.ResponseWriter.WriteHeader(code)
}

func gzipHandler(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
			next(w, r)
			return
		}
		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		defer func() { _ = gz.Close() }()
		gzw := &gzipResponseWriter{Writer: gz, ResponseWriter: w}
		next(gzw, r)
	}
}
