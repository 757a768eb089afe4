package server

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"parcel-tax-scraper/config"
	"parcel-tax-scraper/scraper"
)

//go:embed templates/*.html
var templateFS embed.FS

// RequestLog records each lookup the server runs.
type RequestLog interface {
	StartRequest(ctx context.Context, account, source string) (uuid.UUID, error)
	FinishRequest(ctx context.Context, id uuid.UUID, lookupErr error) error
}

// Server is the HTTP surface of the parcel lookup.
type Server struct {
	cfg      config.ServerConfig
	searcher scraper.Searcher
	requests RequestLog
	views    *template.Template
	title    string
}

// Option configures a Server.
type Option func(*Server)

// WithRequestLog records every lookup in l.
func WithRequestLog(l RequestLog) Option {
	return func(s *Server) { s.requests = l }
}

// WithTitle sets the heading of the test landing page.
func WithTitle(title string) Option {
	return func(s *Server) { s.title = title }
}

// New creates a Server that answers lookups with searcher.
func New(cfg config.ServerConfig, searcher scraper.Searcher, opts ...Option) (*Server, error) {
	views, err := template.New("views").Funcs(template.FuncMap{
		"join": joinNames,
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, eris.Wrap(err, "server: parse templates")
	}

	s := &Server{
		cfg:      cfg,
		searcher: searcher,
		views:    views,
		title:    "Parcel Tax Scraper Test",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Handler returns the routed handler with the middleware stack applied.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Get("/health", s.handleHealth)
	r.Post("/search", s.handleSearch)
	r.Post("/test", s.handleSearch)
	r.Post("/test-api", s.handleSearch)

	return r
}

// ListenAndServe serves until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := s.httpServer()

	errCh := make(chan error, 1)
	go func() {
		zap.L().Info("starting server", zap.Int("port", s.cfg.Port))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server: listen")
		}
		return nil
	case <-ctx.Done():
	}

	zap.L().Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return eris.Wrap(err, "server: shutdown")
	}
	return nil
}

func (s *Server) httpServer() *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		Handler:      s.Handler(),
		ReadTimeout:  time.Duration(s.cfg.ReadTimeoutSecs) * time.Second,
		WriteTimeout: s.cfg.WriteTimeout(),
	}
}

// requestID takes the caller's X-Request-Id or a new UUID, stores it where
// middleware.GetReqID finds it and echoes it back.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(middleware.RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(middleware.RequestIDHeader, id)
		ctx := context.WithValue(r.Context(), middleware.RequestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		zap.L().Info("http request",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}
