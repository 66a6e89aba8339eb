// Package http serves the franchisor dashboard: an HTML page with
// location/year/period selectors, JSON series for the charts, an HTML
// overview partial and a CSV download.
package http

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"franchisor/internal/cache"
	"franchisor/internal/core"
	applog "franchisor/internal/log"
	"franchisor/internal/normalizer"
	"franchisor/internal/registry"
	appweb "franchisor/web"
)

type Server struct {
	http.Server
	templates *template.Template
	norm      *normalizer.Normalizer
	reg       *registry.Registry
	limiter   *ipRateLimiter
	logger    *applog.Logger

	// tableCache holds normalized tables per PeriodKey so flipping
	// between selectors does not refetch the same tab.
	tableCache *cache.LRUCache[core.TransactionTable]

	stopCacheCleanup chan struct{}
	shutdownOnce     sync.Once
}

// Options tune the server; zero values fall back to sensible defaults.
type Options struct {
	CacheTTL       time.Duration
	CacheSize      int
	RateLimitRPS   float64
	RateLimitBurst int
}

func (o Options) withDefaults() Options {
	if o.CacheTTL <= 0 {
		o.CacheTTL = 5 * time.Minute
	}
	if o.CacheSize <= 0 {
		o.CacheSize = 100
	}
	if o.RateLimitRPS <= 0 {
		o.RateLimitRPS = 5
	}
	if o.RateLimitBurst <= 0 {
		o.RateLimitBurst = 10
	}
	return o
}

// NewServer configures routes and templates, returning a ready-to-run server.
func NewServer(addr string, norm *normalizer.Normalizer, reg *registry.Registry, opts Options) *Server {
	opts = opts.withDefaults()
	r := mux.NewRouter()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: r,
		},
		norm:             norm,
		reg:              reg,
		limiter:          newIPRateLimiter(opts.RateLimitRPS, opts.RateLimitBurst),
		logger:           applog.New(applog.ComponentHTTP, slog.LevelInfo),
		tableCache:       cache.NewLRUCache[core.TransactionTable](opts.CacheSize, opts.CacheTTL),
		stopCacheCleanup: make(chan struct{}),
	}
	go s.startCacheCleanup()

	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		slog.Warn("Failed parsing templates", "error", err)
	}
	s.templates = t

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		r.PathPrefix("/static/").Handler(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600")
			static.ServeHTTP(w, req)
		}))
	} else {
		slog.Warn("Failed to mount embedded static FS", "error", err)
	}

	r.HandleFunc("/healthz", handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/readyz", handleReady).Methods(http.MethodGet)

	r.HandleFunc("/", s.withObservability(s.handleIndex)).Methods(http.MethodGet)
	r.HandleFunc("/api/selectors", s.withObservability(s.handleSelectors)).Methods(http.MethodGet)
	r.HandleFunc("/api/metrics", s.withObservability(s.handleMetrics)).Methods(http.MethodGet)
	r.HandleFunc("/api/trend", s.withObservability(s.handleTrend)).Methods(http.MethodGet)
	r.HandleFunc("/api/products", s.withObservability(s.handleProducts)).Methods(http.MethodGet)
	r.HandleFunc("/api/network", s.withObservability(s.handleNetwork)).Methods(http.MethodGet)
	r.HandleFunc("/ui/overview", s.withObservability(s.handleOverview)).Methods(http.MethodGet)
	r.HandleFunc("/export", s.withObservability(s.handleExport)).Methods(http.MethodGet)

	return s
}

func (s *Server) startCacheCleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if n := s.tableCache.CleanExpired(); n > 0 {
				slog.Debug("Cache cleanup completed", "entries_removed", n)
			}
		case <-s.stopCacheCleanup:
			return
		}
	}
}

// Shutdown stops the cleanup goroutines and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		close(s.stopCacheCleanup)
		s.limiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// getTable returns the normalized table for a key, serving from cache when
// possible. Only clean results are cached; errors always retry upstream.
func (s *Server) getTable(ctx context.Context, key core.PeriodKey) (core.TransactionTable, error) {
	ck := fmt.Sprintf("%s|%d|%s", key.Location, key.Year, key.Period)
	if table, found := s.tableCache.Get(ck); found {
		slog.DebugContext(ctx, "Table cache hit", "location", key.Location, "period", key.Period)
		return table, nil
	}
	table, err := s.norm.Normalize(ctx, key)
	if err != nil {
		return table, err
	}
	s.tableCache.Set(ck, table)
	return table, nil
}
