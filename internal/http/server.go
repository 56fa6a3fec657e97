package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"lifedash/internal/cache"
	"lifedash/internal/record"
	"lifedash/internal/service"
)

// Options configures the server beyond its dependencies.
type Options struct {
	Addr         string
	SummaryTTL   time.Duration
	SummarySlots int
	Targets      record.NutritionTargets
}

// Server serves the JSON API: generic CRUD for every registered
// collection plus the derived views computed from raw records on read.
type Server struct {
	http.Server
	svc     *service.RecordService
	now     func() time.Time
	targets record.NutritionTargets

	rateLimiter *rateLimiter

	// Derived views are cached per collection; any mutation touching a
	// collection invalidates its views and its relatives' views.
	viewCache    *cache.LRUCache[[]byte]
	cacheManager *cache.Manager

	shutdownOnce sync.Once
}

// NewServer configures routes and returns a ready-to-run http.Server.
func NewServer(opts Options, svc *service.RecordService) *Server {
	if opts.SummaryTTL <= 0 {
		opts.SummaryTTL = 5 * time.Minute
	}
	if opts.SummarySlots <= 0 {
		opts.SummarySlots = 200
	}

	mux := http.NewServeMux()
	s := &Server{
		Server: http.Server{
			Addr:    opts.Addr,
			Handler: mux,
		},
		svc:          svc,
		now:          time.Now,
		targets:      opts.Targets,
		rateLimiter:  newRateLimiter(),
		viewCache:    cache.NewLRUCache[[]byte](opts.SummarySlots, opts.SummaryTTL),
		cacheManager: cache.NewManager(),
	}

	s.cacheManager.Register(s.viewCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	// Generic collection CRUD
	mux.HandleFunc("GET /api/collections", s.withMiddleware(s.handleListCollections))
	mux.HandleFunc("GET /api/{collection}", s.withMiddleware(s.handleList))
	mux.HandleFunc("POST /api/{collection}", s.withMiddleware(s.handleCreate))
	mux.HandleFunc("POST /api/{collection}/bulk", s.withMiddleware(s.handleBulkPatch))
	mux.HandleFunc("POST /api/{collection}/bulk-delete", s.withMiddleware(s.handleBulkDelete))
	mux.HandleFunc("GET /api/{collection}/{id}", s.withMiddleware(s.handleGet))
	mux.HandleFunc("PATCH /api/{collection}/{id}", s.withMiddleware(s.handlePatch))
	mux.HandleFunc("DELETE /api/{collection}/{id}", s.withMiddleware(s.handleDelete))

	// Derived views
	mux.HandleFunc("GET /api/vehicles/{id}/summary", s.withMiddleware(s.handleVehicleSummary))
	mux.HandleFunc("GET /api/inventory/low-stock", s.withMiddleware(s.handleLowStock))
	mux.HandleFunc("GET /api/inventory/by-location", s.withMiddleware(s.handleInventoryByLocation))
	mux.HandleFunc("GET /api/nutrition/day", s.withMiddleware(s.handleNutritionDay))
	mux.HandleFunc("GET /api/trips/{id}/countdown", s.withMiddleware(s.handleTripCountdown))
	mux.HandleFunc("GET /api/media/by-status", s.withMiddleware(s.handleMediaByStatus))
	mux.HandleFunc("GET /api/shopping/{list}/progress", s.withMiddleware(s.handleShoppingProgress))
	mux.HandleFunc("GET /api/reading/{book}/progress", s.withMiddleware(s.handleReadingProgress))
	mux.HandleFunc("GET /api/finance/month", s.withMiddleware(s.handleFinanceMonth))
	mux.HandleFunc("GET /api/household/renewals/upcoming", s.withMiddleware(s.handleUpcomingRenewals))
	mux.HandleFunc("GET /api/dashboard", s.withMiddleware(s.handleDashboard))

	return s
}

// WithClock overrides the time source, used by tests and by mains that
// want derived views pinned to a known instant.
func (s *Server) WithClock(now func() time.Time) *Server {
	s.now = now
	return s
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// withMiddleware adds security headers, rate limiting, request IDs, and
// request logging.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP)

		// Rate limit mutations only; reads stay cheap through the cache.
		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded",
				"client_ip", clientIP,
				"method", r.Method,
				"url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds(),
			"client_ip", clientIP)
	}
}

type contextKey string

const requestIDKey contextKey = "request_id"

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// invalidateViews drops cached derived views for a mutated collection
// and for its parent and children, whose views read these records too.
func (s *Server) invalidateViews(collection string) {
	s.viewCache.DeletePrefix(collection + ":")
	c, err := record.Lookup(collection)
	if err != nil {
		return
	}
	if c.Parent != "" {
		s.viewCache.DeletePrefix(c.Parent + ":")
	}
	for _, child := range c.Children {
		s.viewCache.DeletePrefix(child + ":")
	}
	s.viewCache.DeletePrefix("dashboard:")
}
