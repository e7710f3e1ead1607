package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/job-recommender/internal/corpus"
	"github.com/jonathan/job-recommender/internal/engine"
	"github.com/jonathan/job-recommender/internal/logging"
	"github.com/jonathan/job-recommender/internal/scraper"
	"github.com/jonathan/job-recommender/internal/server/middleware"
	"github.com/jonathan/job-recommender/internal/server/ratelimit"
	"github.com/jonathan/job-recommender/internal/upskill"
)

// StoreOpener opens the corpus store that scraped postings are appended to.
type StoreOpener func(ctx context.Context) (corpus.Store, error)

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	engine      *engine.Engine
	scraper     scraper.Scraper
	openStore   StoreOpener
	upskill     *upskill.Service
	jwtService  *JWTService
	rateLimiter *ratelimit.Limiter
	validate    *validator.Validate
}

// Options holds server dependencies and settings.
type Options struct {
	Port           int
	Engine         *engine.Engine
	Scraper        scraper.Scraper
	Store          StoreOpener
	Upskill        *upskill.Service
	JWT            *JWTService // nil leaves /fetch_new_jobs unauthenticated
	RateLimit      *ratelimit.Config
	AllowedOrigins []string
}

// New creates a new server instance
func New(opts Options) (*Server, error) {
	if opts.Engine == nil {
		return nil, fmt.Errorf("server requires an engine")
	}
	if opts.Store == nil {
		return nil, fmt.Errorf("server requires a corpus store")
	}

	s := &Server{
		engine:      opts.Engine,
		scraper:     opts.Scraper,
		openStore:   opts.Store,
		upskill:     opts.Upskill,
		jwtService:  opts.JWT,
		rateLimiter: ratelimit.NewLimiter(opts.RateLimit),
		validate:    newValidator(),
	}
	if s.scraper == nil {
		s.scraper = scraper.Noop{}
	}
	if s.upskill == nil {
		s.upskill = upskill.New(nil)
	}

	fetchJobs := http.Handler(http.HandlerFunc(s.handleFetchNewJobs))
	if s.jwtService != nil {
		fetchJobs = middleware.RequireToken(s.jwtService.AsTokenValidator())(fetchJobs)
	} else {
		slog.Warn("ADMIN_JWT_SECRET not set, /fetch_new_jobs is unauthenticated")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /process_resume", s.handleProcessResume)
	mux.HandleFunc("POST /recommend_jobs", s.handleRecommendJobs)
	mux.HandleFunc("POST /upskill_suggestions", s.handleUpskillSuggestions)
	mux.Handle("POST /fetch_new_jobs", fetchJobs)
	mux.HandleFunc("GET /health", s.handleHealth)

	port := opts.Port
	if port == 0 {
		port = 8000
	}
	s.httpServer = &http.Server{
		Addr: fmt.Sprintf(":%d", port),
		Handler: middleware.Chain(mux,
			middleware.RequestID,
			middleware.Logger,
			middleware.Recover,
			middleware.CORS(opts.AllowedOrigins),
			s.withRateLimit,
		),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // scraping and model calls are slow
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Handler returns the root handler with all middleware applied.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Start listens until ctx is canceled or SIGINT/SIGTERM arrives, then shuts
// down gracefully.
func (s *Server) Start(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", slog.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			s.release()
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.release()
	slog.Info("server stopped")
	return nil
}

func (s *Server) release() {
	s.rateLimiter.Stop()
	if err := s.upskill.Close(); err != nil {
		slog.Warn("failed to close model client", slog.Any("error", err))
	}
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := s.extractClientID(r)

		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, r, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", slog.Any("error", err))
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"detail": message})
}

// failure logs err and responds with its mapped status. message, when not
// empty, replaces the error text in the response.
func (s *Server) failure(w http.ResponseWriter, r *http.Request, err error, message string) {
	status := HTTPStatus(err)
	if message == "" {
		message = err.Error()
	}
	if status >= http.StatusInternalServerError {
		slog.Error("request failed",
			slog.String("path", r.URL.Path),
			slog.Any("error", err),
			slog.String("request_id", logging.RequestID(r.Context())))
	}
	s.errorResponse(w, status, message)
}

// extractClientID extracts the client identifier from the request.
// X-Forwarded-For is not trusted.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, r *http.Request, info ratelimit.Info) {
	response := map[string]interface{}{
		"detail":    "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		retryAfter := int(info.RetryAfter.Round(time.Second).Seconds())
		if retryAfter < 1 {
			retryAfter = 1
		}
		response["retry_after"] = retryAfter
		w.Header().Set("Retry-After", fmt.Sprintf("%d", retryAfter))
	}

	slog.Warn("rate limit exceeded",
		slog.String("path", r.URL.Path),
		slog.Int("limit", info.Limit),
		slog.Time("reset", info.ResetTime),
		slog.String("request_id", logging.RequestID(r.Context())))

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
