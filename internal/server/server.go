// Package server provides the HTTP API of the CV tailoring service.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonathan/cv-tailor/internal/config"
	"github.com/jonathan/cv-tailor/internal/convert"
	"github.com/jonathan/cv-tailor/internal/ingestion"
	"github.com/jonathan/cv-tailor/internal/llm"
	"github.com/jonathan/cv-tailor/internal/pipeline"
	"github.com/jonathan/cv-tailor/internal/server/middleware"
	"github.com/jonathan/cv-tailor/internal/server/ratelimit"
	"github.com/jonathan/cv-tailor/internal/types"
)

// JobExtractor fetches a job posting and returns its plain text.
type JobExtractor func(ctx context.Context, url string) (string, error)

// Deps are the collaborators a Server delegates to. A nil Rewriter means no model API key is
// configured; tailoring requests then fail with a configuration error.
type Deps struct {
	Rewriter  pipeline.Rewriter
	Converter convert.Converter
	Extractor JobExtractor
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	cfg         *config.Config
	pipeline    *pipeline.Pipeline
	extractor   JobExtractor
	rateLimiter *ratelimit.Limiter
	jwtService  *JWTService
	closers     []func() error
}

// New creates a server from cfg and explicit dependencies.
func New(cfg *config.Config, deps Deps) (*Server, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if deps.Converter == nil {
		return nil, fmt.Errorf("converter is required")
	}
	if deps.Extractor == nil {
		opts := cfg.IngestionOptions()
		deps.Extractor = func(ctx context.Context, url string) (string, error) {
			return ingestion.ExtractJobDescription(ctx, url, opts)
		}
	}

	s := &Server{
		cfg:       cfg,
		extractor: deps.Extractor,
		rateLimiter: ratelimit.NewLimiter(&ratelimit.Config{
			Enabled:         cfg.RateLimit.Enabled,
			DefaultLimit:    cfg.RateLimit.DefaultLimit,
			DefaultWindow:   cfg.RateLimit.DefaultWindow.Std(),
			CleanupInterval: cfg.RateLimit.CleanupInterval.Std(),
			Whitelist:       ratelimit.IPSet(cfg.RateLimit.Whitelist),
			Blacklist:       ratelimit.IPSet(cfg.RateLimit.Blacklist),
			EndpointConfigs: ratelimit.EndpointConfigs(
				cfg.RateLimit.TailorLimit, cfg.RateLimit.TailorWindow.Std(),
				cfg.RateLimit.ExtractLimit, cfg.RateLimit.ExtractWindow.Std(),
			),
		}),
	}
	if deps.Rewriter != nil {
		s.pipeline = pipeline.New(deps.Rewriter, deps.Converter, cfg.PipelineOptions())
	}
	if cfg.JWT.Enabled() {
		s.jwtService = NewJWTService(&cfg.JWT)
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.RequestTimeout.Std() + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// NewFromConfig wires the production dependencies: the model client of the configured provider, the
// rewrite generator and the conversion backend. A missing API key is logged, not fatal, so the
// extraction endpoint stays usable.
func NewFromConfig(ctx context.Context, cfg *config.Config) (*Server, error) {
	converter, err := convert.New(cfg.ConverterOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to create converter: %w", err)
	}

	var deps = Deps{Converter: converter}
	var closers []func() error

	settings, err := cfg.LLMSettings()
	if err != nil {
		return nil, err
	}
	client, err := llm.NewClient(ctx, settings, cfg.APIKey())
	switch {
	case err == nil:
		generator := cfg.NewGenerator(client)
		deps.Rewriter = generator
		closers = append(closers, client.Close)
		log.Printf("[SERVER] Using %s models (%s)", settings.Provider, settings.GetModel(generator.Tier))
	case errors.Is(err, llm.ErrMissingAPIKey):
		log.Printf("[SERVER] Warning: %s; /api/tailor-cv will fail until it is set", missingKeyMessage(cfg))
	default:
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	s, err := New(cfg, deps)
	if err != nil {
		return nil, err
	}
	s.closers = closers
	return s, nil
}

// Handler returns the routed handler with the middleware chain applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST "+ratelimit.PathExtract, s.handleExtractJob)
	mux.HandleFunc("POST "+ratelimit.PathTailor, s.handleTailorCV)

	var handler http.Handler = mux
	if s.jwtService != nil {
		handler = middleware.AuthMiddleware(s.jwtService.AsTokenValidator(), "/health")(handler)
	}
	return s.withRateLimit(s.withLogging(s.withCORS(handler)))
}

// Start begins listening for requests
func (s *Server) Start() error {
	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-stop:
	case err := <-errCh:
		s.Close()
		return fmt.Errorf("server error: %w", err)
	}
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.Close()
	log.Println("Server stopped")
	return nil
}

// Close stops the rate limiter and releases the model client.
func (s *Server) Close() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	for _, closeFn := range s.closers {
		if err := closeFn(); err != nil {
			log.Printf("[SERVER] close failed: %v", err)
		}
	}
	s.closers = nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	origin := s.cfg.CORSOrigin
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Expose-Headers", "Content-Disposition, X-Request-ID, X-Conversion-Fallback")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(s.extractClientID(r), r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, types.ErrorResponse{Error: message})
}

// errorDetailsResponse writes an error JSON response with details
func (s *Server) errorDetailsResponse(w http.ResponseWriter, status int, message, details string) {
	s.jsonResponse(w, status, types.ErrorResponse{Error: message, Details: details})
}

// extractClientID extracts the client identifier from the request.
// This uses the IP address from RemoteAddr; forwarded headers are not trusted.
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
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
	}
	if !info.ResetTime.IsZero() {
		response["reset_at"] = info.ResetTime.Format(time.RFC3339)
	}

	if info.RetryAfter > 0 {
		seconds := int(info.RetryAfter.Seconds()) + 1
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", fmt.Sprintf("%d", seconds))
	}

	log.Printf("[rate-limit] Rate limit exceeded: Limit=%d Remaining=%d Reset=%s",
		info.Limit, info.Remaining, info.ResetTime.Format(time.RFC3339))

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}

// missingKeyMessage names the environment variable the selected provider needs.
func missingKeyMessage(cfg *config.Config) string {
	if cfg.LLM.Provider == llm.ProviderGemini {
		return "GEMINI_API_KEY not configured"
	}
	return "ANTHROPIC_API_KEY not configured"
}
