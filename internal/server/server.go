package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/uditb/resumesculpt/internal/pdftext"
	"github.com/uditb/resumesculpt/internal/server/middleware"
	"github.com/uditb/resumesculpt/internal/server/ratelimit"
)

// Options holds the assembled server dependencies.
type Options struct {
	Port           int
	AllowedOrigins []string
	ModelName      string

	DBClient     DBClient
	JWTService   *JWTService
	UserService  *UserService
	Normalizer   Normalizer
	Scorer       Scorer
	Serializer   Serializer
	Extractor    pdftext.Extractor
	Orchestrator Orchestrator
	QuotaGate    QuotaGate
	RateLimiter  *ratelimit.Limiter
	Logger       *zap.Logger
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	dbClient    DBClient
	jwtService  *JWTService
	userService *UserService
	authHandler *AuthHandler

	normalizer   Normalizer
	scorer       Scorer
	serializer   Serializer
	extractor    pdftext.Extractor
	orchestrator Orchestrator
	quotaGate    QuotaGate

	rateLimiter *ratelimit.Limiter
	logger      *zap.Logger
	origins     []string
	modelName   string
}

// New creates a server instance from pre-built dependencies.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	rateLimiter := opts.RateLimiter
	if rateLimiter == nil {
		rateLimiter = ratelimit.NewLimiter(ratelimit.LoadConfig())
	}
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	s := &Server{
		dbClient:     opts.DBClient,
		jwtService:   opts.JWTService,
		userService:  opts.UserService,
		normalizer:   opts.Normalizer,
		scorer:       opts.Scorer,
		serializer:   opts.Serializer,
		extractor:    opts.Extractor,
		orchestrator: opts.Orchestrator,
		quotaGate:    opts.QuotaGate,
		rateLimiter:  rateLimiter,
		logger:       logger,
		origins:      origins,
		modelName:    opts.ModelName,
	}
	s.authHandler = NewAuthHandler(opts.UserService, opts.JWTService, opts.DBClient)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", opts.Port),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // LLM-backed endpoints can take a while
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler builds the full route table with the middleware chain applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("POST /auth/signup", s.authHandler.Signup)
	mux.HandleFunc("POST /auth/login", s.authHandler.Login)

	authed := middleware.Auth(s.jwtService.AsTokenValidator())
	mux.Handle("GET /auth/me", authed(http.HandlerFunc(s.authHandler.Me)))
	mux.Handle("POST /upload-resume", authed(http.HandlerFunc(s.handleUploadResume)))
	mux.Handle("GET /my-resume", authed(http.HandlerFunc(s.handleMyResume)))
	mux.Handle("POST /calculate-ats", authed(http.HandlerFunc(s.handleCalculateATS)))
	mux.Handle("POST /calculate-ats-detailed", authed(http.HandlerFunc(s.handleCalculateATSDetailed)))
	mux.Handle("POST /optimize-resume", authed(http.HandlerFunc(s.handleOptimizeResume)))
	mux.Handle("GET /my-optimizations", authed(http.HandlerFunc(s.handleMyOptimizations)))

	return s.withRateLimit(s.withLogging(s.withCORS(mux)))
}

// Start begins listening for requests and blocks until shutdown.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		s.logger.Info("server starting", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Fatal("server error", zap.Error(err))
		}
	}()

	<-stop
	s.logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}

	s.logger.Info("server stopped")
	return nil
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "ResumeSculpt API",
		"docs":    "/health",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "healthy",
		"model_loaded": s.modelName != "",
	})
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	allowed := strings.Join(s.origins, ", ")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", allowed)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit rejects over-budget clients with 429
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := clientIP(r)
		if !s.rateLimiter.Allow(clientID, r.URL.Path, r.Method) {
			writeJSON(w, http.StatusTooManyRequests, map[string]string{
				"detail": "rate limit exceeded, try again later",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("remote", clientIP(r)),
			zap.Duration("duration", time.Since(start)))
	})
}

// clientIP extracts the client address, honoring X-Forwarded-For from a
// proxy.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if i := strings.IndexByte(xff, ','); i > 0 {
			return strings.TrimSpace(xff[:i])
		}
		return strings.TrimSpace(xff)
	}
	host := r.RemoteAddr
	if i := strings.LastIndexByte(host, ':'); i > 0 {
		host = host[:i]
	}
	return host
}
