package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hallenjay/tokentribute/internal/domain"
	"github.com/hallenjay/tokentribute/internal/server/handler"
	"github.com/hallenjay/tokentribute/internal/server/middleware"
	"github.com/hallenjay/tokentribute/internal/server/ws"
)

// Config holds the HTTP server configuration.
type Config struct {
	Port        int
	CORSOrigins []string
	APIKey      string // if empty, authentication is disabled
	RateLimit   int    // requests per window per client IP; 0 disables
	RateWindow  time.Duration
}

// Handlers aggregates the HTTP handlers the server registers.
type Handlers struct {
	Health    *handler.HealthHandler
	Donations *handler.DonationHandler
	Profiles  *handler.ProfileHandler
	Talent    *handler.TalentHandler
	Messages  *handler.MessageHandler
}

// Server is the HTTP + WebSocket API server.
type Server struct {
	httpServer *http.Server
	mux        *http.ServeMux
	logger     *slog.Logger
}

// NewServer creates a Server with all routes registered on the ServeMux and
// the middleware chain (CORS, logging, rate limiting, auth) wired up.
// limiter may be nil; rate limiting is skipped without one.
func NewServer(cfg Config, handlers Handlers, wsHub *ws.Hub, limiter domain.RateLimiter, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	// Health check (no auth required).
	mux.HandleFunc("GET /api/health", handlers.Health.HealthCheck)

	// Donation ledger.
	mux.HandleFunc("GET /api/donations", handlers.Donations.List)
	mux.HandleFunc("POST /api/donations", handlers.Donations.Create)
	mux.HandleFunc("GET /api/donations/recipient/{username}", handlers.Donations.ListByRecipient)
	mux.HandleFunc("GET /api/donations/donor/{address}", handlers.Donations.ListByDonor)
	mux.HandleFunc("GET /api/stats", handlers.Donations.Stats)

	// Operator-wallet settlement.
	mux.HandleFunc("POST /api/donate", handlers.Donations.Donate)

	// Reputation profiles.
	mux.HandleFunc("GET /api/profiles", handlers.Profiles.Top)
	mux.HandleFunc("GET /api/profiles/search", handlers.Profiles.Search)
	mux.HandleFunc("GET /api/profiles/{username}", handlers.Profiles.Get)

	// Saved talent lists.
	mux.HandleFunc("POST /api/talent", handlers.Talent.Save)
	mux.HandleFunc("GET /api/talent/{founderAddress}", handlers.Talent.List)
	mux.HandleFunc("DELETE /api/talent/{id}", handlers.Talent.Delete)

	// Direct messages.
	mux.HandleFunc("POST /api/messages", handlers.Messages.Send)
	mux.HandleFunc("GET /api/messages/conversation/{addressA}/{addressB}", handlers.Messages.Conversation)
	mux.HandleFunc("GET /api/messages/inbox/{address}", handlers.Messages.Inbox)
	mux.HandleFunc("GET /api/messages/unread/{address}", handlers.Messages.Unread)
	mux.HandleFunc("PATCH /api/messages/{id}/read", handlers.Messages.MarkRead)
	mux.HandleFunc("DELETE /api/messages/{id}", handlers.Messages.Delete)

	// Live donation feed.
	if wsHub != nil {
		mux.HandleFunc("GET /ws", wsHub.HandleWS)
	}

	var h http.Handler = mux

	h = middleware.Auth(cfg.APIKey)(h)

	if limiter != nil && cfg.RateLimit > 0 {
		window := cfg.RateWindow
		if window <= 0 {
			window = time.Minute
		}
		h = middleware.RateLimit(limiter, cfg.RateLimit, window)(h)
	}

	h = middleware.Logging(logger)(h)

	h = corsMiddleware(cfg.CORSOrigins)(h)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: srv,
		mux:        mux,
		logger:     logger,
	}
}

// Start begins listening for HTTP requests. Blocks until the server errors
// or is shut down.
func (s *Server) Start() error {
	s.logger.Info("server: starting",
		slog.String("addr", s.httpServer.Addr),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: listen: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server, waiting for in-flight requests to
// complete within the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server: shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}

// corsMiddleware sets CORS headers for the allowed origins. An empty origin
// list allows all origins.
func corsMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			if origin != "" {
				allowed := len(allowedOrigins) == 0
				for _, o := range allowedOrigins {
					if strings.EqualFold(o, "*") || strings.EqualFold(o, origin) {
						allowed = true
						break
					}
				}

				if allowed {
					w.Header().Set("Access-Control-Allow-Origin", origin)
					w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
					w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-API-Key")
					w.Header().Set("Access-Control-Max-Age", "86400")
				}
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
