package rest

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/unrolled/secure"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type RouterConfig struct {
	ServiceName string
	// CORSAllowedOrigins is a comma-separated list; "*" allows any origin.
	CORSAllowedOrigins string
	// ContactRateLimit is the number of contact requests per minute per client IP.
	ContactRateLimit int
	// TrustProxyHeaders lets X-Forwarded-For and X-Real-IP replace the peer
	// address. Enable only behind a proxy that overwrites those headers.
	TrustProxyHeaders bool
	IsDevelopment     bool
}

// HealthChecker is any dependency that can be probed by /healthz.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to HealthChecker.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// NewRouter wires the listing routes behind the standard middleware chain:
// RequestID, optional RealIP, tracing, request logging with metrics, panic
// recovery, CORS and security headers.
func NewRouter(cfg RouterConfig, h *ListingHandler, checks map[string]HealthChecker, log *logger.Logger, m *metrics.MetricsManager) *chi.Mux {
	sec := secure.New(secure.Options{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: "default-src 'none'; frame-ancestors 'none'",
		IsDevelopment:         cfg.IsDevelopment,
	})

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	if cfg.TrustProxyHeaders {
		r.Use(middleware.RealIP)
	}
	r.Use(
		otelhttp.NewMiddleware(cfg.ServiceName),
		requestLogger(log.Named("HTTP"), m),
		recoverer(log.Named("HTTP")),
		corsMiddleware(cfg.CORSAllowedOrigins),
		sec.Handler,
	)

	r.Get("/healthz", healthHandler(checks))

	limit := cfg.ContactRateLimit
	if limit <= 0 {
		limit = 5
	}
	// Keyed on RemoteAddr, which RealIP rewrites only for trusted proxies.
	contactLimiter := httprate.Limit(limit, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			writeErrorKind(w, r, http.StatusTooManyRequests, kindRateLimited, "too many contact requests, try again later")
		}),
	)

	r.Route("/api/v1/listings", func(r chi.Router) {
		r.Get("/", h.ListAll)
		r.Get("/category", h.ListByCategory)
		r.Get("/title", h.ListByTitle)
		r.Get("/upload-url", h.UploadURL)
		r.Post("/", h.Create)
		r.Get("/{id}", h.GetByID)
		r.Delete("/{id}", h.Delete)
		r.With(contactLimiter).Post("/{id}/contact", h.ContactSeller)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeErrorKind(w, r, http.StatusNotFound, "route_not_found", "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeErrorKind(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	})
	return r
}

func corsMiddleware(allowedOrigins string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   parseOrigins(allowedOrigins),
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	})
}

func parseOrigins(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p := strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return []string{"http://localhost:5173"}
	}
	return out
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func healthHandler(checks map[string]HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := healthResponse{Status: "ok", Checks: make(map[string]string, len(checks))}
		for name, c := range checks {
			if err := c.Ping(ctx); err != nil {
				resp.Status = "degraded"
				resp.Checks[name] = "unreachable"
				continue
			}
			resp.Checks[name] = "ok"
		}

		status := http.StatusOK
		if resp.Status != "ok" {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, resp)
	}
}
