// Package httptransport assembles the public HTTP surface: global middleware,
// the /api tree and the operational endpoints beside it.
package httptransport

import (
	"log/slog"
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"frontdesk/internal/health"
	"frontdesk/internal/platform/metrics"
	"frontdesk/internal/platform/middleware"
	dErrors "frontdesk/pkg/domain-errors"
	"frontdesk/pkg/platform/httputil"
	authmw "frontdesk/pkg/platform/middleware/auth"
	"frontdesk/pkg/platform/middleware/metadata"
	"frontdesk/pkg/platform/middleware/requesttime"
)

// Registrar mounts a module's routes on an already authenticated router.
type Registrar interface {
	Register(r chi.Router)
}

// AuthRegistrar mounts the /auth tree, which mixes public and
// authenticated endpoints.
type AuthRegistrar interface {
	Register(r chi.Router, requireAuth, limit func(http.Handler) http.Handler)
}

type Dependencies struct {
	Logger        *slog.Logger
	Metrics       *metrics.Metrics
	Gatherer      prometheus.Gatherer
	Authenticator authmw.Authenticator
	// RateLimit guards the credential endpoints. Nil disables it.
	RateLimit   func(http.Handler) http.Handler
	CORSOrigins []string

	Health *health.Handler
	Auth   AuthRegistrar
	// Protected modules are mounted under /api behind authentication.
	Protected []Registrar
}

// Route is one entry of the /api/docs listing.
type Route struct {
	Method string `json:"method"`
	Path   string `json:"path"`
}

func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID)
	r.Use(metadata.ClientMetadata)
	r.Use(requesttime.Middleware)
	r.Use(middleware.Logger(deps.Logger))
	if deps.Metrics != nil {
		r.Use(middleware.LatencyMiddleware(deps.Metrics))
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.HeaderRequestID},
		ExposedHeaders:   []string{middleware.HeaderRequestID, "Retry-After"},
		AllowCredentials: !allowsAny(deps.CORSOrigins),
		MaxAge:           300,
	}))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "Route not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusMethodNotAllowed, map[string]string{
			"error":             "method_not_allowed",
			"error_description": "Method not allowed",
		})
	})

	if deps.Health != nil {
		deps.Health.RegisterRoot(r)
	}
	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	limit := deps.RateLimit
	if limit == nil {
		limit = func(next http.Handler) http.Handler { return next }
	}
	requireAuth := authmw.RequireAuth(deps.Authenticator, deps.Logger)

	var routes []Route
	r.Route("/api", func(api chi.Router) {
		api.Get("/docs", func(w http.ResponseWriter, _ *http.Request) {
			httputil.WriteJSON(w, http.StatusOK, map[string]any{"routes": routes})
		})
		if deps.Health != nil {
			deps.Health.RegisterAPI(api)
		}
		if deps.Auth != nil {
			deps.Auth.Register(api, requireAuth, limit)
		}
		api.Group(func(protected chi.Router) {
			protected.Use(requireAuth)
			for _, m := range deps.Protected {
				m.Register(protected)
			}
		})
	})

	// Walk after every module is mounted so the listing is complete.
	routes = listRoutes(r)
	return r
}

func listRoutes(r chi.Routes) []Route {
	var routes []Route
	_ = chi.Walk(r, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		if !strings.HasPrefix(route, "/api") {
			return nil
		}
		routes = append(routes, Route{Method: method, Path: strings.TrimSuffix(strings.ReplaceAll(route, "/*/", "/"), "/*")})
		return nil
	})
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path != routes[j].Path {
			return routes[i].Path < routes[j].Path
		}
		return routes[i].Method < routes[j].Method
	})
	return routes
}

func allowsAny(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return len(origins) == 0
}
