// Package api exposes the artifact lifecycle over HTTP. Reads are public;
// mutations sit behind the bearer-token middleware.
package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"hangar/internal/artifact"
	"hangar/internal/auth"
	"hangar/pkg/db"
)

const defaultMaxUploadBytes = 256 << 20

// Config controls runtime behaviour for the API handlers.
type Config struct {
	AllowedOrigins []string
	MaxUploadBytes int64
}

// API wires the artifact service, authenticator, and database handle
// behind the HTTP handlers.
type API struct {
	apps   *artifact.Service
	auth   *auth.Authenticator
	db     *pgxpool.Pool
	config Config
}

// New initialises the API layer with sane defaults applied to the
// provided configuration. The pool may be nil; the stats endpoint then
// reports a failed dependency.
func New(apps *artifact.Service, authn *auth.Authenticator, pool *pgxpool.Pool, cfg Config) (*API, error) {
	if apps == nil {
		return nil, errors.New("artifact service is required")
	}
	if authn == nil {
		return nil, errors.New("authenticator is required")
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = defaultMaxUploadBytes
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}

	return &API{
		apps:   apps,
		auth:   authn,
		db:     pool,
		config: cfg,
	}, nil
}

// Routes constructs the chi router containing all API endpoints.
func (a *API) Routes() (http.Handler, error) {
	if a == nil {
		return nil, errors.New("nil api")
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: a.config.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         int((10 * time.Minute).Seconds()),
	}))
	r.Use(httprate.Limit(100, time.Minute))

	r.Get("/healthz", a.handleHealthz)
	r.Get("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	r.Method("GET", "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/login", a.handleLogin)
		r.Get("/apps", a.handleListApps)
		r.Get("/apps/{id}", a.handleGetApp)
		r.Get("/apps/{id}/download", a.handleDownloadApp)
		r.Get("/stats", a.handleStats)

		r.Group(func(r chi.Router) {
			r.Use(a.auth.Require)
			r.Post("/apps", a.handlePublishApp)
			r.Patch("/apps/{id}", a.handleReplaceApp)
			r.Delete("/apps/{id}", a.handleRemoveApp)
		})
	})

	return r, nil
}

func (a *API) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if a.db != nil {
		if err := db.Ping(r.Context(), a.db); err != nil {
			respondError(w, http.StatusServiceUnavailable, err)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
