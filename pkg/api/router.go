package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/Sternrassler/pokedex-proxy/pkg/auth"
	"github.com/Sternrassler/pokedex-proxy/pkg/logging"
	"github.com/Sternrassler/pokedex-proxy/pkg/metrics"
)

// RouterConfig holds the cross-cutting pieces of the router.
type RouterConfig struct {
	// Tokens validates bearer tokens on protected routes.
	Tokens *auth.TokenManager

	// CORSOrigins lists allowed origins; empty allows any.
	CORSOrigins []string

	// Logger receives the access log.
	Logger zerolog.Logger

	// Ready reports whether backing services are reachable. Nil means
	// always ready.
	Ready func(ctx context.Context) error
}

// NewRouter wires the routes. Static segments win over {id}, so
// /pokemon/types never reaches GetPokemon.
func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(logging.Middleware(cfg.Logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", logging.RequestIDHeader},
		ExposedHeaders: []string{logging.RequestIDHeader},
		MaxAge:         300,
	}))
	r.NotFound(notFound)

	r.Get("/health", health)
	r.Get("/ready", ready(cfg.Ready))
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/pokemon", func(r chi.Router) {
		r.Get("/", h.ListPokemon)
		r.Get("/types", h.ListTypes)
		r.Get("/types/{type}", h.GetByType)
		r.Get("/species/{id}", h.GetSpecies)
		r.Get("/evolution/{id}", h.GetEvolution)
		r.Get("/{id}", h.GetPokemon)
	})

	requireAuth := auth.Middleware(cfg.Tokens, writeError)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", h.Signup)
		r.Post("/login", h.Login)
		r.With(requireAuth).Get("/profile", h.Profile)
	})

	r.Route("/user", func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/favorites", h.ListFavorites)
		r.Post("/favorites", h.AddFavorite)
		r.Delete("/favorites", h.RemoveFavorite)
	})

	return r
}

func health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// readyTimeout bounds a readiness probe.
const readyTimeout = 2 * time.Second

func ready(check func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
			defer cancel()
			if err := check(ctx); err != nil {
				hlog.FromRequest(r).Warn().Err(err).Msg("Readiness check failed")
				http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		health(w, r)
	}
}
