package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/Sternrassler/pokedex-proxy/internal/config"
	"github.com/Sternrassler/pokedex-proxy/pkg/auth"
	"github.com/Sternrassler/pokedex-proxy/pkg/cache"
	"github.com/Sternrassler/pokedex-proxy/pkg/client"
	"github.com/Sternrassler/pokedex-proxy/pkg/favorites"
	"github.com/Sternrassler/pokedex-proxy/pkg/pokemon"
	"github.com/Sternrassler/pokedex-proxy/pkg/user"
)

// app holds the wired services and the resources to release on shutdown.
type app struct {
	cfg       *config.Config
	pokemon   *pokemon.Service
	auth      *auth.Service
	favorites *favorites.Service
	tokens    *auth.TokenManager

	readyChecks []func(ctx context.Context) error
	closers     []func() error
}

// Ready runs every registered readiness check.
func (a *app) Ready(ctx context.Context) error {
	for _, check := range a.readyChecks {
		if err := check(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// newPokemonApp wires only the data-proxy. Commands that never touch
// accounts use it directly.
func newPokemonApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{cfg: cfg}

	c, err := client.New(cfg.Upstream.ClientConfig())
	if err != nil {
		return nil, fmt.Errorf("create pokeapi client: %w", err)
	}

	store, err := a.openCache(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.pokemon = pokemon.New(c, store, cfg.Pokemon.ServiceConfig())
	return a, nil
}

// newApp wires the full service stack.
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a, err := newPokemonApp(ctx, cfg)
	if err != nil {
		return nil, err
	}

	users, err := a.openUserStore(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.tokens, err = auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenExpiry)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("create token manager: %w", err)
	}
	a.auth = auth.NewService(users, a.tokens, cfg.Auth.BcryptCost)
	a.favorites = favorites.NewService(users, a.pokemon, cfg.Batch)
	return a, nil
}

func (a *app) openCache(ctx context.Context) (cache.Store, error) {
	switch a.cfg.Cache.Backend {
	case config.CacheRedis:
		opts, err := redis.ParseURL(a.cfg.Cache.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		rc := redis.NewClient(opts)
		a.closers = append(a.closers, rc.Close)

		if err := rc.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		a.readyChecks = append(a.readyChecks, func(ctx context.Context) error {
			return rc.Ping(ctx).Err()
		})
		log.Info().Str("addr", opts.Addr).Msg("Connected to Redis")

		manager := cache.NewManager(rc)
		if a.cfg.Cache.Prefix != "" {
			manager = manager.WithPrefix(a.cfg.Cache.Prefix)
		}
		return manager, nil

	case config.CacheMemory:
		store, err := cache.NewMemoryStore(a.cfg.Cache.MemorySize)
		if err != nil {
			return nil, fmt.Errorf("create memory cache: %w", err)
		}
		log.Info().Int("size", a.cfg.Cache.MemorySize).Msg("Using in-memory cache")
		return store, nil

	default:
		return nil, fmt.Errorf("unknown cache backend %q", a.cfg.Cache.Backend)
	}
}

func (a *app) openUserStore(ctx context.Context) (user.Store, error) {
	switch a.cfg.Store.Backend {
	case config.StoreMemory:
		log.Warn().Msg("Using in-memory user store; accounts are lost on restart")
		return user.NewMemoryStore(), nil

	case config.StoreBadger:
		db, err := user.OpenBadger(a.cfg.Store.BadgerDir)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		log.Info().Str("dir", a.cfg.Store.BadgerDir).Msg("Using Badger user store")
		return user.NewBadgerStore(db), nil

	case config.StorePostgres:
		store, err := user.NewPostgresStore(ctx, a.cfg.Store.Postgres.ConnString())
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() error {
			store.Close()
			return nil
		})
		a.readyChecks = append(a.readyChecks, store.Ping)
		log.Info().Str("host", a.cfg.Store.Postgres.Host).Msg("Using Postgres user store")
		return store, nil

	default:
		return nil, fmt.Errorf("unknown user store %q", a.cfg.Store.Backend)
	}
}
