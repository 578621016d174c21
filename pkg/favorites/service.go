// Package favorites manages a user's list of favorite pokemon ids.
package favorites

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/rs/zerolog"

	"github.com/Sternrassler/pokedex-proxy/pkg/batch"
	"github.com/Sternrassler/pokedex-proxy/pkg/client"
	"github.com/Sternrassler/pokedex-proxy/pkg/logging"
	"github.com/Sternrassler/pokedex-proxy/pkg/pokemon"
	"github.com/Sternrassler/pokedex-proxy/pkg/user"
)

// ErrInvalidPokemon is returned by Add when upstream does not know the id.
var ErrInvalidPokemon = errors.New("invalid pokemon id")

// Pokedex is the subset of the data-proxy the favorites need.
// *pokemon.Service implements it.
type Pokedex interface {
	GetSpecies(ctx context.Context, id string) (*pokemon.SpeciesRecord, error)
	GetDetail(ctx context.Context, id string) (*pokemon.DetailRecord, error)
}

// Favorite is one resolved entry of a favorites listing.
type Favorite struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Sprite *string `json:"sprite"`
}

// Service adds, removes and lists favorites.
//
// Add and Remove are read-modify-write against user.Store and are not
// serialized: two concurrent changes for the same user can lose one update.
type Service struct {
	users   user.Store
	pokedex Pokedex
	batch   batch.Config
	logger  zerolog.Logger
}

// NewService creates a favorites service.
func NewService(users user.Store, pokedex Pokedex, cfg batch.Config) *Service {
	return &Service{
		users:   users,
		pokedex: pokedex,
		batch:   cfg,
		logger:  logging.NewLogger("favorites"),
	}
}

// Add appends pokemonID to the user's favorites after validating it
// upstream. Adding an existing favorite is a no-op.
//
// The read-modify-write is not atomic: two concurrent Adds for the same user
// can lose one update.
func (s *Service) Add(ctx context.Context, userID, pokemonID string) (*user.User, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if _, err := s.pokedex.GetSpecies(ctx, pokemonID); err != nil {
		if client.IsNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidPokemon, pokemonID)
		}
		return nil, fmt.Errorf("validate pokemon %s: %w", pokemonID, err)
	}

	if u.HasFavorite(pokemonID) {
		return u, nil
	}

	u.Favorites = append(u.Favorites, pokemonID)
	if err := s.users.Update(ctx, u); err != nil {
		return nil, fmt.Errorf("save favorites: %w", err)
	}

	s.logger.Info().Str("user_id", userID).Str("pokemon_id", pokemonID).Msg("Favorite added")
	return u, nil
}

// Remove drops pokemonID from the user's favorites. An unknown user is
// silently ignored.
func (s *Service) Remove(ctx context.Context, userID, pokemonID string) error {
	u, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, user.ErrUserNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	u.Favorites = slices.DeleteFunc(u.Favorites, func(id string) bool { return id == pokemonID })
	if err := s.users.Update(ctx, u); err != nil {
		return fmt.Errorf("save favorites: %w", err)
	}
	return nil
}

// List resolves every favorite to its name and sprite. Ids that cannot be
// resolved fall back to a placeholder name and a null sprite; order is kept.
func (s *Service) List(ctx context.Context, userID string) ([]Favorite, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(u.Favorites) == 0 {
		return []Favorite{}, nil
	}

	results := batch.FetchAll(ctx, u.Favorites, s.batch, s.pokedex.GetDetail)

	favorites := make([]Favorite, len(results))
	for i, r := range results {
		if r.Err != nil {
			s.logger.Warn().Err(r.Err).Str("pokemon_id", r.Key).Msg("Favorite could not be resolved")
			favorites[i] = Favorite{ID: r.Key, Name: fmt.Sprintf("Pokémon #%s", r.Key)}
			continue
		}
		favorites[i] = Favorite{ID: r.Key, Name: r.Value.Name, Sprite: r.Value.Sprite}
	}
	return favorites, nil
}
