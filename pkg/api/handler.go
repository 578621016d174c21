// Package api exposes the pokedex services over HTTP.
package api

import (
	"context"

	"github.com/Sternrassler/pokedex-proxy/pkg/favorites"
	"github.com/Sternrassler/pokedex-proxy/pkg/pokemon"
	"github.com/Sternrassler/pokedex-proxy/pkg/user"
)

// PokemonService is the read side of the data-proxy.
// *pokemon.Service implements it.
type PokemonService interface {
	FindAll(ctx context.Context, limit, offset int) (*pokemon.ListResult, error)
	GetDetail(ctx context.Context, id string) (*pokemon.DetailRecord, error)
	GetSpecies(ctx context.Context, id string) (*pokemon.SpeciesRecord, error)
	GetEvolution(ctx context.Context, id string) (*pokemon.EvolutionTree, error)
	ListTypes(ctx context.Context) (*pokemon.TypeListing, error)
	GetByType(ctx context.Context, typeName string) (*pokemon.TypeFilterResult, error)
}

// AuthService is implemented by *auth.Service.
type AuthService interface {
	Signup(ctx context.Context, email, password string) (*user.User, error)
	Login(ctx context.Context, email, password string) (string, error)
	Profile(ctx context.Context, userID string) (*user.User, error)
}

// FavoritesService is implemented by *favorites.Service.
type FavoritesService interface {
	Add(ctx context.Context, userID, pokemonID string) (*user.User, error)
	Remove(ctx context.Context, userID, pokemonID string) error
	List(ctx context.Context, userID string) ([]favorites.Favorite, error)
}

// Handler serves the HTTP routes.
type Handler struct {
	pokemon   PokemonService
	auth      AuthService
	favorites FavoritesService
}

// NewHandler creates a handler.
func NewHandler(p PokemonService, a AuthService, f FavoritesService) *Handler {
	return &Handler{pokemon: p, auth: a, favorites: f}
}
