package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/Sternrassler/pokedex-proxy/pkg/auth"
	"github.com/Sternrassler/pokedex-proxy/pkg/favorites"
)

// pokemonID accepts both 25 and "25" on the wire.
type pokemonID string

func (p *pokemonID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*p = pokemonID(strings.TrimSpace(s))
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("pokemonId must be a string or an integer")
	}
	*p = pokemonID(strconv.Itoa(n))
	return nil
}

type favoriteRequest struct {
	PokemonID pokemonID `json:"pokemonId" validate:"required,numeric"`
}

// FavoritesResponse wraps a resolved favorites listing.
type FavoritesResponse struct {
	Favorites []favorites.Favorite `json:"favorites"`
}

// MessageResponse is returned by mutating favorites routes.
type MessageResponse struct {
	Message string `json:"message"`
}

// ListFavorites handles GET /user/favorites.
func (h *Handler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, r, auth.ErrUnauthorized)
		return
	}

	list, err := h.favorites.List(r.Context(), claims.Subject)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, FavoritesResponse{Favorites: list})
}

// AddFavorite handles POST /user/favorites.
func (h *Handler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, r, auth.ErrUnauthorized)
		return
	}
	var req favoriteRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	if _, err := h.favorites.Add(r.Context(), claims.Subject, string(req.PokemonID)); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, MessageResponse{
		Message: fmt.Sprintf("Pokémon %s agregado a favoritos.", req.PokemonID),
	})
}

// RemoveFavorite handles DELETE /user/favorites.
func (h *Handler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, r, auth.ErrUnauthorized)
		return
	}
	var req favoriteRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.favorites.Remove(r.Context(), claims.Subject, string(req.PokemonID)); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{
		Message: fmt.Sprintf("Pokémon %s eliminado de favoritos.", req.PokemonID),
	})
}
