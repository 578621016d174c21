package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type listQuery struct {
	Limit  int `json:"limit" validate:"min=1,max=1000"`
	Offset int `json:"offset" validate:"min=0"`
}

// ListPokemon handles GET /pokemon?limit&offset.
func (h *Handler) ListPokemon(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 20)
	if err != nil {
		writeError(w, r, err)
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		writeError(w, r, err)
		return
	}
	q := listQuery{Limit: limit, Offset: offset}
	if err := validateStruct(q); err != nil {
		writeError(w, r, err)
		return
	}

	result, err := h.pokemon.FindAll(r.Context(), q.Limit, q.Offset)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// GetPokemon handles GET /pokemon/{id}.
func (h *Handler) GetPokemon(w http.ResponseWriter, r *http.Request) {
	detail, err := h.pokemon.GetDetail(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// GetSpecies handles GET /pokemon/species/{id}.
func (h *Handler) GetSpecies(w http.ResponseWriter, r *http.Request) {
	species, err := h.pokemon.GetSpecies(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, species)
}

// GetEvolution handles GET /pokemon/evolution/{id}.
func (h *Handler) GetEvolution(w http.ResponseWriter, r *http.Request) {
	tree, err := h.pokemon.GetEvolution(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tree)
}

// ListTypes handles GET /pokemon/types.
func (h *Handler) ListTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.pokemon.ListTypes(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, types)
}

// GetByType handles GET /pokemon/types/{type}.
func (h *Handler) GetByType(w http.ResponseWriter, r *http.Request) {
	result, err := h.pokemon.GetByType(r.Context(), chi.URLParam(r, "type"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
