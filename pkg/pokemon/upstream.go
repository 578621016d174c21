package pokemon

import (
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"github.com/Sternrassler/pokedex-proxy/pkg/client"
)

// Upstream resource shapes. Only the fields the service consumes are
// declared; everything it relies on is tagged required so a drifted payload
// fails at decode time instead of producing half-filled records.

var validate = validator.New(validator.WithRequiredStructEnabled())

type namedResource struct {
	Name string `json:"name" validate:"required"`
	URL  string `json:"url"`
}

type resourceLink struct {
	Name string `json:"name" validate:"required"`
	URL  string `json:"url" validate:"required"`
}

// GET /pokemon?limit=&offset=
type listResource struct {
	Count   *int           `json:"count" validate:"required,gte=0"`
	Results []resourceLink `json:"results" validate:"required,dive"`
}

// GET /pokemon/{id}
type pokemonResource struct {
	ID        int               `json:"id" validate:"required"`
	Name      string            `json:"name" validate:"required"`
	Height    int               `json:"height"`
	Weight    int               `json:"weight"`
	Types     []pokemonTypeSlot `json:"types" validate:"required,dive"`
	Abilities []abilitySlot     `json:"abilities" validate:"required,dive"`
	Stats     []statSlot        `json:"stats" validate:"required,dive"`
	Sprites   sprites           `json:"sprites"`
	Species   *namedResource    `json:"species"`
}

// speciesID returns the id of the species this pokemon belongs to. Alternate
// forms (ids above 10000) do not share their id with the species, so the
// species link wins when present.
func (p *pokemonResource) speciesID() string {
	if p.Species != nil {
		if id := ExtractID(p.Species.URL); id != "" {
			return id
		}
	}
	return strconv.Itoa(p.ID)
}

type pokemonTypeSlot struct {
	Slot int           `json:"slot"`
	Type namedResource `json:"type"`
}

type abilitySlot struct {
	Ability  namedResource `json:"ability"`
	IsHidden bool          `json:"is_hidden"`
}

type statSlot struct {
	BaseStat int           `json:"base_stat"`
	Stat     namedResource `json:"stat"`
}

type sprites struct {
	FrontDefault *string `json:"front_default"`
}

// GET /pokemon-species/{id}
type speciesResource struct {
	ID                int              `json:"id" validate:"required"`
	Name              string           `json:"name" validate:"required"`
	Color             *namedResource   `json:"color"`
	Habitat           *namedResource   `json:"habitat"`
	FlavorTextEntries []flavorTextItem `json:"flavor_text_entries" validate:"required,dive"`
	EvolutionChain    *chainReference  `json:"evolution_chain"`
}

type flavorTextItem struct {
	FlavorText string        `json:"flavor_text"`
	Language   namedResource `json:"language"`
}

type chainReference struct {
	URL string `json:"url" validate:"required"`
}

// GET /evolution-chain/{id}
type evolutionChainResource struct {
	ID    int       `json:"id" validate:"required"`
	Chain chainLink `json:"chain"`
}

type chainLink struct {
	Species   namedResource `json:"species"`
	EvolvesTo []chainLink   `json:"evolves_to" validate:"required,dive"`
}

// GET /type
type typeCatalogResource struct {
	Count   int             `json:"count"`
	Results []namedResource `json:"results" validate:"required,dive"`
}

// GET /type/{name}
type typeMembersResource struct {
	Name    string       `json:"name" validate:"required"`
	Pokemon []typeMember `json:"pokemon" validate:"required,dive"`
}

type typeMember struct {
	Pokemon resourceLink `json:"pokemon"`
}

// decode parses and validates an upstream payload. Any failure is reported
// as an unexpected upstream error for path.
func decode[T any](path string, data []byte) (*T, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, client.Unexpected(path, fmt.Errorf("decode: %w", err))
	}
	if err := validate.Struct(&v); err != nil {
		return nil, client.Unexpected(path, fmt.Errorf("validate: %w", err))
	}
	return &v, nil
}
