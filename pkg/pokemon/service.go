// Package pokemon implements the data-proxy service: it fetches PokeAPI
// resources through a cache, shapes them into the frontend's records and
// caches derived artifacts under their own keys and TTLs.
package pokemon

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/Sternrassler/pokedex-proxy/pkg/cache"
	"github.com/Sternrassler/pokedex-proxy/pkg/logging"
)

// Fetcher retrieves raw upstream JSON. *client.Client implements it.
type Fetcher interface {
	Get(ctx context.Context, path string) ([]byte, error)
	ResolveURL(path string) string
}

// TTLPolicy holds the lifetime of each cached artifact.
type TTLPolicy struct {
	Default     time.Duration `koanf:"default" validate:"gt=0"`
	List        time.Duration `koanf:"list" validate:"gt=0"`
	RawDetail   time.Duration `koanf:"raw_detail" validate:"gt=0"`
	Detail      time.Duration `koanf:"detail" validate:"gt=0"`
	Species     time.Duration `koanf:"species" validate:"gt=0"`
	Evolution   time.Duration `koanf:"evolution" validate:"gt=0"`
	Types       time.Duration `koanf:"types" validate:"gt=0"`
	TypeMembers time.Duration `koanf:"type_members" validate:"gt=0"`
}

// DefaultTTLPolicy returns the production TTLs.
func DefaultTTLPolicy() TTLPolicy {
	return TTLPolicy{
		Default:     5 * time.Minute,
		List:        10 * time.Minute,
		RawDetail:   30 * time.Minute,
		Detail:      10 * time.Minute,
		Species:     30 * time.Minute,
		Evolution:   30 * time.Minute,
		Types:       30 * time.Minute,
		TypeMembers: 10 * time.Minute,
	}
}

// withDefaults fills zero durations from DefaultTTLPolicy.
func (p TTLPolicy) withDefaults() TTLPolicy {
	d := DefaultTTLPolicy()
	fill := func(v *time.Duration, def time.Duration) {
		if *v <= 0 {
			*v = def
		}
	}
	fill(&p.Default, d.Default)
	fill(&p.List, d.List)
	fill(&p.RawDetail, d.RawDetail)
	fill(&p.Detail, d.Detail)
	fill(&p.Species, d.Species)
	fill(&p.Evolution, d.Evolution)
	fill(&p.Types, d.Types)
	fill(&p.TypeMembers, d.TypeMembers)
	return p
}

// Config holds service configuration.
type Config struct {
	TTL TTLPolicy

	// Language is the preferred flavor text locale.
	Language string

	// FallbackLanguage is used when no entry exists in Language.
	FallbackLanguage string
}

// DefaultConfig returns Spanish flavor text with English fallback.
func DefaultConfig() Config {
	return Config{
		TTL:              DefaultTTLPolicy(),
		Language:         "es",
		FallbackLanguage: "en",
	}
}

// Service is the data-proxy. It holds no mutable state of its own; the
// cache store is the only shared state, so concurrent use is safe when the
// store is.
type Service struct {
	fetcher Fetcher
	store   cache.Store
	config  Config
	logger  zerolog.Logger
}

var flavorTextReplacer = strings.NewReplacer("\n", " ", "\f", " ")

// New creates a service reading through store.
func New(fetcher Fetcher, store cache.Store, cfg Config) *Service {
	if fetcher == nil {
		panic("pokemon: fetcher cannot be nil")
	}
	if store == nil {
		panic("pokemon: cache store cannot be nil")
	}
	cfg.TTL = cfg.TTL.withDefaults()
	if cfg.Language == "" {
		cfg.Language = "es"
	}
	if cfg.FallbackLanguage == "" {
		cfg.FallbackLanguage = "en"
	}
	return &Service{
		fetcher: fetcher,
		store:   store,
		config:  cfg,
		logger:  logging.NewLogger("pokemon-service"),
	}
}

// FindAll returns one page of the pokemon listing.
func (s *Service) FindAll(ctx context.Context, limit, offset int) (*ListResult, error) {
	path := fmt.Sprintf("/pokemon?limit=%d&offset=%d", limit, offset)
	data, err := fetchResource[listResource](ctx, s, path, s.config.TTL.List)
	if err != nil {
		return nil, err
	}

	results := make([]ListingEntry, len(data.Results))
	for i, r := range data.Results {
		results[i] = ListingEntry{ID: ExtractID(r.URL), Name: r.Name}
	}
	return &ListResult{Total: *data.Count, Results: results}, nil
}

// GetDetail returns the merged detail record for id (numeric id or name).
// The merged record is cached separately from the raw pokemon resource.
func (s *Service) GetDetail(ctx context.Context, id string) (*DetailRecord, error) {
	key := cache.Key("pokemon", "detail", id)
	if record, ok := cachedRecord[DetailRecord](ctx, s, key); ok {
		return record, nil
	}

	data, err := fetchResource[pokemonResource](ctx, s, "/pokemon/"+url.PathEscape(id), s.config.TTL.RawDetail)
	if err != nil {
		return nil, err
	}
	record := mapDetail(data)

	species, err := s.GetSpecies(ctx, data.speciesID())
	if err != nil {
		return nil, fmt.Errorf("species of pokemon %d: %w", data.ID, err)
	}
	evolution, err := s.EvolutionFromSpecies(ctx, species)
	if err != nil {
		return nil, fmt.Errorf("evolution of pokemon %d: %w", data.ID, err)
	}
	record.FlavorText = species.FlavorText
	record.Evolution = evolution

	s.storeRecord(ctx, key, record, s.config.TTL.Detail)
	return record, nil
}

// GetSpecies returns the species record for id.
func (s *Service) GetSpecies(ctx context.Context, id string) (*SpeciesRecord, error) {
	data, err := fetchResource[speciesResource](ctx, s, "/pokemon-species/"+url.PathEscape(id), s.config.TTL.Species)
	if err != nil {
		return nil, err
	}

	record := &SpeciesRecord{
		ID:         data.ID,
		Name:       data.Name,
		FlavorText: s.selectFlavorText(data.FlavorTextEntries),
	}
	if data.Color != nil {
		record.Color = data.Color.Name
	}
	if data.Habitat != nil {
		record.Habitat = data.Habitat.Name
	}
	if data.EvolutionChain != nil {
		record.EvolutionChainURL = data.EvolutionChain.URL
	}
	return record, nil
}

// GetEvolution returns the full evolution tree of the species id.
// Returns ErrEvolutionNotFound if the species has no chain reference.
func (s *Service) GetEvolution(ctx context.Context, id string) (*EvolutionTree, error) {
	species, err := s.GetSpecies(ctx, id)
	if err != nil {
		return nil, err
	}
	if species.EvolutionChainURL == "" {
		return nil, ErrEvolutionNotFound
	}

	chain, err := fetchResource[evolutionChainResource](ctx, s, species.EvolutionChainURL, s.config.TTL.Evolution)
	if err != nil {
		return nil, err
	}
	return &EvolutionTree{ID: chain.ID, Chain: mapChain(chain.Chain)}, nil
}

// EvolutionFromSpecies returns the pre-order evolution names of species, or
// an empty list when it has no chain. It reads the same cached chain
// resource as GetEvolution.
func (s *Service) EvolutionFromSpecies(ctx context.Context, species *SpeciesRecord) ([]string, error) {
	if species == nil || species.EvolutionChainURL == "" {
		return []string{}, nil
	}

	chain, err := fetchResource[evolutionChainResource](ctx, s, species.EvolutionChainURL, s.config.TTL.Evolution)
	if err != nil {
		return nil, err
	}
	return mapChain(chain.Chain).Names(), nil
}

// ListTypes returns the translated type catalog without the placeholder
// types "unknown" and "shadow".
func (s *Service) ListTypes(ctx context.Context) (*TypeListing, error) {
	data, err := fetchResource[typeCatalogResource](ctx, s, "/type", s.config.TTL.Types)
	if err != nil {
		return nil, err
	}

	types := make([]string, 0, len(data.Results))
	for _, r := range data.Results {
		if hiddenTypes[r.Name] {
			continue
		}
		types = append(types, TranslateType(r.Name))
	}
	return &TypeListing{Total: len(types), Types: types}, nil
}

// GetByType returns the pokemon of an upstream type name. Only the shaped
// result is cached; the raw type resource is not.
func (s *Service) GetByType(ctx context.Context, typeName string) (*TypeFilterResult, error) {
	key := cache.Key("pokemon", "type", typeName)
	if record, ok := cachedRecord[TypeFilterResult](ctx, s, key); ok {
		return record, nil
	}

	path := "/type/" + url.PathEscape(typeName)
	body, err := s.fetcher.Get(ctx, path)
	if err != nil {
		return nil, err
	}
	data, err := decode[typeMembersResource](path, body)
	if err != nil {
		return nil, err
	}

	record := &TypeFilterResult{
		Name:     data.Name,
		Pokemons: make([]ListingEntry, len(data.Pokemon)),
	}
	for i, m := range data.Pokemon {
		record.Pokemons[i] = ListingEntry{ID: ExtractID(m.Pokemon.URL), Name: m.Pokemon.Name}
	}

	s.storeRecord(ctx, key, record, s.config.TTL.TypeMembers)
	return record, nil
}

// selectFlavorText picks the first entry in the preferred language, else
// the first in the fallback language.
func (s *Service) selectFlavorText(entries []flavorTextItem) string {
	for _, lang := range []string{s.config.Language, s.config.FallbackLanguage} {
		for _, e := range entries {
			if e.Language.Name == lang {
				return flavorTextReplacer.Replace(e.FlavorText)
			}
		}
	}
	return ""
}

func mapDetail(data *pokemonResource) *DetailRecord {
	record := &DetailRecord{
		ID:        data.ID,
		Name:      data.Name,
		Height:    data.Height,
		Weight:    data.Weight,
		Types:     make([]string, len(data.Types)),
		Abilities: make([]Ability, len(data.Abilities)),
		Stats:     make([]Stat, len(data.Stats)),
		Sprite:    data.Sprites.FrontDefault,
		Evolution: []string{},
	}
	for i, t := range data.Types {
		record.Types[i] = TranslateType(t.Type.Name)
	}
	for i, a := range data.Abilities {
		record.Abilities[i] = Ability{Name: a.Ability.Name, Hidden: a.IsHidden}
	}
	for i, st := range data.Stats {
		record.Stats[i] = Stat{Name: st.Stat.Name, Base: st.BaseStat}
	}
	return record
}

// mapChain converts an upstream chain link into a fresh tree.
func mapChain(link chainLink) EvolutionNode {
	node := EvolutionNode{
		Name:      link.Species.Name,
		EvolvesTo: make([]EvolutionNode, len(link.EvolvesTo)),
	}
	for i, child := range link.EvolvesTo {
		node.EvolvesTo[i] = mapChain(child)
	}
	return node
}

// fetchResource reads an upstream resource through the cache. The raw body
// is cached under the resolved URL; a cached body that no longer decodes is
// treated as a miss.
func fetchResource[T any](ctx context.Context, s *Service, path string, ttl time.Duration) (*T, error) {
	key := cache.URLKey(s.fetcher.ResolveURL(path))

	if data, ok := s.lookup(ctx, key); ok {
		v, err := decode[T](path, data)
		if err == nil {
			return v, nil
		}
		s.logger.Warn().Err(err).Str("key", key).Msg("Discarding undecodable cache entry")
	}

	data, err := s.fetcher.Get(ctx, path)
	if err != nil {
		return nil, err
	}
	v, err := decode[T](path, data)
	if err != nil {
		return nil, err
	}

	s.put(ctx, key, data, ttl)
	return v, nil
}

// cachedRecord returns a shaped record stored by storeRecord.
func cachedRecord[T any](ctx context.Context, s *Service, key string) (*T, bool) {
	data, ok := s.lookup(ctx, key)
	if !ok {
		return nil, false
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("Discarding undecodable cache entry")
		return nil, false
	}
	return &v, true
}

func (s *Service) storeRecord(ctx context.Context, key string, record any, ttl time.Duration) {
	data, err := json.Marshal(record)
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("Failed to encode record for cache")
		return
	}
	s.put(ctx, key, data, ttl)
}

// lookup reads key; every store error counts as a miss.
func (s *Service) lookup(ctx context.Context, key string) ([]byte, bool) {
	data, err := s.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn().Err(err).Str("key", key).Msg("Cache read failed, fetching upstream")
		} else {
			s.logger.Debug().Str("key", key).Msg("Cache miss")
		}
		return nil, false
	}
	s.logger.Debug().Str("key", key).Msg("Cache hit")
	return data, true
}

// put writes key; failures are logged and otherwise ignored.
func (s *Service) put(ctx context.Context, key string, data []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = s.config.TTL.Default
	}
	if err := s.store.Set(ctx, key, data, ttl); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Dur("ttl", ttl).Msg("Cache write failed")
		return
	}
	s.logger.Debug().Str("key", key).Dur("ttl", ttl).Msg("Cached")
}
