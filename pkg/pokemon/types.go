package pokemon

// ListingEntry is one row of a paginated listing.
type ListingEntry struct {
	// ID is the last path segment of the upstream resource URL.
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ListResult is a page of the pokemon listing.
type ListResult struct {
	// Total is the upstream count, independent of limit/offset.
	Total   int            `json:"total"`
	Results []ListingEntry `json:"results"`
}

// Ability of a pokemon.
type Ability struct {
	Name   string `json:"name"`
	Hidden bool   `json:"hidden"`
}

// Stat is a base stat of a pokemon.
type Stat struct {
	Name string `json:"name"`
	Base int    `json:"base"`
}

// DetailRecord is the merged detail view of a pokemon: the technical data
// from the pokemon resource plus flavor text and evolution names from its
// species.
type DetailRecord struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Height    int       `json:"height"`
	Weight    int       `json:"weight"`
	Types     []string  `json:"types"`
	Abilities []Ability `json:"abilities"`
	Stats     []Stat    `json:"stats"`

	// Sprite is null when upstream has no default front sprite.
	Sprite *string `json:"sprite"`

	FlavorText string   `json:"flavorText,omitempty"`
	Evolution  []string `json:"evolution"`
}

// SpeciesRecord holds the biological and context data of a species.
type SpeciesRecord struct {
	ID                int    `json:"id"`
	Name              string `json:"name"`
	Color             string `json:"color,omitempty"`
	Habitat           string `json:"habitat,omitempty"`
	FlavorText        string `json:"flavorText,omitempty"`
	EvolutionChainURL string `json:"evolutionChainUrl,omitempty"`
}

// EvolutionNode is one species in an evolution tree.
type EvolutionNode struct {
	Name string `json:"name"`

	// EvolvesTo is never nil; leaves carry an empty slice.
	EvolvesTo []EvolutionNode `json:"evolvesTo"`
}

// EvolutionTree is a rooted, ordered evolution chain.
type EvolutionTree struct {
	ID    int           `json:"id"`
	Chain EvolutionNode `json:"chain"`
}

// Names returns the pre-order list of names: root first, then each child's
// subtree in order.
func (n EvolutionNode) Names() []string {
	names := []string{}
	var walk func(EvolutionNode)
	walk = func(node EvolutionNode) {
		names = append(names, node.Name)
		for _, child := range node.EvolvesTo {
			walk(child)
		}
	}
	walk(n)
	return names
}

// TypeListing lists the translated type names.
type TypeListing struct {
	Total int      `json:"total"`
	Types []string `json:"types"`
}

// TypeFilterResult lists the pokemon of one type.
type TypeFilterResult struct {
	Name     string         `json:"name"`
	Pokemons []ListingEntry `json:"pokemons"`
}
