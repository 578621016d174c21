package cache

import (
	"net/url"
	"strings"
)

// URLKey returns the cache key for an upstream resource URL.
// Query parameters are re-encoded in sorted order so that
// "?offset=0&limit=20" and "?limit=20&offset=0" share one entry.
// Unparseable input is used verbatim.
//
// Example:
//
//	https://pokeapi.co/api/v2/pokemon?limit=20&offset=0
func URLKey(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.RawQuery == "" {
		return rawURL
	}
	// Values.Encode sorts by key.
	u.RawQuery = u.Query().Encode()
	return u.String()
}

// Key joins parts into a synthetic key.
//
// Example:
//
//	Key("pokemon", "detail", "25") // pokemon:detail:25
func Key(parts ...string) string {
	cleaned := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			cleaned = append(cleaned, p)
		}
	}
	return strings.Join(cleaned, ":")
}
