package pokemon

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/Sternrassler/pokedex-proxy/pkg/cache"
	"github.com/Sternrassler/pokedex-proxy/pkg/client"
)

const testBaseURL = "http://pokeapi.test/api/v2"

// fakeFetcher serves canned bodies keyed by resolved URL and counts calls.
type fakeFetcher struct {
	mu        sync.Mutex
	responses map[string]string
	failures  map[string]error
	calls     map[string]int
}

func newFakeFetcher() *fakeFetcher {
	f := &fakeFetcher{
		responses: make(map[string]string),
		failures:  make(map[string]error),
		calls:     make(map[string]int),
	}
	for path, body := range fixtures {
		f.responses[f.ResolveURL(path)] = body
	}
	return f
}

func (f *fakeFetcher) ResolveURL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return testBaseURL + path
}

func (f *fakeFetcher) Get(_ context.Context, path string) ([]byte, error) {
	url := f.ResolveURL(path)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[url]++

	if err, ok := f.failures[url]; ok {
		return nil, err
	}
	body, ok := f.responses[url]
	if !ok {
		return nil, &client.UpstreamError{
			Kind:       client.KindHTTPStatus,
			StatusCode: http.StatusNotFound,
			Path:       path,
			Message:    "error from external pokemon API",
		}
	}
	return []byte(body), nil
}

func (f *fakeFetcher) set(path, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[f.ResolveURL(path)] = body
}

func (f *fakeFetcher) fail(path string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[f.ResolveURL(path)] = err
}

func (f *fakeFetcher) callsTo(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[f.ResolveURL(path)]
}

func (f *fakeFetcher) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.calls {
		total += n
	}
	return total
}

func newTestService(t *testing.T) (*Service, *fakeFetcher, *cache.MemoryStore) {
	t.Helper()

	store, err := cache.NewMemoryStore(256)
	if err != nil {
		t.Fatalf("NewMemoryStore failed: %v", err)
	}
	fetcher := newFakeFetcher()
	return New(fetcher, store, DefaultConfig()), fetcher, store
}

var fixtures = map[string]string{
	"/pokemon?limit=3&offset=0": `{
		"count": 1302,
		"next": "` + testBaseURL + `/pokemon?offset=3&limit=3",
		"previous": null,
		"results": [
			{"name": "bulbasaur", "url": "` + testBaseURL + `/pokemon/1/"},
			{"name": "ivysaur", "url": "` + testBaseURL + `/pokemon/2/"},
			{"name": "venusaur", "url": "` + testBaseURL + `/pokemon/3/"}
		]
	}`,
	"/pokemon?limit=2&offset=1300": `{
		"count": 1302,
		"results": [
			{"name": "okidogi", "url": "` + testBaseURL + `/pokemon/1301/"},
			{"name": "munkidori", "url": "` + testBaseURL + `/pokemon/1302/"}
		]
	}`,
	"/pokemon/25": `{
		"id": 25,
		"name": "pikachu",
		"height": 4,
		"weight": 60,
		"types": [{"slot": 1, "type": {"name": "electric", "url": "` + testBaseURL + `/type/13/"}}],
		"abilities": [
			{"ability": {"name": "static"}, "is_hidden": false, "slot": 1},
			{"ability": {"name": "lightning-rod"}, "is_hidden": true, "slot": 3}
		],
		"stats": [
			{"base_stat": 35, "effort": 0, "stat": {"name": "hp"}},
			{"base_stat": 55, "effort": 0, "stat": {"name": "attack"}},
			{"base_stat": 90, "effort": 2, "stat": {"name": "speed"}}
		],
		"sprites": {"front_default": "https://img.test/25.png", "back_default": null}
	}`,
	"/pokemon-species/25": `{
		"id": 25,
		"name": "pikachu",
		"color": {"name": "yellow"},
		"habitat": {"name": "forest"},
		"flavor_text_entries": [
			{"flavor_text": "When several of\nthese POKéMON\fgather.", "language": {"name": "en"}},
			{"flavor_text": "Cuando se enfada,\nlibera energía\fal instante.", "language": {"name": "es"}},
			{"flavor_text": "Segundo texto.", "language": {"name": "es"}}
		],
		"evolution_chain": {"url": "` + testBaseURL + `/evolution-chain/10/"}
	}`,
	"/evolution-chain/10/": `{
		"id": 10,
		"chain": {
			"species": {"name": "pichu"},
			"evolves_to": [{
				"species": {"name": "pikachu"},
				"evolves_to": [{
					"species": {"name": "raichu"},
					"evolves_to": []
				}]
			}]
		}
	}`,
	"/pokemon/132": `{
		"id": 132,
		"name": "ditto",
		"height": 3,
		"weight": 40,
		"types": [{"slot": 1, "type": {"name": "normal"}}],
		"abilities": [{"ability": {"name": "limber"}, "is_hidden": false}],
		"stats": [{"base_stat": 48, "stat": {"name": "hp"}}],
		"sprites": {"front_default": null}
	}`,
	"/pokemon-species/132": `{
		"id": 132,
		"name": "ditto",
		"color": {"name": "purple"},
		"habitat": null,
		"flavor_text_entries": [
			{"flavor_text": "Capable of copying\nan enemy's genetic code.", "language": {"name": "en"}},
			{"flavor_text": "Il peut modifier\nsa structure.", "language": {"name": "fr"}}
		],
		"evolution_chain": null
	}`,
	"/pokemon-species/133": `{
		"id": 133,
		"name": "eevee",
		"flavor_text_entries": [],
		"evolution_chain": {"url": "` + testBaseURL + `/evolution-chain/67/"}
	}`,
	"/evolution-chain/67/": `{
		"id": 67,
		"chain": {
			"species": {"name": "eevee"},
			"evolves_to": [
				{"species": {"name": "vaporeon"}, "evolves_to": []},
				{"species": {"name": "jolteon"}, "evolves_to": []},
				{"species": {"name": "flareon"}, "evolves_to": []}
			]
		}
	}`,
	"/type": `{
		"count": 4,
		"results": [
			{"name": "fire", "url": "` + testBaseURL + `/type/10/"},
			{"name": "water", "url": "` + testBaseURL + `/type/11/"},
			{"name": "unknown", "url": "` + testBaseURL + `/type/10001/"},
			{"name": "shadow", "url": "` + testBaseURL + `/type/10002/"}
		]
	}`,
	"/type/fire": `{
		"name": "fire",
		"pokemon": [
			{"slot": 1, "pokemon": {"name": "charmander", "url": "` + testBaseURL + `/pokemon/4/"}},
			{"slot": 1, "pokemon": {"name": "charmeleon", "url": "` + testBaseURL + `/pokemon/5/"}}
		]
	}`,
}
