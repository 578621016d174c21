// Package testutil provides testing utilities for the PokeAPI proxy.
package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"
)

// ListingCount is the total reported by the mock listing resource.
const ListingCount = 1302

// MockResponse defines the behavior for a mock endpoint response.
type MockResponse struct {
	StatusCode int
	Body       string
	Delay      time.Duration
}

// MockPokeAPI is a configurable mock PokeAPI server. Resource paths are
// served at the server root, so URL() is the client base URL.
type MockPokeAPI struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]func(w http.ResponseWriter, r *http.Request)

	// Tracking
	requestCount  int
	pathCounts    map[string]int
	lastUserAgent string
}

// NewMockPokeAPI starts a mock server with the default fixtures.
func NewMockPokeAPI() *MockPokeAPI {
	mock := &MockPokeAPI{
		handlers:   make(map[string]func(w http.ResponseWriter, r *http.Request)),
		pathCounts: make(map[string]int),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimSuffix(r.URL.Path, "/")

		mock.mu.Lock()
		mock.requestCount++
		mock.pathCounts[path]++
		mock.lastUserAgent = r.Header.Get("User-Agent")
		handler, exists := mock.handlers[path]
		mock.mu.Unlock()

		if exists {
			handler(w, r)
			return
		}
		mock.defaultHandler(w, r, path)
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockPokeAPI) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockPokeAPI) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockPokeAPI) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount = 0
	m.pathCounts = make(map[string]int)
	m.lastUserAgent = ""
}

// SetHandler overrides the handler for a path (without trailing slash).
func (m *MockPokeAPI) SetHandler(path string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[strings.TrimSuffix(path, "/")] = handler
}

// SetResponse configures a simple response for a path.
func (m *MockPokeAPI) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			time.Sleep(resp.Delay)
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockPokeAPI) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.requestCount
}

// GetPathCount returns the number of requests for path.
func (m *MockPokeAPI) GetPathCount(path string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pathCounts[strings.TrimSuffix(path, "/")]
}

// LastUserAgent returns the User-Agent of the most recent request.
func (m *MockPokeAPI) LastUserAgent() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastUserAgent
}

// defaultHandler serves the canned fixtures.
func (m *MockPokeAPI) defaultHandler(w http.ResponseWriter, r *http.Request, path string) {
	var body string
	switch {
	case path == "/pokemon":
		body = m.listing(r)
	default:
		fixture, ok := fixtures[path]
		if !ok {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte("Not Found"))
			return
		}
		body = strings.ReplaceAll(fixture, "{{base}}", m.URL())
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(body))
}

// listing generates a page of ListingCount numbered pokemon.
func (m *MockPokeAPI) listing(r *http.Request) string {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit < 0 {
		limit = 20
	}
	offset, err := strconv.Atoi(r.URL.Query().Get("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}

	var results []string
	for id := offset + 1; id <= offset+limit && id <= ListingCount; id++ {
		results = append(results, fmt.Sprintf(`{"name": "pokemon-%d", "url": "%s/pokemon/%d/"}`, id, m.URL(), id))
	}
	return fmt.Sprintf(`{"count": %d, "next": null, "previous": null, "results": [%s]}`,
		ListingCount, strings.Join(results, ","))
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"error": "Internal server error"}`,
	}
}

// NewNotFoundResponse creates a 404 response.
func NewNotFoundResponse() MockResponse {
	return MockResponse{StatusCode: http.StatusNotFound, Body: "Not Found"}
}

// fixtures are keyed by path without trailing slash. "{{base}}" is replaced
// by the server URL so that embedded resource URLs point back at the mock.
var fixtures = map[string]string{
	"/pokemon/25": `{
		"id": 25, "name": "pikachu", "height": 4, "weight": 60,
		"types": [{"slot": 1, "type": {"name": "electric", "url": "{{base}}/type/13/"}}],
		"abilities": [
			{"ability": {"name": "static", "url": "{{base}}/ability/9/"}, "is_hidden": false, "slot": 1},
			{"ability": {"name": "lightning-rod", "url": "{{base}}/ability/31/"}, "is_hidden": true, "slot": 3}
		],
		"stats": [
			{"base_stat": 35, "effort": 0, "stat": {"name": "hp"}},
			{"base_stat": 55, "effort": 0, "stat": {"name": "attack"}},
			{"base_stat": 40, "effort": 0, "stat": {"name": "defense"}},
			{"base_stat": 90, "effort": 2, "stat": {"name": "speed"}}
		],
		"sprites": {"front_default": "https://raw.githubusercontent.com/PokeAPI/sprites/master/sprites/pokemon/25.png"}
	}`,
	"/pokemon/pikachu": `{
		"id": 25, "name": "pikachu", "height": 4, "weight": 60,
		"types": [{"slot": 1, "type": {"name": "electric"}}],
		"abilities": [{"ability": {"name": "static"}, "is_hidden": false}],
		"stats": [{"base_stat": 35, "stat": {"name": "hp"}}],
		"sprites": {"front_default": "https://raw.githubusercontent.com/PokeAPI/sprites/master/sprites/pokemon/25.png"}
	}`,
	"/pokemon/6": `{
		"id": 6, "name": "charizard", "height": 17, "weight": 905,
		"types": [
			{"slot": 1, "type": {"name": "fire"}},
			{"slot": 2, "type": {"name": "flying"}}
		],
		"abilities": [
			{"ability": {"name": "blaze"}, "is_hidden": false},
			{"ability": {"name": "solar-power"}, "is_hidden": true}
		],
		"stats": [{"base_stat": 78, "stat": {"name": "hp"}}],
		"sprites": {"front_default": "https://raw.githubusercontent.com/PokeAPI/sprites/master/sprites/pokemon/6.png"}
	}`,
	"/pokemon/132": `{
		"id": 132, "name": "ditto", "height": 3, "weight": 40,
		"types": [{"slot": 1, "type": {"name": "normal"}}],
		"abilities": [{"ability": {"name": "limber"}, "is_hidden": false}],
		"stats": [{"base_stat": 48, "stat": {"name": "hp"}}],
		"sprites": {"front_default": null}
	}`,
	"/pokemon-species/25": `{
		"id": 25, "name": "pikachu",
		"color": {"name": "yellow"},
		"habitat": {"name": "forest"},
		"flavor_text_entries": [
			{"flavor_text": "When several of\nthese POKéMON\fgather.", "language": {"name": "en"}},
			{"flavor_text": "Cuando se enfada,\nlibera energía\fal instante.", "language": {"name": "es"}}
		],
		"evolution_chain": {"url": "{{base}}/evolution-chain/10/"}
	}`,
	"/pokemon-species/6": `{
		"id": 6, "name": "charizard",
		"color": {"name": "red"},
		"habitat": {"name": "mountain"},
		"flavor_text_entries": [
			{"flavor_text": "Spits fire that\nis hot enough to\fmelt boulders.", "language": {"name": "en"}}
		],
		"evolution_chain": {"url": "{{base}}/evolution-chain/2/"}
	}`,
	"/pokemon-species/132": `{
		"id": 132, "name": "ditto",
		"color": {"name": "purple"},
		"habitat": {"name": "urban"},
		"flavor_text_entries": [
			{"flavor_text": "Capable of copying\nan enemy's genetic code.", "language": {"name": "en"}}
		],
		"evolution_chain": null
	}`,
	"/evolution-chain/10": `{
		"id": 10,
		"chain": {
			"species": {"name": "pichu", "url": "{{base}}/pokemon-species/172/"},
			"evolves_to": [{
				"species": {"name": "pikachu", "url": "{{base}}/pokemon-species/25/"},
				"evolves_to": [{
					"species": {"name": "raichu", "url": "{{base}}/pokemon-species/26/"},
					"evolves_to": []
				}]
			}]
		}
	}`,
	"/evolution-chain/2": `{
		"id": 2,
		"chain": {
			"species": {"name": "charmander"},
			"evolves_to": [{
				"species": {"name": "charmeleon"},
				"evolves_to": [{"species": {"name": "charizard"}, "evolves_to": []}]
			}]
		}
	}`,
	"/type": `{
		"count": 21,
		"results": [
			{"name": "normal", "url": "{{base}}/type/1/"},
			{"name": "fighting", "url": "{{base}}/type/2/"},
			{"name": "flying", "url": "{{base}}/type/3/"},
			{"name": "fire", "url": "{{base}}/type/10/"},
			{"name": "water", "url": "{{base}}/type/11/"},
			{"name": "electric", "url": "{{base}}/type/13/"},
			{"name": "stellar", "url": "{{base}}/type/19/"},
			{"name": "unknown", "url": "{{base}}/type/10001/"},
			{"name": "shadow", "url": "{{base}}/type/10002/"}
		]
	}`,
	"/type/fire": `{
		"name": "fire",
		"pokemon": [
			{"slot": 1, "pokemon": {"name": "charmander", "url": "{{base}}/pokemon/4/"}},
			{"slot": 1, "pokemon": {"name": "charmeleon", "url": "{{base}}/pokemon/5/"}},
			{"slot": 1, "pokemon": {"name": "charizard", "url": "{{base}}/pokemon/6/"}}
		]
	}`,
	"/type/electric": `{
		"name": "electric",
		"pokemon": [
			{"slot": 1, "pokemon": {"name": "pikachu", "url": "{{base}}/pokemon/25/"}},
			{"slot": 1, "pokemon": {"name": "raichu", "url": "{{base}}/pokemon/26/"}}
		]
	}`,
}
