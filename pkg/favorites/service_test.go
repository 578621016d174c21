package favorites

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/Sternrassler/pokedex-proxy/pkg/batch"
	"github.com/Sternrassler/pokedex-proxy/pkg/client"
	"github.com/Sternrassler/pokedex-proxy/pkg/pokemon"
	"github.com/Sternrassler/pokedex-proxy/pkg/user"
)

// fakePokedex knows a fixed set of pokemon.
type fakePokedex struct {
	mu          sync.Mutex
	known       map[string]string
	failDetail  map[string]error
	failSpecies error
	detailCalls int
}

func newFakePokedex() *fakePokedex {
	return &fakePokedex{
		known: map[string]string{
			"1":   "bulbasaur",
			"4":   "charmander",
			"25":  "pikachu",
			"150": "mewtwo",
		},
		failDetail: make(map[string]error),
	}
}

func notFound(id string) error {
	return &client.UpstreamError{Kind: client.KindHTTPStatus, StatusCode: http.StatusNotFound, Path: "/pokemon/" + id}
}

func (p *fakePokedex) GetSpecies(_ context.Context, id string) (*pokemon.SpeciesRecord, error) {
	if p.failSpecies != nil {
		return nil, p.failSpecies
	}
	name, ok := p.known[id]
	if !ok {
		return nil, notFound(id)
	}
	return &pokemon.SpeciesRecord{Name: name}, nil
}

func (p *fakePokedex) GetDetail(_ context.Context, id string) (*pokemon.DetailRecord, error) {
	p.mu.Lock()
	p.detailCalls++
	p.mu.Unlock()

	if err, ok := p.failDetail[id]; ok {
		return nil, err
	}
	name, ok := p.known[id]
	if !ok {
		return nil, notFound(id)
	}
	sprite := "https://img.test/" + id + ".png"
	return &pokemon.DetailRecord{Name: name, Sprite: &sprite}, nil
}

func setup(t *testing.T) (*Service, *fakePokedex, user.Store, string) {
	t.Helper()

	users := user.NewMemoryStore()
	u := &user.User{ID: "u1", Email: "ash@example.com", Favorites: []string{}, CreatedAt: time.Now()}
	if err := users.Create(context.Background(), u); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	pokedex := newFakePokedex()
	return NewService(users, pokedex, batch.DefaultConfig()), pokedex, users, u.ID
}

func TestAdd(t *testing.T) {
	svc, _, users, userID := setup(t)
	ctx := context.Background()

	u, err := svc.Add(ctx, userID, "25")
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if !reflect.DeepEqual(u.Favorites, []string{"25"}) {
		t.Errorf("Favorites = %v", u.Favorites)
	}

	stored, _ := users.FindByID(ctx, userID)
	if !reflect.DeepEqual(stored.Favorites, []string{"25"}) {
		t.Errorf("stored Favorites = %v", stored.Favorites)
	}
}

func TestAdd_Idempotent(t *testing.T) {
	svc, _, users, userID := setup(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := svc.Add(ctx, userID, "25"); err != nil {
			t.Fatalf("Add #%d failed: %v", i, err)
		}
	}
	if _, err := svc.Add(ctx, userID, "1"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	stored, _ := users.FindByID(ctx, userID)
	if !reflect.DeepEqual(stored.Favorites, []string{"25", "1"}) {
		t.Errorf("Favorites = %v, want [25 1]", stored.Favorites)
	}
}

func TestAdd_Errors(t *testing.T) {
	tests := []struct {
		name        string
		userID      string
		pokemonID   string
		failSpecies error
		want        error
	}{
		{
			name:      "unknown user",
			userID:    "ghost",
			pokemonID: "25",
			want:      user.ErrUserNotFound,
		},
		{
			name:      "unknown pokemon",
			userID:    "u1",
			pokemonID: "99999",
			want:      ErrInvalidPokemon,
		},
		{
			name:        "upstream unavailable propagates",
			userID:      "u1",
			pokemonID:   "25",
			failSpecies: &client.UpstreamError{Kind: client.KindUnreachable},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, pokedex, users, _ := setup(t)
			pokedex.failSpecies = tt.failSpecies

			_, err := svc.Add(context.Background(), tt.userID, tt.pokemonID)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("Add() = %v, want %v", err, tt.want)
			}
			if tt.failSpecies != nil {
				if errors.Is(err, ErrInvalidPokemon) {
					t.Error("upstream failure must not be reported as invalid pokemon")
				}
				if upstreamErr, ok := client.AsUpstreamError(err); !ok || upstreamErr.Kind != client.KindUnreachable {
					t.Errorf("Add() = %v, want unreachable upstream error", err)
				}
			}

			if stored, err := users.FindByID(context.Background(), "u1"); err == nil && len(stored.Favorites) != 0 {
				t.Errorf("Favorites = %v, want unchanged", stored.Favorites)
			}
		})
	}
}

func TestRemove(t *testing.T) {
	svc, _, users, userID := setup(t)
	ctx := context.Background()

	for _, id := range []string{"1", "25", "150"} {
		if _, err := svc.Add(ctx, userID, id); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}

	if err := svc.Remove(ctx, userID, "25"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if err := svc.Remove(ctx, userID, "7"); err != nil {
		t.Fatalf("Remove of absent id failed: %v", err)
	}

	stored, _ := users.FindByID(ctx, userID)
	if !reflect.DeepEqual(stored.Favorites, []string{"1", "150"}) {
		t.Errorf("Favorites = %v, want [1 150]", stored.Favorites)
	}
}

func TestRemove_UnknownUser(t *testing.T) {
	svc, _, _, _ := setup(t)

	if err := svc.Remove(context.Background(), "ghost", "25"); err != nil {
		t.Errorf("Remove for unknown user = %v, want nil", err)
	}
}

func TestList(t *testing.T) {
	svc, pokedex, users, userID := setup(t)
	ctx := context.Background()

	// Store ids directly so one of them no longer resolves.
	u, _ := users.FindByID(ctx, userID)
	u.Favorites = []string{"150", "4", "404", "25"}
	if err := users.Update(ctx, u); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	pokedex.failDetail["4"] = &client.UpstreamError{Kind: client.KindUnreachable}

	favorites, err := svc.List(ctx, userID)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	sprite := func(id string) *string {
		s := "https://img.test/" + id + ".png"
		return &s
	}
	want := []Favorite{
		{ID: "150", Name: "mewtwo", Sprite: sprite("150")},
		{ID: "4", Name: "Pokémon #4"},
		{ID: "404", Name: "Pokémon #404"},
		{ID: "25", Name: "pikachu", Sprite: sprite("25")},
	}
	if !reflect.DeepEqual(favorites, want) {
		t.Errorf("List() =\n%+v\nwant\n%+v", favorites, want)
	}
	if pokedex.detailCalls != 4 {
		t.Errorf("GetDetail calls = %d, want 4", pokedex.detailCalls)
	}
}

func TestList_Empty(t *testing.T) {
	svc, pokedex, _, userID := setup(t)

	favorites, err := svc.List(context.Background(), userID)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if favorites == nil || len(favorites) != 0 {
		t.Errorf("List() = %#v, want empty non-nil", favorites)
	}
	if pokedex.detailCalls != 0 {
		t.Errorf("GetDetail calls = %d, want 0", pokedex.detailCalls)
	}
}

func TestList_UnknownUser(t *testing.T) {
	svc, _, _, _ := setup(t)

	if _, err := svc.List(context.Background(), "ghost"); !errors.Is(err, user.ErrUserNotFound) {
		t.Errorf("List() = %v, want ErrUserNotFound", err)
	}
}
