// Package user stores user accounts and their favorite pokemon ids.
package user

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"
)

var (
	// ErrUserNotFound indicates no user matches the id or email.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailTaken indicates another account already uses the email.
	ErrEmailTaken = errors.New("email already registered")
)

// User is a stored account. PasswordHash is never serialized to clients.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Favorites    []string  `json:"favorites"`
	CreatedAt    time.Time `json:"createdAt"`
}

// HasFavorite reports whether pokemonID is in the favorites list.
func (u *User) HasFavorite(pokemonID string) bool {
	return slices.Contains(u.Favorites, pokemonID)
}

// Clone returns a deep copy so stores never hand out shared slices.
func (u *User) Clone() *User {
	c := *u
	c.Favorites = slices.Clone(u.Favorites)
	if c.Favorites == nil {
		c.Favorites = []string{}
	}
	return &c
}

// Store persists users.
//
// Update replaces the stored record wholesale. Callers doing
// read-modify-write (favorites) are not serialized against each other.
type Store interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, u *User) error
}

// NormalizeEmail lower-cases and trims an address for lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
