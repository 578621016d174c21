package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/Sternrassler/pokedex-proxy/pkg/logging"
	"github.com/Sternrassler/pokedex-proxy/pkg/user"
)

// Service implements signup, login and profile lookup.
type Service struct {
	users      user.Store
	tokens     *TokenManager
	bcryptCost int
	logger     zerolog.Logger
}

// NewService creates an auth service. bcryptCost <= 0 uses bcrypt.DefaultCost.
func NewService(users user.Store, tokens *TokenManager, bcryptCost int) *Service {
	if bcryptCost <= 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		users:      users,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		logger:     logging.NewLogger("auth"),
	}
}

// Signup creates an account. Returns user.ErrEmailTaken for a duplicate
// email.
func (s *Service) Signup(ctx context.Context, email, password string) (*user.User, error) {
	email = user.NormalizeEmail(email)

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, user.ErrEmailTaken
	} else if !errors.Is(err, user.ErrUserNotFound) {
		return nil, fmt.Errorf("lookup email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &user.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		Favorites:    []string{},
		CreatedAt:    time.Now().UTC(),
	}
	// The store enforces uniqueness too; a concurrent signup surfaces here.
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", u.ID).Msg("User signed up")
	return u, nil
}

// Login checks credentials and returns a signed access token.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, user.ErrUserNotFound) {
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", fmt.Errorf("lookup email: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		s.logger.Debug().Str("user_id", u.ID).Msg("Password mismatch")
		return "", ErrInvalidCredentials
	}

	return s.tokens.GenerateToken(u.ID, u.Email)
}

// Profile returns the user identified by a validated token subject.
func (s *Service) Profile(ctx context.Context, userID string) (*user.User, error) {
	return s.users.FindByID(ctx, userID)
}
