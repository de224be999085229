package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/nkiryanov/autosave/internal/apperrors"
	"github.com/nkiryanov/autosave/internal/models"
	"github.com/nkiryanov/autosave/internal/service/auth/tokenmanager"
)

// Subject of every token issued to the operator
const OperatorSubject = "operator"

// Interface to create or compare password hashes
type PasswordHasher interface {
	// Generate Hash from password
	Hash(password string) (string, error)

	// Compare known hashedPassword and user provided password
	// Must be protected against timing attacks
	Compare(hashedPassword string, password string) error
}

type Config struct {
	// Operator password hash, as printed by gensecret
	PasswordHash string

	// Hasher to compare operator password
	// BcryptHasher is used if not set
	Hasher PasswordHasher
}

// Operator auth service
// There is the only operator, so no users are stored
type AuthService struct {
	passwordHash string
	hasher       PasswordHasher
	tokens       *tokenmanager.TokenManager
}

func NewService(cfg Config, tokens *tokenmanager.TokenManager) (*AuthService, error) {
	if cfg.PasswordHash == "" {
		return nil, errors.New("operator password hash must not be empty")
	}
	if tokens == nil {
		return nil, errors.New("token manager must not be nil")
	}

	hasher := cfg.Hasher
	if hasher == nil {
		hasher = BcryptHasher{}
	}

	return &AuthService{
		passwordHash: cfg.PasswordHash,
		hasher:       hasher,
		tokens:       tokens,
	}, nil
}

func (s *AuthService) Login(_ context.Context, password string) (models.IssuedToken, error) {
	if err := s.hasher.Compare(s.passwordHash, password); err != nil {
		return models.IssuedToken{}, apperrors.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(OperatorSubject)
	if err != nil {
		return token, fmt.Errorf("token could not be issued. %w", err)
	}

	return token, nil
}

// ParseAccess validates operator access token
func (s *AuthService) ParseAccess(_ context.Context, access string) (string, error) {
	subject, err := s.tokens.ParseAccess(access)
	if err != nil {
		return "", fmt.Errorf("%w: %w", apperrors.ErrInvalidToken, err)
	}
	if subject != OperatorSubject {
		return "", fmt.Errorf("%w: unexpected subject %q", apperrors.ErrInvalidToken, subject)
	}

	return subject, nil
}
