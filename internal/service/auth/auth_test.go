package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/nkiryanov/autosave/internal/apperrors"
	"github.com/nkiryanov/autosave/internal/service/auth/tokenmanager"
)

func Test_Auth(t *testing.T) {
	t.Parallel()

	hasher := BcryptHasher{Cost: bcrypt.MinCost}
	hash, err := hasher.Hash("s3cret")
	require.NoError(t, err)

	newService := func(t *testing.T) *AuthService {
		tokens, err := tokenmanager.New(tokenmanager.Config{SecretKey: "test-secret-key"})
		require.NoError(t, err)

		s, err := NewService(Config{PasswordHash: hash, Hasher: hasher}, tokens)
		require.NoError(t, err, "auth service couldn't be started")
		return s
	}

	t.Run("new service defaults", func(t *testing.T) {
		tokens, err := tokenmanager.New(tokenmanager.Config{SecretKey: "k"})
		require.NoError(t, err)

		s, err := NewService(Config{PasswordHash: hash}, tokens)

		require.NoError(t, err)
		require.Equal(t, BcryptHasher{}, s.hasher, "default hasher should be set to BcryptHasher")
	})

	t.Run("new service requires password hash", func(t *testing.T) {
		tokens, err := tokenmanager.New(tokenmanager.Config{SecretKey: "k"})
		require.NoError(t, err)

		_, err = NewService(Config{}, tokens)

		require.Error(t, err)
	})

	t.Run("Login", func(t *testing.T) {
		t.Run("login ok", func(t *testing.T) {
			s := newService(t)

			token, err := s.Login(t.Context(), "s3cret")

			require.NoError(t, err)
			require.NotEmpty(t, token.Value)
			require.WithinDuration(t, time.Now().Add(15*time.Minute), token.ExpiresAt, 2*time.Second)
		})

		t.Run("wrong password", func(t *testing.T) {
			s := newService(t)

			token, err := s.Login(t.Context(), "wrong")

			require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
			require.Empty(t, token.Value)
		})
	})

	t.Run("ParseAccess", func(t *testing.T) {
		t.Run("issued token ok", func(t *testing.T) {
			s := newService(t)
			token, err := s.Login(t.Context(), "s3cret")
			require.NoError(t, err)

			subject, err := s.ParseAccess(t.Context(), token.Value)

			require.NoError(t, err)
			require.Equal(t, OperatorSubject, subject)
		})

		t.Run("garbage token", func(t *testing.T) {
			s := newService(t)

			_, err := s.ParseAccess(t.Context(), "garbage")

			require.ErrorIs(t, err, apperrors.ErrInvalidToken)
		})

		t.Run("token for other subject", func(t *testing.T) {
			s := newService(t)
			issued, err := s.tokens.Issue("somebody")
			require.NoError(t, err)

			_, err = s.ParseAccess(t.Context(), issued.Value)

			require.ErrorIs(t, err, apperrors.ErrInvalidToken)
		})
	})
}
