package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"trivia-quiz-service/internal/domain"
	"trivia-quiz-service/internal/infra/memory"
)

func newTestService() *Service {
	return NewService(memory.NewUserStore(), "test-secret", time.Hour, bcrypt.MinCost)
}

func TestSignupIssuesVerifiableToken(t *testing.T) {
	ctx := context.Background()
	s := newTestService()

	token, identity, err := s.Signup(ctx, "  alice ", "alice@example.com", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "alice", identity.Username)
	assert.Equal(t, "alice@example.com", identity.Email)
	assert.NotEmpty(t, identity.ID)

	verified, err := s.Verify(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, identity, verified)

	me, err := s.Me(ctx, identity.ID)
	require.NoError(t, err)
	assert.Equal(t, identity, me)
}

func TestSignupStoresHashedPassword(t *testing.T) {
	users := memory.NewUserStore()
	s := NewService(users, "test-secret", time.Hour, bcrypt.MinCost)

	_, _, err := s.Signup(context.Background(), "alice", "alice@example.com", "hunter2")
	require.NoError(t, err)

	user, err := users.GetUserByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("hunter2")))
}

func TestSignupRejections(t *testing.T) {
	ctx := context.Background()
	s := newTestService()
	_, _, err := s.Signup(ctx, "alice", "alice@example.com", "hunter2")
	require.NoError(t, err)

	_, _, err = s.Signup(ctx, "alice2", "ALICE@example.com", "other")
	assert.ErrorIs(t, err, domain.ErrEmailTaken)

	for _, tc := range []struct{ username, email, password string }{
		{"", "bob@example.com", "pw"},
		{"bob", "   ", "pw"},
		{"bob", "bob@example.com", ""},
	} {
		_, _, err := s.Signup(ctx, tc.username, tc.email, tc.password)
		assert.ErrorIs(t, err, domain.ErrMissingFields)
	}
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	s := newTestService()
	_, created, err := s.Signup(ctx, "alice", "alice@example.com", "hunter2")
	require.NoError(t, err)

	token, identity, err := s.Login(ctx, "alice@example.com", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, created, identity)
	_, err = s.Verify(ctx, token)
	assert.NoError(t, err)

	_, _, err = s.Login(ctx, "alice@example.com", "wrong")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	_, _, err = s.Login(ctx, "nobody@example.com", "hunter2")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	_, _, err = s.Login(ctx, "", "hunter2")
	assert.ErrorIs(t, err, domain.ErrMissingFields)
}

func TestMeUnknownUser(t *testing.T) {
	_, err := newTestService().Me(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestVerifyRejectsBadTokens(t *testing.T) {
	ctx := context.Background()
	s := newTestService()
	identity := domain.Identity{ID: "u1", Username: "alice", Email: "alice@example.com"}
	token, err := s.Issue(identity)
	require.NoError(t, err)

	t.Run("expired", func(t *testing.T) {
		expired := newTestService()
		expired.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, err := expired.Verify(ctx, token)
		assert.ErrorIs(t, err, domain.ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewService(memory.NewUserStore(), "other-secret", time.Hour, bcrypt.MinCost)
		_, err := other.Verify(ctx, token)
		assert.ErrorIs(t, err, domain.ErrInvalidToken)
	})

	t.Run("tampered", func(t *testing.T) {
		parts := strings.Split(token, ".")
		require.Len(t, parts, 3)
		forged := parts[0] + "." + parts[1] + "x." + parts[2]
		_, err := s.Verify(ctx, forged)
		assert.ErrorIs(t, err, domain.ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := s.Verify(ctx, "not-a-token")
		assert.ErrorIs(t, err, domain.ErrInvalidToken)
	})

	t.Run("unsigned", func(t *testing.T) {
		unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
			"id":  "u1",
			"exp": time.Now().Add(time.Hour).Unix(),
		}).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = s.Verify(ctx, unsigned)
		assert.ErrorIs(t, err, domain.ErrInvalidToken)
	})

	t.Run("no expiry", func(t *testing.T) {
		noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"id": "u1"}).SignedString([]byte("test-secret"))
		require.NoError(t, err)
		_, err = s.Verify(ctx, noExp)
		assert.ErrorIs(t, err, domain.ErrInvalidToken)
	})
}
