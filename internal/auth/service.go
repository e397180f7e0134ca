package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"trivia-quiz-service/internal/domain"
)

// DefaultTokenTTL is how long issued tokens stay valid unless configured otherwise.
const DefaultTokenTTL = 7 * 24 * time.Hour

// UserRepository persists accounts (in-memory, Postgres).
type UserRepository interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)
	GetUserByID(ctx context.Context, id string) (domain.User, error)
}

// Service registers and authenticates users and issues HS256 bearer tokens.
type Service struct {
	users      UserRepository
	secret     []byte
	ttl        time.Duration
	bcryptCost int
	now        func() time.Time
}

type claims struct {
	UserID   string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}

// NewService builds the identity provider. Non-positive ttl or cost use defaults.
func NewService(users UserRepository, secret string, ttl time.Duration, bcryptCost int) *Service {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	if bcryptCost <= 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		users:      users,
		secret:     []byte(secret),
		ttl:        ttl,
		bcryptCost: bcryptCost,
		now:        time.Now,
	}
}

// Signup creates an account and returns a token for it.
func (s *Service) Signup(ctx context.Context, username, email, password string) (string, domain.Identity, error) {
	username, email = strings.TrimSpace(username), strings.TrimSpace(email)
	if username == "" || email == "" || password == "" {
		return "", domain.Identity{}, domain.ErrMissingFields
	}

	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return "", domain.Identity{}, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return "", domain.Identity{}, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", domain.Identity{}, fmt.Errorf("hash password: %w", err)
	}
	user := &domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return "", domain.Identity{}, fmt.Errorf("create user: %w", err)
	}

	identity := user.Identity()
	token, err := s.Issue(identity)
	if err != nil {
		return "", domain.Identity{}, err
	}
	return token, identity, nil
}

// Login checks the password for email and returns a fresh token.
func (s *Service) Login(ctx context.Context, email, password string) (string, domain.Identity, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return "", domain.Identity{}, domain.ErrMissingFields
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, domain.ErrUserNotFound) {
		return "", domain.Identity{}, domain.ErrInvalidCredentials
	}
	if err != nil {
		return "", domain.Identity{}, fmt.Errorf("lookup user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", domain.Identity{}, domain.ErrInvalidCredentials
	}

	identity := user.Identity()
	token, err := s.Issue(identity)
	if err != nil {
		return "", domain.Identity{}, err
	}
	return token, identity, nil
}

// Me returns the current account behind an identity.
func (s *Service) Me(ctx context.Context, id string) (domain.Identity, error) {
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return domain.Identity{}, err
	}
	return user.Identity(), nil
}

// Issue signs a token for identity.
func (s *Service) Issue(identity domain.Identity) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		UserID:   identity.ID,
		Username: identity.Username,
		Email:    identity.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature and expiry and returns the identity the token was issued for.
func (s *Service) Verify(_ context.Context, token string) (domain.Identity, error) {
	var c claims
	parsed, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid || c.UserID == "" {
		return domain.Identity{}, domain.ErrInvalidToken
	}
	return domain.Identity{ID: c.UserID, Username: c.Username, Email: c.Email}, nil
}
