package memory

import (
	"context"
	"strings"
	"sync"

	"trivia-quiz-service/internal/domain"
)

// UserStore is an in-memory implementation of auth.UserRepository and app.UsernameResolver.
// Emails are matched case-insensitively.
type UserStore struct {
	mu      sync.RWMutex
	byID    map[string]domain.User
	byEmail map[string]string
}

func NewUserStore() *UserStore {
	return &UserStore{
		byID:    make(map[string]domain.User),
		byEmail: make(map[string]string),
	}
}

func (s *UserStore) CreateUser(_ context.Context, user *domain.User) error {
	key := strings.ToLower(user.Email)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byEmail[key]; ok {
		return domain.ErrEmailTaken
	}
	s.byID[user.ID] = *user
	s.byEmail[key] = user.ID
	return nil
}

func (s *UserStore) GetUserByEmail(_ context.Context, email string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return s.byID[id], nil
}

func (s *UserStore) GetUserByID(_ context.Context, id string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.byID[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return user, nil
}

func (s *UserStore) UsernamesByID(_ context.Context, ids []string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make(map[string]string, len(ids))
	for _, id := range ids {
		if user, ok := s.byID[id]; ok {
			names[id] = user.Username
		}
	}
	return names, nil
}

// DeleteUser removes an account. Sessions it owned stay and render as guests.
func (s *UserStore) DeleteUser(_ context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user, ok := s.byID[id]; ok {
		delete(s.byEmail, strings.ToLower(user.Email))
		delete(s.byID, id)
	}
}
