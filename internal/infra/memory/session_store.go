package memory

import (
	"context"
	"sort"
	"sync"

	"trivia-quiz-service/internal/domain"
)

// SessionStore is an in-memory implementation of app.SessionRepository.
type SessionStore struct {
	mu       sync.RWMutex
	sessions []domain.Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{}
}

func (s *SessionStore) CreateSession(_ context.Context, session *domain.Session) error {
	stored := *session
	stored.Details = append([]domain.ScoredDetail(nil), session.Details...)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = append(s.sessions, stored)
	return nil
}

func (s *SessionStore) ListSessionsByOwner(_ context.Context, ownerID string, limit int) ([]domain.Session, error) {
	s.mu.RLock()
	var owned []domain.Session
	for i := len(s.sessions) - 1; i >= 0; i-- {
		if s.sessions[i].OwnerID == ownerID {
			owned = append(owned, s.sessions[i])
		}
	}
	s.mu.RUnlock()

	// Collected newest insert first, so equal timestamps stay newest first.
	sort.SliceStable(owned, func(i, j int) bool {
		return owned[i].CreatedAt.After(owned[j].CreatedAt)
	})
	return truncate(owned, limit), nil
}

func (s *SessionStore) TopSessions(_ context.Context, limit int) ([]domain.Session, error) {
	s.mu.RLock()
	all := make([]domain.Session, len(s.sessions))
	copy(all, s.sessions)
	s.mu.RUnlock()

	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Score != all[j].Score {
			return all[i].Score > all[j].Score
		}
		return all[i].CreatedAt.Before(all[j].CreatedAt)
	})
	return truncate(all, limit), nil
}

func truncate(sessions []domain.Session, limit int) []domain.Session {
	if limit > 0 && len(sessions) > limit {
		sessions = sessions[:limit]
	}
	if sessions == nil {
		return []domain.Session{}
	}
	return sessions
}
