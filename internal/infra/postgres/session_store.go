package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"trivia-quiz-service/internal/domain"
)

// SessionStore persists graded sessions in the game_sessions table.
type SessionStore struct {
	db *bun.DB
}

func NewSessionStore(db *bun.DB) *SessionStore {
	return &SessionStore{db: db}
}

func (s *SessionStore) CreateSession(ctx context.Context, session *domain.Session) error {
	if _, err := s.db.NewInsert().Model(newSessionModel(session)).Exec(ctx); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (s *SessionStore) ListSessionsByOwner(ctx context.Context, ownerID string, limit int) ([]domain.Session, error) {
	if _, err := uuid.Parse(ownerID); err != nil {
		return []domain.Session{}, nil
	}
	var rows []sessionModel
	err := s.db.NewSelect().
		Model(&rows).
		Where("owner_id = ?", ownerID).
		OrderExpr("created_at DESC, id DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select sessions by owner: %w", err)
	}
	return toSessions(rows), nil
}

func (s *SessionStore) TopSessions(ctx context.Context, limit int) ([]domain.Session, error) {
	var rows []sessionModel
	err := s.db.NewSelect().
		Model(&rows).
		OrderExpr("score DESC, created_at ASC, id ASC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select top sessions: %w", err)
	}
	return toSessions(rows), nil
}

func toSessions(rows []sessionModel) []domain.Session {
	out := make([]domain.Session, len(rows))
	for i, row := range rows {
		out[i] = row.toDomain()
	}
	return out
}
