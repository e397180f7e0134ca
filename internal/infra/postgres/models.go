package postgres

import (
	"time"

	"github.com/uptrace/bun"

	"trivia-quiz-service/internal/domain"
)

type userModel struct {
	bun.BaseModel `bun:"table:users"`

	ID           string    `bun:"id,pk,type:uuid"`
	Username     string    `bun:"username,notnull"`
	Email        string    `bun:"email,notnull"`
	PasswordHash string    `bun:"password_hash,notnull"`
	CreatedAt    time.Time `bun:"created_at,notnull"`
}

func (m userModel) toDomain() domain.User {
	return domain.User{
		ID:           m.ID,
		Username:     m.Username,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		CreatedAt:    m.CreatedAt,
	}
}

type sessionModel struct {
	bun.BaseModel `bun:"table:game_sessions"`

	ID             string                `bun:"id,pk,type:uuid"`
	OwnerID        *string               `bun:"owner_id,type:uuid"`
	Score          int                   `bun:"score,notnull"`
	TotalQuestions int                   `bun:"total_questions,notnull"`
	CorrectCount   int                   `bun:"correct_count,notnull"`
	WrongCount     int                   `bun:"wrong_count,notnull"`
	Details        []domain.ScoredDetail `bun:"details,type:jsonb,notnull"`
	CreatedAt      time.Time             `bun:"created_at,notnull"`
}

func newSessionModel(s *domain.Session) *sessionModel {
	m := &sessionModel{
		ID:             s.ID,
		Score:          s.Score,
		TotalQuestions: s.TotalQuestions,
		CorrectCount:   s.CorrectCount,
		WrongCount:     s.WrongCount,
		Details:        s.Details,
		CreatedAt:      s.CreatedAt,
	}
	if m.Details == nil {
		m.Details = []domain.ScoredDetail{}
	}
	if s.OwnerID != "" {
		owner := s.OwnerID
		m.OwnerID = &owner
	}
	return m
}

func (m sessionModel) toDomain() domain.Session {
	s := domain.Session{
		ID:             m.ID,
		Score:          m.Score,
		TotalQuestions: m.TotalQuestions,
		CorrectCount:   m.CorrectCount,
		WrongCount:     m.WrongCount,
		Details:        m.Details,
		CreatedAt:      m.CreatedAt,
	}
	if m.OwnerID != nil {
		s.OwnerID = *m.OwnerID
	}
	return s
}

type questionModel struct {
	bun.BaseModel `bun:"table:questions"`

	Position int    `bun:"position,pk"`
	Question string `bun:"question,notnull"`
	OptionA  string `bun:"option_a,notnull"`
	OptionB  string `bun:"option_b,notnull"`
	OptionC  string `bun:"option_c,notnull"`
	OptionD  string `bun:"option_d,notnull"`
	Answer   string `bun:"answer,notnull"`
}
