package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"

	"trivia-quiz-service/internal/domain"
)

// UserStore persists accounts in the users table.
type UserStore struct {
	db *bun.DB
}

func NewUserStore(db *bun.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) CreateUser(ctx context.Context, user *domain.User) error {
	row := &userModel{
		ID:           user.ID,
		Username:     user.Username,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		CreatedAt:    user.CreatedAt,
	}
	if _, err := s.db.NewInsert().Model(row).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *UserStore) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	var row userModel
	err := s.db.NewSelect().Model(&row).Where("lower(email) = lower(?)", email).Limit(1).Scan(ctx)
	return userResult(row, err)
}

func (s *UserStore) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.User{}, domain.ErrUserNotFound
	}
	var row userModel
	err := s.db.NewSelect().Model(&row).Where("id = ?", id).Scan(ctx)
	return userResult(row, err)
}

func (s *UserStore) UsernamesByID(ctx context.Context, ids []string) (map[string]string, error) {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, err := uuid.Parse(id); err == nil {
			valid = append(valid, id)
		}
	}
	names := make(map[string]string, len(valid))
	if len(valid) == 0 {
		return names, nil
	}

	var rows []userModel
	err := s.db.NewSelect().
		Model(&rows).
		Column("id", "username").
		Where("id IN (?)", bun.In(valid)).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select usernames: %w", err)
	}
	for _, row := range rows {
		names[row.ID] = row.Username
	}
	return names, nil
}

func userResult(row userModel, err error) (domain.User, error) {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("select user: %w", err)
	}
	return row.toDomain(), nil
}

func isUniqueViolation(err error) bool {
	var pgErr pgdriver.Error
	return errors.As(err, &pgErr) && pgErr.Field('C') == "23505"
}
