package postgres

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"trivia-quiz-service/internal/domain"
)

// SeedQuestions replaces the questions table with records, keeping their order as position.
func SeedQuestions(ctx context.Context, db *bun.DB, records []domain.QuestionRecord) error {
	rows := make([]questionModel, len(records))
	for i, rec := range records {
		rows[i] = questionModel{
			Position: i,
			Question: rec.Question,
			OptionA:  rec.A,
			OptionB:  rec.B,
			OptionC:  rec.C,
			OptionD:  rec.D,
			Answer:   rec.Answer,
		}
	}

	return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*questionModel)(nil)).Where("TRUE").Exec(ctx); err != nil {
			return fmt.Errorf("clear questions: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if _, err := tx.NewInsert().Model(&rows).Exec(ctx); err != nil {
			return fmt.Errorf("insert questions: %w", err)
		}
		return nil
	})
}
