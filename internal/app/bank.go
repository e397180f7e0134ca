package app

import (
	"context"
	"fmt"
	"strings"

	"trivia-quiz-service/internal/domain"
)

// QuestionLoader reads the raw question list from a bank source (JSON file, Postgres).
type QuestionLoader interface {
	LoadQuestions(ctx context.Context) ([]domain.QuestionRecord, error)
}

// Bank is the immutable question bank. It is built once before serving and
// only read afterwards, so it needs no locking.
type Bank struct {
	questions []domain.Question
}

// LoadBank reads every record from the loader and assigns each its position as id.
// Any load failure, malformed record or an empty source is an error.
func LoadBank(ctx context.Context, loader QuestionLoader) (*Bank, error) {
	records, err := loader.LoadQuestions(ctx)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	return NewBank(records)
}

// NewBank validates records and builds a bank from them.
func NewBank(records []domain.QuestionRecord) (*Bank, error) {
	if len(records) == 0 {
		return nil, domain.ErrQuestionBankEmpty
	}
	questions := make([]domain.Question, len(records))
	for i, rec := range records {
		q, err := questionFromRecord(i, rec)
		if err != nil {
			return nil, err
		}
		questions[i] = q
	}
	return &Bank{questions: questions}, nil
}

func questionFromRecord(id int, rec domain.QuestionRecord) (domain.Question, error) {
	q := domain.Question{
		ID:      id,
		Prompt:  rec.Question,
		Options: [4]string{rec.A, rec.B, rec.C, rec.D},
		Answer:  rec.Answer,
	}
	if strings.TrimSpace(q.Prompt) == "" {
		return domain.Question{}, fmt.Errorf("question %d: empty prompt: %w", id, domain.ErrMalformedQuestion)
	}
	for i, text := range q.Options {
		if strings.TrimSpace(text) == "" {
			return domain.Question{}, fmt.Errorf("question %d: empty option %s: %w", id, domain.OptionLabels[i], domain.ErrMalformedQuestion)
		}
	}
	if !isOptionLabel(q.Answer) {
		return domain.Question{}, fmt.Errorf("question %d: answer %q is not one of A-D: %w", id, q.Answer, domain.ErrMalformedQuestion)
	}
	return q, nil
}

func isOptionLabel(s string) bool {
	for _, label := range domain.OptionLabels {
		if s == label {
			return true
		}
	}
	return false
}

// Get looks a question up by id.
func (b *Bank) Get(id int) (domain.Question, bool) {
	if id < 0 || id >= len(b.questions) {
		return domain.Question{}, false
	}
	return b.questions[id], true
}

// All returns a copy of every question in id order.
func (b *Bank) All() []domain.Question {
	out := make([]domain.Question, len(b.questions))
	copy(out, b.questions)
	return out
}

// Len reports the bank size.
func (b *Bank) Len() int {
	return len(b.questions)
}
