package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"trivia-quiz-service/internal/domain"
)

// StaticQuestionLoader is a loader backed by an in-memory slice (useful for tests/demos).
type StaticQuestionLoader struct {
	records []domain.QuestionRecord
}

func NewStaticQuestionLoader(records []domain.QuestionRecord) *StaticQuestionLoader {
	return &StaticQuestionLoader{records: records}
}

func (l *StaticQuestionLoader) LoadQuestions(_ context.Context) ([]domain.QuestionRecord, error) {
	out := make([]domain.QuestionRecord, len(l.records))
	copy(out, l.records)
	return out, nil
}

// FileQuestionLoader reads a JSON array of question records from disk.
type FileQuestionLoader struct {
	path string
}

func NewFileQuestionLoader(path string) *FileQuestionLoader {
	return &FileQuestionLoader{path: path}
}

func (l *FileQuestionLoader) LoadQuestions(_ context.Context) ([]domain.QuestionRecord, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", l.path, err)
	}
	var records []domain.QuestionRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse %s: %w", l.path, err)
	}
	return records, nil
}
