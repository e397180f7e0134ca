package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnswerSubmissionDecoding(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		wantResolved bool
		wantID       int
		wantAnswer   *string
	}{
		{name: "id and answer", input: `{"id":3,"answer":"B"}`, wantResolved: true, wantID: 3, wantAnswer: ptr("B")},
		{name: "zero id", input: `{"id":0,"answer":"A"}`, wantResolved: true, wantID: 0, wantAnswer: ptr("A")},
		{name: "missing answer", input: `{"id":1}`, wantResolved: true, wantID: 1},
		{name: "null answer", input: `{"id":1,"answer":null}`, wantResolved: true, wantID: 1},
		{name: "empty answer", input: `{"id":1,"answer":""}`, wantResolved: true, wantID: 1},
		{name: "numeric answer", input: `{"id":1,"answer":2}`, wantResolved: true, wantID: 1},
		{name: "lowercase answer kept verbatim", input: `{"id":1,"answer":"b"}`, wantResolved: true, wantID: 1, wantAnswer: ptr("b")},
		{name: "missing id", input: `{"answer":"A"}`, wantAnswer: ptr("A")},
		{name: "null id", input: `{"id":null,"answer":"A"}`, wantAnswer: ptr("A")},
		{name: "string id", input: `{"id":"2","answer":"A"}`, wantAnswer: ptr("A")},
		{name: "fractional id", input: `{"id":1.5,"answer":"A"}`, wantAnswer: ptr("A")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got AnswerSubmission
			require.NoError(t, json.Unmarshal([]byte(tt.input), &got))
			assert.Equal(t, tt.wantResolved, got.Resolved)
			assert.Equal(t, tt.wantID, got.ID)
			assert.Equal(t, tt.wantAnswer, got.Answer)
		})
	}
}

func TestAnswerSubmissionRejectsNonObject(t *testing.T) {
	var got AnswerSubmission
	assert.Error(t, json.Unmarshal([]byte(`[1,"A"]`), &got))
}

func TestPublicQuestionWithholdsAnswer(t *testing.T) {
	q := Question{ID: 4, Prompt: "Capital of France?", Options: [4]string{"Rome", "Paris", "Oslo", "Bern"}, Answer: "B"}

	data, err := json.Marshal(q.Public())
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": 4,
		"question": "Capital of France?",
		"options": [
			{"key":"A","text":"Rome"},
			{"key":"B","text":"Paris"},
			{"key":"C","text":"Oslo"},
			{"key":"D","text":"Bern"}
		]
	}`, string(data))
}

func TestSubmitResultFlattensQuizResult(t *testing.T) {
	result := SubmitResult{
		QuizResult: QuizResult{Score: 100, CorrectCount: 1, TotalQuestions: 1, Details: []ScoredDetail{
			{Question: "Q", CorrectAnswer: "A", UserAnswer: ptr("A"), IsCorrect: true},
		}},
		Saved: true,
	}
	data, err := json.Marshal(result)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"score": 100, "correctCount": 1, "wrongCount": 0, "totalQuestions": 1, "saved": true,
		"details": [{"question":"Q","correctAnswer":"A","userAnswer":"A","isCorrect":true}]
	}`, string(data))
}

func ptr(s string) *string { return &s }
