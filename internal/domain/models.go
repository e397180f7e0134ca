package domain

import (
	"encoding/json"
	"time"
)

// OptionLabels are the fixed labels every question exposes, in display order.
var OptionLabels = [4]string{"A", "B", "C", "D"}

// QuestionRecord is a question as stored in a bank source, before it is assigned an id.
type QuestionRecord struct {
	Question string `json:"question"`
	A        string `json:"A"`
	B        string `json:"B"`
	C        string `json:"C"`
	D        string `json:"D"`
	Answer   string `json:"answer"`
}

// Question is an immutable bank entry. ID is its zero-based position in the source.
type Question struct {
	ID      int
	Prompt  string
	Options [4]string // indexed like OptionLabels
	Answer  string
}

// Option is a labeled choice as shown to players.
type Option struct {
	Key  string `json:"key"`
	Text string `json:"text"`
}

// PublicQuestion is the client-safe projection of a Question; the answer is withheld.
type PublicQuestion struct {
	ID       int      `json:"id"`
	Question string   `json:"question"`
	Options  []Option `json:"options"`
}

// Public strips the canonical answer.
func (q Question) Public() PublicQuestion {
	options := make([]Option, len(OptionLabels))
	for i, label := range OptionLabels {
		options[i] = Option{Key: label, Text: q.Options[i]}
	}
	return PublicQuestion{ID: q.ID, Question: q.Prompt, Options: options}
}

// AnswerSubmission pairs a question id with the chosen label.
// Resolved is false when the id could not be read as an integer; such
// submissions never match a bank question. A nil Answer means no choice was made.
type AnswerSubmission struct {
	ID       int
	Resolved bool
	Answer   *string
}

// UnmarshalJSON is lenient: a non-integer id leaves the submission unresolved
// and a non-string or empty answer is treated as absent.
func (s *AnswerSubmission) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID     json.RawMessage `json:"id"`
		Answer json.RawMessage `json:"answer"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = AnswerSubmission{}

	var id *int
	if len(raw.ID) > 0 && json.Unmarshal(raw.ID, &id) == nil && id != nil {
		s.ID = *id
		s.Resolved = true
	}

	var answer *string
	if len(raw.Answer) > 0 && json.Unmarshal(raw.Answer, &answer) == nil && answer != nil && *answer != "" {
		s.Answer = answer
	}
	return nil
}

// ScoredDetail is the grading outcome for one submitted answer.
type ScoredDetail struct {
	Question      string  `json:"question"`
	CorrectAnswer string  `json:"correctAnswer"`
	UserAnswer    *string `json:"userAnswer"`
	IsCorrect     bool    `json:"isCorrect"`
}

// QuizResult is the aggregate grade of a submission.
type QuizResult struct {
	Score          int            `json:"score"`
	CorrectCount   int            `json:"correctCount"`
	WrongCount     int            `json:"wrongCount"`
	TotalQuestions int            `json:"totalQuestions"`
	Details        []ScoredDetail `json:"details"`
}

// Session is a persisted, graded quiz attempt. OwnerID is empty for anonymous play.
type Session struct {
	ID             string
	OwnerID        string
	Score          int
	TotalQuestions int
	CorrectCount   int
	WrongCount     int
	Details        []ScoredDetail
	CreatedAt      time.Time
}

// SessionSummary is the history view of a Session.
type SessionSummary struct {
	ID             string    `json:"id"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"totalQuestions"`
	CorrectCount   int       `json:"correctCount"`
	WrongCount     int       `json:"wrongCount"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Summary drops the per-question details.
func (s Session) Summary() SessionSummary {
	return SessionSummary{
		ID:             s.ID,
		Score:          s.Score,
		TotalQuestions: s.TotalQuestions,
		CorrectCount:   s.CorrectCount,
		WrongCount:     s.WrongCount,
		CreatedAt:      s.CreatedAt,
	}
}

// LeaderboardEntry is one ranked row of the global leaderboard.
type LeaderboardEntry struct {
	Rank           int       `json:"rank"`
	Username       string    `json:"username"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"totalQuestions"`
	CreatedAt      time.Time `json:"createdAt"`
}

// User is a registered account.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Identity is the public view of a User carried inside credentials.
type Identity struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Identity returns the public view of the user.
func (u User) Identity() Identity {
	return Identity{ID: u.ID, Username: u.Username, Email: u.Email}
}

// SubmitResult is the grade of a submission plus whether it was recorded.
type SubmitResult struct {
	QuizResult
	Saved bool `json:"saved"`
}
