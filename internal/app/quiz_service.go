package app

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"trivia-quiz-service/internal/domain"
)

// DefaultQuizSize is used when a caller asks for a non-positive number of questions.
const DefaultQuizSize = 10

// SessionRepository abstracts where graded sessions are persisted (in-memory, Postgres).
// Sessions are append-only: there is no update or delete.
type SessionRepository interface {
	CreateSession(ctx context.Context, session *domain.Session) error
	// ListSessionsByOwner returns up to limit sessions of one owner, newest first.
	ListSessionsByOwner(ctx context.Context, ownerID string, limit int) ([]domain.Session, error)
	// TopSessions returns up to limit sessions ordered by score desc, then creation time asc.
	TopSessions(ctx context.Context, limit int) ([]domain.Session, error)
}

// IdentityVerifier resolves a bearer credential to the identity it was issued for.
type IdentityVerifier interface {
	Verify(ctx context.Context, token string) (domain.Identity, error)
}

// SessionListener is notified after a session has been stored.
type SessionListener interface {
	SessionRecorded(ctx context.Context)
}

// Metrics receives quiz counters. A nil Metrics is replaced by a no-op.
type Metrics interface {
	QuizIssued(questions int)
	SubmissionGraded(score int, saved bool)
}

// QuizService contains the quiz use cases: drawing questions, grading and recording sessions.
type QuizService struct {
	bank     *Bank
	sessions SessionRepository
	verifier IdentityVerifier
	listener SessionListener
	metrics  Metrics
	logger   *slog.Logger

	shuffle func(n int, swap func(i, j int))
	now     func() time.Time
	newID   func() string
}

// QuizOption customizes a QuizService.
type QuizOption func(*QuizService)

// WithSessionListener registers a hook fired after each recorded session.
func WithSessionListener(l SessionListener) QuizOption {
	return func(s *QuizService) { s.listener = l }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m Metrics) QuizOption {
	return func(s *QuizService) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) QuizOption {
	return func(s *QuizService) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock is for deterministic timestamps in tests.
func WithClock(now func() time.Time) QuizOption {
	return func(s *QuizService) { s.now = now }
}

// WithShuffle replaces the permutation source, mainly for tests.
func WithShuffle(shuffle func(n int, swap func(i, j int))) QuizOption {
	return func(s *QuizService) { s.shuffle = shuffle }
}

func NewQuizService(bank *Bank, sessions SessionRepository, verifier IdentityVerifier, opts ...QuizOption) *QuizService {
	s := &QuizService{
		bank:     bank,
		sessions: sessions,
		verifier: verifier,
		metrics:  nopMetrics{},
		logger:   slog.Default(),
		shuffle:  rand.Shuffle,
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewQuiz draws min(num, bank size) distinct questions in random order.
// Non-positive num falls back to DefaultQuizSize.
func (s *QuizService) NewQuiz(num int) []domain.PublicQuestion {
	if num <= 0 {
		num = DefaultQuizSize
	}
	questions := s.bank.All()
	s.shuffle(len(questions), func(i, j int) {
		questions[i], questions[j] = questions[j], questions[i]
	})
	questions = questions[:min(num, len(questions))]

	out := make([]domain.PublicQuestion, len(questions))
	for i, q := range questions {
		out[i] = q.Public()
	}
	s.metrics.QuizIssued(len(out))
	return out
}

// Grade scores answers against the bank. Answers that do not resolve to a bank
// question are skipped and do not count toward the total. Detail order follows
// the submission order.
func (s *QuizService) Grade(answers []domain.AnswerSubmission) domain.QuizResult {
	result := domain.QuizResult{Details: make([]domain.ScoredDetail, 0, len(answers))}
	for _, ans := range answers {
		if !ans.Resolved {
			continue
		}
		q, ok := s.bank.Get(ans.ID)
		if !ok {
			continue
		}
		correct := ans.Answer != nil && *ans.Answer == q.Answer
		if correct {
			result.CorrectCount++
		}
		result.Details = append(result.Details, domain.ScoredDetail{
			Question:      q.Prompt,
			CorrectAnswer: q.Answer,
			UserAnswer:    ans.Answer,
			IsCorrect:     correct,
		})
	}
	result.TotalQuestions = len(result.Details)
	result.WrongCount = result.TotalQuestions - result.CorrectCount
	result.Score = scorePercent(result.CorrectCount, result.TotalQuestions)
	return result
}

func scorePercent(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(total) * 100))
}

// Submit grades answers and, when credential verifies, records the attempt for
// that identity. A bad or absent credential only skips recording; storage
// failures are returned.
func (s *QuizService) Submit(ctx context.Context, credential string, answers []domain.AnswerSubmission) (domain.SubmitResult, error) {
	result := domain.SubmitResult{QuizResult: s.Grade(answers)}

	identity, ok := s.identify(ctx, credential)
	if ok {
		if err := s.record(ctx, identity, result.QuizResult); err != nil {
			return domain.SubmitResult{}, err
		}
		result.Saved = true
	}
	s.metrics.SubmissionGraded(result.Score, result.Saved)
	return result, nil
}

func (s *QuizService) identify(ctx context.Context, credential string) (domain.Identity, bool) {
	if credential == "" || s.verifier == nil {
		return domain.Identity{}, false
	}
	identity, err := s.verifier.Verify(ctx, credential)
	if err != nil {
		s.logger.WarnContext(ctx, "quiz submitted with invalid token, not saving session", "error", err)
		return domain.Identity{}, false
	}
	return identity, true
}

func (s *QuizService) record(ctx context.Context, identity domain.Identity, result domain.QuizResult) error {
	session := &domain.Session{
		ID:             s.newID(),
		OwnerID:        identity.ID,
		Score:          result.Score,
		TotalQuestions: result.TotalQuestions,
		CorrectCount:   result.CorrectCount,
		WrongCount:     result.WrongCount,
		Details:        result.Details,
		CreatedAt:      s.now().UTC(),
	}
	if err := s.sessions.CreateSession(ctx, session); err != nil {
		return fmt.Errorf("record session: %w", err)
	}
	s.logger.DebugContext(ctx, "session recorded", "session_id", session.ID, "owner_id", session.OwnerID, "score", session.Score)
	if s.listener != nil {
		s.listener.SessionRecorded(ctx)
	}
	return nil
}

type nopMetrics struct{}

func (nopMetrics) QuizIssued(int)             {}
func (nopMetrics) SubmissionGraded(int, bool) {}
