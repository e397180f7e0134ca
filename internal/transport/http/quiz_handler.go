package http

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/domain"
)

// QuizHandler serves drawing and grading quizzes.
type QuizHandler struct {
	service *app.QuizService
	logger  *slog.Logger
}

func NewQuizHandler(service *app.QuizService, logger *slog.Logger) *QuizHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &QuizHandler{service: service, logger: logger}
}

type submitRequest struct {
	Answers json.RawMessage `json:"answers"`
}

// NewQuiz handles GET /quiz/new?num=N. A missing or unparsable num uses the default size.
func (h *QuizHandler) NewQuiz(w http.ResponseWriter, r *http.Request) {
	num, err := strconv.Atoi(r.URL.Query().Get("num"))
	if err != nil {
		num = 0
	}
	writeJSON(w, http.StatusOK, h.service.NewQuiz(num))
}

// Submit handles POST /quiz/submit. The bearer token is optional here: an
// invalid one only means the attempt is not recorded.
func (h *QuizHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	answers, ok := parseAnswers(req.Answers)
	if !ok {
		writeError(w, http.StatusBadRequest, "answers array is required")
		return
	}

	result, err := h.service.Submit(r.Context(), bearerToken(r), answers)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "submit quiz failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Server error during quiz submission")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// parseAnswers requires a JSON array. Elements that are not answer objects are
// dropped; they could never resolve to a question anyway.
func parseAnswers(raw json.RawMessage) ([]domain.AnswerSubmission, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, false
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(trimmed, &elems); err != nil {
		return nil, false
	}
	answers := make([]domain.AnswerSubmission, 0, len(elems))
	for _, elem := range elems {
		var ans domain.AnswerSubmission
		if err := json.Unmarshal(elem, &ans); err != nil {
			continue
		}
		answers = append(answers, ans)
	}
	return answers, true
}
