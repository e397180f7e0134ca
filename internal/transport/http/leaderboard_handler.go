package http

import (
	"log/slog"
	"net/http"

	"trivia-quiz-service/internal/app"
)

// LeaderboardHandler serves player history and the global leaderboard.
type LeaderboardHandler struct {
	service *app.LeaderboardService
	logger  *slog.Logger
}

func NewLeaderboardHandler(service *app.LeaderboardService, logger *slog.Logger) *LeaderboardHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &LeaderboardHandler{service: service, logger: logger}
}

// History must run behind requireAuth.
func (h *LeaderboardHandler) History(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Missing token")
		return
	}
	history, err := h.service.History(r.Context(), identity.ID)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "history failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}
	writeJSON(w, http.StatusOK, history)
}

func (h *LeaderboardHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.Leaderboard(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "leaderboard failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
