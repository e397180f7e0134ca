package http

import (
	"errors"
	"log/slog"
	"net/http"

	"trivia-quiz-service/internal/auth"
	"trivia-quiz-service/internal/domain"
)

// AuthHandler exposes signup, login and the current-user lookup.
type AuthHandler struct {
	service *auth.Service
	logger  *slog.Logger
}

func NewAuthHandler(service *auth.Service, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{service: service, logger: logger}
}

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string          `json:"token"`
	User  domain.Identity `json:"user"`
}

type meResponse struct {
	User domain.Identity `json:"user"`
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	token, identity, err := h.service.Signup(r.Context(), req.Username, req.Email, req.Password)
	switch {
	case errors.Is(err, domain.ErrMissingFields):
		writeError(w, http.StatusBadRequest, "All fields are required")
	case errors.Is(err, domain.ErrEmailTaken):
		writeError(w, http.StatusBadRequest, "Email already in use")
	case err != nil:
		h.logger.ErrorContext(r.Context(), "signup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Server error during signup")
	default:
		writeJSON(w, http.StatusOK, authResponse{Token: token, User: identity})
	}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	token, identity, err := h.service.Login(r.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, domain.ErrMissingFields):
		writeError(w, http.StatusBadRequest, "Email and password required")
	case errors.Is(err, domain.ErrInvalidCredentials):
		writeError(w, http.StatusBadRequest, "Invalid credentials")
	case err != nil:
		h.logger.ErrorContext(r.Context(), "login failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Server error during login")
	default:
		writeJSON(w, http.StatusOK, authResponse{Token: token, User: identity})
	}
}

// Me must run behind requireAuth.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	caller, ok := identityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Missing token")
		return
	}
	identity, err := h.service.Me(r.Context(), caller.ID)
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "User not found")
	case err != nil:
		h.logger.ErrorContext(r.Context(), "me lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Server error")
	default:
		writeJSON(w, http.StatusOK, meResponse{User: identity})
	}
}
