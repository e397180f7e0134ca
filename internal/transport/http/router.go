package http

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/auth"
)

// Dependencies are the services the HTTP API is built on.
type Dependencies struct {
	Quiz        *app.QuizService
	Leaderboard *app.LeaderboardService
	Auth        *auth.Service
	// Gatherer backs /metrics; nil disables the endpoint.
	Gatherer       prometheus.Gatherer
	AllowedOrigins []string
	Logger         *slog.Logger
}

// NewRouter mounts the API under /api and wraps it with CORS and request logging.
func NewRouter(deps Dependencies) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	quizHandler := NewQuizHandler(deps.Quiz, logger)
	authHandler := NewAuthHandler(deps.Auth, logger)
	leaderboardHandler := NewLeaderboardHandler(deps.Leaderboard, logger)
	wsHandler := NewWSHandler(deps.Leaderboard, logger)
	authed := requireAuth(deps.Auth)

	router := mux.NewRouter()
	router.Use(requestLogger(logger))

	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	if deps.Gatherer != nil {
		router.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/ping", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "message": "Quiz API is alive"})
	}).Methods(http.MethodGet)

	api.HandleFunc("/auth/signup", authHandler.Signup).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", authHandler.Login).Methods(http.MethodPost)
	api.Handle("/auth/me", authed(http.HandlerFunc(authHandler.Me))).Methods(http.MethodGet)

	api.HandleFunc("/quiz/new", quizHandler.NewQuiz).Methods(http.MethodGet)
	api.HandleFunc("/quiz/submit", quizHandler.Submit).Methods(http.MethodPost)

	api.Handle("/user/history", authed(http.HandlerFunc(leaderboardHandler.History))).Methods(http.MethodGet)
	api.HandleFunc("/leaderboard", leaderboardHandler.Leaderboard).Methods(http.MethodGet)
	api.HandleFunc("/leaderboard/stream", wsHandler.ServeWS).Methods(http.MethodGet)

	origins := deps.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		MaxAge:         300,
	}).Handler(router)
}
