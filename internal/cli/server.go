package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/auth"
	"trivia-quiz-service/internal/config"
	"trivia-quiz-service/internal/infra/memory"
	"trivia-quiz-service/internal/infra/postgres"
	infraredis "trivia-quiz-service/internal/infra/redis"
	"trivia-quiz-service/internal/metrics"
	transport "trivia-quiz-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

// storage holds whichever backends the config selected.
type storage struct {
	sessions app.SessionRepository
	users    interface {
		auth.UserRepository
		app.UsernameResolver
	}
	cache   app.LeaderboardCache
	closers []func()
}

func (s *storage) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger := cfg.NewLogger()
	slog.SetDefault(logger)

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}

	store, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.close()

	// The bank must be fully loaded before any request is served.
	bank, err := loadBank(ctx, cfg)
	if err != nil {
		return fmt.Errorf("question bank: %w", err)
	}
	logger.Info("question bank loaded", "source", cfg.Questions.Source, "questions", bank.Len())

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	authService := auth.NewService(store.users, cfg.Auth.JWTSecret,
		config.TTLDuration(cfg.Auth.TokenTTL, auth.DefaultTokenTTL), cfg.Auth.BcryptCost)
	leaderboard := app.NewLeaderboardService(store.sessions, store.users, store.cache, logger)
	quiz := app.NewQuizService(bank, store.sessions, authService,
		app.WithSessionListener(leaderboard),
		app.WithMetrics(metrics.New(registry)),
		app.WithLogger(logger),
	)

	handler := transport.NewRouter(transport.Dependencies{
		Quiz:           quiz,
		Leaderboard:    leaderboard,
		Auth:           authService,
		Gatherer:       registry,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Logger:         logger,
	})

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("starting quiz service", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case <-stop:
		logger.Info("shutting down server")
	case <-ctx.Done():
		logger.Info("context canceled, shutting down server")
	case err := <-serveErr:
		return fmt.Errorf("serve: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		config.TTLDuration(cfg.Server.ShutdownTimeout, 5*time.Second))
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func openStorage(ctx context.Context, cfg config.Config, logger *slog.Logger) (*storage, error) {
	store := &storage{}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, logger); err != nil {
			return nil, err
		}
		db := postgres.Open(cfg.Postgres.URL)
		store.closers = append(store.closers, func() { _ = db.Close() })
		store.sessions = postgres.NewSessionStore(db)
		store.users = postgres.NewUserStore(db)
		logger.Info("using postgres storage")
	} else {
		store.sessions = memory.NewSessionStore()
		store.users = memory.NewUserStore()
		logger.Warn("postgres url not configured, sessions and accounts are kept in memory")
	}

	cacheTTL := config.TTLDuration(cfg.Redis.TTL, 30*time.Second)
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		store.closers = append(store.closers, func() { _ = client.Close() })
		store.cache = infraredis.NewLeaderboardCache(client, cacheTTL)
		logger.Info("using redis leaderboard cache", "addr", cfg.Redis.Addr)
	} else {
		store.cache = memory.NewLeaderboardCache(cacheTTL)
	}
	return store, nil
}

func loadBank(ctx context.Context, cfg config.Config) (*app.Bank, error) {
	if cfg.Questions.Source != config.QuestionSourcePostgres {
		return app.LoadBank(ctx, memory.NewFileQuestionLoader(cfg.Questions.Path))
	}
	pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
	if err != nil {
		return nil, err
	}
	defer pool.Close()
	return app.LoadBank(ctx, postgres.NewQuestionLoader(pool))
}
