package integration

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/crypto/bcrypt"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/auth"
	"trivia-quiz-service/internal/domain"
	"trivia-quiz-service/internal/infra/postgres"
	infraredis "trivia-quiz-service/internal/infra/redis"
)

func TestSubmitHistoryLeaderboardEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	db := postgres.Open(pgURL)
	defer db.Close()
	if _, err := postgres.Migrate(ctx, db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := postgres.SeedQuestions(ctx, db, sampleQuestions()); err != nil {
		t.Fatalf("seed: %v", err)
	}

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()
	bank, err := app.LoadBank(ctx, postgres.NewQuestionLoader(pool))
	if err != nil {
		t.Fatalf("load bank: %v", err)
	}
	if bank.Len() != 3 {
		t.Fatalf("expected 3 questions, got %d", bank.Len())
	}
	if q, _ := bank.Get(1); q.Prompt != "Largest planet?" || q.Answer != "C" {
		t.Fatalf("questions out of order: %+v", q)
	}

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()

	sessions := postgres.NewSessionStore(db)
	users := postgres.NewUserStore(db)
	authService := auth.NewService(users, "integration-secret", time.Hour, bcrypt.MinCost)
	leaderboard := app.NewLeaderboardService(sessions, users, infraredis.NewLeaderboardCache(redisClient, time.Minute), nil)
	quiz := app.NewQuizService(bank, sessions, authService, app.WithSessionListener(leaderboard))

	aliceToken, alice, err := authService.Signup(ctx, "alice", "Alice@Example.com", "secret")
	if err != nil {
		t.Fatalf("signup alice: %v", err)
	}
	bobToken, _, err := authService.Signup(ctx, "bob", "bob@example.com", "secret")
	if err != nil {
		t.Fatalf("signup bob: %v", err)
	}
	if _, _, err := authService.Signup(ctx, "alice2", "alice@example.com", "secret"); !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken for case-folded email, got %v", err)
	}
	if _, _, err := authService.Login(ctx, "alice@example.com", "secret"); err != nil {
		t.Fatalf("login: %v", err)
	}

	// Warm the cache so the submit below has to invalidate it.
	if entries, err := leaderboard.Leaderboard(ctx); err != nil || len(entries) != 0 {
		t.Fatalf("expected empty leaderboard, got %+v err=%v", entries, err)
	}

	bobResult, err := quiz.Submit(ctx, bobToken, []domain.AnswerSubmission{answer(0, "B"), answer(1, "A")})
	if err != nil {
		t.Fatalf("submit bob: %v", err)
	}
	aliceResult, err := quiz.Submit(ctx, aliceToken, []domain.AnswerSubmission{answer(0, "B"), answer(1, "C"), answer(2, "D")})
	if err != nil {
		t.Fatalf("submit alice: %v", err)
	}
	if !bobResult.Saved || !aliceResult.Saved || aliceResult.Score != 100 || bobResult.Score != 50 {
		t.Fatalf("unexpected results alice=%+v bob=%+v", aliceResult, bobResult)
	}
	if _, err := quiz.Submit(ctx, "", []domain.AnswerSubmission{answer(0, "B")}); err != nil {
		t.Fatalf("anonymous submit: %v", err)
	}

	history, err := leaderboard.History(ctx, alice.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 1 || history[0].Score != 100 || history[0].TotalQuestions != 3 || history[0].CorrectCount != 3 {
		t.Fatalf("unexpected history %+v", history)
	}

	entries, err := leaderboard.Leaderboard(ctx)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 ranked sessions, got %+v", entries)
	}
	if entries[0].Username != "alice" || entries[0].Rank != 1 || entries[1].Username != "bob" || entries[1].Rank != 2 {
		t.Fatalf("unexpected ranking %+v", entries)
	}
}

func answer(id int, label string) domain.AnswerSubmission {
	return domain.AnswerSubmission{ID: id, Resolved: true, Answer: &label}
}

func sampleQuestions() []domain.QuestionRecord {
	return []domain.QuestionRecord{
		{Question: "What is 2 + 2?", A: "3", B: "4", C: "5", D: "22", Answer: "B"},
		{Question: "Largest planet?", A: "Mars", B: "Venus", C: "Jupiter", D: "Earth", Answer: "C"},
		{Question: "Chemical symbol for gold?", A: "Ag", B: "Gd", C: "Go", D: "Au", Answer: "D"},
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "trivia", "POSTGRES_PASSWORD": "triviapass", "POSTGRES_DB": "triviadb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://trivia:triviapass@%s:%s/triviadb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(opts), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test skipped in -short mode")
	}
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
