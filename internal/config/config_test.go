package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadYAMLWithEnvOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: "8080"
questions:
  source: postgres
auth:
  jwt_secret: from-yaml
  token_ttl: 24h
postgres:
  url: postgres://yaml
redis:
  addr: localhost:6379
  ttl: 10s
`), 0o600))
	clearEnv(t)
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("REDIS_DB", "2")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
	assert.Equal(t, QuestionSourcePostgres, cfg.Questions.Source)
	assert.Equal(t, "postgres://yaml", cfg.Postgres.URL)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, 24*time.Hour, TTLDuration(cfg.Auth.TokenTTL, time.Hour))
	assert.NoError(t, cfg.Validate())
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, QuestionSourceFile, cfg.Questions.Source)
	assert.Equal(t, "config/questions.json", cfg.Questions.Path)
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("JWT_SECRET=dotenv-secret\n"), 0o600))
	t.Setenv("JWT_SECRET", "")
	// godotenv never overrides variables that are already set, so drop it entirely.
	require.NoError(t, os.Unsetenv("JWT_SECRET"))

	cfg, err := Load(filepath.Join(dir, "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "dotenv-secret", cfg.Auth.JWTSecret)
}

func TestLoadRejectsBadInput(t *testing.T) {
	chdir(t, t.TempDir())
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unterminated"), 0o600))
	_, err := Load(path)
	assert.Error(t, err)

	clearEnv(t)
	t.Setenv("REDIS_DB", "two")
	_, err = Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	var cfg Config
	cfg.Questions.Source = QuestionSourceFile
	assert.Error(t, cfg.Validate(), "secret required")

	cfg.Auth.JWTSecret = "s"
	assert.NoError(t, cfg.Validate())

	cfg.Questions.Source = QuestionSourcePostgres
	assert.Error(t, cfg.Validate(), "postgres source needs url")

	cfg.Postgres.URL = "postgres://localhost/trivia"
	assert.NoError(t, cfg.Validate())

	cfg.Questions.Source = "s3"
	assert.Error(t, cfg.Validate())
}

func TestTTLDuration(t *testing.T) {
	assert.Equal(t, time.Minute, TTLDuration("", time.Minute))
	assert.Equal(t, time.Minute, TTLDuration("soon", time.Minute))
	assert.Equal(t, 30*time.Second, TTLDuration("30s", time.Minute))
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

// clearEnv blanks every override so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"PORT", "JWT_SECRET", "POSTGRES_URL", "REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "QUESTIONS_SOURCE", "QUESTIONS_PATH", "LOG_LEVEL", "LOG_FORMAT"} {
		t.Setenv(key, "")
	}
}
