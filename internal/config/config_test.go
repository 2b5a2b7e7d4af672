package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv neutralizes the unprefixed variables so the host environment does
// not leak into the tests. Empty values count as unset for viper.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "SERVER_MODE", "RESULTS_FILE", "ALLOWED_DOMAINS", "QUIZ_BANK_FILE",
		"ADMIN_USERNAME", "ADMIN_PASSWORD_HASH", "JWT_SECRET", "ARCHIVE_TYPE",
		"TRACING_ENABLED", "CORS_ALLOWED_ORIGINS",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, "results.csv", cfg.Store.ResultsFile)
	assert.Equal(t, 20, cfg.Store.AnswerColumns)
	assert.Equal(t, []string{"telecom-paris.fr", "imt.fr"}, cfg.Quiz.AllowedDomains)
	assert.Equal(t, 12*time.Hour, cfg.JWT.ExpireTime)
	assert.Equal(t, "none", cfg.Archive.Type)
	assert.False(t, cfg.Admin.Configured())
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	yaml := `
server:
  port: "8080"
store:
  results_file: data/results.csv
  answer_columns: 12
quiz:
  allowed_domains: [telecom-paris.fr]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("ALLOWED_DOMAINS", "Example.org, @imt.fr,example.org")
	t.Setenv("CYBER_QUIZ_RATE_LIMIT_MAX_REQUESTS", "5")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "data/results.csv", cfg.Store.ResultsFile)
	assert.Equal(t, 12, cfg.Store.AnswerColumns)
	assert.Equal(t, []string{"example.org", "imt.fr"}, cfg.Quiz.AllowedDomains)
	assert.Equal(t, 5, cfg.RateLimit.MaxRequests)
}

func TestLoadConfigRejectsShortSecretWithAdmin(t *testing.T) {
	clearEnv(t)
	t.Setenv("ADMIN_USERNAME", "admin")
	t.Setenv("ADMIN_PASSWORD_HASH", "$2a$10$abcdefghijklmnopqrstuv")
	t.Setenv("JWT_SECRET", "short")

	_, err := LoadConfig(t.TempDir())
	assert.Error(t, err)
}

func TestLoadConfigCreatesLocalArchiveDir(t *testing.T) {
	clearEnv(t)
	archives := filepath.Join(t.TempDir(), "archives")
	t.Setenv("ARCHIVE_TYPE", "local")
	t.Setenv("CYBER_QUIZ_ARCHIVE_LOCAL_PATH", archives)

	_, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	info, err := os.Stat(archives)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		Server:    ServerConfig{Port: "3000", Mode: "release"},
		Store:     StoreConfig{ResultsFile: "results.csv", AnswerColumns: 20},
		Quiz:      QuizConfig{AllowedDomains: []string{"imt.fr"}, BankFile: "quiz.yaml"},
		Archive:   ArchiveConfig{Type: "none"},
		RateLimit: RateLimitConfig{MaxRequests: 1, WindowMinutes: 1},
	}
	require.NoError(t, Validate(cfg))

	cfg.Archive.Type = "minio"
	assert.Error(t, Validate(cfg), "minio needs an endpoint and a bucket")

	cfg.Archive.Type = "none"
	cfg.Quiz.AllowedDomains = []string{"not a domain"}
	assert.Error(t, Validate(cfg))

	cfg.Quiz.AllowedDomains = []string{"imt.fr"}
	cfg.Store.AnswerColumns = 0
	assert.Error(t, Validate(cfg))
}
