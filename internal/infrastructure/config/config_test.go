package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "app:\n  name: nutrition-test\n"))
	require.NoError(t, err)

	assert.Equal(t, "nutrition-test", cfg.App.Name)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "memory", cfg.Cache.Provider)
	assert.Equal(t, 24*time.Hour, cfg.Cache.AnalysisTTL)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, "nutrition.db", cfg.GetDSN())
	assert.Equal(t, "0.0.0.0:8080", cfg.Address())
}

func TestLoadFileValues(t *testing.T) {
	path := writeConfig(t, `
app:
  environment: production
  log_level: debug
server:
  port: 9000
database:
  driver: postgres
  host: db.internal
  database: nutrition
  username: svc
  password: secret
cache:
  provider: redis
  analysis_ttl: 2h
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "redis", cfg.Cache.Provider)
	assert.Equal(t, 2*time.Hour, cfg.Cache.AnalysisTTL)
	assert.Equal(t, "host=db.internal port=5432 user=svc password=secret dbname=nutrition sslmode=disable", cfg.GetDSN())
	assert.Equal(t, "localhost:6379", cfg.RedisAddr())
}

func TestLoadEnvironmentOverride(t *testing.T) {
	t.Setenv("NUTRITION_SERVER_PORT", "7070")

	cfg, err := Load(writeConfig(t, "server:\n  port: 9000\n"))
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
}

func TestLoadInvalid(t *testing.T) {
	testCases := map[string]string{
		"UnknownDriver":   "database:\n  driver: mysql\n",
		"UnknownCache":    "cache:\n  provider: memcached\n",
		"PortOutOfRange":  "server:\n  port: 70000\n",
		"SamplingTooHigh": "monitoring:\n  sampling_rate: 2\n",
		"ZeroBurst":       "rate_limit:\n  enable: true\n  burst_size: 0\n",
	}

	for name, body := range testCases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestValidateBurstSize(t *testing.T) {
	cfg, err := Load(writeConfig(t, "app:\n  name: nutrition-test\n"))
	require.NoError(t, err)

	cfg.RateLimit.BurstSize = 0
	assert.EqualError(t, cfg.Validate(), "rate_limit.burst_size must be positive when rate limiting is enabled")

	cfg.RateLimit.Enable = false
	assert.NoError(t, cfg.Validate())
}

func TestLoadZeroBurstWithRateLimitOff(t *testing.T) {
	cfg, err := Load(writeConfig(t, "rate_limit:\n  enable: false\n  burst_size: 0\n"))
	require.NoError(t, err)
	assert.Zero(t, cfg.RateLimit.BurstSize)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
