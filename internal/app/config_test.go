package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, 8000, cfg.Server.Port)
	require.Equal(t, "info", cfg.Server.LogLevel)
	require.Equal(t, "sqlite", cfg.Database.Driver)
	require.False(t, cfg.Cache.Redis.Enabled)
	require.Equal(t, "dolapkampus", cfg.Auth.JWT.Issuer)
	require.Equal(t, 7*24*time.Hour, cfg.Auth.JWT.TTL)
	require.False(t, cfg.Email.SMTP.Enabled)
	require.Equal(t, 10*time.Minute, cfg.Verification.CodeTTL)
	require.Equal(t, "@every 10m", cfg.Verification.SweepSchedule)
}

func TestLoadConfigReadsFile(t *testing.T) {
	dir := t.TempDir()
	contents := `
server:
  port: 9001
  log_level: debug
auth:
  jwt:
    secret: file-secret
  admin:
    emails:
      - admin@sakarya.edu.tr
      - root@itu.edu.tr
verification:
  code_ttl: 5m
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(contents), 0o600))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	require.Equal(t, 9001, cfg.Server.Port)
	require.Equal(t, "debug", cfg.Server.LogLevel)
	require.Equal(t, "file-secret", cfg.Auth.JWT.Secret)
	require.Equal(t, []string{"admin@sakarya.edu.tr", "root@itu.edu.tr"}, cfg.Auth.Admin.Emails)
	require.Equal(t, 5*time.Minute, cfg.Verification.CodeTTL)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("DOLAP_SERVER_PORT", "9100")
	t.Setenv("DOLAP_AUTH_JWT_SECRET", "env-secret")
	t.Setenv("DOLAP_CACHE_REDIS_ENABLED", "true")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	require.Equal(t, 9100, cfg.Server.Port)
	require.Equal(t, "env-secret", cfg.Auth.JWT.Secret)
	require.True(t, cfg.Cache.Redis.Enabled)
}

func TestDatabaseOptionsMapping(t *testing.T) {
	cfg := DatabaseConfig{
		Driver: "postgres",
		Postgres: DBAuthConfig{
			Host:     "db",
			Port:     5433,
			Database: "dolap",
			Username: "svc",
			Password: "pw",
		},
	}

	opts := cfg.DatabaseOptions()
	require.Equal(t, "postgres", opts.Driver)
	require.Equal(t, "db", opts.Host)
	require.Equal(t, 5433, opts.Port)
	require.Equal(t, "dolap", opts.Name)
	require.Equal(t, "svc", opts.User)
	require.Equal(t, "pw", opts.Password)
}

func TestRedisOptionsMapping(t *testing.T) {
	cfg := RedisCacheConfig{
		Address:  "redis:6379",
		Password: "pw",
		DB:       2,
		Timeout:  3 * time.Second,
		TLS:      true,
	}

	opts := cfg.RedisOptions()
	require.Equal(t, "redis:6379", opts.Addr)
	require.Equal(t, "pw", opts.Password)
	require.Equal(t, 2, opts.DB)
	require.Equal(t, 3*time.Second, opts.DialTimeout)
	require.NotNil(t, opts.TLSConfig)
}
