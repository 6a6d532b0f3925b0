package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/db?sslmode=disable")
	t.Setenv("SECRET_KEY", "s3cret")
}

func TestLoad_Defaults(t *testing.T) {
	// Ensure clean env for this test.
	os.Clearenv()
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "postgres://u:p@localhost:5432/db?sslmode=disable", cfg.DatabaseURL)
	require.Equal(t, 20, cfg.MaxOpenConns)
	require.Equal(t, 10, cfg.MaxIdleConns)
	require.Equal(t, 30*time.Minute, cfg.ConnMaxLifetime)
	require.Equal(t, 5*time.Minute, cfg.ConnMaxIdleTime)
	require.Equal(t, uint(5), cfg.PingAttempts)
	require.True(t, cfg.AutoMigrate)
	require.Equal(t, ":8080", cfg.HTTPAddr)
	require.Equal(t, 5*time.Second, cfg.HTTPReadHeaderTimeout)
	require.Equal(t, 10*time.Second, cfg.HTTPShutdownTimeout)
	require.Equal(t, "*", cfg.CORSAllowedOrigins)
	require.Equal(t, "s3cret", cfg.SecretKey)
	require.Equal(t, uint32(64*1024), cfg.PasswordHashMemoryKiB)
	require.Equal(t, "info", cfg.LogLevel)
	require.False(t, cfg.LogPretty)
}

func TestLoad_OverridesAndInvalidValues(t *testing.T) {
	t.Cleanup(os.Clearenv)

	t.Run("valid overrides", func(t *testing.T) {
		os.Clearenv()
		setRequired(t)
		t.Setenv("DB_MAX_OPEN", "5")
		t.Setenv("DB_MAX_IDLE", "2")
		t.Setenv("DB_CONN_MAX_LIFETIME", "1m")
		t.Setenv("DB_CONN_MAX_IDLE_TIME", "10s")
		t.Setenv("DB_AUTO_MIGRATE", "false")
		t.Setenv("HTTP_ADDR", ":9999")
		t.Setenv("LOG_LEVEL", "debug")
		t.Setenv("LOG_PRETTY", "true")
		t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")

		cfg, err := Load()
		require.NoError(t, err)
		require.Equal(t, 5, cfg.MaxOpenConns)
		require.Equal(t, 2, cfg.MaxIdleConns)
		require.Equal(t, time.Minute, cfg.ConnMaxLifetime)
		require.Equal(t, 10*time.Second, cfg.ConnMaxIdleTime)
		require.False(t, cfg.AutoMigrate)
		require.Equal(t, ":9999", cfg.HTTPAddr)
		require.Equal(t, "debug", cfg.LogLevel)
		require.True(t, cfg.LogPretty)
		require.Equal(t, "http://localhost:3000", cfg.CORSAllowedOrigins)
	})

	t.Run("invalid numbers are rejected", func(t *testing.T) {
		os.Clearenv()
		setRequired(t)
		t.Setenv("DB_MAX_OPEN", "abc")

		_, err := Load()
		require.Error(t, err)
	})

	t.Run("invalid durations are rejected", func(t *testing.T) {
		os.Clearenv()
		setRequired(t)
		t.Setenv("HTTP_SHUTDOWN_TIMEOUT", "bad")

		_, err := Load()
		require.Error(t, err)
	})
}

func TestLoad_PasswordHashMemory(t *testing.T) {
	t.Cleanup(os.Clearenv)

	t.Run("upper bound accepted", func(t *testing.T) {
		os.Clearenv()
		setRequired(t)
		t.Setenv("PASSWORD_HASH_MEMORY_KIB", "1048576")

		cfg, err := Load()
		require.NoError(t, err)
		require.Equal(t, uint32(1<<20), cfg.PasswordHashMemoryKiB)
	})

	t.Run("above upper bound rejected", func(t *testing.T) {
		os.Clearenv()
		setRequired(t)
		t.Setenv("PASSWORD_HASH_MEMORY_KIB", "1049600")

		_, err := Load()
		require.ErrorContains(t, err, "PASSWORD_HASH_MEMORY_KIB")
	})
}

func TestLoad_RequiredVariables(t *testing.T) {
	t.Cleanup(os.Clearenv)

	t.Run("missing secret", func(t *testing.T) {
		os.Clearenv()
		t.Setenv("DATABASE_URL", "postgres://localhost/db")

		_, err := Load()
		require.Error(t, err)
	})

	t.Run("missing database url", func(t *testing.T) {
		os.Clearenv()
		t.Setenv("SECRET_KEY", "x")

		_, err := Load()
		require.Error(t, err)
	})
}
