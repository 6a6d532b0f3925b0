package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"

	"example.com/note-keeper/internal/security"
)

type Config struct {
	DatabaseURL string `env:"DATABASE_URL" env-required:"true"`

	MaxOpenConns    int           `env:"DB_MAX_OPEN" env-default:"20"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE" env-default:"10"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" env-default:"30m"`
	ConnMaxIdleTime time.Duration `env:"DB_CONN_MAX_IDLE_TIME" env-default:"5m"`
	PingAttempts    uint          `env:"DB_PING_ATTEMPTS" env-default:"5"`
	AutoMigrate     bool          `env:"DB_AUTO_MIGRATE" env-default:"true"`

	HTTPAddr              string        `env:"HTTP_ADDR" env-default:":8080"`
	HTTPReadHeaderTimeout time.Duration `env:"HTTP_READ_HEADER_TIMEOUT" env-default:"5s"`
	HTTPShutdownTimeout   time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"10s"`
	CORSAllowedOrigins    string        `env:"CORS_ALLOWED_ORIGINS" env-default:"*"`

	SecretKey             string `env:"SECRET_KEY" env-required:"true"`
	PasswordHashMemoryKiB uint32 `env:"PASSWORD_HASH_MEMORY_KIB" env-default:"65536"`

	LogLevel  string `env:"LOG_LEVEL" env-default:"info"`
	LogPretty bool   `env:"LOG_PRETTY" env-default:"false"`
}

// Load reads the configuration from the environment. A .env file in the
// working directory is loaded first when present.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read env: %w", err)
	}
	if cfg.PasswordHashMemoryKiB > security.MaxMemoryKiB {
		return Config{}, fmt.Errorf("PASSWORD_HASH_MEMORY_KIB: %d exceeds %d", cfg.PasswordHashMemoryKiB, security.MaxMemoryKiB)
	}
	return cfg, nil
}
