package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type Config struct {
	DBPath          string
	ServerPort      string
	LogLevel        string
	ActiveProfileID string
	UpstreamAPIKey  string
	UpstreamBaseURL string
	ApplyWorkers    int
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		DBPath:          getEnv("DB_PATH", "ratings.db"),
		ServerPort:      getEnv("SERVER_PORT", "8080"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		ActiveProfileID: getEnv("RATING_PROFILE_ID", "default"),
		UpstreamAPIKey:  getEnv("DIRECTORY_API_KEY", ""),
		UpstreamBaseURL: getEnv("DIRECTORY_BASE_URL", ""),
		ApplyWorkers:    getEnvInt("APPLY_WORKERS", 8),
	}

	logger.Info().
		Str("db_path", cfg.DBPath).
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Str("profile_id", cfg.ActiveProfileID).
		Bool("upstream_sync", cfg.UpstreamAPIKey != "").
		Int("apply_workers", cfg.ApplyWorkers).
		Msg("configuration loaded")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

var Module = fx.Provide(Load)
