package config

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"chess-tracker/internal/constants"
)

type Config struct {
	ChessAPIBase string
	DBPath       string
	ServerPort   string
	LogLevel     string
	TimeClass    string
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		ChessAPIBase: getEnv("CHESS_API_BASE", "https://api.chess.com/pub"),
		DBPath:       getEnv("DB_PATH", "chess.db"),
		ServerPort:   getEnv("SERVER_PORT", "8080"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		TimeClass:    getEnv("TIME_CLASS", constants.DefaultTimeClass),
	}

	logger.Info().
		Str("api_base", cfg.ChessAPIBase).
		Str("db_path", cfg.DBPath).
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Str("time_class", cfg.TimeClass).
		Msg("configuration loaded")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

var Module = fx.Provide(Load)
