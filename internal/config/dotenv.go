package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads environment variables from a .env file if present.
// Existing environment variables are not overwritten.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

type Config struct {
	MaxRounds                int
	MinPlayers               int
	HandSize                 int
	PointsPerWin             int
	SubmitDurationSeconds    int
	VoteDurationSeconds      int
	ResultDurationSeconds    int
	DBMaxOpenConns           int
	DBMaxIdleConns           int
	DBConnMaxLifetimeSeconds int
	DBConnMaxIdleTimeSeconds int
}

func Default() Config {
	return Config{
		MaxRounds:                5,
		MinPlayers:               1,
		HandSize:                 5,
		PointsPerWin:             100,
		SubmitDurationSeconds:    30,
		VoteDurationSeconds:      30,
		ResultDurationSeconds:    8,
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           10,
		DBConnMaxLifetimeSeconds: 300,
		DBConnMaxIdleTimeSeconds: 60,
	}
}

func Load() Config {
	cfg := Default()
	if raw := os.Getenv("MAX_ROUNDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.MaxRounds = value
		}
	}
	if raw := os.Getenv("MIN_PLAYERS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.MinPlayers = value
		}
	}
	if raw := os.Getenv("HAND_SIZE"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 1 {
			cfg.HandSize = value
		}
	}
	if raw := os.Getenv("POINTS_PER_WIN"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.PointsPerWin = value
		}
	}
	if raw := os.Getenv("SUBMIT_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil {
			cfg.SubmitDurationSeconds = value
		}
	}
	if raw := os.Getenv("VOTE_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil {
			cfg.VoteDurationSeconds = value
		}
	}
	if raw := os.Getenv("RESULT_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil {
			cfg.ResultDurationSeconds = value
		}
	}
	if raw := os.Getenv("DB_MAX_OPEN_CONNS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBMaxOpenConns = value
		}
	}
	if raw := os.Getenv("DB_MAX_IDLE_CONNS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBMaxIdleConns = value
		}
	}
	if raw := os.Getenv("DB_CONN_MAX_LIFETIME_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBConnMaxLifetimeSeconds = value
		}
	}
	if raw := os.Getenv("DB_CONN_MAX_IDLE_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBConnMaxIdleTimeSeconds = value
		}
	}
	return cfg
}
