// Package config reads process settings from the environment, after loading a .env file when
// one is present.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/AdamBeresnev/tourney-predictor/internal/scoring"
	"github.com/joho/godotenv"
)

type SimulationMode string

const (
	SimulationNone   SimulationMode = "none"
	SimulationRandom SimulationMode = "random"
)

type OAuthProvider struct {
	Key         string
	Secret      string
	CallbackURL string
}

type Config struct {
	DatabasePath    string
	MigrationsPath  string
	Addr            string
	SessionLifetime time.Duration

	HonorRollPoints        scoring.HonorRollPoints
	HeadToHead             bool
	LeaderboardConcurrency int

	SimulationMode SimulationMode
	SimulationSeed int64

	Discord OAuthProvider
	Google  OAuthProvider
}

// Load reads .env (if any) and then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function so tests don't have to touch the process
// environment.
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		DatabasePath:   orDefault(getenv("DATABASE_PATH"), "tourney_predictor.db"),
		MigrationsPath: orDefault(getenv("MIGRATIONS_PATH"), "file://migrations"),
		Addr:           orDefault(getenv("ADDR"), ":8080"),
		SimulationMode: SimulationMode(orDefault(getenv("SIMULATION_MODE"), string(SimulationNone))),
		Discord: OAuthProvider{
			Key:         getenv("DISCORD_KEY"),
			Secret:      getenv("DISCORD_SECRET"),
			CallbackURL: getenv("DISCORD_CALLBACK_URL"),
		},
		Google: OAuthProvider{
			Key:         getenv("GOOGLE_KEY"),
			Secret:      getenv("GOOGLE_SECRET"),
			CallbackURL: getenv("GOOGLE_CALLBACK_URL"),
		},
	}

	var errs []error
	var err error

	if cfg.SessionLifetime, err = parseDuration(getenv("SESSION_LIFETIME"), 24*time.Hour); err != nil {
		errs = append(errs, fmt.Errorf("SESSION_LIFETIME: %w", err))
	}
	if cfg.HonorRollPoints, err = parseHonorRollPoints(getenv("HONOR_ROLL_POINTS")); err != nil {
		errs = append(errs, fmt.Errorf("HONOR_ROLL_POINTS: %w", err))
	}
	if cfg.HeadToHead, err = parseBool(getenv("HEAD_TO_HEAD"), true); err != nil {
		errs = append(errs, fmt.Errorf("HEAD_TO_HEAD: %w", err))
	}
	if cfg.LeaderboardConcurrency, err = parseInt(getenv("LEADERBOARD_CONCURRENCY"), 8); err != nil {
		errs = append(errs, fmt.Errorf("LEADERBOARD_CONCURRENCY: %w", err))
	} else if cfg.LeaderboardConcurrency < 1 {
		errs = append(errs, fmt.Errorf("LEADERBOARD_CONCURRENCY: must be at least 1, got %d", cfg.LeaderboardConcurrency))
	}
	if cfg.SimulationSeed, err = parseInt64(getenv("SIMULATION_SEED"), 1); err != nil {
		errs = append(errs, fmt.Errorf("SIMULATION_SEED: %w", err))
	}

	switch cfg.SimulationMode {
	case SimulationNone, SimulationRandom:
	default:
		errs = append(errs, fmt.Errorf("SIMULATION_MODE: unknown mode %q", cfg.SimulationMode))
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return cfg, nil
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func parseDuration(v string, def time.Duration) (time.Duration, error) {
	if v == "" {
		return def, nil
	}
	return time.ParseDuration(v)
}

func parseBool(v string, def bool) (bool, error) {
	if v == "" {
		return def, nil
	}
	return strconv.ParseBool(v)
}

func parseInt(v string, def int) (int, error) {
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}

func parseInt64(v string, def int64) (int64, error) {
	if v == "" {
		return def, nil
	}
	return strconv.ParseInt(v, 10, 64)
}

// Expects "champion,runner-up,third", e.g. "5,3,1"
func parseHonorRollPoints(v string) (scoring.HonorRollPoints, error) {
	if v == "" {
		return scoring.DefaultHonorRollPoints, nil
	}

	parts := strings.Split(v, ",")
	if len(parts) != 3 {
		return scoring.HonorRollPoints{}, fmt.Errorf("want 3 comma separated values, got %d", len(parts))
	}

	values := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return scoring.HonorRollPoints{}, err
		}
		if n < 0 {
			return scoring.HonorRollPoints{}, fmt.Errorf("negative points %d", n)
		}
		values[i] = n
	}
	return scoring.HonorRollPoints{Champion: values[0], RunnerUp: values[1], ThirdPlace: values[2]}, nil
}
