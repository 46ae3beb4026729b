package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything tunable from the environment. The game
// policy knobs (capacity, countdown, stake) are placeholders promoted
// to configuration rather than business rules.
type Config struct {
	Port        string
	DatabaseURL string

	MaxPlayersPerGame   int
	StartCountdown      int
	CallInterval        int
	DefaultStakeCents   int64
	StartingWalletCents int64
	TickInterval        time.Duration
}

// Load reads .env (when present) and the environment.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[INFO] No .env file found, reading environment variables")
	}

	return Config{
		Port:                getEnv("PORT", "4000"),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		MaxPlayersPerGame:   getEnvInt("MAX_PLAYERS_PER_GAME", 100),
		StartCountdown:      getEnvInt("START_COUNTDOWN", 30),
		CallInterval:        getEnvInt("CALL_INTERVAL", 5),
		DefaultStakeCents:   int64(getEnvInt("DEFAULT_STAKE_CENTS", 1000)),
		StartingWalletCents: int64(getEnvInt("STARTING_WALLET_CENTS", 5000)),
		TickInterval:        time.Second,
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("[WARN] invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}
