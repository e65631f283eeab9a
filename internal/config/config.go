package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"auction-engine/utils"

	"github.com/joho/godotenv"
)

// Config holds the runtime settings of the auction engine.
type Config struct {
	// Port is the listen address for the HTTP API, e.g. ":8080".
	Port string
	// SweepInterval is how often the expiry sweeper scans for due auctions.
	SweepInterval time.Duration
	// DatabaseURL selects the Postgres store when set; empty runs in-memory.
	DatabaseURL string
	// RedisAddr enables the Redis event publisher when set.
	RedisAddr string
	// RedisChannelPrefix prefixes the per-auction pub/sub channels.
	RedisChannelPrefix string
	// WalletDefaultBalance seeds the in-memory wallet guard per bidder.
	WalletDefaultBalance int64
}

// Load reads configuration from a .env file (if present) and the environment.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		utils.Warn("config: could not load .env", map[string]any{"error": err.Error()})
	}

	return Config{
		Port:                 port(),
		SweepInterval:        durationEnv("SWEEP_INTERVAL", 5*time.Second),
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		RedisAddr:            os.Getenv("REDIS_ADDR"),
		RedisChannelPrefix:   getenv("REDIS_CHANNEL_PREFIX", "auction"),
		WalletDefaultBalance: int64Env("WALLET_DEFAULT_BALANCE", 1_000_000),
	}
}

// port returns the server port from env or defaults to ":8080"
func port() string {
	if p := os.Getenv("PORT"); p != "" {
		return fmt.Sprintf(":%s", p)
	}
	return ":8080"
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		utils.Warn("config: invalid duration, using default", map[string]any{"key": key, "value": v})
		return fallback
	}
	return d
}

func int64Env(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		utils.Warn("config: invalid integer, using default", map[string]any{"key": key, "value": v})
		return fallback
	}
	return n
}
