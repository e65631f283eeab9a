package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	require.Equal(t, ":8080", cfg.Port)
	require.Equal(t, 5*time.Second, cfg.SweepInterval)
	require.Equal(t, "auction", cfg.RedisChannelPrefix)
	require.Equal(t, int64(1_000_000), cfg.WalletDefaultBalance)
	require.Empty(t, cfg.DatabaseURL)
	require.Empty(t, cfg.RedisAddr)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("SWEEP_INTERVAL", "30s")
	t.Setenv("DATABASE_URL", "postgres://localhost/auctions")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_CHANNEL_PREFIX", "bids")
	t.Setenv("WALLET_DEFAULT_BALANCE", "250000")

	cfg := Load()

	require.Equal(t, ":9090", cfg.Port)
	require.Equal(t, 30*time.Second, cfg.SweepInterval)
	require.Equal(t, "postgres://localhost/auctions", cfg.DatabaseURL)
	require.Equal(t, "localhost:6379", cfg.RedisAddr)
	require.Equal(t, "bids", cfg.RedisChannelPrefix)
	require.Equal(t, int64(250000), cfg.WalletDefaultBalance)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("SWEEP_INTERVAL", "soon")
	t.Setenv("WALLET_DEFAULT_BALANCE", "plenty")

	cfg := Load()

	require.Equal(t, 5*time.Second, cfg.SweepInterval)
	require.Equal(t, int64(1_000_000), cfg.WalletDefaultBalance)
}

func TestLoad_NegativeIntervalFallsBack(t *testing.T) {
	t.Setenv("SWEEP_INTERVAL", "-10s")

	cfg := Load()
	require.Equal(t, 5*time.Second, cfg.SweepInterval)
}
