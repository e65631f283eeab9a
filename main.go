package main

import (
	"fmt"
	"os"

	"auction-engine/internal/autobid"
	"auction-engine/internal/bidding"
	"auction-engine/internal/broadcast"
	"auction-engine/internal/config"
	"auction-engine/internal/gateway"
	"auction-engine/internal/ledger"
	"auction-engine/internal/repository"
	"auction-engine/internal/repository/postgres"
	"auction-engine/internal/server"
	"auction-engine/internal/sweeper"
	"auction-engine/utils"

	goredis "github.com/redis/go-redis/v9"
)

func main() {
	cfg := config.Load()

	store, cleanup, err := buildStore(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize store: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	lgr := ledger.New(store)
	hub := broadcast.NewHub()
	bcast := buildBroadcast(cfg, hub)
	wallet := gateway.NewMemoryWallet(cfg.WalletDefaultBalance)
	notify := gateway.NewLogNotifier()

	resolver := autobid.NewResolver(store, lgr, wallet, bcast, notify)
	dispatcher := autobid.NewDispatcher(resolver)
	dispatcher.Start()
	defer dispatcher.Stop()

	svc := bidding.NewService(store, lgr, wallet, bcast, notify, dispatcher)

	swp := sweeper.New(store, lgr, wallet, bcast, notify)
	if err := swp.Start(cfg.SweepInterval); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start sweeper: %v\n", err)
		os.Exit(1)
	}
	defer swp.Stop()

	router := server.SetupRouter(svc, hub)

	fmt.Printf("Starting auction server on %s...\n", cfg.Port)
	if err := router.Run(cfg.Port); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start server: %v\n", err)
		os.Exit(1)
	}
}

// buildStore selects the Postgres store when DATABASE_URL is set, otherwise
// the in-memory store.
func buildStore(cfg config.Config) (repository.AuctionStore, func(), error) {
	if cfg.DatabaseURL == "" {
		utils.Info("using in-memory store", nil)
		return repository.NewMemoryStore(), func() {}, nil
	}

	pg, err := postgres.Connect(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	utils.Info("using postgres store", nil)
	return pg, func() { _ = pg.Close() }, nil
}

// buildBroadcast attaches the Redis publisher alongside the in-process hub
// when REDIS_ADDR is configured.
func buildBroadcast(cfg config.Config, hub *broadcast.Hub) gateway.BroadcastGateway {
	if cfg.RedisAddr == "" {
		return hub
	}
	client := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
	utils.Info("redis event publisher enabled", map[string]any{"addr": cfg.RedisAddr})
	return gateway.MultiBroadcast(hub, gateway.NewRedisPublisher(client, cfg.RedisChannelPrefix))
}
