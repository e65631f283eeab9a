package gateway

import (
	"context"
	"encoding/json"
	"time"

	model "auction-engine/internal/models"
	"auction-engine/utils"

	"github.com/redis/go-redis/v9"
)

const publishTimeout = 2 * time.Second

// RedisPublisher is a BroadcastGateway that publishes auction events to a
// Redis pub/sub channel per auction, so other instances and edge fan-out
// processes can relay them. Best-effort: publish failures are logged, never
// surfaced to the bidding path.
type RedisPublisher struct {
	client  *redis.Client
	channel string
}

// NewRedisPublisher creates a publisher over the given client. Events for
// auction X go to channel "<prefix>:<X>".
func NewRedisPublisher(client *redis.Client, channelPrefix string) *RedisPublisher {
	if channelPrefix == "" {
		channelPrefix = "auction"
	}
	return &RedisPublisher{client: client, channel: channelPrefix}
}

// Publish marshals the event and publishes it fire-and-forget.
func (p *RedisPublisher) Publish(auctionID string, event model.AuctionEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		utils.Error("redis publisher: marshal event", map[string]any{
			"auction_id": auctionID,
			"type":       string(event.Type),
			"error":      err.Error(),
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := p.client.Publish(ctx, p.channel+":"+auctionID, data).Err(); err != nil {
		utils.Warn("redis publisher: publish failed", map[string]any{
			"auction_id": auctionID,
			"type":       string(event.Type),
			"error":      err.Error(),
		})
	}
}
