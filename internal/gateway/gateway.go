package gateway

import (
	model "auction-engine/internal/models"
)

// WalletGuard locks and releases bidder funds in the point wallet. Lock is
// called before a bid stands; Release frees funds of superseded bidders.
//
//go:generate mockgen -source=gateway.go -destination=mock_gateway.go -package=gateway
type WalletGuard interface {
	// Lock reserves amount for the bidder. Returns ErrInsufficientFunds when
	// the bidder cannot cover it.
	Lock(bidderID string, amount int64) error
	Release(bidderID string, amount int64)
}

// BroadcastGateway fans auction events out to real-time consumers.
// Publishing is fire-and-forget and best-effort.
type BroadcastGateway interface {
	Publish(auctionID string, event model.AuctionEvent)
}

// NotificationGateway delivers event-based alerts to individual users
// (outbid notices, winner and seller alerts at close).
type NotificationGateway interface {
	Notify(userID string, eventType string, payload map[string]any)
}

// MultiBroadcast fans one Publish out to several gateways.
func MultiBroadcast(gateways ...BroadcastGateway) BroadcastGateway {
	return multiBroadcast(gateways)
}

type multiBroadcast []BroadcastGateway

func (m multiBroadcast) Publish(auctionID string, event model.AuctionEvent) {
	for _, gw := range m {
		gw.Publish(auctionID, event)
	}
}
