package gateway

import (
	"auction-engine/utils"
)

// Notification event types emitted by the core.
const (
	NotifyOutbid          = "OUTBID"
	NotifyAuctionWon      = "AUCTION_WON"
	NotifyAuctionSold     = "AUCTION_SOLD"
	NotifyAuctionNotSold  = "AUCTION_NOT_SOLD"
	NotifyAuctionCancel   = "AUCTION_CANCELLED"
	NotifyAutoBidDisabled = "AUTO_BID_DEACTIVATED"
)

// LogNotifier is a NotificationGateway that records alerts in the service log.
// The production notification pipeline is an external collaborator; this keeps
// the call sites exercised without one.
type LogNotifier struct{}

// NewLogNotifier creates a log-backed notification gateway.
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

// Notify logs the alert for the given user.
func (n *LogNotifier) Notify(userID string, eventType string, payload map[string]any) {
	fields := map[string]any{
		"user_id":    userID,
		"event_type": eventType,
	}
	for k, v := range payload {
		fields[k] = v
	}
	utils.Info("notification", fields)
}
