package models

import "time"

// IncrementUnit is the minimum bid granularity in currency units.
// Manually submitted amounts must be positive multiples of it.
const IncrementUnit int64 = 100

// AuctionStatus is the lifecycle state of an auction.
type AuctionStatus string

const (
	AuctionActive        AuctionStatus = "ACTIVE"
	AuctionSold          AuctionStatus = "SOLD"
	AuctionReserveNotMet AuctionStatus = "RESERVE_NOT_MET"
	AuctionCancelled     AuctionStatus = "CANCELLED"
)

// Terminal reports whether the status has no outgoing transitions.
func (s AuctionStatus) Terminal() bool {
	return s == AuctionSold || s == AuctionReserveNotMet || s == AuctionCancelled
}

// Auction is the authoritative record of a listing's price and lifecycle.
// CurrentPrice and BidCount are mutated only through the ledger; Status and
// WinnerID only when the auction closes.
type Auction struct {
	AuctionID    string        `json:"auction_id" db:"auction_id"`
	Title        string        `json:"title" db:"title"`
	Description  string        `json:"description" db:"description"`
	SellerID     string        `json:"seller_id" db:"seller_id"`
	StartPrice   int64         `json:"start_price" db:"start_price"`
	CurrentPrice int64         `json:"current_price" db:"current_price"`
	HopePrice    int64         `json:"hope_price" db:"hope_price"`
	ReservePrice int64         `json:"reserve_price" db:"reserve_price"` // 0 means no reserve
	Status       AuctionStatus `json:"status" db:"status"`
	BidCount     int           `json:"bid_count" db:"bid_count"`
	WinnerID     string        `json:"winner_id,omitempty" db:"winner_id"`
	EndAt        time.Time     `json:"end_at" db:"end_at"`
	CreatedAt    time.Time     `json:"created_at" db:"created_at"`
}

// BidOrigin distinguishes human bids from cascade executions.
type BidOrigin string

const (
	OriginManual BidOrigin = "MANUAL"
	OriginAuto   BidOrigin = "AUTO_EXECUTION"
)

// BidStatus is the lifecycle state of a single bid record.
type BidStatus string

const (
	BidActive    BidStatus = "ACTIVE"
	BidOutbid    BidStatus = "OUTBID"
	BidCancelled BidStatus = "CANCELLED"
)

// BidRecord is one concrete priced bid event. Amount, bidder and auction are
// immutable after creation; only Status may change.
type BidRecord struct {
	BidID     string    `json:"bid_id" db:"bid_id"`
	AuctionID string    `json:"auction_id" db:"auction_id"`
	BidderID  string    `json:"bidder_id" db:"bidder_id"`
	Amount    int64     `json:"amount" db:"amount"`
	Origin    BidOrigin `json:"origin" db:"origin"`
	Status    BidStatus `json:"status" db:"status"`
	PlacedAt  time.Time `json:"placed_at" db:"placed_at"`
}

// AutoBidMandate is a bidder's standing instruction: bid on their behalf up to
// CeilingAmount, stepping by StepPercentage over the amount being overtaken.
// At most one active mandate exists per (auction, bidder).
type AutoBidMandate struct {
	MandateID      string    `json:"mandate_id" db:"mandate_id"`
	AuctionID      string    `json:"auction_id" db:"auction_id"`
	BidderID       string    `json:"bidder_id" db:"bidder_id"`
	CeilingAmount  int64     `json:"ceiling_amount" db:"ceiling_amount"`
	StepPercentage int       `json:"step_percentage" db:"step_percentage"`
	Active         bool      `json:"active" db:"active"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// EventType identifies a real-time broadcast event.
type EventType string

const (
	EventNewBid           EventType = "NEW_BID"
	EventAutoBidCompeting EventType = "AUTO_BID_COMPETING"
	EventAutoBidResult    EventType = "AUTO_BID_RESULT"
	EventAuctionSold      EventType = "AUCTION_SOLD"
	EventAuctionNotSold   EventType = "AUCTION_NOT_SOLD"
	EventAuctionCancelled EventType = "AUCTION_CANCELLED"
)

// AuctionEvent is the payload fanned out to broadcast subscribers. Events for
// one auction are published in the order their ledger mutations committed.
type AuctionEvent struct {
	Type      EventType `json:"type"`
	AuctionID string    `json:"auction_id"`
	BidderID  string    `json:"bidder_id,omitempty"`
	Amount    int64     `json:"amount,omitempty"`
	BidCount  int       `json:"bid_count,omitempty"`
	At        time.Time `json:"at"`
}
