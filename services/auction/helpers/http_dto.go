package helpers

import "time"

// Request/Response DTOs
type CreateAuctionRequest struct {
	Title        string    `json:"title" binding:"required"`
	Description  string    `json:"description"`
	SellerID     string    `json:"seller_id" binding:"required"`
	StartPrice   int64     `json:"start_price" binding:"required,gt=0"`
	HopePrice    int64     `json:"hope_price"`
	ReservePrice int64     `json:"reserve_price"`
	EndAt        time.Time `json:"end_at" binding:"required"`
}

type PlaceBidRequest struct {
	BidderID string `json:"bidder_id" binding:"required"`
	Amount   int64  `json:"amount" binding:"required,gt=0"`
}

type AutoBidRequest struct {
	BidderID       string `json:"bidder_id" binding:"required"`
	Ceiling        int64  `json:"ceiling" binding:"required,gt=0"`
	StepPercentage int    `json:"step_percentage" binding:"required"`
}

type CancelAuctionRequest struct {
	SellerID string `json:"seller_id" binding:"required"`
}

type AuctionResponse struct {
	AuctionID    string `json:"auction_id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	SellerID     string `json:"seller_id"`
	StartPrice   int64  `json:"start_price"`
	CurrentPrice int64  `json:"current_price"`
	HopePrice    int64  `json:"hope_price"`
	ReservePrice int64  `json:"reserve_price"`
	Status       string `json:"status"`
	BidCount     int    `json:"bid_count"`
	WinnerID     string `json:"winner_id,omitempty"`
	EndAt        string `json:"end_at"`
	CreatedAt    string `json:"created_at"`
}

type BidResponse struct {
	BidID     string `json:"bid_id"`
	AuctionID string `json:"auction_id"`
	BidderID  string `json:"bidder_id"`
	Amount    int64  `json:"amount"`
	Origin    string `json:"origin"`
	Status    string `json:"status"`
	PlacedAt  string `json:"placed_at"`
}

type MandateResponse struct {
	MandateID      string `json:"mandate_id"`
	AuctionID      string `json:"auction_id"`
	BidderID       string `json:"bidder_id"`
	CeilingAmount  int64  `json:"ceiling_amount"`
	StepPercentage int    `json:"step_percentage"`
	Active         bool   `json:"active"`
	CreatedAt      string `json:"created_at"`
}
