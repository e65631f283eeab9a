package auctionerrors

import "errors"

// Repository-level errors
var (
	ErrAuctionNotFound = errors.New("auction not found")
	ErrNoBids          = errors.New("no bids found for auction")
	ErrMandateNotFound = errors.New("auto-bid mandate not found")
	ErrDuplicateID     = errors.New("identifier already exists")
)

// Validation errors rejected synchronously with no state change
var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrAuctionNotActive  = errors.New("auction is not active")
	ErrAuctionExpired    = errors.New("auction has expired")
	ErrAuctionNotExpired = errors.New("auction deadline not reached")
	ErrSelfBid           = errors.New("seller cannot bid on own auction")
	ErrNotSeller         = errors.New("only the seller may cancel the auction")
	ErrInvalidAmount     = errors.New("amount must be a positive multiple of the increment unit")
	ErrAmountTooLow      = errors.New("amount no longer sufficient")
	ErrCeilingTooLow     = errors.New("ceiling must exceed the current highest bid")
	ErrStepOutOfRange    = errors.New("step percentage out of range")
)

// Funding errors
var (
	ErrInsufficientFunds = errors.New("insufficient funds")
)
