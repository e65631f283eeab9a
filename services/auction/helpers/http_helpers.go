package helpers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"auction-engine/internal/auctionerrors"
	model "auction-engine/internal/models"
	"auction-engine/utils"

	"github.com/gin-gonic/gin"
)

// HandleBindError sends a standardized JSON error for binding failures
func HandleBindError(c *gin.Context, handlerName string, err error) {
	wrappedErr := fmt.Errorf("invalid request payload: %w", err)
	utils.JSONError(c, http.StatusBadRequest, wrappedErr, "invalid request payload")
	utils.Warn(handlerName+": binding error", map[string]any{"error": err.Error()})
}

// MapErrorToHTTP maps domain/service errors to HTTP status code and message
func MapErrorToHTTP(err error) (int, string) {
	switch {
	case errors.Is(err, auctionerrors.ErrAuctionNotFound):
		return http.StatusNotFound, "auction not found"
	case errors.Is(err, auctionerrors.ErrNoBids):
		return http.StatusNotFound, "no bids found for auction"
	case errors.Is(err, auctionerrors.ErrMandateNotFound):
		return http.StatusNotFound, "auto-bid mandate not found"
	case errors.Is(err, auctionerrors.ErrInvalidInput):
		return http.StatusBadRequest, "invalid request details"
	case errors.Is(err, auctionerrors.ErrInvalidAmount):
		return http.StatusBadRequest, "amount must be a positive multiple of the increment unit"
	case errors.Is(err, auctionerrors.ErrStepOutOfRange):
		return http.StatusBadRequest, "step percentage must be between 5 and 10"
	case errors.Is(err, auctionerrors.ErrSelfBid):
		return http.StatusForbidden, "seller cannot bid on own auction"
	case errors.Is(err, auctionerrors.ErrNotSeller):
		return http.StatusForbidden, "only the seller may cancel the auction"
	case errors.Is(err, auctionerrors.ErrAmountTooLow):
		return http.StatusConflict, "amount no longer sufficient"
	case errors.Is(err, auctionerrors.ErrCeilingTooLow):
		return http.StatusConflict, "ceiling must exceed the current highest bid"
	case errors.Is(err, auctionerrors.ErrAuctionNotActive):
		return http.StatusConflict, "auction is not active"
	case errors.Is(err, auctionerrors.ErrAuctionExpired):
		return http.StatusConflict, "auction has expired"
	case errors.Is(err, auctionerrors.ErrDuplicateID):
		return http.StatusConflict, "identifier already exists"
	case errors.Is(err, auctionerrors.ErrInsufficientFunds):
		return http.StatusPaymentRequired, "insufficient funds"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// LogSuccess is a small helper to standardize logging of successful operations
func LogSuccess(handlerName, message string, ctx map[string]any) {
	utils.Info(handlerName+": "+message, ctx)
}

// ToAuctionResponse converts a domain auction to its API shape.
func ToAuctionResponse(a model.Auction) AuctionResponse {
	return AuctionResponse{
		AuctionID:    a.AuctionID,
		Title:        a.Title,
		Description:  a.Description,
		SellerID:     a.SellerID,
		StartPrice:   a.StartPrice,
		CurrentPrice: a.CurrentPrice,
		HopePrice:    a.HopePrice,
		ReservePrice: a.ReservePrice,
		Status:       string(a.Status),
		BidCount:     a.BidCount,
		WinnerID:     a.WinnerID,
		EndAt:        a.EndAt.UTC().Format(time.RFC3339),
		CreatedAt:    a.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// ToBidResponse converts a domain bid record to its API shape.
func ToBidResponse(b model.BidRecord) BidResponse {
	return BidResponse{
		BidID:     b.BidID,
		AuctionID: b.AuctionID,
		BidderID:  b.BidderID,
		Amount:    b.Amount,
		Origin:    string(b.Origin),
		Status:    string(b.Status),
		PlacedAt:  b.PlacedAt.UTC().Format(time.RFC3339Nano),
	}
}

// ToMandateResponse converts a domain mandate to its API shape.
func ToMandateResponse(m model.AutoBidMandate) MandateResponse {
	return MandateResponse{
		MandateID:      m.MandateID,
		AuctionID:      m.AuctionID,
		BidderID:       m.BidderID,
		CeilingAmount:  m.CeilingAmount,
		StepPercentage: m.StepPercentage,
		Active:         m.Active,
		CreatedAt:      m.CreatedAt.UTC().Format(time.RFC3339),
	}
}
