package handler

import (
	"fmt"
	"net/http"

	"auction-engine/internal/bidding"
	model "auction-engine/internal/models"
	"auction-engine/services/auction/helpers"
	"auction-engine/utils"

	"github.com/gin-gonic/gin"
)

//go:generate mockgen -source=auction_handler.go -destination=mock_service.go -package=handler
type AuctionServiceInterface interface {
	CreateAuction(p bidding.CreateAuctionParams) (model.Auction, error)
	ListAuctions() ([]model.Auction, error)
	GetAuction(auctionID string) (model.Auction, error)
	PlaceBid(auctionID, bidderID string, amount int64) (bidding.BidOutcome, error)
	SetupAutoBid(auctionID, bidderID string, ceiling int64, stepPercentage int) (bidding.MandateOutcome, error)
	CancelAutoBid(auctionID, bidderID string) error
	CancelAuction(auctionID, sellerID string) (model.Auction, error)
	GetBidsForAuction(auctionID string) ([]model.BidRecord, error)
	GetHighestBid(auctionID string) (model.BidRecord, error)
}

type AuctionHandler struct {
	service AuctionServiceInterface
}

func NewAuctionHandler(service AuctionServiceInterface) *AuctionHandler {
	return &AuctionHandler{service: service}
}

// CreateAuctionHandler handles POST /auctions
func (h *AuctionHandler) CreateAuctionHandler(c *gin.Context) {
	var req helpers.CreateAuctionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "CreateAuctionHandler", err)
		return
	}

	a, err := h.service.CreateAuction(bidding.CreateAuctionParams{
		Title:        req.Title,
		Description:  req.Description,
		SellerID:     req.SellerID,
		StartPrice:   req.StartPrice,
		HopePrice:    req.HopePrice,
		ReservePrice: req.ReservePrice,
		EndAt:        req.EndAt,
	})
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Error("CreateAuctionHandler: failed to create auction", map[string]any{
			"seller_id": req.SellerID,
			"error":     err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, helpers.ToAuctionResponse(a), "auction created successfully")
	helpers.LogSuccess("CreateAuctionHandler", "auction created successfully", map[string]any{
		"auction_id": a.AuctionID,
		"seller_id":  a.SellerID,
		"end_at":     a.EndAt,
	})
}

// ListAuctionsHandler handles GET /auctions
func (h *AuctionHandler) ListAuctionsHandler(c *gin.Context) {
	auctions, err := h.service.ListAuctions()
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("ListAuctionsHandler: error listing auctions", map[string]any{"error": err.Error()})
		return
	}

	out := make([]helpers.AuctionResponse, 0, len(auctions))
	for _, a := range auctions {
		out = append(out, helpers.ToAuctionResponse(a))
	}
	utils.JSONResponse(c, http.StatusOK, out, "auctions retrieved successfully")
}

// GetAuctionHandler handles GET /auctions/:auction_id
func (h *AuctionHandler) GetAuctionHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")
	a, err := h.service.GetAuction(auctionID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("GetAuctionHandler: error retrieving auction", map[string]any{"auction_id": auctionID, "error": err.Error()})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.ToAuctionResponse(a), "auction retrieved successfully")
}

// PlaceBidHandler handles POST /auctions/:auction_id/bids
func (h *AuctionHandler) PlaceBidHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")

	var req helpers.PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "PlaceBidHandler", err)
		return
	}

	outcome, err := h.service.PlaceBid(auctionID, req.BidderID, req.Amount)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("PlaceBidHandler: failed to place bid", map[string]any{
			"auction_id": auctionID,
			"bidder_id":  req.BidderID,
			"amount":     req.Amount,
			"error":      err.Error(),
		})
		return
	}

	resp := helpers.ToBidResponse(outcome.Bid)
	utils.JSONResponse(c, http.StatusCreated, resp, "bid placed successfully")
	helpers.LogSuccess("PlaceBidHandler", "bid placed successfully", map[string]any{
		"bid_id":     outcome.Bid.BidID,
		"auction_id": auctionID,
		"bidder_id":  req.BidderID,
		"amount":     outcome.Bid.Amount,
		"bid_count":  outcome.BidCount,
	})
}

// GetBidsHandler handles GET /auctions/:auction_id/bids
func (h *AuctionHandler) GetBidsHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")
	bids, err := h.service.GetBidsForAuction(auctionID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("GetBidsHandler: error retrieving bids", map[string]any{"auction_id": auctionID, "error": err.Error()})
		return
	}

	out := make([]helpers.BidResponse, 0, len(bids))
	for _, b := range bids {
		out = append(out, helpers.ToBidResponse(b))
	}
	utils.JSONResponse(c, http.StatusOK, out, "bids retrieved successfully")
}

// GetHighestBidHandler handles GET /auctions/:auction_id/highest
func (h *AuctionHandler) GetHighestBidHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")
	bid, err := h.service.GetHighestBid(auctionID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Info("GetHighestBidHandler: no highest bid", map[string]any{"auction_id": auctionID, "error": err.Error()})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.ToBidResponse(bid), "highest bid retrieved successfully")
}

// SetupAutoBidHandler handles POST /auctions/:auction_id/autobid
func (h *AuctionHandler) SetupAutoBidHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")

	var req helpers.AutoBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "SetupAutoBidHandler", err)
		return
	}

	outcome, err := h.service.SetupAutoBid(auctionID, req.BidderID, req.Ceiling, req.StepPercentage)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("SetupAutoBidHandler: failed to set up auto-bid", map[string]any{
			"auction_id": auctionID,
			"bidder_id":  req.BidderID,
			"ceiling":    req.Ceiling,
			"error":      err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, helpers.ToMandateResponse(outcome.Mandate), "auto-bid mandate stored successfully")
	helpers.LogSuccess("SetupAutoBidHandler", "auto-bid mandate stored successfully", map[string]any{
		"auction_id": auctionID,
		"bidder_id":  req.BidderID,
		"ceiling":    req.Ceiling,
		"step":       req.StepPercentage,
	})
}

// CancelAutoBidHandler handles DELETE /auctions/:auction_id/autobid/:bidder_id
func (h *AuctionHandler) CancelAutoBidHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")
	bidderID := c.Param("bidder_id")

	if err := h.service.CancelAutoBid(auctionID, bidderID); err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("CancelAutoBidHandler: failed to cancel auto-bid", map[string]any{
			"auction_id": auctionID,
			"bidder_id":  bidderID,
			"error":      err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, nil, "auto-bid mandate cancelled")
	helpers.LogSuccess("CancelAutoBidHandler", "auto-bid mandate cancelled", map[string]any{
		"auction_id": auctionID,
		"bidder_id":  bidderID,
	})
}

// CancelAuctionHandler handles POST /auctions/:auction_id/cancel
func (h *AuctionHandler) CancelAuctionHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")

	var req helpers.CancelAuctionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "CancelAuctionHandler", err)
		return
	}

	a, err := h.service.CancelAuction(auctionID, req.SellerID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("CancelAuctionHandler: failed to cancel auction", map[string]any{
			"auction_id": auctionID,
			"seller_id":  req.SellerID,
			"error":      err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.ToAuctionResponse(a), "auction cancelled")
	helpers.LogSuccess("CancelAuctionHandler", "auction cancelled", map[string]any{
		"auction_id": auctionID,
		"seller_id":  req.SellerID,
	})
}
