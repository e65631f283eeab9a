package server

import (
	"auction-engine/internal/bidding"
	"auction-engine/internal/broadcast"
	handler "auction-engine/services/auction/handler"

	"github.com/gin-gonic/gin"
)

// SetupRouter configures all Gin routes for the application
func SetupRouter(svc *bidding.Service, hub *broadcast.Hub) *gin.Engine {
	router := gin.New() // New router without default middleware for full control over middleware and logging

	router.Use(gin.Recovery())          // recover from panics
	router.Use(RequestLoggerMiddleware) // custom request logging

	auctionHandler := handler.NewAuctionHandler(svc)
	liveHandler := NewLiveHandler(hub)

	auctions := router.Group("/auctions")
	{
		auctions.POST("", auctionHandler.CreateAuctionHandler)
		auctions.GET("", auctionHandler.ListAuctionsHandler)
		auctions.GET("/:auction_id", auctionHandler.GetAuctionHandler)
		auctions.POST("/:auction_id/bids", auctionHandler.PlaceBidHandler)
		auctions.GET("/:auction_id/bids", auctionHandler.GetBidsHandler)
		auctions.GET("/:auction_id/highest", auctionHandler.GetHighestBidHandler)
		auctions.POST("/:auction_id/autobid", auctionHandler.SetupAutoBidHandler)
		auctions.DELETE("/:auction_id/autobid/:bidder_id", auctionHandler.CancelAutoBidHandler)
		auctions.POST("/:auction_id/cancel", auctionHandler.CancelAuctionHandler)
		auctions.GET("/:auction_id/live", liveHandler.Serve)
	}

	return router
}
