package server

import (
	auction "lead-exchange/internal/auctionService"
	handler "lead-exchange/services/auction/handler"

	"github.com/gin-gonic/gin"
)

// SetupRouter configures all Gin routes for the application
func SetupRouter(auctionService *auction.AuctionService, sweeper *auction.Sweeper) *gin.Engine {
	router := gin.New() // New router without default middleware for full control over middleware and logging

	router.Use(gin.Recovery())          // recover from panics
	router.Use(RequestLoggerMiddleware) // custom request logging

	auctionHandler := handler.NewAuctionHandler(auctionService, sweeper)

	leads := router.Group("/leads")
	{
		leads.POST("", auctionHandler.CreateLeadHandler)
		leads.POST("/:lead_id/open", auctionHandler.OpenAuctionHandler)
		leads.POST("/:lead_id/autobid", auctionHandler.RunAutoBidsHandler)
		leads.GET("/:lead_id/room", auctionHandler.GetRoomHandler)
	}

	bids := router.Group("/bids")
	{
		bids.POST("/commit", auctionHandler.CommitBidHandler)
		bids.POST("/direct", auctionHandler.DirectBidHandler)
		bids.POST("/:bid_id/reveal", auctionHandler.RevealBidHandler)
		bids.POST("/:bid_id/withdraw", auctionHandler.WithdrawBidHandler)
	}

	buyers := router.Group("/buyers")
	{
		buyers.POST("", auctionHandler.RegisterBuyerHandler)
		buyers.GET("/:buyer_id/bids", auctionHandler.GetBuyerBidsHandler)
		buyers.PUT("/:buyer_id/preferences", auctionHandler.UpdatePreferencesHandler)
	}

	admin := router.Group("/admin")
	{
		admin.POST("/sweep", auctionHandler.SweepHandler)
	}

	return router
}
