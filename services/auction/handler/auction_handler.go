package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	auction "lead-exchange/internal/auctionService"
	model "lead-exchange/internal/models"
	"lead-exchange/services/auction/helpers"
	"lead-exchange/utils"
)

type AuctionServiceInterface interface {
	CreateLead(ctx context.Context, input auction.CreateLeadInput) (model.Lead, error)
	OpenAuction(ctx context.Context, leadID string, biddingWindow, revealWindow time.Duration) (model.Lead, error)
	PlaceSealedBid(ctx context.Context, leadID, buyerID, bidCommitment string) (model.Bid, error)
	PlaceDirectBid(ctx context.Context, leadID, buyerID string, amount decimal.Decimal) (model.Bid, error)
	RevealBid(ctx context.Context, bidID, callerID string, amount decimal.Decimal, salt string) (model.Bid, error)
	WithdrawBid(ctx context.Context, bidID, callerID string) (model.Bid, error)
	ListBuyerBids(ctx context.Context, buyerID string) ([]model.Bid, error)
	GetRoom(ctx context.Context, leadID string) (model.AuctionRoom, error)
	RegisterBuyer(ctx context.Context, buyer model.Buyer) error
	UpdateBuyerPreferences(ctx context.Context, set model.BuyerPreferenceSet) (model.BuyerPreferenceSet, error)
	RunAutoBids(ctx context.Context, leadID string) (int, error)
}

type SweeperInterface interface {
	SweepNow(ctx context.Context) (int, error)
}

type AuctionHandler struct {
	service AuctionServiceInterface
	sweeper SweeperInterface
}

func NewAuctionHandler(service AuctionServiceInterface, sweeper SweeperInterface) *AuctionHandler {
	return &AuctionHandler{service: service, sweeper: sweeper}
}

// CreateLeadHandler handles POST /leads
func (h *AuctionHandler) CreateLeadHandler(c *gin.Context) {
	var req helpers.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "CreateLeadHandler", err)
		return
	}

	lead, err := h.service.CreateLead(c.Request.Context(), auction.CreateLeadInput{
		Vertical:     req.Vertical,
		Geo:          req.Geo,
		ReservePrice: req.ReservePrice,
		QualityScore: req.QualityScore,
		Offsite:      req.Offsite,
		Verified:     req.Verified,
	})
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Error("CreateLeadHandler: failed to create lead", map[string]any{
			"vertical": req.Vertical,
			"geo":      req.Geo,
			"error":    err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, helpers.NewLeadResponse(lead), "lead created successfully")
	helpers.LogSuccess("CreateLeadHandler", "lead created successfully", map[string]any{
		"lead_id":  lead.LeadID,
		"vertical": lead.Vertical,
	})
}

// OpenAuctionHandler handles POST /leads/:lead_id/open
func (h *AuctionHandler) OpenAuctionHandler(c *gin.Context) {
	leadID := c.Param("lead_id")

	var req helpers.OpenAuctionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "OpenAuctionHandler", err)
		return
	}

	lead, err := h.service.OpenAuction(c.Request.Context(), leadID,
		time.Duration(req.BiddingWindowSeconds)*time.Second,
		time.Duration(req.RevealWindowSeconds)*time.Second,
	)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("OpenAuctionHandler: failed to open auction", map[string]any{
			"lead_id": leadID,
			"error":   err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewLeadResponse(lead), "auction opened successfully")
	helpers.LogSuccess("OpenAuctionHandler", "auction opened successfully", map[string]any{
		"lead_id":         lead.LeadID,
		"auction_ends_at": lead.AuctionEndsAt,
		"reveal_ends_at":  lead.RevealEndsAt,
	})
}

// CommitBidHandler handles POST /bids/commit
func (h *AuctionHandler) CommitBidHandler(c *gin.Context) {
	var req helpers.CommitBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "CommitBidHandler", err)
		return
	}

	bid, err := h.service.PlaceSealedBid(c.Request.Context(), req.LeadID, req.BuyerID, req.Commitment)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("CommitBidHandler: failed to place sealed bid", map[string]any{
			"lead_id":  req.LeadID,
			"buyer_id": req.BuyerID,
			"error":    err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, helpers.NewBidResponse(bid), "sealed bid recorded successfully")
	helpers.LogSuccess("CommitBidHandler", "sealed bid recorded successfully", map[string]any{
		"bid_id":   bid.BidID,
		"lead_id":  bid.LeadID,
		"buyer_id": bid.BuyerID,
	})
}

// DirectBidHandler handles POST /bids/direct
func (h *AuctionHandler) DirectBidHandler(c *gin.Context) {
	var req helpers.DirectBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "DirectBidHandler", err)
		return
	}

	bid, err := h.service.PlaceDirectBid(c.Request.Context(), req.LeadID, req.BuyerID, req.Amount)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("DirectBidHandler: failed to place direct bid", map[string]any{
			"lead_id":  req.LeadID,
			"buyer_id": req.BuyerID,
			"amount":   req.Amount.String(),
			"error":    err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, helpers.NewBidResponse(bid), "direct bid recorded successfully")
	helpers.LogSuccess("DirectBidHandler", "direct bid recorded successfully", map[string]any{
		"bid_id":   bid.BidID,
		"lead_id":  bid.LeadID,
		"buyer_id": bid.BuyerID,
		"amount":   bid.Amount.String(),
	})
}

// RevealBidHandler handles POST /bids/:bid_id/reveal
func (h *AuctionHandler) RevealBidHandler(c *gin.Context) {
	bidID := c.Param("bid_id")

	var req helpers.RevealBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "RevealBidHandler", err)
		return
	}

	bid, err := h.service.RevealBid(c.Request.Context(), bidID, req.BuyerID, req.Amount, req.Salt)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("RevealBidHandler: reveal failed", map[string]any{
			"bid_id":   bidID,
			"buyer_id": req.BuyerID,
			"error":    err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewBidResponse(bid), "bid revealed successfully")
	helpers.LogSuccess("RevealBidHandler", "bid revealed successfully", map[string]any{
		"bid_id":   bid.BidID,
		"lead_id":  bid.LeadID,
		"buyer_id": bid.BuyerID,
		"amount":   bid.Amount.String(),
	})
}

// WithdrawBidHandler handles POST /bids/:bid_id/withdraw
func (h *AuctionHandler) WithdrawBidHandler(c *gin.Context) {
	bidID := c.Param("bid_id")

	var req helpers.WithdrawBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "WithdrawBidHandler", err)
		return
	}

	bid, err := h.service.WithdrawBid(c.Request.Context(), bidID, req.BuyerID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("WithdrawBidHandler: withdraw failed", map[string]any{
			"bid_id":   bidID,
			"buyer_id": req.BuyerID,
			"error":    err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewBidResponse(bid), "bid withdrawn successfully")
	helpers.LogSuccess("WithdrawBidHandler", "bid withdrawn successfully", map[string]any{
		"bid_id":   bid.BidID,
		"lead_id":  bid.LeadID,
		"buyer_id": bid.BuyerID,
	})
}

// GetBuyerBidsHandler handles GET /buyers/:buyer_id/bids
func (h *AuctionHandler) GetBuyerBidsHandler(c *gin.Context) {
	buyerID := c.Param("buyer_id")

	bids, err := h.service.ListBuyerBids(c.Request.Context(), buyerID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("GetBuyerBidsHandler: error retrieving bids", map[string]any{"buyer_id": buyerID, "error": err.Error()})
		return
	}

	resp := make([]helpers.BidResponse, 0, len(bids))
	for _, bid := range bids {
		resp = append(resp, helpers.NewBidResponse(bid))
	}

	utils.JSONResponse(c, http.StatusOK, resp, "bids retrieved successfully")
	helpers.LogSuccess("GetBuyerBidsHandler", "bids retrieved successfully", map[string]any{
		"buyer_id": buyerID,
		"count":    len(resp),
	})
}

// GetRoomHandler handles GET /leads/:lead_id/room
func (h *AuctionHandler) GetRoomHandler(c *gin.Context) {
	leadID := c.Param("lead_id")

	room, err := h.service.GetRoom(c.Request.Context(), leadID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("GetRoomHandler: error retrieving room", map[string]any{"lead_id": leadID, "error": err.Error()})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewRoomResponse(room), "auction room retrieved successfully")
	helpers.LogSuccess("GetRoomHandler", "auction room retrieved successfully", map[string]any{
		"lead_id":   room.LeadID,
		"bid_count": room.BidCount,
		"phase":     string(room.Phase),
	})
}

// RegisterBuyerHandler handles POST /buyers
func (h *AuctionHandler) RegisterBuyerHandler(c *gin.Context) {
	var req helpers.RegisterBuyerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "RegisterBuyerHandler", err)
		return
	}

	buyer := model.Buyer{
		BuyerID:              req.BuyerID,
		Verified:             req.Verified,
		AcceptsOffsite:       req.AcceptsOffsite,
		AllowedVerticals:     req.AllowedVerticals,
		RequireVerifiedLeads: req.RequireVerifiedLeads,
	}
	if err := h.service.RegisterBuyer(c.Request.Context(), buyer); err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Error("RegisterBuyerHandler: failed to register buyer", map[string]any{
			"buyer_id": req.BuyerID,
			"error":    err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, buyer, "buyer registered successfully")
	helpers.LogSuccess("RegisterBuyerHandler", "buyer registered successfully", map[string]any{
		"buyer_id": req.BuyerID,
	})
}

// UpdatePreferencesHandler handles PUT /buyers/:buyer_id/preferences
func (h *AuctionHandler) UpdatePreferencesHandler(c *gin.Context) {
	buyerID := c.Param("buyer_id")

	var req helpers.PreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "UpdatePreferencesHandler", err)
		return
	}

	set, err := h.service.UpdateBuyerPreferences(c.Request.Context(), model.BuyerPreferenceSet{
		PrefID:          req.PrefID,
		BuyerID:         buyerID,
		Vertical:        req.Vertical,
		GeoInclude:      req.GeoInclude,
		GeoExclude:      req.GeoExclude,
		MinQualityScore: req.MinQualityScore,
		MaxPerLead:      req.MaxPerLead,
		DailyBudget:     req.DailyBudget,
		AutoBidAmount:   req.AutoBidAmount,
		AutoBid:         req.AutoBid,
		Active:          req.Active,
		Priority:        req.Priority,
	})
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("UpdatePreferencesHandler: failed to update preferences", map[string]any{
			"buyer_id": buyerID,
			"error":    err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewPreferencesResponse(set), "preferences updated successfully")
	helpers.LogSuccess("UpdatePreferencesHandler", "preferences updated successfully", map[string]any{
		"buyer_id": buyerID,
		"pref_id":  set.PrefID,
		"vertical": set.Vertical,
	})
}

// RunAutoBidsHandler handles POST /leads/:lead_id/autobid
func (h *AuctionHandler) RunAutoBidsHandler(c *gin.Context) {
	leadID := c.Param("lead_id")

	placed, err := h.service.RunAutoBids(c.Request.Context(), leadID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("RunAutoBidsHandler: auto-bid run failed", map[string]any{
			"lead_id": leadID,
			"error":   err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.AutoBidResponse{LeadID: leadID, Placed: placed}, "auto-bids placed successfully")
	helpers.LogSuccess("RunAutoBidsHandler", "auto-bids placed successfully", map[string]any{
		"lead_id": leadID,
		"placed":  placed,
	})
}

// SweepHandler handles POST /admin/sweep
func (h *AuctionHandler) SweepHandler(c *gin.Context) {
	resolved, err := h.sweeper.SweepNow(c.Request.Context())
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Error("SweepHandler: sweep failed", map[string]any{"error": err.Error()})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.SweepResponse{Resolved: resolved}, "sweep completed successfully")
	helpers.LogSuccess("SweepHandler", "sweep completed successfully", map[string]any{"resolved": resolved})
}
