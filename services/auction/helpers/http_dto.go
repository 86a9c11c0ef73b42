package helpers

import (
	"time"

	"github.com/shopspring/decimal"

	model "lead-exchange/internal/models"
)

// Request/Response DTOs
type CreateLeadRequest struct {
	Vertical     string          `json:"vertical" binding:"required"`
	Geo          string          `json:"geo" binding:"required"`
	ReservePrice decimal.Decimal `json:"reserve_price"`
	QualityScore int             `json:"quality_score" binding:"gte=0,lte=100"`
	Offsite      bool            `json:"offsite"`
	Verified     bool            `json:"verified"`
}

type OpenAuctionRequest struct {
	BiddingWindowSeconds int `json:"bidding_window_seconds" binding:"required,gt=0"`
	RevealWindowSeconds  int `json:"reveal_window_seconds" binding:"required,gt=0"`
}

type CommitBidRequest struct {
	LeadID     string `json:"lead_id" binding:"required"`
	BuyerID    string `json:"buyer_id" binding:"required"`
	Commitment string `json:"commitment" binding:"required"`
}

type DirectBidRequest struct {
	LeadID  string          `json:"lead_id" binding:"required"`
	BuyerID string          `json:"buyer_id" binding:"required"`
	Amount  decimal.Decimal `json:"amount" binding:"required"`
}

type RevealBidRequest struct {
	BuyerID string          `json:"buyer_id" binding:"required"`
	Amount  decimal.Decimal `json:"amount" binding:"required"`
	Salt    string          `json:"salt" binding:"required"`
}

type WithdrawBidRequest struct {
	BuyerID string `json:"buyer_id" binding:"required"`
}

type RegisterBuyerRequest struct {
	BuyerID              string   `json:"buyer_id" binding:"required"`
	Verified             bool     `json:"verified"`
	AcceptsOffsite       bool     `json:"accepts_offsite"`
	AllowedVerticals     []string `json:"allowed_verticals"`
	RequireVerifiedLeads bool     `json:"require_verified_leads"`
}

type PreferencesRequest struct {
	PrefID          string          `json:"pref_id"`
	Vertical        string          `json:"vertical" binding:"required"`
	GeoInclude      []string        `json:"geo_include"`
	GeoExclude      []string        `json:"geo_exclude"`
	MinQualityScore int             `json:"min_quality_score" binding:"gte=0,lte=100"`
	MaxPerLead      decimal.Decimal `json:"max_per_lead"`
	DailyBudget     decimal.Decimal `json:"daily_budget"`
	AutoBidAmount   decimal.Decimal `json:"auto_bid_amount"`
	AutoBid         bool            `json:"auto_bid"`
	Active          bool            `json:"active"`
	Priority        int             `json:"priority"`
}

type LeadResponse struct {
	LeadID        string `json:"lead_id"`
	Vertical      string `json:"vertical"`
	Geo           string `json:"geo"`
	ReservePrice  string `json:"reserve_price"`
	QualityScore  int    `json:"quality_score"`
	Offsite       bool   `json:"offsite"`
	Verified      bool   `json:"verified"`
	Phase         string `json:"phase"`
	AuctionEndsAt string `json:"auction_ends_at,omitempty"`
	RevealEndsAt  string `json:"reveal_ends_at,omitempty"`
	CreatedAt     string `json:"created_at"`
}

type BidResponse struct {
	BidID       string `json:"bid_id"`
	LeadID      string `json:"lead_id"`
	BuyerID     string `json:"buyer_id"`
	Commitment  string `json:"commitment,omitempty"`
	Amount      string `json:"amount,omitempty"`
	Status      string `json:"status"`
	CommittedAt string `json:"committed_at"`
	RevealedAt  string `json:"revealed_at,omitempty"`
}

type RoomResponse struct {
	LeadID        string   `json:"lead_id"`
	BidCount      int      `json:"bid_count"`
	HighestBid    string   `json:"highest_bid"`
	HighestBidder string   `json:"highest_bidder,omitempty"`
	Phase         string   `json:"phase"`
	RevealEndsAt  string   `json:"reveal_ends_at,omitempty"`
	Participants  []string `json:"participants"`
}

type PreferencesResponse struct {
	PrefID          string   `json:"pref_id"`
	BuyerID         string   `json:"buyer_id"`
	Vertical        string   `json:"vertical"`
	GeoInclude      []string `json:"geo_include,omitempty"`
	GeoExclude      []string `json:"geo_exclude,omitempty"`
	MinQualityScore int      `json:"min_quality_score"`
	MaxPerLead      string   `json:"max_per_lead"`
	DailyBudget     string   `json:"daily_budget"`
	AutoBidAmount   string   `json:"auto_bid_amount"`
	AutoBid         bool     `json:"auto_bid"`
	Active          bool     `json:"active"`
	Priority        int      `json:"priority"`
	CreatedAt       string   `json:"created_at"`
}

type SweepResponse struct {
	Resolved int `json:"resolved"`
}

type AutoBidResponse struct {
	LeadID string `json:"lead_id"`
	Placed int    `json:"placed"`
}

func NewLeadResponse(lead model.Lead) LeadResponse {
	return LeadResponse{
		LeadID:        lead.LeadID,
		Vertical:      lead.Vertical,
		Geo:           lead.Geo,
		ReservePrice:  lead.ReservePrice.String(),
		QualityScore:  lead.QualityScore,
		Offsite:       lead.Offsite,
		Verified:      lead.Verified,
		Phase:         string(lead.Phase),
		AuctionEndsAt: formatTime(lead.AuctionEndsAt),
		RevealEndsAt:  formatTime(lead.RevealEndsAt),
		CreatedAt:     formatTime(lead.CreatedAt),
	}
}

func NewBidResponse(bid model.Bid) BidResponse {
	resp := BidResponse{
		BidID:       bid.BidID,
		LeadID:      bid.LeadID,
		BuyerID:     bid.BuyerID,
		Commitment:  bid.Commitment,
		Status:      string(bid.Status),
		CommittedAt: formatTime(bid.CommittedAt),
		RevealedAt:  formatTime(bid.RevealedAt),
	}
	// A still-sealed amount stays sealed on the wire.
	if bid.Status != model.BidPending {
		resp.Amount = bid.Amount.String()
	}
	return resp
}

func NewRoomResponse(room model.AuctionRoom) RoomResponse {
	participants := room.Participants
	if participants == nil {
		participants = []string{}
	}
	return RoomResponse{
		LeadID:        room.LeadID,
		BidCount:      room.BidCount,
		HighestBid:    room.HighestBid.String(),
		HighestBidder: room.HighestBidder,
		Phase:         string(room.Phase),
		RevealEndsAt:  formatTime(room.RevealEndsAt),
		Participants:  participants,
	}
}

func NewPreferencesResponse(set model.BuyerPreferenceSet) PreferencesResponse {
	return PreferencesResponse{
		PrefID:          set.PrefID,
		BuyerID:         set.BuyerID,
		Vertical:        set.Vertical,
		GeoInclude:      set.GeoInclude,
		GeoExclude:      set.GeoExclude,
		MinQualityScore: set.MinQualityScore,
		MaxPerLead:      set.MaxPerLead.String(),
		DailyBudget:     set.DailyBudget.String(),
		AutoBidAmount:   set.AutoBidAmount.String(),
		AutoBid:         set.AutoBid,
		Active:          set.Active,
		Priority:        set.Priority,
		CreatedAt:       formatTime(set.CreatedAt),
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
