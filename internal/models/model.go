package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LeadPhase is the auction lifecycle phase of a lead.
// Transitions are one-directional; a terminal lead is never reverted,
// only re-listed as a new auction.
type LeadPhase string

const (
	PhasePendingAuction LeadPhase = "PENDING_AUCTION"
	PhaseInAuction      LeadPhase = "IN_AUCTION"
	PhaseReveal         LeadPhase = "REVEAL_PHASE"
	PhaseSold           LeadPhase = "SOLD"
	PhaseUnsold         LeadPhase = "UNSOLD"
)

// Terminal reports whether the phase accepts no further bid or reveal operations.
func (p LeadPhase) Terminal() bool {
	return p == PhaseSold || p == PhaseUnsold
}

// BidStatus is the lifecycle status of a single bid attempt.
// PENDING is the only non-terminal status.
type BidStatus string

const (
	BidPending   BidStatus = "PENDING"
	BidRevealed  BidStatus = "REVEALED"
	BidRejected  BidStatus = "REJECTED"
	BidWithdrawn BidStatus = "WITHDRAWN"
)

// Lead represents a sales prospect offered for auction
type Lead struct {
	LeadID        string          `json:"lead_id" db:"lead_id"`
	Vertical      string          `json:"vertical" db:"vertical"`
	Geo           string          `json:"geo" db:"geo"`
	ReservePrice  decimal.Decimal `json:"reserve_price" db:"reserve_price"`
	QualityScore  int             `json:"quality_score" db:"quality_score"`
	Offsite       bool            `json:"offsite" db:"offsite"`
	Verified      bool            `json:"verified" db:"verified"`
	AuctionEndsAt time.Time       `json:"auction_ends_at" db:"auction_ends_at"`
	RevealEndsAt  time.Time       `json:"reveal_ends_at" db:"reveal_ends_at"`
	Phase         LeadPhase       `json:"phase" db:"phase"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
}

// AuctionRoom is the live aggregate state of one lead's auction.
// HighestBid only ever increases, and HighestBidder is always the buyer
// who set the current HighestBid. Participants is append-only; duplicates
// record repeated commit attempts by the same buyer.
type AuctionRoom struct {
	LeadID        string          `json:"lead_id" db:"lead_id"`
	BidCount      int             `json:"bid_count" db:"bid_count"`
	HighestBid    decimal.Decimal `json:"highest_bid" db:"highest_bid"`
	HighestBidder string          `json:"highest_bidder" db:"highest_bidder"`
	Phase         LeadPhase       `json:"phase" db:"phase"`
	RevealEndsAt  time.Time       `json:"reveal_ends_at" db:"reveal_ends_at"`
	Participants  []string        `json:"participants" db:"-"`
}

// Bid is one buyer's bid on one lead. The (LeadID, BuyerID) pair is unique;
// a re-commit while PENDING replaces the commitment on the same record.
// Amount and Salt are recorded even for rejected reveals, as an audit trail.
type Bid struct {
	BidID       string          `json:"bid_id" db:"bid_id"`
	LeadID      string          `json:"lead_id" db:"lead_id"`
	BuyerID     string          `json:"buyer_id" db:"buyer_id"`
	Commitment  string          `json:"commitment,omitempty" db:"commitment"`
	Amount      decimal.Decimal `json:"amount" db:"amount"`
	Salt        string          `json:"salt,omitempty" db:"salt"`
	Status      BidStatus       `json:"status" db:"status"`
	CommittedAt time.Time       `json:"committed_at" db:"committed_at"`
	RevealedAt  time.Time       `json:"revealed_at,omitzero" db:"revealed_at"`
}

// Buyer holds a buyer's standing constraints, checked as hard filters
// before a sealed bid is accepted.
type Buyer struct {
	BuyerID              string   `json:"buyer_id" db:"buyer_id"`
	Verified             bool     `json:"verified" db:"verified"`
	AcceptsOffsite       bool     `json:"accepts_offsite" db:"accepts_offsite"`
	AllowedVerticals     []string `json:"allowed_verticals" db:"-"` // empty = all verticals
	RequireVerifiedLeads bool     `json:"require_verified_leads" db:"require_verified_leads"`
}

// WildcardVertical matches every lead vertical in a preference set.
const WildcardVertical = "*"

// BuyerPreferenceSet is a buyer-owned standing rule evaluated by the
// auto-bid matcher. Lower Priority wins; ties break by CreatedAt.
// Zero-valued MaxPerLead and DailyBudget mean uncapped.
type BuyerPreferenceSet struct {
	PrefID          string          `json:"pref_id" db:"pref_id"`
	BuyerID         string          `json:"buyer_id" db:"buyer_id"`
	Vertical        string          `json:"vertical" db:"vertical"`
	GeoInclude      []string        `json:"geo_include" db:"-"`
	GeoExclude      []string        `json:"geo_exclude" db:"-"`
	MinQualityScore int             `json:"min_quality_score" db:"min_quality_score"`
	MaxPerLead      decimal.Decimal `json:"max_per_lead" db:"max_per_lead"`
	DailyBudget     decimal.Decimal `json:"daily_budget" db:"daily_budget"`
	AutoBidAmount   decimal.Decimal `json:"auto_bid_amount" db:"auto_bid_amount"`
	AutoBid         bool            `json:"auto_bid" db:"auto_bid"`
	Active          bool            `json:"active" db:"active"`
	Priority        int             `json:"priority" db:"priority"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
}

// BidIntent is the output of auto-bid matching: one standing rule's decision
// to bid a fixed amount on a lead. Intents are submitted through the same
// place-bid operation as manual bids.
type BidIntent struct {
	LeadID  string          `json:"lead_id"`
	BuyerID string          `json:"buyer_id"`
	PrefID  string          `json:"pref_id"`
	Amount  decimal.Decimal `json:"amount"`
}
