// Package auction implements the sealed-bid auction engine: the lead-level
// state machine, the closure sweeper, and the auto-bid matcher. All state
// lives behind the repository.AuctionStore contract; the compliance gate is
// an injected capability.
package auction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"lead-exchange/internal/auctionerrors"
	"lead-exchange/internal/commitment"
	"lead-exchange/internal/compliance"
	model "lead-exchange/internal/models"
	"lead-exchange/internal/repository"
	"lead-exchange/utils"
)

// AuctionService drives lead phase transitions and bid lifecycles.
// Phase transitions are monotonic: PENDING_AUCTION → IN_AUCTION →
// REVEAL_PHASE → {SOLD, UNSOLD}. Terminal phases accept no operations.
type AuctionService struct {
	store repository.AuctionStore
	gate  compliance.Gate
}

// NewAuctionService creates a new AuctionService instance
func NewAuctionService(store repository.AuctionStore, gate compliance.Gate) *AuctionService {
	return &AuctionService{
		store: store,
		gate:  gate,
	}
}

// CreateLeadInput is the submission collaborator's view of a new lead.
type CreateLeadInput struct {
	Vertical     string
	Geo          string
	ReservePrice decimal.Decimal
	QualityScore int
	Offsite      bool
	Verified     bool
}

// CreateLead registers a lead awaiting auction
func (s *AuctionService) CreateLead(ctx context.Context, input CreateLeadInput) (model.Lead, error) {
	if input.Vertical == "" || input.Geo == "" {
		return model.Lead{}, fmt.Errorf("service: %w - missing vertical or geo", auctionerrors.ErrValidation)
	}
	if input.ReservePrice.IsNegative() {
		return model.Lead{}, fmt.Errorf("service: %w - negative reserve price", auctionerrors.ErrValidation)
	}

	lead := model.Lead{
		LeadID:       utils.GenerateID(),
		Vertical:     input.Vertical,
		Geo:          input.Geo,
		ReservePrice: input.ReservePrice,
		QualityScore: input.QualityScore,
		Offsite:      input.Offsite,
		Verified:     input.Verified,
		Phase:        model.PhasePendingAuction,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.store.CreateLead(ctx, lead); err != nil {
		return model.Lead{}, fmt.Errorf("service: failed to create lead: %w", err)
	}
	return lead, nil
}

// OpenAuction moves a pending lead into IN_AUCTION, sets both deadlines and
// creates its auction room.
func (s *AuctionService) OpenAuction(ctx context.Context, leadID string, biddingWindow, revealWindow time.Duration) (model.Lead, error) {
	if leadID == "" {
		return model.Lead{}, fmt.Errorf("service: %w - empty lead ID", auctionerrors.ErrValidation)
	}
	if biddingWindow <= 0 || revealWindow <= 0 {
		return model.Lead{}, fmt.Errorf("service: %w - non-positive auction window", auctionerrors.ErrValidation)
	}

	now := time.Now().UTC()
	auctionEndsAt := now.Add(biddingWindow)
	revealEndsAt := auctionEndsAt.Add(revealWindow)

	lead, err := s.store.OpenLeadAuction(ctx, leadID, auctionEndsAt, revealEndsAt)
	if err != nil {
		return model.Lead{}, fmt.Errorf("service: failed to open auction for lead %s: %w", leadID, err)
	}

	room := model.AuctionRoom{
		LeadID:       leadID,
		HighestBid:   decimal.Zero,
		Phase:        model.PhaseInAuction,
		RevealEndsAt: revealEndsAt,
	}
	if err := s.store.CreateRoom(ctx, room); err != nil {
		return model.Lead{}, fmt.Errorf("service: failed to create auction room for lead %s: %w", leadID, err)
	}
	return lead, nil
}

// PlaceSealedBid accepts a commit-phase bid: an opaque commitment binding the
// buyer's amount and salt. The compliance gate runs first, then the buyer's
// standing constraints as hard filters. Every accepted commit increments the
// room's bid count and appends the buyer to the participant trail, including
// re-commits by the same buyer.
func (s *AuctionService) PlaceSealedBid(ctx context.Context, leadID, buyerID, bidCommitment string) (model.Bid, error) {
	if leadID == "" || buyerID == "" {
		return model.Bid{}, fmt.Errorf("service: %w - missing leadID or buyerID", auctionerrors.ErrValidation)
	}
	if len(bidCommitment) != commitment.EncodedLength {
		return model.Bid{}, fmt.Errorf("service: %w - malformed commitment", auctionerrors.ErrValidation)
	}

	lead, err := s.store.GetLead(ctx, leadID)
	if err != nil {
		return model.Bid{}, fmt.Errorf("service: %w", err)
	}
	now := time.Now().UTC()
	if lead.Phase != model.PhaseInAuction {
		return model.Bid{}, fmt.Errorf("service: lead %s is %s: %w", leadID, lead.Phase, auctionerrors.ErrPhaseConflict)
	}
	if now.After(lead.AuctionEndsAt) {
		return model.Bid{}, fmt.Errorf("service: bidding closed for lead %s: %w", leadID, auctionerrors.ErrPhaseConflict)
	}

	if verdict := s.gate.CanTransact(ctx, buyerID, lead.Vertical, lead.Geo); !verdict.Allowed {
		return model.Bid{}, fmt.Errorf("service: %w - %s", auctionerrors.ErrComplianceRejected, verdict.Reason)
	}

	buyer, err := s.store.GetBuyer(ctx, buyerID)
	if err != nil {
		return model.Bid{}, fmt.Errorf("service: %w", err)
	}
	if err := checkStanding(buyer, lead); err != nil {
		return model.Bid{}, err
	}

	bid := model.Bid{
		BidID:       utils.GenerateID(),
		LeadID:      leadID,
		BuyerID:     buyerID,
		Commitment:  bidCommitment,
		Amount:      decimal.Zero,
		Status:      model.BidPending,
		CommittedAt: now,
	}
	bid, err = s.store.UpsertBid(ctx, bid)
	if err != nil {
		return model.Bid{}, fmt.Errorf("service: failed to upsert bid for lead %s buyer %s: %w", leadID, buyerID, err)
	}

	if err := s.store.RecordCommit(ctx, leadID, buyerID); err != nil {
		return model.Bid{}, fmt.Errorf("service: failed to record commit for lead %s: %w", leadID, err)
	}
	return bid, nil
}

// PlaceDirectBid accepts a non-sealed bid revealed on arrival. The amount is
// validated against the reserve price before compliance runs. A direct bid
// increments the bid count only when it advances the room's highest bid;
// participation counting is the commit path's policy, not this one's.
func (s *AuctionService) PlaceDirectBid(ctx context.Context, leadID, buyerID string, amount decimal.Decimal) (model.Bid, error) {
	if leadID == "" || buyerID == "" {
		return model.Bid{}, fmt.Errorf("service: %w - missing leadID or buyerID", auctionerrors.ErrValidation)
	}
	if !amount.IsPositive() {
		return model.Bid{}, fmt.Errorf("service: %w - non-positive amount", auctionerrors.ErrValidation)
	}

	lead, err := s.store.GetLead(ctx, leadID)
	if err != nil {
		return model.Bid{}, fmt.Errorf("service: %w", err)
	}
	if lead.Phase != model.PhaseInAuction {
		return model.Bid{}, fmt.Errorf("service: lead %s is %s: %w", leadID, lead.Phase, auctionerrors.ErrPhaseConflict)
	}
	if amount.Cmp(lead.ReservePrice) < 0 {
		return model.Bid{}, fmt.Errorf("service: amount %s below reserve %s: %w", amount, lead.ReservePrice, auctionerrors.ErrBelowReserve)
	}

	if verdict := s.gate.CanTransact(ctx, buyerID, lead.Vertical, lead.Geo); !verdict.Allowed {
		return model.Bid{}, fmt.Errorf("service: %w - %s", auctionerrors.ErrComplianceRejected, verdict.Reason)
	}

	now := time.Now().UTC()
	bid := model.Bid{
		BidID:       utils.GenerateID(),
		LeadID:      leadID,
		BuyerID:     buyerID,
		Amount:      amount,
		Status:      model.BidRevealed,
		CommittedAt: now,
		RevealedAt:  now,
	}
	bid, err = s.store.UpsertBid(ctx, bid)
	if err != nil {
		return model.Bid{}, fmt.Errorf("service: failed to upsert bid for lead %s buyer %s: %w", leadID, buyerID, err)
	}

	raised, err := s.store.RaiseHighestBid(ctx, leadID, buyerID, amount)
	if err != nil {
		return model.Bid{}, fmt.Errorf("service: failed to raise highest bid for lead %s: %w", leadID, err)
	}
	if raised {
		if err := s.store.IncrementBidCount(ctx, leadID); err != nil {
			return model.Bid{}, fmt.Errorf("service: failed to increment bid count for lead %s: %w", leadID, err)
		}
	}
	return bid, nil
}

// RevealBid opens a sealed bid. If the bidding deadline has passed while the
// lead is still IN_AUCTION, the reveal first advances lead and room into
// REVEAL_PHASE; the transition is a guard here rather than a timer so an
// in-flight commit never races a background flip. The reveal window is
// checked before the commitment is verified. Failed verification and
// below-reserve reveals both terminate the bid as REJECTED while keeping the
// revealed amount and salt on record.
func (s *AuctionService) RevealBid(ctx context.Context, bidID, callerID string, amount decimal.Decimal, salt string) (model.Bid, error) {
	if bidID == "" || callerID == "" {
		return model.Bid{}, fmt.Errorf("service: %w - missing bidID or callerID", auctionerrors.ErrValidation)
	}
	if salt == "" {
		return model.Bid{}, fmt.Errorf("service: %w - empty salt", auctionerrors.ErrValidation)
	}

	bid, err := s.store.GetBid(ctx, bidID)
	if err != nil {
		return model.Bid{}, fmt.Errorf("service: %w", err)
	}
	if bid.BuyerID != callerID {
		return model.Bid{}, fmt.Errorf("service: bid %s belongs to another buyer: %w", bidID, auctionerrors.ErrUnauthorized)
	}

	lead, err := s.store.GetLead(ctx, bid.LeadID)
	if err != nil {
		return model.Bid{}, fmt.Errorf("service: %w", err)
	}

	now := time.Now().UTC()
	if lead.Phase == model.PhaseInAuction && now.After(lead.AuctionEndsAt) {
		lead, err = s.advanceToReveal(ctx, lead)
		if err != nil {
			return model.Bid{}, err
		}
	}

	if lead.Phase != model.PhaseReveal {
		return model.Bid{}, fmt.Errorf("service: lead %s is %s: %w", lead.LeadID, lead.Phase, auctionerrors.ErrPhaseConflict)
	}
	// Deadline before verification: an expired reveal window rejects even a
	// commitment that would have verified.
	if now.After(lead.RevealEndsAt) {
		return model.Bid{}, fmt.Errorf("service: reveal window closed for lead %s: %w", lead.LeadID, auctionerrors.ErrPhaseConflict)
	}
	if bid.Status != model.BidPending {
		return model.Bid{}, fmt.Errorf("service: bid %s is %s: %w", bidID, bid.Status, auctionerrors.ErrPhaseConflict)
	}

	settlement := repository.BidSettlement{Amount: amount, Salt: salt, RevealedAt: now}

	if !commitment.Verify(bid.Commitment, amount, salt) {
		if _, err := s.store.SettleBid(ctx, bidID, model.BidPending, model.BidRejected, settlement); err != nil {
			return model.Bid{}, fmt.Errorf("service: failed to reject bid %s: %w", bidID, err)
		}
		return model.Bid{}, fmt.Errorf("service: bid %s: %w", bidID, auctionerrors.ErrCommitmentMismatch)
	}

	if amount.Cmp(lead.ReservePrice) < 0 {
		if _, err := s.store.SettleBid(ctx, bidID, model.BidPending, model.BidRejected, settlement); err != nil {
			return model.Bid{}, fmt.Errorf("service: failed to reject bid %s: %w", bidID, err)
		}
		return model.Bid{}, fmt.Errorf("service: revealed amount %s below reserve %s: %w", amount, lead.ReservePrice, auctionerrors.ErrBelowReserve)
	}

	bid, err = s.store.SettleBid(ctx, bidID, model.BidPending, model.BidRevealed, settlement)
	if err != nil {
		return model.Bid{}, fmt.Errorf("service: failed to reveal bid %s: %w", bidID, err)
	}

	if _, err := s.store.RaiseHighestBid(ctx, bid.LeadID, bid.BuyerID, amount); err != nil {
		return model.Bid{}, fmt.Errorf("service: failed to raise highest bid for lead %s: %w", bid.LeadID, err)
	}
	return bid, nil
}

// advanceToReveal performs the lazy IN_AUCTION → REVEAL_PHASE transition.
// Losing the transition race to a concurrent reveal or sweep is fine; the
// phase precondition makes the flip take effect exactly once.
func (s *AuctionService) advanceToReveal(ctx context.Context, lead model.Lead) (model.Lead, error) {
	err := s.store.TransitionLeadPhase(ctx, lead.LeadID, model.PhaseInAuction, model.PhaseReveal)
	if err != nil && !isPhaseConflict(err) {
		return model.Lead{}, fmt.Errorf("service: failed to advance lead %s to reveal: %w", lead.LeadID, err)
	}
	if err := s.store.TransitionRoomPhase(ctx, lead.LeadID, model.PhaseInAuction, model.PhaseReveal); err != nil && !isPhaseConflict(err) {
		return model.Lead{}, fmt.Errorf("service: failed to advance room %s to reveal: %w", lead.LeadID, err)
	}

	lead, err = s.store.GetLead(ctx, lead.LeadID)
	if err != nil {
		return model.Lead{}, fmt.Errorf("service: %w", err)
	}
	return lead, nil
}

// WithdrawBid retires a still-sealed bid. Only legal while the bid is PENDING
// and the lead has not progressed past IN_AUCTION. The room's bid count is
// not decremented; it reflects historical participation.
func (s *AuctionService) WithdrawBid(ctx context.Context, bidID, callerID string) (model.Bid, error) {
	if bidID == "" || callerID == "" {
		return model.Bid{}, fmt.Errorf("service: %w - missing bidID or callerID", auctionerrors.ErrValidation)
	}

	bid, err := s.store.GetBid(ctx, bidID)
	if err != nil {
		return model.Bid{}, fmt.Errorf("service: %w", err)
	}
	if bid.BuyerID != callerID {
		return model.Bid{}, fmt.Errorf("service: bid %s belongs to another buyer: %w", bidID, auctionerrors.ErrUnauthorized)
	}

	lead, err := s.store.GetLead(ctx, bid.LeadID)
	if err != nil {
		return model.Bid{}, fmt.Errorf("service: %w", err)
	}
	if lead.Phase != model.PhaseInAuction {
		return model.Bid{}, fmt.Errorf("service: lead %s is %s: %w", lead.LeadID, lead.Phase, auctionerrors.ErrPhaseConflict)
	}
	if bid.Status != model.BidPending {
		return model.Bid{}, fmt.Errorf("service: bid %s is %s: %w", bidID, bid.Status, auctionerrors.ErrPhaseConflict)
	}

	bid, err = s.store.SettleBid(ctx, bidID, model.BidPending, model.BidWithdrawn, repository.BidSettlement{})
	if err != nil {
		return model.Bid{}, fmt.Errorf("service: failed to withdraw bid %s: %w", bidID, err)
	}
	return bid, nil
}

// ListBuyerBids returns all bids placed by a buyer
func (s *AuctionService) ListBuyerBids(ctx context.Context, buyerID string) ([]model.Bid, error) {
	if buyerID == "" {
		return nil, fmt.Errorf("service: %w - empty buyer ID", auctionerrors.ErrValidation)
	}
	bids, err := s.store.ListBuyerBids(ctx, buyerID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list bids for buyer %s: %w", buyerID, err)
	}
	return bids, nil
}

// GetRoom returns the live auction room for a lead
func (s *AuctionService) GetRoom(ctx context.Context, leadID string) (model.AuctionRoom, error) {
	if leadID == "" {
		return model.AuctionRoom{}, fmt.Errorf("service: %w - empty lead ID", auctionerrors.ErrValidation)
	}
	room, err := s.store.GetRoom(ctx, leadID)
	if err != nil {
		return model.AuctionRoom{}, fmt.Errorf("service: failed to get room for lead %s: %w", leadID, err)
	}
	return room, nil
}

// RegisterBuyer creates or replaces a buyer's standing record
func (s *AuctionService) RegisterBuyer(ctx context.Context, buyer model.Buyer) error {
	if buyer.BuyerID == "" {
		return fmt.Errorf("service: %w - empty buyer ID", auctionerrors.ErrValidation)
	}
	if err := s.store.PutBuyer(ctx, buyer); err != nil {
		return fmt.Errorf("service: failed to register buyer %s: %w", buyer.BuyerID, err)
	}
	return nil
}

// UpdateBuyerPreferences upserts one of the buyer's standing preference sets
func (s *AuctionService) UpdateBuyerPreferences(ctx context.Context, set model.BuyerPreferenceSet) (model.BuyerPreferenceSet, error) {
	if set.BuyerID == "" || set.Vertical == "" {
		return model.BuyerPreferenceSet{}, fmt.Errorf("service: %w - missing buyerID or vertical", auctionerrors.ErrValidation)
	}
	if set.AutoBid && !set.AutoBidAmount.IsPositive() {
		return model.BuyerPreferenceSet{}, fmt.Errorf("service: %w - auto-bid requires a positive amount", auctionerrors.ErrValidation)
	}
	if set.MaxPerLead.IsNegative() || set.DailyBudget.IsNegative() || set.AutoBidAmount.IsNegative() {
		return model.BuyerPreferenceSet{}, fmt.Errorf("service: %w - negative budget or amount", auctionerrors.ErrValidation)
	}
	if set.PrefID == "" {
		set.PrefID = utils.GenerateID()
	}
	if set.CreatedAt.IsZero() {
		set.CreatedAt = time.Now().UTC()
	}

	set, err := s.store.UpsertPreference(ctx, set)
	if err != nil {
		return model.BuyerPreferenceSet{}, fmt.Errorf("service: failed to upsert preference %s: %w", set.PrefID, err)
	}
	return set, nil
}

// ActivePreferences returns the active preference sets matching a vertical
// (including wildcard sets), read-only for the auto-bid collaborator.
func (s *AuctionService) ActivePreferences(ctx context.Context, vertical string) ([]model.BuyerPreferenceSet, error) {
	if vertical == "" {
		return nil, fmt.Errorf("service: %w - empty vertical", auctionerrors.ErrValidation)
	}
	sets, err := s.store.ActivePreferencesByVertical(ctx, vertical)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list preferences for vertical %s: %w", vertical, err)
	}
	return sets, nil
}

// LatestPendingLead returns the newest lead still awaiting auction,
// read-only for the auto-bid collaborator.
func (s *AuctionService) LatestPendingLead(ctx context.Context) (model.Lead, error) {
	lead, err := s.store.LatestPendingLead(ctx)
	if err != nil {
		return model.Lead{}, fmt.Errorf("service: %w", err)
	}
	return lead, nil
}

// checkStanding applies the buyer's standing constraints as hard filters.
// A non-match is a rejection, not a silent skip.
func checkStanding(buyer model.Buyer, lead model.Lead) error {
	if lead.Offsite && !buyer.AcceptsOffsite {
		return fmt.Errorf("service: buyer %s does not accept offsite leads: %w", buyer.BuyerID, auctionerrors.ErrPreferenceMismatch)
	}
	if len(buyer.AllowedVerticals) > 0 && !containsString(buyer.AllowedVerticals, lead.Vertical) {
		return fmt.Errorf("service: vertical %s outside buyer %s allow-list: %w", lead.Vertical, buyer.BuyerID, auctionerrors.ErrPreferenceMismatch)
	}
	if buyer.RequireVerifiedLeads && !lead.Verified {
		return fmt.Errorf("service: buyer %s requires verified leads: %w", buyer.BuyerID, auctionerrors.ErrPreferenceMismatch)
	}
	return nil
}

func containsString(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}

func isPhaseConflict(err error) bool {
	return errors.Is(err, auctionerrors.ErrPhaseConflict)
}
