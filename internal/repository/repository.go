package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"lead-exchange/internal/auctionerrors"
	model "lead-exchange/internal/models"
)

// BidSettlement carries the reveal data recorded when a bid reaches a
// terminal status. Salt presence marks a reveal attempt; rejected reveals
// still record Amount and Salt as an audit trail.
type BidSettlement struct {
	Amount     decimal.Decimal
	Salt       string
	RevealedAt time.Time
}

// AuctionStore defines the persistence contract of the auction core.
// The only two primitives the core relies on for correctness are the
// atomic upsert-by-(lead, buyer) key and the conditional writes
// (raise-highest-bid only if strictly greater, transition only from an
// expected phase or status). Any store offering both suffices.
type AuctionStore interface {
	// Leads
	CreateLead(ctx context.Context, lead model.Lead) error
	GetLead(ctx context.Context, leadID string) (model.Lead, error)
	LatestPendingLead(ctx context.Context) (model.Lead, error)
	OpenLeadAuction(ctx context.Context, leadID string, auctionEndsAt, revealEndsAt time.Time) (model.Lead, error)
	TransitionLeadPhase(ctx context.Context, leadID string, from, to model.LeadPhase) error
	ExpiredBiddingLeads(ctx context.Context, now time.Time) ([]model.Lead, error)

	// Auction rooms
	CreateRoom(ctx context.Context, room model.AuctionRoom) error
	GetRoom(ctx context.Context, leadID string) (model.AuctionRoom, error)
	TransitionRoomPhase(ctx context.Context, leadID string, from, to model.LeadPhase) error
	RecordCommit(ctx context.Context, leadID, buyerID string) error
	IncrementBidCount(ctx context.Context, leadID string) error
	RaiseHighestBid(ctx context.Context, leadID, buyerID string, amount decimal.Decimal) (bool, error)
	ExpiredRevealRooms(ctx context.Context, now time.Time) ([]model.AuctionRoom, error)

	// Bids
	UpsertBid(ctx context.Context, bid model.Bid) (model.Bid, error)
	GetBid(ctx context.Context, bidID string) (model.Bid, error)
	GetBidByLeadAndBuyer(ctx context.Context, leadID, buyerID string) (model.Bid, error)
	SettleBid(ctx context.Context, bidID string, from, to model.BidStatus, settlement BidSettlement) (model.Bid, error)
	ListBuyerBids(ctx context.Context, buyerID string) ([]model.Bid, error)

	// Buyers and standing preferences
	GetBuyer(ctx context.Context, buyerID string) (model.Buyer, error)
	PutBuyer(ctx context.Context, buyer model.Buyer) error
	UpsertPreference(ctx context.Context, set model.BuyerPreferenceSet) (model.BuyerPreferenceSet, error)
	ActivePreferencesByVertical(ctx context.Context, vertical string) ([]model.BuyerPreferenceSet, error)
	BuyerDailySpend(ctx context.Context, buyerID string, day time.Time) (decimal.Decimal, error)
}

// MemoryStore is a concurrency-safe in-memory implementation of AuctionStore.
// Conditional writes and upserts execute atomically under the store mutex;
// critical sections are short and never perform I/O.
type MemoryStore struct {
	mu       sync.RWMutex
	leads    map[string]model.Lead               // key: leadID
	rooms    map[string]model.AuctionRoom        // key: leadID
	bids     map[string]model.Bid                // key: bidID
	bidByKey map[string]string                   // key: leadID|buyerID -> bidID
	buyers   map[string]model.Buyer              // key: buyerID
	prefs    map[string]model.BuyerPreferenceSet // key: prefID
}

// NewMemoryStore creates a new in-memory store instance
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		leads:    make(map[string]model.Lead),
		rooms:    make(map[string]model.AuctionRoom),
		bids:     make(map[string]model.Bid),
		bidByKey: make(map[string]string),
		buyers:   make(map[string]model.Buyer),
		prefs:    make(map[string]model.BuyerPreferenceSet),
	}
}

func bidKey(leadID, buyerID string) string {
	return leadID + "|" + buyerID
}

// CreateLead registers a new lead
func (s *MemoryStore) CreateLead(_ context.Context, lead model.Lead) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.leads[lead.LeadID]; ok {
		return fmt.Errorf("create lead %s: %w - lead already exists", lead.LeadID, auctionerrors.ErrValidation)
	}
	s.leads[lead.LeadID] = lead
	return nil
}

// GetLead returns a lead by id
func (s *MemoryStore) GetLead(_ context.Context, leadID string) (model.Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lead, ok := s.leads[leadID]
	if !ok {
		return model.Lead{}, fmt.Errorf("get lead %s: %w", leadID, auctionerrors.ErrLeadNotFound)
	}
	return lead, nil
}

// LatestPendingLead returns the most recently created lead still awaiting an auction
func (s *MemoryStore) LatestPendingLead(_ context.Context) (model.Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest model.Lead
	found := false
	for _, lead := range s.leads {
		if lead.Phase != model.PhasePendingAuction {
			continue
		}
		if !found || lead.CreatedAt.After(latest.CreatedAt) {
			latest = lead
			found = true
		}
	}
	if !found {
		return model.Lead{}, fmt.Errorf("latest pending lead: %w", auctionerrors.ErrLeadNotFound)
	}
	return latest, nil
}

// OpenLeadAuction atomically moves a pending lead into IN_AUCTION and stamps
// both deadlines. A lead in any other phase is a phase conflict.
func (s *MemoryStore) OpenLeadAuction(_ context.Context, leadID string, auctionEndsAt, revealEndsAt time.Time) (model.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lead, ok := s.leads[leadID]
	if !ok {
		return model.Lead{}, fmt.Errorf("open auction for lead %s: %w", leadID, auctionerrors.ErrLeadNotFound)
	}
	if lead.Phase != model.PhasePendingAuction {
		return model.Lead{}, fmt.Errorf("open auction for lead %s: currently %s: %w", leadID, lead.Phase, auctionerrors.ErrPhaseConflict)
	}
	lead.Phase = model.PhaseInAuction
	lead.AuctionEndsAt = auctionEndsAt
	lead.RevealEndsAt = revealEndsAt
	s.leads[leadID] = lead
	return lead, nil
}

// TransitionLeadPhase advances a lead's phase only if it currently holds the
// expected phase. A lead already past the expected phase is a phase conflict,
// which callers racing on the same transition treat as "someone else won".
func (s *MemoryStore) TransitionLeadPhase(_ context.Context, leadID string, from, to model.LeadPhase) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lead, ok := s.leads[leadID]
	if !ok {
		return fmt.Errorf("transition lead %s: %w", leadID, auctionerrors.ErrLeadNotFound)
	}
	if lead.Phase != from {
		return fmt.Errorf("transition lead %s from %s: currently %s: %w", leadID, from, lead.Phase, auctionerrors.ErrPhaseConflict)
	}
	lead.Phase = to
	s.leads[leadID] = lead
	return nil
}

// ExpiredBiddingLeads returns leads still IN_AUCTION whose bidding deadline has passed
func (s *MemoryStore) ExpiredBiddingLeads(_ context.Context, now time.Time) ([]model.Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var expired []model.Lead
	for _, lead := range s.leads {
		if lead.Phase == model.PhaseInAuction && lead.AuctionEndsAt.Before(now) {
			expired = append(expired, lead)
		}
	}
	sort.Slice(expired, func(i, j int) bool { return expired[i].LeadID < expired[j].LeadID })
	return expired, nil
}

// CreateRoom opens an auction room for a lead
func (s *MemoryStore) CreateRoom(_ context.Context, room model.AuctionRoom) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rooms[room.LeadID]; ok {
		return fmt.Errorf("create room for lead %s: %w - room already exists", room.LeadID, auctionerrors.ErrValidation)
	}
	s.rooms[room.LeadID] = room
	return nil
}

// GetRoom returns the auction room for a lead
func (s *MemoryStore) GetRoom(_ context.Context, leadID string) (model.AuctionRoom, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	room, ok := s.rooms[leadID]
	if !ok {
		return model.AuctionRoom{}, fmt.Errorf("get room for lead %s: %w", leadID, auctionerrors.ErrRoomNotFound)
	}
	room.Participants = append([]string(nil), room.Participants...)
	return room, nil
}

// TransitionRoomPhase advances a room's phase mirror, conditionally on the expected phase
func (s *MemoryStore) TransitionRoomPhase(_ context.Context, leadID string, from, to model.LeadPhase) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[leadID]
	if !ok {
		return fmt.Errorf("transition room for lead %s: %w", leadID, auctionerrors.ErrRoomNotFound)
	}
	if room.Phase != from {
		return fmt.Errorf("transition room for lead %s from %s: currently %s: %w", leadID, from, room.Phase, auctionerrors.ErrPhaseConflict)
	}
	room.Phase = to
	s.rooms[leadID] = room
	return nil
}

// RecordCommit counts a sealed-bid commit: increments BidCount and appends
// the participant. Duplicates are intentional; they audit re-commits.
func (s *MemoryStore) RecordCommit(_ context.Context, leadID, buyerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[leadID]
	if !ok {
		return fmt.Errorf("record commit for lead %s: %w", leadID, auctionerrors.ErrRoomNotFound)
	}
	room.BidCount++
	room.Participants = append(room.Participants, buyerID)
	s.rooms[leadID] = room
	return nil
}

// IncrementBidCount bumps a room's bid counter
func (s *MemoryStore) IncrementBidCount(_ context.Context, leadID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[leadID]
	if !ok {
		return fmt.Errorf("increment bid count for lead %s: %w", leadID, auctionerrors.ErrRoomNotFound)
	}
	room.BidCount++
	s.rooms[leadID] = room
	return nil
}

// RaiseHighestBid advances the room's highest bid and bidder only if amount
// is strictly greater than the current highest. Returns whether the update
// took effect; a lower or equal bid never changes these fields.
func (s *MemoryStore) RaiseHighestBid(_ context.Context, leadID, buyerID string, amount decimal.Decimal) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[leadID]
	if !ok {
		return false, fmt.Errorf("raise highest bid for lead %s: %w", leadID, auctionerrors.ErrRoomNotFound)
	}
	if amount.Cmp(room.HighestBid) <= 0 {
		return false, nil
	}
	room.HighestBid = amount
	room.HighestBidder = buyerID
	s.rooms[leadID] = room
	return true, nil
}

// ExpiredRevealRooms returns rooms still in REVEAL_PHASE whose reveal deadline has passed
func (s *MemoryStore) ExpiredRevealRooms(_ context.Context, now time.Time) ([]model.AuctionRoom, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var expired []model.AuctionRoom
	for _, room := range s.rooms {
		if room.Phase == model.PhaseReveal && room.RevealEndsAt.Before(now) {
			room.Participants = append([]string(nil), room.Participants...)
			expired = append(expired, room)
		}
	}
	sort.Slice(expired, func(i, j int) bool { return expired[i].LeadID < expired[j].LeadID })
	return expired, nil
}

// UpsertBid creates or replaces the bid keyed by (LeadID, BuyerID) in a single
// atomic step. A replace is only legal while the existing bid is PENDING; the
// record keeps its identity (BidID, CommittedAt is refreshed by the caller).
func (s *MemoryStore) UpsertBid(_ context.Context, bid model.Bid) (model.Bid, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := bidKey(bid.LeadID, bid.BuyerID)
	if existingID, ok := s.bidByKey[key]; ok {
		existing := s.bids[existingID]
		if existing.Status != model.BidPending {
			return model.Bid{}, fmt.Errorf("upsert bid for lead %s buyer %s: status %s: %w",
				bid.LeadID, bid.BuyerID, existing.Status, auctionerrors.ErrPhaseConflict)
		}
		bid.BidID = existing.BidID
		s.bids[existing.BidID] = bid
		return bid, nil
	}

	s.bids[bid.BidID] = bid
	s.bidByKey[key] = bid.BidID
	return bid, nil
}

// GetBid returns a bid by id
func (s *MemoryStore) GetBid(_ context.Context, bidID string) (model.Bid, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bid, ok := s.bids[bidID]
	if !ok {
		return model.Bid{}, fmt.Errorf("get bid %s: %w", bidID, auctionerrors.ErrBidNotFound)
	}
	return bid, nil
}

// GetBidByLeadAndBuyer returns the unique bid for a (lead, buyer) pair
func (s *MemoryStore) GetBidByLeadAndBuyer(_ context.Context, leadID, buyerID string) (model.Bid, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bidID, ok := s.bidByKey[bidKey(leadID, buyerID)]
	if !ok {
		return model.Bid{}, fmt.Errorf("get bid for lead %s buyer %s: %w", leadID, buyerID, auctionerrors.ErrBidNotFound)
	}
	return s.bids[bidID], nil
}

// SettleBid moves a bid from an expected status to a terminal one, recording
// the reveal data when present. The status precondition makes concurrent
// settlements of the same bid resolve exactly once.
func (s *MemoryStore) SettleBid(_ context.Context, bidID string, from, to model.BidStatus, settlement BidSettlement) (model.Bid, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bid, ok := s.bids[bidID]
	if !ok {
		return model.Bid{}, fmt.Errorf("settle bid %s: %w", bidID, auctionerrors.ErrBidNotFound)
	}
	if bid.Status != from {
		return model.Bid{}, fmt.Errorf("settle bid %s from %s: currently %s: %w", bidID, from, bid.Status, auctionerrors.ErrPhaseConflict)
	}
	bid.Status = to
	if settlement.Salt != "" {
		bid.Amount = settlement.Amount
		bid.Salt = settlement.Salt
	}
	if !settlement.RevealedAt.IsZero() {
		bid.RevealedAt = settlement.RevealedAt
	}
	s.bids[bidID] = bid
	return bid, nil
}

// ListBuyerBids returns all bids placed by a buyer, newest first
func (s *MemoryStore) ListBuyerBids(_ context.Context, buyerID string) ([]model.Bid, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var bids []model.Bid
	for _, bid := range s.bids {
		if bid.BuyerID == buyerID {
			bids = append(bids, bid)
		}
	}
	sort.Slice(bids, func(i, j int) bool { return bids[i].CommittedAt.After(bids[j].CommittedAt) })
	return bids, nil
}

// GetBuyer returns a buyer's standing record
func (s *MemoryStore) GetBuyer(_ context.Context, buyerID string) (model.Buyer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	buyer, ok := s.buyers[buyerID]
	if !ok {
		return model.Buyer{}, fmt.Errorf("get buyer %s: %w", buyerID, auctionerrors.ErrBuyerNotFound)
	}
	return buyer, nil
}

// PutBuyer creates or replaces a buyer's standing record
func (s *MemoryStore) PutBuyer(_ context.Context, buyer model.Buyer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buyers[buyer.BuyerID] = buyer
	return nil
}

// UpsertPreference creates or replaces a buyer preference set by PrefID
func (s *MemoryStore) UpsertPreference(_ context.Context, set model.BuyerPreferenceSet) (model.BuyerPreferenceSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.prefs[set.PrefID]; ok {
		set.CreatedAt = existing.CreatedAt // arrival order survives edits
	}
	s.prefs[set.PrefID] = set
	return set, nil
}

// ActivePreferencesByVertical returns active sets for a vertical plus the
// wildcard vertical, ordered by ascending priority, ties by arrival order.
func (s *MemoryStore) ActivePreferencesByVertical(_ context.Context, vertical string) ([]model.BuyerPreferenceSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sets []model.BuyerPreferenceSet
	for _, set := range s.prefs {
		if !set.Active {
			continue
		}
		if set.Vertical != vertical && set.Vertical != model.WildcardVertical {
			continue
		}
		sets = append(sets, set)
	}
	sort.SliceStable(sets, func(i, j int) bool {
		if sets[i].Priority != sets[j].Priority {
			return sets[i].Priority < sets[j].Priority
		}
		return sets[i].CreatedAt.Before(sets[j].CreatedAt)
	})
	return sets, nil
}

// BuyerDailySpend sums the amounts of a buyer's non-terminal-rejected bids
// placed on the given calendar day (UTC). Withdrawn and rejected bids do not
// count against the daily budget.
func (s *MemoryStore) BuyerDailySpend(_ context.Context, buyerID string, day time.Time) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	y, m, d := day.UTC().Date()
	total := decimal.Zero
	for _, bid := range s.bids {
		if bid.BuyerID != buyerID {
			continue
		}
		if bid.Status == model.BidWithdrawn || bid.Status == model.BidRejected {
			continue
		}
		by, bm, bd := bid.CommittedAt.UTC().Date()
		if by == y && bm == m && bd == d {
			total = total.Add(bid.Amount)
		}
	}
	return total, nil
}
