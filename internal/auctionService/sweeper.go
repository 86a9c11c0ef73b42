package auction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lead-exchange/internal/auctionerrors"
	model "lead-exchange/internal/models"
	"lead-exchange/internal/repository"
	"lead-exchange/utils"
)

// Sweeper drives every auction whose deadlines have passed to a terminal
// state, independent of any live request. It runs once at process start to
// repair auctions that expired during downtime, then on a recurring schedule.
// Resolution is idempotent: re-sweeping a terminal auction is a no-op.
type Sweeper struct {
	store repository.AuctionStore
}

// NewSweeper creates a new Sweeper instance
func NewSweeper(store repository.AuctionStore) *Sweeper {
	return &Sweeper{store: store}
}

// SweepNow resolves all overdue auctions and returns how many reached a
// terminal state in this pass. A failure on one auction is logged and never
// blocks the rest of the sweep.
func (s *Sweeper) SweepNow(ctx context.Context) (int, error) {
	now := time.Now().UTC()
	resolved := 0

	rooms, err := s.store.ExpiredRevealRooms(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("sweeper: failed to list expired reveal rooms: %w", err)
	}
	for _, room := range rooms {
		done, err := s.resolveRoom(ctx, room)
		if err != nil {
			utils.Error("sweeper: failed to resolve auction", map[string]any{
				"lead_id": room.LeadID,
				"error":   err.Error(),
			})
			continue
		}
		if done {
			resolved++
		}
	}

	leads, err := s.store.ExpiredBiddingLeads(ctx, now)
	if err != nil {
		return resolved, fmt.Errorf("sweeper: failed to list expired bidding leads: %w", err)
	}
	for _, lead := range leads {
		done, err := s.expireBidding(ctx, lead)
		if err != nil {
			utils.Error("sweeper: failed to expire bidding phase", map[string]any{
				"lead_id": lead.LeadID,
				"error":   err.Error(),
			})
			continue
		}
		if done {
			resolved++
		}
	}

	return resolved, nil
}

// resolveRoom closes one reveal-phase auction: SOLD when the highest revealed
// bid clears the reserve, UNSOLD otherwise. Losing the transition race to a
// concurrent sweep means the auction is already terminal; that is a no-op.
func (s *Sweeper) resolveRoom(ctx context.Context, room model.AuctionRoom) (bool, error) {
	lead, err := s.store.GetLead(ctx, room.LeadID)
	if err != nil {
		return false, err
	}
	if lead.Phase.Terminal() {
		return false, nil
	}

	target := model.PhaseUnsold
	if room.HighestBidder != "" && room.HighestBid.Cmp(lead.ReservePrice) >= 0 {
		target = model.PhaseSold
	}

	if err := s.store.TransitionLeadPhase(ctx, room.LeadID, model.PhaseReveal, target); err != nil {
		if errors.Is(err, auctionerrors.ErrPhaseConflict) {
			return false, nil
		}
		return false, err
	}
	if err := s.store.TransitionRoomPhase(ctx, room.LeadID, model.PhaseReveal, target); err != nil && !errors.Is(err, auctionerrors.ErrPhaseConflict) {
		return false, err
	}

	fields := map[string]any{
		"lead_id": room.LeadID,
		"phase":   string(target),
	}
	if target == model.PhaseSold {
		fields["winner"] = room.HighestBidder
		fields["amount"] = room.HighestBid.String()
	}
	utils.Info("sweeper: auction resolved", fields)
	return true, nil
}

// expireBidding handles a lead whose bidding deadline passed while still
// IN_AUCTION. With zero bids it goes straight to UNSOLD; with bids it is
// advanced into REVEAL_PHASE so reveals (or the next sweep after the reveal
// deadline) can finish it. Only terminal outcomes count as resolved.
func (s *Sweeper) expireBidding(ctx context.Context, lead model.Lead) (bool, error) {
	room, roomErr := s.store.GetRoom(ctx, lead.LeadID)
	if roomErr != nil && !errors.Is(roomErr, auctionerrors.ErrRoomNotFound) {
		return false, roomErr
	}

	hasBids := roomErr == nil && room.BidCount > 0
	if hasBids {
		if err := s.store.TransitionLeadPhase(ctx, lead.LeadID, model.PhaseInAuction, model.PhaseReveal); err != nil && !errors.Is(err, auctionerrors.ErrPhaseConflict) {
			return false, err
		}
		if err := s.store.TransitionRoomPhase(ctx, lead.LeadID, model.PhaseInAuction, model.PhaseReveal); err != nil && !errors.Is(err, auctionerrors.ErrPhaseConflict) {
			return false, err
		}
		return false, nil
	}

	if err := s.store.TransitionLeadPhase(ctx, lead.LeadID, model.PhaseInAuction, model.PhaseUnsold); err != nil {
		if errors.Is(err, auctionerrors.ErrPhaseConflict) {
			return false, nil
		}
		return false, err
	}
	// A zero-bid lead may predate its room (auction opened, nobody came).
	if roomErr == nil {
		if err := s.store.TransitionRoomPhase(ctx, lead.LeadID, model.PhaseInAuction, model.PhaseUnsold); err != nil && !errors.Is(err, auctionerrors.ErrPhaseConflict) {
			return false, err
		}
	}

	utils.Info("sweeper: auction expired with no bids", map[string]any{"lead_id": lead.LeadID})
	return true, nil
}

// Run performs the startup sweep, then sweeps on every tick until the
// context is cancelled. The startup sweep's failure is logged, never fatal
// to the hosting process.
func (s *Sweeper) Run(ctx context.Context, interval time.Duration) {
	if n, err := s.SweepNow(ctx); err != nil {
		utils.Error("sweeper: startup sweep failed", map[string]any{"error": err.Error()})
	} else {
		utils.Info("sweeper: startup sweep complete", map[string]any{"resolved": n})
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n, err := s.SweepNow(ctx); err != nil {
				utils.Error("sweeper: scheduled sweep failed", map[string]any{"error": err.Error()})
			} else if n > 0 {
				utils.Info("sweeper: scheduled sweep complete", map[string]any{"resolved": n})
			}
		}
	}
}
