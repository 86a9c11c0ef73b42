package auction

import (
	"context"
	"fmt"
	"time"

	"lead-exchange/internal/auctionerrors"
	model "lead-exchange/internal/models"
	"lead-exchange/utils"
)

// MatchLead evaluates every active preference set for the lead's vertical
// (plus the wildcard vertical) and returns one bid intent per auto-bid-enabled
// set whose filters all pass, ordered by ascending priority with ties broken
// by arrival order. Filters are silent skips here, unlike the hard rejections
// of the place-bid path; a standing rule that does not match simply produces
// no intent.
func (s *AuctionService) MatchLead(ctx context.Context, lead model.Lead) ([]model.BidIntent, error) {
	sets, err := s.store.ActivePreferencesByVertical(ctx, lead.Vertical)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list preferences for vertical %s: %w", lead.Vertical, err)
	}

	var intents []model.BidIntent
	for _, set := range sets {
		if !set.AutoBid {
			continue
		}
		if !s.matchesPreference(ctx, set, lead) {
			continue
		}

		amount := set.AutoBidAmount
		if set.MaxPerLead.IsPositive() && amount.Cmp(set.MaxPerLead) > 0 {
			amount = set.MaxPerLead
		}

		if set.DailyBudget.IsPositive() {
			spent, err := s.store.BuyerDailySpend(ctx, set.BuyerID, time.Now().UTC())
			if err != nil {
				return nil, fmt.Errorf("service: failed to read daily spend for buyer %s: %w", set.BuyerID, err)
			}
			if spent.Add(amount).Cmp(set.DailyBudget) > 0 {
				continue
			}
		}

		intents = append(intents, model.BidIntent{
			LeadID:  lead.LeadID,
			BuyerID: set.BuyerID,
			PrefID:  set.PrefID,
			Amount:  amount,
		})
	}
	return intents, nil
}

// matchesPreference applies one standing rule's filters against a lead.
func (s *AuctionService) matchesPreference(ctx context.Context, set model.BuyerPreferenceSet, lead model.Lead) bool {
	if len(set.GeoInclude) > 0 && !containsString(set.GeoInclude, lead.Geo) {
		return false
	}
	if containsString(set.GeoExclude, lead.Geo) {
		return false
	}
	if lead.QualityScore < set.MinQualityScore {
		return false
	}

	buyer, err := s.store.GetBuyer(ctx, set.BuyerID)
	if err != nil {
		return false
	}
	if lead.Offsite && !buyer.AcceptsOffsite {
		return false
	}
	if buyer.RequireVerifiedLeads && !lead.Verified {
		return false
	}
	return true
}

// RunAutoBids matches a lead against all standing rules and submits each
// intent through the same place-bid operation manual bids use; the matcher
// has no privileged path into the ledger. Per-intent failures are logged
// and skipped. Returns the number of bids placed.
func (s *AuctionService) RunAutoBids(ctx context.Context, leadID string) (int, error) {
	if leadID == "" {
		return 0, fmt.Errorf("service: %w - empty lead ID", auctionerrors.ErrValidation)
	}

	lead, err := s.store.GetLead(ctx, leadID)
	if err != nil {
		return 0, fmt.Errorf("service: %w", err)
	}

	intents, err := s.MatchLead(ctx, lead)
	if err != nil {
		return 0, err
	}

	placed := 0
	for _, intent := range intents {
		if _, err := s.PlaceDirectBid(ctx, intent.LeadID, intent.BuyerID, intent.Amount); err != nil {
			utils.Warn("auto-bid intent rejected", map[string]any{
				"lead_id":  intent.LeadID,
				"buyer_id": intent.BuyerID,
				"pref_id":  intent.PrefID,
				"amount":   intent.Amount.String(),
				"error":    err.Error(),
			})
			continue
		}
		placed++
	}
	return placed, nil
}
