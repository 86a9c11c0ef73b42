package auction

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	model "lead-exchange/internal/models"
	"lead-exchange/internal/repository"
)

func seedPreference(t *testing.T, store *repository.MemoryStore, set model.BuyerPreferenceSet) model.BuyerPreferenceSet {
	t.Helper()
	if set.CreatedAt.IsZero() {
		set.CreatedAt = time.Now().UTC()
	}
	set, err := store.UpsertPreference(context.Background(), set)
	require.NoError(t, err)
	return set
}

func TestMatchLead_Filters(t *testing.T) {
	ctx := context.Background()

	lead := model.Lead{
		LeadID:       "lead1",
		Vertical:     "insurance",
		Geo:          "us-ca",
		ReservePrice: decimal.RequireFromString("50"),
		QualityScore: 70,
		Verified:     true,
		Phase:        model.PhaseInAuction,
	}

	tests := []struct {
		name      string
		buyer     model.Buyer
		set       model.BuyerPreferenceSet
		lead      func(model.Lead) model.Lead
		wantMatch bool
	}{
		{
			name:  "plain_match",
			buyer: model.Buyer{BuyerID: "b1", AcceptsOffsite: true},
			set: model.BuyerPreferenceSet{
				PrefID: "p1", BuyerID: "b1", Vertical: "insurance", Active: true,
				AutoBid: true, AutoBidAmount: decimal.RequireFromString("60"),
			},
			lead:      func(l model.Lead) model.Lead { return l },
			wantMatch: true,
		},
		{
			name:  "wildcard_vertical_matches",
			buyer: model.Buyer{BuyerID: "b1", AcceptsOffsite: true},
			set: model.BuyerPreferenceSet{
				PrefID: "p1", BuyerID: "b1", Vertical: model.WildcardVertical, Active: true,
				AutoBid: true, AutoBidAmount: decimal.RequireFromString("60"),
			},
			lead:      func(l model.Lead) model.Lead { return l },
			wantMatch: true,
		},
		{
			name:  "geo_not_in_include_list",
			buyer: model.Buyer{BuyerID: "b1", AcceptsOffsite: true},
			set: model.BuyerPreferenceSet{
				PrefID: "p1", BuyerID: "b1", Vertical: "insurance", Active: true,
				AutoBid: true, AutoBidAmount: decimal.RequireFromString("60"),
				GeoInclude: []string{"us-tx", "us-fl"},
			},
			lead:      func(l model.Lead) model.Lead { return l },
			wantMatch: false,
		},
		{
			name:  "geo_in_exclude_list",
			buyer: model.Buyer{BuyerID: "b1", AcceptsOffsite: true},
			set: model.BuyerPreferenceSet{
				PrefID: "p1", BuyerID: "b1", Vertical: "insurance", Active: true,
				AutoBid: true, AutoBidAmount: decimal.RequireFromString("60"),
				GeoExclude: []string{"us-ca"},
			},
			lead:      func(l model.Lead) model.Lead { return l },
			wantMatch: false,
		},
		{
			name:  "quality_below_minimum",
			buyer: model.Buyer{BuyerID: "b1", AcceptsOffsite: true},
			set: model.BuyerPreferenceSet{
				PrefID: "p1", BuyerID: "b1", Vertical: "insurance", Active: true,
				AutoBid: true, AutoBidAmount: decimal.RequireFromString("60"),
				MinQualityScore: 80,
			},
			lead:      func(l model.Lead) model.Lead { return l },
			wantMatch: false,
		},
		{
			name:  "offsite_lead_buyer_declines",
			buyer: model.Buyer{BuyerID: "b1", AcceptsOffsite: false},
			set: model.BuyerPreferenceSet{
				PrefID: "p1", BuyerID: "b1", Vertical: "insurance", Active: true,
				AutoBid: true, AutoBidAmount: decimal.RequireFromString("60"),
			},
			lead:      func(l model.Lead) model.Lead { l.Offsite = true; return l },
			wantMatch: false,
		},
		{
			name:  "unverified_lead_buyer_requires_verified",
			buyer: model.Buyer{BuyerID: "b1", AcceptsOffsite: true, RequireVerifiedLeads: true},
			set: model.BuyerPreferenceSet{
				PrefID: "p1", BuyerID: "b1", Vertical: "insurance", Active: true,
				AutoBid: true, AutoBidAmount: decimal.RequireFromString("60"),
			},
			lead:      func(l model.Lead) model.Lead { l.Verified = false; return l },
			wantMatch: false,
		},
		{
			name:  "auto_bid_disabled",
			buyer: model.Buyer{BuyerID: "b1", AcceptsOffsite: true},
			set: model.BuyerPreferenceSet{
				PrefID: "p1", BuyerID: "b1", Vertical: "insurance", Active: true,
				AutoBid: false,
			},
			lead:      func(l model.Lead) model.Lead { return l },
			wantMatch: false,
		},
		{
			name:  "inactive_set",
			buyer: model.Buyer{BuyerID: "b1", AcceptsOffsite: true},
			set: model.BuyerPreferenceSet{
				PrefID: "p1", BuyerID: "b1", Vertical: "insurance", Active: false,
				AutoBid: true, AutoBidAmount: decimal.RequireFromString("60"),
			},
			lead:      func(l model.Lead) model.Lead { return l },
			wantMatch: false,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			svc, store, _ := newFixture(t)
			require.NoError(t, store.PutBuyer(ctx, tc.buyer))
			seedPreference(t, store, tc.set)

			intents, err := svc.MatchLead(ctx, tc.lead(lead))
			require.NoError(t, err)
			if tc.wantMatch {
				require.Len(t, intents, 1)
				require.Equal(t, "b1", intents[0].BuyerID)
			} else {
				require.Empty(t, intents)
			}
		})
	}
}

func TestMatchLead_PriorityOrderingAndCap(t *testing.T) {
	svc, store, _ := newFixture(t)
	ctx := context.Background()

	for _, id := range []string{"b1", "b2", "b3"} {
		require.NoError(t, store.PutBuyer(ctx, model.Buyer{BuyerID: id, AcceptsOffsite: true}))
	}

	base := time.Now().UTC()
	// b2 has the best (lowest) priority; b3 ties with b1 but arrived later.
	seedPreference(t, store, model.BuyerPreferenceSet{
		PrefID: "p1", BuyerID: "b1", Vertical: "insurance", Active: true, Priority: 5,
		AutoBid: true, AutoBidAmount: decimal.RequireFromString("70"), CreatedAt: base,
	})
	seedPreference(t, store, model.BuyerPreferenceSet{
		PrefID: "p2", BuyerID: "b2", Vertical: "insurance", Active: true, Priority: 1,
		AutoBid: true, AutoBidAmount: decimal.RequireFromString("90"),
		MaxPerLead: decimal.RequireFromString("75"), CreatedAt: base.Add(time.Second),
	})
	seedPreference(t, store, model.BuyerPreferenceSet{
		PrefID: "p3", BuyerID: "b3", Vertical: model.WildcardVertical, Active: true, Priority: 5,
		AutoBid: true, AutoBidAmount: decimal.RequireFromString("60"), CreatedAt: base.Add(2 * time.Second),
	})

	lead := model.Lead{
		LeadID: "lead1", Vertical: "insurance", Geo: "us-ca",
		ReservePrice: decimal.RequireFromString("50"), QualityScore: 70,
		Verified: true, Phase: model.PhaseInAuction,
	}

	intents, err := svc.MatchLead(ctx, lead)
	require.NoError(t, err)
	require.Len(t, intents, 3)
	require.Equal(t, []string{"b2", "b1", "b3"}, []string{intents[0].BuyerID, intents[1].BuyerID, intents[2].BuyerID})
	require.True(t, intents[0].Amount.Equal(decimal.RequireFromString("75")), "amount capped at MaxPerLead")
	require.True(t, intents[1].Amount.Equal(decimal.RequireFromString("70")))
}

func TestMatchLead_DailyBudget(t *testing.T) {
	svc, store, _ := newFixture(t)
	ctx := context.Background()

	require.NoError(t, store.PutBuyer(ctx, model.Buyer{BuyerID: "b1", AcceptsOffsite: true}))
	seedPreference(t, store, model.BuyerPreferenceSet{
		PrefID: "p1", BuyerID: "b1", Vertical: "insurance", Active: true,
		AutoBid: true, AutoBidAmount: decimal.RequireFromString("60"),
		DailyBudget: decimal.RequireFromString("100"),
	})

	// 50 already spent today: 50 + 60 > 100, so the intent is skipped.
	now := time.Now().UTC()
	_, err := store.UpsertBid(ctx, model.Bid{
		BidID: "spent", LeadID: "other-lead", BuyerID: "b1",
		Amount: decimal.RequireFromString("50"), Status: model.BidRevealed,
		CommittedAt: now, RevealedAt: now,
	})
	require.NoError(t, err)

	lead := model.Lead{
		LeadID: "lead1", Vertical: "insurance", Geo: "us-ca",
		ReservePrice: decimal.RequireFromString("50"), QualityScore: 70,
		Verified: true, Phase: model.PhaseInAuction,
	}
	intents, err := svc.MatchLead(ctx, lead)
	require.NoError(t, err)
	require.Empty(t, intents)

	// Under budget once the standing spend is withdrawn.
	_, err = store.SettleBid(ctx, "spent", model.BidRevealed, model.BidWithdrawn, repository.BidSettlement{})
	require.NoError(t, err)

	intents, err = svc.MatchLead(ctx, lead)
	require.NoError(t, err)
	require.Len(t, intents, 1)
}

func TestRunAutoBids_PlacesThroughDirectBidPath(t *testing.T) {
	svc, store, gate := newFixture(t)
	allowAll(gate)
	ctx := context.Background()

	seedAuction(t, store, "lead1", "50", time.Hour, 2*time.Hour)

	require.NoError(t, store.PutBuyer(ctx, model.Buyer{BuyerID: "b1", AcceptsOffsite: true}))
	require.NoError(t, store.PutBuyer(ctx, model.Buyer{BuyerID: "b2", AcceptsOffsite: true}))
	seedPreference(t, store, model.BuyerPreferenceSet{
		PrefID: "p1", BuyerID: "b1", Vertical: "insurance", Active: true, Priority: 1,
		AutoBid: true, AutoBidAmount: decimal.RequireFromString("70"),
	})
	// b2's amount is below the reserve: the direct-bid path rejects it and
	// the matcher moves on.
	seedPreference(t, store, model.BuyerPreferenceSet{
		PrefID: "p2", BuyerID: "b2", Vertical: "insurance", Active: true, Priority: 2,
		AutoBid: true, AutoBidAmount: decimal.RequireFromString("40"),
	})

	placed, err := svc.RunAutoBids(ctx, "lead1")
	require.NoError(t, err)
	require.Equal(t, 1, placed)

	room, err := store.GetRoom(ctx, "lead1")
	require.NoError(t, err)
	require.Equal(t, 1, room.BidCount)
	require.True(t, room.HighestBid.Equal(decimal.RequireFromString("70")))
	require.Equal(t, "b1", room.HighestBidder)

	bid, err := store.GetBidByLeadAndBuyer(ctx, "lead1", "b1")
	require.NoError(t, err)
	require.Equal(t, model.BidRevealed, bid.Status)
}
