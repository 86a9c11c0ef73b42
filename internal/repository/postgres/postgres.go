// Package postgres implements repository.AuctionStore on PostgreSQL.
// The conditional writes the auction core relies on (raise-highest-bid only
// if strictly greater, transition only from an expected phase) are single
// UPDATE statements with the precondition in the WHERE clause, so the
// database serializes concurrent writers per row.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/shopspring/decimal"

	"lead-exchange/internal/auctionerrors"
	model "lead-exchange/internal/models"
	"lead-exchange/internal/repository"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// Store is a PostgreSQL-backed AuctionStore
type Store struct {
	db *sqlx.DB
}

// Open connects to Postgres, verifies the connection and runs migrations
func Open(dsn string) (*Store, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to connect: %w", err)
	}
	if err := migrate(db.DB); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// NewStore wraps an existing connection without running migrations
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Close releases the underlying connection pool
func (s *Store) Close() error {
	return s.db.Close()
}

func migrate(db *sql.DB) error {
	goose.SetBaseFS(embedMigrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("postgres: failed to set goose dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("postgres: failed to run migrations: %w", err)
	}
	return nil
}

type leadRow struct {
	LeadID        string          `db:"lead_id"`
	Vertical      string          `db:"vertical"`
	Geo           string          `db:"geo"`
	ReservePrice  decimal.Decimal `db:"reserve_price"`
	QualityScore  int             `db:"quality_score"`
	Offsite       bool            `db:"offsite"`
	Verified      bool            `db:"verified"`
	AuctionEndsAt sql.NullTime    `db:"auction_ends_at"`
	RevealEndsAt  sql.NullTime    `db:"reveal_ends_at"`
	Phase         string          `db:"phase"`
	CreatedAt     time.Time       `db:"created_at"`
}

func (r leadRow) toModel() model.Lead {
	return model.Lead{
		LeadID:        r.LeadID,
		Vertical:      r.Vertical,
		Geo:           r.Geo,
		ReservePrice:  r.ReservePrice,
		QualityScore:  r.QualityScore,
		Offsite:       r.Offsite,
		Verified:      r.Verified,
		AuctionEndsAt: r.AuctionEndsAt.Time,
		RevealEndsAt:  r.RevealEndsAt.Time,
		Phase:         model.LeadPhase(r.Phase),
		CreatedAt:     r.CreatedAt,
	}
}

type roomRow struct {
	LeadID        string          `db:"lead_id"`
	BidCount      int             `db:"bid_count"`
	HighestBid    decimal.Decimal `db:"highest_bid"`
	HighestBidder string          `db:"highest_bidder"`
	Phase         string          `db:"phase"`
	RevealEndsAt  sql.NullTime    `db:"reveal_ends_at"`
	Participants  pq.StringArray  `db:"participants"`
}

func (r roomRow) toModel() model.AuctionRoom {
	return model.AuctionRoom{
		LeadID:        r.LeadID,
		BidCount:      r.BidCount,
		HighestBid:    r.HighestBid,
		HighestBidder: r.HighestBidder,
		Phase:         model.LeadPhase(r.Phase),
		RevealEndsAt:  r.RevealEndsAt.Time,
		Participants:  []string(r.Participants),
	}
}

type bidRow struct {
	BidID       string          `db:"bid_id"`
	LeadID      string          `db:"lead_id"`
	BuyerID     string          `db:"buyer_id"`
	Commitment  string          `db:"commitment"`
	Amount      decimal.Decimal `db:"amount"`
	Salt        string          `db:"salt"`
	Status      string          `db:"status"`
	CommittedAt time.Time       `db:"committed_at"`
	RevealedAt  sql.NullTime    `db:"revealed_at"`
}

func (r bidRow) toModel() model.Bid {
	return model.Bid{
		BidID:       r.BidID,
		LeadID:      r.LeadID,
		BuyerID:     r.BuyerID,
		Commitment:  r.Commitment,
		Amount:      r.Amount,
		Salt:        r.Salt,
		Status:      model.BidStatus(r.Status),
		CommittedAt: r.CommittedAt,
		RevealedAt:  r.RevealedAt.Time,
	}
}

type buyerRow struct {
	BuyerID              string         `db:"buyer_id"`
	Verified             bool           `db:"verified"`
	AcceptsOffsite       bool           `db:"accepts_offsite"`
	AllowedVerticals     pq.StringArray `db:"allowed_verticals"`
	RequireVerifiedLeads bool           `db:"require_verified_leads"`
}

type prefRow struct {
	PrefID          string          `db:"pref_id"`
	BuyerID         string          `db:"buyer_id"`
	Vertical        string          `db:"vertical"`
	GeoInclude      pq.StringArray  `db:"geo_include"`
	GeoExclude      pq.StringArray  `db:"geo_exclude"`
	MinQualityScore int             `db:"min_quality_score"`
	MaxPerLead      decimal.Decimal `db:"max_per_lead"`
	DailyBudget     decimal.Decimal `db:"daily_budget"`
	AutoBidAmount   decimal.Decimal `db:"auto_bid_amount"`
	AutoBid         bool            `db:"auto_bid"`
	Active          bool            `db:"active"`
	Priority        int             `db:"priority"`
	CreatedAt       time.Time       `db:"created_at"`
}

func (r prefRow) toModel() model.BuyerPreferenceSet {
	return model.BuyerPreferenceSet{
		PrefID:          r.PrefID,
		BuyerID:         r.BuyerID,
		Vertical:        r.Vertical,
		GeoInclude:      []string(r.GeoInclude),
		GeoExclude:      []string(r.GeoExclude),
		MinQualityScore: r.MinQualityScore,
		MaxPerLead:      r.MaxPerLead,
		DailyBudget:     r.DailyBudget,
		AutoBidAmount:   r.AutoBidAmount,
		AutoBid:         r.AutoBid,
		Active:          r.Active,
		Priority:        r.Priority,
		CreatedAt:       r.CreatedAt,
	}
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

// CreateLead registers a new lead
func (s *Store) CreateLead(ctx context.Context, lead model.Lead) error {
	query := `
        INSERT INTO leads (lead_id, vertical, geo, reserve_price, quality_score, offsite, verified,
                           auction_ends_at, reveal_ends_at, phase, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := s.db.ExecContext(ctx, query,
		lead.LeadID, lead.Vertical, lead.Geo, lead.ReservePrice, lead.QualityScore,
		lead.Offsite, lead.Verified, nullTime(lead.AuctionEndsAt), nullTime(lead.RevealEndsAt),
		string(lead.Phase), lead.CreatedAt)
	if err != nil {
		return fmt.Errorf("create lead %s: %w", lead.LeadID, err)
	}
	return nil
}

// GetLead returns a lead by id
func (s *Store) GetLead(ctx context.Context, leadID string) (model.Lead, error) {
	var row leadRow
	err := s.db.GetContext(ctx, &row, `SELECT * FROM leads WHERE lead_id = $1`, leadID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Lead{}, fmt.Errorf("get lead %s: %w", leadID, auctionerrors.ErrLeadNotFound)
	}
	if err != nil {
		return model.Lead{}, fmt.Errorf("get lead %s: %w", leadID, err)
	}
	return row.toModel(), nil
}

// LatestPendingLead returns the most recently created lead still awaiting an auction
func (s *Store) LatestPendingLead(ctx context.Context) (model.Lead, error) {
	var row leadRow
	err := s.db.GetContext(ctx, &row,
		`SELECT * FROM leads WHERE phase = $1 ORDER BY created_at DESC LIMIT 1`,
		string(model.PhasePendingAuction))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Lead{}, fmt.Errorf("latest pending lead: %w", auctionerrors.ErrLeadNotFound)
	}
	if err != nil {
		return model.Lead{}, fmt.Errorf("latest pending lead: %w", err)
	}
	return row.toModel(), nil
}

// OpenLeadAuction atomically moves a pending lead into IN_AUCTION and stamps both deadlines
func (s *Store) OpenLeadAuction(ctx context.Context, leadID string, auctionEndsAt, revealEndsAt time.Time) (model.Lead, error) {
	var row leadRow
	query := `
        UPDATE leads
        SET phase = $2, auction_ends_at = $3, reveal_ends_at = $4
        WHERE lead_id = $1 AND phase = $5
        RETURNING *`
	err := s.db.GetContext(ctx, &row, query,
		leadID, string(model.PhaseInAuction), auctionEndsAt, revealEndsAt, string(model.PhasePendingAuction))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Lead{}, s.leadConflict(ctx, leadID, "open auction")
	}
	if err != nil {
		return model.Lead{}, fmt.Errorf("open auction for lead %s: %w", leadID, err)
	}
	return row.toModel(), nil
}

// TransitionLeadPhase advances a lead's phase only if it currently holds the expected phase
func (s *Store) TransitionLeadPhase(ctx context.Context, leadID string, from, to model.LeadPhase) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE leads SET phase = $3 WHERE lead_id = $1 AND phase = $2`,
		leadID, string(from), string(to))
	if err != nil {
		return fmt.Errorf("transition lead %s: %w", leadID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return s.leadConflict(ctx, leadID, "transition lead")
	}
	return nil
}

// leadConflict reports why a conditional lead update matched no row
func (s *Store) leadConflict(ctx context.Context, leadID, op string) error {
	var exists bool
	if err := s.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM leads WHERE lead_id = $1)`, leadID); err != nil {
		return fmt.Errorf("%s %s: %w", op, leadID, err)
	}
	if !exists {
		return fmt.Errorf("%s %s: %w", op, leadID, auctionerrors.ErrLeadNotFound)
	}
	return fmt.Errorf("%s %s: %w", op, leadID, auctionerrors.ErrPhaseConflict)
}

// ExpiredBiddingLeads returns leads still IN_AUCTION whose bidding deadline has passed
func (s *Store) ExpiredBiddingLeads(ctx context.Context, now time.Time) ([]model.Lead, error) {
	var rows []leadRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT * FROM leads WHERE phase = $1 AND auction_ends_at < $2 ORDER BY lead_id`,
		string(model.PhaseInAuction), now)
	if err != nil {
		return nil, fmt.Errorf("expired bidding leads: %w", err)
	}
	leads := make([]model.Lead, 0, len(rows))
	for _, r := range rows {
		leads = append(leads, r.toModel())
	}
	return leads, nil
}

// CreateRoom opens an auction room for a lead
func (s *Store) CreateRoom(ctx context.Context, room model.AuctionRoom) error {
	query := `
        INSERT INTO auction_rooms (lead_id, bid_count, highest_bid, highest_bidder, phase, reveal_ends_at, participants)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := s.db.ExecContext(ctx, query,
		room.LeadID, room.BidCount, room.HighestBid, room.HighestBidder,
		string(room.Phase), nullTime(room.RevealEndsAt), pq.StringArray(room.Participants))
	if err != nil {
		return fmt.Errorf("create room for lead %s: %w", room.LeadID, err)
	}
	return nil
}

// GetRoom returns the auction room for a lead
func (s *Store) GetRoom(ctx context.Context, leadID string) (model.AuctionRoom, error) {
	var row roomRow
	err := s.db.GetContext(ctx, &row, `SELECT * FROM auction_rooms WHERE lead_id = $1`, leadID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.AuctionRoom{}, fmt.Errorf("get room for lead %s: %w", leadID, auctionerrors.ErrRoomNotFound)
	}
	if err != nil {
		return model.AuctionRoom{}, fmt.Errorf("get room for lead %s: %w", leadID, err)
	}
	return row.toModel(), nil
}

// TransitionRoomPhase advances a room's phase mirror, conditionally on the expected phase
func (s *Store) TransitionRoomPhase(ctx context.Context, leadID string, from, to model.LeadPhase) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE auction_rooms SET phase = $3 WHERE lead_id = $1 AND phase = $2`,
		leadID, string(from), string(to))
	if err != nil {
		return fmt.Errorf("transition room for lead %s: %w", leadID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return s.roomConflict(ctx, leadID, "transition room")
	}
	return nil
}

func (s *Store) roomConflict(ctx context.Context, leadID, op string) error {
	var exists bool
	if err := s.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM auction_rooms WHERE lead_id = $1)`, leadID); err != nil {
		return fmt.Errorf("%s for lead %s: %w", op, leadID, err)
	}
	if !exists {
		return fmt.Errorf("%s for lead %s: %w", op, leadID, auctionerrors.ErrRoomNotFound)
	}
	return fmt.Errorf("%s for lead %s: %w", op, leadID, auctionerrors.ErrPhaseConflict)
}

// RecordCommit counts a sealed-bid commit and appends the participant
func (s *Store) RecordCommit(ctx context.Context, leadID, buyerID string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE auction_rooms
         SET bid_count = bid_count + 1, participants = array_append(participants, $2)
         WHERE lead_id = $1`,
		leadID, buyerID)
	if err != nil {
		return fmt.Errorf("record commit for lead %s: %w", leadID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("record commit for lead %s: %w", leadID, auctionerrors.ErrRoomNotFound)
	}
	return nil
}

// IncrementBidCount bumps a room's bid counter
func (s *Store) IncrementBidCount(ctx context.Context, leadID string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE auction_rooms SET bid_count = bid_count + 1 WHERE lead_id = $1`, leadID)
	if err != nil {
		return fmt.Errorf("increment bid count for lead %s: %w", leadID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("increment bid count for lead %s: %w", leadID, auctionerrors.ErrRoomNotFound)
	}
	return nil
}

// RaiseHighestBid advances the room's highest bid and bidder only if amount
// is strictly greater than the current highest. The precondition lives in
// the WHERE clause, so concurrent raises cannot lose a higher earlier bid
// to a lower later one.
func (s *Store) RaiseHighestBid(ctx context.Context, leadID, buyerID string, amount decimal.Decimal) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE auction_rooms
         SET highest_bid = $3, highest_bidder = $2
         WHERE lead_id = $1 AND highest_bid < $3`,
		leadID, buyerID, amount)
	if err != nil {
		return false, fmt.Errorf("raise highest bid for lead %s: %w", leadID, err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return true, nil
	}
	var exists bool
	if err := s.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM auction_rooms WHERE lead_id = $1)`, leadID); err != nil {
		return false, fmt.Errorf("raise highest bid for lead %s: %w", leadID, err)
	}
	if !exists {
		return false, fmt.Errorf("raise highest bid for lead %s: %w", leadID, auctionerrors.ErrRoomNotFound)
	}
	return false, nil
}

// ExpiredRevealRooms returns rooms still in REVEAL_PHASE whose reveal deadline has passed
func (s *Store) ExpiredRevealRooms(ctx context.Context, now time.Time) ([]model.AuctionRoom, error) {
	var rows []roomRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT * FROM auction_rooms WHERE phase = $1 AND reveal_ends_at < $2 ORDER BY lead_id`,
		string(model.PhaseReveal), now)
	if err != nil {
		return nil, fmt.Errorf("expired reveal rooms: %w", err)
	}
	rooms := make([]model.AuctionRoom, 0, len(rows))
	for _, r := range rows {
		rooms = append(rooms, r.toModel())
	}
	return rooms, nil
}

// UpsertBid creates or replaces the bid keyed by (lead_id, buyer_id) in one
// statement. The conflict branch only fires while the existing bid is
// PENDING; the row keeps its original bid_id.
func (s *Store) UpsertBid(ctx context.Context, bid model.Bid) (model.Bid, error) {
	var row bidRow
	query := `
        INSERT INTO bids (bid_id, lead_id, buyer_id, commitment, amount, salt, status, committed_at, revealed_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        ON CONFLICT (lead_id, buyer_id) DO UPDATE
        SET commitment = EXCLUDED.commitment, amount = EXCLUDED.amount, salt = EXCLUDED.salt,
            status = EXCLUDED.status, committed_at = EXCLUDED.committed_at, revealed_at = EXCLUDED.revealed_at
        WHERE bids.status = $10
        RETURNING *`
	err := s.db.GetContext(ctx, &row, query,
		bid.BidID, bid.LeadID, bid.BuyerID, bid.Commitment, bid.Amount, bid.Salt,
		string(bid.Status), bid.CommittedAt, nullTime(bid.RevealedAt), string(model.BidPending))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Bid{}, fmt.Errorf("upsert bid for lead %s buyer %s: %w", bid.LeadID, bid.BuyerID, auctionerrors.ErrPhaseConflict)
	}
	if err != nil {
		return model.Bid{}, fmt.Errorf("upsert bid for lead %s buyer %s: %w", bid.LeadID, bid.BuyerID, err)
	}
	return row.toModel(), nil
}

// GetBid returns a bid by id
func (s *Store) GetBid(ctx context.Context, bidID string) (model.Bid, error) {
	var row bidRow
	err := s.db.GetContext(ctx, &row, `SELECT * FROM bids WHERE bid_id = $1`, bidID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Bid{}, fmt.Errorf("get bid %s: %w", bidID, auctionerrors.ErrBidNotFound)
	}
	if err != nil {
		return model.Bid{}, fmt.Errorf("get bid %s: %w", bidID, err)
	}
	return row.toModel(), nil
}

// GetBidByLeadAndBuyer returns the unique bid for a (lead, buyer) pair
func (s *Store) GetBidByLeadAndBuyer(ctx context.Context, leadID, buyerID string) (model.Bid, error) {
	var row bidRow
	err := s.db.GetContext(ctx, &row, `SELECT * FROM bids WHERE lead_id = $1 AND buyer_id = $2`, leadID, buyerID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Bid{}, fmt.Errorf("get bid for lead %s buyer %s: %w", leadID, buyerID, auctionerrors.ErrBidNotFound)
	}
	if err != nil {
		return model.Bid{}, fmt.Errorf("get bid for lead %s buyer %s: %w", leadID, buyerID, err)
	}
	return row.toModel(), nil
}

// SettleBid moves a bid from an expected status to a terminal one, recording
// reveal data when present
func (s *Store) SettleBid(ctx context.Context, bidID string, from, to model.BidStatus, settlement repository.BidSettlement) (model.Bid, error) {
	var row bidRow
	query := `
        UPDATE bids
        SET status = $3,
            amount = CASE WHEN $4::text <> '' THEN $5::numeric ELSE amount END,
            salt = CASE WHEN $4::text <> '' THEN $4::text ELSE salt END,
            revealed_at = COALESCE($6::timestamptz, revealed_at)
        WHERE bid_id = $1 AND status = $2
        RETURNING *`
	err := s.db.GetContext(ctx, &row, query,
		bidID, string(from), string(to), settlement.Salt, settlement.Amount, nullTime(settlement.RevealedAt))
	if errors.Is(err, sql.ErrNoRows) {
		var exists bool
		if err := s.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM bids WHERE bid_id = $1)`, bidID); err != nil {
			return model.Bid{}, fmt.Errorf("settle bid %s: %w", bidID, err)
		}
		if !exists {
			return model.Bid{}, fmt.Errorf("settle bid %s: %w", bidID, auctionerrors.ErrBidNotFound)
		}
		return model.Bid{}, fmt.Errorf("settle bid %s from %s: %w", bidID, from, auctionerrors.ErrPhaseConflict)
	}
	if err != nil {
		return model.Bid{}, fmt.Errorf("settle bid %s: %w", bidID, err)
	}
	return row.toModel(), nil
}

// ListBuyerBids returns all bids placed by a buyer, newest first
func (s *Store) ListBuyerBids(ctx context.Context, buyerID string) ([]model.Bid, error) {
	var rows []bidRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT * FROM bids WHERE buyer_id = $1 ORDER BY committed_at DESC`, buyerID)
	if err != nil {
		return nil, fmt.Errorf("list bids for buyer %s: %w", buyerID, err)
	}
	bids := make([]model.Bid, 0, len(rows))
	for _, r := range rows {
		bids = append(bids, r.toModel())
	}
	return bids, nil
}

// GetBuyer returns a buyer's standing record
func (s *Store) GetBuyer(ctx context.Context, buyerID string) (model.Buyer, error) {
	var row buyerRow
	err := s.db.GetContext(ctx, &row, `SELECT * FROM buyers WHERE buyer_id = $1`, buyerID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Buyer{}, fmt.Errorf("get buyer %s: %w", buyerID, auctionerrors.ErrBuyerNotFound)
	}
	if err != nil {
		return model.Buyer{}, fmt.Errorf("get buyer %s: %w", buyerID, err)
	}
	return model.Buyer{
		BuyerID:              row.BuyerID,
		Verified:             row.Verified,
		AcceptsOffsite:       row.AcceptsOffsite,
		AllowedVerticals:     []string(row.AllowedVerticals),
		RequireVerifiedLeads: row.RequireVerifiedLeads,
	}, nil
}

// PutBuyer creates or replaces a buyer's standing record
func (s *Store) PutBuyer(ctx context.Context, buyer model.Buyer) error {
	query := `
        INSERT INTO buyers (buyer_id, verified, accepts_offsite, allowed_verticals, require_verified_leads)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (buyer_id) DO UPDATE
        SET verified = EXCLUDED.verified, accepts_offsite = EXCLUDED.accepts_offsite,
            allowed_verticals = EXCLUDED.allowed_verticals, require_verified_leads = EXCLUDED.require_verified_leads`
	_, err := s.db.ExecContext(ctx, query,
		buyer.BuyerID, buyer.Verified, buyer.AcceptsOffsite,
		pq.StringArray(buyer.AllowedVerticals), buyer.RequireVerifiedLeads)
	if err != nil {
		return fmt.Errorf("put buyer %s: %w", buyer.BuyerID, err)
	}
	return nil
}

// UpsertPreference creates or replaces a buyer preference set by pref_id.
// created_at is preserved on update so arrival order survives edits.
func (s *Store) UpsertPreference(ctx context.Context, set model.BuyerPreferenceSet) (model.BuyerPreferenceSet, error) {
	var row prefRow
	query := `
        INSERT INTO buyer_preferences (pref_id, buyer_id, vertical, geo_include, geo_exclude,
                                       min_quality_score, max_per_lead, daily_budget,
                                       auto_bid_amount, auto_bid, active, priority, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
        ON CONFLICT (pref_id) DO UPDATE
        SET buyer_id = EXCLUDED.buyer_id, vertical = EXCLUDED.vertical,
            geo_include = EXCLUDED.geo_include, geo_exclude = EXCLUDED.geo_exclude,
            min_quality_score = EXCLUDED.min_quality_score, max_per_lead = EXCLUDED.max_per_lead,
            daily_budget = EXCLUDED.daily_budget, auto_bid_amount = EXCLUDED.auto_bid_amount,
            auto_bid = EXCLUDED.auto_bid, active = EXCLUDED.active, priority = EXCLUDED.priority
        RETURNING *`
	err := s.db.GetContext(ctx, &row, query,
		set.PrefID, set.BuyerID, set.Vertical, pq.StringArray(set.GeoInclude), pq.StringArray(set.GeoExclude),
		set.MinQualityScore, set.MaxPerLead, set.DailyBudget,
		set.AutoBidAmount, set.AutoBid, set.Active, set.Priority, set.CreatedAt)
	if err != nil {
		return model.BuyerPreferenceSet{}, fmt.Errorf("upsert preference %s: %w", set.PrefID, err)
	}
	return row.toModel(), nil
}

// ActivePreferencesByVertical returns active sets for a vertical plus the
// wildcard vertical, ordered by ascending priority, ties by arrival order
func (s *Store) ActivePreferencesByVertical(ctx context.Context, vertical string) ([]model.BuyerPreferenceSet, error) {
	var rows []prefRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT * FROM buyer_preferences
         WHERE active AND (vertical = $1 OR vertical = $2)
         ORDER BY priority, created_at`,
		vertical, model.WildcardVertical)
	if err != nil {
		return nil, fmt.Errorf("list preferences for vertical %s: %w", vertical, err)
	}
	sets := make([]model.BuyerPreferenceSet, 0, len(rows))
	for _, r := range rows {
		sets = append(sets, r.toModel())
	}
	return sets, nil
}

// BuyerDailySpend sums the amounts of a buyer's live bids placed on the given
// calendar day (UTC); withdrawn and rejected bids do not count
func (s *Store) BuyerDailySpend(ctx context.Context, buyerID string, day time.Time) (decimal.Decimal, error) {
	dayStart := day.UTC().Truncate(24 * time.Hour)
	var total decimal.Decimal
	err := s.db.GetContext(ctx, &total,
		`SELECT COALESCE(SUM(amount), 0) FROM bids
         WHERE buyer_id = $1 AND status NOT IN ($2, $3)
           AND committed_at >= $4 AND committed_at < $5`,
		buyerID, string(model.BidWithdrawn), string(model.BidRejected), dayStart, dayStart.Add(24*time.Hour))
	if err != nil {
		return decimal.Zero, fmt.Errorf("daily spend for buyer %s: %w", buyerID, err)
	}
	return total, nil
}
