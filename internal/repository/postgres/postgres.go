package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"auction-engine/internal/auctionerrors"
	model "auction-engine/internal/models"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Schema for the auction engine tables. The partial index on ACTIVE bid
// records serves the "highest ACTIVE amount, earliest placed_at" lookup in
// O(log n).
const Schema = `
CREATE TABLE IF NOT EXISTS auctions (
    auction_id     TEXT PRIMARY KEY,
    title          TEXT NOT NULL,
    description    TEXT NOT NULL DEFAULT '',
    seller_id      TEXT NOT NULL,
    start_price    BIGINT NOT NULL,
    current_price  BIGINT NOT NULL,
    hope_price     BIGINT NOT NULL DEFAULT 0,
    reserve_price  BIGINT NOT NULL DEFAULT 0,
    status         TEXT NOT NULL,
    bid_count      INTEGER NOT NULL DEFAULT 0,
    winner_id      TEXT NOT NULL DEFAULT '',
    end_at         TIMESTAMPTZ NOT NULL,
    created_at     TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_auctions_due
    ON auctions (end_at) WHERE status = 'ACTIVE';

CREATE TABLE IF NOT EXISTS bid_records (
    bid_id      TEXT PRIMARY KEY,
    auction_id  TEXT NOT NULL REFERENCES auctions(auction_id),
    bidder_id   TEXT NOT NULL,
    amount      BIGINT NOT NULL,
    origin      TEXT NOT NULL,
    status      TEXT NOT NULL,
    placed_at   TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_bids_active_top
    ON bid_records (auction_id, amount DESC, placed_at ASC) WHERE status = 'ACTIVE';

CREATE TABLE IF NOT EXISTS auto_bid_mandates (
    mandate_id      TEXT NOT NULL,
    auction_id      TEXT NOT NULL REFERENCES auctions(auction_id),
    bidder_id       TEXT NOT NULL,
    ceiling_amount  BIGINT NOT NULL,
    step_percentage INTEGER NOT NULL,
    active          BOOLEAN NOT NULL,
    created_at      TIMESTAMPTZ NOT NULL,
    PRIMARY KEY (auction_id, bidder_id)
);

CREATE INDEX IF NOT EXISTS idx_mandates_active
    ON auto_bid_mandates (auction_id, ceiling_amount DESC, created_at ASC) WHERE active;
`

// Store is a Postgres implementation of repository.AuctionStore.
type Store struct {
	db *sqlx.DB
}

// NewStore creates a store over an open connection pool.
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Connect opens the pool and applies the schema.
func Connect(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}
	if _, err := db.Exec(Schema); err != nil {
		return nil, fmt.Errorf("postgres: ensure schema: %w", err)
	}
	return NewStore(db), nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateAuction inserts a new auction row.
func (s *Store) CreateAuction(a model.Auction) error {
	query := `
    INSERT INTO auctions (
        auction_id, title, description, seller_id,
        start_price, current_price, hope_price, reserve_price,
        status, bid_count, winner_id, end_at, created_at
    ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
    ON CONFLICT (auction_id) DO NOTHING
    `
	res, err := s.db.Exec(query,
		a.AuctionID, a.Title, a.Description, a.SellerID,
		a.StartPrice, a.CurrentPrice, a.HopePrice, a.ReservePrice,
		string(a.Status), a.BidCount, a.WinnerID, a.EndAt, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("postgres: create auction %s: %w", a.AuctionID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("postgres: create auction %s: %w", a.AuctionID, auctionerrors.ErrDuplicateID)
	}
	return nil
}

// GetAuction fetches one auction row.
func (s *Store) GetAuction(auctionID string) (model.Auction, error) {
	var a model.Auction
	err := s.db.Get(&a, `SELECT * FROM auctions WHERE auction_id = $1`, auctionID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Auction{}, fmt.Errorf("postgres: get auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}
	if err != nil {
		return model.Auction{}, fmt.Errorf("postgres: get auction %s: %w", auctionID, err)
	}
	return a, nil
}

// ListAuctions returns every auction ordered by creation time.
func (s *Store) ListAuctions() ([]model.Auction, error) {
	var out []model.Auction
	if err := s.db.Select(&out, `SELECT * FROM auctions ORDER BY created_at ASC`); err != nil {
		return nil, fmt.Errorf("postgres: list auctions: %w", err)
	}
	return out, nil
}

// ListDueAuctions returns ACTIVE auctions whose deadline has passed.
func (s *Store) ListDueAuctions(now time.Time) ([]model.Auction, error) {
	var out []model.Auction
	query := `SELECT * FROM auctions WHERE status = 'ACTIVE' AND end_at <= $1`
	if err := s.db.Select(&out, query, now); err != nil {
		return nil, fmt.Errorf("postgres: list due auctions: %w", err)
	}
	return out, nil
}

// UpdateAuction replaces the mutable columns of an ACTIVE auction. The status
// guard keeps terminal transitions single-winner when several engine instances
// share the database: the second settler matches zero rows and gets
// ErrAuctionNotActive instead of overwriting the outcome.
func (s *Store) UpdateAuction(a model.Auction) error {
	query := `
    UPDATE auctions SET
        current_price = $2, bid_count = $3, status = $4, winner_id = $5, end_at = $6
    WHERE auction_id = $1 AND status = 'ACTIVE'
    `
	res, err := s.db.Exec(query, a.AuctionID, a.CurrentPrice, a.BidCount, string(a.Status), a.WinnerID, a.EndAt)
	if err != nil {
		return fmt.Errorf("postgres: update auction %s: %w", a.AuctionID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var status string
		err := s.db.Get(&status, `SELECT status FROM auctions WHERE auction_id = $1`, a.AuctionID)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("postgres: update auction %s: %w", a.AuctionID, auctionerrors.ErrAuctionNotFound)
		}
		if err != nil {
			return fmt.Errorf("postgres: update auction %s: %w", a.AuctionID, err)
		}
		return fmt.Errorf("postgres: update auction %s is %s: %w", a.AuctionID, status, auctionerrors.ErrAuctionNotActive)
	}
	return nil
}

// AppendBid inserts a bid record.
func (s *Store) AppendBid(rec model.BidRecord) error {
	query := `
    INSERT INTO bid_records (bid_id, auction_id, bidder_id, amount, origin, status, placed_at)
    VALUES ($1,$2,$3,$4,$5,$6,$7)
    `
	_, err := s.db.Exec(query,
		rec.BidID, rec.AuctionID, rec.BidderID, rec.Amount,
		string(rec.Origin), string(rec.Status), rec.PlacedAt)
	if err != nil {
		return fmt.Errorf("postgres: append bid for auction %s: %w", rec.AuctionID, err)
	}
	return nil
}

// UpdateBidStatus flips the status of one bid record.
func (s *Store) UpdateBidStatus(bidID string, status model.BidStatus) error {
	res, err := s.db.Exec(`UPDATE bid_records SET status = $2 WHERE bid_id = $1`, bidID, string(status))
	if err != nil {
		return fmt.Errorf("postgres: update bid %s: %w", bidID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("postgres: update bid %s: %w", bidID, auctionerrors.ErrNoBids)
	}
	return nil
}

// BidsByAuction returns the auction's bid history in placement order.
func (s *Store) BidsByAuction(auctionID string) ([]model.BidRecord, error) {
	if _, err := s.GetAuction(auctionID); err != nil {
		return nil, err
	}
	out := []model.BidRecord{}
	query := `SELECT * FROM bid_records WHERE auction_id = $1 ORDER BY placed_at ASC`
	if err := s.db.Select(&out, query, auctionID); err != nil {
		return nil, fmt.Errorf("postgres: bids for auction %s: %w", auctionID, err)
	}
	return out, nil
}

// HighestActiveBid returns the top ACTIVE bid via the partial index.
func (s *Store) HighestActiveBid(auctionID string) (model.BidRecord, error) {
	var rec model.BidRecord
	query := `
    SELECT * FROM bid_records
    WHERE auction_id = $1 AND status = 'ACTIVE'
    ORDER BY amount DESC, placed_at ASC
    LIMIT 1
    `
	err := s.db.Get(&rec, query, auctionID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.BidRecord{}, fmt.Errorf("postgres: highest bid for auction %s: %w", auctionID, auctionerrors.ErrNoBids)
	}
	if err != nil {
		return model.BidRecord{}, fmt.Errorf("postgres: highest bid for auction %s: %w", auctionID, err)
	}
	return rec, nil
}

// UpsertMandate inserts or replaces a mandate, keeping the original creation
// time on replace so tie-breaks still reward the first commitment.
func (s *Store) UpsertMandate(m model.AutoBidMandate) error {
	query := `
    INSERT INTO auto_bid_mandates
        (mandate_id, auction_id, bidder_id, ceiling_amount, step_percentage, active, created_at)
    VALUES ($1,$2,$3,$4,$5,$6,$7)
    ON CONFLICT (auction_id, bidder_id) DO UPDATE SET
        ceiling_amount = EXCLUDED.ceiling_amount,
        step_percentage = EXCLUDED.step_percentage,
        active = EXCLUDED.active
    `
	_, err := s.db.Exec(query,
		m.MandateID, m.AuctionID, m.BidderID, m.CeilingAmount,
		m.StepPercentage, m.Active, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("postgres: upsert mandate for auction %s: %w", m.AuctionID, err)
	}
	return nil
}

// MandateFor fetches one bidder's mandate.
func (s *Store) MandateFor(auctionID, bidderID string) (model.AutoBidMandate, error) {
	var m model.AutoBidMandate
	query := `SELECT * FROM auto_bid_mandates WHERE auction_id = $1 AND bidder_id = $2`
	err := s.db.Get(&m, query, auctionID, bidderID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.AutoBidMandate{}, fmt.Errorf("postgres: mandate for auction %s bidder %s: %w", auctionID, bidderID, auctionerrors.ErrMandateNotFound)
	}
	if err != nil {
		return model.AutoBidMandate{}, fmt.Errorf("postgres: mandate for auction %s bidder %s: %w", auctionID, bidderID, err)
	}
	return m, nil
}

// ActiveMandates returns active mandates sorted by ceiling desc, created asc.
func (s *Store) ActiveMandates(auctionID, excludeBidder string) ([]model.AutoBidMandate, error) {
	var out []model.AutoBidMandate
	query := `
    SELECT * FROM auto_bid_mandates
    WHERE auction_id = $1 AND active AND bidder_id <> $2
    ORDER BY ceiling_amount DESC, created_at ASC
    `
	if err := s.db.Select(&out, query, auctionID, excludeBidder); err != nil {
		return nil, fmt.Errorf("postgres: active mandates for auction %s: %w", auctionID, err)
	}
	return out, nil
}

// DeactivateMandate flips one mandate inactive.
func (s *Store) DeactivateMandate(auctionID, bidderID string) error {
	query := `UPDATE auto_bid_mandates SET active = FALSE WHERE auction_id = $1 AND bidder_id = $2`
	res, err := s.db.Exec(query, auctionID, bidderID)
	if err != nil {
		return fmt.Errorf("postgres: deactivate mandate for auction %s: %w", auctionID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("postgres: deactivate mandate for auction %s bidder %s: %w", auctionID, bidderID, auctionerrors.ErrMandateNotFound)
	}
	return nil
}

// DeactivateMandates flips every mandate for the auction inactive.
func (s *Store) DeactivateMandates(auctionID string) error {
	query := `UPDATE auto_bid_mandates SET active = FALSE WHERE auction_id = $1`
	if _, err := s.db.Exec(query, auctionID); err != nil {
		return fmt.Errorf("postgres: deactivate mandates for auction %s: %w", auctionID, err)
	}
	return nil
}
