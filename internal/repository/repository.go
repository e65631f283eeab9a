package repository

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"auction-engine/internal/auctionerrors"
	model "auction-engine/internal/models"
)

// AuctionStore defines the persistence interface for the auction engine.
// Mutating methods are individually atomic; callers needing a larger critical
// section (price advance, close) serialize per auction through the ledger.
//
//go:generate mockgen -source=repository.go -destination=mock_repository.go -package=repository
type AuctionStore interface {
	CreateAuction(a model.Auction) error
	GetAuction(auctionID string) (model.Auction, error)
	ListAuctions() ([]model.Auction, error)
	// ListDueAuctions returns ACTIVE auctions whose deadline is at or before now.
	ListDueAuctions(now time.Time) ([]model.Auction, error)
	UpdateAuction(a model.Auction) error

	AppendBid(rec model.BidRecord) error
	UpdateBidStatus(bidID string, status model.BidStatus) error
	BidsByAuction(auctionID string) ([]model.BidRecord, error)
	// HighestActiveBid returns the ACTIVE bid with the largest amount,
	// earliest placement winning ties. Returns ErrNoBids when none exists.
	HighestActiveBid(auctionID string) (model.BidRecord, error)

	// UpsertMandate creates or replaces the bidder's mandate for the auction.
	// A replace keeps the original creation time so tie-breaks still reward
	// the first commitment.
	UpsertMandate(m model.AutoBidMandate) error
	MandateFor(auctionID, bidderID string) (model.AutoBidMandate, error)
	// ActiveMandates returns active mandates for the auction excluding the
	// given bidder, sorted by ceiling descending, creation time ascending.
	ActiveMandates(auctionID, excludeBidder string) ([]model.AutoBidMandate, error)
	DeactivateMandate(auctionID, bidderID string) error
	DeactivateMandates(auctionID string) error
}

// MemoryStore is a concurrency-safe in-memory implementation of AuctionStore.
type MemoryStore struct {
	mu       sync.RWMutex
	auctions map[string]model.Auction
	bids     map[string][]*model.BidRecord               // key: auctionID, append-only
	bidIndex map[string]*model.BidRecord                 // key: bidID
	mandates map[string]map[string]model.AutoBidMandate  // auctionID -> bidderID -> mandate
}

// NewMemoryStore creates a new in-memory store instance.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		auctions: make(map[string]model.Auction),
		bids:     make(map[string][]*model.BidRecord),
		bidIndex: make(map[string]*model.BidRecord),
		mandates: make(map[string]map[string]model.AutoBidMandate),
	}
}

// CreateAuction stores a new auction.
func (s *MemoryStore) CreateAuction(a model.Auction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.auctions[a.AuctionID]; ok {
		return fmt.Errorf("create auction %s: %w", a.AuctionID, auctionerrors.ErrDuplicateID)
	}
	s.auctions[a.AuctionID] = a
	return nil
}

// GetAuction returns the auction with the given id.
func (s *MemoryStore) GetAuction(auctionID string) (model.Auction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.auctions[auctionID]
	if !ok {
		return model.Auction{}, fmt.Errorf("get auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}
	return a, nil
}

// ListAuctions returns all auctions.
func (s *MemoryStore) ListAuctions() ([]model.Auction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Auction, 0, len(s.auctions))
	for _, a := range s.auctions {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// ListDueAuctions returns ACTIVE auctions whose deadline has passed.
func (s *MemoryStore) ListDueAuctions(now time.Time) ([]model.Auction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var due []model.Auction
	for _, a := range s.auctions {
		if a.Status == model.AuctionActive && !a.EndAt.After(now) {
			due = append(due, a)
		}
	}
	return due, nil
}

// UpdateAuction replaces the stored auction row.
func (s *MemoryStore) UpdateAuction(a model.Auction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.auctions[a.AuctionID]; !ok {
		return fmt.Errorf("update auction %s: %w", a.AuctionID, auctionerrors.ErrAuctionNotFound)
	}
	s.auctions[a.AuctionID] = a
	return nil
}

// AppendBid records a bid event for an auction.
func (s *MemoryStore) AppendBid(rec model.BidRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.auctions[rec.AuctionID]; !ok {
		return fmt.Errorf("append bid for auction %s: %w", rec.AuctionID, auctionerrors.ErrAuctionNotFound)
	}
	stored := &rec
	s.bids[rec.AuctionID] = append(s.bids[rec.AuctionID], stored)
	s.bidIndex[rec.BidID] = stored
	return nil
}

// UpdateBidStatus transitions the status of an existing bid record.
func (s *MemoryStore) UpdateBidStatus(bidID string, status model.BidStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.bidIndex[bidID]
	if !ok {
		return fmt.Errorf("update bid %s: %w", bidID, auctionerrors.ErrNoBids)
	}
	rec.Status = status
	return nil
}

// BidsByAuction returns all bid records for an auction in placement order.
func (s *MemoryStore) BidsByAuction(auctionID string) ([]model.BidRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.auctions[auctionID]; !ok {
		return nil, fmt.Errorf("get bids for auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}
	out := make([]model.BidRecord, 0, len(s.bids[auctionID]))
	for _, b := range s.bids[auctionID] {
		out = append(out, *b)
	}
	return out, nil
}

// HighestActiveBid returns the highest ACTIVE bid, earliest placement on ties.
func (s *MemoryStore) HighestActiveBid(auctionID string) (model.BidRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var best *model.BidRecord
	for _, b := range s.bids[auctionID] {
		if b.Status != model.BidActive {
			continue
		}
		if best == nil || b.Amount > best.Amount ||
			(b.Amount == best.Amount && b.PlacedAt.Before(best.PlacedAt)) {
			best = b
		}
	}
	if best == nil {
		return model.BidRecord{}, fmt.Errorf("highest bid for auction %s: %w", auctionID, auctionerrors.ErrNoBids)
	}
	return *best, nil
}

// UpsertMandate creates or replaces a bidder's mandate for an auction.
func (s *MemoryStore) UpsertMandate(m model.AutoBidMandate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.auctions[m.AuctionID]; !ok {
		return fmt.Errorf("upsert mandate for auction %s: %w", m.AuctionID, auctionerrors.ErrAuctionNotFound)
	}
	byBidder, ok := s.mandates[m.AuctionID]
	if !ok {
		byBidder = make(map[string]model.AutoBidMandate)
		s.mandates[m.AuctionID] = byBidder
	}
	if prev, ok := byBidder[m.BidderID]; ok {
		// keep original commitment time on replace
		m.CreatedAt = prev.CreatedAt
		m.MandateID = prev.MandateID
	}
	byBidder[m.BidderID] = m
	return nil
}

// MandateFor returns the bidder's mandate for the auction.
func (s *MemoryStore) MandateFor(auctionID, bidderID string) (model.AutoBidMandate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if m, ok := s.mandates[auctionID][bidderID]; ok {
		return m, nil
	}
	return model.AutoBidMandate{}, fmt.Errorf("mandate for auction %s bidder %s: %w", auctionID, bidderID, auctionerrors.ErrMandateNotFound)
}

// ActiveMandates returns active mandates sorted by ceiling desc, created asc.
func (s *MemoryStore) ActiveMandates(auctionID, excludeBidder string) ([]model.AutoBidMandate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.AutoBidMandate
	for _, m := range s.mandates[auctionID] {
		if !m.Active || m.BidderID == excludeBidder {
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CeilingAmount != out[j].CeilingAmount {
			return out[i].CeilingAmount > out[j].CeilingAmount
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// DeactivateMandate flips a single bidder's mandate to inactive.
func (s *MemoryStore) DeactivateMandate(auctionID, bidderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.mandates[auctionID][bidderID]
	if !ok {
		return fmt.Errorf("deactivate mandate for auction %s bidder %s: %w", auctionID, bidderID, auctionerrors.ErrMandateNotFound)
	}
	m.Active = false
	s.mandates[auctionID][bidderID] = m
	return nil
}

// DeactivateMandates flips every mandate for the auction to inactive.
func (s *MemoryStore) DeactivateMandates(auctionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for bidderID, m := range s.mandates[auctionID] {
		m.Active = false
		s.mandates[auctionID][bidderID] = m
	}
	return nil
}
