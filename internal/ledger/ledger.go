package ledger

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"auction-engine/internal/auctionerrors"
	model "auction-engine/internal/models"
	"auction-engine/internal/repository"
	"auction-engine/utils"
)

// Advance describes one committed price advance, with enough prior state to
// compensate if the caller's follow-up (fund locking) fails.
type Advance struct {
	Record       model.BidRecord
	PrevPrice    int64
	PrevBidCount int
	NewPrice     int64
	NewBidCount  int
	// Outbid is the previously highest ACTIVE record, now marked OUTBID.
	// Nil for the first bid of an auction.
	Outbid *model.BidRecord
}

// CloseOutcome is the result of a close attempt.
type CloseOutcome struct {
	AlreadyClosed bool
	Auction       model.Auction
	// WinningBid is the highest ACTIVE bid at close time, set both when the
	// auction sold and when the reserve was unmet (so callers can release the
	// losing bidder's funds). Nil when the auction had no bids.
	WinningBid *model.BidRecord
}

// Ledger is the single mutation point for an auction's price, bid count and
// lifecycle state. Every mutating method runs under that auction's lock, so
// mutations for one auction are linearized while different auctions proceed
// fully in parallel.
type Ledger struct {
	store repository.AuctionStore

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates a ledger over the given store.
func New(store repository.AuctionStore) *Ledger {
	return &Ledger{
		store: store,
		locks: make(map[string]*sync.Mutex),
	}
}

// lockFor returns the mutex serializing mutations for one auction.
func (l *Ledger) lockFor(auctionID string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	m, ok := l.locks[auctionID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[auctionID] = m
	}
	return m
}

// TryAdvance validates and commits a single bid: the price bump, the bid
// record append and the OUTBID flip of the superseded record all happen inside
// the auction's critical section. Manual amounts must sit on the increment
// grid; cascade executions carry exact stepped amounts and are exempt from the
// grid check but never from the strict-increase rule.
func (l *Ledger) TryAdvance(auctionID, bidderID string, amount int64, origin model.BidOrigin) (Advance, error) {
	lock := l.lockFor(auctionID)
	lock.Lock()
	defer lock.Unlock()

	a, err := l.store.GetAuction(auctionID)
	if err != nil {
		return Advance{}, fmt.Errorf("ledger: %w", err)
	}
	now := time.Now().UTC()

	if a.Status != model.AuctionActive {
		return Advance{}, fmt.Errorf("ledger: auction %s is %s: %w", auctionID, a.Status, auctionerrors.ErrAuctionNotActive)
	}
	if !now.Before(a.EndAt) {
		return Advance{}, fmt.Errorf("ledger: auction %s ended at %s: %w", auctionID, a.EndAt.Format(time.RFC3339), auctionerrors.ErrAuctionExpired)
	}
	if bidderID == a.SellerID {
		return Advance{}, fmt.Errorf("ledger: bidder %s owns auction %s: %w", bidderID, auctionID, auctionerrors.ErrSelfBid)
	}
	if amount <= 0 || (origin == model.OriginManual && amount%model.IncrementUnit != 0) {
		return Advance{}, fmt.Errorf("ledger: amount %d: %w", amount, auctionerrors.ErrInvalidAmount)
	}
	if amount <= a.CurrentPrice {
		return Advance{}, fmt.Errorf("ledger: amount %d <= current price %d: %w", amount, a.CurrentPrice, auctionerrors.ErrAmountTooLow)
	}

	adv := Advance{
		PrevPrice:    a.CurrentPrice,
		PrevBidCount: a.BidCount,
	}

	prev, err := l.store.HighestActiveBid(auctionID)
	switch {
	case err == nil:
		if err := l.store.UpdateBidStatus(prev.BidID, model.BidOutbid); err != nil {
			return Advance{}, fmt.Errorf("ledger: mark outbid: %w", err)
		}
		prev.Status = model.BidOutbid
		adv.Outbid = &prev
	case !errors.Is(err, auctionerrors.ErrNoBids):
		// only a confirmed empty book may proceed without an OUTBID flip
		return Advance{}, fmt.Errorf("ledger: highest bid: %w", err)
	}

	rec := model.BidRecord{
		BidID:     utils.GenerateID(),
		AuctionID: auctionID,
		BidderID:  bidderID,
		Amount:    amount,
		Origin:    origin,
		Status:    model.BidActive,
		PlacedAt:  now,
	}
	if err := l.store.AppendBid(rec); err != nil {
		return Advance{}, fmt.Errorf("ledger: append bid: %w", err)
	}

	a.CurrentPrice = amount
	a.BidCount++
	if err := l.store.UpdateAuction(a); err != nil {
		return Advance{}, fmt.Errorf("ledger: advance auction: %w", err)
	}

	adv.Record = rec
	adv.NewPrice = a.CurrentPrice
	adv.NewBidCount = a.BidCount
	return adv, nil
}

// Rollback compensates a committed advance whose fund lock failed. If nothing
// interleaved since the advance, the prior price, bid count and OUTBID flip
// are restored; if a later bid already committed, only the failed record is
// cancelled so the monotonic price is preserved.
func (l *Ledger) Rollback(adv Advance) error {
	lock := l.lockFor(adv.Record.AuctionID)
	lock.Lock()
	defer lock.Unlock()

	if err := l.store.UpdateBidStatus(adv.Record.BidID, model.BidCancelled); err != nil {
		return fmt.Errorf("ledger: rollback cancel bid: %w", err)
	}

	a, err := l.store.GetAuction(adv.Record.AuctionID)
	if err != nil {
		return fmt.Errorf("ledger: rollback: %w", err)
	}
	if a.Status != model.AuctionActive || a.CurrentPrice != adv.NewPrice || a.BidCount != adv.NewBidCount {
		// a later commit interleaved; the cancelled record is no longer on top
		return nil
	}

	if adv.Outbid != nil {
		if err := l.store.UpdateBidStatus(adv.Outbid.BidID, model.BidActive); err != nil {
			return fmt.Errorf("ledger: rollback reinstate bid: %w", err)
		}
	}
	a.CurrentPrice = adv.PrevPrice
	a.BidCount = adv.PrevBidCount
	if err := l.store.UpdateAuction(a); err != nil {
		return fmt.Errorf("ledger: rollback auction: %w", err)
	}
	return nil
}

// Close transitions a due auction to its terminal state exactly once. A second
// caller observes the terminal status and gets AlreadyClosed with no work done.
func (l *Ledger) Close(auctionID string) (CloseOutcome, error) {
	lock := l.lockFor(auctionID)
	lock.Lock()
	defer lock.Unlock()

	a, err := l.store.GetAuction(auctionID)
	if err != nil {
		return CloseOutcome{}, fmt.Errorf("ledger: %w", err)
	}
	if a.Status != model.AuctionActive {
		return CloseOutcome{AlreadyClosed: true, Auction: a}, nil
	}
	if time.Now().UTC().Before(a.EndAt) {
		return CloseOutcome{}, fmt.Errorf("ledger: auction %s ends at %s: %w", auctionID, a.EndAt.Format(time.RFC3339), auctionerrors.ErrAuctionNotExpired)
	}

	out := CloseOutcome{}
	high, err := l.store.HighestActiveBid(auctionID)
	switch {
	case errors.Is(err, auctionerrors.ErrNoBids):
		// no bids is the degenerate reserve-unmet case
		a.Status = model.AuctionReserveNotMet
	case err != nil:
		// the auction stays ACTIVE so a later sweep can settle it correctly
		return CloseOutcome{}, fmt.Errorf("ledger: close highest bid: %w", err)
	case a.ReservePrice == 0 || high.Amount >= a.ReservePrice:
		a.Status = model.AuctionSold
		a.WinnerID = high.BidderID
		out.WinningBid = &high
	default:
		// reserve unmet
		a.Status = model.AuctionReserveNotMet
		out.WinningBid = &high
	}

	if err := l.store.UpdateAuction(a); err != nil {
		return CloseOutcome{}, fmt.Errorf("ledger: close auction: %w", err)
	}
	if err := l.store.DeactivateMandates(auctionID); err != nil {
		return CloseOutcome{}, fmt.Errorf("ledger: close deactivate mandates: %w", err)
	}
	out.Auction = a
	return out, nil
}

// Cancel terminates an ACTIVE auction before its deadline on behalf of the
// seller. The highest ACTIVE bid, if any, is cancelled and returned so the
// caller can release the bidder's locked funds.
func (l *Ledger) Cancel(auctionID, sellerID string) (CloseOutcome, error) {
	lock := l.lockFor(auctionID)
	lock.Lock()
	defer lock.Unlock()

	a, err := l.store.GetAuction(auctionID)
	if err != nil {
		return CloseOutcome{}, fmt.Errorf("ledger: %w", err)
	}
	if a.Status != model.AuctionActive {
		return CloseOutcome{}, fmt.Errorf("ledger: auction %s is %s: %w", auctionID, a.Status, auctionerrors.ErrAuctionNotActive)
	}
	if a.SellerID != sellerID {
		return CloseOutcome{}, fmt.Errorf("ledger: user %s is not the seller of %s: %w", sellerID, auctionID, auctionerrors.ErrNotSeller)
	}

	out := CloseOutcome{}
	high, err := l.store.HighestActiveBid(auctionID)
	switch {
	case err == nil:
		if err := l.store.UpdateBidStatus(high.BidID, model.BidCancelled); err != nil {
			return CloseOutcome{}, fmt.Errorf("ledger: cancel bid: %w", err)
		}
		high.Status = model.BidCancelled
		out.WinningBid = &high
	case !errors.Is(err, auctionerrors.ErrNoBids):
		return CloseOutcome{}, fmt.Errorf("ledger: cancel highest bid: %w", err)
	}

	a.Status = model.AuctionCancelled
	if err := l.store.UpdateAuction(a); err != nil {
		return CloseOutcome{}, fmt.Errorf("ledger: cancel auction: %w", err)
	}
	if err := l.store.DeactivateMandates(auctionID); err != nil {
		return CloseOutcome{}, fmt.Errorf("ledger: cancel deactivate mandates: %w", err)
	}
	out.Auction = a
	return out, nil
}
