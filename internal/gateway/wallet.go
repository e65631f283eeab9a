package gateway

import (
	"fmt"
	"sync"

	"auction-engine/internal/auctionerrors"
)

// MemoryWallet is a concurrency-safe in-memory WalletGuard. Bidders start
// with a default balance the first time they are seen; deposits can adjust it.
type MemoryWallet struct {
	mu             sync.Mutex
	defaultBalance int64
	available      map[string]int64
	locked         map[string]int64
}

// NewMemoryWallet creates a wallet guard seeding unseen bidders with
// defaultBalance available points.
func NewMemoryWallet(defaultBalance int64) *MemoryWallet {
	return &MemoryWallet{
		defaultBalance: defaultBalance,
		available:      make(map[string]int64),
		locked:         make(map[string]int64),
	}
}

func (w *MemoryWallet) balanceOf(bidderID string) int64 {
	if b, ok := w.available[bidderID]; ok {
		return b
	}
	w.available[bidderID] = w.defaultBalance
	return w.defaultBalance
}

// Lock reserves amount from the bidder's available balance.
func (w *MemoryWallet) Lock(bidderID string, amount int64) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	avail := w.balanceOf(bidderID)
	if avail < amount {
		return fmt.Errorf("wallet: bidder %s has %d, needs %d: %w", bidderID, avail, amount, auctionerrors.ErrInsufficientFunds)
	}
	w.available[bidderID] = avail - amount
	w.locked[bidderID] += amount
	return nil
}

// Release returns previously locked funds to the bidder's available balance.
func (w *MemoryWallet) Release(bidderID string, amount int64) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.locked[bidderID] < amount {
		// never unlock more than was locked
		amount = w.locked[bidderID]
	}
	w.locked[bidderID] -= amount
	w.available[bidderID] = w.balanceOf(bidderID) + amount
}

// Deposit adds to the bidder's available balance.
func (w *MemoryWallet) Deposit(bidderID string, amount int64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.available[bidderID] = w.balanceOf(bidderID) + amount
}

// Locked returns the bidder's currently locked amount.
func (w *MemoryWallet) Locked(bidderID string) int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.locked[bidderID]
}

// Available returns the bidder's available balance.
func (w *MemoryWallet) Available(bidderID string) int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.balanceOf(bidderID)
}
