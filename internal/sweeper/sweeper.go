package sweeper

import (
	"fmt"
	"time"

	"auction-engine/internal/gateway"
	"auction-engine/internal/ledger"
	model "auction-engine/internal/models"
	"auction-engine/internal/repository"
	"auction-engine/utils"

	"github.com/robfig/cron/v3"
)

// Sweeper periodically closes auctions whose deadline has passed. Closing is
// idempotent: the ledger's conditional transition guarantees exactly one
// terminal transition per auction even with several sweeper instances running.
type Sweeper struct {
	store     repository.AuctionStore
	ledger    *ledger.Ledger
	wallet    gateway.WalletGuard
	broadcast gateway.BroadcastGateway
	notify    gateway.NotificationGateway
	cron      *cron.Cron
}

// New creates a sweeper.
func New(store repository.AuctionStore, lgr *ledger.Ledger, wallet gateway.WalletGuard, broadcast gateway.BroadcastGateway, notify gateway.NotificationGateway) *Sweeper {
	return &Sweeper{
		store:     store,
		ledger:    lgr,
		wallet:    wallet,
		broadcast: broadcast,
		notify:    notify,
		cron:      cron.New(cron.WithSeconds()),
	}
}

// Start schedules recurring sweeps at the given interval.
func (s *Sweeper) Start(interval time.Duration) error {
	spec := fmt.Sprintf("@every %s", interval)
	if _, err := s.cron.AddFunc(spec, s.SweepOnce); err != nil {
		return fmt.Errorf("sweeper: schedule %q: %w", spec, err)
	}
	s.cron.Start()
	utils.Info("sweeper started", map[string]any{"interval": interval.String()})
	return nil
}

// Stop halts scheduling and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	utils.Info("sweeper stopped", nil)
}

// SweepOnce scans for due auctions and closes each exactly once.
func (s *Sweeper) SweepOnce() {
	due, err := s.store.ListDueAuctions(time.Now().UTC())
	if err != nil {
		utils.Error("sweeper: list due auctions", map[string]any{"error": err.Error()})
		return
	}

	for _, a := range due {
		out, err := s.ledger.Close(a.AuctionID)
		if err != nil {
			utils.Error("sweeper: close failed", map[string]any{
				"auction_id": a.AuctionID,
				"error":      err.Error(),
			})
			continue
		}
		if out.AlreadyClosed {
			// another worker won the race; nothing to do
			continue
		}
		s.settle(out)
	}
}

// settle emits the notifications and final broadcast for a freshly closed
// auction, and releases the top bidder's funds when the sale fell through.
func (s *Sweeper) settle(out ledger.CloseOutcome) {
	a := out.Auction

	switch a.Status {
	case model.AuctionSold:
		s.notify.Notify(a.WinnerID, gateway.NotifyAuctionWon, map[string]any{
			"auction_id":  a.AuctionID,
			"final_price": a.CurrentPrice,
		})
		s.notify.Notify(a.SellerID, gateway.NotifyAuctionSold, map[string]any{
			"auction_id":  a.AuctionID,
			"final_price": a.CurrentPrice,
			"winner_id":   a.WinnerID,
		})
		s.broadcast.Publish(a.AuctionID, model.AuctionEvent{
			Type:      model.EventAuctionSold,
			AuctionID: a.AuctionID,
			BidderID:  a.WinnerID,
			Amount:    a.CurrentPrice,
			BidCount:  a.BidCount,
			At:        time.Now().UTC(),
		})
	case model.AuctionReserveNotMet:
		if out.WinningBid != nil {
			// reserve unmet: the top bid does not win, free its funds
			s.wallet.Release(out.WinningBid.BidderID, out.WinningBid.Amount)
			s.notify.Notify(out.WinningBid.BidderID, gateway.NotifyAuctionNotSold, map[string]any{
				"auction_id": a.AuctionID,
				"bid_amount": out.WinningBid.Amount,
			})
		}
		s.notify.Notify(a.SellerID, gateway.NotifyAuctionNotSold, map[string]any{
			"auction_id": a.AuctionID,
			"bid_count":  a.BidCount,
		})
		s.broadcast.Publish(a.AuctionID, model.AuctionEvent{
			Type:      model.EventAuctionNotSold,
			AuctionID: a.AuctionID,
			Amount:    a.CurrentPrice,
			BidCount:  a.BidCount,
			At:        time.Now().UTC(),
		})
	}

	utils.Info("sweeper: auction closed", map[string]any{
		"auction_id": a.AuctionID,
		"status":     string(a.Status),
		"bid_count":  a.BidCount,
	})
}
