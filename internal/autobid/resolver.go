package autobid

import (
	"errors"
	"fmt"
	"time"

	"auction-engine/internal/auctionerrors"
	"auction-engine/internal/gateway"
	"auction-engine/internal/ledger"
	model "auction-engine/internal/models"
	"auction-engine/internal/repository"
	"auction-engine/utils"
)

// Resolver runs the cascading auto-bid auction after a committed manual bid.
// It re-derives the current highest bid from the store rather than trusting
// any event payload, so a trigger lost between commit and dispatch only delays
// resolution until the next trigger for that auction.
type Resolver struct {
	store     repository.AuctionStore
	ledger    *ledger.Ledger
	wallet    gateway.WalletGuard
	broadcast gateway.BroadcastGateway
	notify    gateway.NotificationGateway
}

// NewResolver creates a cascade resolver.
func NewResolver(store repository.AuctionStore, lgr *ledger.Ledger, wallet gateway.WalletGuard, broadcast gateway.BroadcastGateway, notify gateway.NotificationGateway) *Resolver {
	return &Resolver{
		store:     store,
		ledger:    lgr,
		wallet:    wallet,
		broadcast: broadcast,
		notify:    notify,
	}
}

// stepUp computes the percentage step over the amount being overtaken,
// rounded up to a whole currency unit. Cascade amounts carry the exact
// stepped value; the increment grid applies to manual submissions only.
func stepUp(amount int64, stepPercentage int) int64 {
	raw := amount * int64(100+stepPercentage)
	next := raw / 100
	if raw%100 != 0 {
		next++
	}
	return next
}

// Resolve runs one cascade pass for the auction. Mandates are loaded once,
// excluding the bidder whose bid triggered the pass; contenders respond in
// ceiling order (earliest mandate wins ties) until nobody left can outbid the
// standing top. Every step commits through the ledger, so machine bids obey
// the same monotonic-price rule as manual ones.
func (r *Resolver) Resolve(auctionID string) error {
	cur, err := r.store.HighestActiveBid(auctionID)
	if errors.Is(err, auctionerrors.ErrNoBids) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("resolver: %w", err)
	}

	mandates, err := r.store.ActiveMandates(auctionID, cur.BidderID)
	if err != nil {
		return fmt.Errorf("resolver: %w", err)
	}
	if len(mandates) == 0 {
		return nil
	}

	excluded := make(map[string]bool)
	steps := 0

	for {
		contender := pickContender(mandates, excluded, cur)
		if contender == nil {
			break
		}

		next := stepUp(cur.Amount, contender.StepPercentage)
		if next > contender.CeilingAmount {
			next = contender.CeilingAmount
		}

		adv, err := r.ledger.TryAdvance(auctionID, contender.BidderID, next, model.OriginAuto)
		switch {
		case errors.Is(err, auctionerrors.ErrAmountTooLow):
			// a manual bid interleaved; re-validate against the fresh price
			cur, err = r.store.HighestActiveBid(auctionID)
			if err != nil {
				return fmt.Errorf("resolver: refresh after conflict: %w", err)
			}
			continue
		case errors.Is(err, auctionerrors.ErrAuctionNotActive), errors.Is(err, auctionerrors.ErrAuctionExpired):
			utils.Info("resolver: auction closed mid-cascade", map[string]any{"auction_id": auctionID})
			return nil
		case err != nil:
			return fmt.Errorf("resolver: advance: %w", err)
		}

		if err := r.wallet.Lock(contender.BidderID, next); err != nil {
			// local failure: drop this mandate, keep resolving with the rest
			if rbErr := r.ledger.Rollback(adv); rbErr != nil {
				return fmt.Errorf("resolver: rollback after fund failure: %w", rbErr)
			}
			if dErr := r.store.DeactivateMandate(auctionID, contender.BidderID); dErr != nil {
				utils.Warn("resolver: deactivate mandate failed", map[string]any{
					"auction_id": auctionID,
					"bidder_id":  contender.BidderID,
					"error":      dErr.Error(),
				})
			}
			r.notify.Notify(contender.BidderID, gateway.NotifyAutoBidDisabled, map[string]any{
				"auction_id": auctionID,
				"amount":     next,
			})
			excluded[contender.BidderID] = true
			continue
		}

		if adv.Outbid != nil {
			r.wallet.Release(adv.Outbid.BidderID, adv.Outbid.Amount)
			r.notify.Notify(adv.Outbid.BidderID, gateway.NotifyOutbid, map[string]any{
				"auction_id": auctionID,
				"new_amount": next,
			})
		}

		r.broadcast.Publish(auctionID, model.AuctionEvent{
			Type:      model.EventAutoBidCompeting,
			AuctionID: auctionID,
			BidderID:  contender.BidderID,
			Amount:    adv.NewPrice,
			BidCount:  adv.NewBidCount,
			At:        time.Now().UTC(),
		})

		cur = adv.Record
		steps++
	}

	if steps > 0 {
		r.broadcast.Publish(auctionID, model.AuctionEvent{
			Type:      model.EventAutoBidResult,
			AuctionID: auctionID,
			BidderID:  cur.BidderID,
			Amount:    cur.Amount,
			At:        time.Now().UTC(),
		})
		utils.Info("resolver: cascade settled", map[string]any{
			"auction_id": auctionID,
			"steps":      steps,
			"top_bidder": cur.BidderID,
			"amount":     cur.Amount,
		})
	}
	return nil
}

// pickContender returns the highest-ceiling mandate still able to outbid the
// standing top bid. Mandates whose ceiling cannot respond are excluded for the
// remainder of the pass, which bounds the cascade.
func pickContender(mandates []model.AutoBidMandate, excluded map[string]bool, cur model.BidRecord) *model.AutoBidMandate {
	for i := range mandates {
		m := mandates[i]
		if excluded[m.BidderID] || m.BidderID == cur.BidderID {
			continue
		}
		if m.CeilingAmount <= cur.Amount {
			excluded[m.BidderID] = true
			continue
		}
		return &m
	}
	return nil
}
