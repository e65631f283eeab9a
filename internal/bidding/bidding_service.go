package bidding

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

// CascadeTrigger requests an auto-bid resolution pass for an auction.
type CascadeTrigger interface {
	Trigger(auctionID string)
}

// BidOutcome reports a committed bid placement.
type BidOutcome struct {
	Bid      model.BidRecord `json:"bid"`
	NewPrice int64           `json:"new_price"`
	BidCount int             `json:"bid_count"`
}

// MandateOutcome reports a created or replaced auto-bid mandate.
type MandateOutcome struct {
	Mandate model.AutoBidMandate `json:"mandate"`
}

// Service implements bid placement, auto-bid mandate management and auction
// administration on top of the ledger.
type Service struct {
	store     repository.AuctionStore
	ledger    *ledger.Ledger
	wallet    gateway.WalletGuard
	broadcast gateway.BroadcastGateway
	notify    gateway.NotificationGateway
	cascade   CascadeTrigger
}

// NewService creates a new bidding Service instance.
func NewService(store repository.AuctionStore, lgr *ledger.Ledger, wallet gateway.WalletGuard, broadcast gateway.BroadcastGateway, notify gateway.NotificationGateway, cascade CascadeTrigger) *Service {
	return &Service{
		store:     store,
		ledger:    lgr,
		wallet:    wallet,
		broadcast: broadcast,
		notify:    notify,
		cascade:   cascade,
	}
}

// CreateAuctionParams are the seller-supplied listing fields.
type CreateAuctionParams struct {
	Title        string
	Description  string
	SellerID     string
	StartPrice   int64
	HopePrice    int64
	ReservePrice int64
	EndAt        time.Time
}

// CreateAuction lists a new auction in the ACTIVE state with the current
// price at the start price.
func (s *Service) CreateAuction(p CreateAuctionParams) (model.Auction, error) {
	if p.SellerID == "" || p.Title == "" {
		return model.Auction{}, fmt.Errorf("service: %w - missing seller or title", auctionerrors.ErrInvalidInput)
	}
	if p.StartPrice <= 0 || p.StartPrice%model.IncrementUnit != 0 {
		return model.Auction{}, fmt.Errorf("service: start price %d: %w", p.StartPrice, auctionerrors.ErrInvalidAmount)
	}
	if p.ReservePrice != 0 && p.ReservePrice < p.StartPrice {
		return model.Auction{}, fmt.Errorf("service: reserve %d below start price %d: %w", p.ReservePrice, p.StartPrice, auctionerrors.ErrInvalidAmount)
	}
	now := time.Now().UTC()
	if !p.EndAt.After(now) {
		return model.Auction{}, fmt.Errorf("service: %w - end time must be in the future", auctionerrors.ErrInvalidInput)
	}

	a := model.Auction{
		AuctionID:    utils.GenerateID(),
		Title:        p.Title,
		Description:  p.Description,
		SellerID:     p.SellerID,
		StartPrice:   p.StartPrice,
		CurrentPrice: p.StartPrice,
		HopePrice:    p.HopePrice,
		ReservePrice: p.ReservePrice,
		Status:       model.AuctionActive,
		EndAt:        p.EndAt.UTC(),
		CreatedAt:    now,
	}
	if err := s.store.CreateAuction(a); err != nil {
		return model.Auction{}, fmt.Errorf("service: failed to create auction: %w", err)
	}
	return a, nil
}

// PlaceBid validates and commits a manual bid, locks the bidder's funds,
// releases the superseded bidder's funds and hands the auction to the
// cascade resolver. A fund-lock failure rolls the ledger advance back.
func (s *Service) PlaceBid(auctionID, bidderID string, amount int64) (BidOutcome, error) {
	if auctionID == "" || bidderID == "" {
		return BidOutcome{}, fmt.Errorf("service: %w - missing auctionID or bidderID", auctionerrors.ErrInvalidInput)
	}

	adv, err := s.ledger.TryAdvance(auctionID, bidderID, amount, model.OriginManual)
	if err != nil {
		return BidOutcome{}, fmt.Errorf("service: failed to place bid for auction %s by bidder %s: %w", auctionID, bidderID, err)
	}

	if err := s.wallet.Lock(bidderID, amount); err != nil {
		if rbErr := s.ledger.Rollback(adv); rbErr != nil {
			utils.Error("PlaceBid: rollback failed", map[string]any{
				"auction_id": auctionID,
				"bid_id":     adv.Record.BidID,
				"error":      rbErr.Error(),
			})
		}
		return BidOutcome{}, fmt.Errorf("service: fund lock failed for bidder %s: %w", bidderID, err)
	}

	if adv.Outbid != nil {
		s.wallet.Release(adv.Outbid.BidderID, adv.Outbid.Amount)
		if adv.Outbid.BidderID != bidderID {
			s.notify.Notify(adv.Outbid.BidderID, gateway.NotifyOutbid, map[string]any{
				"auction_id": auctionID,
				"new_amount": amount,
			})
		}
	}

	s.broadcast.Publish(auctionID, model.AuctionEvent{
		Type:      model.EventNewBid,
		AuctionID: auctionID,
		BidderID:  bidderID,
		Amount:    adv.NewPrice,
		BidCount:  adv.NewBidCount,
		At:        time.Now().UTC(),
	})

	// hand off after the commit; the resolver re-derives state from the store
	s.cascade.Trigger(auctionID)

	return BidOutcome{Bid: adv.Record, NewPrice: adv.NewPrice, BidCount: adv.NewBidCount}, nil
}

// SetupAutoBid creates or replaces the bidder's standing mandate. When the
// ceiling already beats the current highest bid a first execution may fire
// immediately through the regular cascade path.
func (s *Service) SetupAutoBid(auctionID, bidderID string, ceiling int64, stepPercentage int) (MandateOutcome, error) {
	if auctionID == "" || bidderID == "" {
		return MandateOutcome{}, fmt.Errorf("service: %w - missing auctionID or bidderID", auctionerrors.ErrInvalidInput)
	}
	if stepPercentage < 5 || stepPercentage > 10 {
		return MandateOutcome{}, fmt.Errorf("service: step %d%%: %w", stepPercentage, auctionerrors.ErrStepOutOfRange)
	}
	if ceiling <= 0 || ceiling%model.IncrementUnit != 0 {
		return MandateOutcome{}, fmt.Errorf("service: ceiling %d: %w", ceiling, auctionerrors.ErrInvalidAmount)
	}

	a, err := s.store.GetAuction(auctionID)
	if err != nil {
		return MandateOutcome{}, fmt.Errorf("service: %w", err)
	}
	if a.Status != model.AuctionActive {
		return MandateOutcome{}, fmt.Errorf("service: auction %s is %s: %w", auctionID, a.Status, auctionerrors.ErrAuctionNotActive)
	}
	if bidderID == a.SellerID {
		return MandateOutcome{}, fmt.Errorf("service: %w", auctionerrors.ErrSelfBid)
	}
	if ceiling <= a.CurrentPrice {
		return MandateOutcome{}, fmt.Errorf("service: ceiling %d <= current price %d: %w", ceiling, a.CurrentPrice, auctionerrors.ErrCeilingTooLow)
	}

	m := model.AutoBidMandate{
		MandateID:      utils.GenerateID(),
		AuctionID:      auctionID,
		BidderID:       bidderID,
		CeilingAmount:  ceiling,
		StepPercentage: stepPercentage,
		Active:         true,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.store.UpsertMandate(m); err != nil {
		return MandateOutcome{}, fmt.Errorf("service: failed to store mandate: %w", err)
	}
	stored, err := s.store.MandateFor(auctionID, bidderID)
	if err != nil {
		return MandateOutcome{}, fmt.Errorf("service: failed to read back mandate: %w", err)
	}

	s.cascade.Trigger(auctionID)

	return MandateOutcome{Mandate: stored}, nil
}

// CancelAutoBid deactivates the bidder's mandate for the auction.
func (s *Service) CancelAutoBid(auctionID, bidderID string) error {
	if auctionID == "" || bidderID == "" {
		return fmt.Errorf("service: %w - missing auctionID or bidderID", auctionerrors.ErrInvalidInput)
	}
	if err := s.store.DeactivateMandate(auctionID, bidderID); err != nil {
		return fmt.Errorf("service: failed to cancel mandate: %w", err)
	}
	return nil
}

// CancelAuction terminates an ACTIVE auction pre-close on the seller's behalf,
// releasing the highest bidder's locked funds.
func (s *Service) CancelAuction(auctionID, sellerID string) (model.Auction, error) {
	if auctionID == "" || sellerID == "" {
		return model.Auction{}, fmt.Errorf("service: %w - missing auctionID or sellerID", auctionerrors.ErrInvalidInput)
	}

	out, err := s.ledger.Cancel(auctionID, sellerID)
	if err != nil {
		return model.Auction{}, fmt.Errorf("service: failed to cancel auction %s: %w", auctionID, err)
	}

	if out.WinningBid != nil {
		s.wallet.Release(out.WinningBid.BidderID, out.WinningBid.Amount)
		s.notify.Notify(out.WinningBid.BidderID, gateway.NotifyAuctionCancel, map[string]any{
			"auction_id": auctionID,
		})
	}
	s.broadcast.Publish(auctionID, model.AuctionEvent{
		Type:      model.EventAuctionCancelled,
		AuctionID: auctionID,
		At:        time.Now().UTC(),
	})
	return out.Auction, nil
}

// GetAuction returns one auction.
func (s *Service) GetAuction(auctionID string) (model.Auction, error) {
	if auctionID == "" {
		return model.Auction{}, fmt.Errorf("service: %w - empty auction ID", auctionerrors.ErrInvalidInput)
	}
	a, err := s.store.GetAuction(auctionID)
	if err != nil {
		return model.Auction{}, fmt.Errorf("service: failed to get auction %s: %w", auctionID, err)
	}
	return a, nil
}

// ListAuctions returns all auctions.
func (s *Service) ListAuctions() ([]model.Auction, error) {
	auctions, err := s.store.ListAuctions()
	if err != nil {
		return nil, fmt.Errorf("service: failed to list auctions: %w", err)
	}
	return auctions, nil
}

// GetBidsForAuction returns the full bid history of an auction.
func (s *Service) GetBidsForAuction(auctionID string) ([]model.BidRecord, error) {
	if auctionID == "" {
		return nil, fmt.Errorf("service: %w - empty auction ID", auctionerrors.ErrInvalidInput)
	}
	bids, err := s.store.BidsByAuction(auctionID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get bids for auction %s: %w", auctionID, err)
	}
	return bids, nil
}

// GetHighestBid returns the current highest ACTIVE bid for an auction.
func (s *Service) GetHighestBid(auctionID string) (model.BidRecord, error) {
	if auctionID == "" {
		return model.BidRecord{}, fmt.Errorf("service: %w - empty auction ID", auctionerrors.ErrInvalidInput)
	}
	bid, err := s.store.HighestActiveBid(auctionID)
	if err != nil {
		return model.BidRecord{}, fmt.Errorf("service: failed to get highest bid for auction %s: %w", auctionID, err)
	}
	return bid, nil
}

// ErrIsValidation reports whether the error belongs to the synchronous
// validation taxonomy (no state change happened).
func ErrIsValidation(err error) bool {
	for _, target := range []error{
		auctionerrors.ErrInvalidInput,
		auctionerrors.ErrAuctionNotActive,
		auctionerrors.ErrAuctionExpired,
		auctionerrors.ErrSelfBid,
		auctionerrors.ErrInvalidAmount,
		auctionerrors.ErrAmountTooLow,
		auctionerrors.ErrCeilingTooLow,
		auctionerrors.ErrStepOutOfRange,
		auctionerrors.ErrNotSeller,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
