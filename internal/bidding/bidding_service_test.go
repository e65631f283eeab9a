package bidding

import (
	"sync"
	"testing"
	"time"

	"auction-engine/internal/auctionerrors"
	"auction-engine/internal/gateway"
	"auction-engine/internal/ledger"
	model "auction-engine/internal/models"
	"auction-engine/internal/repository"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
)

// triggerRecorder captures cascade hand-offs.
type triggerRecorder struct {
	mu  sync.Mutex
	ids []string
}

func (r *triggerRecorder) Trigger(auctionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids = append(r.ids, auctionID)
}

func (r *triggerRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.ids)
}

type serviceFixture struct {
	store     *repository.MemoryStore
	wallet    *gateway.MockWalletGuard
	broadcast *gateway.MockBroadcastGateway
	notify    *gateway.MockNotificationGateway
	trigger   *triggerRecorder
	svc       *Service
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	f := &serviceFixture{
		store:     repository.NewMemoryStore(),
		wallet:    gateway.NewMockWalletGuard(ctrl),
		broadcast: gateway.NewMockBroadcastGateway(ctrl),
		notify:    gateway.NewMockNotificationGateway(ctrl),
		trigger:   &triggerRecorder{},
	}
	f.svc = NewService(f.store, ledger.New(f.store), f.wallet, f.broadcast, f.notify, f.trigger)
	return f
}

func (f *serviceFixture) seedAuction(t *testing.T, auctionID string) {
	t.Helper()

	require.NoError(t, f.store.CreateAuction(model.Auction{
		AuctionID:    auctionID,
		Title:        "mid-century desk",
		SellerID:     "seller1",
		StartPrice:   10000,
		CurrentPrice: 10000,
		Status:       model.AuctionActive,
		EndAt:        time.Now().UTC().Add(time.Hour),
		CreatedAt:    time.Now().UTC(),
	}))
}

func TestService_CreateAuction(t *testing.T) {
	t.Parallel()

	valid := CreateAuctionParams{
		Title:      "art deco lamp",
		SellerID:   "seller1",
		StartPrice: 10000,
		EndAt:      time.Now().UTC().Add(time.Hour),
	}

	tests := []struct {
		name    string
		mutate  func(*CreateAuctionParams)
		wantErr error
	}{
		{name: "valid_listing"},
		{
			name:    "missing_seller",
			mutate:  func(p *CreateAuctionParams) { p.SellerID = "" },
			wantErr: auctionerrors.ErrInvalidInput,
		},
		{
			name:    "missing_title",
			mutate:  func(p *CreateAuctionParams) { p.Title = "" },
			wantErr: auctionerrors.ErrInvalidInput,
		},
		{
			name:    "start_price_off_grid",
			mutate:  func(p *CreateAuctionParams) { p.StartPrice = 10050 },
			wantErr: auctionerrors.ErrInvalidAmount,
		},
		{
			name:    "zero_start_price",
			mutate:  func(p *CreateAuctionParams) { p.StartPrice = 0 },
			wantErr: auctionerrors.ErrInvalidAmount,
		},
		{
			name:    "reserve_below_start",
			mutate:  func(p *CreateAuctionParams) { p.ReservePrice = 9000 },
			wantErr: auctionerrors.ErrInvalidAmount,
		},
		{
			name:    "deadline_in_the_past",
			mutate:  func(p *CreateAuctionParams) { p.EndAt = time.Now().UTC().Add(-time.Minute) },
			wantErr: auctionerrors.ErrInvalidInput,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			f := newServiceFixture(t)
			p := valid
			if tc.mutate != nil {
				tc.mutate(&p)
			}

			a, err := f.svc.CreateAuction(p)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			require.NotEmpty(t, a.AuctionID)
			require.Equal(t, model.AuctionActive, a.Status)
			require.Equal(t, p.StartPrice, a.CurrentPrice)
			require.Zero(t, a.BidCount)
		})
	}
}

func TestService_PlaceBid_FirstBid(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)
	f.seedAuction(t, "a1")

	f.wallet.EXPECT().Lock("u1", int64(10100)).Return(nil)
	f.broadcast.EXPECT().Publish("a1", gomock.Any()).Do(func(_ string, e model.AuctionEvent) {
		require.Equal(t, model.EventNewBid, e.Type)
		require.Equal(t, int64(10100), e.Amount)
		require.Equal(t, 1, e.BidCount)
	})

	out, err := f.svc.PlaceBid("a1", "u1", 10100)
	require.NoError(t, err)
	require.Equal(t, int64(10100), out.NewPrice)
	require.Equal(t, 1, out.BidCount)
	require.Equal(t, "u1", out.Bid.BidderID)
	require.Equal(t, model.OriginManual, out.Bid.Origin)
	require.Equal(t, 1, f.trigger.count(), "every commit hands off to the cascade")
}

func TestService_PlaceBid_OutbidsPreviousBidder(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)
	f.seedAuction(t, "a1")

	f.wallet.EXPECT().Lock("u1", int64(10100)).Return(nil)
	f.wallet.EXPECT().Lock("u2", int64(10300)).Return(nil)
	f.wallet.EXPECT().Release("u1", int64(10100))
	f.notify.EXPECT().Notify("u1", gateway.NotifyOutbid, gomock.Any())
	f.broadcast.EXPECT().Publish("a1", gomock.Any()).Times(2)

	_, err := f.svc.PlaceBid("a1", "u1", 10100)
	require.NoError(t, err)
	_, err = f.svc.PlaceBid("a1", "u2", 10300)
	require.NoError(t, err)

	a, err := f.store.GetAuction("a1")
	require.NoError(t, err)
	require.Equal(t, int64(10300), a.CurrentPrice)
	require.Equal(t, 2, a.BidCount)
}

func TestService_PlaceBid_SelfOutbidSkipsNotification(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)
	f.seedAuction(t, "a1")

	f.wallet.EXPECT().Lock("u1", int64(10100)).Return(nil)
	f.wallet.EXPECT().Lock("u1", int64(10300)).Return(nil)
	f.wallet.EXPECT().Release("u1", int64(10100))
	f.broadcast.EXPECT().Publish("a1", gomock.Any()).Times(2)
	// raising your own bid releases the old lock but sends no outbid notice

	_, err := f.svc.PlaceBid("a1", "u1", 10100)
	require.NoError(t, err)
	_, err = f.svc.PlaceBid("a1", "u1", 10300)
	require.NoError(t, err)
}

func TestService_PlaceBid_FundLockFailureRollsBack(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)
	f.seedAuction(t, "a1")

	f.wallet.EXPECT().Lock("u1", int64(10100)).Return(auctionerrors.ErrInsufficientFunds)

	_, err := f.svc.PlaceBid("a1", "u1", 10100)
	require.ErrorIs(t, err, auctionerrors.ErrInsufficientFunds)

	a, err := f.store.GetAuction("a1")
	require.NoError(t, err)
	require.Equal(t, int64(10000), a.CurrentPrice, "price restored after rollback")
	require.Zero(t, a.BidCount)
	require.Zero(t, f.trigger.count(), "no cascade for a bid that never stood")
}

func TestService_PlaceBid_ValidationFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		auctionID string
		bidderID  string
		amount    int64
		wantErr   error
	}{
		{name: "empty_auction_id", bidderID: "u1", amount: 10100, wantErr: auctionerrors.ErrInvalidInput},
		{name: "empty_bidder_id", auctionID: "a1", amount: 10100, wantErr: auctionerrors.ErrInvalidInput},
		{name: "unknown_auction", auctionID: "ghost", bidderID: "u1", amount: 10100, wantErr: auctionerrors.ErrAuctionNotFound},
		{name: "seller_self_bid", auctionID: "a1", bidderID: "seller1", amount: 10100, wantErr: auctionerrors.ErrSelfBid},
		{name: "off_grid_amount", auctionID: "a1", bidderID: "u1", amount: 10150, wantErr: auctionerrors.ErrInvalidAmount},
		{name: "amount_not_above_price", auctionID: "a1", bidderID: "u1", amount: 10000, wantErr: auctionerrors.ErrAmountTooLow},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			f := newServiceFixture(t)
			f.seedAuction(t, "a1")
			// no wallet, broadcast or notification calls expected

			_, err := f.svc.PlaceBid(tc.auctionID, tc.bidderID, tc.amount)
			require.ErrorIs(t, err, tc.wantErr)
			require.Zero(t, f.trigger.count())
		})
	}
}

func TestService_SetupAutoBid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		bidderID string
		ceiling  int64
		step     int
		wantErr  error
	}{
		{name: "valid_mandate", bidderID: "u1", ceiling: 20000, step: 5},
		{name: "step_below_range", bidderID: "u1", ceiling: 20000, step: 4, wantErr: auctionerrors.ErrStepOutOfRange},
		{name: "step_above_range", bidderID: "u1", ceiling: 20000, step: 11, wantErr: auctionerrors.ErrStepOutOfRange},
		{name: "ceiling_off_grid", bidderID: "u1", ceiling: 20050, step: 5, wantErr: auctionerrors.ErrInvalidAmount},
		{name: "ceiling_not_above_price", bidderID: "u1", ceiling: 10000, step: 5, wantErr: auctionerrors.ErrCeilingTooLow},
		{name: "seller_mandate", bidderID: "seller1", ceiling: 20000, step: 5, wantErr: auctionerrors.ErrSelfBid},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			f := newServiceFixture(t)
			f.seedAuction(t, "a1")

			out, err := f.svc.SetupAutoBid("a1", tc.bidderID, tc.ceiling, tc.step)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				require.Zero(t, f.trigger.count())
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.ceiling, out.Mandate.CeilingAmount)
			require.Equal(t, tc.step, out.Mandate.StepPercentage)
			require.True(t, out.Mandate.Active)
			require.Equal(t, 1, f.trigger.count(), "a fresh mandate may fire immediately")
		})
	}

	t.Run("closed_auction_rejected", func(t *testing.T) {
		t.Parallel()

		f := newServiceFixture(t)
		require.NoError(t, f.store.CreateAuction(model.Auction{
			AuctionID:    "a1",
			Title:        "closed lot",
			SellerID:     "seller1",
			StartPrice:   10000,
			CurrentPrice: 10000,
			Status:       model.AuctionSold,
			EndAt:        time.Now().UTC().Add(-time.Hour),
			CreatedAt:    time.Now().UTC(),
		}))

		_, err := f.svc.SetupAutoBid("a1", "u1", 20000, 5)
		require.ErrorIs(t, err, auctionerrors.ErrAuctionNotActive)
	})

	t.Run("replace_keeps_commitment_time", func(t *testing.T) {
		t.Parallel()

		f := newServiceFixture(t)
		f.seedAuction(t, "a1")

		first, err := f.svc.SetupAutoBid("a1", "u1", 20000, 5)
		require.NoError(t, err)

		second, err := f.svc.SetupAutoBid("a1", "u1", 30000, 8)
		require.NoError(t, err)
		require.Equal(t, int64(30000), second.Mandate.CeilingAmount)
		require.Equal(t, 8, second.Mandate.StepPercentage)
		require.Equal(t, first.Mandate.MandateID, second.Mandate.MandateID)
		require.True(t, second.Mandate.CreatedAt.Equal(first.Mandate.CreatedAt),
			"tie-breaks keep rewarding the original commitment")
	})
}

func TestService_CancelAutoBid(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)
	f.seedAuction(t, "a1")

	_, err := f.svc.SetupAutoBid("a1", "u1", 20000, 5)
	require.NoError(t, err)

	require.NoError(t, f.svc.CancelAutoBid("a1", "u1"))

	mandates, err := f.store.ActiveMandates("a1", "")
	require.NoError(t, err)
	require.Empty(t, mandates)

	require.ErrorIs(t, f.svc.CancelAutoBid("a1", "ghost"), auctionerrors.ErrMandateNotFound)
	require.ErrorIs(t, f.svc.CancelAutoBid("", "u1"), auctionerrors.ErrInvalidInput)
}

func TestService_CancelAuction(t *testing.T) {
	t.Parallel()

	t.Run("with_standing_bid", func(t *testing.T) {
		t.Parallel()

		f := newServiceFixture(t)
		f.seedAuction(t, "a1")

		f.wallet.EXPECT().Lock("u1", int64(10100)).Return(nil)
		f.wallet.EXPECT().Release("u1", int64(10100))
		f.notify.EXPECT().Notify("u1", gateway.NotifyAuctionCancel, gomock.Any())
		f.broadcast.EXPECT().Publish("a1", gomock.Any()).Times(2) // NEW_BID then AUCTION_CANCELLED

		_, err := f.svc.PlaceBid("a1", "u1", 10100)
		require.NoError(t, err)

		a, err := f.svc.CancelAuction("a1", "seller1")
		require.NoError(t, err)
		require.Equal(t, model.AuctionCancelled, a.Status)
	})

	t.Run("non_seller_rejected", func(t *testing.T) {
		t.Parallel()

		f := newServiceFixture(t)
		f.seedAuction(t, "a1")

		_, err := f.svc.CancelAuction("a1", "stranger")
		require.ErrorIs(t, err, auctionerrors.ErrNotSeller)
	})
}

func TestService_Reads(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)
	f.seedAuction(t, "a1")

	f.wallet.EXPECT().Lock("u1", int64(10100)).Return(nil)
	f.broadcast.EXPECT().Publish("a1", gomock.Any())
	_, err := f.svc.PlaceBid("a1", "u1", 10100)
	require.NoError(t, err)

	t.Run("get_auction", func(t *testing.T) {
		a, err := f.svc.GetAuction("a1")
		require.NoError(t, err)
		require.Equal(t, int64(10100), a.CurrentPrice)

		_, err = f.svc.GetAuction("")
		require.ErrorIs(t, err, auctionerrors.ErrInvalidInput)
	})

	t.Run("list_auctions", func(t *testing.T) {
		auctions, err := f.svc.ListAuctions()
		require.NoError(t, err)
		require.Len(t, auctions, 1)
	})

	t.Run("bids_for_auction", func(t *testing.T) {
		bids, err := f.svc.GetBidsForAuction("a1")
		require.NoError(t, err)
		require.Len(t, bids, 1)
	})

	t.Run("highest_bid", func(t *testing.T) {
		bid, err := f.svc.GetHighestBid("a1")
		require.NoError(t, err)
		require.Equal(t, "u1", bid.BidderID)
	})
}

func TestErrIsValidation(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)
	f.seedAuction(t, "a1")

	_, err := f.svc.PlaceBid("a1", "seller1", 10100)
	require.True(t, ErrIsValidation(err))

	_, err = f.svc.GetAuction("ghost")
	require.False(t, ErrIsValidation(err), "not-found is not a validation failure")
}
