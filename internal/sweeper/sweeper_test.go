package sweeper

import (
	"sync"
	"testing"
	"time"

	"auction-engine/internal/gateway"
	"auction-engine/internal/ledger"
	model "auction-engine/internal/models"
	"auction-engine/internal/repository"

	"github.com/stretchr/testify/require"
)

type eventSink struct {
	mu     sync.Mutex
	events []model.AuctionEvent
}

func (s *eventSink) Publish(_ string, e model.AuctionEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

func (s *eventSink) countType(eventType model.EventType) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, e := range s.events {
		if e.Type == eventType {
			n++
		}
	}
	return n
}

type noteSink struct {
	mu    sync.Mutex
	types map[string][]string // userID -> event types received
}

func (s *noteSink) Notify(userID, eventType string, _ map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.types == nil {
		s.types = make(map[string][]string)
	}
	s.types[userID] = append(s.types[userID], eventType)
}

func (s *noteSink) received(userID, eventType string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, et := range s.types[userID] {
		if et == eventType {
			return true
		}
	}
	return false
}

type harness struct {
	store   *repository.MemoryStore
	ledger  *ledger.Ledger
	wallet  *gateway.MemoryWallet
	events  *eventSink
	notes   *noteSink
	sweeper *Sweeper
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	h := &harness{
		store:  repository.NewMemoryStore(),
		wallet: gateway.NewMemoryWallet(1_000_000),
		events: &eventSink{},
		notes:  &noteSink{},
	}
	h.ledger = ledger.New(h.store)
	h.sweeper = New(h.store, h.ledger, h.wallet, h.events, h.notes)
	return h
}

func (h *harness) seed(t *testing.T, auctionID string, reserve int64, endAt time.Time) {
	t.Helper()

	require.NoError(t, h.store.CreateAuction(model.Auction{
		AuctionID:    auctionID,
		Title:        "estate clock",
		SellerID:     "seller1",
		StartPrice:   10000,
		CurrentPrice: 10000,
		ReservePrice: reserve,
		Status:       model.AuctionActive,
		EndAt:        endAt,
		CreatedAt:    time.Now().UTC(),
	}))
}

// bid commits a bid and locks funds, then backdates the deadline so the
// auction becomes due.
func (h *harness) bidAndExpire(t *testing.T, auctionID, bidderID string, amount int64) {
	t.Helper()

	_, err := h.ledger.TryAdvance(auctionID, bidderID, amount, model.OriginManual)
	require.NoError(t, err)
	require.NoError(t, h.wallet.Lock(bidderID, amount))

	a, err := h.store.GetAuction(auctionID)
	require.NoError(t, err)
	a.EndAt = time.Now().UTC().Add(-time.Second)
	require.NoError(t, h.store.UpdateAuction(a))
}

func TestSweeper_SoldAuction(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.seed(t, "a1", 0, time.Now().UTC().Add(time.Hour))
	h.bidAndExpire(t, "a1", "u1", 10100)

	h.sweeper.SweepOnce()

	a, err := h.store.GetAuction("a1")
	require.NoError(t, err)
	require.Equal(t, model.AuctionSold, a.Status)
	require.Equal(t, "u1", a.WinnerID)

	require.True(t, h.notes.received("u1", gateway.NotifyAuctionWon))
	require.True(t, h.notes.received("seller1", gateway.NotifyAuctionSold))
	require.Equal(t, 1, h.events.countType(model.EventAuctionSold))

	// the winner's funds stay locked until settlement outside this engine
	require.Equal(t, int64(10100), h.wallet.Locked("u1"))
}

func TestSweeper_ReserveNotMetReleasesFunds(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.seed(t, "a1", 30000, time.Now().UTC().Add(time.Hour))
	h.bidAndExpire(t, "a1", "u1", 29900)

	h.sweeper.SweepOnce()

	a, err := h.store.GetAuction("a1")
	require.NoError(t, err)
	require.Equal(t, model.AuctionReserveNotMet, a.Status)
	require.Empty(t, a.WinnerID)

	require.Equal(t, int64(0), h.wallet.Locked("u1"), "top bid loses, funds come back")
	require.True(t, h.notes.received("u1", gateway.NotifyAuctionNotSold))
	require.True(t, h.notes.received("seller1", gateway.NotifyAuctionNotSold))
	require.Equal(t, 1, h.events.countType(model.EventAuctionNotSold))
}

func TestSweeper_NoBidsAuction(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.seed(t, "a1", 0, time.Now().UTC().Add(-time.Minute))

	h.sweeper.SweepOnce()

	a, err := h.store.GetAuction("a1")
	require.NoError(t, err)
	require.Equal(t, model.AuctionReserveNotMet, a.Status)
	require.True(t, h.notes.received("seller1", gateway.NotifyAuctionNotSold))
}

func TestSweeper_LeavesRunningAuctionsAlone(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.seed(t, "a1", 0, time.Now().UTC().Add(time.Hour))

	h.sweeper.SweepOnce()

	a, err := h.store.GetAuction("a1")
	require.NoError(t, err)
	require.Equal(t, model.AuctionActive, a.Status)
	require.Empty(t, h.events.events)
}

// Several sweeper instances share one ledger; a due auction settles once.
func TestSweeper_ConcurrentSweepsSettleOnce(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.seed(t, "a1", 0, time.Now().UTC().Add(time.Hour))
	h.bidAndExpire(t, "a1", "u1", 10100)

	second := New(h.store, h.ledger, h.wallet, h.events, h.notes)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		s := h.sweeper
		if i%2 == 1 {
			s = second
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.SweepOnce()
		}()
	}
	wg.Wait()

	require.Equal(t, 1, h.events.countType(model.EventAuctionSold))
}

func TestSweeper_StartClosesDueAuctions(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.seed(t, "a1", 0, time.Now().UTC().Add(-time.Minute))

	require.NoError(t, h.sweeper.Start(time.Second))
	defer h.sweeper.Stop()

	require.Eventually(t, func() bool {
		a, err := h.store.GetAuction("a1")
		return err == nil && a.Status.Terminal()
	}, 5*time.Second, 50*time.Millisecond)
}
