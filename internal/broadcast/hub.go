package broadcast

import (
	"sync"

	model "auction-engine/internal/models"
)

const subscriberBuffer = 256

// Hub is an in-process BroadcastGateway: subscribers register per auction and
// receive events over a buffered channel. Publishing never blocks the bidding
// path; a subscriber that cannot keep up has events dropped (clients recover
// by re-reading auction state).
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]map[int]chan model.AuctionEvent // auctionID -> subID -> channel
	nextID int
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[int]chan model.AuctionEvent)}
}

// Subscribe registers for one auction's events. The returned cancel func
// unregisters and closes the channel.
func (h *Hub) Subscribe(auctionID string) (<-chan model.AuctionEvent, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan model.AuctionEvent, subscriberBuffer)
	byID, ok := h.subs[auctionID]
	if !ok {
		byID = make(map[int]chan model.AuctionEvent)
		h.subs[auctionID] = byID
	}
	id := h.nextID
	h.nextID++
	byID[id] = ch

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if sub, ok := h.subs[auctionID][id]; ok {
			delete(h.subs[auctionID], id)
			close(sub)
			if len(h.subs[auctionID]) == 0 {
				delete(h.subs, auctionID)
			}
		}
	}
	return ch, cancel
}

// Publish fans the event out to the auction's subscribers without blocking.
func (h *Hub) Publish(auctionID string, event model.AuctionEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.subs[auctionID] {
		select {
		case ch <- event:
		default:
			// drop for slow subscriber
		}
	}
}

// Subscribers returns the current subscriber count for an auction.
func (h *Hub) Subscribers(auctionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[auctionID])
}
