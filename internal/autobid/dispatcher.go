package autobid

import (
	"sync"

	"auction-engine/utils"
)

const defaultQueueSize = 1024

// Dispatcher hands committed-bid triggers to the resolver on a worker
// goroutine, decoupling cascade resolution from the synchronous bid path.
// The resolver re-derives state from the store, so duplicate triggers for the
// same auction are harmless.
type Dispatcher struct {
	resolver *Resolver
	queue    chan string
	stop     chan struct{}
	wg       sync.WaitGroup
	once     sync.Once
}

// NewDispatcher creates a dispatcher over the resolver.
func NewDispatcher(resolver *Resolver) *Dispatcher {
	return &Dispatcher{
		resolver: resolver,
		queue:    make(chan string, defaultQueueSize),
		stop:     make(chan struct{}),
	}
}

// Start launches the worker goroutine.
func (d *Dispatcher) Start() {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for {
			select {
			case auctionID := <-d.queue:
				if err := d.resolver.Resolve(auctionID); err != nil {
					utils.Error("dispatcher: cascade failed", map[string]any{
						"auction_id": auctionID,
						"error":      err.Error(),
					})
				}
			case <-d.stop:
				return
			}
		}
	}()
}

// Stop shuts the worker down. Queued triggers not yet picked up are dropped;
// the next trigger for an auction re-derives everything from the store.
func (d *Dispatcher) Stop() {
	d.once.Do(func() { close(d.stop) })
	d.wg.Wait()
}

// Trigger enqueues a cascade pass for the auction.
func (d *Dispatcher) Trigger(auctionID string) {
	select {
	case d.queue <- auctionID:
	case <-d.stop:
	}
}
