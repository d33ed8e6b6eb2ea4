package sources

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/openbid/openbidapi/pkg/core"
	"github.com/openbid/openbidapi/pkg/pusher/events"
)

// BidFeed implements the "BidSource" interface and fans accepted-bid and
// auction-closed events out to subscribers. The settlement engine
// publishes into a buffered channel, so a slow subscriber never holds an
// auction lock.
type BidFeed struct {
	logger *zap.Logger
	ch     chan feedItem

	mu          sync.Mutex
	currentID   subscriberID
	subscribers map[subscriberID]feedDeliveryFn
}

type subscriberID int64

type feedItem struct {
	name      events.Name
	auctionID core.AuctionID
	payload   []byte
}

type feedDeliveryFn func(item feedItem)

func NewBidFeed(logger *zap.Logger) *BidFeed {
	return &BidFeed{
		logger:      logger,
		ch:          make(chan feedItem, 100),
		currentID:   1,
		subscribers: map[subscriberID]feedDeliveryFn{},
	}
}

var _ BidSource = (*BidFeed)(nil)

func createDeliveryFnBasedOnOptions(deliveryFn DeliveryFn, opts SubscribeToBidsOptions) feedDeliveryFn {
	if opts.AllAuctions {
		return func(item feedItem) {
			deliveryFn(item.name, item.payload)
		}
	}
	return func(item feedItem) {
		for _, id := range opts.Auctions {
			if id == item.auctionID {
				deliveryFn(item.name, item.payload)
				return
			}
		}
	}
}

func (f *BidFeed) SubscribeToBids(ctx context.Context, deliveryFn DeliveryFn, opts SubscribeToBidsOptions) CancelFn {
	f.mu.Lock()
	defer f.mu.Unlock()

	subID := f.currentID
	f.currentID += 1
	f.subscribers[subID] = createDeliveryFnBasedOnOptions(deliveryFn, opts)
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.subscribers, subID)
	}
}

// PublishBid implements the settlement engine's event sink.
func (f *BidFeed) PublishBid(event core.BidEvent) {
	f.publish(events.BidEvent, event.AuctionID, event)
}

// PublishClosed implements the settlement engine's event sink.
func (f *BidFeed) PublishClosed(event core.AuctionClosedEvent) {
	f.publish(events.AuctionClosedEvent, event.AuctionID, event)
}

func (f *BidFeed) publish(name events.Name, auctionID core.AuctionID, event any) {
	payload, err := json.Marshal(event)
	if err != nil {
		f.logger.Error("failed to marshal feed event", zap.Error(err))
		return
	}
	item := feedItem{name: name, auctionID: auctionID, payload: payload}
	select {
	case f.ch <- item:
	default:
		f.logger.Warn("feed channel is full, dropping event",
			zap.String("event", name.String()),
			zap.Int64("auction", int64(auctionID)))
	}
}

// Run runs an event loop that resends incoming events to all subscribers.
func (f *BidFeed) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case item := <-f.ch:
			f.mu.Lock()
			for _, deliver := range f.subscribers {
				deliver(item)
			}
			f.mu.Unlock()
		}
	}
}
