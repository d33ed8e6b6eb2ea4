package sources

import (
	"context"

	"github.com/openbid/openbidapi/pkg/core"
	"github.com/openbid/openbidapi/pkg/pusher/events"
)

// SubscribeToBidsOptions configures which auctions a subscriber wants to
// follow. An empty Auctions list with AllAuctions=false delivers nothing.
type SubscribeToBidsOptions struct {
	AllAuctions bool
	Auctions    []core.AuctionID
}

// DeliveryFn describes a callback that will be triggered once an auction
// event happens.
type DeliveryFn func(eventName events.Name, eventData []byte)

// CancelFn has to be called to unsubscribe.
type CancelFn func()

// BidSource provides a method to subscribe to notifications about
// accepted bids and auction closings.
type BidSource interface {
	SubscribeToBids(ctx context.Context, deliveryFn DeliveryFn, opts SubscribeToBidsOptions) CancelFn
}
