package auction

import (
	"context"
	"time"

	"github.com/avast/retry-go"
	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/openbid/openbidapi/pkg/core"
	"github.com/openbid/openbidapi/pkg/ledger"
)

// EventSink receives events for external subscribers. The engine treats
// publishing as fire-and-forget.
type EventSink interface {
	PublishBid(event core.BidEvent)
	PublishClosed(event core.AuctionClosedEvent)
}

type noopSink struct{}

func (noopSink) PublishBid(core.BidEvent)              {}
func (noopSink) PublishClosed(core.AuctionClosedEvent) {}

// Engine validates and applies bid placements and auction closings
// against the registry, moving value through the ledger and updating the
// ownership index at settlement.
//
// A refund to a displaced bidder is retried a bounded number of times;
// if the recipient still cannot be paid, the amount is parked as a
// pending withdrawal and the new bid is accepted anyway. A bidder that
// refuses transfers therefore cannot wedge an auction at a low price.
type Engine struct {
	logger         *zap.Logger
	registry       *Registry
	ledger         *ledger.Ledger
	owners         *OwnershipIndex
	events         EventSink
	admin          *core.AccountID
	refundAttempts uint
	refundDelay    time.Duration
}

type EngineOptions struct {
	events         EventSink
	admin          *core.AccountID
	refundAttempts uint
	refundDelay    time.Duration
}

type EngineOption func(o *EngineOptions)

// WithEventSink wires a feed that receives bid and close events.
func WithEventSink(sink EventSink) EngineOption {
	return func(o *EngineOptions) {
		o.events = sink
	}
}

// WithAdmin configures the privileged account allowed to close auctions
// before their end time.
func WithAdmin(admin core.AccountID) EngineOption {
	return func(o *EngineOptions) {
		o.admin = &admin
	}
}

// WithRefundRetry overrides how hard the engine tries to deliver a refund
// before parking it.
func WithRefundRetry(attempts uint, delay time.Duration) EngineOption {
	return func(o *EngineOptions) {
		o.refundAttempts = attempts
		o.refundDelay = delay
	}
}

func NewEngine(logger *zap.Logger, registry *Registry, l *ledger.Ledger, owners *OwnershipIndex, opts ...EngineOption) *Engine {
	o := &EngineOptions{
		events:         noopSink{},
		refundAttempts: 3,
		refundDelay:    10 * time.Millisecond,
	}
	for i := range opts {
		opts[i](o)
	}
	return &Engine{
		logger:         logger,
		registry:       registry,
		ledger:         l,
		owners:         owners,
		events:         o.events,
		admin:          o.admin,
		refundAttempts: o.refundAttempts,
		refundDelay:    o.refundDelay,
	}
}

// Owners exposes the ownership index for read queries.
func (e *Engine) Owners() *OwnershipIndex {
	return e.owners
}

// PlaceBid escrows amount from bidder and makes it the highest bid.
// Preconditions are checked in order: unknown auction, expired or closed
// auction, then the increment rule. The bid must strictly exceed the
// current highest bid and exceed it by at least the minimum increment;
// the first bid compares against zero.
func (e *Engine) PlaceBid(ctx context.Context, auctionID core.AuctionID, bidder core.AccountID, amount int64) error {
	defer observe("place_bid").ObserveDuration()
	rec, ok := e.registry.load(auctionID)
	if !ok {
		return core.ErrAuctionNotFound
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()

	now := e.ledger.Clock().Now()
	if !rec.a.Active || !now.Before(rec.a.EndTime) {
		return core.ErrAuctionEnded
	}
	if amount <= rec.a.HighestBid || amount-rec.a.HighestBid < rec.a.MinIncrement {
		return core.ErrBidTooLow
	}

	// Escrow the new bid first. If the bidder cannot fund it, nothing has
	// changed yet.
	if err := e.ledger.EscrowDeposit(auctionID, bidder, amount); err != nil {
		return err
	}

	refundParked := false
	if rec.a.HighestBidder != nil {
		displaced, owed := *rec.a.HighestBidder, rec.a.HighestBid
		if err := e.refund(ctx, auctionID, displaced, owed); err != nil {
			if parkErr := e.ledger.ParkWithdrawal(auctionID, displaced, owed); parkErr != nil {
				// Escrow accounting is broken; give the new bidder their
				// deposit back and reject the bid.
				if rbErr := e.ledger.EscrowRelease(auctionID, bidder, amount); rbErr != nil {
					e.logger.Error("rollback of new bid escrow failed",
						zap.Int64("auction", int64(auctionID)),
						zap.Error(rbErr))
				}
				return errors.Wrapf(core.ErrRefundFailed, "park for %s: %v", displaced, parkErr)
			}
			parkedRefundsCounter.Inc()
			refundParked = true
		}
	}

	rec.a.HighestBidder = &bidder
	rec.a.HighestBid = amount
	e.logger.Info("bid accepted",
		zap.Int64("auction", int64(auctionID)),
		zap.String("bidder", bidder.String()),
		zap.Int64("amount", amount))
	e.events.PublishBid(core.BidEvent{
		AuctionID:    auctionID,
		Bidder:       bidder,
		Amount:       amount,
		RefundParked: refundParked,
	})
	return nil
}

// EndAuction finalizes an auction. Once its end time has passed anybody
// may close it; before that only the configured administrator may. The
// transition to inactive is terminal: a second call fails with
// ErrAlreadyEnded and never pays or transfers ownership again.
func (e *Engine) EndAuction(ctx context.Context, auctionID core.AuctionID, caller core.AccountID) error {
	defer observe("end_auction").ObserveDuration()
	rec, ok := e.registry.load(auctionID)
	if !ok {
		return core.ErrAuctionNotFound
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()

	if !rec.a.Active {
		return core.ErrAlreadyEnded
	}
	now := e.ledger.Clock().Now()
	if now.Before(rec.a.EndTime) && !e.isAdmin(caller) {
		return core.ErrAuctionStillGoing
	}

	rec.a.Active = false

	closed := core.AuctionClosedEvent{
		AuctionID: auctionID,
		AssetID:   rec.a.AssetID,
	}
	if rec.a.HighestBidder != nil {
		winner, proceeds := *rec.a.HighestBidder, rec.a.HighestBid
		if err := e.refund(ctx, auctionID, rec.a.Seller, proceeds); err != nil {
			if parkErr := e.ledger.ParkWithdrawal(auctionID, rec.a.Seller, proceeds); parkErr != nil {
				return errors.Wrapf(core.ErrRefundFailed, "payout park for %s: %v", rec.a.Seller, parkErr)
			}
			parkedRefundsCounter.Inc()
		}
		e.owners.credit(winner, rec.a.AssetID)
		closed.Winner = &winner
		closed.Proceeds = proceeds
	}

	e.logger.Info("auction closed",
		zap.Int64("auction", int64(auctionID)),
		zap.Int64("proceeds", closed.Proceeds))
	e.events.PublishClosed(closed)
	return nil
}

func (e *Engine) isAdmin(caller core.AccountID) bool {
	return e.admin != nil && *e.admin == caller
}

func (e *Engine) refund(ctx context.Context, auctionID core.AuctionID, to core.AccountID, amount int64) error {
	err := retry.Do(func() error {
		return e.ledger.EscrowRelease(auctionID, to, amount)
	}, retry.Context(ctx), retry.Attempts(e.refundAttempts), retry.Delay(e.refundDelay), retry.LastErrorOnly(true))
	if err != nil {
		e.logger.Warn("escrow release failed",
			zap.Int64("auction", int64(auctionID)),
			zap.String("account", to.String()),
			zap.Int64("amount", amount),
			zap.Error(err))
	}
	return err
}
