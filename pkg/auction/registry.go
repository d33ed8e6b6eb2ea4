package auction

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/puzpuzpuz/xsync/v2"
	"github.com/sourcegraph/conc/iter"
	"go.uber.org/zap"

	"github.com/openbid/openbidapi/pkg/core"
	"github.com/openbid/openbidapi/pkg/ledger"
)

// record is a live auction and the lock that serializes every mutation of
// it. PlaceBid and EndAuction on one auction never interleave; distinct
// auctions share no lock.
type record struct {
	mu sync.Mutex
	a  core.Auction
}

func (r *record) snapshot() core.Auction {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.a
}

// Registry owns the auction-id space and the id → record mapping.
// Identifiers grow monotonically and are never reused; closed auctions
// stay in the registry as immutable history.
type Registry struct {
	logger   *zap.Logger
	clock    ledger.Clock
	auctions *xsync.MapOf[core.AuctionID, *record]
	lastID   atomic.Int64
}

func NewRegistry(logger *zap.Logger, clock ledger.Clock) *Registry {
	return &Registry{
		logger:   logger,
		clock:    clock,
		auctions: xsync.NewIntegerMapOf[core.AuctionID, *record](),
	}
}

// CreateAuction allocates the next auction id and stores a new active
// record. Anybody may open an auction; restricting creation to asset
// owners is a policy decision left to the deployment.
func (r *Registry) CreateAuction(assetID core.AssetID, duration time.Duration, minIncrement int64, seller core.AccountID) (core.AuctionID, error) {
	defer observe("create_auction").ObserveDuration()
	if duration <= 0 {
		return 0, core.ErrInvalidDuration
	}
	if minIncrement < 0 {
		return 0, core.ErrInvalidIncrement
	}
	id := core.AuctionID(r.lastID.Add(1))
	rec := &record{
		a: core.Auction{
			ID:           id,
			AssetID:      assetID,
			Seller:       seller,
			EndTime:      r.clock.Now().Add(duration),
			MinIncrement: minIncrement,
			Active:       true,
		},
	}
	r.auctions.Store(id, rec)
	r.logger.Info("auction created",
		zap.Int64("auction", int64(id)),
		zap.Int64("asset", int64(assetID)),
		zap.String("seller", seller.String()),
		zap.Duration("duration", duration))
	return id, nil
}

// Get returns a consistent snapshot of one auction.
func (r *Registry) Get(id core.AuctionID) (core.Auction, error) {
	rec, ok := r.auctions.Load(id)
	if !ok {
		return core.Auction{}, core.ErrAuctionNotFound
	}
	return rec.snapshot(), nil
}

// All returns snapshots of every auction the registry has ever created.
func (r *Registry) All() []core.Auction {
	records := make([]*record, 0, r.auctions.Size())
	r.auctions.Range(func(_ core.AuctionID, rec *record) bool {
		records = append(records, rec)
		return true
	})
	return iter.Map(records, func(rec **record) core.Auction {
		return (*rec).snapshot()
	})
}

func (r *Registry) load(id core.AuctionID) (*record, bool) {
	return r.auctions.Load(id)
}
