package api

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/openbid/openbidapi/pkg/auction"
	"github.com/openbid/openbidapi/pkg/cache"
	"github.com/openbid/openbidapi/pkg/core"
	"github.com/openbid/openbidapi/pkg/ledger"
)

// Handler serves the REST surface. Closed auctions are immutable, so
// their snapshots are kept in a small LRU cache in front of the registry.
type Handler struct {
	logger      *zap.Logger
	registry    *auction.Registry
	engine      *auction.Engine
	ledger      *ledger.Ledger
	closedCache cache.Cache[core.AuctionID, core.Auction]
}

type Options struct {
	registry *auction.Registry
	engine   *auction.Engine
	ledger   *ledger.Ledger
}

type Option func(o *Options)

func WithRegistry(r *auction.Registry) Option {
	return func(o *Options) {
		o.registry = r
	}
}

func WithEngine(e *auction.Engine) Option {
	return func(o *Options) {
		o.engine = e
	}
}

func WithLedger(l *ledger.Ledger) Option {
	return func(o *Options) {
		o.ledger = l
	}
}

func NewHandler(logger *zap.Logger, opts ...Option) (*Handler, error) {
	options := &Options{}
	for _, o := range opts {
		o(options)
	}
	if options.registry == nil {
		return nil, fmt.Errorf("registry is not configured")
	}
	if options.engine == nil {
		return nil, fmt.Errorf("engine is not configured")
	}
	if options.ledger == nil {
		return nil, fmt.Errorf("ledger is not configured")
	}
	return &Handler{
		logger:      logger,
		registry:    options.registry,
		engine:      options.engine,
		ledger:      options.ledger,
		closedCache: cache.NewLRUCache[core.AuctionID, core.Auction](1000, "closed_auctions"),
	}, nil
}
