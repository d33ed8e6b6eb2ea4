package auction

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/openbid/openbidapi/pkg/core"
	"github.com/openbid/openbidapi/pkg/ledger"
)

var (
	seller  = core.MustParseAccountID("seller")
	bidder1 = core.MustParseAccountID("bidder1")
	bidder2 = core.MustParseAccountID("bidder2")
	admin   = core.MustParseAccountID("admin")
)

// recordingSink collects published events for assertions.
type recordingSink struct {
	mu     sync.Mutex
	bids   []core.BidEvent
	closed []core.AuctionClosedEvent
}

func (s *recordingSink) PublishBid(e core.BidEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bids = append(s.bids, e)
}

func (s *recordingSink) PublishClosed(e core.AuctionClosedEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = append(s.closed, e)
}

type testEnv struct {
	clock    *ledger.ManualClock
	ledger   *ledger.Ledger
	registry *Registry
	owners   *OwnershipIndex
	engine   *Engine
	sink     *recordingSink
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	clock := ledger.NewManualClock(time.Unix(1_700_000_000, 0))
	book := ledger.NewLedger(zap.NewNop(),
		ledger.WithClock(clock),
		ledger.WithGenesisAccounts([]ledger.GenesisAccount{
			{ID: bidder1, Balance: 1000},
			{ID: bidder2, Balance: 1000},
		}))
	registry := NewRegistry(zap.NewNop(), clock)
	owners := NewOwnershipIndex()
	sink := &recordingSink{}
	engine := NewEngine(zap.NewNop(), registry, book, owners,
		WithEventSink(sink),
		WithAdmin(admin),
		WithRefundRetry(2, time.Millisecond))
	return &testEnv{
		clock:    clock,
		ledger:   book,
		registry: registry,
		owners:   owners,
		engine:   engine,
		sink:     sink,
	}
}

// conservation checks that no value was minted or lost: balances plus
// pending withdrawals plus the escrow of the given auctions always add up
// to the 2000 units both bidders started with.
func (env *testEnv) conservation(t *testing.T, auctionIDs ...core.AuctionID) {
	t.Helper()
	var held int64
	for _, id := range auctionIDs {
		held += env.ledger.EscrowBalance(id)
	}
	for _, id := range []core.AccountID{seller, bidder1, bidder2} {
		balance, pending := env.ledger.Balance(id)
		held += balance + pending
	}
	require.Equal(t, int64(2000), held, "value leaked or minted")
}

func TestEngine_fullAuctionLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	id, err := env.registry.CreateAuction(1, 100*time.Second, 10, seller)
	require.NoError(t, err)

	// below the increment
	err = env.engine.PlaceBid(ctx, id, bidder1, 5)
	require.ErrorIs(t, err, core.ErrBidTooLow)
	a, err := env.registry.Get(id)
	require.NoError(t, err)
	require.False(t, a.HasBid())
	require.Equal(t, int64(0), a.HighestBid)

	// first valid bid
	require.NoError(t, env.engine.PlaceBid(ctx, id, bidder1, 20))
	a, err = env.registry.Get(id)
	require.NoError(t, err)
	require.Equal(t, &bidder1, a.HighestBidder)
	require.Equal(t, int64(20), a.HighestBid)
	balance, _ := env.ledger.Balance(bidder1)
	require.Equal(t, int64(980), balance)
	require.Equal(t, int64(20), env.ledger.EscrowBalance(id))

	// outbid refunds the displaced bidder in full
	require.NoError(t, env.engine.PlaceBid(ctx, id, bidder2, 50))
	a, err = env.registry.Get(id)
	require.NoError(t, err)
	require.Equal(t, &bidder2, a.HighestBidder)
	require.Equal(t, int64(50), a.HighestBid)
	balance, _ = env.ledger.Balance(bidder1)
	require.Equal(t, int64(1000), balance)
	require.Equal(t, int64(50), env.ledger.EscrowBalance(id))
	env.conservation(t, id)

	// end after expiry: anyone may close
	env.clock.Advance(100 * time.Second)
	require.NoError(t, env.engine.EndAuction(ctx, id, bidder1))
	a, err = env.registry.Get(id)
	require.NoError(t, err)
	require.False(t, a.Active)
	require.Equal(t, []core.AssetID{1}, env.owners.AssetsOf(bidder2))
	sellerBalance, _ := env.ledger.Balance(seller)
	require.Equal(t, int64(50), sellerBalance)
	require.Equal(t, int64(0), env.ledger.EscrowBalance(id))
	env.conservation(t, id)

	// the record is terminal now
	err = env.engine.PlaceBid(ctx, id, bidder1, 100)
	require.ErrorIs(t, err, core.ErrAuctionEnded)
	err = env.engine.EndAuction(ctx, id, seller)
	require.ErrorIs(t, err, core.ErrAlreadyEnded)
	// no double payout, no double ownership transfer
	sellerBalance, _ = env.ledger.Balance(seller)
	require.Equal(t, int64(50), sellerBalance)
	require.Equal(t, []core.AssetID{1}, env.owners.AssetsOf(bidder2))

	require.Len(t, env.sink.bids, 2)
	require.Len(t, env.sink.closed, 1)
	require.Equal(t, &bidder2, env.sink.closed[0].Winner)
	require.Equal(t, int64(50), env.sink.closed[0].Proceeds)
}

func TestEngine_PlaceBid_preconditions(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		setup   func(env *testEnv) core.AuctionID
		bidder  core.AccountID
		amount  int64
		wantErr error
	}{
		{
			name:    "unknown auction",
			setup:   func(env *testEnv) core.AuctionID { return 999 },
			bidder:  bidder1,
			amount:  100,
			wantErr: core.ErrAuctionNotFound,
		},
		{
			name: "bid at end time",
			setup: func(env *testEnv) core.AuctionID {
				id, err := env.registry.CreateAuction(2, 10*time.Second, 0, seller)
				require.NoError(t, err)
				env.clock.Advance(10 * time.Second)
				return id
			},
			bidder:  bidder1,
			amount:  100,
			wantErr: core.ErrAuctionEnded,
		},
		{
			name: "bid equal to highest",
			setup: func(env *testEnv) core.AuctionID {
				id, err := env.registry.CreateAuction(3, time.Hour, 0, seller)
				require.NoError(t, err)
				require.NoError(t, env.engine.PlaceBid(ctx, id, bidder1, 100))
				return id
			},
			bidder:  bidder2,
			amount:  100,
			wantErr: core.ErrBidTooLow,
		},
		{
			name: "bid below increment over highest",
			setup: func(env *testEnv) core.AuctionID {
				id, err := env.registry.CreateAuction(4, time.Hour, 10, seller)
				require.NoError(t, err)
				require.NoError(t, env.engine.PlaceBid(ctx, id, bidder1, 100))
				return id
			},
			bidder:  bidder2,
			amount:  109,
			wantErr: core.ErrBidTooLow,
		},
		{
			name: "bidder cannot fund the bid",
			setup: func(env *testEnv) core.AuctionID {
				id, err := env.registry.CreateAuction(5, time.Hour, 0, seller)
				require.NoError(t, err)
				return id
			},
			bidder:  bidder1,
			amount:  5000,
			wantErr: core.ErrInsufficientFunds,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			id := tt.setup(env)
			before, err := env.registry.Get(id)
			if err == nil {
				require.ErrorIs(t, env.engine.PlaceBid(ctx, id, tt.bidder, tt.amount), tt.wantErr)
				// a rejected bid leaves the record unchanged
				after, err := env.registry.Get(id)
				require.NoError(t, err)
				require.Equal(t, before, after)
				return
			}
			require.ErrorIs(t, env.engine.PlaceBid(ctx, id, tt.bidder, tt.amount), tt.wantErr)
		})
	}
}

func TestEngine_highestBidMonotonic(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	id, err := env.registry.CreateAuction(1, time.Hour, 7, seller)
	require.NoError(t, err)

	last := int64(0)
	bidders := []core.AccountID{bidder1, bidder2}
	for i := 0; i < 10; i++ {
		amount := last + 7 + int64(i%3)
		require.NoError(t, env.engine.PlaceBid(ctx, id, bidders[i%2], amount))
		a, err := env.registry.Get(id)
		require.NoError(t, err)
		require.GreaterOrEqual(t, a.HighestBid-last, a.MinIncrement)
		require.Greater(t, a.HighestBid, last)
		last = a.HighestBid
	}
	// only the winning amount is escrowed, every displaced bid went back
	require.Equal(t, last, env.ledger.EscrowBalance(id))
	env.conservation(t, id)
}

func TestEngine_EndAuction_gating(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	id, err := env.registry.CreateAuction(2, 100*time.Second, 10, seller)
	require.NoError(t, err)

	// non-privileged close before expiry
	err = env.engine.EndAuction(ctx, id, bidder1)
	require.ErrorIs(t, err, core.ErrAuctionStillGoing)
	err = env.engine.EndAuction(ctx, id, seller)
	require.ErrorIs(t, err, core.ErrAuctionStillGoing)
	a, err := env.registry.Get(id)
	require.NoError(t, err)
	require.True(t, a.Active)

	// the administrator may close early
	require.NoError(t, env.engine.EndAuction(ctx, id, admin))
	a, err = env.registry.Get(id)
	require.NoError(t, err)
	require.False(t, a.Active)
}

func TestEngine_EndAuction_noBids(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	id, err := env.registry.CreateAuction(9, 10*time.Second, 0, seller)
	require.NoError(t, err)
	env.clock.Advance(11 * time.Second)

	require.NoError(t, env.engine.EndAuction(ctx, id, bidder1))
	sellerBalance, _ := env.ledger.Balance(seller)
	require.Equal(t, int64(0), sellerBalance)
	require.Empty(t, env.owners.AssetsOf(seller))
	require.Len(t, env.sink.closed, 1)
	require.Nil(t, env.sink.closed[0].Winner)
}

func TestEngine_refundParkedWhenRecipientRejects(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	id, err := env.registry.CreateAuction(1, time.Hour, 10, seller)
	require.NoError(t, err)
	require.NoError(t, env.engine.PlaceBid(ctx, id, bidder1, 20))

	// bidder1 refuses incoming transfers; the auction must not get stuck
	env.ledger.SetRejectIncoming(bidder1, true)
	require.NoError(t, env.engine.PlaceBid(ctx, id, bidder2, 50))

	a, err := env.registry.Get(id)
	require.NoError(t, err)
	require.Equal(t, &bidder2, a.HighestBidder)
	require.Equal(t, int64(50), a.HighestBid)

	// the refund waits as a pending withdrawal
	balance, pending := env.ledger.Balance(bidder1)
	require.Equal(t, int64(980), balance)
	require.Equal(t, int64(20), pending)
	env.conservation(t, id)

	require.Len(t, env.sink.bids, 2)
	require.True(t, env.sink.bids[1].RefundParked)

	// and is claimable later
	claimed, err := env.ledger.ClaimWithdrawal(bidder1)
	require.NoError(t, err)
	require.Equal(t, int64(20), claimed)
	balance, pending = env.ledger.Balance(bidder1)
	require.Equal(t, int64(1000), balance)
	require.Equal(t, int64(0), pending)

	// bidding continues normally above the parked refund
	env.ledger.SetRejectIncoming(bidder1, false)
	require.NoError(t, env.engine.PlaceBid(ctx, id, bidder1, 100))
	env.conservation(t, id)
}

func TestEngine_payoutParkedWhenSellerRejects(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	id, err := env.registry.CreateAuction(1, 10*time.Second, 0, seller)
	require.NoError(t, err)
	require.NoError(t, env.engine.PlaceBid(ctx, id, bidder1, 30))
	env.ledger.SetRejectIncoming(seller, true)
	env.clock.Advance(10 * time.Second)

	require.NoError(t, env.engine.EndAuction(ctx, id, bidder2))
	// the winner still gets the asset, the proceeds wait for the seller
	require.Equal(t, []core.AssetID{1}, env.owners.AssetsOf(bidder1))
	balance, pending := env.ledger.Balance(seller)
	require.Equal(t, int64(0), balance)
	require.Equal(t, int64(30), pending)
	env.conservation(t, id)
}

func TestEngine_concurrentBidsOnDistinctAuctions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	id1, err := env.registry.CreateAuction(1, time.Hour, 0, seller)
	require.NoError(t, err)
	id2, err := env.registry.CreateAuction(2, time.Hour, 0, seller)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 1; i <= 50; i++ {
		wg.Add(2)
		amount := int64(i)
		go func() {
			defer wg.Done()
			_ = env.engine.PlaceBid(ctx, id1, bidder1, amount)
		}()
		go func() {
			defer wg.Done()
			_ = env.engine.PlaceBid(ctx, id2, bidder2, amount)
		}()
	}
	wg.Wait()

	a1, err := env.registry.Get(id1)
	require.NoError(t, err)
	a2, err := env.registry.Get(id2)
	require.NoError(t, err)
	// whatever interleaving happened, exactly the highest accepted bid is escrowed
	require.Equal(t, a1.HighestBid, env.ledger.EscrowBalance(id1))
	require.Equal(t, a2.HighestBid, env.ledger.EscrowBalance(id2))
	env.conservation(t, id1, id2)
}
