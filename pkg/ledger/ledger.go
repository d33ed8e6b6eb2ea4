package ledger

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/puzpuzpuz/xsync/v2"
	"go.uber.org/zap"

	"github.com/openbid/openbidapi/pkg/core"
)

var ledgerTimeHistogramVec = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "ledger_functions_time",
		Help:    "Ledger functions execution duration distribution in seconds",
		Buckets: []float64{0.0001, 0.001, 0.01, 0.05, 0.1, 1},
	},
	[]string{"method"},
)

// account keeps everything the ledger knows about one participant.
// balance is freely spendable, pending holds parked withdrawals the
// account has to claim explicitly.
type account struct {
	mu             sync.Mutex
	balance        int64
	pending        int64
	rejectIncoming bool
}

// escrowBucket holds value deposited into one auction and not yet
// refunded or paid out.
type escrowBucket struct {
	mu     sync.Mutex
	amount int64
}

// Ledger is the in-memory value-transfer substrate. Every unit that
// enters an escrow bucket leaves it through exactly one of Release or
// Park, which is what makes the conservation property checkable.
type Ledger struct {
	logger   *zap.Logger
	clock    Clock
	accounts *xsync.MapOf[core.AccountID, *account]
	escrow   *xsync.MapOf[core.AuctionID, *escrowBucket]
}

type Options struct {
	clock   Clock
	genesis []GenesisAccount
}

type Option func(o *Options)

// WithClock overrides the wall clock, tests use a manual one.
func WithClock(c Clock) Option {
	return func(o *Options) {
		o.clock = c
	}
}

// WithGenesisAccounts seeds balances before the ledger serves traffic.
func WithGenesisAccounts(accounts []GenesisAccount) Option {
	return func(o *Options) {
		o.genesis = accounts
	}
}

func NewLedger(logger *zap.Logger, opts ...Option) *Ledger {
	o := &Options{}
	for i := range opts {
		opts[i](o)
	}
	if o.clock == nil {
		o.clock = SystemClock()
	}
	l := &Ledger{
		logger:   logger,
		clock:    o.clock,
		accounts: xsync.NewTypedMapOf[core.AccountID, *account](hashAccountID),
		escrow:   xsync.NewIntegerMapOf[core.AuctionID, *escrowBucket](),
	}
	for _, g := range o.genesis {
		l.Deposit(g.ID, g.Balance)
	}
	return l
}

func (l *Ledger) Clock() Clock {
	return l.clock
}

func (l *Ledger) observe(method string) *prometheus.Timer {
	return prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		ledgerTimeHistogramVec.WithLabelValues(method).Observe(v)
	}))
}

func (l *Ledger) acc(id core.AccountID) *account {
	a, _ := l.accounts.LoadOrCompute(id, func() *account {
		return &account{}
	})
	return a
}

func (l *Ledger) bucket(id core.AuctionID) *escrowBucket {
	b, _ := l.escrow.LoadOrCompute(id, func() *escrowBucket {
		return &escrowBucket{}
	})
	return b
}

// Deposit credits freely spendable value to an account. Used for genesis
// balances and by tests; bids themselves only move value that is already
// on the ledger.
func (l *Ledger) Deposit(id core.AccountID, amount int64) {
	if amount <= 0 {
		return
	}
	a := l.acc(id)
	a.mu.Lock()
	a.balance += amount
	a.mu.Unlock()
}

// Balance returns the spendable and pending-withdrawal balances. Unknown
// accounts simply hold zero.
func (l *Ledger) Balance(id core.AccountID) (balance, pending int64) {
	a, ok := l.accounts.Load(id)
	if !ok {
		return 0, 0
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.balance, a.pending
}

// SetRejectIncoming marks an account as refusing incoming transfers.
// Models a refund recipient that cannot be paid; releases to it fail with
// ErrTransferRejected while claims keep working (a claim is a pull).
func (l *Ledger) SetRejectIncoming(id core.AccountID, reject bool) {
	a := l.acc(id)
	a.mu.Lock()
	a.rejectIncoming = reject
	a.mu.Unlock()
}

// EscrowDeposit moves value from an account into an auction's escrow.
func (l *Ledger) EscrowDeposit(auctionID core.AuctionID, from core.AccountID, amount int64) error {
	defer l.observe("escrow_deposit").ObserveDuration()
	if amount <= 0 {
		return fmt.Errorf("non-positive escrow deposit %d", amount)
	}
	b := l.bucket(auctionID)
	a := l.acc(from)
	b.mu.Lock()
	defer b.mu.Unlock()
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.balance < amount {
		return core.ErrInsufficientFunds
	}
	a.balance -= amount
	b.amount += amount
	return nil
}

// EscrowRelease moves previously escrowed value to an account. On failure
// the escrowed amount stays in the bucket untouched.
func (l *Ledger) EscrowRelease(auctionID core.AuctionID, to core.AccountID, amount int64) error {
	defer l.observe("escrow_release").ObserveDuration()
	if amount <= 0 {
		return fmt.Errorf("non-positive escrow release %d", amount)
	}
	b := l.bucket(auctionID)
	a := l.acc(to)
	b.mu.Lock()
	defer b.mu.Unlock()
	a.mu.Lock()
	defer a.mu.Unlock()
	if b.amount < amount {
		return fmt.Errorf("escrow underflow: auction %d holds %d, release of %d requested", auctionID, b.amount, amount)
	}
	if a.rejectIncoming {
		return core.ErrTransferRejected
	}
	b.amount -= amount
	a.balance += amount
	return nil
}

// ParkWithdrawal moves escrowed value into the recipient's pending
// balance. Unlike EscrowRelease it cannot be refused: pending value is
// held by the system until the recipient claims it.
func (l *Ledger) ParkWithdrawal(auctionID core.AuctionID, to core.AccountID, amount int64) error {
	defer l.observe("park_withdrawal").ObserveDuration()
	if amount <= 0 {
		return fmt.Errorf("non-positive withdrawal %d", amount)
	}
	b := l.bucket(auctionID)
	a := l.acc(to)
	b.mu.Lock()
	defer b.mu.Unlock()
	a.mu.Lock()
	defer a.mu.Unlock()
	if b.amount < amount {
		return fmt.Errorf("escrow underflow: auction %d holds %d, park of %d requested", auctionID, b.amount, amount)
	}
	b.amount -= amount
	a.pending += amount
	l.logger.Warn("parked withdrawal",
		zap.Int64("auction", int64(auctionID)),
		zap.String("account", to.String()),
		zap.Int64("amount", amount))
	return nil
}

// ClaimWithdrawal moves the caller's whole pending balance back into the
// spendable balance and returns the claimed amount.
func (l *Ledger) ClaimWithdrawal(id core.AccountID) (int64, error) {
	defer l.observe("claim_withdrawal").ObserveDuration()
	a, ok := l.accounts.Load(id)
	if !ok {
		return 0, core.ErrNothingToWithdraw
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.pending == 0 {
		return 0, core.ErrNothingToWithdraw
	}
	claimed := a.pending
	a.pending = 0
	a.balance += claimed
	return claimed, nil
}

// EscrowBalance reports the value currently held for one auction.
func (l *Ledger) EscrowBalance(auctionID core.AuctionID) int64 {
	b, ok := l.escrow.Load(auctionID)
	if !ok {
		return 0
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.amount
}
