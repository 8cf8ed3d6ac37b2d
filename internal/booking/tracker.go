// Package booking tracks the payment deadline of booked orders. Each order's
// countdown is seeded from the server, decremented locally once per tick, and
// reconciled against the server when it reaches zero.
package booking

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/tarasboiko2005/AirportAPI/internal/logging"
	"github.com/tarasboiko2005/AirportAPI/pkg/domain"
)

// State is the local lifecycle of a tracked order.
type State int

const (
	Untracked State = iota
	Counting
	ExpiredPending
)

func (s State) String() string {
	switch s {
	case Counting:
		return "counting"
	case ExpiredPending:
		return "expired"
	default:
		return "untracked"
	}
}

// ErrSuperseded is returned by Reconcile when the tracked set was replaced
// while its fetch was in flight; the fetched collection is not applied.
var ErrSuperseded = errors.New("booking: reconciliation superseded")

// OrderLister fetches the caller's complete order collection.
type OrderLister interface {
	ListAllOrders(ctx context.Context) ([]domain.Order, error)
}

// Entry is a point-in-time view of one tracked order.
type Entry struct {
	OrderID   int64
	Remaining int
	State     State
}

type entry struct {
	remaining int
	state     State
}

// Tracker holds one countdown per booked order.
type Tracker struct {
	lister   OrderLister
	interval time.Duration
	limiter  *rate.Limiter
	stopWhen func(error) bool
	log      zerolog.Logger

	mu          sync.Mutex
	entries     map[int64]*entry
	reconciling bool
	epoch       uint64 // bumped by every Observe
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithInterval sets the tick period. The reconciliation limiter follows it.
func WithInterval(d time.Duration) Option {
	return func(t *Tracker) { t.interval = d }
}

// WithLimiter overrides the reconciliation limiter.
func WithLimiter(l *rate.Limiter) Option {
	return func(t *Tracker) { t.limiter = l }
}

// StopWhen makes Run return once a reconciliation error satisfies fn.
func StopWhen(fn func(error) bool) Option {
	return func(t *Tracker) { t.stopWhen = fn }
}

// NewTracker creates an empty tracker that reconciles through lister.
func NewTracker(lister OrderLister, opts ...Option) *Tracker {
	t := &Tracker{
		lister:   lister,
		interval: time.Second,
		entries:  make(map[int64]*entry),
		log:      logging.With("booking"),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.limiter == nil {
		t.limiter = rate.NewLimiter(rate.Every(t.interval), 1)
	}
	return t
}

// Interval returns the tick period.
func (t *Tracker) Interval() time.Duration {
	return t.interval
}

// Observe replaces the tracked set from an authoritative order collection.
// Booked orders with a server countdown are (re)seeded; everything else,
// including orders missing from the collection, stops being tracked.
func (t *Tracker) Observe(orders []domain.Order) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.observeLocked(orders)
}

func (t *Tracker) observeLocked(orders []domain.Order) {
	t.epoch++
	next := make(map[int64]*entry, len(orders))
	for _, o := range orders {
		secs, ok := o.Countdown()
		if !ok {
			continue
		}
		st := Counting
		if secs == 0 {
			st = ExpiredPending
		}
		next[o.ID] = &entry{remaining: secs, state: st}
	}
	for id := range t.entries {
		if _, ok := next[id]; !ok {
			t.log.Debug().Int64("order_id", id).Msg("order retired")
		}
	}
	t.entries = next
}

// Tick advances every countdown by one step and reports whether the caller
// should start a reconciliation. It never blocks on one in flight.
func (t *Tracker) Tick() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	pending := false
	for id, e := range t.entries {
		if e.state == Counting {
			if e.remaining > 0 {
				e.remaining--
			}
			if e.remaining == 0 {
				e.state = ExpiredPending
				t.log.Debug().Int64("order_id", id).Msg("reservation countdown reached zero")
			}
		}
		if e.state == ExpiredPending {
			pending = true
		}
	}

	if !pending || t.reconciling || !t.limiter.Allow() {
		return false
	}
	t.reconciling = true
	return true
}

// Reconcile fetches the full order collection and observes it. A failed
// fetch leaves pending entries for the next window and is returned for the
// caller to inspect, not to show. A fetch overtaken by a newer Observe
// returns ErrSuperseded.
func (t *Tracker) Reconcile(ctx context.Context) ([]domain.Order, error) {
	t.mu.Lock()
	epoch := t.epoch
	t.mu.Unlock()

	orders, err := t.lister.ListAllOrders(ctx)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.reconciling = false
	if err != nil {
		t.log.Warn().Err(err).Msg("order reconciliation failed")
		return nil, err
	}
	if t.epoch != epoch {
		t.log.Debug().Msg("discarding reconciliation overtaken by a newer observation")
		return nil, ErrSuperseded
	}
	t.observeLocked(orders)
	return orders, nil
}

// Run ticks until ctx is cancelled or a reconciliation error satisfies the
// stop predicate. Ticks stay periodic while a reconciliation is in flight.
func (t *Tracker) Run(ctx context.Context) error {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	stop := make(chan error, 1)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-stop:
			return err
		case <-ticker.C:
			if !t.Tick() {
				continue
			}
			go func() {
				if _, err := t.Reconcile(ctx); err != nil && t.stopWhen != nil && t.stopWhen(err) {
					select {
					case stop <- err:
					default:
					}
				}
			}()
		}
	}
}

// Remaining returns the local countdown for id.
func (t *Tracker) Remaining(id int64) (int, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[id]
	if !ok {
		return 0, false
	}
	return e.remaining, true
}

// State returns the local state for id.
func (t *Tracker) State(id int64) State {
	t.mu.Lock()
	defer t.mu.Unlock()
	if e, ok := t.entries[id]; ok {
		return e.state
	}
	return Untracked
}

// Len returns the number of tracked orders.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// Snapshot returns every tracked order, soonest deadline first.
func (t *Tracker) Snapshot() []Entry {
	t.mu.Lock()
	out := make([]Entry, 0, len(t.entries))
	for id, e := range t.entries {
		out = append(out, Entry{OrderID: id, Remaining: e.remaining, State: e.state})
	}
	t.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Remaining != out[j].Remaining {
			return out[i].Remaining < out[j].Remaining
		}
		return out[i].OrderID < out[j].OrderID
	})
	return out
}

// FormatRemaining renders seconds as m:ss.
func FormatRemaining(secs int) string {
	if secs < 0 {
		secs = 0
	}
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}
