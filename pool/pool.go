package pool

import (
	"context"
	"fmt"
	"sync"
)

// Connector establishes and tears down connections to destinations.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use; the pool
//   calls Connect from many goroutines at once. Disconnect runs with the
//   pool's internal lock held and must not call back into the pool.
// - Context: Connect must honor cancellation/deadlines. Disconnect receives
//   the context passed to Close.
// - Errors: a Connect error is returned to the Acquire caller unmodified.
type Connector[C comparable] interface {
	// Connect establishes a new connection to dest.
	Connect(ctx context.Context, dest string) (C, error)

	// Disconnect tears down a connection previously returned by Connect.
	Disconnect(ctx context.Context, conn C) error
}

// ConnectorFuncs is an adapter to allow ordinary functions to be used as a
// Connector. A nil DisconnectFunc means connections need no teardown.
type ConnectorFuncs[C comparable] struct {
	ConnectFunc    func(ctx context.Context, dest string) (C, error)
	DisconnectFunc func(ctx context.Context, conn C) error
}

// Connect establishes a new connection to dest.
func (f ConnectorFuncs[C]) Connect(ctx context.Context, dest string) (C, error) {
	return f.ConnectFunc(ctx, dest)
}

// Disconnect tears down a connection.
func (f ConnectorFuncs[C]) Disconnect(ctx context.Context, conn C) error {
	if f.DisconnectFunc == nil {
		return nil
	}
	return f.DisconnectFunc(ctx, conn)
}

var _ Connector[int] = ConnectorFuncs[int]{}

// Config configures the pool.
type Config struct {
	// MaxPerDest is the maximum number of simultaneous connections per
	// destination. Required: must be at least 1.
	MaxPerDest int

	// MaxTotal is an overall connection budget across destinations. It is
	// recorded so fleet tooling can size itself from one config, but the
	// pool does not enforce it; only MaxPerDest gates admission.
	MaxTotal int
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.MaxPerDest < 1 {
		return ErrInvalidCapacity
	}
	return nil
}

// Pool is a bounded, per-destination connection pool.
//
// For every destination the pool tracks the connections it has issued
// (outstanding) and the released ones available for reuse (idle). A single
// mutex guards all state, so the free-list check and the decision to wait
// are atomic with respect to Release: a release between the check and the
// wait cannot be missed.
//
// All state is per instance. Independent pools never share connections or
// counters, even for the same destination.
type Pool[C comparable] struct {
	connector Connector[C]
	config    Config

	mu          sync.Mutex
	opened      bool
	free        map[string][]C // idle connections, most recently released last
	outstanding map[string]int // issued and not yet disconnected
	waiters     map[string][]chan struct{}
	waitCount   int64
}

// New creates a pool that uses connector to establish and tear down
// connections. The pool starts closed; call Open before use.
func New[C comparable](connector Connector[C], config Config) (*Pool[C], error) {
	if connector == nil {
		return nil, ErrNilConnector
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Pool[C]{
		connector:   connector,
		config:      config,
		free:        make(map[string][]C),
		outstanding: make(map[string]int),
		waiters:     make(map[string][]chan struct{}),
	}, nil
}

// Open makes the pool available for Acquire and Release.
// Open panics if the pool is already open.
func (p *Pool[C]) Open() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.opened {
		panic("pool: already open")
	}
	p.opened = true
}

// Close verifies that every destination has all of its connections back,
// disconnects every idle connection, and returns the pool to the closed
// state. The verification covers all destinations before the first
// disconnect, so a close that panics has torn nothing down. A reopened
// pool starts empty.
//
// Close panics if the pool is not open or if any connection is still held.
// A Disconnect error aborts Close: the pool stays open and connections
// disconnected before the failure are still listed as idle.
func (p *Pool[C]) Close(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.opened {
		panic("pool: close of closed pool")
	}
	for dest, n := range p.outstanding {
		if held := n - len(p.free[dest]); held != 0 {
			panic(fmt.Sprintf("pool: close with %d connection(s) still held for %s", held, dest))
		}
	}

	for dest, conns := range p.free {
		for _, conn := range conns {
			if err := p.connector.Disconnect(ctx, conn); err != nil {
				return fmt.Errorf("pool: disconnect %s: %w", dest, err)
			}
		}
	}

	p.free = make(map[string][]C)
	p.outstanding = make(map[string]int)
	p.waiters = make(map[string][]chan struct{})
	p.opened = false
	return nil
}

// Acquire returns a connection to dest. The most recently released idle
// connection is reused when one exists; otherwise a new connection is
// dialed while dest is under MaxPerDest, and past the cap Acquire blocks
// until a connection is released or ctx is done. A Connect error frees the
// reserved slot and is returned unmodified.
//
// Acquire panics if the pool is not open.
func (p *Pool[C]) Acquire(ctx context.Context, dest string) (C, error) {
	var zero C
	for {
		p.mu.Lock()
		if !p.opened {
			p.mu.Unlock()
			panic("pool: acquire on closed pool")
		}

		if conns := p.free[dest]; len(conns) > 0 {
			conn := conns[len(conns)-1]
			p.free[dest] = conns[:len(conns)-1]
			p.mu.Unlock()
			return conn, nil
		}

		if p.outstanding[dest] < p.config.MaxPerDest {
			// Reserve the slot, then dial outside the lock.
			p.outstanding[dest]++
			p.mu.Unlock()

			conn, err := p.connector.Connect(ctx, dest)
			if err != nil {
				p.mu.Lock()
				p.outstanding[dest]--
				if p.outstanding[dest] == 0 {
					delete(p.outstanding, dest)
				}
				// The slot is free again; a parked waiter can take it.
				p.wakeLocked(dest)
				p.mu.Unlock()
				return zero, err
			}
			return conn, nil
		}

		// At capacity: park until a release or a freed slot wakes us, then
		// retry from the top. The channel is buffered so a wake never
		// blocks the releaser.
		ready := make(chan struct{}, 1)
		p.waiters[dest] = append(p.waiters[dest], ready)
		p.waitCount++
		p.mu.Unlock()

		select {
		case <-ready:
		case <-ctx.Done():
			p.mu.Lock()
			p.dropWaiterLocked(dest, ready)
			p.mu.Unlock()
			return zero, ctx.Err()
		}
	}
}

// Release returns a connection to dest's idle list and wakes one waiter.
//
// Release panics if the pool is not open, if conn is already idle (released
// twice), or if dest has no connection out that could be returned.
func (p *Pool[C]) Release(dest string, conn C) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.opened {
		panic("pool: release on closed pool")
	}
	for _, idle := range p.free[dest] {
		if idle == conn {
			panic("pool: connection released twice")
		}
	}
	if p.outstanding[dest] <= len(p.free[dest]) {
		panic("pool: connection was never acquired from this pool")
	}

	p.free[dest] = append(p.free[dest], conn)
	p.wakeLocked(dest)
}

// With acquires a connection to dest, runs fn with it, and releases the
// connection whether or not fn succeeds. The Acquire error or fn's error
// is returned.
func (p *Pool[C]) With(ctx context.Context, dest string, fn func(context.Context, C) error) error {
	conn, err := p.Acquire(ctx, dest)
	if err != nil {
		return err
	}
	defer p.Release(dest, conn)

	return fn(ctx, conn)
}

// wakeLocked signals the oldest waiter for dest, if any.
func (p *Pool[C]) wakeLocked(dest string) {
	q := p.waiters[dest]
	if len(q) == 0 {
		return
	}
	ready := q[0]
	if len(q) == 1 {
		delete(p.waiters, dest)
	} else {
		p.waiters[dest] = q[1:]
	}
	ready <- struct{}{}
}

// dropWaiterLocked deregisters a waiter whose context was cancelled. If a
// wakeup already reached it, the wakeup is passed to the next waiter so no
// release is lost.
func (p *Pool[C]) dropWaiterLocked(dest string, ready chan struct{}) {
	q := p.waiters[dest]
	for i, w := range q {
		if w == ready {
			q = append(q[:i], q[i+1:]...)
			if len(q) == 0 {
				delete(p.waiters, dest)
			} else {
				p.waiters[dest] = q
			}
			return
		}
	}

	select {
	case <-ready:
		p.wakeLocked(dest)
	default:
	}
}

// Metrics returns a snapshot of pool state aggregated across destinations.
func (p *Pool[C]) Metrics() Metrics {
	p.mu.Lock()
	defer p.mu.Unlock()

	m := Metrics{
		Destinations: len(p.outstanding),
		MaxPerDest:   p.config.MaxPerDest,
		WaitCount:    p.waitCount,
	}
	for _, n := range p.outstanding {
		m.Outstanding += n
	}
	for _, conns := range p.free {
		m.Idle += len(conns)
	}
	for _, q := range p.waiters {
		m.Waiting += len(q)
	}
	m.InUse = m.Outstanding - m.Idle
	return m
}

// Metrics contains pool statistics.
type Metrics struct {
	// Destinations is the number of destinations with connections out.
	Destinations int

	// Outstanding is the number of connections issued and not disconnected.
	Outstanding int

	// Idle is the number of released connections available for reuse.
	Idle int

	// InUse is the number of connections currently held by callers.
	InUse int

	// Waiting is the number of Acquire calls currently parked.
	Waiting int

	// WaitCount is the cumulative number of times an Acquire parked.
	WaitCount int64

	// MaxPerDest is the configured per-destination cap.
	MaxPerDest int
}
