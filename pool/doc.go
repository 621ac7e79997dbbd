// Package pool provides a bounded, per-destination connection pool.
//
// A Pool hands out connections keyed by destination address and caps the
// number of simultaneous connections per destination. Acquire reuses the
// most recently released idle connection when one exists, dials a new one
// while the destination is under its cap, and otherwise blocks until a
// connection comes back or the context is done. There is no limit across
// destinations: a pool serving many destinations may hold cap connections
// to each of them at once.
//
// # Lifecycle
//
// A pool starts closed. Open makes it usable, Close disconnects every idle
// connection and returns it to the closed state, and a closed pool can be
// opened again from empty. Close requires that every connection has been
// released back; closing while a connection is still held is a usage error.
//
// Usage errors never surface as return values. Acquiring or releasing on a
// closed pool, opening an open pool, releasing a connection twice, and
// closing while connections are held all panic, the same way the standard
// library's sql.DB treats a connection returned that was never out.
//
// # Connections
//
// The pool knows nothing about transports. Callers supply a Connector that
// dials and tears down connections of some comparable type C; the pool
// tracks equality of C values to detect double release. Connect errors are
// returned to the Acquire caller unmodified, and the reserved slot is freed
// so another caller can try.
//
// # Usage
//
//	p, err := pool.New[net.Conn](connector, pool.Config{MaxPerDest: 4})
//	if err != nil {
//	    return err
//	}
//	p.Open()
//	defer p.Close(ctx)
//
//	err = p.With(ctx, "10.0.0.7:22", func(ctx context.Context, conn net.Conn) error {
//	    return doWork(ctx, conn)
//	})
package pool
