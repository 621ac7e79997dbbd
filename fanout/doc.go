// Package fanout runs one operation against many destinations over a
// shared connection pool.
//
// Both combinators respect the pool's per-destination cap, return outputs
// in the order the destinations were given regardless of completion order,
// and release every connection they acquire. They differ in how failures
// surface:
//
//   - All is fail-fast: every destination still runs to completion, but if
//     any failed the call reports the first error in destination order and
//     yields no results. Fail-fast is about reporting, not about cancelling
//     in-flight peers.
//
//   - Collect is resilient: every destination gets an Outcome carrying its
//     result or its error, including acquisition errors, and the call
//     itself never fails.
//
// # Usage
//
//	results, err := fanout.All(ctx, p, addrs, func(ctx context.Context, dest string, conn node.Node) (string, error) {
//	    out, err := node.OutputString(ctx, conn, "uname", "-r")
//	    return strings.TrimSpace(out), err
//	})
package fanout
