// Package inventory loads and saves the TOML fleet inventory.
//
// An Inventory names the nodes a fleet operation runs against and carries
// the pool sizing used to reach them. Addrs feeds the destination list
// straight into the fanout package, and FilterByLabel narrows a fleet to
// the nodes carrying a label.
//
// # Usage
//
//	inv, err := inventory.Load("fleet.toml")
//	if err != nil {
//	    return err
//	}
//	p, err := pool.New[node.Node](connector, inv.Pool.Config())
//	...
//	results, err := fanout.All(ctx, p, inv.Addrs(), op)
package inventory
