package inventory

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/jonwraymond/nodeops/pool"
)

// Default pool sizing used when the inventory file does not set its own.
const (
	DefaultMaxPerDest = 4
)

// Inventory describes a fleet: the nodes to operate on and how hard the
// pool may press each of them.
type Inventory struct {
	Pool  PoolConfig  `toml:"pool"`
	Nodes []NodeEntry `toml:"nodes"`
}

// PoolConfig carries connection pool sizing.
type PoolConfig struct {
	// MaxPerDest is the per-node connection cap.
	MaxPerDest int `toml:"max_per_dest"`
	// MaxTotal is a fleet-wide connection budget. It is carried through to
	// the pool, which records but does not enforce it.
	MaxTotal int `toml:"max_total,omitempty"`
}

// Config converts the sizing into a pool configuration.
func (c PoolConfig) Config() pool.Config {
	return pool.Config{MaxPerDest: c.MaxPerDest, MaxTotal: c.MaxTotal}
}

// NodeEntry identifies one node in the fleet.
type NodeEntry struct {
	// Addr is the destination address operations connect to (required,
	// unique within the inventory).
	Addr string `toml:"addr"`
	// Name is an optional human-readable identifier.
	Name string `toml:"name,omitempty"`
	// Labels tag the node for selection with FilterByLabel.
	Labels map[string]string `toml:"labels,omitempty"`
}

// Default returns an Inventory with default pool sizing and no nodes.
func Default() *Inventory {
	return &Inventory{
		Pool: PoolConfig{MaxPerDest: DefaultMaxPerDest},
	}
}

// Load reads an inventory from a TOML file. A missing file yields the
// default inventory.
func Load(path string) (*Inventory, error) {
	inv := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return inv, nil
		}
		return nil, fmt.Errorf("reading inventory file: %w", err)
	}

	if err := toml.Unmarshal(data, inv); err != nil {
		return nil, fmt.Errorf("parsing inventory file: %w", err)
	}

	if err := inv.Validate(); err != nil {
		return nil, fmt.Errorf("invalid inventory: %w", err)
	}

	return inv, nil
}

// Save writes the inventory to a TOML file, creating the parent directory
// if it doesn't exist.
func (inv *Inventory) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("creating inventory directory: %w", err)
	}

	data, err := toml.Marshal(inv)
	if err != nil {
		return fmt.Errorf("marshaling inventory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing inventory file: %w", err)
	}

	return nil
}

// Validate checks the inventory for errors.
func (inv *Inventory) Validate() error {
	if inv.Pool.MaxPerDest < 1 {
		return errors.New("pool.max_per_dest must be at least 1")
	}
	seen := make(map[string]bool, len(inv.Nodes))
	for i, n := range inv.Nodes {
		if n.Addr == "" {
			return fmt.Errorf("nodes[%d].addr is required", i)
		}
		if seen[n.Addr] {
			return fmt.Errorf("duplicate node address %q", n.Addr)
		}
		seen[n.Addr] = true
	}
	return nil
}

// Addrs returns every node address in inventory order, ready to hand to a
// fan-out call.
func (inv *Inventory) Addrs() []string {
	addrs := make([]string, len(inv.Nodes))
	for i, n := range inv.Nodes {
		addrs[i] = n.Addr
	}
	return addrs
}

// FilterByLabel returns a copy of the inventory holding only the nodes
// whose labels carry key=value. Pool sizing is carried over.
func (inv *Inventory) FilterByLabel(key, value string) *Inventory {
	out := &Inventory{Pool: inv.Pool}
	for _, n := range inv.Nodes {
		if n.Labels[key] == value {
			out.Nodes = append(out.Nodes, n)
		}
	}
	return out
}
