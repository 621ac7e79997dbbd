// Package node defines the transport contract for executing commands and
// moving files on hosts, plus a local implementation.
//
// A Node runs commands and does basic file work on one host. The package
// ships Local, which executes on the machine itself; remote transports
// (SSH, agents) implement the same interface elsewhere. NewConnector
// bridges any node dialer into a pool.Connector so a pool.Pool[node.Node]
// can manage per-host connection counts and the fanout package can sweep a
// fleet.
//
// # Commands
//
// Run takes a Command (argv, stdin, environment) and returns the captured
// output and exit code. A non-zero exit is data, not an error; Run fails
// only when the command could not be executed at all. The Output helpers
// add the common policy of treating non-zero exits as a *CommandError.
//
// # Usage
//
//	local := &node.Local{}
//	out, err := node.OutputString(ctx, local, "uname", "-r")
//
//	p, err := pool.New[node.Node](node.NewConnector(dial), pool.Config{MaxPerDest: 2})
package node
