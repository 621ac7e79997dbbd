package node

import (
	"context"
	"io"
	"io/fs"

	"github.com/jonwraymond/nodeops/pool"
)

// Node executes commands and accesses files on one host.
//
// Contract:
// - Concurrency: a Node is owned by one operation at a time when handed out
//   by a pool; implementations need not support concurrent calls.
// - Context: every method must honor cancellation/deadlines. Timeouts are
//   imposed by the caller through ctx; nodes add none of their own.
// - Errors: Run fails only when the command could not be executed; a
//   non-zero exit comes back in Result.Code.
type Node interface {
	// Addr returns the address this node was dialed with. It is the
	// destination key used for pool capacity accounting.
	Addr() string

	// Run executes cmd and returns its captured output and exit code.
	Run(ctx context.Context, cmd Command) (*Result, error)

	// ReadFile returns the contents of the file at path.
	ReadFile(ctx context.Context, path string) ([]byte, error)

	// Open opens the file at path for streaming reads.
	Open(ctx context.Context, path string) (io.ReadCloser, error)

	// WriteFile writes content to path, creating parent directories as
	// needed.
	WriteFile(ctx context.Context, path string, content []byte) error

	// WriteTemp writes content to a fresh temporary file and returns its
	// path.
	WriteTemp(ctx context.Context, content []byte) (string, error)

	// Stat returns file metadata for path.
	Stat(ctx context.Context, path string) (fs.FileInfo, error)

	// Exists reports whether path exists.
	Exists(ctx context.Context, path string) (bool, error)

	// ListDir returns the full paths of the entries in the directory at
	// path.
	ListDir(ctx context.Context, path string) ([]string, error)

	// Close releases the node's underlying transport.
	Close(ctx context.Context) error
}

// DialFunc connects to the node at addr.
type DialFunc func(ctx context.Context, addr string) (Node, error)

// NewConnector adapts dial into a pool Connector: Connect dials the
// destination and Disconnect closes the node.
func NewConnector(dial DialFunc) pool.Connector[Node] {
	return connector{dial: dial}
}

type connector struct {
	dial DialFunc
}

func (c connector) Connect(ctx context.Context, dest string) (Node, error) {
	return c.dial(ctx, dest)
}

func (c connector) Disconnect(ctx context.Context, conn Node) error {
	return conn.Close(ctx)
}

// Copy writes the local file at localPath to remotePath on n.
func Copy(ctx context.Context, n Node, localPath, remotePath string) error {
	local := Local{}
	content, err := local.ReadFile(ctx, localPath)
	if err != nil {
		return err
	}
	return n.WriteFile(ctx, remotePath, content)
}

// CopyTemp writes the local file at localPath to a temporary file on n and
// returns the remote path.
func CopyTemp(ctx context.Context, n Node, localPath string) (string, error) {
	local := Local{}
	content, err := local.ReadFile(ctx, localPath)
	if err != nil {
		return "", err
	}
	return n.WriteTemp(ctx, content)
}
