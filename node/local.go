package node

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
)

// Local is the Node for the machine the process runs on. The zero value is
// ready to use.
type Local struct {
	// TempDir is where WriteTemp creates files. Empty means the system
	// temporary directory.
	TempDir string
}

var _ Node = (*Local)(nil)

// DialLocal is a DialFunc that ignores addr and returns a fresh Local
// node, so fleet code can be pointed at the local machine.
func DialLocal(ctx context.Context, addr string) (Node, error) {
	return &Local{}, nil
}

// Addr returns "localhost".
func (l *Local) Addr() string { return "localhost" }

func (l *Local) String() string { return "localhost" }

// Run executes cmd via os/exec, capturing output until the command exits
// or ctx is done.
func (l *Local) Run(ctx context.Context, cmd Command) (*Result, error) {
	if len(cmd.Args) == 0 {
		return nil, ErrEmptyCommand
	}

	c := exec.CommandContext(ctx, cmd.Args[0], cmd.Args[1:]...)
	c.Dir = cmd.Dir
	if len(cmd.Env) > 0 {
		c.Env = os.Environ()
		for k, v := range cmd.Env {
			c.Env = append(c.Env, k+"="+v)
		}
	}
	if cmd.Stdin != nil {
		c.Stdin = bytes.NewReader(cmd.Stdin)
	}

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	if cmd.MergeStderr {
		c.Stderr = &stdout
	} else {
		c.Stderr = &stderr
	}

	if err := c.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, err
		}
		return &Result{Stdout: stdout.Bytes(), Stderr: stderr.Bytes(), Code: exitErr.ExitCode()}, nil
	}
	return &Result{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}, nil
}

// ReadFile returns the contents of the file at path.
func (l *Local) ReadFile(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}

// Open opens the file at path for streaming reads.
func (l *Local) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.Open(path)
}

// WriteFile writes content to path, creating parent directories first.
func (l *Local) WriteFile(ctx context.Context, path string, content []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, content, 0o644)
}

// WriteTemp writes content to a fresh temporary file and returns its path.
func (l *Local) WriteTemp(ctx context.Context, content []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	f, err := os.CreateTemp(l.TempDir, "nodeops-*")
	if err != nil {
		return "", err
	}
	if _, err := f.Write(content); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return f.Name(), nil
}

// Stat returns file metadata for path.
func (l *Local) Stat(ctx context.Context, path string) (fs.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.Stat(path)
}

// Exists reports whether path exists.
func (l *Local) Exists(ctx context.Context, path string) (bool, error) {
	_, err := l.Stat(ctx, path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// ListDir returns the full paths of the entries in the directory at path.
func (l *Local) ListDir(ctx context.Context, path string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	paths := make([]string, len(entries))
	for i, e := range entries {
		paths[i] = filepath.Join(path, e.Name())
	}
	return paths, nil
}

// Close is a no-op; the local machine needs no teardown.
func (l *Local) Close(ctx context.Context) error { return nil }
