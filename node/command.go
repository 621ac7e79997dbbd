package node

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyCommand is returned by Run when the command has no arguments.
var ErrEmptyCommand = errors.New("node: command has no arguments")

// Command describes one command execution.
type Command struct {
	// Args is the argv; Args[0] is the program. Required.
	Args []string

	// Stdin is fed to the command's standard input when non-nil.
	Stdin []byte

	// Env holds extra environment variables merged over the node's
	// environment.
	Env map[string]string

	// Dir is the working directory. Empty means the node's default.
	Dir string

	// MergeStderr folds standard error into Result.Stdout, interleaved in
	// write order. Result.Stderr stays empty.
	MergeStderr bool
}

// Result is the captured outcome of a command execution.
type Result struct {
	Stdout []byte
	Stderr []byte
	Code   int
}

// CommandError reports a command that ran but exited non-zero.
type CommandError struct {
	Cmd    string
	Code   int
	Stderr []byte
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("node: %q exited with code %d", e.Cmd, e.Code)
	if stderr := strings.TrimSpace(string(e.Stderr)); stderr != "" {
		msg += ": " + stderr
	}
	return msg
}

// Output runs args on n and returns the command's stdout. A non-zero exit
// is returned as a *CommandError carrying the exit code and stderr.
func Output(ctx context.Context, n Node, args ...string) ([]byte, error) {
	res, err := n.Run(ctx, Command{Args: args})
	if err != nil {
		return nil, err
	}
	if res.Code != 0 {
		return nil, &CommandError{
			Cmd:    strings.Join(args, " "),
			Code:   res.Code,
			Stderr: res.Stderr,
		}
	}
	return res.Stdout, nil
}

// OutputString runs args on n and returns stdout as a string.
func OutputString(ctx context.Context, n Node, args ...string) (string, error) {
	out, err := Output(ctx, n, args...)
	return string(out), err
}

// OutputJSON runs args on n and decodes stdout into a value of type T.
func OutputJSON[T any](ctx context.Context, n Node, args ...string) (T, error) {
	var v T
	out, err := Output(ctx, n, args...)
	if err != nil {
		return v, err
	}
	if err := json.Unmarshal(bytes.TrimSpace(out), &v); err != nil {
		return v, fmt.Errorf("node: decode %q output: %w", strings.Join(args, " "), err)
	}
	return v, nil
}
