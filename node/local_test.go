package node

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLocal_Run(t *testing.T) {
	l := &Local{}

	res, err := l.Run(context.Background(), Command{Args: []string{"echo", "hello"}})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := string(res.Stdout); got != "hello\n" {
		t.Errorf("Stdout = %q, want %q", got, "hello\n")
	}
	if res.Code != 0 {
		t.Errorf("Code = %d, want 0", res.Code)
	}
}

func TestLocal_Run_ExitCode(t *testing.T) {
	l := &Local{}

	res, err := l.Run(context.Background(), Command{Args: []string{"sh", "-c", "exit 3"}})
	if err != nil {
		t.Fatalf("Run() error = %v, non-zero exit must not be an error", err)
	}
	if res.Code != 3 {
		t.Errorf("Code = %d, want 3", res.Code)
	}
}

func TestLocal_Run_Stdin(t *testing.T) {
	l := &Local{}

	res, err := l.Run(context.Background(), Command{
		Args:  []string{"cat"},
		Stdin: []byte("from stdin"),
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := string(res.Stdout); got != "from stdin" {
		t.Errorf("Stdout = %q, want %q", got, "from stdin")
	}
}

func TestLocal_Run_MergeStderr(t *testing.T) {
	l := &Local{}

	res, err := l.Run(context.Background(), Command{
		Args:        []string{"sh", "-c", "echo out; echo err 1>&2"},
		MergeStderr: true,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := string(res.Stdout); got != "out\nerr\n" {
		t.Errorf("Stdout = %q, want stderr folded in", got)
	}
	if len(res.Stderr) != 0 {
		t.Errorf("Stderr = %q, want empty when merged", res.Stderr)
	}
}

func TestLocal_Run_Stderr(t *testing.T) {
	l := &Local{}

	res, err := l.Run(context.Background(), Command{
		Args: []string{"sh", "-c", "echo err 1>&2"},
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := string(res.Stderr); got != "err\n" {
		t.Errorf("Stderr = %q, want %q", got, "err\n")
	}
	if len(res.Stdout) != 0 {
		t.Errorf("Stdout = %q, want empty", res.Stdout)
	}
}

func TestLocal_Run_Env(t *testing.T) {
	l := &Local{}

	res, err := l.Run(context.Background(), Command{
		Args: []string{"sh", "-c", `printf %s "$NODEOPS_TEST"`},
		Env:  map[string]string{"NODEOPS_TEST": "injected"},
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := string(res.Stdout); got != "injected" {
		t.Errorf("Stdout = %q, want %q", got, "injected")
	}
}

func TestLocal_Run_Dir(t *testing.T) {
	l := &Local{}
	dir := t.TempDir()

	res, err := l.Run(context.Background(), Command{
		Args: []string{"pwd"},
		Dir:  dir,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	got := strings.TrimSpace(string(res.Stdout))
	// The temp dir may be reported through a symlink.
	want, _ := filepath.EvalSymlinks(dir)
	if gotResolved, _ := filepath.EvalSymlinks(got); gotResolved != want {
		t.Errorf("pwd = %q, want %q", got, dir)
	}
}

func TestLocal_Run_EmptyCommand(t *testing.T) {
	l := &Local{}

	if _, err := l.Run(context.Background(), Command{}); err != ErrEmptyCommand {
		t.Errorf("Run() error = %v, want ErrEmptyCommand", err)
	}
}

func TestLocal_Run_ContextTimeout(t *testing.T) {
	l := &Local{}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := l.Run(ctx, Command{Args: []string{"sleep", "10"}})
	if err != context.DeadlineExceeded {
		t.Errorf("Run() error = %v, want context.DeadlineExceeded", err)
	}
}

func TestLocal_FileRoundTrip(t *testing.T) {
	l := &Local{}
	ctx := context.Background()

	// WriteFile creates missing parent directories.
	path := filepath.Join(t.TempDir(), "deep", "nested", "conf.toml")
	if err := l.WriteFile(ctx, path, []byte("key = 1\n")); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	got, err := l.ReadFile(ctx, path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(got) != "key = 1\n" {
		t.Errorf("ReadFile() = %q, want %q", got, "key = 1\n")
	}

	info, err := l.Stat(ctx, path)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if info.Size() != int64(len("key = 1\n")) {
		t.Errorf("Stat().Size() = %d, want %d", info.Size(), len("key = 1\n"))
	}

	exists, err := l.Exists(ctx, path)
	if err != nil || !exists {
		t.Errorf("Exists() = %v, %v, want true", exists, err)
	}
	exists, err = l.Exists(ctx, path+".missing")
	if err != nil || exists {
		t.Errorf("Exists(missing) = %v, %v, want false", exists, err)
	}
}

func TestLocal_WriteTemp(t *testing.T) {
	dir := t.TempDir()
	l := &Local{TempDir: dir}
	ctx := context.Background()

	path, err := l.WriteTemp(ctx, []byte("scratch"))
	if err != nil {
		t.Fatalf("WriteTemp() error = %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Errorf("WriteTemp() path = %q, want inside %q", path, dir)
	}

	got, err := os.ReadFile(path)
	if err != nil || string(got) != "scratch" {
		t.Errorf("temp file contents = %q, %v, want %q", got, err, "scratch")
	}
}

func TestLocal_ListDir(t *testing.T) {
	l := &Local{}
	ctx := context.Background()
	dir := t.TempDir()

	for _, name := range []string{"a.log", "b.log"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	paths, err := l.ListDir(ctx, dir)
	if err != nil {
		t.Fatalf("ListDir() error = %v", err)
	}
	want := []string{filepath.Join(dir, "a.log"), filepath.Join(dir, "b.log")}
	if len(paths) != 2 || paths[0] != want[0] || paths[1] != want[1] {
		t.Errorf("ListDir() = %v, want %v", paths, want)
	}
}

func TestLocal_Open(t *testing.T) {
	l := &Local{}
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "stream.txt")
	if err := os.WriteFile(path, []byte("streamed"), 0o644); err != nil {
		t.Fatal(err)
	}

	rc, err := l.Open(ctx, path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer rc.Close()

	got, err := io.ReadAll(rc)
	if err != nil || string(got) != "streamed" {
		t.Errorf("Open() read = %q, %v, want %q", got, err, "streamed")
	}
}

func TestLocal_CancelledContext(t *testing.T) {
	l := &Local{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := l.ReadFile(ctx, "/etc/hostname"); err != context.Canceled {
		t.Errorf("ReadFile() error = %v, want context.Canceled", err)
	}
	if err := l.WriteFile(ctx, filepath.Join(t.TempDir(), "x"), nil); err != context.Canceled {
		t.Errorf("WriteFile() error = %v, want context.Canceled", err)
	}
}
