package steamcmd

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os/exec"

	"golang.org/x/sync/errgroup"
)

// maxLineBytes bounds a single line of tool output
const maxLineBytes = 1024 * 1024

// Command describes a child process and where its output lines go
type Command struct {
	Path   string
	Args   []string
	Dir    string
	Stdout func(line string)
	Stderr func(line string)
}

// CommandRunner defines the interface for running external commands
// This allows mocking exec.Command in tests
type CommandRunner interface {
	// Run starts the command and blocks until it exits, returning its exit code.
	// A non-nil error means the process could not be started or waited on.
	Run(ctx context.Context, cmd Command) (int, error)
}

// ExecCommandRunner is the production implementation using os/exec.
// The child is not bound to ctx: once started it runs to completion.
type ExecCommandRunner struct{}

// Run executes the command, streaming stdout and stderr line by line
func (r *ExecCommandRunner) Run(ctx context.Context, c Command) (int, error) {
	if err := ctx.Err(); err != nil {
		return -1, err
	}

	cmd := exec.Command(c.Path, c.Args...)
	cmd.Dir = c.Dir

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return -1, err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return -1, err
	}

	if err := cmd.Start(); err != nil {
		return -1, err
	}

	// Both pipes must be drained before Wait closes them
	var g errgroup.Group
	g.Go(func() error { return forwardLines(stdout, c.Stdout) })
	g.Go(func() error { return forwardLines(stderr, c.Stderr) })
	_ = g.Wait()

	if err := cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		return -1, err
	}

	return 0, nil
}

// forwardLines calls sink for every non-empty line read from r. On a read
// error the remainder is discarded so the child never blocks on a full pipe.
func forwardLines(r io.Reader, sink func(string)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || sink == nil {
			continue
		}
		sink(line)
	}
	if err := scanner.Err(); err != nil {
		_, _ = io.Copy(io.Discard, r)
		return err
	}
	return nil
}

// Ensure ExecCommandRunner implements CommandRunner
var _ CommandRunner = (*ExecCommandRunner)(nil)
