package dotnet

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"mvdan.cc/sh/v3/syntax"

	nerrors "github.com/matzehuels/nugraph/pkg/errors"
)

// DefaultWaitDelay is how long a cancelled child may take to exit after the
// interrupt before it is killed.
const DefaultWaitDelay = 5 * time.Second

// Command is one process invocation.
type Command struct {
	Name string
	Args []string
	Dir  string   // working directory; empty means the current one
	Env  []string // KEY=VALUE pairs added to the inherited environment
}

// String renders the command line with shell quoting.
func (c Command) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	for _, s := range append([]string{c.Name}, c.Args...) {
		q, err := syntax.Quote(s, syntax.LangBash)
		if err != nil {
			q = s
		}
		parts = append(parts, q)
	}
	return strings.Join(parts, " ")
}

// Output is what a finished process produced.
type Output struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
	// JSON holds the top-level JSON objects found in stdout, in order.
	JSON []json.RawMessage
}

// Combined returns stderr when the process wrote any, else stdout.
func (o *Output) Combined() string {
	if len(bytes.TrimSpace(o.Stderr)) > 0 {
		return string(o.Stderr)
	}
	return string(o.Stdout)
}

// Runner runs processes to completion.
//
// A non-zero exit is not an error: it is reported in Output.ExitCode. Errors
// are returned when the process cannot be started and, wrapped as
// CANCELLED, when ctx ends first.
type Runner interface {
	Run(ctx context.Context, cmd Command) (*Output, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct {
	WaitDelay time.Duration

	command func(ctx context.Context, name string, args ...string) *exec.Cmd
}

// NewExecRunner creates a runner with the default wait delay.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{WaitDelay: DefaultWaitDelay, command: exec.CommandContext}
}

// Run starts cmd and waits for it. Stdout is decoded concurrently while it is
// buffered, so a chatty child never blocks on a full pipe.
func (r *ExecRunner) Run(ctx context.Context, c Command) (*Output, error) {
	newCmd := r.command
	if newCmd == nil {
		newCmd = exec.CommandContext
	}
	cmd := newCmd(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	cmd.Env = append(os.Environ(), c.Env...)
	cmd.Cancel = func() error {
		if err := cmd.Process.Signal(os.Interrupt); err != nil {
			return cmd.Process.Kill()
		}
		return nil
	}
	cmd.WaitDelay = r.WaitDelay
	if cmd.WaitDelay <= 0 {
		cmd.WaitDelay = DefaultWaitDelay
	}

	var stdout, stderr bytes.Buffer
	pr, pw := io.Pipe()
	cmd.Stdout = io.MultiWriter(&stdout, pw)
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		pw.Close()
		return nil, err
	}

	var objects []json.RawMessage
	var g errgroup.Group
	g.Go(func() error {
		objects = ScanJSON(pr)
		_, err := io.Copy(io.Discard, pr)
		return err
	})

	waitErr := cmd.Wait()
	pw.Close()
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if ctx.Err() != nil {
		return nil, nerrors.Cancelled(ctx.Err())
	}
	out := &Output{Stdout: stdout.Bytes(), Stderr: stderr.Bytes(), JSON: objects}
	if waitErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) {
			return nil, waitErr
		}
		out.ExitCode = exitErr.ExitCode()
	}
	return out, nil
}

// ScanJSON reads r to the end and returns every JSON object that starts on a
// line of its own. Other lines, such as build log text, are discarded, and a
// line that opens with '{' but does not start a valid object is skipped.
func ScanJSON(r io.Reader) []json.RawMessage {
	data, _ := io.ReadAll(r)
	var objects []json.RawMessage
	for pos := 0; pos < len(data); {
		next := lineEnd(data, pos)
		if trimmed := bytes.TrimSpace(data[pos:next]); len(trimmed) > 0 && trimmed[0] == '{' {
			dec := json.NewDecoder(bytes.NewReader(data[pos:]))
			var obj json.RawMessage
			if dec.Decode(&obj) == nil {
				objects = append(objects, obj)
				next = lineEnd(data, pos+int(dec.InputOffset()))
			}
		}
		pos = next
	}
	return objects
}

// lineEnd returns the offset just past the line containing data[pos].
func lineEnd(data []byte, pos int) int {
	if i := bytes.IndexByte(data[pos:], '\n'); i >= 0 {
		return pos + i + 1
	}
	return len(data)
}
