package harness

import (
	"bytes"
	"errors"
	"io"
	"os/exec"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/creack/pty"
	"github.com/stretchr/testify/require"

	"jjtest/internal/logging"
)

// Command describes one invocation of the binary under test. It is built by
// the run methods, optionally adjusted by a RunWith callback, and consumed by
// the spawn.
type Command struct {
	// Dir is the working directory. Relative paths are taken from the
	// sandbox root.
	Dir  string
	Args []string
	// Env holds per-command overrides on top of the environment's.
	Env map[string]string
	// Stdin is written to the child's standard input. Empty means no input.
	Stdin string
}

// AddArgs appends arguments.
func (c *Command) AddArgs(args ...string) *Command {
	c.Args = append(c.Args, args...)
	return c
}

// SetEnv sets a variable for this command only.
func (c *Command) SetEnv(key, value string) *Command {
	if c.Env == nil {
		c.Env = make(map[string]string)
	}
	c.Env[key] = value
	return c
}

// Run runs the binary in the sandbox root.
func (e *TestEnvironment) Run(args ...string) CommandOutput {
	e.tb.Helper()
	return e.RunIn(".", args...)
}

// RunIn runs the binary in dir with args. A non-zero exit is returned like
// any other outcome; only a failure to spawn fails the test. The call blocks
// until the process exits.
func (e *TestEnvironment) RunIn(dir string, args ...string) CommandOutput {
	e.tb.Helper()
	return e.RunWith(func(cmd *Command) {
		cmd.Dir = dir
	}, args...)
}

// RunWith lets customize adjust the command (working directory, leading
// arguments, env, stdin) before args are appended and the binary runs.
func (e *TestEnvironment) RunWith(customize func(cmd *Command), args ...string) CommandOutput {
	e.tb.Helper()
	return e.run(e.newCommand(customize, args))
}

// RunInTerminal is RunIn with the child attached to a pseudo-terminal.
// Stdout and stderr are both read from the terminal and reported as stdout.
// The test is skipped where pseudo-terminals are unsupported.
func (e *TestEnvironment) RunInTerminal(dir string, args ...string) CommandOutput {
	e.tb.Helper()
	return e.RunInTerminalWith(func(cmd *Command) {
		cmd.Dir = dir
	}, args...)
}

// RunInTerminalWith is RunWith under a pseudo-terminal. Stdin is typed into
// the terminal while the output is read, so the terminal echoes it.
func (e *TestEnvironment) RunInTerminalWith(customize func(cmd *Command), args ...string) CommandOutput {
	e.tb.Helper()

	cmd := e.newCommand(customize, args)
	child, n := e.execCommand(cmd)

	start := time.Now()
	ptmx, err := pty.StartWithSize(child, &pty.Winsize{Rows: 24, Cols: 100})
	if errors.Is(err, pty.ErrUnsupported) {
		e.tb.Skipf("pseudo-terminals are not supported on %s", runtime.GOOS)
	}
	require.NoError(e.tb, err, "failed to start %s %v in a terminal", e.binary, cmd.Args)

	// The writer may block until the child reads, so it must not hold up
	// the reader. It ends at the latest when ptmx is closed.
	if cmd.Stdin != "" {
		go func() {
			_, _ = io.WriteString(ptmx, cmd.Stdin)
		}()
	}

	var out bytes.Buffer
	// Reading fails with EIO once the child side closes.
	_, _ = io.Copy(&out, ptmx)
	_ = ptmx.Close()

	status, err := exitStatus(child.Wait())
	require.NoError(e.tb, err, "failed to wait for %s %v", e.binary, cmd.Args)
	e.logCommand(n, child.Dir, cmd.Args, status, start)

	return NewCommandOutput(status, out.Bytes(), nil).
		NormalizeStdoutWith(e.NormalizeOutput)
}

func (e *TestEnvironment) newCommand(customize func(cmd *Command), args []string) *Command {
	cmd := &Command{Dir: e.root}
	if customize != nil {
		customize(cmd)
	}
	cmd.AddArgs(args...)
	return cmd
}

// execCommand turns the descriptor into an exec.Cmd and assigns the next
// command number.
func (e *TestEnvironment) execCommand(cmd *Command) (*exec.Cmd, int) {
	n := e.nextCommandNumber()
	child := exec.Command(e.binary, cmd.Args...)
	child.Dir = e.resolveDir(cmd.Dir)
	child.Env = e.environ(n, cmd.Env)
	return child, n
}

func (e *TestEnvironment) run(cmd *Command) CommandOutput {
	e.tb.Helper()

	child, n := e.execCommand(cmd)
	var stdout, stderr bytes.Buffer
	child.Stdout = &stdout
	child.Stderr = &stderr
	if cmd.Stdin != "" {
		child.Stdin = strings.NewReader(cmd.Stdin)
	}

	start := time.Now()
	status, err := exitStatus(child.Run())
	require.NoError(e.tb, err, "failed to run %s %v in %s", e.binary, cmd.Args, child.Dir)
	e.logCommand(n, child.Dir, cmd.Args, status, start)

	return NewCommandOutput(status, stdout.Bytes(), stderr.Bytes()).
		NormalizeStdoutWith(e.NormalizeOutput).
		NormalizeStderrWith(e.NormalizeOutput)
}

func (e *TestEnvironment) logCommand(n int, dir string, args []string, status ExitStatus, start time.Time) {
	logging.Logger.Debug("Command finished",
		"test", e.tb.Name(),
		"number", n,
		"dir", dir,
		"args", args,
		"exit_code", status.Code,
		"duration", time.Since(start))
}

// exitStatus separates a normal non-zero exit from a failure to run at all.
func exitStatus(err error) (ExitStatus, error) {
	if err == nil {
		return ExitStatus{}, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		status := ExitStatus{Code: exitErr.ExitCode()}
		if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
			status.Signal = int(ws.Signal())
		}
		return status, nil
	}
	return ExitStatus{Code: -1}, err
}
