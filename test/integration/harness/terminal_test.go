package harness_test

import (
	"fmt"
	"strconv"
	"strings"
	"testing"

	"jjtest/test/integration/harness"
)

func TestRunIn_HasNoTerminal(t *testing.T) {
	env := newFakeToolEnv(t)

	output := env.Run("tty").Success(t)

	harness.AssertOutput(t, output, "not a tty\n[EOF]\n")
}

func TestRunInTerminal(t *testing.T) {
	env := newFakeToolEnv(t)

	output := env.RunInTerminal(".", "tty").Success(t)

	harness.AssertOutput(t, output, "tty\n[EOF]\n")
}

func TestRunInTerminal_ExitStatus(t *testing.T) {
	env := newFakeToolEnv(t)

	output := env.RunInTerminal(".", "exit", "4")

	harness.AssertExitCode(t, output, 4)
	harness.AssertStdoutContains(t, output, "Error: exiting with 4\n")
	harness.AssertStderrEmpty(t, output)
}

func TestRunInTerminalWith_LargeStdin(t *testing.T) {
	env := newFakeToolEnv(t)
	const lines = 2000

	output := env.RunInTerminalWith(func(cmd *harness.Command) {
		cmd.Stdin = strings.Repeat("0123456789\n", lines)
	}, "readlines", strconv.Itoa(lines)).Success(t)

	harness.AssertStdoutContains(t, output, fmt.Sprintf("read %d lines\n", lines))
}
