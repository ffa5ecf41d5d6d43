package harness

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	stderrHeader = "------- stderr -------\n"
	eofMarker    = "[EOF]"
)

// ExitStatus is the exit status of a finished command. A process killed by
// a signal has Code -1 and a non-zero Signal.
type ExitStatus struct {
	Code   int
	Signal int
}

// Success reports whether the command exited with code 0.
func (s ExitStatus) Success() bool {
	return s.Code == 0 && s.Signal == 0
}

func (s ExitStatus) String() string {
	if s.Signal != 0 {
		return fmt.Sprintf("signal: %d", s.Signal)
	}
	return fmt.Sprintf("exit status: %d", s.Code)
}

// OutputString is one captured stream. It keeps the raw text for exact use
// (e.g. extracting a commit id) and a normalized view for snapshots.
type OutputString struct {
	raw        string
	normalized string
}

// NewOutputString wraps raw stream content. The normalized view starts out
// equal to the raw text.
func NewOutputString(raw []byte) OutputString {
	return OutputString{raw: string(raw), normalized: string(raw)}
}

// Raw returns the bytes exactly as the process wrote them.
func (s OutputString) Raw() string {
	return s.raw
}

// Normalized returns the text after all normalizations.
func (s OutputString) Normalized() string {
	return s.normalized
}

// IsEmpty reports whether the normalized text is empty.
func (s OutputString) IsEmpty() bool {
	return s.normalized == ""
}

// String renders the normalized text followed by an [EOF] marker, so a
// missing trailing newline is visible in snapshots. Empty streams render as
// nothing.
func (s OutputString) String() string {
	if s.IsEmpty() {
		return ""
	}
	return s.normalized + eofMarker + "\n"
}

// NormalizeWith returns a copy with f applied to the normalized text.
func (s OutputString) NormalizeWith(f func(string) string) OutputString {
	return OutputString{raw: s.raw, normalized: f(s.normalized)}
}

// NormalizeBackslash replaces backslashes with slashes.
func (s OutputString) NormalizeBackslash() OutputString {
	return s.NormalizeWith(func(text string) string {
		return strings.ReplaceAll(text, `\`, "/")
	})
}

// NormalizeEOL replaces CRLF line endings with LF.
func (s OutputString) NormalizeEOL() OutputString {
	return s.NormalizeWith(normalizeEOL)
}

// StripLastLine removes the last line of the normalized text.
func (s OutputString) StripLastLine() OutputString {
	return s.NormalizeWith(StripLastLine)
}

// TakeNLines keeps the first n lines of the normalized text.
func (s OutputString) TakeNLines(n int) OutputString {
	return s.NormalizeWith(func(text string) string {
		return takeNLines(text, n)
	})
}

// CommandOutput is the captured result of one command. It is a value: every
// method returns a new CommandOutput and leaves the receiver untouched.
type CommandOutput struct {
	Stdout OutputString
	Stderr OutputString
	Status ExitStatus
}

// NewCommandOutput builds a CommandOutput from raw process results.
func NewCommandOutput(status ExitStatus, stdout, stderr []byte) CommandOutput {
	return CommandOutput{
		Stdout: NewOutputString(stdout),
		Stderr: NewOutputString(stderr),
		Status: status,
	}
}

// String renders the output in snapshot form:
//
//	<stdout>[EOF]
//	------- stderr -------
//	<stderr>[EOF]
//	[exit status: N]
//
// The stderr block appears only when stderr is non-empty, the status line
// only when the command failed.
func (o CommandOutput) String() string {
	var b strings.Builder
	b.WriteString(o.Stdout.String())
	if !o.Stderr.IsEmpty() {
		b.WriteString(stderrHeader)
		b.WriteString(o.Stderr.String())
	}
	if !o.Status.Success() {
		fmt.Fprintf(&b, "[%s]\n", o.Status)
	}
	return b.String()
}

// Success returns o unchanged when the command exited with code 0. Otherwise
// it fails the test, reporting the exit code and both raw streams.
// msgAndArgs adds context to the failure, as in testify.
func (o CommandOutput) Success(tb testing.TB, msgAndArgs ...any) CommandOutput {
	tb.Helper()
	if !o.Status.Success() {
		summary := fmt.Sprintf("command exited with code %d", o.Status.Code)
		if o.Status.Signal != 0 {
			summary = fmt.Sprintf("command killed by signal %d", o.Status.Signal)
		}
		require.Fail(tb, summary+"\n"+o.rawDiagnostic(), msgAndArgs...)
	}
	return o
}

func (o CommandOutput) rawDiagnostic() string {
	return "------- stdout -------\n" + o.Stdout.Raw() + "\n" + stderrHeader + o.Stderr.Raw()
}

// NormalizeStdoutWith applies f to the normalized stdout.
func (o CommandOutput) NormalizeStdoutWith(f func(string) string) CommandOutput {
	o.Stdout = o.Stdout.NormalizeWith(f)
	return o
}

// NormalizeStderrWith applies f to the normalized stderr.
func (o CommandOutput) NormalizeStderrWith(f func(string) string) CommandOutput {
	o.Stderr = o.Stderr.NormalizeWith(f)
	return o
}

// StripStderrLastLine removes the last stderr line, typically an OS error
// message that differs across platforms.
func (o CommandOutput) StripStderrLastLine() CommandOutput {
	o.Stderr = o.Stderr.StripLastLine()
	return o
}

// NormalizeStderrExitStatus rewrites the Windows "exit code:" wording of
// child process failures to "exit status:".
func (o CommandOutput) NormalizeStderrExitStatus() CommandOutput {
	return o.NormalizeStderrWith(func(text string) string {
		return strings.ReplaceAll(text, "exit code:", "exit status:")
	})
}

// TakeStdoutNLines keeps the first n lines of stdout.
func (o CommandOutput) TakeStdoutNLines(n int) CommandOutput {
	o.Stdout = o.Stdout.TakeNLines(n)
	return o
}

// StripLastLine returns s with its last line removed. Trailing newlines are
// not counted as a line. Text without a line break before the last line is
// returned unchanged.
//
// Use this to drop a trailing error message with platform-specific content.
func StripLastLine(s string) string {
	i := strings.LastIndexByte(strings.TrimRight(s, "\n"), '\n')
	if i < 0 {
		return s
	}
	return s[:i+1]
}

func takeNLines(s string, n int) string {
	lines := strings.SplitAfter(s, "\n")
	if n < len(lines) {
		lines = lines[:n]
	}
	return strings.Join(lines, "")
}

func normalizeEOL(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}
