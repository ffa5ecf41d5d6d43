package harness

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertSuccess verifies the command succeeded with exit code 0.
// Unlike CommandOutput.Success it does not stop the test.
func AssertSuccess(tb testing.TB, output CommandOutput) {
	tb.Helper()
	assert.True(tb, output.Status.Success(),
		"Expected success (exit 0), got %d.\n%s", output.Status.Code, output.rawDiagnostic())
}

// AssertFailure verifies the command failed with non-zero exit code.
func AssertFailure(tb testing.TB, output CommandOutput) {
	tb.Helper()
	assert.False(tb, output.Status.Success(),
		"Expected failure (non-zero exit), got success.\nStdout: %s", output.Stdout.Raw())
}

// AssertExitCode verifies the command exited with a specific code.
func AssertExitCode(tb testing.TB, output CommandOutput, expected int) {
	tb.Helper()
	assert.Equal(tb, expected, output.Status.Code,
		"Expected exit code %d, got %d.\n%s", expected, output.Status.Code, output.rawDiagnostic())
}

// AssertOutput compares the snapshot form of output with expected.
func AssertOutput(tb testing.TB, output CommandOutput, expected string) {
	tb.Helper()
	assert.Equal(tb, expected, output.String())
}

// AssertStdoutContains verifies the normalized stdout contains the expected string.
func AssertStdoutContains(tb testing.TB, output CommandOutput, expected string) {
	tb.Helper()
	assert.Contains(tb, output.Stdout.Normalized(), expected,
		"Expected stdout to contain %q.\nActual stdout: %s", expected, output.Stdout.Normalized())
}

// AssertStdoutNotContains verifies the normalized stdout does not contain the string.
func AssertStdoutNotContains(tb testing.TB, output CommandOutput, unexpected string) {
	tb.Helper()
	assert.NotContains(tb, output.Stdout.Normalized(), unexpected,
		"Expected stdout NOT to contain %q.\nActual stdout: %s", unexpected, output.Stdout.Normalized())
}

// AssertStderrContains verifies the normalized stderr contains the expected string.
func AssertStderrContains(tb testing.TB, output CommandOutput, expected string) {
	tb.Helper()
	assert.Contains(tb, output.Stderr.Normalized(), expected,
		"Expected stderr to contain %q.\nActual stderr: %s", expected, output.Stderr.Normalized())
}

// AssertStdoutEmpty verifies stdout is empty.
func AssertStdoutEmpty(tb testing.TB, output CommandOutput) {
	tb.Helper()
	assert.True(tb, output.Stdout.IsEmpty(), "Expected empty stdout, got: %s", output.Stdout.Normalized())
}

// AssertStderrEmpty verifies stderr is empty.
func AssertStderrEmpty(tb testing.TB, output CommandOutput) {
	tb.Helper()
	assert.True(tb, output.Stderr.IsEmpty(), "Expected empty stderr, got: %s", output.Stderr.Normalized())
}

// AssertValidJSON verifies raw stdout is valid JSON and unmarshals it into target.
func AssertValidJSON(tb testing.TB, output CommandOutput, target any) {
	tb.Helper()
	err := json.Unmarshal([]byte(output.Stdout.Raw()), target)
	require.NoError(tb, err, "Expected valid JSON.\nStdout: %s", output.Stdout.Raw())
}
