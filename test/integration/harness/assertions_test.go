package harness_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jjtest/test/integration/harness"
)

func TestAssertions_Pass(t *testing.T) {
	env := newFakeToolEnv(t)

	output := env.Run("echo", `{"name":"repo","count":2}`)

	harness.AssertSuccess(t, output)
	harness.AssertExitCode(t, output, 0)
	harness.AssertStdoutContains(t, output, `"repo"`)
	harness.AssertStdoutNotContains(t, output, "$TEST_ENV")
	harness.AssertStderrEmpty(t, output)

	var doc struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}
	harness.AssertValidJSON(t, output, &doc)
	assert.Equal(t, "repo", doc.Name)
	assert.Equal(t, 2, doc.Count)
}

func TestAssertions_Fail(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		assert func(tb testing.TB, output harness.CommandOutput)
	}{
		{"success on failure", []string{"exit", "1"}, harness.AssertSuccess},
		{"failure on success", []string{"echo", "ok"}, harness.AssertFailure},
		{"stdout empty", []string{"echo", "ok"}, harness.AssertStdoutEmpty},
		{"stderr empty", []string{"warn", "careful"}, harness.AssertStderrEmpty},
		{"stderr contains", []string{"echo", "ok"}, func(tb testing.TB, output harness.CommandOutput) {
			harness.AssertStderrContains(tb, output, "ok")
		}},
		{"invalid json", []string{"echo", "{"}, func(tb testing.TB, output harness.CommandOutput) {
			var v any
			harness.AssertValidJSON(tb, output, &v)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newFakeToolEnv(t)
			output := env.Run(tt.args...)

			rec := newRecordingTB(t)
			tt.assert(rec, output)

			require.True(t, rec.Failed())
		})
	}
}
