package integration_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"jjtest/test/integration/harness"
)

func TestEdit(t *testing.T) {
	env := newTestEnv(t)
	repo := harness.InitRepo(env, "repo")
	writeFile(t, repo, "file1", "0")
	env.RunIn(repo, "commit", "-m", "first").Success(t)
	env.RunIn(repo, "describe", "-m", "second").Success(t)
	writeFile(t, repo, "file1", "1")

	// Errors out without argument
	output := env.RunIn(repo, "edit")
	harness.AssertExitCode(t, output, 2)
	harness.AssertStdoutEmpty(t, output)
	harness.AssertStderrContains(t, output, "<REVSET>")
	assert.Contains(t, output.String(), "[EOF]\n[exit status: 2]\n")

	// Makes the specified commit the working-copy commit
	output = env.RunIn(repo, "edit", "@-").Success(t)
	harness.AssertStderrContains(t, output, "first")
	harness.AssertOutput(t, logOutput(env, repo), "second\nfirst @\n[EOF]\n")
	assert.Equal(t, "0", readFile(t, filepath.Join(repo, "file1")))

	// Changes in the working copy are amended into the commit
	writeFile(t, repo, "file2", "0")
	output = logOutput(env, repo).Success(t)
	harness.AssertStdoutContains(t, output, "second\nfirst @\n")
	harness.AssertStderrContains(t, output, "Rebased 1 descendant commits")
}

func TestEdit_UnknownRevision(t *testing.T) {
	env := newTestEnv(t)
	repo := harness.InitRepo(env, "repo")

	output := env.RunIn(repo, "edit", "nonexistent")

	harness.AssertFailure(t, output)
	harness.AssertStderrContains(t, output, "nonexistent")
}

func TestDescribe_WithFakeEditor(t *testing.T) {
	env := newTestEnv(t)
	repo := harness.InitRepo(env, "repo")
	script := env.SetUpFakeEditor()

	env.WriteEditScript(script, "write\ndescription from editor\n")
	env.RunIn(repo, "describe").Success(t)

	harness.AssertOutput(t, logOutput(env, repo), "description from editor @\n[EOF]\n")
}

func TestDescribe_EditorFailure(t *testing.T) {
	env := newTestEnv(t)
	repo := harness.InitRepo(env, "repo")
	script := env.SetUpFakeEditor()

	env.WriteEditScript(script, "fail")
	output := env.RunIn(repo, "describe")

	harness.AssertFailure(t, output)
	harness.AssertStdoutEmpty(t, output)
}
