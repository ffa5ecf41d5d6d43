package harness_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jjtest/test/integration/harness"
)

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestInitRepo(t *testing.T) {
	env := newFakeToolEnv(t)

	repo := harness.InitRepo(env, "repo")

	assert.Equal(t, filepath.Join(env.EnvRoot(), "repo"), repo)
	info, err := os.Stat(repo)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestCreateCommit_DefaultsToRoot(t *testing.T) {
	env := newFakeToolEnv(t)
	repo := harness.InitRepo(env, "repo")

	harness.CreateCommit(env, repo, "first")

	assert.Equal(t, []string{
		"new -m first root()",
		"bookmark create -r@ first",
	}, invocations(t, env))
	assert.Equal(t, "first\n", readFile(t, filepath.Join(repo, "first")))
}

func TestCreateCommit_Parents(t *testing.T) {
	env := newFakeToolEnv(t)
	repo := harness.InitRepo(env, "repo")

	harness.CreateCommit(env, repo, "a")
	harness.CreateCommit(env, repo, "b")
	harness.CreateCommit(env, repo, "merge", "a", "b")

	assert.Equal(t, []string{
		"new -m a root()",
		"bookmark create -r@ a",
		"new -m b root()",
		"bookmark create -r@ b",
		"new -m merge a b",
		"bookmark create -r@ merge",
	}, invocations(t, env))
}

func TestCreateCommitWithFiles(t *testing.T) {
	env := newFakeToolEnv(t)
	repo := harness.InitRepo(env, "repo")

	harness.CreateCommitWithFiles(env, "repo", "c1", []string{"c0"},
		harness.File{Name: "x", Content: "1"},
		harness.File{Name: "dir/y", Content: "2"},
	)

	assert.Equal(t, []string{
		"new -m c1 c0",
		"bookmark create -r@ c1",
	}, invocations(t, env))
	assert.Equal(t, "1", readFile(t, filepath.Join(repo, "x")))
	assert.Equal(t, "2", readFile(t, filepath.Join(repo, "dir", "y")))
	_, err := os.Stat(filepath.Join(repo, "c1"))
	assert.True(t, os.IsNotExist(err), "no default file when files are given")
}

func TestCreateCommit_FailingStepIsAttributed(t *testing.T) {
	rec := newRecordingTB(t)
	env := newFakeToolEnv(rec)
	repo := harness.InitRepo(env, "repo")

	harness.CreateCommit(env, repo, "broken")

	require.True(t, rec.Failed())
	msg := rec.output()
	assert.Contains(t, msg, `create commit "broken": new`)
	assert.Contains(t, msg, "command exited with code 1")
	assert.Contains(t, msg, "Revision `broken` cannot be created")
}
