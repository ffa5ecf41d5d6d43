package harness

import (
	"os"
	"path/filepath"

	"github.com/stretchr/testify/require"
)

// File is a file written into a commit by CreateCommitWithFiles.
type File struct {
	Name    string
	Content string
}

// InitRepo runs "jj git init <name>" in the sandbox root and returns the
// repository path.
func InitRepo(env *TestEnvironment, name string) string {
	env.tb.Helper()
	env.RunIn(".", "git", "init", name).Success(env.tb, "init repo %q", name)
	return filepath.Join(env.root, name)
}

// CreateCommit creates a commit described as name, holding one file named
// name with content "name\n", and points a bookmark named name at it.
// Without parents the commit is created on root().
func CreateCommit(env *TestEnvironment, repoPath, name string, parents ...string) {
	env.tb.Helper()
	CreateCommitWithFiles(env, repoPath, name, parents, File{Name: name, Content: name + "\n"})
}

// CreateCommitWithFiles is CreateCommit with caller-chosen files, written in
// order. Every step goes through jj itself, and a failing step fails the test.
func CreateCommitWithFiles(env *TestEnvironment, repoPath, name string, parents []string, files ...File) {
	tb := env.tb
	tb.Helper()

	if len(parents) == 0 {
		parents = []string{TestRootRevision}
	}
	repoPath = env.resolveDir(repoPath)

	env.RunWith(func(cmd *Command) {
		cmd.Dir = repoPath
		cmd.AddArgs("new", "-m", name)
		cmd.AddArgs(parents...)
	}).Success(tb, "create commit %q: new", name)

	for _, file := range files {
		path := filepath.Join(repoPath, file.Name)
		require.NoError(tb, os.MkdirAll(filepath.Dir(path), 0755), "create commit %q: mkdir for %s", name, file.Name)
		require.NoError(tb, os.WriteFile(path, []byte(file.Content), 0644), "create commit %q: write %s", name, file.Name)
	}

	env.RunIn(repoPath, "bookmark", "create", "-r@", name).
		Success(tb, "create commit %q: bookmark create", name)
}
