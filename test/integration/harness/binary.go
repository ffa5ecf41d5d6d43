package harness

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"jjtest/internal/config"
	"jjtest/internal/logging"
)

const (
	fakeEditorName     = "fake-editor"
	fakeDiffEditorName = "fake-diff-editor"
)

var (
	settings     *config.Settings
	settingsErr  error
	settingsOnce sync.Once

	companionDir  string
	companionErr  error
	companionOnce sync.Once
)

// loadSettings reads the harness settings and initializes logging once per
// test process.
func loadSettings() (*config.Settings, error) {
	settingsOnce.Do(func() {
		settings, settingsErr = config.Load(config.DefaultConfigDir())
		if settingsErr != nil {
			return
		}
		settingsErr = logging.Initialize(settings.Debug, settings.DebugFile, settings.MaxLogFiles)
	})
	return settings, settingsErr
}

func mustLoadSettings(tb testing.TB) *config.Settings {
	tb.Helper()
	s, err := loadSettings()
	require.NoError(tb, err, "failed to load harness settings")
	return s
}

// LookupBinary resolves the binary under test from the settings: an explicit
// path is checked as is, a bare name is searched on PATH.
// Tests that need the real tool can skip when this fails.
func LookupBinary() (string, error) {
	s, err := loadSettings()
	if err != nil {
		return "", err
	}
	return resolveExecutable(s.Binary)
}

func resolveExecutable(name string) (string, error) {
	if !strings.ContainsAny(name, `/\`) {
		path, err := exec.LookPath(name)
		if err != nil {
			return "", fmt.Errorf("binary %q not found on PATH: %w", name, err)
		}
		name = path
	}

	path, err := filepath.Abs(name)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", name, err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("binary not found: %w", err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("binary %s is not a regular file", path)
	}
	return path, nil
}

// FakeEditorPath returns the path of the fake-editor companion binary.
func FakeEditorPath(tb testing.TB) string {
	tb.Helper()
	return companionPath(tb, fakeEditorName, mustLoadSettings(tb).FakeEditor)
}

// FakeDiffEditorPath returns the path of the fake-diff-editor companion binary.
func FakeDiffEditorPath(tb testing.TB) string {
	tb.Helper()
	return companionPath(tb, fakeDiffEditorName, mustLoadSettings(tb).FakeDiffEditor)
}

// companionPath returns the prebuilt path when configured, or builds the
// companions from ./cmd. The artifact must be a regular file.
func companionPath(tb testing.TB, name, prebuilt string) string {
	tb.Helper()

	path := prebuilt
	if path == "" {
		dir, err := BuildCompanions()
		require.NoError(tb, err, "failed to build companion binaries")
		path = filepath.Join(dir, executableName(name))
	}

	info, err := os.Stat(path)
	require.NoError(tb, err, "companion binary %s not found", name)
	require.True(tb, info.Mode().IsRegular(), "companion binary %s is not a regular file: %s", name, path)
	return path
}

// BuildCompanions compiles the companion binaries once per test run and
// returns the directory holding them.
func BuildCompanions() (string, error) {
	companionOnce.Do(func() {
		tempDir, err := os.MkdirTemp("", "jjtest-companions-*")
		if err != nil {
			companionErr = err
			return
		}

		projectRoot, err := findProjectRoot()
		if err != nil {
			companionErr = err
			return
		}

		for _, name := range []string{fakeEditorName, fakeDiffEditorName} {
			cmd := exec.Command("go", "build", "-o", filepath.Join(tempDir, executableName(name)), "./cmd/"+name)
			cmd.Dir = projectRoot
			if output, err := cmd.CombinedOutput(); err != nil {
				companionErr = fmt.Errorf("go build %s: %w\n%s", name, err, output)
				return
			}
			logging.Logger.Debug("Built companion binary", "name", name, "dir", tempDir)
		}

		companionDir = tempDir
	})

	return companionDir, companionErr
}

// CleanupCompanions removes the compiled companion binaries.
// Call this from TestMain after tests complete.
func CleanupCompanions() {
	if companionDir != "" {
		if err := os.RemoveAll(companionDir); err != nil {
			log.Printf("Warning: failed to cleanup companion directory: %v", err)
		}
	}
}

func executableName(name string) string {
	if runtime.GOOS == "windows" {
		return name + ".exe"
	}
	return name
}

// findProjectRoot uses go list to find the module root directory.
func findProjectRoot() (string, error) {
	cmd := exec.Command("go", "list", "-m", "-f", "{{.Dir}}")
	out, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}
