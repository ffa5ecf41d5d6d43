package harness

import (
	"maps"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"jjtest/internal/logging"
)

// TestRootRevision is the revision new commits are parented on when a
// fixture names no parents.
const TestRootRevision = "root()"

// InteractiveEnvVar makes jj run its interactive code paths without a TTY.
const InteractiveEnvVar = "JJ_INTERACTIVE"

// baseTimestamp is the JJ_TIMESTAMP of command number 0.
var baseTimestamp = time.Date(2001, 2, 3, 4, 5, 6, 0, time.FixedZone("", 7*60*60))

// passthroughEnv lists the parent variables children still need.
var passthroughEnv = []string{"PATH", "SYSTEMROOT"}

// TestEnvironment provides an isolated sandbox for running the binary under
// test. Failures are reported to the test the environment was created for.
// Parallel subtests sharing one sandbox each take their own view with
// ForTest, since a test may only be stopped from its own goroutine.
type TestEnvironment struct {
	*sandbox
	tb testing.TB
}

// sandbox is the state shared by all views of an environment.
type sandbox struct {
	binary    string
	configDir string
	homeDir   string
	root      string
	rootRegex *regexp.Regexp

	mu            sync.Mutex
	commandNumber int
	configNumber  int
	envVars       map[string]string
	unset         map[string]bool
}

// NewTestEnvironment creates an isolated environment for the configured
// binary (JJTEST_BINARY, default "jj" on PATH). The test fails if the binary
// cannot be found.
func NewTestEnvironment(tb testing.TB) *TestEnvironment {
	tb.Helper()
	binary, err := LookupBinary()
	require.NoError(tb, err, "failed to locate the binary under test")
	return newTestEnvironment(tb, binary)
}

// NewTestEnvironmentWithBinary creates an isolated environment running the
// given executable.
func NewTestEnvironmentWithBinary(tb testing.TB, binary string) *TestEnvironment {
	tb.Helper()
	path, err := resolveExecutable(binary)
	require.NoError(tb, err, "failed to locate the binary under test")
	return newTestEnvironment(tb, path)
}

func newTestEnvironment(tb testing.TB, binary string) *TestEnvironment {
	tb.Helper()

	root := sandboxRoot(tb)
	env := &TestEnvironment{
		sandbox: &sandbox{
			binary:    binary,
			configDir: filepath.Join(root, "config"),
			homeDir:   filepath.Join(root, "home"),
			root:      root,
			rootRegex: regexp.MustCompile(regexp.QuoteMeta(root) + `(\S*)`),
			envVars:   make(map[string]string),
			unset:     make(map[string]bool),
		},
		tb: tb,
	}

	for _, dir := range []string{env.homeDir, env.configDir} {
		require.NoError(tb, os.MkdirAll(dir, 0755), "failed to create %s", dir)
	}

	logging.Logger.Debug("Created test environment", "test", tb.Name(), "root", root, "binary", binary)
	return env
}

// sandboxRoot allocates the unique root directory. Symlinks are resolved so
// paths printed by the child match the root textually.
func sandboxRoot(tb testing.TB) string {
	tb.Helper()

	var dir string
	if s := mustLoadSettings(tb); s.KeepSandbox {
		var err error
		dir, err = os.MkdirTemp("", "jjtest-*")
		require.NoError(tb, err, "failed to create sandbox root")
		tb.Logf("Keeping sandbox root %s", dir)
	} else {
		dir = tb.TempDir()
	}

	resolved, err := filepath.EvalSymlinks(dir)
	require.NoError(tb, err, "failed to resolve sandbox root")
	return resolved
}

// EnvRoot returns the sandbox root.
func (e *TestEnvironment) EnvRoot() string {
	return e.root
}

// HomeDir returns the HOME seen by child processes.
func (e *TestEnvironment) HomeDir() string {
	return e.homeDir
}

// ConfigDir returns the JJ_CONFIG directory seen by child processes.
func (e *TestEnvironment) ConfigDir() string {
	return e.configDir
}

// BinaryPath returns the absolute path of the binary under test.
func (e *TestEnvironment) BinaryPath() string {
	return e.binary
}

// WorkDir returns a path under the sandbox root.
func (e *TestEnvironment) WorkDir(elem ...string) string {
	return filepath.Join(append([]string{e.root}, elem...)...)
}

// ForTest returns a view of the environment that reports failures to tb.
// Views share the sandbox, the command and config counters and the env
// overrides.
func (e *TestEnvironment) ForTest(tb testing.TB) *TestEnvironment {
	return &TestEnvironment{sandbox: e.sandbox, tb: tb}
}

// SetEnv sets a variable for every later command of this environment.
func (e *TestEnvironment) SetEnv(key, value string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.unset, key)
	e.envVars[key] = value
}

// UnsetEnv removes a variable, including the defaults, from every later
// command of this environment.
func (e *TestEnvironment) UnsetEnv(key string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.envVars, key)
	e.unset[key] = true
}

// ForceInteractive makes cmd take jj's interactive code paths even though no
// terminal is attached.
func ForceInteractive(cmd *Command) *Command {
	return cmd.SetEnv(InteractiveEnvVar, "1")
}

// Environ returns the environment the next command would get, without
// per-command overrides.
func (e *TestEnvironment) Environ() []string {
	e.mu.Lock()
	n := e.commandNumber + 1
	e.mu.Unlock()
	return e.environ(n, nil)
}

// nextCommandNumber numbers commands from 1.
func (e *TestEnvironment) nextCommandNumber() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.commandNumber++
	return e.commandNumber
}

// environ builds the child environment in sorted KEY=value form.
// Later layers win: passthrough, defaults, environment overrides, command
// overrides.
func (e *TestEnvironment) environ(commandNumber int, overrides map[string]string) []string {
	vars := make(map[string]string)
	for _, key := range passthroughEnv {
		if value, ok := os.LookupEnv(key); ok {
			vars[key] = value
		}
	}

	timestamp := baseTimestamp.Add(time.Duration(commandNumber) * time.Second).Format(time.RFC3339)
	maps.Copy(vars, map[string]string{
		"COLUMNS":            "100",
		"HOME":               e.homeDir,
		"JJ_CONFIG":          e.configDir,
		"JJ_EMAIL":           "test.user@example.com",
		"JJ_OP_HOSTNAME":     "host.example.com",
		"JJ_OP_TIMESTAMP":    timestamp,
		"JJ_OP_USERNAME":     "test-username",
		"JJ_RANDOMNESS_SEED": strconv.Itoa(commandNumber),
		"JJ_TIMESTAMP":       timestamp,
		"JJ_TZ_OFFSET_MINS":  "660",
		"JJ_USER":            "Test User",
	})

	e.mu.Lock()
	maps.Copy(vars, e.envVars)
	for key := range e.unset {
		delete(vars, key)
	}
	e.mu.Unlock()

	maps.Copy(vars, overrides)

	env := make([]string, 0, len(vars))
	for _, key := range slices.Sorted(maps.Keys(vars)) {
		env = append(env, key+"="+vars[key])
	}
	return env
}

// resolveDir makes dir absolute, relative paths being taken from the root.
func (e *TestEnvironment) resolveDir(dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(e.root, dir)
}

// NormalizeOutput makes text independent of the sandbox location and the
// platform: the root becomes $TEST_ENV (with the rest of the path in slash
// form), CRLF becomes LF and the binary's .exe suffix is dropped.
func (e *TestEnvironment) NormalizeOutput(text string) string {
	text = normalizeEOL(text)
	if runtime.GOOS == "windows" {
		name := strings.TrimSuffix(filepath.Base(e.binary), ".exe")
		text = strings.ReplaceAll(text, name+".exe", name)
	}
	return e.rootRegex.ReplaceAllStringFunc(text, func(match string) string {
		rest := strings.TrimPrefix(match, e.root)
		return "$TEST_ENV" + strings.ReplaceAll(rest, `\`, "/")
	})
}
