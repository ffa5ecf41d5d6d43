package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every JJTEST_* variable the settings know about.
// Viper treats empty variables as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"BINARY", "DEBUG", "DEBUG_FILE", "FAKE_DIFF_EDITOR", "FAKE_EDITOR", "KEEP_SANDBOX", "MAX_LOG_FILES", "CONFIG_DIR"} {
		t.Setenv(EnvPrefix+"_"+key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	settings, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, DefaultBinary, settings.Binary)
	assert.False(t, settings.Debug)
	assert.False(t, settings.KeepSandbox)
	assert.Empty(t, settings.FakeEditor)
	assert.Equal(t, 100, settings.MaxLogFiles)
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	content := `binary = "/opt/jj/bin/jj"
keep_sandbox = true
fake_editor = "/tmp/fake-editor"
max_log_files = 7
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "jjtest.toml"), []byte(content), 0644))

	settings, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "/opt/jj/bin/jj", settings.Binary)
	assert.True(t, settings.KeepSandbox)
	assert.Equal(t, "/tmp/fake-editor", settings.FakeEditor)
	assert.Equal(t, 7, settings.MaxLogFiles)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "jjtest.toml"), []byte("binary = \"from-file\"\n"), 0644))
	t.Setenv("JJTEST_BINARY", "/from/env/jj")
	t.Setenv("JJTEST_DEBUG", "true")

	settings, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "/from/env/jj", settings.Binary)
	assert.True(t, settings.Debug)
}

func TestLoad_InvalidFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "jjtest.toml"), []byte("binary = [unterminated\n"), 0644))

	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}

func TestDefaultConfigDir(t *testing.T) {
	clearEnv(t)
	assert.Equal(t, ".", DefaultConfigDir())

	t.Setenv("JJTEST_CONFIG_DIR", "/etc/jjtest")
	assert.Equal(t, "/etc/jjtest", DefaultConfigDir())
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	tests := []struct {
		input    string
		expected string
	}{
		{"~", home},
		{"~/bin/jj", filepath.Join(home, "bin/jj")},
		{"/usr/bin/jj", "/usr/bin/jj"},
		{"jj", "jj"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExpandPath(tt.input))
		})
	}
}
