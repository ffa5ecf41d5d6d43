package harness

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/require"

	"jjtest/internal/editscript"
)

// TOMLConvertible lists the Go types ToTOMLValue accepts.
type TOMLConvertible interface {
	~string | ~bool |
		~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint8 | ~uint16 | ~uint32 |
		~float32 | ~float64 |
		~[]string | ~[]int | ~[]bool
}

// TOMLValue is a value ready to be embedded in TOML config text.
type TOMLValue struct {
	value any
}

// ToTOMLValue coerces v so call sites can write plain literals where a TOML
// value is expected:
//
//	env.AddConfig("ui.editor = " + harness.ToTOMLValue(path).String())
func ToTOMLValue[T TOMLConvertible](v T) TOMLValue {
	return TOMLValue{value: v}
}

// Value returns the wrapped Go value.
func (v TOMLValue) Value() any {
	return v.value
}

// String renders the value in inline TOML syntax, quoted and escaped as
// needed.
func (v TOMLValue) String() string {
	data, err := toml.Marshal(map[string]any{"v": v.value})
	if err != nil {
		// Unreachable for the types allowed by TOMLConvertible.
		panic(fmt.Sprintf("harness: cannot encode %T as TOML: %v", v.value, err))
	}
	_, rendered, _ := strings.Cut(strings.TrimRight(string(data), "\n"), " = ")
	return rendered
}

// AddConfig writes text as a new file in the config directory. Files are
// numbered in call order and jj reads them in that order, so later calls
// override earlier ones. The text must be valid TOML.
func (e *TestEnvironment) AddConfig(text string) {
	e.tb.Helper()

	var probe map[string]any
	require.NoError(e.tb, toml.Unmarshal([]byte(text), &probe), "invalid TOML config:\n%s", text)

	e.mu.Lock()
	e.configNumber++
	n := e.configNumber
	e.mu.Unlock()

	path := filepath.Join(e.configDir, fmt.Sprintf("config%04d.toml", n))
	require.NoError(e.tb, os.WriteFile(path, []byte(text), 0644), "failed to write config %s", path)
}

// SetConfig writes a single dotted-key assignment, e.g.
// SetConfig("ui.color", ToTOMLValue("never")).
func (e *TestEnvironment) SetConfig(key string, value TOMLValue) {
	e.tb.Helper()
	e.AddConfig(fmt.Sprintf("%s = %s\n", key, value))
}

// SetUpFakeEditor makes jj use the fake editor and returns the path of its
// (initially empty) script file. Write the script with WriteEditScript.
func (e *TestEnvironment) SetUpFakeEditor() string {
	e.tb.Helper()

	e.SetConfig("ui.editor", ToTOMLValue(FakeEditorPath(e.tb)))
	script := filepath.Join(e.root, "edit_script")
	require.NoError(e.tb, os.WriteFile(script, nil, 0644), "failed to create edit script")
	e.SetEnv("EDIT_SCRIPT", script)
	return script
}

// SetUpFakeDiffEditor makes jj use the fake diff editor and returns the path
// of its (initially empty) script file.
func (e *TestEnvironment) SetUpFakeDiffEditor() string {
	e.tb.Helper()

	e.SetConfig("ui.diff-editor", ToTOMLValue(fakeDiffEditorName))
	e.SetConfig("merge-tools.fake-diff-editor.program", ToTOMLValue(FakeDiffEditorPath(e.tb)))
	e.SetConfig("merge-tools.fake-diff-editor.edit-args", ToTOMLValue([]string{"$left", "$right"}))
	script := filepath.Join(e.root, "diff_edit_script")
	require.NoError(e.tb, os.WriteFile(script, nil, 0644), "failed to create diff edit script")
	e.SetEnv("DIFF_EDIT_SCRIPT", script)
	return script
}

// WriteEditScript replaces the script at path with the given instructions,
// each a command line optionally followed by "\n" and a payload.
func (e *TestEnvironment) WriteEditScript(path string, instructions ...string) {
	e.tb.Helper()
	require.NoError(e.tb, os.WriteFile(path, []byte(editscript.Join(instructions...)), 0644), "failed to write edit script")
}
