// Command fake-diff-editor stands in for an interactive diff editor in tests.
// It receives the left (before) and right (after) directories and edits the
// right one according to the script named by $DIFF_EDIT_SCRIPT.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"jjtest/internal/editscript"
	"jjtest/internal/version"
)

// ScriptEnvVar names the env var holding the script path.
const ScriptEnvVar = "DIFF_EDIT_SCRIPT"

// CLI is the fake diff editor's command line
type CLI struct {
	Version kong.VersionFlag `help:"Show version information"`

	Left   string   `arg:"" help:"Directory with the contents before the change" type:"existingdir"`
	Right  string   `arg:"" help:"Directory with the contents after the change (edited in place)" type:"existingdir"`
	Ignore []string `help:"Accepted and ignored, for merge-tool argument templates" hidden:""`
}

// Run executes the script against the directories
func (c *CLI) Run() error {
	instructions, scriptDir, err := editscript.LoadFromEnv(ScriptEnvVar)
	if err != nil {
		return err
	}
	editor := &editscript.DiffEditor{
		Left:      c.Left,
		Right:     c.Right,
		ScriptDir: scriptDir,
		Stdout:    os.Stdout,
	}
	return editor.Run(instructions)
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("fake-diff-editor"),
		kong.Description("Scripted diff editor for tests"),
		kong.UsageOnError(),
		kong.Vars{"version": version.Info("fake-diff-editor")},
	)

	if err := ctx.Run(); err != nil {
		if !errors.Is(err, editscript.ErrFail) {
			fmt.Fprintf(os.Stderr, "fake-diff-editor: %v\n", err)
		}
		os.Exit(1)
	}
}
