// Command fake-editor stands in for a text editor in tests. It edits the file
// given as its argument according to the script named by $EDIT_SCRIPT.
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
const ScriptEnvVar = "EDIT_SCRIPT"

// CLI is the fake editor's command line
type CLI struct {
	Version kong.VersionFlag `help:"Show version information"`

	File string `arg:"" help:"File to edit"`
}

// Run executes the script against the file
func (c *CLI) Run() error {
	instructions, scriptDir, err := editscript.LoadFromEnv(ScriptEnvVar)
	if err != nil {
		return err
	}
	return editscript.RunEditor(instructions, c.File, scriptDir)
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("fake-editor"),
		kong.Description("Scripted editor for tests"),
		kong.UsageOnError(),
		kong.Vars{"version": version.Info("fake-editor")},
	)

	if err := ctx.Run(); err != nil {
		if !errors.Is(err, editscript.ErrFail) {
			fmt.Fprintf(os.Stderr, "fake-editor: %v\n", err)
		}
		os.Exit(1)
	}
}
