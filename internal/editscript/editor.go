package editscript

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrFail is returned by a "fail" instruction. Callers exit non-zero
// without printing anything.
var ErrFail = errors.New("failure requested by script")

// RunEditor executes instructions against the file being edited. Relative
// dump targets are taken from scriptDir.
//
// Supported commands: fail, expect, expectpath, dump <dest>,
// dump-path <dest>, write.
func RunEditor(instructions []Instruction, file, scriptDir string) error {
	for _, ins := range instructions {
		if err := runEditorInstruction(ins, file, scriptDir); err != nil {
			return err
		}
	}
	return nil
}

func runEditorInstruction(ins Instruction, file, scriptDir string) error {
	switch ins.Name() {
	case "fail":
		return ErrFail

	case "expect":
		actual, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", file, err)
		}
		if string(actual) != ins.Payload {
			return fmt.Errorf("unexpected content\nEXPECTED: <%s>\nRECEIVED: <%s>", ins.Payload, actual)
		}

	case "expectpath":
		if file != ins.Payload {
			return fmt.Errorf("unexpected path\nEXPECTED: <%s>\nRECEIVED: <%s>", ins.Payload, file)
		}

	case "dump":
		dest, err := singleArg(ins)
		if err != nil {
			return err
		}
		if err := copyFile(file, resolveDest(scriptDir, dest)); err != nil {
			return err
		}

	case "dump-path":
		dest, err := singleArg(ins)
		if err != nil {
			return err
		}
		dest = resolveDest(scriptDir, dest)
		f, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", dest, err)
		}
		_, werr := fmt.Fprintln(f, file)
		if cerr := f.Close(); werr == nil {
			werr = cerr
		}
		if werr != nil {
			return fmt.Errorf("failed to write %s: %w", dest, werr)
		}

	case "write":
		if err := os.WriteFile(file, []byte(ins.Payload), 0644); err != nil {
			return fmt.Errorf("failed to write file %s: %w", file, err)
		}

	default:
		return unexpectedCommand(ins)
	}
	return nil
}

func singleArg(ins Instruction) (string, error) {
	if len(ins.Args()) != 1 {
		return "", unexpectedCommand(ins)
	}
	return ins.Args()[0], nil
}

func unexpectedCommand(ins Instruction) error {
	return fmt.Errorf("unexpected command: %s", strings.Join(ins.Command, " "))
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dest, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("failed to copy %s to %s: %w", src, dest, err)
	}
	return out.Close()
}
