package editscript

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
)

// DiffEditor edits the right-hand directory of a diff. Left is read-only.
type DiffEditor struct {
	Left  string
	Right string
	// ScriptDir is where relative dump targets are written.
	ScriptDir string
	Stdout    io.Writer
}

// Run executes instructions against the two directories.
//
// Supported commands: fail, files-before <files...>, files-after <files...>,
// print-files-before, print-files-after, print <message>, rm <file>,
// reset <file>, dump <file> <dest>, write <file>.
func (d *DiffEditor) Run(instructions []Instruction) error {
	for _, ins := range instructions {
		if err := d.run(ins); err != nil {
			return err
		}
	}
	return nil
}

func (d *DiffEditor) run(ins Instruction) error {
	args := ins.Args()

	switch ins.Name() {
	case "fail":
		return ErrFail

	case "files-before":
		return expectFiles("before", d.Left, args)

	case "files-after":
		return expectFiles("after", d.Right, args)

	case "print-files-before":
		return d.printFiles(d.Left)

	case "print-files-after":
		return d.printFiles(d.Right)

	case "print":
		if len(args) != 1 {
			return unexpectedCommand(ins)
		}
		_, err := fmt.Fprintln(d.Stdout, args[0])
		return err

	case "rm":
		if len(args) != 1 {
			return unexpectedCommand(ins)
		}
		if err := os.Remove(filepath.Join(d.Right, args[0])); err != nil {
			return fmt.Errorf("failed to remove %s: %w", args[0], err)
		}

	case "reset":
		if len(args) != 1 {
			return unexpectedCommand(ins)
		}
		before := filepath.Join(d.Left, args[0])
		after := filepath.Join(d.Right, args[0])
		if _, err := os.Stat(before); err == nil {
			return copyFile(before, after)
		}
		if err := os.Remove(after); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to remove %s: %w", args[0], err)
		}

	case "dump":
		if len(args) != 2 {
			return unexpectedCommand(ins)
		}
		return copyFile(filepath.Join(d.Right, args[0]), resolveDest(d.ScriptDir, args[1]))

	case "write":
		if len(args) != 1 {
			return unexpectedCommand(ins)
		}
		path := filepath.Join(d.Right, args[0])
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return fmt.Errorf("failed to create directory for %s: %w", args[0], err)
		}
		if err := os.WriteFile(path, []byte(ins.Payload), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", args[0], err)
		}

	default:
		return unexpectedCommand(ins)
	}
	return nil
}

func (d *DiffEditor) printFiles(dir string) error {
	files, err := listFiles(dir)
	if err != nil {
		return err
	}
	for _, f := range files {
		if _, err := fmt.Fprintln(d.Stdout, f); err != nil {
			return err
		}
	}
	return nil
}

func expectFiles(side, dir string, expected []string) error {
	actual, err := listFiles(dir)
	if err != nil {
		return err
	}
	want := slices.Clone(expected)
	slices.Sort(want)
	want = slices.Compact(want)
	if !slices.Equal(want, actual) {
		return fmt.Errorf("unexpected files %s\nEXPECTED: %v\nACTUAL  : %v", side, want, actual)
	}
	return nil
}

// listFiles returns the sorted slash-separated paths of regular files under dir.
func listFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}
	slices.Sort(files)
	return files, nil
}
