// Package editscript implements the scripted behaviour of the fake editor
// and fake diff editor companions.
//
// A script is a NUL-separated list of instructions. Each instruction is a
// command line, optionally followed by a newline and a payload:
//
//	write\nnew content\x00dump /tmp/out
//
// A "next invocation" instruction ends the current run. Everything after it
// is written back to the script file for the next time the editor starts.
package editscript

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	separator      = "\x00"
	nextInvocation = "next invocation"
)

// Instruction is one step of a script.
type Instruction struct {
	Command []string
	Payload string
}

// Name returns the first word of the command line.
func (i Instruction) Name() string {
	return i.Command[0]
}

// Args returns the command words after the name.
func (i Instruction) Args() []string {
	return i.Command[1:]
}

// Parse splits a script into instructions. Blank instructions are dropped.
func Parse(script string) []Instruction {
	var instructions []Instruction
	for _, raw := range strings.Split(script, separator) {
		command, payload, _ := strings.Cut(raw, "\n")
		if command == "" {
			continue
		}
		instructions = append(instructions, Instruction{
			Command: strings.Split(command, " "),
			Payload: payload,
		})
	}
	return instructions
}

// Load reads the script at path and returns the instructions for this run.
// When the script contains a "next invocation" instruction, the remainder is
// written back to path.
func Load(path string) ([]Instruction, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script %s: %w", path, err)
	}

	current, rest, found := splitInvocation(string(data))
	if found {
		if err := os.WriteFile(path, []byte(rest), 0644); err != nil {
			return nil, fmt.Errorf("failed to rewrite script %s: %w", path, err)
		}
	}

	return Parse(current), nil
}

// LoadFromEnv is Load with the path taken from the named env var. It also
// returns the directory holding the script, against which relative dump
// targets are resolved.
func LoadFromEnv(envVar string) (instructions []Instruction, scriptDir string, err error) {
	path := os.Getenv(envVar)
	if path == "" {
		return nil, "", fmt.Errorf("%s is not set", envVar)
	}
	instructions, err = Load(path)
	if err != nil {
		return nil, "", err
	}
	return instructions, filepath.Dir(path), nil
}

// resolveDest places a relative dump target next to the script, keeping it
// out of the working copy the editor runs in.
func resolveDest(scriptDir, dest string) string {
	if scriptDir == "" || filepath.IsAbs(dest) {
		return dest
	}
	return filepath.Join(scriptDir, dest)
}

// splitInvocation cuts the raw script at the first "next invocation"
// instruction.
func splitInvocation(script string) (current, rest string, found bool) {
	parts := strings.Split(script, separator)
	for i, part := range parts {
		if strings.TrimSuffix(part, "\n") == nextInvocation {
			return strings.Join(parts[:i], separator), strings.Join(parts[i+1:], separator), true
		}
	}
	return script, "", false
}

// Join builds a script from instructions in their textual form. Tests use it
// to write scripts without spelling out the separator.
func Join(instructions ...string) string {
	return strings.Join(instructions, separator)
}
