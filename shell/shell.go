// Package shell implements an interactive REPL for inspecting a loaded
// ELF model and staging inject/modify operations against it before
// writing it out.
package shell

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"

	"github.com/pattyshack/elfgraft/elf"
	"github.com/pattyshack/elfgraft/engine"
	"github.com/pattyshack/elfgraft/report"
)

func splitArg(args string) (string, string) {
	parts := strings.SplitN(strings.TrimSpace(args), " ", 2)

	first := parts[0]
	remaining := ""
	if len(parts) > 1 {
		remaining = parts[1]
	}

	return first, remaining
}

func splitAllArgs(argsStr string) []string {
	args := []string{}
	remaining := argsStr
	for len(remaining) > 0 {
		var arg string
		arg, remaining = splitArg(remaining)
		if len(arg) > 0 {
			args = append(args, arg)
		}
	}
	return args
}

// command is one top-level shell verb. The shell's command set is a
// flat list of eight leaf commands with no nested subcommands, so
// there is just one dispatch table rather than a recursive one.
type command struct {
	name        string
	description string
	run         func(*Session, string) error
}

type commandSet []command

func (cmds commandSet) dispatch(s *Session, line string) error {
	name, remaining := splitArg(line)

	if name == "" || strings.HasPrefix("help", name) {
		cmds.printAvailable()
		return nil
	}

	for _, cmd := range cmds {
		if strings.HasPrefix(cmd.name, name) {
			return cmd.run(s, remaining)
		}
	}

	fmt.Println("Invalid command:", line)
	return nil
}

func (cmds commandSet) printAvailable() {
	fmt.Println("Available commands:")
	for _, cmd := range cmds {
		fmt.Println("  " + cmd.name + cmd.description)
	}
}

// ErrQuit signals a clean exit from the command loop.
var ErrQuit = errors.New("quit")

// Session holds the one *elf.File a shell invocation operates on and
// tracks whether it has unwritten edits.
type Session struct {
	File  *elf.File
	out   io.Writer
	dirty bool
}

// NewSession wraps an already-parsed file for interactive editing.
func NewSession(f *elf.File, out io.Writer) *Session {
	return &Session{File: f, out: out}
}

func headerCmd(s *Session, _ string) error {
	return report.DumpHeader(s.out, s.File)
}

func sectionsCmd(s *Session, _ string) error {
	return report.DumpSections(s.out, s.File)
}

func segmentsCmd(s *Session, _ string) error {
	return report.DumpSegments(s.out, s.File)
}

func symbolsCmd(s *Session, _ string) error {
	return report.DumpSymbols(s.out, s.File)
}

// injectCmd grammar: inject <position|@offset> <payload-file>
// [size=0x1000] [entry=0x...] [overwrite]
func injectCmd(s *Session, argStr string) error {
	fields := splitAllArgs(argStr)
	if len(fields) < 2 {
		fmt.Fprintln(s.out, "usage: inject <position|@offset> <payload-file> [size=0x1000] [entry=0x...] [overwrite]")
		return nil
	}

	position, offset := fields[0], ""
	if strings.HasPrefix(position, "@") {
		offset = strings.TrimPrefix(position, "@")
		position = ""
	}

	size := "0x1000"
	overwrite := false
	var entry *uint64

	for _, kv := range fields[2:] {
		switch {
		case kv == "overwrite":
			overwrite = true
		case strings.HasPrefix(kv, "size="):
			size = strings.TrimPrefix(kv, "size=")
		case strings.HasPrefix(kv, "entry="):
			v, err := engine.ParseHexValue(strings.TrimPrefix(kv, "entry="))
			if err != nil {
				return err
			}
			entry = &v
		default:
			fmt.Fprintln(s.out, "unrecognized option:", kv)
		}
	}

	payload, err := os.ReadFile(fields[1])
	if err != nil {
		return fmt.Errorf("read payload %s: %w", fields[1], err)
	}

	budget, err := engine.ParseHexValue(size)
	if err != nil {
		return err
	}

	inj, err := engine.BuildInjection(position, offset, payload, budget, overwrite, entry)
	if err != nil {
		return err
	}

	delta, err := engine.Inject(s.File, inj)
	if err != nil {
		return err
	}

	fmt.Fprintf(s.out, "injected %d payload bytes, file grew by %d\n", len(payload), delta)
	s.dirty = true
	return nil
}

// modifyCmd grammar: modify <exec_header|sec_header|prog_header>
// <position|-> <field> [subtag] <replace>
func modifyCmd(s *Session, argStr string) error {
	fields := splitAllArgs(argStr)
	if len(fields) < 4 {
		fmt.Fprintln(s.out, "usage: modify <target> <position|-> <field> [subtag] <replace>")
		return nil
	}

	target, position := fields[0], fields[1]
	if position == "-" {
		position = ""
	}

	var field, subTag, replace string
	switch len(fields) - 2 {
	case 2:
		field, replace = fields[2], fields[3]
	case 3:
		field, subTag, replace = fields[2], fields[3], fields[4]
	default:
		fmt.Fprintln(s.out, "usage: modify <target> <position|-> <field> [subtag] <replace>")
		return nil
	}

	m, err := engine.BuildModification(s.File, target, position, field, subTag, replace)
	if err != nil {
		return err
	}
	if err := engine.Modify(s.File, m); err != nil {
		return err
	}

	fmt.Fprintln(s.out, "ok")
	s.dirty = true
	return nil
}

func writeCmd(s *Session, argStr string) error {
	path := strings.TrimSpace(argStr)
	if path == "" {
		fmt.Fprintln(s.out, "usage: write <path>")
		return nil
	}

	content, err := s.File.Serialize()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	fmt.Fprintf(s.out, "wrote %d bytes to %s\n", len(content), path)
	s.dirty = false
	return nil
}

func quitCmd(*Session, string) error {
	return ErrQuit
}

func initializeCommands() commandSet {
	return commandSet{
		{name: "header", description: "   - print the executive header", run: headerCmd},
		{name: "sections", description: "  - print the section table", run: sectionsCmd},
		{name: "segments", description: "  - print the program header table", run: segmentsCmd},
		{name: "symbols", description: "   - print demangled symbol tables", run: symbolsCmd},
		{
			name: "inject",
			description: " <position|@offset> <payload-file> [size=0x1000] [entry=0x...] [overwrite]\n" +
				"    - splice bytes into the loaded model",
			run: injectCmd,
		},
		{
			name:        "modify",
			description: " <target> <position|-> <field> [subtag] <replace> - edit a header field",
			run:         modifyCmd,
		},
		{name: "write", description: "    <path> - serialize the current model to path", run: writeCmd},
		{name: "quit", description: "     - exit the shell", run: quitCmd},
	}
}

// Run drives a readline REPL over f until the user quits or closes
// input. Edits are staged in memory; nothing is written to disk until
// the write command is issued.
func Run(f *elf.File, out io.Writer) error {
	session := NewSession(f, out)
	topCmds := initializeCommands()

	rl, err := readline.New("elfgraft > ")
	if err != nil {
		return err
	}
	defer rl.Close()

	lastLine := ""
	for {
		line, err := rl.Readline()
		if err != nil {
			if err == io.EOF || err == readline.ErrInterrupt {
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			line = lastLine
		}
		lastLine = line
		if line == "" {
			continue
		}

		if err := topCmds.dispatch(session, line); err != nil {
			if errors.Is(err, ErrQuit) {
				return nil
			}
			fmt.Fprintln(out, "error:", err)
		}
	}
}
