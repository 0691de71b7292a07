// Command elfgraft edits ELF binaries in place at the byte level:
// injecting opaque payloads into an existing loadable region, or
// modifying a single header field, either from the command line, a
// batch YAML file, or an interactive shell.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pattyshack/elfgraft/batch"
	"github.com/pattyshack/elfgraft/elf"
	"github.com/pattyshack/elfgraft/engine"
	"github.com/pattyshack/elfgraft/report"
	"github.com/pattyshack/elfgraft/shell"
)

type flags struct {
	infile    string // payload path (inject mode)
	outfile   string
	mod       string
	size      string
	entry     string
	position  string
	offset    string
	overwrite bool
	field     string
	subTag    string
	replace   string
	config    string
	verbose   bool
}

func parseFlags() (*flags, []string) {
	f := &flags{}

	flag.StringVar(&f.infile, "i", "", "payload path (inject mode)")
	flag.StringVar(&f.infile, "infile", "", "payload path (inject mode)")
	flag.StringVar(&f.outfile, "o", "", "output path (default: <infile>_inj<ext>)")
	flag.StringVar(&f.outfile, "outfile", "", "output path (default: <infile>_inj<ext>)")
	flag.StringVar(&f.mod, "m", "", "exec_header|sec_header|prog_header (modify mode)")
	flag.StringVar(&f.mod, "mod", "", "exec_header|sec_header|prog_header (modify mode)")
	flag.StringVar(&f.size, "s", "0x1000", "size budget, hex (inject mode)")
	flag.StringVar(&f.size, "size", "0x1000", "size budget, hex (inject mode)")
	flag.StringVar(&f.entry, "e", "", "new entry point, hex (inject mode)")
	flag.StringVar(&f.entry, "entry", "", "new entry point, hex (inject mode)")
	flag.StringVar(&f.position, "p", "", "section name or index")
	flag.StringVar(&f.position, "position", "", "section name or index")
	flag.StringVar(&f.offset, "b", "", "raw file offset, hex (inject mode)")
	flag.StringVar(&f.offset, "offset", "", "raw file offset, hex (inject mode)")
	flag.BoolVar(&f.overwrite, "overwrite", false, "overwrite the named section in place (inject mode)")
	flag.StringVar(&f.field, "f", "", "field tag (modify mode)")
	flag.StringVar(&f.field, "field", "", "field tag (modify mode)")
	flag.StringVar(&f.subTag, "subtag", "", "e_ident sub-tag: EI_CLASS, EI_DATA, EI_OSABI")
	flag.StringVar(&f.replace, "r", "", "replacement value (modify mode)")
	flag.StringVar(&f.replace, "replace", "", "replacement value (modify mode)")
	flag.StringVar(&f.config, "c", "", "batch operations file, YAML (batch mode)")
	flag.StringVar(&f.config, "config", "", "batch operations file, YAML (batch mode)")
	flag.BoolVar(&f.verbose, "v", false, "disassemble around the entry point (inspect mode)")
	flag.BoolVar(&f.verbose, "verbose", false, "disassemble around the entry point (inspect mode)")

	flag.Parse()
	return f, flag.Args()
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	f, args := parseFlags()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: elfgraft [options] <inject|modify|inspect|batch|shell> <infile>")
		os.Exit(1)
	}
	mode := args[0]

	if err := run(logger, mode, args[1:], f); err != nil {
		logger.Error("elfgraft failed", "mode", mode, "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger, mode string, rest []string, f *flags) error {
	switch mode {
	case "inject":
		return runInject(logger, rest, f)
	case "modify":
		return runModify(logger, rest, f)
	case "inspect":
		return runInspect(rest, f)
	case "batch":
		return runBatch(logger, rest, f)
	case "shell":
		return runShell(rest)
	default:
		return fmt.Errorf("unrecognized mode %q", mode)
	}
}

func loadFile(args []string) (*elf.File, string, error) {
	if len(args) < 1 {
		return nil, "", fmt.Errorf("missing infile path")
	}
	path := args[0]

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", path, err)
	}

	model, err := elf.Parse(content)
	if err != nil {
		return nil, "", fmt.Errorf("parse %s: %w", path, err)
	}
	return model, path, nil
}

func defaultOutfile(infile string) string {
	ext := filepath.Ext(infile)
	base := strings.TrimSuffix(infile, ext)
	return base + "_inj" + ext
}

func writeOutput(model *elf.File, infile, outfile string) (string, error) {
	if outfile == "" {
		outfile = defaultOutfile(infile)
	}

	content, err := model.Serialize()
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(outfile, content, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", outfile, err)
	}
	return outfile, nil
}

func runInject(logger *slog.Logger, args []string, f *flags) error {
	model, infile, err := loadFile(args)
	if err != nil {
		return err
	}

	if f.infile == "" {
		return fmt.Errorf("inject mode requires -i/--infile (payload path)")
	}
	payload, err := os.ReadFile(f.infile)
	if err != nil {
		return fmt.Errorf("read payload %s: %w", f.infile, err)
	}

	budget, err := engine.ParseHexValue(f.size)
	if err != nil {
		return err
	}

	var entry *uint64
	if f.entry != "" {
		v, err := engine.ParseHexValue(f.entry)
		if err != nil {
			return err
		}
		entry = &v
	}

	inj, err := engine.BuildInjection(f.position, f.offset, payload, budget, f.overwrite, entry)
	if err != nil {
		return err
	}

	delta, err := engine.Inject(model, inj)
	if err != nil {
		return err
	}

	outpath, err := writeOutput(model, infile, f.outfile)
	if err != nil {
		return err
	}

	logger.Info("inject", "target", inj.Locator.String(), "delta", delta, "outfile", outpath)
	return nil
}

func runModify(logger *slog.Logger, args []string, f *flags) error {
	model, infile, err := loadFile(args)
	if err != nil {
		return err
	}

	m, err := engine.BuildModification(model, f.mod, f.position, f.field, f.subTag, f.replace)
	if err != nil {
		return err
	}
	if err := engine.Modify(model, m); err != nil {
		return err
	}

	outpath, err := writeOutput(model, infile, f.outfile)
	if err != nil {
		return err
	}

	logger.Info("modify", "target", f.mod, "field", f.field, "outfile", outpath)
	return nil
}

func runInspect(args []string, f *flags) error {
	model, _, err := loadFile(args)
	if err != nil {
		return err
	}

	if err := report.Dump(os.Stdout, model); err != nil {
		return err
	}

	if f.verbose && model.Header.MachineArchitecture == elf.MachineX86_64 {
		return report.DumpDisassembly(os.Stdout, model, model.Header.EntryPointAddress, 10)
	}
	return nil
}

func runBatch(logger *slog.Logger, args []string, f *flags) error {
	model, infile, err := loadFile(args)
	if err != nil {
		return err
	}

	if f.config == "" {
		return fmt.Errorf("batch mode requires -c/--config (YAML operations file)")
	}
	doc, err := batch.Load(f.config)
	if err != nil {
		return err
	}

	results, err := batch.Run(model, doc)
	if err != nil {
		return err
	}

	outpath, err := writeOutput(model, infile, f.outfile)
	if err != nil {
		return err
	}

	logger.Info("batch", "operations", len(results), "outfile", outpath)
	return nil
}

func runShell(args []string) error {
	model, _, err := loadFile(args)
	if err != nil {
		return err
	}
	return shell.Run(model, os.Stdout)
}
