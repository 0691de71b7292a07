// Package batch loads a YAML document describing a sequence of
// injection/modification operations and runs them in order against a
// single parsed ELF model, mirroring the CLI surface field-for-field.
package batch

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pattyshack/elfgraft/elf"
	"github.com/pattyshack/elfgraft/engine"
)

// Operation mirrors the CLI's per-invocation flags, one entry per
// batch step.
type Operation struct {
	Mode string `yaml:"mode"` // "inject" or "modify"

	// inject fields
	Infile    string `yaml:"infile,omitempty"`
	Position  string `yaml:"position,omitempty"`
	Offset    string `yaml:"offset,omitempty"`
	Size      string `yaml:"size,omitempty"`
	Entry     string `yaml:"entry,omitempty"`
	Overwrite bool   `yaml:"overwrite,omitempty"`

	// modify fields
	Target  string `yaml:"target,omitempty"` // "exec_header", "sec_header", "prog_header"
	Field   string `yaml:"field,omitempty"`
	SubTag  string `yaml:"subtag,omitempty"`
	Replace string `yaml:"replace,omitempty"`
}

// Document is the top-level shape of a batch YAML file.
type Document struct {
	Operations []Operation `yaml:"operations"`
}

// Load parses a batch document from path.
func Load(path string) (*Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read batch file %s: %w", path, err)
	}

	var doc Document
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("parse batch file %s: %w", path, err)
	}
	return &doc, nil
}

// Run applies every operation in doc, in order, against f. The caller
// serializes f to the output path once all operations succeed.
func Run(f *elf.File, doc *Document) ([]engine.Result, error) {
	results := make([]engine.Result, 0, len(doc.Operations))

	for i, op := range doc.Operations {
		result, err := runOne(f, op)
		if err != nil {
			return results, fmt.Errorf("operation %d (%s): %w", i, op.Mode, err)
		}
		results = append(results, result)
	}

	return results, nil
}

func runOne(f *elf.File, op Operation) (engine.Result, error) {
	switch op.Mode {
	case "inject":
		return runInject(f, op)
	case "modify":
		return runModify(f, op)
	default:
		return engine.Result{}, fmt.Errorf("%w: mode %q", elf.ErrUnknownField, op.Mode)
	}
}

func runInject(f *elf.File, op Operation) (engine.Result, error) {
	payload, err := os.ReadFile(op.Infile)
	if err != nil {
		return engine.Result{}, fmt.Errorf("read payload %s: %w", op.Infile, err)
	}

	budget := uint64(0x1000)
	if op.Size != "" {
		budget, err = engine.ParseHexValue(op.Size)
		if err != nil {
			return engine.Result{}, err
		}
	}

	var entry *uint64
	if op.Entry != "" {
		v, err := engine.ParseHexValue(op.Entry)
		if err != nil {
			return engine.Result{}, err
		}
		entry = &v
	}

	inj, err := engine.BuildInjection(op.Position, op.Offset, payload, budget, op.Overwrite, entry)
	if err != nil {
		return engine.Result{}, err
	}

	delta, err := engine.Inject(f, inj)
	if err != nil {
		return engine.Result{}, err
	}
	return engine.Result{Mode: "inject", Delta: delta}, nil
}

func runModify(f *elf.File, op Operation) (engine.Result, error) {
	m, err := engine.BuildModification(f, op.Target, op.Position, op.Field, op.SubTag, op.Replace)
	if err != nil {
		return engine.Result{}, err
	}

	if err := engine.Modify(f, m); err != nil {
		return engine.Result{}, err
	}
	return engine.Result{Mode: "modify", Delta: 0}, nil
}
