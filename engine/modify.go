package engine

import (
	"fmt"

	"github.com/pattyshack/elfgraft/elf"
)

// Modify applies a single typed field edit to f.
func Modify(f *elf.File, op Modification) error {
	switch op.Target {
	case TargetExecHeader:
		return f.Header.UpdateField(op.Field, op.Value, op.SubTag)

	case TargetSection:
		if op.Index < 0 || op.Index >= len(f.Sections) {
			return fmt.Errorf("%w: section index %d", elf.ErrUnknownSection, op.Index)
		}
		return f.Sections[op.Index].Header.UpdateField(op.Field, op.Value)

	case TargetSegment:
		if op.Index < 0 || op.Index >= len(f.Segments) {
			return fmt.Errorf("%w: segment index %d", elf.ErrUnknownSegment, op.Index)
		}
		if op.Field == elf.FieldPFlags {
			flags, err := elf.ParseProgramFlags(op.Value)
			if err != nil {
				return err
			}
			f.Segments[op.Index].Header.Flags = flags
			return nil
		}
		return f.Segments[op.Index].Header.UpdateField(op.Field, op.Value)

	default:
		return fmt.Errorf("%w: target %q", elf.ErrUnknownField, op.Target)
	}
}
