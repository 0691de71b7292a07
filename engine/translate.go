package engine

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pattyshack/elfgraft/elf"
)

// ParseHexValue parses replace as a hex integer, with or without a
// leading "0x"/"0X" prefix. Used for every numeric field tag not
// covered by a symbolic enum table.
func ParseHexValue(replace string) (uint64, error) {
	trimmed := strings.TrimPrefix(strings.TrimPrefix(replace, "0x"), "0X")
	v, err := strconv.ParseUint(trimmed, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a valid hex value", elf.ErrInvalidFieldValue, replace)
	}
	return v, nil
}

// ParseIndex parses a decimal or "0x"-prefixed hex table index, for
// program headers and sections addressed positionally rather than by
// name.
func ParseIndex(position string) (int, error) {
	v, err := strconv.ParseInt(position, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a valid index", elf.ErrInvalidFieldValue, position)
	}
	return int(v), nil
}

// ExecHeaderFieldValue translates a (field, subTag, replace) triple
// into the numeric value UpdateField expects: e_ident sub-tags and the
// type/machine/version fields go through their symbolic enum tables;
// everything else is parsed as hex.
func ExecHeaderFieldValue(field, subTag, replace string) (uint64, error) {
	switch field {
	case elf.FieldEIdent:
		switch subTag {
		case elf.SubTagClass:
			v, err := elf.ParseClass(replace)
			return uint64(v), err
		case elf.SubTagData:
			v, err := elf.ParseDataEncoding(replace)
			return uint64(v), err
		case elf.SubTagOSABI:
			v, err := elf.ParseOSABI(replace)
			return uint64(v), err
		default:
			return 0, fmt.Errorf("%w: e_ident sub-tag %q", elf.ErrUnknownField, subTag)
		}
	case elf.FieldEType:
		v, err := elf.ParseFileType(replace)
		return uint64(v), err
	case elf.FieldEMachine:
		v, err := elf.ParseMachine(replace)
		return uint64(v), err
	case elf.FieldEVersion:
		v, err := elf.ParseVersion(replace)
		return uint64(v), err
	default:
		return ParseHexValue(replace)
	}
}

// SectionHeaderFieldValue translates a (field, replace) pair:
// sh_type and sh_flags go through their symbolic tables; everything
// else is parsed as hex.
func SectionHeaderFieldValue(field, replace string) (uint64, error) {
	switch field {
	case elf.FieldSHType:
		v, err := elf.ParseSectionType(replace)
		return uint64(v), err
	case elf.FieldSHFlags:
		v, err := elf.ParseSectionFlags(replace)
		return uint64(v), err
	default:
		return ParseHexValue(replace)
	}
}

// ProgramHeaderFieldValue translates a (field, replace) pair:
// p_type goes through its symbolic table; p_flags is parsed as hex
// then range-validated to [1, 7]; everything else is parsed as hex.
func ProgramHeaderFieldValue(field, replace string) (uint64, error) {
	switch field {
	case elf.FieldPType:
		v, err := elf.ParseProgramType(replace)
		return uint64(v), err
	case elf.FieldPFlags:
		hexValue, err := ParseHexValue(replace)
		if err != nil {
			return 0, err
		}
		flags, err := elf.ParseProgramFlags(hexValue)
		return uint64(flags), err
	default:
		return ParseHexValue(replace)
	}
}

// ParseTargetKind maps the CLI/batch -m/--mod value to a TargetKind.
func ParseTargetKind(mod string) (TargetKind, error) {
	switch mod {
	case "exec_header":
		return TargetExecHeader, nil
	case "sec_header":
		return TargetSection, nil
	case "prog_header":
		return TargetSegment, nil
	default:
		return "", fmt.Errorf("%w: mod %q", elf.ErrUnknownField, mod)
	}
}

// ResolveSectionPosition resolves a CLI/batch "position" argument
// against f's sections: by name first, falling back to a decimal or
// hex index.
func ResolveSectionPosition(f *elf.File, position string) (int, error) {
	for i, s := range f.Sections {
		if s.Name == position {
			return i, nil
		}
	}

	idx, err := ParseIndex(position)
	if err != nil {
		return 0, fmt.Errorf("%w: section %q", elf.ErrUnknownSection, position)
	}
	if idx < 0 || idx >= len(f.Sections) {
		return 0, fmt.Errorf("%w: section index %d", elf.ErrUnknownSection, idx)
	}
	return idx, nil
}

// BuildModification resolves the common -m/-p/-f/-r (mod/position/field/
// replace) quadruple shared by the CLI, batch, and shell front-ends into
// a Modification ready for Modify. position is ignored for exec_header;
// for sec_header it is resolved by ResolveSectionPosition; for
// prog_header it must be a decimal or hex segment index.
func BuildModification(f *elf.File, mod, position, field, subTag, replace string) (Modification, error) {
	target, err := ParseTargetKind(mod)
	if err != nil {
		return Modification{}, err
	}

	m := Modification{Target: target, Field: field, SubTag: subTag}

	switch target {
	case TargetExecHeader:
		v, err := ExecHeaderFieldValue(field, subTag, replace)
		if err != nil {
			return Modification{}, err
		}
		m.Value = v

	case TargetSection:
		idx, err := ResolveSectionPosition(f, position)
		if err != nil {
			return Modification{}, err
		}
		v, err := SectionHeaderFieldValue(field, replace)
		if err != nil {
			return Modification{}, err
		}
		m.Index = idx
		m.Value = v

	case TargetSegment:
		idx, err := ParseIndex(position)
		if err != nil {
			return Modification{}, fmt.Errorf("%w: segment %q", elf.ErrUnknownSegment, position)
		}
		if idx < 0 || idx >= len(f.Segments) {
			return Modification{}, fmt.Errorf("%w: segment index %d", elf.ErrUnknownSegment, idx)
		}
		v, err := ProgramHeaderFieldValue(field, replace)
		if err != nil {
			return Modification{}, err
		}
		m.Index = idx
		m.Value = v
	}

	return m, nil
}

// BuildInjection resolves the common -p/-b/-s/-e/--overwrite (position/
// offset/size/entry/overwrite) set shared by the CLI, batch, and shell
// front-ends into an Injection ready for Inject. Exactly one of
// position or offset must be non-empty.
func BuildInjection(position, offset string, payload []byte, budget uint64, overwrite bool, entry *uint64) (Injection, error) {
	var loc Locator
	switch {
	case position != "" && offset != "":
		return Injection{}, fmt.Errorf("%w: specify either a section position or a raw offset, not both", elf.ErrInvalidFieldValue)
	case position != "":
		loc = Locator{SectionName: position}
	case offset != "":
		v, err := ParseHexValue(offset)
		if err != nil {
			return Injection{}, err
		}
		loc = Locator{FileOffset: &v}
	default:
		return Injection{}, fmt.Errorf("%w: an injection needs a section position or a raw offset", elf.ErrInvalidFieldValue)
	}

	return Injection{
		Locator:       loc,
		Payload:       payload,
		Budget:        budget,
		Overwrite:     overwrite,
		SetEntryPoint: entry,
	}, nil
}
