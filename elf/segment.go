package elf

import (
	"encoding/binary"
	"fmt"
)

// ProgramType (p_type).
type ProgramType uint32

const (
	PTNull         = ProgramType(0)
	PTLoad         = ProgramType(1)
	PTDynamic      = ProgramType(2)
	PTInterp       = ProgramType(3)
	PTNote         = ProgramType(4)
	PTShlib        = ProgramType(5)
	PTPhdr         = ProgramType(6)
	PTTLS          = ProgramType(7)
	PTNum          = ProgramType(8)
	PTLOOS         = ProgramType(0x60000000)
	PTGNUEHFrame   = ProgramType(0x6474e550)
	PTGNUStack     = ProgramType(0x6474e551)
	PTGNURelro     = ProgramType(0x6474e552)
	PTLOSunW       = ProgramType(0x6ffffffa)
	PTSunWStack    = ProgramType(0x6ffffffb)
	PTHIOS         = ProgramType(0x6fffffff) // aliases PT_HISUNW
	PTLOPROC       = ProgramType(0x70000000)
	PTHIPROC       = ProgramType(0x7fffffff)
)

var programTypeByName = map[string]ProgramType{
	"PT_NULL": PTNull, "PT_LOAD": PTLoad, "PT_DYNAMIC": PTDynamic,
	"PT_INTERP": PTInterp, "PT_NOTE": PTNote, "PT_SHLIB": PTShlib,
	"PT_PHDR": PTPhdr, "PT_TLS": PTTLS, "PT_NUM": PTNum, "PT_LOOS": PTLOOS,
	"PT_GNU_EH_FRAME": PTGNUEHFrame, "PT_GNU_STACK": PTGNUStack,
	"PT_GNU_RELRO": PTGNURelro, "PT_LOSUNW": PTLOSunW,
	"PT_SUNWSTACK": PTSunWStack, "PT_HISUNW": PTHIOS, "PT_HIOS": PTHIOS,
	"PT_LOPROC": PTLOPROC, "PT_HIPROC": PTHIPROC,
}

func ParseProgramType(name string) (ProgramType, error) {
	v, ok := programTypeByName[name]
	if !ok {
		return 0, fmt.Errorf("%w: p_type %q", ErrUnknownEnumValue, name)
	}
	return v, nil
}

func (t ProgramType) String() string {
	switch t {
	case PTNull:
		return "PT_NULL"
	case PTLoad:
		return "PT_LOAD"
	case PTDynamic:
		return "PT_DYNAMIC"
	case PTInterp:
		return "PT_INTERP"
	case PTNote:
		return "PT_NOTE"
	case PTShlib:
		return "PT_SHLIB"
	case PTPhdr:
		return "PT_PHDR"
	case PTTLS:
		return "PT_TLS"
	case PTGNUEHFrame:
		return "PT_GNU_EH_FRAME"
	case PTGNUStack:
		return "PT_GNU_STACK"
	case PTGNURelro:
		return "PT_GNU_RELRO"
	default:
		return fmt.Sprintf("ProgramTypeUnknown(%#x)", uint32(t))
	}
}

// ProgramFlags (p_flags): any bitwise combination of read/write/execute.
type ProgramFlags uint32

const (
	PFExecute = ProgramFlags(0x1)
	PFWrite   = ProgramFlags(0x2)
	PFRead    = ProgramFlags(0x4)
)

func (f ProgramFlags) String() string {
	rwx := []byte{'-', '-', '-'}
	if f&PFRead != 0 {
		rwx[0] = 'r'
	}
	if f&PFWrite != 0 {
		rwx[1] = 'w'
	}
	if f&PFExecute != 0 {
		rwx[2] = 'x'
	}
	return string(rwx)
}

// ParseProgramFlags accepts a hex bit combination of PF_R(4)/PF_W(2)/PF_X(1)
// in [1, 7], matching the original source's validation.
func ParseProgramFlags(hexValue uint64) (ProgramFlags, error) {
	if hexValue == 0 || hexValue > 7 {
		return 0, fmt.Errorf(
			"%w: p_flags must be a nonzero combination of 1 (x), 2 (w), 4 (r)",
			ErrInvalidFieldValue)
	}
	return ProgramFlags(hexValue), nil
}

// ProgramHeaderEntry is the program header (Elf32_Phdr / Elf64_Phdr),
// widened to a class-agnostic in-memory shape.
type ProgramHeaderEntry struct {
	Type            ProgramType
	Flags           ProgramFlags
	Offset          uint64
	VirtualAddress  uint64
	PhysicalAddress uint64
	FileSize        uint64
	MemSize         uint64
	Alignment       uint64
}

func decodeProgramHeaderEntry(class Class, order binary.ByteOrder, content []byte) ProgramHeaderEntry {
	e := ProgramHeaderEntry{}

	if class == Class32 {
		e.Type = ProgramType(readU32(order, content, 0))
		e.Offset = uint64(readU32(order, content, 4))
		e.VirtualAddress = uint64(readU32(order, content, 8))
		e.PhysicalAddress = uint64(readU32(order, content, 12))
		e.FileSize = uint64(readU32(order, content, 16))
		e.MemSize = uint64(readU32(order, content, 20))
		e.Flags = ProgramFlags(readU32(order, content, 24))
		e.Alignment = uint64(readU32(order, content, 28))
	} else {
		e.Type = ProgramType(readU32(order, content, 0))
		e.Flags = ProgramFlags(readU32(order, content, 4))
		e.Offset = readU64(order, content, 8)
		e.VirtualAddress = readU64(order, content, 16)
		e.PhysicalAddress = readU64(order, content, 24)
		e.FileSize = readU64(order, content, 32)
		e.MemSize = readU64(order, content, 40)
		e.Alignment = readU64(order, content, 48)
	}

	return e
}

func (e ProgramHeaderEntry) encode(class Class, order binary.ByteOrder, content []byte) {
	if class == Class32 {
		writeU32(order, content, 0, uint32(e.Type))
		writeU32(order, content, 4, uint32(e.Offset))
		writeU32(order, content, 8, uint32(e.VirtualAddress))
		writeU32(order, content, 12, uint32(e.PhysicalAddress))
		writeU32(order, content, 16, uint32(e.FileSize))
		writeU32(order, content, 20, uint32(e.MemSize))
		writeU32(order, content, 24, uint32(e.Flags))
		writeU32(order, content, 28, uint32(e.Alignment))
		return
	}

	writeU32(order, content, 0, uint32(e.Type))
	writeU32(order, content, 4, uint32(e.Flags))
	writeU64(order, content, 8, e.Offset)
	writeU64(order, content, 16, e.VirtualAddress)
	writeU64(order, content, 24, e.PhysicalAddress)
	writeU64(order, content, 32, e.FileSize)
	writeU64(order, content, 40, e.MemSize)
	writeU64(order, content, 48, e.Alignment)
}

// Recognised program-header field tags.
const (
	FieldPType   = "p_type"
	FieldPOffset = "p_offset"
	FieldPVAddr  = "p_vaddr"
	FieldPPAddr  = "p_paddr"
	FieldPFilesz = "p_filesz"
	FieldPMemsz  = "p_memsz"
	FieldPFlags  = "p_flags"
	FieldPAlign  = "p_align"
)

func (e *ProgramHeaderEntry) UpdateField(name string, value uint64) error {
	switch name {
	case FieldPType:
		e.Type = ProgramType(value)
	case FieldPOffset:
		e.Offset = value
	case FieldPVAddr:
		e.VirtualAddress = value
	case FieldPPAddr:
		e.PhysicalAddress = value
	case FieldPFilesz:
		e.FileSize = value
	case FieldPMemsz:
		e.MemSize = value
	case FieldPFlags:
		e.Flags = ProgramFlags(value)
	case FieldPAlign:
		e.Alignment = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return nil
}

// Segment is a (program header, raw bytes) pair. Raw bytes are owned
// independently from any section whose file extent overlaps this
// segment's.
type Segment struct {
	Header ProgramHeaderEntry
	Bytes  []byte
}

// AlignmentCongruenceHolds reports whether p_offset ≡ p_vaddr (mod
// p_align), the invariant required when p_align > 1.
func (s *Segment) AlignmentCongruenceHolds() bool {
	align := s.Header.Alignment
	if align <= 1 {
		return true
	}
	return s.Header.Offset%align == s.Header.VirtualAddress%align
}

// IncreaseOffset adds delta to p_offset only (used when cascading later
// segments past an injection site).
func (s *Segment) IncreaseOffset(delta uint64) {
	s.Header.Offset += delta
}

// IncreaseVAddr adds delta to p_vaddr (used to restore alignment
// congruence after IncreaseOffset breaks it).
func (s *Segment) IncreaseVAddr(delta uint64) {
	s.Header.VirtualAddress += delta
}

// IncreaseSize grows both p_filesz and p_memsz by delta, keeping the
// segment's in-memory and on-disk sizes coherent.
func (s *Segment) IncreaseSize(delta uint64) {
	s.Header.FileSize += delta
	s.Header.MemSize += delta
}

// CascadeOffsetAfterInjection applies the update_segment_offsets_after
// step to one later segment: advance
// p_offset by delta, and if that breaks alignment congruence, advance
// p_vaddr by the same delta to restore it.
func (s *Segment) CascadeOffsetAfterInjection(delta uint64) {
	wasCongruent := s.AlignmentCongruenceHolds()
	s.IncreaseOffset(delta)
	if wasCongruent && !s.AlignmentCongruenceHolds() {
		s.IncreaseVAddr(delta)
	}
}

// ContainsFileOffset reports whether offset falls within this segment's
// file extent [p_offset, p_offset+p_filesz).
func (s *Segment) ContainsFileOffset(offset uint64) bool {
	start := s.Header.Offset
	end := start + s.Header.FileSize
	return offset >= start && offset < end
}

// ModifySegment applies an injection site to a segment's raw bytes.
// offset is relative to the start of the segment's own file extent.
// sectionSize, when non-nil, is the size of the section named by the
// locator (nil when the locator was a raw file offset).
//
//   - budget < len(payload): ErrInvalidInjectionSize.
//   - overwrite && sectionSize != nil: payload replaces
//     [offset, offset+*sectionSize) in place, right-padded with zero
//     bytes out to the full section width. len(payload) > *sectionSize
//     is an error. Size delta is always 0.
//   - sectionSize != nil && !overwrite: the insertion site is
//     offset+*sectionSize (end of the named section), not offset
//     itself.
//   - otherwise (raw-offset locator, or overwrite without a named
//     section): the insertion site is offset.
//
// In the non-overwrite case, payload is spliced in whole: new bytes =
// Bytes[:site] ++ payload ++ Bytes[site:]. No existing byte is
// overwritten or dropped; size delta is always len(payload).
func (s *Segment) ModifySegment(
	offset uint64,
	sectionSize *uint64,
	overwrite bool,
	budget uint64,
	payload []byte,
) (delta uint64, err error) {
	if offset > uint64(len(s.Bytes)) {
		return 0, fmt.Errorf("%w: offset %#x exceeds segment size %#x", ErrInvalidByteOffset, offset, len(s.Bytes))
	}
	if budget < uint64(len(payload)) {
		return 0, fmt.Errorf("%w: payload of %d bytes exceeds budget %#x", ErrInvalidInjectionSize, len(payload), budget)
	}

	if overwrite && sectionSize != nil {
		width := *sectionSize
		if uint64(len(payload)) > width {
			return 0, fmt.Errorf("%w: payload of %d bytes exceeds section width %#x", ErrInvalidInjectionSize, len(payload), width)
		}
		end := offset + width
		if end > uint64(len(s.Bytes)) {
			return 0, fmt.Errorf("%w: overwrite extent [%#x,%#x) exceeds segment size %#x", ErrInvalidByteOffset, offset, end, len(s.Bytes))
		}

		padded := make([]byte, width)
		copy(padded, payload)
		copy(s.Bytes[offset:end], padded)
		return 0, nil
	}

	site := offset
	if sectionSize != nil {
		site = offset + *sectionSize
	}
	if site > uint64(len(s.Bytes)) {
		return 0, fmt.Errorf("%w: insertion site %#x exceeds segment size %#x", ErrInvalidByteOffset, site, len(s.Bytes))
	}

	next := make([]byte, 0, len(s.Bytes)+len(payload))
	next = append(next, s.Bytes[:site]...)
	next = append(next, payload...)
	next = append(next, s.Bytes[site:]...)

	delta = uint64(len(payload))
	s.Bytes = next
	s.IncreaseSize(delta)

	return delta, nil
}
