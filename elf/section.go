package elf

import (
	"encoding/binary"
	"fmt"
)

// SectionType (sh_type), including common GNU extensions.
type SectionType uint32

const (
	SHTNull          = SectionType(0)
	SHTProgBits      = SectionType(1)
	SHTSymTab        = SectionType(2)
	SHTStrTab        = SectionType(3)
	SHTRela          = SectionType(4)
	SHTHash          = SectionType(5)
	SHTDynamic       = SectionType(6)
	SHTNote          = SectionType(7)
	SHTNoBits        = SectionType(8)
	SHTRel           = SectionType(9)
	SHTShlib         = SectionType(10)
	SHTDynSym        = SectionType(11)
	SHTInitArray     = SectionType(14)
	SHTFiniArray     = SectionType(15)
	SHTPreinitArray  = SectionType(16)
	SHTGroup         = SectionType(17)
	SHTSymTabShndx   = SectionType(18)
	SHTNum           = SectionType(19)
	SHTLOOS          = SectionType(0x60000000)
	SHTGNUAttributes = SectionType(0x6ffffff5)
	SHTGNUHash       = SectionType(0x6ffffff6)
	SHTGNULibList    = SectionType(0x6ffffff7)
	SHTChecksum      = SectionType(0x6ffffff8)
	SHTGNUVerdef     = SectionType(0x6ffffffd)
	SHTGNUVerneed    = SectionType(0x6ffffffe)
	SHTGNUVersym     = SectionType(0x6fffffff) // aliases SHT_HIOS
	SHTLOPROC        = SectionType(0x70000000)
	SHTHIPROC        = SectionType(0x7fffffff)
	SHTLOUSER        = SectionType(0x80000000)
	SHTHIUSER        = SectionType(0x8fffffff)
)

var sectionTypeByName = map[string]SectionType{
	"SHT_NULL": SHTNull, "SHT_PROGBITS": SHTProgBits, "SHT_SYMTAB": SHTSymTab,
	"SHT_STRTAB": SHTStrTab, "SHT_RELA": SHTRela, "SHT_HASH": SHTHash,
	"SHT_DYNAMIC": SHTDynamic, "SHT_NOTE": SHTNote, "SHT_NOBITS": SHTNoBits,
	"SHT_REL": SHTRel, "SHT_SHLIB": SHTShlib, "SHT_DYNSYM": SHTDynSym,
	"SHT_INIT_ARRAY": SHTInitArray, "SHT_FINI_ARRAY": SHTFiniArray,
	"SHT_PREINIT_ARRAY": SHTPreinitArray, "SHT_GROUP": SHTGroup,
	"SHT_SYMTAB_SHNDX": SHTSymTabShndx, "SHT_NUM": SHTNum, "SHT_LOOS": SHTLOOS,
	"SHT_GNU_ATTRIBUTES": SHTGNUAttributes, "SHT_GNU_HASH": SHTGNUHash,
	"SHT_GNU_LIBLIST": SHTGNULibList, "SHT_CHECKSUM": SHTChecksum,
	"SHT_GNU_verdef": SHTGNUVerdef, "SHT_GNU_verneed": SHTGNUVerneed,
	"SHT_GNU_versym": SHTGNUVersym, "SHT_HIOS": SHTGNUVersym,
	"SHT_LOPROC": SHTLOPROC, "SHT_HIPROC": SHTHIPROC, "SHT_LOUSER": SHTLOUSER,
	"SHT_HIUSER": SHTHIUSER,
}

func ParseSectionType(name string) (SectionType, error) {
	v, ok := sectionTypeByName[name]
	if !ok {
		return 0, fmt.Errorf("%w: sh_type %q", ErrUnknownEnumValue, name)
	}
	return v, nil
}

func (t SectionType) String() string {
	for name, v := range sectionTypeByName {
		if v == t && name != "SHT_HIOS" { // prefer the canonical alias
			return name
		}
	}
	return fmt.Sprintf("SectionTypeUnknown(%#x)", uint32(t))
}

// SectionFlags (sh_flags).
type SectionFlags uint64

const (
	SHFWrite           = SectionFlags(0x1)
	SHFAlloc           = SectionFlags(0x2)
	SHFExecInstr       = SectionFlags(0x4)
	SHFMerge           = SectionFlags(0x10)
	SHFStrings         = SectionFlags(0x20)
	SHFInfoLink        = SectionFlags(0x40)
	SHFLinkOrder       = SectionFlags(0x80)
	SHFOSNonconforming = SectionFlags(0x100)
	SHFGroup           = SectionFlags(0x200)
	SHFTLS             = SectionFlags(0x400)
	SHFCompressed      = SectionFlags(0x800)
	SHFMaskOS          = SectionFlags(0x0ff00000)
	SHFRelaLivepatch   = SectionFlags(0x00100000)
	SHFROAfterInit     = SectionFlags(0x00200000)
	SHFMaskProc        = SectionFlags(0xf0000000)
)

var sectionFlagByName = map[string]SectionFlags{
	"SHF_WRITE": SHFWrite, "SHF_ALLOC": SHFAlloc, "SHF_EXECINSTR": SHFExecInstr,
	"SHF_MERGE": SHFMerge, "SHF_STRINGS": SHFStrings, "SHF_INFO_LINK": SHFInfoLink,
	"SHF_LINK_ORDER": SHFLinkOrder, "SHF_OS_NONCONFORMING": SHFOSNonconforming,
	"SHF_GROUP": SHFGroup, "SHF_TLS": SHFTLS, "SHF_COMPRESSED": SHFCompressed,
	"SHF_MASKOS": SHFMaskOS, "SHF_RELA_LIVEPATCH": SHFRelaLivepatch,
	"SHF_RO_AFTER_INIT": SHFROAfterInit, "SHF_MASKPROC": SHFMaskProc,
}

func ParseSectionFlags(name string) (SectionFlags, error) {
	v, ok := sectionFlagByName[name]
	if !ok {
		return 0, fmt.Errorf("%w: sh_flags %q", ErrUnknownEnumValue, name)
	}
	return v, nil
}

func (f SectionFlags) String() string {
	rwx := []byte{'-', '-', '-'}
	if f&SHFWrite != 0 {
		rwx[0] = 'w'
	}
	if f&SHFAlloc != 0 {
		rwx[1] = 'a'
	}
	if f&SHFExecInstr != 0 {
		rwx[2] = 'x'
	}
	return string(rwx)
}

// SectionHeaderEntry is the section header (Elf32_Shdr / Elf64_Shdr),
// widened to a class-agnostic in-memory shape.
type SectionHeaderEntry struct {
	NameIndex        uint32
	Type             SectionType
	Flags            SectionFlags
	Address          uint64
	Offset           uint64
	Size             uint64
	Link             uint32
	Info             uint32
	AddressAlignment uint64
	EntrySize        uint64
}

func decodeSectionHeaderEntry(class Class, order binary.ByteOrder, content []byte) SectionHeaderEntry {
	e := SectionHeaderEntry{}
	off := 0

	e.NameIndex = readU32(order, content, off)
	off += 4
	e.Type = SectionType(readU32(order, content, off))
	off += 4

	if class == Class32 {
		e.Flags = SectionFlags(readU32(order, content, off))
		off += 4
		e.Address = uint64(readU32(order, content, off))
		off += 4
		e.Offset = uint64(readU32(order, content, off))
		off += 4
		e.Size = uint64(readU32(order, content, off))
		off += 4
		e.Link = readU32(order, content, off)
		off += 4
		e.Info = readU32(order, content, off)
		off += 4
		e.AddressAlignment = uint64(readU32(order, content, off))
		off += 4
		e.EntrySize = uint64(readU32(order, content, off))
	} else {
		e.Flags = SectionFlags(readU64(order, content, off))
		off += 8
		e.Address = readU64(order, content, off)
		off += 8
		e.Offset = readU64(order, content, off)
		off += 8
		e.Size = readU64(order, content, off)
		off += 8
		e.Link = readU32(order, content, off)
		off += 4
		e.Info = readU32(order, content, off)
		off += 4
		e.AddressAlignment = readU64(order, content, off)
		off += 8
		e.EntrySize = readU64(order, content, off)
	}

	return e
}

func (e SectionHeaderEntry) encode(class Class, order binary.ByteOrder, content []byte) {
	off := 0
	writeU32(order, content, off, e.NameIndex)
	off += 4
	writeU32(order, content, off, uint32(e.Type))
	off += 4

	if class == Class32 {
		writeU32(order, content, off, uint32(e.Flags))
		off += 4
		writeU32(order, content, off, uint32(e.Address))
		off += 4
		writeU32(order, content, off, uint32(e.Offset))
		off += 4
		writeU32(order, content, off, uint32(e.Size))
		off += 4
		writeU32(order, content, off, e.Link)
		off += 4
		writeU32(order, content, off, e.Info)
		off += 4
		writeU32(order, content, off, uint32(e.AddressAlignment))
		off += 4
		writeU32(order, content, off, uint32(e.EntrySize))
	} else {
		writeU64(order, content, off, uint64(e.Flags))
		off += 8
		writeU64(order, content, off, e.Address)
		off += 8
		writeU64(order, content, off, e.Offset)
		off += 8
		writeU64(order, content, off, e.Size)
		off += 8
		writeU32(order, content, off, e.Link)
		off += 4
		writeU32(order, content, off, e.Info)
		off += 4
		writeU64(order, content, off, e.AddressAlignment)
		off += 8
		writeU64(order, content, off, e.EntrySize)
	}
}

// Recognised section-header field tags.
const (
	FieldSHName      = "sh_name"
	FieldSHType      = "sh_type"
	FieldSHFlags     = "sh_flags"
	FieldSHAddr      = "sh_addr"
	FieldSHOffset    = "sh_offset"
	FieldSHSize      = "sh_size"
	FieldSHLink      = "sh_link"
	FieldSHInfo      = "sh_info"
	FieldSHAddralign = "sh_addralign"
	FieldSHEntsize   = "sh_entsize"
)

func (e *SectionHeaderEntry) UpdateField(name string, value uint64) error {
	switch name {
	case FieldSHName:
		e.NameIndex = uint32(value)
	case FieldSHType:
		e.Type = SectionType(value)
	case FieldSHFlags:
		e.Flags = SectionFlags(value)
	case FieldSHAddr:
		e.Address = value
	case FieldSHOffset:
		e.Offset = value
	case FieldSHSize:
		e.Size = value
	case FieldSHLink:
		e.Link = uint32(value)
	case FieldSHInfo:
		e.Info = uint32(value)
	case FieldSHAddralign:
		e.AddressAlignment = value
	case FieldSHEntsize:
		e.EntrySize = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return nil
}

// Section is a (header, raw bytes, resolved name) triple. Raw bytes are
// owned independently from any segment whose file extent overlaps this
// section's.
type Section struct {
	Header SectionHeaderEntry
	Name   string
	Bytes  []byte

	// Auxiliary interpretation populated by the parse pipeline for
	// sections of type STRTAB/SYMTAB/DYNSYM; nil otherwise.
	StringTable *StringTable
	SymbolTable *SymbolTable
}

func (s *Section) IncreaseOffset(delta uint64) {
	s.Header.Offset += delta
}

func (s *Section) IncreaseSize(delta uint64) {
	s.Header.Size += delta
}
