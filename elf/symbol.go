package elf

import (
	"encoding/binary"
	"fmt"

	"github.com/ianlancetaylor/demangle"
)

// StringTable wraps the raw bytes of a SHT_STRTAB section with
// NUL-terminated lookup by offset, per the ELF string table convention
// (offset 0 is always the empty string).
type StringTable struct {
	Bytes []byte
}

// Get returns the NUL-terminated string starting at offset.
func (t *StringTable) Get(offset uint32) (string, error) {
	if int(offset) >= len(t.Bytes) {
		return "", fmt.Errorf("%w: string table offset %d", ErrInvalidByteOffset, offset)
	}
	end := int(offset)
	for end < len(t.Bytes) && t.Bytes[end] != 0 {
		end++
	}
	return string(t.Bytes[offset:end]), nil
}

// SymbolType and SymbolBinding decompose st_info (ELF32_ST_TYPE/BIND).
type SymbolType byte

const (
	STTNoType  = SymbolType(0)
	STTObject  = SymbolType(1)
	STTFunc    = SymbolType(2)
	STTSection = SymbolType(3)
	STTFile    = SymbolType(4)
	STTCommon  = SymbolType(5)
	STTTLS     = SymbolType(6)
)

func (t SymbolType) String() string {
	switch t {
	case STTNoType:
		return "NOTYPE"
	case STTObject:
		return "OBJECT"
	case STTFunc:
		return "FUNC"
	case STTSection:
		return "SECTION"
	case STTFile:
		return "FILE"
	case STTCommon:
		return "COMMON"
	case STTTLS:
		return "TLS"
	default:
		return fmt.Sprintf("SymbolTypeUnknown(%d)", byte(t))
	}
}

type SymbolBinding byte

const (
	STBLocal  = SymbolBinding(0)
	STBGlobal = SymbolBinding(1)
	STBWeak   = SymbolBinding(2)
)

func (b SymbolBinding) String() string {
	switch b {
	case STBLocal:
		return "LOCAL"
	case STBGlobal:
		return "GLOBAL"
	case STBWeak:
		return "WEAK"
	default:
		return fmt.Sprintf("SymbolBindingUnknown(%d)", byte(b))
	}
}

// SymbolEntry is the raw symbol table entry (Elf32_Sym / Elf64_Sym),
// widened to a class-agnostic shape.
type SymbolEntry struct {
	NameIndex      uint32
	Info           byte
	Other          byte
	SectionIndex   uint16
	Value          uint64
	Size           uint64
}

func (e SymbolEntry) Type() SymbolType       { return SymbolType(e.Info & 0xf) }
func (e SymbolEntry) Binding() SymbolBinding { return SymbolBinding(e.Info >> 4) }

func decodeSymbolEntry(class Class, order binary.ByteOrder, content []byte) SymbolEntry {
	e := SymbolEntry{}

	if class == Class32 {
		e.NameIndex = readU32(order, content, 0)
		e.Value = uint64(readU32(order, content, 4))
		e.Size = uint64(readU32(order, content, 8))
		e.Info = readU8(content, 12)
		e.Other = readU8(content, 13)
		e.SectionIndex = readU16(order, content, 14)
	} else {
		e.NameIndex = readU32(order, content, 0)
		e.Info = readU8(content, 4)
		e.Other = readU8(content, 5)
		e.SectionIndex = readU16(order, content, 6)
		e.Value = readU64(order, content, 8)
		e.Size = readU64(order, content, 16)
	}

	return e
}

// Symbol pairs a decoded entry with its resolved (and, where possible,
// demangled) name.
type Symbol struct {
	Entry        SymbolEntry
	Name         string
	PrettyName   string
}

// SymbolTable holds the parsed contents of a SHT_SYMTAB or SHT_DYNSYM
// section, read-only: the editor never adds or removes symbols, only
// the bytes and headers that contain them move.
type SymbolTable struct {
	Symbols []Symbol
}

// parseSymbolTable decodes every fixed-size entry in raw and resolves
// each name against strings. C++ and Rust mangled names are rendered
// through demangle on a best-effort basis; on failure PrettyName falls
// back to the raw Name.
func parseSymbolTable(class Class, order binary.ByteOrder, raw []byte, strings *StringTable) (*SymbolTable, error) {
	entrySize := 16
	if class == Class64 {
		entrySize = 24
	}
	if len(raw)%entrySize != 0 {
		return nil, fmt.Errorf("%w: symbol table size %d not a multiple of entry size %d",
			ErrMalformedElf, len(raw), entrySize)
	}

	count := len(raw) / entrySize
	table := &SymbolTable{Symbols: make([]Symbol, 0, count)}

	for i := 0; i < count; i++ {
		entry := decodeSymbolEntry(class, order, raw[i*entrySize:(i+1)*entrySize])

		name := ""
		if strings != nil && entry.NameIndex != 0 {
			resolved, err := strings.Get(entry.NameIndex)
			if err != nil {
				return nil, fmt.Errorf("symbol %d: %w", i, err)
			}
			name = resolved
		}

		table.Symbols = append(table.Symbols, Symbol{
			Entry:      entry,
			Name:       name,
			PrettyName: demanglePretty(name),
		})
	}

	return table, nil
}

// demanglePretty renders name through demangle.ToString, falling back
// to the mangled form when it isn't a mangled name this library
// recognises.
func demanglePretty(name string) string {
	if name == "" {
		return name
	}
	pretty, err := demangle.ToString(name, demangle.NoParams)
	if err != nil {
		return name
	}
	return pretty
}

// ByName returns the first symbol with the given (mangled) name.
func (t *SymbolTable) ByName(name string) (Symbol, bool) {
	for _, s := range t.Symbols {
		if s.Name == name {
			return s, true
		}
	}
	return Symbol{}, false
}

// At returns the first symbol whose value/size span contains addr, or
// false if none does. Symbols of any type are considered; those with a
// zero value or zero size are skipped. Used by the disassembly reporter
// to label instruction windows.
func (t *SymbolTable) At(addr uint64) (Symbol, bool) {
	for _, s := range t.Symbols {
		if s.Entry.Value == 0 || s.Entry.Size == 0 {
			continue
		}
		if addr >= s.Entry.Value && addr < s.Entry.Value+s.Entry.Size {
			return s, true
		}
	}
	return Symbol{}, false
}
