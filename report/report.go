// Package report renders a parsed binary as human-readable text: the
// executive header, every section (with symbol tables expanded and
// names demangled), and every segment.
package report

import (
	"fmt"
	"io"

	"github.com/pattyshack/elfgraft/elf"
)

// Dump writes a full textual report of f to w, in the order header,
// sections, segments.
func Dump(w io.Writer, f *elf.File) error {
	if err := DumpHeader(w, f); err != nil {
		return err
	}
	if err := DumpSections(w, f); err != nil {
		return err
	}
	if err := DumpSegments(w, f); err != nil {
		return err
	}
	return nil
}

// DumpHeader writes just the executive header line.
func DumpHeader(w io.Writer, f *elf.File) error {
	h := f.Header
	_, err := fmt.Fprintf(
		w,
		"Header: class=%s data=%s osabi=%s type=%s machine=%s version=%d "+
			"entry=%#x phoff=%#x shoff=%#x phnum=%d shnum=%d shstrndx=%d\n",
		h.Class, h.DataEncoding, h.OperatingSystemABI, h.FileType, h.MachineArchitecture,
		h.FormatVersion, h.EntryPointAddress, h.ProgramHeaderOffset, h.SectionHeaderOffset,
		h.NumProgramHeaderEntries, h.NumSectionHeaderEntries, h.SectionStringTableIndex)
	return err
}

// DumpSections writes the section table, expanding symbol tables inline
// and giving each string table's size in bytes (its strings are not
// listed).
func DumpSections(w io.Writer, f *elf.File) error {
	if _, err := fmt.Fprintf(w, "Sections: %d\n", len(f.Sections)); err != nil {
		return err
	}

	for i, s := range f.Sections {
		_, err := fmt.Fprintf(
			w,
			"  [%d] %s: type=%s flags=%s offset=%#x size=%#x link=%d info=%d addralign=%#x\n",
			i, s.Name, s.Header.Type, s.Header.Flags, s.Header.Offset, s.Header.Size,
			s.Header.Link, s.Header.Info, s.Header.AddressAlignment)
		if err != nil {
			return err
		}

		switch {
		case s.StringTable != nil:
			if _, err := fmt.Fprintf(w, "    string table bytes: %d\n", len(s.StringTable.Bytes)); err != nil {
				return err
			}
		case s.SymbolTable != nil:
			for j, sym := range s.SymbolTable.Symbols {
				_, err := fmt.Fprintf(
					w,
					"    %d: %#x %d %s %s shndx=%d %s\n",
					j, sym.Entry.Value, sym.Entry.Size, sym.Entry.Type(), sym.Entry.Binding(),
					sym.Entry.SectionIndex, sym.PrettyName)
				if err != nil {
					return err
				}
			}
		}
	}

	return nil
}

// DumpSymbols writes every symbol in every SHT_SYMTAB/SHT_DYNSYM
// section, with demangled names.
func DumpSymbols(w io.Writer, f *elf.File) error {
	for _, s := range f.Sections {
		if s.SymbolTable == nil {
			continue
		}
		if _, err := fmt.Fprintf(w, "%s: %d symbols\n", s.Name, len(s.SymbolTable.Symbols)); err != nil {
			return err
		}
		for j, sym := range s.SymbolTable.Symbols {
			_, err := fmt.Fprintf(
				w,
				"  %d: %#x %d %s %s shndx=%d %s\n",
				j, sym.Entry.Value, sym.Entry.Size, sym.Entry.Type(), sym.Entry.Binding(),
				sym.Entry.SectionIndex, sym.PrettyName)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// DumpSegments writes the program header table.
func DumpSegments(w io.Writer, f *elf.File) error {
	if _, err := fmt.Fprintf(w, "Segments: %d\n", len(f.Segments)); err != nil {
		return err
	}

	for i, seg := range f.Segments {
		h := seg.Header
		_, err := fmt.Fprintf(
			w,
			"  [%d] type=%s flags=%s offset=%#x vaddr=%#x paddr=%#x filesz=%#x memsz=%#x align=%#x\n",
			i, h.Type, h.Flags, h.Offset, h.VirtualAddress, h.PhysicalAddress, h.FileSize, h.MemSize, h.Alignment)
		if err != nil {
			return err
		}
	}

	return nil
}
