package elf

import (
	"fmt"
)

// File is the in-memory model of a parsed ELF binary: an executive
// header, its program headers (segments) with their raw file bytes,
// and its section headers (sections) with their raw file bytes.
// Segments and sections are independent views over possibly
// overlapping file extents; the parse pipeline reads each extent once
// into its own backing slice so that an injection into a segment does
// not silently resize a section that shares its bytes, and vice
// versa.
type File struct {
	Header   ExecHeader
	Segments []*Segment
	Sections []*Section

	byName map[string]int // section name -> index into Sections
}

// Parse decodes content into a File: executive header, then program
// headers (segment file extents), then section headers (section file
// extents), then section-name resolution via the section header
// string table, then classification of STRTAB/SYMTAB/DYNSYM sections.
func Parse(content []byte) (*File, error) {
	header, err := DecodeExecHeader(content)
	if err != nil {
		return nil, err
	}

	f := &File{Header: *header}

	if err := f.parseSegments(content); err != nil {
		return nil, err
	}
	if err := f.parseSections(content); err != nil {
		return nil, err
	}
	if err := f.resolveSectionNames(); err != nil {
		return nil, err
	}
	if err := f.classifySections(); err != nil {
		return nil, err
	}

	return f, nil
}

func (f *File) parseSegments(content []byte) error {
	h := f.Header
	entrySize := int(h.ProgramHeaderEntrySize)
	if entrySize == 0 {
		entrySize = int(h.Class.ProgramHeaderEntrySize())
	}

	for i := 0; i < int(h.NumProgramHeaderEntries); i++ {
		entryOff := int(h.ProgramHeaderOffset) + i*entrySize
		if entryOff+entrySize > len(content) {
			return fmt.Errorf("%w: program header %d out of bounds", ErrMalformedElf, i)
		}
		entry := decodeProgramHeaderEntry(h.Class, h.byteOrder(), content[entryOff:entryOff+entrySize])

		var raw []byte
		if entry.Type != PTNull && entry.MemSize > 0 {
			if entry.MemSize < entry.FileSize {
				return fmt.Errorf("%w: segment %d has p_memsz %#x < p_filesz %#x", ErrMalformedElf, i, entry.MemSize, entry.FileSize)
			}
			start := int(entry.Offset)
			end := start + int(entry.MemSize)
			if start < 0 || end > len(content) || end < start {
				return fmt.Errorf("%w: segment %d file extent out of bounds", ErrMalformedElf, i)
			}
			raw = make([]byte, entry.MemSize)
			copy(raw, content[start:end])
		}

		f.Segments = append(f.Segments, &Segment{Header: entry, Bytes: raw})
	}

	return nil
}

func (f *File) parseSections(content []byte) error {
	h := f.Header
	entrySize := int(h.SectionHeaderEntrySize)
	if entrySize == 0 {
		entrySize = int(h.Class.SectionHeaderEntrySize())
	}

	for i := 0; i < int(h.NumSectionHeaderEntries); i++ {
		entryOff := int(h.SectionHeaderOffset) + i*entrySize
		if entryOff+entrySize > len(content) {
			return fmt.Errorf("%w: section header %d out of bounds", ErrMalformedElf, i)
		}
		entry := decodeSectionHeaderEntry(h.Class, h.byteOrder(), content[entryOff:entryOff+entrySize])

		var raw []byte
		if entry.Type != SHTNoBits && entry.Size > 0 {
			start := int(entry.Offset)
			end := start + int(entry.Size)
			if start < 0 || end > len(content) || end < start {
				return fmt.Errorf("%w: section %d file extent out of bounds", ErrMalformedElf, i)
			}
			raw = make([]byte, entry.Size)
			copy(raw, content[start:end])
		}

		f.Sections = append(f.Sections, &Section{Header: entry, Bytes: raw})
	}

	return nil
}

// resolveSectionNames resolves every section's NameIndex against the
// section header string table named by e_shstrndx.
func (f *File) resolveSectionNames() error {
	if len(f.Sections) == 0 {
		return nil
	}

	strndx := int(f.Header.SectionStringTableIndex)
	if strndx < 0 || strndx >= len(f.Sections) {
		return fmt.Errorf("%w: e_shstrndx %d out of range", ErrMissingShStrTab, strndx)
	}
	shstrtab := &StringTable{Bytes: f.Sections[strndx].Bytes}

	f.byName = make(map[string]int, len(f.Sections))
	for i, s := range f.Sections {
		name, err := shstrtab.Get(s.Header.NameIndex)
		if err != nil {
			return fmt.Errorf("section %d name: %w", i, err)
		}
		s.Name = name
		f.byName[name] = i
	}

	return nil
}

// classifySections parses the contents of STRTAB/SYMTAB/DYNSYM
// sections into their auxiliary representations.
func (f *File) classifySections() error {
	for _, s := range f.Sections {
		if s.Header.Type == SHTStrTab {
			s.StringTable = &StringTable{Bytes: s.Bytes}
		}
	}

	for _, s := range f.Sections {
		if s.Header.Type != SHTSymTab && s.Header.Type != SHTDynSym {
			continue
		}

		var linked *StringTable
		if int(s.Header.Link) < len(f.Sections) {
			linked = f.Sections[s.Header.Link].StringTable
		}
		if linked == nil {
			return fmt.Errorf("%w: symbol table %q has no linked string table", ErrMalformedElf, s.Name)
		}

		table, err := parseSymbolTable(f.Header.Class, f.Header.byteOrder(), s.Bytes, linked)
		if err != nil {
			return fmt.Errorf("section %q: %w", s.Name, err)
		}
		s.SymbolTable = table
	}

	return nil
}

// SectionByName returns the section with the given name.
func (f *File) SectionByName(name string) (*Section, error) {
	idx, ok := f.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSection, name)
	}
	return f.Sections[idx], nil
}

// SegmentAtFileOffset returns the segment whose file extent contains
// offset, checking segments in program header table order. The
// injection planner does not call it; it resolves offsets through its
// own segment interval index.
func (f *File) SegmentAtFileOffset(offset uint64) (*Segment, error) {
	for _, seg := range f.Segments {
		if seg.ContainsFileOffset(offset) {
			return seg, nil
		}
	}
	return nil, fmt.Errorf("%w: offset %#x", ErrOffsetNotInSegment, offset)
}

// ReadVirtual returns up to length bytes starting at the given virtual
// address, read from whichever segment's memory image covers it. Used
// by the disassembly reporter, which addresses code by p_vaddr rather
// than file offset.
func (f *File) ReadVirtual(addr uint64, length int) ([]byte, error) {
	for _, seg := range f.Segments {
		start := seg.Header.VirtualAddress
		end := start + seg.Header.MemSize
		if addr < start || addr >= end {
			continue
		}

		offset := addr - start
		if offset >= uint64(len(seg.Bytes)) {
			return nil, nil
		}

		avail := uint64(len(seg.Bytes)) - offset
		n := uint64(length)
		if n > avail {
			n = avail
		}
		return seg.Bytes[offset : offset+n], nil
	}
	return nil, fmt.Errorf("%w: vaddr %#x", ErrOffsetNotInSegment, addr)
}

// UpdateSectionHeaderOffsetsAfter advances sh_offset by delta for every
// section whose current offset is at or past threshold, the fixup
// applied to sections after an injection shifts the file layout.
func (f *File) UpdateSectionHeaderOffsetsAfter(threshold, delta uint64) {
	for _, s := range f.Sections {
		if s.Header.Offset >= threshold {
			s.IncreaseOffset(delta)
		}
	}
}

// UpdateSegmentOffsetsAfter advances p_offset (and, where needed to
// preserve alignment congruence, p_vaddr) for every segment past
// segmentIndex in program header table order. Unlike sections,
// segments are not guaranteed to be stored in non-decreasing offset
// order, so the cascade is index-based rather than threshold-based.
func (f *File) UpdateSegmentOffsetsAfter(segmentIndex int, delta uint64) {
	for _, seg := range f.Segments[segmentIndex+1:] {
		seg.CascadeOffsetAfterInjection(delta)
	}
}

// IncreaseSHTOffset advances e_shoff by delta unconditionally. The
// injection planner applies it after every injection that grows the
// file, wherever the splice point lies.
func (f *File) IncreaseSHTOffset(delta uint64) {
	f.Header.SectionHeaderOffset += delta
}

// Serialize renders the File back into a byte slice, in the mandated
// order: sections, then segments, then the section header table, then
// the program header table, then the executive header.
func (f *File) Serialize() ([]byte, error) {
	size := f.fileSize()
	out := make([]byte, size)

	for _, s := range f.Sections {
		if s.Header.Type == SHTNoBits || len(s.Bytes) == 0 {
			continue
		}
		if err := blit(out, s.Header.Offset, s.Bytes); err != nil {
			return nil, fmt.Errorf("section %q: %w", s.Name, err)
		}
	}

	for i, seg := range f.Segments {
		if len(seg.Bytes) == 0 {
			continue
		}
		if err := blit(out, seg.Header.Offset, seg.Bytes); err != nil {
			return nil, fmt.Errorf("segment %d: %w", i, err)
		}
	}

	order := f.Header.byteOrder()
	class := f.Header.Class

	shEntrySize := int(class.SectionHeaderEntrySize())
	for i, s := range f.Sections {
		entryOff := int(f.Header.SectionHeaderOffset) + i*shEntrySize
		if entryOff+shEntrySize > len(out) {
			return nil, fmt.Errorf("%w: section header table overflows file", ErrMalformedElf)
		}
		s.Header.encode(class, order, out[entryOff:entryOff+shEntrySize])
	}

	phEntrySize := int(class.ProgramHeaderEntrySize())
	for i, seg := range f.Segments {
		entryOff := int(f.Header.ProgramHeaderOffset) + i*phEntrySize
		if entryOff+phEntrySize > len(out) {
			return nil, fmt.Errorf("%w: program header table overflows file", ErrMalformedElf)
		}
		seg.Header.encode(class, order, out[entryOff:entryOff+phEntrySize])
	}

	if err := f.Header.Encode(out); err != nil {
		return nil, err
	}

	return out, nil
}

func blit(out []byte, offset uint64, data []byte) error {
	start := int(offset)
	end := start + len(data)
	if start < 0 || end > len(out) || end < start {
		return fmt.Errorf("%w: extent [%d,%d) exceeds file size %d", ErrMalformedElf, start, end, len(out))
	}
	copy(out[start:end], data)
	return nil
}

// fileSize computes the minimum buffer size covering every section,
// segment, and header table, so a growing injection never gets
// truncated on serialize.
func (f *File) fileSize() uint64 {
	max := uint64(f.Header.Class.HeaderSize())

	for _, s := range f.Sections {
		if end := s.Header.Offset + uint64(len(s.Bytes)); end > max {
			max = end
		}
	}
	for _, seg := range f.Segments {
		if end := seg.Header.Offset + uint64(len(seg.Bytes)); end > max {
			max = end
		}
	}

	shtEnd := f.Header.SectionHeaderOffset + uint64(len(f.Sections))*uint64(f.Header.Class.SectionHeaderEntrySize())
	if shtEnd > max {
		max = shtEnd
	}
	phtEnd := f.Header.ProgramHeaderOffset + uint64(len(f.Segments))*uint64(f.Header.Class.ProgramHeaderEntrySize())
	if phtEnd > max {
		max = phtEnd
	}

	return max
}
