package engine

import (
	"fmt"

	"github.com/pattyshack/elfgraft/elf"
)

// segmentIndex builds an IntervalIndex over a file's segment file
// extents, for resolving a raw byte offset to the segment containing
// it.
func segmentIndex(f *elf.File) *IntervalIndex {
	extents := make([]extent, 0, len(f.Segments))
	for i, seg := range f.Segments {
		start := seg.Header.Offset
		extents = append(extents, extent{Start: start, End: start + seg.Header.FileSize, Index: i})
	}
	return NewIntervalIndex(extents)
}

// Inject applies a single byte-splice operation to f: resolve the
// locator, splice Payload into the owning segment, and cascade the
// resulting size delta through every later segment offset, every
// section offset at or past the splice site, and the executive
// header's e_shoff, then grow the named section (if any) by the delta.
//
// Returns the net size delta applied to the file: 0 for an overwrite
// injection, len(Payload) otherwise.
func Inject(f *elf.File, op Injection) (int64, error) {
	fileOffset, sectionSize, sectionName, err := resolveLocator(f, op.Locator)
	if err != nil {
		return 0, err
	}

	idx, ok := segmentIndex(f).Find(fileOffset)
	if !ok {
		return 0, fmt.Errorf("%w: offset %#x", elf.ErrOffsetNotInSegment, fileOffset)
	}
	seg := f.Segments[idx]

	relOffset := fileOffset - seg.Header.Offset

	delta, err := seg.ModifySegment(relOffset, sectionSize, op.Overwrite, op.Budget, op.Payload)
	if err != nil {
		return 0, err
	}

	if delta > 0 {
		// The insertion site: end of the named section (non-overwrite
		// case) or the raw file offset itself. Sections strictly before
		// this site, including the named section's own (unchanged) start
		// offset, are untouched; the named section only grows in size.
		site := fileOffset
		if sectionSize != nil {
			site = fileOffset + *sectionSize
		}

		// Cascade in the mandated order: later segments, then sections at
		// or past the splice site, then the section header table. The
		// segment whose own splice this already was is excluded (its
		// offset never shifts relative to itself).
		f.UpdateSegmentOffsetsAfter(idx, delta)
		f.UpdateSectionHeaderOffsetsAfter(site, delta)
		f.IncreaseSHTOffset(delta)
		if sectionName != "" {
			if s, err := f.SectionByName(sectionName); err == nil {
				s.IncreaseSize(delta)
			}
		}
	}

	if op.SetEntryPoint != nil {
		f.Header.EntryPointAddress = *op.SetEntryPoint
	}

	return int64(delta), nil
}

// resolveLocator returns the absolute file offset named by a Locator,
// and, when the locator names a section, that section's size and name
// (nil/empty for a raw-offset locator — the planner only resolves the
// containing section for the name-update cascade, and a raw offset
// need not fall inside any section at all).
func resolveLocator(f *elf.File, loc Locator) (offset uint64, sectionSize *uint64, sectionName string, err error) {
	if loc.FileOffset != nil {
		return *loc.FileOffset, nil, "", nil
	}

	section, err := f.SectionByName(loc.SectionName)
	if err != nil {
		return 0, nil, "", fmt.Errorf("resolve locator %s: %w", loc, err)
	}
	size := section.Header.Size
	return section.Header.Offset, &size, section.Name, nil
}
