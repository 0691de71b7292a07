package engine

import (
	"testing"

	"github.com/pattyshack/gt/testing/expect"
	"github.com/pattyshack/gt/testing/suite"

	"github.com/pattyshack/elfgraft/elf"
)

type InjectSuite struct{}

func TestInject(t *testing.T) {
	suite.RunTests(t, &InjectSuite{})
}

// buildTestFile assembles a small in-memory File with two segments
// and a handful of sections laid out back to back, without going
// through byte encoding — engine tests exercise the cascade logic, not
// the codec (covered in package elf).
func buildTestFile() *elf.File {
	f := &elf.File{
		Header: elf.ExecHeader{
			Identifier:          elf.Identifier{Class: elf.Class64, DataEncoding: elf.DataEncodingTwosComplementLittleEndian},
			SectionHeaderOffset: 1000,
		},
	}

	seg0 := &elf.Segment{
		Header: elf.ProgramHeaderEntry{Offset: 0, VirtualAddress: 0, FileSize: 200, MemSize: 200, Alignment: 0x1000},
		Bytes:  make([]byte, 200),
	}
	seg1 := &elf.Segment{
		Header: elf.ProgramHeaderEntry{Offset: 200, VirtualAddress: 0x1000 + 200, FileSize: 300, MemSize: 300, Alignment: 0x1000},
		Bytes:  make([]byte, 300),
	}
	f.Segments = []*elf.Segment{seg0, seg1}

	f.Sections = []*elf.Section{
		{Header: elf.SectionHeaderEntry{Offset: 0, Size: 50}, Name: ".a"},
		{Header: elf.SectionHeaderEntry{Offset: 250, Size: 100}, Name: ".b"},
		{Header: elf.SectionHeaderEntry{Offset: 450, Size: 50}, Name: ".c"},
	}

	return f
}

// TestInjectBySectionCascadesLaterOffsets covers offset monotonicity
// for a by-name locator: the insertion site is the end of ".a"
// (offset 0, size 50, so site 50), which lies inside seg0.
func (InjectSuite) TestInjectBySectionCascadesLaterOffsets(t *testing.T) {
	f := buildTestFile()

	payload := []byte{0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF, 0x01, 0x02, 0x03, 0x04}
	delta, err := Inject(f, Injection{
		Locator: Locator{SectionName: ".a"},
		Payload: payload,
		Budget:  0x1000,
	})
	expect.Nil(t, err)
	expect.Equal(t, int64(len(payload)), delta)

	// seg0 grows in place by the payload length.
	expect.Equal(t, uint64(200)+uint64(delta), f.Segments[0].Header.FileSize)
	// seg1, entirely past the splice, shifts by delta.
	expect.Equal(t, uint64(200)+uint64(delta), f.Segments[1].Header.Offset)

	// ".a" itself keeps its offset but grows in size; ".b" and ".c",
	// both past the splice site, shift their offsets.
	expect.Equal(t, uint64(0), f.Sections[0].Header.Offset)
	expect.Equal(t, uint64(50)+uint64(delta), f.Sections[0].Header.Size)
	expect.Equal(t, uint64(250)+uint64(delta), f.Sections[1].Header.Offset)
	expect.Equal(t, uint64(450)+uint64(delta), f.Sections[2].Header.Offset)

	// the section header table, past the splice, shifts too.
	expect.Equal(t, uint64(1000)+uint64(delta), f.Header.SectionHeaderOffset)
}

// TestInjectByOffsetWithinSecondSegment covers a raw file-offset
// locator: no section size is resolved, so the insertion site is the
// offset itself, and no section is grown in size.
func (InjectSuite) TestInjectByOffsetWithinSecondSegment(t *testing.T) {
	f := buildTestFile()

	payload := []byte{0x01, 0x02}
	abs := uint64(250) // inside seg1's extent [200, 500)
	delta, err := Inject(f, Injection{
		Locator: Locator{FileOffset: &abs},
		Payload: payload,
		Budget:  0x1000,
	})
	expect.Nil(t, err)
	expect.Equal(t, int64(len(payload)), delta)

	// seg0, entirely before the splice, is untouched.
	expect.Equal(t, uint64(0), f.Segments[0].Header.Offset)
	expect.Equal(t, uint64(200), f.Segments[0].Header.FileSize)
	// seg1 itself never shifts relative to its own splice, but grows.
	expect.Equal(t, uint64(200), f.Segments[1].Header.Offset)
	expect.Equal(t, uint64(300)+uint64(delta), f.Segments[1].Header.FileSize)

	// ".a", entirely before the splice, is untouched.
	expect.Equal(t, uint64(50), f.Sections[0].Header.Size)
	// ".b" and ".c", at or past the raw offset, shift; no section grows
	// in size since the locator did not name one.
	expect.Equal(t, uint64(250)+uint64(delta), f.Sections[1].Header.Offset)
	expect.Equal(t, uint64(100), f.Sections[1].Header.Size)
	expect.Equal(t, uint64(450)+uint64(delta), f.Sections[2].Header.Offset)
}

func (InjectSuite) TestInjectSetsEntryPoint(t *testing.T) {
	f := buildTestFile()

	newEntry := uint64(0x401234)
	_, err := Inject(f, Injection{
		Locator:       Locator{SectionName: ".a"},
		Payload:       []byte{0x90},
		Budget:        0x1000,
		SetEntryPoint: &newEntry,
	})
	expect.Nil(t, err)
	expect.Equal(t, newEntry, f.Header.EntryPointAddress)
}

func (InjectSuite) TestInjectUnknownSectionFails(t *testing.T) {
	f := buildTestFile()

	_, err := Inject(f, Injection{
		Locator: Locator{SectionName: ".bogus"},
		Payload: []byte{0x01},
		Budget:  0x1000,
	})
	expect.Error(t, err, "unknown section")
}

func (InjectSuite) TestInjectRejectsPayloadOverBudget(t *testing.T) {
	f := buildTestFile()

	_, err := Inject(f, Injection{
		Locator: Locator{SectionName: ".a"},
		Payload: []byte{0x01, 0x02, 0x03},
		Budget:  2,
	})
	expect.Error(t, err, "invalid injection size")
}

func (InjectSuite) TestInjectPreservesAlignmentCongruence(t *testing.T) {
	f := buildTestFile()

	_, err := Inject(f, Injection{
		Locator: Locator{SectionName: ".a"},
		Payload: []byte{0x01, 0x02, 0x03},
		Budget:  0x1000,
	})
	expect.Nil(t, err)

	expect.True(t, f.Segments[1].AlignmentCongruenceHolds())
}

// TestInjectOverwriteReplacesSectionWidthWithoutGrowing: an overwrite
// injection zero-pads the payload out to the named section's width
// and leaves every size and offset untouched.
func (InjectSuite) TestInjectOverwriteReplacesSectionWidthWithoutGrowing(t *testing.T) {
	f := buildTestFile()

	payload := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	delta, err := Inject(f, Injection{
		Locator:   Locator{SectionName: ".a"},
		Payload:   payload,
		Budget:    0x1000,
		Overwrite: true,
	})
	expect.Nil(t, err)
	expect.Equal(t, int64(0), delta)

	expect.Equal(t, uint64(200), f.Segments[0].Header.FileSize)
	expect.Equal(t, uint64(200), f.Segments[0].Header.MemSize)
	expect.Equal(t, uint64(50), f.Sections[0].Header.Size)
	expect.Equal(t, uint64(1000), f.Header.SectionHeaderOffset)
	expect.Equal(t, uint64(200), f.Segments[1].Header.Offset)

	want := append(append([]byte{}, payload...), make([]byte, 50-len(payload))...)
	expect.Equal(t, want, f.Segments[0].Bytes[:50])
}

// TestInjectCascadesSegmentsByIndexNotOffset covers a file whose
// segments are not stored in offset order: segment 0 sits past
// segment 1 in the file. The splice lands in segment 1 (the later
// segment in the table), so only segments after it in the program
// header table should shift; segment 0, despite its larger offset,
// must be left alone.
func (InjectSuite) TestInjectCascadesSegmentsByIndexNotOffset(t *testing.T) {
	f := &elf.File{
		Header: elf.ExecHeader{
			Identifier:          elf.Identifier{Class: elf.Class64, DataEncoding: elf.DataEncodingTwosComplementLittleEndian},
			SectionHeaderOffset: 1000,
		},
	}

	seg0 := &elf.Segment{
		Header: elf.ProgramHeaderEntry{Offset: 300, FileSize: 50, MemSize: 50},
		Bytes:  make([]byte, 50),
	}
	seg1 := &elf.Segment{
		Header: elf.ProgramHeaderEntry{Offset: 0, FileSize: 50, MemSize: 50},
		Bytes:  make([]byte, 50),
	}
	f.Segments = []*elf.Segment{seg0, seg1}

	abs := uint64(10) // inside seg1's extent [0, 50)
	payload := []byte{0x01, 0x02}
	delta, err := Inject(f, Injection{
		Locator: Locator{FileOffset: &abs},
		Payload: payload,
		Budget:  0x1000,
	})
	expect.Nil(t, err)
	expect.Equal(t, int64(len(payload)), delta)

	// seg1 (index 1, the one actually spliced) keeps its own offset.
	expect.Equal(t, uint64(0), f.Segments[1].Header.Offset)
	// seg0 (index 0, before seg1 in the table) must not shift even
	// though its file offset (300) is numerically past the splice.
	expect.Equal(t, uint64(300), f.Segments[0].Header.Offset)
}

func (InjectSuite) TestInjectOverwriteRejectsPayloadLargerThanSection(t *testing.T) {
	f := buildTestFile()

	_, err := Inject(f, Injection{
		Locator:   Locator{SectionName: ".a"},
		Payload:   make([]byte, 51),
		Budget:    0x1000,
		Overwrite: true,
	})
	expect.Error(t, err, "invalid injection size")
}
