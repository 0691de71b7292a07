package engine

import (
	"testing"

	"github.com/pattyshack/gt/testing/expect"
	"github.com/pattyshack/gt/testing/suite"

	"github.com/pattyshack/elfgraft/elf"
)

type TranslateSuite struct{}

func TestTranslate(t *testing.T) {
	suite.RunTests(t, &TranslateSuite{})
}

func (TranslateSuite) TestParseHexValueAcceptsOptionalPrefix(t *testing.T) {
	v, err := ParseHexValue("0x1000")
	expect.Nil(t, err)
	expect.Equal(t, uint64(0x1000), v)

	v, err = ParseHexValue("1000")
	expect.Nil(t, err)
	expect.Equal(t, uint64(0x1000), v)

	_, err = ParseHexValue("not-hex")
	expect.Error(t, err, "invalid field value")
}

func (TranslateSuite) TestParseIndexAcceptsDecimalAndHex(t *testing.T) {
	v, err := ParseIndex("3")
	expect.Nil(t, err)
	expect.Equal(t, 3, v)

	v, err = ParseIndex("0x10")
	expect.Nil(t, err)
	expect.Equal(t, 16, v)

	_, err = ParseIndex("nope")
	expect.Error(t, err, "invalid field value")
}

func (TranslateSuite) TestExecHeaderFieldValueTranslatesIdentSubTags(t *testing.T) {
	v, err := ExecHeaderFieldValue(elf.FieldEIdent, elf.SubTagClass, "ELFCLASS64")
	expect.Nil(t, err)
	expect.Equal(t, uint64(elf.Class64), v)

	v, err = ExecHeaderFieldValue(elf.FieldEIdent, elf.SubTagData, "ELFDATA2LSB")
	expect.Nil(t, err)
	expect.Equal(t, uint64(elf.DataEncodingTwosComplementLittleEndian), v)

	_, err = ExecHeaderFieldValue(elf.FieldEIdent, "EI_BOGUS", "x")
	expect.Error(t, err, "unknown field")
}

func (TranslateSuite) TestExecHeaderFieldValueTranslatesEnumFields(t *testing.T) {
	v, err := ExecHeaderFieldValue(elf.FieldEType, "", "ET_EXEC")
	expect.Nil(t, err)
	expect.Equal(t, uint64(elf.FileTypeExecutable), v)

	v, err = ExecHeaderFieldValue(elf.FieldEMachine, "", "EM_X86_64")
	expect.Nil(t, err)
	expect.Equal(t, uint64(elf.MachineX86_64), v)
}

func (TranslateSuite) TestExecHeaderFieldValueFallsBackToHex(t *testing.T) {
	v, err := ExecHeaderFieldValue(elf.FieldEEntry, "", "0x401000")
	expect.Nil(t, err)
	expect.Equal(t, uint64(0x401000), v)
}

func (TranslateSuite) TestSectionHeaderFieldValueTranslatesEnumsAndHex(t *testing.T) {
	v, err := SectionHeaderFieldValue(elf.FieldSHType, "SHT_PROGBITS")
	expect.Nil(t, err)
	expect.Equal(t, uint64(elf.SHTProgBits), v)

	v, err = SectionHeaderFieldValue(elf.FieldSHFlags, "SHF_ALLOC")
	expect.Nil(t, err)
	expect.Equal(t, uint64(elf.SHFAlloc), v)

	v, err = SectionHeaderFieldValue(elf.FieldSHOffset, "0x200")
	expect.Nil(t, err)
	expect.Equal(t, uint64(0x200), v)
}

func (TranslateSuite) TestProgramHeaderFieldValueTranslatesTypeAndValidatesFlags(t *testing.T) {
	v, err := ProgramHeaderFieldValue(elf.FieldPType, "PT_LOAD")
	expect.Nil(t, err)
	expect.Equal(t, uint64(elf.PTLoad), v)

	v, err = ProgramHeaderFieldValue(elf.FieldPFlags, "0x5")
	expect.Nil(t, err)
	expect.Equal(t, uint64(elf.PFRead|elf.PFExecute), v)

	_, err = ProgramHeaderFieldValue(elf.FieldPFlags, "0x0")
	expect.Error(t, err, "invalid field value")

	v, err = ProgramHeaderFieldValue(elf.FieldPAlign, "0x1000")
	expect.Nil(t, err)
	expect.Equal(t, uint64(0x1000), v)
}

func (TranslateSuite) TestResolveSectionPositionPrefersName(t *testing.T) {
	f := buildTestFile()

	idx, err := ResolveSectionPosition(f, ".b")
	expect.Nil(t, err)
	expect.Equal(t, 1, idx)

	idx, err = ResolveSectionPosition(f, "2")
	expect.Nil(t, err)
	expect.Equal(t, 2, idx)

	_, err = ResolveSectionPosition(f, "99")
	expect.Error(t, err, "unknown section")

	_, err = ResolveSectionPosition(f, ".bogus")
	expect.Error(t, err, "unknown section")
}

func (TranslateSuite) TestParseTargetKind(t *testing.T) {
	v, err := ParseTargetKind("exec_header")
	expect.Nil(t, err)
	expect.Equal(t, TargetExecHeader, v)

	v, err = ParseTargetKind("sec_header")
	expect.Nil(t, err)
	expect.Equal(t, TargetSection, v)

	v, err = ParseTargetKind("prog_header")
	expect.Nil(t, err)
	expect.Equal(t, TargetSegment, v)

	_, err = ParseTargetKind("bogus")
	expect.Error(t, err, "unknown field")
}

func (TranslateSuite) TestBuildModificationExecHeader(t *testing.T) {
	f := buildTestFile()

	m, err := BuildModification(f, "exec_header", "", elf.FieldEEntry, "", "0x401000")
	expect.Nil(t, err)
	expect.Equal(t, TargetExecHeader, m.Target)
	expect.Equal(t, uint64(0x401000), m.Value)
}

func (TranslateSuite) TestBuildModificationSectionByName(t *testing.T) {
	f := buildTestFile()

	m, err := BuildModification(f, "sec_header", ".b", elf.FieldSHFlags, "", "SHF_ALLOC")
	expect.Nil(t, err)
	expect.Equal(t, TargetSection, m.Target)
	expect.Equal(t, 1, m.Index)
	expect.Equal(t, uint64(elf.SHFAlloc), m.Value)
}

func (TranslateSuite) TestBuildModificationSegmentRejectsOutOfRangeIndex(t *testing.T) {
	f := buildTestFile()

	_, err := BuildModification(f, "prog_header", "99", elf.FieldPAlign, "", "0x1000")
	expect.Error(t, err, "unknown segment")
}

func (TranslateSuite) TestBuildInjectionRejectsBothOrNeitherLocator(t *testing.T) {
	_, err := BuildInjection(".a", "0x10", []byte{1}, 0x1000, false, nil)
	expect.Error(t, err, "invalid field value")

	_, err = BuildInjection("", "", []byte{1}, 0x1000, false, nil)
	expect.Error(t, err, "invalid field value")
}

func (TranslateSuite) TestBuildInjectionByOffset(t *testing.T) {
	inj, err := BuildInjection("", "0x250", []byte{1, 2}, 0x1000, true, nil)
	expect.Nil(t, err)
	expect.NotNil(t, inj.Locator.FileOffset)
	expect.Equal(t, uint64(0x250), *inj.Locator.FileOffset)
	expect.True(t, inj.Overwrite)
}
