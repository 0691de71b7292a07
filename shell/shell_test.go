package shell

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pattyshack/gt/testing/expect"
	"github.com/pattyshack/gt/testing/suite"

	"github.com/pattyshack/elfgraft/elf"
)

type ShellSuite struct{}

func TestShell(t *testing.T) {
	suite.RunTests(t, &ShellSuite{})
}

func buildShellFixture() *elf.File {
	f := &elf.File{
		Header: elf.ExecHeader{
			Identifier:          elf.Identifier{Class: elf.Class64, DataEncoding: elf.DataEncodingTwosComplementLittleEndian},
			SectionHeaderOffset: 1000,
		},
	}
	seg0 := &elf.Segment{
		Header: elf.ProgramHeaderEntry{Offset: 0, FileSize: 200, MemSize: 200, Alignment: 0x1000},
		Bytes:  make([]byte, 200),
	}
	f.Segments = []*elf.Segment{seg0}
	f.Sections = []*elf.Section{
		{Header: elf.SectionHeaderEntry{Offset: 0, Size: 50}, Name: ".a"},
	}
	return f
}

func (ShellSuite) TestHeaderCmdWritesHeaderLine(t *testing.T) {
	var buf bytes.Buffer
	s := NewSession(buildShellFixture(), &buf)

	expect.Nil(t, headerCmd(s, ""))
	expect.True(t, strings.Contains(buf.String(), "Header:"))
}

func (ShellSuite) TestSectionsCmdListsSections(t *testing.T) {
	var buf bytes.Buffer
	s := NewSession(buildShellFixture(), &buf)

	expect.Nil(t, sectionsCmd(s, ""))
	expect.True(t, strings.Contains(buf.String(), ".a"))
}

func (ShellSuite) TestInjectCmdByPositionSplicesPayload(t *testing.T) {
	var buf bytes.Buffer
	f := buildShellFixture()
	s := NewSession(f, &buf)

	dir := t.TempDir()
	payloadPath := filepath.Join(dir, "payload.bin")
	expect.Nil(t, os.WriteFile(payloadPath, []byte{0xaa, 0xbb}, 0o644))

	err := injectCmd(s, ".a "+payloadPath+" size=0x1000")
	expect.Nil(t, err)
	expect.True(t, s.dirty)
	expect.Equal(t, uint64(202), f.Segments[0].Header.FileSize)
}

func (ShellSuite) TestInjectCmdByRawOffset(t *testing.T) {
	var buf bytes.Buffer
	f := buildShellFixture()
	s := NewSession(f, &buf)

	dir := t.TempDir()
	payloadPath := filepath.Join(dir, "payload.bin")
	expect.Nil(t, os.WriteFile(payloadPath, []byte{0x01}, 0o644))

	err := injectCmd(s, "@0x10 "+payloadPath)
	expect.Nil(t, err)
	expect.Equal(t, uint64(201), f.Segments[0].Header.FileSize)
}

func (ShellSuite) TestInjectCmdTooFewArgsPrintsUsage(t *testing.T) {
	var buf bytes.Buffer
	s := NewSession(buildShellFixture(), &buf)

	err := injectCmd(s, ".a")
	expect.Nil(t, err)
	expect.True(t, strings.Contains(buf.String(), "usage:"))
}

func (ShellSuite) TestModifyCmdExecHeaderField(t *testing.T) {
	var buf bytes.Buffer
	f := buildShellFixture()
	s := NewSession(f, &buf)

	err := modifyCmd(s, "exec_header - e_entry 0x401000")
	expect.Nil(t, err)
	expect.Equal(t, uint64(0x401000), f.Header.EntryPointAddress)
}

func (ShellSuite) TestModifyCmdSectionFieldWithPosition(t *testing.T) {
	var buf bytes.Buffer
	f := buildShellFixture()
	s := NewSession(f, &buf)

	err := modifyCmd(s, "sec_header .a sh_flags SHF_ALLOC")
	expect.Nil(t, err)
	expect.Equal(t, elf.SHFAlloc, f.Sections[0].Header.Flags)
}

func (ShellSuite) TestModifyCmdExecHeaderIdentSubTag(t *testing.T) {
	var buf bytes.Buffer
	f := buildShellFixture()
	s := NewSession(f, &buf)

	err := modifyCmd(s, "exec_header - e_ident EI_OSABI ELFOSABI_GNU")
	expect.Nil(t, err)
	expect.Equal(t, elf.OSABIGNU, f.Header.OperatingSystemABI)
}

func (ShellSuite) TestWriteCmdSerializesToPath(t *testing.T) {
	var buf bytes.Buffer
	f := buildShellFixture()
	s := NewSession(f, &buf)

	dir := t.TempDir()
	outPath := filepath.Join(dir, "out.elf")

	err := writeCmd(s, outPath)
	expect.Nil(t, err)
	expect.False(t, s.dirty)

	info, statErr := os.Stat(outPath)
	expect.Nil(t, statErr)
	expect.True(t, info.Size() > 0)
}

func (ShellSuite) TestQuitCmdReturnsErrQuit(t *testing.T) {
	err := quitCmd(nil, "")
	expect.True(t, errors.Is(err, ErrQuit))
}

func (ShellSuite) TestTopCommandsDispatchesByPrefix(t *testing.T) {
	var buf bytes.Buffer
	s := NewSession(buildShellFixture(), &buf)
	topCmds := initializeCommands()

	err := topCmds.dispatch(s, "head")
	expect.Nil(t, err)
	expect.True(t, strings.Contains(buf.String(), "Header:"))
}
