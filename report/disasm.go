package report

import (
	"bytes"
	"fmt"
	"io"

	"golang.org/x/arch/x86/x86asm"

	"github.com/pattyshack/elfgraft/elf"
)

const maxX64InstructionLength = 15

var (
	endbr64 = []byte{0xf3, 0x0f, 0x1e, 0xfa}
	endbr32 = []byte{0xf3, 0x0f, 0x1e, 0xfb}
)

// DisassembledInstruction pairs a decoded x86 instruction with the
// virtual address it was read from. endbr32/endbr64 land-pad
// instructions are recognised directly since x86asm does not decode
// them under their mnemonic.
type DisassembledInstruction struct {
	Address uint64

	IsEndbr64 bool
	IsEndbr32 bool

	x86asm.Inst
}

func (inst DisassembledInstruction) String() string {
	if inst.IsEndbr64 {
		return fmt.Sprintf("%#016x: endbr64", inst.Address)
	}
	if inst.IsEndbr32 {
		return fmt.Sprintf("%#016x: endbr32", inst.Address)
	}
	return fmt.Sprintf("%#016x: %s", inst.Address, x86asm.GNUSyntax(inst.Inst, inst.Address, nil))
}

// Disassemble decodes up to numInstructions x86-64 instructions
// starting at the given virtual address, reading the underlying bytes
// from whichever segment's memory image covers that range.
func Disassemble(f *elf.File, startAddress uint64, numInstructions int) ([]DisassembledInstruction, error) {
	if numInstructions < 0 {
		return nil, fmt.Errorf("invalid instruction count: %d", numInstructions)
	}
	if numInstructions == 0 {
		return nil, nil
	}

	data, err := f.ReadVirtual(startAddress, numInstructions*maxX64InstructionLength)
	if err != nil {
		return nil, err
	}

	address := startAddress
	result := make([]DisassembledInstruction, 0, numInstructions)
	for len(data) > 0 && len(result) < numInstructions {
		var inst x86asm.Inst
		isEndbr64, isEndbr32 := false, false
		length := 0

		switch {
		case len(data) >= len(endbr64) && bytes.Equal(data[:len(endbr64)], endbr64):
			isEndbr64 = true
			length = len(endbr64)
		case len(data) >= len(endbr32) && bytes.Equal(data[:len(endbr32)], endbr32):
			isEndbr32 = true
			length = len(endbr32)
		default:
			decoded, err := x86asm.Decode(data, 64)
			if err != nil {
				return result, nil
			}
			inst = decoded
			length = inst.Len
		}

		result = append(result, DisassembledInstruction{
			Address:   address,
			IsEndbr64: isEndbr64,
			IsEndbr32: isEndbr32,
			Inst:      inst,
		})

		data = data[length:]
		address += uint64(length)
	}

	return result, nil
}

// DumpDisassembly writes a labeled disassembly window to w: every
// instruction address that falls inside a known symbol's span is
// annotated with that symbol's demangled name.
func DumpDisassembly(w io.Writer, f *elf.File, startAddress uint64, numInstructions int) error {
	instructions, err := Disassemble(f, startAddress, numInstructions)
	if err != nil {
		return err
	}

	symbols := symbolTables(f)

	for _, inst := range instructions {
		if label, ok := labelAt(symbols, inst.Address); ok {
			if _, err := fmt.Fprintf(w, "%s:\n", label); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w, inst.String()); err != nil {
			return err
		}
	}

	return nil
}

func symbolTables(f *elf.File) []*elf.SymbolTable {
	var tables []*elf.SymbolTable
	for _, s := range f.Sections {
		if s.SymbolTable != nil {
			tables = append(tables, s.SymbolTable)
		}
	}
	return tables
}

func labelAt(tables []*elf.SymbolTable, addr uint64) (string, bool) {
	for _, t := range tables {
		if sym, ok := t.At(addr); ok {
			return sym.PrettyName, true
		}
	}
	return "", false
}
