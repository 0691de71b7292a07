package elf

import (
	"encoding/binary"
)

// Primitive, endian-aware fixed-width codec. Every header field is
// encoded/decoded through these helpers; there are no ad-hoc byte copies
// elsewhere in the package.

func readU8(content []byte, offset int) byte {
	return content[offset]
}

func writeU8(content []byte, offset int, v byte) {
	content[offset] = v
}

func readU16(order binary.ByteOrder, content []byte, offset int) uint16 {
	return order.Uint16(content[offset : offset+2])
}

func writeU16(order binary.ByteOrder, content []byte, offset int, v uint16) {
	order.PutUint16(content[offset:offset+2], v)
}

func readU32(order binary.ByteOrder, content []byte, offset int) uint32 {
	return order.Uint32(content[offset : offset+4])
}

func writeU32(order binary.ByteOrder, content []byte, offset int, v uint32) {
	order.PutUint32(content[offset:offset+4], v)
}

func readU64(order binary.ByteOrder, content []byte, offset int) uint64 {
	return order.Uint64(content[offset : offset+8])
}

func writeU64(order binary.ByteOrder, content []byte, offset int, v uint64) {
	order.PutUint64(content[offset:offset+8], v)
}

// readWord/writeWord dispatch on class: 32-bit classes use a u32 wire
// width zero-extended to uint64; 64-bit classes use the full u64.
func readWord(class Class, order binary.ByteOrder, content []byte, offset int) uint64 {
	if class == Class32 {
		return uint64(readU32(order, content, offset))
	}
	return readU64(order, content, offset)
}

func writeWord(class Class, order binary.ByteOrder, content []byte, offset int, v uint64) {
	if class == Class32 {
		writeU32(order, content, offset, uint32(v))
		return
	}
	writeU64(order, content, offset, v)
}

// wordSize returns the on-disk width, in bytes, of a class-dependent
// integer field (offsets, addresses, sizes).
func wordSize(class Class) int {
	if class == Class32 {
		return 4
	}
	return 8
}
