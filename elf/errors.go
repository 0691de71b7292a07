package elf

import "errors"

// Error taxonomy. Each kind is a sentinel so callers can test with
// errors.Is; concrete errors wrap one of these with %w and additional
// context.
var (
	ErrUnsupportedElf       = errors.New("unsupported elf")
	ErrMalformedElf         = errors.New("malformed elf")
	ErrMissingShStrTab      = errors.New("missing section header string table")
	ErrUnknownField         = errors.New("unknown field")
	ErrUnknownEnumValue     = errors.New("unknown enum value")
	ErrInvalidFieldValue    = errors.New("invalid field value")
	ErrInvalidByteOffset    = errors.New("invalid byte offset")
	ErrInvalidInjectionSize = errors.New("invalid injection size")
	ErrOffsetNotInSegment   = errors.New("offset not in any segment")
	ErrUnknownSection       = errors.New("unknown section")
	ErrUnknownSegment       = errors.New("unknown segment")
)
