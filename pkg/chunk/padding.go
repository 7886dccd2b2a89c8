package chunk

import "errors"

// ErrPaddingTooLarge is returned when a single-byte padding-overhead
// encoding is requested but paddingSize does not fit in one byte.
var ErrPaddingTooLarge = errors.New("chunk: padding size exceeds one byte under single-byte overhead")

// PaddingOverhead is the number of bytes used to encode the padding
// length on the wire: 1 when the cipher block is small, 2 when it's large
// enough that padding could exceed 255 bytes (Section 4.2).
func PaddingOverhead(cipherTextBlockSize int) int {
	if cipherTextBlockSize > 256 {
		return 2
	}
	return 1
}

// PaddingWireSize returns the total number of padding bytes written on the
// wire for a given paddingSize and overhead (paddingSize + overhead).
func PaddingWireSize(paddingSize, overhead int) int {
	return paddingSize + overhead
}

// WritePadding writes the padding region into buf per Section 4.5 and
// returns the number of bytes written. buf must be at least
// PaddingWireSize(paddingSize, overhead) bytes.
//
//   - overhead == 1: one byte of value paddingSize, then paddingSize bytes
//     of that same value. paddingSize must fit in a byte (0..255).
//   - overhead == 2: the low byte of paddingSize, then paddingSize copies
//     of the low byte, then the high byte (the "extra padding size" byte).
func WritePadding(buf []byte, paddingSize, overhead int) (int, error) {
	switch overhead {
	case 1:
		if paddingSize < 0 || paddingSize > 255 {
			return 0, ErrPaddingTooLarge
		}
		b := byte(paddingSize)
		buf[0] = b
		for i := 0; i < paddingSize; i++ {
			buf[1+i] = b
		}
		return paddingSize + 1, nil
	case 2:
		low := byte(paddingSize & 0xFF)
		high := byte(paddingSize >> 8)
		buf[0] = low
		for i := 0; i < paddingSize; i++ {
			buf[1+i] = low
		}
		buf[1+paddingSize] = high
		return paddingSize + 2, nil
	default:
		return 0, errors.New("chunk: invalid padding overhead, must be 1 or 2")
	}
}
