// Package vector reads and flags rows in host vector memory. It only touches raw
// memory handed out by the host, so callers keep the owning vector alive.
package vector

import (
	"unsafe"
)

const (
	// StringTSize is the size of duckdb_string_t in bytes.
	// This is a 16-byte structure containing either:
	// - Inlined: 4-byte length + 12 bytes of inline character data, OR
	// - Pointer: 4-byte length + 4-byte prefix + 8-byte pointer
	StringTSize = 16

	// MaxChunkSize is the maximum number of rows in a data chunk.
	MaxChunkSize = 2048

	inlineLength = 12
)

// StringAt copies the string stored at row of a VARCHAR vector's data buffer.
func StringAt(data unsafe.Pointer, row int) string {
	if data == nil {
		return ""
	}
	p := unsafe.Add(data, row*StringTSize)
	n := *(*uint32)(p)
	if n == 0 {
		return ""
	}
	if n <= inlineLength {
		return string(unsafe.Slice((*byte)(unsafe.Add(p, 4)), n))
	}
	ptr := *(*unsafe.Pointer)(unsafe.Add(p, 8))
	if ptr == nil {
		return ""
	}
	return string(unsafe.Slice((*byte)(ptr), n))
}

// RowIsValid checks if a row is valid (not NULL) using the validity mask.
// A nil mask means all rows are valid. Rows outside the chunk are invalid.
func RowIsValid(mask unsafe.Pointer, row, chunkSize int) bool {
	if mask == nil {
		return true
	}
	if row < 0 || row >= chunkSize || row >= MaxChunkSize {
		return false
	}
	entry := (*uint64)(unsafe.Add(mask, (row/64)*8))
	return *entry&(1<<(uint(row)%64)) != 0
}

// SetRowInvalid marks row as NULL in the validity mask. Out of range rows are ignored.
func SetRowInvalid(mask unsafe.Pointer, row, chunkSize int) {
	if mask == nil || row < 0 || row >= chunkSize || row >= MaxChunkSize {
		return
	}
	entry := (*uint64)(unsafe.Add(mask, (row/64)*8))
	*entry &^= 1 << (uint(row) % 64)
}
