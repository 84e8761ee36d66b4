// package common contains small helpers shared across the engine: raw byte
// views over Go values for GPU uploads and uniform-buffer alignment math.
package common

import (
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// Uses unsafe pointer operations to create a view into the original data.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	totalBytes := int(size) * len(data)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), totalBytes)
}

// StructToBytes reinterprets a pointer to a struct as a raw byte slice using unsafe.
// The returned slice has length equal to the struct's size in memory.
//
// Parameters:
//   - v: pointer to the struct to reinterpret
//
// Returns:
//   - []byte: byte slice view of the struct's memory
func StructToBytes[T any](v *T) []byte {
	size := unsafe.Sizeof(*v)
	return unsafe.Slice((*byte)(unsafe.Pointer(v)), int(size))
}

// Mat4Bytes returns a 64-byte view of a column-major mgl32 matrix, suitable
// for writing into a uniform buffer. The view shares memory with m.
//
// Parameters:
//   - m: pointer to the matrix to view
//
// Returns:
//   - []byte: 64-byte view of the matrix
func Mat4Bytes(m *mgl32.Mat4) []byte {
	return SliceToBytes(m[:])
}

// AlignUp rounds n up to the next multiple of align. align must be a power of
// two greater than zero.
//
// Parameters:
//   - n: the value to round
//   - align: the alignment (power of two)
//
// Returns:
//   - uint64: the smallest multiple of align that is >= n
func AlignUp(n, align uint64) uint64 {
	return (n + align - 1) &^ (align - 1)
}
