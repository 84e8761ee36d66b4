package common

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSliceToBytes(t *testing.T) {
	assert.Nil(t, SliceToBytes[float32](nil))
	assert.Nil(t, SliceToBytes([]uint16{}))

	data := []uint16{1, 2, 3}
	b := SliceToBytes(data)
	require.Len(t, b, 6)
	assert.Equal(t, byte(1), b[0])
	assert.Equal(t, byte(2), b[2])
}

func TestMat4Bytes(t *testing.T) {
	m := mgl32.Ident4()
	b := Mat4Bytes(&m)
	require.Len(t, b, 64)

	// Column-major identity: first float is 1.0 (little-endian 0x3f800000).
	assert.Equal(t, byte(0x80), b[2])
	assert.Equal(t, byte(0x3f), b[3])
}

func TestAlignUp(t *testing.T) {
	assert.Equal(t, uint64(0), AlignUp(0, 256))
	assert.Equal(t, uint64(256), AlignUp(1, 256))
	assert.Equal(t, uint64(256), AlignUp(256, 256))
	assert.Equal(t, uint64(512), AlignUp(257, 256))
	assert.Equal(t, uint64(64), AlignUp(33, 32))
}
