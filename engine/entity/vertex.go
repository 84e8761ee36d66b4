// package entity owns the renderable geometry of the scene: per-entity vertex
// and index buffers plus a shared transform uniform arena that both render
// passes bind with a per-entity dynamic offset.
package entity

import (
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
)

// Vertex is the interleaved vertex format shared by all scene geometry: a
// signed-byte position and a signed-byte normal, 8 bytes total. The shaders
// receive both as vec4<i32>.
type Vertex struct {
	Pos    [4]int8
	Normal [4]int8
}

// vert builds a Vertex from a position and normal, with w fixed to 1 and 0.
func vert(x, y, z int8, nx, ny, nz int8) Vertex {
	return Vertex{
		Pos:    [4]int8{x, y, z, 1},
		Normal: [4]int8{nx, ny, nz, 0},
	}
}

// VertexLayout returns the vertex buffer layout for Vertex: two Sint8x4
// attributes at shader locations 0 (position) and 1 (normal), stride 8.
//
// Returns:
//   - wgpu.VertexBufferLayout: the layout descriptor
func VertexLayout() wgpu.VertexBufferLayout {
	return wgpu.VertexBufferLayout{
		ArrayStride: uint64(unsafe.Sizeof(Vertex{})),
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes: []wgpu.VertexAttribute{
			{
				ShaderLocation: 0,
				Offset:         0,
				Format:         wgpu.VertexFormatSint8x4,
			},
			{
				ShaderLocation: 1,
				Offset:         uint64(unsafe.Sizeof([4]int8{})),
				Format:         wgpu.VertexFormatSint8x4,
			},
		},
	}
}
