package pass

import (
	"github.com/cogentcore/webgpu/wgpu"

	"github.com/umbra3d/umbra/engine/entity"
)

// Mesh is what a pass needs from one renderable entity. *entity.Entity
// satisfies it.
type Mesh interface {
	VertexBuffer() *wgpu.Buffer
	IndexBuffer() *wgpu.Buffer
	IndexCount() uint32
	IndexFormat() wgpu.IndexFormat
	DynamicOffset() uint32
}

// Scene is the draw list both passes record: the shared per-entity bind group
// and the meshes it covers, in arena slot order.
type Scene struct {
	BindGroup *wgpu.BindGroup
	Meshes    []Mesh
}

// SceneFrom builds the draw list for an entity set.
//
// Parameters:
//   - entities: the set to render
//
// Returns:
//   - Scene: the draw list
func SceneFrom(entities *entity.Set) Scene {
	meshes := make([]Mesh, 0, entities.Count())
	for _, e := range entities.Entities() {
		meshes = append(meshes, e)
	}
	return Scene{
		BindGroup: entities.BindGroup(),
		Meshes:    meshes,
	}
}

// draw records one full draw of every mesh in the scene: bind the mesh's
// uniform block through its dynamic offset, bind its buffers, and issue a
// single-instance indexed draw starting at firstInstance.
func draw(r Recorder, scene Scene, firstInstance uint32) {
	for _, m := range scene.Meshes {
		r.SetBindGroup(1, scene.BindGroup, []uint32{m.DynamicOffset()})
		r.SetVertexBuffer(0, m.VertexBuffer(), 0, wgpu.WholeSize)
		r.SetIndexBuffer(m.IndexBuffer(), m.IndexFormat(), 0, wgpu.WholeSize)
		r.DrawIndexed(m.IndexCount(), 1, 0, 0, firstInstance)
	}
}
