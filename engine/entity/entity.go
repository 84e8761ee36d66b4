package entity

import (
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

// Entity is one renderable object: its geometry buffers plus the slot it
// occupies in the set's uniform arena. Entities are created through NewSet
// and share the set's bind group.
type Entity struct {
	vertexBuffer *wgpu.Buffer
	indexBuffer  *wgpu.Buffer
	indexCount   uint32
	indexFormat  wgpu.IndexFormat

	// offset is the dynamic offset into the arena for this entity's uniform
	// block. Fixed at construction.
	offset uint32

	transform     mgl32.Mat4
	color         mgl32.Vec4
	rotationAxis  mgl32.Vec3
	rotationSpeed float32
	dirty         bool
}

// VertexBuffer returns the entity's vertex buffer.
func (e *Entity) VertexBuffer() *wgpu.Buffer {
	return e.vertexBuffer
}

// IndexBuffer returns the entity's index buffer.
func (e *Entity) IndexBuffer() *wgpu.Buffer {
	return e.indexBuffer
}

// IndexCount returns the number of indices to draw for the entity.
func (e *Entity) IndexCount() uint32 {
	return e.indexCount
}

// IndexFormat returns the index buffer format.
func (e *Entity) IndexFormat() wgpu.IndexFormat {
	return e.indexFormat
}

// DynamicOffset returns the byte offset of the entity's uniform block inside
// the set's arena, for use with the set's dynamic-offset bind group.
func (e *Entity) DynamicOffset() uint32 {
	return e.offset
}

// Transform returns the entity's current world transform.
func (e *Entity) Transform() mgl32.Mat4 {
	return e.transform
}

// SetTransform replaces the entity's world transform. The new value is
// uploaded on the next Set.Update.
func (e *Entity) SetTransform(transform mgl32.Mat4) {
	e.transform = transform
	e.dirty = true
}

// Color returns the entity's base color.
func (e *Entity) Color() mgl32.Vec4 {
	return e.color
}

// rotate advances the entity's spin by its per-update rotation, if any.
func (e *Entity) rotate() {
	if e.rotationSpeed == 0 {
		return
	}
	spin := mgl32.HomogRotate3D(mgl32.DegToRad(e.rotationSpeed), e.rotationAxis)
	e.transform = e.transform.Mul4(spin)
	e.dirty = true
}

// release frees the entity's GPU buffers.
func (e *Entity) release() {
	if e.indexBuffer != nil {
		e.indexBuffer.Release()
		e.indexBuffer = nil
	}
	if e.vertexBuffer != nil {
		e.vertexBuffer.Release()
		e.vertexBuffer = nil
	}
}
