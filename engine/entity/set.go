package entity

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/umbra3d/umbra/common"
	"github.com/umbra3d/umbra/engine/gpu"
)

// Set owns a group of entities and the uniform arena backing their per-entity
// transform blocks. All entities share one bind group; each draw selects its
// block through a dynamic offset that is a multiple of the device's uniform
// alignment.
type Set struct {
	entities []*Entity

	arena      *wgpu.Buffer
	slotStride uint64
	layout     *wgpu.BindGroupLayout
	bindGroup  *wgpu.BindGroup
}

// NewSet uploads the given entity configurations and builds the shared
// uniform arena and bind group. Entity order is preserved; the entity at
// index i occupies arena slot i.
//
// Parameters:
//   - ctx: the GPU context to allocate resources on
//   - configs: the entities to build, at least one
//
// Returns:
//   - *Set: the constructed set
//   - error: if configs is empty or resource creation fails
func NewSet(ctx gpu.Context, configs []Config) (*Set, error) {
	if len(configs) == 0 {
		return nil, errors.New("entity: set requires at least one entity")
	}

	stride := common.AlignUp(GPUEntitySize, ctx.UniformAlignment())
	s := &Set{slotStride: stride}

	arena, err := ctx.Device().CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Entity Uniform Arena",
		Size:  stride * uint64(len(configs)),
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("entity: failed to create uniform arena: %w", err)
	}
	s.arena = arena

	for i, cfg := range configs {
		e, err := s.buildEntity(ctx, i, cfg)
		if err != nil {
			s.Release()
			return nil, fmt.Errorf("entity: failed to build entity %d: %w", i, err)
		}
		s.entities = append(s.entities, e)
	}

	layout, err := ctx.Device().CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Entity Bind Group Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
				Buffer: wgpu.BufferBindingLayout{
					Type:             wgpu.BufferBindingTypeUniform,
					HasDynamicOffset: true,
					MinBindingSize:   GPUEntitySize,
				},
			},
		},
	})
	if err != nil {
		s.Release()
		return nil, fmt.Errorf("entity: failed to create bind group layout: %w", err)
	}
	s.layout = layout

	bindGroup, err := ctx.Device().CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Entity Bind Group",
		Layout: layout,
		Entries: []wgpu.BindGroupEntry{
			{
				Binding: 0,
				Buffer:  arena,
				Offset:  0,
				Size:    GPUEntitySize,
			},
		},
	})
	if err != nil {
		s.Release()
		return nil, fmt.Errorf("entity: failed to create bind group: %w", err)
	}
	s.bindGroup = bindGroup

	return s, nil
}

// buildEntity uploads one entity's geometry and assigns its arena slot.
func (s *Set) buildEntity(ctx gpu.Context, slot int, cfg Config) (*Entity, error) {
	if len(cfg.Geometry.Vertices) == 0 || len(cfg.Geometry.Indices) == 0 {
		return nil, errors.New("geometry is empty")
	}

	transform := cfg.Transform
	if transform == (mgl32.Mat4{}) {
		transform = mgl32.Ident4()
	}

	vertexBuffer, err := ctx.Device().CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    "Entity Vertex Buffer",
		Contents: common.SliceToBytes(cfg.Geometry.Vertices),
		Usage:    wgpu.BufferUsageVertex,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create vertex buffer: %w", err)
	}

	indexBuffer, err := ctx.Device().CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    "Entity Index Buffer",
		Contents: common.SliceToBytes(cfg.Geometry.Indices),
		Usage:    wgpu.BufferUsageIndex,
	})
	if err != nil {
		vertexBuffer.Release()
		return nil, fmt.Errorf("failed to create index buffer: %w", err)
	}

	return &Entity{
		vertexBuffer:  vertexBuffer,
		indexBuffer:   indexBuffer,
		indexCount:    cfg.Geometry.IndexCount(),
		indexFormat:   wgpu.IndexFormatUint16,
		offset:        uint32(uint64(slot) * s.slotStride),
		transform:     transform,
		color:         cfg.Color,
		rotationAxis:  cfg.RotationAxis,
		rotationSpeed: cfg.RotationSpeed,
		dirty:         true,
	}, nil
}

// Entities returns the entities in slot order.
func (s *Set) Entities() []*Entity {
	return s.entities
}

// Count returns the number of entities in the set.
func (s *Set) Count() int {
	return len(s.entities)
}

// BindGroupLayout returns the layout of the shared per-entity bind group.
func (s *Set) BindGroupLayout() *wgpu.BindGroupLayout {
	return s.layout
}

// BindGroup returns the shared bind group. Bind it with the entity's
// DynamicOffset to select that entity's uniform block.
func (s *Set) BindGroup() *wgpu.BindGroup {
	return s.bindGroup
}

// SlotStride returns the byte stride between consecutive arena slots.
func (s *Set) SlotStride() uint64 {
	return s.slotStride
}

// Update advances entity animation and uploads any changed uniform blocks to
// the arena. Call once per frame before recording render passes.
//
// Parameters:
//   - ctx: the GPU context whose queue receives the writes
//
// Returns:
//   - error: if a buffer write fails
func (s *Set) Update(ctx gpu.Context) error {
	for i, e := range s.entities {
		e.rotate()
		if !e.dirty {
			continue
		}
		block := e.pack()
		if err := ctx.WriteBuffer(s.arena, uint64(e.offset), common.StructToBytes(&block)); err != nil {
			return fmt.Errorf("entity: failed to upload uniform block %d: %w", i, err)
		}
		e.dirty = false
	}
	return nil
}

// Release frees the arena, bind group and all entity buffers.
func (s *Set) Release() {
	if s.bindGroup != nil {
		s.bindGroup.Release()
		s.bindGroup = nil
	}
	if s.layout != nil {
		s.layout.Release()
		s.layout = nil
	}
	for _, e := range s.entities {
		e.release()
	}
	s.entities = nil
	if s.arena != nil {
		s.arena.Release()
		s.arena = nil
	}
}
