package light

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/umbra3d/umbra/common"
	"github.com/umbra3d/umbra/engine/gpu"
)

// Set is the ordered, fixed-size collection of shadow-casting lights. It owns
// the storage buffer holding every light's GPU representation; the buffer is
// bound in both the shadow pass (matrix lookup by instance index) and the
// forward pass (shading and shadow-coordinate computation).
//
// The set size is fixed at construction; there is no insertion or removal.
type Set struct {
	lights  []*Light
	staging []GPULight
	buffer  *wgpu.Buffer
}

// NewSet creates the light set. Each config is paired positionally with a
// depth view from targets: light i renders into targets[i], which must be
// layer i of the shadow array texture.
//
// Parameters:
//   - ctx: the GPU context
//   - configs: one Config per light, in layer order
//   - targets: one per-layer depth view per light, in the same order
//
// Returns:
//   - *Set: the light set
//   - error: an error if the GPU buffer could not be created
func NewSet(ctx gpu.Context, configs []Config, targets []*wgpu.TextureView) (*Set, error) {
	if len(configs) == 0 {
		return nil, fmt.Errorf("light set requires at least one light")
	}
	if len(configs) != len(targets) {
		return nil, fmt.Errorf("light count %d does not match target count %d", len(configs), len(targets))
	}

	s := &Set{
		lights:  make([]*Light, 0, len(configs)),
		staging: make([]GPULight, len(configs)),
	}
	for i, cfg := range configs {
		s.lights = append(s.lights, New(cfg, targets[i]))
	}
	s.fillStaging()

	buffer, err := ctx.Device().CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    "Light Storage Buffer",
		Contents: common.SliceToBytes(s.staging),
		Usage:    wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create light buffer: %w", err)
	}
	s.buffer = buffer

	return s, nil
}

// Lights returns the ordered lights. The slice must not be reordered: sequence
// position determines the shadow array layer and shadow-pass instance index.
//
// Returns:
//   - []*Light: the lights in layer order
func (s *Set) Lights() []*Light {
	return s.lights
}

// Count returns the number of lights in the set.
//
// Returns:
//   - int: the light count
func (s *Set) Count() int {
	return len(s.lights)
}

// Buffer returns the storage buffer holding the packed GPU lights.
//
// Returns:
//   - *wgpu.Buffer: the light storage buffer
func (s *Set) Buffer() *wgpu.Buffer {
	return s.buffer
}

// ProjectionViews returns every light's current projection-view matrix in
// layer order, for viewpoint resolution.
//
// Returns:
//   - []mgl32.Mat4: the projection-view matrices
func (s *Set) ProjectionViews() []mgl32.Mat4 {
	views := make([]mgl32.Mat4, len(s.lights))
	for i, l := range s.lights {
		views[i] = l.projectionView
	}
	return views
}

// Update recomputes the projection-view matrix of any light that moved and
// uploads the packed light array. Must be called each frame before the shadow
// pass is recorded so every recorded matrix reflects the light's current
// position.
//
// Parameters:
//   - ctx: the GPU context
//
// Returns:
//   - error: an error if the buffer upload fails
func (s *Set) Update(ctx gpu.Context) error {
	for _, l := range s.lights {
		if l.dirty {
			l.refresh()
		}
	}
	s.fillStaging()
	if err := ctx.WriteBuffer(s.buffer, 0, common.SliceToBytes(s.staging)); err != nil {
		return fmt.Errorf("failed to upload lights: %w", err)
	}
	return nil
}

func (s *Set) fillStaging() {
	for i, l := range s.lights {
		s.staging[i] = l.pack()
	}
}

// Release frees the storage buffer. The layer target views belong to the
// material and are not released here.
func (s *Set) Release() {
	if s.buffer != nil {
		s.buffer.Release()
		s.buffer = nil
	}
}
