// package pass implements the two render passes of a frame: the depth-only
// shadow passes that bake one shadow map layer per light, and the forward pass
// that shades the scene against those maps (or shows a single map through the
// debug overlay instead).
package pass

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// Recorder records commands into one begun render pass. *wgpu.RenderPassEncoder
// satisfies it; tests substitute fakes to observe recording without a device.
type Recorder interface {
	SetPipeline(pipeline *wgpu.RenderPipeline)
	SetBindGroup(groupIndex uint32, group *wgpu.BindGroup, dynamicOffsets []uint32)
	SetVertexBuffer(slot uint32, buffer *wgpu.Buffer, offset, size uint64)
	SetIndexBuffer(buffer *wgpu.Buffer, format wgpu.IndexFormat, offset, size uint64)
	DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32)
	Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32)
	End() error
	Release()
}

// Encoder begins render passes on a command encoder.
type Encoder interface {
	// BeginRenderPass begins a render pass described by desc and returns its
	// recorder.
	//
	// Parameters:
	//   - desc: the render pass descriptor
	//
	// Returns:
	//   - Recorder: the active pass recorder
	BeginRenderPass(desc *wgpu.RenderPassDescriptor) Recorder

	// Finish ends recording and returns the finished command buffer.
	//
	// Parameters:
	//   - descriptor: the command buffer descriptor, may be nil
	//
	// Returns:
	//   - *wgpu.CommandBuffer: the recorded commands, ready for submission
	//   - error: an error if the encoder could not be finished
	Finish(descriptor *wgpu.CommandBufferDescriptor) (*wgpu.CommandBuffer, error)
}

// wgpuEncoder adapts *wgpu.CommandEncoder to the Encoder interface.
type wgpuEncoder struct {
	inner *wgpu.CommandEncoder
}

var _ Encoder = wgpuEncoder{}

// WrapEncoder adapts a wgpu command encoder so passes can record into it.
//
// Parameters:
//   - encoder: the command encoder for the current frame
//
// Returns:
//   - Encoder: the adapted encoder
func WrapEncoder(encoder *wgpu.CommandEncoder) Encoder {
	return wgpuEncoder{inner: encoder}
}

func (e wgpuEncoder) BeginRenderPass(desc *wgpu.RenderPassDescriptor) Recorder {
	return e.inner.BeginRenderPass(desc)
}

func (e wgpuEncoder) Finish(descriptor *wgpu.CommandBufferDescriptor) (*wgpu.CommandBuffer, error) {
	return e.inner.Finish(descriptor)
}
