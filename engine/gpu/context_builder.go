package gpu

import "github.com/cogentcore/webgpu/wgpu"

// ContextBuilderOption is a functional option applied to a context during construction via NewContext.
type ContextBuilderOption func(*gpuContext)

// WithPresentMode sets the surface present mode which controls how frames are
// delivered to the display. The default is Fifo (vsync).
//
// Parameters:
//   - mode: the wgpu.PresentMode to use
//
// Returns:
//   - ContextBuilderOption: a function that applies the present mode option to a context
func WithPresentMode(mode wgpu.PresentMode) ContextBuilderOption {
	return func(c *gpuContext) {
		c.presentMode = mode
	}
}

// WithForceSoftwareRenderer forces WGPU to use a CPU/software fallback adapter
// instead of hardware GPU acceleration. This requires a software Vulkan ICD on
// the system (e.g. SwiftShader or lavapipe).
//
// Parameters:
//   - force: true to force the software fallback adapter, false to use hardware (default)
//
// Returns:
//   - ContextBuilderOption: a function that applies the force software renderer option to a context
func WithForceSoftwareRenderer(force bool) ContextBuilderOption {
	return func(c *gpuContext) {
		c.forceFallbackAdapter = force
	}
}
