package pass

import (
	_ "embed"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/umbra3d/umbra/engine/gpu"
)

//go:embed assets/shadow.wgsl
var shaderSource string

// NewShaderModule compiles the engine's WGSL source, which carries every entry
// point: vs_bake for the shadow passes, vs_main/fs_main for the forward pass,
// and vs_debug/fs_debug for the overlay. Compiled once and shared by all
// pipelines.
//
// Parameters:
//   - ctx: the GPU context whose device compiles the module
//
// Returns:
//   - *wgpu.ShaderModule: the compiled module
//   - error: if compilation fails
func NewShaderModule(ctx gpu.Context) (*wgpu.ShaderModule, error) {
	module, err := ctx.Device().CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: "Shadow Shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: shaderSource,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("pass: failed to compile shader module: %w", err)
	}
	return module, nil
}
