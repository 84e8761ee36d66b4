package material

// ShadowMaterialOption is a functional option for configuring a ShadowMaterial.
// Use the With* functions to create options.
type ShadowMaterialOption func(m *ShadowMaterial)

// WithShadowMapSize sets the edge length of each shadow map layer in texels.
// Larger maps give crisper shadows at the cost of bake time and memory.
//
// Parameters:
//   - size: edge length in texels
//
// Returns:
//   - ShadowMaterialOption: option function to apply
func WithShadowMapSize(size uint32) ShadowMaterialOption {
	return func(m *ShadowMaterial) {
		m.size = size
	}
}
