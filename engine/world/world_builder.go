package world

import (
	"github.com/umbra3d/umbra/engine/camera"
	"github.com/umbra3d/umbra/engine/entity"
	"github.com/umbra3d/umbra/engine/light"
)

// WorldBuilderOption is a functional option for configuring a worldImpl.
// Use the With* functions to create options.
type WorldBuilderOption func(w *worldImpl)

// WithLights sets the lights to build the world with. Each light gets its own
// shadow map layer, in order. Defaults to light.DefaultConfigs().
//
// Parameters:
//   - configs: the light configurations
//
// Returns:
//   - WorldBuilderOption: option function to apply
func WithLights(configs []light.Config) WorldBuilderOption {
	return func(w *worldImpl) {
		w.lightConfigs = configs
	}
}

// WithEntities sets the entities to build the world with. Defaults to
// entity.DefaultConfigs().
//
// Parameters:
//   - configs: the entity configurations
//
// Returns:
//   - WorldBuilderOption: option function to apply
func WithEntities(configs []entity.Config) WorldBuilderOption {
	return func(w *worldImpl) {
		w.entityConfigs = configs
	}
}

// WithShadowMapSize sets the edge length of each shadow map layer in texels.
// Defaults to material.DefaultShadowMapSize.
//
// Parameters:
//   - size: edge length in texels
//
// Returns:
//   - WorldBuilderOption: option function to apply
func WithShadowMapSize(size uint32) WorldBuilderOption {
	return func(w *worldImpl) {
		w.shadowMapSize = size
	}
}

// WithViewpoint sets the initial camera viewpoint. Defaults to the scene
// camera.
//
// Parameters:
//   - v: the initial viewpoint
//
// Returns:
//   - WorldBuilderOption: option function to apply
func WithViewpoint(v camera.Viewpoint) WorldBuilderOption {
	return func(w *worldImpl) {
		w.viewpoint = v
	}
}

// WithShadowDebug sets whether the shadow map overlay starts enabled.
//
// Parameters:
//   - enabled: the initial overlay state
//
// Returns:
//   - WorldBuilderOption: option function to apply
func WithShadowDebug(enabled bool) WorldBuilderOption {
	return func(w *worldImpl) {
		w.showShadows = enabled
	}
}
