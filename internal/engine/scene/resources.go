package scene

import (
	"github.com/Faultbox/mantaview/internal/engine/geometry"
	"github.com/Faultbox/mantaview/internal/engine/gpu"
	"github.com/Faultbox/mantaview/internal/engine/material"
	"github.com/Faultbox/mantaview/internal/engine/shader"
)

// Resources are the arenas a scene's items borrow from. They must outlive
// every Scene built over them.
type Resources struct {
	Geometries *geometry.Store
	Materials  *material.Materials
	Textures   *material.Textures
	Shaders    *shader.Library
}

// NewResources returns empty arenas bound to dev. Shaders are not loaded.
func NewResources(dev gpu.Device, shaderDir string) (*Resources, error) {
	textures, err := material.NewTextures(dev)
	if err != nil {
		return nil, err
	}
	return &Resources{
		Geometries: geometry.NewStore(),
		Materials:  material.NewMaterials(),
		Textures:   textures,
		Shaders:    shader.NewLibrary(dev, shaderDir),
	}, nil
}

// Release frees every GPU object the arenas own.
func (r *Resources) Release(dev gpu.Device) {
	if r.Geometries != nil {
		r.Geometries.Release(dev)
	}
	if r.Textures != nil {
		r.Textures.Release()
	}
	if r.Shaders != nil {
		r.Shaders.Release()
	}
}
