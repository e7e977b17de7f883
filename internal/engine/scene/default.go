package scene

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/mantaview/internal/config"
	"github.com/Faultbox/mantaview/internal/engine/debug"
	"github.com/Faultbox/mantaview/internal/engine/geometry"
	"github.com/Faultbox/mantaview/internal/engine/gpu"
	"github.com/Faultbox/mantaview/internal/engine/item"
	"github.com/Faultbox/mantaview/internal/engine/lighting"
	"github.com/Faultbox/mantaview/internal/engine/material"
	"github.com/Faultbox/mantaview/internal/engine/texture"
	"github.com/Faultbox/mantaview/internal/logger"
)

// Names of the stock scene's resources.
const (
	GeoQuad   = "quad"
	GeoCube   = "cube"
	GeoBox    = "box"
	GeoGrid   = "grid"
	GeoSphere = "sphere"

	MatSky     = "sky"
	MatDefault = "default"
	MatBrick   = "brick0"
	MatTile    = "tile"
	MatLight   = "light0"
	MatSmoke   = "smoke"

	TexWallDiffuse = "brickWallDiffuseMap"
	TexWallNormal  = "brickWallNormalMap"
	TexSky         = "skyBox"
	TexSmoke       = "smoke"

	// ItemSmoke is the volumetric item showing the simulation.
	ItemSmoke = "Smoke"
	// ItemLight is the marker drawn at the main light.
	ItemLight = "DirectionalLight"
)

// Setup is everything needed to create the stock scene.
type Setup struct {
	Resources *Resources
	Content   *Content
	Lights    *lighting.Set
	// Density is the smoke volume texture, zero when the simulation is off.
	Density material.TextureID
}

// Default loads the stock scene's assets and builds its items. Missing
// texture and mesh files degrade to placeholders; only programming errors
// in the item table fail.
func Default(dev gpu.Device, cfg *config.Config) (*Setup, error) {
	log := logger.Named("scene")

	res, err := NewResources(dev, cfg.AssetPath(cfg.Assets.ShaderDir))
	if err != nil {
		return nil, err
	}
	res.Shaders.LoadBuiltins()

	st := &Setup{Resources: res, Lights: lighting.NewSet()}
	st.Lights.Add(lighting.DefaultDirectional())

	if err := st.loadTextures(cfg); err != nil {
		res.Release(dev)
		return nil, err
	}
	bunny, err := st.loadGeometries(cfg, log)
	if err != nil {
		res.Release(dev)
		return nil, err
	}
	if err := res.Geometries.UploadAll(dev); err != nil {
		log.Warn("some geometry failed to upload", zap.Error(err))
	}
	if err := st.addMaterials(); err != nil {
		res.Release(dev)
		return nil, err
	}

	b := NewBuilder()
	for _, name := range bunny {
		b.Add(ItemSpec{Name: "Bunny", Layer: item.Opaque, Geometry: name, Material: MatDefault, Position: mgl32.Vec3{-2, 2, -2}})
	}
	b.Add(
		ItemSpec{Name: "Box", Layer: item.Opaque, Geometry: GeoBox, Material: MatBrick, Position: mgl32.Vec3{0, 2, 0}},
		ItemSpec{Name: "Sphere", Layer: item.Opaque, Geometry: GeoSphere, Material: MatBrick, Position: mgl32.Vec3{3, 2, 0}},
		ItemSpec{Name: "Sphere2", Layer: item.Opaque, Geometry: GeoSphere, Material: MatDefault, Position: mgl32.Vec3{0, 2, -2}},
		ItemSpec{Name: "Floor", Layer: item.Opaque, Geometry: GeoGrid, Material: MatTile, TextureScale: 5},
	)
	if st.Density.Valid() {
		n := cfg.Simulation.Size
		b.Add(ItemSpec{
			Name:     ItemSmoke,
			Layer:    item.Volumetric,
			Geometry: GeoCube,
			Material: MatSmoke,
			Position: mgl32.Vec3{2, 5, 4},
			Scale:    mgl32.Vec3{float32(n[0]) / 16, float32(n[1]) / 16, float32(n[2]) / 16},
		})
	}
	if l, ok := st.Lights.Main(); ok {
		b.Add(ItemSpec{Name: ItemLight, Layer: item.Light, Geometry: GeoCube, Material: MatLight, Position: l.Position, Scale: mgl32.Vec3{0.3, 0.3, 0.3}})
	}
	b.Add(
		ItemSpec{Name: "Sky", Layer: item.Sky, Geometry: GeoCube, Material: MatSky},
		ItemSpec{Name: "debugRT", Layer: item.DebugQuad, Geometry: GeoQuad},
	)

	st.Content, err = b.Build(res)
	if err != nil {
		res.Release(dev)
		return nil, fmt.Errorf("building default scene: %w", err)
	}
	return st, nil
}

func (st *Setup) loadTextures(cfg *config.Config) error {
	tex := st.Resources.Textures
	if _, err := tex.Load2D(TexWallDiffuse, cfg.AssetPath(cfg.Assets.Wall)); err != nil {
		return err
	}
	if _, err := tex.Load2D(TexWallNormal, cfg.AssetPath(cfg.Assets.WallNorm)); err != nil {
		return err
	}
	faces := texture.CubeFaces(cfg.AssetPath(cfg.Assets.SkyboxDir), cfg.Assets.SkyboxExt)
	if _, err := tex.LoadCube(TexSky, faces); err != nil {
		return err
	}
	if cfg.Simulation.Enabled {
		n := cfg.Simulation.Size
		id, err := tex.AddVolume(TexSmoke, n[0], n[1], n[2])
		if err != nil {
			return err
		}
		st.Density = id
	}
	return nil
}

// loadGeometries registers the generated shapes and the optional model,
// returning the model's geometry names.
func (st *Setup) loadGeometries(cfg *config.Config, log *zap.Logger) ([]string, error) {
	store := st.Resources.Geometries

	grid, err := geometry.Grid(20, 30, 60, 40)
	if err != nil {
		return nil, err
	}
	grid.Name = GeoGrid
	sphere, err := geometry.Sphere(0.5, 20, 20)
	if err != nil {
		return nil, err
	}
	sphere.Name = GeoSphere
	box := geometry.Box(1, 1, 1)
	box.Name = GeoBox
	wire, err := debug.WireBox()
	if err != nil {
		return nil, err
	}
	for _, g := range []*geometry.Geometry{geometry.Quad(), geometry.Cube(), box, grid, sphere, wire} {
		if _, err := store.Add(g); err != nil {
			return nil, err
		}
	}

	if cfg.Assets.Model == "" {
		return nil, nil
	}
	path := cfg.AssetPath(cfg.Assets.Model)
	meshes, err := geometry.LoadOBJ(path)
	if err != nil {
		log.Warn("model not loaded", zap.String("path", path), zap.Error(err))
		return nil, nil
	}
	var names []string
	for _, g := range meshes {
		if _, err := store.Add(g); err != nil {
			log.Warn("model mesh skipped", zap.String("mesh", g.Name), zap.Error(err))
			continue
		}
		names = append(names, g.Name)
	}
	return names, nil
}

func (st *Setup) addMaterials() error {
	tex := st.Resources.Textures
	wallD, _ := tex.Lookup(TexWallDiffuse)
	wallN, _ := tex.Lookup(TexWallNormal)
	sky, _ := tex.Lookup(TexSky)

	var emissive mgl32.Vec3
	if l, ok := st.Lights.Main(); ok {
		emissive = l.Strength
	}

	white := mgl32.Vec3{1, 1, 1}
	mats := []material.Material{
		{Name: MatSky, Density: sky},
		{Name: MatDefault, Albedo: white, Metallic: 0.1, Roughness: 1},
		{Name: MatBrick, Albedo: white, Metallic: 0.1, Roughness: 0.8, Diffuse: wallD, Normal: wallN},
		{Name: MatTile, Albedo: white, Metallic: 0.1, Roughness: 0.8, Diffuse: wallD, Normal: wallN},
		{Name: MatLight, Emissive: emissive},
		{Name: MatSmoke, Density: st.Density},
	}
	for _, m := range mats {
		if _, err := st.Resources.Materials.Add(m); err != nil {
			return err
		}
	}
	return nil
}
