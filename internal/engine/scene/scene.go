// Package scene owns a viewer scene: its render items, the offscreen
// targets they are drawn into and the per-frame orchestration that culls,
// streams simulation data and runs the pass pipeline.
package scene

import (
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/mantaview/internal/config"
	"github.com/Faultbox/mantaview/internal/engine/frustum"
	"github.com/Faultbox/mantaview/internal/engine/geometry"
	"github.com/Faultbox/mantaview/internal/engine/gpu"
	"github.com/Faultbox/mantaview/internal/engine/item"
	"github.com/Faultbox/mantaview/internal/engine/lighting"
	"github.com/Faultbox/mantaview/internal/engine/pass"
	"github.com/Faultbox/mantaview/internal/engine/shadow"
	"github.com/Faultbox/mantaview/internal/logger"
)

// Camera is what a frame needs from the viewer's camera.
type Camera interface {
	View() mgl32.Mat4
	Projection() mgl32.Mat4
	ViewProjection() mgl32.Mat4
	Position() mgl32.Vec3
	Front() mgl32.Vec3
	Clip() (near, far float32)
	// Version changes whenever the matrices do.
	Version() uint64
}

// Presenter shows the finished scene color target. Each front-end
// implements it.
type Presenter interface {
	Present(color *gpu.Target)
}

// Options configures targets and pass toggles.
type Options struct {
	SceneWidth       int
	SceneHeight      int
	DebugWidth       int
	DebugHeight      int
	ShadowResolution int

	ClearColor  [4]float32
	Ambient     mgl32.Vec4
	BoundsColor mgl32.Vec4

	ShowBounds bool
	Volumetric bool
	DebugView  pass.DebugSource
	// FitShadow fits the light frustum to the opaque items every frame
	// instead of using the fixed light box.
	FitShadow bool
}

// DefaultOptions returns the options of the stock viewer.
func DefaultOptions() Options {
	return Options{
		SceneWidth:       1920,
		SceneHeight:      1080,
		DebugWidth:       1920,
		DebugHeight:      1080,
		ShadowResolution: shadow.DefaultResolution,
		ClearColor:       [4]float32{0.2, 0.3, 0.3, 1},
		Ambient:          mgl32.Vec4{0.01, 0.01, 0.01, 1},
		BoundsColor:      mgl32.Vec4{0, 1, 0, 1},
		Volumetric:       true,
	}
}

// OptionsFromConfig maps the render section of the configuration.
func OptionsFromConfig(cfg config.RenderConfig) (Options, error) {
	view, err := pass.ParseDebugSource(cfg.DebugView)
	if err != nil {
		return Options{}, err
	}
	o := DefaultOptions()
	o.SceneWidth, o.SceneHeight = cfg.SceneWidth, cfg.SceneHeight
	o.DebugWidth, o.DebugHeight = cfg.DebugWidth, cfg.DebugHeight
	o.ShadowResolution = cfg.ShadowResolution
	o.ClearColor = cfg.ClearColor
	o.ShowBounds = cfg.ShowBoundingBoxes
	o.Volumetric = cfg.Volumetric
	o.DebugView = view
	o.FitShadow = cfg.FitShadowToScene
	return o, nil
}

// Stats describes one frame.
type Stats struct {
	Frame uint64
	// Total counts the items that take part in culling; Visible plus
	// Culled always equals it.
	Total          int
	Visible        int
	Culled         int
	Passes         []pass.Timing
	UploadFailures int
	FrameTime      time.Duration
}

// Scene is a built item set plus the targets it renders into. It is used
// from the render goroutine only.
type Scene struct {
	dev  gpu.Device
	res  *Resources
	opts Options
	log  *zap.Logger

	content  *Content
	lights   *lighting.Set
	pipeline *pass.Pipeline
	volumes  []*volume

	sceneRT   *gpu.Target
	debugRT   *gpu.Target
	shadowMap *shadow.Map

	frustum     frustum.Frustum
	haveFrustum bool
	camVersion  uint64

	presenter Presenter
	frame     uint64
	stats     Stats
}

// New creates the scene, debug and shadow targets for content. On failure
// everything created so far is destroyed.
func New(dev gpu.Device, opts Options, res *Resources, content *Content, lights *lighting.Set) (*Scene, error) {
	if lights == nil {
		lights = lighting.NewSet()
	}
	s := &Scene{
		dev:      dev,
		res:      res,
		opts:     opts,
		log:      logger.Named("scene"),
		content:  content,
		lights:   lights,
		pipeline: pass.NewPipeline(res.Shaders),
	}

	var err error
	s.sceneRT, err = dev.CreateTarget(gpu.TargetSpec{
		Name: "scene", Width: opts.SceneWidth, Height: opts.SceneHeight, Color: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create scene target: %w", err)
	}

	s.debugRT, err = dev.CreateTarget(gpu.TargetSpec{
		Name: "debug", Width: opts.DebugWidth, Height: opts.DebugHeight, Color: true,
	})
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to create debug target: %w", err)
	}

	s.shadowMap, err = shadow.NewMap(dev, opts.ShadowResolution)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to create shadow map: %w", err)
	}

	s.log.Info("scene created",
		zap.Int("items", len(content.items)),
		zap.Int("overlays", len(content.overlays)),
		zap.Int("width", opts.SceneWidth),
		zap.Int("height", opts.SceneHeight))
	return s, nil
}

// RunFrame culls, streams volumes and runs every pass for one frame, then
// hands the scene target to the presenter if one is set.
func (s *Scene) RunFrame(cam Camera) Stats {
	start := time.Now()
	s.frame++
	s.stats = Stats{Frame: s.frame}

	for _, it := range s.content.Items() {
		it.UpdateWorld()
	}

	if !s.haveFrustum || cam.Version() != s.camVersion {
		s.frustum = frustum.ExtractFromMatrix(cam.ViewProjection())
		s.camVersion = cam.Version()
		s.haveFrustum = true
	}
	s.cull()

	for _, ov := range s.content.Groups.Overlay {
		ov.FollowSource()
	}

	if s.opts.Volumetric {
		s.uploadVolumes()
	}

	f := s.buildFrame(cam)
	s.dev.BindTarget(s.sceneRT)
	s.dev.SetState(gpu.DefaultState())
	s.dev.Clear(gpu.ClearOptions{Color: s.opts.ClearColor, ClearColor: true, ClearDepth: true})
	s.stats.Passes = s.pipeline.Run(s.dev, f, &s.content.Groups)
	s.dev.BindTarget(nil)

	if s.presenter != nil {
		s.presenter.Present(s.sceneRT)
	}
	s.stats.FrameTime = time.Since(start)
	return s.stats
}

func (s *Scene) cull() {
	for _, it := range s.content.culled {
		r := s.frustum.ClassifyBox(it.LocalBounds(), it.Position)
		it.SetCulled(!r.Visible())
		s.stats.Total++
		if it.Culled() {
			s.stats.Culled++
		} else {
			s.stats.Visible++
		}
	}
}

func (s *Scene) buildFrame(cam Camera) *pass.Frame {
	near, far := cam.Clip()
	return &pass.Frame{
		View:          cam.View(),
		Proj:          cam.Projection(),
		ViewProj:      cam.ViewProjection(),
		Eye:           cam.Position(),
		LookDir:       cam.Front(),
		Near:          near,
		Far:           far,
		Lights:        s.lights,
		LightViewProj: s.lightViewProj(),
		Ambient:       s.opts.Ambient,
		Scene:         s.sceneRT,
		Debug:         s.debugRT,
		Shadow:        s.shadowMap,
		Textures:      s.res.Textures,
		ShowBounds:    s.opts.ShowBounds,
		BoundsColor:   s.opts.BoundsColor,
		Volumetric:    s.opts.Volumetric,
		DebugView:     s.opts.DebugView,
	}
}

func (s *Scene) lightViewProj() mgl32.Mat4 {
	l, ok := s.lights.Main()
	if !ok {
		return mgl32.Ident4()
	}
	if !s.opts.FitShadow {
		return shadow.LightViewProjection(l, shadow.DefaultHalfExtent, shadow.DefaultNear, shadow.DefaultFar)
	}
	var bounds geometry.Bounds
	first := true
	for _, it := range s.content.Groups.Opaque {
		if it.Geometry == nil {
			continue
		}
		if first {
			bounds, first = it.WorldBounds(), false
			continue
		}
		bounds = bounds.Union(it.WorldBounds())
	}
	return shadow.FitDirectional(l.Direction().Mul(-1), bounds)
}

// Close destroys the scene's targets. The Resources are left to their
// owner.
func (s *Scene) Close() {
	if s.shadowMap != nil {
		s.shadowMap.Destroy(s.dev)
		s.shadowMap = nil
	}
	if s.debugRT != nil {
		s.dev.DeleteTarget(s.debugRT)
		s.debugRT = nil
	}
	if s.sceneRT != nil {
		s.dev.DeleteTarget(s.sceneRT)
		s.sceneRT = nil
	}
}

// SetPresenter sets the presenter called at the end of every frame.
func (s *Scene) SetPresenter(p Presenter) { s.presenter = p }

// Content returns the scene's items for inspection and editing.
func (s *Scene) Content() *Content { return s.content }

// Resources returns the arenas the scene draws from.
func (s *Scene) Resources() *Resources { return s.res }

// Lights returns the scene's light set.
func (s *Scene) Lights() *lighting.Set { return s.lights }

// Stats returns the statistics of the last frame.
func (s *Scene) Stats() Stats { return s.stats }

// Options returns the current options.
func (s *Scene) Options() Options { return s.opts }

// SceneTarget is the color and depth target every camera pass draws into.
func (s *Scene) SceneTarget() *gpu.Target { return s.sceneRT }

// DebugTarget holds the debug view.
func (s *Scene) DebugTarget() *gpu.Target { return s.debugRT }

// ShadowMap returns the shadow map.
func (s *Scene) ShadowMap() *shadow.Map { return s.shadowMap }

// SetShowBounds toggles the bounding-box overlay.
func (s *Scene) SetShowBounds(on bool) { s.opts.ShowBounds = on }

// SetVolumetric toggles the volumetric pass and the volume uploads.
func (s *Scene) SetVolumetric(on bool) { s.opts.Volumetric = on }

// SetDebugView selects what the debug target shows.
func (s *Scene) SetDebugView(d pass.DebugSource) { s.opts.DebugView = d }

// SetFitShadow toggles fitting the light frustum to the scene.
func (s *Scene) SetFitShadow(on bool) { s.opts.FitShadow = on }

// minLightDistance keeps the light off its focal point, where it would
// have no direction.
const minLightDistance = 1e-3

// MoveLight places the main light and every light marker at pos. A
// position on the light's focal point is ignored.
func (s *Scene) MoveLight(pos mgl32.Vec3) {
	if s.lights.Len() == 0 {
		return
	}
	if pos.Sub(s.lights.Lights[0].FocalPoint).Len() < minLightDistance {
		s.log.Debug("light position ignored, on the focal point")
		return
	}
	s.lights.Lights[0].Position = pos
	for _, it := range s.content.Groups.Lights {
		it.Position = pos
	}
}

// Visible returns the items that survived the last cull, in build order.
func (s *Scene) Visible() []*item.RenderItem {
	var out []*item.RenderItem
	for _, it := range s.content.culled {
		if !it.Culled() {
			out = append(out, it)
		}
	}
	return out
}
