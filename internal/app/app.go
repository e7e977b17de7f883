// Package app is the front-end independent viewer: it owns the scene, the
// camera and the simulation goroutine, and turns per-frame input into a
// rendered frame.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/mantaview/internal/config"
	"github.com/Faultbox/mantaview/internal/engine/camera"
	"github.com/Faultbox/mantaview/internal/engine/debug"
	"github.com/Faultbox/mantaview/internal/engine/gpu"
	"github.com/Faultbox/mantaview/internal/engine/item"
	"github.com/Faultbox/mantaview/internal/engine/picking"
	"github.com/Faultbox/mantaview/internal/engine/scene"
	"github.com/Faultbox/mantaview/internal/engine/shader"
	"github.com/Faultbox/mantaview/internal/logger"
	"github.com/Faultbox/mantaview/internal/sim"
)

// Input is one frame's worth of user input, already decoded by the
// front-end.
type Input struct {
	DT float32

	Forward, Backward, Left, Right bool

	MouseX, MouseY float32
	// Look is set while the look button is held; the camera only turns
	// and moves then.
	Look bool

	Screenshot bool
}

// App is the viewer. All methods except Controls must be called from the
// render goroutine.
type App struct {
	cfg *config.Config
	dev gpu.Device
	log *zap.Logger

	setup  *scene.Setup
	scene  *scene.Scene
	camera *camera.FPSCamera

	density  *sim.Buffer
	controls *sim.Controls
	smoke    *sim.Smoke
	watcher  *shader.Watcher

	shots *debug.ScreenshotCapture

	cancel  context.CancelFunc
	group   *errgroup.Group
	started bool
	closed  bool
}

// New builds the default scene on dev. The simulation is not started until
// Start.
func New(cfg *config.Config, dev gpu.Device) (*App, error) {
	a := &App{
		cfg:   cfg,
		dev:   dev,
		log:   logger.Named("app"),
		shots: debug.NewScreenshotCapture(cfg.Render.ScreenshotDir, "mantaview"),
	}

	opts, err := scene.OptionsFromConfig(cfg.Render)
	if err != nil {
		return nil, fmt.Errorf("render options: %w", err)
	}
	opts.Volumetric = opts.Volumetric && cfg.Simulation.Enabled

	a.setup, err = scene.Default(dev, cfg)
	if err != nil {
		return nil, fmt.Errorf("building scene: %w", err)
	}
	a.scene, err = scene.New(dev, opts, a.setup.Resources, a.setup.Content, a.setup.Lights)
	if err != nil {
		a.setup.Resources.Release(dev)
		return nil, err
	}

	if cfg.Simulation.Enabled {
		if err := a.initSimulation(); err != nil {
			a.scene.Close()
			a.setup.Resources.Release(dev)
			return nil, err
		}
	}

	a.camera = newCamera(cfg.Camera)
	a.camera.SetAspect(float32(opts.SceneWidth) / float32(opts.SceneHeight))

	if cfg.Render.HotReload {
		a.watcher, err = shader.NewWatcher(a.setup.Resources.Shaders)
		if err != nil {
			a.log.Warn("shader hot reload disabled", zap.Error(err))
		}
	}

	a.log.Info("viewer ready",
		zap.Int("items", len(a.setup.Content.Items())),
		zap.Bool("simulation", cfg.Simulation.Enabled),
		zap.Bool("hot_reload", a.watcher != nil))
	return a, nil
}

func (a *App) initSimulation() error {
	n := a.cfg.Simulation.Size
	var err error
	a.density, err = sim.NewBuffer(n[0], n[1], n[2])
	if err != nil {
		return fmt.Errorf("density buffer: %w", err)
	}
	a.controls = sim.NewControls(sim.Params{
		Force: mgl32.Vec3(a.cfg.Simulation.Force),
		Decay: a.cfg.Simulation.Decay,
	})
	a.smoke = sim.NewSmoke(a.density, a.controls)
	return a.scene.BindVolume(a.setup.Density, a.density)
}

func newCamera(cc config.CameraConfig) *camera.FPSCamera {
	c := camera.New(mgl32.Vec3(cc.Position))
	c.Rotate(cc.Yaw, cc.Pitch)
	c.SetFOV(cc.FOV)
	c.SetClip(cc.Near, cc.Far)
	if cc.Speed > 0 {
		c.Speed = cc.Speed
	}
	if cc.Sensitivity > 0 {
		c.Sensitivity = cc.Sensitivity
	}
	return c
}

// Start launches the simulation and the shader watcher. They stop when ctx
// is cancelled or Close is called.
func (a *App) Start(ctx context.Context) {
	if a.started {
		return
	}
	a.started = true
	ctx, a.cancel = context.WithCancel(ctx)
	a.group, ctx = errgroup.WithContext(ctx)

	if a.smoke != nil {
		interval := a.cfg.Simulation.StepInterval
		a.group.Go(func() error {
			return sim.Run(ctx, a.smoke, interval)
		})
	}
	if a.watcher != nil {
		a.group.Go(func() error {
			return a.watcher.Run(ctx)
		})
	}
}

// Frame applies input and renders one frame.
func (a *App) Frame(in Input) scene.Stats {
	a.camera.ProcessMouse(in.MouseX, in.MouseY, in.Look)
	moves := []struct {
		on  bool
		dir camera.Movement
	}{
		{in.Forward, camera.Forward},
		{in.Backward, camera.Backward},
		{in.Left, camera.Left},
		{in.Right, camera.Right},
	}
	for _, m := range moves {
		if m.on {
			a.camera.Move(m.dir, in.DT)
		}
	}

	a.reloadShaders()
	stats := a.scene.RunFrame(a.camera)

	if in.Screenshot {
		if _, err := a.Screenshot(); err != nil {
			a.log.Warn("screenshot failed", zap.Error(err))
		}
	}
	return stats
}

func (a *App) reloadShaders() {
	n, err := a.setup.Resources.Shaders.Reload()
	if n > 0 {
		a.log.Info("shaders reloaded", zap.Int("programs", n))
	}
	if err != nil {
		a.log.Warn("shader reload failed", zap.Error(err))
	}
}

// Screenshot saves the scene target as a PNG.
func (a *App) Screenshot() (string, error) {
	return a.shots.Capture(a.dev, a.scene.SceneTarget())
}

// SetScreenshotDir changes where screenshots are written.
func (a *App) SetScreenshotDir(dir string) {
	a.shots.SetOutputDir(dir)
}

// Pick returns the nearest visible item under the point (u, v) of the
// scene image, with v = 0 at the top, or nil.
func (a *App) Pick(u, v float32) *item.RenderItem {
	if u < 0 || u > 1 || v < 0 || v > 1 {
		return nil
	}
	r := picking.ScreenToRay(u, v, a.camera.ViewProjection().Inv())
	return picking.Pick(r, a.scene.Content().Items())
}

// Scene returns the viewer's scene.
func (a *App) Scene() *scene.Scene { return a.scene }

// Camera returns the viewer's camera.
func (a *App) Camera() *camera.FPSCamera { return a.camera }

// Controls returns the simulation parameters, or nil when the simulation
// is disabled. They may be written from any goroutine.
func (a *App) Controls() *sim.Controls { return a.controls }

// Density returns the shared density buffer, or nil.
func (a *App) Density() *sim.Buffer { return a.density }

// Close stops the background goroutines, waits for them and releases
// every GPU resource.
func (a *App) Close() error {
	if a.closed {
		return nil
	}
	a.closed = true

	var errs error
	if a.started {
		a.cancel()
		if err := a.group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
			errs = multierr.Append(errs, err)
		}
	} else if a.watcher != nil {
		errs = multierr.Append(errs, a.watcher.Close())
	}

	start := time.Now()
	a.scene.Close()
	a.setup.Resources.Release(a.dev)
	a.log.Info("viewer closed", zap.Duration("teardown", time.Since(start)))
	return errs
}
