package main

import (
	"context"
	"fmt"
	"time"

	"github.com/AllenDang/cimgui-go/imgui"
	"go.uber.org/zap"

	"github.com/Faultbox/mantaview/internal/app"
	"github.com/Faultbox/mantaview/internal/config"
	"github.com/Faultbox/mantaview/internal/engine/renderer"
	"github.com/Faultbox/mantaview/internal/engine/scene"
	"github.com/Faultbox/mantaview/internal/engine/ui"
	"github.com/Faultbox/mantaview/internal/logger"
)

const (
	windowTitle = "Mantaview"
	// notifyFor is how long a status message stays on screen.
	notifyFor = 3 * time.Second
)

// viewer hosts the app inside ImGui windows: the scene and debug targets
// are shown as images, the editor panels write straight into the items.
type viewer struct {
	backend *ui.Backend
	dev     *renderer.Device
	app     *app.App
	log     *zap.Logger
	cancel  context.CancelFunc

	stats    scene.Stats
	selected string
	looking  bool
	hovered  bool
	// Sun angles of the main light as last set from the Details panel.
	sunLon, sunLat float32

	status     string
	statusTime time.Time
	pendingDir chan string

	closed bool
}

func newViewer(cfg *config.Config) (*viewer, error) {
	v := &viewer{
		log:        logger.Named("viewer"),
		pendingDir: make(chan string, 1),
		sunLat:     56,
	}

	var err error
	v.backend, err = ui.NewBackend(windowTitle, cfg.Graphics)
	if err != nil {
		return nil, err
	}

	// The window and its context exist now, so GL can be loaded.
	v.dev, err = renderer.New(cfg.Graphics.Width, cfg.Graphics.Height)
	if err != nil {
		return nil, err
	}

	v.app, err = app.New(cfg, v.dev)
	if err != nil {
		return nil, fmt.Errorf("creating viewer: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	v.cancel = cancel
	v.app.Start(ctx)

	v.backend.OnClose(v.Close)
	return v, nil
}

// Run blocks until the window is closed.
func (v *viewer) Run() {
	v.backend.Run(v.render)
}

// Close stops the simulation and frees GPU resources. It runs from the
// backend's teardown hook while the context is current; later calls do
// nothing.
func (v *viewer) Close() {
	if v.closed {
		return
	}
	v.closed = true
	if v.cancel != nil {
		v.cancel()
	}
	if v.app != nil {
		if err := v.app.Close(); err != nil {
			v.log.Error("shutdown", zap.Error(err))
		}
	}
}

func (v *viewer) render() {
	if v.closed {
		return
	}
	// ImGui drew with its own GL state last frame.
	v.dev.Invalidate()

	select {
	case dir := <-v.pendingDir:
		v.app.SetScreenshotDir(dir)
		v.notify("Screenshots go to " + dir)
	default:
	}

	v.stats = v.app.Frame(v.input())

	if !imgui.IsAnyItemActive() && ui.IsKeyPressed(imgui.KeyF12) {
		v.screenshot()
	}

	v.drawMenu()
	v.drawScene()
	v.drawDebug()
	v.drawObjects()
	v.drawDetails()
	v.drawStatus()
}

// input samples ImGui's input state. Look mode starts with the right
// button over the scene image and lasts until the button is released.
func (v *viewer) input() app.Input {
	io := imgui.CurrentIO()
	right := imgui.IsMouseDown(imgui.MouseButtonRight)
	v.looking = right && (v.looking || v.hovered)

	mouse := imgui.MousePos()
	in := app.Input{
		DT:     io.DeltaTime(),
		MouseX: mouse.X,
		MouseY: mouse.Y,
		Look:   v.looking,
	}
	if v.looking {
		in.Forward = ui.IsKeyDown(imgui.KeyW)
		in.Backward = ui.IsKeyDown(imgui.KeyS)
		in.Left = ui.IsKeyDown(imgui.KeyA)
		in.Right = ui.IsKeyDown(imgui.KeyD)
	}
	return in
}

func (v *viewer) screenshot() {
	path, err := v.app.Screenshot()
	if err != nil {
		v.log.Warn("screenshot failed", zap.Error(err))
		v.notify("Screenshot failed: " + err.Error())
		return
	}
	v.notify("Saved " + path)
}

func (v *viewer) notify(msg string) {
	v.status = msg
	v.statusTime = time.Now()
}
