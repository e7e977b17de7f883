// Package main is the bare Mantaview viewer: one SDL window showing the
// scene target, driven from the keyboard and mouse.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/mantaview/internal/app"
	"github.com/Faultbox/mantaview/internal/config"
	"github.com/Faultbox/mantaview/internal/engine/gpu"
	"github.com/Faultbox/mantaview/internal/engine/input"
	"github.com/Faultbox/mantaview/internal/engine/pass"
	"github.com/Faultbox/mantaview/internal/engine/renderer"
	"github.com/Faultbox/mantaview/internal/engine/window"
	"github.com/Faultbox/mantaview/internal/logger"
)

const windowTitle = "Mantaview"

// blitter copies the finished scene target to the window.
type blitter struct {
	dev *renderer.Device
	win *window.Window
}

func (b blitter) Present(color *gpu.Target) {
	w, h := b.win.DrawableSize()
	b.dev.Blit(color, w, h)
}

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== Mantaview (SDL) ===")

	if err := run(cfg); err != nil {
		logger.Error("viewer error", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
	logger.Info("viewer closed normally")
}

func run(cfg *config.Config) error {
	win, err := window.New(windowTitle, cfg.Graphics)
	if err != nil {
		return err
	}
	defer win.Close()

	dw, dh := win.DrawableSize()
	dev, err := renderer.New(dw, dh)
	if err != nil {
		return err
	}

	a, err := app.New(cfg, dev)
	if err != nil {
		return err
	}
	a.Scene().SetPresenter(blitter{dev: dev, win: win})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	a.Start(ctx)

	loopErr := loop(cfg, win, dev, a)
	return multierr.Combine(loopErr, a.Close())
}

func loop(cfg *config.Config, win *window.Window, dev *renderer.Device, a *app.App) error {
	in := input.New()
	log := logger.Named("loop")

	var minFrame time.Duration
	if cfg.Graphics.FPSLimit > 0 && !cfg.Graphics.VSync {
		minFrame = time.Second / time.Duration(cfg.Graphics.FPSLimit)
	}

	last := time.Now()
	titleAt := last
	frames := 0
	for {
		if in.Update() || in.IsKeyPressed(sdl.SCANCODE_ESCAPE) {
			return nil
		}
		if _, _, ok := in.Resized(); ok {
			dev.Resize(win.DrawableSize())
		}
		handleToggles(in, a)

		now := time.Now()
		dt := now.Sub(last)
		last = now

		mx, my := in.Mouse()
		stats := a.Frame(app.Input{
			DT:         float32(dt.Seconds()),
			Forward:    in.KeyDown(sdl.SCANCODE_W),
			Backward:   in.KeyDown(sdl.SCANCODE_S),
			Left:       in.KeyDown(sdl.SCANCODE_A),
			Right:      in.KeyDown(sdl.SCANCODE_D),
			MouseX:     float32(mx),
			MouseY:     float32(my),
			Look:       in.ButtonDown(sdl.BUTTON_RIGHT),
			Screenshot: in.IsKeyPressed(sdl.SCANCODE_F12),
		})
		win.SwapBuffers()

		frames++
		if elapsed := now.Sub(titleAt); elapsed >= time.Second {
			fps := float64(frames) / elapsed.Seconds()
			win.SetTitle(fmt.Sprintf("%s - %.0f FPS - %d/%d visible", windowTitle, fps, stats.Visible, stats.Total))
			log.Debug("frame stats",
				zap.Float64("fps", fps),
				zap.Int("visible", stats.Visible),
				zap.Int("culled", stats.Culled),
				zap.Duration("frame_time", stats.FrameTime))
			titleAt, frames = now, 0
		}

		if minFrame > 0 {
			if spent := time.Since(now); spent < minFrame {
				time.Sleep(minFrame - spent)
			}
		}
	}
}

// handleToggles maps B to bounding boxes, V to the volumetric pass, G to
// shadow fitting and Tab to cycling the debug view.
func handleToggles(in *input.Input, a *app.App) {
	sc := a.Scene()
	opts := sc.Options()
	if in.IsKeyPressed(sdl.SCANCODE_B) {
		sc.SetShowBounds(!opts.ShowBounds)
	}
	if in.IsKeyPressed(sdl.SCANCODE_V) && a.Density() != nil {
		sc.SetVolumetric(!opts.Volumetric)
	}
	if in.IsKeyPressed(sdl.SCANCODE_G) {
		sc.SetFitShadow(!opts.FitShadow)
	}
	if in.IsKeyPressed(sdl.SCANCODE_TAB) {
		sc.SetDebugView((opts.DebugView + 1) % (pass.DebugOff + 1))
	}
}
