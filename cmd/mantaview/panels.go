package main

import (
	"fmt"
	"time"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/sqweek/dialog"

	"github.com/Faultbox/mantaview/internal/engine/item"
	"github.com/Faultbox/mantaview/internal/engine/lighting"
	"github.com/Faultbox/mantaview/internal/engine/pass"
	"github.com/Faultbox/mantaview/internal/engine/scene"
	"github.com/Faultbox/mantaview/internal/engine/ui"
	"github.com/Faultbox/mantaview/internal/logger"
)

// Layout of the first run; ImGui remembers user changes afterwards.
const (
	sidePanelWidth = float32(340)
	debugHeight    = float32(260)
	statusHeight   = float32(26)
)

var debugViews = []pass.DebugSource{pass.DebugSceneDepth, pass.DebugShadowMap, pass.DebugOff}

func placeOnce(x, y, w, h float32) {
	imgui.SetNextWindowPosV(imgui.NewVec2(x, y), imgui.CondFirstUseEver, imgui.NewVec2(0, 0))
	imgui.SetNextWindowSizeV(imgui.NewVec2(w, h), imgui.CondFirstUseEver)
}

func (v *viewer) drawMenu() {
	if imgui.BeginMainMenuBar() {
		if imgui.BeginMenu("File") {
			if imgui.MenuItemBool("Screenshot (F12)") {
				v.screenshot()
			}
			if imgui.MenuItemBool("Screenshot folder...") {
				v.chooseScreenshotDir()
			}
			imgui.EndMenu()
		}
		if imgui.BeginMenu("Log") {
			current := logger.Level()
			for _, name := range logger.Levels {
				if imgui.MenuItemBoolV(name, "", name == current, true) {
					logger.SetLevel(name)
				}
			}
			imgui.EndMenu()
		}
		imgui.EndMainMenuBar()
	}
}

// chooseScreenshotDir opens a native folder picker. It blocks, so it runs
// on its own goroutine and hands the result back through pendingDir.
func (v *viewer) chooseScreenshotDir() {
	go func() {
		dir, err := dialog.Directory().Title("Screenshot folder").Browse()
		if err != nil {
			if err != dialog.ErrCancelled {
				v.log.Sugar().Warnf("folder dialog: %v", err)
			}
			return
		}
		select {
		case v.pendingDir <- dir:
		default:
		}
	}()
}

func (v *viewer) drawScene() {
	x, y, w, h := v.backend.GetViewport()
	placeOnce(x, y, w-sidePanelWidth, h-debugHeight-statusHeight)
	if imgui.BeginV("Scene", nil, imgui.WindowFlagsNoScrollbar|imgui.WindowFlagsNoScrollWithMouse) {
		v.hovered = ui.TargetImage(v.app.Scene().SceneTarget())
		if v.hovered && imgui.IsItemClicked() {
			if it := v.app.Pick(ui.ItemUV()); it != nil {
				v.selected = it.Name
			}
		}
		if v.hovered && !v.looking {
			imgui.SetTooltip("Click to select, hold right mouse to look, WASD to move")
		}
	} else {
		v.hovered = false
	}
	imgui.End()
}

func (v *viewer) drawDebug() {
	x, y, w, h := v.backend.GetViewport()
	placeOnce(x, y+h-debugHeight-statusHeight, w-sidePanelWidth, debugHeight)
	if imgui.BeginV("DebugRT", nil, imgui.WindowFlagsNoScrollbar) {
		sc := v.app.Scene()
		if sc.Options().DebugView == pass.DebugOff {
			imgui.TextDisabled("Debug view is off")
		} else {
			ui.TargetImage(sc.DebugTarget())
		}
	}
	imgui.End()
}

func (v *viewer) drawObjects() {
	x, y, w, h := v.backend.GetViewport()
	placeOnce(x+w-sidePanelWidth, y, sidePanelWidth, (h-statusHeight)/2)
	if !imgui.BeginV("Objects", nil, 0) {
		imgui.End()
		return
	}
	sc := v.app.Scene()
	opts := sc.Options()
	io := imgui.CurrentIO()

	imgui.Text(fmt.Sprintf("Application average %.3f ms/frame (%.1f FPS)", 1000/io.Framerate(), io.Framerate()))
	imgui.Text(fmt.Sprintf("Visible render item number: %d of %d", v.stats.Visible, v.stats.Total))
	imgui.TextDisabled(fmt.Sprintf("Culled: %d  Scene: %.2f ms", v.stats.Culled, ms(v.stats.FrameTime)))
	if v.stats.UploadFailures > 0 {
		imgui.TextColored(imgui.NewVec4(1, 0.5, 0.3, 1), fmt.Sprintf("Volume upload failures: %d", v.stats.UploadFailures))
	}

	show := opts.ShowBounds
	if imgui.Checkbox("Show BoundingBox", &show) {
		sc.SetShowBounds(show)
	}
	vol := opts.Volumetric
	if imgui.Checkbox("Volumetric smoke", &vol) {
		sc.SetVolumetric(vol)
	}
	fit := opts.FitShadow
	if imgui.Checkbox("Fit shadow to scene", &fit) {
		sc.SetFitShadow(fit)
	}

	imgui.Text("Debug view:")
	for _, d := range debugViews {
		imgui.SameLine()
		if imgui.SelectableBoolV(d.String(), opts.DebugView == d, 0, imgui.NewVec2(60, 0)) {
			sc.SetDebugView(d)
		}
	}

	if imgui.TreeNodeExStrV("Passes", imgui.TreeNodeFlagsNone) {
		for _, p := range v.stats.Passes {
			if p.Skipped {
				imgui.TextDisabled(fmt.Sprintf("%-10s skipped", p.Name))
				continue
			}
			imgui.Text(fmt.Sprintf("%-10s %3d draws %.3f ms", p.Name, p.Draws, ms(p.Duration)))
		}
		imgui.TreePop()
	}

	imgui.Separator()
	if imgui.BeginChildStrV("ItemList", imgui.NewVec2(0, 0), imgui.ChildFlagsBorders, 0) {
		for _, it := range sc.Content().Items() {
			label := it.Name
			if it.Layer.Culled() && it.Culled() {
				label += " (culled)"
			}
			if imgui.SelectableBoolV(label+"##"+it.Name, v.selected == it.Name, 0, imgui.NewVec2(0, 0)) {
				v.selected = it.Name
			}
		}
	}
	imgui.EndChild()
	imgui.End()
}

func (v *viewer) drawDetails() {
	x, y, w, h := v.backend.GetViewport()
	half := (h - statusHeight) / 2
	placeOnce(x+w-sidePanelWidth, y+half, sidePanelWidth, half)
	if !imgui.BeginV("Details", nil, 0) {
		imgui.End()
		return
	}
	defer imgui.End()

	sc := v.app.Scene()
	it := sc.Content().Item(v.selected)
	if it == nil {
		imgui.TextDisabled("Select an item")
		return
	}
	imgui.Text(it.Name)
	imgui.TextDisabled(it.Layer.String())

	if imgui.CollapsingHeaderTreeNodeFlagsV("Transform", imgui.TreeNodeFlagsDefaultOpen) {
		pos := [3]float32(it.Position)
		if imgui.DragFloat3V("translate", &pos, 0.05, 0, 0, "%.2f", imgui.SliderFlagsNone) {
			if it.Layer == item.Light {
				sc.MoveLight(mgl32.Vec3(pos))
			} else {
				it.Position = mgl32.Vec3(pos)
			}
		}
		scale := [3]float32(it.Scale)
		if imgui.DragFloat3V("scale", &scale, 0.01, 0.01, 100, "%.2f", imgui.SliderFlagsNone) {
			it.Scale = mgl32.Vec3(scale)
		}
	}

	if it.Layer == item.Light {
		v.drawSun()
	}

	if m := it.Material; m != nil && imgui.CollapsingHeaderTreeNodeFlagsV("Material", imgui.TreeNodeFlagsNone) {
		imgui.TextDisabled(m.Name)
		albedo := [3]float32(m.Albedo)
		if imgui.DragFloat3V("albedo", &albedo, 0.01, 0, 1, "%.2f", imgui.SliderFlagsNone) {
			m.Albedo = mgl32.Vec3(albedo)
		}
		imgui.DragFloatV("metallic", &m.Metallic, 0.01, 0, 1, "%.2f", imgui.SliderFlagsNone)
		imgui.DragFloatV("roughness", &m.Roughness, 0.01, 0, 1, "%.2f", imgui.SliderFlagsNone)
		imgui.DragFloatV("ao", &m.AO, 0.01, 0, 1, "%.2f", imgui.SliderFlagsNone)
	}

	if ctl := v.app.Controls(); ctl != nil && it.Name == scene.ItemSmoke &&
		imgui.CollapsingHeaderTreeNodeFlagsV("Smoke", imgui.TreeNodeFlagsDefaultOpen) {
		p := ctl.Params()
		force := [3]float32(p.Force)
		if imgui.DragFloat3V("force", &force, 0.00005, -0.001, 0.001, "%.5f", imgui.SliderFlagsNone) {
			ctl.SetForce(mgl32.Vec3(force))
		}
		decay := p.Decay
		if imgui.DragFloatV("decay", &decay, 0.0005, 0, 0.1, "%.4f", imgui.SliderFlagsNone) {
			ctl.SetDecay(decay)
		}
	}
}

// drawSun places the main light on a sphere around its focal point by
// longitude and latitude, keeping its distance.
func (v *viewer) drawSun() {
	sc := v.app.Scene()
	l, ok := sc.Lights().Main()
	if !ok || !imgui.CollapsingHeaderTreeNodeFlagsV("Sun", imgui.TreeNodeFlagsNone) {
		return
	}
	lon, lat := v.sunLon, v.sunLat
	changed := imgui.SliderFloatV("longitude", &lon, -180, 180, "%.0f", imgui.SliderFlagsNone)
	changed = imgui.SliderFloatV("latitude", &lat, 1, 89, "%.0f", imgui.SliderFlagsNone) || changed
	if changed {
		v.sunLon, v.sunLat = lon, lat
		dist := l.Position.Sub(l.FocalPoint).Len()
		sun := lighting.Sun(lon, lat, dist, l.FocalPoint, l.Strength)
		sc.MoveLight(sun.Position)
	}
}

func (v *viewer) drawStatus() {
	x, y, w, h := v.backend.GetViewport()
	imgui.SetNextWindowPos(imgui.NewVec2(x, y+h-statusHeight))
	imgui.SetNextWindowSize(imgui.NewVec2(w, statusHeight))
	flags := imgui.WindowFlagsNoTitleBar | imgui.WindowFlagsNoResize | imgui.WindowFlagsNoMove |
		imgui.WindowFlagsNoScrollbar | imgui.WindowFlagsNoSavedSettings | imgui.WindowFlagsNoFocusOnAppearing
	if imgui.BeginV("##status", nil, flags) {
		if v.status != "" && time.Since(v.statusTime) < notifyFor {
			imgui.Text(v.status)
		} else {
			imgui.TextDisabled(fmt.Sprintf("frame %d", v.stats.Frame))
		}
	}
	imgui.End()
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
