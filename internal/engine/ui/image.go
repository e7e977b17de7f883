package ui

import (
	"github.com/AllenDang/cimgui-go/imgui"

	"github.com/Faultbox/mantaview/internal/engine/gpu"
)

// FitSize scales a w×h image to fit inside avail while keeping its aspect
// ratio.
func FitSize(w, h int, avail imgui.Vec2) imgui.Vec2 {
	if w <= 0 || h <= 0 || avail.X <= 0 || avail.Y <= 0 {
		return imgui.NewVec2(0, 0)
	}
	aspect := float32(w) / float32(h)
	dw, dh := avail.X, avail.X/aspect
	if dh > avail.Y {
		dh = avail.Y
		dw = dh * aspect
	}
	return imgui.NewVec2(dw, dh)
}

// TargetImage draws the color attachment of t scaled into the remaining
// content region. OpenGL textures start at the bottom row, so V is
// flipped. It reports whether the image is hovered.
func TargetImage(t *gpu.Target) bool {
	if !t.Valid() || !t.Color.Valid() {
		imgui.TextDisabled("(no image)")
		return false
	}
	size := FitSize(t.Width, t.Height, imgui.ContentRegionAvail())
	texRef := imgui.NewTextureRefTextureID(imgui.TextureID(t.Color))
	imgui.ImageWithBgV(
		*texRef,
		size,
		imgui.NewVec2(0, 1),
		imgui.NewVec2(1, 0),
		imgui.NewVec4(0.15, 0.15, 0.15, 1.0),
		imgui.NewVec4(1, 1, 1, 1),
	)
	return imgui.IsItemHovered()
}

// ItemUV returns the cursor position over the last drawn item in 0..1
// coordinates, v = 0 at the top.
func ItemUV() (u, v float32) {
	return rectUV(imgui.MousePos(), imgui.ItemRectMin(), imgui.ItemRectMax())
}

func rectUV(p, min, max imgui.Vec2) (u, v float32) {
	w, h := max.X-min.X, max.Y-min.Y
	if w <= 0 || h <= 0 {
		return 0, 0
	}
	return (p.X - min.X) / w, (p.Y - min.Y) / h
}
