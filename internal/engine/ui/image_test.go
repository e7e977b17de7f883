package ui

import (
	"testing"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/stretchr/testify/assert"
)

func TestFitSize(t *testing.T) {
	tests := []struct {
		name  string
		w, h  int
		avail imgui.Vec2
		want  imgui.Vec2
	}{
		{"width bound", 1920, 1080, imgui.Vec2{X: 960, Y: 1000}, imgui.Vec2{X: 960, Y: 540}},
		{"height bound", 1920, 1080, imgui.Vec2{X: 1920, Y: 540}, imgui.Vec2{X: 960, Y: 540}},
		{"empty image", 0, 1080, imgui.Vec2{X: 100, Y: 100}, imgui.Vec2{}},
		{"no room", 64, 64, imgui.Vec2{X: 0, Y: 100}, imgui.Vec2{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FitSize(tt.w, tt.h, tt.avail)
			assert.InDelta(t, tt.want.X, got.X, 1e-3)
			assert.InDelta(t, tt.want.Y, got.Y, 1e-3)
		})
	}
}

func TestRectUV(t *testing.T) {
	min, max := imgui.Vec2{X: 100, Y: 50}, imgui.Vec2{X: 300, Y: 150}
	u, v := rectUV(imgui.Vec2{X: 200, Y: 75}, min, max)
	assert.InDelta(t, 0.5, u, 1e-5)
	assert.InDelta(t, 0.25, v, 1e-5)

	u, v = rectUV(imgui.Vec2{X: 1, Y: 1}, min, min)
	assert.Zero(t, u)
	assert.Zero(t, v)
}
