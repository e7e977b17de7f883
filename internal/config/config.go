// Package config handles viewer configuration loading and management.
package config

import "time"

// Config holds all viewer settings.
type Config struct {
	Graphics   GraphicsConfig   `yaml:"graphics"`
	Render     RenderConfig     `yaml:"render"`
	Camera     CameraConfig     `yaml:"camera"`
	Simulation SimulationConfig `yaml:"simulation"`
	Assets     AssetsConfig     `yaml:"assets"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// GraphicsConfig holds display settings.
type GraphicsConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`
	FPSLimit   int  `yaml:"fps_limit"`
}

// RenderConfig holds offscreen target sizes and pass toggles.
type RenderConfig struct {
	SceneWidth        int        `yaml:"scene_width"`
	SceneHeight       int        `yaml:"scene_height"`
	DebugWidth        int        `yaml:"debug_width"`
	DebugHeight       int        `yaml:"debug_height"`
	ShadowResolution  int        `yaml:"shadow_resolution"`
	FitShadowToScene  bool       `yaml:"fit_shadow_to_scene"`
	ShowBoundingBoxes bool       `yaml:"show_bounding_boxes"`
	Volumetric        bool       `yaml:"volumetric"`
	DebugView         string     `yaml:"debug_view"` // "depth" or "shadow"
	ClearColor        [4]float32 `yaml:"clear_color"`
	HotReload         bool       `yaml:"hot_reload"`
	ScreenshotDir     string     `yaml:"screenshot_dir"`
}

// CameraConfig holds the initial camera placement and controls.
type CameraConfig struct {
	Position    [3]float32 `yaml:"position"`
	Yaw         float32    `yaml:"yaw"`
	Pitch       float32    `yaml:"pitch"`
	FOV         float32    `yaml:"fov"`
	Near        float32    `yaml:"near"`
	Far         float32    `yaml:"far"`
	Speed       float32    `yaml:"speed"`
	Sensitivity float32    `yaml:"sensitivity"`
}

// SimulationConfig holds smoke simulation settings.
type SimulationConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Size         [3]int        `yaml:"size"`
	Decay        float32       `yaml:"decay"`
	Force        [3]float32    `yaml:"force"`
	StepInterval time.Duration `yaml:"step_interval"`
}

// AssetsConfig holds asset locations. Relative paths resolve against Root.
type AssetsConfig struct {
	Root      string `yaml:"root"`
	ShaderDir string `yaml:"shader_dir"` // empty uses the embedded shaders
	Model     string `yaml:"model"`
	Wall      string `yaml:"wall"`
	WallNorm  string `yaml:"wall_normal"`
	SkyboxDir string `yaml:"skybox_dir"`
	SkyboxExt string `yaml:"skybox_ext"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
			FPSLimit:   0,
		},
		Render: RenderConfig{
			SceneWidth:        1920,
			SceneHeight:       1080,
			DebugWidth:        1920,
			DebugHeight:       1080,
			ShadowResolution:  2048,
			FitShadowToScene:  false,
			ShowBoundingBoxes: false,
			Volumetric:        true,
			DebugView:         "depth",
			ClearColor:        [4]float32{0.2, 0.3, 0.3, 1.0},
			HotReload:         false,
			ScreenshotDir:     "screenshots",
		},
		Camera: CameraConfig{
			Position:    [3]float32{-10, 5, 0},
			Yaw:         0,
			Pitch:       0,
			FOV:         45,
			Near:        0.1,
			Far:         100,
			Speed:       2.5,
			Sensitivity: 0.1,
		},
		Simulation: SimulationConfig{
			Enabled:      true,
			Size:         [3]int{32, 64, 32},
			Decay:        0.05,
			Force:        [3]float32{0, 0, 0},
			StepInterval: 16 * time.Millisecond,
		},
		Assets: AssetsConfig{
			Root:      "assets",
			Model:     "models/bunny.obj",
			Wall:      "textures/brickwall.jpg",
			WallNorm:  "textures/brickwall_normal.jpg",
			SkyboxDir: "textures/skybox",
			SkyboxExt: ".jpg",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
