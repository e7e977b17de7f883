package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Load loads configuration with priority: defaults < file < flags.
func Load() (*Config, error) {
	cfg := Default()

	// Explicit path takes priority over the standard locations
	configPath := ConfigPath()
	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	}

	applyFlags(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate rejects settings the renderer cannot start with.
func (c *Config) Validate() error {
	if c.Render.SceneWidth < 1 || c.Render.SceneHeight < 1 {
		return errors.New("render.scene_width and render.scene_height must be positive")
	}
	if c.Render.DebugWidth < 1 || c.Render.DebugHeight < 1 {
		return errors.New("render.debug_width and render.debug_height must be positive")
	}
	if c.Render.ShadowResolution < 1 {
		return errors.New("render.shadow_resolution must be positive")
	}
	switch c.Render.DebugView {
	case "depth", "shadow":
	default:
		return fmt.Errorf("render.debug_view %q: want depth or shadow", c.Render.DebugView)
	}
	if c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near {
		return fmt.Errorf("camera clip range %g..%g is empty", c.Camera.Near, c.Camera.Far)
	}
	for i, n := range c.Simulation.Size {
		if n < 2 {
			return fmt.Errorf("simulation.size[%d] = %d: want at least 2", i, n)
		}
	}
	return nil
}

// AssetPath resolves a configured asset path against the asset root.
func (c *Config) AssetPath(rel string) string {
	if rel == "" || filepath.IsAbs(rel) || c.Assets.Root == "" {
		return rel
	}
	return filepath.Join(c.Assets.Root, rel)
}

// findConfigFile looks for config in standard locations.
func findConfigFile() string {
	candidates := []string{
		"./config.yaml",
		filepath.Join(ConfigDir(), "config.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "Mantaview")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "Mantaview")
	default: // Linux and others
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "mantaview")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "mantaview")
	}
}

// loadFromFile loads config from a YAML file, merging with existing values.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}
