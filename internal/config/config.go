package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/petems/audiocast/internal/audio"
)

type Config struct {
	Server      string       `json:"server"`       // server host for the audio stream
	Volume      float64      `json:"volume"`       // initial client-side gain, 0.0-1.0
	ControlPort int          `json:"control_port"` // local UDP port for volume control
	Device      DeviceConfig `json:"device"`
	Format      string       `json:"format"` // "f32" or "i16"
	LogLevel    string       `json:"log_level"`
}

type DeviceConfig struct {
	Index int    `json:"index"` // -1 means unset
	Name  string `json:"name"`
}

// Load returns the defaults overlaid with the JSON config at path, or at the
// platform config path when path is empty. A missing file is not an error.
func Load(path string) (*Config, error) {
	if path == "" {
		path = configPath()
	}

	cfg := &Config{
		Server:      "127.0.0.1",
		Volume:      1.0,
		ControlPort: 8081,
		Device: DeviceConfig{
			Index: -1,
		},
		Format:   string(audio.FormatFloat32),
		LogLevel: "info",
	}

	if data, err := os.ReadFile(path); err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	return cfg, nil
}

// Validate rejects configurations that must not reach stream setup.
func (c *Config) Validate() error {
	if c.Server == "" {
		return fmt.Errorf("server host must not be empty")
	}
	if !(c.Volume >= 0.0 && c.Volume <= 1.0) {
		return fmt.Errorf("volume must be between 0.0 and 1.0, got %g", c.Volume)
	}
	if c.ControlPort < 1 || c.ControlPort > 65535 {
		return fmt.Errorf("control port must be between 1 and 65535, got %d", c.ControlPort)
	}
	if _, err := audio.ParseFormat(c.Format); err != nil {
		return err
	}
	return nil
}

// Criteria maps the configured device selection onto the selector's input.
func (c *Config) Criteria() audio.Criteria {
	return audio.Criteria{Index: c.Device.Index, Name: c.Device.Name}
}

// configPath returns the platform-specific config file path
func configPath() string {
	var base string

	switch runtime.GOOS {
	case "darwin":
		base = os.Getenv("HOME") + "/Library/Application Support"
	case "windows":
		base = os.Getenv("APPDATA")
	default: // linux
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			base = xdg
		} else {
			base = os.Getenv("HOME") + "/.config"
		}
	}

	return filepath.Join(base, "audiocast", "config.json")
}
