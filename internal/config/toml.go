// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// FileConfig represents the configuration file.
type FileConfig struct {
	Overlay OverlayConfig `toml:"overlay" yaml:"overlay"`
	Log     LogConfig     `toml:"log" yaml:"log"`
}

// OverlayConfig maps indicator settings. Nil fields are unset.
type OverlayConfig struct {
	Timeout         *int    `toml:"timeout" yaml:"timeout"`
	Position        *string `toml:"position" yaml:"position"`
	Enabled         *bool   `toml:"enabled" yaml:"enabled"`
	MinChars        *int    `toml:"min-chars" yaml:"min-chars"`
	FontSize        *int    `toml:"font-size" yaml:"font-size"`
	BackgroundColor *string `toml:"background-color" yaml:"background-color"`
	Opacity         *int    `toml:"opacity" yaml:"opacity"`
	TextColor       *string `toml:"text-color" yaml:"text-color"`
}

// LogConfig maps logging settings.
type LogConfig struct {
	Level  *string `toml:"level" yaml:"level"`
	Format *string `toml:"format" yaml:"format"`
	Output *string `toml:"output" yaml:"output"`
	File   *string `toml:"file" yaml:"file"`
}

// LoadConfig reads a TOML or YAML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to read config: %w", err)
	}
	return DecodeConfig(path, data)
}

// DecodeConfig decodes config bytes using the format implied by the path extension.
func DecodeConfig(path string, data []byte) (FileConfig, error) {
	var cfg FileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
		}
	default:
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
		}
	}
	return cfg, nil
}

// Values flattens the overlay section into settings keys and raw values.
func (c OverlayConfig) Values() map[string]string {
	out := map[string]string{}
	if c.Timeout != nil {
		out["timeout"] = fmt.Sprint(*c.Timeout)
	}
	if c.Position != nil {
		out["popupPosition"] = *c.Position
	}
	if c.Enabled != nil {
		out["extensionEnabled"] = fmt.Sprint(*c.Enabled)
	}
	if c.MinChars != nil {
		out["minChars"] = fmt.Sprint(*c.MinChars)
	}
	if c.FontSize != nil {
		out["fontSize"] = fmt.Sprint(*c.FontSize)
	}
	if c.BackgroundColor != nil {
		out["backgroundColor"] = *c.BackgroundColor
	}
	if c.Opacity != nil {
		out["opacity"] = fmt.Sprint(*c.Opacity)
	}
	if c.TextColor != nil {
		out["textColor"] = *c.TextColor
	}
	return out
}
