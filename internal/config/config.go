// Package config handles objtool configuration loading and management.
package config

import "time"

// Config holds all tool settings.
type Config struct {
	Assets   AssetsConfig   `yaml:"assets" toml:"assets"`
	Pipeline PipelineConfig `yaml:"pipeline" toml:"pipeline"`
	Output   OutputConfig   `yaml:"output" toml:"output"`
	Logging  LoggingConfig  `yaml:"logging" toml:"logging"`
}

// AssetsConfig holds asset discovery settings.
type AssetsConfig struct {
	SearchPaths       []string `yaml:"search_paths" toml:"search_paths"`             // Directories searched for relative scene names
	TextureExtensions []string `yaml:"texture_extensions" toml:"texture_extensions"` // Suffixes probed for map_Kd files without one
}

// PipelineConfig holds mesh ingestion settings.
type PipelineConfig struct {
	GenerateNormals bool     `yaml:"generate_normals" toml:"generate_normals"`
	Timeout         Duration `yaml:"timeout" toml:"timeout"`
	Workers         int      `yaml:"workers" toml:"workers"`
}

// OutputConfig holds report settings.
type OutputConfig struct {
	Format string `yaml:"format" toml:"format"` // text, yaml or json
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level" toml:"level"`
	LogFile string `yaml:"log_file" toml:"log_file"`
}

// Duration is a time.Duration written as a string such as "30s".
type Duration time.Duration

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText formats the duration as a string.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Assets: AssetsConfig{
			SearchPaths:       []string{"."},
			TextureExtensions: []string{".tga", ".png", ".jpg", ".jpeg", ".bmp"},
		},
		Pipeline: PipelineConfig{
			GenerateNormals: false,
			Timeout:         Duration(30 * time.Second),
			Workers:         4,
		},
		Output: OutputConfig{
			Format: "text",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
