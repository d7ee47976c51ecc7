package core

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

type ApplicationSection struct {
	Name      string `toml:"name"`
	StartPosX uint32 `toml:"x"`
	StartPosY uint32 `toml:"y"`
	Width     uint32 `toml:"width"`
	Height    uint32 `toml:"height"`
}

type LogSection struct {
	Level string `toml:"level"`
}

type ShadersSection struct {
	// Directory holding *.shader.toml configs and their stage sources.
	Dir string `toml:"dir"`
	// Watch the directory and drop stale microcode when sources change.
	Watch bool `toml:"watch"`
}

type MicrocodeCacheSection struct {
	Enabled  bool `toml:"enabled"`
	Capacity int  `toml:"capacity"`
}

// CapabilitiesSection lets a config force a reduced feature tier on top of
// what the driver reports.
type CapabilitiesSection struct {
	DisableUniformBuffers    bool `toml:"disable_uniform_buffers"`
	DisableNonSquareMatrices bool `toml:"disable_non_square_matrices"`
	DisableArraySamplers     bool `toml:"disable_array_samplers"`
	Debug                    bool `toml:"debug"`
}

type Config struct {
	Application    ApplicationSection    `toml:"application"`
	Log            LogSection            `toml:"log"`
	Shaders        ShadersSection        `toml:"shaders"`
	MicrocodeCache MicrocodeCacheSection `toml:"microcode_cache"`
	Capabilities   CapabilitiesSection   `toml:"capabilities"`
}

func DefaultConfig() *Config {
	return &Config{
		Application: ApplicationSection{
			Name:      "Anima Pipeline",
			StartPosX: 100,
			StartPosY: 100,
			Width:     1280,
			Height:    720,
		},
		Log: LogSection{Level: string(InfoLevel)},
		Shaders: ShadersSection{
			Dir:   "assets/shaders",
			Watch: true,
		},
		MicrocodeCache: MicrocodeCacheSection{
			Enabled:  true,
			Capacity: 128,
		},
	}
}

// LoadConfig reads a toml file over the defaults. A missing file is not an
// error, the defaults are returned.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}
	if err := ParseConfig(data, cfg); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes data into cfg, rejecting keys it does not know.
func ParseConfig(data []byte, cfg *Config) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, err)
	}
	return cfg.Validate()
}

func (c *Config) Validate() error {
	if _, err := ParseLogLevel(c.Log.Level); err != nil {
		return err
	}
	if c.MicrocodeCache.Enabled && c.MicrocodeCache.Capacity <= 0 {
		return fmt.Errorf("%w: microcode_cache.capacity must be positive when enabled", ErrInvalidConfig)
	}
	if c.Shaders.Dir == "" {
		return fmt.Errorf("%w: shaders.dir must be set", ErrInvalidConfig)
	}
	return nil
}

func (c *Config) LogLevel() LogLevel {
	l, err := ParseLogLevel(c.Log.Level)
	if err != nil {
		return InfoLevel
	}
	return l
}
