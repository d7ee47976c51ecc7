package loaders

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spaghettifunk/anima-pipeline/engine/renderer/metadata"
)

// ShaderConfigSuffix is the file suffix of stage program configs.
const ShaderConfigSuffix = ".shader.toml"

/**
 * @brief Loads a stage program config. The resource data is a
 * *metadata.ShaderConfig whose Source is resolved against the config's
 * directory.
 */
type ShaderLoader struct{}

func (sl *ShaderLoader) Load(path string, assetType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	config, err := ParseShaderConfig(data)
	if err != nil {
		return nil, fmt.Errorf("shader config %s: %w", path, err)
	}
	if config.Name == "" {
		config.Name = strings.TrimSuffix(filepath.Base(path), ShaderConfigSuffix)
	}
	if config.Source == "" {
		return nil, fmt.Errorf("shader config %s: source must be set", path)
	}
	if !filepath.IsAbs(config.Source) {
		config.Source = filepath.Join(filepath.Dir(path), config.Source)
	}
	return &metadata.Resource{
		Name:     config.Name,
		FullPath: path,
		DataSize: uint64(len(data)),
		Data:     config,
	}, nil
}

// ParseShaderConfig decodes a stage program config, rejecting unknown keys.
func ParseShaderConfig(data []byte) (*metadata.ShaderConfig, error) {
	config := &metadata.ShaderConfig{}
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(config); err != nil {
		return nil, err
	}
	if _, err := metadata.ShaderStageFromString(config.Stage); err != nil {
		return nil, err
	}
	return config, nil
}
