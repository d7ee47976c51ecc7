package loaders

import (
	"fmt"
	"io"
	"os"

	"github.com/spaghettifunk/anima-pipeline/engine/renderer/metadata"
)

// SourceLoader reads a GLSL stage source. The resource data is a string.
type SourceLoader struct{}

func (sl *SourceLoader) Load(path string, assetType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	if len(buf) == 0 {
		return nil, fmt.Errorf("shader source %s is empty", path)
	}

	name := path
	if p, ok := params.(map[string]string); ok && p["name"] != "" {
		name = p["name"]
	}
	return &metadata.Resource{
		Name:     name,
		FullPath: path,
		DataSize: uint64(len(buf)),
		Data:     string(buf),
	}, nil
}
