package loaders

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spaghettifunk/anima-pipeline/engine/renderer/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseShaderConfig(t *testing.T) {
	config, err := ParseShaderConfig([]byte(`
name = "lit_fs"
stage = "fragment"
source = "lit.frag"
pass_iteration = "pass"

[[constants]]
name = "lights"
type = "vec4"
array_size = 8
variability = ["lights"]

[[constants]]
name = "pass"
type = "float"
variability = ["pass_iteration"]

[[blocks]]
name = "Material"
size = 64
`))
	require.NoError(t, err)
	assert.Equal(t, "lit_fs", config.Name)
	assert.Equal(t, "pass", config.PassIteration)
	require.Len(t, config.Constants, 2)
	assert.Equal(t, 8, config.Constants[0].ArraySize)
	require.Len(t, config.Blocks, 1)
	assert.Equal(t, 64, config.Blocks[0].SizeInBytes)

	defs, err := config.Definitions()
	require.NoError(t, err)
	assert.Equal(t, 33, defs.FloatBufferSize)
	assert.Equal(t, metadata.GpuVariabilityLights, defs.Map["lights"].Variability)
}

func TestParseShaderConfigErrors(t *testing.T) {
	_, err := ParseShaderConfig([]byte(`stage = "vertex"` + "\nunknown = 1\n"))
	assert.Error(t, err, "unknown key")

	_, err = ParseShaderConfig([]byte(`stage = "tessellation"`))
	assert.Error(t, err, "bad stage")

	_, err = ParseShaderConfig([]byte(`stage = `))
	assert.Error(t, err, "bad toml")
}

func TestShaderLoaderDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sky.shader.toml")
	require.NoError(t, os.WriteFile(path, []byte("stage = \"vertex\"\nsource = \"sky.vert\"\n"), 0o644))

	res, err := (&ShaderLoader{}).Load(path, metadata.ResourceTypeShader, nil)
	require.NoError(t, err)
	config := res.Data.(*metadata.ShaderConfig)
	assert.Equal(t, "sky", config.Name)
	assert.Equal(t, "sky", res.Name)
	assert.Equal(t, filepath.Join(dir, "sky.vert"), config.Source)

	require.NoError(t, os.WriteFile(path, []byte("stage = \"vertex\"\n"), 0o644))
	_, err = (&ShaderLoader{}).Load(path, metadata.ResourceTypeShader, nil)
	assert.Error(t, err, "source is required")
}

func TestSourceLoader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sky.vert")
	require.NoError(t, os.WriteFile(path, []byte("void main() {}"), 0o644))

	res, err := (&SourceLoader{}).Load(path, metadata.ResourceTypeShaderSource, map[string]string{"name": "sky"})
	require.NoError(t, err)
	assert.Equal(t, "sky", res.Name)
	assert.Equal(t, "void main() {}", res.Data)
	assert.Equal(t, uint64(14), res.DataSize)

	empty := filepath.Join(dir, "empty.frag")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	_, err = (&SourceLoader{}).Load(empty, metadata.ResourceTypeShaderSource, nil)
	assert.Error(t, err)
}
