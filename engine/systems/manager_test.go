package systems

import (
	"testing"

	"github.com/spaghettifunk/anima-pipeline/engine/core"
	"github.com/spaghettifunk/anima-pipeline/engine/renderer/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSource() fakeSource {
	src := fakeSource{}
	src["basic_vs"] = struct {
		config *metadata.ShaderConfig
		source string
	}{vertexConfig(), vertexSource}
	src["basic_fs"] = struct {
		config *metadata.ShaderConfig
		source string
	}{fragmentConfig(), fragmentSource}
	return src
}

func TestSystemManagerWiring(t *testing.T) {
	d := newFakeDriver()
	sm, err := NewSystemManager(SystemManagerConfig{
		Driver: d,
		Source: testSource(),
		Logger: core.DiscardLogger(),
	})
	require.NoError(t, err)
	require.NotNil(t, sm.Microcode(), "enabled by default")

	require.NoError(t, sm.Preload("basic_vs", "basic_fs"))
	_, err = sm.Shaders().Use("basic_vs", "basic_fs")
	require.NoError(t, err)
	assert.Equal(t, 2, sm.Microcode().Len())

	sm.InvalidateProgram("basic_fs")
	assert.Equal(t, 1, sm.Microcode().Len())
	sm.InvalidateProgram("unknown")

	require.NoError(t, sm.Shutdown())
	assert.Equal(t, 0, sm.Microcode().Len())
}

func TestSystemManagerWithoutMicrocode(t *testing.T) {
	cfg := core.DefaultConfig()
	cfg.MicrocodeCache.Enabled = false
	d := newFakeDriver()
	sm, err := NewSystemManager(SystemManagerConfig{Config: cfg, Driver: d, Source: testSource(), Logger: core.DiscardLogger()})
	require.NoError(t, err)
	assert.Nil(t, sm.Microcode())
	sm.InvalidateProgram("basic_vs")

	require.NoError(t, sm.Preload("basic_vs", "basic_fs"))
	p, err := sm.Shaders().Use("basic_vs", "basic_fs")
	require.NoError(t, err)
	assert.True(t, p.IsLinked())
	assert.Len(t, d.compiled, 2)
	require.NoError(t, sm.Shutdown())
}

func TestSystemManagerNeedsDriver(t *testing.T) {
	_, err := NewSystemManager(SystemManagerConfig{Logger: core.DiscardLogger()})
	assert.Error(t, err)
}

func TestPreload(t *testing.T) {
	js, err := NewJobSystem(2, 0)
	require.NoError(t, err)
	defer js.Shutdown()

	ss, err := NewShaderSystem(&ShaderSystemConfig{MaxProgramCount: 4, Driver: newFakeDriver(), Source: testSource(), Logger: core.DiscardLogger()})
	require.NoError(t, err)

	err = ss.Preload([]string{"basic_vs", "missing", "basic_fs"}, js)
	assert.ErrorIs(t, err, errNotFound)
	_, err = ss.GetProgram("basic_vs")
	assert.NoError(t, err)
	_, err = ss.GetProgram("basic_fs")
	assert.NoError(t, err)

	// Already registered names are skipped.
	assert.NoError(t, ss.Preload([]string{"basic_vs", "basic_fs"}, js))

	noSource, err := NewShaderSystem(&ShaderSystemConfig{MaxProgramCount: 4, Driver: newFakeDriver(), Logger: core.DiscardLogger()})
	require.NoError(t, err)
	assert.ErrorIs(t, noSource.Preload([]string{"basic_vs"}, js), core.ErrUnknownShader)
}

func TestSystemManagerReloadsChangedProgram(t *testing.T) {
	const edited = "void main() { fragColour = tint * 0.5; }"
	src := testSource()
	d := newFakeDriver()
	sm, err := NewSystemManager(SystemManagerConfig{Driver: d, Source: src, Logger: core.DiscardLogger()})
	require.NoError(t, err)
	defer sm.Shutdown()

	require.NoError(t, sm.Preload("basic_vs", "basic_fs"))
	ss := sm.Shaders()
	_, err = ss.Use("basic_vs", "basic_fs")
	require.NoError(t, err)
	require.Len(t, d.compiled, 2)
	fs, err := ss.Parameters("basic_fs")
	require.NoError(t, err)
	require.NoError(t, fs.SetNamedConstant("tint", 1, 0, 0, 1))

	src["basic_fs"] = struct {
		config *metadata.ShaderConfig
		source string
	}{fragmentConfig(), edited}
	sm.InvalidateProgram("basic_fs")

	// Nothing changes before the reload runs on the graphics thread.
	_, err = ss.Use("basic_vs", "basic_fs")
	require.NoError(t, err)
	assert.Len(t, d.compiled, 2)

	require.NoError(t, sm.ReloadChanged())
	p, err := ss.Use("basic_vs", "basic_fs")
	require.NoError(t, err)
	assert.True(t, p.IsLinked())
	require.Len(t, d.compiled, 3, "only the changed stage recompiles")
	assert.Equal(t, edited, d.compiled[2])
	assert.Zero(t, d.binaries, "the stale binary was evicted")
	assert.Equal(t, 2, sm.Microcode().Len())

	fs, err = ss.Parameters("basic_fs")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0, 0, 1}, fs.Floats[:4])
	assert.True(t, fs.HasPassIterationNumber())

	// The queue is drained.
	require.NoError(t, sm.ReloadChanged())
	_, err = ss.Use("basic_vs", "basic_fs")
	require.NoError(t, err)
	assert.Len(t, d.compiled, 3)
}

func TestSystemManagerReloadRecoversFailedPipeline(t *testing.T) {
	const broken = "void main() { fragColour = }"
	src := testSource()
	d := newFakeDriver()
	d.failOn = broken
	sm, err := NewSystemManager(SystemManagerConfig{Driver: d, Source: src, Logger: core.DiscardLogger()})
	require.NoError(t, err)
	defer sm.Shutdown()
	require.NoError(t, sm.Preload("basic_vs", "basic_fs"))
	ss := sm.Shaders()

	src["basic_fs"] = struct {
		config *metadata.ShaderConfig
		source string
	}{fragmentConfig(), broken}
	sm.InvalidateProgram("basic_fs")
	require.NoError(t, sm.ReloadChanged())
	_, err = ss.Use("basic_vs", "basic_fs")
	assert.ErrorIs(t, err, core.ErrCompileFailed)
	_, err = ss.Use("basic_vs", "basic_fs")
	assert.ErrorIs(t, err, core.ErrPipelineFailed)

	src["basic_fs"] = struct {
		config *metadata.ShaderConfig
		source string
	}{fragmentConfig(), fragmentSource}
	sm.InvalidateProgram("basic_fs")
	sm.InvalidateProgram("not_registered")
	require.NoError(t, sm.ReloadChanged())
	p, err := ss.Use("basic_vs", "basic_fs")
	require.NoError(t, err)
	assert.True(t, p.IsLinked())
}
