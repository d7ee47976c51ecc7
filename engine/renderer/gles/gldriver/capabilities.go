package gldriver

import (
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/spaghettifunk/anima-pipeline/engine/core"
	"github.com/spaghettifunk/anima-pipeline/engine/renderer/metadata"
)

// QueryCapabilities reads the context version and applies the overrides of
// the config on top of it.
func QueryCapabilities(overrides core.CapabilitiesSection) metadata.Capabilities {
	var major, minor int32
	gl.GetIntegerv(gl.MAJOR_VERSION, &major)
	gl.GetIntegerv(gl.MINOR_VERSION, &minor)
	return capabilitiesFor(major, minor, overrides)
}

func capabilitiesFor(major, minor int32, overrides core.CapabilitiesSection) metadata.Capabilities {
	version := major*10 + minor
	caps := metadata.Capabilities{
		metadata.CapabilityNonSquareMatrices: version >= 21,
		metadata.CapabilityArraySamplers:     version >= 30,
		metadata.CapabilityUniformBuffers:    version >= 31,
		metadata.CapabilityDebug:             overrides.Debug,
	}
	if overrides.DisableUniformBuffers {
		caps[metadata.CapabilityUniformBuffers] = false
	}
	if overrides.DisableNonSquareMatrices {
		caps[metadata.CapabilityNonSquareMatrices] = false
	}
	if overrides.DisableArraySamplers {
		caps[metadata.CapabilityArraySamplers] = false
	}
	return caps
}
