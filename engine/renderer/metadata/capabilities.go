package metadata

/** @brief Optional features of the graphics API that change what the pipeline may use. */
type Capability int

const (
	/** @brief Uniform buffer objects and block bindings. */
	CapabilityUniformBuffers Capability = iota
	/** @brief Non-square float matrix uniforms (mat2x3 and friends). */
	CapabilityNonSquareMatrices
	/** @brief 2D array texture samplers. */
	CapabilityArraySamplers
	/** @brief Object labels for debugging tools. */
	CapabilityDebug
)

func (c Capability) String() string {
	switch c {
	case CapabilityUniformBuffers:
		return "uniform-buffers"
	case CapabilityNonSquareMatrices:
		return "non-square-matrices"
	case CapabilityArraySamplers:
		return "array-samplers"
	case CapabilityDebug:
		return "debug"
	}
	return "unknown"
}

type CapabilityQuery interface {
	HasCapability(c Capability) bool
}

// Capabilities is a fixed capability set.
type Capabilities map[Capability]bool

func (c Capabilities) HasCapability(capability Capability) bool {
	return c[capability]
}

// Without returns a copy with the given capabilities removed.
func (c Capabilities) Without(capabilities ...Capability) Capabilities {
	out := make(Capabilities, len(c))
	for k, v := range c {
		out[k] = v
	}
	for _, k := range capabilities {
		delete(out, k)
	}
	return out
}
