package metadata

type ResourceType int

/** @brief Pre-defined resource types. */
const (
	/** @brief Unknown resource type, ignored by the asset manager. */
	ResourceTypeNone ResourceType = iota
	/** @brief Shader stage source text. */
	ResourceTypeShaderSource
	/** @brief Shader config (.shader.toml). */
	ResourceTypeShader
)

/**
 * @brief A generic structure for a resource. All resource loaders
 * load data into these.
 */
type Resource struct {
	/** @brief The name of the resource. */
	Name string
	/** @brief The full file path of the resource. */
	FullPath string
	/** @brief The size of the resource data in bytes. */
	DataSize uint64
	/** @brief The resource data. */
	Data interface{}
}
