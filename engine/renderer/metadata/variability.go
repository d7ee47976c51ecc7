package metadata

/**
 * @brief Classifies how often a constant's value may change. A parameter
 * update passes a mask of these and only constants whose variability
 * intersects it are considered.
 */
type GpuParamVariability uint16

const (
	/** @brief No variation except by manual setting, the default. */
	GpuVariabilityGlobal GpuParamVariability = 1
	/** @brief Varies per object (based on an auto param usually), but not per light setup. */
	GpuVariabilityPerObject GpuParamVariability = 2
	/** @brief Varies with light setup. */
	GpuVariabilityLights GpuParamVariability = 4
	/** @brief Varies with pass iteration number. */
	GpuVariabilityPassIterationNumber GpuParamVariability = 8
	/** @brief Full mask. */
	GpuVariabilityAll GpuParamVariability = 0xFFFF
)

func (v GpuParamVariability) Matches(mask GpuParamVariability) bool {
	return v&mask != 0
}
