package metadata

/**
 * @brief Binds one active constant of a stage to its driver location.
 */
type UniformReference struct {
	/** @brief The constant definition, owned by the stage's reflection table. */
	ConstantDef *ConstantDefinition
	/** @brief The location inside the stage program. Never InvalidLocation. */
	Location int32
	/** @brief The stage whose program owns the location. */
	SourceStage ShaderStage
}

// InvalidLocation is what the driver reports for a declared but inactive uniform.
const InvalidLocation int32 = -1
