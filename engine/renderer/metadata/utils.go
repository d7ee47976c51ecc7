package metadata

import "golang.org/x/exp/constraints"

// Std140Alignment is the base alignment of a vec4 in a std140 uniform block.
const Std140Alignment = 16

// GetAligned rounds operand up to a multiple of granularity, which must be a
// power of two.
func GetAligned[T constraints.Integer](operand, granularity T) T {
	return (operand + (granularity - 1)) &^ (granularity - 1)
}
