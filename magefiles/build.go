//go:build mage

package main

import (
	"path/filepath"

	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Builds the demo binary into bin/.
func (Build) Engine() error {
	return goCmd("build", "-o", filepath.Join("bin", "anima"), ".")
}

// Validates the GLSL sources under assets/shaders with glslangValidator.
func (Build) Shaders() error {
	return validateShaders()
}
