//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Validates the shaders and runs the demo with anima.toml.
func (Run) Demo() error {
	mg.Deps(Build.Shaders)
	fmt.Println("Run demo...")
	return goCmd("run", ".", "anima.toml")
}
