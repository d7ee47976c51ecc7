//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Test mg.Namespace

// Runs the unit tests of every package.
func (Test) Unit() error {
	return goCmd("test", "./...")
}

// Runs the unit tests with the race detector, covering the asset watcher.
func (Test) Race() error {
	return goCmd("test", "-race", "./engine/...")
}

// Runs go vet.
func Vet() error {
	return goCmd("vet", "./...")
}
