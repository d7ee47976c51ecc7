//go:build mage

package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

var shaderDir = filepath.Join("assets", "shaders")

// goCmd runs a go subcommand with its output streamed. With mage -v the
// subcommand runs verbose too.
func goCmd(sub string, args ...string) error {
	full := []string{sub}
	if mg.Verbose() && (sub == "test" || sub == "build") {
		full = append(full, "-v")
	}
	full = append(full, args...)
	fmt.Printf("Executing: go %s\n", strings.Join(full, " "))
	if err := sh.RunV(mg.GoCmd(), full...); err != nil {
		return fmt.Errorf("go %s: %w", sub, err)
	}
	return nil
}

// shaderSources lists the GLSL stage sources the demo ships with.
func shaderSources() ([]string, error) {
	var sources []string
	for _, pattern := range []string{"*.vert", "*.frag"} {
		matches, err := filepath.Glob(filepath.Join(shaderDir, pattern))
		if err != nil {
			return nil, err
		}
		sources = append(sources, matches...)
	}
	return sources, nil
}

// validateShaders compiles every stage source with glslangValidator, which
// infers the stage from the file extension.
func validateShaders() error {
	sources, err := shaderSources()
	if err != nil {
		return err
	}
	if len(sources) == 0 {
		return fmt.Errorf("no shader sources under %s", shaderDir)
	}
	for _, src := range sources {
		out, err := sh.Output("glslangValidator", src)
		if err != nil {
			return fmt.Errorf("%s: %w\n%s", src, err, out)
		}
		if mg.Verbose() {
			fmt.Println(out)
		}
	}
	fmt.Printf("%d shader sources valid\n", len(sources))
	return nil
}
