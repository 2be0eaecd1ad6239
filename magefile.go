//go:build mage
// +build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

var Default = Build

var (
	buildDir = "bin"
	binName  = "minios"
	mainPkg  = "./cmd/minios"
)

type Dist mg.Namespace

// Builds the shell for the host platform
func Build() error {
	fmt.Println("Building...")
	return sh.RunV("go", "build", "-o", filepath.Join(buildDir, binName), mainPkg)
}

// Runs the test suite with the race detector
func Test() error {
	return sh.RunV("go", "test", "-race", "-count=1", "./...")
}

// Runs go vet over every package
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Builds and starts an interactive shell
func Run() error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(buildDir, binName))
}

// Cross-compiles the shell for linux/arm64
func (Dist) Linux() error {
	env := map[string]string{
		"GOOS":        "linux",
		"GOARCH":      "arm64",
		"CGO_ENABLED": "0",
	}
	return sh.RunWithV(env, "go", "build", "-o", filepath.Join(buildDir, "linux-arm64", binName), mainPkg)
}

// Cleans up the build directory
func Clean() {
	fmt.Println("Cleaning...")
	os.RemoveAll(buildDir)
}
