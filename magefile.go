//go:build mage

package main

import (
	"os"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const binary = "lexstatcldf"

var Default = Build

// Build compiles the lexstatcldf binary into ./bin
func Build() error {
	mg.Deps(Vet)
	if err := os.MkdirAll("bin", 0755); err != nil {
		return err
	}
	return sh.RunV("go", "build", "-o", "bin/"+binary, "./cmd/"+binary)
}

// Test runs the unit tests
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Vet runs go vet
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Install installs the binary into GOPATH/bin
func Install() error {
	mg.Deps(Test)
	return sh.RunV("go", "install", "./cmd/"+binary)
}

// Clean removes build output
func Clean() error {
	return sh.Rm("bin")
}
