//go:build mage

package main

import (
	"fmt"
	"os"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Default target - build the binary
var Default = Build

const binDir = "bin"

// Build builds the policysim and demo binaries
func Build() error {
	if err := os.MkdirAll(binDir, 0755); err != nil {
		return err
	}
	fmt.Println("🔨 Building policysim...")
	if err := sh.RunV("go", "build", "-o", binDir+"/policysim", "./cmd/policysim"); err != nil {
		return fmt.Errorf("build policysim failed: %w", err)
	}
	if err := sh.RunV("go", "build", "-o", binDir+"/demo", "./cmd/demo"); err != nil {
		return fmt.Errorf("build demo failed: %w", err)
	}
	return nil
}

// Test runs all tests with the race detector
func Test() error {
	return sh.RunV("go", "test", "-race", "./...")
}

// Vet runs go vet
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// QA runs vet then tests
func QA() {
	mg.SerialDeps(Vet, Test)
}

// Run builds and runs a default simulation
func Run() error {
	mg.Deps(Build)
	return sh.RunV(binDir+"/policysim", "run")
}

// Clean removes build artifacts
func Clean() error {
	fmt.Println("🧹 Cleaning...")
	return sh.Rm(binDir)
}
