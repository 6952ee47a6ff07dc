//go:build mage

// Package main provides build targets for the prophecies bridge using Mage.
//
// Usage:
//
//	mage build     Compile the bridge binary to bin/
//	mage test      Run all tests
//	mage smoke     Build, then run init, import and export in a scratch dir
//	mage lint      Run golangci-lint
//	mage clean     Remove build artifacts
//	mage install   Install bridge to GOPATH/bin
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binGo      = "go"
	binLint    = "golangci-lint"
	binaryName = "bridge"
	binaryDir  = "bin"
	cmdDir     = "./cmd/bridge"
)

// sampleDocument seeds the smoke run with one legacy and one canonical record.
const sampleDocument = `[
  {"id": "Micah 5:2", "category": "Birth", "prophecyText": "Born in Bethlehem - Jesus born in Bethlehem", "status": "fulfilled"},
  {"id": "Isaiah 7:14", "prophecyRef": "Isaiah 7:14", "summary": {"prophecy": "Born of a virgin"}}
]
`

// Build compiles the bridge binary to bin/.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	return sh.RunV(binGo, "build", "-v", "-o", filepath.Join(binaryDir, binaryName), cmdDir)
}

// Test runs all tests.
func Test() error {
	return sh.RunV(binGo, "test", "./...")
}

// Smoke builds the binary and drives it through init, transform, import and
// export against a scratch xlsx workbook.
func Smoke() error {
	mg.Deps(Build)

	dir, err := os.MkdirTemp("", "bridge-smoke-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(dir)

	doc := filepath.Join(dir, "prophecies.json")
	if err := os.WriteFile(doc, []byte(sampleDocument), 0o644); err != nil {
		return err
	}
	bin, err := filepath.Abs(filepath.Join(binaryDir, binaryName))
	if err != nil {
		return err
	}

	global := []string{
		"--config-dir", filepath.Join(dir, "config"),
		"--backend", "xlsx",
		"--workbook", filepath.Join(dir, "prophecies.xlsx"),
		"--document", doc,
	}
	for _, step := range []string{"init", "transform", "import", "export"} {
		fmt.Printf("==> bridge %s\n", step)
		if err := sh.RunV(bin, append(global, step)...); err != nil {
			return fmt.Errorf("bridge %s: %w", step, err)
		}
	}
	return nil
}

// Lint runs golangci-lint.
func Lint() error {
	return sh.RunV(binLint, "run", "./...")
}

// Clean removes build artifacts.
func Clean() error {
	if err := os.RemoveAll(binaryDir); err != nil {
		return err
	}
	return sh.RunV(binGo, "clean")
}

// Install builds and copies the binary to GOPATH/bin.
func Install() error {
	mg.Deps(Build)
	gopath, err := sh.Output(binGo, "env", "GOPATH")
	if err != nil {
		return err
	}
	src := filepath.Join(binaryDir, binaryName)
	dst := filepath.Join(gopath, "bin", binaryName)
	return sh.Copy(dst, src)
}
