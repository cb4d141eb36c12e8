package main

import (
	"fmt"

	"github.com/magefile/mage/sh"
)

// Vet runs go vet across all packages.
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Fmt reports Go files that are not gofmt-clean.
func Fmt() error {
	out, err := sh.Output("gofmt", "-l", "cmd", "internal", "pkg", "magefiles")
	if err != nil {
		return err
	}
	if out != "" {
		return fmt.Errorf("files need gofmt:\n%s", out)
	}
	return nil
}
