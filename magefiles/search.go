//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Search builds the CLI and runs the configured query without summarizing.
func Search() error {
	mg.Deps(Build)
	return sh.RunV(binPath(), "search")
}

// Digest builds the CLI and runs one full pass, writing the snapshot.
func Digest() error {
	mg.Deps(Build)
	return sh.RunV(binPath())
}

// Show prints the current snapshot.
func Show() error {
	mg.Deps(Build)
	return sh.RunV(binPath(), "show")
}
