//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Renders the title screen using panelpop.toml.
func (Run) Demo() error {
	mg.Deps(Build.Binary)
	fmt.Println("Run panelpop...")
	if _, err := executeCmd("bin/panelpop", withArgs("panelpop.toml"), withStream()); err != nil {
		return err
	}
	return nil
}
