//go:build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Deck groups targets that exercise the CLI against local notes.
type Deck mg.Namespace

const sampleNotes = `# Physics

Force = mass times acceleration
Momentum: the product of an object's mass and velocity
Stimulus → Receptor → Control centre → Effector

# Biology

- Mitochondria is the powerhouse of the cell; Ribosomes are the protein factories of the cell; The nucleus is the control center of the cell
- The {{heart}} pumps blood through the {{circulatory system}}
`

// Sample writes notes/sample.md and builds it into deck/built/sample.json.
func (Deck) Sample() error {
	mg.Deps(Init, Build)

	path := filepath.Join("notes", "sample.md")
	if err := os.WriteFile(path, []byte(sampleNotes), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return sh.RunV(binPath(), "build", path, filepath.Join("deck", "built", "sample.json"))
}

// Library batch-builds everything under notes/ and indexes the decks.
func (Deck) Library() error {
	mg.Deps(Init, Build)

	if err := sh.RunV(binPath(), "batch", "notes"); err != nil {
		return err
	}
	return sh.RunV(binPath(), "deck", "store")
}
