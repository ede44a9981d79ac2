package commands

import (
	"fmt"
	"path/filepath"

	"github.com/ringlang/ringc/internal/manifest"
)

// Init scaffolds a new project directory named name, with a starter
// ringc.json and main.rg, grounded on the teacher's InitCommand.
func Init(name string) error {
	if name == "" {
		name = "example.com/ringc-project"
	}
	dir, err := filepath.Abs(filepath.Base(name))
	if err != nil {
		return err
	}
	if err := manifest.Init(dir, name); err != nil {
		return err
	}
	fmt.Printf("Initialized %s\n\nNext steps:\n  cd %s\n  ringc build\n", dir, filepath.Base(name))
	return nil
}
