package compiletest

import (
	"testing"

	"github.com/rogpeppe/go-internal/testscript"
)

// RunDir drives every *.txtar archive under dir as a testscript
// scenario, each with the compile/expect-diagnostic/expect-json
// commands registered.
func RunDir(t *testing.T, dir string) {
	testscript.Run(t, testscript.Params{
		Dir:  dir,
		Cmds: Commands(),
	})
}
