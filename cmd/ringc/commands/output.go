package commands

import (
	"os"

	"github.com/mattn/go-isatty"
)

// stderrIsTTY gates ANSI caret/color output to interactive terminals,
// matching the domain-stack wiring of github.com/mattn/go-isatty
// (SPEC_FULL.md §3) and the teacher's plain-Printf progress style
// otherwise (SPEC_FULL.md §2.2).
var stderrIsTTY = isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())

const ansiRed = "\x1b[31m"
const ansiReset = "\x1b[0m"

func colorize(s string) string {
	if !stderrIsTTY {
		return s
	}
	return ansiRed + s + ansiReset
}
