package main

import (
	"fmt"
	"log"
	"os"

	"github.com/ringlang/ringc/cmd/ringc/commands"
)

const version = "0.1.0"

var commandAliases = map[string]string{
	"b": "build",
	"r": "run",
	"t": "test",
}

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		showUsage()
		return
	}

	cmd := args[0]
	if alias, ok := commandAliases[cmd]; ok {
		cmd = alias
	}

	switch cmd {
	case "--help", "-h", "help":
		showUsage()
	case "--version", "-v", "version":
		fmt.Printf("ringc %s\n", version)
	case "init":
		name := ""
		if len(args) > 1 {
			name = args[1]
		}
		if err := commands.Init(name); err != nil {
			log.Fatalf("ringc init: %v", err)
		}
	case "build":
		root := "."
		if len(args) > 1 {
			root = args[1]
		}
		if err := commands.Build(root); err != nil {
			log.Fatalf("ringc build: %v", err)
		}
	case "run":
		if len(args) < 2 {
			log.Fatal("ringc run: a witness JSON file is required (ringc run [project] <witness.json>)")
		}
		root, witness := ".", args[1]
		if len(args) > 2 {
			root, witness = args[1], args[2]
		}
		if err := commands.Run(root, witness); err != nil {
			log.Fatalf("ringc run: %v", err)
		}
	case "test":
		root := "."
		if len(args) > 1 {
			root = args[1]
		}
		if err := commands.Test(root); err != nil {
			log.Fatalf("ringc test: %v", err)
		}
	case "lsp":
		addr := ""
		if len(args) > 1 && args[1] == "--ws" && len(args) > 2 {
			addr = args[2]
		}
		if err := commands.LSP(addr); err != nil {
			log.Fatalf("ringc lsp: %v", err)
		}
	default:
		fmt.Fprintf(os.Stderr, "ringc: unknown command %q\n\n", cmd)
		showUsage()
		os.Exit(1)
	}
}

func showUsage() {
	fmt.Println("ringc - compiles Ring source to an R1CS circuit/contract/library artifact")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  ringc init [name]            Scaffold a new project             (ringc.json + main.rg)")
	fmt.Println("  ringc build [dir]            Compile the project                (alias: b)")
	fmt.Println("  ringc run [dir] <witness>    Validate a witness against a build (alias: r)")
	fmt.Println("  ringc test [dir]             List the project's #[test] fns     (alias: t)")
	fmt.Println("  ringc lsp [--ws addr]        Start the diagnostics language server")
	fmt.Println()
	fmt.Println("  ringc help                   Show this message")
	fmt.Println("  ringc version                Show the ringc version")
}
