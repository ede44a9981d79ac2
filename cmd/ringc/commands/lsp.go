package commands

import (
	"fmt"
	"net/http"
	"os"

	"github.com/ringlang/ringc/internal/langserver"
)

// LSP starts the diagnostics-only language server. With wsAddr empty
// it speaks stdio (editor integration); otherwise it serves the
// websocket transport at wsAddr (browser playground), per
// SPEC_FULL.md §2.4/§3.
func LSP(wsAddr string) error {
	if wsAddr == "" {
		return langserver.NewStdioServer(os.Stdin, os.Stdout).Serve()
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/lsp", func(w http.ResponseWriter, r *http.Request) {
		if err := langserver.ServeWS(w, r); err != nil {
			fmt.Fprintf(os.Stderr, "langserver: %v\n", err)
		}
	})
	fmt.Printf("ringc lsp listening on ws://%s/lsp\n", wsAddr)
	return http.ListenAndServe(wsAddr, mux)
}
