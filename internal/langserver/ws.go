package langserver

import (
	"net/http"

	"github.com/gorilla/websocket"
)

// wsMessage is the minimal envelope the browser playground speaks:
// one source blob in, one publishDiagnostics-shaped notification out,
// skipping the editor protocol's open/change/close document
// lifecycle (the playground always sends the full buffer).
type wsMessage struct {
	URI     string `json:"uri"`
	Content string `json:"content"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ServeWS upgrades an HTTP request to a websocket and streams
// textDocument/publishDiagnostics-shaped JSON for every source blob
// the browser playground sends, per SPEC_FULL.md §3's
// github.com/gorilla/websocket wiring.
func ServeWS(w http.ResponseWriter, r *http.Request) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	for {
		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return err
		}
		diagnostics := Diagnose(msg.URI, msg.Content)
		if err := conn.WriteJSON(map[string]interface{}{
			"uri":         msg.URI,
			"diagnostics": diagnostics,
		}); err != nil {
			return err
		}
	}
}
