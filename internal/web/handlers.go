package web

import (
	"embed"
	"encoding/json"
	"log"
	"net/http"

	"StockPulse/internal/display"
	"StockPulse/internal/metrics"

	"github.com/gorilla/websocket"
)

//go:embed static/index.html
var static embed.FS

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// SetCORS sets CORS headers for REST endpoints.
func SetCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

// RegisterRoutes registers all HTTP routes on the provided mux.
func RegisterRoutes(mux *http.ServeMux, hub *Hub, board *display.Board, m *metrics.Metrics) {
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		page, err := static.ReadFile("static/index.html")
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(page)
	})

	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("[WARN] ws upgrade: %v", err)
			return
		}
		hub.HandleWSRequest(conn)
	})

	mux.HandleFunc("/api/board", func(w http.ResponseWriter, r *http.Request) {
		SetCORS(w)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(board.Snapshot()); err != nil {
			log.Printf("[WARN] encode board: %v", err)
		}
	})

	if m != nil {
		mux.Handle("/metrics", m.Handler())
	}
}
