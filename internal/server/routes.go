package server

import (
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/gorilla/websocket"
	qrcode "github.com/skip2/go-qrcode"
	"go.uber.org/zap"
)

var roomCodeRe = regexp.MustCompile(`^[0-9A-Z]{6}$`)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true // Non-browser clients don't send Origin
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return u.Host == r.Host
	},
}

func extractIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// SetupRoutes configures HTTP routes
func SetupRoutes(hub *Hub, log *zap.Logger, joinBaseURL string) *http.ServeMux {
	mux := http.NewServeMux()

	// WebSocket endpoint
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		ip := extractIP(r)
		if !hub.CanAccept(ip) {
			http.Error(w, "too many connections", http.StatusServiceUnavailable)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn("upgrade error", zap.Error(err))
			return
		}

		hub.TrackConnect(ip)

		client := NewClient(hub, conn, ip)
		hub.register <- client

		go client.WritePump()
		go client.ReadPump()
	})

	// QR join links: /qr/<ROOMCODE> renders a PNG pointing a second
	// device at the room.
	mux.HandleFunc("/qr/", func(w http.ResponseWriter, r *http.Request) {
		code := strings.ToUpper(strings.TrimPrefix(r.URL.Path, "/qr/"))
		if !roomCodeRe.MatchString(code) {
			http.NotFound(w, r)
			return
		}
		if hub.rooms.Get(code) == nil {
			http.NotFound(w, r)
			return
		}
		png, err := qrcode.Encode(joinBaseURL+"?room="+code, qrcode.Medium, 256)
		if err != nil {
			log.Error("qr encode", zap.Error(err))
			http.Error(w, "qr generation failed", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "no-cache")
		w.Write(png)
	})

	// Liveness probe with a connection count for dashboards.
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok\n"))
	})

	return mux
}
