package server

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Cruelhelp/NeonVoid/internal/proto"
)

const (
	maxConnsPerIP = 5
	maxTotalConns = 1000

	lobbySweepInterval   = 5 * time.Minute
	offlineSweepInterval = 10 * time.Minute
)

// Hub manages all connected clients and routes them to rooms
type Hub struct {
	mu         sync.RWMutex
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	rooms      *RoomManager
	users      *UserStore
	auth       *Auth
	log        *zap.Logger
	// Connection limiting (mutex-protected, accessed from HTTP handlers)
	connMu     sync.Mutex
	ipConns    map[string]int
	totalConns int
	ipLimit    int
	connLimit  int
	// Registered users currently connected: userID -> *Client
	onlineMu    sync.RWMutex
	onlineUsers map[string]*Client
}

// NewHub creates a new Hub backed by the given stores.
func NewHub(users *UserStore, auth *Auth, log *zap.Logger) *Hub {
	return &Hub{
		clients:     make(map[*Client]bool),
		register:    make(chan *Client, 64),
		unregister:  make(chan *Client, 64),
		rooms:       NewRoomManager(),
		users:       users,
		auth:        auth,
		log:         log,
		ipConns:     make(map[string]int),
		onlineUsers: make(map[string]*Client),
		ipLimit:     maxConnsPerIP,
		connLimit:   maxTotalConns,
	}
}

// SetConnLimits overrides the default connection caps. Non-positive
// values keep the defaults.
func (h *Hub) SetConnLimits(perIP, total int) {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	if perIP > 0 {
		h.ipLimit = perIP
	}
	if total > 0 {
		h.connLimit = total
	}
}

func (h *Hub) CanAccept(ip string) bool {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	if h.totalConns >= h.connLimit {
		return false
	}
	if h.ipConns[ip] >= h.ipLimit {
		return false
	}
	return true
}

func (h *Hub) TrackConnect(ip string) {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	h.ipConns[ip]++
	h.totalConns++
}

func (h *Hub) TrackDisconnect(ip string) {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	h.ipConns[ip]--
	if h.ipConns[ip] <= 0 {
		delete(h.ipConns, ip)
	}
	h.totalConns--
}

// Run processes register/unregister events and the periodic cleanup
// sweeps until stop is closed.
func (h *Hub) Run(stop <-chan struct{}) {
	lobbyTicker := time.NewTicker(lobbySweepInterval)
	offlineTicker := time.NewTicker(offlineSweepInterval)
	defer lobbyTicker.Stop()
	defer offlineTicker.Stop()

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			h.dropClient(client)

		case <-lobbyTicker.C:
			if removed := h.rooms.SweepIdle(); len(removed) > 0 {
				h.log.Info("swept idle lobby rooms", zap.Strings("codes", removed))
			}

		case <-offlineTicker.C:
			if removed := h.users.SweepOffline(); len(removed) > 0 {
				h.log.Info("swept offline users", zap.Strings("usernames", removed))
			}

		case <-stop:
			return
		}
	}
}

// dropClient cleans up a disconnected client's room membership and
// online status.
func (h *Hub) dropClient(c *Client) {
	if c.roomCode != "" {
		h.leaveRoom(c)
	}
	if c.userID != "" {
		h.SetOffline(c.userID)
		h.users.SetOffline(c.username)
	}
}

// leaveRoom removes the client from its room, reassigning the host or
// deleting the room when it empties.
func (h *Hub) leaveRoom(c *Client) {
	room := h.rooms.Get(c.roomCode)
	if room == nil {
		c.roomCode = ""
		return
	}

	remaining, newHost := room.RemovePlayer(c.userID)
	if remaining == 0 {
		h.rooms.Remove(room.Code)
		h.log.Info("room closed", zap.String("code", room.Code))
	} else {
		h.broadcastToRoom(room, "", proto.MsgPlayerLeft, proto.PlayerLeftMsg{
			PlayerID:  c.userID,
			NewHostID: newHost,
		})
	}
	c.roomCode = ""
}

// broadcastToRoom sends an envelope to every client in the room,
// skipping exceptID when non-empty.
func (h *Hub) broadcastToRoom(room *Room, exceptID, msgType string, payload interface{}) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		if client.roomCode != room.Code {
			continue
		}
		if exceptID != "" && client.userID == exceptID {
			continue
		}
		client.SendJSON(msgType, payload)
	}
}

// broadcastRawToRoom sends a pre-encoded binary frame to every client
// in the room except the sender. Used for the high-rate movement
// relay.
func (h *Hub) broadcastRawToRoom(room *Room, exceptID string, frame []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		if client.roomCode != room.Code {
			continue
		}
		if client.userID == exceptID {
			continue
		}
		client.SendBinary(frame)
	}
}

// broadcastAll sends an envelope to every connected client.
func (h *Hub) broadcastAll(msgType string, payload interface{}) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		client.SendJSON(msgType, payload)
	}
}

// SetOnline marks a registered user's live connection.
func (h *Hub) SetOnline(userID string, client *Client) {
	h.onlineMu.Lock()
	defer h.onlineMu.Unlock()
	h.onlineUsers[userID] = client
}

// SetOffline removes a registered user from online tracking.
func (h *Hub) SetOffline(userID string) {
	h.onlineMu.Lock()
	defer h.onlineMu.Unlock()
	delete(h.onlineUsers, userID)
}

// GetOnlineClient returns the live connection for a user, nil when
// offline.
func (h *Hub) GetOnlineClient(userID string) *Client {
	h.onlineMu.RLock()
	defer h.onlineMu.RUnlock()
	return h.onlineUsers[userID]
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// TotalConns returns the tracked connection count
func (h *Hub) TotalConns() int {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	return h.totalConns
}
