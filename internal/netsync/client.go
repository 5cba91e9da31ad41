// Package netsync connects the local game world to a room server.
// Server messages queue on an event channel as they arrive; the game
// loop drains them onto the world between frames with Apply, so all
// world mutation stays on the loop's goroutine.
package netsync

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Cruelhelp/NeonVoid/internal/game"
	"github.com/Cruelhelp/NeonVoid/internal/proto"
	"github.com/Cruelhelp/NeonVoid/internal/vec"
)

const (
	writeWait    = 10 * time.Second
	sendBufSize  = 256
	eventBufSize = 512
	chatBacklog  = 100

	// PushInterval is the transform push cadence, 20Hz.
	PushInterval = 50 * time.Millisecond
)

// event is one inbound server message awaiting Apply.
type event struct {
	t    string
	data json.RawMessage
	// moved is set for binary transform frames instead of t/data.
	moved *proto.PlayerMovedMsg
}

// Client is a connection to the room server.
type Client struct {
	log  *zap.Logger
	conn *websocket.Conn

	send   chan []byte
	events chan event
	done   chan struct{}
	once   sync.Once

	mu       sync.Mutex
	userID   string
	username string
	token    string
	roomCode string
	hostID   string
	lobby    []proto.RoomPlayer
	rooms    []proto.RoomInfo
	allReady bool
	chat     []proto.ChatMsg
	lastErr  string

	friends        []string
	friendRequests []proto.FriendRequestMsg
	searchResults  []proto.SearchResult
	statuses       map[string]string
}

// Dial connects to the server's websocket endpoint.
func Dial(url string, log *zap.Logger) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	c := &Client{
		log:    log,
		conn:   conn,
		send:   make(chan []byte, sendBufSize),
		events: make(chan event, eventBufSize),
		done:   make(chan struct{}),
	}
	go c.readPump()
	go c.writePump()
	return c, nil
}

// Close tears the connection down. Safe to call more than once.
func (c *Client) Close() {
	c.once.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

// Done reports connection shutdown.
func (c *Client) Done() <-chan struct{} { return c.done }

func (c *Client) readPump() {
	defer c.Close()
	for {
		msgType, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warn("server connection lost", zap.Error(err))
			}
			return
		}

		var ev event
		if msgType == websocket.BinaryMessage {
			moved, err := proto.DecodeMoved(raw)
			if err != nil {
				continue
			}
			ev = event{moved: moved}
		} else {
			var env proto.InEnvelope
			if err := json.Unmarshal(raw, &env); err != nil {
				c.log.Warn("bad server message", zap.Error(err))
				continue
			}
			ev = event{t: env.T, data: env.D}
		}

		select {
		case c.events <- ev:
		default:
			// The game loop stalled; shed the oldest event.
			select {
			case <-c.events:
			default:
			}
			c.events <- ev
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()
	for {
		select {
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			var err error
			if len(msg) > 0 && msg[0] == 0xFF {
				err = c.conn.WriteMessage(websocket.BinaryMessage, msg[1:])
			} else {
				err = c.conn.WriteMessage(websocket.TextMessage, msg)
			}
			if err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

func (c *Client) sendJSON(msgType string, payload interface{}) {
	data, err := json.Marshal(proto.Envelope{T: msgType, Data: payload})
	if err != nil {
		c.log.Error("marshal", zap.Error(err))
		return
	}
	select {
	case c.send <- data:
	default:
		c.log.Warn("send buffer full, dropping", zap.String("type", msgType))
	}
}

// RegisterUser announces the player's name, with an optional resume
// token from a previous session.
func (c *Client) RegisterUser(username, token string) {
	c.sendJSON(proto.MsgRegisterUser, proto.RegisterUserMsg{Username: username, Token: token})
}

// CreateRoom asks for a fresh room with this client as host.
func (c *Client) CreateRoom(playerName string) {
	c.sendJSON(proto.MsgCreateRoom, proto.CreateRoomMsg{PlayerName: playerName})
}

// JoinRoom joins an existing room by code.
func (c *Client) JoinRoom(code, playerName string) {
	c.sendJSON(proto.MsgJoinRoom, proto.JoinRoomMsg{RoomCode: code, PlayerName: playerName})
}

// LeaveRoom leaves the current room.
func (c *Client) LeaveRoom() {
	c.sendJSON(proto.MsgLeaveRoom, nil)
	c.mu.Lock()
	c.roomCode = ""
	c.lobby = nil
	c.mu.Unlock()
}

// ListRooms refreshes the lobby browser.
func (c *Client) ListRooms() {
	c.sendJSON(proto.MsgListRooms, nil)
}

// Ready sets the lobby ready flag along with the ship choice.
func (c *Client) Ready(ready bool, shipType, color string) {
	c.sendJSON(proto.MsgPlayerReady, proto.PlayerReadyMsg{Ready: ready, ShipType: shipType, Color: color})
}

// StartGame asks the server to start the match. Host only.
func (c *Client) StartGame() {
	c.sendJSON(proto.MsgStartGame, nil)
}

// Respawn asks to come back after a death.
func (c *Client) Respawn() {
	c.sendJSON(proto.MsgRespawn, nil)
}

// Chat sends a room chat line.
func (c *Client) Chat(message string) {
	c.sendJSON(proto.MsgChatMessage, proto.ChatMsg{Message: message})
}

// GlobalChat sends a line to everyone on the server.
func (c *Client) GlobalChat(message string) {
	c.sendJSON(proto.MsgGlobalChat, proto.ChatMsg{Message: message})
}

// PrivateMessage sends a direct message to a user id.
func (c *Client) PrivateMessage(recipientID, message string) {
	c.sendJSON(proto.MsgPrivateMessage, proto.PrivateMsg{RecipientID: recipientID, Message: message})
}

// FriendRequest files a friend request with a user id.
func (c *Client) FriendRequest(userID string) {
	c.sendJSON(proto.MsgFriendRequest, proto.FriendRequestMsg{UserID: userID})
}

// AcceptFriend accepts a pending request from a user id.
func (c *Client) AcceptFriend(senderID string) {
	c.sendJSON(proto.MsgAcceptFriend, proto.AcceptFriendMsg{SenderID: senderID})
}

// BlockUser suppresses private messages from a user id.
func (c *Client) BlockUser(userID string) {
	c.sendJSON(proto.MsgBlockUser, proto.BlockUserMsg{UserID: userID})
}

// SearchUser queries the registry by name fragment.
func (c *Client) SearchUser(query string) {
	c.sendJSON(proto.MsgSearchUser, proto.SearchUserMsg{Query: query})
}

// GetFriends asks for a fresh friends list.
func (c *Client) GetFriends() {
	c.sendJSON(proto.MsgGetFriends, nil)
}

// StatusUpdate publishes a presence status to online friends.
func (c *Client) StatusUpdate(status string) {
	c.sendJSON(proto.MsgStatusUpdate, proto.StatusUpdateMsg{Status: status})
}

// PushState sends the local transform on the binary fast path. The
// game loop calls this on the push ticker while a match runs.
func (c *Client) PushState(w *game.World) {
	p := w.Player()
	if p == nil {
		return
	}
	snap := w.Snapshot()
	u := proto.PlayerUpdateMsg{
		Position: toWire(p.Mesh.Position),
		Rotation: toWire(p.Mesh.Rotation),
		Velocity: toWire(p.Velocity),
		Health:   snap.Health,
		Alive:    snap.Health > 0,
	}
	frame, err := proto.EncodeUpdate(&u)
	if err != nil {
		return
	}
	msg := make([]byte, len(frame)+1)
	msg[0] = 0xFF
	copy(msg[1:], frame)
	select {
	case c.send <- msg:
	default:
	}
}

// BindWorld hooks the world's outbound events to the connection.
func (c *Client) BindWorld(w *game.World) {
	w.SetEvents(game.Events{
		ShotFired: func(position, direction vec.V3, color string) {
			c.sendJSON(proto.MsgPlayerShot, proto.PlayerShotMsg{
				Position:  toWire(position),
				Direction: toWire(direction),
				Color:     color,
			})
		},
		RemoteHit: func(targetID string, damage float64) {
			c.sendJSON(proto.MsgPlayerHit, proto.PlayerHitMsg{
				TargetID: targetID,
				Damage:   damage,
			})
		},
	})
}

// Apply drains queued server events onto the world. Call once per
// frame from the game loop.
func (c *Client) Apply(w *game.World) {
	for {
		select {
		case ev := <-c.events:
			c.applyEvent(w, ev)
		default:
			return
		}
	}
}

func (c *Client) applyEvent(w *game.World, ev event) {
	if ev.moved != nil {
		w.ApplyRemoteState(ev.moved.PlayerID,
			fromWire(ev.moved.Position), fromWire(ev.moved.Rotation),
			ev.moved.Health, ev.moved.Alive)
		return
	}

	switch ev.t {
	case proto.MsgUserRegistered:
		var msg proto.UserRegisteredMsg
		if json.Unmarshal(ev.data, &msg) != nil {
			return
		}
		c.mu.Lock()
		c.userID = msg.UserID
		c.username = msg.Username
		c.token = msg.Token
		c.mu.Unlock()

	case proto.MsgRoomCreated, proto.MsgRoomJoined, proto.MsgPlayerJoined:
		var msg proto.RoomStateMsg
		if json.Unmarshal(ev.data, &msg) != nil {
			return
		}
		c.mu.Lock()
		c.roomCode = msg.RoomCode
		c.hostID = msg.HostID
		c.lobby = msg.Players
		c.mu.Unlock()

	case proto.MsgRoomList:
		var rooms []proto.RoomInfo
		if json.Unmarshal(ev.data, &rooms) != nil {
			return
		}
		c.mu.Lock()
		c.rooms = rooms
		c.mu.Unlock()

	case proto.MsgReadyUpdate:
		var msg proto.ReadyUpdateMsg
		if json.Unmarshal(ev.data, &msg) != nil {
			return
		}
		c.mu.Lock()
		for i := range c.lobby {
			if c.lobby[i].ID == msg.PlayerID {
				c.lobby[i].Ready = msg.Ready
			}
		}
		c.allReady = msg.AllReady
		c.mu.Unlock()

	case proto.MsgGameStarted:
		var msg proto.GameStartedMsg
		if json.Unmarshal(ev.data, &msg) != nil {
			return
		}
		players := make([]game.RemotePlayerInfo, len(msg.Players))
		for i, p := range msg.Players {
			players[i] = game.RemotePlayerInfo{
				ID:       p.ID,
				Name:     p.Name,
				ShipType: p.ShipType,
				Color:    p.Color,
				Position: fromWire(p.Position),
				Rotation: fromWire(p.Rotation),
				Health:   p.Health,
				Alive:    p.Alive,
			}
		}
		w.StartMultiplayerMatch(c.UserID(), players)

	case proto.MsgPlayerMoved:
		var msg proto.PlayerMovedMsg
		if json.Unmarshal(ev.data, &msg) != nil {
			return
		}
		w.ApplyRemoteState(msg.PlayerID,
			fromWire(msg.Position), fromWire(msg.Rotation), msg.Health, msg.Alive)

	case proto.MsgShotRelay:
		var msg proto.PlayerShotMsg
		if json.Unmarshal(ev.data, &msg) != nil {
			return
		}
		w.SpawnRemoteShot(msg.PlayerID, fromWire(msg.Position), fromWire(msg.Direction), msg.Color)

	case proto.MsgPlayerDamaged:
		var msg proto.PlayerDamagedMsg
		if json.Unmarshal(ev.data, &msg) != nil {
			return
		}
		if msg.PlayerID == c.UserID() {
			w.SetPlayerHealth(msg.Health)
		} else {
			w.ApplyRemoteHealth(msg.PlayerID, msg.Health)
		}

	case proto.MsgPlayerKilled:
		var msg proto.PlayerKilledMsg
		if json.Unmarshal(ev.data, &msg) != nil {
			return
		}
		if msg.VictimID == c.UserID() {
			w.SetPlayerHealth(0)
		} else {
			w.MarkRemoteDowned(msg.VictimID)
		}

	case proto.MsgPlayerRespawned:
		var msg proto.PlayerRespawnedMsg
		if json.Unmarshal(ev.data, &msg) != nil {
			return
		}
		if msg.PlayerID == c.UserID() {
			w.RespawnPlayer(fromWire(msg.Position), msg.Health)
		} else {
			w.RespawnRemote(msg.PlayerID, fromWire(msg.Position), msg.Health)
		}

	case proto.MsgPlayerLeft:
		var msg proto.PlayerLeftMsg
		if json.Unmarshal(ev.data, &msg) != nil {
			return
		}
		w.RemoveRemotePlayer(msg.PlayerID)
		c.mu.Lock()
		if msg.NewHostID != "" {
			c.hostID = msg.NewHostID
		}
		kept := c.lobby[:0]
		for _, p := range c.lobby {
			if p.ID != msg.PlayerID {
				kept = append(kept, p)
			}
		}
		c.lobby = kept
		c.mu.Unlock()

	case proto.MsgChatRelay:
		var msg proto.ChatMsg
		if json.Unmarshal(ev.data, &msg) != nil {
			return
		}
		c.appendChat(msg)

	case proto.MsgPrivateRelay:
		var msg proto.PrivateMsg
		if json.Unmarshal(ev.data, &msg) != nil {
			return
		}
		c.appendChat(proto.ChatMsg{
			PlayerID:   msg.SenderID,
			PlayerName: msg.SenderName,
			Message:    msg.Message,
		})

	case proto.MsgFriendRequested:
		var msg proto.FriendRequestMsg
		if json.Unmarshal(ev.data, &msg) != nil {
			return
		}
		c.mu.Lock()
		c.friendRequests = append(c.friendRequests, msg)
		c.mu.Unlock()

	case proto.MsgFriendAccepted:
		var msg proto.FriendAcceptedMsg
		if json.Unmarshal(ev.data, &msg) != nil {
			return
		}
		c.mu.Lock()
		c.friends = append(c.friends, msg.Username)
		c.mu.Unlock()

	case proto.MsgSearchResults:
		var results []proto.SearchResult
		if json.Unmarshal(ev.data, &results) != nil {
			return
		}
		c.mu.Lock()
		c.searchResults = results
		c.mu.Unlock()

	case proto.MsgFriendsList:
		var msg proto.FriendsListMsg
		if json.Unmarshal(ev.data, &msg) != nil {
			return
		}
		c.mu.Lock()
		c.friends = msg.Friends
		c.mu.Unlock()

	case proto.MsgUserStatus:
		var msg proto.UserStatusMsg
		if json.Unmarshal(ev.data, &msg) != nil {
			return
		}
		c.mu.Lock()
		if c.statuses == nil {
			c.statuses = make(map[string]string)
		}
		c.statuses[msg.Username] = msg.Status
		c.mu.Unlock()

	case proto.MsgError:
		var msg proto.ErrorMsg
		if json.Unmarshal(ev.data, &msg) != nil {
			return
		}
		c.mu.Lock()
		c.lastErr = msg.Message
		c.mu.Unlock()
		c.log.Warn("server error", zap.String("message", msg.Message))
	}
}

func (c *Client) appendChat(msg proto.ChatMsg) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.chat = append(c.chat, msg)
	if len(c.chat) > chatBacklog {
		c.chat = c.chat[len(c.chat)-chatBacklog:]
	}
}

// FriendRequests returns pending inbound friend requests.
func (c *Client) FriendRequests() []proto.FriendRequestMsg {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]proto.FriendRequestMsg, len(c.friendRequests))
	copy(out, c.friendRequests)
	return out
}

// Friends returns friend names learned this session.
func (c *Client) Friends() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.friends))
	copy(out, c.friends)
	return out
}

// FriendStatus returns the last presence status seen for a friend.
func (c *Client) FriendStatus(username string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.statuses[username]
}

// SearchResults returns the last user search answer.
func (c *Client) SearchResults() []proto.SearchResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]proto.SearchResult, len(c.searchResults))
	copy(out, c.searchResults)
	return out
}

// UserID returns the id assigned at registration.
func (c *Client) UserID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.userID
}

// Token returns the resume token from the last registration.
func (c *Client) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// RoomCode returns the current room, "" outside one.
func (c *Client) RoomCode() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.roomCode
}

// IsHost reports whether this client hosts its room.
func (c *Client) IsHost() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.userID != "" && c.userID == c.hostID
}

// Lobby returns the current room roster.
func (c *Client) Lobby() []proto.RoomPlayer {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]proto.RoomPlayer, len(c.lobby))
	copy(out, c.lobby)
	return out
}

// AllReady reports the last ready-update's verdict.
func (c *Client) AllReady() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.allReady
}

// Rooms returns the last lobby browser refresh.
func (c *Client) Rooms() []proto.RoomInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]proto.RoomInfo, len(c.rooms))
	copy(out, c.rooms)
	return out
}

// ChatLog returns the accumulated chat lines.
func (c *Client) ChatLog() []proto.ChatMsg {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]proto.ChatMsg, len(c.chat))
	copy(out, c.chat)
	return out
}

// LastError returns and clears the most recent server error.
func (c *Client) LastError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.lastErr
	c.lastErr = ""
	return e
}

func toWire(v vec.V3) proto.Vec3   { return proto.Vec3{X: v.X, Y: v.Y, Z: v.Z} }
func fromWire(v proto.Vec3) vec.V3 { return vec.V3{X: v.X, Y: v.Y, Z: v.Z} }
