package server

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Cruelhelp/NeonVoid/internal/proto"
)

const (
	writeWait         = 10 * time.Second
	pongWait          = 60 * time.Second
	pingPeriod        = (pongWait * 9) / 10
	maxMessageSize    = 4096
	sendBufSize       = 256
	maxMessagesPerSec = 50
	maxNameLen        = 16
	maxChatLen        = 200
)

// Client represents a WebSocket connection
type Client struct {
	hub        *Hub
	conn       *websocket.Conn
	send       chan []byte
	remoteAddr string
	msgCount   int
	msgResetAt time.Time
	// Identity, set by register-user
	userID   string
	username string
	// Current room, "" while in the menu
	roomCode string
}

// NewClient creates a new Client
func NewClient(hub *Hub, conn *websocket.Conn, remoteAddr string) *Client {
	return &Client{
		hub:        hub,
		conn:       conn,
		send:       make(chan []byte, sendBufSize),
		remoteAddr: remoteAddr,
	}
}

// ReadPump reads messages from the WebSocket connection
func (c *Client) ReadPump() {
	defer func() {
		c.hub.TrackDisconnect(c.remoteAddr)
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		msgType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.log.Warn("ws error", zap.Error(err))
			}
			break
		}

		// Rate limiting
		now := time.Now()
		if now.After(c.msgResetAt) {
			c.msgCount = 0
			c.msgResetAt = now.Add(time.Second)
		}
		c.msgCount++
		if c.msgCount > maxMessagesPerSec {
			c.hub.log.Warn("rate limit exceeded, disconnecting", zap.String("addr", c.remoteAddr))
			break
		}

		// Binary frames carry the msgpack transform push
		if msgType == websocket.BinaryMessage {
			c.handleBinaryUpdate(message)
		} else {
			c.handleMessage(message)
		}
	}
}

// WritePump writes messages to the WebSocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			// Check for binary marker (0xFF prefix from SendBinary)
			var err error
			if len(message) > 0 && message[0] == 0xFF {
				err = c.conn.WriteMessage(websocket.BinaryMessage, message[1:])
			} else {
				err = c.conn.WriteMessage(websocket.TextMessage, message)
			}
			if err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendJSON wraps a payload in the type envelope and queues it.
func (c *Client) SendJSON(msgType string, payload interface{}) {
	data, err := json.Marshal(proto.Envelope{T: msgType, Data: payload})
	if err != nil {
		c.hub.log.Error("marshal error", zap.Error(err))
		return
	}
	c.SendRaw(data)
}

// SendRaw sends pre-marshaled bytes as a text message to the client
func (c *Client) SendRaw(data []byte) {
	defer func() { recover() }()
	select {
	case c.send <- data:
	default:
		// Client too slow, drop message
	}
}

// SendBinary sends pre-marshaled bytes as a binary WebSocket message
// Prefixes with 0xFF marker byte so WritePump can distinguish from text
func (c *Client) SendBinary(data []byte) {
	defer func() { recover() }()
	msg := make([]byte, len(data)+1)
	msg[0] = 0xFF // binary marker
	copy(msg[1:], data)
	select {
	case c.send <- msg:
	default:
	}
}

func (c *Client) sendError(text string) {
	c.SendJSON(proto.MsgError, proto.ErrorMsg{Message: text})
}

// handleMessage routes incoming messages (single-pass decode via InEnvelope)
func (c *Client) handleMessage(raw []byte) {
	var env proto.InEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		c.hub.log.Warn("unmarshal error", zap.Error(err))
		return
	}

	switch env.T {
	case proto.MsgRegisterUser:
		c.handleRegisterUser(env.D)
	case proto.MsgCreateRoom:
		c.handleCreateRoom(env.D)
	case proto.MsgJoinRoom:
		c.handleJoinRoom(env.D)
	case proto.MsgLeaveRoom:
		c.handleLeaveRoom()
	case proto.MsgListRooms:
		c.handleListRooms()
	case proto.MsgPlayerReady:
		c.handlePlayerReady(env.D)
	case proto.MsgStartGame:
		c.handleStartGame()
	case proto.MsgPlayerUpdate:
		c.handlePlayerUpdate(env.D)
	case proto.MsgPlayerShot:
		c.handlePlayerShot(env.D)
	case proto.MsgPlayerHit:
		c.handlePlayerHit(env.D)
	case proto.MsgRespawn:
		c.handleRespawn()
	case proto.MsgChatMessage:
		c.handleChatMessage(env.D)
	case proto.MsgGlobalChat:
		c.handleGlobalChat(env.D)
	case proto.MsgPrivateMessage:
		c.handlePrivateMessage(env.D)
	case proto.MsgFriendRequest:
		c.handleFriendRequest(env.D)
	case proto.MsgAcceptFriend:
		c.handleAcceptFriend(env.D)
	case proto.MsgSearchUser:
		c.handleSearchUser(env.D)
	case proto.MsgBlockUser:
		c.handleBlockUser(env.D)
	case proto.MsgGetFriends:
		c.handleGetFriends()
	case proto.MsgStatusUpdate:
		c.handleStatusUpdate(env.D)
	}
}

func cleanName(name, fallback string) string {
	if name == "" {
		name = fallback
	}
	if len(name) > maxNameLen {
		name = name[:maxNameLen]
	}
	return name
}

func (c *Client) handleRegisterUser(data json.RawMessage) {
	var msg proto.RegisterUserMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}

	// Resume tokens short-circuit the name lookup.
	if msg.Token != "" {
		if id, name, err := c.hub.auth.ValidateToken(msg.Token); err == nil {
			c.adoptIdentity(id, name, msg.Token)
			return
		}
	}

	name := cleanName(msg.Username, "Pilot")
	id, _, err := c.hub.users.Register(uuid.NewString(), name)
	if err != nil {
		c.hub.log.Error("register user", zap.Error(err))
		c.sendError("Registration failed")
		return
	}
	token, err := c.hub.auth.IssueToken(id, name)
	if err != nil {
		c.hub.log.Error("issue token", zap.Error(err))
		token = ""
	}
	c.adoptIdentity(id, c.hub.users.Username(id), token)
}

func (c *Client) adoptIdentity(id, name, token string) {
	c.userID = id
	c.username = name
	c.hub.SetOnline(id, c)
	c.hub.users.touch(id, name)

	friends, err := c.hub.users.Friends(id)
	if err != nil {
		c.hub.log.Error("list friends", zap.Error(err))
	}
	stats, err := c.hub.users.Stats(id)
	if err != nil {
		c.hub.log.Error("load stats", zap.Error(err))
	}
	c.SendJSON(proto.MsgUserRegistered, proto.UserRegisteredMsg{
		UserID:   id,
		Username: name,
		Token:    token,
		Friends:  friends,
		Stats:    stats,
	})
}

func (c *Client) requireUser() bool {
	if c.userID == "" {
		c.sendError("Register a username first")
		return false
	}
	return true
}

func (c *Client) handleCreateRoom(data json.RawMessage) {
	if !c.requireUser() {
		return
	}
	var msg proto.CreateRoomMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	if c.roomCode != "" {
		c.hub.leaveRoom(c)
	}

	name := cleanName(msg.PlayerName, c.username)
	room := c.hub.rooms.Create(c.userID, name)
	c.roomCode = room.Code

	c.SendJSON(proto.MsgRoomCreated, proto.RoomStateMsg{
		RoomCode: room.Code,
		PlayerID: c.userID,
		HostID:   c.userID,
		Players:  room.Players(),
	})
	c.hub.log.Info("room created",
		zap.String("code", room.Code), zap.String("host", name))
}

func (c *Client) handleJoinRoom(data json.RawMessage) {
	if !c.requireUser() {
		return
	}
	var msg proto.JoinRoomMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}

	room := c.hub.rooms.Get(msg.RoomCode)
	if room == nil {
		c.sendError(ErrRoomNotFound.Error())
		return
	}
	name := cleanName(msg.PlayerName, c.username)
	if err := room.AddPlayer(c.userID, name); err != nil {
		c.sendError(err.Error())
		return
	}
	if c.roomCode != "" && c.roomCode != room.Code {
		prev := c.roomCode
		c.roomCode = ""
		if prevRoom := c.hub.rooms.Get(prev); prevRoom != nil {
			prevRoom.RemovePlayer(c.userID)
		}
	}
	c.roomCode = room.Code

	c.SendJSON(proto.MsgRoomJoined, proto.RoomStateMsg{
		RoomCode: room.Code,
		PlayerID: c.userID,
		HostID:   room.HostID(),
		Players:  room.Players(),
	})
	c.hub.broadcastToRoom(room, c.userID, proto.MsgPlayerJoined, proto.RoomStateMsg{
		RoomCode: room.Code,
		HostID:   room.HostID(),
		Players:  room.Players(),
	})
}

func (c *Client) handleLeaveRoom() {
	if c.roomCode == "" {
		return
	}
	c.hub.leaveRoom(c)
}

func (c *Client) handleListRooms() {
	c.SendJSON(proto.MsgRoomList, c.hub.rooms.List())
}

func (c *Client) handlePlayerReady(data json.RawMessage) {
	room := c.currentRoom()
	if room == nil {
		return
	}
	var msg proto.PlayerReadyMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	ok, allReady := room.SetReady(c.userID, msg.Ready, msg.ShipType, msg.Color)
	if !ok {
		return
	}
	c.hub.broadcastToRoom(room, "", proto.MsgReadyUpdate, proto.ReadyUpdateMsg{
		PlayerID: c.userID,
		Ready:    msg.Ready,
		AllReady: allReady,
	})
}

func (c *Client) handleStartGame() {
	room := c.currentRoom()
	if room == nil {
		return
	}
	started, err := room.Start(c.userID)
	if err != nil {
		c.sendError(err.Error())
		return
	}
	c.hub.broadcastToRoom(room, "", proto.MsgGameStarted, started)
	c.hub.log.Info("game started",
		zap.String("code", room.Code), zap.Int("players", room.PlayerCount()))
}

// handleBinaryUpdate is the msgpack fast path for the 20Hz transform
// push. The relay goes back out as binary too.
func (c *Client) handleBinaryUpdate(raw []byte) {
	room := c.currentRoom()
	if room == nil {
		return
	}
	u, err := proto.DecodeUpdate(raw)
	if err != nil {
		return
	}
	if !room.UpdatePlayer(c.userID, u) {
		return
	}
	frame, err := proto.EncodeMoved(&proto.PlayerMovedMsg{
		PlayerID: c.userID,
		Position: u.Position,
		Rotation: u.Rotation,
		Velocity: u.Velocity,
		Health:   u.Health,
		Alive:    u.Alive,
	})
	if err != nil {
		return
	}
	c.hub.broadcastRawToRoom(room, c.userID, frame)
}

func (c *Client) handlePlayerUpdate(data json.RawMessage) {
	room := c.currentRoom()
	if room == nil {
		return
	}
	var u proto.PlayerUpdateMsg
	if err := json.Unmarshal(data, &u); err != nil {
		return
	}
	if !room.UpdatePlayer(c.userID, &u) {
		return
	}
	c.hub.broadcastToRoom(room, c.userID, proto.MsgPlayerMoved, proto.PlayerMovedMsg{
		PlayerID: c.userID,
		Position: u.Position,
		Rotation: u.Rotation,
		Velocity: u.Velocity,
		Health:   u.Health,
		Alive:    u.Alive,
	})
}

func (c *Client) handlePlayerShot(data json.RawMessage) {
	room := c.currentRoom()
	if room == nil || room.State() != StatePlaying {
		return
	}
	var msg proto.PlayerShotMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	msg.PlayerID = c.userID
	c.hub.broadcastToRoom(room, c.userID, proto.MsgShotRelay, msg)
}

func (c *Client) handlePlayerHit(data json.RawMessage) {
	room := c.currentRoom()
	if room == nil {
		return
	}
	var msg proto.PlayerHitMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	msg.ShooterID = c.userID

	res := room.ApplyHit(msg.TargetID, msg.ShooterID, msg.Damage)
	if !res.Applied {
		return
	}
	if res.Killed {
		if err := c.hub.users.RecordKill(msg.ShooterID, msg.TargetID); err != nil {
			c.hub.log.Error("record kill", zap.Error(err))
		}
		c.hub.broadcastToRoom(room, "", proto.MsgPlayerKilled, proto.PlayerKilledMsg{
			VictimID:   msg.TargetID,
			VictimName: res.VictimName,
			KillerID:   msg.ShooterID,
			KillerName: res.KillerName,
		})
		return
	}
	c.hub.broadcastToRoom(room, "", proto.MsgPlayerDamaged, proto.PlayerDamagedMsg{
		PlayerID:  msg.TargetID,
		Health:    res.Health,
		Damage:    msg.Damage,
		ShooterID: msg.ShooterID,
	})
}

func (c *Client) handleRespawn() {
	room := c.currentRoom()
	if room == nil {
		return
	}
	respawned, ok := c.hub.rooms.Respawn(room, c.userID)
	if !ok {
		return
	}
	c.hub.broadcastToRoom(room, "", proto.MsgPlayerRespawned, respawned)
}

func cleanChat(text string) string {
	if len(text) > maxChatLen {
		text = text[:maxChatLen]
	}
	return text
}

func (c *Client) handleChatMessage(data json.RawMessage) {
	room := c.currentRoom()
	if room == nil {
		return
	}
	var msg proto.ChatMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	c.hub.broadcastToRoom(room, "", proto.MsgChatRelay, proto.ChatMsg{
		PlayerID:   c.userID,
		PlayerName: c.username,
		Message:    cleanChat(msg.Message),
	})
}

func (c *Client) handleGlobalChat(data json.RawMessage) {
	if !c.requireUser() {
		return
	}
	var msg proto.ChatMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	c.hub.users.Touch(c.username)
	c.hub.broadcastAll(proto.MsgChatRelay, proto.ChatMsg{
		PlayerID:   c.userID,
		PlayerName: c.username,
		Message:    cleanChat(msg.Message),
	})
}

func (c *Client) handlePrivateMessage(data json.RawMessage) {
	if !c.requireUser() {
		return
	}
	var msg proto.PrivateMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	recipient := c.hub.GetOnlineClient(msg.RecipientID)
	if recipient == nil {
		c.sendError("User is offline or not found")
		return
	}
	// Blocked senders get the same answer as unknown users.
	if c.hub.users.IsBlocked(msg.RecipientID, c.userID) {
		c.sendError("User is offline or not found")
		return
	}
	relay := proto.PrivateMsg{
		SenderID:    c.userID,
		SenderName:  c.username,
		RecipientID: msg.RecipientID,
		Message:     cleanChat(msg.Message),
	}
	// Both ends see the message so the sender's log stays in sync.
	recipient.SendJSON(proto.MsgPrivateRelay, relay)
	c.SendJSON(proto.MsgPrivateRelay, relay)
}

func (c *Client) handleFriendRequest(data json.RawMessage) {
	if !c.requireUser() {
		return
	}
	var msg proto.FriendRequestMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	if msg.UserID == c.userID {
		return
	}
	if c.hub.users.Username(msg.UserID) == "" {
		c.sendError("User is offline or not found")
		return
	}
	if err := c.hub.users.RequestFriend(c.userID, msg.UserID); err != nil {
		c.sendError(err.Error())
		return
	}
	if target := c.hub.GetOnlineClient(msg.UserID); target != nil {
		target.SendJSON(proto.MsgFriendRequested, proto.FriendRequestMsg{
			UserID:     msg.UserID,
			SenderID:   c.userID,
			SenderName: c.username,
		})
	}
}

func (c *Client) handleAcceptFriend(data json.RawMessage) {
	if !c.requireUser() {
		return
	}
	var msg proto.AcceptFriendMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	if err := c.hub.users.AcceptFriend(msg.SenderID, c.userID); err != nil {
		c.sendError(err.Error())
		return
	}
	c.SendJSON(proto.MsgFriendAccepted, proto.FriendAcceptedMsg{
		UserID:   msg.SenderID,
		Username: c.hub.users.Username(msg.SenderID),
	})
	if sender := c.hub.GetOnlineClient(msg.SenderID); sender != nil {
		sender.SendJSON(proto.MsgFriendAccepted, proto.FriendAcceptedMsg{
			UserID:   c.userID,
			Username: c.username,
		})
	}
}

func (c *Client) handleSearchUser(data json.RawMessage) {
	var msg proto.SearchUserMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	if msg.Query == "" {
		return
	}
	results, err := c.hub.users.Search(msg.Query)
	if err != nil {
		c.hub.log.Error("search users", zap.Error(err))
		return
	}
	c.SendJSON(proto.MsgSearchResults, results)
}

func (c *Client) handleBlockUser(data json.RawMessage) {
	if !c.requireUser() {
		return
	}
	var msg proto.BlockUserMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	if msg.UserID == "" || msg.UserID == c.userID {
		return
	}
	if err := c.hub.users.Block(c.userID, msg.UserID); err != nil {
		c.hub.log.Error("block user", zap.Error(err))
	}
}

func (c *Client) handleGetFriends() {
	if !c.requireUser() {
		return
	}
	friends, err := c.hub.users.Friends(c.userID)
	if err != nil {
		c.hub.log.Error("list friends", zap.Error(err))
		return
	}
	c.SendJSON(proto.MsgFriendsList, proto.FriendsListMsg{Friends: friends})
}

// handleStatusUpdate stores the sender's presence status and relays it
// to friends that are currently connected.
func (c *Client) handleStatusUpdate(data json.RawMessage) {
	if !c.requireUser() {
		return
	}
	var msg proto.StatusUpdateMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	status := cleanChat(msg.Status)
	c.hub.users.SetStatus(c.username, status)

	ids, err := c.hub.users.FriendIDs(c.userID)
	if err != nil {
		c.hub.log.Error("list friend ids", zap.Error(err))
		return
	}
	for _, id := range ids {
		if friend := c.hub.GetOnlineClient(id); friend != nil {
			friend.SendJSON(proto.MsgUserStatus, proto.UserStatusMsg{
				UserID:   c.userID,
				Username: c.username,
				Status:   status,
			})
		}
	}
}

func (c *Client) currentRoom() *Room {
	if c.roomCode == "" {
		return nil
	}
	return c.hub.rooms.Get(c.roomCode)
}
