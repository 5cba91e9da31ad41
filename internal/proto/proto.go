// Package proto defines the wire protocol shared by the room server
// and the sync client: a JSON envelope with a type tag plus typed
// payloads, and a compact msgpack form for the 20Hz transform push.
package proto

import (
	"encoding/json"

	"github.com/vmihailenco/msgpack/v5"
)

// Client -> Server message types
const (
	MsgRegisterUser   = "register-user"
	MsgCreateRoom     = "create-room"
	MsgJoinRoom       = "join-room"
	MsgLeaveRoom      = "leave-room"
	MsgListRooms      = "get-rooms"
	MsgPlayerReady    = "player-ready"
	MsgStartGame      = "start-game"
	MsgPlayerUpdate   = "player-update"
	MsgPlayerShot     = "player-shot"
	MsgPlayerHit      = "player-hit"
	MsgRespawn        = "respawn"
	MsgChatMessage    = "chat-message"
	MsgGlobalChat     = "global-chat"
	MsgPrivateMessage = "private-message"
	MsgFriendRequest  = "friend-request"
	MsgAcceptFriend   = "accept-friend"
	MsgSearchUser     = "search-user"
	MsgBlockUser      = "block-user"
	MsgGetFriends     = "get-friends"
	MsgStatusUpdate   = "status-update"
)

// Server -> Client message types
const (
	MsgUserRegistered   = "user-registered"
	MsgRoomCreated      = "room-created"
	MsgRoomJoined       = "room-joined"
	MsgRoomList         = "room-list"
	MsgPlayerJoined     = "player-joined"
	MsgPlayerLeft       = "player-left"
	MsgReadyUpdate      = "player-ready-update"
	MsgGameStarted      = "game-started"
	MsgPlayerMoved      = "player-moved"
	MsgShotRelay        = "player-shot"
	MsgPlayerDamaged    = "player-damaged"
	MsgPlayerKilled     = "player-killed"
	MsgPlayerRespawned  = "player-respawned"
	MsgChatRelay        = "chat-message"
	MsgPrivateRelay     = "private-message"
	MsgFriendRequested  = "friend-request"
	MsgFriendAccepted   = "friend-accepted"
	MsgSearchResults    = "search-results"
	MsgFriendsList      = "friends-list"
	MsgUserStatus       = "user-status"
	MsgError            = "error"
)

// Envelope wraps all outgoing messages with a type field
type Envelope struct {
	T    string      `json:"t"`
	Data interface{} `json:"d,omitempty"`
}

// InEnvelope is used for incoming messages — json.RawMessage avoids double-unmarshal
type InEnvelope struct {
	T string          `json:"t"`
	D json.RawMessage `json:"d,omitempty"`
}

// Vec3 is a wire-format vector.
type Vec3 struct {
	X float64 `json:"x" msgpack:"x"`
	Y float64 `json:"y" msgpack:"y"`
	Z float64 `json:"z" msgpack:"z"`
}

// RegisterUserMsg registers a username with the social layer.
type RegisterUserMsg struct {
	Username string `json:"username"`
	Token    string `json:"token,omitempty"` // resume token from a prior session
}

// UserRegisteredMsg confirms registration.
type UserRegisteredMsg struct {
	UserID   string    `json:"userId"`
	Username string    `json:"username"`
	Token    string    `json:"token"`
	Friends  []string  `json:"friends"`
	Stats    UserStats `json:"stats"`
}

// UserStats is the per-user lifetime tally.
type UserStats struct {
	Kills  int `json:"kills"`
	Deaths int `json:"deaths"`
	Wins   int `json:"wins"`
	Games  int `json:"games"`
}

// CreateRoomMsg asks for a fresh room.
type CreateRoomMsg struct {
	PlayerName string `json:"playerName"`
}

// JoinRoomMsg asks to join by code.
type JoinRoomMsg struct {
	RoomCode   string `json:"roomCode"`
	PlayerName string `json:"playerName"`
}

// RoomPlayer is one room member as the server sees it.
type RoomPlayer struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Ready    bool    `json:"ready"`
	IsHost   bool    `json:"isHost"`
	ShipType string  `json:"shipType"`
	Color    string  `json:"color"`
	Position Vec3    `json:"position"`
	Rotation Vec3    `json:"rotation"`
	Health   float64 `json:"health"`
	Alive    bool    `json:"alive"`
	Score    int     `json:"score"`
	Kills    int     `json:"kills"`
	Deaths   int     `json:"deaths"`
}

// RoomStateMsg answers create-room and join-room, and is broadcast on
// membership changes.
type RoomStateMsg struct {
	RoomCode string       `json:"roomCode"`
	PlayerID string       `json:"playerId"`
	HostID   string       `json:"hostId"`
	Players  []RoomPlayer `json:"players"`
}

// RoomInfo is one entry in the lobby browser.
type RoomInfo struct {
	RoomCode string `json:"roomCode"`
	HostName string `json:"hostName"`
	Players  int    `json:"players"`
	MaxSize  int    `json:"maxPlayers"`
}

// PlayerReadyMsg toggles the lobby ready flag with the ship choice.
type PlayerReadyMsg struct {
	Ready    bool   `json:"ready"`
	ShipType string `json:"shipType"`
	Color    string `json:"color"`
}

// ReadyUpdateMsg is broadcast when any member's ready state changes.
type ReadyUpdateMsg struct {
	PlayerID string `json:"playerId"`
	Ready    bool   `json:"ready"`
	AllReady bool   `json:"allReady"`
}

// GameStartedMsg is broadcast on the lobby -> playing transition.
type GameStartedMsg struct {
	Players   []RoomPlayer `json:"players"`
	StartTime int64        `json:"startTime"`
}

// PlayerUpdateMsg is the client's 20Hz transform push. It travels as
// msgpack on the binary path; the JSON tags cover the fallback.
type PlayerUpdateMsg struct {
	Position Vec3    `json:"position" msgpack:"p"`
	Rotation Vec3    `json:"rotation" msgpack:"r"`
	Velocity Vec3    `json:"velocity" msgpack:"v"`
	Health   float64 `json:"health" msgpack:"h"`
	Alive    bool    `json:"alive" msgpack:"a"`
}

// PlayerMovedMsg relays a peer's transform to the rest of the room.
type PlayerMovedMsg struct {
	PlayerID string  `json:"playerId" msgpack:"id"`
	Position Vec3    `json:"position" msgpack:"p"`
	Rotation Vec3    `json:"rotation" msgpack:"r"`
	Velocity Vec3    `json:"velocity" msgpack:"v"`
	Health   float64 `json:"health" msgpack:"h"`
	Alive    bool    `json:"alive" msgpack:"a"`
}

// PlayerShotMsg reports and relays a fired bullet.
type PlayerShotMsg struct {
	BulletID  string `json:"bulletId"`
	PlayerID  string `json:"playerId,omitempty"`
	Position  Vec3   `json:"position"`
	Direction Vec3   `json:"direction"`
	Color     string `json:"color"`
}

// PlayerHitMsg is the shooter's self-reported hit claim.
type PlayerHitMsg struct {
	TargetID  string  `json:"targetId"`
	ShooterID string  `json:"shooterId"`
	Damage    float64 `json:"damage"`
}

// PlayerDamagedMsg is broadcast when a hit leaves the victim alive.
type PlayerDamagedMsg struct {
	PlayerID  string  `json:"playerId"`
	Health    float64 `json:"health"`
	Damage    float64 `json:"damage"`
	ShooterID string  `json:"shooterId"`
}

// PlayerKilledMsg is broadcast when a hit is lethal.
type PlayerKilledMsg struct {
	VictimID   string `json:"victimId"`
	VictimName string `json:"victimName"`
	KillerID   string `json:"killerId"`
	KillerName string `json:"killerName"`
}

// PlayerRespawnedMsg is broadcast after a respawn request.
type PlayerRespawnedMsg struct {
	PlayerID string  `json:"playerId"`
	Position Vec3    `json:"position"`
	Health   float64 `json:"health"`
}

// PlayerLeftMsg is broadcast when a member leaves or disconnects.
type PlayerLeftMsg struct {
	PlayerID  string `json:"playerId"`
	NewHostID string `json:"newHostId,omitempty"`
}

// ChatMsg carries room and global chat both ways.
type ChatMsg struct {
	PlayerID   string `json:"playerId,omitempty"`
	PlayerName string `json:"playerName,omitempty"`
	Message    string `json:"message"`
}

// PrivateMsg is a direct message between users.
type PrivateMsg struct {
	SenderID    string `json:"senderId,omitempty"`
	SenderName  string `json:"senderName,omitempty"`
	RecipientID string `json:"recipientId"`
	Message     string `json:"message"`
}

// FriendRequestMsg asks for or announces a friend request.
type FriendRequestMsg struct {
	UserID     string `json:"userId"`
	SenderID   string `json:"senderId,omitempty"`
	SenderName string `json:"senderName,omitempty"`
}

// AcceptFriendMsg accepts a pending request from SenderID.
type AcceptFriendMsg struct {
	SenderID string `json:"senderId"`
}

// FriendAcceptedMsg notifies both sides of the new friendship.
type FriendAcceptedMsg struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

// BlockUserMsg blocks private messages from a user.
type BlockUserMsg struct {
	UserID string `json:"userId"`
}

// SearchUserMsg queries the user registry by name prefix.
type SearchUserMsg struct {
	Query string `json:"query"`
}

// SearchResult is one row of a user search.
type SearchResult struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Online   bool   `json:"online"`
}

// FriendsListMsg answers a get-friends request.
type FriendsListMsg struct {
	Friends []string `json:"friends"`
}

// StatusUpdateMsg sets the sender's presence status.
type StatusUpdateMsg struct {
	Status string `json:"status"`
}

// UserStatusMsg relays a friend's presence status change.
type UserStatusMsg struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Status   string `json:"status"`
}

// ErrorMsg sends an error to the originating client only.
type ErrorMsg struct {
	Message string `json:"message"`
}

// EncodeUpdate packs a transform push for the binary fast path.
func EncodeUpdate(u *PlayerUpdateMsg) ([]byte, error) {
	return msgpack.Marshal(u)
}

// DecodeUpdate unpacks a binary transform push.
func DecodeUpdate(b []byte) (*PlayerUpdateMsg, error) {
	var u PlayerUpdateMsg
	if err := msgpack.Unmarshal(b, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// EncodeMoved packs a relayed peer transform.
func EncodeMoved(m *PlayerMovedMsg) ([]byte, error) {
	return msgpack.Marshal(m)
}

// DecodeMoved unpacks a relayed peer transform.
func DecodeMoved(b []byte) (*PlayerMovedMsg, error) {
	var m PlayerMovedMsg
	if err := msgpack.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
