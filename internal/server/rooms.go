package server

import (
	"errors"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/Cruelhelp/NeonVoid/internal/proto"
)

const (
	RoomMaxPlayers   = 4
	roomCodeLen      = 6
	respawnRadius    = 300.0
	spawnHealth      = 100.0
	killScore        = 100
	lobbyIdleTimeout = 5 * time.Minute
)

var (
	ErrRoomNotFound   = errors.New("Room not found")
	ErrRoomFull       = errors.New("Room is full")
	ErrGameInProgress = errors.New("Game already in progress")
	ErrNotHost        = errors.New("Only host can start game")
	ErrNotReady       = errors.New("Not all players are ready")
)

// RoomState is the per-room state machine: lobby -> playing ->
// finished. Nothing transitions into finished yet; it is the reserved
// terminal state.
type RoomState int

const (
	StateLobby RoomState = iota
	StatePlaying
	StateFinished
)

func (s RoomState) String() string {
	switch s {
	case StatePlaying:
		return "playing"
	case StateFinished:
		return "finished"
	}
	return "lobby"
}

// spawnSlots are the four corner start positions, assigned in join
// order.
var spawnSlots = [RoomMaxPlayers]proto.Vec3{
	{X: -300, Y: -300},
	{X: 300, Y: -300},
	{X: -300, Y: 300},
	{X: 300, Y: 300},
}

// roomPlayer is the authoritative copy of one member's last-known
// state. The transform is client-reported and never simulated here;
// only health bookkeeping happens server-side.
type roomPlayer struct {
	ID       string
	Name     string
	IsHost   bool
	Ready    bool
	ShipType string
	Color    string

	Position proto.Vec3
	Rotation proto.Vec3
	Velocity proto.Vec3
	Health   float64
	Alive    bool

	Score  int
	Kills  int
	Deaths int

	LastUpdate time.Time
}

func (p *roomPlayer) toProto() proto.RoomPlayer {
	return proto.RoomPlayer{
		ID:       p.ID,
		Name:     p.Name,
		Ready:    p.Ready,
		IsHost:   p.IsHost,
		ShipType: p.ShipType,
		Color:    p.Color,
		Position: p.Position,
		Rotation: p.Rotation,
		Health:   p.Health,
		Alive:    p.Alive,
		Score:    p.Score,
		Kills:    p.Kills,
		Deaths:   p.Deaths,
	}
}

// Room is one match instance of up to four players. All access goes
// through the mutex; connection handlers run concurrently.
type Room struct {
	mu sync.Mutex

	Code      string
	hostID    string
	state     RoomState
	players   map[string]*roomPlayer
	order     []string // join order, drives host reassignment and spawn slots
	startTime time.Time
}

func newRoom(code, hostID, hostName string) *Room {
	r := &Room{
		Code:    code,
		hostID:  hostID,
		players: make(map[string]*roomPlayer),
	}
	r.addPlayerLocked(hostID, hostName, true)
	return r
}

func (r *Room) addPlayerLocked(id, name string, isHost bool) bool {
	if len(r.players) >= RoomMaxPlayers {
		return false
	}
	r.players[id] = &roomPlayer{
		ID:         id,
		Name:       name,
		IsHost:     isHost,
		Ready:      isHost, // the host is implicitly ready
		ShipType:   "Interceptor",
		Color:      "#00ffff",
		Health:     spawnHealth,
		Alive:      true,
		LastUpdate: time.Now(),
	}
	r.order = append(r.order, id)
	return true
}

// AddPlayer admits a player while the room is in the lobby.
func (r *Room) AddPlayer(id, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateLobby {
		return ErrGameInProgress
	}
	if !r.addPlayerLocked(id, name, false) {
		return ErrRoomFull
	}
	return nil
}

// RemovePlayer drops a member and reassigns the host to the next
// remaining player in join order. Returns the remaining count and the
// new host id ("" when unchanged or empty).
func (r *Room) RemovePlayer(id string) (remaining int, newHost string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.players, id)
	for i, pid := range r.order {
		if pid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	if id == r.hostID && len(r.order) > 0 {
		r.hostID = r.order[0]
		r.players[r.hostID].IsHost = true
		newHost = r.hostID
	}
	return len(r.players), newHost
}

// SetReady flips a member's ready flag and records the ship choice.
func (r *Room) SetReady(id string, ready bool, shipType, color string) (ok, allReady bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, exists := r.players[id]
	if !exists {
		return false, false
	}
	p.Ready = ready
	if shipType != "" {
		p.ShipType = shipType
	}
	if color != "" {
		p.Color = color
	}
	p.LastUpdate = time.Now()
	return true, r.isReadyLocked()
}

func (r *Room) isReadyLocked() bool {
	if len(r.players) < 2 {
		return false
	}
	for _, p := range r.players {
		if !p.Ready {
			return false
		}
	}
	return true
}

// Start moves the room into playing. Only the host may start, and
// only with at least two members all ready. Players land on the
// corner spawn slots in join order with fresh health and tallies.
func (r *Room) Start(requesterID string) (*proto.GameStartedMsg, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, exists := r.players[requesterID]
	if !exists || !p.IsHost {
		return nil, ErrNotHost
	}
	if !r.isReadyLocked() {
		return nil, ErrNotReady
	}

	r.state = StatePlaying
	r.startTime = time.Now()

	for i, pid := range r.order {
		member := r.players[pid]
		member.Position = spawnSlots[i%RoomMaxPlayers]
		member.Health = spawnHealth
		member.Alive = true
		member.Kills = 0
		member.Deaths = 0
	}

	return &proto.GameStartedMsg{
		Players:   r.playersLocked(),
		StartTime: r.startTime.UnixMilli(),
	}, nil
}

// UpdatePlayer overwrites a member's client-reported transform.
// Stale ids are silently ignored.
func (r *Room) UpdatePlayer(id string, u *proto.PlayerUpdateMsg) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StatePlaying {
		return false
	}
	p, exists := r.players[id]
	if !exists {
		return false
	}
	p.Position = u.Position
	p.Rotation = u.Rotation
	p.Velocity = u.Velocity
	p.Health = u.Health
	p.Alive = u.Alive
	p.LastUpdate = time.Now()
	return true
}

// HitResult is the outcome of a self-reported hit claim.
type HitResult struct {
	Applied    bool
	Killed     bool
	Health     float64
	VictimName string
	KillerName string
}

// ApplyHit applies a shooter's hit claim to the authoritative health
// figure. The protocol carries no geometry to validate the claim
// against, so the shooter's report is taken as-is. A lethal hit flips
// the victim to not-alive and scores the shooter.
func (r *Room) ApplyHit(targetID, shooterID string, damage float64) HitResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StatePlaying {
		return HitResult{}
	}
	victim, haveVictim := r.players[targetID]
	shooter, haveShooter := r.players[shooterID]
	if !haveVictim || !haveShooter {
		return HitResult{}
	}

	victim.Health -= damage
	if victim.Health <= 0 {
		victim.Alive = false
		victim.Deaths++
		shooter.Kills++
		shooter.Score += killScore
		return HitResult{
			Applied:    true,
			Killed:     true,
			VictimName: victim.Name,
			KillerName: shooter.Name,
		}
	}
	return HitResult{Applied: true, Health: victim.Health}
}

// Respawn revives a member at a random angle on the respawn ring with
// full health.
func (r *Room) Respawn(id string, rng *rand.Rand) (*proto.PlayerRespawnedMsg, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StatePlaying {
		return nil, false
	}
	p, exists := r.players[id]
	if !exists {
		return nil, false
	}

	angle := rng.Float64() * math.Pi * 2
	p.Position = proto.Vec3{
		X: math.Cos(angle) * respawnRadius,
		Y: math.Sin(angle) * respawnRadius,
	}
	p.Health = spawnHealth
	p.Alive = true

	return &proto.PlayerRespawnedMsg{
		PlayerID: id,
		Position: p.Position,
		Health:   p.Health,
	}, true
}

// Players returns the members in join order.
func (r *Room) Players() []proto.RoomPlayer {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.playersLocked()
}

func (r *Room) playersLocked() []proto.RoomPlayer {
	out := make([]proto.RoomPlayer, 0, len(r.players))
	for _, pid := range r.order {
		if p, ok := r.players[pid]; ok {
			out = append(out, p.toProto())
		}
	}
	return out
}

// PlayerName returns a member's display name.
func (r *Room) PlayerName(id string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.players[id]; ok {
		return p.Name
	}
	return ""
}

// HostID returns the current host.
func (r *Room) HostID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hostID
}

// State returns the room's state machine position.
func (r *Room) State() RoomState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// PlayerCount returns the member count.
func (r *Room) PlayerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.players)
}

// hostName returns the host's display name for the lobby browser.
func (r *Room) hostName() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.players[r.hostID]; ok {
		return p.Name
	}
	return ""
}

// idleSince reports whether every member's last update is older than
// the cutoff while the room sits in the lobby.
func (r *Room) idleSince(cutoff time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateLobby {
		return false
	}
	for _, p := range r.players {
		if p.LastUpdate.After(cutoff) {
			return false
		}
	}
	return true
}

const codeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// RoomManager owns the live room set.
type RoomManager struct {
	mu    sync.RWMutex
	rooms map[string]*Room
	rng   *rand.Rand
}

// NewRoomManager creates an empty manager.
func NewRoomManager() *RoomManager {
	return &RoomManager{
		rooms: make(map[string]*Room),
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// generateCode builds a 6-character uppercase base-36 room code.
// Collisions are birthday-bound and not checked; acceptable at the
// expected concurrent room counts.
func (m *RoomManager) generateCode() string {
	b := make([]byte, roomCodeLen)
	for i := range b {
		b[i] = codeAlphabet[m.rng.Intn(len(codeAlphabet))]
	}
	return string(b)
}

// Create opens a new room with the given host.
func (m *RoomManager) Create(hostID, hostName string) *Room {
	m.mu.Lock()
	defer m.mu.Unlock()

	code := m.generateCode()
	room := newRoom(code, hostID, hostName)
	m.rooms[code] = room
	return room
}

// Get returns a room by code, nil when absent.
func (m *RoomManager) Get(code string) *Room {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rooms[code]
}

// Remove deletes a room.
func (m *RoomManager) Remove(code string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rooms, code)
}

// List returns browser entries for rooms still in the lobby.
func (m *RoomManager) List() []proto.RoomInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]proto.RoomInfo, 0, len(m.rooms))
	for _, r := range m.rooms {
		if r.State() != StateLobby {
			continue
		}
		out = append(out, proto.RoomInfo{
			RoomCode: r.Code,
			HostName: r.hostName(),
			Players:  r.PlayerCount(),
			MaxSize:  RoomMaxPlayers,
		})
	}
	return out
}

// Respawn rolls a respawn position using the manager's rng.
func (m *RoomManager) Respawn(r *Room, playerID string) (*proto.PlayerRespawnedMsg, bool) {
	m.mu.Lock()
	rng := m.rng
	m.mu.Unlock()
	return r.Respawn(playerID, rng)
}

// SweepIdle deletes lobby rooms whose members have all been silent
// past the idle timeout. Returns the codes removed.
func (m *RoomManager) SweepIdle() []string {
	cutoff := time.Now().Add(-lobbyIdleTimeout)

	m.mu.Lock()
	defer m.mu.Unlock()

	var removed []string
	for code, r := range m.rooms {
		if r.idleSince(cutoff) {
			delete(m.rooms, code)
			removed = append(removed, code)
		}
	}
	return removed
}

// Count returns the live room count.
func (m *RoomManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms)
}
