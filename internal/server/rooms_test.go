package server

import (
	"errors"
	"math/rand"
	"regexp"
	"testing"

	"github.com/Cruelhelp/NeonVoid/internal/proto"
)

var testUpdate = proto.PlayerUpdateMsg{
	Position: proto.Vec3{X: 42, Y: 7},
	Health:   80,
	Alive:    true,
}

func TestRoomCodeFormat(t *testing.T) {
	m := NewRoomManager()
	re := regexp.MustCompile(`^[0-9A-Z]{6}$`)
	for i := 0; i < 20; i++ {
		code := m.generateCode()
		if !re.MatchString(code) {
			t.Fatalf("bad room code %q", code)
		}
	}
}

func TestCreateRoomHostIsReady(t *testing.T) {
	m := NewRoomManager()
	room := m.Create("u1", "Alice")

	players := room.Players()
	if len(players) != 1 {
		t.Fatalf("players = %d, want 1", len(players))
	}
	if !players[0].IsHost || !players[0].Ready {
		t.Errorf("host should be implicitly ready, got %+v", players[0])
	}
	if m.Get(room.Code) != room {
		t.Error("room not retrievable by code")
	}
}

func TestJoinRoomLimits(t *testing.T) {
	m := NewRoomManager()
	room := m.Create("u1", "Alice")

	for i, id := range []string{"u2", "u3", "u4"} {
		if err := room.AddPlayer(id, "p"); err != nil {
			t.Fatalf("join %d: %v", i, err)
		}
	}
	if err := room.AddPlayer("u5", "p"); !errors.Is(err, ErrRoomFull) {
		t.Errorf("fifth join err = %v, want ErrRoomFull", err)
	}

	room.state = StatePlaying
	room2 := m.Create("u6", "Bob")
	room2.state = StatePlaying
	if err := room2.AddPlayer("u7", "p"); !errors.Is(err, ErrGameInProgress) {
		t.Errorf("in-progress join err = %v, want ErrGameInProgress", err)
	}
}

func TestStartRequiresHostAndReadiness(t *testing.T) {
	m := NewRoomManager()
	room := m.Create("u1", "Alice")

	// Alone: the host is ready but the size gate fails.
	if _, err := room.Start("u1"); !errors.Is(err, ErrNotReady) {
		t.Fatalf("solo start err = %v, want ErrNotReady", err)
	}

	room.AddPlayer("u2", "Bob")
	if _, err := room.Start("u2"); !errors.Is(err, ErrNotHost) {
		t.Fatalf("guest start err = %v, want ErrNotHost", err)
	}
	if _, err := room.Start("u1"); !errors.Is(err, ErrNotReady) {
		t.Fatalf("unready start err = %v, want ErrNotReady", err)
	}

	_, allReady := room.SetReady("u2", true, "Fighter", "#00ff88")
	if !allReady {
		t.Fatal("expected all-ready after the guest readied")
	}

	started, err := room.Start("u1")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if room.State() != StatePlaying {
		t.Errorf("state = %v, want playing", room.State())
	}
	if len(started.Players) != 2 {
		t.Fatalf("started players = %d, want 2", len(started.Players))
	}
	// Join order maps onto the corner slots.
	if p := started.Players[0].Position; p.X != -300 || p.Y != -300 {
		t.Errorf("slot 0 = %+v, want (-300,-300)", p)
	}
	if p := started.Players[1].Position; p.X != 300 || p.Y != -300 {
		t.Errorf("slot 1 = %+v, want (300,-300)", p)
	}
	for _, p := range started.Players {
		if p.Health != 100 || !p.Alive {
			t.Errorf("player %s not reset: health=%v alive=%v", p.ID, p.Health, p.Alive)
		}
	}
}

func TestHostReassignmentAndRoomClose(t *testing.T) {
	m := NewRoomManager()
	room := m.Create("u1", "Alice")
	room.AddPlayer("u2", "Bob")
	room.AddPlayer("u3", "Cara")

	remaining, newHost := room.RemovePlayer("u1")
	if remaining != 2 || newHost != "u2" {
		t.Fatalf("after host left: remaining=%d newHost=%q, want 2/u2", remaining, newHost)
	}
	if !room.Players()[0].IsHost {
		t.Error("new host flag not set")
	}

	// Non-host departure leaves the host alone.
	remaining, newHost = room.RemovePlayer("u3")
	if remaining != 1 || newHost != "" {
		t.Fatalf("after guest left: remaining=%d newHost=%q", remaining, newHost)
	}

	remaining, _ = room.RemovePlayer("u2")
	if remaining != 0 {
		t.Fatalf("remaining = %d, want 0", remaining)
	}
	m.Remove(room.Code)
	if m.Get(room.Code) != nil {
		t.Error("room still retrievable after removal")
	}
}

func startedRoom(t *testing.T) (*RoomManager, *Room) {
	t.Helper()
	m := NewRoomManager()
	room := m.Create("u1", "Alice")
	room.AddPlayer("u2", "Bob")
	room.SetReady("u2", true, "", "")
	if _, err := room.Start("u1"); err != nil {
		t.Fatalf("start: %v", err)
	}
	return m, room
}

func TestApplyHitDamagedAndKilled(t *testing.T) {
	_, room := startedRoom(t)

	res := room.ApplyHit("u2", "u1", 25)
	if !res.Applied || res.Killed {
		t.Fatalf("first hit = %+v, want applied non-lethal", res)
	}
	if res.Health != 75 {
		t.Errorf("health = %v, want 75", res.Health)
	}

	for i := 0; i < 3; i++ {
		res = room.ApplyHit("u2", "u1", 25)
	}
	if !res.Killed {
		t.Fatalf("fourth hit = %+v, want lethal", res)
	}
	if res.VictimName != "Bob" || res.KillerName != "Alice" {
		t.Errorf("names = %q/%q", res.VictimName, res.KillerName)
	}

	for _, p := range room.Players() {
		switch p.ID {
		case "u2":
			if p.Alive || p.Deaths != 1 {
				t.Errorf("victim alive=%v deaths=%d", p.Alive, p.Deaths)
			}
		case "u1":
			if p.Kills != 1 || p.Score != killScore {
				t.Errorf("shooter kills=%d score=%d", p.Kills, p.Score)
			}
		}
	}
}

func TestApplyHitStaleRefsIgnored(t *testing.T) {
	_, room := startedRoom(t)

	if res := room.ApplyHit("ghost", "u1", 25); res.Applied {
		t.Error("hit on unknown victim applied")
	}
	if res := room.ApplyHit("u2", "ghost", 25); res.Applied {
		t.Error("hit from unknown shooter applied")
	}
}

func TestRespawnOnRing(t *testing.T) {
	_, room := startedRoom(t)
	for i := 0; i < 4; i++ {
		room.ApplyHit("u2", "u1", 25)
	}

	rng := rand.New(rand.NewSource(7))
	msg, ok := room.Respawn("u2", rng)
	if !ok {
		t.Fatal("respawn refused")
	}
	if msg.Health != 100 {
		t.Errorf("health = %v, want 100", msg.Health)
	}
	dist := msg.Position.X*msg.Position.X + msg.Position.Y*msg.Position.Y
	want := respawnRadius * respawnRadius
	if dist < want-1 || dist > want+1 {
		t.Errorf("respawn dist^2 = %v, want %v", dist, want)
	}

	for _, p := range room.Players() {
		if p.ID == "u2" && !p.Alive {
			t.Error("respawned player still marked dead")
		}
	}
}

func TestUpdatePlayerOnlyWhilePlaying(t *testing.T) {
	m := NewRoomManager()
	room := m.Create("u1", "Alice")

	upd := &testUpdate
	if room.UpdatePlayer("u1", upd) {
		t.Error("lobby update accepted")
	}

	room.AddPlayer("u2", "Bob")
	room.SetReady("u2", true, "", "")
	room.Start("u1")

	if !room.UpdatePlayer("u1", upd) {
		t.Fatal("playing update rejected")
	}
	if room.UpdatePlayer("ghost", upd) {
		t.Error("unknown player update accepted")
	}
	if room.Players()[0].Position.X != 42 {
		t.Error("update not applied")
	}
}

func TestListShowsLobbyRoomsOnly(t *testing.T) {
	m := NewRoomManager()
	lobby := m.Create("u1", "Alice")
	playing := m.Create("u2", "Bob")
	playing.AddPlayer("u3", "Cara")
	playing.SetReady("u3", true, "", "")
	playing.Start("u2")

	list := m.List()
	if len(list) != 1 {
		t.Fatalf("list = %d rooms, want 1", len(list))
	}
	if list[0].RoomCode != lobby.Code || list[0].HostName != "Alice" {
		t.Errorf("list entry = %+v", list[0])
	}
	if list[0].MaxSize != RoomMaxPlayers {
		t.Errorf("max size = %d", list[0].MaxSize)
	}
}

func TestSweepIdleSkipsActiveAndPlayingRooms(t *testing.T) {
	m := NewRoomManager()
	fresh := m.Create("u1", "Alice")

	stale := m.Create("u2", "Bob")
	stale.mu.Lock()
	for _, p := range stale.players {
		p.LastUpdate = p.LastUpdate.Add(-2 * lobbyIdleTimeout)
	}
	stale.mu.Unlock()

	inGame := m.Create("u3", "Cara")
	inGame.AddPlayer("u4", "Dan")
	inGame.SetReady("u4", true, "", "")
	inGame.Start("u3")
	inGame.mu.Lock()
	for _, p := range inGame.players {
		p.LastUpdate = p.LastUpdate.Add(-2 * lobbyIdleTimeout)
	}
	inGame.mu.Unlock()

	removed := m.SweepIdle()
	if len(removed) != 1 || removed[0] != stale.Code {
		t.Fatalf("removed = %v, want [%s]", removed, stale.Code)
	}
	if m.Get(fresh.Code) == nil || m.Get(inGame.Code) == nil {
		t.Error("sweep removed a live room")
	}
}
