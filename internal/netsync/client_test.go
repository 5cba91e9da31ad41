package netsync

import (
	"encoding/json"
	"math/rand"
	"testing"

	"go.uber.org/zap"

	"github.com/Cruelhelp/NeonVoid/internal/game"
	"github.com/Cruelhelp/NeonVoid/internal/proto"
)

func newTestClient() *Client {
	return &Client{
		log:    zap.NewNop(),
		send:   make(chan []byte, 16),
		events: make(chan event, 16),
		done:   make(chan struct{}),
	}
}

func newTestWorld() *game.World {
	return game.NewWorld(800, 600, rand.New(rand.NewSource(9)))
}

func jsonEvent(t *testing.T, msgType string, payload interface{}) event {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatal(err)
	}
	return event{t: msgType, data: data}
}

func startedMatch(t *testing.T, c *Client, w *game.World) {
	t.Helper()
	c.userID = "me"
	c.applyEvent(w, jsonEvent(t, proto.MsgGameStarted, proto.GameStartedMsg{
		Players: []proto.RoomPlayer{
			{ID: "me", Name: "Alice", Position: proto.Vec3{X: -300, Y: -300}, Health: 100, Alive: true},
			{ID: "p2", Name: "Bob", ShipType: "Fighter", Position: proto.Vec3{X: 300, Y: -300}, Health: 100, Alive: true},
		},
	}))
}

func TestGameStartedBuildsMatch(t *testing.T) {
	c := newTestClient()
	w := newTestWorld()
	startedMatch(t, c, w)

	if w.RemotePlayerCount() != 1 {
		t.Fatalf("remotes = %d, want 1", w.RemotePlayerCount())
	}
	if p := w.Player(); p == nil || p.Mesh.Position.X != -300 {
		t.Error("local player not moved to its spawn slot")
	}
	if w.Snapshot().Mode != game.ModeMultiplayer {
		t.Error("mode not multiplayer")
	}
}

func TestBinaryMovedAppliesRemoteState(t *testing.T) {
	c := newTestClient()
	w := newTestWorld()
	startedMatch(t, c, w)

	c.applyEvent(w, event{moved: &proto.PlayerMovedMsg{
		PlayerID: "p2",
		Position: proto.Vec3{X: 120, Y: -40},
		Health:   60,
		Alive:    true,
	}})

	tags := w.NameTags()
	if len(tags) != 1 {
		t.Fatalf("tags = %d, want 1", len(tags))
	}
	if tags[0].Position.X != 120 || tags[0].Position.Y != -40 {
		t.Errorf("remote position = %+v", tags[0].Position)
	}
}

func TestDamagedRoutesSelfVersusRemote(t *testing.T) {
	c := newTestClient()
	w := newTestWorld()
	startedMatch(t, c, w)

	c.applyEvent(w, jsonEvent(t, proto.MsgPlayerDamaged, proto.PlayerDamagedMsg{
		PlayerID: "me", Health: 55, Damage: 45,
	}))
	if got := w.Snapshot().Health; got != 55 {
		t.Errorf("local health = %v, want 55", got)
	}

	c.applyEvent(w, jsonEvent(t, proto.MsgPlayerDamaged, proto.PlayerDamagedMsg{
		PlayerID: "p2", Health: 30, Damage: 70,
	}))
	if got := w.Snapshot().Health; got != 55 {
		t.Error("remote damage leaked onto local health")
	}
}

func TestKilledAndRespawnRoundTrip(t *testing.T) {
	c := newTestClient()
	w := newTestWorld()
	startedMatch(t, c, w)

	c.applyEvent(w, jsonEvent(t, proto.MsgPlayerKilled, proto.PlayerKilledMsg{
		VictimID: "p2", KillerID: "me",
	}))
	if len(w.NameTags()) != 0 {
		t.Error("downed remote still shows a name tag")
	}

	c.applyEvent(w, jsonEvent(t, proto.MsgPlayerRespawned, proto.PlayerRespawnedMsg{
		PlayerID: "p2", Position: proto.Vec3{X: 300}, Health: 100,
	}))
	tags := w.NameTags()
	if len(tags) != 1 || tags[0].Position.X != 300 {
		t.Errorf("respawned remote tags = %+v", tags)
	}
}

func TestPlayerLeftRemovesRemote(t *testing.T) {
	c := newTestClient()
	w := newTestWorld()
	startedMatch(t, c, w)
	c.lobby = []proto.RoomPlayer{{ID: "me"}, {ID: "p2"}}

	c.applyEvent(w, jsonEvent(t, proto.MsgPlayerLeft, proto.PlayerLeftMsg{
		PlayerID: "p2", NewHostID: "me",
	}))

	if w.RemotePlayerCount() != 0 {
		t.Error("remote not removed")
	}
	if len(c.Lobby()) != 1 {
		t.Errorf("lobby = %v", c.Lobby())
	}
	if !c.IsHost() {
		t.Error("host reassignment not recorded")
	}
}

func TestShotRelaySpawnsPeerBullet(t *testing.T) {
	c := newTestClient()
	w := newTestWorld()
	startedMatch(t, c, w)

	before := len(w.Meshes())
	c.applyEvent(w, jsonEvent(t, proto.MsgShotRelay, proto.PlayerShotMsg{
		PlayerID:  "p2",
		Position:  proto.Vec3{X: 300, Y: -300},
		Direction: proto.Vec3{X: -1},
		Color:     "#00ff88",
	}))
	if len(w.Meshes()) != before+1 {
		t.Error("peer shot did not spawn a bullet")
	}
}

func TestRegistrationAndErrorState(t *testing.T) {
	c := newTestClient()
	w := newTestWorld()

	c.applyEvent(w, jsonEvent(t, proto.MsgUserRegistered, proto.UserRegisteredMsg{
		UserID: "u9", Username: "Ace", Token: "tok",
	}))
	if c.UserID() != "u9" || c.Token() != "tok" {
		t.Errorf("identity = %q/%q", c.UserID(), c.Token())
	}

	c.applyEvent(w, jsonEvent(t, proto.MsgError, proto.ErrorMsg{Message: "Room is full"}))
	if c.LastError() != "Room is full" {
		t.Error("error not recorded")
	}
	if c.LastError() != "" {
		t.Error("error not cleared on read")
	}
}

func TestPushStateEncodesTransform(t *testing.T) {
	c := newTestClient()
	w := newTestWorld()
	startedMatch(t, c, w)

	c.PushState(w)

	select {
	case frame := <-c.send:
		if frame[0] != 0xFF {
			t.Fatal("push frame missing binary marker")
		}
		u, err := proto.DecodeUpdate(frame[1:])
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if u.Position.X != -300 || u.Position.Y != -300 {
			t.Errorf("pushed position = %+v", u.Position)
		}
		if !u.Alive {
			t.Error("pushed state should be alive")
		}
	default:
		t.Fatal("no frame queued")
	}
}

func TestChatBacklogCapped(t *testing.T) {
	c := newTestClient()
	w := newTestWorld()

	for i := 0; i < chatBacklog+10; i++ {
		c.applyEvent(w, jsonEvent(t, proto.MsgChatRelay, proto.ChatMsg{Message: "hi"}))
	}
	if got := len(c.ChatLog()); got != chatBacklog {
		t.Errorf("chat log = %d, want %d", got, chatBacklog)
	}
}

func TestFriendsListReplacesSessionState(t *testing.T) {
	c := newTestClient()
	w := newTestWorld()

	c.applyEvent(w, jsonEvent(t, proto.MsgFriendAccepted, proto.FriendAcceptedMsg{
		UserID: "u2", Username: "Bob",
	}))
	c.applyEvent(w, jsonEvent(t, proto.MsgFriendsList, proto.FriendsListMsg{
		Friends: []string{"Bob", "Cara"},
	}))

	friends := c.Friends()
	if len(friends) != 2 || friends[0] != "Bob" || friends[1] != "Cara" {
		t.Errorf("friends = %v", friends)
	}
}

func TestFriendStatusTracksLatest(t *testing.T) {
	c := newTestClient()
	w := newTestWorld()

	c.applyEvent(w, jsonEvent(t, proto.MsgUserStatus, proto.UserStatusMsg{
		UserID: "u2", Username: "Bob", Status: "in lobby",
	}))
	c.applyEvent(w, jsonEvent(t, proto.MsgUserStatus, proto.UserStatusMsg{
		UserID: "u2", Username: "Bob", Status: "in match",
	}))

	if got := c.FriendStatus("Bob"); got != "in match" {
		t.Errorf("status = %q", got)
	}
	if got := c.FriendStatus("Cara"); got != "" {
		t.Errorf("unknown friend status = %q", got)
	}
}
