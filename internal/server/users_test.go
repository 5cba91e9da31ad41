package server

import (
	"errors"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *UserStore {
	t.Helper()
	s, err := NewUserStore()
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRegisterReusesCaseInsensitiveName(t *testing.T) {
	s := newTestStore(t)

	id1, created, err := s.Register("a1", "Alice")
	if err != nil || !created {
		t.Fatalf("first register: id=%s created=%v err=%v", id1, created, err)
	}
	id2, created, err := s.Register("a2", "ALICE")
	if err != nil {
		t.Fatalf("second register: %v", err)
	}
	if created || id2 != id1 {
		t.Errorf("re-register: created=%v id=%s, want reuse of %s", created, id2, id1)
	}
	if s.Username(id1) != "Alice" {
		t.Errorf("username = %q, want original casing", s.Username(id1))
	}
}

func TestOnlineTrackingAndSweep(t *testing.T) {
	s := newTestStore(t)
	s.Register("a1", "Alice")
	s.Register("b1", "Bob")

	if !s.IsOnline("alice") || !s.IsOnline("Bob") {
		t.Fatal("registered users should be online")
	}

	s.mu.Lock()
	s.online["alice"].LastSeen = time.Now().Add(-2 * offlineIdleTimeout)
	s.mu.Unlock()

	removed := s.SweepOffline()
	if len(removed) != 1 || removed[0] != "Alice" {
		t.Fatalf("removed = %v, want [Alice]", removed)
	}
	if s.IsOnline("Alice") || !s.IsOnline("Bob") {
		t.Error("sweep removed the wrong user")
	}

	s.SetOffline("Bob")
	if s.IsOnline("Bob") {
		t.Error("SetOffline did not take")
	}
}

func TestSearchLimitAndOnlineFlag(t *testing.T) {
	s := newTestStore(t)
	names := []string{
		"pilot01", "pilot02", "pilot03", "pilot04", "pilot05", "pilot06",
		"pilot07", "pilot08", "pilot09", "pilot10", "pilot11", "pilot12",
	}
	for i, n := range names {
		s.Register(string(rune('a'+i))+"-id", n)
	}
	s.SetOffline("pilot01")

	results, err := s.Search("PILOT")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != searchLimit {
		t.Fatalf("results = %d, want %d", len(results), searchLimit)
	}
	if results[0].Username != "pilot01" || results[0].Online {
		t.Errorf("first result = %+v, want offline pilot01", results[0])
	}
	if !results[1].Online {
		t.Errorf("second result should be online: %+v", results[1])
	}

	none, err := s.Search("nobody")
	if err != nil || len(none) != 0 {
		t.Errorf("empty search = %v, %v", none, err)
	}
}

func TestFriendRequestRoundTrip(t *testing.T) {
	s := newTestStore(t)
	aliceID, _, _ := s.Register("a1", "Alice")
	bobID, _, _ := s.Register("b1", "Bob")

	if err := s.RequestFriend(aliceID, bobID); err != nil {
		t.Fatalf("request: %v", err)
	}
	if err := s.RequestFriend(aliceID, bobID); !errors.Is(err, ErrRequestPending) {
		t.Errorf("duplicate request err = %v", err)
	}

	if err := s.AcceptFriend(aliceID, bobID); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if !s.AreFriends(aliceID, bobID) || !s.AreFriends(bobID, aliceID) {
		t.Error("friendship not mutual")
	}

	aliceFriends, _ := s.Friends(aliceID)
	bobFriends, _ := s.Friends(bobID)
	if len(aliceFriends) != 1 || aliceFriends[0] != "Bob" {
		t.Errorf("alice friends = %v", aliceFriends)
	}
	if len(bobFriends) != 1 || bobFriends[0] != "Alice" {
		t.Errorf("bob friends = %v", bobFriends)
	}

	// The pending request is consumed; accepting again fails.
	if err := s.AcceptFriend(aliceID, bobID); !errors.Is(err, ErrNoSuchRequest) {
		t.Errorf("re-accept err = %v", err)
	}
	// And a new request between friends is rejected.
	if err := s.RequestFriend(bobID, aliceID); !errors.Is(err, ErrAlreadyFriends) {
		t.Errorf("friend re-request err = %v", err)
	}
}

func TestBlockSuppressesSender(t *testing.T) {
	s := newTestStore(t)
	aliceID, _, _ := s.Register("a1", "Alice")
	bobID, _, _ := s.Register("b1", "Bob")

	if s.IsBlocked(aliceID, bobID) {
		t.Fatal("fresh users should not be blocked")
	}
	if err := s.Block(aliceID, bobID); err != nil {
		t.Fatalf("block: %v", err)
	}
	if !s.IsBlocked(aliceID, bobID) {
		t.Error("block not recorded")
	}
	// One-directional: Alice can still reach Bob.
	if s.IsBlocked(bobID, aliceID) {
		t.Error("block should be one-directional")
	}
	// Idempotent.
	if err := s.Block(aliceID, bobID); err != nil {
		t.Errorf("re-block: %v", err)
	}
}

func TestRecordKillUpdatesStats(t *testing.T) {
	s := newTestStore(t)
	aliceID, _, _ := s.Register("a1", "Alice")
	bobID, _, _ := s.Register("b1", "Bob")

	if err := s.RecordKill(aliceID, bobID); err != nil {
		t.Fatalf("record kill: %v", err)
	}
	aliceStats, err := s.Stats(aliceID)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	bobStats, _ := s.Stats(bobID)
	if aliceStats.Kills != 1 || aliceStats.Deaths != 0 {
		t.Errorf("shooter stats = %+v", aliceStats)
	}
	if bobStats.Deaths != 1 || bobStats.Kills != 0 {
		t.Errorf("victim stats = %+v", bobStats)
	}
}
