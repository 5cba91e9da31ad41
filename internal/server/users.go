package server

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Cruelhelp/NeonVoid/internal/proto"
)

const (
	searchLimit        = 10
	offlineIdleTimeout = 10 * time.Minute
)

var (
	ErrAlreadyFriends = errors.New("Already friends")
	ErrRequestPending = errors.New("Friend request already sent")
	ErrNoSuchRequest  = errors.New("No friend request from that user")
)

/// UserStore keeps the session-scoped user registry: identities, match
// tallies and the friend graph. It is backed by an in-memory sqlite
// database, so everything evaporates with the process.
type UserStore struct {
	db *sql.DB

	mu     sync.Mutex
	online map[string]*onlineUser // keyed by lowercased username
}

type onlineUser struct {
	ID       string
	Username string
	Status   string
	LastSeen time.Time
}

// NewUserStore opens the in-memory database and creates the schema.
func NewUserStore() (*UserStore, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open user db: %w", err)
	}
	// A second connection to :memory: would see a different database.
	db.SetMaxOpenConns(1)

	s := &UserStore{db: db, online: make(map[string]*onlineUser)}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *UserStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			username TEXT NOT NULL,
			username_lc TEXT NOT NULL UNIQUE,
			created_at INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS stats (
			user_id TEXT PRIMARY KEY REFERENCES users(id),
			kills INTEGER NOT NULL DEFAULT 0,
			deaths INTEGER NOT NULL DEFAULT 0,
			wins INTEGER NOT NULL DEFAULT 0,
			games INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS friends (
			user_id TEXT NOT NULL REFERENCES users(id),
			friend_id TEXT NOT NULL REFERENCES users(id),
			PRIMARY KEY (user_id, friend_id)
		)`,
		`CREATE TABLE IF NOT EXISTS friend_requests (
			from_id TEXT NOT NULL REFERENCES users(id),
			to_id TEXT NOT NULL REFERENCES users(id),
			created_at INTEGER NOT NULL,
			PRIMARY KEY (from_id, to_id)
		)`,
		`CREATE TABLE IF NOT EXISTS blocks (
			user_id TEXT NOT NULL REFERENCES users(id),
			blocked_id TEXT NOT NULL REFERENCES users(id),
			PRIMARY KEY (user_id, blocked_id)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate user db: %w", err)
		}
	}
	return nil
}

// Close releases the database.
func (s *UserStore) Close() error {
	return s.db.Close()
}

// Register creates a user, or returns the existing account when the
// same name (case-insensitive) registered before. The returned bool
// is true for a fresh registration.
func (s *UserStore) Register(id, username string) (userID string, created bool, err error) {
	lc := strings.ToLower(username)

	var existing string
	err = s.db.QueryRow(`SELECT id FROM users WHERE username_lc = ?`, lc).Scan(&existing)
	switch {
	case err == nil:
		s.touch(existing, username)
		return existing, false, nil
	case err != sql.ErrNoRows:
		return "", false, fmt.Errorf("lookup user %q: %w", username, err)
	}

	now := time.Now().UnixMilli()
	if _, err := s.db.Exec(
		`INSERT INTO users (id, username, username_lc, created_at) VALUES (?, ?, ?, ?)`,
		id, username, lc, now,
	); err != nil {
		return "", false, fmt.Errorf("insert user %q: %w", username, err)
	}
	if _, err := s.db.Exec(`INSERT INTO stats (user_id) VALUES (?)`, id); err != nil {
		return "", false, fmt.Errorf("insert stats for %q: %w", username, err)
	}

	s.touch(id, username)
	return id, true, nil
}

func (s *UserStore) touch(id, username string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.online[strings.ToLower(username)] = &onlineUser{
		ID:       id,
		Username: username,
		LastSeen: time.Now(),
	}
}

// Touch refreshes a user's online freshness.
func (s *UserStore) Touch(username string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.online[strings.ToLower(username)]; ok {
		u.LastSeen = time.Now()
	}
}

// SetStatus updates a user's presence status and freshness. No-op for
// users outside the online set.
func (s *UserStore) SetStatus(username, status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.online[strings.ToLower(username)]; ok {
		u.Status = status
		u.LastSeen = time.Now()
	}
}

// SetOffline drops a user from the online set immediately.
func (s *UserStore) SetOffline(username string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.online, strings.ToLower(username))
}

// IsOnline reports whether a user is in the online set.
func (s *UserStore) IsOnline(username string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.online[strings.ToLower(username)]
	return ok
}

// SweepOffline removes users idle past the offline timeout and
// returns their names.
func (s *UserStore) SweepOffline() []string {
	cutoff := time.Now().Add(-offlineIdleTimeout)

	s.mu.Lock()
	defer s.mu.Unlock()

	var removed []string
	for key, u := range s.online {
		if u.LastSeen.Before(cutoff) {
			delete(s.online, key)
			removed = append(removed, u.Username)
		}
	}
	return removed
}

// UserID resolves a username to its id, "" when unknown.
func (s *UserStore) UserID(username string) string {
	var id string
	err := s.db.QueryRow(
		`SELECT id FROM users WHERE username_lc = ?`, strings.ToLower(username),
	).Scan(&id)
	if err != nil {
		return ""
	}
	return id
}

// Username resolves an id to its display name, "" when unknown.
func (s *UserStore) Username(id string) string {
	var name string
	err := s.db.QueryRow(`SELECT username FROM users WHERE id = ?`, id).Scan(&name)
	if err != nil {
		return ""
	}
	return name
}

// Stats returns a user's lifetime tallies.
func (s *UserStore) Stats(id string) (proto.UserStats, error) {
	var st proto.UserStats
	err := s.db.QueryRow(
		`SELECT kills, deaths, wins, games FROM stats WHERE user_id = ?`, id,
	).Scan(&st.Kills, &st.Deaths, &st.Wins, &st.Games)
	if err != nil {
		return proto.UserStats{}, fmt.Errorf("stats for %s: %w", id, err)
	}
	return st, nil
}

// RecordKill bumps the shooter's kill count and the victim's death
// count.
func (s *UserStore) RecordKill(shooterID, victimID string) error {
	if _, err := s.db.Exec(
		`UPDATE stats SET kills = kills + 1 WHERE user_id = ?`, shooterID,
	); err != nil {
		return fmt.Errorf("record kill: %w", err)
	}
	if _, err := s.db.Exec(
		`UPDATE stats SET deaths = deaths + 1 WHERE user_id = ?`, victimID,
	); err != nil {
		return fmt.Errorf("record death: %w", err)
	}
	return nil
}

// Search finds users whose name contains the query, capped at ten
// results, with online flags attached.
func (s *UserStore) Search(query string) ([]proto.SearchResult, error) {
	pattern := "%" + strings.ToLower(query) + "%"
	rows, err := s.db.Query(
		`SELECT id, username FROM users WHERE username_lc LIKE ? ORDER BY username_lc LIMIT ?`,
		pattern, searchLimit,
	)
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	defer rows.Close()

	var out []proto.SearchResult
	for rows.Next() {
		var r proto.SearchResult
		if err := rows.Scan(&r.UserID, &r.Username); err != nil {
			return nil, fmt.Errorf("scan search row: %w", err)
		}
		r.Online = s.IsOnline(r.Username)
		out = append(out, r)
	}
	return out, rows.Err()
}

// AreFriends reports whether the pair is already linked.
func (s *UserStore) AreFriends(a, b string) bool {
	var n int
	s.db.QueryRow(
		`SELECT COUNT(*) FROM friends WHERE user_id = ? AND friend_id = ?`, a, b,
	).Scan(&n)
	return n > 0
}

// RequestFriend files a pending request. Duplicate requests and
// requests between existing friends are rejected.
func (s *UserStore) RequestFriend(fromID, toID string) error {
	if s.AreFriends(fromID, toID) {
		return ErrAlreadyFriends
	}
	var n int
	s.db.QueryRow(
		`SELECT COUNT(*) FROM friend_requests WHERE from_id = ? AND to_id = ?`, fromID, toID,
	).Scan(&n)
	if n > 0 {
		return ErrRequestPending
	}
	if _, err := s.db.Exec(
		`INSERT INTO friend_requests (from_id, to_id, created_at) VALUES (?, ?, ?)`,
		fromID, toID, time.Now().UnixMilli(),
	); err != nil {
		return fmt.Errorf("file friend request: %w", err)
	}
	return nil
}

// AcceptFriend consumes a pending request and links both users.
func (s *UserStore) AcceptFriend(fromID, toID string) error {
	res, err := s.db.Exec(
		`DELETE FROM friend_requests WHERE from_id = ? AND to_id = ?`, fromID, toID,
	)
	if err != nil {
		return fmt.Errorf("consume friend request: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNoSuchRequest
	}
	for _, pair := range [][2]string{{fromID, toID}, {toID, fromID}} {
		if _, err := s.db.Exec(
			`INSERT OR IGNORE INTO friends (user_id, friend_id) VALUES (?, ?)`,
			pair[0], pair[1],
		); err != nil {
			return fmt.Errorf("link friends: %w", err)
		}
	}
	return nil
}

// Block suppresses private messages from blockedID to userID.
func (s *UserStore) Block(userID, blockedID string) error {
	if _, err := s.db.Exec(
		`INSERT OR IGNORE INTO blocks (user_id, blocked_id) VALUES (?, ?)`,
		userID, blockedID,
	); err != nil {
		return fmt.Errorf("block user: %w", err)
	}
	return nil
}

// IsBlocked reports whether userID has blocked senderID.
func (s *UserStore) IsBlocked(userID, senderID string) bool {
	var n int
	s.db.QueryRow(
		`SELECT COUNT(*) FROM blocks WHERE user_id = ? AND blocked_id = ?`,
		userID, senderID,
	).Scan(&n)
	return n > 0
}

// Friends lists a user's friend names.
func (s *UserStore) Friends(id string) ([]string, error) {
	rows, err := s.db.Query(
		`SELECT u.username FROM friends f JOIN users u ON u.id = f.friend_id
		 WHERE f.user_id = ? ORDER BY u.username_lc`, id,
	)
	if err != nil {
		return nil, fmt.Errorf("list friends: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan friend row: %w", err)
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

// FriendIDs lists a user's friend ids, for targeted notifications.
func (s *UserStore) FriendIDs(id string) ([]string, error) {
	rows, err := s.db.Query(`SELECT friend_id FROM friends WHERE user_id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("list friend ids: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var fid string
		if err := rows.Scan(&fid); err != nil {
			return nil, fmt.Errorf("scan friend id: %w", err)
		}
		out = append(out, fid)
	}
	return out, rows.Err()
}
