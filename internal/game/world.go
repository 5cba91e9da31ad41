package game

import (
	"math"
	"math/rand"

	"github.com/Cruelhelp/NeonVoid/internal/render"
	"github.com/Cruelhelp/NeonVoid/internal/vec"
)

// Screen is the top-level UI state the session is in.
type Screen int

const (
	ScreenMenu Screen = iota
	ScreenPlaying
	ScreenPaused
	ScreenLevelComplete
	ScreenGameOver
	ScreenVictory
)

// Mode selects single player or a networked room.
type Mode int

const (
	ModeSingle Mode = iota
	ModeMultiplayer
)

// PlayerConfig is the ship choice made in the menu.
type PlayerConfig struct {
	Name     string
	ShipType string
	Color    string
}

// State is the session-wide mutable game state. Reset at game start,
// mutated through a level, kept across levels until return to menu.
type State struct {
	Screen             Screen
	Mode               Mode
	Score              int
	Lives              int
	Level              int
	MaxLevel           int
	AsteroidsDestroyed int
	TotalAsteroids     int
	Paused             bool
	Config             PlayerConfig
	Health             float64
	MaxHealth          float64
	Shield             float64
	MaxShield          float64
}

// Snapshot is a read-only copy of the HUD-relevant state.
type Snapshot struct {
	Screen             Screen
	Mode               Mode
	Score              int
	Lives              int
	Level              int
	MaxLevel           int
	AsteroidsDestroyed int
	TotalAsteroids     int
	Health             float64
	MaxHealth          float64
}

// Events are the world's outbound hooks. The network layer fills them
// in multiplayer; nil hooks are skipped.
type Events struct {
	// ShotFired reports a local shot so peers can materialize the
	// bullet.
	ShotFired func(position, direction vec.V3, color string)
	// RemoteHit reports a local bullet touching a remote player.
	// The server owns the health bookkeeping.
	RemoteHit func(targetID string, damage float64)
}

// NameTag is a world-anchored text overlay, one per remote player.
type NameTag struct {
	Position vec.V3
	Text     string
	Color    string
}

const (
	defaultMaxLevel  = 10
	startLives       = 3
	shakeDecayFactor = 5
)

// World is the explicit game context: camera, live entities, session
// state and the frame clock. Exactly one world exists per session and
// it is passed to everything that needs it.
type World struct {
	Cam    *render.Camera
	state  State
	events Events
	rng    *rand.Rand

	width  float64
	height float64

	entities []*Entity
	player   *Entity
	remotes  map[string]*Entity
	input    Input

	time  float64
	shake float64
}

// NewWorld creates a world for the given canvas size. The camera
// rests at -focal on Z looking down the positive axis.
func NewWorld(width, height float64, rng *rand.Rand) *World {
	return &World{
		Cam: render.NewCamera(render.DefaultFocal),
		state: State{
			Screen:   ScreenMenu,
			Lives:    startLives,
			Level:    1,
			MaxLevel: defaultMaxLevel,
			Paused:   true,
			Config:   PlayerConfig{ShipType: DefaultShipType, Color: "#00ffff"},
		},
		rng:     rng,
		width:   width,
		height:  height,
		remotes: make(map[string]*Entity),
	}
}

// SetEvents installs the outbound hooks.
func (w *World) SetEvents(ev Events) { w.events = ev }

// Resize updates the playfield bounds. Positions are centered, so
// only the clamp and wrap extents change.
func (w *World) Resize(width, height float64) {
	w.width = width
	w.height = height
}

// Size returns the playfield bounds.
func (w *World) Size() (width, height float64) {
	return w.width, w.height
}

// Snapshot returns a read-only copy of the HUD state.
func (w *World) Snapshot() Snapshot {
	return Snapshot{
		Screen:             w.state.Screen,
		Mode:               w.state.Mode,
		Score:              w.state.Score,
		Lives:              w.state.Lives,
		Level:              w.state.Level,
		MaxLevel:           w.state.MaxLevel,
		AsteroidsDestroyed: w.state.AsteroidsDestroyed,
		TotalAsteroids:     w.state.TotalAsteroids,
		Health:             w.state.Health,
		MaxHealth:          w.state.MaxHealth,
	}
}

// Configure sets the menu ship choice for the next game.
func (w *World) Configure(cfg PlayerConfig) {
	if cfg.ShipType == "" {
		cfg.ShipType = DefaultShipType
	}
	w.state.Config = cfg
}

// SetMode selects single or multiplayer before starting.
func (w *World) SetMode(m Mode) { w.state.Mode = m }

// register appends an entity to the update and render lists. Spawn
// order is iteration order.
func (w *World) register(e *Entity) *Entity {
	e.Alive = true
	w.entities = append(w.entities, e)
	return e
}

// destroy marks an entity dead. The slice is compacted at the end of
// the frame so in-flight iteration stays valid.
func (w *World) destroy(e *Entity) {
	e.Alive = false
}

// Player returns the local player entity, nil outside a game.
func (w *World) Player() *Entity { return w.player }

// PlayerPosition returns the local player's position, zero when no
// game is running.
func (w *World) PlayerPosition() vec.V3 {
	if w.player == nil {
		return vec.V3{}
	}
	return w.player.Mesh.Position
}

// AddShake adds a camera shake impulse. Decays exponentially.
func (w *World) AddShake(v float64) { w.shake += v }

// Shake returns the current shake magnitude.
func (w *World) Shake() float64 { return w.shake }

// Step advances the simulation by dt with the given frame input.
// Entities update in spawn order over a snapshot of the live list, so
// entities spawned mid-frame first update next frame. Destroyed
// entities are compacted afterwards.
func (w *World) Step(in Input, dt float64) {
	w.input = in
	w.time += dt

	w.Cam.Shake(math.Sin(w.time*120)*w.shake, math.Cos(w.time*100)*w.shake)
	w.shake -= w.shake * dt * shakeDecayFactor

	live := w.entities
	for _, e := range live {
		if !e.Alive {
			continue
		}
		if w.state.Paused && e.Kind != KindExplosion && e.Kind != KindAsteroidPiece {
			continue
		}
		e.update(w, dt)
	}

	w.compact()
}

func (w *World) compact() {
	kept := w.entities[:0]
	for _, e := range w.entities {
		if e.Alive {
			kept = append(kept, e)
		}
	}
	for i := len(kept); i < len(w.entities); i++ {
		w.entities[i] = nil
	}
	w.entities = kept
}

// Meshes returns the live meshes in spawn order for rendering.
func (w *World) Meshes() []*render.Mesh {
	out := make([]*render.Mesh, 0, len(w.entities))
	for _, e := range w.entities {
		if e.Alive {
			out = append(out, e.Mesh)
		}
	}
	return out
}

// NameTags returns one overlay tag per live remote player.
func (w *World) NameTags() []NameTag {
	if len(w.remotes) == 0 {
		return nil
	}
	tags := make([]NameTag, 0, len(w.remotes))
	for _, e := range w.entities {
		if e.Alive && e.Kind == KindRemotePlayer && !e.Downed {
			tags = append(tags, NameTag{
				Position: e.Mesh.Position,
				Text:     e.Name,
				Color:    e.Color,
			})
		}
	}
	return tags
}

// outOfBounds reports whether a point left the visible playfield by
// more than the decoration margin.
func (w *World) outOfBounds(p vec.V3) bool {
	const margin = 100
	return p.X < -w.width/2-margin || p.X > w.width/2+margin ||
		p.Y < -w.height/2-margin || p.Y > w.height/2+margin
}

// countKind counts live entities of one kind.
func (w *World) countKind(k Kind) int {
	n := 0
	for _, e := range w.entities {
		if e.Alive && e.Kind == k {
			n++
		}
	}
	return n
}

// eachKind visits live entities of one kind in spawn order until the
// visitor returns false.
func (w *World) eachKind(k Kind, f func(*Entity) bool) {
	for _, e := range w.entities {
		if e.Alive && e.Kind == k {
			if !f(e) {
				return
			}
		}
	}
}
