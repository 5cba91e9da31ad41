package game

import (
	"github.com/Cruelhelp/NeonVoid/internal/render"
	"github.com/Cruelhelp/NeonVoid/internal/vec"
)

// Kind tags an entity's variant. Behavior dispatches on the tag, not
// on a type hierarchy.
type Kind int

const (
	KindPlayer Kind = iota
	KindEnemy
	KindAsteroid
	KindAsteroidPiece
	KindBullet
	KindEnemyBullet
	KindExplosion
	KindRemotePlayer
)

func (k Kind) String() string {
	switch k {
	case KindPlayer:
		return "player"
	case KindEnemy:
		return "enemy"
	case KindAsteroid:
		return "asteroid"
	case KindAsteroidPiece:
		return "asteroid-piece"
	case KindBullet:
		return "bullet"
	case KindEnemyBullet:
		return "enemy-bullet"
	case KindExplosion:
		return "explosion"
	case KindRemotePlayer:
		return "remote-player"
	}
	return "unknown"
}

// Entity is a flat game-object record: one mesh, one velocity, and
// whichever variant fields its kind uses. The zero value of an unused
// field is inert.
type Entity struct {
	Kind  Kind
	Mesh  *render.Mesh
	Alive bool

	Velocity vec.V3

	// Asteroid and explosion sizing.
	Radius float64
	Color  string

	// Combat state. Damage is what a bullet deals on hit.
	Health    float64
	MaxHealth float64
	Damage    float64

	// Bullet travel and expiry. Direction is a unit vector; Age
	// accumulates toward Lifetime.
	Direction vec.V3
	Speed     float64
	Age       float64
	Lifetime  float64

	// Firing cooldown clock, counts up since the last shot.
	SinceShot float64

	// Player damage grace period.
	Invulnerable bool
	InvulnTime   float64
	blinkTimer   float64

	// Enemy tuning snapshot.
	Enemy EnemyStats

	// Remote player identity. Downed marks a remote player killed
	// but still registered, pending a respawn event.
	ID     string
	Name   string
	Downed bool
}

// Position returns the entity's world position.
func (e *Entity) Position() vec.V3 {
	return e.Mesh.Position
}

// update advances one entity by dt. Spawn-order iteration and the
// alive check are the world's job.
func (e *Entity) update(w *World, dt float64) {
	switch e.Kind {
	case KindPlayer:
		updatePlayer(w, e, dt)
	case KindEnemy:
		updateEnemy(w, e, dt)
	case KindAsteroid:
		updateAsteroid(w, e, dt)
	case KindAsteroidPiece:
		updateAsteroidPiece(w, e, dt)
	case KindBullet:
		updateBullet(w, e, dt)
	case KindEnemyBullet:
		updateEnemyBullet(w, e, dt)
	case KindExplosion:
		updateExplosion(w, e, dt)
	case KindRemotePlayer:
		// Snapshot-applied by the network layer; no local physics.
	}
}
