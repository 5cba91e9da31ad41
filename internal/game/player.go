package game

import (
	"math"

	"github.com/Cruelhelp/NeonVoid/internal/geom"
	"github.com/Cruelhelp/NeonVoid/internal/render"
	"github.com/Cruelhelp/NeonVoid/internal/vec"
)

const (
	playerMaxSpeed    = 400.0
	playerDamping     = 0.98
	playerEdgeMargin  = 50.0
	playerInvulnTime  = 2.0
	playerSpinRate    = 2.0
	asteroidHitMargin = 20.0
)

// newPlayer spawns the local player at the origin using the menu ship
// choice. The hull points down +X at rest so the aim angle maps
// straight onto the Z rotation.
func newPlayer(w *World) *Entity {
	cfg := w.state.Config
	tris := geom.Ship(cfg.ShipType, cfg.Color)
	tris = orientNose(tris, 4)

	m := render.NewMesh(tris)
	m.Order = render.OrderXYZ

	return w.register(&Entity{
		Kind: KindPlayer,
		Mesh: m,
	})
}

// orientNose turns forward-facing geometry so the apex points along
// +X, then nudges it ahead of the pivot.
func orientNose(tris []geom.Triangle, lead float64) []geom.Triangle {
	tris = render.RotateX(tris, math.Pi/2)
	tris = render.RotateZ(tris, math.Pi/2)
	return render.TranslateTris(tris, vec.New(lead, 0, 0))
}

func updatePlayer(w *World, e *Entity, dt float64) {
	stats := ShipFor(w.state.Config.ShipType)
	e.SinceShot += dt

	if e.Invulnerable {
		e.InvulnTime -= dt
		e.blinkTimer += dt
		if e.InvulnTime <= 0 {
			e.Invulnerable = false
			e.Mesh.Alpha = 1
		} else {
			e.Mesh.Alpha = math.Sin(e.blinkTimer*20)*0.5 + 0.5
		}
	}

	e.Mesh.Rotate(playerSpinRate*dt, 0, 0)
	e.Mesh.Rotation.Z = w.input.AimAngle

	e.Velocity = e.Velocity.Add(vec.New(w.input.MoveX, w.input.MoveY, 0).Mul(dt * stats.Speed))
	if speed := e.Velocity.Mag(); speed > playerMaxSpeed {
		e.Velocity = e.Velocity.Normalize().Mul(playerMaxSpeed)
	}

	e.Mesh.Translate(e.Velocity.X*dt, e.Velocity.Y*dt, 0)
	e.Velocity = e.Velocity.Mul(playerDamping)

	w.bouncePlayerOffEdges(e)
	w.checkPlayerAsteroidCollision(e)

	if w.input.Firing {
		w.playerShoot(e, stats)
	}
}

// bouncePlayerOffEdges clamps the player inside the margin and
// reflects velocity at half strength.
func (w *World) bouncePlayerOffEdges(e *Entity) {
	halfW := w.width/2 - playerEdgeMargin
	halfH := w.height/2 - playerEdgeMargin
	p := &e.Mesh.Position

	if p.X > halfW {
		p.X = halfW
		e.Velocity.X *= -0.5
	}
	if p.X < -halfW {
		p.X = -halfW
		e.Velocity.X *= -0.5
	}
	if p.Y > halfH {
		p.Y = halfH
		e.Velocity.Y *= -0.5
	}
	if p.Y < -halfH {
		p.Y = -halfH
		e.Velocity.Y *= -0.5
	}
}

func (w *World) checkPlayerAsteroidCollision(e *Entity) {
	if e.Invulnerable {
		return
	}
	w.eachKind(KindAsteroid, func(a *Entity) bool {
		if e.Mesh.Position.Distance(a.Mesh.Position) < a.Radius+asteroidHitMargin {
			w.playerHitByAsteroid(e)
			w.explodeAsteroid(a)
			return false
		}
		return true
	})
}

// playerHitByAsteroid costs a life and opens the invulnerability
// window.
func (w *World) playerHitByAsteroid(e *Entity) {
	w.state.Lives--
	w.AddShake(20)

	e.Invulnerable = true
	e.InvulnTime = playerInvulnTime
	e.blinkTimer = 0

	if w.state.Lives <= 0 {
		w.gameOver()
	}
}

// DamagePlayer applies weapon damage to the player's health pool.
// Armor shaves a fraction off, shield absorbs before health.
func (w *World) DamagePlayer(amount float64) {
	stats := ShipFor(w.state.Config.ShipType)
	actual := amount * (1 - stats.Armor/1000)

	if w.state.Shield > 0 {
		w.state.Shield -= actual
		if w.state.Shield < 0 {
			w.state.Health += w.state.Shield
			w.state.Shield = 0
		}
	} else {
		w.state.Health -= actual
	}

	if w.state.Health <= 0 {
		w.state.Health = 0
		// Room matches wait for the server's respawn instead of
		// ending the run.
		if w.state.Mode != ModeMultiplayer {
			w.gameOver()
		}
	}
}

// SetPlayerHealth overwrites the health pool with a server figure.
func (w *World) SetPlayerHealth(health float64) {
	w.state.Health = health
}

// RespawnPlayer teleports the player and restores full health.
func (w *World) RespawnPlayer(position vec.V3, health float64) {
	if w.player == nil {
		return
	}
	w.player.Mesh.Position = position
	w.player.Velocity = vec.V3{}
	w.state.Health = health
}

func (w *World) playerShoot(e *Entity, stats ShipStats) {
	if e.SinceShot < stats.FireRate || w.state.Paused {
		return
	}
	e.SinceShot = 0

	z := e.Mesh.Rotation.Z
	dir := vec.New(math.Cos(z), math.Sin(z), 0).Normalize()
	dir.Z = 0

	weapon := WeaponFor(w.state.Config.ShipType)
	b := w.newBullet(dir, weapon, w.state.Config.Color)
	b.Mesh.Position = e.Mesh.Position
	b.Mesh.Rotation.Z = z

	if w.state.Mode == ModeMultiplayer && w.events.ShotFired != nil {
		w.events.ShotFired(e.Mesh.Position, dir, w.state.Config.Color)
	}
}
