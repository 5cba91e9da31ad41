package game

import (
	"github.com/Cruelhelp/NeonVoid/internal/geom"
	"github.com/Cruelhelp/NeonVoid/internal/render"
	"github.com/Cruelhelp/NeonVoid/internal/vec"
)

const (
	bulletLifetime    = 3.0
	bulletSpinPerTick = 0.15
	enemyBulletSpeed  = 800.0
	enemyBulletSize   = 6.0
	enemyHitRadius    = 20.0
	playerHitRadius   = 25.0
	remoteHitRadius   = 25.0
	remoteHitDamage   = 25.0
	enemyBulletDamage = 15.0
)

// newBullet spawns a player bullet heading along dir at the weapon's
// speed.
func (w *World) newBullet(dir vec.V3, weapon WeaponStats, color string) *Entity {
	if color == "" {
		color = weapon.Color
	}
	tris := orientNose(geom.Pyramid(weapon.Size, color), weapon.Size/2)

	m := render.NewMesh(tris)
	m.Order = render.OrderXYZ

	return w.register(&Entity{
		Kind:      KindBullet,
		Mesh:      m,
		Direction: dir,
		Speed:     weapon.Speed,
		Damage:    weapon.Damage,
		Lifetime:  bulletLifetime,
	})
}

// newEnemyBullet spawns a hostile bullet heading along dir.
func (w *World) newEnemyBullet(dir vec.V3, color string) *Entity {
	if color == "" {
		color = "#ff0088"
	}
	tris := orientNose(geom.Pyramid(enemyBulletSize, color), enemyBulletSize/2)

	m := render.NewMesh(tris)
	m.Order = render.OrderXYZ

	return w.register(&Entity{
		Kind:      KindEnemyBullet,
		Mesh:      m,
		Direction: dir,
		Speed:     enemyBulletSpeed,
		Lifetime:  bulletLifetime,
	})
}

func updateBullet(w *World, e *Entity, dt float64) {
	if !advanceBullet(w, e, dt) {
		return
	}

	hit := false
	w.eachKind(KindAsteroid, func(a *Entity) bool {
		if e.Mesh.Position.Distance(a.Mesh.Position) < a.Radius {
			w.explodeAsteroid(a)
			w.destroy(e)
			hit = true
			return false
		}
		return true
	})
	if hit {
		return
	}

	// Peer bullets carry their owner's id and never claim hits.
	if w.state.Mode == ModeMultiplayer && e.ID == "" {
		w.checkRemotePlayerHit(e)
	}
}

func updateEnemyBullet(w *World, e *Entity, dt float64) {
	if !advanceBullet(w, e, dt) {
		return
	}
	if w.player == nil {
		return
	}
	if e.Mesh.Position.Distance(w.player.Mesh.Position) < playerHitRadius {
		w.DamagePlayer(enemyBulletDamage)
		w.destroy(e)
	}
}

// advanceBullet moves a bullet one tick, expiring it on lifetime or
// leaving the playfield. Returns false once the bullet is gone.
func advanceBullet(w *World, e *Entity, dt float64) bool {
	e.Age += dt
	if e.Age > e.Lifetime {
		w.destroy(e)
		return false
	}

	step := e.Direction.Mul(dt * e.Speed)
	e.Mesh.Translate(step.X, step.Y, step.Z)
	e.Mesh.Rotate(bulletSpinPerTick, 0, 0)

	if w.outOfBounds(e.Mesh.Position) {
		w.destroy(e)
		return false
	}
	return true
}

// checkRemotePlayerHit reports a proximity hit on any live remote
// player. The hit claim is the shooter's own; the server applies the
// damage to the authoritative health figure without validating the
// geometry. Known trust boundary, kept as is.
func (w *World) checkRemotePlayerHit(bullet *Entity) {
	for id, rp := range w.remotes {
		if !rp.Alive || rp.Downed {
			continue
		}
		if bullet.Mesh.Position.Distance(rp.Mesh.Position) < remoteHitRadius {
			if w.events.RemoteHit != nil {
				w.events.RemoteHit(id, remoteHitDamage)
			}
			w.destroy(bullet)
			return
		}
	}
}
