package game

import (
	"math"

	"github.com/Cruelhelp/NeonVoid/internal/geom"
	"github.com/Cruelhelp/NeonVoid/internal/render"
	"github.com/Cruelhelp/NeonVoid/internal/vec"
)

const (
	enemyStopRadius  = 100.0
	enemyFireRange   = 500.0
	enemyBulletHit   = 25.0
	enemyKillScore   = 100
	enemyDebrisCount = 8
	enemyDebrisSize  = 8.0
)

// newEnemy spawns an enemy of the given type at the origin. The hull
// is flipped so the nose faces the player side.
func (w *World) newEnemy(enemyType string) *Entity {
	stats := EnemyFor(enemyType)

	tris := render.RotateX(geom.Pyramid(stats.Size, stats.Color), math.Pi)
	m := render.NewMesh(tris)
	m.Order = render.OrderXYZ

	return w.register(&Entity{
		Kind:      KindEnemy,
		Mesh:      m,
		Health:    stats.Health,
		MaxHealth: stats.Health,
		Enemy:     stats,
		Color:     stats.Color,
	})
}

func updateEnemy(w *World, e *Entity, dt float64) {
	if w.player == nil {
		return
	}
	e.SinceShot += dt

	diff := w.player.Mesh.Position.Sub(e.Mesh.Position)
	dist := math.Hypot(diff.X, diff.Y)

	// Face the player.
	e.Mesh.Rotation.Z = math.Atan2(diff.Y, diff.X) + math.Pi

	// Close distance, scaled by aggression, holding off inside the
	// stop radius.
	if dist > enemyStopRadius {
		step := e.Enemy.Speed * dt * e.Enemy.Aggression
		e.Mesh.Translate(diff.X/dist*step, diff.Y/dist*step, 0)
	}

	if e.SinceShot > e.Enemy.FireRate && dist < enemyFireRange {
		e.SinceShot = 0
		angle := math.Atan2(diff.Y, diff.X)

		b := w.newEnemyBullet(vec.New(math.Cos(angle), math.Sin(angle), 0), e.Enemy.Color)
		b.Mesh.Position = e.Mesh.Position
		b.Mesh.Rotation.Z = angle
	}

	w.checkEnemyBulletHits(e)
}

func (w *World) checkEnemyBulletHits(e *Entity) {
	w.eachKind(KindBullet, func(b *Entity) bool {
		if e.Mesh.Position.Distance(b.Mesh.Position) < enemyHitRadius {
			w.destroy(b)
			w.damageEnemy(e, enemyBulletHit)
			return false
		}
		return true
	})
}

func (w *World) damageEnemy(e *Entity, amount float64) {
	e.Health -= amount
	if e.Health <= 0 {
		w.explodeEnemy(e)
	}
}

// explodeEnemy scatters radial debris and awards the kill score.
func (w *World) explodeEnemy(e *Entity) {
	for i := 0; i < enemyDebrisCount; i++ {
		angle := math.Pi * 2 * float64(i) / enemyDebrisCount
		speed := 100 + w.rng.Float64()*100

		piece := w.newAsteroidPiece(vec.V3{}, enemyDebrisSize, e.Enemy.Color)
		piece.Mesh.Position = e.Mesh.Position
		piece.Velocity = vec.New(math.Cos(angle)*speed, math.Sin(angle)*speed, 0)
	}

	w.state.Score += enemyKillScore
	w.destroy(e)
}
