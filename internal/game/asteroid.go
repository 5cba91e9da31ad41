package game

import (
	"math"

	"github.com/Cruelhelp/NeonVoid/internal/geom"
	"github.com/Cruelhelp/NeonVoid/internal/render"
	"github.com/Cruelhelp/NeonVoid/internal/vec"
)

const (
	// Asteroids above this radius split into half-size children.
	asteroidSplitRadius = 30.0
	asteroidShake       = 8.0
	pieceImpulseError   = 10.0
	pieceScaleJitter    = 0.5
)

// newAsteroid spawns an asteroid with a random palette color and a
// random drift velocity scaled by the current level.
func (w *World) newAsteroid(radius float64) *Entity {
	color := asteroidColors[w.rng.Intn(len(asteroidColors))]

	vr := 80 + float64(w.state.Level)*10
	velocity := vec.New(
		w.rng.Float64()*vr-vr/2,
		w.rng.Float64()*vr-vr/2,
		0,
	)

	return w.register(&Entity{
		Kind:     KindAsteroid,
		Mesh:     render.NewMesh(geom.Sphere(radius, color)),
		Velocity: velocity,
		Radius:   radius,
		Color:    color,
	})
}

func updateAsteroid(w *World, e *Entity, dt float64) {
	ng := e.Velocity.X * dt / 100
	e.Mesh.Rotate(ng, ng*0.6, ng*0.2)
	e.Mesh.Translate(e.Velocity.X*dt, e.Velocity.Y*dt, e.Velocity.Z*dt)

	// Wrap at screen edges, reappearing on the opposite side.
	r := e.Radius
	p := &e.Mesh.Position
	if p.X > w.width/2+r {
		p.X = -w.width/2 - r
	}
	if p.X < -w.width/2-r {
		p.X = w.width/2 + r
	}
	if p.Y > w.height/2+r {
		p.Y = -w.height/2 - r
	}
	if p.Y < -w.height/2-r {
		p.Y = w.height/2 + r
	}
}

// explodeAsteroid destroys an asteroid: debris pieces fly out, large
// rocks split into half-size children, score scales inversely with
// radius. The split cascade terminates because the radius halves each
// generation.
func (w *World) explodeAsteroid(e *Entity) {
	w.spawnAsteroidDebris(e)
	w.destroy(e)

	exp := w.newExplosion(e.Radius, e.Color)
	exp.Mesh.Position = e.Mesh.Position

	w.AddShake(asteroidShake)

	w.state.Score += int(math.Floor(100 / e.Radius * 10))
	w.state.AsteroidsDestroyed++

	w.checkLevelComplete()
}

func (w *World) spawnAsteroidDebris(e *Entity) {
	piecesRange := math.Floor(e.Radius / 2)
	piecesCount := int(math.Floor(w.rng.Float64()*piecesRange) + piecesRange/2)

	for i := 0; i < piecesCount; i++ {
		angle := w.rng.Float64() * math.Pi * 2
		target := e.Mesh.Position.Add(vec.New(
			math.Cos(angle)*e.Radius*1.5,
			math.Sin(angle)*e.Radius*1.5,
			0,
		))
		impulse := target.Sub(e.Mesh.Position).Mul(7)

		piece := w.newAsteroidPiece(impulse, e.Radius/2, e.Color)
		piece.Mesh.Position = target
	}

	if e.Radius > asteroidSplitRadius {
		children := int(math.Floor(e.Radius / 20))
		for i := 0; i < children; i++ {
			child := w.newAsteroid(e.Radius / 2)
			child.Mesh.Position = e.Mesh.Position
			kick := vec.New(w.rng.Float64()-0.5, w.rng.Float64()-0.5, 0).Mul(150)
			child.Velocity = child.Velocity.Add(kick)
		}
	}
}

// newAsteroidPiece spawns inert debris with velocity and scale
// jitter. Pure decoration, no collision.
func (w *World) newAsteroidPiece(impulse vec.V3, size float64, color string) *Entity {
	m := render.NewMesh(geom.Pyramid(size, color))
	m.Scale = vec.New(
		1+w.rng.Float64()*pieceScaleJitter-pieceScaleJitter/2,
		1+w.rng.Float64()*pieceScaleJitter-pieceScaleJitter/2,
		1+w.rng.Float64()*pieceScaleJitter-pieceScaleJitter/2,
	)

	jitter := vec.New(w.rng.Float64(), w.rng.Float64(), w.rng.Float64()).Mul(pieceImpulseError)

	return w.register(&Entity{
		Kind:     KindAsteroidPiece,
		Mesh:     m,
		Velocity: impulse.Add(jitter),
		Color:    color,
	})
}

func updateAsteroidPiece(w *World, e *Entity, dt float64) {
	e.Mesh.Translate(e.Velocity.X*dt, e.Velocity.Y*dt, e.Velocity.Z*dt)

	spin := e.Velocity.Mul(dt * 0.01)
	e.Mesh.Rotate(spin.X, spin.Y, spin.Z)

	if w.outOfBounds(e.Mesh.Position) {
		w.destroy(e)
	}
}
