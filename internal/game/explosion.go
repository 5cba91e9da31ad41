package game

import (
	"math"

	"github.com/Cruelhelp/NeonVoid/internal/geom"
	"github.com/Cruelhelp/NeonVoid/internal/render"
	"github.com/Cruelhelp/NeonVoid/internal/vec"
)

const explosionDuration = 0.8

// newExplosion spawns an expanding, fading sphere shell at the
// origin. The caller positions it.
func (w *World) newExplosion(radius float64, color string) *Entity {
	if color == "" {
		color = "#ffff00"
	}

	m := render.NewMesh(geom.Sphere(radius*2, color))
	m.Rotation = vec.New(
		w.rng.Float64()*math.Pi*2,
		w.rng.Float64()*math.Pi*2,
		w.rng.Float64()*math.Pi*2,
	)

	return w.register(&Entity{
		Kind:     KindExplosion,
		Mesh:     m,
		Radius:   radius,
		Color:    color,
		Lifetime: explosionDuration,
	})
}

func updateExplosion(w *World, e *Entity, dt float64) {
	e.Age += dt

	p := e.Age / e.Lifetime
	if p >= 1 {
		w.destroy(e)
		return
	}

	eased := vec.EaseOutExpo(p)
	e.Mesh.Scale = vec.Splat(1 + eased*2)
	e.Mesh.Alpha = 1 - eased
}
