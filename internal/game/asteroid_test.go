package game

import (
	"math/rand"
	"testing"

	"github.com/Cruelhelp/NeonVoid/internal/vec"
)

func newTestWorld() *World {
	return NewWorld(800, 600, rand.New(rand.NewSource(42)))
}

func TestAsteroidSplitProducesHalfSizeChildren(t *testing.T) {
	w := newTestWorld()

	a := w.newAsteroid(40)
	w.explodeAsteroid(a)

	if a.Alive {
		t.Error("exploded asteroid should be destroyed")
	}

	children := 0
	w.eachKind(KindAsteroid, func(c *Entity) bool {
		children++
		if c.Radius != 20 {
			t.Errorf("child radius should be 20, got %f", c.Radius)
		}
		return true
	})
	if children != 2 {
		t.Errorf("radius-40 asteroid should split into 2 children, got %d", children)
	}
}

func TestSmallAsteroidDoesNotSplit(t *testing.T) {
	w := newTestWorld()

	a := w.newAsteroid(20)
	w.explodeAsteroid(a)

	if n := w.countKind(KindAsteroid); n != 0 {
		t.Errorf("radius-20 asteroid should produce no children, got %d", n)
	}
}

func TestAsteroidExplodeAwardsScore(t *testing.T) {
	w := newTestWorld()

	a := w.newAsteroid(20)
	w.explodeAsteroid(a)

	// floor(100/20*10) = 50
	if w.state.Score != 50 {
		t.Errorf("expected score 50, got %d", w.state.Score)
	}
	if w.state.AsteroidsDestroyed != 1 {
		t.Errorf("expected 1 destroyed, got %d", w.state.AsteroidsDestroyed)
	}
	if w.shake < asteroidShake {
		t.Errorf("explosion should add shake, got %f", w.shake)
	}
}

func TestAsteroidExplodeSpawnsDebrisAndExplosion(t *testing.T) {
	w := newTestWorld()

	a := w.newAsteroid(20)
	w.explodeAsteroid(a)

	if n := w.countKind(KindAsteroidPiece); n == 0 {
		t.Error("explosion should spawn debris pieces")
	}
	if n := w.countKind(KindExplosion); n != 1 {
		t.Errorf("expected 1 explosion entity, got %d", n)
	}
}

func TestAsteroidWrapsAtEdges(t *testing.T) {
	w := newTestWorld()

	a := w.newAsteroid(20)
	a.Velocity = vec.New(100, 0, 0)
	a.Mesh.Position = vec.New(w.width/2+a.Radius, 0, 0)

	updateAsteroid(w, a, 0.1)

	if a.Mesh.Position.X > 0 {
		t.Errorf("asteroid should wrap to the far side, got x=%f", a.Mesh.Position.X)
	}
}

func TestAsteroidPieceExpiresOffscreen(t *testing.T) {
	w := newTestWorld()

	p := w.newAsteroidPiece(vec.V3{}, 8, "#ff0044")
	p.Velocity = vec.V3{}
	p.Mesh.Position = vec.New(w.width/2+200, 0, 0)

	updateAsteroidPiece(w, p, 0.016)

	if p.Alive {
		t.Error("offscreen debris should self-destruct")
	}
}
