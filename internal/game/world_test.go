package game

import (
	"testing"

	"github.com/Cruelhelp/NeonVoid/internal/vec"
)

func TestStepCompactsDestroyedEntities(t *testing.T) {
	w := newTestWorld()
	w.state.Screen = ScreenPlaying
	w.state.Paused = false

	b := w.newBullet(vec.New(1, 0, 0), WeaponTable["laser"], "#00ffff")
	b.Age = bulletLifetime + 1

	w.Step(Input{}, 0.016)

	if len(w.entities) != 0 {
		t.Errorf("dead entities should be compacted after the step, got %d", len(w.entities))
	}
	if len(w.Meshes()) != 0 {
		t.Errorf("dead meshes should leave the render list")
	}
}

func TestShakeDecays(t *testing.T) {
	w := newTestWorld()
	w.AddShake(10)

	w.Step(Input{}, 0.1)

	// shake -= shake*dt*5
	if w.Shake() != 5 {
		t.Errorf("expected shake 5 after decay, got %f", w.Shake())
	}

	// Camera keeps its focal rest depth while shaking laterally.
	if w.Cam.Position.Z != -500 {
		t.Errorf("shake must not move the camera off its rest depth, z=%f", w.Cam.Position.Z)
	}
}

func TestPauseFreezesGameplayEntities(t *testing.T) {
	w := newTestWorld()
	w.StartGame()
	w.TogglePause()

	before := w.PlayerPosition()
	w.Step(Input{MoveX: 1}, 0.1)

	if got := w.PlayerPosition(); got != before {
		t.Errorf("paused player should not move, was %v now %v", before, got)
	}
}

func TestPauseKeepsDecorationRunning(t *testing.T) {
	w := newTestWorld()
	w.StartGame()
	w.TogglePause()

	exp := w.newExplosion(20, "#ffff00")
	w.Step(Input{}, 0.1)

	if exp.Age == 0 {
		t.Error("explosions should keep animating while paused")
	}
}

func TestSnapshotMirrorsState(t *testing.T) {
	w := newTestWorld()
	w.StartGame()
	w.state.Score = 123

	s := w.Snapshot()
	if s.Score != 123 || s.Level != 1 || s.Lives != startLives {
		t.Errorf("snapshot mismatch: %+v", s)
	}
	if s.TotalAsteroids != 5 {
		t.Errorf("expected 5 total asteroids, got %d", s.TotalAsteroids)
	}
	if s.Screen != ScreenPlaying {
		t.Errorf("expected playing screen, got %v", s.Screen)
	}
}

func TestMeshesFollowSpawnOrder(t *testing.T) {
	w := newTestWorld()

	a := w.newAsteroid(20)
	b := w.newAsteroid(30)

	meshes := w.Meshes()
	if len(meshes) != 2 || meshes[0] != a.Mesh || meshes[1] != b.Mesh {
		t.Error("render list should follow spawn order")
	}
}
