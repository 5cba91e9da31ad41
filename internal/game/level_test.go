package game

import "testing"

func TestStartGameSpawnCounts(t *testing.T) {
	w := newTestWorld()
	w.StartGame()

	if n := w.countKind(KindAsteroid); n != 5 {
		t.Errorf("level 1 should spawn 3*1+2=5 asteroids, got %d", n)
	}
	if n := w.countKind(KindEnemy); n != 0 {
		t.Errorf("no enemies before level 3, got %d", n)
	}
	if w.state.TotalAsteroids != 5 {
		t.Errorf("expected total 5, got %d", w.state.TotalAsteroids)
	}
	if w.player == nil {
		t.Fatal("player should exist after start")
	}
	if w.state.Screen != ScreenPlaying || w.state.Paused {
		t.Error("game should be running after start")
	}
}

func TestAsteroidsSpawnAwayFromCenter(t *testing.T) {
	w := newTestWorld()
	w.StartGame()

	w.eachKind(KindAsteroid, func(a *Entity) bool {
		p := a.Mesh.Position
		if p.X*p.X+p.Y*p.Y < asteroidSpawnExclusion*asteroidSpawnExclusion {
			t.Errorf("asteroid spawned inside exclusion zone at (%f, %f)", p.X, p.Y)
		}
		return true
	})
}

func TestEnemyCountGrowsWithLevel(t *testing.T) {
	w := newTestWorld()
	w.StartGame()

	// floor((level-2)/2): none at 3, one at 4, two at 6.
	w.state.Level = 3
	w.spawnEnemies()
	if n := w.countKind(KindEnemy); n != 0 {
		t.Errorf("level 3 should spawn 0 enemies, got %d", n)
	}

	w.state.Level = 4
	w.spawnEnemies()
	if n := w.countKind(KindEnemy); n != 1 {
		t.Errorf("level 4 should spawn 1 enemy, got %d", n)
	}

	w.state.Level = 6
	w.spawnEnemies()
	if n := w.countKind(KindEnemy); n != 1+2 {
		t.Errorf("level 6 should add 2 more enemies, got %d total", n)
	}
}

func TestLevelCompleteFiresExactlyOnce(t *testing.T) {
	w := newTestWorld()
	w.StartGame()

	// Destroy asteroids until the field is clear, splits included.
	for i := 0; i < 100 && w.countKind(KindAsteroid) > 0; i++ {
		var target *Entity
		w.eachKind(KindAsteroid, func(a *Entity) bool {
			target = a
			return false
		})
		w.explodeAsteroid(target)
	}

	if n := w.countKind(KindAsteroid); n != 0 {
		t.Fatalf("field should be clear, %d asteroids left", n)
	}
	if w.state.Screen != ScreenLevelComplete {
		t.Fatalf("expected level-complete screen, got %v", w.state.Screen)
	}
	if !w.state.Paused {
		t.Error("level complete should pause the game")
	}
	if w.state.AsteroidsDestroyed < w.state.TotalAsteroids {
		t.Errorf("destroyed %d of %d", w.state.AsteroidsDestroyed, w.state.TotalAsteroids)
	}
}

func TestNextLevelClearsHostiles(t *testing.T) {
	w := newTestWorld()
	w.StartGame()
	w.state.Level = 4

	e := w.newEnemy("Scout")
	_ = e
	w.NextLevel() // -> 5

	if w.state.Level != 5 {
		t.Fatalf("expected level 5, got %d", w.state.Level)
	}
	if n := w.countKind(KindAsteroid); n != 3*5+2 {
		t.Errorf("level 5 should respawn 17 asteroids, got %d", n)
	}
	if e.Alive {
		t.Error("enemies from the previous level should be cleared")
	}
	if w.player == nil || !w.player.Alive {
		t.Error("player should carry over between levels")
	}
}

func TestVictoryPastMaxLevel(t *testing.T) {
	w := newTestWorld()
	w.StartGame()
	w.state.Level = w.state.MaxLevel

	w.NextLevel()

	if w.state.Screen != ScreenVictory {
		t.Errorf("expected victory, got %v", w.state.Screen)
	}
}

func TestTogglePause(t *testing.T) {
	w := newTestWorld()
	w.StartGame()

	w.TogglePause()
	if !w.state.Paused || w.state.Screen != ScreenPaused {
		t.Error("first toggle should pause")
	}
	w.TogglePause()
	if w.state.Paused || w.state.Screen != ScreenPlaying {
		t.Error("second toggle should resume")
	}

	// Pausing from the menu is a no-op.
	w.ReturnToMenu()
	w.TogglePause()
	if w.state.Screen != ScreenMenu {
		t.Error("pause should be ignored outside gameplay")
	}
}

func TestReturnToMenuClearsEntities(t *testing.T) {
	w := newTestWorld()
	w.StartGame()
	w.ReturnToMenu()

	if len(w.entities) != 0 {
		t.Errorf("menu should have no live entities, got %d", len(w.entities))
	}
	if w.player != nil {
		t.Error("player reference should be dropped")
	}
}
