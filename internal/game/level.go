package game

import "math"

const (
	asteroidSpawnExclusion = 200.0
	enemySpawnExclusion    = 300.0
	firstEnemyLevel        = 3
)

// StartGame resets session state, clears every entity and spawns the
// first level.
func (w *World) StartGame() {
	w.state.Screen = ScreenPlaying
	w.state.Score = 0
	w.state.Lives = startLives
	w.state.Level = 1
	w.state.Paused = false

	stats := ShipFor(w.state.Config.ShipType)
	w.state.Health = stats.Health
	w.state.MaxHealth = stats.Health
	w.state.Shield = 0
	w.state.MaxShield = stats.Armor / 2

	for _, e := range w.entities {
		w.destroy(e)
	}
	w.compact()
	w.remotes = make(map[string]*Entity)
	w.shake = 0

	w.player = newPlayer(w)
	w.spawnAsteroids()
	w.spawnEnemies()
}

// StartMultiplayerMatch begins a room match: a fresh game with the
// local player moved to its assigned spawn slot and every other room
// member materialized as a remote player.
func (w *World) StartMultiplayerMatch(localID string, players []RemotePlayerInfo) {
	w.state.Mode = ModeMultiplayer
	w.StartGame()

	for _, p := range players {
		if p.ID == localID {
			if w.player != nil {
				w.player.Mesh.Position = p.Position
			}
			continue
		}
		w.UpsertRemotePlayer(p)
	}
}

// NextLevel advances to the next level, or to victory past the last
// one. Asteroids, debris, enemies and hostile bullets are cleared;
// the player, score and lives carry over.
func (w *World) NextLevel() {
	w.state.Level++

	if w.state.Level > w.state.MaxLevel {
		w.victory()
		return
	}

	w.state.Paused = false
	w.state.Screen = ScreenPlaying

	for _, e := range w.entities {
		switch e.Kind {
		case KindAsteroid, KindAsteroidPiece, KindEnemy, KindEnemyBullet:
			w.destroy(e)
		}
	}
	w.compact()

	w.spawnAsteroids()
	w.spawnEnemies()
}

// spawnAsteroids seeds level N with 3N+2 asteroids, sized up with the
// level and kept clear of the player spawn at the center.
func (w *World) spawnAsteroids() {
	count := w.state.Level*3 + 2
	w.state.TotalAsteroids = count
	w.state.AsteroidsDestroyed = 0

	for i := 0; i < count; i++ {
		size := 25 + w.rng.Float64()*50 + float64(w.state.Level)*5
		a := w.newAsteroid(size)

		var x, y float64
		for {
			x = (w.rng.Float64() - 0.5) * (w.width - 200)
			y = (w.rng.Float64() - 0.5) * (w.height - 200)
			if math.Hypot(x, y) >= asteroidSpawnExclusion {
				break
			}
		}
		a.Mesh.Translate(x, y, 0)
	}
}

// spawnEnemies adds enemies from level 3 on, the mix shifting toward
// tougher types as levels climb.
func (w *World) spawnEnemies() {
	if w.state.Level < firstEnemyLevel {
		return
	}

	count := (w.state.Level - 2) / 2
	for i := 0; i < count; i++ {
		e := w.newEnemy(w.pickEnemyType())

		var x, y float64
		for {
			x = (w.rng.Float64() - 0.5) * (w.width - 300)
			y = (w.rng.Float64() - 0.5) * (w.height - 300)
			if math.Hypot(x, y) >= enemySpawnExclusion {
				break
			}
		}
		e.Mesh.Translate(x, y, 0)
	}
}

func (w *World) pickEnemyType() string {
	switch {
	case w.state.Level < 5:
		return "Scout"
	case w.state.Level < 7:
		if w.rng.Float64() < 0.6 {
			return "Scout"
		}
		return "Fighter"
	default:
		r := w.rng.Float64()
		switch {
		case r < 0.3:
			return "Scout"
		case r < 0.7:
			return "Fighter"
		default:
			return "Heavy"
		}
	}
}

// checkLevelComplete fires once when the last asteroid dies. Enemies
// and in-flight bullets do not block completion.
func (w *World) checkLevelComplete() {
	if w.state.Screen != ScreenPlaying {
		return
	}
	if w.countKind(KindAsteroid) > 0 {
		return
	}
	w.state.Paused = true
	w.state.Screen = ScreenLevelComplete
}

// TogglePause flips the pause state during active gameplay.
func (w *World) TogglePause() {
	if w.state.Screen != ScreenPlaying && !w.state.Paused {
		return
	}
	w.state.Paused = !w.state.Paused
	if w.state.Paused {
		w.state.Screen = ScreenPaused
	} else {
		w.state.Screen = ScreenPlaying
	}
}

func (w *World) gameOver() {
	w.state.Screen = ScreenGameOver
	w.state.Paused = true
}

func (w *World) victory() {
	w.state.Screen = ScreenVictory
	w.state.Paused = true
}

// ReturnToMenu tears the session down back to the menu.
func (w *World) ReturnToMenu() {
	w.state.Screen = ScreenMenu
	w.state.Paused = true

	for _, e := range w.entities {
		w.destroy(e)
	}
	w.compact()
	w.player = nil
	w.remotes = make(map[string]*Entity)
}
