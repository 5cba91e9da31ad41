package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"runtime"
	"time"

	"go.uber.org/zap"

	"github.com/Cruelhelp/NeonVoid/internal/config"
	"github.com/Cruelhelp/NeonVoid/internal/game"
	"github.com/Cruelhelp/NeonVoid/internal/logger"
	"github.com/Cruelhelp/NeonVoid/internal/netsync"
	"github.com/Cruelhelp/NeonVoid/internal/render"
)

func init() {
	// SDL calls must stay on the main thread
	runtime.LockOSThread()
}

const (
	maxFrameDt   = 0.1
	respawnDelay = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml")
	connect := flag.String("connect", "", "Room server URL, e.g. ws://host:8080/ws (empty = solo play)")
	roomCode := flag.String("room", "", "Room code to join (empty = create a room)")
	name := flag.String("name", "", "Player name (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}
	if *name != "" {
		cfg.Network.PlayerName = *name
	}
	if cfg.Network.PlayerName == "" {
		cfg.Network.PlayerName = "Pilot"
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		os.Stderr.WriteString("logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.Log

	disp, err := newDisplay("NEON VOID", cfg.Graphics.Width, cfg.Graphics.Height,
		cfg.Graphics.VSync, cfg.Graphics.Bloom)
	if err != nil {
		log.Fatal("display", zap.Error(err))
	}
	defer disp.close()

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	world := game.NewWorld(float64(cfg.Graphics.Width), float64(cfg.Graphics.Height), rng)
	world.Configure(game.PlayerConfig{
		Name:     cfg.Network.PlayerName,
		ShipType: cfg.Game.ShipType,
	})

	rcfg := render.DefaultConfig(cfg.Graphics.Width, cfg.Graphics.Height)
	rcfg.Wireframe = cfg.Graphics.Wireframe || rcfg.Wireframe
	rcfg.Stars = cfg.Graphics.Stars
	if cfg.Graphics.Focal > 0 {
		rcfg.Focal = cfg.Graphics.Focal
	}
	renderer := render.New(rcfg, rng)

	var net *netsync.Client
	if *connect != "" {
		net, err = netsync.Dial(*connect, log)
		if err != nil {
			log.Fatal("connect", zap.Error(err))
		}
		defer net.Close()
		net.BindWorld(world)
		net.RegisterUser(cfg.Network.PlayerName, "")
		if *roomCode != "" {
			net.JoinRoom(*roomCode, cfg.Network.PlayerName)
		} else {
			net.CreateRoom(cfg.Network.PlayerName)
		}
		net.Ready(true, cfg.Game.ShipType, "")
		log.Info("connected", zap.String("server", *connect))
	}

	in := newInputState(cfg.Graphics.Width, cfg.Graphics.Height)
	pushEvery := netsync.PushInterval
	if cfg.Network.PushHz > 0 {
		pushEvery = time.Second / time.Duration(cfg.Network.PushHz)
	}
	pushTicker := time.NewTicker(pushEvery)
	defer pushTicker.Stop()

	last := time.Now()
	running := true
	var deadSince time.Time
	frames := 0
	fpsMark := last
	for running {
		now := time.Now()
		dt := now.Sub(last).Seconds()
		last = now
		if dt > maxFrameDt {
			dt = maxFrameDt
		}

		for _, a := range in.poll() {
			switch a {
			case actionQuit:
				running = false
			case actionConfirm:
				handleConfirm(world, net)
			case actionPause:
				world.TogglePause()
			case actionRespawn:
				if net != nil && world.Snapshot().Health <= 0 {
					net.Respawn()
				}
			case actionToggleWireframe:
				rcfg.Wireframe = !rcfg.Wireframe
				renderer = render.New(rcfg, rng)
			}
		}

		if int32(in.width) != disp.width || int32(in.height) != disp.height {
			disp.resize(int32(in.width), int32(in.height))
			world.Resize(in.width, in.height)
			renderer.Resize(int(in.width), int(in.height))
		}

		if net != nil {
			net.Apply(world)
			select {
			case <-pushTicker.C:
				if world.Snapshot().Screen == game.ScreenPlaying {
					net.PushState(world)
				}
			default:
			}

			// Dead players come back automatically after the delay;
			// R respawns sooner.
			if world.Snapshot().Health <= 0 && world.Snapshot().Screen == game.ScreenPlaying {
				if deadSince.IsZero() {
					deadSince = now
				} else if now.Sub(deadSince) >= respawnDelay {
					net.Respawn()
					deadSince = time.Time{}
				}
			} else {
				deadSince = time.Time{}
			}
		}

		world.Step(in.gameInput(world), dt)

		tags := world.NameTags()
		labels := make([]render.Label, 0, len(tags))
		for _, t := range tags {
			x, y, ok := renderer.Project(t.Position.Sub(world.Cam.Position))
			if !ok {
				continue
			}
			labels = append(labels, render.Label{X: x, Y: y, Text: t.Text, Color: t.Color})
		}
		disp.present(renderer.BuildFrame(world.Meshes(), world.Cam, labels))

		if cfg.Game.ShowFPS {
			frames++
			if now.Sub(fpsMark) >= time.Second {
				disp.window.SetTitle(fmt.Sprintf("NEON VOID (%d fps)", frames))
				frames = 0
				fpsMark = now
			}
		}
	}

	if net != nil {
		net.LeaveRoom()
	}
}

// handleConfirm advances whatever screen is waiting on the player.
func handleConfirm(w *game.World, net *netsync.Client) {
	switch w.Snapshot().Screen {
	case game.ScreenMenu:
		if net != nil {
			// The server decides when the match starts; only the
			// host's confirm does anything.
			net.StartGame()
			return
		}
		w.StartGame()
	case game.ScreenLevelComplete:
		w.NextLevel()
	case game.ScreenGameOver, game.ScreenVictory:
		w.ReturnToMenu()
	}
}
