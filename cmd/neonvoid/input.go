package main

import (
	"math"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/Cruelhelp/NeonVoid/internal/game"
)

// action is a one-shot UI command decoded from the event stream, as
// opposed to the held movement state.
type action int

const (
	actionNone action = iota
	actionQuit
	actionConfirm // start game / next level / back to menu
	actionPause
	actionRespawn
	actionToggleWireframe
)

// inputState tracks held keys and the mouse between frames.
type inputState struct {
	up, down, left, right bool
	firing                bool
	mouseX, mouseY        float64
	width, height         float64
}

func newInputState(width, height int) *inputState {
	return &inputState{width: float64(width), height: float64(height)}
}

// poll drains the SDL event queue. It returns any one-shot actions
// and updates the held state in place.
func (s *inputState) poll() []action {
	var actions []action
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			actions = append(actions, actionQuit)

		case *sdl.WindowEvent:
			if e.Event == sdl.WINDOWEVENT_RESIZED {
				s.width = float64(e.Data1)
				s.height = float64(e.Data2)
			}

		case *sdl.KeyboardEvent:
			pressed := e.Type == sdl.KEYDOWN
			switch e.Keysym.Scancode {
			case sdl.SCANCODE_W, sdl.SCANCODE_UP:
				s.up = pressed
			case sdl.SCANCODE_S, sdl.SCANCODE_DOWN:
				s.down = pressed
			case sdl.SCANCODE_A, sdl.SCANCODE_LEFT:
				s.left = pressed
			case sdl.SCANCODE_D, sdl.SCANCODE_RIGHT:
				s.right = pressed
			case sdl.SCANCODE_SPACE:
				s.firing = pressed
			case sdl.SCANCODE_RETURN:
				if pressed && e.Repeat == 0 {
					actions = append(actions, actionConfirm)
				}
			case sdl.SCANCODE_P, sdl.SCANCODE_ESCAPE:
				if pressed && e.Repeat == 0 {
					actions = append(actions, actionPause)
				}
			case sdl.SCANCODE_R:
				if pressed && e.Repeat == 0 {
					actions = append(actions, actionRespawn)
				}
			case sdl.SCANCODE_F1:
				if pressed && e.Repeat == 0 {
					actions = append(actions, actionToggleWireframe)
				}
			}

		case *sdl.MouseMotionEvent:
			s.mouseX = float64(e.X)
			s.mouseY = float64(e.Y)

		case *sdl.MouseButtonEvent:
			if e.Button == sdl.BUTTON_LEFT {
				s.firing = e.Type == sdl.MOUSEBUTTONDOWN
			}
		}
	}
	return actions
}

// gameInput converts the held state into the world's input contract.
// The aim angle runs from the player's screen position to the cursor.
func (s *inputState) gameInput(w *game.World) game.Input {
	var in game.Input
	if s.left {
		in.MoveX -= 1
	}
	if s.right {
		in.MoveX += 1
	}
	if s.up {
		in.MoveY -= 1
	}
	if s.down {
		in.MoveY += 1
	}
	in.Firing = s.firing

	p := w.PlayerPosition()
	px := s.width/2 + p.X
	py := s.height/2 + p.Y
	in.AimAngle = math.Atan2(s.mouseY-py, s.mouseX-px)
	return in
}
