package game

// Input is the normalized per-frame input contract. Every source
// device (keyboard, mouse, touch joystick) fills the same struct; the
// player entity never sees raw events.
type Input struct {
	// MoveX and MoveY are the movement axes in [-1, 1].
	MoveX float64
	MoveY float64
	// Firing is true while the fire control is held.
	Firing bool
	// AimAngle is the world-plane angle from the player to the
	// aim point, in radians.
	AimAngle float64
}
