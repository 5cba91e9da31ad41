package render

import "github.com/Cruelhelp/NeonVoid/internal/vec"

// Camera is the single scene camera. Gameplay never moves it freely;
// its position oscillates around the rest point for screen shake and
// its rotation stays zero. The rest point sits focal units behind the
// screen plane so entities at z=0 project 1:1.
type Camera struct {
	Position vec.V3
	Rotation vec.V3
}

// NewCamera places the camera at its rest point for the given focal
// length.
func NewCamera(focal float64) *Camera {
	return &Camera{Position: vec.V3{Z: -focal}}
}

// Shake offsets the camera laterally while keeping its depth.
func (c *Camera) Shake(x, y float64) {
	c.Position.X = x
	c.Position.Y = y
}
