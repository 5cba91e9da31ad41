// Package vec provides the 3D vector arithmetic the renderer and the
// entity system are built on.
package vec

import "math"

// V3 is a 3-component vector.
type V3 struct {
	X, Y, Z float64
}

// New builds a V3 from three components.
func New(x, y, z float64) V3 {
	return V3{X: x, Y: y, Z: z}
}

// Splat returns a vector with all three components set to s.
func Splat(s float64) V3 {
	return V3{X: s, Y: s, Z: s}
}

// Add returns v + o.
func (v V3) Add(o V3) V3 {
	return V3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

// Sub returns v - o.
func (v V3) Sub(o V3) V3 {
	return V3{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z}
}

// Mul returns v scaled by s.
func (v V3) Mul(s float64) V3 {
	return V3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// Div returns v divided by s. Division by zero is the caller's bug;
// use Normalize for the guarded unit-vector case.
func (v V3) Div(s float64) V3 {
	return V3{X: v.X / s, Y: v.Y / s, Z: v.Z / s}
}

// Dot returns the dot product of v and o.
func (v V3) Dot(o V3) float64 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

// Mag returns the magnitude of v.
func (v V3) Mag() float64 {
	return math.Sqrt(v.Dot(v))
}

// Normalize returns the unit vector of v. The zero vector normalizes
// to the zero vector rather than propagating NaN.
func (v V3) Normalize() V3 {
	m := v.Mag()
	if m == 0 {
		return V3{}
	}
	return v.Div(m)
}

// Distance returns the distance between points v and o.
func (v V3) Distance(o V3) float64 {
	return v.Sub(o).Mag()
}

// Clamp restricts x to [min, max].
func Clamp(x, min, max float64) float64 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}
