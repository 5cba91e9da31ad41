package render

import (
	"math"

	"github.com/Cruelhelp/NeonVoid/internal/geom"
	"github.com/Cruelhelp/NeonVoid/internal/vec"
)

// RotationOrder selects the axis order a mesh applies its Euler
// rotation in. Both orders are in live use: plain meshes rotate
// Z then Y then X, while entities whose Z rotation governs their
// firing direction rotate X then Y then Z. Visual orientation
// depends on the order, so it is per-instance state.
type RotationOrder int

const (
	OrderZYX RotationOrder = iota
	OrderXYZ
)

// Mesh owns an ordered list of local-space triangles, invariant after
// construction, plus a mutable transform. Camera-space triangles are
// always recomputed from live state; nothing is cached between frames.
type Mesh struct {
	local []geom.Triangle

	Position vec.V3
	Rotation vec.V3
	Scale    vec.V3
	Alpha    float64
	Order    RotationOrder
}

// NewMesh creates a mesh around the given local triangles.
func NewMesh(tris []geom.Triangle) *Mesh {
	return &Mesh{
		local: tris,
		Scale: vec.Splat(1),
		Alpha: 1,
	}
}

// Translate moves the mesh by the given deltas.
func (m *Mesh) Translate(dx, dy, dz float64) {
	m.Position.X += dx
	m.Position.Y += dy
	m.Position.Z += dz
}

// Rotate adds the given Euler deltas in radians.
func (m *Mesh) Rotate(rx, ry, rz float64) {
	m.Rotation.X += rx
	m.Rotation.Y += ry
	m.Rotation.Z += rz
}

// CameraSpace returns the mesh triangles transformed into camera
// space: rotate, scale, translate to world, then the inverse camera
// transform. The mesh alpha is carried into every output triangle.
func (m *Mesh) CameraSpace(cam *Camera) []geom.Triangle {
	out := make([]geom.Triangle, len(m.local))
	copy(out, m.local)

	switch m.Order {
	case OrderXYZ:
		out = RotateX(out, m.Rotation.X)
		out = RotateY(out, m.Rotation.Y)
		out = RotateZ(out, m.Rotation.Z)
	default:
		out = RotateZ(out, m.Rotation.Z)
		out = RotateY(out, m.Rotation.Y)
		out = RotateX(out, m.Rotation.X)
	}
	out = ScaleTris(out, m.Scale)
	out = TranslateTris(out, m.Position)

	out = TranslateTris(out, cam.Position.Mul(-1))
	out = RotateX(out, -cam.Rotation.X)
	out = RotateY(out, -cam.Rotation.Y)
	out = RotateZ(out, -cam.Rotation.Z)

	for i := range out {
		out[i].Alpha = m.Alpha
	}
	return out
}

// RotateX rotates triangles around the X axis.
func RotateX(tris []geom.Triangle, angle float64) []geom.Triangle {
	sin, cos := math.Sincos(angle)
	rot := func(v vec.V3) vec.V3 {
		return vec.V3{X: v.X, Y: v.Y*cos - v.Z*sin, Z: v.Y*sin + v.Z*cos}
	}
	return mapVerts(tris, rot)
}

// RotateY rotates triangles around the Y axis.
func RotateY(tris []geom.Triangle, angle float64) []geom.Triangle {
	sin, cos := math.Sincos(angle)
	rot := func(v vec.V3) vec.V3 {
		return vec.V3{X: v.X*cos + v.Z*sin, Y: v.Y, Z: -v.X*sin + v.Z*cos}
	}
	return mapVerts(tris, rot)
}

// RotateZ rotates triangles around the Z axis.
func RotateZ(tris []geom.Triangle, angle float64) []geom.Triangle {
	sin, cos := math.Sincos(angle)
	rot := func(v vec.V3) vec.V3 {
		return vec.V3{X: v.X*cos - v.Y*sin, Y: v.X*sin + v.Y*cos, Z: v.Z}
	}
	return mapVerts(tris, rot)
}

// TranslateTris offsets every vertex by the given vector.
func TranslateTris(tris []geom.Triangle, by vec.V3) []geom.Triangle {
	return mapVerts(tris, func(v vec.V3) vec.V3 { return v.Add(by) })
}

// ScaleTris scales every vertex component-wise.
func ScaleTris(tris []geom.Triangle, by vec.V3) []geom.Triangle {
	return mapVerts(tris, func(v vec.V3) vec.V3 {
		return vec.V3{X: v.X * by.X, Y: v.Y * by.Y, Z: v.Z * by.Z}
	})
}

func mapVerts(tris []geom.Triangle, f func(vec.V3) vec.V3) []geom.Triangle {
	out := make([]geom.Triangle, len(tris))
	for i, t := range tris {
		out[i] = geom.Triangle{
			A:     f(t.A),
			B:     f(t.B),
			C:     f(t.C),
			Color: t.Color,
			Alpha: t.Alpha,
		}
	}
	return out
}
