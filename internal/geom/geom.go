// Package geom defines the triangle render primitive and the
// procedural mesh generators for ships, asteroids and effects.
package geom

import (
	"math"

	"github.com/Cruelhelp/NeonVoid/internal/vec"
)

// Triangle is the render primitive: three local-space vertices, a
// stroke/fill color and an alpha scalar. Triangles are frame-scoped
// once emitted by the transform pipeline and never mutated in place.
type Triangle struct {
	A, B, C vec.V3
	Color   string
	Alpha   float64
}

// Tri builds a triangle with full opacity.
func Tri(a, b, c vec.V3, color string) Triangle {
	return Triangle{A: a, B: b, C: c, Color: color, Alpha: 1}
}

// AverageZ returns the mean depth of the three vertices, the sort key
// for the painter's algorithm.
func (t Triangle) AverageZ() float64 {
	return (t.A.Z + t.B.Z + t.C.Z) / 3
}

const (
	sphereLatitudes  = 6
	sphereLongitudes = 6
)

// Sphere builds a latitude/longitude grid sphere of the given radius,
// two triangles per quad, centered at the local origin.
func Sphere(radius float64, color string) []Triangle {
	verts := make([]vec.V3, 0, (sphereLatitudes+1)*(sphereLongitudes+1))
	for lat := 0; lat <= sphereLatitudes; lat++ {
		theta := float64(lat) * math.Pi / sphereLatitudes
		sinTheta := math.Sin(theta)
		cosTheta := math.Cos(theta)
		for lon := 0; lon <= sphereLongitudes; lon++ {
			phi := float64(lon) * 2 * math.Pi / sphereLongitudes
			verts = append(verts, vec.V3{
				X: radius * math.Cos(phi) * sinTheta,
				Y: radius * cosTheta,
				Z: radius * math.Sin(phi) * sinTheta,
			})
		}
	}

	tris := make([]Triangle, 0, sphereLatitudes*sphereLongitudes*2)
	for lat := 0; lat < sphereLatitudes; lat++ {
		for lon := 0; lon < sphereLongitudes; lon++ {
			first := lat*(sphereLongitudes+1) + lon
			second := first + sphereLongitudes + 1
			tris = append(tris,
				Tri(verts[first], verts[first+1], verts[second], color),
				Tri(verts[first+1], verts[second+1], verts[second], color),
			)
		}
	}
	return tris
}

// Pyramid builds a 4-sided base plus apex, 6 triangles, centered at
// the local origin with the apex pointing along +Z.
func Pyramid(size float64, color string) []Triangle {
	h := size / 2

	p1 := vec.V3{X: -h, Y: -h, Z: -h}
	p2 := vec.V3{X: -h, Y: +h, Z: -h}
	p3 := vec.V3{X: +h, Y: +h, Z: -h}
	p4 := vec.V3{X: +h, Y: -h, Z: -h}
	apex := vec.V3{Z: +h}

	return []Triangle{
		Tri(p1, p2, p3, color),
		Tri(p1, p3, p4, color),
		Tri(p1, p2, apex, color),
		Tri(p1, p4, apex, color),
		Tri(p2, p3, apex, color),
		Tri(p3, p4, apex, color),
	}
}

// Cube builds a 6-face cube, two triangles per face, centered at the
// local origin.
func Cube(size float64, color string) []Triangle {
	h := size / 2

	p1 := vec.V3{X: -h, Y: -h, Z: -h}
	p2 := vec.V3{X: -h, Y: +h, Z: -h}
	p3 := vec.V3{X: +h, Y: +h, Z: -h}
	p4 := vec.V3{X: +h, Y: -h, Z: -h}
	p5 := vec.V3{X: -h, Y: -h, Z: +h}
	p6 := vec.V3{X: -h, Y: +h, Z: +h}
	p7 := vec.V3{X: +h, Y: +h, Z: +h}
	p8 := vec.V3{X: +h, Y: -h, Z: +h}

	return []Triangle{
		Tri(p1, p2, p3, color), Tri(p1, p3, p4, color),
		Tri(p5, p6, p7, color), Tri(p5, p7, p8, color),
		Tri(p1, p2, p6, color), Tri(p1, p6, p5, color),
		Tri(p4, p3, p7, color), Tri(p4, p7, p8, color),
		Tri(p2, p3, p7, color), Tri(p2, p7, p6, color),
		Tri(p1, p4, p8, color), Tri(p1, p8, p5, color),
	}
}

// shipShape maps a ship type to its generator and base size.
type shipShape struct {
	cube bool
	size float64
}

var shipShapes = map[string]shipShape{
	"Interceptor": {cube: false, size: 20},
	"Fighter":     {cube: true, size: 18},
	"Bomber":      {cube: false, size: 25},
	"Cruiser":     {cube: true, size: 22},
	"Stealth":     {cube: false, size: 16},
	"Tank":        {cube: true, size: 25},
}

// Ship builds the hull geometry for a ship type. Unknown types fall
// back to the default pyramid.
func Ship(shipType, color string) []Triangle {
	shape, ok := shipShapes[shipType]
	if !ok {
		return Pyramid(20, color)
	}
	if shape.cube {
		return Cube(shape.size, color)
	}
	return Pyramid(shape.size, color)
}

// remoteShipSizes keys the simplified pyramid hulls used for remote
// players, matching the sizes the original multiplayer client renders.
var remoteShipSizes = map[string]float64{
	"Interceptor": 20,
	"Fighter":     22,
	"Bomber":      25,
	"Cruiser":     28,
	"Stealth":     18,
	"Tank":        30,
}

// RemoteShip builds the hull for a remote player's ship type.
func RemoteShip(shipType, color string) []Triangle {
	size, ok := remoteShipSizes[shipType]
	if !ok {
		size = 20
	}
	return Pyramid(size, color)
}
