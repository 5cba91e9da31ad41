// Package render implements the software 3D pipeline: transform to
// camera space, painter's-algorithm depth sort, near-plane cull,
// perspective projection and frame assembly. Actual pixel output is
// the presenter's job; the renderer emits screen-space triangles.
package render

import (
	"math/rand"
	"sort"

	"github.com/Cruelhelp/NeonVoid/internal/geom"
	"github.com/Cruelhelp/NeonVoid/internal/vec"
)

const (
	// DefaultFocal is the perspective focal length in pixels.
	DefaultFocal = 500.0
	// StarCount is the number of starfield pixels drawn per frame.
	// Stars are repositioned randomly every frame, which is what
	// makes them twinkle.
	StarCount = 100
)

// Config holds renderer tuning.
type Config struct {
	Focal     float64
	Width     int
	Height    int
	Wireframe bool
	Stars     int
}

// DefaultConfig returns the renderer defaults for the given canvas.
func DefaultConfig(width, height int) Config {
	return Config{
		Focal:     DefaultFocal,
		Width:     width,
		Height:    height,
		Wireframe: true,
		Stars:     StarCount,
	}
}

// ScreenTriangle is a projected triangle ready to rasterize.
// Coordinates are relative to the canvas center.
type ScreenTriangle struct {
	X1, Y1 float64
	X2, Y2 float64
	X3, Y3 float64
	Color  string
	Alpha  float64
}

// Star is a single starfield pixel.
type Star struct {
	X, Y, Size float64
}

// Label is a piece of overlay text anchored at a projected position,
// used for remote player nametags.
type Label struct {
	X, Y  float64
	Text  string
	Color string
}

// BloomPass describes one self-composite blur pass. Passes are
// applied by the presenter after all triangles are drawn, with the
// lighten blend mode.
type BloomPass struct {
	BlurPx int
	Alpha  float64
}

// bloomPasses is the fixed two-pass glow: a light blur then a heavy
// one.
var bloomPasses = []BloomPass{
	{BlurPx: 8, Alpha: 0.6},
	{BlurPx: 16, Alpha: 0.4},
}

// Frame is one rendered frame: everything a presenter needs to put
// pixels on screen, in draw order.
type Frame struct {
	Stars     []Star
	Triangles []ScreenTriangle
	Labels    []Label
	Bloom     []BloomPass
	Wireframe bool
}

// Renderer turns live meshes into frames.
type Renderer struct {
	cfg Config
	rng *rand.Rand
}

// New creates a renderer.
func New(cfg Config, rng *rand.Rand) *Renderer {
	if cfg.Focal == 0 {
		cfg.Focal = DefaultFocal
	}
	return &Renderer{cfg: cfg, rng: rng}
}

// Resize updates the canvas dimensions. Coordinates stay centered at
// the canvas middle, so only the starfield extents change.
func (r *Renderer) Resize(width, height int) {
	r.cfg.Width = width
	r.cfg.Height = height
}

// Size returns the current canvas dimensions.
func (r *Renderer) Size() (int, int) {
	return r.cfg.Width, r.cfg.Height
}

// Project maps a camera-space point to screen space. ok is false for
// points at or behind the camera plane.
func (r *Renderer) Project(p vec.V3) (x, y float64, ok bool) {
	if p.Z <= 0 {
		return 0, 0, false
	}
	return p.X / p.Z * r.cfg.Focal, p.Y / p.Z * r.cfg.Focal, true
}

// BuildFrame assembles one frame from the live meshes. Triangles are
// depth-sorted back to front by average Z (stable, so ties keep their
// registration order), triangles with any vertex at z <= 0 are culled
// before the perspective divide, and the rest are projected.
func (r *Renderer) BuildFrame(meshes []*Mesh, cam *Camera, labels []Label) *Frame {
	frame := &Frame{
		Stars:     r.starfield(),
		Labels:    labels,
		Bloom:     bloomPasses,
		Wireframe: r.cfg.Wireframe,
	}

	var buffer []camTriangle
	for _, m := range meshes {
		for _, t := range m.CameraSpace(cam) {
			buffer = append(buffer, camTriangle{
				t:    t,
				avgZ: t.AverageZ(),
			})
		}
	}

	sort.SliceStable(buffer, func(i, j int) bool {
		return buffer[i].avgZ > buffer[j].avgZ
	})

	frame.Triangles = make([]ScreenTriangle, 0, len(buffer))
	for _, ct := range buffer {
		t := ct.t
		if t.A.Z <= 0 || t.B.Z <= 0 || t.C.Z <= 0 {
			continue
		}
		frame.Triangles = append(frame.Triangles, ScreenTriangle{
			X1: t.A.X / t.A.Z * r.cfg.Focal, Y1: t.A.Y / t.A.Z * r.cfg.Focal,
			X2: t.B.X / t.B.Z * r.cfg.Focal, Y2: t.B.Y / t.B.Z * r.cfg.Focal,
			X3: t.C.X / t.C.Z * r.cfg.Focal, Y3: t.C.Y / t.C.Z * r.cfg.Focal,
			Color: t.Color,
			Alpha: t.Alpha,
		})
	}
	return frame
}

type camTriangle struct {
	t    geom.Triangle
	avgZ float64
}

func (r *Renderer) starfield() []Star {
	stars := make([]Star, r.cfg.Stars)
	w := float64(r.cfg.Width)
	h := float64(r.cfg.Height)
	for i := range stars {
		stars[i] = Star{
			X:    (r.rng.Float64() - 0.5) * w,
			Y:    (r.rng.Float64() - 0.5) * h,
			Size: r.rng.Float64() * 2,
		}
	}
	return stars
}
