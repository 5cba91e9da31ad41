package main

import (
	"fmt"
	"strconv"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/Cruelhelp/NeonVoid/internal/render"
)

// display owns the SDL window and presents rendered frames.
type display struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	width    int32
	height   int32
	bloom    bool
}

func newDisplay(title string, width, height int, vsync, bloom bool) (*display, error) {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return nil, fmt.Errorf("SDL_Init failed: %w", err)
	}

	window, err := sdl.CreateWindow(
		title,
		sdl.WINDOWPOS_CENTERED, sdl.WINDOWPOS_CENTERED,
		int32(width), int32(height),
		sdl.WINDOW_SHOWN|sdl.WINDOW_RESIZABLE,
	)
	if err != nil {
		sdl.Quit()
		return nil, fmt.Errorf("SDL_CreateWindow failed: %w", err)
	}

	flags := uint32(sdl.RENDERER_ACCELERATED)
	if vsync {
		flags |= sdl.RENDERER_PRESENTVSYNC
	}
	renderer, err := sdl.CreateRenderer(window, -1, flags)
	if err != nil {
		window.Destroy()
		sdl.Quit()
		return nil, fmt.Errorf("SDL_CreateRenderer failed: %w", err)
	}

	return &display{
		window:   window,
		renderer: renderer,
		width:    int32(width),
		height:   int32(height),
		bloom:    bloom,
	}, nil
}

func (d *display) close() {
	if d.renderer != nil {
		d.renderer.Destroy()
	}
	if d.window != nil {
		d.window.Destroy()
	}
	sdl.Quit()
}

func (d *display) resize(width, height int32) {
	d.width = width
	d.height = height
}

// present draws one rendered frame. Frame coordinates are centered on
// the canvas middle; everything shifts by half the window size here.
func (d *display) present(frame *render.Frame) {
	r := d.renderer
	cx := float64(d.width) / 2
	cy := float64(d.height) / 2

	r.SetDrawBlendMode(sdl.BLENDMODE_BLEND)
	r.SetDrawColor(5, 5, 16, 255)
	r.Clear()

	// Starfield
	for _, s := range frame.Stars {
		r.SetDrawColor(255, 255, 255, uint8(180*s.Size/3+75))
		r.FillRect(&sdl.Rect{
			X: int32(s.X), Y: int32(s.Y),
			W: int32(s.Size + 1), H: int32(s.Size + 1),
		})
	}

	for _, t := range frame.Triangles {
		d.drawTriangle(t, cx, cy, frame.Wireframe, sdl.BLENDMODE_BLEND, 1)
	}

	// Glow approximation: additive re-draws at the bloom alphas. A
	// real gaussian pass needs a render target; the additive pass
	// reads close enough for neon wireframes.
	if d.bloom && frame.Wireframe {
		for _, pass := range frame.Bloom {
			for _, t := range frame.Triangles {
				d.drawTriangle(t, cx, cy, true, sdl.BLENDMODE_ADD, pass.Alpha)
			}
		}
	}

	// Nametag markers above remote ships.
	// TODO: draw the tag text with SDL_ttf once a font ships with the client.
	for _, l := range frame.Labels {
		c := parseHexColor(l.Color)
		r.SetDrawColor(c.R, c.G, c.B, 255)
		r.FillRect(&sdl.Rect{
			X: int32(cx + l.X - 12), Y: int32(cy + l.Y - 30),
			W: 24, H: 3,
		})
	}

	r.Present()
}

func (d *display) drawTriangle(t render.ScreenTriangle, cx, cy float64, wireframe bool, blend sdl.BlendMode, alphaScale float64) {
	r := d.renderer
	c := parseHexColor(t.Color)
	alpha := t.Alpha * alphaScale
	if alpha <= 0 {
		return
	}
	if alpha > 1 {
		alpha = 1
	}
	a := uint8(alpha * 255)

	r.SetDrawBlendMode(blend)
	if wireframe {
		r.SetDrawColor(c.R, c.G, c.B, a)
		x1, y1 := int32(cx+t.X1), int32(cy+t.Y1)
		x2, y2 := int32(cx+t.X2), int32(cy+t.Y2)
		x3, y3 := int32(cx+t.X3), int32(cy+t.Y3)
		r.DrawLine(x1, y1, x2, y2)
		r.DrawLine(x2, y2, x3, y3)
		r.DrawLine(x3, y3, x1, y1)
		return
	}

	color := sdl.Color{R: c.R, G: c.G, B: c.B, A: a}
	verts := []sdl.Vertex{
		{Position: sdl.FPoint{X: float32(cx + t.X1), Y: float32(cy + t.Y1)}, Color: color},
		{Position: sdl.FPoint{X: float32(cx + t.X2), Y: float32(cy + t.Y2)}, Color: color},
		{Position: sdl.FPoint{X: float32(cx + t.X3), Y: float32(cy + t.Y3)}, Color: color},
	}
	r.RenderGeometry(nil, verts, nil)
}

// parseHexColor decodes a #rrggbb string. Bad input comes back white.
func parseHexColor(s string) sdl.Color {
	if len(s) != 7 || s[0] != '#' {
		return sdl.Color{R: 255, G: 255, B: 255, A: 255}
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return sdl.Color{R: 255, G: 255, B: 255, A: 255}
	}
	return sdl.Color{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
		A: 255,
	}
}
