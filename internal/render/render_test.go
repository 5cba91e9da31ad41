package render

import (
	"math/rand"
	"testing"

	"github.com/Cruelhelp/NeonVoid/internal/geom"
	"github.com/Cruelhelp/NeonVoid/internal/vec"
)

func testRenderer(t *testing.T) *Renderer {
	t.Helper()
	return New(DefaultConfig(800, 600), rand.New(rand.NewSource(1)))
}

func flatTri(z float64, color string) []geom.Triangle {
	return []geom.Triangle{geom.Tri(
		vec.New(-10, -10, z), vec.New(10, -10, z), vec.New(0, 10, z), color,
	)}
}

func TestProjectBehindCamera(t *testing.T) {
	r := testRenderer(t)
	if _, _, ok := r.Project(vec.New(0, 0, -1)); ok {
		t.Error("points behind the camera must not project")
	}
	if _, _, ok := r.Project(vec.New(0, 0, 0)); ok {
		t.Error("points at z=0 must not project")
	}
	if _, _, ok := r.Project(vec.New(0, 0, 10)); !ok {
		t.Error("points in front of the camera must project")
	}
}

func TestProjectPerspectiveDivide(t *testing.T) {
	r := testRenderer(t)
	x, y, ok := r.Project(vec.New(100, 50, 500))
	if !ok {
		t.Fatal("expected projectable point")
	}
	if x != 100 || y != 50 {
		t.Errorf("at z=focal the projection is identity, got (%f, %f)", x, y)
	}
}

func TestCullTrianglesBehindCamera(t *testing.T) {
	r := testRenderer(t)
	cam := &Camera{}

	mixed := []geom.Triangle{
		geom.Tri(vec.New(0, 0, 100), vec.New(10, 0, 100), vec.New(0, 10, -5), "#fff"),
	}
	frame := r.BuildFrame([]*Mesh{NewMesh(mixed)}, cam, nil)
	if len(frame.Triangles) != 0 {
		t.Error("a triangle with any vertex at z<=0 must be culled")
	}

	front := NewMesh(flatTri(100, "#fff"))
	frame = r.BuildFrame([]*Mesh{front}, cam, nil)
	if len(frame.Triangles) != 1 {
		t.Errorf("expected 1 triangle, got %d", len(frame.Triangles))
	}
}

func TestDepthSortBackToFront(t *testing.T) {
	r := testRenderer(t)
	cam := &Camera{}

	a := NewMesh(flatTri(5, "far"))
	b := NewMesh(flatTri(1, "near"))
	c := NewMesh(flatTri(3, "mid"))

	frame := r.BuildFrame([]*Mesh{a, b, c}, cam, nil)
	if len(frame.Triangles) != 3 {
		t.Fatalf("expected 3 triangles, got %d", len(frame.Triangles))
	}
	want := []string{"far", "mid", "near"}
	for i, w := range want {
		if frame.Triangles[i].Color != w {
			t.Errorf("draw order %d: expected %s, got %s", i, w, frame.Triangles[i].Color)
		}
	}
}

func TestStarfieldCount(t *testing.T) {
	r := testRenderer(t)
	frame := r.BuildFrame(nil, &Camera{}, nil)
	if len(frame.Stars) != StarCount {
		t.Errorf("expected %d stars, got %d", StarCount, len(frame.Stars))
	}

	cfg := DefaultConfig(800, 600)
	cfg.Stars = 0
	frame = New(cfg, rand.New(rand.NewSource(1))).BuildFrame(nil, &Camera{}, nil)
	if len(frame.Stars) != 0 {
		t.Errorf("expected no stars, got %d", len(frame.Stars))
	}
}

func TestBloomPasses(t *testing.T) {
	frame := testRenderer(t).BuildFrame(nil, &Camera{}, nil)
	if len(frame.Bloom) != 2 {
		t.Fatalf("expected 2 bloom passes, got %d", len(frame.Bloom))
	}
	if frame.Bloom[0].BlurPx != 8 || frame.Bloom[0].Alpha != 0.6 {
		t.Errorf("unexpected first bloom pass: %+v", frame.Bloom[0])
	}
	if frame.Bloom[1].BlurPx != 16 || frame.Bloom[1].Alpha != 0.4 {
		t.Errorf("unexpected second bloom pass: %+v", frame.Bloom[1])
	}
}

func TestLabelsPassThrough(t *testing.T) {
	labels := []Label{{Text: "SCORE 100", X: 10, Y: 10}}
	frame := testRenderer(t).BuildFrame(nil, &Camera{}, labels)
	if len(frame.Labels) != 1 || frame.Labels[0].Text != "SCORE 100" {
		t.Errorf("labels must pass through to the frame, got %+v", frame.Labels)
	}
}
