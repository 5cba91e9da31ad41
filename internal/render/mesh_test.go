package render

import (
	"math"
	"testing"

	"github.com/Cruelhelp/NeonVoid/internal/geom"
	"github.com/Cruelhelp/NeonVoid/internal/vec"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestRotateZQuarterTurn(t *testing.T) {
	tris := []geom.Triangle{geom.Tri(vec.New(1, 0, 0), vec.New(0, 1, 0), vec.New(0, 0, 1), "#fff")}
	out := RotateZ(tris, math.Pi/2)

	// (1,0,0) rotates to (0,1,0)
	if !almostEqual(out[0].A.X, 0) || !almostEqual(out[0].A.Y, 1) {
		t.Errorf("expected (0,1,0), got %v", out[0].A)
	}
	// Z is untouched
	if !almostEqual(out[0].C.Z, 1) {
		t.Errorf("rotateZ must not affect Z, got %v", out[0].C)
	}
}

func TestRotationOrdersDiffer(t *testing.T) {
	tris := []geom.Triangle{geom.Tri(vec.New(1, 0, 0), vec.New(0, 1, 0), vec.New(0, 0, 1), "#fff")}
	rot := vec.New(0.7, 0.3, 1.2)
	cam := NewCamera(DefaultFocal)

	zyx := NewMesh(tris)
	zyx.Rotation = rot
	zyx.Order = OrderZYX

	xyz := NewMesh(tris)
	xyz.Rotation = rot
	xyz.Order = OrderXYZ

	a := zyx.CameraSpace(cam)[0].A
	b := xyz.CameraSpace(cam)[0].A
	if almostEqual(a.X, b.X) && almostEqual(a.Y, b.Y) && almostEqual(a.Z, b.Z) {
		t.Error("ZYX and XYZ rotation orders should produce different vertices")
	}
}

func TestCameraSpaceTranslation(t *testing.T) {
	tris := []geom.Triangle{geom.Tri(vec.V3{}, vec.V3{X: 1}, vec.V3{Y: 1}, "#fff")}
	m := NewMesh(tris)
	m.Position = vec.New(10, 20, 0)

	cam := NewCamera(500)
	out := m.CameraSpace(cam)

	// Camera rests at z=-500, so a point at world z=0 lands at
	// camera-space z=500.
	if !almostEqual(out[0].A.X, 10) || !almostEqual(out[0].A.Y, 20) || !almostEqual(out[0].A.Z, 500) {
		t.Errorf("unexpected camera-space vertex: %v", out[0].A)
	}
}

func TestCameraSpaceCarriesAlpha(t *testing.T) {
	tris := []geom.Triangle{geom.Tri(vec.V3{}, vec.V3{X: 1}, vec.V3{Y: 1}, "#fff")}
	m := NewMesh(tris)
	m.Alpha = 0.25

	out := m.CameraSpace(NewCamera(500))
	if out[0].Alpha != 0.25 {
		t.Errorf("expected alpha 0.25, got %f", out[0].Alpha)
	}
}

func TestMeshScale(t *testing.T) {
	tris := []geom.Triangle{geom.Tri(vec.New(1, 1, 0), vec.V3{}, vec.V3{}, "#fff")}
	m := NewMesh(tris)
	m.Scale = vec.New(2, 3, 1)

	out := m.CameraSpace(NewCamera(500))
	if !almostEqual(out[0].A.X, 2) || !almostEqual(out[0].A.Y, 3) {
		t.Errorf("expected scaled vertex (2,3), got %v", out[0].A)
	}
}

func TestLocalTrianglesNotMutated(t *testing.T) {
	tris := []geom.Triangle{geom.Tri(vec.New(1, 0, 0), vec.V3{}, vec.V3{}, "#fff")}
	m := NewMesh(tris)
	m.Rotation = vec.New(1, 2, 3)
	m.Position = vec.New(5, 5, 5)

	m.CameraSpace(NewCamera(500))
	m.CameraSpace(NewCamera(500))

	if tris[0].A != vec.New(1, 0, 0) {
		t.Error("CameraSpace must not mutate local triangles")
	}
}
