package viser

import (
	"math"
	"testing"
)

func TestNDCFromCanvas(t *testing.T) {
	cases := []struct {
		x, y, w, h float64
		want       Vec2
	}{
		{0, 0, 200, 100, Vec2{-1, 1}},
		{200, 100, 200, 100, Vec2{1, -1}},
		{100, 50, 200, 100, Vec2{0, 0}},
		{50, 25, 200, 100, Vec2{-0.5, 0.5}},
	}
	for _, c := range cases {
		got := NDCFromCanvas(c.x, c.y, c.w, c.h)
		if !approxEqual(got.X, c.want.X, epsilon) || !approxEqual(got.Y, c.want.Y, epsilon) {
			t.Errorf("NDCFromCanvas(%f, %f) = %v, want %v", c.x, c.y, got, c.want)
		}
	}
}

func TestNDCInBoundsClosed(t *testing.T) {
	if !NDCInBounds(Vec2{1, -1}) {
		t.Error("boundary values must count as inside")
	}
	if NDCInBounds(Vec2{1.0001, 0}) {
		t.Error("x past +1 must be outside")
	}
	if NDCInBounds(Vec2{0, -1.0001}) {
		t.Error("y past -1 must be outside")
	}
}

func TestRayThroughCenter(t *testing.T) {
	c := NewCamera(nil)
	c.Position = Vec3{X: 1, Y: 2, Z: 3}
	origin, dir, err := c.RayThroughNDC(Vec2{})
	if err != nil {
		t.Fatal(err)
	}
	if !vec3Approx(origin, c.Position, epsilon) {
		t.Errorf("origin = %v, want camera position", origin)
	}
	// Identity orientation looks down -Z.
	if !vec3Approx(dir, Vec3{Z: -1}, epsilon) {
		t.Errorf("center ray = %v, want -Z", dir)
	}
}

func TestRayThroughCorner(t *testing.T) {
	c := NewCamera(nil)
	c.FovY = math.Pi / 2
	c.Aspect = 1

	_, dir, err := c.RayThroughNDC(Vec2{1, 1})
	if err != nil {
		t.Fatal(err)
	}
	// 90° fov, square aspect: the corner ray passes through (1, 1, -1).
	want := Vec3{1, 1, -1}
	n := math.Sqrt(want.Dot(want))
	if !vec3Approx(dir, want.Scale(1/n), epsilon) {
		t.Errorf("corner ray = %v, want %v", dir, want.Scale(1/n))
	}
	if !approxEqual(math.Sqrt(dir.Dot(dir)), 1, epsilon) {
		t.Errorf("ray direction not unit length: %v", dir)
	}
}

func TestRayFollowsOrientation(t *testing.T) {
	c := NewCamera(nil)
	c.SetPose(Vec3{X: 5}, Vec3{}, Vec3{Y: 1})
	_, dir, err := c.RayThroughNDC(Vec2{})
	if err != nil {
		t.Fatal(err)
	}
	if !vec3Approx(dir, Vec3{X: -1}, 1e-6) {
		t.Errorf("center ray after look-at = %v, want -X", dir)
	}
}

func TestRayNonPerspective(t *testing.T) {
	c := NewCamera(nil)
	c.Projection = ProjectionOrthographic
	if _, _, err := c.RayThroughNDC(Vec2{}); err != ErrNotPerspective {
		t.Errorf("err = %v, want ErrNotPerspective", err)
	}
}

func TestImageCoords(t *testing.T) {
	c := NewCamera(nil)
	c.Aspect = 2

	// Top-left canvas corner is NDC (-1, 1) and image (0, 0).
	got := c.ImageCoords(Vec2{-1, 1})
	if !approxEqual(got.X, 0, epsilon) || !approxEqual(got.Y, 0, epsilon) {
		t.Errorf("top-left = %v, want (0, 0)", got)
	}
	// Bottom-right spans to (aspect, 1).
	got = c.ImageCoords(Vec2{1, -1})
	if !approxEqual(got.X, 2, epsilon) || !approxEqual(got.Y, 1, epsilon) {
		t.Errorf("bottom-right = %v, want (2, 1)", got)
	}
	got = c.ImageCoords(Vec2{0, 0})
	if !approxEqual(got.X, 1, epsilon) || !approxEqual(got.Y, 0.5, epsilon) {
		t.Errorf("center = %v, want (1, 0.5)", got)
	}
}

func TestFocalLengthAndFilm(t *testing.T) {
	c := NewCamera(nil)
	c.FovY = math.Pi / 2
	c.Aspect = 1.5
	if got := c.FocalLength(); !approxEqual(got, 12, epsilon) {
		t.Errorf("focal length at 90° = %f, want 12", got)
	}
	w, h := c.FilmSize()
	if !approxEqual(h, 24, epsilon) || !approxEqual(w, 36, epsilon) {
		t.Errorf("film size = (%f, %f), want (36, 24)", w, h)
	}
}

func TestSetPoseSnapsAndCancelsFly(t *testing.T) {
	c := NewCamera(nil)
	c.FlyTo(Vec3{X: 10}, Vec3{}, 2)
	if c.fly == nil {
		t.Fatal("fly-to did not start")
	}
	c.SetPose(Vec3{Z: 3}, Vec3{}, Vec3{Y: 1})
	if c.fly != nil {
		t.Error("SetPose must cancel an in-flight fly-to")
	}
	if !vec3Approx(c.Position, Vec3{Z: 3}, epsilon) {
		t.Errorf("position = %v, want (0, 0, 3)", c.Position)
	}
}

func TestFlyToAnimates(t *testing.T) {
	c := NewCamera(nil)
	c.SetPose(Vec3{Z: 10}, Vec3{}, Vec3{Y: 1})
	c.FlyTo(Vec3{X: 10}, Vec3{}, 1)

	if !c.update(0.5) {
		t.Fatal("update mid-flight should report a pose change")
	}
	if vec3Approx(c.Position, Vec3{Z: 10}, 1e-6) || vec3Approx(c.Position, Vec3{X: 10}, 1e-6) {
		t.Errorf("mid-flight position %v should be between endpoints", c.Position)
	}

	c.update(1.0)
	if !vec3Approx(c.Position, Vec3{X: 10}, 1e-4) {
		t.Errorf("final position = %v, want (10, 0, 0)", c.Position)
	}
	if c.fly != nil {
		t.Error("fly-to not cleared after completion")
	}
	if c.update(0.1) {
		t.Error("update after completion should report no change")
	}
}

func TestFlyToZeroDurationSnaps(t *testing.T) {
	c := NewCamera(nil)
	c.FlyTo(Vec3{X: 7}, Vec3{}, 0)
	if c.fly != nil {
		t.Error("zero duration should snap, not animate")
	}
	if !vec3Approx(c.Position, Vec3{X: 7}, epsilon) {
		t.Errorf("position = %v, want (7, 0, 0)", c.Position)
	}
}
