package ebitenview

import (
	"math"
	"testing"

	"github.com/rebots-online/viser"
)

func testCamera() viser.CameraView {
	return viser.CameraView{
		Position:    viser.Vec3{Z: 5},
		Orientation: viser.QuatIdentity,
		FovY:        math.Pi / 2,
		Aspect:      1,
		Near:        0.01,
		Far:         1000,
	}
}

func TestProjectCenter(t *testing.T) {
	x, y, ok := project(testCamera(), viser.Vec3{}, 100, 100)
	if !ok {
		t.Fatal("origin in front of the camera reported behind")
	}
	if math.Abs(x-50) > 1e-9 || math.Abs(y-50) > 1e-9 {
		t.Errorf("projected = (%f, %f), want canvas center", x, y)
	}
}

func TestProjectOffCenter(t *testing.T) {
	// At 90° fov a point one unit up at distance one from the camera lands
	// on the top edge.
	x, y, ok := project(testCamera(), viser.Vec3{Y: 1, Z: 4}, 100, 100)
	if !ok {
		t.Fatal("point reported behind the camera")
	}
	if math.Abs(x-50) > 1e-9 || math.Abs(y-0) > 1e-9 {
		t.Errorf("projected = (%f, %f), want (50, 0)", x, y)
	}
}

func TestProjectBehindCamera(t *testing.T) {
	if _, _, ok := project(testCamera(), viser.Vec3{Z: 6}, 100, 100); ok {
		t.Error("point behind the camera must not project")
	}
}
