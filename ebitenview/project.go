package ebitenview

import (
	"math"

	"github.com/rebots-online/viser"
)

// project converts a world-space point to canvas pixel coordinates for the
// given camera snapshot. ok is false when the point lies behind the near
// plane.
func project(cam viser.CameraView, p viser.Vec3, width, height float64) (x, y float64, ok bool) {
	d := cam.Orientation.Conjugate().Rotate(p.Sub(cam.Position))
	if -d.Z <= cam.Near {
		return 0, 0, false
	}
	tanHalf := math.Tan(cam.FovY / 2)
	ndcX := d.X / (-d.Z) / (tanHalf * cam.Aspect)
	ndcY := d.Y / (-d.Z) / tanHalf
	return (ndcX + 1) / 2 * width, (1 - ndcY) / 2 * height, true
}
