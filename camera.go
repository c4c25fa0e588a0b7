package viser

import (
	"errors"
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
	"go.uber.org/zap"
)

// ErrNotPerspective is returned when ray casting or focal-length-based
// sizing is attempted on a non-perspective camera. Callers log it and skip
// the dependent per-frame work; it is never fatal.
var ErrNotPerspective = errors.New("camera is not perspective")

// Projection identifies the camera's projection model.
type Projection uint8

const (
	ProjectionPerspective Projection = iota
	ProjectionOrthographic
)

// filmHeight is the film gauge in millimeters used to derive the focal
// length from the vertical field of view (35mm-style convention).
const filmHeight = 24.0

// flyAnim holds active fly-to tweens for camera position and look-at target.
type flyAnim struct {
	px, py, pz *gween.Tween
	lx, ly, lz *gween.Tween
	done       bool
}

// Camera holds the synchronized camera pose and intrinsics. It is owned
// exclusively by the client's dispatch goroutine; other components read it,
// never mutate it.
type Camera struct {
	Position    Vec3
	Orientation Quaternion
	FovY        float64 // vertical field of view, radians
	Aspect      float64 // width / height
	Near, Far   float64
	Projection  Projection

	// Up and LookAtTarget are kept so server-driven pose changes and
	// fly-to animations can rebuild the orientation.
	Up           Vec3
	LookAtTarget Vec3

	fly *flyAnim
	log *zap.Logger
}

// NewCamera creates a perspective camera with common defaults.
func NewCamera(log *zap.Logger) *Camera {
	if log == nil {
		log = zap.NewNop()
	}
	return &Camera{
		Position:    Vec3{Z: 5},
		Orientation: QuatIdentity,
		FovY:        70 * math.Pi / 180,
		Aspect:      16.0 / 9.0,
		Near:        0.01,
		Far:         1000,
		Up:          Vec3{Y: 1},
		log:         log,
	}
}

// FocalLength returns the focal length in film-gauge millimeters.
func (c *Camera) FocalLength() float64 {
	return filmHeight / (2 * math.Tan(c.FovY/2))
}

// FilmSize returns the film plane dimensions (width, height) in the same
// units as FocalLength.
func (c *Camera) FilmSize() (w, h float64) {
	return filmHeight * c.Aspect, filmHeight
}

// Forward returns the camera's view direction in world space.
func (c *Camera) Forward() Vec3 {
	return c.Orientation.Rotate(Vec3{Z: -1})
}

// --- Coordinate conversion ---

// NDCFromCanvas converts canvas pixel coordinates (origin top-left) to
// normalized device coordinates in [-1, 1] × [-1, 1], Y up.
func NDCFromCanvas(x, y, width, height float64) Vec2 {
	return Vec2{
		X: 2*x/width - 1,
		Y: 1 - 2*y/height,
	}
}

// NDCInBounds reports whether both components lie in the closed [-1, 1] range.
func NDCInBounds(ndc Vec2) bool {
	return ndc.X >= -1 && ndc.X <= 1 && ndc.Y >= -1 && ndc.Y <= 1
}

// RayThroughNDC casts a ray from the camera through the given normalized
// device coordinate. The ray is in renderer world space; origin is the
// camera position and direction is unit length. Valid only for perspective
// projection.
func (c *Camera) RayThroughNDC(ndc Vec2) (origin, dir Vec3, err error) {
	if c.Projection != ProjectionPerspective {
		return Vec3{}, Vec3{}, ErrNotPerspective
	}
	tanHalf := math.Tan(c.FovY / 2)
	local := Vec3{
		X: ndc.X * tanHalf * c.Aspect,
		Y: ndc.Y * tanHalf,
		Z: -1,
	}
	n := math.Sqrt(local.Dot(local))
	dir = c.Orientation.Rotate(local.Scale(1 / n))
	return c.Position, dir, nil
}

// ImageCoords converts a normalized device coordinate to normalized
// image-plane coordinates: origin top-left, X scaled by the image aspect so
// coordinates span [0, aspect] × [0, 1].
func (c *Camera) ImageCoords(ndc Vec2) Vec2 {
	return Vec2{
		X: (ndc.X + 1) / 2 * c.Aspect,
		Y: (1 - ndc.Y) / 2,
	}
}

// --- Server-driven pose updates ---

// SetPose points the camera at target from position, snapping immediately
// and cancelling any in-flight fly-to.
func (c *Camera) SetPose(position, lookAt, up Vec3) {
	if up.Dot(up) > 1e-24 {
		c.Up = up
	}
	c.Position = position
	c.LookAtTarget = lookAt
	c.Orientation = quatLookAt(position, lookAt, c.Up)
	c.fly = nil
}

// FlyTo animates the camera to the given position and look-at target over
// duration seconds. A non-positive duration snaps immediately.
func (c *Camera) FlyTo(position, lookAt Vec3, duration float32) {
	if duration <= 0 {
		c.SetPose(position, lookAt, c.Up)
		return
	}
	from := c.Position
	target := c.LookAtTarget
	c.fly = &flyAnim{
		px: gween.New(float32(from.X), float32(position.X), duration, ease.InOutCubic),
		py: gween.New(float32(from.Y), float32(position.Y), duration, ease.InOutCubic),
		pz: gween.New(float32(from.Z), float32(position.Z), duration, ease.InOutCubic),
		lx: gween.New(float32(target.X), float32(lookAt.X), duration, ease.InOutCubic),
		ly: gween.New(float32(target.Y), float32(lookAt.Y), duration, ease.InOutCubic),
		lz: gween.New(float32(target.Z), float32(lookAt.Z), duration, ease.InOutCubic),
	}
}

// update advances the fly-to animation. Called once per frame from
// Client.Update. Reports whether the pose changed this tick.
func (c *Camera) update(dt float32) bool {
	if c.fly == nil {
		return false
	}
	f := c.fly
	px, d1 := f.px.Update(dt)
	py, d2 := f.py.Update(dt)
	pz, d3 := f.pz.Update(dt)
	lx, _ := f.lx.Update(dt)
	ly, _ := f.ly.Update(dt)
	lz, _ := f.lz.Update(dt)

	c.Position = Vec3{float64(px), float64(py), float64(pz)}
	c.LookAtTarget = Vec3{float64(lx), float64(ly), float64(lz)}
	c.Orientation = quatLookAt(c.Position, c.LookAtTarget, c.Up)

	if d1 && d2 && d3 {
		c.fly = nil
	}
	return true
}
