package viser

import (
	"image"
	"math"

	"go.uber.org/zap"
)

// Depth channel-packing coefficients. The server packs camera-space depth
// into the three 8-bit color channels of the depth image, red least
// significant: with channels in [0, 1],
//
//	depth = r*2.55e-3 + g*0.6528 + b*167.1168
//
// which is 1e-5 per step of the underlying 24-bit integer. This is a
// bit-exact contract with the server encoder; changing the coefficients
// makes occlusion visibly wrong.
const (
	depthCoeffR = 2.55e-3
	depthCoeffG = 0.6528
	depthCoeffB = 167.1168

	depthStep = 1e-5
	depthMax  = depthStep * (1<<24 - 1)
)

// DecodeDepth recovers camera-space depth from depth-image color channels in
// the [0, 1] range.
func DecodeDepth(r, g, b float64) float64 {
	return r*depthCoeffR + g*depthCoeffG + b*depthCoeffB
}

// EncodeDepth packs a camera-space depth value into three 8-bit channels.
// Values outside the representable range are clamped.
func EncodeDepth(depth float64) (r, g, b uint8) {
	if depth < 0 {
		depth = 0
	}
	if depth > depthMax {
		depth = depthMax
	}
	n := uint32(math.Round(depth / depthStep))
	return uint8(n & 0xff), uint8(n >> 8 & 0xff), uint8(n >> 16 & 0xff)
}

// BackgroundFrame is an externally supplied color+depth image with the
// camera near/far snapshot taken when it arrived, used for decoding.
type BackgroundFrame struct {
	Color   image.Image
	Depth   image.Image // nil when the frame carries no depth
	Enabled bool
	Near    float64
	Far     float64
}

// BackgroundPass positions a full-screen quad one unit in front of the
// camera, sized to exactly fill its field of view at that distance and
// oriented to match the camera each frame.
type BackgroundPass struct {
	Position    Vec3
	Orientation Quaternion
	ScaleX      float64 // film width / focal length
	ScaleY      float64 // film height / focal length
	frame       *BackgroundFrame
}

// DepthCompositor injects the background frame's per-pixel depth into the
// renderer's depth buffer so captured imagery composites correctly against
// synthetic geometry.
type DepthCompositor struct {
	frame *BackgroundFrame
	log   *zap.Logger
}

// NewDepthCompositor creates an empty compositor; with no frame set it
// contributes nothing.
func NewDepthCompositor(log *zap.Logger) *DepthCompositor {
	if log == nil {
		log = zap.NewNop()
	}
	return &DepthCompositor{log: log}
}

// SetFrame replaces the background frame, snapshotting the camera's current
// near/far planes for depth decoding. A nil color image disables the pass.
func (d *DepthCompositor) SetFrame(colorImg, depthImg image.Image, enabled bool, cam *Camera) {
	if colorImg == nil {
		d.frame = nil
		return
	}
	d.frame = &BackgroundFrame{
		Color:   colorImg,
		Depth:   depthImg,
		Enabled: enabled,
		Near:    cam.Near,
		Far:     cam.Far,
	}
}

// Frame returns the current background frame, if any.
func (d *DepthCompositor) Frame() *BackgroundFrame { return d.frame }

// Pass computes the quad placement for the current frame. ok is false when
// the pass is disabled or absent; the draw is then discarded entirely,
// writing neither pixels nor depth.
func (d *DepthCompositor) Pass(cam *Camera) (BackgroundPass, bool) {
	if d.frame == nil || !d.frame.Enabled {
		return BackgroundPass{}, false
	}
	if cam.Projection != ProjectionPerspective {
		d.log.Error("background sizing skipped", zap.Error(ErrNotPerspective))
		return BackgroundPass{}, false
	}
	focal := cam.FocalLength()
	fw, fh := cam.FilmSize()
	return BackgroundPass{
		Position:    cam.Position.Add(cam.Forward()),
		Orientation: cam.Orientation,
		ScaleX:      fw / focal,
		ScaleY:      fh / focal,
		frame:       d.frame,
	}, true
}

// Image returns the background color image.
func (p BackgroundPass) Image() image.Image {
	if p.frame == nil {
		return nil
	}
	return p.frame.Color
}

// DepthAt samples the normalized depth-buffer value at texture coordinate
// (u, v) in [0, 1]². With no depth image every fragment is infinitely far
// (1.0), so any real geometry occludes the background.
func (p BackgroundPass) DepthAt(u, v float64) float64 {
	f := p.frame
	if f == nil || f.Depth == nil {
		return 1.0
	}
	bounds := f.Depth.Bounds()
	x := bounds.Min.X + int(u*float64(bounds.Dx()-1)+0.5)
	y := bounds.Min.Y + int(v*float64(bounds.Dy()-1)+0.5)
	r16, g16, b16, _ := f.Depth.At(x, y).RGBA()
	depth := DecodeDepth(float64(r16)/0xffff, float64(g16)/0xffff, float64(b16)/0xffff)
	return depthToBuffer(depth, f.Near, f.Far)
}

// depthToBuffer converts camera-space depth to the renderer's normalized
// depth-buffer value using the near/far planes: near maps to 0, far to 1.
func depthToBuffer(z, near, far float64) float64 {
	if z <= near {
		return 0
	}
	if z >= far {
		return 1
	}
	return far * (z - near) / (z * (far - near))
}
