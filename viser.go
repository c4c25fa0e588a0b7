package viser

// Vec2 is a 2D vector used for canvas positions, normalized device
// coordinates, and image-plane coordinates throughout the API.
type Vec2 struct {
	X, Y float64
}

// Vec3 is a 3D vector used for positions, directions, and scales.
type Vec3 struct {
	X, Y, Z float64
}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

// Scale returns v scaled by s.
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

// Dot returns the dot product of v and o.
func (v Vec3) Dot(o Vec3) float64 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

// Cross returns the cross product v × o.
func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		v.Y*o.Z - v.Z*o.Y,
		v.Z*o.X - v.X*o.Z,
		v.X*o.Y - v.Y*o.X,
	}
}

// PointerMode gates the pointer interaction pipeline.
type PointerMode uint8

const (
	PointerDisabled   PointerMode = iota // pointer events are ignored
	PointerClick                         // pointer-up emits a single click ray
	PointerRectSelect                    // drag selects a rectangle, emits two corners
)

// String returns the wire name of the mode's event type.
func (m PointerMode) String() string {
	switch m {
	case PointerClick:
		return "click"
	case PointerRectSelect:
		return "rect-select"
	default:
		return "disabled"
	}
}

// RenderRequestState tracks the on-demand frame capture state machine.
type RenderRequestState uint8

const (
	RenderReady      RenderRequestState = iota // idle, awaiting a server request
	RenderTriggered                            // request queued for the next eligible frame
	RenderPause                                // capture suspended (e.g. tab hidden)
	RenderInProgress                           // a frame capture is underway
)

// PoseUpdateState tracks whether a scene node's drawable needs its
// transform pushed to the rendering capability.
type PoseUpdateState uint8

const (
	PoseWaitForObject PoseUpdateState = iota // geometry not yet available; transform held
	PoseNeedsUpdate                          // transform changed since last frame
	PoseUpdated                              // drawable is current
)

// --- Capability interfaces ---
//
// The windowing toolkit, GUI panel, and rendering engine are external
// collaborators. The core talks to them through these interfaces; the
// ebitenview subpackage provides one implementation.

// PointerSurface reports the pixel size of the canvas pointer events are
// measured against.
type PointerSurface interface {
	Size() (width, height float64)
}

// Overlay is the translucent surface the rect-select rectangle is drawn on.
// DrawRect receives canvas-local corner coordinates in any order.
type Overlay interface {
	DrawRect(x0, y0, x1, y1 float64)
	Clear()
}

// CameraControls lets the pointer pipeline suspend external camera-rotation
// controls for the duration of a drag session.
type CameraControls interface {
	SetRotationEnabled(enabled bool)
}

// UIStore is the external key/value widget-state store. GUI value messages
// are forwarded here; layout and widgets themselves are out of scope.
type UIStore interface {
	Set(id string, value any)
}

// FrameCapture produces the pixels of the most recently rendered frame as
// premultiplied RGBA, used to answer server render requests.
type FrameCapture interface {
	CaptureFrame(width, height int) (pixels []byte, w, h int, err error)
}
