package viser

import (
	"math"

	"go.uber.org/zap"
)

// dragThresholdPx is the per-axis pixel threshold below which pointer
// movement produces no visual side effect. It gates only the in-move
// rectangle drawing; the terminal click always uses the last recorded
// position.
const dragThresholdPx = 3.0

// PointerController converts raw canvas-local pointer events into outbound
// spatial-query messages, gated by the current interaction mode.
//
// Exactly one session is active at a time: idle → dragging on pointer-down
// while enabled and in the camera frustum, dragging → idle on pointer-up
// (always) or when the mode is revoked mid-drag.
type PointerController struct {
	mode     PointerMode
	camera   *Camera
	surface  PointerSurface
	overlay  Overlay
	controls CameraControls
	out      *sender
	log      *zap.Logger

	dragStart Vec2 // canvas pixels
	dragEnd   Vec2
	dragging  bool
}

func newPointerController(camera *Camera, surface PointerSurface, overlay Overlay,
	controls CameraControls, out *sender, log *zap.Logger) *PointerController {
	return &PointerController{
		mode:     PointerDisabled,
		camera:   camera,
		surface:  surface,
		overlay:  overlay,
		controls: controls,
		out:      out,
		log:      log,
	}
}

// Mode returns the current interaction mode.
func (p *PointerController) Mode() PointerMode { return p.mode }

// IsDragging reports whether a drag session is active.
func (p *PointerController) IsDragging() bool { return p.dragging }

// SetMode switches the interaction mode. Revoking the mode mid-drag cancels
// the session, clears the overlay, and restores camera-rotation controls.
func (p *PointerController) SetMode(mode PointerMode) {
	if mode == PointerDisabled && p.dragging {
		p.dragging = false
		p.clearVisuals()
	}
	p.mode = mode
}

// ndcAt converts a canvas position to NDC using the surface size.
func (p *PointerController) ndcAt(x, y float64) Vec2 {
	w, h := p.surface.Size()
	return NDCFromCanvas(x, y, w, h)
}

// PointerDown begins a drag session. Ignored while disabled, while a drag is
// already active, or when the position fails the in-bounds test.
func (p *PointerController) PointerDown(x, y float64) {
	if p.mode == PointerDisabled || p.dragging {
		return
	}
	if !NDCInBounds(p.ndcAt(x, y)) {
		return
	}
	p.dragStart = Vec2{x, y}
	p.dragEnd = Vec2{x, y}
	p.dragging = true
	if p.controls != nil {
		p.controls.SetRotationEnabled(false)
	}
}

// PointerMove updates the drag endpoint. Sub-threshold jitter is suppressed
// visually; in rect-select mode, movement past the threshold redraws the
// selection rectangle from drag-start to the current position.
func (p *PointerController) PointerMove(x, y float64) {
	if p.mode == PointerDisabled || !p.dragging {
		return
	}
	if !NDCInBounds(p.ndcAt(x, y)) {
		return
	}
	p.dragEnd = Vec2{x, y}

	dx := math.Abs(x - p.dragStart.X)
	dy := math.Abs(y - p.dragStart.Y)
	if dx <= dragThresholdPx && dy <= dragThresholdPx {
		return
	}
	if p.mode == PointerRectSelect && p.overlay != nil {
		p.overlay.Clear()
		p.overlay.DrawRect(p.dragStart.X, p.dragStart.Y, x, y)
	}
}

// PointerUp ends the drag session and, when a session was active, emits the
// spatial-query message for the current mode. Controls are restored and the
// overlay cleared regardless of entry state; drag state is cleared
// unconditionally.
func (p *PointerController) PointerUp(x, y float64) {
	p.clearVisuals()

	wasDragging := p.dragging
	p.dragging = false

	if p.mode == PointerDisabled || !wasDragging {
		return
	}
	if NDCInBounds(p.ndcAt(x, y)) {
		p.dragEnd = Vec2{x, y}
	}

	switch p.mode {
	case PointerClick:
		p.emitClick()
	case PointerRectSelect:
		p.emitRectSelect()
	}
}

// clearVisuals re-enables camera rotation and clears the overlay surface.
func (p *PointerController) clearVisuals() {
	if p.controls != nil {
		p.controls.SetRotationEnabled(true)
	}
	if p.overlay != nil {
		p.overlay.Clear()
	}
}

// emitClick casts a ray through drag-end, converts it to the server's
// coordinate convention, and sends a click message. A non-perspective camera
// skips the send for this event only.
func (p *PointerController) emitClick() {
	ndc := p.ndcAt(p.dragEnd.X, p.dragEnd.Y)
	origin, dir, err := p.camera.RayThroughNDC(ndc)
	if err != nil {
		p.log.Error("pointer ray cast skipped", zap.Error(err))
		return
	}
	p.out.Push(NewClickMessage(
		toServerFrame(origin),
		toServerFrame(dir),
		p.camera.ImageCoords(ndc),
	))
}

// emitRectSelect normalizes the drag corners to (min, max) component-wise,
// order-independent of drag direction, and sends a rect-select message.
// Sub-threshold drags select nothing and send nothing.
func (p *PointerController) emitRectSelect() {
	if math.Abs(p.dragEnd.X-p.dragStart.X) <= dragThresholdPx &&
		math.Abs(p.dragEnd.Y-p.dragStart.Y) <= dragThresholdPx {
		return
	}
	a := p.camera.ImageCoords(p.ndcAt(p.dragStart.X, p.dragStart.Y))
	b := p.camera.ImageCoords(p.ndcAt(p.dragEnd.X, p.dragEnd.Y))
	min := Vec2{math.Min(a.X, b.X), math.Min(a.Y, b.Y)}
	max := Vec2{math.Max(a.X, b.X), math.Max(a.Y, b.Y)}
	p.out.Push(NewRectSelectMessage(min, max))
}

// toServerFrame converts a renderer-space vector to the server's Z-up
// convention by undoing the root orientation.
func toServerFrame(v Vec3) Vec3 {
	return RootOrientation.Conjugate().Rotate(v)
}

// toRendererFrame converts a server Z-up vector into renderer space.
func toRendererFrame(v Vec3) Vec3 {
	return RootOrientation.Rotate(v)
}
