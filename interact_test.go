package viser

import (
	"math"
	"testing"

	"go.uber.org/zap"
)

func nopLogger() *zap.Logger { return zap.NewNop() }

// --- Test doubles ---

type stubSurface struct{ w, h float64 }

func (s stubSurface) Size() (float64, float64) { return s.w, s.h }

type stubOverlay struct {
	rects  int
	clears int
	last   [4]float64
}

func (o *stubOverlay) DrawRect(x0, y0, x1, y1 float64) {
	o.rects++
	o.last = [4]float64{x0, y0, x1, y1}
}
func (o *stubOverlay) Clear() { o.clears++ }

type stubControls struct{ rotation bool }

func (c *stubControls) SetRotationEnabled(on bool) { c.rotation = on }

// squareCamera is a 90° fov, aspect-1 perspective camera so image
// coordinates map 1:1 onto a square canvas.
func squareCamera() *Camera {
	c := NewCamera(nil)
	c.FovY = math.Pi / 2
	c.Aspect = 1
	return c
}

func newTestPointer(cam *Camera) (*PointerController, *stubOverlay, *stubControls, *[]Message) {
	var sent []Message
	out := newSender(0, func(m Message) { sent = append(sent, m) })
	overlay := &stubOverlay{}
	controls := &stubControls{rotation: true}
	p := newPointerController(cam, stubSurface{100, 100}, overlay, controls, out, nopLogger())
	return p, overlay, controls, &sent
}

func pointerMsg(t *testing.T, sent []Message, i int) *ScenePointerMessage {
	t.Helper()
	if len(sent) <= i {
		t.Fatalf("want at least %d messages, got %d", i+1, len(sent))
	}
	m, ok := sent[i].(*ScenePointerMessage)
	if !ok {
		t.Fatalf("message %d is %T, want *ScenePointerMessage", i, sent[i])
	}
	return m
}

// --- Mode gating ---

func TestPointerDisabledIgnoresInput(t *testing.T) {
	p, _, controls, sent := newTestPointer(squareCamera())
	p.PointerDown(50, 50)
	p.PointerUp(50, 50)
	if len(*sent) != 0 {
		t.Error("disabled mode must not emit messages")
	}
	if !controls.rotation {
		t.Error("disabled mode must not touch camera controls")
	}
}

func TestPointerDownDisablesRotation(t *testing.T) {
	p, _, controls, _ := newTestPointer(squareCamera())
	p.SetMode(PointerClick)
	p.PointerDown(50, 50)
	if controls.rotation {
		t.Error("rotation still enabled during drag")
	}
	p.PointerUp(50, 50)
	if !controls.rotation {
		t.Error("rotation not restored after pointer-up")
	}
}

func TestPointerDownOutOfBoundsIgnored(t *testing.T) {
	p, _, _, sent := newTestPointer(squareCamera())
	p.SetMode(PointerClick)
	p.PointerDown(150, 50)
	if p.IsDragging() {
		t.Error("out-of-bounds press started a drag")
	}
	p.PointerUp(150, 50)
	if len(*sent) != 0 {
		t.Error("out-of-bounds press emitted a message")
	}
}

func TestSetModeRevokesMidDrag(t *testing.T) {
	p, overlay, controls, sent := newTestPointer(squareCamera())
	p.SetMode(PointerRectSelect)
	p.PointerDown(10, 10)
	p.PointerMove(60, 60)
	if overlay.rects != 1 {
		t.Fatalf("rects drawn = %d, want 1", overlay.rects)
	}

	p.SetMode(PointerDisabled)
	if p.IsDragging() {
		t.Error("drag still active after mode revoked")
	}
	if !controls.rotation {
		t.Error("rotation not restored on revocation")
	}
	if overlay.clears == 0 {
		t.Error("overlay not cleared on revocation")
	}

	p.PointerUp(60, 60)
	if len(*sent) != 0 {
		t.Error("revoked drag still emitted a message")
	}
}

// --- Click ---

func TestClickSendsRayAndScreenPos(t *testing.T) {
	p, _, _, sent := newTestPointer(squareCamera())
	p.SetMode(PointerClick)
	p.PointerDown(50, 50)
	p.PointerUp(50, 50)

	m := pointerMsg(t, *sent, 0)
	if m.EventType != "click" {
		t.Fatalf("event type = %q, want click", m.EventType)
	}
	if m.RayOrigin == nil || m.RayDirection == nil {
		t.Fatal("click message must carry a ray")
	}
	// Canvas center casts down -Z in the renderer, which is +Y in the
	// server's Z-up frame.
	d := *m.RayDirection
	if !vec3Approx(Vec3{d[0], d[1], d[2]}, Vec3{Y: 1}, 1e-6) {
		t.Errorf("ray direction = %v, want (0, 1, 0)", d)
	}
	if len(m.ScreenPos) != 1 {
		t.Fatalf("screen pos count = %d, want 1", len(m.ScreenPos))
	}
	if !approxEqual(m.ScreenPos[0][0], 0.5, epsilon) || !approxEqual(m.ScreenPos[0][1], 0.5, epsilon) {
		t.Errorf("screen pos = %v, want (0.5, 0.5)", m.ScreenPos[0])
	}
}

func TestClickWithTinyMoveStillSends(t *testing.T) {
	var sent []Message
	out := newSender(0, func(m Message) { sent = append(sent, m) })
	p := newPointerController(squareCamera(), stubSurface{200, 200}, &stubOverlay{},
		&stubControls{rotation: true}, out, nopLogger())
	p.SetMode(PointerClick)

	// Sub-threshold movement never suppresses the click itself, and the
	// final recorded position wins.
	p.PointerDown(100, 100)
	p.PointerMove(101, 101)
	p.PointerUp(101, 101)

	m := pointerMsg(t, sent, 0)
	if m.EventType != "click" {
		t.Fatalf("event type = %q, want click", m.EventType)
	}
	if !approxEqual(m.ScreenPos[0][0], 0.505, epsilon) || !approxEqual(m.ScreenPos[0][1], 0.505, epsilon) {
		t.Errorf("screen pos = %v, want (0.505, 0.505)", m.ScreenPos[0])
	}
}

func TestClickNonPerspectiveSkipsSend(t *testing.T) {
	cam := squareCamera()
	cam.Projection = ProjectionOrthographic
	p, _, _, sent := newTestPointer(cam)
	p.SetMode(PointerClick)
	p.PointerDown(50, 50)
	p.PointerUp(50, 50)
	if len(*sent) != 0 {
		t.Error("non-perspective camera must skip the click send")
	}
}

// --- Rect select ---

func TestRectSelectNormalizesCorners(t *testing.T) {
	p, _, _, sent := newTestPointer(squareCamera())
	p.SetMode(PointerRectSelect)
	// Drag up-left: start at the greater corner.
	p.PointerDown(50, 80)
	p.PointerMove(10, 20)
	p.PointerUp(10, 20)

	m := pointerMsg(t, *sent, 0)
	if m.EventType != "rect-select" {
		t.Fatalf("event type = %q, want rect-select", m.EventType)
	}
	if m.RayOrigin != nil || m.RayDirection != nil {
		t.Error("rect-select message must carry null rays")
	}
	want := [][2]float64{{0.1, 0.2}, {0.5, 0.8}}
	if len(m.ScreenPos) != 2 {
		t.Fatalf("screen pos count = %d, want 2", len(m.ScreenPos))
	}
	for i := range want {
		if !approxEqual(m.ScreenPos[i][0], want[i][0], epsilon) ||
			!approxEqual(m.ScreenPos[i][1], want[i][1], epsilon) {
			t.Errorf("corner %d = %v, want %v", i, m.ScreenPos[i], want[i])
		}
	}
}

func TestRectSelectSubThresholdSendsNothing(t *testing.T) {
	p, _, _, sent := newTestPointer(squareCamera())
	p.SetMode(PointerRectSelect)
	p.PointerDown(50, 50)
	p.PointerMove(52, 53)
	p.PointerUp(52, 53)
	if len(*sent) != 0 {
		t.Error("sub-threshold rect drag must not send")
	}
}

func TestRectSelectOverlayGatedByThreshold(t *testing.T) {
	p, overlay, _, _ := newTestPointer(squareCamera())
	p.SetMode(PointerRectSelect)
	p.PointerDown(50, 50)

	p.PointerMove(52, 52)
	if overlay.rects != 0 {
		t.Error("overlay drawn for sub-threshold movement")
	}
	p.PointerMove(60, 70)
	if overlay.rects != 1 {
		t.Fatalf("rects drawn = %d, want 1", overlay.rects)
	}
	if overlay.last != [4]float64{50, 50, 60, 70} {
		t.Errorf("rect corners = %v, want drag-start to current", overlay.last)
	}

	cleared := overlay.clears
	p.PointerUp(60, 70)
	if overlay.clears <= cleared {
		t.Error("overlay not cleared on pointer-up")
	}
}

func TestRectSelectDirectionIndependent(t *testing.T) {
	for _, c := range [][4]float64{
		{10, 20, 50, 80},
		{50, 80, 10, 20},
		{10, 80, 50, 20},
		{50, 20, 10, 80},
	} {
		p, _, _, sent := newTestPointer(squareCamera())
		p.SetMode(PointerRectSelect)
		p.PointerDown(c[0], c[1])
		p.PointerMove(c[2], c[3])
		p.PointerUp(c[2], c[3])

		m := pointerMsg(t, *sent, 0)
		want := [][2]float64{{0.1, 0.2}, {0.5, 0.8}}
		for i := range want {
			if !approxEqual(m.ScreenPos[i][0], want[i][0], epsilon) ||
				!approxEqual(m.ScreenPos[i][1], want[i][1], epsilon) {
				t.Errorf("drag %v corner %d = %v, want %v", c, i, m.ScreenPos[i], want[i])
			}
		}
	}
}

func TestPointerUpWithoutDownIgnored(t *testing.T) {
	p, _, _, sent := newTestPointer(squareCamera())
	p.SetMode(PointerClick)
	p.PointerUp(50, 50)
	if len(*sent) != 0 {
		t.Error("pointer-up without an active drag emitted a message")
	}
}
