package viser

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"time"

	"go.uber.org/zap"
)

// Options carries the external capabilities handed to a Client. All fields
// are optional; absent capabilities disable the features that need them.
type Options struct {
	Logger   *zap.Logger
	Surface  PointerSurface
	Overlay  Overlay
	Controls CameraControls
	UIStore  UIStore
	Capture  FrameCapture
}

// Client is the synchronization context: it exclusively owns the scene,
// camera, pose, background, and render-request state, and is the single
// writer for all of them.
//
// The embedding loop drives it cooperatively: call Update once per tick to
// drain inbound messages and advance animations, feed pointer events through
// Pointer, and call View to pull the current frame. All of these must happen
// on one goroutine.
type Client struct {
	Scene          *SceneStore
	Camera         *Camera
	Poses          *SkinnedPoseStore
	Background     *DepthCompositor
	RenderRequests *RenderRequestController

	transport Transport
	pointer   *PointerController
	ui        UIStore
	capture   FrameCapture
	log       *zap.Logger

	pointerOut *sender
	camReport  *sender

	lastTick     time.Time
	exhausted    bool // incoming channel closed (playback done / transport closed)
	lastReported struct {
		position    Vec3
		orientation Quaternion
		valid       bool
	}

	injectQueue []syntheticPointerEvent
}

// NewClient wires a client around a transport.
func NewClient(t Transport, opts Options) *Client {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	c := &Client{
		Scene:          NewSceneStore(log),
		Camera:         NewCamera(log),
		Poses:          NewSkinnedPoseStore(),
		Background:     NewDepthCompositor(log),
		RenderRequests: newRenderRequestController(log),
		transport:      t,
		ui:             opts.UIStore,
		capture:        opts.Capture,
		log:            log,
	}
	c.pointerOut = newTransportSender(t, log)
	c.camReport = newTransportSender(t, log)
	c.pointer = newPointerController(c.Camera, opts.Surface, opts.Overlay,
		opts.Controls, c.pointerOut, log)
	return c
}

// Pointer returns the pointer interaction controller.
func (c *Client) Pointer() *PointerController { return c.pointer }

// Done reports whether the inbound stream has ended. In playback mode this
// is the normal terminal state, not an error.
func (c *Client) Done() bool { return c.exhausted }

// Pause suspends render-request capture (e.g. the tab was hidden).
func (c *Client) Pause() { c.RenderRequests.Pause() }

// Resume lifts a pause.
func (c *Client) Resume() { c.RenderRequests.Resume() }

// Update advances the client by one tick: injected pointer events, inbound
// messages (in FIFO order), camera animation, throttled senders, and the
// render-request machine. Call once per display refresh.
func (c *Client) Update() {
	now := time.Now()
	var dt float32
	if !c.lastTick.IsZero() {
		dt = float32(now.Sub(c.lastTick).Seconds())
	}
	c.lastTick = now

	c.drainInjected()
	c.drainMessages()
	c.Camera.update(dt)
	c.reportCamera()
	c.pointerOut.Flush()
	c.camReport.Flush()
	c.serveRenderRequest()
}

// Run drives Update at the given interval until the context ends or the
// inbound stream is exhausted. For headless embedding; windowed hosts call
// Update from their own frame loop instead.
func (c *Client) Run(ctx context.Context, tick time.Duration) error {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			c.Update()
			if c.exhausted {
				return nil
			}
		}
	}
}

// drainMessages applies every message already queued by the transport.
// Blocking here would stall the frame loop, so only ready messages are taken.
func (c *Client) drainMessages() {
	for {
		select {
		case m, ok := <-c.transport.Incoming():
			if !ok {
				if !c.exhausted {
					c.exhausted = true
					c.log.Info("inbound stream ended")
				}
				return
			}
			c.dispatch(m)
		default:
			return
		}
	}
}

// dispatch applies one inbound message to the owned stores.
func (c *Client) dispatch(m Message) {
	switch msg := m.(type) {
	case *SceneNodeTransformMessage:
		c.Scene.UpsertTransform(msg.Name, msg.Orientation(), vec3(msg.Position))
	case *SceneNodeVisibilityMessage:
		c.Scene.SetVisibility(msg.Name, msg.Visible)
	case *RemoveSceneNodeMessage:
		c.Scene.Remove(msg.Name)
		c.Poses.Remove(msg.Name)
	case *SetBonePosesMessage:
		c.applyBonePoses(msg)
	case *SetCameraMessage:
		c.applyCamera(msg)
	case *RenderRequestMessage:
		c.RenderRequests.HandleRequest(RenderRequest{
			Width:  msg.Width,
			Height: msg.Height,
			Format: msg.Format,
		})
	case *BackgroundImageMessage:
		c.applyBackground(msg)
	case *GuiSetValueMessage:
		if c.ui != nil {
			c.ui.Set(msg.ID, msg.Value)
		}
	case *ResetSceneMessage:
		c.Scene.Reset()
		c.Poses.Reset()
	default:
		c.log.Debug("ignoring unhandled message", zap.String("type", m.MessageType()))
	}
}

func (c *Client) applyBonePoses(msg *SetBonePosesMessage) {
	if len(msg.Wxyzs) != len(msg.Positions) {
		c.log.Warn("bone pose arrays have mismatched lengths",
			zap.String("name", msg.Name),
			zap.Int("orientations", len(msg.Wxyzs)),
			zap.Int("positions", len(msg.Positions)))
		return
	}
	bones := make([]BonePose, len(msg.Wxyzs))
	for i := range bones {
		w := msg.Wxyzs[i]
		bones[i] = BonePose{
			Orientation: Quaternion{W: w[0], X: w[1], Y: w[2], Z: w[3]},
			Position:    vec3(msg.Positions[i]),
		}
	}
	c.Poses.Replace(msg.Name, bones)
}

func (c *Client) applyCamera(msg *SetCameraMessage) {
	if msg.Fov > 0 {
		c.Camera.FovY = msg.Fov
	}
	// Wire poses are in the server's Z-up frame.
	pos := toRendererFrame(vec3(msg.Position))
	lookAt := toRendererFrame(vec3(msg.LookAt))
	up := toRendererFrame(vec3(msg.Up))
	if msg.AnimateSeconds > 0 {
		if up.Dot(up) > 1e-24 {
			c.Camera.Up = up
		}
		c.Camera.FlyTo(pos, lookAt, float32(msg.AnimateSeconds))
		return
	}
	c.Camera.SetPose(pos, lookAt, up)
}

func (c *Client) applyBackground(msg *BackgroundImageMessage) {
	colorImg, err := decodePNG(msg.ColorPNG)
	if err != nil {
		c.log.Warn("bad background color image", zap.Error(err))
		return
	}
	var depthImg image.Image
	if len(msg.DepthPNG) > 0 {
		depthImg, err = decodePNG(msg.DepthPNG)
		if err != nil {
			c.log.Warn("bad background depth image", zap.Error(err))
			depthImg = nil
		}
	}
	c.Background.SetFrame(colorImg, depthImg, msg.Enabled, c.Camera)
}

func decodePNG(data []byte) (image.Image, error) {
	return png.Decode(bytes.NewReader(data))
}

// reportCamera pushes a throttled upstream pose report whenever the camera
// pose changed since the last report.
func (c *Client) reportCamera() {
	lr := &c.lastReported
	if lr.valid && lr.position == c.Camera.Position && lr.orientation == c.Camera.Orientation {
		return
	}
	lr.position = c.Camera.Position
	lr.orientation = c.Camera.Orientation
	lr.valid = true

	pos := toServerFrame(c.Camera.Position)
	look := toServerFrame(c.Camera.LookAtTarget)
	q := RootOrientation.Conjugate().Mul(c.Camera.Orientation)
	c.camReport.Push(&ViewerCameraMessage{
		Type:     TypeViewerCamera,
		Wxyz:     [4]float64{q.W, q.X, q.Y, q.Z},
		Position: [3]float64{pos.X, pos.Y, pos.Z},
		Fov:      c.Camera.FovY,
		Aspect:   c.Camera.Aspect,
		LookAt:   [3]float64{look.X, look.Y, look.Z},
	})
}

// serveRenderRequest runs one step of the render-request machine: pick up a
// triggered request, capture, encode, reply, and return to ready.
func (c *Client) serveRenderRequest() {
	req, ok := c.RenderRequests.TakePending()
	if !ok {
		return
	}
	if c.capture == nil {
		c.log.Warn("render request dropped: no frame capture capability")
		c.RenderRequests.Complete()
		return
	}

	pixels, w, h, err := c.capture.CaptureFrame(req.Width, req.Height)
	if err != nil {
		c.log.Error("frame capture failed", zap.Error(err))
		c.RenderRequests.Complete()
		return
	}
	payload, err := encodeCapture(pixels, w, h)
	if err != nil {
		c.log.Error("frame encode failed", zap.Error(err))
		c.RenderRequests.Complete()
		return
	}
	if err := c.transport.Send(&RenderResponseMessage{
		Type:    TypeRenderResponse,
		Payload: payload,
		Format:  "image/png",
	}); err != nil {
		c.log.Warn("render response send failed", zap.Error(err))
	}
	c.RenderRequests.Complete()
}

// SetGuiValue records a locally changed widget value and reports it upstream.
func (c *Client) SetGuiValue(id string, value any) {
	if c.ui != nil {
		c.ui.Set(id, value)
	}
	if err := c.transport.Send(&GuiUpdateMessage{Type: TypeGuiUpdate, ID: id, Value: value}); err != nil {
		c.log.Warn("gui update send failed", zap.Error(err))
	}
}

func vec3(a [3]float64) Vec3 { return Vec3{a[0], a[1], a[2]} }
