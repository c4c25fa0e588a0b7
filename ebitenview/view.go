// Package ebitenview hosts a viser client inside an Ebitengine window. It
// implements the client's capability interfaces (pointer surface, selection
// overlay, camera controls, frame capture) and draws a lightweight preview of
// the synchronized scene: the background image pass plus a marker per node.
package ebitenview

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"go.uber.org/zap"

	"github.com/rebots-online/viser"
)

const (
	orbitSpeed = 0.008 // radians per pixel
	zoomSpeed  = 0.25  // distance fraction per wheel notch
)

// Config controls the window.
type Config struct {
	Title         string
	Width, Height int
	HUD           bool
}

// View is the ebiten.Game hosting a client. Create it with New, wire it into
// viser.NewClient as the Surface, Overlay, Controls, and Capture capabilities,
// then call Bind and ebiten.RunGame.
type View struct {
	client *viser.Client
	log    *zap.Logger

	width, height int
	frame         viser.FrameView

	// selection overlay, canvas pixels
	rect struct {
		active         bool
		x0, y0, x1, y1 float64
	}

	rotationEnabled bool
	orbiting        bool
	lastMouseX      float64
	lastMouseY      float64

	bg    *ebiten.Image
	bgSrc image.Image

	hud *hud
}

// New creates a view with the given window configuration.
func New(cfg Config, log *zap.Logger) *View {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Width <= 0 {
		cfg.Width = 1280
	}
	if cfg.Height <= 0 {
		cfg.Height = 720
	}
	if cfg.Title == "" {
		cfg.Title = "viser"
	}
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	v := &View{
		log:             log,
		width:           cfg.Width,
		height:          cfg.Height,
		rotationEnabled: true,
	}
	if cfg.HUD {
		v.hud = newHUD()
	}
	return v
}

// Bind attaches the client the view drives. Must be called before RunGame.
func (v *View) Bind(c *viser.Client) { v.client = c }

// --- Capability interfaces ---

// Size reports the canvas size in pixels.
func (v *View) Size() (float64, float64) {
	return float64(v.width), float64(v.height)
}

// DrawRect records the selection rectangle to draw this frame.
func (v *View) DrawRect(x0, y0, x1, y1 float64) {
	v.rect.active = true
	v.rect.x0, v.rect.y0, v.rect.x1, v.rect.y1 = x0, y0, x1, y1
}

// Clear removes the selection rectangle.
func (v *View) Clear() { v.rect.active = false }

// SetRotationEnabled suspends or restores orbit controls.
func (v *View) SetRotationEnabled(enabled bool) {
	v.rotationEnabled = enabled
	if !enabled {
		v.orbiting = false
	}
}

// CaptureFrame renders the current frame at the requested size and returns
// its premultiplied RGBA pixels.
func (v *View) CaptureFrame(width, height int) ([]byte, int, int, error) {
	if width <= 0 || height <= 0 {
		width, height = v.width, v.height
	}
	img := ebiten.NewImage(width, height)
	defer img.Deallocate()
	v.drawScene(img, float64(width), float64(height))
	pixels := make([]byte, 4*width*height)
	img.ReadPixels(pixels)
	return pixels, width, height, nil
}

// --- ebiten.Game ---

// Update pumps pointer input into the client, advances it one tick, and
// pulls the frame view for Draw.
func (v *View) Update() error {
	v.pumpPointer()
	v.client.Update()
	v.frame = v.client.View()
	v.createPendingObjects()
	if v.hud != nil {
		v.hud.tick(v)
	}
	if v.client.Done() {
		return ebiten.Termination
	}
	return nil
}

// pumpPointer forwards mouse input. While rotation is suspended (an
// interaction drag is active) the same events feed the pointer pipeline
// instead of the orbit controls.
func (v *View) pumpPointer() {
	mx, my := ebiten.CursorPosition()
	x, y := float64(mx), float64(my)

	mode := v.client.Pointer().Mode()
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		if mode != viser.PointerDisabled {
			v.client.Pointer().PointerDown(x, y)
		}
		if v.rotationEnabled {
			v.orbiting = true
		}
	}
	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		if v.client.Pointer().IsDragging() {
			v.client.Pointer().PointerMove(x, y)
		} else if v.orbiting && v.rotationEnabled {
			v.orbit(x-v.lastMouseX, y-v.lastMouseY)
		}
	}
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		v.orbiting = false
		if v.client.Pointer().IsDragging() {
			v.client.Pointer().PointerUp(x, y)
		}
	}
	if _, wheelY := ebiten.Wheel(); wheelY != 0 && v.rotationEnabled {
		v.zoom(wheelY)
	}
	v.lastMouseX, v.lastMouseY = x, y
}

// orbit rotates the camera around its look-at target.
func (v *View) orbit(dx, dy float64) {
	if dx == 0 && dy == 0 {
		return
	}
	cam := v.client.Camera
	offset := cam.Position.Sub(cam.LookAtTarget)

	yaw := viser.QuatFromAxisAngle(cam.Up, -dx*orbitSpeed)
	right := cam.Orientation.Rotate(viser.Vec3{X: 1})
	pitch := viser.QuatFromAxisAngle(right, -dy*orbitSpeed)

	offset = yaw.Mul(pitch).Rotate(offset)
	cam.SetPose(cam.LookAtTarget.Add(offset), cam.LookAtTarget, cam.Up)
}

// zoom moves the camera along the view axis toward or away from the target.
func (v *View) zoom(notches float64) {
	cam := v.client.Camera
	offset := cam.Position.Sub(cam.LookAtTarget)
	scale := math.Pow(1-zoomSpeed, notches)
	dist := math.Sqrt(offset.Dot(offset)) * scale
	if dist < cam.Near*2 {
		return
	}
	cam.SetPose(cam.LookAtTarget.Add(offset.Scale(scale)), cam.LookAtTarget, cam.Up)
}

// createPendingObjects acknowledges nodes whose geometry this preview can
// represent immediately; markers need no asset loading.
func (v *View) createPendingObjects() {
	for _, n := range v.frame.Nodes {
		if n.NeedsObject {
			v.client.Scene.MarkObjectReady(n.Name)
		}
	}
}

// Draw renders the preview: background pass, node markers, selection
// rectangle, HUD.
func (v *View) Draw(screen *ebiten.Image) {
	v.drawScene(screen, float64(v.width), float64(v.height))

	if v.rect.active {
		x := float32(math.Min(v.rect.x0, v.rect.x1))
		y := float32(math.Min(v.rect.y0, v.rect.y1))
		w := float32(math.Abs(v.rect.x1 - v.rect.x0))
		h := float32(math.Abs(v.rect.y1 - v.rect.y0))
		vector.StrokeRect(screen, x, y, w, h, 1.5, color.RGBA{R: 0xff, G: 0xcc, A: 0xff}, true)
	}
	if v.hud != nil {
		v.hud.draw(screen)
	}
}

func (v *View) drawScene(dst *ebiten.Image, width, height float64) {
	dst.Fill(color.RGBA{R: 0x14, G: 0x14, B: 0x18, A: 0xff})

	if v.frame.Background != nil {
		v.drawBackground(dst, width, height)
	}
	for _, n := range v.frame.Nodes {
		if !n.Visible || n.Name == viser.RootNodeName {
			continue
		}
		x, y, ok := project(v.frame.Camera, n.Position, width, height)
		if !ok {
			continue
		}
		drawMarker(dst, float32(x), float32(y))
	}
}

// drawBackground stretches the background color image over the full canvas.
// Its quad always fills the camera frustum exactly, so a plain scale matches
// the pass geometry.
func (v *View) drawBackground(dst *ebiten.Image, width, height float64) {
	src := v.frame.Background.Image()
	if src == nil {
		return
	}
	if src != v.bgSrc {
		v.bgSrc = src
		v.bg = ebiten.NewImageFromImage(src)
	}
	b := v.bg.Bounds()
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(width/float64(b.Dx()), height/float64(b.Dy()))
	dst.DrawImage(v.bg, op)
}

func drawMarker(dst *ebiten.Image, x, y float32) {
	const r = 4
	c := color.RGBA{R: 0x4f, G: 0xc3, B: 0xf7, A: 0xff}
	vector.StrokeLine(dst, x-r, y, x+r, y, 1, c, true)
	vector.StrokeLine(dst, x, y-r, x, y+r, 1, c, true)
}

// Layout tracks the window size so pointer math follows resizes.
func (v *View) Layout(outsideWidth, outsideHeight int) (int, int) {
	v.width, v.height = outsideWidth, outsideHeight
	return outsideWidth, outsideHeight
}

// Run blocks in the ebiten main loop until the window closes or the inbound
// stream ends. Bind must have been called.
func (v *View) Run() error {
	if v.client == nil {
		return errors.New("ebitenview: no client bound")
	}
	if err := ebiten.RunGame(v); err != nil {
		return fmt.Errorf("run view: %w", err)
	}
	return nil
}
