package ebitenview

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// hud is a small debug readout refreshed every ~0.5 seconds.
type hud struct {
	img        *ebiten.Image
	sinceFlush float64
}

func newHUD() *hud {
	return &hud{
		img:        ebiten.NewImage(180, 64),
		sinceFlush: 1, // force an immediate first refresh
	}
}

func (h *hud) tick(v *View) {
	h.sinceFlush += 1.0 / float64(ebiten.TPS())
	if h.sinceFlush < 0.5 {
		return
	}
	h.sinceFlush = 0

	h.img.Clear()
	h.img.Fill(color.RGBA{A: 128})

	status := "live"
	if v.client.Done() {
		status = "ended"
	}
	ebitenutil.DebugPrint(h.img, fmt.Sprintf(
		"FPS: %.1f  TPS: %.1f\nnodes: %d\npointer: %s\nstream: %s",
		ebiten.ActualFPS(), ebiten.ActualTPS(),
		len(v.frame.Nodes),
		v.client.Pointer().Mode(),
		status,
	))
}

func (h *hud) draw(screen *ebiten.Image) {
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(4, 4)
	screen.DrawImage(h.img, op)
}
