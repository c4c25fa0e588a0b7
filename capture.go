package viser

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
)

// encodeCapture converts a premultiplied RGBA pixel buffer to straight-alpha
// NRGBA and encodes it as PNG, the reply format for render requests.
func encodeCapture(pixels []byte, w, h int) ([]byte, error) {
	if len(pixels) != 4*w*h {
		return nil, fmt.Errorf("encode capture: got %d bytes for %dx%d", len(pixels), w, h)
	}

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(pixels); i += 4 {
		r, g, b, a := pixels[i], pixels[i+1], pixels[i+2], pixels[i+3]
		if a > 0 && a < 255 {
			r = uint8(min(int(r)*255/int(a), 255))
			g = uint8(min(int(g)*255/int(a), 255))
			b = uint8(min(int(b)*255/int(a), 255))
		}
		img.Pix[i] = r
		img.Pix[i+1] = g
		img.Pix[i+2] = b
		img.Pix[i+3] = a
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode capture: %w", err)
	}
	return buf.Bytes(), nil
}
