package viser

// syntheticPointerEvent is a single injected pointer event in canvas-local
// coordinates, identical to real pointer input.
type syntheticPointerEvent struct {
	x, y float64
	kind pointerEventKind
}

type pointerEventKind uint8

const (
	pointerPress pointerEventKind = iota
	pointerDrag
	pointerRelease
)

// InjectPress queues a pointer press at the given canvas coordinates. The
// event is consumed at the start of the next Update.
func (c *Client) InjectPress(x, y float64) {
	c.injectQueue = append(c.injectQueue, syntheticPointerEvent{x, y, pointerPress})
}

// InjectMove queues a pointer move with the button held down.
func (c *Client) InjectMove(x, y float64) {
	c.injectQueue = append(c.injectQueue, syntheticPointerEvent{x, y, pointerDrag})
}

// InjectRelease queues a pointer release.
func (c *Client) InjectRelease(x, y float64) {
	c.injectQueue = append(c.injectQueue, syntheticPointerEvent{x, y, pointerRelease})
}

// InjectClick queues a press followed by a release at the same position.
func (c *Client) InjectClick(x, y float64) {
	c.InjectPress(x, y)
	c.InjectRelease(x, y)
}

// InjectDrag queues a full drag: press at (fromX, fromY), steps interpolated
// moves, and release at (toX, toY).
func (c *Client) InjectDrag(fromX, fromY, toX, toY float64, steps int) {
	c.InjectPress(fromX, fromY)
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps+1)
		c.InjectMove(fromX+(toX-fromX)*t, fromY+(toY-fromY)*t)
	}
	c.InjectRelease(toX, toY)
}

// drainInjected feeds queued synthetic events through the pointer
// controller. Called at the start of Update.
func (c *Client) drainInjected() {
	for _, e := range c.injectQueue {
		switch e.kind {
		case pointerPress:
			c.pointer.PointerDown(e.x, e.y)
		case pointerDrag:
			c.pointer.PointerMove(e.x, e.y)
		case pointerRelease:
			c.pointer.PointerUp(e.x, e.y)
		}
	}
	c.injectQueue = c.injectQueue[:0]
}
