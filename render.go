package viser

import "sort"

// NodeView is a transient read-only snapshot of one scene node.
type NodeView struct {
	Name        string
	Orientation Quaternion
	Position    Vec3
	Visible     bool
	// NeedsObject is set while geometry has not yet arrived; the rendering
	// capability creates the drawable and calls SceneStore.MarkObjectReady.
	NeedsObject bool
	// PoseChanged is set when the transform must be pushed to the drawable
	// this frame.
	PoseChanged bool
}

// CameraView is a value snapshot of the camera for drawing.
type CameraView struct {
	Position    Vec3
	Orientation Quaternion
	FovY        float64
	Aspect      float64
	Near, Far   float64
}

// FrameView is the pull-based "compute current view" result the rendering
// capability consumes once per frame. It must not be retained across frames;
// bone pose slices alias store memory and are valid until the next Update.
type FrameView struct {
	Camera     CameraView
	Nodes      []NodeView
	Background *BackgroundPass // nil: contribute nothing (discard)
	BonePoses  map[string][]BonePose
}

// View builds the current frame view. Nodes flagged PoseNeedsUpdate are
// reported once with PoseChanged set and then marked updated; call exactly
// once per frame, on the dispatch goroutine.
func (c *Client) View() FrameView {
	view := FrameView{
		Camera: CameraView{
			Position:    c.Camera.Position,
			Orientation: c.Camera.Orientation,
			FovY:        c.Camera.FovY,
			Aspect:      c.Camera.Aspect,
			Near:        c.Camera.Near,
			Far:         c.Camera.Far,
		},
		Nodes: make([]NodeView, 0, c.Scene.Len()),
	}

	c.Scene.each(func(n *SceneNode) {
		view.Nodes = append(view.Nodes, NodeView{
			Name:        n.Name,
			Orientation: n.Orientation,
			Position:    n.Position,
			Visible:     n.EffectiveVisible(),
			NeedsObject: n.PoseState == PoseWaitForObject,
			PoseChanged: n.PoseState == PoseNeedsUpdate,
		})
		if n.PoseState == PoseNeedsUpdate {
			n.PoseState = PoseUpdated
		}
	})
	sort.Slice(view.Nodes, func(i, j int) bool {
		return view.Nodes[i].Name < view.Nodes[j].Name
	})

	if pass, ok := c.Background.Pass(c.Camera); ok {
		view.Background = &pass
	}

	if len(c.Poses.poses) > 0 {
		view.BonePoses = make(map[string][]BonePose, len(c.Poses.poses))
		for name, p := range c.Poses.poses {
			if p.Initialized {
				view.BonePoses[name] = p.Bones
			}
		}
	}
	return view
}
