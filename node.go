package viser

// RootNodeName is the name of the scene root. It always exists and carries
// the fixed default orientation aligning the server's Z-up convention with
// the renderer's Y-up axes.
const RootNodeName = ""

// RootOrientation is -90° about X, applied to the root at initialization.
var RootOrientation = QuatFromAxisAngle(Vec3{X: 1}, -halfPi)

const halfPi = 1.5707963267948966

// SceneNode is a named entity in the synchronized scene. Names are path-like
// ("/tree/branch"); the store keeps a flat mapping and parent/child
// relationships are inferred from name structure only by consumers.
type SceneNode struct {
	Name        string
	Orientation Quaternion
	Position    Vec3

	// Visible is the server-set visibility. A local override, when present,
	// takes precedence; see SceneStore.EffectiveVisibility.
	Visible         bool
	visibleOverride *bool

	// PoseState tracks whether the rendering capability has a current
	// drawable for this node. Nodes start in PoseWaitForObject until
	// geometry arrives (SceneStore.MarkObjectReady).
	PoseState PoseUpdateState
}

// EffectiveVisible returns the local override if set, else the server value.
func (n *SceneNode) EffectiveVisible() bool {
	if n.visibleOverride != nil {
		return *n.visibleOverride
	}
	return n.Visible
}

func newSceneNode(name string) *SceneNode {
	return &SceneNode{
		Name:        name,
		Orientation: QuatIdentity,
		Visible:     true,
		PoseState:   PoseWaitForObject,
	}
}
