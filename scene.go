package viser

import "go.uber.org/zap"

// SceneStore holds the mapping from node name to node transform, attributes,
// and visibility. All mutation happens on the client's dispatch goroutine
// (single-writer); no locking is needed.
//
// Messages referencing an unknown name implicitly create the node (upsert
// semantics), since geometry may arrive after an early transform update.
type SceneStore struct {
	nodes map[string]*SceneNode
	log   *zap.Logger
}

// NewSceneStore creates a store containing only the root node, with the
// fixed default orientation applied.
func NewSceneStore(log *zap.Logger) *SceneStore {
	if log == nil {
		log = zap.NewNop()
	}
	s := &SceneStore{
		nodes: make(map[string]*SceneNode),
		log:   log,
	}
	s.nodes[RootNodeName] = rootNode()
	return s
}

func rootNode() *SceneNode {
	root := newSceneNode(RootNodeName)
	root.Orientation = RootOrientation
	root.PoseState = PoseUpdated
	return root
}

// node returns the named node, creating it if absent.
func (s *SceneStore) node(name string) *SceneNode {
	n, ok := s.nodes[name]
	if !ok {
		n = newSceneNode(name)
		s.nodes[name] = n
	}
	return n
}

// UpsertTransform sets a node's orientation and position, creating the node
// on first reference. Nodes whose drawable already exists are flagged for a
// transform push on the next frame.
func (s *SceneStore) UpsertTransform(name string, orientation Quaternion, position Vec3) {
	n := s.node(name)
	n.Orientation = orientation
	n.Position = position
	if n.PoseState == PoseUpdated {
		n.PoseState = PoseNeedsUpdate
	}
}

// SetVisibility sets the server-side visibility value.
func (s *SceneStore) SetVisibility(name string, visible bool) {
	s.node(name).Visible = visible
}

// SetVisibilityOverride sets or clears (nil) the local visibility override,
// e.g. from a GUI toggle. The override takes precedence over the server value.
func (s *SceneStore) SetVisibilityOverride(name string, visible *bool) {
	s.node(name).visibleOverride = visible
}

// EffectiveVisibility returns the override if set, else the server value.
// Unknown nodes report false without being created.
func (s *SceneStore) EffectiveVisibility(name string) bool {
	n, ok := s.nodes[name]
	if !ok {
		return false
	}
	return n.EffectiveVisible()
}

// Transform returns the node's orientation and position.
func (s *SceneStore) Transform(name string) (Quaternion, Vec3, bool) {
	n, ok := s.nodes[name]
	if !ok {
		return QuatIdentity, Vec3{}, false
	}
	return n.Orientation, n.Position, true
}

// Remove deletes a node. Removing the root is ignored; the root always exists.
func (s *SceneStore) Remove(name string) {
	if name == RootNodeName {
		s.log.Warn("ignoring removal of scene root")
		return
	}
	delete(s.nodes, name)
}

// MarkObjectReady transitions a node out of PoseWaitForObject once the
// rendering capability has created its drawable. The first transform push
// happens on the following frame.
func (s *SceneStore) MarkObjectReady(name string) {
	n, ok := s.nodes[name]
	if !ok {
		return
	}
	if n.PoseState == PoseWaitForObject {
		n.PoseState = PoseNeedsUpdate
	}
}

// Reset drops every node except the root (which is recreated with its
// default orientation).
func (s *SceneStore) Reset() {
	s.nodes = make(map[string]*SceneNode)
	s.nodes[RootNodeName] = rootNode()
}

// Len returns the number of nodes, including the root.
func (s *SceneStore) Len() int { return len(s.nodes) }

// each visits every node. Iteration order is unspecified.
func (s *SceneStore) each(fn func(*SceneNode)) {
	for _, n := range s.nodes {
		fn(n)
	}
}
