package viser

import "fmt"

// BonePose is a single bone's orientation and position.
type BonePose struct {
	Orientation Quaternion
	Position    Vec3
}

// SkinnedMeshPose holds a node's per-bone pose array. The array is replaced
// wholesale on each message and consumed once per frame by the rendering
// capability.
type SkinnedMeshPose struct {
	Initialized bool
	Bones       []BonePose
}

// SkinnedPoseStore holds per-node bone pose arrays for skeletal animation.
// Mutated only from the dispatch goroutine.
type SkinnedPoseStore struct {
	poses map[string]*SkinnedMeshPose
}

// NewSkinnedPoseStore creates an empty store.
func NewSkinnedPoseStore() *SkinnedPoseStore {
	return &SkinnedPoseStore{poses: make(map[string]*SkinnedMeshPose)}
}

// Replace overwrites the node's entire bone pose array, creating the entry
// on first use.
func (s *SkinnedPoseStore) Replace(name string, bones []BonePose) {
	p, ok := s.poses[name]
	if !ok {
		p = &SkinnedMeshPose{}
		s.poses[name] = p
	}
	p.Bones = bones
	p.Initialized = true
}

// SetBone updates a single bone. The node must already have a pose array and
// the index must be in range; violations are caller errors.
func (s *SkinnedPoseStore) SetBone(name string, index int, orientation Quaternion, position Vec3) error {
	p, ok := s.poses[name]
	if !ok {
		return fmt.Errorf("set bone: no pose array for node %q", name)
	}
	if index < 0 || index >= len(p.Bones) {
		return fmt.Errorf("set bone: index %d out of range for node %q (%d bones)",
			index, name, len(p.Bones))
	}
	p.Bones[index] = BonePose{Orientation: orientation, Position: position}
	return nil
}

// Pose returns the node's pose array, if any.
func (s *SkinnedPoseStore) Pose(name string) (*SkinnedMeshPose, bool) {
	p, ok := s.poses[name]
	return p, ok
}

// Remove drops a node's pose array.
func (s *SkinnedPoseStore) Remove(name string) {
	delete(s.poses, name)
}

// Reset drops every pose array.
func (s *SkinnedPoseStore) Reset() {
	s.poses = make(map[string]*SkinnedMeshPose)
}
