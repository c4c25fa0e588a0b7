package viser

import "testing"

func TestPoseReplaceWholesale(t *testing.T) {
	s := NewSkinnedPoseStore()
	s.Replace("/mesh", []BonePose{{Position: Vec3{X: 1}}, {Position: Vec3{X: 2}}})

	p, ok := s.Pose("/mesh")
	if !ok || !p.Initialized {
		t.Fatal("pose array missing or uninitialized after replace")
	}
	if len(p.Bones) != 2 {
		t.Fatalf("bones = %d, want 2", len(p.Bones))
	}

	// A shorter replacement is wholesale, not a partial merge.
	s.Replace("/mesh", []BonePose{{Position: Vec3{Y: 9}}})
	p, _ = s.Pose("/mesh")
	if len(p.Bones) != 1 || p.Bones[0].Position.Y != 9 {
		t.Errorf("bones after second replace = %+v, want single bone at y=9", p.Bones)
	}
}

func TestPoseSetBone(t *testing.T) {
	s := NewSkinnedPoseStore()
	if err := s.SetBone("/missing", 0, QuatIdentity, Vec3{}); err == nil {
		t.Error("SetBone on unknown node must error")
	}

	s.Replace("/mesh", make([]BonePose, 3))
	if err := s.SetBone("/mesh", 3, QuatIdentity, Vec3{}); err == nil {
		t.Error("SetBone out of range must error")
	}
	if err := s.SetBone("/mesh", -1, QuatIdentity, Vec3{}); err == nil {
		t.Error("SetBone with negative index must error")
	}

	if err := s.SetBone("/mesh", 1, QuatIdentity, Vec3{Z: 4}); err != nil {
		t.Fatal(err)
	}
	p, _ := s.Pose("/mesh")
	if p.Bones[1].Position.Z != 4 {
		t.Errorf("bone 1 = %+v, want z=4", p.Bones[1])
	}
}

func TestPoseRemoveAndReset(t *testing.T) {
	s := NewSkinnedPoseStore()
	s.Replace("/a", make([]BonePose, 1))
	s.Replace("/b", make([]BonePose, 1))

	s.Remove("/a")
	if _, ok := s.Pose("/a"); ok {
		t.Error("pose still present after remove")
	}

	s.Reset()
	if _, ok := s.Pose("/b"); ok {
		t.Error("pose still present after reset")
	}
}
