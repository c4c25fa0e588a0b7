package viser

import "math"

// Quaternion is a rotation in w-x-y-z order, matching the wire format.
// Operations assume unit quaternions; Normalize after composing.
type Quaternion struct {
	W, X, Y, Z float64
}

// QuatIdentity is the no-rotation quaternion.
var QuatIdentity = Quaternion{W: 1}

// QuatFromAxisAngle builds a quaternion rotating angle radians about axis.
// The axis must be unit length.
func QuatFromAxisAngle(axis Vec3, angle float64) Quaternion {
	s, c := math.Sincos(angle / 2)
	return Quaternion{W: c, X: axis.X * s, Y: axis.Y * s, Z: axis.Z * s}
}

// Mul returns the composition q * o (apply o first, then q).
func (q Quaternion) Mul(o Quaternion) Quaternion {
	return Quaternion{
		W: q.W*o.W - q.X*o.X - q.Y*o.Y - q.Z*o.Z,
		X: q.W*o.X + q.X*o.W + q.Y*o.Z - q.Z*o.Y,
		Y: q.W*o.Y - q.X*o.Z + q.Y*o.W + q.Z*o.X,
		Z: q.W*o.Z + q.X*o.Y - q.Y*o.X + q.Z*o.W,
	}
}

// Conjugate returns the inverse rotation for a unit quaternion.
func (q Quaternion) Conjugate() Quaternion {
	return Quaternion{W: q.W, X: -q.X, Y: -q.Y, Z: -q.Z}
}

// Normalize returns q scaled to unit length. A degenerate (near-zero)
// quaternion normalizes to identity.
func (q Quaternion) Normalize() Quaternion {
	n := math.Sqrt(q.W*q.W + q.X*q.X + q.Y*q.Y + q.Z*q.Z)
	if n < 1e-12 {
		return QuatIdentity
	}
	inv := 1.0 / n
	return Quaternion{W: q.W * inv, X: q.X * inv, Y: q.Y * inv, Z: q.Z * inv}
}

// Rotate applies the rotation to a vector.
//
// Uses the expanded form v' = v + 2w(u × v) + 2(u × (u × v)) with u = (x,y,z),
// avoiding two full quaternion multiplies.
func (q Quaternion) Rotate(v Vec3) Vec3 {
	u := Vec3{q.X, q.Y, q.Z}
	t := u.Cross(v).Scale(2)
	return v.Add(t.Scale(q.W)).Add(u.Cross(t))
}

// quatFromAxes builds the quaternion whose rotation maps the standard basis
// onto the given orthonormal basis (columns x, y, z). Shepperd's method:
// pick the largest diagonal term for numerical stability.
func quatFromAxes(x, y, z Vec3) Quaternion {
	m00, m01, m02 := x.X, y.X, z.X
	m10, m11, m12 := x.Y, y.Y, z.Y
	m20, m21, m22 := x.Z, y.Z, z.Z

	trace := m00 + m11 + m22
	var q Quaternion
	switch {
	case trace > 0:
		s := 0.5 / math.Sqrt(trace+1)
		q = Quaternion{
			W: 0.25 / s,
			X: (m21 - m12) * s,
			Y: (m02 - m20) * s,
			Z: (m10 - m01) * s,
		}
	case m00 > m11 && m00 > m22:
		s := 2 * math.Sqrt(1+m00-m11-m22)
		q = Quaternion{
			W: (m21 - m12) / s,
			X: 0.25 * s,
			Y: (m01 + m10) / s,
			Z: (m02 + m20) / s,
		}
	case m11 > m22:
		s := 2 * math.Sqrt(1+m11-m00-m22)
		q = Quaternion{
			W: (m02 - m20) / s,
			X: (m01 + m10) / s,
			Y: 0.25 * s,
			Z: (m12 + m21) / s,
		}
	default:
		s := 2 * math.Sqrt(1+m22-m00-m11)
		q = Quaternion{
			W: (m10 - m01) / s,
			X: (m02 + m20) / s,
			Y: (m12 + m21) / s,
			Z: 0.25 * s,
		}
	}
	return q.Normalize()
}

// quatLookAt computes the orientation of a viewer at eye looking toward
// target, matching the renderer's convention of looking along local -Z.
func quatLookAt(eye, target, up Vec3) Quaternion {
	z := eye.Sub(target)
	if z.Dot(z) < 1e-24 {
		return QuatIdentity
	}
	z = z.Scale(1 / math.Sqrt(z.Dot(z)))
	x := up.Cross(z)
	if x.Dot(x) < 1e-24 {
		// up parallel to view direction: nudge with an arbitrary axis.
		x = Vec3{1, 0, 0}.Cross(z)
		if x.Dot(x) < 1e-24 {
			x = Vec3{0, 0, 1}.Cross(z)
		}
	}
	x = x.Scale(1 / math.Sqrt(x.Dot(x)))
	y := z.Cross(x)
	return quatFromAxes(x, y, z)
}
