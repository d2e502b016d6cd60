// Copyright 2019 Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Initially copied from G3N: github.com/g3n/engine/math32
// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
// with modifications needed to suit Cogent Core functionality.

package math32

import "fmt"

// Quat is quaternion with X,Y,Z and W components.
// Gaussian rotation buffers store quaternions in W,X,Y,Z order;
// see [Quat.FromWXYZ] and [Quat.ToWXYZ].
type Quat struct {
	X float32
	Y float32
	Z float32
	W float32
}

// NewQuat returns a new quaternion from the specified components.
func NewQuat(x, y, z, w float32) Quat {
	return Quat{X: x, Y: y, Z: z, W: w}
}

// NewQuatAxisAngle returns a new quaternion from given axis and angle rotation (radians).
func NewQuatAxisAngle(axis Vector3, angle float32) Quat {
	nq := Quat{}
	nq.SetFromAxisAngle(axis, angle)
	return nq
}

// QuatIdentity returns the identity quaternion.
func QuatIdentity() Quat {
	return Quat{W: 1}
}

// String returns a string representation of the quaternion.
func (q Quat) String() string {
	return fmt.Sprintf("(w=%v, x=%v, y=%v, z=%v)", q.W, q.X, q.Y, q.Z)
}

// FromWXYZ sets this quaternion's components from array starting at offset,
// stored in W,X,Y,Z order.
func (q *Quat) FromWXYZ(array []float32, offset int) {
	q.W = array[offset]
	q.X = array[offset+1]
	q.Y = array[offset+2]
	q.Z = array[offset+3]
}

// ToWXYZ copies this quaternions's components to array starting at offset,
// in W,X,Y,Z order.
func (q Quat) ToWXYZ(array []float32, offset int) {
	array[offset] = q.W
	array[offset+1] = q.X
	array[offset+2] = q.Y
	array[offset+3] = q.Z
}

// IsIdentity returns if this is an identity quaternion.
func (q Quat) IsIdentity() bool {
	return q.X == 0 && q.Y == 0 && q.Z == 0 && q.W == 1
}

// SetFromAxisAngle sets this quaternion with the rotation
// specified by the given axis and angle.
func (q *Quat) SetFromAxisAngle(axis Vector3, angle float32) {
	halfAngle := angle / 2
	s := Sin(halfAngle)
	q.X = axis.X * s
	q.Y = axis.Y * s
	q.Z = axis.Z * s
	q.W = Cos(halfAngle)
}

// LengthSquared returns this quanternion's length squared.
func (q Quat) LengthSquared() float32 {
	return q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W
}

// Length returns the length of this quaternion
func (q Quat) Length() float32 {
	return Sqrt(q.LengthSquared())
}

// Normal returns the normalized version of this quaternion.
// A zero quaternion is returned as the identity.
func (q Quat) Normal() Quat {
	l := q.Length()
	if l == 0 {
		return QuatIdentity()
	}
	l = 1 / l
	return Quat{X: q.X * l, Y: q.Y * l, Z: q.Z * l, W: q.W * l}
}

// ToMatrix3 returns the rotation matrix of this quaternion,
// which is assumed to be normalized.
func (q Quat) ToMatrix3() Matrix3 {
	r, x, y, z := q.W, q.X, q.Y, q.Z
	return Matrix3FromRows(
		1-2*(y*y+z*z), 2*(x*y-r*z), 2*(x*z+r*y),
		2*(x*y+r*z), 1-2*(x*x+z*z), 2*(y*z-r*x),
		2*(x*z-r*y), 2*(y*z+r*x), 1-2*(x*x+y*y),
	)
}
