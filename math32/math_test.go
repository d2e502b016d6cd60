// Copyright 2021 Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package math32

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const standardTol = 1.0e-6

func TestSigmoid(t *testing.T) {
	assert.Equal(t, float32(0), InverseSigmoid(0.5))
	assert.Equal(t, float32(0.5), Sigmoid(InverseSigmoid(0.5)))
	assert.InDelta(t, 0.01, Sigmoid(InverseSigmoid(0.01)), standardTol)
	assert.InDelta(t, 0.99, Sigmoid(InverseSigmoid(0.99)), standardTol)
	assert.Less(t, Sigmoid(-100), float32(1e-6))
	assert.True(t, IsNaN(NaN()))
	assert.True(t, IsInf(Log(0), -1))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, float32(0), Clamp(-1, 0, 1))
	assert.Equal(t, float32(1), Clamp(3, 0, 1))
	assert.Equal(t, float32(0.25), Clamp(0.25, 0, 1))
}

func TestQuatMatrix(t *testing.T) {
	assert.Equal(t, Identity3(), QuatIdentity().ToMatrix3())

	q := NewQuatAxisAngle(Vec3(0, 0, 1), Pi/2)
	m := q.Normal().ToMatrix3()
	v := m.MulVector3(Vec3(1, 0, 0))
	assert.InDelta(t, 0, v.X, standardTol)
	assert.InDelta(t, 1, v.Y, standardTol)
	assert.InDelta(t, 0, v.Z, standardTol)

	// rotation matrices are orthonormal
	rr := m.Mul(m.Transpose())
	for i := range 9 {
		assert.InDelta(t, Identity3()[i], rr[i], 1e-6)
	}

	s := NewQuat(0, 0, 0, 2).Normal()
	assert.True(t, s.IsIdentity())
	assert.True(t, Quat{}.Normal().IsIdentity())

	buf := make([]float32, 4)
	q.ToWXYZ(buf, 0)
	var q2 Quat
	q2.FromWXYZ(buf, 0)
	assert.Equal(t, q, q2)
	assert.Equal(t, q.W, buf[0])
}

func TestMatrix3(t *testing.T) {
	m := Matrix3FromRows(1, 2, 3, 4, 5, 6, 7, 8, 9)
	assert.Equal(t, float32(2), m.At(0, 1))
	assert.Equal(t, float32(4), m.At(1, 0))
	assert.Equal(t, m, m.Mul(Identity3()))
	assert.Equal(t, Vec3(6, 15, 24), m.MulVector3(Vec3(1, 1, 1)))
	d := Matrix3Diagonal(Vec3(1, 2, 3))
	assert.Equal(t, [6]float32{1, 0, 0, 2, 0, 3}, d.UpperTriangle())
	assert.Equal(t, float32(3), Vec3(1, 3, 2).MaxComponent())
	assert.Equal(t, float32(5), Vec3(3, 4, 0).Length())
}
