// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gaussian

import (
	"cogentcore.org/gsplat/math32"
	"cogentcore.org/gsplat/tensor"
	"cogentcore.org/gsplat/tensor/matrix"
	"cogentcore.org/gsplat/tensor/tmath"
)

// XYZ returns the positions, [N,3]. The tensor is the parameter
// column itself and must not be resized.
func (gs *Set) XYZ() *tensor.Float32 {
	return gs.Params.Column(XYZCol)
}

// Scaling returns the activated (exponentiated) scales, [N,3].
func (gs *Set) Scaling() *tensor.Float32 {
	out := tensor.NewFloat32()
	tmath.Exp(gs.Params.Column(ScalingCol), out)
	return out
}

// Rotation returns the normalized rotation quaternions in w,x,y,z order, [N,4].
// A zero quaternion normalizes to the identity.
func (gs *Set) Rotation() *tensor.Float32 {
	rot := gs.Params.Column(RotationCol)
	out := rot.ZerosLike()
	tensor.VectorizeThreaded(12, rot.NumRows(), func(i int) {
		q := quatAt(rot, i)
		q.Normal().ToWXYZ(out.Values, i*4)
	})
	return out
}

// Opacity returns the activated (sigmoid) opacities, [N,1].
func (gs *Set) Opacity() *tensor.Float32 {
	out := tensor.NewFloat32()
	tmath.Sigmoid(gs.Params.Column(OpacityCol), out)
	return out
}

// Features returns all colour coefficients, DC then rest, [N,(D+1)²,3].
func (gs *Set) Features() *tensor.Float32 {
	dc := gs.Params.Column(FeaturesDCCol)
	rest := gs.Params.Column(FeaturesRestCol)
	n := gs.NumPoints()
	_, rc := rest.RowCellSize()
	k := rest.DimSize(1) + 1
	out := tensor.NewFloat32(n, k, 3)
	tensor.VectorizeThreaded(k*3, n, func(i int) {
		row := out.RowValues(i)
		copy(row[:3], dc.RowValues(i))
		copy(row[3:], rest.Values[i*rc:(i+1)*rc])
	})
	return out
}

// maxScales returns the maximum activated scale axis of each primitive, [N].
func (gs *Set) maxScales() *tensor.Float32 {
	out := tensor.NewFloat32()
	tmath.RowMax(gs.Scaling(), out)
	return out
}

func quatAt(rot *tensor.Float32, i int) math32.Quat {
	var q math32.Quat
	q.FromWXYZ(rot.Values, i*4)
	return q
}

func vec3At(t *tensor.Float32, i int) math32.Vector3 {
	var v math32.Vector3
	v.FromSlice(t.Values, i*3)
	return v
}

// Covariance returns the 3D covariance of each primitive,
// Σ = L·Lᵀ with L = R(q)·diag(scale·modifier), as the 6 values
// of its upper triangle in the order 00, 01, 02, 11, 12, 22, [N,6].
func (gs *Set) Covariance(modifier float32) *tensor.Float32 {
	n := gs.NumPoints()
	scl := gs.Scaling()
	rot := gs.Params.Column(RotationCol)
	out := tensor.NewFloat32(n, 6)
	tensor.VectorizeThreaded(60, n, func(i int) {
		r := quatAt(rot, i).Normal().ToMatrix3()
		l := r.Mul(math32.Matrix3Diagonal(vec3At(scl, i).MulScalar(modifier)))
		cov := l.Mul(l.Transpose())
		up := cov.UpperTriangle()
		copy(out.RowValues(i), up[:])
	})
	return out
}

// CovarianceMatrix returns the full 3x3 covariance matrices
// of [Set.Covariance], [N,3,3].
func (gs *Set) CovarianceMatrix(modifier float32) *tensor.Float64 {
	return matrix.SymFromUpperRows(3, gs.Covariance(modifier))
}
