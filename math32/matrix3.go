// Copyright 2019 Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package math32

// Matrix3 is 3x3 matrix organized internally as column matrix.
type Matrix3 [9]float32

// Identity3 returns a new identity [Matrix3] matrix.
func Identity3() Matrix3 {
	return Matrix3{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	}
}

// Matrix3FromRows returns a new [Matrix3] from the given elements
// specified in row-major reading order.
func Matrix3FromRows(n11, n12, n13, n21, n22, n23, n31, n32, n33 float32) Matrix3 {
	return Matrix3{
		n11, n21, n31,
		n12, n22, n32,
		n13, n23, n33,
	}
}

// Matrix3Diagonal returns a new diagonal matrix with the given vector on the diagonal.
func Matrix3Diagonal(d Vector3) Matrix3 {
	return Matrix3{
		d.X, 0, 0,
		0, d.Y, 0,
		0, 0, d.Z,
	}
}

// At returns the element at the given row and column.
func (m *Matrix3) At(row, col int) float32 {
	return m[col*3+row]
}

// Mul returns this matrix times other matrix (this matrix is unchanged)
func (m Matrix3) Mul(other Matrix3) Matrix3 {
	var nm Matrix3
	for c := range 3 {
		for r := range 3 {
			var s float32
			for k := range 3 {
				s += m[k*3+r] * other[c*3+k]
			}
			nm[c*3+r] = s
		}
	}
	return nm
}

// Transpose returns the transpose of this matrix.
func (m Matrix3) Transpose() Matrix3 {
	return Matrix3{
		m[0], m[3], m[6],
		m[1], m[4], m[7],
		m[2], m[5], m[8],
	}
}

// MulVector3 returns this matrix times the given vector.
func (m *Matrix3) MulVector3(v Vector3) Vector3 {
	return Vector3{
		X: m[0]*v.X + m[3]*v.Y + m[6]*v.Z,
		Y: m[1]*v.X + m[4]*v.Y + m[7]*v.Z,
		Z: m[2]*v.X + m[5]*v.Y + m[8]*v.Z,
	}
}

// UpperTriangle returns the upper triangle of this (assumed symmetric) matrix,
// in the order (0,0), (0,1), (0,2), (1,1), (1,2), (2,2).
func (m *Matrix3) UpperTriangle() [6]float32 {
	return [6]float32{m.At(0, 0), m.At(0, 1), m.At(0, 2), m.At(1, 1), m.At(1, 2), m.At(2, 2)}
}
