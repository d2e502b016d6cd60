// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package tmath provides vectorized element-wise and row-wise
// math functions on float32 tensors.
package tmath

import (
	"cogentcore.org/gsplat/math32"
	"cogentcore.org/gsplat/tensor"
)

// Apply sets out to fun applied to each element of in.
// out is reshaped to match in, and may be the same as in.
func Apply(in, out *tensor.Float32, flops int, fun func(x float32) float32) {
	if out != in {
		out.SetShapeSizes(in.ShapeSizes()...)
	}
	tensor.VectorizeThreaded(flops, in.Len(), func(idx int) {
		out.Values[idx] = fun(in.Values[idx])
	})
}

// Exp sets out to e**x for each element x of in.
func Exp(in, out *tensor.Float32) {
	Apply(in, out, 5, math32.Exp)
}

// Log sets out to the natural logarithm of each element of in.
func Log(in, out *tensor.Float32) {
	Apply(in, out, 5, math32.Log)
}

// Sigmoid sets out to the logistic function of each element of in.
func Sigmoid(in, out *tensor.Float32) {
	Apply(in, out, 6, math32.Sigmoid)
}

// InverseSigmoid sets out to the logit of each element of in.
func InverseSigmoid(in, out *tensor.Float32) {
	Apply(in, out, 6, math32.InverseSigmoid)
}

// MulScalar multiplies each element of in by s, into out.
func MulScalar(in *tensor.Float32, s float32, out *tensor.Float32) {
	Apply(in, out, 1, func(x float32) float32 { return x * s })
}

// RowNorm sets out[r] to the L2 norm of the first ncells cells of row r of in.
// out is shaped [rows, 1].
func RowNorm(in *tensor.Float32, ncells int, out *tensor.Float32) {
	rows, cells := in.RowCellSize()
	ncells = min(ncells, cells)
	out.SetShapeSizes(rows, 1)
	tensor.VectorizeThreaded(2*ncells, rows, func(r int) {
		rv := in.Values[r*cells : r*cells+ncells]
		var ss float32
		for _, v := range rv {
			ss += v * v
		}
		out.Values[r] = math32.Sqrt(ss)
	})
}

// RowMax sets out[r] to the maximum of the cells of row r of in.
// out is shaped [rows].
func RowMax(in *tensor.Float32, out *tensor.Float32) {
	rows, cells := in.RowCellSize()
	out.SetShapeSizes(rows)
	tensor.VectorizeThreaded(cells, rows, func(r int) {
		rv := in.Values[r*cells : (r+1)*cells]
		mx := rv[0]
		for _, v := range rv[1:] {
			mx = max(mx, v)
		}
		out.Values[r] = mx
	})
}

// SafeDiv sets out to a / b element-wise, replacing any NaN or
// infinite result (e.g., from a zero denominator) with 0.
// a and b must have the same number of elements; out is shaped like a.
func SafeDiv(a, b, out *tensor.Float32) {
	if a.Len() != b.Len() {
		panic("tmath.SafeDiv: tensors must have the same number of elements")
	}
	if out != a {
		out.SetShapeSizes(a.ShapeSizes()...)
	}
	tensor.VectorizeThreaded(2, a.Len(), func(idx int) {
		v := a.Values[idx] / b.Values[idx]
		if math32.IsNaN(v) || math32.IsInf(v, 0) {
			v = 0
		}
		out.Values[idx] = v
	})
}

// Greater returns a mask that is true where in is greater than the threshold.
func Greater(in *tensor.Float32, threshold float32) []bool {
	mask := make([]bool, in.Len())
	tensor.VectorizeThreaded(1, in.Len(), func(idx int) {
		mask[idx] = in.Values[idx] > threshold
	})
	return mask
}

// GreaterEqual returns a mask that is true where in is greater than or
// equal to the threshold.
func GreaterEqual(in *tensor.Float32, threshold float32) []bool {
	mask := make([]bool, in.Len())
	tensor.VectorizeThreaded(1, in.Len(), func(idx int) {
		mask[idx] = in.Values[idx] >= threshold
	})
	return mask
}

// Less returns a mask that is true where in is less than the threshold.
func Less(in *tensor.Float32, threshold float32) []bool {
	mask := make([]bool, in.Len())
	tensor.VectorizeThreaded(1, in.Len(), func(idx int) {
		mask[idx] = in.Values[idx] < threshold
	})
	return mask
}

// LessEqual returns a mask that is true where in is less than or
// equal to the threshold.
func LessEqual(in *tensor.Float32, threshold float32) []bool {
	mask := make([]bool, in.Len())
	tensor.VectorizeThreaded(1, in.Len(), func(idx int) {
		mask[idx] = in.Values[idx] <= threshold
	})
	return mask
}

// And returns the element-wise logical and of the given equal-length masks.
func And(a, b []bool) []bool {
	out := make([]bool, len(a))
	for i := range a {
		out[i] = a[i] && b[i]
	}
	return out
}
