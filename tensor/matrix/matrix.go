// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package matrix provides conversions of packed matrix rows
// into full 2D matrices stored in tensors.
package matrix

import (
	"cogentcore.org/gsplat/tensor"
)

// SymFromUpperRows returns a [tensor.Float64] of shape [rows, n, n] holding the
// full symmetric matrices for each row of the given packed upper triangles,
// in row order: (0,0), (0,1) .. (0,n-1), (1,1) .. (n-1,n-1).
func SymFromUpperRows(n int, upper *tensor.Float32) *tensor.Float64 {
	rows, cells := upper.RowCellSize()
	out := tensor.NewFloat64(rows, n, n)
	tensor.VectorizeThreaded(n*n, rows, func(r int) {
		up := upper.Values[r*cells : (r+1)*cells]
		m := out.Values[r*n*n : (r+1)*n*n]
		i := 0
		for a := range n {
			for b := a; b < n; b++ {
				v := float64(up[i])
				m[a*n+b] = v
				m[b*n+a] = v
				i++
			}
		}
	})
	return out
}
