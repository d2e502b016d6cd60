// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tensor

import (
	"fmt"
	"slices"
)

// Shape manages a tensor's shape information, including sizes
// per dimension, in row-major order: the outermost "row" dimension
// is first and the innermost dimension is last.
type Shape struct {

	// size per dimension.
	Sizes []int
}

// NewShape returns a new shape with given sizes.
func NewShape(sizes ...int) *Shape {
	sh := &Shape{}
	sh.SetShapeSizes(sizes...)
	return sh
}

// SetShapeSizes sets the shape sizes from list of ints.
func (sh *Shape) SetShapeSizes(sizes ...int) {
	sh.Sizes = slices.Clone(sizes)
}

// Len returns the total length of elements in the tensor
// (i.e., the product of the shape sizes).
func (sh *Shape) Len() int {
	if len(sh.Sizes) == 0 {
		return 0
	}
	n := 1
	for _, v := range sh.Sizes {
		n *= v
	}
	return n
}

// NumDims returns the total number of dimensions.
func (sh *Shape) NumDims() int { return len(sh.Sizes) }

// DimSize returns the size of given dimension.
func (sh *Shape) DimSize(i int) int {
	return sh.Sizes[i]
}

// IsEqual returns true if this shape is same as other (does not compare names).
func (sh *Shape) IsEqual(oth *Shape) bool {
	return slices.Equal(sh.Sizes, oth.Sizes)
}

// RowCellSize returns the size of the outermost Row shape dimension,
// and the size of all the remaining inner dimensions (the "cell" size).
// Used for Tensors that are columns in a data table.
func (sh *Shape) RowCellSize() (rows, cells int) {
	if len(sh.Sizes) == 0 {
		return 0, 1
	}
	rows = sh.Sizes[0]
	if len(sh.Sizes) == 1 {
		cells = 1
	} else if rows > 0 {
		cells = sh.Len() / rows
	} else {
		cells = 1
		for _, s := range sh.Sizes[1:] {
			cells *= s
		}
	}
	return
}

// IndexTo1D returns the flat 1D index from given n-dimensional indicies.
// No checking is done on the length or size of the index values relative
// to the shape of the tensor.
func (sh *Shape) IndexTo1D(index ...int) int {
	oned := 0
	mul := 1
	for i := len(index) - 1; i >= 0; i-- {
		oned += index[i] * mul
		mul *= sh.Sizes[i]
	}
	return oned
}

// String satisfies the fmt.Stringer interface
func (sh *Shape) String() string {
	return fmt.Sprintf("%v", sh.Sizes)
}
