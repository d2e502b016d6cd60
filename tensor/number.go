// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package tensor provides row-major n-dimensional numerical arrays,
// organized around an outermost "row" dimension, with whole-row
// gather, append, and resize operations.
package tensor

import (
	"fmt"
	"slices"
	"strings"

	"cogentcore.org/gsplat/base/slicesx"
)

// Numeric is the set of numerical types supported by [Number].
type Numeric interface {
	~float32 | ~float64 | ~int | ~int32 | ~uint8
}

// Number is a tensor of numerical values
type Number[T Numeric] struct {
	shape Shape

	// Values is the flat row-major backing storage.
	Values []T
}

// Float32 is an alias for Number[float32].
type Float32 = Number[float32]

// Float64 is an alias for Number[float64].
type Float64 = Number[float64]

// NewFloat32 returns a new [Float32] tensor
// with the given sizes per dimension (shape).
func NewFloat32(sizes ...int) *Float32 {
	return NewNumber[float32](sizes...)
}

// NewFloat64 returns a new [Float64] tensor
// with the given sizes per dimension (shape).
func NewFloat64(sizes ...int) *Float64 {
	return NewNumber[float64](sizes...)
}

// NewNumber returns a new n-dimensional tensor of numerical values
// with the given sizes per dimension (shape).
func NewNumber[T Numeric](sizes ...int) *Number[T] {
	tsr := &Number[T]{}
	tsr.shape.SetShapeSizes(sizes...)
	tsr.Values = make([]T, tsr.Len())
	return tsr
}

// NewNumberFromValues returns a new tensor of given shape sizes
// initialized directly from the given slice values, which are not copied.
// The resulting Tensor thus "wraps" the given values.
// If no sizes are given, the tensor is 1D.
func NewNumberFromValues[T Numeric](vals []T, sizes ...int) *Number[T] {
	tsr := &Number[T]{Values: vals}
	if len(sizes) == 0 {
		sizes = []int{len(vals)}
	}
	tsr.shape.SetShapeSizes(sizes...)
	if tsr.Len() != len(vals) {
		panic(fmt.Sprintf("tensor.NewNumberFromValues: %d values do not fit shape %v", len(vals), sizes))
	}
	return tsr
}

// Shape returns a pointer to the shape that fully parametrizes the tensor shape
func (tsr *Number[T]) Shape() *Shape { return &tsr.shape }

// ShapeSizes returns a copy of the sizes of each dimension.
func (tsr *Number[T]) ShapeSizes() []int { return slices.Clone(tsr.shape.Sizes) }

// Len returns the number of elements in the tensor (product of shape dimensions).
func (tsr *Number[T]) Len() int { return tsr.shape.Len() }

// NumDims returns the total number of dimensions.
func (tsr *Number[T]) NumDims() int { return tsr.shape.NumDims() }

// DimSize returns size of given dimension
func (tsr *Number[T]) DimSize(dim int) int { return tsr.shape.DimSize(dim) }

// RowCellSize returns the size of the outer-most Row shape dimension,
// and the size of all the remaining inner dimensions (the "cell" size).
func (tsr *Number[T]) RowCellSize() (rows, cells int) {
	return tsr.shape.RowCellSize()
}

// NumRows returns the size of the outer-most Row shape dimension.
func (tsr *Number[T]) NumRows() int {
	rows, _ := tsr.shape.RowCellSize()
	return rows
}

// SetShapeSizes sets the shape params, resizing backing storage appropriately
func (tsr *Number[T]) SetShapeSizes(sizes ...int) {
	tsr.shape.SetShapeSizes(sizes...)
	tsr.Values = slicesx.SetLength(tsr.Values, tsr.Len())
}

// SetNumRows sets the number of rows (outer-most dimension),
// preserving existing rows that fit. New rows are zero.
func (tsr *Number[T]) SetNumRows(rows int) {
	rows = max(0, rows)
	_, cells := tsr.shape.RowCellSize()
	old := len(tsr.Values)
	tsr.shape.Sizes[0] = rows
	tsr.Values = slicesx.SetLength(tsr.Values, rows*cells)
	if n := len(tsr.Values); n > old {
		clear(tsr.Values[old:n])
	}
}

// Value returns the value at given n-dimensional index.
func (tsr *Number[T]) Value(i ...int) T { return tsr.Values[tsr.shape.IndexTo1D(i...)] }

// Set sets the value at given n-dimensional index.
func (tsr *Number[T]) Set(val T, i ...int) { tsr.Values[tsr.shape.IndexTo1D(i...)] = val }

// RowValues returns the cell values of the given row, as a slice
// view onto the underlying Values (modifications affect both).
func (tsr *Number[T]) RowValues(row int) []T {
	_, cells := tsr.shape.RowCellSize()
	return tsr.Values[row*cells : (row+1)*cells]
}

// SetZeros is simple convenience function initialize all values to 0
func (tsr *Number[T]) SetZeros() {
	clear(tsr.Values)
}

// Fill sets all values to the given value.
func (tsr *Number[T]) Fill(val T) {
	for i := range tsr.Values {
		tsr.Values[i] = val
	}
}

// ZerosLike returns a new tensor of the same shape, with all zero values.
func (tsr *Number[T]) ZerosLike() *Number[T] {
	return NewNumber[T](tsr.shape.Sizes...)
}

// Range returns the min, max (and associated indexes, -1 = no values) for the tensor.
func (tsr *Number[T]) Range() (min, max T, minIndex, maxIndex int) {
	minIndex, maxIndex = -1, -1
	for j, v := range tsr.Values {
		if minIndex < 0 || v < min {
			min = v
			minIndex = j
		}
		if maxIndex < 0 || v > max {
			max = v
			maxIndex = j
		}
	}
	return
}

// String satisfies the fmt.Stringer interface for string of tensor data.
func (tsr *Number[T]) String() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Tensor: %s\n", tsr.shape.String()))
	rows, cells := tsr.RowCellSize()
	const maxRows = 20
	for r := range min(rows, maxRows) {
		b.WriteString(fmt.Sprintf("[%d]:", r))
		for c := range cells {
			b.WriteString(fmt.Sprintf(" %7g", float64(tsr.Values[r*cells+c])))
		}
		b.WriteByte('\n')
	}
	if rows > maxRows {
		b.WriteString("...\n")
	}
	return b.String()
}
