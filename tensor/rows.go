// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tensor

import (
	"fmt"
	"slices"
)

// AppendFrom appends values from other tensor into this tensor,
// which must have the same cell size as this tensor.
func (tsr *Number[T]) AppendFrom(frm *Number[T]) error {
	rows, cells := tsr.RowCellSize()
	frows, fcells := frm.RowCellSize()
	if cells != fcells {
		return fmt.Errorf("tensor.AppendFrom: cell sizes do not match: %d != %d", cells, fcells)
	}
	tsr.Values = append(tsr.Values, frm.Values...)
	tsr.shape.Sizes[0] = rows + frows
	return nil
}

// GatherRows returns a new tensor holding copies of the rows at the given
// indexes, in the order given. Indexes may repeat.
func (tsr *Number[T]) GatherRows(idx []int) *Number[T] {
	_, cells := tsr.RowCellSize()
	sizes := slices.Clone(tsr.shape.Sizes)
	sizes[0] = len(idx)
	out := NewNumber[T](sizes...)
	VectorizeThreaded(cells, len(idx), func(i int) {
		r := idx[i]
		copy(out.Values[i*cells:(i+1)*cells], tsr.Values[r*cells:(r+1)*cells])
	})
	return out
}

// SetGatherRows replaces the contents of this tensor with the rows at
// the given indexes, in the order given.
func (tsr *Number[T]) SetGatherRows(idx []int) {
	g := tsr.GatherRows(idx)
	tsr.shape = g.shape
	tsr.Values = g.Values
}

// RepeatRows returns a new tensor with the rows of this tensor
// repeated n times in sequence: rows 0..N-1, then 0..N-1 again, etc.
func (tsr *Number[T]) RepeatRows(n int) *Number[T] {
	rows, _ := tsr.RowCellSize()
	idx := make([]int, 0, rows*n)
	for range n {
		for r := range rows {
			idx = append(idx, r)
		}
	}
	return tsr.GatherRows(idx)
}
