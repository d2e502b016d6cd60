// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package table

import (
	"testing"

	"cogentcore.org/gsplat/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTable(rows int) *Table {
	dt := NewTable("test")
	dt.SetNumRows(rows)
	pos := dt.AddFloat32Column("pos", 3)
	col := dt.AddFloat32Column("color", 1, 3)
	op := dt.AddFloat32Column("opacity", 1)
	for r := range rows {
		for c := range 3 {
			pos.Set(float32(r*10+c), r, c)
			col.Set(float32(r), r, 0, c)
		}
		op.Set(float32(r)/10, r, 0)
	}
	return dt
}

func TestAdd3DCol(t *testing.T) {
	dt := NewTable()
	dt.SetNumRows(1)
	col := dt.AddFloat32Column("Values", 11, 1, 16)
	assert.Equal(t, 4, col.NumDims())
	assert.Equal(t, 1, col.DimSize(0))
	assert.Equal(t, 11, col.DimSize(1))
	assert.Equal(t, 1, col.DimSize(2))
	assert.Equal(t, 16, col.DimSize(3))
	assert.Panics(t, func() { dt.AddFloat32Column("Values") })
}

func TestGatherDelete(t *testing.T) {
	dt := newTestTable(4)
	require.NoError(t, dt.DeleteRows([]bool{false, true, false, true}))
	assert.Equal(t, 2, dt.NumRows())
	require.NoError(t, dt.Validate())
	assert.Equal(t, []float32{20, 21, 22}, dt.Column("pos").RowValues(1))
	assert.Equal(t, []float32{2, 2, 2}, dt.Column("color").RowValues(1))
	assert.Equal(t, float32(0.2), dt.Column("opacity").Value(1, 0))

	assert.Error(t, dt.DeleteRows([]bool{true}))

	require.NoError(t, dt.DeleteRows([]bool{true, true}))
	assert.Equal(t, 0, dt.NumRows())
	require.NoError(t, dt.Validate())
}

func TestAppendRows(t *testing.T) {
	dt := newTestTable(2)
	add := dt.SelectRows([]int{1, 1, 0})
	require.NoError(t, dt.AppendRows(add))
	assert.Equal(t, 5, dt.NumRows())
	require.NoError(t, dt.Validate())
	assert.Equal(t, []float32{10, 11, 12}, dt.Column("pos").RowValues(3))
	assert.Equal(t, []float32{0, 1, 2}, dt.Column("pos").RowValues(4))

	bad := NewTable()
	bad.SetNumRows(1)
	bad.AddFloat32Column("pos", 3)
	assert.Error(t, dt.AppendRows(bad))
	assert.Equal(t, 5, dt.NumRows(), "failed append must not modify")

	renamed := dt.SelectRows([]int{0})
	renamed.Columns.Keys[0] = "xyz"
	assert.Error(t, dt.AppendRows(renamed))
}

func TestRepeatRows(t *testing.T) {
	dt := newTestTable(2)
	rep := dt.RepeatRows(3)
	assert.Equal(t, 6, rep.NumRows())
	require.NoError(t, rep.Validate())
	assert.Equal(t, []float32{0, 1, 2}, rep.Column("pos").RowValues(2))
	assert.Equal(t, []float32{10, 11, 12}, rep.Column("pos").RowValues(5))
	assert.Equal(t, []float32{1, 1, 1}, rep.Column("color").RowValues(3))
	assert.Equal(t, 2, dt.NumRows(), "source must not change")

	none := dt.RepeatRows(0)
	assert.Equal(t, 0, none.NumRows())
	require.NoError(t, none.Validate())
}

func TestSetNumRowsSelect(t *testing.T) {
	dt := newTestTable(3)
	cp := dt.SelectRows([]int{0, 1, 2})
	dt.SetNumRows(1)
	assert.Equal(t, 1, dt.Column("color").NumRows())
	assert.Equal(t, 3, cp.NumRows())
	assert.Equal(t, []float32{20, 21, 22}, cp.Column("pos").RowValues(2))
	require.NoError(t, cp.Validate())
	cp.SetZeros()
	assert.Equal(t, []float32{0, 0, 0}, cp.Column("pos").RowValues(2))

	_, err := cp.ColumnTry("nope")
	assert.Error(t, err)

	other := NewTable("other")
	require.NoError(t, other.AddColumn("a", tensor.NewFloat32(4, 2)))
	assert.Equal(t, 4, other.NumRows())
	assert.Error(t, other.AddColumn("b", tensor.NewFloat32(3, 2)))
	other.Columns.Values[0].SetNumRows(2)
	assert.Error(t, other.Validate())
}
