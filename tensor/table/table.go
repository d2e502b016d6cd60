// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package table provides a Table of named tensor columns aligned by a
// common outermost row dimension. All row-structural operations
// (resize, gather, delete, append) apply to every column within a single
// call, so that the columns can never disagree on the number of rows.
package table

import (
	"fmt"

	"cogentcore.org/gsplat/base/keylist"
	"cogentcore.org/gsplat/base/slicesx"
	"cogentcore.org/gsplat/tensor"
)

// Columns is the ordered list of named column tensors of a [Table].
type Columns = keylist.List[string, *tensor.Float32]

// Table is a table of Tensor columns aligned by a common outermost row dimension.
// Use the [Table.Column] (by name) method to obtain a column.
// Columns are owned by the table: callers must not change the
// number of rows of a column directly.
type Table struct {
	// Name is an optional name for the table, used in messages.
	Name string

	// Columns has the list of column tensor data for this table.
	Columns Columns

	// rows is the number of rows shared by all columns.
	rows int
}

// NewTable returns a new Table with no columns and zero rows.
// Can pass an optional name.
func NewTable(name ...string) *Table {
	dt := &Table{}
	if len(name) > 0 {
		dt.Name = name[0]
	}
	return dt
}

// NumRows returns the number of rows.
func (dt *Table) NumRows() int { return dt.rows }

// NumColumns returns the number of columns.
func (dt *Table) NumColumns() int { return dt.Columns.Len() }

// ColumnName returns the name of given column
func (dt *Table) ColumnName(i int) string {
	return dt.Columns.Keys[i]
}

// Column returns the tensor with given column name.
// Returns nil if not found.
func (dt *Table) Column(name string) *tensor.Float32 {
	return dt.Columns.At(name)
}

// ColumnTry is a version of [Table.Column] that also returns an error
// if the column name is not found, for cases when error is needed.
func (dt *Table) ColumnTry(name string) (*tensor.Float32, error) {
	cl := dt.Column(name)
	if cl != nil {
		return cl, nil
	}
	return nil, fmt.Errorf("table.Table: Column named %q not found", name)
}

// AddFloat32Column adds a new float32 column with given name,
// sized to the current number of rows, with the given cell sizes.
// If no cellSizes are specified, it holds scalar values.
func (dt *Table) AddFloat32Column(name string, cellSizes ...int) *tensor.Float32 {
	sz := append([]int{dt.rows}, cellSizes...)
	tsr := tensor.NewFloat32(sz...)
	if err := dt.Columns.Add(name, tsr); err != nil {
		panic(err)
	}
	return tsr
}

// AddColumn adds the given tensor as a column to the table,
// returning an error and not adding if the name is not unique,
// or if the number of rows does not match the table (an empty
// table adopts the number of rows of its first column).
func (dt *Table) AddColumn(name string, tsr *tensor.Float32) error {
	rows := tsr.NumRows()
	if dt.NumColumns() == 0 {
		dt.rows = rows
	} else if rows != dt.rows {
		return fmt.Errorf("table.AddColumn: column %q has %d rows, table %q has %d", name, rows, dt.Name, dt.rows)
	}
	return dt.Columns.Add(name, tsr)
}

// SetNumRows sets the number of rows in the table, across all columns.
// New rows are zero.
func (dt *Table) SetNumRows(rows int) *Table {
	dt.rows = max(0, rows)
	for _, cl := range dt.Columns.Values {
		cl.SetNumRows(dt.rows)
	}
	return dt
}

// SetZeros sets all values of all columns to zero.
func (dt *Table) SetZeros() {
	for _, cl := range dt.Columns.Values {
		cl.SetZeros()
	}
}

// GatherRows replaces every column with the rows at the given indexes,
// in the order given. This is the primitive for deletion and reordering.
func (dt *Table) GatherRows(idx []int) {
	for _, cl := range dt.Columns.Values {
		cl.SetGatherRows(idx)
	}
	dt.rows = len(idx)
}

// DeleteRows deletes the rows for which mask is true,
// preserving the order of the remaining rows.
// The mask must have one entry per row.
func (dt *Table) DeleteRows(mask []bool) error {
	if len(mask) != dt.rows {
		return fmt.Errorf("table.DeleteRows: mask has %d entries, table %q has %d rows", len(mask), dt.Name, dt.rows)
	}
	dt.GatherRows(slicesx.Indexes(mask, false))
	return nil
}

// AppendRows appends the rows of the given table, which must have
// exactly the same column names in the same order, with matching
// cell sizes. Nothing is modified if there is an error.
func (dt *Table) AppendRows(from *Table) error {
	if from.NumColumns() != dt.NumColumns() {
		return fmt.Errorf("table.AppendRows: %d columns in source, %d in table %q", from.NumColumns(), dt.NumColumns(), dt.Name)
	}
	for i, cl := range dt.Columns.Values {
		fcl := from.Columns.Values[i]
		if dt.ColumnName(i) != from.ColumnName(i) {
			return fmt.Errorf("table.AppendRows: column %d is %q in source, %q in table %q", i, from.ColumnName(i), dt.ColumnName(i), dt.Name)
		}
		_, cells := cl.RowCellSize()
		_, fcells := fcl.RowCellSize()
		if cells != fcells {
			return fmt.Errorf("table.AppendRows: column %q cell sizes do not match: %d != %d", dt.ColumnName(i), fcells, cells)
		}
	}
	for i, cl := range dt.Columns.Values {
		cl.AppendFrom(from.Columns.Values[i])
	}
	dt.rows += from.rows
	return nil
}

// RepeatRows returns a new table with the rows of this table repeated
// n times in sequence, in every column.
func (dt *Table) RepeatRows(n int) *Table {
	n = max(0, n)
	nt := NewTable(dt.Name)
	nt.rows = dt.rows * n
	for i, cl := range dt.Columns.Values {
		nt.Columns.Add(dt.ColumnName(i), cl.RepeatRows(n))
	}
	return nt
}

// SelectRows returns a new table with copies of the rows at the given
// indexes, in the order given.
func (dt *Table) SelectRows(idx []int) *Table {
	nt := NewTable(dt.Name)
	nt.rows = len(idx)
	for i, cl := range dt.Columns.Values {
		nt.Columns.Add(dt.ColumnName(i), cl.GatherRows(idx))
	}
	return nt
}

// Validate returns an error if any column does not have
// exactly the table's number of rows.
func (dt *Table) Validate() error {
	for i, cl := range dt.Columns.Values {
		if n := cl.NumRows(); n != dt.rows {
			return fmt.Errorf("table.Validate: column %q of table %q has %d rows, want %d", dt.ColumnName(i), dt.Name, n, dt.rows)
		}
	}
	return nil
}
