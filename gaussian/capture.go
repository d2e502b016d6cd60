// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gaussian

import (
	"fmt"
	"slices"

	"cogentcore.org/gsplat/config"
	"cogentcore.org/gsplat/optim"
	"cogentcore.org/gsplat/tensor"
	"cogentcore.org/gsplat/tensor/table"
)

// Column is a serializable copy of a table column.
type Column struct {
	Name   string    `msgpack:"name"`
	Shape  []int     `msgpack:"shape"`
	Values []float32 `msgpack:"values"`
}

// State is the complete serializable training state of a [Set],
// including the bookkeeping columns and optimizer moments.
type State struct {
	ActiveSHDegree int                `msgpack:"active_sh_degree"`
	MaxSHDegree    int                `msgpack:"max_sh_degree"`
	SpatialLRScale float32            `msgpack:"spatial_lr_scale"`
	PercentDense   float32            `msgpack:"percent_dense"`
	Params         []Column           `msgpack:"params"`
	Stats          []Column           `msgpack:"stats"`
	Optimizer      []optim.GroupState `msgpack:"optimizer"`
}

func captureTable(dt *table.Table) []Column {
	cols := make([]Column, dt.NumColumns())
	for i, cl := range dt.Columns.Values {
		cols[i] = Column{Name: dt.ColumnName(i), Shape: cl.ShapeSizes(), Values: slices.Clone(cl.Values)}
	}
	return cols
}

// restoreTable copies the given columns into the columns of dt,
// which must match in name, order, and cell shape.
func restoreTable(dt *table.Table, cols []Column) error {
	if len(cols) != dt.NumColumns() {
		return fmt.Errorf("%d columns in state, %d in table %q", len(cols), dt.NumColumns(), dt.Name)
	}
	rows := -1
	for i, c := range cols {
		if c.Name != dt.ColumnName(i) {
			return fmt.Errorf("column %d is %q in state, %q in table %q", i, c.Name, dt.ColumnName(i), dt.Name)
		}
		shp := tensor.NewShape(c.Shape...)
		if shp.NumDims() == 0 || shp.Len() != len(c.Values) {
			return fmt.Errorf("column %q has %d values for shape %v", c.Name, len(c.Values), c.Shape)
		}
		want := dt.Columns.Values[i].ShapeSizes()
		if len(want) != len(c.Shape) || !slices.Equal(want[1:], c.Shape[1:]) {
			return fmt.Errorf("column %q has shape %v, want cells %v", c.Name, c.Shape, want[1:])
		}
		if rows >= 0 && c.Shape[0] != rows {
			return fmt.Errorf("column %q has %d rows, want %d", c.Name, c.Shape[0], rows)
		}
		rows = c.Shape[0]
	}
	dt.SetNumRows(max(rows, 0))
	for i, c := range cols {
		copy(dt.Columns.Values[i].Values, c.Values)
	}
	return nil
}

// Capture returns a copy of the complete training state.
func (gs *Set) Capture() *State {
	st := &State{
		ActiveSHDegree: gs.ActiveSHDegree,
		MaxSHDegree:    gs.MaxSHDegree,
		SpatialLRScale: gs.SpatialLRScale,
		PercentDense:   gs.PercentDense,
		Params:         captureTable(gs.Params),
		Stats:          captureTable(gs.Stats),
	}
	if gs.Optimizer != nil {
		st.Optimizer = gs.Optimizer.State()
	}
	return st
}

// Restore returns a new set from the given captured state, set up for
// training with the given parameters and then given the captured
// bookkeeping columns and optimizer state.
func Restore(st *State, op *config.Optimization) (*Set, error) {
	gs := NewSet(st.MaxSHDegree)
	if gs.MaxSHDegree != st.MaxSHDegree {
		return nil, fmt.Errorf("gaussian.Restore: invalid SH degree %d", st.MaxSHDegree)
	}
	gs.ActiveSHDegree = min(max(st.ActiveSHDegree, 0), gs.MaxSHDegree)
	gs.SpatialLRScale = st.SpatialLRScale
	if err := restoreTable(gs.Params, st.Params); err != nil {
		return nil, fmt.Errorf("gaussian.Restore: %w", err)
	}
	gs.Stats.SetNumRows(gs.NumPoints())
	gs.TrainingSetup(op)
	if err := restoreTable(gs.Stats, st.Stats); err != nil {
		return nil, fmt.Errorf("gaussian.Restore: %w", err)
	}
	if gs.Stats.NumRows() != gs.NumPoints() {
		return nil, fmt.Errorf("gaussian.Restore: stats have %d rows, params have %d", gs.Stats.NumRows(), gs.NumPoints())
	}
	if err := gs.Optimizer.SetState(st.Optimizer); err != nil {
		return nil, fmt.Errorf("gaussian.Restore: %w", err)
	}
	gs.checkInvariant("Restore")
	return gs, nil
}
