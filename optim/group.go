// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package optim

import (
	"fmt"
	"slices"

	"cogentcore.org/gsplat/tensor"
)

// Group is a named parameter tensor with its own learning rate
// and Adam moment state. ExpAvg and ExpAvgSq always have the
// same shape as Param.
type Group struct {

	// Name is the binding key, matching the parameter column name.
	Name string

	// Param is the parameter tensor updated by the step.
	Param *tensor.Float32

	// ExpAvg is the running mean of the gradient (first moment).
	ExpAvg *tensor.Float32

	// ExpAvgSq is the running mean of the squared gradient (second moment).
	ExpAvgSq *tensor.Float32

	// LR is the current learning rate.
	LR float32

	// Step is the number of steps taken, for bias correction.
	Step int
}

// NewGroup returns a new group for the given parameter, with zero moments.
func NewGroup(name string, param *tensor.Float32, lr float32) *Group {
	return &Group{Name: name, Param: param, ExpAvg: param.ZerosLike(), ExpAvgSq: param.ZerosLike(), LR: lr}
}

// NumRows returns the number of rows of the parameter.
func (g *Group) NumRows() int {
	return g.Param.NumRows()
}

// Validate returns an error if the moments do not match the parameter shape.
func (g *Group) Validate() error {
	if !g.ExpAvg.Shape().IsEqual(g.Param.Shape()) || !g.ExpAvgSq.Shape().IsEqual(g.Param.Shape()) {
		return fmt.Errorf("optim.Group %q: moment shapes %v, %v do not match parameter shape %v",
			g.Name, g.ExpAvg.ShapeSizes(), g.ExpAvgSq.ShapeSizes(), g.Param.ShapeSizes())
	}
	return nil
}

// GatherRows replaces the moments with their rows at the given indexes.
// The parameter itself is owned by its table and gathered there.
func (g *Group) GatherRows(idx []int) {
	g.ExpAvg.SetGatherRows(idx)
	g.ExpAvgSq.SetGatherRows(idx)
}

// SetNumRows resizes the moments to the given number of rows;
// new rows are zero.
func (g *Group) SetNumRows(rows int) {
	g.ExpAvg.SetNumRows(rows)
	g.ExpAvgSq.SetNumRows(rows)
}

// Reset zeroes the moments and the step counter.
func (g *Group) Reset() {
	g.ExpAvg.SetZeros()
	g.ExpAvgSq.SetZeros()
	g.Step = 0
}

// GroupState is the serializable state of a [Group], without its parameter.
type GroupState struct {
	Name     string    `msgpack:"name"`
	LR       float32   `msgpack:"lr"`
	Step     int       `msgpack:"step"`
	Shape    []int     `msgpack:"shape"`
	ExpAvg   []float32 `msgpack:"exp_avg"`
	ExpAvgSq []float32 `msgpack:"exp_avg_sq"`
}

// State returns a copy of the group state.
func (g *Group) State() GroupState {
	return GroupState{
		Name:     g.Name,
		LR:       g.LR,
		Step:     g.Step,
		Shape:    g.ExpAvg.ShapeSizes(),
		ExpAvg:   slices.Clone(g.ExpAvg.Values),
		ExpAvgSq: slices.Clone(g.ExpAvgSq.Values),
	}
}

// SetState restores the group from the given state, which must
// match the shape of the current parameter.
func (g *Group) SetState(st GroupState) error {
	shp := tensor.NewShape(st.Shape...)
	if !shp.IsEqual(g.Param.Shape()) || len(st.ExpAvg) != shp.Len() || len(st.ExpAvgSq) != shp.Len() {
		return fmt.Errorf("optim.Group %q: state shape %v does not match parameter shape %v", g.Name, st.Shape, g.Param.ShapeSizes())
	}
	g.LR = st.LR
	g.Step = st.Step
	g.ExpAvg = tensor.NewNumberFromValues(slices.Clone(st.ExpAvg), st.Shape...)
	g.ExpAvgSq = tensor.NewNumberFromValues(slices.Clone(st.ExpAvgSq), st.Shape...)
	return nil
}
