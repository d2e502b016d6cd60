// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package optim provides an Adam optimizer over named parameter
// groups whose moment state is owned by the groups and kept in
// row-alignment with the parameters as rows are gathered or appended.
package optim

import (
	"fmt"

	"cogentcore.org/gsplat/base/errors"
	"cogentcore.org/gsplat/base/keylist"
	"cogentcore.org/gsplat/tensor"
	"cogentcore.org/gsplat/tensor/table"
)

// Groups is the ordered list of named parameter groups.
type Groups = keylist.List[string, *Group]

// Optimizer is a set of named parameter [Group]s updated with [Adam].
type Optimizer struct {
	Adam Adam

	Groups Groups
}

// New returns a new Optimizer with default Adam hyperparameters.
func New() *Optimizer {
	o := &Optimizer{}
	o.Adam.Defaults()
	return o
}

// AddGroup adds a new group for the given parameter, with zero moments.
func (o *Optimizer) AddGroup(name string, param *tensor.Float32, lr float32) (*Group, error) {
	g := NewGroup(name, param, lr)
	if err := o.Groups.Add(name, g); err != nil {
		return nil, fmt.Errorf("optim.AddGroup: %w", err)
	}
	return g, nil
}

// Group returns the group with the given name, or nil.
func (o *Optimizer) Group(name string) *Group {
	return o.Groups.At(name)
}

// GroupTry returns the group with the given name, or an error.
func (o *Optimizer) GroupTry(name string) (*Group, error) {
	g, ok := o.Groups.AtTry(name)
	if !ok {
		return nil, fmt.Errorf("optim: group %q not found", name)
	}
	return g, nil
}

// SetLR sets the learning rate of the named group.
func (o *Optimizer) SetLR(name string, lr float32) error {
	g, err := o.GroupTry(name)
	if err != nil {
		return err
	}
	g.LR = lr
	return nil
}

// Step applies one Adam update to each group that has a gradient
// of the same name. Groups without a gradient are left unchanged.
// Gradients that do not name a group are an error.
func (o *Optimizer) Step(grads map[string]*tensor.Float32) error {
	for name := range grads {
		if _, ok := o.Groups.AtTry(name); !ok {
			return fmt.Errorf("optim.Step: gradient %q has no group", name)
		}
	}
	var errs []error
	for _, g := range o.Groups.Values {
		grad, ok := grads[g.Name]
		if !ok {
			continue
		}
		if err := o.Adam.Step(g, grad); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Bind sets the parameter of every group to the column of the same name
// in the given table, returning an error if any is missing.
func (o *Optimizer) Bind(dt *table.Table) error {
	for _, g := range o.Groups.Values {
		cl, err := dt.ColumnTry(g.Name)
		if err != nil {
			return fmt.Errorf("optim.Bind: %w", err)
		}
		g.Param = cl
	}
	return nil
}

// GatherRows replaces the moments of every group with their rows
// at the given indexes, matching a gather of the parameters.
func (o *Optimizer) GatherRows(idx []int) {
	for _, g := range o.Groups.Values {
		g.GatherRows(idx)
	}
}

// SetNumRows resizes the moments of every group; new rows are zero.
func (o *Optimizer) SetNumRows(rows int) {
	for _, g := range o.Groups.Values {
		g.SetNumRows(rows)
	}
}

// Reset zeroes the moments and step counter of the named group.
func (o *Optimizer) Reset(name string) error {
	g, err := o.GroupTry(name)
	if err != nil {
		return err
	}
	g.Reset()
	return nil
}

// Validate returns an error if the moments of any group do not match
// its parameter, or if any group has a row count other than rows.
func (o *Optimizer) Validate(rows int) error {
	var errs []error
	for _, g := range o.Groups.Values {
		if err := g.Validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		if n := g.NumRows(); n != rows {
			errs = append(errs, fmt.Errorf("optim.Group %q has %d rows, want %d", g.Name, n, rows))
		}
	}
	return errors.Join(errs...)
}

// State returns the state of every group, in order.
func (o *Optimizer) State() []GroupState {
	st := make([]GroupState, o.Groups.Len())
	for i, g := range o.Groups.Values {
		st[i] = g.State()
	}
	return st
}

// SetState restores the state of each named group.
func (o *Optimizer) SetState(st []GroupState) error {
	var errs []error
	for _, gs := range st {
		g, err := o.GroupTry(gs.Name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := g.SetState(gs); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
