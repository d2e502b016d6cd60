// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package gaussian provides the primitive store of 3D Gaussian splatting:
// a [Set] of anisotropic Gaussians with their optimizer state, and the
// densification, pruning, and opacity reset operations that grow and
// shrink the set during training while keeping every per-primitive
// array, including the Adam moments, aligned on the same rows.
package gaussian

import (
	"fmt"

	"cogentcore.org/gsplat/base/randx"
	"cogentcore.org/gsplat/optim"
	"cogentcore.org/gsplat/schedule"
	"cogentcore.org/gsplat/sh"
	"cogentcore.org/gsplat/tensor/table"
)

// Names of the optimizable parameter columns, which are also
// the names of the optimizer groups bound to them.
const (
	// XYZCol holds the positions, [N,3].
	XYZCol = "xyz"

	// FeaturesDCCol holds the DC colour coefficients, [N,1,3].
	FeaturesDCCol = "f_dc"

	// FeaturesRestCol holds the higher-order colour coefficients, [N,(D+1)²-1,3].
	FeaturesRestCol = "f_rest"

	// ScalingCol holds the log scales, [N,3].
	ScalingCol = "scaling"

	// RotationCol holds the unnormalized rotation quaternions
	// in w,x,y,z order, [N,4].
	RotationCol = "rotation"

	// OpacityCol holds the pre-sigmoid opacities, [N,1].
	OpacityCol = "opacity"
)

// Names of the densification bookkeeping columns.
const (
	// GradAccumCol accumulates view-space positional gradient norms, [N,1].
	GradAccumCol = "xyz_gradient_accum"

	// DenomCol counts the accumulated iterations, [N,1].
	DenomCol = "denom"

	// MaxRadiiCol holds the maximum screen-space radius, [N].
	MaxRadiiCol = "max_radii2D"
)

// ParamNames are the names of the optimizable parameters, in order.
var ParamNames = []string{XYZCol, FeaturesDCCol, FeaturesRestCol, ScalingCol, RotationCol, OpacityCol}

// Set is a set of 3D Gaussian primitives, stored as aligned columns.
// Set is not safe for concurrent use.
//
// ActiveSHDegree, Params, Stats, and Optimizer are exported for reading
// only. They must be changed through the methods of Set, which keep the
// rows of every column and optimizer group aligned. Values within
// existing rows may be written, as a renderer or loader does.
type Set struct {

	// ActiveSHDegree is the spherical harmonic degree currently used
	// for colour; it grows from 0 to MaxSHDegree during training.
	// Read only: use [Set.OneUpSHDegree].
	ActiveSHDegree int

	// MaxSHDegree is the maximum spherical harmonic degree, which
	// determines the number of rest colour coefficients.
	MaxSHDegree int

	// SpatialLRScale scales the position learning rate by the scene extent.
	SpatialLRScale float32

	// PercentDense is the fraction of the scene extent that separates
	// primitives to clone from primitives to split.
	PercentDense float32

	// Params has the optimizable parameter columns.
	// Its rows are changed only by Set methods.
	Params *table.Table

	// Stats has the densification bookkeeping columns.
	// Its rows are changed only by Set methods.
	Stats *table.Table

	// Optimizer has one group per parameter column, bound by name.
	// It is nil until [Set.TrainingSetup], and is read only.
	Optimizer *optim.Optimizer

	// PositionLR is the position learning rate schedule.
	PositionLR *schedule.ExponLR

	// Rand is the random source for split sampling.
	Rand randx.Rand

	// Metrics receives a report of each densification cycle, if set.
	Metrics Reporter
}

// Reporter receives the outcome of structural mutations.
type Reporter interface {
	Report(r *DensifyReport)
}

// NewSet returns a new empty set with the given maximum SH degree.
func NewSet(maxSHDegree int) *Set {
	maxSHDegree = min(max(maxSHDegree, 0), sh.MaxDegree)
	gs := &Set{MaxSHDegree: maxSHDegree, Rand: randx.NewGlobalRand()}
	gs.Params = table.NewTable("params")
	gs.Params.AddFloat32Column(XYZCol, 3)
	gs.Params.AddFloat32Column(FeaturesDCCol, 1, 3)
	gs.Params.AddFloat32Column(FeaturesRestCol, sh.NumRest(maxSHDegree), 3)
	gs.Params.AddFloat32Column(ScalingCol, 3)
	gs.Params.AddFloat32Column(RotationCol, 4)
	gs.Params.AddFloat32Column(OpacityCol, 1)
	gs.Stats = table.NewTable("stats")
	gs.Stats.AddFloat32Column(GradAccumCol, 1)
	gs.Stats.AddFloat32Column(DenomCol, 1)
	gs.Stats.AddFloat32Column(MaxRadiiCol)
	return gs
}

// NumPoints returns the number of primitives.
func (gs *Set) NumPoints() int {
	return gs.Params.NumRows()
}

// OneUpSHDegree increments the active SH degree, up to the maximum.
func (gs *Set) OneUpSHDegree() {
	if gs.ActiveSHDegree < gs.MaxSHDegree {
		gs.ActiveSHDegree++
	}
}

// InvariantError reports that the per-primitive arrays of a [Set]
// disagree on the number of rows after a mutation. It is panicked,
// as parameters and optimizer state can no longer be trusted.
type InvariantError struct {
	Op  string
	Err error
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("gaussian.%s: invariant violation: %v", e.Op, e.Err)
}

func (e *InvariantError) Unwrap() error { return e.Err }

// Validate returns an error if any parameter column, bookkeeping column,
// or optimizer group does not have [Set.NumPoints] rows, or if a group
// is not bound to the parameter column of the same name.
func (gs *Set) Validate() error {
	n := gs.NumPoints()
	if err := gs.Params.Validate(); err != nil {
		return err
	}
	if err := gs.Stats.Validate(); err != nil {
		return err
	}
	if m := gs.Stats.NumRows(); m != n {
		return fmt.Errorf("stats have %d rows, params have %d", m, n)
	}
	if gs.Optimizer == nil {
		return nil
	}
	for _, g := range gs.Optimizer.Groups.Values {
		if gs.Params.Column(g.Name) != g.Param {
			return fmt.Errorf("optimizer group %q is not bound to its parameter column", g.Name)
		}
	}
	return gs.Optimizer.Validate(n)
}

// checkInvariant panics with an [InvariantError] if [Set.Validate] fails.
func (gs *Set) checkInvariant(op string) {
	if err := gs.Validate(); err != nil {
		panic(&InvariantError{Op: op, Err: err})
	}
}
