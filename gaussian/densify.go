// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gaussian

import (
	"fmt"
	"log/slog"

	"cogentcore.org/gsplat/base/errors"
	"cogentcore.org/gsplat/base/randx"
	"cogentcore.org/gsplat/base/slicesx"
	"cogentcore.org/gsplat/math32"
	"cogentcore.org/gsplat/tensor"
	"cogentcore.org/gsplat/tensor/table"
	"cogentcore.org/gsplat/tensor/tmath"
)

// DensifyReport summarizes one densify-and-prune cycle.
type DensifyReport struct {
	// Before is the number of primitives at the start.
	Before int

	// Cloned is the number of primitives cloned.
	Cloned int

	// Split is the number of parents that were split; each is
	// replaced by its children.
	Split int

	// Children is the number of primitives added by splitting.
	Children int

	// Pruned is the number of primitives removed by the final prune.
	Pruned int

	// After is the number of primitives at the end.
	After int
}

func (r *DensifyReport) String() string {
	return fmt.Sprintf("densify: %d -> %d (cloned %d, split %d into %d, pruned %d)",
		r.Before, r.After, r.Cloned, r.Split, r.Children, r.Pruned)
}

// AddDensificationStats accumulates the norm of the first two components
// of the view-space positional gradient, [N,≥2], and counts one
// iteration, for each visible primitive. Other rows are untouched.
func (gs *Set) AddDensificationStats(viewspaceGrad *tensor.Float32, visible []bool) {
	n := gs.NumPoints()
	if viewspaceGrad.NumRows() != n || len(visible) != n {
		panic(&InvariantError{Op: "AddDensificationStats", Err: fmt.Errorf("got %d gradient rows and %d visibility flags for %d primitives", viewspaceGrad.NumRows(), len(visible), n)})
	}
	accum := gs.Stats.Column(GradAccumCol)
	denom := gs.Stats.Column(DenomCol)
	norms := tensor.NewFloat32()
	tmath.RowNorm(viewspaceGrad, 2, norms)
	tensor.VectorizeThreaded(2, n, func(i int) {
		if !visible[i] {
			return
		}
		accum.Values[i] += norms.Values[i]
		denom.Values[i]++
	})
}

// UpdateMaxRadii keeps the running maximum of the screen-space
// radius of each visible primitive.
func (gs *Set) UpdateMaxRadii(radii []float32, visible []bool) {
	n := gs.NumPoints()
	if len(radii) != n || len(visible) != n {
		panic(&InvariantError{Op: "UpdateMaxRadii", Err: fmt.Errorf("got %d radii and %d visibility flags for %d primitives", len(radii), len(visible), n)})
	}
	mr := gs.Stats.Column(MaxRadiiCol)
	tensor.VectorizeThreaded(1, n, func(i int) {
		if visible[i] {
			mr.Values[i] = max(mr.Values[i], radii[i])
		}
	})
}

// Step applies one optimizer step with the given gradients,
// keyed by parameter name.
func (gs *Set) Step(grads map[string]*tensor.Float32) error {
	if gs.Optimizer == nil {
		return errors.New("gaussian.Step: TrainingSetup has not been called")
	}
	return gs.Optimizer.Step(grads)
}

// Prune removes the primitives for which mask is true, gathering the
// surviving rows of every parameter, every bookkeeping column, and
// both moments of every optimizer group.
func (gs *Set) Prune(mask []bool) {
	if len(mask) != gs.NumPoints() {
		panic(&InvariantError{Op: "Prune", Err: fmt.Errorf("mask has %d entries for %d primitives", len(mask), gs.NumPoints())})
	}
	if err := gs.Params.DeleteRows(mask); err != nil {
		panic(&InvariantError{Op: "Prune", Err: err})
	}
	if err := gs.Stats.DeleteRows(mask); err != nil {
		panic(&InvariantError{Op: "Prune", Err: err})
	}
	if gs.Optimizer != nil {
		gs.Optimizer.GatherRows(slicesx.Indexes(mask, false))
	}
	gs.checkInvariant("Prune")
}

// densificationPostfix appends the given parameter rows, which must have
// the same columns as [Set.Params], zero-extends the optimizer moments,
// and resets all bookkeeping columns to zero for the new size.
func (gs *Set) densificationPostfix(rows *table.Table) {
	if err := gs.Params.AppendRows(rows); err != nil {
		panic(&InvariantError{Op: "densificationPostfix", Err: err})
	}
	n := gs.NumPoints()
	if gs.Optimizer != nil {
		gs.Optimizer.SetNumRows(n)
	}
	gs.Stats.SetNumRows(n)
	gs.Stats.SetZeros()
	gs.checkInvariant("densificationPostfix")
}

// DensifyAndClone appends an unchanged copy of every primitive whose
// gradient, [N] or [N,1], is at or above the threshold and whose largest
// scale axis is at most PercentDense of the scene extent.
// It returns the number of primitives cloned.
func (gs *Set) DensifyAndClone(grads *tensor.Float32, threshold, extent float32) int {
	if grads.Len() != gs.NumPoints() {
		panic(&InvariantError{Op: "DensifyAndClone", Err: fmt.Errorf("got %d gradients for %d primitives", grads.Len(), gs.NumPoints())})
	}
	limit := gs.PercentDense * extent
	sel := tmath.And(tmath.GreaterEqual(grads, threshold), tmath.LessEqual(gs.maxScales(), limit))
	idx := slicesx.Indexes(sel, true)
	gs.densificationPostfix(gs.Params.SelectRows(idx))
	return len(idx)
}

// DensifyAndSplit replaces every primitive whose gradient is at or above
// the threshold and whose largest scale axis is greater than PercentDense
// of the scene extent with n children. Gradients for rows beyond the
// given ones (added by a preceding clone) are taken as zero. Each child
// is sampled from the parent Gaussian, with its scale divided by 0.8·n
// and all other parameters copied. It returns the number of parents split.
func (gs *Set) DensifyAndSplit(grads *tensor.Float32, threshold, extent float32, n int) int {
	np := gs.NumPoints()
	if n < 1 {
		return 0
	}
	if grads.Len() > np {
		panic(&InvariantError{Op: "DensifyAndSplit", Err: fmt.Errorf("got %d gradients for %d primitives", grads.Len(), np)})
	}
	padded := tensor.NewFloat32(np)
	copy(padded.Values, grads.Values)
	limit := gs.PercentDense * extent
	sel := tmath.And(tmath.GreaterEqual(padded, threshold), tmath.Greater(gs.maxScales(), limit))
	idx := slicesx.Indexes(sel, true)
	ns := len(idx)

	children := gs.Params.SelectRows(idx).RepeatRows(n)
	nc := children.NumRows()
	xyz := children.Column(XYZCol)
	scl := children.Column(ScalingCol)
	rot := children.Column(RotationCol)
	noise := make([]float32, 3*nc)
	for i := range nc {
		s := vec3At(scl, i)
		sigma := []float32{math32.Exp(s.X), math32.Exp(s.Y), math32.Exp(s.Z)}
		randx.GaussianFill(noise[i*3:i*3+3], sigma, gs.rand())
	}
	shrink := math32.Log(0.8 * float32(n))
	tensor.VectorizeThreaded(40, nc, func(i int) {
		r := quatAt(rot, i).Normal().ToMatrix3()
		var eps math32.Vector3
		eps.FromSlice(noise, i*3)
		p := r.MulVector3(eps).Add(vec3At(xyz, i))
		p.ToSlice(xyz.Values, i*3)
		for c := range 3 {
			scl.Values[i*3+c] -= shrink
		}
	})
	gs.densificationPostfix(children)

	prune := make([]bool, gs.NumPoints())
	for _, i := range idx {
		prune[i] = true
	}
	gs.Prune(prune)
	return ns
}

func (gs *Set) rand() randx.Rand {
	if gs.Rand == nil {
		gs.Rand = randx.NewGlobalRand()
	}
	return gs.Rand
}

// DensifyAndPrune runs a full densification cycle: the mean gradient of
// each primitive is computed from the bookkeeping columns (0 where no
// iteration was counted), small primitives with large gradients are
// cloned, large ones are split, and then primitives are pruned that are
// nearly transparent or, if maxScreenSize is positive, too large on
// screen or in the world. An empty set is left unchanged.
func (gs *Set) DensifyAndPrune(maxGrad, minOpacity, extent, maxScreenSize float32) *DensifyReport {
	rep := &DensifyReport{Before: gs.NumPoints()}
	if rep.Before == 0 {
		return rep
	}
	grads := tensor.NewFloat32()
	tmath.SafeDiv(gs.Stats.Column(GradAccumCol), gs.Stats.Column(DenomCol), grads)

	rep.Cloned = gs.DensifyAndClone(grads, maxGrad, extent)
	rep.Split = gs.DensifyAndSplit(grads, maxGrad, extent, 2)
	rep.Children = 2 * rep.Split

	prune := tmath.Less(gs.Opacity(), minOpacity)
	if maxScreenSize > 0 {
		bigScreen := tmath.Greater(gs.Stats.Column(MaxRadiiCol), maxScreenSize)
		bigWorld := tmath.Greater(gs.maxScales(), 0.1*extent)
		prune = slicesx.Or(prune, bigScreen, bigWorld)
	}
	rep.Pruned = slicesx.Count(prune)
	gs.Prune(prune)
	rep.After = gs.NumPoints()
	slog.Debug(rep.String())
	if gs.Metrics != nil {
		gs.Metrics.Report(rep)
	}
	return rep
}

// ResetOpacity sets the opacity of every primitive to [ResetOpacityValue]
// and zeroes the moments and step of the opacity optimizer group,
// as the new values were not learned.
func (gs *Set) ResetOpacity() {
	gs.Params.Column(OpacityCol).Fill(math32.InverseSigmoid(ResetOpacityValue))
	if gs.Optimizer != nil {
		errors.Log(gs.Optimizer.Reset(OpacityCol))
	}
	gs.checkInvariant("ResetOpacity")
}
