// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gaussian

import (
	"log/slog"

	"cogentcore.org/gsplat/base/errors"
	"cogentcore.org/gsplat/config"
	"cogentcore.org/gsplat/knn"
	"cogentcore.org/gsplat/math32"
	"cogentcore.org/gsplat/optim"
	"cogentcore.org/gsplat/pointcloud"
	"cogentcore.org/gsplat/schedule"
	"cogentcore.org/gsplat/sh"
	"cogentcore.org/gsplat/tensor"
)

// MinDistance2 is the smallest squared neighbour distance used
// for initial scales, so that no primitive starts with zero size.
const MinDistance2 = 1e-7

// InitialOpacity is the activated opacity of new primitives.
const InitialOpacity = 0.5

// ResetOpacityValue is the activated opacity set by [Set.ResetOpacity].
const ResetOpacityValue = 0.01

// CreateFromPCD initializes the set from the given point cloud, replacing
// any existing primitives. Colours set the DC coefficients, scales are
// isotropic at the root mean squared distance to the nearest neighbours,
// rotations are identity, and opacities are [InitialOpacity].
// An empty point cloud gives an empty set.
func (gs *Set) CreateFromPCD(pc *pointcloud.PointCloud, spatialScale float32) error {
	if err := pc.Validate(); err != nil {
		return err
	}
	gs.SpatialLRScale = spatialScale
	n := pc.Len()
	slog.Info("number of points at initialisation", "points", n)

	gs.Params.SetNumRows(0)
	gs.Params.SetNumRows(n)
	gs.Stats.SetNumRows(0)
	gs.Stats.SetNumRows(n)
	if gs.Optimizer != nil {
		errors.Log(gs.Optimizer.Bind(gs.Params))
		gs.Optimizer.SetNumRows(0)
		gs.Optimizer.SetNumRows(n)
	}

	dist2 := knn.MeanSquaredDistances(pc.Points, knn.DefaultK)
	xyz := gs.Params.Column(XYZCol)
	fdc := gs.Params.Column(FeaturesDCCol)
	scl := gs.Params.Column(ScalingCol)
	rot := gs.Params.Column(RotationCol)
	opc := gs.Params.Column(OpacityCol)
	op0 := math32.InverseSigmoid(InitialOpacity)
	tensor.VectorizeThreaded(20, n, func(i int) {
		pc.Points[i].ToSlice(xyz.Values, i*3)
		col := pc.Color(i)
		fdc.Values[i*3] = sh.RGB2SH(col.X)
		fdc.Values[i*3+1] = sh.RGB2SH(col.Y)
		fdc.Values[i*3+2] = sh.RGB2SH(col.Z)
		s := math32.Log(math32.Sqrt(max(dist2[i], MinDistance2)))
		scl.Values[i*3], scl.Values[i*3+1], scl.Values[i*3+2] = s, s, s
		math32.QuatIdentity().ToWXYZ(rot.Values, i*4)
		opc.Values[i] = op0
	})
	gs.checkInvariant("CreateFromPCD")
	return nil
}

// TrainingSetup binds a new optimizer group to each parameter column,
// with zero moments and the learning rates of the given parameters,
// sets up the position learning rate schedule, and zeroes the
// densification statistics.
func (gs *Set) TrainingSetup(op *config.Optimization) {
	gs.PercentDense = op.PercentDense
	gs.Stats.SetZeros()
	lrs := map[string]float32{
		XYZCol:          op.PositionLRInit * gs.SpatialLRScale,
		FeaturesDCCol:   op.FeatureLR,
		FeaturesRestCol: op.FeatureLR / 20,
		OpacityCol:      op.OpacityLR,
		ScalingCol:      op.ScalingLR,
		RotationCol:     op.RotationLR,
	}
	gs.Optimizer = optim.New()
	for _, name := range ParamNames {
		errors.Must1(gs.Optimizer.AddGroup(name, gs.Params.Column(name), lrs[name]))
	}
	gs.PositionLR = &schedule.ExponLR{
		Init:       op.PositionLRInit * gs.SpatialLRScale,
		Final:      op.PositionLRFinal * gs.SpatialLRScale,
		DelaySteps: op.PositionLRDelaySteps,
		DelayMult:  op.PositionLRDelayMult,
		MaxSteps:   op.PositionLRMaxSteps,
	}
	gs.checkInvariant("TrainingSetup")
}

// UpdateLearningRate sets the learning rate of the position group
// from the schedule for the given iteration, and returns it.
// The other groups keep their constant rates.
func (gs *Set) UpdateLearningRate(iteration int) float32 {
	if gs.Optimizer == nil || gs.PositionLR == nil {
		return 0
	}
	lr := gs.PositionLR.LR(iteration)
	errors.Log(gs.Optimizer.SetLR(XYZCol, lr))
	return lr
}
