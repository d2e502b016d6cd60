// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package train drives the structural lifecycle of a Gaussian set
// over the iterations of a training run: learning rate updates,
// SH degree growth, densification statistics, densify and prune
// cycles, opacity resets, optimizer steps, and saving.
package train

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"

	"cogentcore.org/gsplat/base/randx"
	"cogentcore.org/gsplat/checkpoint"
	"cogentcore.org/gsplat/config"
	"cogentcore.org/gsplat/gaussian"
	"cogentcore.org/gsplat/metrics"
	"cogentcore.org/gsplat/tensor"
)

// RenderResult is the outcome of rendering the set for one iteration
// and back-propagating the loss.
type RenderResult struct {

	// ViewspaceGrad is the gradient of the loss with respect to the
	// projected screen-space positions, [N,≥2].
	ViewspaceGrad *tensor.Float32

	// Visible is whether each primitive was inside the view frustum.
	Visible []bool

	// Radii is the screen-space radius of each primitive, in pixels.
	Radii []float32

	// Grads has the gradient of each parameter column, by name.
	Grads map[string]*tensor.Float32

	// Loss is the training loss.
	Loss float32
}

// Renderer renders a set for a training iteration and computes
// the gradients of the loss. It is the differentiable rasterizer
// and loss of the training loop.
type Renderer interface {
	Render(ctx context.Context, gs *gaussian.Set, iteration int) (*RenderResult, error)
}

// Trainer runs the training iterations of a set.
type Trainer struct {

	// Config has the run parameters.
	Config *config.Config

	// Set is the set being trained, which must have been set up
	// with [gaussian.Set.TrainingSetup].
	Set *gaussian.Set

	// Renderer renders the set each iteration.
	Renderer Renderer

	// Extent is the radius of the scene cameras, which scales the
	// densification size thresholds.
	Extent float32

	// Checkpoints stores the captured state at the checkpoint
	// iterations, if set.
	Checkpoints *checkpoint.Store

	// Metrics records iteration and densification metrics, if set.
	Metrics *metrics.Metrics

	// Iteration is the last completed iteration.
	Iteration int
}

// New returns a new trainer for the given set. A non-zero
// [config.Config.Seed] gives the set its own seeded random source.
func New(cfg *config.Config, gs *gaussian.Set, r Renderer, extent float32) *Trainer {
	if cfg.Seed != 0 && gs != nil {
		gs.Rand = randx.NewSysRand(cfg.Seed)
	}
	return &Trainer{Config: cfg, Set: gs, Renderer: r, Extent: extent}
}

// Resume restores the set from the latest checkpoint in the store,
// continuing after its iteration.
func (tr *Trainer) Resume(st *checkpoint.Store) error {
	c, err := st.Latest()
	if err != nil {
		return err
	}
	gs, err := gaussian.Restore(c.State, &tr.Config.Optimization)
	if err != nil {
		return err
	}
	if tr.Set != nil {
		gs.Rand = tr.Set.Rand
	}
	tr.Set = gs
	tr.Iteration = c.Iteration
	slog.Info("resumed from checkpoint", "iteration", c.Iteration, "points", gs.NumPoints())
	return nil
}

// Run runs the remaining iterations up to the configured total.
// The context is checked before each iteration. A run that starts
// from the beginning saves the config snapshot in the model path.
func (tr *Trainer) Run(ctx context.Context) error {
	if tr.Iteration == 0 && tr.Config.Model.ModelPath != "" {
		if err := tr.Config.SaveSnapshot(); err != nil {
			return fmt.Errorf("train: %w", err)
		}
	}
	if tr.Metrics != nil {
		tr.Set.Metrics = tr.Metrics
		tr.Metrics.SetPrimitives(tr.Set.NumPoints())
	}
	for tr.Iteration < tr.Config.Optimization.Iterations {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := tr.Iterate(ctx, tr.Iteration+1); err != nil {
			return err
		}
	}
	return nil
}

// Iterate runs the given training iteration.
func (tr *Trainer) Iterate(ctx context.Context, iter int) error {
	gs := tr.Set
	op := &tr.Config.Optimization
	gs.UpdateLearningRate(iter)
	if op.SHUpInterval > 0 && iter%op.SHUpInterval == 0 {
		gs.OneUpSHDegree()
	}
	res, err := tr.Renderer.Render(ctx, gs, iter)
	if err != nil {
		return fmt.Errorf("train: render iteration %d: %w", iter, err)
	}
	if slices.Contains(tr.Config.SaveIterations, iter) {
		if err := tr.SavePLY(iter); err != nil {
			return err
		}
	}
	grads := res.Grads
	if iter < op.DensifyUntilIter {
		gs.UpdateMaxRadii(res.Radii, res.Visible)
		gs.AddDensificationStats(res.ViewspaceGrad, res.Visible)
		if iter > op.DensifyFromIter && op.DensificationInterval > 0 && iter%op.DensificationInterval == 0 {
			var size float32
			if iter > op.OpacityResetInterval {
				size = op.MaxScreenSize
			}
			gs.DensifyAndPrune(op.DensifyGradThreshold, op.MinOpacity, tr.Extent, size)
			// gradients no longer match the rows
			grads = nil
		}
		if (op.OpacityResetInterval > 0 && iter%op.OpacityResetInterval == 0) ||
			(tr.Config.Model.WhiteBackground && iter == op.DensifyFromIter) {
			slog.Debug("resetting opacity", "iteration", iter)
			gs.ResetOpacity()
			grads = withoutGrad(grads, gaussian.OpacityCol)
		}
	}
	if iter < op.Iterations && len(grads) > 0 {
		if err := gs.Step(grads); err != nil {
			return fmt.Errorf("train: step iteration %d: %w", iter, err)
		}
	}
	if tr.Checkpoints != nil && slices.Contains(tr.Config.CheckpointIterations, iter) {
		slog.Info("saving checkpoint", "iteration", iter)
		if err := tr.Checkpoints.Save(iter, gs.Capture()); err != nil {
			return err
		}
	}
	if tr.Metrics != nil {
		tr.Metrics.Iteration(iter, res.Loss)
	}
	tr.Iteration = iter
	return nil
}

// withoutGrad returns the given gradients without the named one.
func withoutGrad(grads map[string]*tensor.Float32, name string) map[string]*tensor.Float32 {
	if _, ok := grads[name]; !ok {
		return grads
	}
	gs := make(map[string]*tensor.Float32, len(grads))
	for k, g := range grads {
		if k != name {
			gs[k] = g
		}
	}
	return gs
}

// PLYFile returns the file name of the set saved at the given iteration.
func PLYFile(modelPath string, iter int) string {
	return filepath.Join(modelPath, "point_cloud", fmt.Sprintf("iteration_%d", iter), "point_cloud.ply")
}

// SavePLY saves the set for the given iteration in the model path.
func (tr *Trainer) SavePLY(iter int) error {
	fn := PLYFile(tr.Config.Model.ModelPath, iter)
	slog.Info("saving gaussians", "iteration", iter, "file", fn)
	return tr.Set.SavePLYFile(fn)
}
