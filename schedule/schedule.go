// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package schedule provides learning rate schedules as a function
// of the training step.
package schedule

import "cogentcore.org/gsplat/math32"

// ExponLR is a continuous learning rate decay: log-linear interpolation
// (exponential decay) from Init at step 0 to Final at MaxSteps, with an
// optional delayed warm-up. During the first DelaySteps steps the rate is
// multiplied by a factor that rises smoothly (sine-shaped) from DelayMult to 1.
type ExponLR struct {

	// Init is the learning rate at step 0.
	Init float32

	// Final is the learning rate at MaxSteps and beyond.
	Final float32

	// DelaySteps is the number of warm-up steps; 0 disables warm-up.
	DelaySteps int

	// DelayMult is the warm-up multiplier at step 0.
	DelayMult float32

	// MaxSteps is the step at which Final is reached.
	MaxSteps int
}

// NewExponLR returns an [ExponLR] with no warm-up and a DelayMult of 1.
func NewExponLR(init, final float32, maxSteps int) *ExponLR {
	return &ExponLR{Init: init, Final: final, DelayMult: 1, MaxSteps: maxSteps}
}

// LR returns the learning rate at the given step. It returns 0 for a
// negative step, a zero MaxSteps, or a schedule with both rates zero.
func (ex *ExponLR) LR(step int) float32 {
	if step < 0 || ex.MaxSteps == 0 || (ex.Init == 0 && ex.Final == 0) {
		return 0
	}
	delay := float32(1)
	if ex.DelaySteps > 0 {
		ph := math32.Clamp(float32(step)/float32(ex.DelaySteps), 0, 1)
		delay = ex.DelayMult + (1-ex.DelayMult)*math32.Sin(0.5*math32.Pi*ph)
	}
	t := math32.Clamp(float32(step)/float32(ex.MaxSteps), 0, 1)
	logLerp := math32.Exp(math32.Log(ex.Init)*(1-t) + math32.Log(ex.Final)*t)
	return delay * logLerp
}
