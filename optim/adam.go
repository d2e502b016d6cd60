// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package optim

import (
	"fmt"
	"math"

	"cogentcore.org/gsplat/math32"
	"cogentcore.org/gsplat/tensor"
)

// Adam has the hyperparameters of the Adam adaptive gradient method.
// It holds no per-parameter state: that is owned by each [Group].
type Adam struct {

	// Beta1 is the decay rate of the first moment.
	Beta1 float32 `default:"0.9"`

	// Beta2 is the decay rate of the second moment.
	Beta2 float32 `default:"0.999"`

	// Eps is added to the denominator for numerical stability.
	Eps float32 `default:"1e-15"`
}

// Defaults sets the default hyperparameters.
func (a *Adam) Defaults() {
	a.Beta1 = 0.9
	a.Beta2 = 0.999
	a.Eps = 1e-15
}

// Step applies one bias-corrected Adam update to the group parameter,
// using the given gradient, which must have the same shape.
func (a *Adam) Step(g *Group, grad *tensor.Float32) error {
	if !grad.Shape().IsEqual(g.Param.Shape()) {
		return fmt.Errorf("optim.Adam.Step: gradient shape %v does not match group %q shape %v", grad.ShapeSizes(), g.Name, g.Param.ShapeSizes())
	}
	if err := g.Validate(); err != nil {
		return err
	}
	g.Step++
	b1, b2, eps := a.Beta1, a.Beta2, a.Eps
	b1Corr := 1 - float32(math.Pow(float64(b1), float64(g.Step)))
	b2Corr := 1 - float32(math.Pow(float64(b2), float64(g.Step)))
	stepSize := g.LR / b1Corr
	b2CorrSqrt := math32.Sqrt(b2Corr)
	p, m, v := g.Param.Values, g.ExpAvg.Values, g.ExpAvgSq.Values
	tensor.VectorizeThreaded(12, len(p), func(i int) {
		gr := grad.Values[i]
		m[i] = b1*m[i] + (1-b1)*gr
		v[i] = b2*v[i] + (1-b2)*gr*gr
		denom := math32.Sqrt(v[i])/b2CorrSqrt + eps
		p[i] -= stepSize * m[i] / denom
	})
	return nil
}
