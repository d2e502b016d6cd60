// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package randx

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSysRandSeeded(t *testing.T) {
	a := NewSysRand(42)
	b := NewSysRand(42)
	for range 10 {
		assert.Equal(t, a.NormFloat64(), b.NormFloat64())
	}
	a.Seed(7)
	b.Seed(7)
	assert.Equal(t, a.Float32(), b.Float32())
	assert.Equal(t, a.Intn(100), b.Intn(100))
}

func TestGaussianFillMoments(t *testing.T) {
	rnd := NewSysRand(1)
	n := 20000
	dst := make([]float32, 2)
	sigmas := []float32{0.5, 2}
	var sum, ss [2]float64
	for range n {
		GaussianFill(dst, sigmas, rnd)
		for c, v := range dst {
			sum[c] += float64(v)
			ss[c] += float64(v) * float64(v)
		}
	}
	for c, sigma := range sigmas {
		mean := sum[c] / float64(n)
		std := math.Sqrt(ss[c]/float64(n) - mean*mean)
		assert.InDelta(t, 0, mean, 0.05*float64(sigma))
		assert.InDelta(t, float64(sigma), std, 0.05*float64(sigma))
	}
}

func TestGaussianFill(t *testing.T) {
	rnd := NewSysRand(3)
	dst := make([]float32, 3)
	GaussianFill(dst, []float32{0, 0, 0}, rnd)
	assert.Equal(t, []float32{0, 0, 0}, dst)
	GaussianFill(dst, []float32{1, 1, 1}, rnd)
	assert.NotEqual(t, []float32{0, 0, 0}, dst)
}
