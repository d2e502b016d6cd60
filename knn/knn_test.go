// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package knn

import (
	"testing"

	"cogentcore.org/gsplat/base/randx"
	"cogentcore.org/gsplat/math32"
	"github.com/stretchr/testify/assert"
)

func TestMeanSquaredDistancesSmall(t *testing.T) {
	assert.Empty(t, MeanSquaredDistances(nil, DefaultK))
	assert.Equal(t, []float32{0}, MeanSquaredDistances([]math32.Vector3{{1, 2, 3}}, DefaultK))

	pts := []math32.Vector3{{0, 0, 0}, {1, 0, 0}}
	assert.Equal(t, []float32{1, 1}, MeanSquaredDistances(pts, DefaultK))

	pts = []math32.Vector3{{0, 0, 0}, {1, 0, 0}, {0, 2, 0}}
	d := MeanSquaredDistances(pts, DefaultK)
	assert.InDelta(t, 2.5, d[0], 1e-6)
	assert.InDelta(t, 3, d[1], 1e-6)
	assert.InDelta(t, 4.5, d[2], 1e-6)

	dup := []math32.Vector3{{0, 0, 0}, {0, 0, 0}, {3, 0, 0}}
	d = MeanSquaredDistances(dup, 1)
	assert.Equal(t, []float32{0, 0, 9}, d)
	assert.Equal(t, d, treeMeanSquaredDistances(dup, 1))

	assert.Equal(t, []float32{0}, treeMeanSquaredDistances([]math32.Vector3{{1, 2, 3}}, DefaultK))
	d = treeMeanSquaredDistances(pts, DefaultK)
	assert.InDelta(t, 2.5, d[0], 1e-6)
	assert.InDelta(t, 4.5, d[2], 1e-6)
}

func TestMeanSquaredDistancesBrute(t *testing.T) {
	rnd := randx.NewSysRand(42)
	pts := make([]math32.Vector3, 500)
	for i := range pts {
		pts[i] = math32.Vec3(rnd.Float32()*10, rnd.Float32()*10, rnd.Float32()*10)
	}
	for _, k := range []int{1, 3, 8} {
		fast := treeMeanSquaredDistances(pts, k)
		brute := BruteMeanSquaredDistances(pts, k)
		for i := range pts {
			assert.InEpsilon(t, brute[i], fast[i], 1e-4, "k=%d point %d", k, i)
		}
	}
}
