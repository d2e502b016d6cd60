// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package knn computes nearest-neighbour distance statistics over
// 3D point sets, using a gonum k-d tree.
package knn

import (
	"cogentcore.org/gsplat/math32"
	"cogentcore.org/gsplat/tensor"
	"gonum.org/v1/gonum/spatial/kdtree"
)

// DefaultK is the number of neighbours used for primitive scale initialization.
const DefaultK = 3

// NewTree returns a k-d tree over the given points.
func NewTree(points []math32.Vector3) *kdtree.Tree {
	pts := make(kdtree.Points, len(points))
	for i, p := range points {
		pts[i] = kdtree.Point{float64(p.X), float64(p.Y), float64(p.Z)}
	}
	return kdtree.New(pts, false)
}

// BruteMax is the largest number of points for which
// [MeanSquaredDistances] searches by brute force instead of building a tree.
const BruteMax = 32

// MeanSquaredDistances returns, for each point, the mean squared Euclidean
// distance to its k nearest other points. When fewer than k other points
// exist, all of them are used; a point with no other points gets 0.
// The point itself is excluded once, so exact duplicates count as
// neighbours at distance 0.
func MeanSquaredDistances(points []math32.Vector3, k int) []float32 {
	if len(points) <= BruteMax {
		return BruteMeanSquaredDistances(points, k)
	}
	return treeMeanSquaredDistances(points, k)
}

func treeMeanSquaredDistances(points []math32.Vector3, k int) []float32 {
	n := len(points)
	out := make([]float32, n)
	if n < 2 || k < 1 {
		return out
	}
	tree := NewTree(points)
	tensor.VectorizeThreaded(k*32, n, func(i int) {
		p := points[i]
		q := kdtree.Point{float64(p.X), float64(p.Y), float64(p.Z)}
		keep := kdtree.NewNKeeper(k + 1)
		tree.NearestSet(keep, q)
		self := false
		var sum float64
		cnt := 0
		for _, cd := range keep.Heap {
			if cd.Comparable == nil {
				continue
			}
			if !self && cd.Dist == 0 {
				self = true
				continue
			}
			sum += cd.Dist
			cnt++
		}
		if cnt > 0 {
			out[i] = float32(sum / float64(cnt))
		}
	})
	return out
}

// BruteMeanSquaredDistances is the O(n²) version of
// [MeanSquaredDistances], used for small point sets.
func BruteMeanSquaredDistances(points []math32.Vector3, k int) []float32 {
	n := len(points)
	out := make([]float32, n)
	if k < 1 {
		return out
	}
	for i, p := range points {
		best := make([]float32, 0, k)
		for j, o := range points {
			if j == i {
				continue
			}
			d := p.DistanceToSquared(o)
			if len(best) < k {
				best = append(best, d)
			} else {
				mx := 0
				for b := range best {
					if best[b] > best[mx] {
						mx = b
					}
				}
				if d < best[mx] {
					best[mx] = d
				}
			}
		}
		if len(best) == 0 {
			continue
		}
		var sum float32
		for _, d := range best {
			sum += d
		}
		out[i] = sum / float32(len(best))
	}
	return out
}
