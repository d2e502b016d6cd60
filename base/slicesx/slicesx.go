// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package slicesx provides additional slice functions
// beyond those in the standard [slices] package.
package slicesx

import "slices"

// SetLength sets the length of the given slice,
// re-using and preserving existing values to the extent possible.
func SetLength[E any](s []E, n int) []E {
	if len(s) == n {
		return s
	}
	if s == nil {
		return make([]E, n)
	}
	if cap(s) < n {
		s = slices.Grow(s, n-len(s))
	}
	s = s[:n]
	return s
}

// Indexes returns the indexes of the mask values equal to want,
// in ascending order.
func Indexes(mask []bool, want bool) []int {
	idx := make([]int, 0, len(mask))
	for i, m := range mask {
		if m == want {
			idx = append(idx, i)
		}
	}
	return idx
}

// Count returns the number of true values in the mask.
func Count(mask []bool) int {
	n := 0
	for _, m := range mask {
		if m {
			n++
		}
	}
	return n
}

// Or returns the element-wise logical or of the given equal-length masks.
func Or(masks ...[]bool) []bool {
	if len(masks) == 0 {
		return nil
	}
	out := slices.Clone(masks[0])
	for _, m := range masks[1:] {
		for i, v := range m {
			out[i] = out[i] || v
		}
	}
	return out
}
