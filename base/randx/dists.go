// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package randx

// GaussianFill fills dst with independent gaussian samples
// with zero mean, scaled element-wise by the given sigmas,
// which must be the same length as dst.
func GaussianFill(dst, sigmas []float32, rnd Rand) {
	for i, s := range sigmas {
		dst[i] = s * float32(rnd.NormFloat64())
	}
}
