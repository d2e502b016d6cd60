// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sh provides real spherical harmonic constants and helpers
// for view-dependent colour up to degree 3.
package sh

import "cogentcore.org/gsplat/math32"

// MaxDegree is the highest spherical harmonic degree supported by [Eval].
const MaxDegree = 3

// C0 is the degree 0 (DC) coefficient normalization, 1 / (2 sqrt(pi)).
const C0 = 0.28209479177387814

// C1 is the degree 1 coefficient normalization.
const C1 = 0.4886025119029199

// C2 are the degree 2 coefficient normalizations.
var C2 = [5]float32{
	1.0925484305920792,
	-1.0925484305920792,
	0.31539156525252005,
	-1.0925484305920792,
	0.5462742152960396,
}

// C3 are the degree 3 coefficient normalizations.
var C3 = [7]float32{
	-0.5900435899266435,
	2.890611442640554,
	-0.4570457994644658,
	0.3731763325901154,
	-0.4570457994644658,
	1.445305721320277,
	-0.5900435899266435,
}

// NumCoeffs returns the total number of coefficients per colour channel
// for the given degree, (degree+1)².
func NumCoeffs(degree int) int {
	return (degree + 1) * (degree + 1)
}

// NumRest returns the number of non-DC coefficients per colour channel
// for the given degree, (degree+1)² - 1.
func NumRest(degree int) int {
	return NumCoeffs(degree) - 1
}

// DegreeFromCoeffs returns the degree for the given total number
// of coefficients per channel, and false if it is not a perfect square.
func DegreeFromCoeffs(n int) (int, bool) {
	for d := 0; d <= MaxDegree; d++ {
		if NumCoeffs(d) == n {
			return d, true
		}
	}
	return 0, false
}

// RGB2SH converts a colour component in [0,1] to its DC coefficient.
func RGB2SH(c float32) float32 {
	return (c - 0.5) / C0
}

// SH2RGB converts a DC coefficient back to a colour component.
func SH2RGB(v float32) float32 {
	return v*C0 + 0.5
}

// Eval evaluates the spherical harmonics of the given degree at unit
// direction dir, for one colour channel whose coefficients are given in
// order (dc first). Only the first NumCoeffs(degree) coefficients are used.
// The result still has the 0.5 offset removed; add 0.5 to get a colour.
func Eval(degree int, coeffs []float32, dir math32.Vector3) float32 {
	res := C0 * coeffs[0]
	if degree < 1 {
		return res
	}
	x, y, z := dir.X, dir.Y, dir.Z
	res = res - C1*y*coeffs[1] + C1*z*coeffs[2] - C1*x*coeffs[3]
	if degree < 2 {
		return res
	}
	xx, yy, zz := x*x, y*y, z*z
	xy, yz, xz := x*y, y*z, x*z
	res += C2[0]*xy*coeffs[4] +
		C2[1]*yz*coeffs[5] +
		C2[2]*(2*zz-xx-yy)*coeffs[6] +
		C2[3]*xz*coeffs[7] +
		C2[4]*(xx-yy)*coeffs[8]
	if degree < 3 {
		return res
	}
	res += C3[0]*y*(3*xx-yy)*coeffs[9] +
		C3[1]*xy*z*coeffs[10] +
		C3[2]*y*(4*zz-xx-yy)*coeffs[11] +
		C3[3]*z*(2*zz-3*xx-3*yy)*coeffs[12] +
		C3[4]*x*(4*zz-xx-yy)*coeffs[13] +
		C3[5]*z*(xx-yy)*coeffs[14] +
		C3[6]*x*(xx-3*yy)*coeffs[15]
	return res
}
