// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gaussian

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"cogentcore.org/gsplat/base/errors"
	"cogentcore.org/gsplat/ply"
	"cogentcore.org/gsplat/sh"
	"cogentcore.org/gsplat/tensor/table"
)

// ErrNotSupported is returned for export formats that are not implemented.
var ErrNotSupported = ply.ErrNotSupported

// PLYAttributes returns the PLY vertex property names for the given
// number of rest coefficients per colour channel, in file order.
func PLYAttributes(numRest int) []string {
	names := []string{"x", "y", "z", "nx", "ny", "nz"}
	for i := range 3 {
		names = append(names, fmt.Sprintf("f_dc_%d", i))
	}
	for i := range 3 * numRest {
		names = append(names, fmt.Sprintf("f_rest_%d", i))
	}
	names = append(names, "opacity")
	for i := range 3 {
		names = append(names, fmt.Sprintf("scale_%d", i))
	}
	for i := range 4 {
		names = append(names, fmt.Sprintf("rot_%d", i))
	}
	return names
}

// ToPLY returns the set as a PLY file with one float vertex per primitive.
// Colour coefficients are stored channel-major: all rest coefficients of
// the red channel, then green, then blue.
func (gs *Set) ToPLY() *ply.File {
	n := gs.NumPoints()
	rest := gs.Params.Column(FeaturesRestCol)
	nr := rest.DimSize(1)
	names := PLYAttributes(nr)
	dt := table.NewTable("vertex")
	for _, nm := range names {
		dt.AddFloat32Column(nm)
	}
	dt.SetNumRows(n)
	cols := make([][]float32, len(names))
	for i, nm := range names {
		cols[i] = dt.Column(nm).Values
	}
	xyz := gs.Params.Column(XYZCol).Values
	dc := gs.Params.Column(FeaturesDCCol).Values
	opc := gs.Params.Column(OpacityCol).Values
	scl := gs.Params.Column(ScalingCol).Values
	rot := gs.Params.Column(RotationCol).Values
	for i := range n {
		c := 0
		for j := range 3 {
			cols[c][i] = xyz[i*3+j]
			c++
		}
		c += 3 // normals are zero
		for j := range 3 {
			cols[c][i] = dc[i*3+j]
			c++
		}
		for ch := range 3 {
			for k := range nr {
				cols[c][i] = rest.Values[(i*nr+k)*3+ch]
				c++
			}
		}
		cols[c][i] = opc[i]
		c++
		for j := range 3 {
			cols[c][i] = scl[i*3+j]
			c++
		}
		for j := range 4 {
			cols[c][i] = rot[i*4+j]
			c++
		}
	}
	return &ply.File{Elements: []*ply.Element{ply.NewElement("vertex", dt, ply.Float)}}
}

// SavePLY writes the set to the given writer in binary PLY format.
func (gs *Set) SavePLY(w io.Writer) error {
	return ply.Write(gs.ToPLY(), w)
}

// SavePLYFile writes the set to the given file name in binary PLY format,
// creating the directory if needed.
func (gs *Set) SavePLYFile(filename string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return err
	}
	fp, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer fp.Close()
	bw := bufio.NewWriter(fp)
	if err := gs.SavePLY(bw); err != nil {
		return err
	}
	return bw.Flush()
}

// Export writes the set in the named format. Only "ply" is
// implemented; other formats return [ErrNotSupported].
func (gs *Set) Export(w io.Writer, format string) error {
	switch format {
	case "ply":
		return gs.SavePLY(w)
	default:
		return fmt.Errorf("gaussian.Export: format %q: %w", format, ErrNotSupported)
	}
}

// LoadPLY reads a set written by [Set.SavePLY]. If maxSHDegree is
// negative, it is inferred from the number of rest coefficients;
// otherwise the file must match it. The active SH degree is set to
// the maximum, and there is no optimizer until [Set.TrainingSetup].
func LoadPLY(r io.Reader, maxSHDegree int) (*Set, error) {
	f, err := ply.Read(r)
	if err != nil {
		return nil, err
	}
	return FromPLY(f, maxSHDegree)
}

// OpenPLY reads a set from the given PLY file name; see [LoadPLY].
func OpenPLY(filename string, maxSHDegree int) (*Set, error) {
	f, err := ply.Open(filename)
	if err != nil {
		return nil, err
	}
	return FromPLY(f, maxSHDegree)
}

// FromPLY returns the set held in the vertex element of the given file.
func FromPLY(f *ply.File, maxSHDegree int) (*Set, error) {
	el := f.Element("vertex")
	if el == nil {
		return nil, errors.New("gaussian.FromPLY: no vertex element")
	}
	nrest := 0
	for el.Property(fmt.Sprintf("f_rest_%d", nrest)) >= 0 {
		nrest++
	}
	if nrest%3 != 0 {
		return nil, fmt.Errorf("gaussian.FromPLY: %d rest coefficients is not a multiple of 3", nrest)
	}
	deg, ok := sh.DegreeFromCoeffs(nrest/3 + 1)
	if !ok {
		return nil, fmt.Errorf("gaussian.FromPLY: %d rest coefficients per channel is not a valid SH degree", nrest/3)
	}
	if maxSHDegree >= 0 && deg != maxSHDegree {
		return nil, fmt.Errorf("gaussian.FromPLY: file has SH degree %d, want %d", deg, maxSHDegree)
	}
	names := PLYAttributes(nrest / 3)
	cols := make([][]float32, len(names))
	for i, nm := range names {
		if i >= 3 && i < 6 {
			continue // normals are optional
		}
		c, err := el.Data.ColumnTry(nm)
		if err != nil {
			return nil, fmt.Errorf("gaussian.FromPLY: %w", err)
		}
		cols[i] = c.Values
	}
	gs := NewSet(deg)
	gs.ActiveSHDegree = deg
	n := el.Count()
	gs.Params.SetNumRows(n)
	gs.Stats.SetNumRows(n)
	nr := nrest / 3
	xyz := gs.Params.Column(XYZCol).Values
	dc := gs.Params.Column(FeaturesDCCol).Values
	rest := gs.Params.Column(FeaturesRestCol).Values
	opc := gs.Params.Column(OpacityCol).Values
	scl := gs.Params.Column(ScalingCol).Values
	rot := gs.Params.Column(RotationCol).Values
	for i := range n {
		c := 0
		for j := range 3 {
			xyz[i*3+j] = cols[c][i]
			c++
		}
		c += 3
		for j := range 3 {
			dc[i*3+j] = cols[c][i]
			c++
		}
		for ch := range 3 {
			for k := range nr {
				rest[(i*nr+k)*3+ch] = cols[c][i]
				c++
			}
		}
		opc[i] = cols[c][i]
		c++
		for j := range 3 {
			scl[i*3+j] = cols[c][i]
			c++
		}
		for j := range 4 {
			rot[i*4+j] = cols[c][i]
			c++
		}
	}
	gs.checkInvariant("FromPLY")
	return gs, nil
}
