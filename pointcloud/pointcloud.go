// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package pointcloud provides a coloured 3D point cloud, as produced by
// structure-from-motion, which seeds the initial set of Gaussian primitives.
package pointcloud

import (
	"fmt"
	"io"

	"cogentcore.org/gsplat/base/errors"
	"cogentcore.org/gsplat/math32"
	"cogentcore.org/gsplat/ply"
	"cogentcore.org/gsplat/tensor/table"
)

// PointCloud is a set of points with 8-bit RGB colours.
// Points and Colors must have the same length.
type PointCloud struct {
	Points []math32.Vector3
	Colors [][3]uint8
}

// Len returns the number of points.
func (pc *PointCloud) Len() int { return len(pc.Points) }

// Validate returns an error if the points and colours are misaligned.
func (pc *PointCloud) Validate() error {
	if len(pc.Points) != len(pc.Colors) {
		return fmt.Errorf("pointcloud: %d points but %d colors", len(pc.Points), len(pc.Colors))
	}
	return nil
}

// Color returns the colour of point i as floats in [0,1].
func (pc *PointCloud) Color(i int) math32.Vector3 {
	c := pc.Colors[i]
	return math32.Vec3(float32(c[0])/255, float32(c[1])/255, float32(c[2])/255)
}

// Bounds returns the axis-aligned bounding box of the points.
func (pc *PointCloud) Bounds() (lo, hi math32.Vector3) {
	for i, p := range pc.Points {
		if i == 0 {
			lo, hi = p, p
			continue
		}
		lo = math32.Vec3(min(lo.X, p.X), min(lo.Y, p.Y), min(lo.Z, p.Z))
		hi = math32.Vec3(max(hi.X, p.X), max(hi.Y, p.Y), max(hi.Z, p.Z))
	}
	return
}

var props = []string{"x", "y", "z", "red", "green", "blue"}

// Open reads a point cloud from the PLY file with the given name.
func Open(filename string) (*PointCloud, error) {
	f, err := ply.Open(filename)
	if err != nil {
		return nil, err
	}
	return FromPLY(f)
}

// Read reads a point cloud in PLY format from the given reader.
func Read(r io.Reader) (*PointCloud, error) {
	f, err := ply.Read(r)
	if err != nil {
		return nil, err
	}
	return FromPLY(f)
}

// FromPLY returns the point cloud held in the vertex element of the
// given file, which must have x y z red green blue properties.
func FromPLY(f *ply.File) (*PointCloud, error) {
	el := f.Element("vertex")
	if el == nil {
		return nil, errors.New("pointcloud.FromPLY: no vertex element")
	}
	cols := make([][]float32, len(props))
	for i, p := range props {
		c, err := el.Data.ColumnTry(p)
		if err != nil {
			return nil, fmt.Errorf("pointcloud.FromPLY: %w", err)
		}
		cols[i] = c.Values
	}
	n := el.Count()
	pc := &PointCloud{Points: make([]math32.Vector3, n), Colors: make([][3]uint8, n)}
	for i := range n {
		pc.Points[i] = math32.Vec3(cols[0][i], cols[1][i], cols[2][i])
		for c := range 3 {
			pc.Colors[i][c] = uint8(math32.Clamp(cols[3+c][i], 0, 255))
		}
	}
	return pc, nil
}

// ToPLY returns a binary PLY file for the point cloud, with float
// positions, zero normals, and uchar colours.
func (pc *PointCloud) ToPLY() *ply.File {
	dt := table.NewTable("vertex")
	names := []string{"x", "y", "z", "nx", "ny", "nz", "red", "green", "blue"}
	for _, nm := range names {
		dt.AddFloat32Column(nm)
	}
	dt.SetNumRows(pc.Len())
	for i, p := range pc.Points {
		dt.Column("x").Values[i] = p.X
		dt.Column("y").Values[i] = p.Y
		dt.Column("z").Values[i] = p.Z
		dt.Column("red").Values[i] = float32(pc.Colors[i][0])
		dt.Column("green").Values[i] = float32(pc.Colors[i][1])
		dt.Column("blue").Values[i] = float32(pc.Colors[i][2])
	}
	el := ply.NewElement("vertex", dt, ply.Float)
	for i := 6; i < 9; i++ {
		el.Properties[i].Type = ply.UChar
	}
	return &ply.File{Elements: []*ply.Element{el}}
}

// Save writes the point cloud to the given PLY file name.
func (pc *PointCloud) Save(filename string) error {
	if err := pc.Validate(); err != nil {
		return err
	}
	return ply.Save(pc.ToPLY(), filename)
}
