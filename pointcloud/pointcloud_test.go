// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pointcloud

import (
	"bytes"
	"path/filepath"
	"testing"

	"cogentcore.org/gsplat/math32"
	"cogentcore.org/gsplat/ply"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCloud() *PointCloud {
	return &PointCloud{
		Points: []math32.Vector3{{0, 0, 0}, {1, 2, 3}, {-1, 0.5, 2}},
		Colors: [][3]uint8{{255, 0, 0}, {0, 128, 0}, {10, 20, 30}},
	}
}

func TestPLYRoundTrip(t *testing.T) {
	pc := testCloud()
	fn := filepath.Join(t.TempDir(), "points3D.ply")
	require.NoError(t, pc.Save(fn))
	got, err := Open(fn)
	require.NoError(t, err)
	assert.Equal(t, pc, got)

	var b bytes.Buffer
	require.NoError(t, ply.Write(pc.ToPLY(), &b))
	got, err = Read(&b)
	require.NoError(t, err)
	assert.Equal(t, pc.Points, got.Points)
}

func TestAccessors(t *testing.T) {
	pc := testCloud()
	assert.Equal(t, 3, pc.Len())
	assert.NoError(t, pc.Validate())
	assert.Equal(t, math32.Vec3(1, 0, 0), pc.Color(0))
	lo, hi := pc.Bounds()
	assert.Equal(t, math32.Vec3(-1, 0, 0), lo)
	assert.Equal(t, math32.Vec3(1, 2, 3), hi)

	pc.Colors = pc.Colors[:2]
	assert.Error(t, pc.Validate())
	assert.Error(t, pc.Save(filepath.Join(t.TempDir(), "bad.ply")))
}

func TestMissingProperties(t *testing.T) {
	f := testCloud().ToPLY()
	f.Elements[0].Name = "face"
	_, err := FromPLY(f)
	assert.Error(t, err)

	f = testCloud().ToPLY()
	f.Elements[0].Properties = f.Elements[0].Properties[:3]
	var b bytes.Buffer
	require.NoError(t, ply.Write(f, &b))
	_, err = Read(&b)
	assert.Error(t, err)
}
