// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gaussian

import (
	"bytes"
	"path/filepath"
	"testing"

	"cogentcore.org/gsplat/base/randx"
	"cogentcore.org/gsplat/ply"
	"cogentcore.org/gsplat/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// randomSet returns a trainable set of degree 2 with random parameters.
func randomSet(t *testing.T, n int) *Set {
	gs := NewSet(2)
	gs.SpatialLRScale = 1
	gs.Params.SetNumRows(n)
	gs.Stats.SetNumRows(n)
	rnd := randx.NewSysRand(3)
	for _, cl := range gs.Params.Columns.Values {
		for i := range cl.Values {
			cl.Values[i] = float32(rnd.NormFloat64())
		}
	}
	gs.TrainingSetup(defaultOpt())
	return gs
}

func TestPLYAttributes(t *testing.T) {
	names := PLYAttributes(0)
	assert.Equal(t, []string{"x", "y", "z", "nx", "ny", "nz", "f_dc_0", "f_dc_1", "f_dc_2",
		"opacity", "scale_0", "scale_1", "scale_2", "rot_0", "rot_1", "rot_2", "rot_3"}, names)
	assert.Len(t, PLYAttributes(15), 17+45)
}

func TestPLYRoundTrip(t *testing.T) {
	gs := randomSet(t, 5)
	gs.ActiveSHDegree = 1
	var b bytes.Buffer
	require.NoError(t, gs.SavePLY(&b))
	got, err := LoadPLY(bytes.NewReader(b.Bytes()), 2)
	require.NoError(t, err)
	assert.Equal(t, 2, got.ActiveSHDegree)
	assert.Equal(t, 5, got.NumPoints())
	for _, name := range ParamNames {
		assert.Equal(t, gs.Params.Column(name).Values, got.Params.Column(name).Values, name)
	}
	assert.Nil(t, got.Optimizer)

	got, err = LoadPLY(bytes.NewReader(b.Bytes()), -1)
	require.NoError(t, err)
	assert.Equal(t, 2, got.MaxSHDegree)
	_, err = LoadPLY(bytes.NewReader(b.Bytes()), 3)
	assert.Error(t, err)

	fn := filepath.Join(t.TempDir(), "point_cloud", "iteration_7000", "point_cloud.ply")
	require.NoError(t, gs.SavePLYFile(fn))
	got, err = OpenPLY(fn, 2)
	require.NoError(t, err)
	assert.Equal(t, gs.XYZ().Values, got.XYZ().Values)
}

func TestPLYChannelMajor(t *testing.T) {
	gs := NewSet(1)
	gs.Params.SetNumRows(1)
	gs.Stats.SetNumRows(1)
	rest := gs.Params.Column(FeaturesRestCol)
	// rest[0,k,c] = 10*c + k
	for k := range 3 {
		for c := range 3 {
			rest.Set(float32(10*c+k), 0, k, c)
		}
	}
	f := gs.ToPLY()
	dt := f.Element("vertex").Data
	for i, want := range []float32{0, 1, 2, 10, 11, 12, 20, 21, 22} {
		assert.Equal(t, want, dt.Column("f_rest_"+string(rune('0'+i))).Values[0])
	}
}

func TestExport(t *testing.T) {
	gs := randomSet(t, 2)
	var b bytes.Buffer
	require.NoError(t, gs.Export(&b, "ply"))
	assert.True(t, bytes.HasPrefix(b.Bytes(), []byte("ply\nformat binary_little_endian 1.0\n")))
	err := gs.Export(&b, "splat")
	assert.ErrorIs(t, err, ErrNotSupported)
	assert.ErrorIs(t, err, ply.ErrNotSupported)
}

func TestFromPLYErrors(t *testing.T) {
	_, err := FromPLY(&ply.File{}, -1)
	assert.Error(t, err)

	f := randomSet(t, 1).ToPLY()
	el := f.Elements[0]
	el.Properties = el.Properties[:len(el.Properties)-1]
	var b bytes.Buffer
	require.NoError(t, ply.Write(f, &b))
	_, err = LoadPLY(&b, 2)
	assert.Error(t, err)

	_, err = LoadPLY(bytes.NewReader([]byte("ply\nformat ascii 1.0\nend_header\n")), 0)
	assert.ErrorIs(t, err, ErrNotSupported)
}

func TestCaptureRestore(t *testing.T) {
	gs := randomSet(t, 4)
	gs.ActiveSHDegree = 1
	grad := tensor.NewNumberFromValues([]float32{0.1, 0.2, 0, 0.3, 0, 0.5, 0, 0}, 4, 2)
	gs.AddDensificationStats(grad, []bool{true, true, false, true})
	grads := map[string]*tensor.Float32{}
	for _, name := range ParamNames {
		g := gs.Params.Column(name).ZerosLike()
		g.Fill(0.5)
		grads[name] = g
	}
	require.NoError(t, gs.Step(grads))
	gs.Prune([]bool{false, true, false, false})
	copy(gs.Stats.Column(GradAccumCol).Values, []float32{1, 2, 3})

	st := gs.Capture()
	got, err := Restore(st, defaultOpt())
	require.NoError(t, err)
	assert.Equal(t, 1, got.ActiveSHDegree)
	assertRows(t, got, 3)
	for _, name := range ParamNames {
		assert.Equal(t, gs.Params.Column(name).Values, got.Params.Column(name).Values, name)
		g, h := gs.Optimizer.Group(name), got.Optimizer.Group(name)
		assert.Equal(t, g.ExpAvg.Values, h.ExpAvg.Values, name)
		assert.Equal(t, g.ExpAvgSq.Values, h.ExpAvgSq.Values, name)
		assert.Equal(t, g.Step, h.Step, name)
	}
	assert.Equal(t, []float32{1, 2, 3}, got.Stats.Column(GradAccumCol).Values)

	st.Params[0].Name = "position"
	_, err = Restore(st, defaultOpt())
	assert.Error(t, err)
	st = gs.Capture()
	st.Stats[0].Shape[0] = 7
	_, err = Restore(st, defaultOpt())
	assert.Error(t, err)
	st = gs.Capture()
	st.MaxSHDegree = 9
	_, err = Restore(st, defaultOpt())
	assert.Error(t, err)
}
