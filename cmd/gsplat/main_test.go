// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"cogentcore.org/gsplat/checkpoint"
	"cogentcore.org/gsplat/config"
	"cogentcore.org/gsplat/gaussian"
	"cogentcore.org/gsplat/math32"
	"cogentcore.org/gsplat/pointcloud"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &errOut
	err := app.Run(append([]string{"gsplat", "-q"}, args...))
	return out.String(), err
}

func writePoints(t *testing.T, dir string) string {
	pc := &pointcloud.PointCloud{
		Points: []math32.Vector3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1}},
		Colors: [][3]uint8{{255, 0, 0}, {0, 255, 0}, {0, 0, 255}, {128, 128, 128}},
	}
	fn := filepath.Join(dir, "points3d.ply")
	require.NoError(t, pc.Save(fn))
	return fn
}

func TestInitInfoPrune(t *testing.T) {
	dir := t.TempDir()
	pts := writePoints(t, dir)
	cfn := filepath.Join(dir, "cfg.toml")
	require.NoError(t, os.WriteFile(cfn, []byte("[model]\nsh_degree = 1\n"), 0o644))
	out := filepath.Join(dir, "model", "gaussians.ply")
	_, err := run(t, "init", "--config", cfn, pts, out)
	require.NoError(t, err)

	gs, err := gaussian.OpenPLY(out, 1)
	require.NoError(t, err)
	assert.Equal(t, 4, gs.NumPoints())

	info, err := run(t, "info", out)
	require.NoError(t, err)
	assert.Contains(t, info, "points:     4\n")
	assert.Contains(t, info, "sh degree:  1\n")
	assert.Contains(t, info, "opacity:    0.5 .. 0.5\n")

	// every opacity is 0.5, so all are pruned
	pruned := filepath.Join(dir, "pruned.ply")
	_, err = run(t, "prune", "--min-opacity", "0.6", out, pruned)
	require.NoError(t, err)
	gs, err = gaussian.OpenPLY(pruned, -1)
	require.NoError(t, err)
	assert.Equal(t, 0, gs.NumPoints())

	_, err = run(t, "prune", out, pruned)
	require.NoError(t, err)
	gs, err = gaussian.OpenPLY(pruned, -1)
	require.NoError(t, err)
	assert.Equal(t, 4, gs.NumPoints())
}

func TestInitSHDegreeFlag(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "g.ply")
	_, err := run(t, "init", "--sh-degree", "0", "--extent", "2", writePoints(t, dir), out)
	require.NoError(t, err)
	gs, err := gaussian.OpenPLY(out, -1)
	require.NoError(t, err)
	assert.Equal(t, 0, gs.MaxSHDegree)
}

func TestArgs(t *testing.T) {
	_, err := run(t, "info")
	assert.ErrorContains(t, err, "want 1 arguments")
	_, err = run(t, "info", filepath.Join(t.TempDir(), "missing.ply"))
	assert.Error(t, err)
}

func TestExportCheckpoints(t *testing.T) {
	dir := t.TempDir()
	pc, err := pointcloud.Open(writePoints(t, dir))
	require.NoError(t, err)
	gs := gaussian.NewSet(2)
	require.NoError(t, gs.CreateFromPCD(pc, 1))
	op := &config.Optimization{}
	op.Defaults()
	gs.TrainingSetup(op)

	db := filepath.Join(dir, checkpoint.FileName)
	st, err := checkpoint.Open(db)
	require.NoError(t, err)
	require.NoError(t, st.Save(100, gs.Capture()))
	gs.Prune([]bool{true, false, false, false})
	require.NoError(t, st.Save(200, gs.Capture()))
	require.NoError(t, st.Close())

	list, err := run(t, "checkpoints", db)
	require.NoError(t, err)
	assert.Equal(t, "100\n200\n", list)

	out := filepath.Join(dir, "latest.ply")
	_, err = run(t, "export", db, out)
	require.NoError(t, err)
	got, err := gaussian.OpenPLY(out, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, got.NumPoints())

	_, err = run(t, "export", "--iteration", "100", db, out)
	require.NoError(t, err)
	got, err = gaussian.OpenPLY(out, 2)
	require.NoError(t, err)
	assert.Equal(t, 4, got.NumPoints())

	_, err = run(t, "export", "--iteration", "5", db, out)
	assert.ErrorIs(t, err, checkpoint.ErrNotFound)

	// the config snapshot next to the checkpoint file is used when present
	cfg := config.New()
	cfg.Model.ModelPath = dir
	require.NoError(t, cfg.SaveSnapshot())
	_, err = run(t, "export", db, out)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, config.SnapshotFile), []byte("nope: 1\n"), 0o644))
	_, err = run(t, "export", db, out)
	assert.Error(t, err)
}

func TestPointExtent(t *testing.T) {
	pc := &pointcloud.PointCloud{
		Points: []math32.Vector3{{0, 0, 0}, {2, 0, 0}},
		Colors: [][3]uint8{{}, {}},
	}
	assert.InDelta(t, 1.1, pointExtent(pc), 1e-6)
	assert.Equal(t, float32(1), pointExtent(&pointcloud.PointCloud{}))
}

func TestConfigCommand(t *testing.T) {
	dir := t.TempDir()
	over := filepath.Join(dir, "over.toml")
	require.NoError(t, os.WriteFile(over, []byte("[optimization]\niterations = 7000\n"), 0o644))

	out, err := run(t, "config", "-c", over)
	require.NoError(t, err)
	assert.Contains(t, out, "[optimization]")
	assert.Contains(t, out, "iterations = 7000")

	out, err = run(t, "config", "--yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "sh_degree: 3")

	_, err = run(t, "config", "-c", over, "--out", filepath.Join(dir, config.SnapshotFile))
	require.NoError(t, err)
	cfg, err := config.OpenSnapshot(dir)
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Optimization.Iterations)

	bad := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("nope = 1\n"), 0o644))
	_, err = run(t, "config", "-c", bad)
	assert.Error(t, err)
}
