// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package checkpoint

import (
	"path/filepath"
	"testing"

	"cogentcore.org/gsplat/config"
	"cogentcore.org/gsplat/gaussian"
	"cogentcore.org/gsplat/math32"
	"cogentcore.org/gsplat/pointcloud"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
	bolt "go.etcd.io/bbolt"
)

func testState(t *testing.T) *gaussian.State {
	pc := &pointcloud.PointCloud{
		Points: []math32.Vector3{{0, 0, 0}, {1, 0, 0}, {0, 2, 0}},
		Colors: [][3]uint8{{255, 0, 0}, {0, 255, 0}, {0, 0, 255}},
	}
	gs := gaussian.NewSet(1)
	require.NoError(t, gs.CreateFromPCD(pc, 2))
	op := &config.Optimization{}
	op.Defaults()
	gs.TrainingSetup(op)
	return gs.Capture()
}

func TestSaveLoad(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "model", FileName))
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Latest()
	assert.ErrorIs(t, err, ErrNotFound)

	st := testState(t)
	require.NoError(t, s.Save(7000, st))
	require.NoError(t, s.Save(300, st))
	require.NoError(t, s.Save(30000, st))
	assert.Error(t, s.Save(-1, st))

	its, err := s.Iterations()
	require.NoError(t, err)
	assert.Equal(t, []int{300, 7000, 30000}, its)

	c, err := s.Latest()
	require.NoError(t, err)
	assert.Equal(t, 30000, c.Iteration)
	assert.Equal(t, Version, c.Version)

	c, err = s.Load(7000)
	require.NoError(t, err)
	assert.Equal(t, st, c.State)

	op := &config.Optimization{}
	op.Defaults()
	gs, err := gaussian.Restore(c.State, op)
	require.NoError(t, err)
	assert.Equal(t, 3, gs.NumPoints())
	assert.Equal(t, float32(2), gs.SpatialLRScale)

	_, err = s.Load(42)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Delete(300))
	its, err = s.Iterations()
	require.NoError(t, err)
	assert.Equal(t, []int{7000, 30000}, its)
}

func TestReopen(t *testing.T) {
	fn := filepath.Join(t.TempDir(), FileName)
	s, err := Open(fn)
	require.NoError(t, err)
	require.NoError(t, s.Save(5, testState(t)))
	assert.Equal(t, fn, s.Path())
	require.NoError(t, s.Close())

	s, err = Open(fn)
	require.NoError(t, err)
	defer s.Close()
	c, err := s.Latest()
	require.NoError(t, err)
	assert.Equal(t, 5, c.Iteration)
}

func TestIncompatibleVersion(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), FileName))
	require.NoError(t, err)
	defer s.Close()
	data, err := msgpack.Marshal(&Container{Version: "2.1.0", Iteration: 9, State: testState(t)})
	require.NoError(t, err)
	require.NoError(t, s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Put(iterationKey(9), data)
	}))
	_, err = s.Load(9)
	assert.ErrorContains(t, err, "not compatible")
}

func TestCheckVersion(t *testing.T) {
	assert.NoError(t, CheckVersion("1.0.0"))
	assert.NoError(t, CheckVersion("1.4.2"))
	assert.Error(t, CheckVersion("0.9.0"))
	assert.Error(t, CheckVersion("2.0.0"))
	assert.Error(t, CheckVersion("latest"))
}
