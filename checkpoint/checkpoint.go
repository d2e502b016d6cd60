// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package checkpoint stores captured training states of a Gaussian set,
// keyed by iteration, in a bolt database file.
package checkpoint

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"cogentcore.org/gsplat/base/errors"
	"cogentcore.org/gsplat/gaussian"
	"github.com/Masterminds/semver/v3"
	"github.com/vmihailenco/msgpack/v5"
	bolt "go.etcd.io/bbolt"
)

// Version is the serialization version of checkpoints written by this
// package. Checkpoints with a different major version can not be loaded.
const Version = "1.0.0"

// FileName is the default database file name within a model directory.
const FileName = "chkpnt.db"

var bucketName = []byte("checkpoints")

// ErrNotFound is returned when there is no checkpoint for an iteration.
var ErrNotFound = errors.New("checkpoint: not found")

// Container wraps a captured state with the metadata needed
// to load it safely.
type Container struct {
	Version   string          `msgpack:"version"`
	Iteration int             `msgpack:"iteration"`
	Saved     time.Time       `msgpack:"saved"`
	State     *gaussian.State `msgpack:"state"`
}

// Store is a checkpoint database.
type Store struct {
	db *bolt.DB
}

// Open opens or creates the checkpoint database at the given path,
// creating its directory if needed.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("checkpoint.Open: %w", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("checkpoint.Open %q: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("checkpoint.Open: create bucket: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file name.
func (s *Store) Path() string {
	return s.db.Path()
}

func iterationKey(iter int) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, uint64(iter))
	return k
}

// Save stores the given state for the given iteration, replacing
// any existing checkpoint for it.
func (s *Store) Save(iter int, st *gaussian.State) error {
	if iter < 0 {
		return fmt.Errorf("checkpoint.Save: negative iteration %d", iter)
	}
	data, err := msgpack.Marshal(&Container{Version: Version, Iteration: iter, Saved: time.Now(), State: st})
	if err != nil {
		return fmt.Errorf("checkpoint.Save: marshal: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Put(iterationKey(iter), data)
	})
}

// Load returns the checkpoint stored for the given iteration.
func (s *Store) Load(iter int) (*Container, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketName).Get(iterationKey(iter))
		if v == nil {
			return fmt.Errorf("checkpoint.Load: iteration %d: %w", iter, ErrNotFound)
		}
		data = make([]byte, len(v))
		copy(data, v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return decode(data)
}

// Latest returns the checkpoint with the highest iteration.
func (s *Store) Latest() (*Container, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		_, v := tx.Bucket(bucketName).Cursor().Last()
		if v == nil {
			return fmt.Errorf("checkpoint.Latest: %w", ErrNotFound)
		}
		data = make([]byte, len(v))
		copy(data, v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return decode(data)
}

// Iterations returns the stored iterations in increasing order.
func (s *Store) Iterations() ([]int, error) {
	var its []int
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).ForEach(func(k, _ []byte) error {
			its = append(its, int(binary.BigEndian.Uint64(k)))
			return nil
		})
	})
	return its, err
}

// Delete removes the checkpoint for the given iteration, if any.
func (s *Store) Delete(iter int) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Delete(iterationKey(iter))
	})
}

func decode(data []byte) (*Container, error) {
	var c Container
	if err := msgpack.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("checkpoint: unmarshal: %w", err)
	}
	if err := CheckVersion(c.Version); err != nil {
		return nil, err
	}
	if c.State == nil {
		return nil, fmt.Errorf("checkpoint: iteration %d has no state", c.Iteration)
	}
	return &c, nil
}

// CheckVersion returns an error unless the given checkpoint version
// has the same major version as [Version].
func CheckVersion(version string) error {
	v, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("checkpoint: invalid version %q: %w", version, err)
	}
	if cur := semver.MustParse(Version); v.Major() != cur.Major() {
		return fmt.Errorf("checkpoint: version %s is not compatible with %s", version, Version)
	}
	return nil
}
