// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package yamlx

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testStruct struct {
	Name   string  `yaml:"name"`
	Degree int     `yaml:"degree"`
	Dense  float64 `yaml:"dense"`
}

func TestSaveOpen(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "cfg_args.yaml")
	in := &testStruct{Name: "garden", Degree: 3, Dense: 0.01}
	require.NoError(t, Save(in, fn))

	out := &testStruct{}
	require.NoError(t, Open(out, fn))
	assert.Equal(t, in, out)

	var b bytes.Buffer
	require.NoError(t, Write(in, &b))
	assert.Contains(t, b.String(), "degree: 3")
}
