// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tomlx

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testStruct struct {
	Name  string
	Steps int
	Rate  float64
}

func TestSaveOpen(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "test.toml")
	in := &testStruct{Name: "run", Steps: 30000, Rate: 0.0025}
	require.NoError(t, Save(in, fn))

	out := &testStruct{}
	require.NoError(t, Open(out, fn))
	assert.Equal(t, in, out)

	over := filepath.Join(t.TempDir(), "over.toml")
	require.NoError(t, Save(&struct{ Steps int }{7000}, over))
	require.NoError(t, OpenFiles(out, fn, over))
	assert.Equal(t, 7000, out.Steps)
	assert.Equal(t, "run", out.Name)
}

func TestReadUnknownField(t *testing.T) {
	out := &testStruct{}
	assert.Error(t, Read(out, strings.NewReader("Nope = 1\n")))
	assert.Error(t, Open(out, filepath.Join(t.TempDir(), "missing.toml")))
}
