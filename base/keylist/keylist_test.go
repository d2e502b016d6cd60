// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package keylist

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestList(t *testing.T) {
	var kl List[string, int]
	assert.Equal(t, 0, kl.Len())
	kl.Add("key0", 0)
	kl.Add("key1", 1)
	kl.Add("key2", 2)

	assert.Equal(t, 1, kl.At("key1"))
	assert.Equal(t, 0, kl.At("nope"))
	assert.Error(t, kl.Add("key0", 5))
	assert.Equal(t, 3, kl.Len())
	assert.Equal(t, []string{"key0", "key1", "key2"}, kl.Keys)

	v, ok := kl.AtTry("key2")
	assert.True(t, ok)
	assert.Equal(t, 2, v)
	_, ok = kl.AtTry("missing")
	assert.False(t, ok)
}
