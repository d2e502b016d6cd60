// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package reflectx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type inner struct {
	Rate float32 `default:"0.0025"`
}

type outer struct {
	Name    string        `default:"splat"`
	Steps   int           `default:"30000"`
	Enabled bool          `default:"true"`
	Every   time.Duration `default:"2s"`
	Inner   inner
	Ptr     *inner
	Set     *inner
	NoTag   int
}

func TestSetFromDefaultTags(t *testing.T) {
	o := &outer{NoTag: 5, Set: &inner{}}
	assert.NoError(t, SetFromDefaultTags(o))
	assert.Equal(t, "splat", o.Name)
	assert.Equal(t, 30000, o.Steps)
	assert.True(t, o.Enabled)
	assert.Equal(t, 2*time.Second, o.Every)
	assert.Equal(t, float32(0.0025), o.Inner.Rate)
	assert.Equal(t, 5, o.NoTag)
	assert.Nil(t, o.Ptr)
	assert.Equal(t, float32(0.0025), o.Set.Rate)

	assert.Error(t, SetFromDefaultTags(outer{}))
	assert.NoError(t, SetFromDefaultTags((*outer)(nil)))

	type bad struct {
		N int `default:"x"`
	}
	assert.Error(t, SetFromDefaultTags(&bad{}))
}
