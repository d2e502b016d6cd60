// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package reflectx

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNonPointer(t *testing.T) {
	v := 3
	p := &v
	pp := &p
	assert.Equal(t, reflect.TypeOf(v), NonPointerType(reflect.TypeOf(pp)))
	assert.Nil(t, NonPointerType(nil))
	assert.Equal(t, 3, NonPointerValue(reflect.ValueOf(pp)).Interface())
}

func TestPointerValue(t *testing.T) {
	v := 3
	assert.Equal(t, &v, PointerValue(reflect.ValueOf(&v)).Interface())

	o := outer{}
	fv := reflect.ValueOf(&o).Elem().Field(0)
	pv := PointerValue(fv)
	pv.Elem().SetString("set")
	assert.Equal(t, "set", o.Name)

	// not addressable, so a new pointer is made
	pv = PointerValue(reflect.ValueOf(5))
	assert.Equal(t, reflect.Pointer, pv.Kind())
	assert.Equal(t, 5, pv.Elem().Interface())
}

func TestAnyIsNil(t *testing.T) {
	var p *outer
	var m map[string]int
	assert.True(t, AnyIsNil(nil))
	assert.True(t, AnyIsNil(p))
	assert.True(t, AnyIsNil(m))
	assert.False(t, AnyIsNil(&outer{}))
	assert.False(t, AnyIsNil(0))
}
