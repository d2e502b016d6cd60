// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ply reads and writes binary little-endian PLY files,
// storing the scalar properties of each element as float32 columns
// of a [table.Table].
package ply

import (
	"fmt"
	"math"
	"strings"

	"cogentcore.org/gsplat/base/errors"
	"cogentcore.org/gsplat/tensor/table"
)

// ErrNotSupported is returned for valid PLY content that this package
// does not handle: ascii and big-endian bodies, and list properties.
var ErrNotSupported = errors.New("ply: not supported")

// Format is the encoding of the PLY body.
type Format int32

const (
	// BinaryLittleEndian is the only body format that can be read and written.
	BinaryLittleEndian Format = iota

	BinaryBigEndian

	ASCII
)

var formatNames = map[Format]string{
	BinaryLittleEndian: "binary_little_endian",
	BinaryBigEndian:    "binary_big_endian",
	ASCII:              "ascii",
}

func (f Format) String() string {
	return formatNames[f]
}

// SetString sets the format from its header name.
func (f *Format) SetString(s string) error {
	for k, v := range formatNames {
		if v == s {
			*f = k
			return nil
		}
	}
	return fmt.Errorf("ply: unknown format %q", s)
}

// Type is the scalar type of a property.
type Type int32

const (
	Char Type = iota
	UChar
	Short
	UShort
	Int
	UInt
	Float
	Double
)

// typeNames has the canonical name first, followed by aliases.
var typeNames = map[Type][]string{
	Char:   {"char", "int8"},
	UChar:  {"uchar", "uint8"},
	Short:  {"short", "int16"},
	UShort: {"ushort", "uint16"},
	Int:    {"int", "int32"},
	UInt:   {"uint", "uint32"},
	Float:  {"float", "float32"},
	Double: {"double", "float64"},
}

func (t Type) String() string {
	return typeNames[t][0]
}

// SetString sets the type from its header name or alias.
func (t *Type) SetString(s string) error {
	for k, names := range typeNames {
		for _, n := range names {
			if n == s {
				*t = k
				return nil
			}
		}
	}
	return fmt.Errorf("ply: unknown property type %q", s)
}

// Size returns the number of bytes of one value of this type.
func (t Type) Size() int {
	switch t {
	case Char, UChar:
		return 1
	case Short, UShort:
		return 2
	case Int, UInt, Float:
		return 4
	default:
		return 8
	}
}

// Property is a named scalar property of an element.
type Property struct {
	Name string
	Type Type
}

// Element is a named element with its properties and data.
// Data has one scalar float32 column per property, in order.
type Element struct {
	Name       string
	Properties []Property
	Data       *table.Table

	// HeaderCount is the number of rows declared in the header of a
	// file that was read. Data grows to it as the body is read.
	HeaderCount int
}

// MaxCount is the largest element count accepted in a header.
const MaxCount = math.MaxInt32

// NewElement returns a new element over the columns of the given table,
// all of which are written with the given type.
// Columns with more than one cell are not supported.
func NewElement(name string, dt *table.Table, typ Type) *Element {
	el := &Element{Name: name, Data: dt}
	for i := range dt.NumColumns() {
		el.Properties = append(el.Properties, Property{Name: dt.ColumnName(i), Type: typ})
	}
	return el
}

// Count returns the number of rows of the element.
func (el *Element) Count() int {
	if el.Data == nil {
		return 0
	}
	return el.Data.NumRows()
}

// RowSize returns the number of bytes per row in a binary body.
func (el *Element) RowSize() int {
	n := 0
	for _, p := range el.Properties {
		n += p.Type.Size()
	}
	return n
}

// Property returns the index of the property with the given name, or -1.
func (el *Element) Property(name string) int {
	for i, p := range el.Properties {
		if p.Name == name {
			return i
		}
	}
	return -1
}

// File is a PLY file.
type File struct {
	Format   Format
	Comments []string
	Elements []*Element
}

// Element returns the element with the given name, or nil.
func (f *File) Element(name string) *Element {
	for _, el := range f.Elements {
		if el.Name == name {
			return el
		}
	}
	return nil
}

// Header returns the text header for the file, ending with end_header.
func (f *File) Header() string {
	var b strings.Builder
	b.WriteString("ply\n")
	fmt.Fprintf(&b, "format %s 1.0\n", f.Format)
	for _, c := range f.Comments {
		fmt.Fprintf(&b, "comment %s\n", c)
	}
	for _, el := range f.Elements {
		fmt.Fprintf(&b, "element %s %d\n", el.Name, el.Count())
		for _, p := range el.Properties {
			fmt.Fprintf(&b, "property %s %s\n", p.Type, p.Name)
		}
	}
	b.WriteString("end_header\n")
	return b.String()
}
