// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ply

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"cogentcore.org/gsplat/base/errors"
	"cogentcore.org/gsplat/tensor/table"
)

// Open reads the PLY file with the given name.
func Open(filename string) (*File, error) {
	fp, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer fp.Close()
	return Read(bufio.NewReader(fp))
}

// Read reads a PLY file from the given reader.
// The header is always parsed, so that ascii and big-endian files are
// reported with [ErrNotSupported] rather than a syntax error.
func Read(r io.Reader) (*File, error) {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	f, err := ReadHeader(br)
	if err != nil {
		return nil, err
	}
	if f.Format != BinaryLittleEndian {
		return nil, fmt.Errorf("ply.Read: %s body: %w", f.Format, ErrNotSupported)
	}
	for _, el := range f.Elements {
		if err := readElement(br, el); err != nil {
			return nil, fmt.Errorf("ply.Read: element %q: %w", el.Name, err)
		}
	}
	return f, nil
}

// ReadHeader reads the text header, up to and including end_header.
// Each element has an empty Data table with a column per property,
// and its declared row count in HeaderCount.
func ReadHeader(br *bufio.Reader) (*File, error) {
	line, err := br.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("ply.ReadHeader: %w", err)
	}
	if strings.TrimSpace(line) != "ply" {
		return nil, errors.New("ply.ReadHeader: missing ply magic")
	}
	f := &File{}
	var cur *Element
	gotFormat := false
	for {
		line, err := br.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("ply.ReadHeader: %w", err)
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "format":
			if len(fields) < 2 {
				return nil, errors.New("ply.ReadHeader: malformed format line")
			}
			if err := f.Format.SetString(fields[1]); err != nil {
				return nil, err
			}
			gotFormat = true
		case "comment", "obj_info":
			f.Comments = append(f.Comments, strings.TrimSpace(strings.TrimPrefix(line, fields[0])))
		case "element":
			if len(fields) != 3 {
				return nil, fmt.Errorf("ply.ReadHeader: malformed element line %q", strings.TrimSpace(line))
			}
			n, err := strconv.Atoi(fields[2])
			if err != nil || n < 0 || n > MaxCount {
				return nil, fmt.Errorf("ply.ReadHeader: bad element count %q", fields[2])
			}
			cur = &Element{Name: fields[1], HeaderCount: n}
			f.Elements = append(f.Elements, cur)
		case "property":
			if cur == nil {
				return nil, errors.New("ply.ReadHeader: property before element")
			}
			if len(fields) >= 2 && fields[1] == "list" {
				return nil, fmt.Errorf("ply.ReadHeader: list property in element %q: %w", cur.Name, ErrNotSupported)
			}
			if len(fields) != 3 {
				return nil, fmt.Errorf("ply.ReadHeader: malformed property line %q", strings.TrimSpace(line))
			}
			var p Property
			if err := p.Type.SetString(fields[1]); err != nil {
				return nil, err
			}
			p.Name = fields[2]
			if cur.Property(p.Name) >= 0 {
				return nil, fmt.Errorf("ply.ReadHeader: duplicate property %q in element %q", p.Name, cur.Name)
			}
			cur.Properties = append(cur.Properties, p)
		case "end_header":
			if !gotFormat {
				return nil, errors.New("ply.ReadHeader: missing format line")
			}
			for _, el := range f.Elements {
				if el.HeaderCount > 0 && len(el.Properties) == 0 {
					return nil, fmt.Errorf("ply.ReadHeader: element %q has rows but no properties", el.Name)
				}
				el.Data = table.NewTable(el.Name)
				for _, p := range el.Properties {
					el.Data.AddFloat32Column(p.Name)
				}
			}
			return f, nil
		default:
			return nil, fmt.Errorf("ply.ReadHeader: unknown header keyword %q", fields[0])
		}
	}
}

// readChunk is the number of rows by which element data grows while
// reading, so that a truncated body fails before a large allocation.
const readChunk = 1 << 16

func readElement(br *bufio.Reader, el *Element) error {
	buf := make([]byte, el.RowSize())
	cols := make([][]float32, len(el.Properties))
	for start := 0; start < el.HeaderCount; start += readChunk {
		end := min(start+readChunk, el.HeaderCount)
		el.Data.SetNumRows(end)
		for i, p := range el.Properties {
			cols[i] = el.Data.Column(p.Name).Values
		}
		for r := start; r < end; r++ {
			if _, err := io.ReadFull(br, buf); err != nil {
				return fmt.Errorf("row %d of %d: %w", r, el.HeaderCount, err)
			}
			off := 0
			for i, p := range el.Properties {
				cols[i][r] = decode(buf[off:], p.Type)
				off += p.Type.Size()
			}
		}
	}
	return nil
}

func decode(b []byte, t Type) float32 {
	le := binary.LittleEndian
	switch t {
	case Char:
		return float32(int8(b[0]))
	case UChar:
		return float32(b[0])
	case Short:
		return float32(int16(le.Uint16(b)))
	case UShort:
		return float32(le.Uint16(b))
	case Int:
		return float32(int32(le.Uint32(b)))
	case UInt:
		return float32(le.Uint32(b))
	case Float:
		return math.Float32frombits(le.Uint32(b))
	default:
		return float32(math.Float64frombits(le.Uint64(b)))
	}
}

func encode(b []byte, t Type, v float32) {
	le := binary.LittleEndian
	switch t {
	case Char:
		b[0] = byte(int8(clampInt(v, math.MinInt8, math.MaxInt8)))
	case UChar:
		b[0] = uint8(clampInt(v, 0, math.MaxUint8))
	case Short:
		le.PutUint16(b, uint16(int16(clampInt(v, math.MinInt16, math.MaxInt16))))
	case UShort:
		le.PutUint16(b, uint16(clampInt(v, 0, math.MaxUint16)))
	case Int:
		le.PutUint32(b, uint32(int32(clampInt(v, math.MinInt32, math.MaxInt32))))
	case UInt:
		le.PutUint32(b, uint32(clampInt(v, 0, math.MaxUint32)))
	case Float:
		le.PutUint32(b, math.Float32bits(v))
	default:
		le.PutUint64(b, math.Float64bits(float64(v)))
	}
}

// clampInt rounds v to the nearest integer within [lo, hi].
func clampInt(v float32, lo, hi float64) int64 {
	return int64(max(lo, min(hi, math.Round(float64(v)))))
}

// Save writes the file to the given file name.
func Save(f *File, filename string) error {
	fp, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer fp.Close()
	bw := bufio.NewWriter(fp)
	if err := Write(f, bw); err != nil {
		return err
	}
	return bw.Flush()
}

// Write writes the file to the given writer, which must be
// [BinaryLittleEndian]. Each element's Data must have a column
// named for each of its properties.
func Write(f *File, w io.Writer) error {
	if f.Format != BinaryLittleEndian {
		return fmt.Errorf("ply.Write: %s body: %w", f.Format, ErrNotSupported)
	}
	cols := make([][][]float32, len(f.Elements))
	for e, el := range f.Elements {
		for _, p := range el.Properties {
			c, err := el.Data.ColumnTry(p.Name)
			if err != nil {
				return fmt.Errorf("ply.Write: element %q: %w", el.Name, err)
			}
			cols[e] = append(cols[e], c.Values)
		}
	}
	if _, err := io.WriteString(w, f.Header()); err != nil {
		return err
	}
	for e, el := range f.Elements {
		buf := make([]byte, el.RowSize())
		for r := range el.Count() {
			off := 0
			for i, p := range el.Properties {
				encode(buf[off:], p.Type, cols[e][i][r])
				off += p.Type.Size()
			}
			if _, err := w.Write(buf); err != nil {
				return err
			}
		}
	}
	return nil
}
