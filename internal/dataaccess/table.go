// TerraMA2 - Environmental Monitoring, Analysis, and Alert Platform
// Copyright 2026 TerraMA2 Team
// SPDX-License-Identifier: LGPL-3.0-or-later
// https://github.com/terrama2/terrama2

// Package dataaccess defines the data model and access contracts the
// analysis core consumes: attribute tables, dataset series, temporal and
// spatial filters, the DataAccessor interface, and the concrete accessors
// (in-memory and DuckDB-backed) registered at startup.
package dataaccess

import (
	"fmt"
	"strconv"
	"time"

	"github.com/terrama2/terrama2/internal/geom"
)

// AttributeType identifies the storage type of a table column.
type AttributeType int

const (
	AttrUnknown AttributeType = iota
	AttrInt16
	AttrInt32
	AttrInt64
	AttrFloat64
	AttrNumeric // decimal delivered as string
	AttrString
	AttrBool
	AttrTimestamp
	AttrGeometry
)

// Attribute describes one column of an attribute table.
type Attribute struct {
	Name string
	Type AttributeType
}

// Table is an in-memory attribute table: a typed schema plus rows of
// values. A nil cell is a null. Tables are built once by an accessor and
// read concurrently by operators; they are immutable after construction.
type Table struct {
	attrs []Attribute
	index map[string]int
	rows  [][]any
}

// NewTable creates an empty table with the given schema.
func NewTable(attrs []Attribute) *Table {
	index := make(map[string]int, len(attrs))
	for i, a := range attrs {
		index[a.Name] = i
	}
	return &Table{attrs: attrs, index: index}
}

// AppendRow adds a row. The value count must match the schema.
func (t *Table) AppendRow(values ...any) error {
	if len(values) != len(t.attrs) {
		return fmt.Errorf("row has %d values, schema has %d attributes", len(values), len(t.attrs))
	}
	t.rows = append(t.rows, values)
	return nil
}

// NumRows returns the number of rows.
func (t *Table) NumRows() int { return len(t.rows) }

// Attributes returns the schema.
func (t *Table) Attributes() []Attribute { return t.attrs }

// AttributeIndex returns the column position of the named attribute.
func (t *Table) AttributeIndex(name string) (int, bool) {
	i, ok := t.index[name]
	return i, ok
}

// AttributeType returns the type of the named attribute.
func (t *Table) AttributeType(name string) (AttributeType, bool) {
	i, ok := t.index[name]
	if !ok {
		return AttrUnknown, false
	}
	return t.attrs[i].Type, true
}

// GeometryPos returns the position of the first geometry column, or -1.
func (t *Table) GeometryPos() int {
	for i, a := range t.attrs {
		if a.Type == AttrGeometry {
			return i
		}
	}
	return -1
}

// IsNull reports whether the cell is null. Unknown attributes and
// out-of-range rows read as null.
func (t *Table) IsNull(row int, name string) bool {
	i, ok := t.index[name]
	if !ok || row < 0 || row >= len(t.rows) {
		return true
	}
	return t.rows[row][i] == nil
}

// Value returns the raw cell value, nil for null or unknown cells.
func (t *Table) Value(row int, name string) any {
	i, ok := t.index[name]
	if !ok || row < 0 || row >= len(t.rows) {
		return nil
	}
	return t.rows[row][i]
}

// Float64 coerces the cell to float64. Integer, float and numeric-string
// columns coerce; everything else reports ok == false and the row is
// skipped by the caller. Null cells also report false.
func (t *Table) Float64(row int, name string) (float64, bool) {
	v := t.Value(row, name)
	if v == nil {
		return 0, false
	}
	switch x := v.(type) {
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case int:
		return float64(x), true
	case float32:
		return float64(x), true
	case float64:
		return x, true
	case string:
		f, err := strconv.ParseFloat(x, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// String returns the cell as a string; null reads as the empty string.
func (t *Table) String(row int, name string) string {
	v := t.Value(row, name)
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Time returns the cell as a timestamp.
func (t *Table) Time(row int, name string) (time.Time, bool) {
	v := t.Value(row, name)
	if v == nil {
		return time.Time{}, false
	}
	ts, ok := v.(time.Time)
	return ts, ok
}

// GeometryAt returns the geometry stored at the given row and column.
func (t *Table) GeometryAt(row, col int) (geom.Geometry, bool) {
	if col < 0 || col >= len(t.attrs) || row < 0 || row >= len(t.rows) {
		return nil, false
	}
	g, ok := t.rows[row][col].(geom.Geometry)
	return g, ok
}
