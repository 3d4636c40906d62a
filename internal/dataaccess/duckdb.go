// TerraMA2 - Environmental Monitoring, Analysis, and Alert Platform
// Copyright 2026 TerraMA2 Team
// SPDX-License-Identifier: LGPL-3.0-or-later
// https://github.com/terrama2/terrama2

package dataaccess

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/duckdb/duckdb-go/v2" // database/sql driver
	"github.com/rs/zerolog"

	"github.com/terrama2/terrama2/internal/geom"
	"github.com/terrama2/terrama2/internal/logging"
)

// duckdbAccessor reads dataset tables out of an embedded DuckDB database.
// Each dataset's Format names its table ("table_name"), timestamp column
// ("timestamp_property") and, for point observations, longitude/latitude
// columns ("longitude_property", "latitude_property") plus an "srid".
type duckdbAccessor struct {
	db     *sql.DB
	series *DataSeries
	log    zerolog.Logger
}

// OpenDuckDB opens (or creates) the database at path and verifies the
// connection. An empty path opens an in-memory database.
func OpenDuckDB(path string) (*sql.DB, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("opening duckdb at %q: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging duckdb at %q: %w", path, err)
	}
	return db, nil
}

// RegisterDuckDBAccessor binds the DUCKDB provider kind to the shared
// database handle. Every accessor is wrapped in a circuit breaker so a
// failing database degrades runs quickly instead of stalling workers.
func RegisterDuckDBAccessor(reg *AccessorRegistry, db *sql.DB) {
	reg.Register("DUCKDB", func(_ *DataProvider, series *DataSeries) (Accessor, error) {
		acc := &duckdbAccessor{
			db:     db,
			series: series,
			log:    logging.With().Str("component", "duckdb-accessor").Uint64("series", series.ID).Logger(),
		}
		return WithBreaker(acc, DefaultBreakerConfig("duckdb")), nil
	})
}

// GetSeries queries each dataset's table under the filter's temporal
// window. The spatial region and last-values cap are applied in-process
// after the scan so the SQL stays provider-agnostic.
func (a *duckdbAccessor) GetSeries(ctx context.Context, filter Filter) (map[uint64]DataSetSeries, error) {
	if len(a.series.DataSets) == 0 {
		return nil, ErrEmptyDataSeries
	}

	out := make(map[uint64]DataSetSeries, len(a.series.DataSets))
	matched := false
	for _, ds := range a.series.DataSets {
		if !ds.Active {
			continue
		}
		table, err := a.queryDataSet(ctx, ds, filter)
		if err != nil {
			return nil, err
		}
		filtered := filterTable(table, ds, filter)
		if filtered.NumRows() > 0 {
			matched = true
		}
		out[ds.ID] = DataSetSeries{DataSet: ds, Table: filtered}
	}
	if !matched {
		return nil, ErrNoData
	}
	return out, nil
}

func (a *duckdbAccessor) queryDataSet(ctx context.Context, ds *DataSet, filter Filter) (*Table, error) {
	tableName := ds.Format["table_name"]
	if tableName == "" {
		return nil, fmt.Errorf("%w: dataset %d has no table_name", ErrInvalidDataSet, ds.ID)
	}
	tsProp := ds.TimestampProperty()

	var sb strings.Builder
	args := make([]any, 0, 2)
	fmt.Fprintf(&sb, "SELECT * FROM %s", quoteIdent(tableName))
	conds := make([]string, 0, 2)
	if !filter.DiscardBefore.IsZero() {
		conds = append(conds, fmt.Sprintf("%s >= ?", quoteIdent(tsProp)))
		args = append(args, filter.DiscardBefore)
	}
	if !filter.DiscardAfter.IsZero() {
		conds = append(conds, fmt.Sprintf("%s <= ?", quoteIdent(tsProp)))
		args = append(args, filter.DiscardAfter)
	}
	if len(conds) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(conds, " AND "))
	}
	fmt.Fprintf(&sb, " ORDER BY %s", quoteIdent(tsProp))

	rows, err := a.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying dataset %d: %w", ds.ID, err)
	}
	defer rows.Close()

	cols, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("reading column types for dataset %d: %w", ds.ID, err)
	}
	attrs := make([]Attribute, len(cols))
	for i, c := range cols {
		attrs[i] = Attribute{Name: c.Name(), Type: attrTypeFromSQL(c.DatabaseTypeName())}
	}

	lonProp := ds.Format["longitude_property"]
	latProp := ds.Format["latitude_property"]
	srid := formatSRID(ds.Format)
	if lonProp != "" && latProp != "" {
		attrs = append(attrs, Attribute{Name: "geom", Type: AttrGeometry})
	}

	table := NewTable(attrs)
	scan := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range scan {
		ptrs[i] = &scan[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scanning dataset %d: %w", ds.ID, err)
		}
		values := make([]any, len(attrs))
		for i := range cols {
			values[i] = normalizeSQLValue(scan[i])
		}
		if lonProp != "" && latProp != "" {
			values[len(values)-1] = pointFromRow(table, values, lonProp, latProp, srid)
		}
		table.rows = append(table.rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating dataset %d: %w", ds.ID, err)
	}

	a.log.Debug().Int("rows", table.NumRows()).Str("table", tableName).Msg("dataset loaded")
	return table, nil
}

// pointFromRow builds the synthesized geometry cell from the row's
// coordinate columns, nil when either coordinate is null.
func pointFromRow(t *Table, values []any, lonProp, latProp string, srid int) any {
	lonIdx, okLon := t.AttributeIndex(lonProp)
	latIdx, okLat := t.AttributeIndex(latProp)
	if !okLon || !okLat {
		return nil
	}
	lon, okLon := coerceFloat(values[lonIdx])
	lat, okLat := coerceFloat(values[latIdx])
	if !okLon || !okLat {
		return nil
	}
	p := geom.NewPoint(lon, lat, srid)
	return p
}

func coerceFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int64:
		return float64(x), true
	case int32:
		return float64(x), true
	case string:
		f, err := strconv.ParseFloat(x, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func formatSRID(format map[string]string) int {
	if s, ok := format["srid"]; ok {
		if v, err := strconv.Atoi(s); err == nil {
			return v
		}
	}
	return 4326
}

// attrTypeFromSQL maps DuckDB column type names to attribute types.
func attrTypeFromSQL(name string) AttributeType {
	switch strings.ToUpper(name) {
	case "SMALLINT", "INT2":
		return AttrInt16
	case "INTEGER", "INT4", "INT":
		return AttrInt32
	case "BIGINT", "INT8", "HUGEINT":
		return AttrInt64
	case "DOUBLE", "FLOAT8", "REAL", "FLOAT4", "FLOAT":
		return AttrFloat64
	case "DECIMAL", "NUMERIC":
		return AttrNumeric
	case "VARCHAR", "TEXT", "STRING":
		return AttrString
	case "BOOLEAN", "BOOL":
		return AttrBool
	case "TIMESTAMP", "TIMESTAMPTZ", "TIMESTAMP WITH TIME ZONE", "DATE":
		return AttrTimestamp
	default:
		return AttrUnknown
	}
}

// normalizeSQLValue collapses the driver's scan types onto the table
// cell types.
func normalizeSQLValue(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case []byte:
		return string(x)
	case time.Time:
		return x
	default:
		return v
	}
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
