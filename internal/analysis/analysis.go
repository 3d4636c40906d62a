// TerraMA2 - Environmental Monitoring, Analysis, and Alert Platform
// Copyright 2026 TerraMA2 Team
// SPDX-License-Identifier: LGPL-3.0-or-later
// https://github.com/terrama2/terrama2

// Package analysis defines the analysis model: what to run, over which
// data series, with which script, and how DCP influence is resolved.
package analysis

import (
	"errors"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/go-playground/validator/v10"
)

var (
	// ErrInvalidArgument flags operator calls with malformed arguments
	// (unknown series alias, bad attribute, invalid metadata).
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrWrongAnalysisType flags an operator invoked under an analysis
	// type it does not support.
	ErrWrongAnalysisType = errors.New("operator not available for this analysis type")
)

// Type discriminates what an analysis monitors.
type Type int

const (
	TypeDCP             Type = 1
	TypeMonitoredObject Type = 2
	TypeGrid            Type = 3
)

// String returns the configuration name of the type.
func (t Type) String() string {
	switch t {
	case TypeDCP:
		return "dcp"
	case TypeMonitoredObject:
		return "monitored-object"
	case TypeGrid:
		return "grid"
	default:
		return "unknown"
	}
}

// DataSeriesType classifies how an analysis uses one of its series.
type DataSeriesType int

const (
	DataSeriesMonitoredObject DataSeriesType = 1
	DataSeriesGrid            DataSeriesType = 2
	DataSeriesDCP             DataSeriesType = 3
	DataSeriesAdditional      DataSeriesType = 4
)

// ScriptLanguage identifies the language of the analysis script.
type ScriptLanguage int

const (
	LanguagePython ScriptLanguage = 1
	LanguageLua    ScriptLanguage = 2
)

// InfluenceType selects how a DCP station's influence over a monitored
// object is decided.
type InfluenceType int

const (
	// InfluenceRadiusTouches: the station's influence buffer intersects
	// the monitored object.
	InfluenceRadiusTouches InfluenceType = 1
	// InfluenceRadiusCenter: the monitored object's centroid falls
	// inside the buffer.
	InfluenceRadiusCenter InfluenceType = 2
	// InfluenceRegion: influence taken from an attribute region table.
	// Accepted by validation but not implemented by the rule operator.
	InfluenceRegion InfluenceType = 3
)

// Metadata keys configuring DCP influence.
const (
	KeyInfluenceType       = "INFLUENCE_TYPE"
	KeyInfluenceRadius     = "INFLUENCE_RADIUS"
	KeyInfluenceRadiusUnit = "INFLUENCE_RADIUS_UNIT"
	KeyInfluenceAttribute  = "INFLUENCE_ATTRIBUTE"
)

// AnalysisDataSeries binds one data series into an analysis.
type AnalysisDataSeries struct {
	ID           uint64            `json:"id"`
	DataSeriesID uint64            `json:"data_series_id" validate:"required"`
	Type         DataSeriesType    `json:"type" validate:"min=1,max=4"`
	Alias        string            `json:"alias"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// OutputGrid describes the grid an interpolating or grid analysis writes.
type OutputGrid struct {
	SRID        int     `json:"srid"`
	ResolutionX float64 `json:"resolution_x" validate:"gt=0"`
	ResolutionY float64 `json:"resolution_y" validate:"gt=0"`
}

// Analysis is one configured analysis: a script evaluated over a set of
// data series on a schedule, producing per-object results or a grid.
type Analysis struct {
	ID                 uint64               `json:"id"`
	ProjectID          uint64               `json:"project_id"`
	Name               string               `json:"name" validate:"required"`
	Type               Type                 `json:"type" validate:"min=1,max=3"`
	Script             string               `json:"script" validate:"required"`
	ScriptLanguage     ScriptLanguage       `json:"script_language" validate:"min=1,max=2"`
	Active             bool                 `json:"active"`
	OutputDataSeriesID uint64               `json:"output_data_series_id"`
	Metadata           map[string]string    `json:"metadata,omitempty"`
	DataSeries         []AnalysisDataSeries `json:"analysis_dataseries_list" validate:"dive"`
	OutputGrid         *OutputGrid          `json:"output_grid,omitempty"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks structural constraints plus the cross-field rules the
// schema cannot express: each type needs its anchoring series, and
// influence metadata must name a known influence type.
func (a *Analysis) Validate() error {
	if err := validate.Struct(a); err != nil {
		return fmt.Errorf("analysis %q: %w", a.Name, err)
	}

	switch a.Type {
	case TypeMonitoredObject:
		if _, ok := a.FindByType(DataSeriesMonitoredObject); !ok {
			return fmt.Errorf("analysis %q: monitored-object analysis needs a monitored-object series", a.Name)
		}
	case TypeDCP:
		if _, ok := a.FindByType(DataSeriesDCP); !ok {
			return fmt.Errorf("analysis %q: dcp analysis needs a dcp series", a.Name)
		}
	case TypeGrid:
		if a.OutputGrid == nil {
			return fmt.Errorf("analysis %q: grid analysis needs an output grid", a.Name)
		}
	}

	for _, ds := range a.DataSeries {
		if raw, ok := ds.Metadata[KeyInfluenceType]; ok {
			if _, err := ParseInfluenceType(raw); err != nil {
				return fmt.Errorf("analysis %q, series %q: %w", a.Name, ds.Alias, err)
			}
		}
	}
	return nil
}

// FindByAlias returns the bound series with the given alias.
func (a *Analysis) FindByAlias(alias string) (AnalysisDataSeries, bool) {
	for _, ds := range a.DataSeries {
		if ds.Alias == alias {
			return ds, true
		}
	}
	return AnalysisDataSeries{}, false
}

// FindByType returns the first bound series of the given type.
func (a *Analysis) FindByType(t DataSeriesType) (AnalysisDataSeries, bool) {
	for _, ds := range a.DataSeries {
		if ds.Type == t {
			return ds, true
		}
	}
	return AnalysisDataSeries{}, false
}

// ToType coerces a numeric configuration value to an analysis type.
func ToType(v int) (Type, error) {
	if v < int(TypeDCP) || v > int(TypeGrid) {
		return 0, fmt.Errorf("%w: unknown analysis type %d", ErrInvalidArgument, v)
	}
	return Type(v), nil
}

// ToDataSeriesType coerces a numeric configuration value to a
// data-series usage type.
func ToDataSeriesType(v int) (DataSeriesType, error) {
	if v < int(DataSeriesMonitoredObject) || v > int(DataSeriesAdditional) {
		return 0, fmt.Errorf("%w: unknown data series type %d", ErrInvalidArgument, v)
	}
	return DataSeriesType(v), nil
}

// ToScriptLanguage coerces a numeric configuration value to a script
// language.
func ToScriptLanguage(v int) (ScriptLanguage, error) {
	if v < int(LanguagePython) || v > int(LanguageLua) {
		return 0, fmt.Errorf("%w: unknown script language %d", ErrInvalidArgument, v)
	}
	return ScriptLanguage(v), nil
}

// ParseInfluenceType resolves the metadata value to an influence type.
// Both numeric ordinals and symbolic names are accepted.
func ParseInfluenceType(raw string) (InfluenceType, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "1", "RADIUS_TOUCHES", "TOUCHES":
		return InfluenceRadiusTouches, nil
	case "2", "RADIUS_CENTER", "CENTER":
		return InfluenceRadiusCenter, nil
	case "3", "REGION":
		return InfluenceRegion, nil
	default:
		return 0, fmt.Errorf("%w: unknown influence type %q", ErrInvalidArgument, raw)
	}
}

// MarshalJSON / UnmarshalJSON round-trip the analysis through the wire
// representation used by the run API.
func (a *Analysis) MarshalJSON() ([]byte, error) {
	type alias Analysis
	return json.Marshal((*alias)(a))
}

func (a *Analysis) UnmarshalJSON(data []byte) error {
	type alias Analysis
	return json.Unmarshal(data, (*alias)(a))
}
