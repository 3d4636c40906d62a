// TerraMA2 - Environmental Monitoring, Analysis, and Alert Platform
// Copyright 2026 TerraMA2 Team
// SPDX-License-Identifier: LGPL-3.0-or-later
// https://github.com/terrama2/terrama2

package operator

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/terrama2/terrama2/internal/analysis"
	"github.com/terrama2/terrama2/internal/dataaccess"
	"github.com/terrama2/terrama2/internal/geom"
)

// influenceConfig is the resolved influence rule of one DCP series.
type influenceConfig struct {
	Type         analysis.InfluenceType
	RadiusMeters float64
}

// resolveInfluence reads the influence rule from the series' binding
// metadata. The zonal operators default a missing INFLUENCE_TYPE to
// RADIUS_TOUCHES; the plain dcp operators treat it as a configuration
// error. Both behaviors are long-standing and scripts rely on each.
func (s *Suite) resolveInfluence(seriesName string, strict bool) (influenceConfig, error) {
	bound, ok := s.run.Analysis().FindByAlias(seriesName)
	if !ok {
		return influenceConfig{}, fmt.Errorf("%w: series %q is not bound to the analysis", analysis.ErrInvalidArgument, seriesName)
	}

	cfg := influenceConfig{Type: analysis.InfluenceRadiusTouches}
	raw, hasType := bound.Metadata[analysis.KeyInfluenceType]
	if !hasType {
		if strict {
			return influenceConfig{}, fmt.Errorf("%w: series %q has no influence type configured", analysis.ErrInvalidArgument, seriesName)
		}
	} else {
		it, err := analysis.ParseInfluenceType(raw)
		if err != nil {
			return influenceConfig{}, err
		}
		cfg.Type = it
	}

	if rawRadius, ok := bound.Metadata[analysis.KeyInfluenceRadius]; ok {
		radius, err := strconv.ParseFloat(strings.TrimSpace(rawRadius), 64)
		if err != nil {
			return influenceConfig{}, fmt.Errorf("%w: invalid influence radius %q", analysis.ErrInvalidArgument, rawRadius)
		}
		meters, err := geom.RadiusToMeters(radius, bound.Metadata[analysis.KeyInfluenceRadiusUnit])
		if err != nil {
			return influenceConfig{}, fmt.Errorf("%w: %v", analysis.ErrInvalidArgument, err)
		}
		cfg.RadiusMeters = meters
	}
	return cfg, nil
}

// influenceBuffer returns the station's influence geometry, building and
// caching it on first use. With no usable radius the station's bare
// position is the influence geometry.
func (s *Suite) influenceBuffer(ds *dataaccess.DataSet, cfg influenceConfig) (geom.Geometry, error) {
	if g, ok := s.run.DCPBuffer(ds.ID); ok {
		return g, nil
	}
	if ds.Position == nil {
		return nil, fmt.Errorf("%w: dcp dataset %d has no position", dataaccess.ErrInvalidDataSet, ds.ID)
	}

	var g geom.Geometry = *ds.Position
	if cfg.RadiusMeters > 0 {
		g = geom.BufferPoint(*ds.Position, cfg.RadiusMeters)
	}
	s.run.SetDCPBuffer(ds.ID, g)
	return g, nil
}

// verifyInfluence decides whether a station influences the geometry.
func verifyInfluence(cfg influenceConfig, objGeom, buffer geom.Geometry) (bool, error) {
	switch cfg.Type {
	case analysis.InfluenceRadiusTouches:
		return geom.Intersects(buffer, objGeom), nil
	case analysis.InfluenceRadiusCenter:
		// For multi-part objects the centroid decides; single parts keep
		// the intersection test so thin objects are not dropped.
		if _, ok := objGeom.(geom.MultiPolygon); ok {
			return geom.Within(objGeom.Centroid(), buffer), nil
		}
		return geom.Intersects(buffer, objGeom), nil
	case analysis.InfluenceRegion:
		return false, fmt.Errorf("influence by region is not implemented")
	default:
		return false, fmt.Errorf("%w: influence type %d", analysis.ErrInvalidArgument, int(cfg.Type))
	}
}

// DCPInfluenceByRule returns the aliases of the stations whose influence
// geometry reaches the current monitored object, per the series' radius
// rule.
func (s *Suite) DCPInfluenceByRule(seriesName string) []string {
	objGeom, ok := s.objectGeometry()
	if !ok {
		s.fail(fmt.Errorf("monitored object %d has no geometry", s.objectIndex))
		return nil
	}
	cfg, err := s.resolveInfluence(seriesName, false)
	if err != nil {
		s.fail(err)
		return nil
	}

	// Station enumeration shares the current-state snapshot with the
	// current-window operators.
	datasets, err := s.run.Load(s.ctx, seriesName, "", "", 1)
	if err != nil {
		if isDataCondition(err) {
			return nil
		}
		s.fail(err)
		return nil
	}

	var aliases []string
	for _, dss := range datasets {
		buffer, err := s.influenceBuffer(dss.DataSet, cfg)
		if err != nil {
			s.fail(err)
			return nil
		}
		influences, err := verifyInfluence(cfg, objGeom, buffer)
		if err != nil {
			s.fail(err)
			return nil
		}
		if influences {
			aliases = append(aliases, dss.DataSet.Alias)
		}
	}
	return aliases
}

// DCPInfluenceByAttribute reads the named monitored-object attribute as
// a ';'-separated list of station aliases and returns the ones that
// exist in the series. Unknown aliases are recorded as run errors.
func (s *Suite) DCPInfluenceByAttribute(seriesName, attribute string) []string {
	obj := s.run.MonitoredObject()
	if obj == nil || obj.Table == nil {
		s.fail(fmt.Errorf("analysis has no monitored object table"))
		return nil
	}
	raw := obj.Table.String(s.objectIndex, attribute)
	if raw == "" {
		return nil
	}

	datasets, err := s.run.Load(s.ctx, seriesName, "", "", 1)
	if err != nil {
		if isDataCondition(err) {
			return nil
		}
		s.fail(err)
		return nil
	}
	known := make(map[string]struct{}, len(datasets))
	for _, dss := range datasets {
		known[dss.DataSet.Alias] = struct{}{}
	}

	var aliases []string
	seen := make(map[string]struct{})
	for _, part := range strings.Split(raw, ";") {
		alias := strings.TrimSpace(part)
		if alias == "" {
			continue
		}
		if _, dup := seen[alias]; dup {
			continue
		}
		seen[alias] = struct{}{}
		if _, ok := known[alias]; !ok {
			s.fail(fmt.Errorf("%w: attribute %q names unknown dcp %q", analysis.ErrInvalidArgument, attribute, alias))
			continue
		}
		aliases = append(aliases, alias)
	}
	return aliases
}
