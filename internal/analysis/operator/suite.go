// TerraMA2 - Environmental Monitoring, Analysis, and Alert Platform
// Copyright 2026 TerraMA2 Team
// SPDX-License-Identifier: LGPL-3.0-or-later
// https://github.com/terrama2/terrama2

// Package operator implements the analysis operator surface: the zonal,
// history and influence operators scripts call for DCP, occurrence and
// grid series.
//
// Operators never propagate errors into the script runtime. A failing
// operator records the failure on the run context and returns NaN (or an
// empty list); the evaluator inspects the context's error set after the
// script finishes and fails the run there.
package operator

import (
	"context"
	"errors"
	"math"

	"github.com/rs/zerolog"

	"github.com/terrama2/terrama2/internal/analysis/runcontext"
	"github.com/terrama2/terrama2/internal/dataaccess"
	"github.com/terrama2/terrama2/internal/geom"
	"github.com/terrama2/terrama2/internal/logging"
)

// isDataCondition distinguishes benign data outcomes (empty series, an
// empty filter window) from real failures. Operators degrade the former
// to NaN or empty results without flagging the run.
func isDataCondition(err error) bool {
	return errors.Is(err, dataaccess.ErrEmptyDataSeries) || errors.Is(err, dataaccess.ErrNoData)
}

// Suite is the operator surface for one monitored object of one run.
// The evaluator creates a Suite per object; the run context behind it is
// shared across the whole run.
type Suite struct {
	ctx         context.Context
	run         *runcontext.Context
	objectIndex int
	log         zerolog.Logger

	// object geometry resolves once per suite
	objGeom     geom.Geometry
	objResolved bool
}

// NewSuite binds the operator surface to one monitored object.
func NewSuite(ctx context.Context, run *runcontext.Context, objectIndex int) *Suite {
	return &Suite{
		ctx:         ctx,
		run:         run,
		objectIndex: objectIndex,
		log: logging.With().
			Str("component", "operator").
			Uint64("analysis", run.Analysis().ID).
			Int("object", objectIndex).
			Logger(),
	}
}

// ObjectIndex returns the monitored object this suite operates on.
func (s *Suite) ObjectIndex() int { return s.objectIndex }

// fail records the error on the run context and returns NaN.
func (s *Suite) fail(err error) float64 {
	s.run.AddError(err.Error())
	s.log.Debug().Err(err).Msg("operator failed")
	return math.NaN()
}

// objectGeometry resolves the current monitored object's geometry once.
func (s *Suite) objectGeometry() (geom.Geometry, bool) {
	if s.objResolved {
		return s.objGeom, s.objGeom != nil
	}
	s.objResolved = true

	obj := s.run.MonitoredObject()
	if obj == nil || obj.Table == nil || obj.GeometryPos < 0 {
		return nil, false
	}
	g, ok := obj.Table.GeometryAt(s.objectIndex, obj.GeometryPos)
	if !ok {
		return nil, false
	}
	s.objGeom = g
	return g, true
}
