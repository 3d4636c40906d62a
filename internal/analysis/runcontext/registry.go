// TerraMA2 - Environmental Monitoring, Analysis, and Alert Platform
// Copyright 2026 TerraMA2 Team
// SPDX-License-Identifier: LGPL-3.0-or-later
// https://github.com/terrama2/terrama2

package runcontext

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/terrama2/terrama2/internal/analysis"
	"github.com/terrama2/terrama2/internal/dataaccess"
	"github.com/terrama2/terrama2/internal/metrics"
)

// RunID identifies one analysis execution.
type RunID string

// NewRunID mints a fresh run identifier.
func NewRunID() RunID {
	return RunID(uuid.NewString())
}

// Registry owns the live run contexts. It is injected into the evaluator
// and the service layer; nothing reaches it through package state, so
// two engines in one process never share runs.
type Registry struct {
	mu   sync.RWMutex
	runs map[RunID]*Context
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{runs: make(map[RunID]*Context)}
}

// Create mints a run id and its context.
func (r *Registry) Create(a *analysis.Analysis, manager dataaccess.DataManager, accessors *dataaccess.AccessorRegistry, startTime time.Time) (RunID, *Context) {
	return r.CreateWithID(NewRunID(), a, manager, accessors, startTime)
}

// CreateWithID registers a context under a caller-supplied run id, used
// when the id was minted at enqueue time.
func (r *Registry) CreateWithID(id RunID, a *analysis.Analysis, manager dataaccess.DataManager, accessors *dataaccess.AccessorRegistry, startTime time.Time) (RunID, *Context) {
	ctx := New(a, manager, accessors, startTime)
	r.mu.Lock()
	r.runs[id] = ctx
	metrics.LiveRunContexts.Set(float64(len(r.runs)))
	r.mu.Unlock()
	return id, ctx
}

// Get returns the context of a live run.
func (r *Registry) Get(id RunID) (*Context, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ctx, ok := r.runs[id]
	if !ok {
		return nil, fmt.Errorf("run %s not found", id)
	}
	return ctx, nil
}

// ClearRunState drops the run's context, releasing its dataset cache and
// buffers. Called after results are persisted.
func (r *Registry) ClearRunState(id RunID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.runs, id)
	metrics.LiveRunContexts.Set(float64(len(r.runs)))
}

// Size returns the number of live runs.
func (r *Registry) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.runs)
}
