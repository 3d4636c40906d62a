// TerraMA2 - Environmental Monitoring, Analysis, and Alert Platform
// Copyright 2026 TerraMA2 Team
// SPDX-License-Identifier: LGPL-3.0-or-later
// https://github.com/terrama2/terrama2

// Package service runs analyses: a pending-run queue feeding a worker
// pool, per-run lifecycle events on the bus, and the periodic scheduler.
// Services implement suture.Service and live under the process
// supervisor tree.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/terrama2/terrama2/internal/analysis"
	"github.com/terrama2/terrama2/internal/analysis/operator"
	"github.com/terrama2/terrama2/internal/analysis/runcontext"
	"github.com/terrama2/terrama2/internal/bus"
	"github.com/terrama2/terrama2/internal/dataaccess"
	"github.com/terrama2/terrama2/internal/logging"
	"github.com/terrama2/terrama2/internal/metrics"
)

// Evaluator computes the result attributes of one monitored object. The
// service builds an operator suite per object and fans evaluation out
// over the worker pool; implementations call suite operators and record
// results through the run context.
type Evaluator interface {
	EvaluateObject(ctx context.Context, run *runcontext.Context, suite *operator.Suite) error
}

// EvaluatorFunc adapts a function to the Evaluator interface.
type EvaluatorFunc func(ctx context.Context, run *runcontext.Context, suite *operator.Suite) error

func (f EvaluatorFunc) EvaluateObject(ctx context.Context, run *runcontext.Context, suite *operator.Suite) error {
	return f(ctx, run, suite)
}

// Registration binds an analysis to its evaluator and object identifier
// attribute.
type Registration struct {
	Analysis   *analysis.Analysis
	Evaluator  Evaluator
	Identifier string
}

// RunState describes where a run is in its lifecycle.
type RunState string

const (
	RunQueued   RunState = "queued"
	RunRunning  RunState = "running"
	RunFinished RunState = "finished"
	RunFailed   RunState = "failed"
	RunCanceled RunState = "canceled"
)

// RunStatus is the externally visible state of one run.
type RunStatus struct {
	RunID      runcontext.RunID `json:"run_id"`
	AnalysisID uint64           `json:"analysis_id"`
	State      RunState         `json:"state"`
	StartTime  time.Time        `json:"start_time"`
	FinishTime time.Time        `json:"finish_time,omitempty"`
	Errors     []string         `json:"errors,omitempty"`
}

type pendingRun struct {
	id       runcontext.RunID
	reg      Registration
	canceled bool
}

// Config tunes the service.
type Config struct {
	Workers      int `koanf:"workers"`
	ObjectFanout int `koanf:"object_fanout"`
	QueueDepth   int `koanf:"queue_depth"`
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{Workers: 2, ObjectFanout: 4, QueueDepth: 64}
}

// Service owns the run queue and worker pool.
type Service struct {
	cfg       Config
	registry  *runcontext.Registry
	manager   dataaccess.DataManager
	accessors *dataaccess.AccessorRegistry
	bus       *bus.Bus
	log       zerolog.Logger

	mu       sync.Mutex
	queue    chan *pendingRun
	pending  map[runcontext.RunID]*pendingRun
	statuses map[runcontext.RunID]*RunStatus
	analyses map[uint64]Registration
}

// New creates the service.
func New(cfg Config, registry *runcontext.Registry, manager dataaccess.DataManager, accessors *dataaccess.AccessorRegistry, b *bus.Bus) *Service {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultConfig().Workers
	}
	if cfg.ObjectFanout <= 0 {
		cfg.ObjectFanout = DefaultConfig().ObjectFanout
	}
	if cfg.QueueDepth <= 0 {
		cfg.QueueDepth = DefaultConfig().QueueDepth
	}
	return &Service{
		cfg:       cfg,
		registry:  registry,
		manager:   manager,
		accessors: accessors,
		bus:       b,
		log:       logging.With().Str("component", "analysis-service").Logger(),
		queue:     make(chan *pendingRun, cfg.QueueDepth),
		pending:   make(map[runcontext.RunID]*pendingRun),
		statuses:  make(map[runcontext.RunID]*RunStatus),
		analyses:  make(map[uint64]Registration),
	}
}

// Register makes an analysis runnable. The analysis is validated here so
// a malformed configuration fails at registration, not mid-run.
func (s *Service) Register(reg Registration) error {
	if reg.Analysis == nil || reg.Evaluator == nil {
		return fmt.Errorf("registration needs an analysis and an evaluator")
	}
	if err := reg.Analysis.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.analyses[reg.Analysis.ID] = reg
	return nil
}

// Registered returns the registered analyses.
func (s *Service) Registered() []*analysis.Analysis {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*analysis.Analysis, 0, len(s.analyses))
	for _, reg := range s.analyses {
		out = append(out, reg.Analysis)
	}
	return out
}

// Enqueue queues one run of a registered analysis.
func (s *Service) Enqueue(analysisID uint64) (runcontext.RunID, error) {
	s.mu.Lock()
	reg, ok := s.analyses[analysisID]
	s.mu.Unlock()
	if !ok {
		return "", fmt.Errorf("analysis %d is not registered", analysisID)
	}

	p := &pendingRun{id: runcontext.NewRunID(), reg: reg}
	select {
	case s.queue <- p:
	default:
		return "", fmt.Errorf("run queue is full (%d pending)", s.cfg.QueueDepth)
	}

	s.mu.Lock()
	s.pending[p.id] = p
	s.statuses[p.id] = &RunStatus{RunID: p.id, AnalysisID: analysisID, State: RunQueued}
	metrics.QueueDepth.Set(float64(len(s.pending)))
	s.mu.Unlock()

	s.log.Info().Str("run", string(p.id)).Uint64("analysis", analysisID).Msg("run queued")
	return p.id, nil
}

// CancelQueued cancels a run that has not started. Running runs are not
// interrupted; they stop at the next context check.
func (s *Service) CancelQueued(id runcontext.RunID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pending[id]
	if !ok || p.canceled {
		return false
	}
	if st := s.statuses[id]; st == nil || st.State != RunQueued {
		return false
	}
	p.canceled = true
	s.statuses[id].State = RunCanceled
	return true
}

// Status returns the state of one run.
func (s *Service) Status(id runcontext.RunID) (RunStatus, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.statuses[id]
	if !ok {
		return RunStatus{}, false
	}
	return *st, true
}

// Statuses returns a snapshot of every known run.
func (s *Service) Statuses() []RunStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]RunStatus, 0, len(s.statuses))
	for _, st := range s.statuses {
		out = append(out, *st)
	}
	return out
}

// Serve runs the worker pool until the context is canceled. It
// implements suture.Service.
func (s *Service) Serve(ctx context.Context) error {
	var wg sync.WaitGroup
	for i := 0; i < s.cfg.Workers; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			s.worker(ctx, worker)
		}(i)
	}
	<-ctx.Done()
	wg.Wait()
	return ctx.Err()
}

func (s *Service) worker(ctx context.Context, worker int) {
	for {
		select {
		case <-ctx.Done():
			return
		case p := <-s.queue:
			s.mu.Lock()
			delete(s.pending, p.id)
			metrics.QueueDepth.Set(float64(len(s.pending)))
			canceled := p.canceled
			s.mu.Unlock()
			if canceled {
				s.log.Info().Str("run", string(p.id)).Msg("queued run canceled")
				continue
			}
			s.execute(ctx, p)
		}
	}
}

// execute runs one analysis. The start time is fixed here and every
// relative-time filter of the run resolves against it.
func (s *Service) execute(ctx context.Context, p *pendingRun) {
	a := p.reg.Analysis
	startTime := time.Now().UTC()

	id, run := s.registry.CreateWithID(p.id, a, s.manager, s.accessors, startTime)
	defer s.registry.ClearRunState(id)

	// Counted here, not at enqueue, so canceled queued runs never show as
	// started.
	metrics.RunsStarted.WithLabelValues(a.Type.String()).Inc()
	s.setState(p.id, func(st *RunStatus) {
		st.State = RunRunning
		st.StartTime = startTime
	})
	if err := s.bus.PublishRunStarted(bus.RunStarted{RunID: id, AnalysisID: a.ID, StartTime: startTime}); err != nil {
		s.log.Warn().Err(err).Msg("failed to publish run.started")
	}

	if a.Type == analysis.TypeMonitoredObject {
		if err := run.LoadMonitoredObject(ctx, p.reg.Identifier); err != nil {
			run.AddError(err.Error())
		}
	}

	if len(run.Errors()) == 0 {
		s.evaluate(ctx, run, p.reg.Evaluator)
	}

	errs := run.Errors()
	success := len(errs) == 0
	results := run.Results()
	finish := time.Now().UTC()

	state := RunFinished
	if !success {
		state = RunFailed
	}
	s.setState(p.id, func(st *RunStatus) {
		st.State = state
		st.FinishTime = finish
		st.Errors = errs
	})
	metrics.ObserveRun(a.Type.String(), startTime, success)

	if err := s.bus.PublishRunFinished(bus.RunFinished{
		RunID:      id,
		AnalysisID: a.ID,
		StartTime:  startTime,
		FinishTime: finish,
		Success:    success,
		Errors:     errs,
		Results:    len(results),
	}); err != nil {
		s.log.Warn().Err(err).Msg("failed to publish run.finished")
	}
	s.log.Info().
		Str("run", string(id)).
		Uint64("analysis", a.ID).
		Bool("success", success).
		Int("results", len(results)).
		Dur("elapsed", finish.Sub(startTime)).
		Msg("run finished")
}

// evaluate fans per-object evaluation out over the object pool and
// joins before returning. Evaluator errors become run errors; they
// never abort sibling objects.
func (s *Service) evaluate(ctx context.Context, run *runcontext.Context, ev Evaluator) {
	objects := 1
	if obj := run.MonitoredObject(); obj != nil && obj.Table != nil {
		objects = obj.Table.NumRows()
	}

	sem := make(chan struct{}, s.cfg.ObjectFanout)
	var wg sync.WaitGroup
	for idx := 0; idx < objects; idx++ {
		if ctx.Err() != nil {
			run.AddError(ctx.Err().Error())
			break
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(idx int) {
			defer wg.Done()
			defer func() { <-sem }()
			suite := operator.NewSuite(ctx, run, idx)
			if err := ev.EvaluateObject(ctx, run, suite); err != nil {
				run.AddError(err.Error())
			}
		}(idx)
	}
	wg.Wait()
}

func (s *Service) setState(id runcontext.RunID, mutate func(*RunStatus)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.statuses[id]; ok {
		mutate(st)
	}
}
