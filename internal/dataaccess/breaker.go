// TerraMA2 - Environmental Monitoring, Analysis, and Alert Platform
// Copyright 2026 TerraMA2 Team
// SPDX-License-Identifier: LGPL-3.0-or-later
// https://github.com/terrama2/terrama2

package dataaccess

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/terrama2/terrama2/internal/logging"
	"github.com/terrama2/terrama2/internal/metrics"
)

// BreakerConfig tunes the circuit breaker wrapped around an accessor.
type BreakerConfig struct {
	Name             string
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold uint32
}

// DefaultBreakerConfig returns conservative defaults: trip after five
// consecutive failures, probe again after thirty seconds.
func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:             name,
		MaxRequests:      1,
		Interval:         60 * time.Second,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
	}
}

// breakerAccessor guards a provider-backed accessor with a circuit
// breaker so a failing storage backend degrades runs quickly instead of
// stalling the worker pool on repeated timeouts.
type breakerAccessor struct {
	inner Accessor
	cb    *gobreaker.CircuitBreaker[map[uint64]DataSetSeries]
}

// WithBreaker wraps an accessor in a circuit breaker.
func WithBreaker(inner Accessor, cfg BreakerConfig) Accessor {
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("accessor circuit breaker state change")
		},
		IsSuccessful: func(err error) bool {
			// Empty series and empty windows are data conditions, not
			// backend failures; they must not trip the breaker.
			return err == nil || isDataCondition(err)
		},
	}
	return &breakerAccessor{
		inner: inner,
		cb:    gobreaker.NewCircuitBreaker[map[uint64]DataSetSeries](settings),
	}
}

func isDataCondition(err error) bool {
	return err == nil || errors.Is(err, ErrEmptyDataSeries) || errors.Is(err, ErrNoData)
}

func (b *breakerAccessor) GetSeries(ctx context.Context, filter Filter) (map[uint64]DataSetSeries, error) {
	out, err := b.cb.Execute(func() (map[uint64]DataSetSeries, error) {
		return b.inner.GetSeries(ctx, filter)
	})
	if err != nil && !isDataCondition(err) {
		metrics.AccessorErrors.WithLabelValues(b.cb.Name()).Inc()
	}
	return out, err
}
