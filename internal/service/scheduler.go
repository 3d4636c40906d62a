// TerraMA2 - Environmental Monitoring, Analysis, and Alert Platform
// Copyright 2026 TerraMA2 Team
// SPDX-License-Identifier: LGPL-3.0-or-later
// https://github.com/terrama2/terrama2

package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/terrama2/terrama2/internal/logging"
)

// Scheduler enqueues every active registered analysis on a fixed
// interval. It implements suture.Service; the supervisor restarts it if
// it panics.
type Scheduler struct {
	service  *Service
	interval time.Duration
	log      zerolog.Logger
}

// NewScheduler creates a scheduler. Intervals below one second are
// raised to one second.
func NewScheduler(s *Service, interval time.Duration) *Scheduler {
	if interval < time.Second {
		interval = time.Second
	}
	return &Scheduler{
		service:  s,
		interval: interval,
		log:      logging.With().Str("component", "scheduler").Logger(),
	}
}

// Serve ticks until the context is canceled.
func (sc *Scheduler) Serve(ctx context.Context) error {
	ticker := time.NewTicker(sc.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			sc.tick()
		}
	}
}

func (sc *Scheduler) tick() {
	for _, a := range sc.service.Registered() {
		if !a.Active {
			continue
		}
		if _, err := sc.service.Enqueue(a.ID); err != nil {
			sc.log.Warn().Err(err).Uint64("analysis", a.ID).Msg("scheduled enqueue failed")
		}
	}
}
