// TerraMA2 - Environmental Monitoring, Analysis, and Alert Platform
// Copyright 2026 TerraMA2 Team
// SPDX-License-Identifier: LGPL-3.0-or-later
// https://github.com/terrama2/terrama2

// Package bus carries run lifecycle events between the analysis service
// and its observers (process log, metrics, API) over an in-process
// publish/subscribe channel.
package bus

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/terrama2/terrama2/internal/analysis/runcontext"
)

// Topics published by the analysis service.
const (
	TopicRunStarted  = "run.started"
	TopicRunFinished = "run.finished"
)

// RunStarted announces that a run began executing.
type RunStarted struct {
	RunID      runcontext.RunID `json:"run_id"`
	AnalysisID uint64           `json:"analysis_id"`
	StartTime  time.Time        `json:"start_time"`
}

// RunFinished announces a run's terminal state.
type RunFinished struct {
	RunID      runcontext.RunID `json:"run_id"`
	AnalysisID uint64           `json:"analysis_id"`
	StartTime  time.Time        `json:"start_time"`
	FinishTime time.Time        `json:"finish_time"`
	Success    bool             `json:"success"`
	Errors     []string         `json:"errors,omitempty"`
	Results    int              `json:"results"`
}

// Bus wraps the in-process pub/sub channel.
type Bus struct {
	pubsub *gochannel.GoChannel
}

// New creates the bus. Subscribers that fall behind buffer up to the
// configured depth before publishes block.
func New(buffer int64, logger zerolog.Logger) *Bus {
	return &Bus{
		pubsub: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: buffer,
		}, NewLoggerAdapter(logger)),
	}
}

// PublishRunStarted emits a run.started event.
func (b *Bus) PublishRunStarted(ev RunStarted) error {
	return b.publish(TopicRunStarted, string(ev.RunID), ev)
}

// PublishRunFinished emits a run.finished event.
func (b *Bus) PublishRunFinished(ev RunFinished) error {
	return b.publish(TopicRunFinished, string(ev.RunID), ev)
}

func (b *Bus) publish(topic, uuid string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling %s event: %w", topic, err)
	}
	msg := message.NewMessage(uuid, data)
	if err := b.pubsub.Publish(topic, msg); err != nil {
		return fmt.Errorf("publishing %s event: %w", topic, err)
	}
	return nil
}

// Subscribe returns the message stream of one topic.
func (b *Bus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return b.pubsub.Subscribe(ctx, topic)
}

// Close shuts the channel down, terminating every subscription.
func (b *Bus) Close() error {
	return b.pubsub.Close()
}

// DecodeRunFinished parses a run.finished payload.
func DecodeRunFinished(msg *message.Message) (RunFinished, error) {
	var ev RunFinished
	if err := json.Unmarshal(msg.Payload, &ev); err != nil {
		return ev, fmt.Errorf("decoding run.finished: %w", err)
	}
	return ev, nil
}

// DecodeRunStarted parses a run.started payload.
func DecodeRunStarted(msg *message.Message) (RunStarted, error) {
	var ev RunStarted
	if err := json.Unmarshal(msg.Payload, &ev); err != nil {
		return ev, fmt.Errorf("decoding run.started: %w", err)
	}
	return ev, nil
}

// loggerAdapter bridges watermill's logging onto zerolog.
type loggerAdapter struct {
	log zerolog.Logger
}

// NewLoggerAdapter wraps a zerolog logger for watermill.
func NewLoggerAdapter(log zerolog.Logger) watermill.LoggerAdapter {
	return &loggerAdapter{log: log}
}

func (a *loggerAdapter) Error(msg string, err error, fields watermill.LogFields) {
	a.event(a.log.Error().Err(err), fields).Msg(msg)
}

func (a *loggerAdapter) Info(msg string, fields watermill.LogFields) {
	a.event(a.log.Info(), fields).Msg(msg)
}

func (a *loggerAdapter) Debug(msg string, fields watermill.LogFields) {
	a.event(a.log.Debug(), fields).Msg(msg)
}

func (a *loggerAdapter) Trace(msg string, fields watermill.LogFields) {
	a.event(a.log.Trace(), fields).Msg(msg)
}

func (a *loggerAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	log := a.log
	for k, v := range fields {
		log = log.With().Interface(k, v).Logger()
	}
	return &loggerAdapter{log: log}
}

func (a *loggerAdapter) event(ev *zerolog.Event, fields watermill.LogFields) *zerolog.Event {
	for k, v := range fields {
		ev = ev.Interface(k, v)
	}
	return ev
}
