// TerraMA2 - Environmental Monitoring, Analysis, and Alert Platform
// Copyright 2026 TerraMA2 Team
// SPDX-License-Identifier: LGPL-3.0-or-later
// https://github.com/terrama2/terrama2

package bus

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/terrama2/terrama2/internal/logging"
)

func TestBusRoundTrip(t *testing.T) {
	t.Parallel()

	b := New(16, logging.NewTestLogger(io.Discard))
	defer b.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	messages, err := b.Subscribe(ctx, TopicRunFinished)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	sent := RunFinished{
		RunID:      "run-1",
		AnalysisID: 7,
		StartTime:  time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC),
		FinishTime: time.Date(2026, 8, 28, 12, 0, 3, 0, time.UTC),
		Success:    true,
		Results:    42,
	}
	if err := b.PublishRunFinished(sent); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	select {
	case msg := <-messages:
		got, err := DecodeRunFinished(msg)
		if err != nil {
			t.Fatalf("Decode: %v", err)
		}
		msg.Ack()
		if got.RunID != sent.RunID || got.AnalysisID != 7 || !got.Success || got.Results != 42 {
			t.Errorf("event mismatch: %+v", got)
		}
	case <-ctx.Done():
		t.Fatal("no message received")
	}
}

func TestBusRunStarted(t *testing.T) {
	t.Parallel()

	b := New(16, logging.NewTestLogger(io.Discard))
	defer b.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	messages, err := b.Subscribe(ctx, TopicRunStarted)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	if err := b.PublishRunStarted(RunStarted{RunID: "run-2", AnalysisID: 3}); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	select {
	case msg := <-messages:
		got, err := DecodeRunStarted(msg)
		if err != nil {
			t.Fatalf("Decode: %v", err)
		}
		msg.Ack()
		if got.RunID != "run-2" || got.AnalysisID != 3 {
			t.Errorf("event mismatch: %+v", got)
		}
	case <-ctx.Done():
		t.Fatal("no message received")
	}
}
