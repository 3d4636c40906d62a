// TerraMA2 - Environmental Monitoring, Analysis, and Alert Platform
// Copyright 2026 TerraMA2 Team
// SPDX-License-Identifier: LGPL-3.0-or-later
// https://github.com/terrama2/terrama2

package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestSlogHandler_Levels(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(&SlogHandler{logger: NewTestLogger(&buf)})

	logger.Warn("careful", "attempt", int64(3))

	out := buf.String()
	if !strings.Contains(out, `"level":"warn"`) {
		t.Errorf("level not mapped: %s", out)
	}
	if !strings.Contains(out, `"attempt":3`) {
		t.Errorf("attribute missing: %s", out)
	}
}

func TestSlogHandler_NestedGroupOrder(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(&SlogHandler{logger: NewTestLogger(&buf)})

	// Keys in nested groups read outer-to-inner: a.b.key.
	logger.WithGroup("a").WithGroup("b").Info("grouped", "key", "v")

	out := buf.String()
	if !strings.Contains(out, `"a.b.key":"v"`) {
		t.Errorf("group prefix order wrong: %s", out)
	}
}

func TestSlogHandler_GroupAttr(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(&SlogHandler{logger: NewTestLogger(&buf)})

	logger.WithGroup("outer").Info("grouped", slog.Group("inner", slog.String("key", "v")))

	out := buf.String()
	if !strings.Contains(out, `"outer.inner.key":"v"`) {
		t.Errorf("inline group prefix wrong: %s", out)
	}
}
