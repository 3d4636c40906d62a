// TerraMA2 - Environmental Monitoring, Analysis, and Alert Platform
// Copyright 2026 TerraMA2 Team
// SPDX-License-Identifier: LGPL-3.0-or-later
// https://github.com/terrama2/terrama2

package timeutil

import (
	"testing"
	"time"
)

func TestParseRelative(t *testing.T) {
	t.Parallel()

	tests := []struct {
		expr    string
		want    time.Duration
		wantErr bool
	}{
		{"3650d", 3650 * 24 * time.Hour, false},
		{"12h", 12 * time.Hour, false},
		{"30m", 30 * time.Minute, false},
		{"45s", 45 * time.Second, false},
		{"2w", 14 * 24 * time.Hour, false},
		{"1.5h", 90 * time.Minute, false},
		{" 7d ", 7 * 24 * time.Hour, false},
		{"", 0, false},
		{"d", 0, true},
		{"10", 0, true},
		{"10y", 0, true},
		{"abc", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseRelative(tt.expr)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseRelative(%q) error = %v, wantErr %v", tt.expr, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseRelative(%q) = %v, want %v", tt.expr, got, tt.want)
		}
	}
}

func TestDiscardBefore(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	got, err := DiscardBefore(start, "10d")
	if err != nil {
		t.Fatalf("DiscardBefore: %v", err)
	}
	want := start.Add(-10 * 24 * time.Hour)
	if !got.Equal(want) {
		t.Errorf("DiscardBefore = %v, want %v", got, want)
	}
}

func TestDiscardBefore_Empty(t *testing.T) {
	t.Parallel()

	got, err := DiscardBefore(time.Now(), "")
	if err != nil {
		t.Fatalf("DiscardBefore: %v", err)
	}
	if !got.IsZero() {
		t.Errorf("empty expression should yield zero time, got %v", got)
	}
}

func TestDiscardBefore_Invalid(t *testing.T) {
	t.Parallel()

	if _, err := DiscardBefore(time.Now(), "10parsecs"); err == nil {
		t.Error("invalid expression should error")
	}
}
