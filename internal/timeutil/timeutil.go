// TerraMA2 - Environmental Monitoring, Analysis, and Alert Platform
// Copyright 2026 TerraMA2 Team
// SPDX-License-Identifier: LGPL-3.0-or-later
// https://github.com/terrama2/terrama2

// Package timeutil parses the relative-time expressions used by history
// operators and schedule configuration ("3650d", "12h", "30m", "45s")
// and derives filter bounds from a run's fixed start time.
package timeutil

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// ParseRelative converts a relative-time expression to a duration.
// Supported units: d (days), h (hours), m (minutes), s (seconds),
// w (weeks). The empty string parses to zero.
func ParseRelative(expr string) (time.Duration, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return 0, nil
	}

	split := len(expr)
	for i, r := range expr {
		if !unicode.IsDigit(r) && r != '.' {
			split = i
			break
		}
	}
	if split == 0 || split == len(expr) {
		return 0, fmt.Errorf("invalid relative time expression %q", expr)
	}

	value, err := strconv.ParseFloat(expr[:split], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid relative time expression %q: %w", expr, err)
	}
	if value < 0 {
		return 0, fmt.Errorf("negative relative time expression %q", expr)
	}

	var unit time.Duration
	switch strings.ToLower(strings.TrimSpace(expr[split:])) {
	case "s", "sec", "second", "seconds":
		unit = time.Second
	case "m", "min", "minute", "minutes":
		unit = time.Minute
	case "h", "hour", "hours":
		unit = time.Hour
	case "d", "day", "days":
		unit = 24 * time.Hour
	case "w", "week", "weeks":
		unit = 7 * 24 * time.Hour
	default:
		return 0, fmt.Errorf("unknown unit in relative time expression %q", expr)
	}

	return time.Duration(value * float64(unit)), nil
}

// DiscardBefore derives the lower temporal bound for a filter: the run's
// fixed start time minus the window expressed by expr. A zero time is
// returned for the empty expression (no temporal narrowing).
func DiscardBefore(startTime time.Time, expr string) (time.Time, error) {
	if strings.TrimSpace(expr) == "" {
		return time.Time{}, nil
	}
	d, err := ParseRelative(expr)
	if err != nil {
		return time.Time{}, err
	}
	return startTime.Add(-d), nil
}
