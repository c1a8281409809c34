// Aerographus - Air Quality Analytics and AQI Inference
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

package query

import (
	"testing"
	"time"
)

func TestWhereBuilderEmpty(t *testing.T) {
	t.Parallel()

	wb := NewWhereBuilder()
	if !wb.IsEmpty() {
		t.Error("new builder should be empty")
	}

	clause, args := wb.Build()
	if clause != "" || len(args) != 0 {
		t.Errorf("Build() = (%q, %v), want empty", clause, args)
	}
	prefixed, _ := wb.BuildWithPrefix()
	if prefixed != "" {
		t.Errorf("BuildWithPrefix() = %q, want empty", prefixed)
	}
}

func TestWhereBuilderCity(t *testing.T) {
	t.Parallel()

	clause, args := NewWhereBuilder().AddCity("Delhi").Build()
	if clause != "lower(city) = lower(?)" {
		t.Errorf("clause = %q", clause)
	}
	if len(args) != 1 || args[0] != "Delhi" {
		t.Errorf("args = %v", args)
	}

	// Empty city is skipped.
	if !NewWhereBuilder().AddCity("").IsEmpty() {
		t.Error("empty city should add no clause")
	}
}

func TestWhereBuilderCities(t *testing.T) {
	t.Parallel()

	clause, args := NewWhereBuilder().AddCities([]string{"Delhi", "Mumbai"}).Build()
	want := "lower(city) IN (lower(?), lower(?))"
	if clause != want {
		t.Errorf("clause = %q, want %q", clause, want)
	}
	if len(args) != 2 {
		t.Errorf("args = %v, want 2 entries", args)
	}
}

func TestWhereBuilderTimeRange(t *testing.T) {
	t.Parallel()

	since := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	until := since.Add(24 * time.Hour)

	tests := []struct {
		name       string
		since      *time.Time
		until      *time.Time
		wantCount  int
		wantClause string
	}{
		{name: "both bounds", since: &since, until: &until, wantCount: 2,
			wantClause: "observed_at >= ? AND observed_at <= ?"},
		{name: "since only", since: &since, wantCount: 1, wantClause: "observed_at >= ?"},
		{name: "open", wantCount: 0, wantClause: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			wb := NewWhereBuilder().AddTimeRange(tt.since, tt.until)
			clause, args := wb.Build()
			if clause != tt.wantClause {
				t.Errorf("clause = %q, want %q", clause, tt.wantClause)
			}
			if len(args) != tt.wantCount {
				t.Errorf("args = %v, want %d entries", args, tt.wantCount)
			}
		})
	}
}

func TestWhereBuilderCombined(t *testing.T) {
	t.Parallel()

	since := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	clause, args := NewWhereBuilder().
		AddCity("Delhi").
		AddTimeRange(&since, nil).
		AddAQIRange(100, 400).
		AddClause("aqi IS NOT NULL").
		BuildWithPrefix()

	want := " WHERE lower(city) = lower(?) AND observed_at >= ? AND aqi >= ? AND aqi <= ? AND aqi IS NOT NULL"
	if clause != want {
		t.Errorf("clause = %q, want %q", clause, want)
	}
	if len(args) != 4 {
		t.Errorf("args = %v, want 4 entries", args)
	}
}
