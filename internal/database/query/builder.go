// Aerographus - Air Quality Analytics and AQI Inference
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

// Package query provides SQL query building utilities for the database
// package. It reduces duplication and keeps every filter parameterized.
package query

import (
	"fmt"
	"strings"
	"time"
)

// WhereBuilder constructs SQL WHERE clauses with parameterized arguments.
//
// Example usage:
//
//	wb := query.NewWhereBuilder()
//	wb.AddCity("Delhi")
//	wb.AddTimeRange(&since, nil)
//	whereClause, args := wb.BuildWithPrefix()
//	// WHERE lower(city) = lower(?) AND observed_at >= ?
type WhereBuilder struct {
	clauses []string
	args    []interface{}
}

// NewWhereBuilder creates a new WhereBuilder instance.
func NewWhereBuilder() *WhereBuilder {
	return &WhereBuilder{
		clauses: []string{},
		args:    []interface{}{},
	}
}

// AddClause adds a raw WHERE clause with its arguments. Useful for
// conditions not covered by the helper methods.
func (wb *WhereBuilder) AddClause(clause string, args ...interface{}) *WhereBuilder {
	wb.clauses = append(wb.clauses, clause)
	wb.args = append(wb.args, args...)
	return wb
}

// AddCity adds a case-insensitive city filter. Empty city is skipped.
func (wb *WhereBuilder) AddCity(city string) *WhereBuilder {
	if city != "" {
		wb.clauses = append(wb.clauses, "lower(city) = lower(?)")
		wb.args = append(wb.args, city)
	}
	return wb
}

// AddCities adds a case-insensitive city filter using an IN clause.
// An empty slice is skipped.
func (wb *WhereBuilder) AddCities(cities []string) *WhereBuilder {
	if len(cities) > 0 {
		placeholders := make([]string, len(cities))
		for i, city := range cities {
			placeholders[i] = "lower(?)"
			wb.args = append(wb.args, city)
		}
		wb.clauses = append(wb.clauses, fmt.Sprintf("lower(city) IN (%s)", strings.Join(placeholders, ", ")))
	}
	return wb
}

// AddTimeRange adds observation-time bounds. Nil bounds are skipped,
// allowing open-ended windows.
func (wb *WhereBuilder) AddTimeRange(since, until *time.Time) *WhereBuilder {
	if since != nil {
		wb.clauses = append(wb.clauses, "observed_at >= ?")
		wb.args = append(wb.args, since.UTC())
	}
	if until != nil {
		wb.clauses = append(wb.clauses, "observed_at <= ?")
		wb.args = append(wb.args, until.UTC())
	}
	return wb
}

// AddAQIRange adds AQI bounds. Negative bounds are skipped.
func (wb *WhereBuilder) AddAQIRange(min, max float64) *WhereBuilder {
	if min >= 0 {
		wb.clauses = append(wb.clauses, "aqi >= ?")
		wb.args = append(wb.args, min)
	}
	if max >= 0 {
		wb.clauses = append(wb.clauses, "aqi <= ?")
		wb.args = append(wb.args, max)
	}
	return wb
}

// Build returns the combined conditions without the WHERE keyword,
// suitable for appending to an existing WHERE.
func (wb *WhereBuilder) Build() (string, []interface{}) {
	if len(wb.clauses) == 0 {
		return "", wb.args
	}
	return strings.Join(wb.clauses, " AND "), wb.args
}

// BuildWithPrefix returns the conditions prefixed with " WHERE ", or an
// empty string when no conditions were added.
func (wb *WhereBuilder) BuildWithPrefix() (string, []interface{}) {
	clause, args := wb.Build()
	if clause == "" {
		return "", args
	}
	return " WHERE " + clause, args
}

// Count returns the number of conditions added so far.
func (wb *WhereBuilder) Count() int {
	return len(wb.clauses)
}

// IsEmpty reports whether no conditions were added.
func (wb *WhereBuilder) IsEmpty() bool {
	return len(wb.clauses) == 0
}
