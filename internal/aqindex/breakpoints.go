// Aerographus - Air Quality Analytics and AQI Inference
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

package aqindex

import "math"

// Pollutants is the fixed 12-pollutant universe in canonical model order.
// The prediction bundle's feature order defaults to this sequence when the
// artifact does not carry its own.
var Pollutants = []string{
	"PM2.5", "PM10", "NO", "NO2", "NOx", "NH3",
	"CO", "SO2", "O3", "Benzene", "Toluene", "Xylene",
}

// segment is one row of a CPCB breakpoint table: concentrations [CLo, CHi]
// map linearly onto sub-index values [ILo, IHi].
type segment struct {
	CLo, CHi float64
	ILo, IHi float64
}

// breakpointTables holds the CPCB sub-index tables, concentrations in µg/m³
// except CO which the standard defines in mg/m³ (SubIndex converts).
//
// Tables are monotonic with no gaps; values beyond the last segment
// extrapolate linearly along the last segment's slope. Pollutants without a
// table (NO, NO2, Benzene, Toluene, Xylene) have no defined sub-index and
// always score 0.
var breakpointTables = map[string][]segment{
	"PM2.5": {
		{0, 30, 0, 50},
		{30, 60, 50, 100},
		{60, 90, 100, 200},
		{90, 120, 200, 300},
		{120, 250, 300, 400},
		{250, 380, 400, 500},
	},
	"PM10": {
		{0, 50, 0, 50},
		{50, 100, 50, 100},
		{100, 250, 100, 200},
		{250, 350, 200, 300},
		{350, 430, 300, 400},
		{430, 510, 400, 500},
	},
	"SO2": {
		{0, 40, 0, 50},
		{40, 80, 50, 100},
		{80, 380, 100, 200},
		{380, 800, 200, 300},
		{800, 1600, 300, 400},
		{1600, 2400, 400, 500},
	},
	"NOx": {
		{0, 40, 0, 50},
		{40, 80, 50, 100},
		{80, 180, 100, 200},
		{180, 280, 200, 300},
		{280, 400, 300, 400},
		{400, 520, 400, 500},
	},
	"NH3": {
		{0, 200, 0, 50},
		{200, 400, 50, 100},
		{400, 800, 100, 200},
		{800, 1200, 200, 300},
		{1200, 1800, 300, 400},
		{1800, 2400, 400, 500},
	},
	// CO concentrations in mg/m³.
	"CO": {
		{0, 1, 0, 50},
		{1, 2, 50, 100},
		{2, 10, 100, 200},
		{10, 17, 200, 300},
		{17, 34, 300, 400},
		{34, 51, 400, 500},
	},
	"O3": {
		{0, 50, 0, 50},
		{50, 100, 50, 100},
		{100, 168, 100, 200},
		{168, 208, 200, 300},
		{208, 748, 300, 400},
		{748, 1288, 400, 500},
	},
}

// SubIndex computes the CPCB sub-index for one pollutant at the given
// concentration (µg/m³ for every pollutant; CO inputs are converted to mg/m³
// internally). Negative or NaN input yields 0, as does a pollutant without a
// breakpoint table. The result is unrounded; AllSubIndices applies the
// 1-decimal presentation rounding.
func SubIndex(pollutant string, value float64) float64 {
	if math.IsNaN(value) || value < 0 {
		return 0
	}

	table, ok := breakpointTables[pollutant]
	if !ok {
		return 0
	}

	if pollutant == "CO" {
		value /= 1000 // µg/m³ -> mg/m³
	}

	for _, seg := range table {
		if value <= seg.CHi {
			return interpolate(seg, value)
		}
	}

	// Beyond the table: extrapolate along the last segment's slope.
	return interpolate(table[len(table)-1], value)
}

func interpolate(seg segment, v float64) float64 {
	return seg.ILo + (v-seg.CLo)*(seg.IHi-seg.ILo)/(seg.CHi-seg.CLo)
}

// AllSubIndices computes the sub-index for every pollutant in the reading,
// rounds each to 1 decimal, and omits entries that come out zero or negative.
// Only "active" contributions are reported; a reading of all zeros produces
// an empty map. This filtering is documented behavior, not a bug.
func AllSubIndices(reading map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(reading))
	for pollutant, value := range reading {
		si := round1(SubIndex(pollutant, value))
		if si <= 0 {
			continue
		}
		out[pollutant] = si
	}
	return out
}

// HasSubIndexTable reports whether a breakpoint table exists for the
// pollutant. The weather proxy uses this to aggregate a city AQI from only
// the pollutants that carry a defined sub-index.
func HasSubIndexTable(pollutant string) bool {
	_, ok := breakpointTables[pollutant]
	return ok
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
