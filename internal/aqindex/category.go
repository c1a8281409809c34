// Aerographus - Air Quality Analytics and AQI Inference
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

package aqindex

// Category is a discrete AQI severity band with the presentation metadata the
// dashboard renders (Tailwind utility classes plus a chart hex color). The
// metadata is an opaque payload as far as the core is concerned; only the
// Category name is semantically load-bearing.
type Category struct {
	Category    string `json:"category"`
	Description string `json:"description"`
	TextColor   string `json:"textColor"`
	BorderColor string `json:"borderColor"`
	BgColor     string `json:"bgColor"`
	ChartColor  string `json:"chartColor"`
}

// The seven CPCB severity bands. Invalid covers absent or non-numeric input.
var (
	CategoryGood = Category{
		Category:    "Good",
		Description: "Minimal impact.",
		TextColor:   "text-green-400",
		BorderColor: "border-green-500",
		BgColor:     "bg-green-500/20",
		ChartColor:  "#34d399",
	}
	CategorySatisfactory = Category{
		Category:    "Satisfactory",
		Description: "Minor breathing discomfort.",
		TextColor:   "text-yellow-400",
		BorderColor: "border-yellow-500",
		BgColor:     "bg-yellow-500/20",
		ChartColor:  "#f59e0b",
	}
	CategoryModerate = Category{
		Category:    "Moderate",
		Description: "Breathing discomfort to sensitive groups.",
		TextColor:   "text-orange-400",
		BorderColor: "border-orange-500",
		BgColor:     "bg-orange-500/20",
		ChartColor:  "#f97316",
	}
	CategoryPoor = Category{
		Category:    "Poor",
		Description: "Breathing discomfort to most people.",
		TextColor:   "text-red-400",
		BorderColor: "border-red-500",
		BgColor:     "bg-red-500/20",
		ChartColor:  "#ef4444",
	}
	CategoryVeryPoor = Category{
		Category:    "Very Poor",
		Description: "Respiratory illness on prolonged exposure.",
		TextColor:   "text-purple-400",
		BorderColor: "border-purple-500",
		BgColor:     "bg-purple-500/20",
		ChartColor:  "#a855f7",
	}
	CategorySevere = Category{
		Category:    "Severe",
		Description: "Serious health effects.",
		TextColor:   "text-rose-700",
		BorderColor: "border-rose-700",
		BgColor:     "bg-rose-800/20",
		ChartColor:  "#be123c",
	}
	CategoryInvalid = Category{
		Category:    "N/A",
		Description: "AQI data invalid.",
		TextColor:   "text-slate-400",
		BorderColor: "border-slate-500",
		BgColor:     "bg-slate-500/10",
		ChartColor:  "#64748b",
	}
)

// Classify maps a scalar AQI to its severity band. A nil input classifies as
// Invalid. Band boundaries are closed on the upper end (50 is Good, 50.01 is
// Satisfactory). Negative values fall into the Good band via the <=50 check;
// that matches the historical behavior and is deliberate.
//
// Classify is pure and total: it never fails.
func Classify(aqi *float64) Category {
	if aqi == nil {
		return CategoryInvalid
	}
	return ClassifyValue(*aqi)
}

// ClassifyValue is Classify for callers that always have a value.
func ClassifyValue(v float64) Category {
	switch {
	case v <= 50:
		return CategoryGood
	case v <= 100:
		return CategorySatisfactory
	case v <= 200:
		return CategoryModerate
	case v <= 300:
		return CategoryPoor
	case v <= 400:
		return CategoryVeryPoor
	default:
		return CategorySevere
	}
}
