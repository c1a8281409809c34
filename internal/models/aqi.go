// Aerographus - Air Quality Analytics and AQI Inference
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

package models

import (
	"time"

	"github.com/tomtom215/aerographus/internal/aqindex"
)

// PollutantConcentrations holds one reading in ug/m3. Fields are
// pointers so pollutants the upstream provider does not report serialize
// as null rather than a misleading zero.
type PollutantConcentrations struct {
	PM25    *float64 `json:"PM2.5"`
	PM10    *float64 `json:"PM10"`
	NO      *float64 `json:"NO"`
	NO2     *float64 `json:"NO2"`
	NOx     *float64 `json:"NOx"`
	NH3     *float64 `json:"NH3"`
	CO      *float64 `json:"CO"`
	SO2     *float64 `json:"SO2"`
	O3      *float64 `json:"O3"`
	Benzene *float64 `json:"Benzene"`
	Toluene *float64 `json:"Toluene"`
	Xylene  *float64 `json:"Xylene"`
}

// ToMap returns the reported (non-null) concentrations keyed by
// pollutant name, the shape the index math and the inference engine
// consume.
func (p *PollutantConcentrations) ToMap() map[string]float64 {
	if p == nil {
		return nil
	}
	out := make(map[string]float64)
	set := func(name string, v *float64) {
		if v != nil {
			out[name] = *v
		}
	}
	set("PM2.5", p.PM25)
	set("PM10", p.PM10)
	set("NO", p.NO)
	set("NO2", p.NO2)
	set("NOx", p.NOx)
	set("NH3", p.NH3)
	set("CO", p.CO)
	set("SO2", p.SO2)
	set("O3", p.O3)
	set("Benzene", p.Benzene)
	set("Toluene", p.Toluene)
	set("Xylene", p.Xylene)
	return out
}

// Coordinates is a WGS84 point.
type Coordinates struct {
	Lat float64 `json:"lat" validate:"latitude"`
	Lon float64 `json:"lon" validate:"longitude"`
}

// CityAQI is the computed air quality snapshot for one city.
type CityAQI struct {
	City       string                   `json:"city"`
	AQI        float64                  `json:"aqi"`
	Category   aqindex.Category         `json:"category"`
	Dominant   string                   `json:"dominant_pollutant,omitempty"`
	SubIndices map[string]float64       `json:"subindices,omitempty"`
	Pollutants *PollutantConcentrations `json:"pollutants,omitempty"`
	Coord      *Coordinates             `json:"coordinates,omitempty"`
	FetchedAt  time.Time                `json:"fetched_at"`
}

// WeatherSnapshot is the current-conditions view for one city.
type WeatherSnapshot struct {
	City        string    `json:"city"`
	Temp        float64   `json:"temp"`
	FeelsLike   float64   `json:"feels_like"`
	Humidity    int       `json:"humidity"`
	Pressure    int       `json:"pressure"`
	WindSpeed   float64   `json:"wind_speed"`
	WindDeg     int       `json:"wind_deg"`
	Clouds      int       `json:"clouds"`
	Visibility  int       `json:"visibility"`
	Condition   string    `json:"condition"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	Sunrise     int64     `json:"sunrise"`
	Sunset      int64     `json:"sunset"`
	FetchedAt   time.Time `json:"fetched_at"`
}

// ForecastEntry is one step of the hourly air quality forecast.
type ForecastEntry struct {
	Time       time.Time                `json:"time"`
	AQI        float64                  `json:"aqi"`
	Category   aqindex.Category         `json:"category"`
	Pollutants *PollutantConcentrations `json:"pollutants,omitempty"`
}

// HistoricalReading is one persisted city reading, served from DuckDB
// rather than the upstream provider.
type HistoricalReading struct {
	City       string                   `json:"city"`
	Time       time.Time                `json:"time"`
	AQI        float64                  `json:"aqi"`
	Pollutants *PollutantConcentrations `json:"pollutants,omitempty"`
}

// CityMapPoint is the minimal shape the map view plots.
type CityMapPoint struct {
	City     string           `json:"city"`
	Lat      float64          `json:"lat"`
	Lon      float64          `json:"lon"`
	AQI      float64          `json:"aqi"`
	Category aqindex.Category `json:"category"`
}

// TopCityEntry is one row of the ranked city listing.
type TopCityEntry struct {
	Rank     int              `json:"rank"`
	City     string           `json:"city"`
	Country  string           `json:"country,omitempty"`
	AQI      float64          `json:"aqi"`
	Category aqindex.Category `json:"category"`
}

// GeocodeResult is a resolved place name.
type GeocodeResult struct {
	Name    string  `json:"name"`
	Country string  `json:"country,omitempty"`
	State   string  `json:"state,omitempty"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// CityOverview bundles everything the city detail view renders.
type CityOverview struct {
	City    string           `json:"city"`
	AQI     *CityAQI         `json:"aqi,omitempty"`
	Weather *WeatherSnapshot `json:"weather,omitempty"`
}
