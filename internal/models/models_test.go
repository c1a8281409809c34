// Aerographus - Air Quality Analytics and AQI Inference
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

package models

import (
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
)

func TestIsValidRole(t *testing.T) {
	tests := []struct {
		role string
		want bool
	}{
		{RoleUser, true},
		{RoleAdmin, true},
		{"viewer", false},
		{"", false},
		{"Admin", false},
	}
	for _, tt := range tests {
		if got := IsValidRole(tt.role); got != tt.want {
			t.Errorf("IsValidRole(%q) = %v, want %v", tt.role, got, tt.want)
		}
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Asha@Example.COM "); got != "asha@example.com" {
		t.Errorf("NormalizeEmail() = %q", got)
	}
}

func TestUserJSONOmitsPasswordHash(t *testing.T) {
	u := User{
		ID:           "u-1",
		Name:         "Asha",
		Email:        "asha@example.com",
		PasswordHash: "$2a$12$secret",
		City:         DefaultCity,
		Role:         RoleUser,
		CreatedAt:    time.Now(),
	}

	data, err := json.Marshal(u)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if strings.Contains(string(data), "secret") {
		t.Error("marshaled user leaks the password hash")
	}
}

func TestUserProfile(t *testing.T) {
	u := User{ID: "u-1", Name: "Asha", City: "Mumbai", Role: RoleUser}

	p := u.Profile(nil)
	if p.Favorites == nil {
		t.Error("Profile(nil) Favorites = nil, want empty slice for stable JSON")
	}

	p = u.Profile([]string{"Delhi", "Pune"})
	if len(p.Favorites) != 2 || p.City != "Mumbai" {
		t.Errorf("Profile() = %+v", p)
	}
}

func TestPollutantConcentrationsToMap(t *testing.T) {
	pm25 := 35.5
	co := 900.0
	p := &PollutantConcentrations{PM25: &pm25, CO: &co}

	got := p.ToMap()
	if len(got) != 2 {
		t.Fatalf("ToMap() has %d entries, want 2", len(got))
	}
	if got["PM2.5"] != 35.5 || got["CO"] != 900 {
		t.Errorf("ToMap() = %v", got)
	}

	var nilConc *PollutantConcentrations
	if nilConc.ToMap() != nil {
		t.Error("nil ToMap() != nil")
	}
}

func TestPollutantConcentrationsNullJSON(t *testing.T) {
	pm25 := 35.5
	p := PollutantConcentrations{PM25: &pm25}

	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	s := string(data)

	// Reported values appear under their display names; unreported
	// pollutants must be explicit nulls, not zeroes.
	if !strings.Contains(s, `"PM2.5":35.5`) {
		t.Errorf("marshaled = %s, want PM2.5 value", s)
	}
	if !strings.Contains(s, `"NOx":null`) {
		t.Errorf("marshaled = %s, want null NOx", s)
	}
	if !strings.Contains(s, `"Benzene":null`) {
		t.Errorf("marshaled = %s, want null Benzene", s)
	}
}

func TestTipMatches(t *testing.T) {
	tip := Tip{MinAQI: 101, MaxAQI: 200}

	tests := []struct {
		aqi  float64
		want bool
	}{
		{100, false},
		{101, true},
		{150, true},
		{200, true},
		{200.5, false},
	}
	for _, tt := range tests {
		if got := tip.Matches(tt.aqi); got != tt.want {
			t.Errorf("Matches(%v) = %v, want %v", tt.aqi, got, tt.want)
		}
	}
}
