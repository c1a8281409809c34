// Aerographus - Air Quality Analytics and AQI Inference
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

// Package config provides centralized configuration management for Aerographus.
//
// Configuration is loaded via Koanf v2 with layered sources (highest priority wins):
//  1. Built-in defaults for every optional setting
//  2. Optional YAML config file (config.yaml, CONFIG_PATH override)
//  3. Environment variables (legacy flat names mapped to nested paths)
//
// The resulting Config struct is immutable after Load() and safe for
// concurrent reads from every component.
package config
