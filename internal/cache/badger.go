// Aerographus - Air Quality Analytics and AQI Inference
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

package cache

import (
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/aerographus/internal/config"
	"github.com/tomtom215/aerographus/internal/logging"
	"github.com/tomtom215/aerographus/internal/metrics"
)

// ErrMiss is returned when a key is absent or expired.
var ErrMiss = errors.New("cache miss")

// Store is a persistent TTL cache on BadgerDB.
type Store struct {
	db *badger.DB
}

// New opens the cache. With cfg.InMemory set, nothing touches disk.
func New(cfg *config.CacheConfig) (*Store, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(cfg.Path)
	}
	// Badger's default logger prints directly to stderr; route through
	// our logger instead.
	opts = opts.WithLogger(badgerLogger{})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache store: %w", err)
	}
	return &Store{db: db}, nil
}

// Close flushes and closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the raw bytes stored under key, or ErrMiss.
func (s *Store) Get(kind, key string) ([]byte, error) {
	var out []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(storageKey(kind, key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrMiss
		}
		if err != nil {
			return fmt.Errorf("cache get: %w", err)
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrMiss) {
			metrics.RecordCacheMiss(kind)
		}
		return nil, err
	}
	metrics.RecordCacheHit(kind)
	return out, nil
}

// Set stores raw bytes under key with the given lifetime.
func (s *Store) Set(kind, key string, value []byte, ttl time.Duration) error {
	return s.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(storageKey(kind, key), value)
		if ttl > 0 {
			entry = entry.WithTTL(ttl)
		}
		return txn.SetEntry(entry)
	})
}

// Delete removes a key. Deleting an absent key is not an error.
func (s *Store) Delete(kind, key string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete(storageKey(kind, key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
}

// GetJSON unmarshals a cached JSON value into dst.
func (s *Store) GetJSON(kind, key string, dst any) error {
	data, err := s.Get(kind, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		// A corrupt entry behaves like a miss; the caller refetches
		// and overwrites it.
		return fmt.Errorf("%w: corrupt entry: %v", ErrMiss, err)
	}
	return nil
}

// SetJSON marshals value and stores it with the given lifetime.
func (s *Store) SetJSON(kind, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return s.Set(kind, key, data, ttl)
}

// StartGC runs Badger value-log garbage collection on the given
// interval until stop is closed. Reclaims space left by expired
// entries; ErrNoRewrite simply means there was nothing to collect.
func (s *Store) StartGC(interval time.Duration, stop <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				for {
					err := s.db.RunValueLogGC(0.5)
					if err != nil {
						if !errors.Is(err, badger.ErrNoRewrite) {
							logging.Debug().Err(err).Msg("Cache GC pass ended")
						}
						break
					}
				}
			case <-stop:
				return
			}
		}
	}()
}

func storageKey(kind, key string) []byte {
	return []byte(kind + ":" + key)
}

// badgerLogger adapts Badger's logger interface to zerolog. Badger is
// chatty at INFO during compactions, so its info output maps to debug.
type badgerLogger struct{}

func (badgerLogger) Errorf(format string, args ...interface{}) {
	logging.Error().Msgf("badger: "+format, args...)
}

func (badgerLogger) Warningf(format string, args ...interface{}) {
	logging.Warn().Msgf("badger: "+format, args...)
}

func (badgerLogger) Infof(format string, args ...interface{}) {
	logging.Debug().Msgf("badger: "+format, args...)
}

func (badgerLogger) Debugf(format string, args ...interface{}) {
	logging.Debug().Msgf("badger: "+format, args...)
}
