// Aerographus - Air Quality Analytics and AQI Inference
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

package inference

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tomtom215/aerographus/internal/breaker"
	"github.com/tomtom215/aerographus/internal/config"
	"github.com/tomtom215/aerographus/internal/logging"
	"github.com/tomtom215/aerographus/internal/metrics"
)

// minArtifactSize guards against truncated writes. A real bundle is
// never this small, so anything under it is treated as absent.
const minArtifactSize = 10

// Store materializes the model artifact on local disk. It checks the
// configured path first and only reaches for the network when the local
// copy is missing or truncated, trying the primary URL before the
// mirror. Downloads land in a temp file and are published with an atomic
// rename, so a crashed download never corrupts a live artifact.
type Store struct {
	cfg     config.ModelConfig
	client  *http.Client
	primary *breaker.Breaker[struct{}]
	mirror  *breaker.Breaker[struct{}]
}

// NewStore builds a store from the model section of the configuration.
func NewStore(cfg config.ModelConfig) *Store {
	return &Store{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.DownloadTimeout},
		primary: breaker.New[struct{}]("artifact-primary"),
		mirror:  breaker.New[struct{}]("artifact-mirror"),
	}
}

// Path returns the local artifact location.
func (s *Store) Path() string {
	return s.cfg.Path
}

// Ensure guarantees a plausible artifact exists at Path. A valid local
// file short-circuits without any network traffic; otherwise each
// configured source is tried in order and the first success wins.
func (s *Store) Ensure(ctx context.Context) error {
	if s.localValid() {
		return nil
	}
	if s.cfg.URL == "" && s.cfg.MirrorURL == "" {
		return fmt.Errorf("%w: no artifact at %s and no download source configured", ErrArtifactUnavailable, s.cfg.Path)
	}
	if err := os.MkdirAll(filepath.Dir(s.cfg.Path), 0o750); err != nil {
		return fmt.Errorf("%w: create artifact directory: %v", ErrArtifactUnavailable, err)
	}

	var errs []error
	if s.cfg.URL != "" {
		err := s.downloadVia(ctx, s.primary, s.cfg.URL, "primary")
		if err == nil {
			return nil
		}
		errs = append(errs, fmt.Errorf("primary: %w", err))
	}
	if s.cfg.MirrorURL != "" {
		err := s.downloadVia(ctx, s.mirror, s.cfg.MirrorURL, "mirror")
		if err == nil {
			return nil
		}
		errs = append(errs, fmt.Errorf("mirror: %w", err))
	}

	return fmt.Errorf("%w: %w", ErrArtifactUnavailable, errors.Join(errs...))
}

// localValid reports whether the file at Path passes the cheap sanity
// checks that justify skipping a download.
func (s *Store) localValid() bool {
	info, err := os.Stat(s.cfg.Path)
	if err != nil {
		return false
	}
	if !info.Mode().IsRegular() {
		return false
	}
	if info.Size() < minArtifactSize {
		logging.Warn().Str("path", s.cfg.Path).Int64("size", info.Size()).Msg("Local model artifact is truncated, treating as absent")
		return false
	}
	return true
}

func (s *Store) downloadVia(ctx context.Context, br *breaker.Breaker[struct{}], url, transport string) error {
	start := time.Now()
	_, err := br.Execute(func() (struct{}, error) {
		return struct{}{}, s.download(ctx, url)
	})
	metrics.RecordArtifactDownload(transport, err == nil, time.Since(start))
	if err != nil {
		logging.Warn().Err(err).Str("transport", transport).Msg("Model artifact download failed")
		return err
	}
	logging.Info().Str("transport", transport).Str("path", s.cfg.Path).Dur("elapsed", time.Since(start)).Msg("Model artifact downloaded")
	return nil
}

// download fetches one URL into Path via a temp file. The temp file is
// removed on any failure so retries start clean.
func (s *Store) download(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/octet-stream")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		// Read a bounded slice of the body for the error message
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	tmp := s.cfg.Path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o640)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	written, err := io.Copy(f, resp.Body)
	if err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("write artifact: %w", err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("sync artifact: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close artifact: %w", err)
	}
	if written < minArtifactSize {
		_ = os.Remove(tmp)
		return fmt.Errorf("download truncated at %d bytes", written)
	}
	if err := os.Rename(tmp, s.cfg.Path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("publish artifact: %w", err)
	}
	return nil
}
