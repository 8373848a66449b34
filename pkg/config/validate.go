/*-
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultBaseURL        = "http://127.0.0.1:3001"
	DefaultProbePath      = "/health"
	DefaultIngestPath     = "/ingest"
	DefaultPollInterval   = 2 * time.Second
	DefaultRequestTimeout = 800 * time.Millisecond
	DefaultTickInterval   = 50 * time.Millisecond
	DefaultBindRetry      = time.Second
	DefaultPayloadLimit   = 8000
	DefaultSinkAddr       = "127.0.0.1:3001"
	DefaultSinkMaxBody    = 1 << 20

	ModeProbe  = "probe"
	ModeReport = "report"

	TransportHTTP1 = "http1"
	TransportH2C   = "h2c"
)

// DefaultBridgeConfig returns a validated config with every default applied.
func DefaultBridgeConfig() BridgeConfig {
	var c BridgeConfig

	_ = c.Validate()

	return c
}

// Validate fills in defaults and rejects values the bridge cannot run with.
func (c *BridgeConfig) Validate() error {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}

	c.BaseURL = strings.TrimRight(c.BaseURL, "/")

	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: base_url %q must be an absolute http(s) URL", ErrInvalidConfig, c.BaseURL)
	}

	if c.Mode == "" {
		c.Mode = ModeProbe
	}

	if c.Mode != ModeProbe && c.Mode != ModeReport {
		return fmt.Errorf("%w: mode %q must be %q or %q", ErrInvalidConfig, c.Mode, ModeProbe, ModeReport)
	}

	if c.ProbePath == "" {
		c.ProbePath = DefaultProbePath
	}

	if c.IngestPath == "" {
		c.IngestPath = DefaultIngestPath
	}

	for name, p := range map[string]string{"probe_path": c.ProbePath, "ingest_path": c.IngestPath} {
		if !strings.HasPrefix(p, "/") {
			return fmt.Errorf("%w: %s %q must start with '/'", ErrInvalidConfig, name, p)
		}
	}

	if err := defaultDuration("poll_interval", &c.PollInterval, DefaultPollInterval); err != nil {
		return err
	}

	if err := defaultDuration("request_timeout", &c.RequestTimeout, DefaultRequestTimeout); err != nil {
		return err
	}

	if err := defaultDuration("tick_interval", &c.TickInterval, DefaultTickInterval); err != nil {
		return err
	}

	if err := defaultDuration("bind_retry", &c.BindRetry, DefaultBindRetry); err != nil {
		return err
	}

	if c.PayloadLimit < 0 {
		return fmt.Errorf("%w: payload_limit must not be negative", ErrInvalidConfig)
	}

	if c.PayloadLimit == 0 {
		c.PayloadLimit = DefaultPayloadLimit
	}

	if c.Transport == "" {
		c.Transport = TransportHTTP1
	}

	if c.Transport != TransportHTTP1 && c.Transport != TransportH2C {
		return fmt.Errorf("%w: transport %q must be %q or %q", ErrInvalidConfig, c.Transport, TransportHTTP1, TransportH2C)
	}

	if c.Transport == TransportH2C && u.Scheme != "http" {
		return fmt.Errorf("%w: transport h2c needs an http:// base_url", ErrInvalidConfig)
	}

	return nil
}

// ProbeURL is the full URL probed in probe mode.
func (c *BridgeConfig) ProbeURL() string { return c.BaseURL + c.ProbePath }

// IngestURL is the full URL snapshots are posted to in report mode.
func (c *BridgeConfig) IngestURL() string { return c.BaseURL + c.IngestPath }

// Validate fills in sink defaults.
func (c *SinkConfig) Validate() error {
	if c.ListenAddr == "" {
		c.ListenAddr = DefaultSinkAddr
	}

	if c.MaxBody < 0 {
		return fmt.Errorf("%w: max_body must not be negative", ErrInvalidConfig)
	}

	if c.MaxBody == 0 {
		c.MaxBody = DefaultSinkMaxBody
	}

	return nil
}

func defaultDuration(name string, d *Duration, def time.Duration) error {
	if *d < 0 {
		return fmt.Errorf("%w: %s must not be negative", ErrInvalidConfig, name)
	}

	if *d == 0 {
		*d = Duration(def)
	}

	return nil
}
