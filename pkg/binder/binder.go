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

// Package binder locates the host's authoritative state container at runtime
// and resolves the accessors needed to read resource quantities from it.
//
// Discovery is expensive, so failed attempts are throttled; a successful
// binding is cached until Reset is called.
package binder

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/carverauto/statsbridge/pkg/host"
	"github.com/carverauto/statsbridge/pkg/logger"
	"golang.org/x/time/rate"
)

const DefaultRetryInterval = time.Second

type Binder struct {
	universe host.Universe
	schema   Schema
	log      *slog.Logger
	now      func() time.Time

	mu       sync.Mutex
	limiter  *rate.Limiter
	binding  *Binding
	attempts int
	lastErr  error
}

type Option func(*Binder)

// WithRetryInterval sets the minimum time between discovery attempts.
func WithRetryInterval(d time.Duration) Option {
	return func(b *Binder) {
		if d > 0 {
			b.limiter = rate.NewLimiter(rate.Every(d), 1)
		}
	}
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(b *Binder) { b.now = now }
}

func WithLogger(l *slog.Logger) Option {
	return func(b *Binder) { b.log = l }
}

func New(u host.Universe, schema Schema, opts ...Option) *Binder {
	b := &Binder{
		universe: u,
		schema:   schema,
		log:      logger.With("binder"),
		now:      time.Now,
		limiter:  rate.NewLimiter(rate.Every(DefaultRetryInterval), 1),
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Bind returns the cached binding, or attempts discovery when none is cached
// and the retry throttle allows it. It returns nil when the host state is
// not reachable yet; it never panics.
func (b *Binder) Bind() *Binding {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.binding != nil {
		return b.binding
	}

	if !b.limiter.AllowN(b.now(), 1) {
		return nil
	}

	b.attempts++

	binding, err := b.discover()
	if err != nil {
		b.lastErr = err
		b.log.Debug("binding unavailable", "attempt", b.attempts, "error", err)

		return nil
	}

	b.binding = binding
	b.lastErr = nil

	b.log.Info("bound host state",
		"provider", binding.Provider,
		"strategy", binding.Strategy,
		"source", binding.Source,
		"keyed_by_id", binding.HasIdentifier())

	return binding
}

// Reset discards the cached binding so the next Bind rediscovers.
func (b *Binder) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.binding != nil {
		b.log.Info("discarding host binding", "provider", b.binding.Provider)
	}

	b.binding = nil
}

// Attempts returns how many discovery runs have been made.
func (b *Binder) Attempts() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.attempts
}

// LastError returns the cause of the most recent failed discovery, if any.
func (b *Binder) LastError() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.lastErr
}

func (b *Binder) Schema() Schema {
	return b.schema
}

func (b *Binder) discover() (binding *Binding, err error) {
	defer func() {
		if r := recover(); r != nil {
			binding, err = nil, fmt.Errorf("%w: %w: %v", ErrBindingUnavailable, ErrHostPanic, r)
		}
	}()

	classes := b.universe.Classes()

	target, err := findTarget(classes, b.schema)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBindingUnavailable, err)
	}

	loc, err := locate(classes, target)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBindingUnavailable, err)
	}

	binding, err = newBinding(loc, b.schema)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBindingUnavailable, err)
	}

	return binding, nil
}
