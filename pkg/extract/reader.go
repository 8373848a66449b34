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

package extract

import (
	"log/slog"
	"sync"
	"time"

	"github.com/carverauto/statsbridge/pkg/binder"
	"github.com/carverauto/statsbridge/pkg/logger"
	"github.com/carverauto/statsbridge/pkg/models"
)

const (
	MethodPending      = "binding pending (load a save)"
	MethodFailedPrefix = "read failed: "
)

// Reader binds lazily and turns each extraction into a models.Reading,
// deriving per-minute rates from the previous reading.
type Reader struct {
	binder *binder.Binder
	ext    *Extractor
	now    func() time.Time
	log    *slog.Logger

	mu     sync.Mutex
	prev   map[string]float64
	prevAt time.Time
}

type ReaderOption func(*Reader)

func WithReaderClock(now func() time.Time) ReaderOption {
	return func(r *Reader) { r.now = now }
}

func WithReaderLogger(l *slog.Logger) ReaderOption {
	return func(r *Reader) { r.log = l }
}

func NewReader(b *binder.Binder, opts ...ReaderOption) *Reader {
	r := &Reader{
		binder: b,
		now:    time.Now,
		log:    logger.With("extract"),
	}

	for _, opt := range opts {
		opt(r)
	}

	r.ext = NewExtractor(r.log)

	return r
}

// Read takes one reading. It never fails: an absent binding yields an empty
// reading with MethodPending, an unusable one is discarded and reported in
// Method.
func (r *Reader) Read() models.Reading {
	r.mu.Lock()
	defer r.mu.Unlock()

	schema := r.binder.Schema()
	reading := models.Reading{
		Samples:  make(map[string]models.ResourceSample),
		Provider: schema.ProviderDescription(),
		Method:   MethodPending,
	}

	binding := r.binder.Bind()
	reading.BindAttempts = r.binder.Attempts()

	if binding == nil {
		return reading
	}

	res, err := r.ext.Extract(binding)
	if err != nil {
		r.log.Warn("host binding unusable, rebinding", "error", err)
		r.binder.Reset()
		r.prev = nil

		reading.Method = MethodFailedPrefix + err.Error()

		return reading
	}

	now := r.now()
	elapsed := now.Sub(r.prevAt)

	for id, q := range res.Resources {
		sample := models.ResourceSample{ID: id, Balance: q}

		if last, ok := r.prev[id]; ok && elapsed > 0 {
			rate := (q - last) / elapsed.Minutes()
			sample.NetPerMin = &rate
		}

		reading.Samples[id] = sample
	}

	r.prev = res.Resources
	r.prevAt = now

	reading.Provider = binding.Provider
	reading.Method = binding.Method
	reading.Items = res.Items
	reading.Skipped = res.Skipped
	reading.Partial = res.Partial
	reading.Bound = true

	return reading
}
