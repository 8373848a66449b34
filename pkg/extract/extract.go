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

// Package extract walks a bound host collection and produces the
// identifier -> quantity map for one snapshot.
package extract

import (
	"fmt"
	"iter"
	"log/slog"
	"math"
	"reflect"
	"strings"

	"github.com/carverauto/statsbridge/pkg/binder"
	"github.com/carverauto/statsbridge/pkg/logger"
)

const initialCapacity = 128

// Result is the outcome of one extraction.
type Result struct {
	Resources  map[string]float64 // never nil
	Items      int                // items enumerated, including skipped ones
	Skipped    int                // items whose accessors failed or returned a non-finite quantity
	Collisions int                // items whose identifier was already present
	Partial    bool               // the enumerator failed part-way
}

type Extractor struct {
	log *slog.Logger
}

func NewExtractor(log *slog.Logger) *Extractor {
	if log == nil {
		log = logger.With("extract")
	}

	return &Extractor{log: log}
}

// Extract reads every item of the binding with NewExtractor(nil).
func Extract(b *binder.Binding) (Result, error) {
	return NewExtractor(nil).Extract(b)
}

// Extract reads every item of the binding. Failing items are skipped, and a
// failing enumerator keeps what was read before it failed. The only error is
// ErrBindingUnusable, returned with an empty result when the enumerator
// itself cannot be obtained. A nil binding yields an empty result.
//
// Invalid UTF-8 in an identifier is replaced with U+FFFD. When two items
// share an identifier, before or after that replacement, the later one
// wins; every such collision is counted and logged.
func (e *Extractor) Extract(b *binder.Binding) (Result, error) {
	res := Result{Resources: make(map[string]float64)}

	if b == nil {
		return res, nil
	}

	seq, err := b.Items()
	if err != nil {
		return res, fmt.Errorf("%w: %w", ErrBindingUnusable, err)
	}

	res.Resources = make(map[string]float64, initialCapacity)

	stopped := walk(seq, func(item reflect.Value) {
		res.Items++

		q, err := b.Quantity(item)
		if err == nil && (math.IsNaN(q) || math.IsInf(q, 0)) {
			err = fmt.Errorf("%w: %v", ErrNonFiniteQuantity, q)
		}

		if err != nil {
			res.Skipped++
			e.log.Debug("skipping item", "index", res.Items-1, "error", fmt.Errorf("%w: %w", ErrItemFault, err))

			return
		}

		// identifiers go on the wire as JSON strings
		id := strings.ToValidUTF8(b.Identify(item), "\uFFFD")

		if prev, dup := res.Resources[id]; dup {
			res.Collisions++
			e.log.Warn("identifier collision, keeping last value", "id", id, "dropped", prev, "kept", q)
		}

		res.Resources[id] = q
	})

	if stopped != nil {
		res.Partial = true
		e.log.Warn("enumeration stopped early", "read", len(res.Resources), "error", stopped)
	}

	return res, nil
}

// walk ranges over seq, turning a panic raised by the sequence into an error.
// visit must not panic.
func walk(seq iter.Seq[reflect.Value], visit func(reflect.Value)) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrEnumeratorFault, r)
		}
	}()

	for item := range seq {
		visit(item)
	}

	return nil
}
