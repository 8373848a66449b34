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

package models

import "time"

// ResourceSample is one resource's quantity at capture time.
type ResourceSample struct {
	ID        string   `json:"id"`
	Balance   float64  `json:"balance"`
	NetPerMin *float64 `json:"net_per_min,omitempty"` // nil until a previous reading exists
}

// Snapshot is a single timestamped, sequenced capture of all resource samples.
// Resources is never nil.
type Snapshot struct {
	TS        int64                     `json:"ts"`
	Tick      int64                     `json:"tick"`
	Resources map[string]ResourceSample `json:"resources"`
}

// NewSnapshot builds a snapshot at the given time. A nil samples map is
// replaced by an empty one.
func NewSnapshot(at time.Time, tick int64, samples map[string]ResourceSample) Snapshot {
	if samples == nil {
		samples = make(map[string]ResourceSample)
	}

	return Snapshot{
		TS:        at.UnixMilli(),
		Tick:      tick,
		Resources: samples,
	}
}

// Quantities flattens the snapshot into the id -> balance map that goes on the wire.
func (s Snapshot) Quantities() map[string]float64 {
	out := make(map[string]float64, len(s.Resources))

	for id, sample := range s.Resources {
		out[id] = sample.Balance
	}

	return out
}

// Reading is what a state provider hands the bridge each cycle.
type Reading struct {
	Samples      map[string]ResourceSample
	Provider     string // e.g. "ProductsManager (reflection)"
	Method       string // accessor chain used, or why nothing was read
	Items        int
	Skipped      int  // items dropped for a failing accessor or non-finite quantity
	Partial      bool // enumeration stopped before the end
	Bound        bool
	BindAttempts int
}
