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

type Mode string

const (
	ModeProbe  Mode = "probe"  // GET the consumer's probe path
	ModeReport Mode = "report" // POST serialized snapshots to the ingest path
)

// Diagnostics is a read-only copy of the bridge's observable state.
type Diagnostics struct {
	Status          Status    `json:"status"`
	LastError       string    `json:"last_error,omitempty"`
	LastPayload     string    `json:"last_payload,omitempty"`
	PayloadBytes    int       `json:"payload_bytes"`
	Provider        string    `json:"provider"`
	Method          string    `json:"method"`
	Items           int       `json:"items"`
	Skipped         int       `json:"skipped"`
	Partial         bool      `json:"partial"`
	BindAttempts    int       `json:"bind_attempts"`
	RemoteResources int       `json:"remote_resources"`
	LastReportAt    time.Time `json:"last_report_at,omitempty"`
	NextTick        int64     `json:"next_tick"`
	Mode            Mode      `json:"mode"`
	InFlight        bool      `json:"in_flight"`
	Endpoint        string    `json:"endpoint"`
}
