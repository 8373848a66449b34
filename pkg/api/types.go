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


package api

import "github.com/carverauto/statsbridge/pkg/models"

//go:generate mockgen -destination=mock_api.go -package=api github.com/carverauto/statsbridge/pkg/api Source

// Source is the bridge as the diagnostics server sees it.
type Source interface {
	Diagnostics() models.Diagnostics
	ForceProbe()
}

type MessageType string

const (
	MessageHello    MessageType = "hello"
	MessageSnapshot MessageType = "snapshot"
	MessageStatus   MessageType = "status"
)

// StreamMessage is one frame on /api/stream. Hello carries the diagnostics
// at connect time.
type StreamMessage struct {
	Type        MessageType          `json:"type"`
	Snapshot    *models.Snapshot     `json:"snapshot,omitempty"`
	Status      *models.StatusChange `json:"status,omitempty"`
	Diagnostics *models.Diagnostics  `json:"diagnostics,omitempty"`
}
