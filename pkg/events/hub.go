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

package events

import (
	"log/slog"

	"github.com/carverauto/statsbridge/pkg/models"
)

//go:generate mockgen -destination=mock_events.go -package=events github.com/carverauto/statsbridge/pkg/events Publisher

// Publisher is what the bridge announces events through.
type Publisher interface {
	PublishSnapshot(models.Snapshot)
	PublishStatus(models.StatusChange)
}

// Hub is the Publisher consumers subscribe to.
type Hub struct {
	snapshots *Topic[models.Snapshot]
	status    *Topic[models.StatusChange]
}

func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		snapshots: NewTopic[models.Snapshot]("snapshot", log),
		status:    NewTopic[models.StatusChange]("status", log),
	}
}

func (h *Hub) PublishSnapshot(s models.Snapshot)   { h.snapshots.Publish(s) }
func (h *Hub) PublishStatus(c models.StatusChange) { h.status.Publish(c) }

// OnSnapshot subscribes to every snapshot published after a successful cycle.
func (h *Hub) OnSnapshot(fn func(models.Snapshot)) *Subscription {
	return h.snapshots.Subscribe(fn)
}

// OnStatus subscribes to connectivity status changes.
func (h *Hub) OnStatus(fn func(models.StatusChange)) *Subscription {
	return h.status.Subscribe(fn)
}

// Subscribers returns the number of snapshot and status subscriptions.
func (h *Hub) Subscribers() (snapshots, status int) {
	return h.snapshots.Len(), h.status.Len()
}
