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

package bridge

import (
	"log/slog"
	"time"

	"github.com/carverauto/statsbridge/pkg/models"
)

// statusTracker holds the connectivity status and logs only real changes.
type statusTracker struct {
	current models.Status
	log     *slog.Logger
}

func (s *statusTracker) set(to models.Status, cause string, at time.Time) (models.StatusChange, bool) {
	if to == s.current {
		return models.StatusChange{}, false
	}

	change := models.StatusChange{From: s.current, To: to, Cause: cause, At: at}
	s.current = to

	if cause == "" {
		s.log.Info("connectivity status changed", "from", change.From, "to", change.To)
	} else {
		s.log.Info("connectivity status changed", "from", change.From, "to", change.To, "cause", cause)
	}

	return change, true
}
