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
	"context"
	"time"
)

// Runner stands in for a host scheduler: it ticks the bridge at a fixed
// frame rate on a single goroutine.
type Runner struct {
	Bridge *Bridge
	Every  time.Duration
	// OnFrame runs on the tick goroutine before each Tick.
	OnFrame func()
}

// Start ticks until ctx is canceled.
func (r *Runner) Start(ctx context.Context) error {
	every := r.Every
	if every <= 0 {
		every = 50 * time.Millisecond
	}

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	r.Bridge.log.Info("bridge running", "mode", r.Bridge.cfg.Mode, "endpoint", r.Bridge.cfg.endpoint(), "frame", every)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if r.OnFrame != nil {
				r.OnFrame()
			}

			r.Bridge.Tick()
		}
	}
}

// Stop tears the bridge down.
func (r *Runner) Stop(context.Context) error {
	r.Bridge.Close()

	return nil
}
