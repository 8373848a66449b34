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

// Package models pkg/models/status.go
package models

import (
	"fmt"
	"strings"
	"time"
)

// Status is the connectivity state of the bridge towards its consumer.
type Status int

const (
	StatusUnknown Status = iota
	StatusOffline
	StatusOnline
	StatusError
)

var statusNames = [...]string{
	StatusUnknown: "unknown",
	StatusOffline: "offline",
	StatusOnline:  "online",
	StatusError:   "error",
}

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return fmt.Sprintf("status(%d)", int(s))
	}

	return statusNames[s]
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(b []byte) error {
	name := strings.ToLower(string(b))

	for i, n := range statusNames {
		if n == name {
			*s = Status(i)

			return nil
		}
	}

	return fmt.Errorf("%w: %q", ErrUnknownStatus, name)
}

// StatusChange is published whenever the connectivity status changes value.
type StatusChange struct {
	From  Status    `json:"from"`
	To    Status    `json:"to"`
	Cause string    `json:"cause,omitempty"`
	At    time.Time `json:"at"`
}
