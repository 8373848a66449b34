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

// Package events fans bridge events out to subscribers.
package events

import (
	"log/slog"
	"slices"
	"sync"

	"github.com/carverauto/statsbridge/pkg/logger"
)

// Topic delivers values of one type to its subscribers, in subscription order.
type Topic[T any] struct {
	name string
	log  *slog.Logger

	mu     sync.RWMutex
	nextID uint64
	subs   []subscriber[T]
}

type subscriber[T any] struct {
	id uint64
	fn func(T)
}

func NewTopic[T any](name string, log *slog.Logger) *Topic[T] {
	if log == nil {
		log = logger.With("events")
	}

	return &Topic[T]{name: name, log: log}
}

// Subscribe registers fn. The handler runs on the publisher's goroutine and
// must not block. Close the returned subscription to stop delivery.
func (t *Topic[T]) Subscribe(fn func(T)) *Subscription {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.nextID++
	id := t.nextID
	t.subs = append(t.subs, subscriber[T]{id: id, fn: fn})

	return &Subscription{cancel: func() { t.remove(id) }}
}

// Publish calls every current subscriber with v. A panicking subscriber is
// logged and does not affect the others.
func (t *Topic[T]) Publish(v T) {
	t.mu.RLock()
	subs := slices.Clone(t.subs)
	t.mu.RUnlock()

	for _, s := range subs {
		t.deliver(s, v)
	}
}

// Len returns the number of active subscriptions.
func (t *Topic[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return len(t.subs)
}

func (t *Topic[T]) deliver(s subscriber[T], v T) {
	defer func() {
		if r := recover(); r != nil {
			t.log.Error("subscriber panicked", "topic", t.name, "subscription", s.id, "panic", r)
		}
	}()

	s.fn(v)
}

func (t *Topic[T]) remove(id uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.subs = slices.DeleteFunc(t.subs, func(s subscriber[T]) bool { return s.id == id })
}

// Subscription is a registration handle. Close is idempotent and safe on nil.
type Subscription struct {
	once   sync.Once
	cancel func()
}

func (s *Subscription) Close() {
	if s == nil {
		return
	}

	s.once.Do(s.cancel)
}

// Group releases several subscriptions together.
type Group []*Subscription

func (g Group) Close() {
	for _, s := range g {
		s.Close()
	}
}
