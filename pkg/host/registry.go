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

package host

import (
	"fmt"
	"sync"
)

// Registry is a concurrency-safe Universe that classes are registered into
// as the host loads them.
type Registry struct {
	mu      sync.RWMutex
	classes []Class
	index   map[string]int
}

func NewRegistry() *Registry {
	return &Registry{
		index: make(map[string]int),
	}
}

// Register adds a class. Registering the same full name twice is an error.
func (r *Registry) Register(classes ...Class) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range classes {
		if c.FullName == "" {
			return errEmptyName
		}

		if _, exists := r.index[c.FullName]; exists {
			return fmt.Errorf("%w: %s", errDuplicateClass, c.FullName)
		}

		r.index[c.FullName] = len(r.classes)
		r.classes = append(r.classes, c)
	}

	return nil
}

// Unregister removes a class, reporting whether it was present.
func (r *Registry) Unregister(fullName string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	i, ok := r.index[fullName]
	if !ok {
		return false
	}

	r.classes = append(r.classes[:i], r.classes[i+1:]...)
	delete(r.index, fullName)

	for j := i; j < len(r.classes); j++ {
		r.index[r.classes[j].FullName] = j
	}

	return true
}

// Classes returns a copy of the registered classes in registration order.
func (r *Registry) Classes() []Class {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Class, len(r.classes))
	copy(out, r.classes)

	return out
}

// Len returns the number of registered classes.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.classes)
}
