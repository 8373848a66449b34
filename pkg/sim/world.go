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

package sim

import (
	"fmt"
	"math/rand/v2"
	"reflect"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/carverauto/statsbridge/pkg/host"
)

// DependencyResolver hands out registered services by type.
type DependencyResolver struct {
	mu        sync.RWMutex
	instances map[reflect.Type]any
}

func NewDependencyResolver() *DependencyResolver {
	return &DependencyResolver{instances: make(map[reflect.Type]any)}
}

// Register makes v resolvable under its dynamic type.
func (r *DependencyResolver) Register(v any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.instances[reflect.TypeOf(v)] = v
}

// Resolve returns the instance registered for t.
func (r *DependencyResolver) Resolve(t reflect.Type) (any, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.instances[t]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errNotRegistered, t)
	}

	return v, nil
}

// World is a running game session. Its products manager is only reachable
// through DependencyResolver.Current, which stays nil until Load is called.
type World struct {
	Products *ProductsManager
	Resolver *DependencyResolver

	current atomic.Pointer[DependencyResolver]
	rng     *rand.Rand
	mu      sync.Mutex
	maxStep int64
}

// DefaultProducts is the starting inventory of a new world.
var DefaultProducts = map[string]int64{
	"Product_Coal":     1200,
	"Product_IronOre":  800,
	"Product_Iron":     250,
	"Product_Steel":    40,
	"Product_Water":    5000,
	"Product_Concrete": 90,
}

func NewWorld(seed uint64, products map[string]int64) *World {
	if products == nil {
		products = DefaultProducts
	}

	w := &World{
		Products: NewProductsManager(),
		Resolver: NewDependencyResolver(),
		rng:      rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		maxStep:  25,
	}

	for _, id := range sortedKeys(products) {
		w.Products.Add(id, products[id])
	}

	w.Resolver.Register(w.Products)

	return w
}

// Load publishes the resolver, as the game does once a save has loaded.
func (w *World) Load() { w.current.Store(w.Resolver) }

// Unload hides the resolver again.
func (w *World) Unload() { w.current.Store(nil) }

func (w *World) Loaded() bool { return w.current.Load() != nil }

// Step advances the simulation one tick, nudging every quantity by a
// random amount.
func (w *World) Step() {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, id := range sortedKeys(w.Products.Quantities()) {
		delta := w.rng.Int64N(2*w.maxStep+1) - w.maxStep
		w.Products.Adjust(id, delta)
	}
}

// Register exposes the world's classes to the host universe.
func (w *World) Register(r *host.Registry) error {
	return r.Register(
		host.Class{
			FullName: "Mafi.Core.Products.ProductsManager",
			Type:     host.TypeOf[*ProductsManager](),
		},
		host.Class{
			FullName: "Mafi.Core.Products.ProductProto",
			Type:     host.TypeOf[*ProductProto](),
		},
		host.Class{
			FullName: "Mafi.DependencyResolver",
			Type:     host.TypeOf[*DependencyResolver](),
			Statics: []host.Static{
				host.Property("Current", func() *DependencyResolver { return w.current.Load() }),
			},
		},
	)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	slices.Sort(keys)

	return keys
}
