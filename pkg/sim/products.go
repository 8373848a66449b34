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

// Package sim is a stand-in for the game's product bookkeeping. Its types
// mirror the host's member names (Id, SlimIdManager, GetStatsFor) so the
// binder can be exercised without the game running.
package sim

import (
	"sync"
)

// ProductID identifies a product proto.
type ProductID struct {
	value string
}

func NewProductID(v string) ProductID { return ProductID{value: v} }

func (id ProductID) Value() string { return id.value }

type ProductProto struct {
	id ProductID
}

//nolint:revive,stylecheck // host member name
func (p *ProductProto) Id() ProductID { return p.id }

func (p *ProductProto) String() string { return "ProductProto[" + p.id.value + "]" }

// Quantity is an integral amount of a product.
type Quantity struct {
	Value int64
}

type ProductStats struct {
	mu      *sync.RWMutex
	product *ProductProto
	global  Quantity
}

func (s *ProductStats) Product() *ProductProto { return s.product }

func (s *ProductStats) GlobalQuantity() Quantity {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.global
}

// SlimIdManager tracks the protos currently managed by the products manager.
//
//nolint:revive,stylecheck // host type name
type SlimIdManager struct {
	mu     *sync.RWMutex
	protos []*ProductProto
}

func (m *SlimIdManager) ManagedProtos() []*ProductProto {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*ProductProto, len(m.protos))
	copy(out, m.protos)

	return out
}

type ProductsManager struct {
	mu    sync.RWMutex
	slim  *SlimIdManager
	stats map[ProductID]*ProductStats
}

func NewProductsManager() *ProductsManager {
	m := &ProductsManager{stats: make(map[ProductID]*ProductStats)}
	m.slim = &SlimIdManager{mu: &m.mu}

	return m
}

//nolint:revive,stylecheck // host member name
func (m *ProductsManager) SlimIdManager() *SlimIdManager { return m.slim }

// GetStatsFor returns the stats of a managed proto, or nil.
func (m *ProductsManager) GetStatsFor(p *ProductProto) *ProductStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if p == nil {
		return nil
	}

	return m.stats[p.id]
}

// Add registers a product, returning its proto. Adding an existing id
// returns the existing proto.
func (m *ProductsManager) Add(id string, qty int64) *ProductProto {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := NewProductID(id)
	if s, ok := m.stats[key]; ok {
		return s.product
	}

	p := &ProductProto{id: key}
	m.stats[key] = &ProductStats{mu: &m.mu, product: p, global: Quantity{Value: qty}}
	m.slim.protos = append(m.slim.protos, p)

	return p
}

// Adjust changes a product's quantity by delta, clamping at zero.
func (m *ProductsManager) Adjust(id string, delta int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.stats[NewProductID(id)]
	if !ok {
		return false
	}

	s.global.Value += delta
	if s.global.Value < 0 {
		s.global.Value = 0
	}

	return true
}

// Quantities returns a copy of all quantities keyed by id.
func (m *ProductsManager) Quantities() map[string]int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]int64, len(m.stats))
	for id, s := range m.stats {
		out[id.value] = s.global.Value
	}

	return out
}
