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

package binder

import (
	"fmt"
	"iter"
	"reflect"
)

// Binding is a fully resolved handle on the host's state container. It is
// never partially populated and never modified after construction.
type Binding struct {
	Provider string   // e.g. "ProductsManager (reflection)"
	Method   string   // e.g. "GetStatsFor(proto).GlobalQuantity.Value"
	Strategy Strategy // how the instance was found
	Source   string   // the member that produced the instance

	target   reflect.Value
	itemType reflect.Type
	items    chain
	lookup   *lookup
	quantity chain
	id       chain // nil when the identifier accessor did not resolve
	idLeaf   *step
}

func newBinding(loc located, s Schema) (*Binding, error) {
	if len(s.Items) == 0 {
		return nil, fmt.Errorf("%w: no items path", errAccessorMissing)
	}

	if len(s.Quantity) == 0 && s.Lookup == "" {
		return nil, fmt.Errorf("%w: no quantity path", errAccessorMissing)
	}

	target := reflect.ValueOf(loc.instance)
	tt := target.Type()

	items, err := resolveChain(tt, s.Items)
	if err != nil {
		return nil, err
	}

	itemType, ok := elemType(items.out(tt))
	if !ok {
		return nil, fmt.Errorf("%w: %s", errNotEnumerable, items.out(tt))
	}

	b := &Binding{
		Provider: s.ProviderDescription(),
		Method:   s.MethodDescription(),
		Strategy: loc.strategy,
		Source:   loc.via,
		target:   target,
		itemType: itemType,
		items:    items,
	}

	statsType := itemType

	if s.Lookup != "" {
		l, err := resolveLookup(tt, s.Lookup, itemType)
		if err != nil {
			return nil, err
		}

		b.lookup = &l
		statsType = l.out
	}

	if b.quantity, err = resolveChain(statsType, s.Quantity); err != nil {
		return nil, err
	}

	qt := b.quantity.out(statsType)
	if qt.Kind() == reflect.Pointer {
		qt = qt.Elem()
	}

	if !numericKind(qt.Kind()) {
		return nil, fmt.Errorf("%w: %s.%v is %s", errNotNumeric, statsType, s.Quantity, qt)
	}

	if len(s.ID) > 0 {
		if id, err := resolveChain(itemType, s.ID); err == nil {
			b.id = id
			idType := id.out(itemType)

			for _, leaf := range s.IDLeaf {
				if st, ok := resolveStep(idType, leaf); ok {
					b.idLeaf = &st

					break
				}
			}
		}
	}

	return b, nil
}

// Target returns the bound host instance.
func (b *Binding) Target() any {
	return b.target.Interface()
}

// HasIdentifier reports whether items are keyed by a resolved identifier
// accessor rather than their default string form.
func (b *Binding) HasIdentifier() bool {
	return b.id != nil
}

// Items evaluates the enumerator accessor. The returned sequence calls into
// host code and may panic while being ranged over.
func (b *Binding) Items() (iter.Seq[reflect.Value], error) {
	var seq iter.Seq[reflect.Value]

	_, err := guard(func() (any, error) {
		v, err := b.items.apply(b.target)
		if err != nil {
			return nil, err
		}

		seq, err = enumerate(v)

		return nil, err
	})

	return seq, err
}

// Quantity reads one item's quantity.
func (b *Binding) Quantity(item reflect.Value) (float64, error) {
	var q float64

	_, err := guard(func() (any, error) {
		stats := item

		if b.lookup != nil {
			var err error
			if stats, err = b.lookup.apply(b.target, item); err != nil {
				return nil, err
			}
		}

		v, err := b.quantity.apply(stats)
		if err != nil {
			return nil, err
		}

		q, err = toFloat(v)

		return nil, err
	})

	return q, err
}

// Identify returns an item's identifier: the identifier leaf when it is a
// non-empty string, else the identifier's string form, else the item's.
func (b *Binding) Identify(item reflect.Value) string {
	if b.id != nil {
		var id string

		_, err := guard(func() (any, error) {
			idv, err := b.id.apply(item)
			if err != nil {
				return nil, err
			}

			if b.idLeaf != nil {
				if leaf, err := b.idLeaf.apply(idv); err == nil {
					if s := stringify(leaf); s != "" {
						id = s

						return nil, nil
					}
				}
			}

			id = stringify(idv)

			return nil, nil
		})
		if err == nil && id != "" {
			return id
		}
	}

	var s string

	_, _ = guard(func() (any, error) {
		s = stringify(item)

		return nil, nil
	})

	if s == "" {
		return "unknown"
	}

	return s
}

func stringify(v reflect.Value) string {
	if !v.IsValid() {
		return ""
	}

	if (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) && v.IsNil() {
		return ""
	}

	if v.Kind() == reflect.String {
		return v.String()
	}

	if !v.CanInterface() {
		return ""
	}

	if s, ok := v.Interface().(fmt.Stringer); ok {
		return s.String()
	}

	return fmt.Sprint(v.Interface())
}
