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

var errorType = reflect.TypeFor[error]()

// step reads one named member: a zero-argument method (optionally returning
// an error as well) or an exported struct field.
type step struct {
	name    string
	method  bool
	index   int   // method index in the receiver's method set
	field   []int // field index path
	ptrRecv bool  // method is declared on *T but values are T
	derefIn bool  // field lives behind a pointer
	withErr bool
	out     reflect.Type
}

type chain []step

func (c chain) out(in reflect.Type) reflect.Type {
	if len(c) == 0 {
		return in
	}

	return c[len(c)-1].out
}

func resolveChain(t reflect.Type, path []string) (chain, error) {
	c := make(chain, 0, len(path))

	for _, name := range path {
		s, ok := resolveStep(t, name)
		if !ok {
			return nil, fmt.Errorf("%w: %s has no readable member %q", errAccessorMissing, t, name)
		}

		c = append(c, s)
		t = s.out
	}

	return c, nil
}

func resolveStep(t reflect.Type, name string) (step, bool) {
	if t == nil {
		return step{}, false
	}

	isIface := t.Kind() == reflect.Interface

	if m, ok := t.MethodByName(name); ok && getterShape(m.Type, !isIface) {
		return step{name: name, method: true, index: m.Index, out: m.Type.Out(0), withErr: m.Type.NumOut() == 2}, true
	}

	if t.Kind() != reflect.Pointer && !isIface {
		if m, ok := reflect.PointerTo(t).MethodByName(name); ok && getterShape(m.Type, true) {
			return step{
				name: name, method: true, index: m.Index, ptrRecv: true,
				out: m.Type.Out(0), withErr: m.Type.NumOut() == 2,
			}, true
		}
	}

	st, deref := t, false
	if st.Kind() == reflect.Pointer {
		st, deref = st.Elem(), true
	}

	if st.Kind() == reflect.Struct {
		if f, ok := st.FieldByName(name); ok && f.IsExported() {
			return step{name: name, field: f.Index, derefIn: deref, out: f.Type}, true
		}
	}

	return step{}, false
}

// getterShape reports whether mt is func() T or func() (T, error), with a
// leading receiver parameter when recv is set.
func getterShape(mt reflect.Type, recv bool) bool {
	in := 0
	if recv {
		in = 1
	}

	if mt.NumIn() != in || mt.IsVariadic() {
		return false
	}

	switch mt.NumOut() {
	case 1:
		return true
	case 2:
		return mt.Out(1) == errorType
	default:
		return false
	}
}

func (s step) apply(v reflect.Value) (reflect.Value, error) {
	if !s.method {
		if s.derefIn {
			if v.IsNil() {
				return reflect.Value{}, fmt.Errorf("%w: reading %s", errNilValue, s.name)
			}

			v = v.Elem()
		}

		return v.FieldByIndex(s.field), nil
	}

	recv := v

	if s.ptrRecv {
		if v.CanAddr() {
			recv = v.Addr()
		} else {
			p := reflect.New(v.Type())
			p.Elem().Set(v)
			recv = p
		}
	}

	if (recv.Kind() == reflect.Pointer || recv.Kind() == reflect.Interface) && recv.IsNil() {
		return reflect.Value{}, fmt.Errorf("%w: calling %s", errNilValue, s.name)
	}

	out := recv.Method(s.index).Call(nil)

	if s.withErr && !out[1].IsNil() {
		return reflect.Value{}, fmt.Errorf("%s: %w", s.name, out[1].Interface().(error))
	}

	return out[0], nil
}

func (c chain) apply(v reflect.Value) (reflect.Value, error) {
	var err error

	for _, s := range c {
		if v, err = s.apply(v); err != nil {
			return reflect.Value{}, err
		}
	}

	return v, nil
}

// lookup is an instance method taking one item and returning its stats.
type lookup struct {
	name    string
	index   int
	withErr bool
	in      reflect.Type
	out     reflect.Type
}

func resolveLookup(t reflect.Type, name string, item reflect.Type) (lookup, error) {
	m, ok := t.MethodByName(name)
	if !ok {
		return lookup{}, fmt.Errorf("%w: %s has no method %q", errAccessorMissing, t, name)
	}

	mt := m.Type

	first := 1
	if t.Kind() == reflect.Interface {
		first = 0
	}

	if mt.NumIn() != first+1 || mt.IsVariadic() {
		return lookup{}, fmt.Errorf("%w: %s.%s takes %d arguments", errAccessorShape, t, name, mt.NumIn()-first)
	}

	if !item.AssignableTo(mt.In(first)) {
		return lookup{}, fmt.Errorf("%w: %s.%s does not accept %s", errAccessorShape, t, name, item)
	}

	if mt.NumOut() != 1 && (mt.NumOut() != 2 || mt.Out(1) != errorType) {
		return lookup{}, fmt.Errorf("%w: %s.%s has %d results", errAccessorShape, t, name, mt.NumOut())
	}

	return lookup{name: name, index: m.Index, withErr: mt.NumOut() == 2, in: mt.In(first), out: mt.Out(0)}, nil
}

func (l lookup) apply(target, item reflect.Value) (reflect.Value, error) {
	if item.Type() != l.in {
		item = item.Convert(l.in)
	}

	out := target.Method(l.index).Call([]reflect.Value{item})

	if l.withErr && !out[1].IsNil() {
		return reflect.Value{}, fmt.Errorf("%s: %w", l.name, out[1].Interface().(error))
	}

	return out[0], nil
}

// elemType returns the item type produced by enumerating a value of type t.
func elemType(t reflect.Type) (reflect.Type, bool) {
	switch t.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return t.Elem(), true
	case reflect.Func:
		if t.CanSeq() {
			return t.In(0).In(0), true
		}
	case reflect.Pointer:
		if t.Elem().Kind() == reflect.Array {
			return t.Elem().Elem(), true
		}
	}

	return nil, false
}

// enumerate turns an enumerable value into a sequence of its items. A nil
// slice or map is an empty collection; a nil iterator is not usable.
// Channels are not accepted since ranging over one can block the tick.
func enumerate(v reflect.Value) (iter.Seq[reflect.Value], error) {
	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() {
			return nil, fmt.Errorf("%w: nil collection", errNilValue)
		}

		return enumerate(v.Elem())
	case reflect.Slice, reflect.Array, reflect.Map:
		pairs := v.Seq2()

		return func(yield func(reflect.Value) bool) {
			for _, item := range pairs {
				if !yield(item) {
					return
				}
			}
		}, nil
	case reflect.Func:
		if v.IsNil() {
			return nil, fmt.Errorf("%w: nil iterator", errNilValue)
		}

		if !v.Type().CanSeq() {
			return nil, fmt.Errorf("%w: %s", errNotEnumerable, v.Type())
		}

		return v.Seq(), nil
	default:
		return nil, fmt.Errorf("%w: %s", errNotEnumerable, v.Type())
	}
}

func numericKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}

func toFloat(v reflect.Value) (float64, error) {
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return 0, fmt.Errorf("%w: nil quantity", errNilValue)
		}

		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(v.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return v.Float(), nil
	default:
		return 0, fmt.Errorf("%w: %s", errNotNumeric, v.Type())
	}
}

func nilable(k reflect.Kind) bool {
	switch k {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return true
	default:
		return false
	}
}

// isNil reports whether v is nil or a typed nil.
func isNil(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)

	return nilable(rv.Kind()) && rv.IsNil()
}
