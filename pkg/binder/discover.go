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
	"reflect"
	"strings"

	"github.com/carverauto/statsbridge/pkg/host"
)

// Strategy records how the target instance was obtained.
type Strategy string

const (
	StrategyStatic   Strategy = "static"
	StrategyResolver Strategy = "resolver"
	StrategyScan     Strategy = "scan"
)

// Static members of a resolver class that may hold its singleton.
var holderNames = []string{"Current", "Instance", "Default", "Global", "Resolver", "Container", "Services"}

var (
	lookupPrefixes = []string{"resolve", "get"}
	typeType       = reflect.TypeFor[reflect.Type]()
	boolType       = reflect.TypeFor[bool]()
)

type located struct {
	instance any
	strategy Strategy
	via      string
}

func findTarget(classes []host.Class, s Schema) (host.Class, error) {
	if s.FullName != "" {
		for _, c := range classes {
			if c.FullName == s.FullName && c.Type != nil {
				return c, nil
			}
		}
	}

	var matches []host.Class

	if s.Name != "" {
		for _, c := range classes {
			if c.Type != nil && c.Name() == s.Name && strings.Contains(c.Namespace(), s.NamespaceHint) {
				matches = append(matches, c)
			}
		}
	}

	switch len(matches) {
	case 0:
		return host.Class{}, fmt.Errorf("%w: %s", errTargetNotFound, s.FullName)
	case 1:
		return matches[0], nil
	default:
		return host.Class{}, fmt.Errorf("%w: %d classes named %s", errAmbiguousTarget, len(matches), s.Name)
	}
}

// locate tries, in order, the target's own statics, resolver/container
// classes, and finally every static in the universe.
func locate(classes []host.Class, target host.Class) (located, error) {
	want := target.Type

	if inst, via, ok := fromOwnStatics(target, want); ok {
		return located{instance: inst, strategy: StrategyStatic, via: via}, nil
	}

	if inst, via, ok := fromResolvers(classes, want); ok {
		return located{instance: inst, strategy: StrategyResolver, via: via}, nil
	}

	if inst, via, ok := fromScan(classes, want); ok {
		return located{instance: inst, strategy: StrategyScan, via: via}, nil
	}

	return located{}, fmt.Errorf("%w: %s", errNoInstance, target.FullName)
}

func fromOwnStatics(c host.Class, want reflect.Type) (any, string, bool) {
	for _, st := range c.Statics {
		if v, ok := readStatic(st, want); ok {
			return v, c.FullName + "." + st.Name, true
		}
	}

	for _, f := range c.Funcs {
		fv := reflect.ValueOf(f.Fn)
		if fv.Kind() != reflect.Func || fv.IsNil() {
			continue
		}

		ft := fv.Type()
		if !getterShape(ft, false) || !ft.Out(0).AssignableTo(want) {
			continue
		}

		v, err := guard(func() (any, error) {
			out := fv.Call(nil)
			if len(out) == 2 && !out[1].IsNil() {
				return nil, out[1].Interface().(error)
			}

			return out[0].Interface(), nil
		})
		if err == nil && usable(v, want) {
			return v, c.FullName + "." + f.Name + "()", true
		}
	}

	return nil, "", false
}

func fromResolvers(classes []host.Class, want reflect.Type) (any, string, bool) {
	var resolvers []host.Class

	for _, c := range classes {
		name := strings.ToLower(c.FullName)
		if strings.Contains(name, "resolver") || strings.Contains(name, "container") {
			resolvers = append(resolvers, c)
		}
	}

	// Instance-style: static holder, then a lookup method on the holder.
	for _, c := range resolvers {
		holder, holderName := resolverHolder(c)
		if holder == nil {
			continue
		}

		hv := reflect.ValueOf(holder)
		for i := 0; i < hv.NumMethod(); i++ {
			name := hv.Type().Method(i).Name
			if !hasLookupPrefix(name) {
				continue
			}

			if v, ok := callLookup(hv.Method(i), want); ok {
				return v, c.FullName + "." + holderName + "." + name, true
			}
		}
	}

	// Static-style: lookup functions declared on the class itself.
	for _, c := range resolvers {
		for _, f := range c.Funcs {
			if !hasLookupPrefix(f.Name) {
				continue
			}

			fv := reflect.ValueOf(f.Fn)
			if fv.Kind() != reflect.Func || fv.IsNil() {
				continue
			}

			if v, ok := callLookup(fv, want); ok {
				return v, c.FullName + "." + f.Name, true
			}
		}
	}

	return nil, "", false
}

func fromScan(classes []host.Class, want reflect.Type) (any, string, bool) {
	for _, c := range classes {
		for _, st := range c.Statics {
			if v, ok := readStatic(st, want); ok {
				return v, c.FullName + "." + st.Name, true
			}
		}
	}

	return nil, "", false
}

func resolverHolder(c host.Class) (any, string) {
	for _, name := range holderNames {
		for _, st := range c.Statics {
			if st.Name != name || st.Get == nil {
				continue
			}

			v, err := guard(func() (any, error) { return st.Get(), nil })
			if err == nil && !isNil(v) {
				return v, name
			}
		}
	}

	return nil, ""
}

func readStatic(st host.Static, want reflect.Type) (any, bool) {
	if st.Get == nil || st.Type == nil || !st.Type.AssignableTo(want) {
		return nil, false
	}

	v, err := guard(func() (any, error) { return st.Get(), nil })
	if err != nil {
		return nil, false
	}

	return v, usable(v, want)
}

// callLookup calls fn(want) when fn has one of the lookup shapes:
//
//	func(reflect.Type) T
//	func(reflect.Type) (T, error)
//	func(reflect.Type) (T, bool)
func callLookup(fn reflect.Value, want reflect.Type) (any, bool) {
	ft := fn.Type()
	if ft.NumIn() != 1 || ft.In(0) != typeType || ft.IsVariadic() {
		return nil, false
	}

	switch ft.NumOut() {
	case 1:
	case 2:
		if ft.Out(1) != errorType && ft.Out(1) != boolType {
			return nil, false
		}
	default:
		return nil, false
	}

	v, err := guard(func() (any, error) {
		out := fn.Call([]reflect.Value{reflect.ValueOf(want)})

		if len(out) == 2 {
			switch ft.Out(1) {
			case errorType:
				if !out[1].IsNil() {
					return nil, out[1].Interface().(error)
				}
			case boolType:
				if !out[1].Bool() {
					return nil, nil
				}
			}
		}

		return out[0].Interface(), nil
	})

	if err != nil {
		return nil, false
	}

	return v, usable(v, want)
}

func hasLookupPrefix(name string) bool {
	lower := strings.ToLower(name)

	for _, p := range lookupPrefixes {
		if strings.HasPrefix(lower, p) {
			return true
		}
	}

	return false
}

func usable(v any, want reflect.Type) bool {
	return !isNil(v) && reflect.TypeOf(v).AssignableTo(want)
}

// guard runs a call into host code, turning a panic into ErrHostPanic.
func guard(fn func() (any, error)) (v any, err error) {
	defer func() {
		if r := recover(); r != nil {
			v, err = nil, fmt.Errorf("%w: %v", ErrHostPanic, r)
		}
	}()

	return fn()
}
