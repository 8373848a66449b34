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

// Package host describes the host process's object graph as a discoverable
// universe of classes. A class carries a fully-qualified name, the Go type of
// its instances, and its static members; the binder searches this universe
// without compile-time knowledge of any particular class.
package host

import (
	"reflect"
	"strings"
)

// Universe is the set of classes the host has loaded so far. Classes may appear
// over time as the host finishes loading.
type Universe interface {
	Classes() []Class
}

// Class is one named type in the host.
type Class struct {
	FullName string       // e.g. "Mafi.Core.Products.ProductsManager"
	Type     reflect.Type // type of instances; nil for purely static classes
	Statics  []Static
	Funcs    []Func
}

// Static is a static field or property. Get may return nil when the member is
// not populated yet.
type Static struct {
	Name string
	Type reflect.Type
	Get  func() any
}

// Func is a static function. Fn must be a func value.
type Func struct {
	Name string
	Fn   any
}

// Name returns the last dotted segment of FullName.
func (c Class) Name() string {
	if i := strings.LastIndexByte(c.FullName, '.'); i >= 0 {
		return c.FullName[i+1:]
	}

	return c.FullName
}

// Namespace returns everything before the last dot of FullName.
func (c Class) Namespace() string {
	if i := strings.LastIndexByte(c.FullName, '.'); i >= 0 {
		return c.FullName[:i]
	}

	return ""
}

// Field exposes a package-level variable as a static member.
func Field[T any](name string, ptr *T) Static {
	return Static{
		Name: name,
		Type: reflect.TypeFor[T](),
		Get:  func() any { return *ptr },
	}
}

// Property exposes a getter as a static member.
func Property[T any](name string, get func() T) Static {
	return Static{
		Name: name,
		Type: reflect.TypeFor[T](),
		Get:  func() any { return get() },
	}
}

// StaticFunc wraps fn as a static function member.
func StaticFunc(name string, fn any) Func {
	return Func{Name: name, Fn: fn}
}

// TypeOf returns the reflect.Type for T, for building Class values.
func TypeOf[T any]() reflect.Type {
	return reflect.TypeFor[T]()
}
