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
	"strings"

	"github.com/carverauto/statsbridge/pkg/config"
)

// Schema names the host class to bind to and the accessor paths read from it.
type Schema struct {
	FullName      string   // exact match wins
	Name          string   // fallback match on the short name...
	NamespaceHint string   // ...when the namespace contains this
	Items         []string // instance -> enumerable of items
	Lookup        string   // optional instance method taking an item, returning its stats
	Quantity      []string // stats (or item when Lookup is empty) -> number
	ID            []string // item -> identifier; optional
	IDLeaf        []string // alternatives read off the identifier, first match wins
	ItemLabel     string   // how an item is named in the method description
}

// DefaultSchema targets Captain of Industry's products manager.
func DefaultSchema() Schema {
	return Schema{
		FullName:      "Mafi.Core.Products.ProductsManager",
		Name:          "ProductsManager",
		NamespaceHint: "Mafi.Core.Products",
		Items:         []string{"SlimIdManager", "ManagedProtos"},
		Lookup:        "GetStatsFor",
		Quantity:      []string{"GlobalQuantity", "Value"},
		ID:            []string{"Id"},
		IDLeaf:        []string{"String", "Value"},
		ItemLabel:     "proto",
	}
}

// SchemaFromConfig overlays the configured target on DefaultSchema.
func SchemaFromConfig(cfg config.TargetConfig) Schema {
	s := DefaultSchema()

	if cfg.FullName != "" {
		s.FullName = cfg.FullName
		s.Name = lastSegment(cfg.FullName)
		s.NamespaceHint = ""
	}

	if cfg.Name != "" {
		s.Name = cfg.Name
	}

	if cfg.Namespace != "" {
		s.NamespaceHint = cfg.Namespace
	}

	if cfg.Items != "" {
		s.Items = ParsePath(cfg.Items)
	}

	if cfg.Lookup != nil {
		s.Lookup = *cfg.Lookup
	}

	if cfg.Quantity != "" {
		s.Quantity = ParsePath(cfg.Quantity)
	}

	if cfg.ID != nil {
		s.ID = ParsePath(*cfg.ID)
	}

	if len(cfg.IDLeaf) > 0 {
		s.IDLeaf = cfg.IDLeaf
	}

	if cfg.ItemLabel != "" {
		s.ItemLabel = cfg.ItemLabel
	}

	return s
}

// ParsePath splits "A.B.C" into its segments. Empty input yields nil.
func ParsePath(path string) []string {
	var out []string

	for _, seg := range strings.Split(path, ".") {
		if seg = strings.TrimSpace(seg); seg != "" {
			out = append(out, seg)
		}
	}

	return out
}

// MethodDescription renders the accessor chain, e.g.
// "GetStatsFor(proto).GlobalQuantity.Value".
func (s Schema) MethodDescription() string {
	label := s.ItemLabel
	if label == "" {
		label = "item"
	}

	parts := make([]string, 0, len(s.Quantity)+1)

	if s.Lookup != "" {
		parts = append(parts, s.Lookup+"("+label+")")
	} else {
		parts = append(parts, label)
	}

	parts = append(parts, s.Quantity...)

	return strings.Join(parts, ".")
}

// ProviderDescription names the bound class for diagnostics.
func (s Schema) ProviderDescription() string {
	name := s.Name
	if name == "" {
		name = lastSegment(s.FullName)
	}

	return name + " (reflection)"
}

func lastSegment(fullName string) string {
	if i := strings.LastIndexByte(fullName, '.'); i >= 0 {
		return fullName[i+1:]
	}

	return fullName
}
