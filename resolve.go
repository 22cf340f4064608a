// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package dispatch

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"rivaas.dev/config"
)

// AliasMap maps a logical destination name to one or more physical
// destination names. A logical name absent from the map resolves to
// itself.
type AliasMap map[string][]string

// Table is a merged route table keyed by physical destination name. It is
// the result of applying an AliasMap to a RouteSpec.
type Table map[string]Actions

// Overlay is a component's deployment-time configuration: whether the
// component is enabled and how its logical destinations map to physical
// ones.
type Overlay struct {
	Enabled bool
	Aliases AliasMap
}

// DefaultConfigPrefix is the top-level configuration key under which
// component overlays are looked up.
const DefaultConfigPrefix = "dispatch"

// Resolve applies the alias map to the spec and returns the merged table.
//
// Each logical destination resolves to one or more physical destinations
// (itself when unaliased). Fan-out copies the full action table to every
// physical destination. Fan-in merges the action tables of all logical
// names that resolve to the same physical destination; on a key collision
// the logical name that sorts later wins. Logical names are processed in
// lexical order so the result does not depend on map iteration order.
//
// The returned table never aliases the spec's maps.
func Resolve(spec RouteSpec, aliases AliasMap) Table {
	table := make(Table, len(spec))
	for _, logical := range slices.Sorted(maps.Keys(spec)) {
		actions := spec[logical]
		for _, physical := range resolveAliases(logical, aliases) {
			dest, ok := table[physical]
			if !ok {
				dest = make(Actions, len(actions))
				table[physical] = dest
			}
			maps.Copy(dest, actions.clone())
		}
	}
	return table
}

// resolveAliases returns the physical destinations for one logical name,
// case-insensitively since overlays loaded from configuration carry
// lowercased keys.
func resolveAliases(logical string, aliases AliasMap) []string {
	if physical, ok := aliases[logical]; ok && len(physical) > 0 {
		return physical
	}
	if physical, ok := aliases[strings.ToLower(logical)]; ok && len(physical) > 0 {
		return physical
	}
	return []string{logical}
}

// OverlayFor reads a component's overlay from the configuration store.
//
// The expected layout, with prefix "dispatch" and kind "orders":
//
//	dispatch:
//	  orders:
//	    enabled: true
//	    aliases:
//	      orders: [orders-us, orders-eu]
//	      audit: audit-log
//
// A missing enabled key defaults to true. Alias values may be a single
// string or a list of strings. A nil cfg yields the identity overlay.
func OverlayFor(cfg *config.Config, prefix, kind string) (Overlay, error) {
	overlay := Overlay{Enabled: true}
	if cfg == nil {
		return overlay, nil
	}
	if prefix == "" {
		prefix = DefaultConfigPrefix
	}

	base := prefix + "." + kind
	overlay.Enabled = cfg.BoolOr(base+".enabled", true)

	raw := cfg.StringMap(base + ".aliases")
	if len(raw) == 0 {
		return overlay, nil
	}

	overlay.Aliases = make(AliasMap, len(raw))
	for logical, value := range raw {
		physical, err := toStringList(value)
		if err != nil {
			return Overlay{}, fmt.Errorf("invalid alias for %s.aliases.%s: %w", base, logical, err)
		}
		overlay.Aliases[logical] = physical
	}
	return overlay, nil
}

// toStringList normalizes an alias value to a list of destination names.
func toStringList(value any) ([]string, error) {
	switch v := value.(type) {
	case string:
		return []string{v}, nil
	case []string:
		return slices.Clone(v), nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("expected string, got %T", item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected string or string list, got %T", value)
	}
}
