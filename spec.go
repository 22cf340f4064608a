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

import "maps"

// Action describes a single dispatchable action within a route table.
//
// Handler is an opaque descriptor. The binding's wrap function decides how
// to turn it into a dispatchable handler: the HTTP registrar accepts
// router handler functions by default, the stomp dispatcher requires an
// explicit wrap function. Extra carries free-form per-action configuration
// that wrap functions and bindings may consult (for example, the HTTP
// binding reads Extra["methods"]).
type Action struct {
	// Handler is the handler descriptor passed to the wrap function.
	Handler any

	// Extra holds optional per-action configuration.
	Extra map[string]any
}

// Actions maps action names (or message types, for messaging bindings) to
// their descriptors.
type Actions map[string]Action

// RouteSpec is a component's static route declaration: logical destination
// name to action table. Specs are declared once and must not be mutated
// after registration.
type RouteSpec map[string]Actions

// Component declares routes to a registrar.
//
// Kind returns a short name used to namespace the component's
// configuration lookups (enabled flag and alias table). Routes returns the
// component's route table; it is called once per registration.
type Component interface {
	Kind() string
	Routes() RouteSpec
}

// Static is a Component built from literal values, convenient for small
// components, wiring code, and tests.
//
//	reg.Register(ctx, dispatch.Static{
//	    Name: "orders",
//	    Spec: dispatch.RouteSpec{"orders": {"create": {Handler: h}}},
//	})
type Static struct {
	Name string
	Spec RouteSpec
}

// Kind returns the component name.
func (s Static) Kind() string { return s.Name }

// Routes returns the declared route table.
func (s Static) Routes() RouteSpec { return s.Spec }

// clone returns a deep copy of the action table. Merging must never alias
// a component's declared maps.
func (a Actions) clone() Actions {
	if a == nil {
		return nil
	}
	out := make(Actions, len(a))
	for name, act := range a {
		act.Extra = maps.Clone(act.Extra)
		out[name] = act
	}
	return out
}
