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
	"testing"

	"rivaas.dev/router"
)

// TestingRegistrar creates a [Registrar] bound to a fresh router for unit
// tests. Additional options are applied after the defaults and may
// override them.
//
// Example:
//
//	func TestRoutes(t *testing.T) {
//	    t.Parallel()
//	    reg, r := dispatch.TestingRegistrar(t)
//	    // register components, then drive r.ServeHTTP...
//	}
func TestingRegistrar(t testing.TB, opts ...Option) (*Registrar, *router.Router) {
	t.Helper()

	r := router.MustNew()
	allOpts := append([]Option{WithRouter(r)}, opts...)

	reg, err := New(allOpts...)
	if err != nil {
		t.Fatalf("TestingRegistrar: failed to create registrar: %v", err)
	}
	return reg, r
}
