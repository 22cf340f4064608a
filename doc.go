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

// Package dispatch compiles declarative route tables into registered
// dispatch controllers.
//
// Application components declare a [RouteSpec]: a mapping from logical
// destination names to action tables, where each action carries an opaque
// handler descriptor and free-form configuration. At startup, dispatch
// merges each component's declared routes with a deployment-time alias
// overlay (loaded from rivaas.dev/config), materializes one controller per
// physical destination, and registers one dispatchable action per
// (destination, action) pair on the host router.
//
// # Components
//
// A component implements [Component]:
//
//	type orders struct{}
//
//	func (orders) Kind() string { return "orders" }
//
//	func (orders) Routes() dispatch.RouteSpec {
//	    return dispatch.RouteSpec{
//	        "orders": {
//	            "create": {Handler: createOrder},
//	            "cancel": {Handler: cancelOrder},
//	        },
//	    }
//	}
//
// Kind namespaces the component's configuration lookups. Routes returns the
// component's static route table; it is read once during registration and
// must not change afterwards.
//
// # Registration
//
// The [Registrar] binds components to a rivaas.dev/router Router:
//
//	r := router.MustNew()
//	reg := dispatch.MustNew(
//	    dispatch.WithRouter(r),
//	    dispatch.WithConfig(cfg),
//	)
//	if err := reg.Register(ctx, orders{}); err != nil {
//	    log.Fatal(err)
//	}
//
// Each action becomes a route at /<destination>/<action>, named
// "<destination>/<action>" for reverse lookup. Handlers may be
// [router.HandlerFunc], func(*router.Context), or
// func(*router.Context) error; the error form renders failures through a
// rivaas.dev/errors formatter. [WithWrap] replaces this default adaptation
// entirely.
//
// # Aliasing and fan-out
//
// Deployment configuration can rename a logical destination or fan it out
// to several physical destinations:
//
//	dispatch:
//	  orders:
//	    enabled: true
//	    aliases:
//	      orders: [orders-us, orders-eu]
//
// Both orders-us and orders-eu receive the full action table. Several
// logical names may also collapse onto one physical destination; their
// action tables merge, later logical names (in lexical order) winning on
// key collisions. Setting enabled to false removes the component entirely:
// no controllers, no routes.
//
// Controllers are created at most once per physical destination, so
// multiple components can safely target the same destination as long as
// their action names do not collide. A cross-component collision on the
// same (destination, action) pair is reported as [ErrDuplicateAction].
//
// # Default actions
//
// [WithDefaultHandler] installs a catch-all action per controller that
// receives requests for unmatched action names. The default action is
// installed at most once per controller; repeated installs are no-ops.
//
// # Messaging
//
// The stomp subpackage provides the same model for STOMP destinations,
// dispatching messages by their type header instead of URL path. See
// rivaas.dev/dispatch/stomp.
//
// All registration happens synchronously at application load. The
// resulting tables are read-only; request-time concurrency is owned by the
// router.
package dispatch
