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
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
)

// ActionMeta is the routing metadata attached to a registered action.
type ActionMeta struct {
	// Destination is the physical destination the action belongs to.
	Destination string

	// Action is the action name or message type.
	Action string

	// Name is the reverse-lookup name, "<destination>/<action>".
	Name string

	// Extra is the action's free-form configuration.
	Extra map[string]any
}

// WrapFunc turns an action descriptor into a dispatchable handler. The
// handler type H is binding-specific: router.HandlerFunc for the HTTP
// registrar, stomp.Handler for the messaging dispatcher.
type WrapFunc[H any] func(ctx context.Context, destination, action string, act Action) (H, error)

// Sink receives the registered actions of one controller. Bindings
// implement Sink to install handlers into the host dispatcher.
type Sink[H any] interface {
	// Action registers a dispatchable handler under the given metadata.
	Action(meta ActionMeta, handler H) error

	// Default installs the controller's catch-all handler.
	Default(handler H) error
}

// Binder materializes controllers on a host dispatcher. Mount is called at
// most once per physical destination.
type Binder[H any] interface {
	Mount(destination string) (Sink[H], error)
}

// Controller is a materialized dispatch target bound to one physical
// destination. It lives for the rest of the process; there is no teardown.
type Controller[H any] struct {
	destination string
	sink        Sink[H]
	actions     map[string]ActionMeta
	hasDefault  bool
}

// Destination returns the physical destination the controller is bound to.
func (c *Controller[H]) Destination() string { return c.destination }

// Actions returns the registered action names in sorted order.
func (c *Controller[H]) Actions() []string {
	return slices.Sorted(maps.Keys(c.actions))
}

// HasDefault reports whether a default action is installed.
func (c *Controller[H]) HasDefault() bool { return c.hasDefault }

// HasAction reports whether an action with the given name is registered.
func (c *Controller[H]) HasAction(name string) bool {
	_, ok := c.actions[name]
	return ok
}

// register wraps and registers every action in the table.
func (c *Controller[H]) register(ctx context.Context, actions Actions, wrap WrapFunc[H]) error {
	for _, name := range slices.Sorted(maps.Keys(actions)) {
		act := actions[name]
		if _, exists := c.actions[name]; exists {
			return fmt.Errorf("%w: %s/%s", ErrDuplicateAction, c.destination, name)
		}

		handler, err := wrap(ctx, c.destination, name, act)
		if err != nil {
			return fmt.Errorf("wrap %s/%s: %w", c.destination, name, err)
		}

		meta := ActionMeta{
			Destination: c.destination,
			Action:      name,
			Name:        c.destination + "/" + name,
			Extra:       act.Extra,
		}
		if err := c.sink.Action(meta, handler); err != nil {
			return fmt.Errorf("register %s: %w", meta.Name, err)
		}
		c.actions[name] = meta
	}
	return nil
}

// InstallDefault installs the catch-all handler once. The second and
// later installs are no-ops; the returned bool reports whether this call
// installed it.
func (c *Controller[H]) InstallDefault(handler H) (bool, error) {
	if c.hasDefault {
		return false, nil
	}
	if err := c.sink.Default(handler); err != nil {
		return false, fmt.Errorf("install default on %s: %w", c.destination, err)
	}
	c.hasDefault = true
	return true, nil
}

// Registry tracks materialized controllers by physical destination,
// guaranteeing at most one controller per destination process-wide.
//
// Registration is expected to happen during single-threaded application
// load; the registry is still safe for concurrent use.
type Registry[H any] struct {
	binder Binder[H]

	mu          sync.Mutex
	controllers map[string]*Controller[H]
}

// NewRegistry creates a registry that materializes controllers through the
// given binder.
func NewRegistry[H any](binder Binder[H]) *Registry[H] {
	return &Registry[H]{
		binder:      binder,
		controllers: make(map[string]*Controller[H]),
	}
}

// Ensure returns the controller for the destination, mounting it through
// the binder on first use. Subsequent calls return the existing controller
// so several components can share one destination.
func (r *Registry[H]) Ensure(destination string) (*Controller[H], error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.controllers[destination]; ok {
		return c, nil
	}

	sink, err := r.binder.Mount(destination)
	if err != nil {
		return nil, fmt.Errorf("mount %s: %w", destination, err)
	}
	c := &Controller[H]{
		destination: destination,
		sink:        sink,
		actions:     make(map[string]ActionMeta),
	}
	r.controllers[destination] = c
	return c, nil
}

// Apply materializes every destination in the table and registers its
// actions. Destinations are processed in sorted order.
func (r *Registry[H]) Apply(ctx context.Context, table Table, wrap WrapFunc[H]) error {
	for _, destination := range slices.Sorted(maps.Keys(table)) {
		c, err := r.Ensure(destination)
		if err != nil {
			return err
		}
		if err := c.register(ctx, table[destination], wrap); err != nil {
			return err
		}
	}
	return nil
}

// Destinations returns the materialized destinations in sorted order.
func (r *Registry[H]) Destinations() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Sorted(maps.Keys(r.controllers))
}

// Controller returns the materialized controller for the destination, or
// nil if none exists.
func (r *Registry[H]) Controller(destination string) *Controller[H] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.controllers[destination]
}
