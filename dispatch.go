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
	"io"
	"maps"
	"net/http"
	"slices"

	"rivaas.dev/config"
	rivaaserrors "rivaas.dev/errors"
	"rivaas.dev/logging"
	"rivaas.dev/router"
)

// Registrar compiles component route tables into routes on a
// rivaas.dev/router Router.
//
// Registration is a load-time operation: build the registrar once, call
// [Registrar.Register] for every component, then hand the router to the
// server. The registrar is not intended for use after startup.
type Registrar struct {
	router         *router.Router
	cfg            *config.Config
	log            *logging.Logger
	prefix         string
	methods        []string
	wrap           WrapFunc[router.HandlerFunc]
	defaultHandler func(destination string) (router.HandlerFunc, error)
	formatter      rivaaserrors.Formatter

	registry *Registry[router.HandlerFunc]
}

// New creates a Registrar. A router is required; everything else has
// defaults: no configuration overlay, silent logger, POST-only actions,
// the built-in handler adaptation, and the simple JSON error formatter.
func New(opts ...Option) (*Registrar, error) {
	reg := &Registrar{
		prefix:  DefaultConfigPrefix,
		methods: []string{http.MethodPost},
	}
	for _, opt := range opts {
		opt(reg)
	}

	if reg.router == nil {
		return nil, ErrRouterRequired
	}
	if len(reg.methods) == 0 {
		return nil, fmt.Errorf("dispatch: at least one method is required")
	}
	if reg.log == nil {
		log, err := logging.New(logging.WithOutput(io.Discard))
		if err != nil {
			return nil, fmt.Errorf("dispatch: default logger: %w", err)
		}
		reg.log = log
	}
	if reg.formatter == nil {
		reg.formatter = rivaaserrors.NewSimple()
	}
	if reg.wrap == nil {
		reg.wrap = reg.wrapHandler
	}

	reg.registry = NewRegistry[router.HandlerFunc](&routerBinder{reg: reg})
	return reg, nil
}

// MustNew is like New but panics on error.
func MustNew(opts ...Option) *Registrar {
	reg, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return reg
}

// Register resolves and registers the route tables of the given
// components. For each component it reads the configuration overlay,
// skips the component if disabled, applies aliasing, materializes one
// controller per physical destination (reusing controllers earlier
// components created), and registers every action as a route.
//
// Registration stops at the first error; routes registered before the
// failing action remain on the router.
func (reg *Registrar) Register(ctx context.Context, components ...Component) error {
	for _, comp := range components {
		kind := comp.Kind()

		overlay, err := OverlayFor(reg.cfg, reg.prefix, kind)
		if err != nil {
			return fmt.Errorf("dispatch: overlay for %q: %w", kind, err)
		}
		if !overlay.Enabled {
			reg.log.Debug("component disabled, skipping", "kind", kind)
			continue
		}

		table := Resolve(comp.Routes(), overlay.Aliases)
		if err := reg.registry.Apply(ctx, table, reg.wrap); err != nil {
			return fmt.Errorf("dispatch: component %q: %w", kind, err)
		}
		if err := reg.installDefaults(table); err != nil {
			return fmt.Errorf("dispatch: component %q: %w", kind, err)
		}

		reg.log.Info("routes registered",
			"kind", kind,
			"destinations", len(table),
		)
	}
	return nil
}

// Destinations returns the physical destinations materialized so far, in
// sorted order.
func (reg *Registrar) Destinations() []string {
	return reg.registry.Destinations()
}

// installDefaults installs the catch-all handler on every controller the
// table touched. Controllers that already have one are left alone.
func (reg *Registrar) installDefaults(table Table) error {
	if reg.defaultHandler == nil {
		return nil
	}
	for _, destination := range slices.Sorted(maps.Keys(table)) {
		c := reg.registry.Controller(destination)
		if c == nil || c.HasDefault() {
			continue
		}
		// An explicit "default" action already owns the reverse-lookup
		// name the catch-all would take.
		if c.HasAction("default") {
			return fmt.Errorf("%w: %s/default", ErrDuplicateAction, destination)
		}
		handler, err := reg.defaultHandler(destination)
		if err != nil {
			return fmt.Errorf("default handler for %s: %w", destination, err)
		}
		if _, err := c.InstallDefault(handler); err != nil {
			return err
		}
	}
	return nil
}
