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
	"rivaas.dev/config"
	rivaaserrors "rivaas.dev/errors"
	"rivaas.dev/logging"
	"rivaas.dev/router"
)

// Option configures a Registrar.
type Option func(*Registrar)

// WithRouter sets the host router actions are registered on. Required.
func WithRouter(r *router.Router) Option {
	return func(reg *Registrar) {
		reg.router = r
	}
}

// WithConfig sets the configuration store the alias overlays and enabled
// flags are read from. Without it every component uses its declared routes
// unchanged.
func WithConfig(cfg *config.Config) Option {
	return func(reg *Registrar) {
		reg.cfg = cfg
	}
}

// WithConfigPrefix overrides the top-level configuration key overlays are
// looked up under. Defaults to [DefaultConfigPrefix].
func WithConfigPrefix(prefix string) Option {
	return func(reg *Registrar) {
		reg.prefix = prefix
	}
}

// WithLogger sets the logger. Defaults to a silent logger.
func WithLogger(log *logging.Logger) Option {
	return func(reg *Registrar) {
		reg.log = log
	}
}

// WithWrap replaces the default handler adaptation. The wrap function
// receives the destination, action name, and descriptor for every action
// and returns the handler to register.
func WithWrap(wrap WrapFunc[router.HandlerFunc]) Option {
	return func(reg *Registrar) {
		reg.wrap = wrap
	}
}

// WithMethods sets the HTTP methods an action registers for when its
// descriptor carries no Extra["methods"] override. Defaults to POST.
func WithMethods(methods ...string) Option {
	return func(reg *Registrar) {
		reg.methods = methods
	}
}

// WithDefaultHandler installs a catch-all action on every materialized
// controller. The factory is called once per physical destination; its
// handler receives requests whose action segment matches no registered
// action. Installed at most once per controller.
func WithDefaultHandler(factory func(destination string) (router.HandlerFunc, error)) Option {
	return func(reg *Registrar) {
		reg.defaultHandler = factory
	}
}

// WithErrorFormatter sets the formatter used to render errors returned by
// func(*router.Context) error handlers. Defaults to the simple JSON
// formatter from rivaas.dev/errors.
func WithErrorFormatter(f rivaaserrors.Formatter) Option {
	return func(reg *Registrar) {
		reg.formatter = f
	}
}
