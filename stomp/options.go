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

package stomp

import (
	stompv3 "github.com/go-stomp/stomp/v3"

	"rivaas.dev/config"
	"rivaas.dev/logging"
)

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithConn sets the broker connection subscriptions are created on.
// Required. *stomp.Conn from go-stomp satisfies [Conn] directly.
func WithConn(conn Conn) Option {
	return func(d *Dispatcher) {
		d.conn = conn
	}
}

// WithConfig sets the configuration store the alias overlays and enabled
// flags are read from.
func WithConfig(cfg *config.Config) Option {
	return func(d *Dispatcher) {
		d.cfg = cfg
	}
}

// WithConfigPrefix overrides the top-level configuration key overlays are
// looked up under. Defaults to dispatch.DefaultConfigPrefix.
func WithConfigPrefix(prefix string) Option {
	return func(d *Dispatcher) {
		d.prefix = prefix
	}
}

// WithLogger sets the logger. Defaults to a silent logger.
func WithLogger(log *logging.Logger) Option {
	return func(d *Dispatcher) {
		d.log = log
	}
}

// WithWrap sets the handler adaptation. Required.
func WithWrap(wrap WrapFunc) Option {
	return func(d *Dispatcher) {
		d.wrap = wrap
	}
}

// WithValidator sets the validator adaptation. The wrap is called once per
// registered (destination, type) pair; returning a nil Validator leaves
// that pair unvalidated.
func WithValidator(wrap ValidatorWrapFunc) Option {
	return func(d *Dispatcher) {
		d.validatorWrap = wrap
	}
}

// WithDefaultHandler installs a fallback handler on every materialized
// destination. The factory is called once per physical destination; its
// handler receives messages whose type matches no registered entry.
// Installed at most once per destination.
func WithDefaultHandler(factory func(destination string) (Handler, error)) Option {
	return func(d *Dispatcher) {
		d.defaultHandler = factory
	}
}

// WithAckMode sets the subscription acknowledgement mode. Defaults to
// client-individual so failed messages can be nacked back to the broker.
func WithAckMode(mode stompv3.AckMode) Option {
	return func(d *Dispatcher) {
		d.ackMode = mode
	}
}

// WithTypeHeader sets the message header the dispatch type is read from.
// Defaults to "type".
func WithTypeHeader(header string) Option {
	return func(d *Dispatcher) {
		d.typeHeader = header
	}
}
