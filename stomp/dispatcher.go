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
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	stompv3 "github.com/go-stomp/stomp/v3"
	"github.com/go-stomp/stomp/v3/frame"

	"rivaas.dev/config"
	"rivaas.dev/dispatch"
	"rivaas.dev/logging"
)

// DefaultTypeHeader is the message header the dispatch type is read from
// unless overridden with WithTypeHeader.
const DefaultTypeHeader = "type"

var (
	// ErrConnRequired is returned by New when no connection was provided.
	ErrConnRequired = errors.New("stomp: connection is required")

	// ErrWrapRequired is returned by New when no wrap function was
	// provided.
	ErrWrapRequired = errors.New("stomp: wrap function is required")
)

// Handler processes one received message. A returned error nacks the
// message.
type Handler func(ctx context.Context, msg *stompv3.Message) error

// WrapFunc turns an action descriptor into a message handler for one
// (destination, message type) pair.
type WrapFunc func(ctx context.Context, destination, msgType string, act dispatch.Action) (Handler, error)

// Validator checks a message before its handler runs. Returning false
// rejects the message; a returned error also rejects it and is logged.
type Validator func(ctx context.Context, msg *stompv3.Message) (bool, error)

// ValidatorWrapFunc builds the validator for one (destination, message
// type) pair. Returning a nil Validator disables validation for the pair.
type ValidatorWrapFunc func(destination, msgType string, act dispatch.Action) (Validator, error)

// Conn is the subset of *stomp.Conn the dispatcher uses. It exists so
// tests can substitute a fake broker connection.
type Conn interface {
	Subscribe(destination string, ack stompv3.AckMode, opts ...func(*frame.Frame) error) (*stompv3.Subscription, error)
	Ack(msg *stompv3.Message) error
	Nack(msg *stompv3.Message) error
}

// entry is one registered (message type → handler) slot.
type entry struct {
	handler   Handler
	validator Validator
}

// queue holds the dispatch table for one physical destination. Built at
// load time, read-only while Run consumes messages.
type queue struct {
	destination string
	entries     map[string]entry
	fallback    Handler
}

func (q *queue) Action(meta dispatch.ActionMeta, e entry) error {
	q.entries[meta.Action] = e
	return nil
}

func (q *queue) Default(e entry) error {
	q.fallback = e.handler
	return nil
}

// Dispatcher compiles component route tables into per-destination message
// dispatch tables and consumes broker subscriptions against them.
//
// Register everything during application load, then call Run once.
type Dispatcher struct {
	conn           Conn
	cfg            *config.Config
	log            *logging.Logger
	prefix         string
	typeHeader     string
	ackMode        stompv3.AckMode
	wrap           WrapFunc
	validatorWrap  ValidatorWrapFunc
	defaultHandler func(destination string) (Handler, error)

	registry *dispatch.Registry[entry]

	mu     sync.Mutex
	queues []*queue
}

// New creates a Dispatcher. A connection and a wrap function are required.
func New(opts ...Option) (*Dispatcher, error) {
	d := &Dispatcher{
		prefix:     dispatch.DefaultConfigPrefix,
		typeHeader: DefaultTypeHeader,
		ackMode:    stompv3.AckClientIndividual,
	}
	for _, opt := range opts {
		opt(d)
	}

	if d.conn == nil {
		return nil, ErrConnRequired
	}
	if d.wrap == nil {
		return nil, ErrWrapRequired
	}
	if d.log == nil {
		log, err := logging.New(logging.WithOutput(io.Discard))
		if err != nil {
			return nil, fmt.Errorf("stomp: default logger: %w", err)
		}
		d.log = log
	}

	d.registry = dispatch.NewRegistry[entry](queueBinder{d: d})
	return d, nil
}

// MustNew is like New but panics on error.
func MustNew(opts ...Option) *Dispatcher {
	d, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return d
}

// queueBinder materializes one queue per physical destination.
type queueBinder struct {
	d *Dispatcher
}

func (b queueBinder) Mount(destination string) (dispatch.Sink[entry], error) {
	q := &queue{
		destination: destination,
		entries:     make(map[string]entry),
	}
	b.d.mu.Lock()
	b.d.queues = append(b.d.queues, q)
	b.d.mu.Unlock()
	return q, nil
}

// Register resolves and registers the route tables of the given
// components, exactly like the HTTP registrar: overlay lookup, enabled
// check, aliasing, idempotent per-destination materialization.
func (d *Dispatcher) Register(ctx context.Context, components ...dispatch.Component) error {
	for _, comp := range components {
		kind := comp.Kind()

		overlay, err := dispatch.OverlayFor(d.cfg, d.prefix, kind)
		if err != nil {
			return fmt.Errorf("stomp: overlay for %q: %w", kind, err)
		}
		if !overlay.Enabled {
			d.log.Debug("component disabled, skipping", "kind", kind)
			continue
		}

		table := dispatch.Resolve(comp.Routes(), overlay.Aliases)
		if err := d.registry.Apply(ctx, table, d.wrapEntry); err != nil {
			return fmt.Errorf("stomp: component %q: %w", kind, err)
		}
		if err := d.installDefaults(table); err != nil {
			return fmt.Errorf("stomp: component %q: %w", kind, err)
		}

		d.log.Info("message routes registered",
			"kind", kind,
			"destinations", len(table),
		)
	}
	return nil
}

// Destinations returns the physical destinations materialized so far, in
// sorted order.
func (d *Dispatcher) Destinations() []string {
	return d.registry.Destinations()
}

// wrapEntry combines the handler wrap and the validator wrap into one
// registered entry.
func (d *Dispatcher) wrapEntry(ctx context.Context, destination, msgType string, act dispatch.Action) (entry, error) {
	handler, err := d.wrap(ctx, destination, msgType, act)
	if err != nil {
		return entry{}, err
	}
	if handler == nil {
		return entry{}, fmt.Errorf("nil handler for %s/%s", destination, msgType)
	}

	e := entry{handler: handler}
	if d.validatorWrap != nil {
		validator, err := d.validatorWrap(destination, msgType, act)
		if err != nil {
			return entry{}, fmt.Errorf("validator for %s/%s: %w", destination, msgType, err)
		}
		e.validator = validator
	}
	return e, nil
}

func (d *Dispatcher) installDefaults(table dispatch.Table) error {
	if d.defaultHandler == nil {
		return nil
	}
	for destination := range table {
		c := d.registry.Controller(destination)
		if c == nil || c.HasDefault() {
			continue
		}
		handler, err := d.defaultHandler(destination)
		if err != nil {
			return fmt.Errorf("default handler for %s: %w", destination, err)
		}
		if _, err := c.InstallDefault(entry{handler: handler}); err != nil {
			return err
		}
	}
	return nil
}

// Run subscribes to every materialized destination and dispatches
// received messages until ctx is done or the broker closes all
// subscriptions. Disconnecting the connection is the caller's concern;
// closing it ends the subscriptions and Run returns.
func (d *Dispatcher) Run(ctx context.Context) error {
	d.mu.Lock()
	queues := make([]*queue, len(d.queues))
	copy(queues, d.queues)
	d.mu.Unlock()

	var wg sync.WaitGroup
	for _, q := range queues {
		sub, err := d.conn.Subscribe(q.destination, d.ackMode)
		if err != nil {
			return fmt.Errorf("stomp: subscribe %s: %w", q.destination, err)
		}
		d.log.Debug("subscribed", "destination", q.destination)

		wg.Add(1)
		go func(q *queue, sub *stompv3.Subscription) {
			defer wg.Done()
			d.consume(ctx, q, sub)
		}(q, sub)
	}

	wg.Wait()
	return ctx.Err()
}

// consume delivers messages from one subscription until it closes or ctx
// is done.
func (d *Dispatcher) consume(ctx context.Context, q *queue, sub *stompv3.Subscription) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-sub.C:
			if !ok || msg == nil {
				return
			}
			if msg.Err != nil {
				d.log.Error("receive failed",
					"destination", q.destination,
					"err", msg.Err,
				)
				return
			}
			d.deliver(ctx, q, msg)
		}
	}
}

// deliver routes one message through validation and its type's handler.
func (d *Dispatcher) deliver(ctx context.Context, q *queue, msg *stompv3.Message) {
	msgType := ""
	if msg.Header != nil {
		msgType = msg.Header.Get(d.typeHeader)
	}

	e, ok := q.entries[msgType]
	if !ok {
		if q.fallback != nil {
			if err := q.fallback(ctx, msg); err != nil {
				d.log.Error("default handler failed",
					"destination", q.destination,
					"type", msgType,
					"err", err,
				)
				d.nack(msg)
				return
			}
			d.ack(msg)
			return
		}
		d.log.Warn("no handler for message type",
			"destination", q.destination,
			"type", msgType,
		)
		d.nack(msg)
		return
	}

	if e.validator != nil {
		valid, err := e.validator(ctx, msg)
		if err != nil {
			d.log.Error("validator failed",
				"destination", q.destination,
				"type", msgType,
				"err", err,
			)
			d.nack(msg)
			return
		}
		if !valid {
			d.log.Debug("message rejected",
				"destination", q.destination,
				"type", msgType,
			)
			d.nack(msg)
			return
		}
	}

	if err := e.handler(ctx, msg); err != nil {
		d.log.Error("handler failed",
			"destination", q.destination,
			"type", msgType,
			"err", err,
		)
		d.nack(msg)
		return
	}
	d.ack(msg)
}

func (d *Dispatcher) ack(msg *stompv3.Message) {
	if d.ackMode == stompv3.AckAuto {
		return
	}
	if err := d.conn.Ack(msg); err != nil {
		d.log.Error("ack failed", "destination", msg.Destination, "err", err)
	}
}

func (d *Dispatcher) nack(msg *stompv3.Message) {
	if d.ackMode == stompv3.AckAuto {
		return
	}
	if err := d.conn.Nack(msg); err != nil {
		d.log.Error("nack failed", "destination", msg.Destination, "err", err)
	}
}
