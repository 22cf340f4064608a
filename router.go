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
	"net/http"
	"strings"

	"rivaas.dev/router"
	"rivaas.dev/router/route"
)

// routerBinder materializes controllers as named route sets on the host
// router. One sink per physical destination; the destination becomes the
// leading path segment of every action route.
type routerBinder struct {
	reg *Registrar
}

func (b *routerBinder) Mount(destination string) (Sink[router.HandlerFunc], error) {
	trimmed := strings.Trim(destination, "/")
	if trimmed == "" {
		return nil, fmt.Errorf("empty destination")
	}
	return &routerSink{
		reg:         b.reg,
		destination: destination,
		base:        "/" + trimmed,
	}, nil
}

// routerSink registers a controller's actions on the router.
type routerSink struct {
	reg         *Registrar
	destination string
	base        string
}

func (s *routerSink) Action(meta ActionMeta, handler router.HandlerFunc) error {
	methods, err := actionMethods(meta.Extra, s.reg.methods)
	if err != nil {
		return fmt.Errorf("action %s: %w", meta.Name, err)
	}

	path := s.base + "/" + meta.Action
	for i, method := range methods {
		rt, err := s.add(method, path, handler)
		if err != nil {
			return err
		}
		// Route names are globally unique; only the first method
		// carries the reverse-lookup name.
		if i == 0 {
			rt.SetName(meta.Name)
		}
	}
	return nil
}

func (s *routerSink) Default(handler router.HandlerFunc) error {
	path := s.base + "/*"
	for i, method := range s.reg.methods {
		rt, err := s.add(method, path, handler)
		if err != nil {
			return err
		}
		if i == 0 {
			rt.SetName(s.destinationName("default"))
		}
	}
	return nil
}

func (s *routerSink) destinationName(action string) string {
	return strings.Trim(s.destination, "/") + "/" + action
}

func (s *routerSink) add(method, path string, handler router.HandlerFunc) (*route.Route, error) {
	r := s.reg.router
	switch method {
	case http.MethodGet:
		return r.GET(path, handler), nil
	case http.MethodPost:
		return r.POST(path, handler), nil
	case http.MethodPut:
		return r.PUT(path, handler), nil
	case http.MethodDelete:
		return r.DELETE(path, handler), nil
	case http.MethodPatch:
		return r.PATCH(path, handler), nil
	case http.MethodOptions:
		return r.OPTIONS(path, handler), nil
	case http.MethodHead:
		return r.HEAD(path, handler), nil
	default:
		return nil, fmt.Errorf("unsupported method %q", method)
	}
}

// actionMethods returns the HTTP methods an action registers for: the
// Extra["methods"] override when present, otherwise the registrar default.
func actionMethods(extra map[string]any, fallback []string) ([]string, error) {
	raw, ok := extra["methods"]
	if !ok {
		return fallback, nil
	}
	methods, err := toStringList(raw)
	if err != nil {
		return nil, fmt.Errorf("methods: %w", err)
	}
	if len(methods) == 0 {
		return fallback, nil
	}
	for i, m := range methods {
		methods[i] = strings.ToUpper(m)
	}
	return methods, nil
}

// wrapHandler is the default handler adaptation. It accepts the router's
// handler forms directly and adapts error-returning handlers so failures
// render through the registrar's error formatter.
func (reg *Registrar) wrapHandler(_ context.Context, destination, action string, act Action) (router.HandlerFunc, error) {
	switch h := act.Handler.(type) {
	case router.HandlerFunc:
		return h, nil
	case func(*router.Context):
		return h, nil
	case func(*router.Context) error:
		return reg.renderErrors(h), nil
	case nil:
		return nil, fmt.Errorf("%w: nil handler for %s/%s", ErrHandlerType, destination, action)
	default:
		return nil, fmt.Errorf("%w: %T for %s/%s", ErrHandlerType, act.Handler, destination, action)
	}
}

// renderErrors adapts an error-returning handler. A returned error is
// formatted and written as the response; nil writes nothing here, the
// handler owns its own success output.
func (reg *Registrar) renderErrors(h func(*router.Context) error) router.HandlerFunc {
	return func(c *router.Context) {
		err := h(c)
		if err == nil {
			return
		}
		resp := reg.formatter.Format(c.Request, err)
		for key, values := range resp.Headers {
			for _, value := range values {
				c.Response.Header().Add(key, value)
			}
		}
		if writeErr := c.JSON(resp.Status, resp.Body); writeErr != nil {
			reg.log.Error("failed to write error response",
				"path", c.Request.URL.Path,
				"err", writeErr,
			)
		}
	}
}
