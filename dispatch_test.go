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
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rivaas.dev/config"
	"rivaas.dev/config/codec"
	"rivaas.dev/router"
)

func loadConfig(t *testing.T, yaml string) *config.Config {
	t.Helper()
	cfg := config.MustNew(config.WithContent([]byte(yaml), codec.TypeYAML))
	require.NoError(t, cfg.Load(context.Background()))
	return cfg
}

func doRequest(r *router.Router, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func textHandler(body string) func(*router.Context) {
	return func(c *router.Context) {
		_ = c.String(http.StatusOK, body)
	}
}

func TestNewValidation(t *testing.T) {
	t.Parallel()

	t.Run("router is required", func(t *testing.T) {
		t.Parallel()

		_, err := New()
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrRouterRequired)
	})

	t.Run("methods must not be empty", func(t *testing.T) {
		t.Parallel()

		_, err := New(WithRouter(router.MustNew()), WithMethods())
		require.Error(t, err)
	})

	t.Run("defaults are applied", func(t *testing.T) {
		t.Parallel()

		reg, err := New(WithRouter(router.MustNew()))
		require.NoError(t, err)
		assert.Empty(t, reg.Destinations())
	})
}

func TestRegisterSingleRoute(t *testing.T) {
	t.Parallel()

	reg, r := TestingRegistrar(t)
	err := reg.Register(context.Background(), Static{
		Name: "web",
		Spec: RouteSpec{
			"/a": {"act1": {Handler: textHandler("ok-act1")}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"/a"}, reg.Destinations())

	w := doRequest(r, http.MethodPost, "/a/act1")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok-act1", w.Body.String())

	// Default method is POST only.
	w = doRequest(r, http.MethodGet, "/a/act1")
	assert.NotEqual(t, http.StatusOK, w.Code)
}

func TestRegisterDisabledComponent(t *testing.T) {
	t.Parallel()

	cfg := loadConfig(t, `
dispatch:
  web:
    enabled: false
`)
	reg, r := TestingRegistrar(t, WithConfig(cfg))
	err := reg.Register(context.Background(), Static{
		Name: "web",
		Spec: RouteSpec{"/a": {"act1": {Handler: textHandler("never")}}},
	})
	require.NoError(t, err)

	assert.Empty(t, reg.Destinations())
	w := doRequest(r, http.MethodPost, "/a/act1")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRegisterFanOut(t *testing.T) {
	t.Parallel()

	cfg := loadConfig(t, `
dispatch:
  worker:
    aliases:
      q1: [q1, q2]
`)
	reg, r := TestingRegistrar(t, WithConfig(cfg))
	err := reg.Register(context.Background(), Static{
		Name: "worker",
		Spec: RouteSpec{"q1": {"t1": {Handler: textHandler("handled")}}},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"q1", "q2"}, reg.Destinations())
	for _, path := range []string{"/q1/t1", "/q2/t1"} {
		w := doRequest(r, http.MethodPost, path)
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.Equal(t, "handled", w.Body.String(), path)
	}
}

func TestRegisterFanIn(t *testing.T) {
	t.Parallel()

	cfg := loadConfig(t, `
dispatch:
  worker:
    aliases:
      a: q
      b: q
`)
	reg, r := TestingRegistrar(t, WithConfig(cfg))
	err := reg.Register(context.Background(), Static{
		Name: "worker",
		Spec: RouteSpec{
			"a": {"act1": {Handler: textHandler("one")}},
			"b": {"act2": {Handler: textHandler("two")}},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"q"}, reg.Destinations())
	assert.Equal(t, []string{"act1", "act2"}, reg.registry.Controller("q").Actions())

	w := doRequest(r, http.MethodPost, "/q/act1")
	assert.Equal(t, "one", w.Body.String())
	w = doRequest(r, http.MethodPost, "/q/act2")
	assert.Equal(t, "two", w.Body.String())
}

func TestRegisterSharedDestinationAcrossComponents(t *testing.T) {
	t.Parallel()

	reg, r := TestingRegistrar(t)
	ctx := context.Background()

	err := reg.Register(ctx,
		Static{Name: "one", Spec: RouteSpec{"q": {"t1": {Handler: textHandler("t1")}}}},
		Static{Name: "two", Spec: RouteSpec{"q": {"t2": {Handler: textHandler("t2")}}}},
	)
	require.NoError(t, err)

	assert.Equal(t, []string{"q"}, reg.Destinations())
	w := doRequest(r, http.MethodPost, "/q/t1")
	assert.Equal(t, "t1", w.Body.String())
	w = doRequest(r, http.MethodPost, "/q/t2")
	assert.Equal(t, "t2", w.Body.String())
}

func TestRegisterDuplicateActionAcrossComponents(t *testing.T) {
	t.Parallel()

	reg, _ := TestingRegistrar(t)
	ctx := context.Background()

	err := reg.Register(ctx,
		Static{Name: "one", Spec: RouteSpec{"q": {"t1": {Handler: textHandler("a")}}}},
		Static{Name: "two", Spec: RouteSpec{"q": {"t1": {Handler: textHandler("b")}}}},
	)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateAction)
}

func TestRegisterDefaultHandler(t *testing.T) {
	t.Parallel()

	factoryCalls := 0
	reg, r := TestingRegistrar(t, WithDefaultHandler(func(destination string) (router.HandlerFunc, error) {
		factoryCalls++
		return textHandler("default:" + destination), nil
	}))

	ctx := context.Background()
	err := reg.Register(ctx,
		Static{Name: "one", Spec: RouteSpec{"q": {"t1": {Handler: textHandler("t1")}}}},
		Static{Name: "two", Spec: RouteSpec{"q": {"t2": {Handler: textHandler("t2")}}}},
	)
	require.NoError(t, err)

	// Both components touched "q" but the catch-all is installed once.
	assert.Equal(t, 1, factoryCalls)
	assert.True(t, reg.registry.Controller("q").HasDefault())

	w := doRequest(r, http.MethodPost, "/q/t1")
	assert.Equal(t, "t1", w.Body.String())
	w = doRequest(r, http.MethodPost, "/q/unmatched")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "default:q", w.Body.String())
}

func TestRegisterCustomWrap(t *testing.T) {
	t.Parallel()

	reg, r := TestingRegistrar(t, WithWrap(
		func(_ context.Context, destination, action string, act Action) (router.HandlerFunc, error) {
			body := act.Handler.(string)
			return func(c *router.Context) {
				_ = c.String(http.StatusOK, destination+"/"+action+"="+body)
			}, nil
		},
	))

	err := reg.Register(context.Background(), Static{
		Name: "web",
		Spec: RouteSpec{"svc": {"ping": {Handler: "pong"}}},
	})
	require.NoError(t, err)

	w := doRequest(r, http.MethodPost, "/svc/ping")
	assert.Equal(t, "svc/ping=pong", w.Body.String())
}

func TestRegisterMethodOverride(t *testing.T) {
	t.Parallel()

	reg, r := TestingRegistrar(t)
	err := reg.Register(context.Background(), Static{
		Name: "web",
		Spec: RouteSpec{
			"svc": {
				"list": {
					Handler: textHandler("listed"),
					Extra:   map[string]any{"methods": []string{"GET"}},
				},
			},
		},
	})
	require.NoError(t, err)

	w := doRequest(r, http.MethodGet, "/svc/list")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "listed", w.Body.String())

	w = doRequest(r, http.MethodPost, "/svc/list")
	assert.NotEqual(t, http.StatusOK, w.Code)
}
