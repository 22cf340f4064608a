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

import "errors"

var (
	// ErrRouterRequired is returned by New when no router was provided.
	ErrRouterRequired = errors.New("dispatch: router is required")

	// ErrDuplicateAction is returned when two components register the
	// same (destination, action) pair.
	ErrDuplicateAction = errors.New("dispatch: duplicate action")

	// ErrHandlerType is returned by the default wrap function when an
	// action's handler descriptor is not a supported handler form.
	ErrHandlerType = errors.New("dispatch: unsupported handler type")
)
