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

// Package stomp dispatches STOMP messages through declarative route
// tables.
//
// It applies the rivaas.dev/dispatch model to message destinations: a
// component's route table maps logical destinations to message-type tables
// instead of URL paths to actions. The deployment overlay works the same
// way, so one logical queue can be renamed or fanned out to several
// physical queues without touching component code.
//
//	conn, _ := gostomp.Dial("tcp", "broker:61613")
//	d := stomp.MustNew(
//	    stomp.WithConn(conn),
//	    stomp.WithConfig(cfg),
//	    stomp.WithWrap(wrapMessage),
//	)
//	if err := d.Register(ctx, payments{}); err != nil {
//	    log.Fatal(err)
//	}
//	if err := d.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// Register materializes one subscription target per physical destination
// at load time. Run subscribes to each destination and delivers every
// received message to the handler registered for the message's type
// header ("type" by default). An optional validator runs before the
// handler; rejection nacks the message and is logged as an application
// outcome, not a fault. Messages with an unmatched type go to the
// controller's default handler when one is installed, otherwise they are
// nacked.
//
// The wrap function is required: unlike HTTP handlers, there is no
// universal message-handler shape, so the application decides how its
// descriptors become [Handler] values.
package stomp
