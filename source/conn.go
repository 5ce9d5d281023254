/* Copyright 2019 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package source maintains the set of named live feeds that a format
// reads: which feeds are declared, a connection to each, and the most
// recent value seen from each.
//
// The Registry is refreshed once per tick and then read by the
// Selector tree.  A tick never overlaps another, so the Registry does
// no locking of its own around cached values.
package source

import (
	"context"
)

// A Conn is a connection to one named live feed.
//
// Poll must not block waiting for data: a feed that hasn't produced
// anything new just reports false.
type Conn interface {
	// Poll returns the newest value from the feed, if there is
	// one that hasn't been returned before.
	Poll() (interface{}, bool, error)

	// Close releases the connection.
	Close() error
}

// A Dialer opens connections to named feeds.  Implementations decide
// what a name means: an MQTT topic, a URL alias, an in-memory feed.
type Dialer interface {
	Dial(ctx context.Context, name string) (Conn, error)
}

// ConnectionError occurs when a named feed can't be reached.  During
// initial declaration this is fatal.
type ConnectionError struct {
	Name string
	Err  error
}

func (e *ConnectionError) Error() string {
	return `cannot connect to source "` + e.Name + `": ` + e.Err.Error()
}

// UnknownSourceError occurs when a value is requested for a name that
// was never declared.  Since declaration walks the same tree that
// selection does, seeing this error indicates a bug.
type UnknownSourceError struct {
	Name string
}

func (e *UnknownSourceError) Error() string {
	return `source "` + e.Name + `" was never declared`
}
