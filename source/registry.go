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

package source

import (
	"context"
	"log"
	"sort"
)

// entry pairs a feed connection with the latest value seen from it.
type entry struct {
	conn   Conn
	latest interface{}

	// seen reports whether the feed has produced anything yet.
	seen bool
}

// Registry maps source names to connections and cached values.
//
// Entries are created lazily by Declare and live for the life of the
// Registry.  Refresh and Value are meant to be called from a single
// tick loop: Refresh fully, then Value freely.
type Registry struct {
	Debug bool

	dialer  Dialer
	entries map[string]*entry
}

// NewRegistry creates an empty Registry that dials feeds with the
// given Dialer.
func NewRegistry(d Dialer) *Registry {
	return &Registry{
		dialer:  d,
		entries: make(map[string]*entry, 8),
	}
}

func (r *Registry) logf(format string, args ...interface{}) {
	if r.Debug {
		log.Printf("Registry."+format, args...)
	}
}

// Declare dials the named feed and registers it.  Declaring a name
// that's already registered does nothing.
func (r *Registry) Declare(ctx context.Context, name string) error {
	if _, have := r.entries[name]; have {
		return nil
	}
	r.logf("Declare %s", name)
	conn, err := r.dialer.Dial(ctx, name)
	if err != nil {
		return &ConnectionError{Name: name, Err: err}
	}
	r.entries[name] = &entry{conn: conn}
	return nil
}

// Refresh polls every declared feed and overwrites cached values.
//
// A feed with nothing new keeps its previous cache; that is not an
// error.  A real poll failure doesn't stop the other feeds from
// refreshing; the last such failure is returned so the tick driver
// can report it.
func (r *Registry) Refresh() error {
	var last error
	for name, e := range r.entries {
		v, fresh, err := e.conn.Poll()
		if err != nil {
			r.logf("Refresh %s error %s", name, err)
			last = err
			continue
		}
		if !fresh {
			continue
		}
		e.latest = v
		e.seen = true
	}
	return last
}

// Value returns the most recent value for a declared source.
//
// A declared feed that has never produced a value yields an empty
// list; selecting into it will fail that tick with an out-of-range
// error, which is the intended "no data yet" behavior.
func (r *Registry) Value(name string) (interface{}, error) {
	e, have := r.entries[name]
	if !have {
		return nil, &UnknownSourceError{Name: name}
	}
	if !e.seen {
		return []interface{}{}, nil
	}
	return e.latest, nil
}

// Names returns the declared source names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Close closes every connection, returning the last error (if any).
func (r *Registry) Close() error {
	var last error
	for name, e := range r.entries {
		if err := e.conn.Close(); err != nil {
			r.logf("Close %s error %s", name, err)
			last = err
		}
	}
	return last
}
