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
	"errors"
	"sync"
)

// Feed is an in-memory Conn: something in-process Sets values and a
// Registry Polls them.  Handy for tests and for feeds the process
// generates itself.
type Feed struct {
	sync.Mutex

	v     interface{}
	fresh bool
}

// Set stores a new value for the feed.
func (f *Feed) Set(v interface{}) {
	f.Lock()
	f.v = v
	f.fresh = true
	f.Unlock()
}

func (f *Feed) Poll() (interface{}, bool, error) {
	f.Lock()
	defer f.Unlock()
	if !f.fresh {
		return nil, false, nil
	}
	f.fresh = false
	return f.v, true, nil
}

func (f *Feed) Close() error {
	return nil
}

// Feeds is a Dialer over a fixed set of in-memory Feeds.  Dialing a
// name that wasn't Added fails, which mirrors a transport that can't
// locate a feed.
type Feeds struct {
	sync.Mutex

	m map[string]*Feed
}

// NewFeeds creates an empty Feeds.
func NewFeeds() *Feeds {
	return &Feeds{
		m: make(map[string]*Feed, 8),
	}
}

// Add creates (or returns) the Feed with the given name.
func (fs *Feeds) Add(name string) *Feed {
	fs.Lock()
	defer fs.Unlock()
	f, have := fs.m[name]
	if !have {
		f = &Feed{}
		fs.m[name] = f
	}
	return f
}

func (fs *Feeds) Dial(ctx context.Context, name string) (Conn, error) {
	fs.Lock()
	defer fs.Unlock()
	f, have := fs.m[name]
	if !have {
		return nil, errors.New("no such feed")
	}
	return f, nil
}
