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

// Package merge drives the ticks: refresh all sources, select one
// output record, emit it.
package merge

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/loomery/loom/format"
	"github.com/loomery/loom/source"
	"github.com/loomery/loom/transform"
)

// NotConfigured occurs when a Merger is ticked or run before
// Configure has succeeded.
var NotConfigured = errors.New("merger not configured")

// DefaultPeriod is the tick period before anybody asks for another:
// 10 Hz.
var DefaultPeriod = 100 * time.Millisecond

// Merger evaluates a parsed format against fresh source values, once
// per tick.
//
// A Merger is configured once (parse the format, declare the
// sources); configuration errors are fatal and prevent Run.  After
// that, every tick is refresh-then-select-then-emit.  A tick that
// fails to select is abandoned (nothing is emitted) and reported; the
// loop keeps going.
type Merger struct {
	Debug bool

	// Transform, if not nil, rewrites each record after selection
	// and before emission.
	Transform transform.Transformer

	registry *source.Registry
	emit     func(context.Context, []interface{}) error
	root     *format.RootSelector

	sync.Mutex
	period  time.Duration
	sched   Schedule
	running bool
}

// NewMerger creates an unconfigured Merger that reads sources from
// the given registry and hands each merged record to emit.
func NewMerger(registry *source.Registry, emit func(context.Context, []interface{}) error) *Merger {
	return &Merger{
		registry: registry,
		emit:     emit,
		period:   DefaultPeriod,
	}
}

func (m *Merger) logf(format string, args ...interface{}) {
	if m.Debug {
		log.Printf("Merger."+format, args...)
	}
}

// Configure parses the given format text and declares its sources.
// Call it once, before Run.
func (m *Merger) Configure(ctx context.Context, text string) error {
	root, err := format.ParseText(text)
	if err != nil {
		return err
	}
	return m.install(ctx, root)
}

// ConfigureTokens is Configure for a pre-tokenized format, as
// delivered by a transport that already parses nested lists.
func (m *Merger) ConfigureTokens(ctx context.Context, tokens []interface{}) error {
	root, err := format.Parse(tokens)
	if err != nil {
		return err
	}
	return m.install(ctx, root)
}

func (m *Merger) install(ctx context.Context, root *format.RootSelector) error {
	if err := root.DeclareSources(ctx, m.registry); err != nil {
		return err
	}
	m.root = root
	m.logf("Configure sources %v", m.registry.Names())
	return nil
}

// Info renders the parsed format for operator inspection.  Safe to
// call concurrently with ticking: the tree is read-only after
// Configure.
func (m *Merger) Info(indent int) string {
	if m.root == nil {
		return "not configured\n"
	}
	return m.root.Render(indent)
}

// Format returns the parsed selector tree (nil before Configure).
// The tree is read-only after Configure, so callers can render it
// concurrently with ticking.
func (m *Merger) Format() *format.RootSelector {
	return m.root
}

// Tick runs one refresh-select-emit cycle.
//
// A refresh problem is only logged: the previous cached values are
// still good.  A select or transform error abandons the tick and is
// returned; the caller decides whether that stops anything (Run
// doesn't stop).
func (m *Merger) Tick(ctx context.Context) error {
	if m.root == nil {
		return NotConfigured
	}

	if err := m.registry.Refresh(); err != nil {
		m.logf("Tick refresh warning %s", err)
	}

	out := make([]interface{}, 0, len(m.root.Children))
	if err := m.root.Select(&out, m.registry); err != nil {
		return err
	}

	if m.Transform != nil {
		var err error
		if out, err = m.Transform.Transform(ctx, out); err != nil {
			return err
		}
	}

	return m.emit(ctx, out)
}

// Run ticks until the context is canceled.
//
// Ticks never overlap: the next tick is scheduled only after the
// previous one has completed, so a slow tick delays (or effectively
// skips) later ones rather than racing them.  Per-tick errors are
// logged and the loop continues.
func (m *Merger) Run(ctx context.Context) error {
	if m.root == nil {
		return NotConfigured
	}

	m.Lock()
	m.running = true
	m.Unlock()
	defer func() {
		m.Lock()
		m.running = false
		m.Unlock()
	}()

	timer := time.NewTimer(m.wait(time.Now()))
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
			if err := m.Tick(ctx); err != nil {
				log.Printf("Merger.Tick error %s", err)
			}
			timer.Reset(m.wait(time.Now()))
		}
	}
}

// Running reports whether Run is looping.
func (m *Merger) Running() bool {
	m.Lock()
	defer m.Unlock()
	return m.running
}

// wait returns how long until the next tick should fire.
func (m *Merger) wait(now time.Time) time.Duration {
	m.Lock()
	defer m.Unlock()
	if m.sched != nil {
		d := m.sched.Next(now).Sub(now)
		if d < 0 {
			d = 0
		}
		return d
	}
	return m.period
}

// SetPeriod changes the tick period (and clears any cron schedule).
// Takes effect at the next tick.
func (m *Merger) SetPeriod(d time.Duration) error {
	if d <= 0 {
		return errors.New("period must be larger than 0")
	}
	m.Lock()
	m.period = d
	m.sched = nil
	m.Unlock()
	return nil
}

// SetFrequency sets the tick period via a sampling frequency in Hz.
func (m *Merger) SetFrequency(hz float64) error {
	if hz <= 0 {
		return errors.New("frequency must be larger than 0")
	}
	return m.SetPeriod(time.Duration(float64(time.Second) / hz))
}

// Period returns the current tick period.
func (m *Merger) Period() time.Duration {
	m.Lock()
	defer m.Unlock()
	return m.period
}
