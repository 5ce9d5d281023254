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

package merge

import (
	"time"

	"github.com/gorhill/cronexpr"
)

// A Schedule says when the next tick should fire.  The default
// schedule is just the Merger's period; a cron schedule replaces it.
type Schedule interface {
	Next(now time.Time) time.Time
}

// Cron schedules ticks from a cron expression (with optional seconds
// field, per cronexpr).
type Cron struct {
	expr *cronexpr.Expression
}

// NewCron parses a cron expression like "*/5 * * * * *".
func NewCron(spec string) (*Cron, error) {
	expr, err := cronexpr.Parse(spec)
	if err != nil {
		return nil, err
	}
	return &Cron{expr: expr}, nil
}

func (c *Cron) Next(now time.Time) time.Time {
	return c.expr.Next(now)
}

// SetSchedule replaces the periodic timer with the given Schedule.
// Takes effect at the next tick.
func (m *Merger) SetSchedule(s Schedule) {
	m.Lock()
	m.sched = s
	m.Unlock()
}
