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
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/loomery/loom/source"
	"github.com/loomery/loom/transform"

	. "github.com/loomery/loom/util/testutil"
)

func testMerger(t *testing.T) (*Merger, *source.Feeds, *[][]interface{}) {
	t.Helper()

	feeds := source.NewFeeds()
	emitted := make([][]interface{}, 0, 8)
	m := NewMerger(source.NewRegistry(feeds), func(ctx context.Context, rec []interface{}) error {
		emitted = append(emitted, rec)
		return nil
	})
	return m, feeds, &emitted
}

func TestTick(t *testing.T) {
	ctx := context.Background()

	m, feeds, emitted := testMerger(t)
	p := feeds.Add("P")
	q := feeds.Add("Q")

	if err := m.Configure(ctx, "(P[2] (Q))"); err != nil {
		t.Fatal(err)
	}

	p.Set(Dwimjs(`[10,20,30]`))
	q.Set(Dwimjs(`["a"]`))

	if err := m.Tick(ctx); err != nil {
		t.Fatal(err)
	}
	want := Dwimjs(`[20,["a"]]`)
	if !reflect.DeepEqual((*emitted)[0], want) {
		t.Fatalf("got %s, wanted %s", JS((*emitted)[0]), JS(want))
	}

	// No new data: the next tick emits the same record.
	if err := m.Tick(ctx); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual((*emitted)[1], (*emitted)[0]) {
		t.Fatalf("%s != %s", JS((*emitted)[1]), JS((*emitted)[0]))
	}
}

func TestTickNoDataYet(t *testing.T) {
	ctx := context.Background()

	m, feeds, emitted := testMerger(t)
	feeds.Add("P")

	if err := m.Configure(ctx, "(P[1])"); err != nil {
		t.Fatal(err)
	}

	// P hasn't produced anything, so this tick fails (out of
	// range on the empty "no data yet" list) without emitting.
	if err := m.Tick(ctx); err == nil {
		t.Fatal("expected an error")
	}
	if len(*emitted) != 0 {
		t.Fatalf("emitted %d records; wanted none", len(*emitted))
	}

	// Once data arrives, ticks succeed.
	feeds.Add("P").Set(Dwimjs(`[1]`))
	if err := m.Tick(ctx); err != nil {
		t.Fatal(err)
	}
	if len(*emitted) != 1 {
		t.Fatalf("emitted %d records; wanted one", len(*emitted))
	}
}

func TestConfigureErrors(t *testing.T) {
	ctx := context.Background()

	m, feeds, _ := testMerger(t)
	feeds.Add("A")

	// Bad format.
	if err := m.Configure(ctx, "(A[2-1])"); err == nil {
		t.Fatal("expected a range error")
	}

	// Unreachable source.
	if err := m.Configure(ctx, "(A B)"); err == nil {
		t.Fatal("expected a connection error")
	}

	// Not configured: can't tick or run.
	if err := m.Tick(ctx); err != NotConfigured {
		t.Fatalf("got %v, wanted %v", err, NotConfigured)
	}
	if err := m.Run(ctx); err != NotConfigured {
		t.Fatalf("got %v, wanted %v", err, NotConfigured)
	}
}

func TestRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	feeds := source.NewFeeds()
	p := feeds.Add("P")
	p.Set(Dwimjs(`[1,2]`))

	got := make(chan []interface{}, 64)
	m := NewMerger(source.NewRegistry(feeds), func(ctx context.Context, rec []interface{}) error {
		got <- rec
		return nil
	})

	if err := m.Configure(ctx, "(P)"); err != nil {
		t.Fatal(err)
	}
	if err := m.SetFrequency(200); err != nil {
		t.Fatal(err)
	}

	done := make(chan error, 1)
	go func() {
		done <- m.Run(ctx)
	}()

	select {
	case rec := <-got:
		if !reflect.DeepEqual(rec, Dwimjs(`[1,2]`)) {
			t.Fatalf("bad record %s", JS(rec))
		}
	case <-time.After(time.Second):
		t.Fatal("no record emitted")
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatal(err)
	}
}

func TestRunSurvivesBadTicks(t *testing.T) {
	// A per-tick failure must not stop the loop.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	feeds := source.NewFeeds()
	p := feeds.Add("P")

	got := make(chan []interface{}, 64)
	m := NewMerger(source.NewRegistry(feeds), func(ctx context.Context, rec []interface{}) error {
		got <- rec
		return nil
	})

	if err := m.Configure(ctx, "(P[1])"); err != nil {
		t.Fatal(err)
	}
	if err := m.SetPeriod(5 * time.Millisecond); err != nil {
		t.Fatal(err)
	}

	go m.Run(ctx)

	// Let some ticks fail, then provide data.
	time.Sleep(25 * time.Millisecond)
	p.Set(Dwimjs(`[42]`))

	select {
	case rec := <-got:
		if !reflect.DeepEqual(rec, Dwimjs(`[42]`)) {
			t.Fatalf("bad record %s", JS(rec))
		}
	case <-time.After(time.Second):
		t.Fatal("loop didn't recover")
	}
}

func TestSetFrequency(t *testing.T) {
	m, _, _ := testMerger(t)
	if err := m.SetFrequency(0); err == nil {
		t.Fatal("expected an error")
	}
	if err := m.SetFrequency(-1); err == nil {
		t.Fatal("expected an error")
	}
	if err := m.SetFrequency(20); err != nil {
		t.Fatal(err)
	}
	if m.Period() != 50*time.Millisecond {
		t.Fatalf("bad period %v", m.Period())
	}
}

func TestCronSchedule(t *testing.T) {
	c, err := NewCron("*/2 * * * * *")
	if err != nil {
		t.Fatal(err)
	}
	now := time.Now()
	next := c.Next(now)
	if !next.After(now) {
		t.Fatalf("%v isn't after %v", next, now)
	}
	if _, err = NewCron("not cron"); err == nil {
		t.Fatal("expected an error")
	}
}

func TestTransformHook(t *testing.T) {
	ctx := context.Background()

	m, feeds, emitted := testMerger(t)
	feeds.Add("P").Set(Dwimjs(`[1]`))

	m.Transform = transform.Func(func(ctx context.Context, rec []interface{}) ([]interface{}, error) {
		return append(rec, "extra"), nil
	})

	if err := m.Configure(ctx, "(P)"); err != nil {
		t.Fatal(err)
	}
	if err := m.Tick(ctx); err != nil {
		t.Fatal(err)
	}
	want := Dwimjs(`[1,"extra"]`)
	if !reflect.DeepEqual((*emitted)[0], want) {
		t.Fatalf("got %s, wanted %s", JS((*emitted)[0]), JS(want))
	}
}

func TestInfo(t *testing.T) {
	m, feeds, _ := testMerger(t)
	if m.Info(0) != "not configured\n" {
		t.Fatal("expected a 'not configured' rendering")
	}
	if m.Format() != nil {
		t.Fatal("expected no tree before Configure")
	}
	feeds.Add("A")
	if err := m.Configure(context.Background(), "(A[1-2])"); err != nil {
		t.Fatal(err)
	}
	if m.Format() == nil {
		t.Fatal("expected a tree after Configure")
	}
	want := "(\n  A[1,2]\n)\n"
	if got := m.Info(0); got != want {
		t.Fatalf("got %q, wanted %q", got, want)
	}
}
