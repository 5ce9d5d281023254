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

// Package main is the loom daemon: a format-driven source merger that
// reads named sources (stdin feeds, MQTT topics, HTTP endpoints),
// merges them per the format, and emits the merged records.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"time"

	"github.com/loomery/loom/journal"
	"github.com/loomery/loom/merge"
	"github.com/loomery/loom/source"
	gojatransform "github.com/loomery/loom/transform/goja"
)

func main() {

	var (
		formatText = flag.String("f", "", `Selection format, e.g. "(P[1,3] (Q))"`)
		configFile = flag.String("config", "", "Optional YAML config filename")
		coupling   = flag.String("io", "std", `Source transport: "std" or "mq"`)

		freq     = flag.Float64("freq", 0, "Sampling frequency in Hz (0 for the default period)")
		cronSpec = flag.String("cron", "", "Cron expression for ticks (overrides -freq)")

		tcpPort = flag.String("t", "", "Optional port for a TCP command listener (e.g. ':9011')")
		wsAddr  = flag.String("w", "", "Optional address for a WebSockets service (e.g. ':8080')")
		cmdIn   = flag.Bool("I", false, "Read commands (not source input) from stdin")

		journalFile = flag.String("journal", "", "Optional bbolt filename for journaling emitted records")
		journalCap  = flag.Int("journal-cap", 0, "Limit on journal entries (0 for unlimited)")

		transformFile = flag.String("transform", "", "Optional ECMAScript record-transform filename")

		quiet   = flag.Bool("q", false, "Don't emit records to stdout")
		verbose = flag.Bool("v", false, "Verbose")
		help    = flag.Bool("h", false, "Get usage")
	)

	flag.Parse()

	if *help {
		flag.PrintDefaults()

		{
			fmt.Fprintf(os.Stderr, "\n-io std (default):\n\n")
			_, fs := NewStdIO(nil)
			fs.PrintDefaults()
		}

		{
			fmt.Fprintf(os.Stderr, "\n-io mq:\n\n")
			_, fs := NewMQTTIO(nil)
			fs.PrintDefaults()
		}

		os.Exit(0)
	}

	cfg := &Config{}
	if *configFile != "" {
		c, err := LoadConfig(*configFile)
		if err != nil {
			log.Fatalf("error reading config %s: %s", *configFile, err)
		}
		cfg = c
	}

	// Flags win over the config file.
	if *formatText != "" {
		cfg.Format = *formatText
	}
	if 0 < *freq {
		cfg.Frequency = *freq
	}
	if *cronSpec != "" {
		cfg.Cron = *cronSpec
	}
	if *journalFile != "" {
		cfg.Journal = *journalFile
	}
	if 0 < *journalCap {
		cfg.JournalCap = *journalCap
	}
	if *transformFile != "" {
		cfg.Transform = *transformFile
	}

	if cfg.Format == "" {
		log.Fatal("no format given (use -f or a config file)")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		std *StdIO
		mq  *MQTTIO

		base source.Dialer
	)
	switch *coupling {
	case "std":
		std, _ = NewStdIO(flag.Args())
		base = std
	case "mq", "mqtt":
		mq, _ = NewMQTTIO(flag.Args())
		if err := mq.Start(ctx); err != nil {
			log.Fatalf("MQTT error %s", err)
		}
		base = mq
	default:
		log.Fatalf("unknown io: '%s'", *coupling)
	}

	dialer := base
	if 0 < len(cfg.Sources) {
		hs, err := NewHTTPSources(cfg.Sources, 0)
		if err != nil {
			log.Fatalf("HTTP sources error %s", err)
		}
		dialer = &RouteDialer{HTTP: hs, Rest: base}
	}

	registry := source.NewRegistry(dialer)
	registry.Debug = *verbose
	defer registry.Close()

	var j *journal.Journal
	if cfg.Journal != "" {
		var err error
		if j, err = journal.Open(cfg.Journal); err != nil {
			log.Fatalf("journal error %s", err)
		}
		j.Cap = cfg.JournalCap
		defer j.Close()
	}

	emitted := make(chan interface{}, 1024)

	emit := func(ctx context.Context, rec []interface{}) error {
		if j != nil {
			if err := j.Append(rec); err != nil {
				log.Printf("journal error %s", err)
			}
		}
		if !*quiet && std != nil {
			if err := std.Emit(ctx, rec); err != nil {
				log.Printf("stdout emit error %s", err)
			}
		}
		var err error
		if mq != nil {
			err = mq.Emit(ctx, rec)
		}
		select {
		case emitted <- rec:
		default:
		}
		return err
	}

	m := merge.NewMerger(registry, emit)
	m.Debug = *verbose

	if cfg.Transform != "" {
		src, err := ioutil.ReadFile(cfg.Transform)
		if err != nil {
			log.Fatalf("transform error %s", err)
		}
		t, err := gojatransform.NewTransformer(cfg.Transform, string(src))
		if err != nil {
			log.Fatalf("transform error %s", err)
		}
		t.Timeout = time.Second
		m.Transform = t
	}

	if err := m.Configure(ctx, cfg.Format); err != nil {
		log.Fatalf("format error %s", err)
	}

	if cfg.Cron != "" {
		c, err := merge.NewCron(cfg.Cron)
		if err != nil {
			log.Fatalf("cron error %s", err)
		}
		m.SetSchedule(c)
	} else if 0 < cfg.Frequency {
		if err := m.SetFrequency(cfg.Frequency); err != nil {
			log.Fatal(err)
		}
	}

	svc := &Service{
		Verbose:  *verbose,
		Merger:   m,
		Registry: registry,
		Journal:  j,
		Emitted:  emitted,
	}

	ctl := make(chan bool, 1)

	if *tcpPort != "" {
		go func() {
			if err := svc.TCPService(ctx, *tcpPort, ctl); err != nil {
				log.Fatalf("TCP service error %s", err)
			}
		}()
	}

	if *wsAddr != "" {
		go func() {
			if err := svc.WebSocketService(ctx, *wsAddr, ctl); err != nil {
				log.Fatalf("WebSockets service error %s", err)
			}
		}()
	}

	if *cmdIn {
		go func() {
			if err := svc.Listener(ctx, bufio.NewReader(os.Stdin), os.Stdout, ctl); err != nil {
				log.Printf("Service.Listener error %s", err)
			}
			ctl <- true
		}()
	} else if std != nil {
		if err := std.Start(ctx); err != nil {
			log.Fatal(err)
		}
		go func() {
			<-std.InputEOF
			log.Printf("input EOF")
			ctl <- true
		}()
	}

	go func() {
		<-ctl
		cancel()
	}()

	if err := m.Run(ctx); err != nil {
		log.Fatal(err)
	}

	if mq != nil {
		if err := mq.Stop(context.Background()); err != nil {
			log.Printf("error from MQTT Stop: %v", err)
		}
	}
}

// RouteDialer sends names the HTTP sources know about to HTTP and
// everything else to Rest.
type RouteDialer struct {
	HTTP *HTTPSources
	Rest source.Dialer
}

func (d *RouteDialer) Dial(ctx context.Context, name string) (source.Conn, error) {
	if d.HTTP != nil && d.HTTP.Has(name) {
		return d.HTTP.Dial(ctx, name)
	}
	return d.Rest.Dial(ctx, name)
}
