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

package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/loomery/loom/journal"
	"github.com/loomery/loom/merge"
	"github.com/loomery/loom/source"
	"github.com/loomery/loom/tools"

	"github.com/jsccast/yaml"
)

// Service exposes operator commands (over TCP, WebSockets, or stdin)
// for a running Merger.
type Service struct {
	Verbose bool

	Merger   *merge.Merger
	Registry *source.Registry

	// Journal is optional.
	Journal *journal.Journal

	// Emitted carries records for the WebSockets firehose.
	Emitted chan interface{}
}

var helpLines = []string{
	"help                  Displays this message",
	"info [dot|mermaid]    Renders the parsed format",
	"sources               Lists the declared sources",
	"freq F                Sampling frequency in Hertz",
	"period D              Tick period as a duration (e.g. 250ms)",
	"cron SPEC             Schedule ticks from a cron expression",
	"recent N              Last N journaled records (if journaling)",
	"json|prettyjson|yaml  Switch response rendering",
	"sleep D               Pause this listener",
	"shutdown              Stop the process",
}

// Listener runs the line-oriented command protocol: one command per
// line, one rendered response per command.
func (s *Service) Listener(ctx context.Context, in *bufio.Reader, out io.Writer, ctl chan bool) error {
	render := "json"

	sayMutex := sync.Mutex{}

	say := func(x interface{}) bool {
		sayMutex.Lock()
		defer sayMutex.Unlock()

		var js []byte
		var err error
		switch render {
		case "prettyjson":
			js, err = json.MarshalIndent(&x, "  ", "  ")
		case "yaml":
			js, err = yaml.Marshal(&x)
		default:
			js, err = json.Marshal(&x)
		}
		if err != nil {
			log.Printf("Service.Listener warning on rendering: %s on %#v", err, x)
			js = []byte(fmt.Sprintf("error: %s on %#v", err, x))
		}

		js = append(js, '\n')

		if _, err = out.Write(js); err != nil {
			log.Printf("Service.Listener warning on Write: %s", err)
			return false
		}

		return true
	}

	complain := func(err error) bool {
		return say(map[string]interface{}{
			"error": err.Error(),
		})
	}

	okay := func() bool {
		return say("okay")
	}

	for {
		line, err := in.ReadString('\n')
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		sl := strings.TrimSpace(line)

		if strings.HasPrefix(sl, "#") || sl == "" {
			continue
		}

		switch sl {
		case "shutdown":
			log.Printf("Service client says to shutdown")
			ctl <- true
			return nil
		case "help":
			if !say(helpLines) {
				return nil
			}
			continue
		case "info":
			if !say(s.Merger.Info(0)) {
				return nil
			}
			continue
		case "sources":
			if !say(s.Registry.Names()) {
				return nil
			}
			continue
		case "period":
			if !say(s.Merger.Period().String()) {
				return nil
			}
			continue
		case "json", "prettyjson", "yaml":
			render = sl
			okay()
			continue
		}

		parts := strings.Split(sl, " ")
		switch parts[0] {
		case "info":
			root := s.Merger.Format()
			if root == nil {
				if !complain(fmt.Errorf("not configured")) {
					return nil
				}
				continue
			}
			buf := bytes.NewBuffer(nil)
			switch parts[1] {
			case "dot":
				err = tools.Dot(root, buf)
			case "mermaid":
				err = tools.Mermaid(root, buf, nil)
			default:
				err = fmt.Errorf("unknown rendering '%s'", parts[1])
			}
			if err != nil {
				if !complain(err) {
					return nil
				}
				continue
			}
			if !say(buf.String()) {
				return nil
			}
		case "freq":
			if len(parts) != 2 {
				if !complain(fmt.Errorf("freq HERTZ")) {
					return nil
				}
				continue
			}
			hz, err := strconv.ParseFloat(parts[1], 64)
			if err == nil {
				err = s.Merger.SetFrequency(hz)
			}
			if err != nil {
				if !complain(err) {
					return nil
				}
				continue
			}
			okay()
		case "period":
			if len(parts) != 2 {
				if !complain(fmt.Errorf("period DURATION")) {
					return nil
				}
				continue
			}
			d, err := time.ParseDuration(parts[1])
			if err == nil {
				err = s.Merger.SetPeriod(d)
			}
			if err != nil {
				if !complain(err) {
					return nil
				}
				continue
			}
			okay()
		case "cron":
			if len(parts) < 2 {
				if !complain(fmt.Errorf("cron SPEC")) {
					return nil
				}
				continue
			}
			c, err := merge.NewCron(strings.Join(parts[1:], " "))
			if err != nil {
				if !complain(err) {
					return nil
				}
				continue
			}
			s.Merger.SetSchedule(c)
			okay()
		case "recent":
			if s.Journal == nil {
				if !complain(fmt.Errorf("no journal configured")) {
					return nil
				}
				continue
			}
			n := 1
			if 1 < len(parts) {
				if n, err = strconv.Atoi(parts[1]); err != nil {
					if !complain(err) {
						return nil
					}
					continue
				}
			}
			entries, err := s.Journal.Recent(n)
			if err != nil {
				if !complain(err) {
					return nil
				}
				continue
			}
			if !say(entries) {
				return nil
			}
		case "sleep":
			if len(parts) != 2 {
				if !complain(fmt.Errorf("sleep DURATION")) {
					return nil
				}
				continue
			}
			d, err := time.ParseDuration(parts[1])
			if err != nil {
				if !complain(err) {
					return nil
				}
				continue
			}
			time.Sleep(d)
		default:
			if !complain(fmt.Errorf("unknown command '%s'", parts[0])) {
				return nil
			}
		}
	}

	return nil
}
