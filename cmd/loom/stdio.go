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
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/loomery/loom/source"

	. "github.com/loomery/loom/util/testutil"
)

// StdIO is a fairly simple coupling that uses stdin for source input
// and stdout for emitted records.
//
// Input lines look like
//
//	{"to":"P","value":[10,20,30]}
//
// which sets the current value of the in-memory source P.
type StdIO struct {
	// In provides source input.
	In io.Reader

	// Out receives emitted records.
	Out io.Writer

	// Timestamps prepends a timestamp to each output line.
	Timestamps bool

	// Tags prefixes tags indicating type of output ("input",
	// "emit").
	Tags bool

	// PadTags adds some padding to tags used in output.
	PadTags bool

	// EchoInput writes input lines (prepended with "input") to
	// the output.
	EchoInput bool

	// Feeds holds the in-memory sources driven by In.
	Feeds *source.Feeds

	// InputEOF will be closed on EOF (or "quit") from stdin.
	InputEOF chan bool

	WG sync.WaitGroup
}

// NewStdIO creates a StdIO and a flag set for parsing its settings
// from args.
//
// If args is nil, the flag set is not Parsed.
//
// In and Out are initialized with os.Stdin and os.Stdout
// respectively.
func NewStdIO(args []string) (*StdIO, *flag.FlagSet) {
	s := &StdIO{
		In:       os.Stdin,
		Out:      os.Stdout,
		Feeds:    source.NewFeeds(),
		InputEOF: make(chan bool),
	}

	fs := flag.NewFlagSet("std", flag.ExitOnError)
	fs.BoolVar(&s.Timestamps, "timestamps", false, "print timestamps")
	fs.BoolVar(&s.Tags, "tags", false, "tag output lines")
	fs.BoolVar(&s.PadTags, "pad-tags", false, "pad tags in output lines")
	fs.BoolVar(&s.EchoInput, "echo", false, "echo input")

	if args != nil {
		fs.Parse(args)
	}

	return s, fs
}

// Dial creates the named in-memory feed if necessary.
//
// That feed reports "no data yet" until an input line sets its value.
func (s *StdIO) Dial(ctx context.Context, name string) (source.Conn, error) {
	s.Feeds.Add(name)
	return s.Feeds.Dial(ctx, name)
}

func (s *StdIO) printf(tag, format string, args ...interface{}) {
	if s.PadTags {
		tag = fmt.Sprintf("% 10s", tag)
	}
	if s.Tags {
		format = tag + " " + format
	}
	if s.Timestamps {
		ts := fmt.Sprintf("%-31s", time.Now().UTC().Format(time.RFC3339Nano))
		format = ts + " " + format
	}

	fmt.Fprintf(s.Out, format, args...)
}

// Start launches the input-reading loop.
//
// This function does not block.
func (s *StdIO) Start(ctx context.Context) error {
	s.WG.Add(1)
	go func() {
		defer s.WG.Done()
		stdin := bufio.NewReader(s.In)
		for {
			select {
			case <-ctx.Done():
				return
			default:
				line, err := stdin.ReadString('\n')
				if err == io.EOF || strings.TrimSpace(line) == "quit" {
					close(s.InputEOF)
					return
				}
				if err != nil {
					log.Printf("stdin error %s", err)
					return
				}
				if s.EchoInput {
					s.printf("input", "%s", line)
				}
				if strings.HasPrefix(line, "#") || len(strings.TrimSpace(line)) == 0 {
					continue
				}

				var msg struct {
					To    string      `json:"to"`
					Value interface{} `json:"value"`
				}
				if err := json.Unmarshal([]byte(line), &msg); err != nil {
					fmt.Fprintf(os.Stderr, "bad input: %s\n", err)
					continue
				}
				if msg.To == "" {
					fmt.Fprintf(os.Stderr, "bad input: no 'to'\n")
					continue
				}

				s.Feeds.Add(msg.To).Set(msg.Value)
			}
		}
	}()

	return nil
}

// Stop waits for IO to complete or be terminated via its context.
func (s *StdIO) Stop(ctx context.Context) error {
	s.WG.Wait()
	return nil
}

// Emit writes the record to Out as one line of JSON.
func (s *StdIO) Emit(ctx context.Context, record []interface{}) error {
	s.printf("emit", "%s\n", JS(record))
	return nil
}
