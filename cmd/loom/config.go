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
	"io/ioutil"

	"github.com/jsccast/yaml"
)

// Config is the optional YAML configuration file.  Command-line flags
// win over what's here.
type Config struct {
	// Format is the selection format, e.g. "(/foo:o[1-3] (/bar:o))".
	Format string `json:"format" yaml:"format"`

	// Frequency is the sampling frequency in Hz.
	Frequency float64 `json:"frequency,omitempty" yaml:"frequency,omitempty"`

	// Cron, if given, schedules ticks from a cron expression
	// instead of a fixed frequency.
	Cron string `json:"cron,omitempty" yaml:"cron,omitempty"`

	// Sources maps a source name (as written in the format) to a
	// URL to poll over HTTP.  Names not listed here are MQTT
	// topics (or in-memory feeds with '-io std').
	Sources map[string]string `json:"sources,omitempty" yaml:"sources,omitempty"`

	// Journal is an optional bbolt filename for recording emitted
	// records.
	Journal string `json:"journal,omitempty" yaml:"journal,omitempty"`

	// JournalCap limits how many journal entries are kept (zero
	// means unlimited).
	JournalCap int `json:"journalCap,omitempty" yaml:"journalCap,omitempty"`

	// Transform is an optional filename of an ECMAScript record
	// transform.
	Transform string `json:"transform,omitempty" yaml:"transform,omitempty"`
}

// LoadConfig reads and parses a YAML config file.
func LoadConfig(filename string) (*Config, error) {
	bs, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	var c Config
	if err = yaml.Unmarshal(bs, &c); err != nil {
		return nil, err
	}
	return &c, nil
}
