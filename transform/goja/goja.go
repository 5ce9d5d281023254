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

// Package goja implements transform.Transformer with Goja, a Go
// implementation of ECMAScript 5.1+.
//
// A transform script sees the merged record as '_.record' and should
// evaluate to the (possibly rewritten) record: a list.
//
// See https://github.com/dop251/goja.
package goja

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/dop251/goja"
)

var (
	// InterruptedMessage is the string value of Interrupted.
	InterruptedMessage = "RuntimeError: timeout"

	// Interrupted is returned by Transform if the script is
	// interrupted (by the context or the timeout).
	Interrupted = errors.New(InterruptedMessage)
)

// Transformer compiles a script once and runs it once per tick.
type Transformer struct {
	// Timeout limits each run of the script.  Zero means no
	// timeout beyond the given context.
	Timeout time.Duration

	program *goja.Program
}

// NewTransformer compiles the given script.  The name is only for
// error messages.
func NewTransformer(name, src string) (*Transformer, error) {
	p, err := goja.Compile(name, src, true)
	if err != nil {
		return nil, err
	}
	return &Transformer{program: p}, nil
}

func (t *Transformer) Transform(ctx context.Context, record []interface{}) ([]interface{}, error) {
	env := map[string]interface{}{
		"record": record,
	}

	env["log"] = func(x interface{}) interface{} {
		switch vv := x.(type) {
		case goja.Value:
			x = vv.Export()
		}
		js, err := json.Marshal(&x)
		if err != nil {
			log.Println("goja.log (can't marshal: " + err.Error() + ")")
		} else {
			log.Println(string(js))
		}
		return x
	}

	o := goja.New()
	o.Set("_", env)

	if 0 < t.Timeout {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.Timeout)
		defer cancel()
	}

	// Make sure this goroutine terminates as soon as possible.
	ictx, cancel := context.WithCancel(ctx)
	go func() {
		<-ictx.Done()
		// If cancel() runs after RunProgram returns, nobody
		// sees this interrupt, which is what we want.
		o.Interrupt(InterruptedMessage)
	}()

	v, err := o.RunProgram(t.program)
	cancel()

	if err != nil {
		if _, is := err.(*goja.InterruptedError); is {
			return nil, Interrupted
		}
		return nil, err
	}

	x, err := canonicalize(v.Export())
	if err != nil {
		return nil, err
	}

	xs, is := x.([]interface{})
	if !is {
		return nil, fmt.Errorf("transform returned %T, not a list", x)
	}

	return xs, nil
}

// canonicalize forces Goja's exported values back into plain JSON
// trees (float64 numbers, []interface{} lists).
func canonicalize(x interface{}) (interface{}, error) {
	js, err := json.Marshal(&x)
	if err != nil {
		return nil, err
	}
	var y interface{}
	if err = json.Unmarshal(js, &y); err != nil {
		return nil, err
	}
	return y, nil
}
