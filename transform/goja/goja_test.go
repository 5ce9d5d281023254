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

package goja

import (
	"context"
	"reflect"
	"testing"
	"time"
)

func TestTransform(t *testing.T) {
	tr, err := NewTransformer("test", `_.record.concat(["tag"]);`)
	if err != nil {
		t.Fatal(err)
	}
	got, err := tr.Transform(context.Background(), []interface{}{1.0, 2.0})
	if err != nil {
		t.Fatal(err)
	}
	want := []interface{}{1.0, 2.0, "tag"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v, wanted %#v", got, want)
	}
}

func TestTransformNotAList(t *testing.T) {
	tr, err := NewTransformer("test", `42;`)
	if err != nil {
		t.Fatal(err)
	}
	if _, err = tr.Transform(context.Background(), []interface{}{}); err == nil {
		t.Fatal("expected an error")
	}
}

func TestTransformBadSyntax(t *testing.T) {
	if _, err := NewTransformer("test", `function (`); err == nil {
		t.Fatal("expected a compile error")
	}
}

func TestTransformTimeout(t *testing.T) {
	tr, err := NewTransformer("test", `while (true) {};`)
	if err != nil {
		t.Fatal(err)
	}
	tr.Timeout = 20 * time.Millisecond
	if _, err = tr.Transform(context.Background(), []interface{}{}); err != Interrupted {
		t.Fatalf("got %v, wanted %v", err, Interrupted)
	}
}
