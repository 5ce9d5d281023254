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

package format

import (
	"context"
	"reflect"
	"testing"

	. "github.com/loomery/loom/util/testutil"
)

// testSources is a trivial Sources for tests: a map of name to value.
type testSources map[string]interface{}

func (ts testSources) Declare(ctx context.Context, name string) error {
	if _, have := ts[name]; !have {
		ts[name] = []interface{}{}
	}
	return nil
}

func (ts testSources) Value(name string) (interface{}, error) {
	v, have := ts[name]
	if !have {
		return nil, &SyntaxError{Token: name, Msg: "unknown source in test"}
	}
	return v, nil
}

func sel(t *testing.T, spec string, ss Sources) ([]interface{}, error) {
	t.Helper()
	r, err := ParseText(spec)
	if err != nil {
		t.Fatal(err)
	}
	if err = r.DeclareSources(context.Background(), ss); err != nil {
		t.Fatal(err)
	}
	out := make([]interface{}, 0, 8)
	err = r.Select(&out, ss)
	return out, err
}

func TestSelect(t *testing.T) {
	ss := testSources{
		"P": Dwimjs(`[10,20,30,40]`),
		"Q": Dwimjs(`[[1,2],[3,4]]`),
		"A": 5.0,
		"B": Dwimjs(`[6,7]`),
	}

	cases := []struct {
		format string
		want   string
	}{
		{"(P[2])", `[20]`},
		{"(P[2-4])", `[20,30,40]`},
		{"(P[3,1])", `[30,10]`},
		{"(P[2,2])", `[20,20]`}, // duplicates preserved
		{"(Q[1,2][1])", `[1,3]`},
		{"(Q[1])", `[1,2]`},   // final index on a list splices
		{"(A B)", `[5,6,7]`},  // no nesting at the root
		{"(A (B))", `[5,[6,7]]`},
		{"((P[1]) (P[2]))", `[[10],[20]]`},
		{"(Q)", `[[1,2],[3,4]]`}, // whole list, unwrapped one level
	}

	for _, c := range cases {
		t.Run(c.format, func(t *testing.T) {
			got, err := sel(t, c.format, ss)
			if err != nil {
				t.Fatal(err)
			}
			want := Dwimjs(c.want)
			if !reflect.DeepEqual(got, want) {
				t.Fatalf("got %s, wanted %s", JS(got), c.want)
			}
		})
	}
}

func TestSelectIndexTypeError(t *testing.T) {
	ss := testSources{
		"A": Dwimjs(`[5,[6,7]]`),
	}

	// A's value at index 1 is a scalar, so a second index group
	// can't descend into it.
	_, err := sel(t, "(A[1][2])", ss)
	if err == nil {
		t.Fatal("expected an error")
	}
	if _, is := err.(*IndexTypeError); !is {
		t.Fatalf("got %T (%v), wanted an IndexTypeError", err, err)
	}

	// Indexing a scalar source fails the same way.
	ss["S"] = "scalar"
	if _, err = sel(t, "(S[1])", ss); err == nil {
		t.Fatal("expected an error")
	}
}

func TestSelectIndexOutOfRange(t *testing.T) {
	ss := testSources{
		"P": Dwimjs(`[10,20]`),
	}
	_, err := sel(t, "(P[3])", ss)
	oor, is := err.(*IndexOutOfRangeError)
	if !is {
		t.Fatalf("got %T (%v), wanted an IndexOutOfRangeError", err, err)
	}
	if oor.Index != 3 || oor.Len != 2 {
		t.Fatalf("bad error data: %v", oor)
	}

	// Index 0 is out of range in the 1-based syntax.
	if _, err = sel(t, "(P[0])", ss); err == nil {
		t.Fatal("expected an error for index 0")
	}
}

func TestSelectDeterministic(t *testing.T) {
	ss := testSources{
		"P": Dwimjs(`[10,[20,21],30]`),
	}
	first, err := sel(t, "(P[2] (P))", ss)
	if err != nil {
		t.Fatal(err)
	}
	second, err := sel(t, "(P[2] (P))", ss)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("%s != %s", JS(first), JS(second))
	}
}

func TestDeclareSources(t *testing.T) {
	ss := testSources{}
	r, err := ParseText("(A (B A) C[1])")
	if err != nil {
		t.Fatal(err)
	}
	if err = r.DeclareSources(context.Background(), ss); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"A", "B", "C"} {
		if _, have := ss[name]; !have {
			t.Fatalf(`source "%s" wasn't declared`, name)
		}
	}
	if len(ss) != 3 {
		t.Fatalf("wanted three sources; got %d", len(ss))
	}
}
