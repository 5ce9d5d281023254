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
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	toks, err := Tokenize("(/foo:o[3,1] /bar:o[2,3][1-4] (/baz:o))")
	if err != nil {
		t.Fatal(err)
	}
	want := []interface{}{
		[]interface{}{
			"/foo:o[3,1]",
			"/bar:o[2,3][1-4]",
			[]interface{}{"/baz:o"},
		},
	}
	if !reflect.DeepEqual(toks, want) {
		t.Fatalf("got %#v, wanted %#v", toks, want)
	}
}

func TestTokenizeUnbalanced(t *testing.T) {
	if _, err := Tokenize("(A (B)"); err == nil {
		t.Fatal("expected an error for a missing paren")
	}
	if _, err := Tokenize("A))"); err == nil {
		t.Fatal("expected an error for a stray paren")
	}
}

func TestParseSimple(t *testing.T) {
	r, err := ParseText("(A)")
	if err != nil {
		t.Fatal(err)
	}
	if len(r.Children) != 1 {
		t.Fatalf("wanted one child; got %d", len(r.Children))
	}
	s, is := r.Children[0].(*SourceSelector)
	if !is {
		t.Fatalf("wanted a SourceSelector; got %T", r.Children[0])
	}
	if s.Name != "A" {
		t.Fatalf(`wanted name "A"; got "%s"`, s.Name)
	}
	if len(s.Indexes) != 0 {
		t.Fatalf("wanted no index groups; got %#v", s.Indexes)
	}
}

func TestParseIndexes(t *testing.T) {
	// Indexes are 1-based in the syntax and 0-based internally.
	cases := []struct {
		format string
		want   [][]int
	}{
		{"(P[2])", [][]int{{1}}},
		{"(P[2-4])", [][]int{{1, 2, 3}}},
		{"(P[2,3][1-4])", [][]int{{1, 2}, {0, 1, 2, 3}}},
		{"(P[3,1,3])", [][]int{{2, 0, 2}}},
		{"(P[1-1])", [][]int{{0}}},
	}
	for _, c := range cases {
		t.Run(c.format, func(t *testing.T) {
			r, err := ParseText(c.format)
			if err != nil {
				t.Fatal(err)
			}
			s := r.Children[0].(*SourceSelector)
			if !reflect.DeepEqual(s.Indexes, c.want) {
				t.Fatalf("got %#v, wanted %#v", s.Indexes, c.want)
			}
		})
	}
}

func TestParseNested(t *testing.T) {
	r, err := ParseText("(A (B C[1]) D)")
	if err != nil {
		t.Fatal(err)
	}
	if len(r.Children) != 3 {
		t.Fatalf("wanted three children; got %d", len(r.Children))
	}
	g, is := r.Children[1].(*GroupSelector)
	if !is {
		t.Fatalf("wanted a GroupSelector; got %T", r.Children[1])
	}
	if len(g.Children) != 2 {
		t.Fatalf("wanted two grandchildren; got %d", len(g.Children))
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		format string
		want   interface{}
	}{
		{"(A[2-1])", &RangeError{}},
		{"(A[1-2-3])", &IllegalRangeError{}},
		{"(A[1)", &SyntaxError{}},
		{"(A[x])", &SyntaxError{}},
		{"(A[])", &SyntaxError{}},
		{"(A[1]junk)", &SyntaxError{}},
		{"A B", &SyntaxError{}},
		{"(A.b)", &SyntaxError{}},
	}
	for _, c := range cases {
		t.Run(c.format, func(t *testing.T) {
			_, err := ParseText(c.format)
			if err == nil {
				t.Fatal("expected an error")
			}
			if reflect.TypeOf(err) != reflect.TypeOf(c.want) {
				t.Fatalf("got %T (%v), wanted %T", err, err, c.want)
			}
		})
	}
}

func TestParsePretokenized(t *testing.T) {
	// A transport can hand us its own nested lists.
	toks := []interface{}{"A[1]", []interface{}{"B"}}
	r, err := Parse(toks)
	if err != nil {
		t.Fatal(err)
	}
	if len(r.Children) != 2 {
		t.Fatalf("wanted two children; got %d", len(r.Children))
	}
	if _, err = Parse([]interface{}{3.14}); err == nil {
		t.Fatal("expected an error for a non-token")
	}
}
