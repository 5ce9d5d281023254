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
)

// Sources provides the values that a Selector reads.
//
// A source.Registry is the usual implementation.
type Sources interface {
	// Declare registers interest in a named source.  Declaring
	// the same name twice is a no-op.
	Declare(ctx context.Context, name string) error

	// Value returns the most recent value for a declared source.
	Value(name string) (interface{}, error)
}

// A Selector is a node in a parsed format.
//
// The tree is built once by Parse and never mutated afterwards, so
// it's safe to read (and Render) concurrently with ticking.
type Selector interface {
	// DeclareSources declares every source this selector reads.
	// Call it exactly once, after parsing and before the first
	// Select.
	DeclareSources(ctx context.Context, ss Sources) error

	// Select appends this selector's contribution to out.
	Select(out *[]interface{}, ss Sources) error

	// Render returns a human-readable representation, indented by
	// the given number of spaces.
	Render(indent int) string
}

// SourceSelector selects components of one named source's value.
//
// Indexes holds one list of 0-based indexes per nesting level, outer
// level first.  With no Indexes, the whole source value is selected
// (spliced if it's a list).
type SourceSelector struct {
	Name    string  `json:"name"`
	Indexes [][]int `json:"indexes,omitempty"`
}

func (s *SourceSelector) DeclareSources(ctx context.Context, ss Sources) error {
	return ss.Declare(ctx, s.Name)
}

func (s *SourceSelector) Select(out *[]interface{}, ss Sources) error {
	v, err := ss.Value(s.Name)
	if err != nil {
		return err
	}
	if len(s.Indexes) == 0 {
		splice(out, v)
		return nil
	}
	return s.selectAt(out, v, s.Indexes)
}

// selectAt descends one index group at a time.  The last group
// resolves values (splicing lists); inner groups must land on lists.
func (s *SourceSelector) selectAt(out *[]interface{}, v interface{}, groups [][]int) error {
	xs, is := v.([]interface{})
	if !is {
		return &IndexTypeError{Name: s.Name}
	}
	for _, i := range groups[0] {
		if i < 0 || len(xs) <= i {
			return &IndexOutOfRangeError{Name: s.Name, Index: i + 1, Len: len(xs)}
		}
		if len(groups) == 1 {
			splice(out, xs[i])
			continue
		}
		if err := s.selectAt(out, xs[i], groups[1:]); err != nil {
			return err
		}
	}
	return nil
}

// GroupSelector wraps its children's combined output as one nested
// list.  Children are evaluated in declaration order.
type GroupSelector struct {
	Children []Selector `json:"children"`
}

func (g *GroupSelector) DeclareSources(ctx context.Context, ss Sources) error {
	for _, c := range g.Children {
		if err := c.DeclareSources(ctx, ss); err != nil {
			return err
		}
	}
	return nil
}

func (g *GroupSelector) Select(out *[]interface{}, ss Sources) error {
	nested := make([]interface{}, 0, len(g.Children))
	for _, c := range g.Children {
		if err := c.Select(&nested, ss); err != nil {
			return err
		}
	}
	*out = append(*out, nested)
	return nil
}

// RootSelector is the entry point for a parsed format.  It behaves
// like a GroupSelector except that it does not wrap its children's
// output in another list, so its children become the top-level fields
// of the record.
type RootSelector struct {
	GroupSelector
}

func (r *RootSelector) Select(out *[]interface{}, ss Sources) error {
	for _, c := range r.Children {
		if err := c.Select(out, ss); err != nil {
			return err
		}
	}
	return nil
}

// splice appends a list's elements (unwrapped one level) or a scalar
// directly.
func splice(out *[]interface{}, v interface{}) {
	if xs, is := v.([]interface{}); is {
		*out = append(*out, xs...)
	} else {
		*out = append(*out, v)
	}
}
