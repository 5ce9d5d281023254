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
	"fmt"
	"strconv"
	"strings"
)

// ParseText parses raw format text, which must be a single
// parenthesized group.
func ParseText(s string) (*RootSelector, error) {
	toks, err := Tokenize(s)
	if err != nil {
		return nil, err
	}
	if len(toks) != 1 {
		return nil, &SyntaxError{Token: strings.TrimSpace(s), Msg: "format must be a single group"}
	}
	group, is := toks[0].([]interface{})
	if !is {
		return nil, &SyntaxError{Token: strings.TrimSpace(s), Msg: "format must be a single group"}
	}
	return Parse(group)
}

// Parse parses a pre-tokenized format: a list whose elements are
// source references (strings) or nested lists for groups.  The given
// list is the top-level group.
func Parse(tokens []interface{}) (*RootSelector, error) {
	children, err := parseChildren(tokens)
	if err != nil {
		return nil, err
	}
	return &RootSelector{GroupSelector{Children: children}}, nil
}

func parseChildren(tokens []interface{}) ([]Selector, error) {
	children := make([]Selector, 0, len(tokens))
	for _, tok := range tokens {
		switch t := tok.(type) {
		case string:
			s, err := parseSource(t)
			if err != nil {
				return nil, err
			}
			children = append(children, s)
		case []interface{}:
			inner, err := parseChildren(t)
			if err != nil {
				return nil, err
			}
			children = append(children, &GroupSelector{Children: inner})
		default:
			return nil, &SyntaxError{Token: fmt.Sprintf("%v", tok), Msg: "unexpected token"}
		}
	}
	return children, nil
}

// parseSource parses a source reference: a name followed by zero or
// more bracketed index lists.
func parseSource(tok string) (*SourceSelector, error) {
	name := tok
	rest := ""
	if br := strings.IndexByte(tok, '['); 0 <= br {
		name, rest = tok[:br], tok[br:]
	}
	if !validName(name) {
		return nil, &SyntaxError{Token: tok, Msg: "invalid source name"}
	}

	s := &SourceSelector{Name: name}
	for rest != "" {
		if rest[0] != '[' {
			return nil, &SyntaxError{Token: tok, Msg: "unexpected text after index group"}
		}
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return nil, &SyntaxError{Token: tok, Msg: "missing closing bracket"}
		}
		body := rest[1:end]
		if strings.IndexByte(body, '[') != -1 {
			return nil, &SyntaxError{Token: tok, Msg: "unexpected opening bracket"}
		}
		group, err := parseIndexes(body)
		if err != nil {
			return nil, err
		}
		s.Indexes = append(s.Indexes, group)
		rest = rest[end+1:]
	}

	return s, nil
}

// parseIndexes parses one bracket body: comma-separated indexes,
// where an index is an integer or an inclusive range 'A-B'.  The
// 1-based syntax is converted to 0-based here.
func parseIndexes(body string) ([]int, error) {
	idxs := make([]int, 0, 4)
	for _, spec := range strings.Split(body, ",") {
		parts := strings.Split(spec, "-")
		switch len(parts) {
		case 1:
			n, err := parseIndex(parts[0])
			if err != nil {
				return nil, err
			}
			idxs = append(idxs, n-1)
		case 2:
			start, err := parseIndex(parts[0])
			if err != nil {
				return nil, err
			}
			end, err := parseIndex(parts[1])
			if err != nil {
				return nil, err
			}
			if end < start {
				return nil, &RangeError{Spec: spec}
			}
			for n := start; n <= end; n++ {
				idxs = append(idxs, n-1)
			}
		default:
			return nil, &IllegalRangeError{Spec: spec}
		}
	}
	return idxs, nil
}

func parseIndex(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, &SyntaxError{Token: s, Msg: "invalid integer"}
	}
	return n, nil
}

func validName(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case 'a' <= c && c <= 'z':
		case 'A' <= c && c <= 'Z':
		case '0' <= c && c <= '9':
		case c == '_' || c == ':' || c == '/':
		default:
			return false
		}
	}
	return true
}
