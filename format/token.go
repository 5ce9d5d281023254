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

// Tokenize turns raw format text into the nested token lists that
// Parse wants.  A transport that already delivers structured
// arguments (nested lists of strings) can skip this step and call
// Parse directly.

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// Tokenize splits s into a sequence of tokens, where a token is
// either a string or a nested []interface{} for a parenthesized
// group.
func Tokenize(s string) ([]interface{}, error) {
	sc := &scanner{s: s}
	toks, err := sc.list(false)
	if err != nil {
		return nil, err
	}
	return toks, nil
}

type scanner struct {
	s string
	i int
}

func (sc *scanner) list(nested bool) ([]interface{}, error) {
	toks := make([]interface{}, 0, 4)
	for sc.i < len(sc.s) {
		c := sc.s[sc.i]
		switch {
		case isSpace(c):
			sc.i++
		case c == '(':
			sc.i++
			inner, err := sc.list(true)
			if err != nil {
				return nil, err
			}
			toks = append(toks, inner)
		case c == ')':
			if !nested {
				return nil, &SyntaxError{Msg: "unexpected closing parenthesis"}
			}
			sc.i++
			return toks, nil
		default:
			toks = append(toks, sc.word())
		}
	}
	if nested {
		return nil, &SyntaxError{Msg: "missing closing parenthesis"}
	}
	return toks, nil
}

func (sc *scanner) word() string {
	start := sc.i
	for sc.i < len(sc.s) {
		c := sc.s[sc.i]
		if isSpace(c) || c == '(' || c == ')' {
			break
		}
		sc.i++
	}
	return sc.s[start:sc.i]
}
