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

// These errors are user errors, not internal errors.
//
// Parse-time errors (SyntaxError, RangeError, IllegalRangeError) are
// fatal at configuration time.  Select-time errors (IndexTypeError,
// IndexOutOfRangeError) abort a single tick and are reported.

import (
	"strconv"
)

// SyntaxError occurs when a format specification is malformed.
type SyntaxError struct {
	// Token is the offending token or text, if known.
	Token string

	Msg string
}

func (e *SyntaxError) Error() string {
	s := "format syntax: " + e.Msg
	if e.Token != "" {
		s += ` at "` + e.Token + `"`
	}
	return s
}

// RangeError occurs when an index range 'A-B' has A>B.
type RangeError struct {
	Spec string
}

func (e *RangeError) Error() string {
	return `end of range before start of range: "` + e.Spec + `"`
}

// IllegalRangeError occurs when an index has more than one '-', as in
// '1-2-3'.
type IllegalRangeError struct {
	Spec string
}

func (e *IllegalRangeError) Error() string {
	return `illegal range specification: "` + e.Spec + `"`
}

// IndexTypeError occurs when a format indexes into a value that isn't
// a list.
type IndexTypeError struct {
	// Name is the source whose value was indexed.
	Name string
}

func (e *IndexTypeError) Error() string {
	return `cannot index non-list type (source "` + e.Name + `")`
}

// IndexOutOfRangeError occurs when an index doesn't fit the list it
// indexes.  Index is 1-based (as in the format syntax).
type IndexOutOfRangeError struct {
	Name  string
	Index int
	Len   int
}

func (e *IndexOutOfRangeError) Error() string {
	return `index ` + strconv.Itoa(e.Index) + ` out of range for list of ` +
		strconv.Itoa(e.Len) + ` (source "` + e.Name + `")`
}
