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

// Package format implements the selection language that says how to
// assemble one output record from several named live sources.
//
// A format is parsed once into a Selector tree, which is then
// evaluated repeatedly (once per sampling tick) against fresh source
// values.
//
// The grammar:
//
//	format      : group
//	group       : '(' specifier (' ' specifier)* ')'
//	specifier   : group | source_ref
//	source_ref  : name ('[' indexes ']')*
//	indexes     : index (',' index)*
//	index       : INT | INT '-' INT
//	name        : [A-Za-z0-9_:/]+
//
// For example
//
//	(/foo:o[3,1] /bar:o[2,3][1-4] (/baz:o))
//
// selects elements 3 and 1 of /foo:o, then elements 1-4 of elements 2
// and 3 of /bar:o, and finally all of /baz:o wrapped as a nested
// list.  Indexes are 1-based in the syntax.  A range 'A-B' is
// inclusive and must be ascending.
//
// Values are dynamic trees as produced by encoding/json: a value is
// either a scalar or a []interface{} ("list") of values.  A source
// reference without indexes contributes all of its value: a list is
// spliced (its elements are appended, unwrapped one level), and a
// scalar is appended directly.  The same splice-or-append rule
// applies when a final index resolves to a list.  That asymmetry is
// deliberate: existing formats depend on it.
//
// Parse (or ParseText) returns a RootSelector.  Unlike an inner
// group, the root does not wrap its children's output in a nested
// list, so the root's children become the top-level fields of the
// record.
package format
