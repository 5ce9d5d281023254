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

// Diagnostic rendering of a Selector tree.  The output is for
// operator inspection (the 'info' command), not for feeding back into
// the parser.

import (
	"strconv"
	"strings"
)

func (s *SourceSelector) Render(indent int) string {
	var buf strings.Builder
	buf.WriteString(strings.Repeat(" ", indent))
	buf.WriteString(s.Name)
	for _, group := range s.Indexes {
		buf.WriteByte('[')
		for i, idx := range group {
			if 0 < i {
				buf.WriteByte(',')
			}
			// 1-based, as in the format syntax.
			buf.WriteString(strconv.Itoa(idx + 1))
		}
		buf.WriteByte(']')
	}
	buf.WriteByte('\n')
	return buf.String()
}

func (g *GroupSelector) Render(indent int) string {
	var buf strings.Builder
	pad := strings.Repeat(" ", indent)
	buf.WriteString(pad)
	buf.WriteString("(\n")
	for _, c := range g.Children {
		buf.WriteString(c.Render(indent + 2))
	}
	buf.WriteString(pad)
	buf.WriteString(")\n")
	return buf.String()
}
