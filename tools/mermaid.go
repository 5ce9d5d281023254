/* Copyright 2018 Comcast Cable Communications Management, LLC
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

package tools

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/loomery/loom/format"
)

type MermaidOpts struct {
	// ShowIndexes will result in a source-node label that includes
	// the JSON representation of the source's index groups (if
	// any).
	ShowIndexes bool `json:"showIndexes"`

	// SourceFill is the fill color for source nodes.
	SourceFill string `json:"sourceFill,omitempty"`
}

// Mermaid makes a Mermaid (https://mermaidjs.github.io/) input file
// for the given Selector tree.
func Mermaid(root *format.RootSelector, w io.Writer, opts *MermaidOpts) error {

	if opts == nil {
		opts = &MermaidOpts{
			ShowIndexes: true,
			SourceFill:  "#bcf2db",
		}
	}

	fmt.Fprintf(w, "graph TB\n")

	num := 0
	gensym := func() string {
		num++
		return fmt.Sprintf("n%d", num)
	}

	var emit func(s format.Selector) (string, error)
	emit = func(s format.Selector) (string, error) {
		nid := gensym()
		switch v := s.(type) {
		case *format.SourceSelector:
			label := v.Name
			if opts.ShowIndexes && 0 < len(v.Indexes) {
				bs, err := json.Marshal(v.Indexes)
				if err != nil {
					return "", err
				}
				js := strings.Replace(string(bs), `"`, `'`, -1)
				label += " " + js
			}
			fmt.Fprintf(w, "  %s[\"%s\"]\n", nid, label)
			if opts.SourceFill != "" {
				fmt.Fprintf(w, "  style %s fill:%s\n", nid, opts.SourceFill)
			}
		case *format.GroupSelector:
			fmt.Fprintf(w, "  %s((\" \"))\n", nid)
			for _, c := range v.Children {
				to, err := emit(c)
				if err != nil {
					return "", err
				}
				fmt.Fprintf(w, "  %s --> %s\n", nid, to)
			}
		}
		return nid, nil
	}

	rid := gensym()
	fmt.Fprintf(w, "  %s((\"root\"))\n", rid)
	for _, c := range root.Children {
		to, err := emit(c)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "  %s --> %s\n", rid, to)
	}

	fmt.Fprintf(w, "\n")

	return nil
}
