package tools

import (
	"encoding/json"
	"fmt"
	"html"
	"io"

	"github.com/loomery/loom/format"

	md "github.com/russross/blackfriday/v2"
)

// RenderFormatHTML writes a fragment describing a parsed format: the
// (markdown) doc text, the tree rendering, and the sources it reads.
func RenderFormatHTML(root *format.RootSelector, doc string, out io.Writer) error {
	f := func(format string, args ...interface{}) {
		fmt.Fprintf(out, format+"\n", args...)
	}

	if doc != "" {
		f(`<div class="formatDoc doc">%s</div>`, md.Run([]byte(doc)))
	}

	f(`<div class="formatTree"><pre>%s</pre></div>`, html.EscapeString(root.Render(0)))

	f(`<div class="formatSources"><table>`)
	var walk func(s format.Selector)
	walk = func(s format.Selector) {
		switch v := s.(type) {
		case *format.SourceSelector:
			f(`<tr class="source"><td><code>%s</code></td><td>%d index group(s)</td></tr>`,
				html.EscapeString(v.Name), len(v.Indexes))
		case *format.GroupSelector:
			for _, c := range v.Children {
				walk(c)
			}
		}
	}
	for _, c := range root.Children {
		walk(c)
	}
	f(`</table></div>`)

	return nil
}

// RenderFormatPage writes a complete HTML page for a parsed format.
func RenderFormatPage(root *format.RootSelector, doc string, out io.Writer, cssFiles []string) error {
	if cssFiles == nil {
		cssFiles = []string{"/static/format-html.css"}
	}

	js, err := json.Marshal(root)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, `<!DOCTYPE html>
<meta charset="utf-8">
<html>
  <head>
`)
	for _, css := range cssFiles {
		fmt.Fprintf(out, `    <link rel="stylesheet" href="%s">`+"\n", css)
	}
	fmt.Fprintf(out, `  </head>
  <body>
    <script type="application/json" id="format">%s</script>
`, js)

	if err = RenderFormatHTML(root, doc, out); err != nil {
		return err
	}

	fmt.Fprintf(out, `  </body>
</html>
`)

	return nil
}
