package tools

import (
	"fmt"
	"html"
	"io"
	"os"

	"github.com/KirbyMcKenzie/BotBuilder-V3/dispatch"

	md "github.com/russross/blackfriday/v2"
	yaml "gopkg.in/yaml.v2"
)

// RenderSpecHTML writes an HTML fragment describing the bot spec.
//
// Doc fields are Markdown.
func RenderSpecHTML(s *dispatch.Spec, out io.Writer) error {
	f := func(format string, args ...interface{}) {
		fmt.Fprintf(out, format+"\n", args...)
	}

	f(`<div class="specDoc doc">%s</div>`, md.Run([]byte(s.Doc)))

	f(`<div class="candidates"><table>`)
	for i, c := range s.Candidates {
		f(`<tr class="candidate"><td><div class="candidateNum">%d</div></td><td>`, i)
		f(`<table>`)
		f(`<tr><td>pattern</td><td><code>%s</code></td></tr>`, html.EscapeString(c.Pattern))
		if c.Doc != "" {
			f(`<tr><td>doc</td><td><div class="candidateDoc doc">%s</div></td></tr>`, md.Run([]byte(c.Doc)))
		}
		if c.Interpreter != "" {
			f(`<tr><td>interpreter</td><td><code>%s</code></td></tr>`, html.EscapeString(c.Interpreter))
		}
		if c.Priority != 0 {
			f(`<tr><td>priority</td><td><code>%d</code></td></tr>`, c.Priority)
		}
		if c.Guard != "" {
			f(`<tr><td>guard</td><td><div class="code"><pre>%s</pre></div></td></tr>`, html.EscapeString(c.Guard))
		}
		f(`<tr><td>source</td><td><div class="code"><pre>%s</pre></div></td></tr>`, html.EscapeString(c.Source))
		f(`</table>`)
		f(`</td></tr>`)
	}
	f(`</table></div>`)

	return nil
}

// RenderSpecPage writes a whole HTML page for the bot spec.
func RenderSpecPage(s *dispatch.Spec, out io.Writer, cssFiles []string) error {

	if cssFiles == nil {
		cssFiles = []string{"/static/spec-html.css"}
	}

	fmt.Fprintf(out, `<!DOCTYPE html>
<meta charset="utf-8">
<html>
  <head>
  <title>%s</title>
`, html.EscapeString(s.Name))

	for _, cssFile := range cssFiles {
		fmt.Fprintf(out, "  <link href=\"%s\" rel=\"stylesheet\">\n", cssFile)
	}

	fmt.Fprintf(out, `
  </head>
  <body>
    <h1>%s</h1>
`, html.EscapeString(s.Name))

	if err := RenderSpecHTML(s, out); err != nil {
		return err
	}

	fmt.Fprintf(out, `
  </body>
</html>
`)

	return nil
}

// ReadSpec reads a YAML bot spec from the file.
func ReadSpec(filename string) (*dispatch.Spec, error) {
	specSrc, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	var spec dispatch.Spec
	if err = yaml.Unmarshal(specSrc, &spec); err != nil {
		return nil, err
	}
	return &spec, nil
}

// ReadAndRenderSpecPage reads a YAML bot spec and renders it as an
// HTML page.
func ReadAndRenderSpecPage(filename string, cssFiles []string, out io.Writer) error {
	spec, err := ReadSpec(filename)
	if err != nil {
		return err
	}

	return RenderSpecPage(spec, out, cssFiles)
}
