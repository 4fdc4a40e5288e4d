package report

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/okatyev/tg-digest/internal/digest"
	"github.com/samber/oops"
)

// digestTemplate renders the whole digest as one self-contained page.
// User-supplied text passes through html/template's contextual escaping.
var digestTemplate = template.Must(template.New("digest").Funcs(template.FuncMap{
	"multiline": multiline,
}).Parse(`<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>Telegram Unread Digest</title>
  <style>
    body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', sans-serif; margin: 2rem; background: #f5f7fb; }
    .grid { display: grid; gap: 1rem; }
    .card { background: #fff; border-radius: 12px; padding: 1rem 1.2rem; box-shadow: 0 2px 6px rgba(0,0,0,0.08); }
    .card.failed { border-left: 4px solid #c0392b; }
    h1 { margin-top: 0; }
    h2 { margin-bottom: 0.2rem; }
    .meta { color: #667; font-size: 0.9rem; }
    pre { white-space: pre-wrap; word-wrap: break-word; background: #fafafa; padding: 0.7rem; border-radius: 8px; }
    a { color: #0b6bcb; text-decoration: none; }
    .message { border-top: 1px solid #eee; padding-top: 0.6rem; margin-top: 0.6rem; }
  </style>
</head>
<body>
  <h1>Unread channel digest</h1>
  <p class="meta">Generated at {{.GeneratedAt.Format "2006-01-02 15:04:05"}}</p>
  <section class="grid">
{{- if not .Channels}}
    <p>No unread channel messages.</p>
{{- end}}
{{- range .Channels}}
{{- if .Err}}
    <article class="card failed">
      <h2>{{.Channel.Name}}</h2>
      <p class="meta">failed to load: {{.Err}}</p>
    </article>
{{- else}}
    <article class="card">
      <h2>{{.Channel.Name}}</h2>
      <p class="meta">{{len .Items}} unread message(s)</p>
{{- range .Items}}
      <div class="message">
{{- if .Message.Sender}}
        <p class="meta">{{.Message.Sender}} · {{.Message.Date.Format "2006-01-02 15:04"}}</p>
{{- else}}
        <p class="meta">{{.Message.Date.Format "2006-01-02 15:04"}}</p>
{{- end}}
        <p><strong>Summary</strong><br>{{multiline .Summary.Text}}</p>
{{- if .Message.Text}}
        <details>
          <summary>Show original</summary>
          <pre>{{.Message.Text}}</pre>
        </details>
{{- end}}
        <a href="{{.Message.Link}}" target="_blank">Open original message</a>
      </div>
{{- end}}
    </article>
{{- end}}
{{- end}}
  </section>
</body>
</html>
`))

// RenderHTML is a pure projection of the digest into a standalone document
func RenderHTML(d *digest.Digest) (string, error) {
	var buf bytes.Buffer
	if err := digestTemplate.Execute(&buf, d); err != nil {
		return "", oops.With("context", "executing digest template").Wrap(err)
	}
	return buf.String(), nil
}

// multiline escapes s and turns newlines into <br> so bullet summaries keep
// their line structure.
func multiline(s string) template.HTML {
	escaped := template.HTMLEscapeString(s)
	return template.HTML(strings.ReplaceAll(escaped, "\n", "<br>"))
}
