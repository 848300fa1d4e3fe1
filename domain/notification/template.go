package notification

import (
	"bytes"
	"fmt"
	"text/template"
)

// BodyTemplate renders message fields as bold-labeled lines
const BodyTemplate = `{{range $i, $f := .Fields}}{{if $i}}
{{end}}**{{$f.Label}}:** {{$f.Value}}{{end}}`

var bodyTmpl = template.Must(template.New("body").Parse(BodyTemplate))

// RenderBody renders the message body as markdown
func (m *Message) RenderBody() (string, error) {
	var buf bytes.Buffer
	if err := bodyTmpl.Execute(&buf, m); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}
