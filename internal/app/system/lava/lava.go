// Package lava renders user-authored Liquid templates ("Lava") for
// dashboard widgets. It wraps github.com/osteele/liquid and adds the Lava
// filters the widget templates rely on.
package lava

import (
	"encoding/json"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/osteele/liquid"
)

// DefaultTemplate is the template a new widget starts with.
const DefaultTemplate = `
{% for metric in Metrics %}
    <h1>{{ metric.Title }}</h1>
    <h4>{{ metric.Subtitle }}</h4>
    <p>{{ metric.Description }}</p>
    <div class='row'>
        <div class='col-md-6'>
            {{ metric.LastValueDate | Date: 'MMM' }}
              <span style='font-size:40px'>{{ metric.LastValue }}</span>
        </div>
        <div class='col-md-6'>
            <i class='{{ metric.IconCssClass }} fa-5x'></i>
        </div>
    </div>
{% endfor %}
`

// Fields are the named values a template can reference.
type Fields map[string]any

// Renderer renders Lava templates. It is safe for concurrent use once built.
type Renderer struct {
	engine *liquid.Engine
	now    func() time.Time
}

// New returns a Renderer with the Lava filters registered.
func New() *Renderer {
	r := &Renderer{engine: liquid.NewEngine(), now: time.Now}
	r.engine.RegisterFilter("Date", r.dateFilter)
	return r
}

// Render parses and renders source against fields.
func (r *Renderer) Render(source string, fields Fields) (string, error) {
	out, err := r.engine.ParseAndRenderString(source, liquid.Bindings(fields))
	if err != nil {
		return "", fmt.Errorf("render lava: %w", err)
	}
	return out, nil
}

// CommonFields returns the merge fields every widget template receives.
func CommonFields(now time.Time, currentPath string, pageParams map[string]string) Fields {
	params := make(map[string]any, len(pageParams))
	for k, v := range pageParams {
		params[k] = v
	}
	return Fields{
		"Now":           now,
		"CurrentPath":   currentPath,
		"PageParameter": params,
	}
}

// DebugInfo renders the merge fields as an escaped block so template
// authors can see what is available.
func DebugInfo(fields Fields) string {
	b, err := json.MarshalIndent(fields, "", "  ")
	if err != nil {
		b = []byte(err.Error())
	}
	var sb strings.Builder
	sb.WriteString(`<div class="alert alert-info lava-debug"><h4>Lava Merge Fields</h4><pre>`)
	sb.WriteString(html.EscapeString(string(b)))
	sb.WriteString(`</pre></div>`)
	return sb.String()
}

// dateFilter implements {{ value | Date: 'format' }}. The value may be a
// time.Time, a *time.Time, an RFC 3339 string or "Now". Unset dates and
// unparsable values render empty.
func (r *Renderer) dateFilter(v any, format string) string {
	var t time.Time
	switch x := v.(type) {
	case time.Time:
		t = x
	case *time.Time:
		if x == nil {
			return ""
		}
		t = *x
	case string:
		s := strings.TrimSpace(x)
		if strings.EqualFold(s, "now") {
			t = r.now()
			break
		}
		parsed, err := time.Parse(time.RFC3339, s)
		if err != nil {
			parsed, err = time.Parse("2006-01-02", s)
			if err != nil {
				return ""
			}
		}
		t = parsed
	default:
		return ""
	}
	if t.IsZero() {
		return ""
	}
	return FormatDate(t, format)
}
