// Package htmlsanitize cleans HTML produced from user-authored widget
// templates before it is placed on a page.
package htmlsanitize

import (
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	policyOnce sync.Once
	policy     *bluemonday.Policy
)

// widgetPolicy allows the markup dashboard templates are written with
// (grid rows, icons, headings, tables) and strips scripts, event handlers,
// frames and forms.
func widgetPolicy() *bluemonday.Policy {
	policyOnce.Do(func() {
		p := bluemonday.UGCPolicy()
		p.AllowAttrs("class").Globally()
		p.AllowAttrs("title").Globally()
		p.AllowElements("div", "span", "i", "u", "s", "sub", "sup", "mark", "hr", "br")
		p.AllowAttrs("colspan", "rowspan").OnElements("td", "th")
		p.AllowStyles(
			"color", "background-color",
			"font-size", "font-weight", "font-style",
			"text-align", "vertical-align",
			"width", "height", "margin", "padding",
			"display",
		).Globally()
		policy = p
	})
	return policy
}

// Sanitize returns s with disallowed markup removed.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	return widgetPolicy().Sanitize(s)
}
