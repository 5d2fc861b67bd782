package pool

import (
	"html/template"
	"strings"
)

// Render substitutes {{key}} placeholders in s with their param values.
// Unknown placeholders are left untouched.
func Render(s string, params map[string]string) string {
	for k, v := range params {
		s = strings.ReplaceAll(s, "{{"+k+"}}", v)
	}
	return s
}

// RenderHTML is Render with param values HTML-escaped, for substitution into
// email template bodies.
func RenderHTML(s string, params map[string]string) string {
	for k, v := range params {
		s = strings.ReplaceAll(s, "{{"+k+"}}", template.HTMLEscapeString(v))
	}
	return s
}
