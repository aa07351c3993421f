// Package template renders single-token message templates. Tokens look like
// {name}; substitution is global, so a token appearing twice is replaced
// twice. Tokens with no bound value stay verbatim.
package template

import "strings"

// Render substitutes every {key} occurrence in tmpl with vars[key].
func Render(tmpl string, vars map[string]string) string {
	out := tmpl
	for k, v := range vars {
		out = strings.ReplaceAll(out, "{"+k+"}", v)
	}
	return out
}
