package utils

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	richPolicy  = bluemonday.UGCPolicy()
	plainPolicy = bluemonday.StrictPolicy()
)

// SanitizeHTML cleans rich text so it is safe to render as HTML.
func SanitizeHTML(input string) string {
	return richPolicy.Sanitize(input)
}

// PlainText strips all markup, trims the result and undoes entity escaping.
func PlainText(input string) string {
	return strings.TrimSpace(html.UnescapeString(plainPolicy.Sanitize(input)))
}

// PlainTextPtr applies PlainText to an optional value; blank results become nil.
func PlainTextPtr(input *string) *string {
	if input == nil {
		return nil
	}
	out := PlainText(*input)
	if out == "" {
		return nil
	}
	return &out
}
