// Package textutil cleans user-entered free text before it is stored.
package textutil

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// Clean reduces s to plain text: entities are decoded, markup is stripped and
// surrounding whitespace trimmed. Decoding can expose new markup, so the pass
// repeats until the text stops changing. Clean(Clean(s)) == Clean(s).
func Clean(s string) string {
	for {
		next := strings.TrimSpace(html.UnescapeString(strict.Sanitize(html.UnescapeString(s))))
		// Every pass that changes the text shortens it.
		if next == s || len(next) >= len(s) {
			return next
		}
		s = next
	}
}
