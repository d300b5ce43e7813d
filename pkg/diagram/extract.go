package diagram

import "strings"

// Extract returns the interior of the first fenced Mermaid block of the given
// kind in doc.
//
// The fence delimiters are removed and the remaining text is trimmed. The
// diagram keyword line (for example "sequenceDiagram") is part of the result.
// When no block matches, or kind is unknown, ok is false; this is a normal
// outcome and not an error.
func Extract(doc string, kind Kind) (block string, ok bool) {
	d, found := dialects[kind]
	if !found {
		return "", false
	}
	loc := d.Pattern().FindStringIndex(doc)
	if loc == nil {
		return "", false
	}
	match := doc[loc[0]:loc[1]]
	inner := match[len(fenceOpener) : len(match)-len(fenceCloser)]
	return strings.TrimSpace(inner), true
}
