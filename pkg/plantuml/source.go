package plantuml

import "strings"

const (
	startTag = "@startuml"
	endTag   = "@enduml"
)

// Wrap returns text ready for rendering. Text that already contains
// "@startuml" is only trimmed; anything else is placed between
// "@startuml" and "@enduml".
func Wrap(text string) string {
	text = strings.TrimSpace(text)
	if strings.Contains(text, startTag) {
		return text
	}
	return startTag + "\n" + text + "\n" + endTag
}
