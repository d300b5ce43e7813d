package diagram

import (
	"regexp"
	"strings"
)

// Sequence diagram tokens.
const (
	sequenceKeyword = "sequenceDiagram"
	autonumber      = "autonumber"
	participant     = "participant"
	plainArrow      = "->"
	asyncArrow      = "->>"
	noteOver        = "Note over"
)

var sequencePattern = fencePattern(sequenceKeyword)

// sequenceDialect converts Mermaid sequence diagrams. Participant, note and
// message syntax is close enough between the notations that most lines are
// copied unchanged; only the async arrow needs rewriting.
type sequenceDialect struct{}

func (sequenceDialect) Pattern() *regexp.Regexp { return sequencePattern }
func (sequenceDialect) Header() string          { return titledHeader("Sequence diagram") }

func (d sequenceDialect) Convert(block string) string {
	w := newUMLWriter(d.Header())
	for _, line := range splitLines(block) {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == sequenceKeyword:
		case trimmed == autonumber:
			w.line(autonumber)
		case strings.Contains(line, participant):
			w.line(line)
		case strings.Contains(line, plainArrow):
			// Also catches "->>", which contains "->".
			w.line(strings.ReplaceAll(line, asyncArrow, plainArrow))
		case strings.Contains(line, noteOver):
			w.line(line)
		case trimmed != "":
			w.line(line)
		}
	}
	return w.finish()
}
