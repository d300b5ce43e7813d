package diagram

import (
	"regexp"
	"strings"
)

// Class diagram tokens.
const (
	classDiagramKeyword = "classDiagram"
	classKeyword        = "class"
	openBrace           = "{"
	relationArrow       = "-->"
)

var classPattern = fencePattern(classDiagramKeyword)

// classDialect converts Mermaid class diagrams. Class bodies and relations
// already read as PlantUML, so the rules only normalize brace spacing.
type classDialect struct{}

func (classDialect) Pattern() *regexp.Regexp { return classPattern }
func (classDialect) Header() string          { return titledHeader("Class diagram") }

func (d classDialect) Convert(block string) string {
	w := newUMLWriter(d.Header())
	for _, line := range splitLines(block) {
		switch {
		case strings.Contains(line, classDiagramKeyword):
		case strings.Contains(line, classKeyword) && strings.Contains(line, openBrace):
			w.line(strings.ReplaceAll(line, openBrace, " "+openBrace))
		case strings.Contains(line, relationArrow):
			// Relation arrows are identical in both notations.
			w.line(strings.ReplaceAll(line, relationArrow, relationArrow))
		case !isBlank(line):
			w.line(line)
		}
	}
	return w.finish()
}
