package diagram

import (
	"regexp"
	"strings"
)

// PlantUML document markers.
const (
	StartMarker = "@startuml"
	EndMarker   = "@enduml"
)

// fenceOpener is the literal that opens a Mermaid block. Extraction strips
// exactly this many bytes from the front of a match.
const fenceOpener = "```mermaid"

// fenceCloser terminates every fenced block.
const fenceCloser = "```"

// Dialect is the capability set shared by all diagram kinds.
type Dialect interface {
	// Pattern matches a fenced block of this kind, delimiters included.
	Pattern() *regexp.Regexp

	// Header is the fixed text every conversion of this kind starts with.
	Header() string

	// Convert rewrites the interior of a block as PlantUML.
	Convert(block string) string
}

var dialects = map[Kind]Dialect{
	KindSequence:  sequenceDialect{},
	KindFlowchart: flowchartDialect{},
	KindClass:     classDialect{},
	KindGeneric:   genericDialect{},
}

// dialectFor returns the dialect registered for k, or the generic
// pass-through for unknown kinds.
func dialectFor(k Kind) Dialect {
	if d, ok := dialects[k]; ok {
		return d
	}
	return genericDialect{}
}

// fencePattern builds the extraction pattern for blocks whose first line
// starts with keyword. An empty keyword accepts any Mermaid block.
func fencePattern(keyword string) *regexp.Regexp {
	return regexp.MustCompile(`(?s)` + regexp.QuoteMeta(fenceOpener+"\n"+keyword) + `.*?` + regexp.QuoteMeta(fenceCloser))
}

// umlWriter accumulates PlantUML output one line at a time.
type umlWriter struct {
	b strings.Builder
}

func newUMLWriter(header string) *umlWriter {
	w := &umlWriter{}
	w.b.WriteString(header)
	return w
}

func (w *umlWriter) line(s string) {
	w.b.WriteString(s)
	w.b.WriteByte('\n')
}

func (w *umlWriter) finish() string {
	w.b.WriteString(EndMarker)
	return w.b.String()
}

// titledHeader returns the start marker, a title line and a blank line.
func titledHeader(title string) string {
	return StartMarker + "\ntitle " + title + "\n\n"
}

// splitLines trims the block and splits it on newlines.
func splitLines(block string) []string {
	return strings.Split(strings.TrimSpace(block), "\n")
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}
