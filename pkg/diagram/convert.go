package diagram

import "regexp"

// Convert rewrites an extracted block as PlantUML using the rules of kind.
// Unknown kinds fall back to the generic pass-through.
func Convert(block string, kind Kind) string {
	return dialectFor(kind).Convert(block)
}

// Header returns the fixed text a conversion of kind begins with.
func Header(kind Kind) string {
	return dialectFor(kind).Header()
}

// genericDialect wraps any Mermaid block verbatim.
type genericDialect struct{}

var genericPattern = fencePattern("")

func (genericDialect) Pattern() *regexp.Regexp { return genericPattern }
func (genericDialect) Header() string          { return StartMarker + "\n" }

func (d genericDialect) Convert(block string) string {
	return d.Header() + block + "\n" + EndMarker
}
