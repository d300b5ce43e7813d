// Package diagram extracts Mermaid diagrams from Markdown and rewrites them
// as PlantUML.
//
// # Overview
//
// Every supported diagram family is a [Kind]. Each Kind has a [Dialect]
// registered for it, which knows two things:
//
//   - the fence pattern used by [Extract] to find the diagram in a document
//   - the line rules used by [Convert] to rewrite it as PlantUML
//
// Conversion is a best-effort textual transliteration. Lines are processed in
// their original order, each line produces zero or one output line, and the
// result is always wrapped in @startuml / @enduml. Nothing validates that the
// output is well-formed PlantUML.
//
// # Extraction
//
// Patterns are matched with dot-matches-newline semantics and stop at the
// first closing fence after the opener, wherever it is. A ```mermaid block
// that contains no closing fence of its own will therefore swallow text up to
// the next fence in the document. Callers relying on exact block boundaries
// should use the goldmark-based scanner in package markdown instead.
//
// # Usage
//
//	block, ok := diagram.Extract(doc, diagram.KindSequence)
//	if !ok {
//	    // no sequence diagram in doc
//	}
//	uml := diagram.Convert(block, diagram.KindSequence)
package diagram
