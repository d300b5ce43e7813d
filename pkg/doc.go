// Package pkg provides the core libraries for mdtouml.
//
// # Overview
//
// mdtouml turns Mermaid diagrams embedded in Markdown into PlantUML images.
// The pkg directory is organized into these areas:
//
//  1. [diagram] - Extraction and Mermaid to PlantUML conversion, one dialect per kind
//  2. [markdown] - goldmark-based discovery of every Mermaid block in a document
//  3. [plantuml] - Request encoding and the rendering-server client
//  4. [viewer] - The HTML page written next to each image
//  5. [pipeline] - Orchestration (extract → convert → fetch → write)
//  6. [batch] - TOML job files that drive the pipeline for many diagrams
//
// Supporting packages: [errors] (coded errors), [observability] (hooks)
// and [buildinfo] (version data).
//
// # Architecture
//
// The typical data flow through mdtouml:
//
//	Markdown file
//	     ↓
//	[diagram.Extract] (first fenced block of the requested kind)
//	     ↓
//	[diagram.Convert] (line rules per dialect)
//	     ↓
//	[plantuml.Encode] (zlib + base64)
//	     ↓
//	[plantuml.Client.Fetch] (GET <server>/png/~1<token>)
//	     ↓
//	<output>/<YYYYMMDD_HHMM>_<name>.png + <name>_viewer.html
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/mdtouml/pkg/diagram"
//	    "github.com/matzehuels/mdtouml/pkg/plantuml"
//	)
//
//	block, ok := diagram.Extract(doc, diagram.KindSequence)
//	if !ok {
//	    return
//	}
//	text := diagram.Convert(block, diagram.KindSequence)
//	img, err := plantuml.NewClient("", nil).Fetch(ctx, text)
//
// Or run everything, files included:
//
//	runner := pipeline.NewRunner(nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{Source: "docs/auth.md"})
package pkg
