// Package markdown finds Mermaid blocks in Markdown documents.
//
// Unlike [diagram.Extract], which applies a literal pattern to the raw text,
// Scan parses the document with goldmark and so sees fences the way a
// Markdown renderer does: inside lists and block quotes, with tildes or
// longer backtick runs, and never inside other code blocks.
package markdown

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/matzehuels/mdtouml/pkg/diagram"
)

const mermaidLanguage = "mermaid"

// Block is one fenced Mermaid block.
type Block struct {
	Index   int          // Position among the Mermaid blocks of the document, from 0
	Line    int          // 1-based line of the opening fence
	Kind    diagram.Kind // Detected from Header
	Header  string       // First non-blank line of the block
	Content string       // Block body without the fences
}

// Lines returns the number of lines in the block body.
func (b Block) Lines() int {
	if b.Content == "" {
		return 0
	}
	return strings.Count(b.Content, "\n") + 1
}

// Scan returns the Mermaid blocks of src in document order.
func Scan(src []byte) []Block {
	md := goldmark.New()
	root := md.Parser().Parse(text.NewReader(src))

	var blocks []Block
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fb, ok := n.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}
		if !strings.EqualFold(string(fb.Language(src)), mermaidLanguage) {
			return ast.WalkSkipChildren, nil
		}

		var body bytes.Buffer
		lines := fb.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			body.Write(seg.Value(src))
		}
		content := strings.TrimRight(body.String(), "\n")
		header := firstLine(content)

		blocks = append(blocks, Block{
			Index:   len(blocks),
			Line:    fenceLine(src, fb),
			Kind:    DetectKind(header),
			Header:  header,
			Content: content,
		})
		return ast.WalkSkipChildren, nil
	})
	return blocks
}

// DetectKind maps the opening line of a Mermaid block to a diagram kind.
// Unknown openers map to [diagram.KindGeneric].
func DetectKind(header string) diagram.Kind {
	word := header
	if i := strings.IndexAny(word, " \t"); i >= 0 {
		word = word[:i]
	}
	switch word {
	case "sequenceDiagram":
		return diagram.KindSequence
	case "flowchart", "graph":
		return diagram.KindFlowchart
	case "classDiagram":
		return diagram.KindClass
	}
	return diagram.KindGeneric
}

func firstLine(content string) string {
	for _, line := range strings.Split(content, "\n") {
		if s := strings.TrimSpace(line); s != "" {
			return s
		}
	}
	return ""
}

// fenceLine locates the opening fence from the info string, which sits on it.
func fenceLine(src []byte, fb *ast.FencedCodeBlock) int {
	offset := 0
	switch {
	case fb.Info != nil:
		offset = fb.Info.Segment.Start
	case fb.Lines().Len() > 0:
		offset = fb.Lines().At(0).Start
	}
	if offset > len(src) {
		offset = len(src)
	}
	return bytes.Count(src[:offset], []byte("\n")) + 1
}
