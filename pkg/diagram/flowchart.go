package diagram

import (
	"regexp"
	"strings"
)

// Flowchart tokens.
const (
	flowchartKeyword = "flowchart"
	graphKeyword     = "graph"
	flowEdge         = "-->"
	umlArrow         = "->"
	subgraphKeyword  = "subgraph"
	endKeyword       = "end"

	topToBottom = "top to bottom direction"
	leftToRight = "left to right direction"
)

var flowchartPattern = fencePattern(flowchartKeyword)

// flowchartDialect converts Mermaid flowcharts into a PlantUML
// component-style diagram. Only TB and LR orientations produce a direction
// statement; TD, BT and RL are dropped.
type flowchartDialect struct{}

func (flowchartDialect) Pattern() *regexp.Regexp { return flowchartPattern }

func (flowchartDialect) Header() string {
	return titledHeader("Flowchart") +
		"' Converted from Mermaid flowchart\n" +
		"' Note: automatic conversion may need manual adjustments\n\n"
}

func (d flowchartDialect) Convert(block string) string {
	w := newUMLWriter(d.Header())
	for _, line := range splitLines(block) {
		switch {
		case isOrientation(line):
			if dir, ok := direction(line); ok {
				w.line(dir)
			}
		case strings.Contains(line, flowEdge):
			w.line(strings.ReplaceAll(line, flowEdge, umlArrow))
		case strings.Contains(line, subgraphKeyword):
			w.line("package " + subgraphName(line) + " {")
		case strings.TrimSpace(line) == endKeyword:
			w.line("}")
		case !isBlank(line):
			w.line(line)
		}
	}
	return w.finish()
}

// isOrientation reports whether line declares the chart orientation. The
// "graph" synonym only counts outside of "subgraph".
func isOrientation(line string) bool {
	if strings.Contains(line, flowchartKeyword) {
		return true
	}
	return strings.Contains(strings.ReplaceAll(line, subgraphKeyword, ""), graphKeyword)
}

// direction maps an orientation line to a PlantUML direction statement.
func direction(line string) (string, bool) {
	switch {
	case strings.Contains(line, "TB"):
		return topToBottom, true
	case strings.Contains(line, "LR"):
		return leftToRight, true
	}
	return "", false
}

// subgraphName returns the text between the first "subgraph" and the next
// one (or the end of the line), trimmed.
func subgraphName(line string) string {
	return strings.TrimSpace(strings.Split(line, subgraphKeyword)[1])
}
