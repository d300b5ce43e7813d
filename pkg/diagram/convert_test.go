package diagram

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestConvertSequence(t *testing.T) {
	block := strings.Join([]string{
		"sequenceDiagram",
		"    autonumber",
		"    participant A as Alice",
		"    participant B",
		"    A->>B: hello",
		"    B-->>A: hi",
		"    Note over A,B: done",
		"",
		"    loop Every minute",
		"        A->B: ping",
		"    end",
	}, "\n")

	want := strings.Join([]string{
		"@startuml",
		"title Sequence diagram",
		"",
		"autonumber",
		"    participant A as Alice",
		"    participant B",
		"    A->B: hello",
		"    B-->A: hi",
		"    Note over A,B: done",
		"    loop Every minute",
		"        A->B: ping",
		"    end",
		"@enduml",
	}, "\n")

	if diff := cmp.Diff(want, Convert(block, KindSequence)); diff != "" {
		t.Errorf("Convert() mismatch (-want +got):\n%s", diff)
	}
}

func TestConvertFlowchart(t *testing.T) {
	block := strings.Join([]string{
		"flowchart TB",
		"    A[Start] --> B{Check}",
		"",
		"    subgraph Group1",
		"        C --> D",
		"    end",
		"    E",
	}, "\n")

	want := strings.Join([]string{
		"@startuml",
		"title Flowchart",
		"",
		"' Converted from Mermaid flowchart",
		"' Note: automatic conversion may need manual adjustments",
		"",
		"top to bottom direction",
		"    A[Start] -> B{Check}",
		"package Group1 {",
		"        C -> D",
		"}",
		"    E",
		"@enduml",
	}, "\n")

	if diff := cmp.Diff(want, Convert(block, KindFlowchart)); diff != "" {
		t.Errorf("Convert() mismatch (-want +got):\n%s", diff)
	}
}

func TestConvertClass(t *testing.T) {
	block := strings.Join([]string{
		"classDiagram",
		"    class Animal{",
		"        +String name",
		"        +eat()",
		"    }",
		"",
		"    Animal <|-- Dog",
		"    Dog --> Bone",
	}, "\n")

	want := strings.Join([]string{
		"@startuml",
		"title Class diagram",
		"",
		"    class Animal {",
		"        +String name",
		"        +eat()",
		"    }",
		"    Animal <|-- Dog",
		"    Dog --> Bone",
		"@enduml",
	}, "\n")

	if diff := cmp.Diff(want, Convert(block, KindClass)); diff != "" {
		t.Errorf("Convert() mismatch (-want +got):\n%s", diff)
	}
}

func TestConvertGeneric(t *testing.T) {
	block := "stateDiagram-v2\n    [*] --> Still\n\n    Still --> [*]"
	want := "@startuml\nstateDiagram-v2\n    [*] --> Still\n\n    Still --> [*]\n@enduml"
	if got := Convert(block, KindGeneric); got != want {
		t.Errorf("Convert() = %q, want %q", got, want)
	}
}

func TestConvertUnknownKindFallsBackToGeneric(t *testing.T) {
	got := Convert("pie\n    \"a\" : 1", Kind("pie"))
	if want := "@startuml\npie\n    \"a\" : 1\n@enduml"; got != want {
		t.Errorf("Convert() = %q, want %q", got, want)
	}
}

// convertedLines runs a single input line through kind and returns only the
// lines that follow the fixed header.
func convertedLines(kind Kind, line string) []string {
	out := Convert(line, kind)
	body := strings.TrimSuffix(strings.TrimPrefix(out, Header(kind)), EndMarker)
	if body == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(body, "\n"), "\n")
}

func TestLineRules(t *testing.T) {
	tests := []struct {
		name string
		kind Kind
		line string
		want []string
	}{
		// Sequence
		{"sequence keyword dropped", KindSequence, "sequenceDiagram", nil},
		{"async arrow normalized", KindSequence, "A->>B: hello", []string{"A->B: hello"}},
		{"plain arrow kept", KindSequence, "A->B: hello", []string{"A->B: hello"}},
		{"autonumber", KindSequence, "  autonumber  ", []string{"autonumber"}},
		{"participant with arrow text kept verbatim", KindSequence, "participant A as A->>B", []string{"participant A as A->>B"}},
		{"note over", KindSequence, "Note over A: wait", []string{"Note over A: wait"}},
		{"other line", KindSequence, "activate A", []string{"activate A"}},

		// Flowchart
		{"flowchart TB", KindFlowchart, "flowchart TB", []string{"top to bottom direction"}},
		{"flowchart LR", KindFlowchart, "flowchart LR", []string{"left to right direction"}},
		{"graph LR synonym", KindFlowchart, "graph LR", []string{"left to right direction"}},
		{"flowchart TD dropped", KindFlowchart, "flowchart TD", nil},
		{"graph RL dropped", KindFlowchart, "graph RL", nil},
		{"flowchart BT dropped", KindFlowchart, "flowchart BT", nil},
		{"subgraph", KindFlowchart, "subgraph Group1", []string{"package Group1 {"}},
		{"indented subgraph", KindFlowchart, "    subgraph  Payment Service ", []string{"package Payment Service {"}},
		{"end", KindFlowchart, "  end  ", []string{"}"}},
		{"edge", KindFlowchart, "A --> B --> C", []string{"A -> B -> C"}},
		{"edge mentioning graph reads as orientation", KindFlowchart, "A --> graphics", nil},
		{"node", KindFlowchart, "A[Start]", []string{"A[Start]"}},

		// Class
		{"class keyword dropped", KindClass, "classDiagram", nil},
		{"class brace spaced", KindClass, "class Animal{", []string{"class Animal {"}},
		{"class brace already spaced", KindClass, "class Animal {", []string{"class Animal  {"}},
		// The relation rule rewrites the arrow to itself.
		{"relation arrow unchanged", KindClass, "Dog --> Bone", []string{"Dog --> Bone"}},
		{"member line", KindClass, "+eat()", []string{"+eat()"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := convertedLines(tt.kind, tt.line)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Convert(%q) lines mismatch (-want +got):\n%s", tt.line, diff)
			}
		})
	}
}

func TestConvertBlankLinesDropped(t *testing.T) {
	for _, kind := range []Kind{KindSequence, KindFlowchart, KindClass} {
		t.Run(string(kind), func(t *testing.T) {
			if got := convertedLines(kind, "   \n\t\n"); got != nil {
				t.Errorf("Convert() = %q, want no content lines", got)
			}
		})
	}
}

func TestExtractThenConvertIsWrapped(t *testing.T) {
	docs := map[Kind]string{
		KindSequence:  fence + "mermaid\nsequenceDiagram\n  A->>B: x\n" + fence,
		KindFlowchart: fence + "mermaid\nflowchart TB\n  A --> B\n" + fence,
		KindClass:     fence + "mermaid\nclassDiagram\n  class A{\n  }\n" + fence,
		KindGeneric:   fence + "mermaid\nerDiagram\n  A ||--o{ B : has\n" + fence,
	}

	for kind, doc := range docs {
		t.Run(string(kind), func(t *testing.T) {
			block, ok := Extract(doc, kind)
			if !ok {
				t.Fatal("Extract() found nothing")
			}
			got := Convert(block, kind)
			if !strings.HasPrefix(got, Header(kind)) {
				t.Errorf("Convert() = %q, want prefix %q", got, Header(kind))
			}
			if !strings.HasSuffix(got, EndMarker) {
				t.Errorf("Convert() = %q, want suffix %q", got, EndMarker)
			}
			if strings.Count(got, StartMarker) != 1 || strings.Count(got, EndMarker) != 1 {
				t.Errorf("Convert() = %q, want exactly one start and end marker", got)
			}
		})
	}
}
