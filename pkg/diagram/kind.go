package diagram

import (
	"strings"

	"github.com/matzehuels/mdtouml/pkg/errors"
)

// Kind identifies a Mermaid diagram family.
type Kind string

// Supported diagram kinds.
const (
	KindSequence  Kind = "sequence"
	KindFlowchart Kind = "flowchart"
	KindClass     Kind = "class"
	KindGeneric   Kind = "generic"
)

// DefaultKind is used when the caller does not choose one.
const DefaultKind = KindSequence

// Kinds lists every supported kind in display order.
var Kinds = []Kind{KindSequence, KindFlowchart, KindClass, KindGeneric}

// String returns the kind name.
func (k Kind) String() string { return string(k) }

// Valid reports whether k is one of the supported kinds.
func (k Kind) Valid() bool {
	_, ok := dialects[k]
	return ok
}

// ParseKind converts a user-supplied name into a Kind.
// Matching is exact; an empty string yields [DefaultKind].
func ParseKind(s string) (Kind, error) {
	if s == "" {
		return DefaultKind, nil
	}
	k := Kind(s)
	if !k.Valid() {
		return "", errors.New(errors.ErrCodeInvalidKind,
			"invalid diagram type: %q (must be one of: %s)", s, KindNames())
	}
	return k, nil
}

// KindNames returns the supported kinds as a comma-separated list.
func KindNames() string {
	names := make([]string, len(Kinds))
	for i, k := range Kinds {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}
