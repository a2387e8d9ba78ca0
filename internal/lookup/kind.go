package lookup

import (
	"fmt"
	"strings"
)

// Kind selects which reference service a lookup targets
type Kind int

const (
	Dictionary Kind = iota
	Thesaurus
)

// Kinds lists every lookup kind in processing order
var Kinds = []Kind{Dictionary, Thesaurus}

func (k Kind) String() string {
	switch k {
	case Dictionary:
		return "dictionary"
	case Thesaurus:
		return "thesaurus"
	default:
		return "unknown"
	}
}

// ParseKind converts a kind name into a Kind
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "dictionary", "dict":
		return Dictionary, nil
	case "thesaurus", "thes":
		return Thesaurus, nil
	default:
		return 0, fmt.Errorf("unknown lookup kind: %q", s)
	}
}
