package enums

import "fmt"

// ItemKind distinguishes items sold on their own from complements that only
// exist attached to a principal's cart line.
type ItemKind string

const (
	ItemKindPrincipal  ItemKind = "principal"
	ItemKindComplement ItemKind = "complement"
)

var validItemKinds = []ItemKind{
	ItemKindPrincipal,
	ItemKindComplement,
}

// String implements fmt.Stringer.
func (i ItemKind) String() string {
	return string(i)
}

// IsValid reports whether the value is a known ItemKind.
func (i ItemKind) IsValid() bool {
	for _, candidate := range validItemKinds {
		if candidate == i {
			return true
		}
	}
	return false
}

// ParseItemKind converts raw input into an ItemKind.
func ParseItemKind(value string) (ItemKind, error) {
	for _, candidate := range validItemKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid item kind %q", value)
}
