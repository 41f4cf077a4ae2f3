package enums

import "fmt"

// PersonType distinguishes individual customers from companies.
type PersonType string

const (
	PersonTypeIndividual PersonType = "individual"
	PersonTypeCompany    PersonType = "company"
)

var validPersonTypes = []PersonType{
	PersonTypeIndividual,
	PersonTypeCompany,
}

// String implements fmt.Stringer.
func (p PersonType) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PersonType.
func (p PersonType) IsValid() bool {
	for _, candidate := range validPersonTypes {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePersonType converts raw input into a PersonType.
func ParsePersonType(value string) (PersonType, error) {
	for _, candidate := range validPersonTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid person type %q", value)
}
