package enums

import "fmt"

// FulfillmentType describes how an order leaves the counter.
type FulfillmentType string

const (
	FulfillmentQuickSale FulfillmentType = "quick_sale"
	FulfillmentDelivery  FulfillmentType = "delivery"
	FulfillmentPickup    FulfillmentType = "pickup"
	FulfillmentPreorder  FulfillmentType = "preorder"
)

var validFulfillmentTypes = []FulfillmentType{
	FulfillmentQuickSale,
	FulfillmentDelivery,
	FulfillmentPickup,
	FulfillmentPreorder,
}

// String implements fmt.Stringer.
func (f FulfillmentType) String() string {
	return string(f)
}

// IsValid reports whether the value is a known FulfillmentType.
func (f FulfillmentType) IsValid() bool {
	for _, candidate := range validFulfillmentTypes {
		if candidate == f {
			return true
		}
	}
	return false
}

// RequiresCustomer reports whether the type denormalizes a customer address
// and therefore cannot settle without one attached.
func (f FulfillmentType) RequiresCustomer() bool {
	return f == FulfillmentDelivery || f == FulfillmentPreorder
}

// ParseFulfillmentType converts raw input into a FulfillmentType.
func ParseFulfillmentType(value string) (FulfillmentType, error) {
	for _, candidate := range validFulfillmentTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid fulfillment type %q", value)
}
