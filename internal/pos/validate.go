package pos

import (
	"github.com/balcaohq/balcao-backend/pkg/enums"
	pkgerrors "github.com/balcaohq/balcao-backend/pkg/errors"
)

// ValidateForSettlement checks the structural preconditions that gate the
// transition into settlement. Pure check, safe to call repeatedly.
func ValidateForSettlement(cart *Cart, fulfillment enums.FulfillmentType) error {
	if cart == nil || cart.Len() == 0 {
		return pkgerrors.New(pkgerrors.CodeEmptyCart, "order must contain at least one item")
	}
	if fulfillment.RequiresCustomer() && cart.Customer() == nil {
		return pkgerrors.New(pkgerrors.CodeCustomerRequired, "fulfillment type "+fulfillment.String()+" requires a customer")
	}
	return nil
}
