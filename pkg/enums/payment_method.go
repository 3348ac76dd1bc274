package enums

import "slices"

type PaymentMethod string

const (
	PaymentMethodGCash  PaymentMethod = "GCash"
	PaymentMethodPickup PaymentMethod = "Pickup"
)

func (p PaymentMethod) IsValid() bool {
	return slices.Contains([]PaymentMethod{PaymentMethodGCash, PaymentMethodPickup}, p)
}

// RequiresReference is true for methods paid before the order reaches the counter.
func (p PaymentMethod) RequiresReference() bool { return p == PaymentMethodGCash }
