package orders

import "github.com/BanSimplified567/isladelcafe2025-sub000/pkg/enums"

var transitions = map[enums.OrderStatus][]enums.OrderStatus{
	enums.OrderStatusPending:          {enums.OrderStatusConfirmed, enums.OrderStatusCancelled},
	enums.OrderStatusConfirmed:        {enums.OrderStatusProcessing, enums.OrderStatusCancelled},
	enums.OrderStatusProcessing:       {enums.OrderStatusReadyForPickup, enums.OrderStatusReadyForDelivery, enums.OrderStatusCancelled},
	enums.OrderStatusReadyForPickup:   {enums.OrderStatusCompleted, enums.OrderStatusCancelled},
	enums.OrderStatusReadyForDelivery: {enums.OrderStatusOutForDelivery, enums.OrderStatusCancelled},
	enums.OrderStatusOutForDelivery:   {enums.OrderStatusDelivered, enums.OrderStatusFailedDelivery, enums.OrderStatusCancelled},
	enums.OrderStatusDelivered:        {enums.OrderStatusCompleted, enums.OrderStatusReturned},
	enums.OrderStatusRefund:           {enums.OrderStatusCompleted},
	enums.OrderStatusFailedDelivery:   {enums.OrderStatusOutForDelivery, enums.OrderStatusCancelled},
	enums.OrderStatusReturned:         {enums.OrderStatusRefund, enums.OrderStatusCompleted},
}

// AllowedTransitions returns the statuses reachable from current in one step.
func AllowedTransitions(current enums.OrderStatus) []enums.OrderStatus {
	next := transitions[current]
	out := make([]enums.OrderStatus, len(next))
	copy(out, next)
	return out
}

// CanTransition reports whether current -> target is an edge of the state machine.
func CanTransition(current, target enums.OrderStatus) bool {
	if current == target {
		return false
	}
	for _, candidate := range transitions[current] {
		if candidate == target {
			return true
		}
	}
	return false
}
