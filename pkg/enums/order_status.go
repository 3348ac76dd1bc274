package enums

import "slices"

// OrderStatus is a stage of the fulfillment state machine.
type OrderStatus string

const (
	OrderStatusPending          OrderStatus = "Pending"
	OrderStatusConfirmed        OrderStatus = "Confirmed"
	OrderStatusProcessing       OrderStatus = "Processing"
	OrderStatusReadyForPickup   OrderStatus = "Ready for Pickup"
	OrderStatusReadyForDelivery OrderStatus = "Ready for Delivery"
	OrderStatusOutForDelivery   OrderStatus = "Out for Delivery"
	OrderStatusDelivered        OrderStatus = "Delivered"
	OrderStatusCompleted        OrderStatus = "Completed"
	OrderStatusRefund           OrderStatus = "Refund"
	OrderStatusCancelled        OrderStatus = "Cancelled"
	OrderStatusFailedDelivery   OrderStatus = "Failed Delivery"
	OrderStatusReturned         OrderStatus = "Returned"
)

var orderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusProcessing,
	OrderStatusReadyForPickup,
	OrderStatusReadyForDelivery,
	OrderStatusOutForDelivery,
	OrderStatusDelivered,
	OrderStatusCompleted,
	OrderStatusRefund,
	OrderStatusCancelled,
	OrderStatusFailedDelivery,
	OrderStatusReturned,
}

func OrderStatuses() []OrderStatus { return slices.Clone(orderStatuses) }

func (s OrderStatus) IsValid() bool { return slices.Contains(orderStatuses, s) }

// IsTerminal reports whether no transition may leave the status.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

func ParseOrderStatus(raw string) (OrderStatus, error) {
	return parse("order status", raw, orderStatuses)
}
