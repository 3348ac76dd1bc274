package enums

import "slices"

// OutboxAggregateType names what an outbox row is about. Orders are the only aggregate.
type OutboxAggregateType string

const AggregateOrder OutboxAggregateType = "order"

// OutboxEventType names an order event carried through the outbox.
type OutboxEventType string

const (
	EventOrderCreated       OutboxEventType = "order_created"
	EventOrderStatusChanged OutboxEventType = "order_status_changed"
	EventOrderDeleted       OutboxEventType = "order_deleted"
)

func (e OutboxEventType) IsValid() bool {
	return slices.Contains([]OutboxEventType{EventOrderCreated, EventOrderStatusChanged, EventOrderDeleted}, e)
}
