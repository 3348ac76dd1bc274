// Package codec turns stored order events into Pub/Sub messages.
package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/BanSimplified567/isladelcafe2025-sub000/pkg/db/models"
	"github.com/BanSimplified567/isladelcafe2025-sub000/pkg/enums"
	"github.com/BanSimplified567/isladelcafe2025-sub000/pkg/outbox"
	"github.com/BanSimplified567/isladelcafe2025-sub000/pkg/outbox/payloads"
)

// ErrUndeliverable marks rows that will never decode, however often they are retried.
var ErrUndeliverable = errors.New("undeliverable order event")

// Message is an outbox row ready to publish. OrderingKey is the order ID so a
// subscriber sees each order's events in commit order.
type Message struct {
	EventID     string
	OrderingKey string
	Data        []byte
	Attributes  map[string]string
	Event       any
}

type decoder func(data json.RawMessage, attrs map[string]string) (any, error)

var decoders = map[enums.OutboxEventType]decoder{
	enums.EventOrderCreated: func(data json.RawMessage, attrs map[string]string) (any, error) {
		var ev payloads.OrderCreatedEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			return nil, err
		}
		attrs["order_number"] = ev.OrderNumber
		attrs["total_amount"] = ev.TotalAmount
		return &ev, nil
	},
	enums.EventOrderStatusChanged: func(data json.RawMessage, attrs map[string]string) (any, error) {
		var ev payloads.OrderStatusChangedEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			return nil, err
		}
		attrs["from_status"] = string(ev.From)
		attrs["to_status"] = string(ev.To)
		return &ev, nil
	},
	enums.EventOrderDeleted: func(data json.RawMessage, attrs map[string]string) (any, error) {
		var ev payloads.OrderDeletedEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			return nil, err
		}
		attrs["order_number"] = ev.OrderNumber
		attrs["to_status"] = string(ev.Status)
		return &ev, nil
	},
}

func undeliverable(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUndeliverable, fmt.Sprintf(format, args...))
}

// Decode checks the row and builds its message. Every error wraps ErrUndeliverable.
func Decode(row models.OutboxEvent) (*Message, error) {
	if row.AggregateType != enums.AggregateOrder {
		return nil, undeliverable("aggregate %q is not an order", row.AggregateType)
	}
	if row.AggregateID == uuid.Nil {
		return nil, undeliverable("row %s has no order id", row.ID)
	}
	decode, ok := decoders[row.EventType]
	if !ok {
		return nil, undeliverable("unknown event type %q", row.EventType)
	}

	var env outbox.PayloadEnvelope
	if err := json.Unmarshal(row.Payload, &env); err != nil {
		return nil, undeliverable("envelope: %v", err)
	}
	if data := bytes.TrimSpace(env.Data); len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, undeliverable("%s carries no data", row.EventType)
	}

	orderID := row.AggregateID.String()
	attrs := map[string]string{
		"event_id":       env.EventID,
		"event_type":     string(row.EventType),
		"order_id":       orderID,
		"schema_version": strconv.Itoa(env.Version),
		"occurred_at":    env.OccurredAt.UTC().Format(time.RFC3339Nano),
	}
	event, err := decode(env.Data, attrs)
	if err != nil {
		return nil, undeliverable("%s data: %v", row.EventType, err)
	}
	return &Message{
		EventID:     env.EventID,
		OrderingKey: orderID,
		Data:        row.Payload,
		Attributes:  attrs,
		Event:       event,
	}, nil
}
