package codec

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BanSimplified567/isladelcafe2025-sub000/pkg/db/models"
	"github.com/BanSimplified567/isladelcafe2025-sub000/pkg/enums"
	"github.com/BanSimplified567/isladelcafe2025-sub000/pkg/outbox"
	"github.com/BanSimplified567/isladelcafe2025-sub000/pkg/outbox/payloads"
)

func row(t *testing.T, eventType enums.OutboxEventType, orderID uuid.UUID, data any) models.OutboxEvent {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	env, err := json.Marshal(outbox.PayloadEnvelope{
		Version:    1,
		EventID:    "evt-1",
		OccurredAt: time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC),
		Data:       raw,
	})
	require.NoError(t, err)
	return models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     eventType,
		AggregateType: enums.AggregateOrder,
		AggregateID:   orderID,
		Payload:       env,
	}
}

func TestDecodeStatusChange(t *testing.T) {
	orderID := uuid.New()
	msg, err := Decode(row(t, enums.EventOrderStatusChanged, orderID, payloads.OrderStatusChangedEvent{
		OrderID: orderID,
		From:    enums.OrderStatusPending,
		To:      enums.OrderStatusConfirmed,
	}))
	require.NoError(t, err)

	assert.Equal(t, orderID.String(), msg.OrderingKey)
	assert.Equal(t, map[string]string{
		"event_id":       "evt-1",
		"event_type":     "order_status_changed",
		"order_id":       orderID.String(),
		"schema_version": "1",
		"occurred_at":    "2025-06-01T08:00:00Z",
		"from_status":    "Pending",
		"to_status":      "Confirmed",
	}, msg.Attributes)
	ev, ok := msg.Event.(*payloads.OrderStatusChangedEvent)
	require.True(t, ok)
	assert.Equal(t, enums.OrderStatusConfirmed, ev.To)
}

func TestDecodeCreatedCarriesOrderNumber(t *testing.T) {
	orderID := uuid.New()
	msg, err := Decode(row(t, enums.EventOrderCreated, orderID, payloads.OrderCreatedEvent{
		OrderID:     orderID,
		OrderNumber: "IDC-20250601-0001",
		TotalAmount: "245.00",
	}))
	require.NoError(t, err)
	assert.Equal(t, "IDC-20250601-0001", msg.Attributes["order_number"])
	assert.Equal(t, "245.00", msg.Attributes["total_amount"])
	assert.Equal(t, "evt-1", msg.EventID)
}

func TestDecodeRejectsUndeliverableRows(t *testing.T) {
	orderID := uuid.New()
	good := row(t, enums.EventOrderDeleted, orderID, payloads.OrderDeletedEvent{OrderID: orderID})

	cases := map[string]func(r *models.OutboxEvent){
		"unknown type":  func(r *models.OutboxEvent) { r.EventType = "order_refunded" },
		"not an order":  func(r *models.OutboxEvent) { r.AggregateType = "customer" },
		"no order id":   func(r *models.OutboxEvent) { r.AggregateID = uuid.Nil },
		"broken json":   func(r *models.OutboxEvent) { r.Payload = json.RawMessage(`{"data":`) },
		"null data":     func(r *models.OutboxEvent) { r.Payload = json.RawMessage(`{"version":1,"data":null}`) },
		"wrong payload": func(r *models.OutboxEvent) { r.Payload = json.RawMessage(`{"version":1,"data":{"order_number":7}}`) },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			r := good
			mutate(&r)
			_, err := Decode(r)
			require.ErrorIs(t, err, ErrUndeliverable)
		})
	}
}
