package enums

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOrderStatus(t *testing.T) {
	s, err := ParseOrderStatus("Ready for Pickup")
	require.NoError(t, err)
	assert.Equal(t, OrderStatusReadyForPickup, s)

	_, err = ParseOrderStatus("ready for pickup")
	assert.EqualError(t, err, `invalid order status "ready for pickup"`)
}

func TestClosedSets(t *testing.T) {
	assert.Len(t, OrderStatuses(), 12)
	assert.True(t, OrderStatusCancelled.IsTerminal())
	assert.False(t, OrderStatusRefund.IsTerminal())

	assert.Equal(t, []ProductSize{ProductSizeSmall, ProductSizeMedium, ProductSizeLarge}, ProductSizes())
	assert.False(t, ProductSize("Venti").IsValid())

	assert.True(t, PaymentMethodGCash.RequiresReference())
	assert.False(t, PaymentMethodPickup.RequiresReference())
	assert.False(t, PaymentMethod("Cash").IsValid())

	assert.True(t, UserRoleAdmin.IsStaff())
	assert.False(t, UserRoleCustomer.IsStaff())
	assert.False(t, UserRole("barista").IsValid())

	assert.True(t, EventOrderDeleted.IsValid())
	assert.False(t, OutboxEventType("order_refunded").IsValid())
}

func TestClonesAreIndependent(t *testing.T) {
	sizes := ProductSizes()
	sizes[0] = "Venti"
	assert.Equal(t, ProductSizeSmall, ProductSizes()[0])
}
