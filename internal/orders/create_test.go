package orders

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/BanSimplified567/isladelcafe2025-sub000/internal/inventory"
	"github.com/BanSimplified567/isladelcafe2025-sub000/pkg/enums"
	pkgerrors "github.com/BanSimplified567/isladelcafe2025-sub000/pkg/errors"
	"github.com/BanSimplified567/isladelcafe2025-sub000/pkg/outbox"
)

func TestCreateOrderSingleLatte(t *testing.T) {
	f := newFixture(t)
	userID := customer()

	input := cart(userID, line(latteID, enums.ProductSizeMedium, 2, "120.00"))
	res := f.mustCreate(input)

	assert.Equal(t, 24, res.PointsEarned)
	assert.Equal(t, 24, res.PointsBalance)
	assert.Equal(t, enums.OrderStatusPending, res.Status)
	assert.Equal(t, 0, res.LoyaltyPointsUsed)
	assert.Nil(t, res.FreeItem)
	assert.Empty(t, res.LowStockProductIDs)
	assert.Equal(t, 8, f.stock(latteID, enums.ProductSizeMedium))

	entries := f.history(res.OrderID)
	require.Len(t, entries, 1)
	assert.Equal(t, enums.OrderStatusPending, entries[0].Status)
	assert.Equal(t, *userID, *entries[0].ActorID)
	assert.Contains(t, entries[0].Note, "Earned 24 points")

	order, err := f.svc.GetOrder(context.Background(), res.OrderID)
	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	assert.True(t, order.Items[0].UnitPrice.Equal(money("120")))
	assert.Equal(t, int64(0), f.count("outbox_events"))
}

func TestCreateOrderGuestEarnsNothing(t *testing.T) {
	f := newFixture(t)
	res := f.mustCreate(cart(nil, line(pastryID, enums.ProductSizeMedium, 1, "60.00")))

	assert.Equal(t, 0, res.PointsEarned)
	assert.Equal(t, 0, res.PointsBalance)
	assert.Equal(t, int64(0), f.count("customer_profiles"))
	assert.Nil(t, f.history(res.OrderID)[0].ActorID)
}

func TestCreateOrderValidationRejectsBeforeWriting(t *testing.T) {
	ref := func(v string) *string { return &v }

	cases := []struct {
		name   string
		mutate func(*CreateOrderInput)
		code   pkgerrors.Code
	}{
		{"missing delivery name", func(in *CreateOrderInput) { in.Delivery.Name = " " }, pkgerrors.CodeValidation},
		{"missing order number", func(in *CreateOrderInput) { in.OrderNumber = "" }, pkgerrors.CodeValidation},
		{"zero total", func(in *CreateOrderInput) { in.TotalAmount = money("0") }, pkgerrors.CodeValidation},
		{"negative discount", func(in *CreateOrderInput) { in.DiscountAmount = money("-1") }, pkgerrors.CodeValidation},
		{"sub-centavo total", func(in *CreateOrderInput) { in.TotalAmount = money("0.004") }, pkgerrors.CodeValidation},
		{"sub-centavo discount", func(in *CreateOrderInput) { in.DiscountAmount = money("0.005") }, pkgerrors.CodeValidation},
		{"sub-centavo price", func(in *CreateOrderInput) { in.Items[0].UnitPrice = money("0.004") }, pkgerrors.CodeValidation},
		{"unknown payment method", func(in *CreateOrderInput) { in.PaymentMethod = "Cash" }, pkgerrors.CodeValidation},
		{"gcash without reference", func(in *CreateOrderInput) { in.PaymentMethod = enums.PaymentMethodGCash }, pkgerrors.CodeValidation},
		{"gcash short reference", func(in *CreateOrderInput) {
			in.PaymentMethod = enums.PaymentMethodGCash
			in.PaymentReference = ref("12345")
		}, pkgerrors.CodeValidation},
		{"outside service area", func(in *CreateOrderInput) { in.Delivery.City = "Lapu-Lapu City" }, pkgerrors.CodeValidation},
		{"no items", func(in *CreateOrderInput) { in.Items = nil }, pkgerrors.CodeValidation},
		{"zero quantity", func(in *CreateOrderInput) { in.Items[0].Quantity = 0 }, pkgerrors.CodeValidation},
		{"zero price", func(in *CreateOrderInput) { in.Items[0].UnitPrice = money("0") }, pkgerrors.CodeValidation},
		{"bad size", func(in *CreateOrderInput) { in.Items[0].Size = "Venti" }, pkgerrors.CodeValidation},
		{"unknown product", func(in *CreateOrderInput) { in.Items[0].ProductID = 404 }, pkgerrors.CodeValidation},
		{"missing size variant", func(in *CreateOrderInput) { in.Items[0].Size = enums.ProductSizeLarge }, pkgerrors.CodeValidation},
		{"inactive product", func(in *CreateOrderInput) { in.Items[0].ProductID = retiredID }, pkgerrors.CodeValidation},
		{"discount without promo", func(in *CreateOrderInput) { in.DiscountAmount = money("10") }, pkgerrors.CodeInvalidDiscount},
		{"over stock", func(in *CreateOrderInput) { in.Items[0].Quantity = 11 }, pkgerrors.CodeInsufficientStock},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			input := cart(customer(), line(latteID, enums.ProductSizeMedium, 2, "120.00"))
			tc.mutate(&input)

			_, err := f.svc.CreateOrder(context.Background(), input)
			require.Error(t, err)
			assert.True(t, pkgerrors.HasCode(err, tc.code), "got %v", err)

			assert.Equal(t, int64(0), f.count("orders"))
			assert.Equal(t, int64(0), f.count("order_items"))
			assert.Equal(t, int64(0), f.count("order_history"))
			assert.Equal(t, int64(0), f.count("customer_profiles"))
			assert.Equal(t, 10, f.stock(latteID, enums.ProductSizeMedium))
		})
	}
}

func TestCreateOrderGCashReference(t *testing.T) {
	f := newFixture(t)
	input := cart(nil, line(latteID, enums.ProductSizeSmall, 1, "100.00"))
	input.PaymentMethod = enums.PaymentMethodGCash
	ref := " 0917123456789 "
	input.PaymentReference = &ref

	res := f.mustCreate(input)
	order, err := f.svc.GetOrder(context.Background(), res.OrderID)
	require.NoError(t, err)
	require.NotNil(t, order.PaymentReference)
	assert.Equal(t, "0917123456789", *order.PaymentReference)
}

func TestCreateOrderCityMatchIgnoresCase(t *testing.T) {
	f := newFixture(t)
	input := cart(nil, line(latteID, enums.ProductSizeSmall, 1, "100.00"))
	input.Delivery.City = "  cebu city "
	f.mustCreate(input)
}

func TestCreateOrderDuplicateNumberConflicts(t *testing.T) {
	f := newFixture(t)
	first := cart(nil, line(latteID, enums.ProductSizeSmall, 1, "100.00"))
	f.mustCreate(first)

	second := cart(nil, line(latteID, enums.ProductSizeSmall, 1, "100.00"))
	second.OrderNumber = first.OrderNumber
	_, err := f.svc.CreateOrder(context.Background(), second)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeConflict))
	assert.Equal(t, 9, f.stock(latteID, enums.ProductSizeSmall))
}

func TestCreateOrderPromoDiscount(t *testing.T) {
	promo := "kape10"

	t.Run("matching discount accepted", func(t *testing.T) {
		f := newFixture(t)
		input := cart(nil, line(latteID, enums.ProductSizeMedium, 2, "120.00"))
		input.PromoCode = &promo
		input.DiscountAmount = money("24.00")
		input.TotalAmount = money("216.00")
		f.mustCreate(input)
	})

	t.Run("within tolerance accepted", func(t *testing.T) {
		f := newFixture(t)
		input := cart(nil, line(latteID, enums.ProductSizeMedium, 2, "120.00"))
		input.PromoCode = &promo
		input.DiscountAmount = money("24.01")
		input.TotalAmount = money("215.99")
		f.mustCreate(input)
	})

	t.Run("mismatch rejected", func(t *testing.T) {
		f := newFixture(t)
		input := cart(nil, line(latteID, enums.ProductSizeMedium, 2, "120.00"))
		input.PromoCode = &promo
		input.DiscountAmount = money("120.00")
		input.TotalAmount = money("120.00")
		_, err := f.svc.CreateOrder(context.Background(), input)
		require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInvalidDiscount))
	})

	t.Run("unknown promo rejected", func(t *testing.T) {
		f := newFixture(t)
		input := cart(nil, line(latteID, enums.ProductSizeMedium, 2, "120.00"))
		unknown := "FREEKAPE"
		input.PromoCode = &unknown
		input.DiscountAmount = money("24.00")
		_, err := f.svc.CreateOrder(context.Background(), input)
		require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInvalidDiscount))
	})
}

func TestPromoDiscountRounding(t *testing.T) {
	assert.True(t, PromoDiscount(money("333.33"), money("15")).Equal(money("50.00")))
	assert.True(t, PromoDiscount(money("99.99"), money("12.5")).Equal(money("12.50")))
}

func TestCreateOrderLoyaltyRedemption(t *testing.T) {
	f := newFixture(t)
	userID := customer()
	f.setBalance(*userID, 150, 0)

	input := cart(userID,
		line(latteID, enums.ProductSizeMedium, 1, "120.00"),
		line(espressoID, enums.ProductSizeSmall, 1, "90.00"),
		line(pastryID, enums.ProductSizeMedium, 1, "60.00"),
	)
	input.RedeemLoyalty = true
	res := f.mustCreate(input)

	assert.Equal(t, 27, res.PointsEarned)
	assert.Equal(t, 77, res.PointsBalance)
	assert.Equal(t, 100, res.LoyaltyPointsUsed)
	require.NotNil(t, res.FreeItem)
	assert.Equal(t, espressoID, res.FreeItem.ProductID)
	assert.True(t, res.FreeItem.UnitPrice.Equal(money("90")))

	profile := f.profile(*userID)
	assert.Equal(t, 77, profile.PointsBalance)
	assert.Equal(t, 100, profile.PointsUsedLifetime)
	assert.Contains(t, f.history(res.OrderID)[0].Note, "Redeemed 100 points")
}

func TestCreateOrderLoyaltyRejections(t *testing.T) {
	t.Run("balance below 100", func(t *testing.T) {
		f := newFixture(t)
		userID := customer()
		f.setBalance(*userID, 99, 0)
		input := cart(userID, line(latteID, enums.ProductSizeMedium, 1, "120.00"))
		input.RedeemLoyalty = true
		_, err := f.svc.CreateOrder(context.Background(), input)
		require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInsufficientLoyalty))
	})

	t.Run("no profile", func(t *testing.T) {
		f := newFixture(t)
		input := cart(customer(), line(latteID, enums.ProductSizeMedium, 1, "120.00"))
		input.RedeemLoyalty = true
		_, err := f.svc.CreateOrder(context.Background(), input)
		require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInsufficientLoyalty))
	})

	t.Run("no coffee item", func(t *testing.T) {
		f := newFixture(t)
		userID := customer()
		f.setBalance(*userID, 500, 0)
		input := cart(userID, line(pastryID, enums.ProductSizeMedium, 2, "60.00"))
		input.RedeemLoyalty = true
		_, err := f.svc.CreateOrder(context.Background(), input)
		require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
		assert.Equal(t, 500, f.profile(*userID).PointsBalance)
	})

	t.Run("guest", func(t *testing.T) {
		f := newFixture(t)
		input := cart(nil, line(latteID, enums.ProductSizeMedium, 1, "120.00"))
		input.RedeemLoyalty = true
		_, err := f.svc.CreateOrder(context.Background(), input)
		require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
	})
}

func TestCreateOrderFlagsLowStock(t *testing.T) {
	f := newFixture(t)
	res := f.mustCreate(cart(nil,
		line(latteID, enums.ProductSizeMedium, 3, "120.00"),
		line(latteID, enums.ProductSizeMedium, 2, "120.00"),
		line(pastryID, enums.ProductSizeMedium, 1, "60.00"),
	))
	assert.Equal(t, []int64{latteID}, res.LowStockProductIDs)
	assert.Equal(t, 5, f.stock(latteID, enums.ProductSizeMedium))
}

func TestCreateOrderAggregatesDemandAcrossLines(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.CreateOrder(context.Background(), cart(nil,
		line(latteID, enums.ProductSizeMedium, 6, "120.00"),
		line(latteID, enums.ProductSizeMedium, 5, "120.00"),
	))
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInsufficientStock))
	details := pkgerrors.As(err).Details().(map[string]any)
	assert.Equal(t, 11, details["requested"])
	assert.Equal(t, 10, details["available"])
}

type failingLedger struct {
	inventory.Ledger
}

func (l failingLedger) WithTx(tx *gorm.DB) inventory.Ledger {
	return failingLedger{Ledger: l.Ledger.WithTx(tx)}
}

func (l failingLedger) Reserve(context.Context, int64, enums.ProductSize, int) (int, error) {
	return 0, errors.New("disk I/O error")
}

func TestCreateOrderRollsBackWhenReservationFails(t *testing.T) {
	f := newFixture(t, func(p *ServiceParams) {
		p.Inventory = failingLedger{Ledger: p.Inventory}
	})
	userID := customer()
	f.setBalance(*userID, 40, 0)

	_, err := f.svc.CreateOrder(context.Background(), cart(userID, line(latteID, enums.ProductSizeMedium, 2, "120.00")))
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodePersistence, typed.Code())

	assert.Equal(t, int64(0), f.count("orders"))
	assert.Equal(t, int64(0), f.count("order_items"))
	assert.Equal(t, int64(0), f.count("order_history"))
	assert.Equal(t, 10, f.stock(latteID, enums.ProductSizeMedium))
	assert.Equal(t, 40, f.profile(*userID).PointsBalance)
}

func TestConcurrentOrdersNeverOversell(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.conn.Exec("UPDATE product_sizes SET stock_qty = 3 WHERE product_id = ? AND size = ?", latteID, enums.ProductSizeMedium).Error)

	var (
		wg        sync.WaitGroup
		succeeded int32
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.CreateOrder(context.Background(), cart(nil, line(latteID, enums.ProductSizeMedium, 1, "120.00")))
			if err == nil {
				atomic.AddInt32(&succeeded, 1)
				return
			}
			if !pkgerrors.HasCode(err, pkgerrors.CodeInsufficientStock) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(3), succeeded)
	assert.Equal(t, 0, f.stock(latteID, enums.ProductSizeMedium))
	assert.Equal(t, int64(3), f.count("orders"))
}

func TestCreateOrderEmitsOutboxEventWhenEnabled(t *testing.T) {
	f := newFixture(t, func(p *ServiceParams) {
		p.Outbox = outbox.NewService(outbox.NewRepository(nil), nil)
	})
	res := f.mustCreate(cart(customer(), line(latteID, enums.ProductSizeMedium, 1, "120.00")))

	var eventTypes []string
	require.NoError(t, f.conn.Table("outbox_events").Where("aggregate_id = ?", res.OrderID).Pluck("event_type", &eventTypes).Error)
	assert.Equal(t, []string{string(enums.EventOrderCreated)}, eventTypes)
}
