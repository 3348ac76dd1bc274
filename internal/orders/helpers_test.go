package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/BanSimplified567/isladelcafe2025-sub000/internal/catalog"
	"github.com/BanSimplified567/isladelcafe2025-sub000/internal/history"
	"github.com/BanSimplified567/isladelcafe2025-sub000/internal/inventory"
	"github.com/BanSimplified567/isladelcafe2025-sub000/internal/loyalty"
	"github.com/BanSimplified567/isladelcafe2025-sub000/pkg/db"
	"github.com/BanSimplified567/isladelcafe2025-sub000/pkg/db/dbtest"
	"github.com/BanSimplified567/isladelcafe2025-sub000/pkg/db/models"
	"github.com/BanSimplified567/isladelcafe2025-sub000/pkg/enums"
)

const (
	latteID    int64 = 7
	pastryID   int64 = 8
	espressoID int64 = 9
	retiredID  int64 = 10
	testCity         = "Cebu City"
)

type fixture struct {
	t      *testing.T
	client *db.Client
	conn   *gorm.DB
	svc    Service
	clock  *testClock
	params ServiceParams
}

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type fixtureOption func(*ServiceParams)

func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()
	client := dbtest.New(t)
	conn := client.DB()
	clock := &testClock{now: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}

	params := ServiceParams{
		Repository:     NewRepository(conn),
		Catalog:        catalog.NewRepository(conn),
		Inventory:      inventory.NewLedger(conn),
		Loyalty:        loyalty.NewLedger(conn),
		History:        history.NewTrail(conn),
		TxRunner:       client,
		ServiceCity:    testCity,
		PendingTimeout: 30 * time.Minute,
		Now:            clock.Now,
	}
	for _, opt := range opts {
		opt(&params)
	}
	svc, err := NewService(params)
	require.NoError(t, err)

	f := &fixture{t: t, client: client, conn: conn, svc: svc, clock: clock, params: params}
	f.seedCatalog()
	return f
}

func (f *fixture) seedCatalog() {
	f.t.Helper()
	yes := true
	products := []models.Product{
		{ID: latteID, Name: "Cafe Latte", Category: "Hot Drinks", IsActive: true, LowStockThreshold: 5},
		{ID: pastryID, Name: "Ensaymada", Category: "Pastries", IsActive: true, LowStockThreshold: 3},
		{ID: espressoID, Name: "Barako Shot", Category: "Specials", IsCoffee: &yes, IsActive: true, LowStockThreshold: 2},
		{ID: retiredID, Name: "Seasonal Mocha", Category: "Coffee", IsActive: true, LowStockThreshold: 1},
	}
	require.NoError(f.t, f.conn.Create(&products).Error)
	require.NoError(f.t, f.conn.Exec("UPDATE products SET is_active = 0 WHERE id = ?", retiredID).Error)

	sizes := []models.ProductSize{
		{ProductID: latteID, Size: enums.ProductSizeSmall, Price: money("100.00"), StockQty: 10},
		{ProductID: latteID, Size: enums.ProductSizeMedium, Price: money("120.00"), StockQty: 10},
		{ProductID: pastryID, Size: enums.ProductSizeMedium, Price: money("60.00"), StockQty: 20},
		{ProductID: espressoID, Size: enums.ProductSizeSmall, Price: money("90.00"), StockQty: 10},
		{ProductID: retiredID, Size: enums.ProductSizeMedium, Price: money("150.00"), StockQty: 10},
	}
	require.NoError(f.t, f.conn.Create(&sizes).Error)
	require.NoError(f.t, f.conn.Create(&models.PromoCode{Code: "KAPE10", DiscountPercent: decimal.NewFromInt(10), IsActive: true}).Error)
}

func (f *fixture) setBalance(userID uuid.UUID, balance, used int) {
	f.t.Helper()
	require.NoError(f.t, loyalty.NewLedger(f.conn).EnsureProfile(context.Background(), userID))
	require.NoError(f.t, f.conn.Exec(
		"UPDATE customer_profiles SET points_balance = ?, points_used_lifetime = ? WHERE user_id = ?",
		balance, used, userID,
	).Error)
}

func (f *fixture) profile(userID uuid.UUID) *models.CustomerProfile {
	f.t.Helper()
	p, err := loyalty.NewLedger(f.conn).FindProfile(context.Background(), userID)
	require.NoError(f.t, err)
	return p
}

func (f *fixture) stock(productID int64, size enums.ProductSize) int {
	f.t.Helper()
	qty, err := inventory.NewLedger(f.conn).Available(context.Background(), productID, size)
	require.NoError(f.t, err)
	return qty
}

func (f *fixture) count(table string) int64 {
	f.t.Helper()
	var n int64
	require.NoError(f.t, f.conn.Table(table).Count(&n).Error)
	return n
}

func (f *fixture) forceStatus(orderID uuid.UUID, status enums.OrderStatus) {
	f.t.Helper()
	require.NoError(f.t, f.conn.Exec("UPDATE orders SET status = ? WHERE id = ?", status, orderID).Error)
}

func (f *fixture) history(orderID uuid.UUID) []models.OrderHistoryEntry {
	f.t.Helper()
	entries, err := history.NewTrail(f.conn).ListByOrder(context.Background(), orderID)
	require.NoError(f.t, err)
	return entries
}

func (f *fixture) mustCreate(input CreateOrderInput) *CreateOrderResult {
	f.t.Helper()
	res, err := f.svc.CreateOrder(context.Background(), input)
	require.NoError(f.t, err)
	return res
}

func money(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func cart(customerID *uuid.UUID, items ...LineItemInput) CreateOrderInput {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return CreateOrderInput{
		CustomerID:    customerID,
		ActorID:       customerID,
		OrderNumber:   "IDC-" + uuid.NewString()[:8],
		TotalAmount:   total,
		PaymentMethod: enums.PaymentMethodPickup,
		Delivery: DeliveryInput{
			Name:    "Maria Santos",
			Phone:   "09171234567",
			Email:   "maria@example.com",
			Address: "88 Mango Ave",
			City:    testCity,
			Zipcode: "6000",
		},
		Items: items,
	}
}

func line(productID int64, size enums.ProductSize, qty int, price string) LineItemInput {
	return LineItemInput{ProductID: productID, Size: size, Quantity: qty, UnitPrice: money(price)}
}

func customer() *uuid.UUID {
	id := uuid.New()
	return &id
}
