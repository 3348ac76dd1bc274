// Package dbtest builds throwaway sqlite databases carrying the order engine schema.
package dbtest

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/BanSimplified567/isladelcafe2025-sub000/pkg/db"
)

var schema = []string{
	`CREATE TABLE products (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT '',
		is_coffee BOOLEAN,
		is_active BOOLEAN NOT NULL DEFAULT 1,
		low_stock_threshold INTEGER NOT NULL DEFAULT 5,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE product_sizes (
		product_id INTEGER NOT NULL REFERENCES products(id) ON DELETE CASCADE,
		size TEXT NOT NULL,
		price NUMERIC NOT NULL,
		stock_qty INTEGER NOT NULL DEFAULT 0 CHECK (stock_qty >= 0),
		PRIMARY KEY (product_id, size)
	)`,
	`CREATE TABLE customer_profiles (
		user_id TEXT PRIMARY KEY,
		points_balance INTEGER NOT NULL DEFAULT 0 CHECK (points_balance >= 0),
		points_used_lifetime INTEGER NOT NULL DEFAULT 0 CHECK (points_used_lifetime >= 0),
		updated_at DATETIME
	)`,
	`CREATE TABLE promo_codes (
		code TEXT PRIMARY KEY,
		discount_percent NUMERIC NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT 1
	)`,
	`CREATE TABLE orders (
		id TEXT PRIMARY KEY,
		customer_id TEXT,
		order_number TEXT NOT NULL,
		total_amount NUMERIC NOT NULL,
		discount_amount NUMERIC NOT NULL DEFAULT 0,
		promo_code TEXT,
		payment_method TEXT NOT NULL,
		payment_reference TEXT,
		delivery_name TEXT NOT NULL,
		delivery_phone TEXT NOT NULL,
		delivery_email TEXT NOT NULL,
		delivery_address TEXT NOT NULL,
		delivery_city TEXT NOT NULL,
		delivery_zipcode TEXT NOT NULL,
		loyalty_points_used INTEGER NOT NULL DEFAULT 0 CHECK (loyalty_points_used IN (0, 100)),
		status TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		CONSTRAINT orders_order_number_key UNIQUE (order_number)
	)`,
	`CREATE TABLE order_items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		order_id TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		product_id INTEGER NOT NULL,
		size TEXT NOT NULL,
		quantity INTEGER NOT NULL CHECK (quantity > 0),
		unit_price NUMERIC NOT NULL
	)`,
	`CREATE TABLE order_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		order_id TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		status TEXT NOT NULL,
		note TEXT NOT NULL DEFAULT '',
		actor_id TEXT,
		created_at DATETIME NOT NULL
	)`,
	`CREATE TABLE outbox_events (
		id TEXT PRIMARY KEY,
		event_type TEXT NOT NULL,
		aggregate_type TEXT NOT NULL,
		aggregate_id TEXT NOT NULL,
		payload BLOB NOT NULL,
		created_at DATETIME,
		published_at DATETIME,
		attempt_count INTEGER NOT NULL DEFAULT 0,
		last_error TEXT
	)`,
}

// New opens a private in-memory database, applies the schema and returns a client.
func New(t testing.TB) *db.Client {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), db.GormConfig())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	for _, stmt := range schema {
		if err := conn.Exec(stmt).Error; err != nil {
			t.Fatalf("apply schema: %v", err)
		}
	}
	return db.Wrap(conn)
}
