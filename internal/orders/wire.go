package orders

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/BanSimplified567/isladelcafe2025-sub000/internal/catalog"
	"github.com/BanSimplified567/isladelcafe2025-sub000/internal/history"
	"github.com/BanSimplified567/isladelcafe2025-sub000/internal/inventory"
	"github.com/BanSimplified567/isladelcafe2025-sub000/internal/loyalty"
	"github.com/BanSimplified567/isladelcafe2025-sub000/pkg/config"
	dbpkg "github.com/BanSimplified567/isladelcafe2025-sub000/pkg/db"
	"github.com/BanSimplified567/isladelcafe2025-sub000/pkg/logger"
	"github.com/BanSimplified567/isladelcafe2025-sub000/pkg/metrics"
	"github.com/BanSimplified567/isladelcafe2025-sub000/pkg/outbox"
)

// NewFromConfig assembles the order engine over a single database. Events are
// only written to the outbox when the order_events flag is on.
func NewFromConfig(cfg *config.Config, conn *dbpkg.Client, logg *logger.Logger, reg prometheus.Registerer) (Service, error) {
	gdb := conn.DB()
	params := ServiceParams{
		Repository:     NewRepository(gdb),
		Catalog:        catalog.NewRepository(gdb),
		Inventory:      inventory.NewLedger(gdb),
		Loyalty:        loyalty.NewLedger(gdb),
		History:        history.NewTrail(gdb),
		TxRunner:       conn,
		Logger:         logg,
		Metrics:        metrics.NewOrderMetrics(reg),
		ServiceCity:    cfg.Orders.ServiceCity,
		PendingTimeout: cfg.Orders.PendingTimeout,
	}
	if cfg.FeatureFlags.OrderEvents {
		params.Outbox = outbox.NewService(outbox.NewRepository(gdb), logg)
	}
	return NewService(params)
}
