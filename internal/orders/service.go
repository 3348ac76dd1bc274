package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/BanSimplified567/isladelcafe2025-sub000/internal/catalog"
	"github.com/BanSimplified567/isladelcafe2025-sub000/internal/history"
	"github.com/BanSimplified567/isladelcafe2025-sub000/internal/inventory"
	"github.com/BanSimplified567/isladelcafe2025-sub000/internal/loyalty"
	"github.com/BanSimplified567/isladelcafe2025-sub000/pkg/db/models"
	"github.com/BanSimplified567/isladelcafe2025-sub000/pkg/enums"
	pkgerrors "github.com/BanSimplified567/isladelcafe2025-sub000/pkg/errors"
	"github.com/BanSimplified567/isladelcafe2025-sub000/pkg/logger"
	"github.com/BanSimplified567/isladelcafe2025-sub000/pkg/metrics"
	"github.com/BanSimplified567/isladelcafe2025-sub000/pkg/outbox"
	"github.com/BanSimplified567/isladelcafe2025-sub000/pkg/pagination"
)

const (
	defaultServiceCity    = "Cebu City"
	defaultPendingTimeout = 30 * time.Minute
)

// ServiceParams wires the engine. Outbox is optional; when nil no domain events
// are written and each operation performs only its ledger and store writes.
type ServiceParams struct {
	Repository     Repository
	Catalog        catalog.Repository
	Inventory      inventory.Ledger
	Loyalty        loyalty.Ledger
	History        history.Trail
	TxRunner       txRunner
	Outbox         outboxPublisher
	Logger         *logger.Logger
	Metrics        *metrics.OrderMetrics
	ServiceCity    string
	PendingTimeout time.Duration
	Now            func() time.Time
}

type service struct {
	repo           Repository
	catalog        catalog.Repository
	inventory      inventory.Ledger
	loyalty        loyalty.Ledger
	history        history.Trail
	tx             txRunner
	outbox         outboxPublisher
	logg           *logger.Logger
	metrics        *metrics.OrderMetrics
	serviceCity    string
	pendingTimeout time.Duration
	now            func() time.Time
}

// NewService builds the order engine with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repository == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Catalog == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if params.Inventory == nil {
		return nil, fmt.Errorf("inventory ledger required")
	}
	if params.Loyalty == nil {
		return nil, fmt.Errorf("loyalty ledger required")
	}
	if params.History == nil {
		return nil, fmt.Errorf("history trail required")
	}
	if params.TxRunner == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	city := strings.TrimSpace(params.ServiceCity)
	if city == "" {
		city = defaultServiceCity
	}
	timeout := params.PendingTimeout
	if timeout <= 0 {
		timeout = defaultPendingTimeout
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:           params.Repository,
		catalog:        params.Catalog,
		inventory:      params.Inventory,
		loyalty:        params.Loyalty,
		history:        params.History,
		tx:             params.TxRunner,
		outbox:         params.Outbox,
		logg:           logg,
		metrics:        params.Metrics,
		serviceCity:    city,
		pendingTimeout: timeout,
		now:            now,
	}, nil
}

func (s *service) GetOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.EnsureTyped(err, pkgerrors.CodePersistence, "load order")
	}
	return order, nil
}

func (s *service) ListOrders(ctx context.Context, input ListOrdersInput) (*OrderList, error) {
	params := pagination.Params{Page: input.Page, Limit: input.Limit}.Normalize()
	orders, total, err := s.repo.List(ctx, params.Offset(), params.Limit, input.Search)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "list orders")
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return &OrderList{
		Orders:     orders,
		TotalCount: total,
		Page:       params.Page,
		Limit:      params.Limit,
		TotalPages: pagination.TotalPages(total, params.Limit),
	}, nil
}

// GetOrderHistory returns the trail newest first.
func (s *service) GetOrderHistory(ctx context.Context, orderID uuid.UUID) ([]models.OrderHistoryEntry, error) {
	if _, err := s.GetOrder(ctx, orderID); err != nil {
		return nil, err
	}
	entries, err := s.history.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "load order history")
	}
	if entries == nil {
		entries = []models.OrderHistoryEntry{}
	}
	return entries, nil
}

func (s *service) emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	if s.outbox == nil {
		return nil
	}
	event.AggregateType = enums.AggregateOrder
	return s.outbox.Emit(ctx, tx, event)
}

// reject records the rejection code and returns err unchanged.
func (s *service) reject(err error) error {
	if typed := pkgerrors.As(err); typed != nil {
		s.metrics.IncRejection(string(typed.Code()))
	}
	return err
}

func actorRef(actorID *uuid.UUID) *outbox.ActorRef {
	if actorID == nil {
		return nil
	}
	return &outbox.ActorRef{UserID: *actorID}
}

func (s *service) nowUTC() time.Time {
	return s.now().UTC()
}
