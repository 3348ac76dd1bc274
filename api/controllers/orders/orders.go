package orders

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/BanSimplified567/isladelcafe2025-sub000/api/middleware"
	"github.com/BanSimplified567/isladelcafe2025-sub000/api/responses"
	"github.com/BanSimplified567/isladelcafe2025-sub000/api/validators"
	internalorders "github.com/BanSimplified567/isladelcafe2025-sub000/internal/orders"
	"github.com/BanSimplified567/isladelcafe2025-sub000/pkg/db/models"
	"github.com/BanSimplified567/isladelcafe2025-sub000/pkg/enums"
	pkgerrors "github.com/BanSimplified567/isladelcafe2025-sub000/pkg/errors"
	"github.com/BanSimplified567/isladelcafe2025-sub000/pkg/logger"
	"github.com/BanSimplified567/isladelcafe2025-sub000/pkg/pagination"
)

// endpoint answers with a status and body, or an error rendered by WriteError.
type endpoint func(r *http.Request, svc internalorders.Service) (int, any, error)

func serve(svc internalorders.Service, logg *logger.Logger, ep endpoint) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}
		status, body, err := ep(r, svc)
		switch {
		case err != nil:
			responses.WriteError(r.Context(), logg, w, err)
		case status == http.StatusNoContent:
			responses.WriteNoContent(w)
		default:
			responses.WriteSuccessStatus(w, status, body)
		}
	}
}

// Create places an order. Only a customer token makes the order theirs;
// guests and staff create walk-in orders.
func Create(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return serve(svc, logg, func(r *http.Request, svc internalorders.Service) (int, any, error) {
		var body createOrderRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			return 0, nil, err
		}
		ctx := r.Context()
		result, err := svc.CreateOrder(ctx, body.toInput(middleware.CurrentUserID(ctx), middleware.RoleFromContext(ctx)))
		return http.StatusCreated, result, err
	})
}

// Get returns one order. Customers only see their own.
func Get(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return serve(svc, logg, func(r *http.Request, svc internalorders.Service) (int, any, error) {
		order, err := visibleOrder(r, svc)
		if err != nil {
			return 0, nil, err
		}
		return http.StatusOK, toOrderResponse(order), nil
	})
}

// History returns the status trail newest first.
func History(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return serve(svc, logg, func(r *http.Request, svc internalorders.Service) (int, any, error) {
		order, err := visibleOrder(r, svc)
		if err != nil {
			return 0, nil, err
		}
		entries, err := svc.GetOrderHistory(r.Context(), order.ID)
		if err != nil {
			return 0, nil, err
		}
		return http.StatusOK, toHistoryResponse(entries), nil
	})
}

// List pages through every order, optionally filtered by q.
func List(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return serve(svc, logg, func(r *http.Request, svc internalorders.Service) (int, any, error) {
		page, err := validators.ParseQueryInt(r, "page", 1, 1, 1_000_000)
		if err != nil {
			return 0, nil, err
		}
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			return 0, nil, err
		}
		list, err := svc.ListOrders(r.Context(), internalorders.ListOrdersInput{
			Page:   page,
			Limit:  limit,
			Search: strings.TrimSpace(r.URL.Query().Get("q")),
		})
		if err != nil {
			return 0, nil, err
		}
		return http.StatusOK, toOrderListResponse(list), nil
	})
}

// UpdateStatus moves an order along the fulfillment state machine.
func UpdateStatus(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return serve(svc, logg, func(r *http.Request, svc internalorders.Service) (int, any, error) {
		orderID, err := validators.ParseUUIDParam(r, "orderId")
		if err != nil {
			return 0, nil, err
		}
		var body updateStatusRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			return 0, nil, err
		}
		status, err := enums.ParseOrderStatus(strings.TrimSpace(body.Status))
		if err != nil {
			return 0, nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status").
				WithDetails(map[string]any{"field": "status"})
		}
		order, err := svc.UpdateOrderStatus(r.Context(), internalorders.UpdateStatusInput{
			OrderID: orderID,
			Status:  status,
			Note:    body.Note,
			ActorID: middleware.CurrentUserID(r.Context()),
		})
		if err != nil {
			return 0, nil, err
		}
		return http.StatusOK, toOrderResponse(order), nil
	})
}

// Delete removes an order that is no longer in flight.
func Delete(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return serve(svc, logg, func(r *http.Request, svc internalorders.Service) (int, any, error) {
		orderID, err := validators.ParseUUIDParam(r, "orderId")
		if err != nil {
			return 0, nil, err
		}
		err = svc.DeleteOrder(r.Context(), internalorders.DeleteOrderInput{
			OrderID: orderID,
			ActorID: middleware.CurrentUserID(r.Context()),
		})
		return http.StatusNoContent, nil, err
	})
}

// Sweep promotes expired Pending orders on demand.
func Sweep(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return serve(svc, logg, func(r *http.Request, svc internalorders.Service) (int, any, error) {
		result, err := svc.SweepExpiredPendingOrders(r.Context())
		return http.StatusOK, result, err
	})
}

// visibleOrder hides other customers' orders behind NOT_FOUND.
func visibleOrder(r *http.Request, svc internalorders.Service) (*models.Order, error) {
	orderID, err := validators.ParseUUIDParam(r, "orderId")
	if err != nil {
		return nil, err
	}
	order, err := svc.GetOrder(r.Context(), orderID)
	if err != nil {
		return nil, err
	}
	if !canView(r, order) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return order, nil
}

func canView(r *http.Request, order *models.Order) bool {
	if middleware.RoleFromContext(r.Context()).IsStaff() {
		return true
	}
	userID := middleware.CurrentUserID(r.Context())
	if userID == nil || *userID == uuid.Nil || order.CustomerID == nil {
		return false
	}
	return *order.CustomerID == *userID
}
