package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/YelzhanWeb/plates/internal/adapter/logger"
	"github.com/YelzhanWeb/plates/internal/domain"
	"github.com/YelzhanWeb/plates/internal/interfaces"
)

type OrderHandler struct {
	service interfaces.OrderService
	logger  logger.Logger
}

func NewOrderHandler(service interfaces.OrderService, logger logger.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger,
	}
}

func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if msg, errs := decodeAndValidate(w, r, &req); errs != nil {
		h.logger.Debug("validation_failed", "Order validation failed", "", map[string]interface{}{
			"errors": errs,
		})
		respondError(w, msg, http.StatusBadRequest, errs)
		return
	}

	order, err := h.service.CreateOrder(r.Context(), req.command())
	if err != nil {
		respondServiceError(w, r, h.logger, "order_creation_failed", err)
		return
	}

	respondJSON(w, http.StatusOK, toOrderResponse(order))
}

func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	var filter interfaces.OrderFilter
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, err := domain.ParseOrderStatus(raw)
		if err != nil {
			respondError(w, "Invalid status filter", http.StatusBadRequest,
				[]ValidationError{{Field: "status", Message: "must be one of: pending, confirmed, preparing, delivered"}})
			return
		}
		filter.Status = &status
	}

	orders, err := h.service.ListOrders(r.Context(), filter)
	if err != nil {
		respondServiceError(w, r, h.logger, "order_list_failed", err)
		return
	}
	respondJSON(w, http.StatusOK, toOrderResponses(orders))
}

func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}

	result, err := h.service.GetOrder(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, h.logger, "order_lookup_failed", err)
		return
	}

	respondJSON(w, http.StatusOK, OrderWithPlateResponse{
		OrderResponse: toOrderResponse(&result.Order),
		Plate:         toPlateResponse(result.Plate),
	})
}

func (h *OrderHandler) GetOrderHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}

	history, err := h.service.GetHistory(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, h.logger, "order_history_failed", err)
		return
	}
	respondJSON(w, http.StatusOK, toStatusLogResponses(history))
}

func (h *OrderHandler) GetOrderStats(w http.ResponseWriter, r *http.Request) {
	counts, err := h.service.GetStats(r.Context())
	if err != nil {
		respondServiceError(w, r, h.logger, "order_stats_failed", err)
		return
	}

	resp := make(map[string]int, len(domain.OrderStatuses))
	for _, status := range domain.OrderStatuses {
		resp[string(status)] = counts[status]
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *OrderHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if msg, errs := decodeAndValidate(w, r, &req); errs != nil {
		respondError(w, msg, http.StatusBadRequest, errs)
		return
	}

	order, err := h.service.UpdateStatus(r.Context(), id, req.Status, req.ChangedBy)
	if err != nil {
		respondServiceError(w, r, h.logger, "status_update_failed", err)
		return
	}
	respondJSON(w, http.StatusOK, toOrderResponse(order))
}

func (h *OrderHandler) orderID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := pathID(chi.URLParam(r, "id"))
	if !ok {
		respondError(w, "Invalid order id", http.StatusBadRequest,
			[]ValidationError{{Field: "id", Message: "must be a positive integer"}})
	}
	return id, ok
}
