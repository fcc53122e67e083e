package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/linemk/agro-shop/internal/domain/models"
	"github.com/linemk/agro-shop/internal/jwt/jwtmiddleware"
	"github.com/linemk/agro-shop/internal/service"
)

// OrderRequest — тело запроса на оформление заказа
type OrderRequest struct {
	ShippingAddress string `json:"shippingAddress"`
}

// orderCreatedResponse — ответ при успешном оформлении заказа
func orderCreatedResponse(order *models.Order) map[string]any {
	return map[string]any{
		"message":     "Order placed successfully",
		"orderId":     order.ID,
		"totalAmount": order.TotalAmount,
		"status":      order.Status,
	}
}

// CreateOrderHandler обрабатывает запрос POST /api/orders — заказ из корзины
func CreateOrderHandler(log *slog.Logger, orderService service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CreateOrderHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			logger.Error("userID not found in context")
			writeJSON(logger, w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
			return
		}

		var req OrderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			writeJSON(logger, w, http.StatusBadRequest, errorResponse{Error: "invalid request"})
			return
		}

		order, err := orderService.CreateFromCart(r.Context(), userID, req.ShippingAddress)
		if err != nil {
			logger.Error("failed to create order", slog.Any("error", err))
			writeError(logger, w, err)
			return
		}
		writeJSON(logger, w, http.StatusOK, orderCreatedResponse(order))
	}
}

// BuyNowHandler обрабатывает запрос POST /api/orders/buy-now?productId=&quantity=
// Оформляет заказ на один товар, корзина не затрагивается.
func BuyNowHandler(log *slog.Logger, orderService service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.BuyNowHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			logger.Error("userID not found in context")
			writeJSON(logger, w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
			return
		}

		productID, err := strconv.ParseInt(r.URL.Query().Get("productId"), 10, 64)
		if err != nil {
			writeJSON(logger, w, http.StatusBadRequest, errorResponse{Error: "invalid productId parameter"})
			return
		}
		quantity, err := strconv.Atoi(r.URL.Query().Get("quantity"))
		if err != nil {
			writeJSON(logger, w, http.StatusBadRequest, errorResponse{Error: "invalid quantity parameter"})
			return
		}

		var req OrderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			writeJSON(logger, w, http.StatusBadRequest, errorResponse{Error: "invalid request"})
			return
		}

		order, err := orderService.BuyNow(r.Context(), userID, productID, quantity, req.ShippingAddress)
		if err != nil {
			logger.Error("failed to create order", slog.Any("error", err))
			writeError(logger, w, err)
			return
		}
		writeJSON(logger, w, http.StatusOK, orderCreatedResponse(order))
	}
}

// ListOrdersHandler обрабатывает запрос GET /api/orders — заказы текущего пользователя
func ListOrdersHandler(log *slog.Logger, orderService service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ListOrdersHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			logger.Error("userID not found in context")
			writeJSON(logger, w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
			return
		}

		orders, err := orderService.ListByUser(r.Context(), userID)
		if err != nil {
			logger.Error("failed to list orders", slog.Any("error", err))
			writeError(logger, w, err)
			return
		}
		writeJSON(logger, w, http.StatusOK, orders)
	}
}

// GetOrderHandler обрабатывает запрос GET /api/orders/{id}
func GetOrderHandler(log *slog.Logger, orderService service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.GetOrderHandler"
		logger := log.With(slog.String("op", op))

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			writeJSON(logger, w, http.StatusBadRequest, errorResponse{Error: "invalid order id"})
			return
		}

		order, err := orderService.GetByID(r.Context(), id)
		if err != nil {
			writeError(logger, w, err)
			return
		}
		writeJSON(logger, w, http.StatusOK, order)
	}
}

// AllOrdersHandler обрабатывает запрос GET /api/orders/admin/all (только администратор)
func AllOrdersHandler(log *slog.Logger, orderService service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.AllOrdersHandler"
		logger := log.With(slog.String("op", op))

		orders, err := orderService.ListAll(r.Context())
		if err != nil {
			logger.Error("failed to list orders", slog.Any("error", err))
			writeError(logger, w, err)
			return
		}
		writeJSON(logger, w, http.StatusOK, orders)
	}
}

// UpdateOrderStatusHandler обрабатывает запрос PUT /api/orders/{id}/status?status= (только администратор).
// Переход между статусами не ограничен.
func UpdateOrderStatusHandler(log *slog.Logger, orderService service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.UpdateOrderStatusHandler"
		logger := log.With(slog.String("op", op))

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			writeJSON(logger, w, http.StatusBadRequest, errorResponse{Error: "invalid order id"})
			return
		}

		status, err := models.ParseOrderStatus(r.URL.Query().Get("status"))
		if err != nil {
			writeJSON(logger, w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}

		order, err := orderService.UpdateStatus(r.Context(), id, status)
		if err != nil {
			logger.Error("failed to update order status", slog.Any("error", err))
			writeError(logger, w, err)
			return
		}
		writeJSON(logger, w, http.StatusOK, order)
	}
}
