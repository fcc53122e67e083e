package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/linemk/agro-shop/internal/jwt/jwtmiddleware"
	"github.com/linemk/agro-shop/internal/service"
)

// GetCartHandler обрабатывает запрос GET /api/cart.
// Корзина создаётся лениво при первом обращении.
func GetCartHandler(log *slog.Logger, cartService service.CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.GetCartHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			logger.Error("userID not found in context")
			writeJSON(logger, w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
			return
		}

		cart, err := cartService.GetCart(r.Context(), userID)
		if err != nil {
			logger.Error("failed to get cart", slog.Any("error", err))
			writeError(logger, w, err)
			return
		}
		writeJSON(logger, w, http.StatusOK, cart)
	}
}

// AddCartItemHandler обрабатывает запрос POST /api/cart/add?productId=&quantity=
func AddCartItemHandler(log *slog.Logger, cartService service.CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.AddCartItemHandler"
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

		item, err := cartService.AddItem(r.Context(), userID, productID, quantity)
		if err != nil {
			logger.Error("failed to add item to cart", slog.Any("error", err))
			writeError(logger, w, err)
			return
		}
		writeJSON(logger, w, http.StatusOK, item)
	}
}

// UpdateCartItemHandler обрабатывает запрос PUT /api/cart/item/{itemId}?quantity=
func UpdateCartItemHandler(log *slog.Logger, cartService service.CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.UpdateCartItemHandler"
		logger := log.With(slog.String("op", op))

		itemID, err := strconv.ParseInt(chi.URLParam(r, "itemId"), 10, 64)
		if err != nil {
			writeJSON(logger, w, http.StatusBadRequest, errorResponse{Error: "invalid item id"})
			return
		}
		quantity, err := strconv.Atoi(r.URL.Query().Get("quantity"))
		if err != nil {
			writeJSON(logger, w, http.StatusBadRequest, errorResponse{Error: "invalid quantity parameter"})
			return
		}

		if err := cartService.UpdateItemQuantity(r.Context(), itemID, quantity); err != nil {
			logger.Error("failed to update cart item", slog.Any("error", err))
			writeError(logger, w, err)
			return
		}
		writeJSON(logger, w, http.StatusOK, map[string]string{"message": "Cart item updated"})
	}
}

// RemoveCartItemHandler обрабатывает запрос DELETE /api/cart/item/{itemId}
func RemoveCartItemHandler(log *slog.Logger, cartService service.CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.RemoveCartItemHandler"
		logger := log.With(slog.String("op", op))

		itemID, err := strconv.ParseInt(chi.URLParam(r, "itemId"), 10, 64)
		if err != nil {
			writeJSON(logger, w, http.StatusBadRequest, errorResponse{Error: "invalid item id"})
			return
		}

		if err := cartService.RemoveItem(r.Context(), itemID); err != nil {
			logger.Error("failed to remove cart item", slog.Any("error", err))
			writeError(logger, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
