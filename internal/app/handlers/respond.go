package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/linemk/agro-shop/internal/service"
	"github.com/linemk/agro-shop/internal/storage"
)

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON сериализует ответ. Ошибка кодирования после записи заголовка
// уже не может поменять статус, поэтому только логируется.
func writeJSON(log *slog.Logger, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("failed to encode response", slog.Any("error", err))
	}
}

// writeError переводит ошибки бизнес-логики в HTTP-статусы:
// ошибки валидации — 400, отсутствие сущности — 404, остальное — 500.
// Клиенту уходит только чистое сообщение, без цепочки обёрток.
func writeError(log *slog.Logger, w http.ResponseWriter, err error) {
	var stockErr *service.StockError
	if errors.As(err, &stockErr) {
		writeJSON(log, w, http.StatusBadRequest, errorResponse{Error: stockErr.Error()})
		return
	}

	for _, sentinel := range []error{
		service.ErrInvalidQuantity,
		service.ErrInsufficientStock,
		service.ErrBlankAddress,
		service.ErrEmptyCart,
		storage.ErrUserExists,
	} {
		if errors.Is(err, sentinel) {
			writeJSON(log, w, http.StatusBadRequest, errorResponse{Error: sentinel.Error()})
			return
		}
	}

	for _, sentinel := range []error{
		storage.ErrUserNotFound,
		storage.ErrProductNotFound,
		storage.ErrCategoryNotFound,
		storage.ErrCartNotFound,
		storage.ErrCartItemNotFound,
		storage.ErrOrderNotFound,
	} {
		if errors.Is(err, sentinel) {
			writeJSON(log, w, http.StatusNotFound, errorResponse{Error: sentinel.Error()})
			return
		}
	}

	log.Error("internal error", slog.Any("error", err))
	writeJSON(log, w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
}
