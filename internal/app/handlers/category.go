package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/linemk/agro-shop/internal/domain/models"
	"github.com/linemk/agro-shop/internal/service"
)

// ListCategoriesHandler обрабатывает запрос GET /api/admin/categories
func ListCategoriesHandler(log *slog.Logger, categories service.CategoryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ListCategoriesHandler"
		logger := log.With(slog.String("op", op))

		list, err := categories.List(r.Context())
		if err != nil {
			logger.Error("failed to list categories", slog.Any("error", err))
			writeError(logger, w, err)
			return
		}
		writeJSON(logger, w, http.StatusOK, list)
	}
}

// CreateCategoryHandler обрабатывает запрос POST /api/admin/categories
func CreateCategoryHandler(log *slog.Logger, categories service.CategoryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CreateCategoryHandler"
		logger := log.With(slog.String("op", op))

		var category models.Category
		if err := json.NewDecoder(r.Body).Decode(&category); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			writeJSON(logger, w, http.StatusBadRequest, errorResponse{Error: "invalid request"})
			return
		}
		if category.Name == "" {
			writeJSON(logger, w, http.StatusBadRequest, errorResponse{Error: "category name is required"})
			return
		}

		created, err := categories.Create(r.Context(), &category)
		if err != nil {
			logger.Error("failed to create category", slog.Any("error", err))
			writeError(logger, w, err)
			return
		}
		writeJSON(logger, w, http.StatusOK, created)
	}
}

// UpdateCategoryHandler обрабатывает запрос PUT /api/admin/categories/{id}
func UpdateCategoryHandler(log *slog.Logger, categories service.CategoryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.UpdateCategoryHandler"
		logger := log.With(slog.String("op", op))

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			writeJSON(logger, w, http.StatusBadRequest, errorResponse{Error: "invalid category id"})
			return
		}

		var category models.Category
		if err := json.NewDecoder(r.Body).Decode(&category); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			writeJSON(logger, w, http.StatusBadRequest, errorResponse{Error: "invalid request"})
			return
		}
		category.ID = id

		if err := categories.Update(r.Context(), &category); err != nil {
			logger.Error("failed to update category", slog.Any("error", err))
			writeError(logger, w, err)
			return
		}
		writeJSON(logger, w, http.StatusOK, category)
	}
}

// DeleteCategoryHandler обрабатывает запрос DELETE /api/admin/categories/{id}
func DeleteCategoryHandler(log *slog.Logger, categories service.CategoryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.DeleteCategoryHandler"
		logger := log.With(slog.String("op", op))

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			writeJSON(logger, w, http.StatusBadRequest, errorResponse{Error: "invalid category id"})
			return
		}

		if err := categories.Delete(r.Context(), id); err != nil {
			logger.Error("failed to delete category", slog.Any("error", err))
			writeError(logger, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
