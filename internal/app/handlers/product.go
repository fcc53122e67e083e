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

// maxUploadSize — предел размера загружаемого изображения (10 МБ)
const maxUploadSize = 10 << 20

// ListProductsHandler обрабатывает запрос GET /api/products с параметрами
// page, size, categoryId, search, sortBy. Нераспознанные значения игнорируются.
func ListProductsHandler(log *slog.Logger, catalog service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ListProductsHandler"
		logger := log.With(slog.String("op", op))

		q := r.URL.Query()
		params := service.ListParams{
			Search: q.Get("search"),
			SortBy: q.Get("sortBy"),
		}
		if page, err := strconv.Atoi(q.Get("page")); err == nil {
			params.Page = page
		}
		if size, err := strconv.Atoi(q.Get("size")); err == nil {
			params.Size = size
		}
		if categoryID, err := strconv.ParseInt(q.Get("categoryId"), 10, 64); err == nil {
			params.CategoryID = &categoryID
		}

		page, err := catalog.List(r.Context(), params)
		if err != nil {
			logger.Error("failed to list products", slog.Any("error", err))
			writeError(logger, w, err)
			return
		}
		writeJSON(logger, w, http.StatusOK, page)
	}
}

// GetProductHandler обрабатывает запрос GET /api/products/{id}
func GetProductHandler(log *slog.Logger, catalog service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.GetProductHandler"
		logger := log.With(slog.String("op", op))

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			writeJSON(logger, w, http.StatusBadRequest, errorResponse{Error: "invalid product id"})
			return
		}

		product, err := catalog.GetByID(r.Context(), id)
		if err != nil {
			writeError(logger, w, err)
			return
		}
		writeJSON(logger, w, http.StatusOK, product)
	}
}

// ProductsByCategoryHandler обрабатывает запрос GET /api/products/category/{categoryId}
func ProductsByCategoryHandler(log *slog.Logger, catalog service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ProductsByCategoryHandler"
		logger := log.With(slog.String("op", op))

		categoryID, err := strconv.ParseInt(chi.URLParam(r, "categoryId"), 10, 64)
		if err != nil {
			writeJSON(logger, w, http.StatusBadRequest, errorResponse{Error: "invalid category id"})
			return
		}

		products, err := catalog.ListByCategory(r.Context(), categoryID)
		if err != nil {
			logger.Error("failed to list products", slog.Any("error", err))
			writeError(logger, w, err)
			return
		}
		writeJSON(logger, w, http.StatusOK, products)
	}
}

// CreateProductHandler обрабатывает запрос POST /api/products (только администратор)
func CreateProductHandler(log *slog.Logger, catalog service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CreateProductHandler"
		logger := log.With(slog.String("op", op))

		var product models.Product
		if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			writeJSON(logger, w, http.StatusBadRequest, errorResponse{Error: "invalid request"})
			return
		}
		product.ID = 0

		created, err := catalog.Save(r.Context(), &product)
		if err != nil {
			logger.Error("failed to create product", slog.Any("error", err))
			writeError(logger, w, err)
			return
		}
		writeJSON(logger, w, http.StatusOK, created)
	}
}

// UpdateProductHandler обрабатывает запрос PUT /api/products/{id} (только администратор)
func UpdateProductHandler(log *slog.Logger, catalog service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.UpdateProductHandler"
		logger := log.With(slog.String("op", op))

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			writeJSON(logger, w, http.StatusBadRequest, errorResponse{Error: "invalid product id"})
			return
		}

		var product models.Product
		if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			writeJSON(logger, w, http.StatusBadRequest, errorResponse{Error: "invalid request"})
			return
		}
		product.ID = id

		updated, err := catalog.Save(r.Context(), &product)
		if err != nil {
			logger.Error("failed to update product", slog.Any("error", err))
			writeError(logger, w, err)
			return
		}
		writeJSON(logger, w, http.StatusOK, updated)
	}
}

// DeleteProductHandler обрабатывает запрос DELETE /api/products/{id} (только администратор)
func DeleteProductHandler(log *slog.Logger, catalog service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.DeleteProductHandler"
		logger := log.With(slog.String("op", op))

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			writeJSON(logger, w, http.StatusBadRequest, errorResponse{Error: "invalid product id"})
			return
		}

		if err := catalog.Delete(r.Context(), id); err != nil {
			logger.Error("failed to delete product", slog.Any("error", err))
			writeError(logger, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// UploadImageHandler обрабатывает запрос POST /api/products/upload-image (только администратор).
// Принимает multipart-файл в поле "file" и возвращает URL загруженного изображения.
func UploadImageHandler(log *slog.Logger, upload service.UploadService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.UploadImageHandler"
		logger := log.With(slog.String("op", op))

		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			logger.Error("invalid multipart form", slog.Any("error", err))
			writeJSON(logger, w, http.StatusBadRequest, errorResponse{Error: "invalid multipart form"})
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			logger.Error("file field is missing", slog.Any("error", err))
			writeJSON(logger, w, http.StatusBadRequest, errorResponse{Error: "file field is required"})
			return
		}
		defer file.Close()

		url, err := upload.UploadImage(r.Context(), header.Filename,
			header.Header.Get("Content-Type"), header.Size, file)
		if err != nil {
			logger.Error("failed to upload image", slog.Any("error", err))
			writeError(logger, w, err)
			return
		}
		writeJSON(logger, w, http.StatusOK, map[string]string{"url": url})
	}
}
