package main

import (
	"context"

	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pkg/errors"

	"github.com/linemk/agro-shop/internal/app"
	"github.com/linemk/agro-shop/internal/app/handlers"
	"github.com/linemk/agro-shop/internal/config"
	"github.com/linemk/agro-shop/internal/jwt/jwtmiddleware"
	"github.com/linemk/agro-shop/internal/lib/logger"
	"github.com/linemk/agro-shop/internal/lib/logger/handlers/urllog"
	"github.com/linemk/agro-shop/internal/service"
	"github.com/linemk/agro-shop/internal/storage"
)

func main() {
	// загрузка конфигурации
	cfg := config.MustLoad()

	// инициализация логгера, зависит от настройки окружения
	log := logger.SetupLogger(cfg.Env)
	log.Info("starting app", slog.String("env", cfg.Env))

	// загружаем объект приложения, конфигом и подключением к БД
	application, err := app.NewApp(log, cfg)
	if err != nil {
		log.Error("failed to initialize app", slog.Any("error", err))
		panic(errors.Wrap(err, "failed to initialize app"))
	}
	defer application.DB.Close()

	router := chi.NewRouter()
	// настройка middleware
	router.Use(middleware.RequestID)
	router.Use(urllog.CustomLoggerMiddleware(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)

	// реализация слоев по работе с БД по каждому направлению
	userRepo := storage.NewUserRepository(application.DB)
	categoryRepo := storage.NewCategoryRepository(application.DB)
	productRepo := storage.NewProductRepository(application.DB)
	cartRepo := storage.NewCartRepository(application.DB)
	orderRepo := storage.NewOrderRepository(application.DB)

	authService := service.NewAuthService(log, userRepo, time.Duration(cfg.JWT.TokenTTL)*time.Minute)
	catalogService := service.NewCatalogService(log, productRepo)
	categoryService := service.NewCategoryService(log, categoryRepo)
	cartService := service.NewCartService(log, application.DB, cartRepo, productRepo)
	orderService := service.NewOrderService(log, application.DB, orderRepo, cartRepo, productRepo)
	uploadService := service.NewUploadService(log, application.Minio, cfg.Storage)

	// учетная запись администратора создается при старте, если ее нет
	if err := authService.EnsureAdmin(context.Background(), cfg.Admin.Username, cfg.Admin.Email, cfg.Admin.Password); err != nil {
		log.Error("failed to ensure admin account", slog.Any("error", err))
		panic(errors.Wrap(err, "failed to ensure admin account"))
	}

	router.Route("/api", func(r chi.Router) {
		// публичные эндпоинты
		r.Post("/auth/register", handlers.RegisterHandler(log, authService))
		r.Post("/auth/login", handlers.LoginHandler(log, authService))
		r.Get("/products", handlers.ListProductsHandler(log, catalogService))
		r.Get("/products/{id}", handlers.GetProductHandler(log, catalogService))
		r.Get("/products/category/{categoryId}", handlers.ProductsByCategoryHandler(log, catalogService))

		jwtMW := jwtmiddleware.NewJWTMiddleware()

		// эндпоинты для аутентифицированных пользователей
		r.Group(func(r chi.Router) {
			r.Use(jwtMW)
			r.Get("/cart", handlers.GetCartHandler(log, cartService))
			r.Post("/cart/add", handlers.AddCartItemHandler(log, cartService))
			r.Put("/cart/item/{itemId}", handlers.UpdateCartItemHandler(log, cartService))
			r.Delete("/cart/item/{itemId}", handlers.RemoveCartItemHandler(log, cartService))

			r.Post("/orders", handlers.CreateOrderHandler(log, orderService))
			r.Post("/orders/buy-now", handlers.BuyNowHandler(log, orderService))
			r.Get("/orders", handlers.ListOrdersHandler(log, orderService))
			r.Get("/orders/{id}", handlers.GetOrderHandler(log, orderService))
		})

		// административные эндпоинты
		r.Group(func(r chi.Router) {
			r.Use(jwtMW)
			r.Use(jwtmiddleware.RequireAdmin)
			r.Post("/products", handlers.CreateProductHandler(log, catalogService))
			r.Put("/products/{id}", handlers.UpdateProductHandler(log, catalogService))
			r.Delete("/products/{id}", handlers.DeleteProductHandler(log, catalogService))
			r.Post("/products/upload-image", handlers.UploadImageHandler(log, uploadService))

			r.Get("/orders/admin/all", handlers.AllOrdersHandler(log, orderService))
			r.Put("/orders/{id}/status", handlers.UpdateOrderStatusHandler(log, orderService))

			r.Get("/admin/categories", handlers.ListCategoriesHandler(log, categoryService))
			r.Post("/admin/categories", handlers.CreateCategoryHandler(log, categoryService))
			r.Put("/admin/categories/{id}", handlers.UpdateCategoryHandler(log, categoryService))
			r.Delete("/admin/categories/{id}", handlers.DeleteCategoryHandler(log, categoryService))
		})
	})

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		log.Info("starting server", slog.String("address", cfg.HTTPServer.Address))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.Any("error", err))
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	stopSign := <-stop
	log.Info("received shutdown signal", slog.String("signal", stopSign.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server shutdown failed", slog.Any("error", err))
	}
	log.Info("server gracefully stopped")
}
