package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/mweb/storefront-api/internal/config"
	"github.com/mweb/storefront-api/internal/handler"
	"github.com/mweb/storefront-api/internal/middleware"
	"github.com/mweb/storefront-api/internal/repository"
	"github.com/mweb/storefront-api/internal/service"
	"github.com/mweb/storefront-api/internal/worker"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	if err := run(log); err != nil {
		log.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	pool, err := repository.NewPool(ctx, cfg.DB.DSN(), cfg.DB.MaxConns)
	if err != nil {
		return err
	}
	defer pool.Close()
	log.Info("connected to postgres", "host", cfg.DB.Host)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Warn("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	// The broker is optional: orders still commit without it, only the
	// async fulfillment handoff is lost.
	var amqpCh *amqp.Channel
	amqpConn, err := amqp.Dial(cfg.RabbitMQ.URL)
	if err != nil {
		log.Warn("rabbitmq unavailable, fulfillment events disabled", "error", err)
	} else {
		defer amqpConn.Close()
		amqpCh, err = amqpConn.Channel()
		if err != nil {
			return fmt.Errorf("open channel: %w", err)
		}
		if err := worker.SetupRabbitMQ(amqpCh); err != nil {
			return err
		}
	}

	userRepo := repository.NewUserRepository(pool)
	productRepo := repository.NewProductRepository(pool)
	inventoryRepo := repository.NewInventoryRepository(pool)
	cartRepo := repository.NewCartRepository(pool)
	couponRepo := repository.NewCouponRepository(pool)
	orderRepo := repository.NewOrderRepository(pool)

	taxRate, err := decimal.NewFromString(cfg.Checkout.TaxRate)
	if err != nil {
		log.Warn("invalid tax rate, using default", "value", cfg.Checkout.TaxRate)
		taxRate = service.DefaultTaxRate
	}

	authService := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration)
	productService := service.NewProductService(productRepo, redisClient)
	inventoryService := service.NewInventoryService(inventoryRepo, productRepo)
	cartService := service.NewCartService(cartRepo, productRepo, inventoryRepo)
	couponService := service.NewCouponService(couponRepo)
	pricing := service.NewPricingEngine(taxRate)
	orderService := service.NewOrderService(orderRepo, cartRepo, productRepo, inventoryRepo, couponService, pricing, amqpCh)

	if amqpCh != nil && redisClient != nil {
		fw := worker.NewFulfillmentWorker(amqpCh, orderRepo, redisClient, log)
		if err := fw.Start(ctx); err != nil {
			return err
		}
		defer fw.Stop()
	}

	router := newRouter(cfg, pool, authService, productService, inventoryService, cartService, couponService, orderService)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newRouter(
	cfg *config.Config,
	pool *pgxpool.Pool,
	authService *service.AuthService,
	productService *service.ProductService,
	inventoryService *service.InventoryService,
	cartService *service.CartService,
	couponService *service.CouponService,
	orderService *service.OrderService,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	authHandler := handler.NewAuthHandler(authService)
	productHandler := handler.NewProductHandler(productService)
	inventoryHandler := handler.NewInventoryHandler(inventoryService)
	cartHandler := handler.NewCartHandler(cartService)
	couponHandler := handler.NewCouponHandler(couponService)
	orderHandler := handler.NewOrderHandler(orderService)
	healthHandler := handler.NewHealthHandler(pool)

	router.GET("/healthz", healthHandler.Live)
	router.GET("/readyz", healthHandler.Ready)

	v1 := router.Group("/api/v1")

	auth := v1.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
	}

	products := v1.Group("/products")
	{
		products.GET("", productHandler.List)
		products.GET("/:id", productHandler.GetByID)
	}

	authed := v1.Group("")
	authed.Use(middleware.AuthMiddleware(cfg.JWT.Secret))
	{
		cart := authed.Group("/cart")
		{
			cart.GET("", cartHandler.Get)
			cart.POST("/items", cartHandler.AddItem)
			cart.PUT("/items/:itemID", cartHandler.UpdateItem)
			cart.DELETE("/items/:itemID", cartHandler.RemoveItem)
			cart.DELETE("", cartHandler.Clear)
		}

		orders := authed.Group("/orders")
		{
			orders.POST("", orderHandler.Checkout)
			orders.GET("", orderHandler.List)
			orders.GET("/:id", orderHandler.GetByID)
		}
	}

	admin := v1.Group("/admin")
	admin.Use(middleware.AuthMiddleware(cfg.JWT.Secret), middleware.AdminOnly())
	{
		admin.POST("/products", productHandler.Create)
		admin.PUT("/products/:id", productHandler.Update)
		admin.DELETE("/products/:id", productHandler.Delete)

		// Stock alerts live behind ?filter= on the collection route; a
		// static sibling of :productID would not register.
		admin.POST("/inventory", inventoryHandler.Create)
		admin.GET("/inventory", inventoryHandler.List)
		admin.GET("/inventory/:productID", inventoryHandler.GetByProduct)
		admin.PUT("/inventory/:productID/stock", inventoryHandler.SetStock)
		admin.POST("/inventory/:productID/add", inventoryHandler.AddStock)
		admin.POST("/inventory/:productID/reduce", inventoryHandler.ReduceStock)

		admin.POST("/coupons", couponHandler.Create)

		admin.GET("/orders/:id", orderHandler.GetByIDAdmin)
		admin.PUT("/orders/:id/status", orderHandler.UpdateStatus)
	}

	return router
}
