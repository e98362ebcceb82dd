// cmd/api/main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/your-org/clinic-store-backend/internal/config"
	"github.com/your-org/clinic-store-backend/internal/domain/cart"
	"github.com/your-org/clinic-store-backend/internal/domain/catalog"
	"github.com/your-org/clinic-store-backend/internal/domain/order"
	"github.com/your-org/clinic-store-backend/internal/domain/payment"
	"github.com/your-org/clinic-store-backend/internal/domain/product"
	"github.com/your-org/clinic-store-backend/internal/domain/review"
	"github.com/your-org/clinic-store-backend/internal/domain/user"
	"github.com/your-org/clinic-store-backend/internal/infrastructure/database/postgres"
	"github.com/your-org/clinic-store-backend/internal/infrastructure/database/redis"
	httpserver "github.com/your-org/clinic-store-backend/internal/interfaces/http"
	"github.com/your-org/clinic-store-backend/internal/interfaces/http/handlers"
	"github.com/your-org/clinic-store-backend/internal/interfaces/http/routes"
	"github.com/your-org/clinic-store-backend/internal/pkg/auth"
	"github.com/your-org/clinic-store-backend/internal/pkg/logger"
	"github.com/your-org/clinic-store-backend/internal/pkg/reference"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger := logger.New(cfg)
	appLogger.Infof("Starting %s v%s in %s mode", cfg.App.Name, cfg.App.Version, cfg.App.Environment)

	db, err := postgres.NewConnection(cfg, appLogger)
	if err != nil {
		appLogger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	redisClient, err := redis.NewConnection(cfg, appLogger)
	if err != nil {
		appLogger.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	migration := postgres.NewMigration(db.GetDB(), appLogger)
	if err := migration.RunAutoMigrations(); err != nil {
		appLogger.Fatalf("Database migration failed: %v", err)
	}
	if err := migration.CreateIndexes(); err != nil {
		appLogger.Warnf("Index creation failed: %v", err)
	}

	// Catalog item kinds and the allow-lists that narrow them per surface.
	registry := reference.NewRegistry()
	catalog.RegisterKinds(registry)

	storeAllowList, err := reference.NewAllowList(registry, cfg.Store.AllowedItemTypes)
	if err != nil {
		appLogger.Fatalf("Invalid store allow-list: %v", err)
	}
	feedbackAllowList, err := reference.NewAllowList(registry, cfg.Feedback.AllowedItemTypes)
	if err != nil {
		appLogger.Fatalf("Invalid feedback allow-list: %v", err)
	}

	bus := EventBus.New()

	catalogService := catalog.NewService(db.GetDB(), bus, appLogger)
	productService := product.NewService(db.GetDB(), cfg, storeAllowList, appLogger)
	reviewService := review.NewService(db.GetDB(), feedbackAllowList, appLogger)

	// Wired after construction to break the catalog<->product cycle.
	catalogService.SetReferenceGuard(productService)
	catalogService.SetReviewPurger(reviewService)
	if err := productService.SubscribeCatalogChanges(bus); err != nil {
		appLogger.Fatalf("Failed to subscribe to catalog changes: %v", err)
	}

	cartService := cart.NewService(db.GetDB(), appLogger)
	gateway := payment.NewRazorpayGateway(cfg, appLogger)
	orderService := order.NewService(db.GetDB(), cfg, cartService, productService, gateway, appLogger)

	jwtManager := auth.NewJWTManager(cfg)
	passwordManager := auth.NewPasswordManager(cfg)
	userService := user.NewService(db.GetDB(), jwtManager, passwordManager, appLogger)

	h := &routes.Handlers{
		Auth:    handlers.NewAuthHandler(userService, appLogger),
		Catalog: handlers.NewCatalogHandler(catalogService, appLogger),
		Product: handlers.NewProductHandler(productService, storeAllowList, appLogger),
		Cart:    handlers.NewCartHandler(cartService, appLogger),
		Order:   handlers.NewOrderHandler(orderService, appLogger),
		Review:  handlers.NewReviewHandler(reviewService, appLogger),
	}

	server := httpserver.NewServer(cfg, db.GetDB(), redisClient.GetClient(), h, appLogger)

	go func() {
		if err := server.Start(); err != nil {
			appLogger.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Stop(ctx); err != nil {
		appLogger.Errorf("Failed to shutdown HTTP server gracefully: %v", err)
	}
}
