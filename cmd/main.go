package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pos-storefront-backend/configs"
	"pos-storefront-backend/internal/cart"
	"pos-storefront-backend/internal/handlers"
	"pos-storefront-backend/internal/middleware"
	"pos-storefront-backend/internal/models"
	"pos-storefront-backend/internal/repositories"
	"pos-storefront-backend/internal/services"
	"pos-storefront-backend/pkg/auth"
	"pos-storefront-backend/pkg/cache"
	"pos-storefront-backend/pkg/database"
	"pos-storefront-backend/pkg/logger"
	"pos-storefront-backend/pkg/messaging"
	"pos-storefront-backend/pkg/sms"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// cacheBackend is what both the service caches and the redis cart store need.
type cacheBackend interface {
	services.Cache
	repositories.RawCache
}

func main() {
	config := configs.LoadConfig()

	log, err := logger.New("pos-storefront")
	if err != nil {
		panic(err)
	}
	defer log.Sync() //nolint:errcheck

	gin.SetMode(config.Server.Mode)

	db, err := database.NewDatabase(config.Database.PostgresURL, config.Database.MongoURL, config.Database.MongoDBName, log)
	if err != nil {
		log.Fatal("failed to connect to databases", zap.Error(err))
	}
	defer db.Close()

	if err := autoMigratePostgres(db.Postgres); err != nil {
		log.Fatal("failed to migrate database", zap.Error(err))
	}

	// A nil *RedisCache must not leak into the interface.
	var kv cacheBackend
	if redisCache := cache.NewRedisCache(config.Redis.URL, config.Redis.Password, config.Redis.DB, log); redisCache != nil {
		defer redisCache.Close()
		kv = redisCache
	} else {
		log.Warn("redis unavailable, falling back to in-process cache")
		kv = cache.NewMemoryCache()
	}

	kafkaProducer := messaging.NewKafkaProducer(config.Kafka.Brokers)
	defer kafkaProducer.Close()

	jwtManager := auth.NewJWTManager(config.JWT.SecretKey, config.JWT.ExpiryHours, config.JWT.RefreshExpiryDays)

	// Repositories
	adminRepo := repositories.NewAdminUserRepository(db.Postgres)
	orderRepo := repositories.NewOrderRepository(db.Postgres)
	settingsRepo := repositories.NewSettingsRepository(db.Postgres)
	productRepo := repositories.NewProductRepository(db.MongoDB)
	categoryRepo := repositories.NewCategoryRepository(db.MongoDB)

	// Cart engine
	persister := cart.NewPersister(cartStore(config.Cart, kv, db.Postgres, log), log)
	registry := cart.NewRegistry(persister, log)

	// Services
	settingsService := services.NewSettingsService(settingsRepo, kv, config.Store.Currency, log)
	productService := services.NewProductService(productRepo, categoryRepo, kv, kafkaProducer, log)
	categoryService := services.NewCategoryService(categoryRepo, productRepo)
	cartService := services.NewCartService(registry, productService, settingsService)
	checkoutService := services.NewCheckoutService(registry, orderRepo, settingsService, kafkaProducer, log)
	orderService := services.NewOrderService(orderRepo, kafkaProducer, log)
	reportService := services.NewReportService(orderRepo)
	authService := services.NewAuthService(adminRepo, jwtManager, kv, log)

	if config.Admin.Email != "" {
		if err := authService.EnsureAdmin(context.Background(), config.Admin.Name, config.Admin.Email, config.Admin.Password); err != nil {
			log.Fatal("failed to seed admin user", zap.Error(err))
		}
	}

	// Background workers
	janitor := services.NewSessionJanitor(registry, config.Cart.SweepEvery, config.Cart.IdleEvict, log)
	janitor.Start()
	defer janitor.Stop()

	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()

	if config.Kafka.EnableNotifier {
		smsService := sms.NewSMSService(config.SMS.BaseURL, config.SMS.APIKey, config.SMS.SenderID)
		notifier := services.NewOrderNotifier(settingsService, smsService, log)
		consumer := messaging.NewKafkaConsumer(config.Kafka.Brokers, config.Kafka.GroupID, log)
		defer consumer.Close()
		go consumer.Consume(workerCtx, messaging.TopicOrderEvents, notifier.HandleOrderEvent)
	}

	// Handlers
	authMiddleware := middleware.NewAuthMiddleware(jwtManager)
	authHandler := handlers.NewAuthHandler(authService)
	productHandler := handlers.NewProductHandler(productService, categoryService)
	cartHandler := handlers.NewCartHandler(cartService)
	checkoutHandler := handlers.NewCheckoutHandler(checkoutService)
	orderHandler := handlers.NewOrderHandler(orderService)
	settingsHandler := handlers.NewSettingsHandler(settingsService, reportService)

	router := gin.New()
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.CORSMiddleware(config.Server.AllowedOrigins))
	router.Use(middleware.Language(config.Store.DefaultLanguage))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "pos-storefront-backend",
			"carts":   registry.Len(),
		})
	})

	api := router.Group("/api/v1")

	admin := api.Group("/admin")
	admin.Use(authMiddleware.AuthRequired(), authMiddleware.AdminRequired())

	authHandler.RegisterRoutes(api, authMiddleware)
	productHandler.RegisterRoutes(api, admin)
	settingsHandler.RegisterRoutes(api, admin)
	orderHandler.RegisterRoutes(admin)

	shop := api.Group("")
	shop.Use(middleware.CartSession(config.Server.Mode == gin.ReleaseMode))
	cartHandler.RegisterRoutes(shop)
	checkoutHandler.RegisterRoutes(shop)

	srv := &http.Server{
		Addr:              config.Server.Host + ":" + config.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	cancelWorkers()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}

// cartStore picks the byte store behind the cart persister.
func cartStore(cfg configs.CartConfig, kv repositories.RawCache, pg *gorm.DB, log *zap.Logger) cart.Store {
	switch cfg.Backend {
	case "postgres":
		return repositories.NewCartSnapshotStore(pg)
	case "memory":
		return cart.NewMemoryStore()
	case "redis", "":
		return repositories.NewRedisCartStore(kv, cfg.TTL)
	default:
		log.Warn("unknown cart store, using redis", zap.String("backend", cfg.Backend))
		return repositories.NewRedisCartStore(kv, cfg.TTL)
	}
}

func autoMigratePostgres(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.AdminUser{},
		&models.Order{},
		&models.SiteSettings{},
		&models.CartSnapshot{},
	)
}
