package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"inventario/inventory-service/internal/app/inventory/config"
	"inventario/inventory-service/internal/app/inventory/entity"
	"inventario/inventory-service/internal/app/inventory/handler"
	"inventario/inventory-service/internal/app/inventory/processor"
	"inventario/inventory-service/internal/app/inventory/repository"
	"inventario/inventory-service/internal/app/inventory/service"
	"inventario/inventory-service/internal/app/inventory/util"
	"inventario/pkg/logger"

	"github.com/redis/go-redis/v9"
)

const connectAttempts = 10

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(handler.ServiceName, cfg.Logging.Level)

	if cfg.Logging.LogstashAddr != "" {
		if err := logger.InitLogstash(cfg.Logging.LogstashAddr, handler.ServiceName, cfg.Logging.Level); err != nil {
			logger.Warn().Err(err).Msg("Failed to connect to Logstash, using stdout only")
		} else {
			logger.Info().Str("logstash_addr", cfg.Logging.LogstashAddr).Msg("Connected to Logstash")
		}
	}

	// Основной контекст приложения, отменяется при остановке
	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// === РЕЛЯЦИОННАЯ БД ===
	db, err := connectDB(cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	logger.Info().
		Str("driver", cfg.Database.Driver).
		Str("host", cfg.Database.Host).
		Str("database", cfg.Database.DBName).
		Msg("Connected to database")

	if cfg.Database.AutoMigrate {
		if err := db.AutoMigrate(&entity.Category{}, &entity.Product{}, &entity.Alert{}); err != nil {
			logger.Fatal().Err(err).Msg("Failed to run migrations")
		}
		logger.Info().Msg("Database schema migrated")
	}

	// === REDIS (кеш категорий) ===
	var redisClient *redis.Client
	var categoryCache util.CategoryCache = util.NoopCategoryCache{}
	if cfg.Redis.Enabled {
		redisClient, err = util.NewRedisClient(ctx, cfg.Redis.Address(), cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			// Без кеша сервис работает, категории читаются из БД
			logger.Warn().Err(err).Str("addr", cfg.Redis.Address()).Msg("Redis unavailable, category cache disabled")
		} else {
			categoryCache = util.NewRedisCategoryCache(redisClient)
			logger.Info().Str("addr", cfg.Redis.Address()).Msg("Connected to Redis")
		}
	}
	defer categoryCache.Close()

	// === KAFKA (события товаров и алертов) ===
	var productPublisher, alertPublisher util.MessagePublisher = util.NoopPublisher{}, util.NoopPublisher{}
	if cfg.Kafka.Enabled {
		productPublisher = util.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.ProductTopic)
		alertPublisher = util.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.AlertTopic)
		logger.Info().
			Strs("brokers", cfg.Kafka.Brokers).
			Str("product_topic", cfg.Kafka.ProductTopic).
			Str("alert_topic", cfg.Kafka.AlertTopic).
			Msg("Initialized Kafka producers")
	}
	defer productPublisher.Close()
	defer alertPublisher.Close()

	// === MONGODB (журнал проходов генератора) ===
	runRepo := repository.NewNoopAlertRunRepository()
	if cfg.Mongo.URI != "" {
		mongoClient, err := connectMongoDB(cfg.Mongo)
		if err != nil {
			logger.Warn().Err(err).Msg("MongoDB unavailable, alert run journal disabled")
		} else {
			defer func() {
				disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = mongoClient.Disconnect(disconnectCtx)
			}()
			runRepo = repository.NewAlertRunRepository(mongoClient.Database(cfg.Mongo.Database))
			logger.Info().Str("database", cfg.Mongo.Database).Msg("Connected to MongoDB")
		}
	}

	// === РЕПОЗИТОРИИ И СЕРВИСЫ ===
	productRepo := repository.NewProductRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	alertRepo := repository.NewAlertRepository(db)

	productService := service.NewProductService(productRepo, categoryRepo, productPublisher)
	categoryService := service.NewCategoryService(categoryRepo, categoryCache, cfg.Redis.CategoriesTTL)
	alertService := service.NewAlertService(productRepo, alertRepo, runRepo, alertPublisher, cfg.Alerts)

	// === CRON ===
	if cfg.Alerts.ScanEnabled {
		cronScheduler := processor.NewCronScheduler(alertService)
		if err := cronScheduler.Start(ctx, cfg.Alerts.ScanSchedule); err != nil {
			logger.Fatal().Err(err).Str("schedule", cfg.Alerts.ScanSchedule).Msg("Failed to start cron scheduler")
		}
		defer cronScheduler.Stop()
		logger.Info().Str("schedule", cfg.Alerts.ScanSchedule).Msg("Alert scan scheduled")
	}

	// === HTTP ===
	var authMiddleware *handler.AuthMiddleware
	if cfg.JWT.AuthEnabled() {
		authMiddleware = handler.NewAuthMiddleware(cfg.JWT.Secret)
	} else {
		logger.Warn().Msg("JWT_SECRET is empty, mutating endpoints are not protected")
	}

	router := handler.SetupRoutes(
		handler.NewInventoryHandler(productService, categoryService),
		handler.NewAlertHandler(alertService),
		handler.NewHealthCheckHandler(db, redisClient, handler.ServiceName),
		authMiddleware,
		cfg.JWT.AllowedRoles,
	)

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Bool("generate_on_read", cfg.Alerts.GenerateOnRead).
			Bool("serialize_dedup", cfg.Alerts.SerializeDedup).
			Msg("Starting Inventory Service")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// === GRACEFUL SHUTDOWN ===
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down Inventory Service...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Inventory Service stopped gracefully")
}

// connectDB открывает gorm соединение с выбранным драйвером.
// Повторяет попытки, пока БД поднимается в Docker
func connectDB(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	}

	var db *gorm.DB
	var err error

	for i := 0; i < connectAttempts; i++ {
		db, err = gorm.Open(dialector(cfg), gormConfig)
		if err == nil {
			sqlDB, sqlErr := db.DB()
			if sqlErr != nil {
				err = sqlErr
			} else if pingErr := sqlDB.Ping(); pingErr != nil {
				err = pingErr
			} else {
				sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
				sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
				sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
				sqlDB.SetConnMaxIdleTime(1 * time.Minute)
				return db, nil
			}
		}
		logger.Warn().
			Int("attempt", i+1).
			Err(err).
			Msg("Failed to connect to database, retrying...")
		time.Sleep(3 * time.Second)
	}

	return nil, fmt.Errorf("failed to connect after %d attempts: %w", connectAttempts, err)
}

func dialector(cfg config.DatabaseConfig) gorm.Dialector {
	if cfg.Driver == "mysql" {
		return mysql.Open(cfg.DSN())
	}
	return postgres.Open(cfg.DSN())
}

func connectMongoDB(cfg config.MongoConfig) (*mongo.Client, error) {
	clientOptions := options.Client().ApplyURI(cfg.URI)

	var client *mongo.Client
	var err error

	for i := 0; i < connectAttempts; i++ {
		connectCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		client, err = mongo.Connect(connectCtx, clientOptions)
		cancel()

		if err == nil {
			pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
			err = client.Ping(pingCtx, nil)
			pingCancel()
			if err == nil {
				return client, nil
			}
		}

		logger.Warn().
			Int("attempt", i+1).
			Err(err).
			Msg("Failed to connect to MongoDB, retrying...")
		time.Sleep(3 * time.Second)
	}

	return nil, err
}
