package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/classmart/inventory-service/config"
	"github.com/classmart/inventory-service/pkg/broker"
	"github.com/classmart/inventory-service/pkg/cache"
	"github.com/classmart/inventory-service/pkg/logger"
	"github.com/classmart/inventory-service/pkg/postgres"
	"github.com/classmart/inventory-service/pkg/search"

	alertPub "github.com/classmart/inventory-service/internal/alert/publisher"
	alertRepoPkg "github.com/classmart/inventory-service/internal/alert/repository"
	alertUCPkg "github.com/classmart/inventory-service/internal/alert/usecase"

	catRepoPkg "github.com/classmart/inventory-service/internal/catalog/repository"
	catUCPkg "github.com/classmart/inventory-service/internal/catalog/usecase"

	fulfillUCPkg "github.com/classmart/inventory-service/internal/fulfillment/usecase"

	stockListenerPkg "github.com/classmart/inventory-service/internal/stock/listener"
	stockRepoPkg "github.com/classmart/inventory-service/internal/stock/repository"
	stockSweeperPkg "github.com/classmart/inventory-service/internal/stock/sweeper"
	stockUCPkg "github.com/classmart/inventory-service/internal/stock/usecase"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const movementMapping = `{
	"mappings": {
		"properties": {
			"tenant_id":      { "type": "keyword" },
			"product_id":     { "type": "keyword" },
			"variant_id":     { "type": "keyword" },
			"warehouse_id":   { "type": "keyword" },
			"type":           { "type": "keyword" },
			"reference_type": { "type": "keyword" },
			"reference_id":   { "type": "keyword" },
			"quantity":       { "type": "double" },
			"created_at":     { "type": "date" }
		}
	}
}`

func main() {
	// 1. Load Configuration
	_ = godotenv.Load() // Load .env file if it exists
	cfg := config.LoadEnv()

	// 2. Initialize Logger
	logConfig := &logger.ZapLoggerConfig{
		IsDevelopment:     false,
		Encoding:          "json",
		Level:             cfg.Logger.Level,
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	}
	if cfg.Server.AppEnv == "development" || cfg.Server.AppEnv == "dev" {
		logConfig.IsDevelopment = true
		logConfig.Encoding = cfg.Logger.Encoding
	}

	appLogger := logger.NewZapLogger(logConfig)
	defer appLogger.Sync()

	// 3. Connect to Database
	db, err := postgres.NewPostgres(&postgres.Config{
		Host:            cfg.Postgres.Host,
		Port:            cfg.Postgres.Port,
		User:            cfg.Postgres.User,
		Password:        cfg.Postgres.Password,
		DBName:          cfg.Postgres.DBName,
		SSLMode:         cfg.Postgres.SSLMode,
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second,
		ConnMaxIdleTime: time.Duration(cfg.Postgres.ConnMaxIdleTime) * time.Second,
	})
	if err != nil {
		appLogger.Fatal("could not connect to database", zap.Error(err))
	}
	defer db.Close()
	appLogger.Info("connected to postgres", zap.String("db_name", cfg.Postgres.DBName))

	// 4. Initialize Redis
	redisClient, err := cache.NewRedisClient(&cache.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		appLogger.Fatal("could not connect to redis", zap.Error(err))
	}
	defer redisClient.Close()
	appLogger.Info("connected to redis", zap.String("addr", cfg.Redis.Addr))

	// 5. Initialize Kafka
	orderConsumer := broker.NewConsumer(&broker.Config{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.OrdersTopic,
		GroupID: cfg.Kafka.OrdersGroupID,
	})
	defer orderConsumer.Close()

	alertProducer := broker.NewProducer(&broker.Config{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.AlertsTopic,
	})
	defer alertProducer.Close()
	appLogger.Info("connected to kafka",
		zap.Strings("brokers", cfg.Kafka.Brokers),
		zap.String("orders_topic", cfg.Kafka.OrdersTopic),
		zap.String("alerts_topic", cfg.Kafka.AlertsTopic),
	)

	// 6. Initialize Elasticsearch
	esClient, err := search.NewClient(&search.Config{
		Addresses: cfg.Elastic.Addresses,
		Username:  cfg.Elastic.Username,
		Password:  cfg.Elastic.Password,
	})
	if err != nil {
		// The movement index is audit search sugar; the service runs without it.
		appLogger.Warn("could not connect to elasticsearch, movement indexing disabled", zap.Error(err))
		esClient = nil
	} else {
		appLogger.Info("connected to elasticsearch", zap.Strings("addresses", cfg.Elastic.Addresses))
		if err := esClient.CreateIndex(context.Background(), "stock_movements", movementMapping); err != nil {
			appLogger.Warn("could not create movement index", zap.Error(err))
		}
	}

	// 7. Initialize Repositories
	catRepo := catRepoPkg.NewPGRepository(db)
	stockRepo := stockRepoPkg.NewPGRepository(db)
	alertRepo := alertRepoPkg.NewPGRepository(db)

	// 8. Initialize UseCases
	catUC := catUCPkg.NewCatalogUseCase(catRepo, appLogger)
	alertEvaluator := alertUCPkg.NewAlertEvaluator(alertRepo, alertPub.NewKafkaNotifier(alertProducer), appLogger)
	stockUC := stockUCPkg.NewStockUseCase(stockRepo, catUC, redisClient, alertEvaluator, esClient, appLogger, stockUCPkg.Options{
		ReservationTTL: cfg.Stock.ReservationTTL,
		LockTTL:        cfg.Stock.LockTTL,
		LockRetries:    cfg.Stock.LockRetries,
		LockRetryDelay: cfg.Stock.LockRetryDelay,
		SweepBatchSize: cfg.Stock.SweepBatchSize,
	})
	fulfillUC := fulfillUCPkg.NewFulfillmentUseCase(stockUC, appLogger)

	// 9. Start background workers
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	orderListener := stockListenerPkg.NewOrderListener(orderConsumer, fulfillUC, appLogger)
	go orderListener.Start(ctx)

	reservationSweeper := stockSweeperPkg.NewSweeper(stockUC, cfg.Stock.SweepInterval, appLogger)
	go reservationSweeper.Start(ctx)

	appLogger.Info("stock ledger service started")

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("shutting down...")
	cancel()
	appLogger.Info("stopped")
}
