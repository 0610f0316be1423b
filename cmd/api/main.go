package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jeanmiche7488/mim/pkg/errors"
	"github.com/jeanmiche7488/mim/pkg/events"
	"github.com/jeanmiche7488/mim/pkg/kafka"
	"github.com/jeanmiche7488/mim/pkg/logging"
	"github.com/jeanmiche7488/mim/pkg/metrics"
	"github.com/jeanmiche7488/mim/pkg/middleware"
	"github.com/jeanmiche7488/mim/pkg/mongodb"

	"github.com/jeanmiche7488/mim/internal/application"
	"github.com/jeanmiche7488/mim/internal/domain"
	mongoRepo "github.com/jeanmiche7488/mim/internal/infrastructure/mongodb"
)

const serviceName = "distribution-service"

func main() {
	// Setup enhanced logger
	logConfig := logging.DefaultConfig(serviceName)
	logConfig.Level = logging.LogLevel(getEnv("LOG_LEVEL", "info"))
	logger := logging.New(logConfig)
	logger.SetDefault()

	logger.Info("Starting distribution-service API")

	// Load configuration
	config := loadConfig()
	ctx := context.Background()

	// Initialize Prometheus metrics
	metricsConfig := metrics.DefaultConfig(serviceName)
	m := metrics.New(metricsConfig)
	logger.Info("Metrics initialized")

	// Initialize MongoDB behind a circuit breaker
	mongoClient, err := mongodb.NewClient(ctx, config.MongoDB)
	if err != nil {
		logger.WithError(err).Error("Failed to connect to MongoDB")
		os.Exit(1)
	}
	protectedMongo := mongodb.NewCircuitBreakerClient(mongoClient, m, logger.Logger)
	defer protectedMongo.Close(ctx)
	logger.Info("Connected to MongoDB", "database", config.MongoDB.Database)

	// Initialize Kafka producer with instrumentation
	kafkaProducer := kafka.NewProducer(config.Kafka)
	instrumentedProducer := kafka.NewInstrumentedProducer(kafkaProducer, m, logger)
	defer instrumentedProducer.Close()
	logger.Info("Kafka producer initialized", "brokers", config.Kafka.Brokers)

	// Initialize CloudEvents factory
	eventFactory := events.NewEventFactory(events.SourceDistribution)

	// Initialize repositories over an instrumented database so every
	// driver call feeds the mongodb_operations metrics and query log
	db := mongodb.NewInstrumentedDatabase(protectedMongo.Database(), m, logger)
	storeRepo := mongoRepo.NewStoreRepository(db)
	parameterRepo := mongoRepo.NewParameterRepository(db)
	stockRepo := mongoRepo.NewStockRepository(db)
	distributionRepo := mongoRepo.NewDistributionRepository(db)
	dispatchRepo := mongoRepo.NewDispatchRepository(db)
	salesRepo := mongoRepo.NewSalesHistoryRepository(db)

	// Multi-document transactions need a replica set; standalone
	// deployments run the same sequence without a boundary.
	var txRunner domain.TransactionRunner = mongoRepo.NewNoopTransactionRunner()
	if config.MongoDB.ReplicaSet != "" {
		txRunner = mongoRepo.NewSessionTransactionRunner(protectedMongo)
	}
	logger.Info("Transaction runner initialized", "transactional", txRunner.Transactional())

	// Initialize application services
	distributionService := application.NewDistributionService(
		stockRepo, parameterRepo, storeRepo, distributionRepo,
		txRunner, instrumentedProducer, eventFactory, m, logger,
	)
	dispatchService := application.NewDispatchService(
		dispatchRepo, parameterRepo, salesRepo,
		instrumentedProducer, eventFactory, m, logger,
	)
	stockService := application.NewStockService(
		stockRepo, parameterRepo, instrumentedProducer, eventFactory, logger,
	)
	parameterService := application.NewParameterService(
		parameterRepo, txRunner, instrumentedProducer, eventFactory, logger,
	)
	storeService := application.NewStoreService(storeRepo, logger)

	// Setup Gin router with middleware
	router := gin.New()

	middlewareConfig := middleware.DefaultConfig(serviceName, logger)
	middleware.Setup(router, middlewareConfig)

	router.Use(middleware.MetricsMiddleware(m))

	router.NoRoute(middleware.NoRoute())
	router.NoMethod(middleware.NoMethod())

	// Health check endpoints
	router.GET("/health", middleware.HealthCheck(serviceName))
	router.GET("/ready", middleware.ReadinessCheck(serviceName, func() error {
		return protectedMongo.HealthCheck(ctx)
	}))

	// Metrics endpoint
	router.GET("/metrics", middleware.MetricsEndpoint(m))

	// API v1 routes
	api := router.Group("/api/v1")
	{
		api.POST("/distributions/calculate/:stockToDispatchId", calculateDistributionHandler(distributionService, logger))
		api.GET("/distributions/:id", getDistributionHandler(distributionService, logger))

		api.POST("/dispatch/calculate", calculateDispatchHandler(dispatchService, logger))
		api.GET("/dispatch/calculations/:id", getDispatchCalculationHandler(dispatchService, logger))
		api.GET("/dispatch/history", getDispatchHistoryHandler(dispatchService, logger))

		api.POST("/stocks/:id/max-stores", calculateMaxStoresHandler(stockService, logger))

		api.GET("/parameters/active", getParametersHandler(parameterService, logger))
		api.PUT("/parameters", updateParametersHandler(parameterService, logger))

		api.GET("/stores", listStoresHandler(storeService, logger))
	}

	// Start server
	srv := &http.Server{
		Addr:         config.ServerAddr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server error", "error", err)
		}
	}()
	logger.Info("Server started", "addr", config.ServerAddr)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	logger.Info("Server stopped")
}

// Config holds application configuration
type Config struct {
	ServerAddr string
	MongoDB    *mongodb.Config
	Kafka      *kafka.Config
}

func loadConfig() *Config {
	return &Config{
		ServerAddr: getEnv("SERVER_ADDR", ":8080"),
		MongoDB: &mongodb.Config{
			URI:            getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database:       getEnv("MONGODB_DATABASE", "mim_db"),
			ConnectTimeout: 10 * time.Second,
			MaxPoolSize:    100,
			MinPoolSize:    10,
			Username:       getEnv("MONGODB_USERNAME", ""),
			Password:       getEnv("MONGODB_PASSWORD", ""),
			AuthDB:         getEnv("MONGODB_AUTH_DB", "admin"),
			ReplicaSet:     getEnv("MONGODB_REPLICA_SET", ""),
		},
		Kafka: &kafka.Config{
			Brokers:       []string{getEnv("KAFKA_BROKERS", "localhost:9092")},
			ConsumerGroup: serviceName,
			ClientID:      serviceName,
			BatchSize:     100,
			BatchTimeout:  10 * time.Millisecond,
			RequiredAcks:  -1,
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func calculateDistributionHandler(service *application.DistributionService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			UserID string `json:"user_id"`
		}
		// Body is optional; absence means fall back to the stock creator
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
		}

		cmd := application.CalculateDistributionCommand{
			StockToDispatchID: c.Param("stockToDispatchId"),
			UserID:            req.UserID,
		}

		result := service.Calculate(c.Request.Context(), cmd)
		if !result.Success {
			c.JSON(statusForCode(result.ErrorCode), result)
			return
		}

		c.JSON(http.StatusCreated, result)
	}
}

func getDistributionHandler(service *application.DistributionService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		query := application.GetDistributionQuery{DistributionID: c.Param("id")}

		distribution, err := service.GetDistribution(c.Request.Context(), query)
		if err != nil {
			respond(responder, err)
			return
		}

		c.JSON(http.StatusOK, distribution)
	}
}

func calculateDispatchHandler(service *application.DispatchService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var cmd application.CalculateDispatchCommand
		if err := c.ShouldBindJSON(&cmd); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		result, err := service.Calculate(c.Request.Context(), cmd)
		if err != nil {
			respond(responder, err)
			return
		}

		c.JSON(http.StatusCreated, result)
	}
}

func getDispatchCalculationHandler(service *application.DispatchService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		result, err := service.GetCalculation(c.Request.Context(), c.Param("id"))
		if err != nil {
			respond(responder, err)
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

func getDispatchHistoryHandler(service *application.DispatchService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "100"), 10, 64)

		history, err := service.GetHistory(c.Request.Context(), application.GetDispatchHistoryQuery{Limit: limit})
		if err != nil {
			respond(responder, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"history": history, "count": len(history)})
	}
}

func calculateMaxStoresHandler(service *application.StockService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		cmd := application.CalculateMaxStoresCommand{StockToDispatchID: c.Param("id")}

		result, err := service.CalculateMaxStores(c.Request.Context(), cmd)
		if err != nil {
			respond(responder, err)
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

func getParametersHandler(service *application.ParameterService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		params, err := service.GetActive(c.Request.Context())
		if err != nil {
			respond(responder, err)
			return
		}

		c.JSON(http.StatusOK, params)
	}
}

func updateParametersHandler(service *application.ParameterService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var cmd application.UpdateParametersCommand
		if err := c.ShouldBindJSON(&cmd); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		params, err := service.Update(c.Request.Context(), cmd)
		if err != nil {
			respond(responder, err)
			return
		}

		c.JSON(http.StatusOK, params)
	}
}

func listStoresHandler(service *application.StoreService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		activeOnly, err := strconv.ParseBool(c.DefaultQuery("active", "true"))
		if err != nil {
			respond(responder, errors.ErrValidation("active must be a boolean"))
			return
		}

		stores, err := service.List(c.Request.Context(), activeOnly)
		if err != nil {
			respond(responder, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"stores": stores, "count": len(stores)})
	}
}

func respond(responder *middleware.ErrorResponder, err error) {
	if appErr, ok := err.(*errors.AppError); ok {
		responder.RespondWithAppError(appErr)
		return
	}
	responder.RespondInternalError(err)
}

func statusForCode(code string) int {
	return errors.HTTPStatusForCode(code)
}
