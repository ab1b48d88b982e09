package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/stockledger/inventory-service/internal/application"
	"github.com/stockledger/inventory-service/internal/domain"
	mongoRepo "github.com/stockledger/inventory-service/internal/infrastructure/mongodb"
	"github.com/stockledger/inventory-service/pkg/events"
	"github.com/stockledger/inventory-service/pkg/kafka"
	"github.com/stockledger/inventory-service/pkg/logging"
	"github.com/stockledger/inventory-service/pkg/metrics"
	"github.com/stockledger/inventory-service/pkg/middleware"
	"github.com/stockledger/inventory-service/pkg/mongodb"
	"github.com/stockledger/inventory-service/pkg/resilience"
)

const serviceName = "inventory-service"

func main() {
	logConfig := logging.DefaultConfig(serviceName)
	logger := logging.New(logConfig)

	logger.Info("Starting inventory-service API")

	config := loadConfig()
	ctx := context.Background()

	// Prometheus metrics
	m := metrics.New(serviceName)

	// MongoDB
	mongoClient, err := mongodb.NewClient(ctx, config.MongoDB)
	if err != nil {
		logger.WithError(err).Error("Failed to connect to MongoDB")
		os.Exit(1)
	}
	defer mongoClient.Close(ctx)
	logger.Info("Connected to MongoDB", "database", config.MongoDB.Database)

	// Kafka producer behind a circuit breaker. Publishing is best effort, so
	// the service still comes up when Kafka is disabled or unreachable.
	var publisher application.EventPublisher = application.NoopPublisher{}
	if config.KafkaEnabled {
		producer := kafka.NewProducer(config.Kafka)
		defer producer.Close()

		breaker := resilience.NewCircuitBreaker(
			resilience.DefaultCircuitBreakerConfig("kafka-publisher"), logger.Logger)
		publisher = application.NewKafkaEventPublisher(producer, breaker, m, logger)
		logger.Info("Kafka producer initialized", "brokers", config.Kafka.Brokers)
	} else {
		logger.Info("Kafka publishing disabled")
	}

	eventFactory := events.NewFactory(events.Source)

	// Repositories
	itemRepo, err := mongoRepo.NewItemRepository(mongoClient.Database(), m)
	if err != nil {
		logger.WithError(err).Error("Failed to initialize item repository")
		os.Exit(1)
	}
	txnRepo, err := mongoRepo.NewTransactionRepository(mongoClient.Database(), m)
	if err != nil {
		logger.WithError(err).Error("Failed to initialize transaction repository")
		os.Exit(1)
	}
	branchRepo := mongoRepo.NewBranchRepository(mongoClient.Database(), m)

	// Application services
	engine := application.NewReconciliationService(
		itemRepo, txnRepo, mongoRepo.NewTxRunner(mongoClient), publisher, eventFactory, m, logger)
	bulkService := application.NewBulkService(engine, m, logger)
	itemService := application.NewItemService(itemRepo, branchRepo, publisher, eventFactory, m, logger)
	branchService := application.NewBranchService(branchRepo, logger)

	// Router
	router := gin.New()
	middleware.Setup(router, middleware.DefaultConfig(serviceName, logger.Logger))
	router.Use(middleware.Metrics(m))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": serviceName})
	})
	router.GET("/ready", func(c *gin.Context) {
		if err := mongoClient.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "reason": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	router.GET("/metrics", middleware.MetricsEndpoint(m))

	api := router.Group("/api/v1")

	txns := api.Group("/transactions")
	{
		txns.POST("", recordTransactionHandler(engine, logger))
		txns.POST("/bulk", bulkSubmitHandler(bulkService, logger))
		txns.GET("", listTransactionsHandler(engine, logger))
		txns.GET("/pending", listPendingHandler(engine, logger))
		txns.GET("/:txnId", getTransactionHandler(engine, logger))
		txns.PUT("/:txnId", editTransactionHandler(engine, logger))
		txns.DELETE("/:txnId", deleteTransactionHandler(engine, logger))
		txns.POST("/:txnId/approve", approveTransactionHandler(engine, logger))
		txns.POST("/:txnId/reject", rejectTransactionHandler(engine, logger))
	}

	items := api.Group("/items")
	{
		items.POST("", createItemHandler(itemService, logger))
		items.GET("", listItemsHandler(itemService, logger))
		items.GET("/low-stock", listLowStockHandler(itemService, logger))
		items.GET("/:itemId", getItemHandler(itemService, logger))
		items.GET("/:itemId/placement", getItemPlacementHandler(itemService, logger))
		items.PUT("/:itemId/placement", relocateItemHandler(itemService, logger))
	}

	branches := api.Group("/branches")
	{
		branches.POST("", createBranchHandler(branchService, logger))
		branches.GET("", listBranchesHandler(branchService, logger))
		branches.GET("/:branchId", getBranchHandler(branchService, logger))
		branches.GET("/:branchId/layout", getBranchLayoutHandler(branchService, logger))
		branches.PUT("/:branchId/sections", setCustomSectionsHandler(branchService, logger))
		branches.DELETE("/:branchId/sections/:shelf", clearCustomSectionsHandler(branchService, logger))
	}

	srv := &http.Server{
		Addr:         config.ServerAddr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("Server error")
		}
	}()
	logger.Info("Server started", "addr", config.ServerAddr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	logger.Info("Server stopped")
}

// Config holds application configuration
type Config struct {
	ServerAddr   string
	MongoDB      *mongodb.Config
	Kafka        *kafka.Config
	KafkaEnabled bool
}

func loadConfig() *Config {
	mongoConfig := mongodb.DefaultConfig()
	mongoConfig.URI = getEnv("MONGODB_URI", mongoConfig.URI)
	mongoConfig.Database = getEnv("MONGODB_DATABASE", mongoConfig.Database)

	kafkaConfig := kafka.DefaultConfig()
	kafkaConfig.Brokers = []string{getEnv("KAFKA_BROKERS", "localhost:9092")}

	return &Config{
		ServerAddr:   getEnv("SERVER_ADDR", ":8080"),
		MongoDB:      mongoConfig,
		Kafka:        kafkaConfig,
		KafkaEnabled: getEnv("KAFKA_ENABLED", "true") == "true",
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseEntryDate parses the optional entry date of a submission. A bare
// calendar date is combined with the current clock time so same-day entries
// still order naturally; an empty value means "now" and returns zero.
func parseEntryDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return ts, nil
	}
	day, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want RFC 3339 or YYYY-MM-DD", value)
	}
	now := time.Now().UTC()
	return time.Date(day.Year(), day.Month(), day.Day(),
		now.Hour(), now.Minute(), now.Second(), 0, time.UTC), nil
}

// Transaction handlers

func recordTransactionHandler(engine *application.ReconciliationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req struct {
			ItemID         string `json:"itemId" binding:"required"`
			Type           string `json:"type" binding:"required"`
			Quantity       int    `json:"quantity" binding:"required,min=1"`
			TargetBranchID string `json:"targetBranchId"`
			Personnel      string `json:"personnel" binding:"required"`
			OriginOrSource string `json:"originOrSource" binding:"required"`
			Notes          string `json:"notes"`
			Date           string `json:"date"`
			RequestedBy    string `json:"requestedBy" binding:"required"`
			RequestedRole  string `json:"requestedRole" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			responder.RespondBadRequest(err.Error())
			return
		}

		occurredAt, err := parseEntryDate(req.Date)
		if err != nil {
			responder.RespondBadRequest(err.Error())
			return
		}

		cmd := application.RecordTransactionCommand{
			ItemID:         req.ItemID,
			Type:           domain.TransactionType(req.Type),
			Quantity:       req.Quantity,
			TargetBranchID: req.TargetBranchID,
			Personnel:      req.Personnel,
			OriginOrSource: req.OriginOrSource,
			Notes:          req.Notes,
			RequestedBy:    req.RequestedBy,
			RequestedRole:  domain.ActorRole(req.RequestedRole),
			OccurredAt:     occurredAt,
		}

		txn, err := engine.Record(c.Request.Context(), cmd)
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		status := http.StatusCreated
		if txn.Status == string(domain.StatusPending) {
			status = http.StatusAccepted
		}
		c.JSON(status, txn)
	}
}

func bulkSubmitHandler(service *application.BulkService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req struct {
			Type string `json:"type" binding:"required"`
			Rows []struct {
				ItemID   string `json:"itemId"`
				Quantity int    `json:"quantity"`
			} `json:"rows" binding:"required"`
			Personnel      string `json:"personnel" binding:"required"`
			OriginOrSource string `json:"originOrSource" binding:"required"`
			Date           string `json:"date"`
			RequestedBy    string `json:"requestedBy" binding:"required"`
			RequestedRole  string `json:"requestedRole" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			responder.RespondBadRequest(err.Error())
			return
		}

		occurredAt, err := parseEntryDate(req.Date)
		if err != nil {
			responder.RespondBadRequest(err.Error())
			return
		}

		rows := make([]application.BulkRow, 0, len(req.Rows))
		for _, row := range req.Rows {
			rows = append(rows, application.BulkRow{ItemID: row.ItemID, Quantity: row.Quantity})
		}

		result, err := service.SubmitBatch(c.Request.Context(), application.BulkSubmitCommand{
			Rows:           rows,
			Type:           domain.TransactionType(req.Type),
			Personnel:      req.Personnel,
			OriginOrSource: req.OriginOrSource,
			RequestedBy:    req.RequestedBy,
			RequestedRole:  domain.ActorRole(req.RequestedRole),
			OccurredAt:     occurredAt,
		})
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

func listTransactionsHandler(engine *application.ReconciliationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		filter := domain.TransactionFilter{
			BranchID: c.Query("branchId"),
			ItemID:   c.Query("itemId"),
			Type:     domain.TransactionType(c.Query("type")),
			Status:   domain.TransactionStatus(c.Query("status")),
			Limit:    50,
		}
		if limitStr := c.Query("limit"); limitStr != "" {
			if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 {
				if limit > 200 {
					limit = 200
				}
				filter.Limit = int64(limit)
			}
		}

		txns, err := engine.List(c.Request.Context(), filter)
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"transactions": txns, "total": len(txns)})
	}
}

func listPendingHandler(engine *application.ReconciliationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		txns, err := engine.ListPending(c.Request.Context())
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"transactions": txns, "total": len(txns)})
	}
}

func getTransactionHandler(engine *application.ReconciliationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		txn, err := engine.Get(c.Request.Context(), c.Param("txnId"))
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, txn)
	}
}

func editTransactionHandler(engine *application.ReconciliationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req struct {
			ItemID         string `json:"itemId" binding:"required"`
			Quantity       int    `json:"quantity" binding:"required,min=1"`
			Personnel      string `json:"personnel" binding:"required"`
			OriginOrSource string `json:"originOrSource" binding:"required"`
			Notes          string `json:"notes"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			responder.RespondBadRequest(err.Error())
			return
		}

		txn, err := engine.Edit(c.Request.Context(), c.Param("txnId"), application.EditTransactionCommand{
			ItemID:         req.ItemID,
			Quantity:       req.Quantity,
			Personnel:      req.Personnel,
			OriginOrSource: req.OriginOrSource,
			Notes:          req.Notes,
		})
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, txn)
	}
}

func deleteTransactionHandler(engine *application.ReconciliationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		if err := engine.Delete(c.Request.Context(), c.Param("txnId")); err != nil {
			responder.RespondWithError(err)
			return
		}

		c.Status(http.StatusNoContent)
	}
}

func approveTransactionHandler(engine *application.ReconciliationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req struct {
			ApprovedBy string `json:"approvedBy" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			responder.RespondBadRequest(err.Error())
			return
		}

		txn, err := engine.Approve(c.Request.Context(), c.Param("txnId"), req.ApprovedBy)
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, txn)
	}
}

func rejectTransactionHandler(engine *application.ReconciliationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req struct {
			RejectedBy string `json:"rejectedBy" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			responder.RespondBadRequest(err.Error())
			return
		}

		txn, err := engine.Reject(c.Request.Context(), c.Param("txnId"), req.RejectedBy)
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, txn)
	}
}

// Item handlers

func createItemHandler(service *application.ItemService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req struct {
			SKU          string `json:"sku" binding:"required"`
			Name         string `json:"name" binding:"required"`
			Quantity     int    `json:"quantity" binding:"min=0"`
			MinThreshold int    `json:"minThreshold" binding:"min=0"`
			Shelf        int    `json:"shelf" binding:"required,min=1"`
			Section      int    `json:"section" binding:"required,min=1"`
			BranchID     string `json:"branchId" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			responder.RespondBadRequest(err.Error())
			return
		}

		item, err := service.Create(c.Request.Context(), application.CreateItemCommand{
			SKU:          req.SKU,
			Name:         req.Name,
			Quantity:     req.Quantity,
			MinThreshold: req.MinThreshold,
			Shelf:        req.Shelf,
			Section:      req.Section,
			BranchID:     req.BranchID,
		})
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusCreated, item)
	}
}

func listItemsHandler(service *application.ItemService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		items, err := service.List(c.Request.Context(), c.Query("branchId"))
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"items": items, "total": len(items)})
	}
}

func listLowStockHandler(service *application.ItemService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		items, err := service.ListLowStock(c.Request.Context())
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"items": items, "total": len(items)})
	}
}

func getItemHandler(service *application.ItemService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		item, err := service.Get(c.Request.Context(), c.Param("itemId"))
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, item)
	}
}

func getItemPlacementHandler(service *application.ItemService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		item, err := service.Get(c.Request.Context(), c.Param("itemId"))
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"itemId":     item.ID,
			"branchId":   item.BranchID,
			"shelf":      item.Shelf,
			"shelfLabel": domain.ShelfLabel(item.Shelf),
			"section":    item.Section,
			"placement":  item.Placement,
		})
	}
}

func relocateItemHandler(service *application.ItemService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req struct {
			Shelf    int    `json:"shelf" binding:"required,min=1"`
			Section  int    `json:"section" binding:"required,min=1"`
			BranchID string `json:"branchId" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			responder.RespondBadRequest(err.Error())
			return
		}

		item, err := service.Relocate(c.Request.Context(), c.Param("itemId"), application.RelocateItemCommand{
			Shelf:    req.Shelf,
			Section:  req.Section,
			BranchID: req.BranchID,
		})
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, item)
	}
}

// Branch handlers

func createBranchHandler(service *application.BranchService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req struct {
			Name          string `json:"name" binding:"required"`
			Address       string `json:"address"`
			TotalShelves  int    `json:"totalShelves" binding:"required,min=1"`
			TotalSections int    `json:"totalSections" binding:"required,min=1"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			responder.RespondBadRequest(err.Error())
			return
		}

		branch, err := service.Create(c.Request.Context(), application.CreateBranchCommand{
			Name:          req.Name,
			Address:       req.Address,
			TotalShelves:  req.TotalShelves,
			TotalSections: req.TotalSections,
		})
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusCreated, branch)
	}
}

func listBranchesHandler(service *application.BranchService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		branches, err := service.List(c.Request.Context())
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"branches": branches, "total": len(branches)})
	}
}

func getBranchHandler(service *application.BranchService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		branch, err := service.Get(c.Request.Context(), c.Param("branchId"))
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, branch)
	}
}

func getBranchLayoutHandler(service *application.BranchService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		layout, err := service.Layout(c.Request.Context(), c.Param("branchId"))
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"shelves": layout, "total": len(layout)})
	}
}

func setCustomSectionsHandler(service *application.BranchService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req struct {
			Shelf    int `json:"shelf" binding:"required,min=1"`
			Sections int `json:"sections" binding:"required,min=1"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			responder.RespondBadRequest(err.Error())
			return
		}

		branch, err := service.SetCustomSections(c.Request.Context(), c.Param("branchId"), req.Shelf, req.Sections)
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, branch)
	}
}

func clearCustomSectionsHandler(service *application.BranchService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		shelf, err := strconv.Atoi(c.Param("shelf"))
		if err != nil || shelf < 1 {
			responder.RespondBadRequest("shelf must be a positive number")
			return
		}

		branch, err := service.ClearCustomSections(c.Request.Context(), c.Param("branchId"), shelf)
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, branch)
	}
}
