package main

import (
	"github.com/gin-gonic/gin"
	orderAPI "github.com/ridloal/inventory-order-service/internal/order/api"
	orderRepo "github.com/ridloal/inventory-order-service/internal/order/repository"
	orderService "github.com/ridloal/inventory-order-service/internal/order/service"
	"github.com/ridloal/inventory-order-service/internal/platform/config"
	"github.com/ridloal/inventory-order-service/internal/platform/database"
	"github.com/ridloal/inventory-order-service/internal/platform/logger"
	productAPI "github.com/ridloal/inventory-order-service/internal/product/api"
	productRepo "github.com/ridloal/inventory-order-service/internal/product/repository"
	productService "github.com/ridloal/inventory-order-service/internal/product/service"
)

func main() {
	// Load Config
	dbCfg := config.LoadDBConfig()
	serverCfg := config.LoadServerConfig("8080")
	invCfg := config.LoadInventoryConfig()

	logger.Info("Starting Inventory & Order Service...")

	// Setup Database
	db, err := database.Connect(dbCfg.DSN)
	if err != nil {
		logger.Error("Failed to connect to database", err)
		return
	}
	defer db.Close()

	if err := database.RunMigrations(dbCfg.DSN); err != nil {
		logger.Error("Failed to run migrations", err)
		return
	}

	// Setup Dependencies
	pRepository := productRepo.NewPostgresProductRepository(db)
	pService := productService.NewProductService(pRepository, invCfg.LowStockThreshold, invCfg.LowStockSweepSpec)
	pHandler := productAPI.NewProductHandler(pService)

	oRepository := orderRepo.NewPostgresOrderRepository(db)
	oService := orderService.NewOrderService(oRepository)
	oHandler := orderAPI.NewOrderHandler(oService)

	// Setup Gin Router
	router := gin.Default()

	apiV1 := router.Group("/api/v1")
	pHandler.RegisterRoutes(apiV1)
	oHandler.RegisterRoutes(apiV1)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "healthy"})
	})

	logger.Info("Inventory & Order Service running on port " + serverCfg.Port)
	if err := router.Run(serverCfg.Port); err != nil {
		logger.Error("Failed to run server", err)
	}
}
