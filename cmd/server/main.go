package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/robklaiss/truco/internal/api"
	"github.com/robklaiss/truco/internal/config"
	"github.com/robklaiss/truco/internal/game"
	"github.com/robklaiss/truco/internal/repo"
	"github.com/robklaiss/truco/internal/service"
	"github.com/robklaiss/truco/pkg/logger"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "config.yaml", "path to config file")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 1. Load Config
	config.LoadConfig(configPath)

	// 2. Init Logger
	logger.InitLogger(config.GlobalConfig.Server.Mode)
	defer logger.Sync()

	logger.Log.Info("Starting server...", zap.String("mode", config.GlobalConfig.Server.Mode))

	// 3. Load Card Catalog. A bad catalog is fatal: every rule depends on it.
	catalog, err := loadCatalog()
	if err != nil {
		logger.Log.Fatal("failed to load card catalog", zap.Error(err))
	}
	logger.Log.Info("Card catalog loaded", zap.Int("cards", catalog.Size()))

	// 4. Init DB & Redis
	repo.InitDB()
	repo.InitRedis()

	// 4.5 Init Services
	services := service.NewContainer(repo.DB, repo.RDB, catalog)
	if err := services.Start(ctx); err != nil {
		logger.Log.Fatal("failed to start services", zap.Error(err))
	}

	// 5. Init Router
	if config.GlobalConfig.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()

	// Register Routes
	api.RegisterRoutes(r, services)

	// 6. Start Server
	addr := fmt.Sprintf(":%s", config.GlobalConfig.Server.Port)
	logger.Log.Info("Server listening", zap.String("addr", addr))
	if err := r.Run(addr); err != nil {
		logger.Log.Fatal("Server failed to start", zap.Error(err))
	}
}

func loadCatalog() (*game.Catalog, error) {
	if path := config.GlobalConfig.Game.CardsFile; path != "" {
		return game.LoadCatalogFile(path)
	}
	return game.DefaultCatalog()
}
