package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "freightledger/api/swagger" // swagger docs
	"freightledger/internal/clock"
	"freightledger/internal/config"
	"freightledger/internal/database"
	"freightledger/internal/handler"
	"freightledger/internal/middleware"
	"freightledger/internal/repository"
	"freightledger/internal/seed"
	"freightledger/internal/service"
	"freightledger/internal/websocket"
	"freightledger/pkg/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// @title           Freight Ledger API
// @version         1.0
// @description     Logistics order ledger with profit statistics and live updates.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	boot := bootstrapLogger()

	cfg, err := config.Load()
	if err != nil {
		boot.Fatal("load config", zap.Error(err))
	}
	if err := logger.InitLogger(cfg.LogLevel, cfg.LogFormat); err != nil {
		boot.Fatal("init logger", zap.Error(err))
	}
	defer func() { _ = zap.L().Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	orderRepo, err := openOrderStore(cfg)
	if err != nil {
		zap.L().Fatal("open order store", zap.String("driver", cfg.StoreDriver), zap.Error(err))
	}

	clk := clock.NewSystem()
	loc := cfg.Location()

	users, err := service.SeedUsers(cfg.SeedPassword)
	if err != nil {
		zap.L().Fatal("seed users", zap.Error(err))
	}

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run(ctx)

	// Set up dependencies (Repository -> Service -> Handler)
	authService := service.NewAuthService(cfg.JWTSecret, cfg.TokenTTL, clk, users)
	orderService := service.NewOrderService(orderRepo, clk, loc, wsHub)
	statisticsService := service.NewStatisticsService(orderRepo, clk, loc)

	if cfg.SeedOrders > 0 {
		gen := seed.NewGenerator(uint64(time.Now().UnixNano()), clk.Now().In(loc), cfg.SeedAllowSameCity)
		if err := seed.Populate(ctx, orderRepo, gen, cfg.SeedOrders); err != nil {
			zap.L().Fatal("seed orders", zap.Error(err))
		}
	}

	// Initialize Handlers
	authHandler := handler.NewAuthHandler(authService)
	catalogHandler := handler.NewCatalogHandler(authService)
	orderHandler := handler.NewOrderHandler(orderService, authService, cfg.DefaultPageSize, cfg.MaxPageSize)
	statisticsHandler := handler.NewStatisticsHandler(statisticsService, authService)

	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(middleware.RequestLogger(), middleware.Recovery())

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))
	router.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/ws"})))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", handler.Health)
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, authService, c)
	})

	api := router.Group("/api")
	authHandler.RegisterRoutes(api)
	catalogHandler.RegisterRoutes(api)
	orderHandler.RegisterRoutes(api)
	statisticsHandler.RegisterRoutes(api)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		zap.L().Info("server listening",
			zap.String("addr", srv.Addr),
			zap.String("store", cfg.StoreDriver),
			zap.String("timezone", loc.String()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zap.L().Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("graceful shutdown", zap.Error(err))
	}
}

// bootstrapLogger installs a console logger so configuration errors are
// visible before the configured logger exists.
func bootstrapLogger() *zap.Logger {
	boot, err := logger.New("info", "console")
	if err != nil {
		panic(err)
	}
	zap.ReplaceGlobals(boot)
	return boot
}

func openOrderStore(cfg *config.Config) (repository.OrderRepository, error) {
	if cfg.StoreDriver == config.StoreMemory {
		return repository.NewMemoryOrderRepository(), nil
	}
	db, err := database.NewConnection(cfg.StoreDriver, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	return repository.NewOrderRepository(db), nil
}
