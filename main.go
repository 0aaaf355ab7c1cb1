package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/heladeria/order-form-api/config"
	"github.com/heladeria/order-form-api/controllers"
	"github.com/heladeria/order-form-api/metrics"
	"github.com/heladeria/order-form-api/middleware"
	"github.com/heladeria/order-form-api/models"
	"github.com/heladeria/order-form-api/services"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	config.InitLogger(cfg)
	log.Info().Str("port", cfg.Port).Msg("Starting Heladeria order form API")

	// Connect to the flavor catalog
	if err := config.ConnectDatabase(cfg.DatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}

	db := config.GetDB()
	if err := db.AutoMigrate(&models.Flavor{}); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate database")
	}
	services.InitFlavorService(db)
	log.Info().Msg("Database migration completed successfully")

	ctx := context.Background()

	if _, err := services.InitSheetsService(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize Google Sheets client")
	}
	log.Info().
		Str("spreadsheet_id", cfg.GoogleSheetID).
		Str("range", cfg.GoogleSheetRange).
		Dur("timeout", cfg.SheetsTimeout).
		Msg("Google Sheets client ready")

	if cfg.ReceiptsEnabled() {
		s3Service, err := services.NewS3Service(ctx, cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize S3 service")
		}
		services.InitReceiptService(s3Service)
		log.Info().Str("bucket", cfg.AWSS3Bucket).Msg("Receipt uploads enabled")
	}

	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		log.Fatal().Err(err).Msg("Failed to register metrics")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           setupRouter(cfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("address", srv.Addr).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
		os.Exit(1)
	}
	log.Info().Msg("Server stopped gracefully")
}

// setupRouter wires middleware and routes for the given configuration
func setupRouter(cfg *config.Config) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.HandleMethodNotAllowed = true

	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.PrometheusMetrics())
	router.Use(cors.New(corsConfig(cfg)))

	// Routes used by the order form
	api := router.Group("/api")
	{
		// Every method reaches the handler so non-POST gets the JSON 405
		api.Any("/submit", controllers.SubmitOrder)
		api.GET("/fetchData", controllers.FetchFlavors)
	}

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.GET("/database/status", databaseStatus)

		v1.Any("/orders", controllers.SubmitOrder)
		v1.GET("/flavors", controllers.ListFlavors)
		v1.POST("/receipts", controllers.UploadReceipt)

		if cfg.FlavorAdminEnabled() {
			ensureValidToken, err := middleware.EnsureValidToken(cfg)
			if err != nil {
				log.Error().Err(err).Msg("Flavor admin routes disabled")
			} else {
				admin := v1.Group("/flavors", ensureValidToken, middleware.RequireScope(middleware.ScopeWriteFlavors))
				admin.POST("", controllers.CreateFlavor)
				admin.DELETE("/:id", controllers.DeleteFlavor)
			}
		}
	}

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}

func corsConfig(cfg *config.Config) cors.Config {
	corsCfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders: []string{middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}

	origins := cfg.CORSAllowedOrigins
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = origins
	}
	return corsCfg
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Heladeria order form API is running",
	})
}

// databaseStatus checks catalog connectivity and reports how many flavors are on offer
func databaseStatus(c *gin.Context) {
	db := config.GetDB()
	if db == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Database is not configured",
			},
		})
		return
	}

	sqlDB, err := db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to get database instance",
			},
		})
		return
	}

	if err := sqlDB.PingContext(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_CONNECTION_ERROR",
				"message": "Database connection failed",
			},
		})
		return
	}

	var flavors int64
	if err := db.WithContext(c.Request.Context()).Model(&models.Flavor{}).Count(&flavors).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_QUERY_ERROR",
				"message": "Failed to count flavors",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Database connected",
		"flavors": flavors,
	})
}
