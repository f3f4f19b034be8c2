package main

import (
	"database/sql"
	"time"

	"github.com/apex/log"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Sreejasudhakaran/veriscope-ai-backend/config"
	"github.com/Sreejasudhakaran/veriscope-ai-backend/database"
	"github.com/Sreejasudhakaran/veriscope-ai-backend/handlers"
	"github.com/Sreejasudhakaran/veriscope-ai-backend/metrics"
	"github.com/Sreejasudhakaran/veriscope-ai-backend/middleware"
	"github.com/Sreejasudhakaran/veriscope-ai-backend/openai"
)

func main() {
	cfg := config.Load()

	db, err := database.NewDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	log.Info("Initializing database schema...")
	if err := database.InitializeSchema(db); err != nil {
		log.Fatalf("Failed to initialize database schema: %v", err)
	}

	metrics.Register()

	router := setupRouter(db, cfg)

	log.Infof("Transparency backend starting on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func setupRouter(db *sql.DB, cfg *config.Config) *gin.Engine {
	router := gin.Default()
	router.SetTrustedProxies(cfg.TrustedProxies)

	router.Use(cors.New(cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		AllowOrigins:     []string{"*"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	router.Use(middleware.SecurityHeaders())

	products := database.NewProductService(db)
	questions := database.NewQuestionService(db)
	reports := database.NewReportService(db)
	users := database.NewUserService(db)

	var aiClient *openai.Client
	if cfg.OpenAIAPIKey != "" {
		aiClient = openai.NewClient(openai.DefaultEndpoint, cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.AITimeout)
	} else {
		log.Warn("OPENAI_API_KEY not set, AI gateway will serve local fallbacks only")
	}

	h := handlers.NewHandlers(products, questions, reports, aiClient)

	router.GET("/health", h.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Public API routes
	api := router.Group("/api")
	{
		api.GET("/products", h.ListProducts)
		api.GET("/products/search", h.SearchProducts)
		api.GET("/products/:id", h.GetProduct)
		api.GET("/questions/product/:productId", h.ListQuestions)
	}

	// Protected API routes
	protected := router.Group("/api")
	protected.Use(middleware.AuthMiddleware(cfg.JWTSecret, users))
	{
		protected.POST("/products", h.CreateProduct)
		protected.PUT("/products/:id", h.UpdateProduct)
		protected.DELETE("/products/:id", h.DeleteProduct)

		protected.POST("/questions/generate", h.GenerateQuestions)
		protected.PUT("/questions/:id/answer", h.AnswerQuestion)

		protected.POST("/reports", h.CreateReport)
		protected.GET("/reports", h.ListReports)
		protected.GET("/reports/stats/overview", h.GetReportStats)
		protected.GET("/reports/:id", h.GetReport)
		protected.PUT("/reports/:id", h.UpdateReport)
		protected.DELETE("/reports/:id", h.DeleteReport)
	}

	return router
}
