package main

import (
	"context"
	"log"
	"os"

	_ "refstack/api/swagger" // swagger docs
	"refstack/internal/database"
	"refstack/internal/handler"
	"refstack/internal/mailer"
	"refstack/internal/middleware"
	"refstack/internal/repository"
	"refstack/internal/service"
	"refstack/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Refstack API
// @version         1.0
// @description     Customer reference management with an approval workflow.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")
	dbSslMode := os.Getenv("DB_SSLMODE")

	if dbHost == "" {
		dbHost = "localhost"
	}
	if dbPort == "" {
		dbPort = "5432"
	}
	if dbUser == "" {
		dbUser = "postgres"
	}
	if dbPassword == "" {
		dbPassword = "postgres"
	}
	if dbName == "" {
		dbName = "postgres"
	}
	if dbSslMode == "" {
		dbSslMode = "disable"
	}

	dsn := "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode

	db, err := database.NewConnection(dsn)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Connected to PostgreSQL successfully.")

	// Approval and invite links are built against the frontend origin
	baseURL := os.Getenv("APP_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:3000"
	}
	managerEmail := os.Getenv("REFERENCE_MANAGER_EMAIL")

	// Outbound mail goes through SES when a sender address is configured,
	// otherwise mails are logged instead of delivered.
	var sender service.Sender = mailer.LogSender{}
	if from := os.Getenv("MAIL_FROM"); from != "" {
		sesSender, err := mailer.NewSESSender(context.Background(), from)
		if err != nil {
			log.Fatalf("SES setup failed: %v", err)
		}
		sender = sesSender
	}

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	referenceRepo := repository.NewReferenceRepository(db)
	companyRepo := repository.NewCompanyRepository(db)
	approvalRepo := repository.NewApprovalRepository(db)
	dealRepo := repository.NewDealRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	orgRepo := repository.NewOrganizationRepository(db)
	favoriteRepo := repository.NewFavoriteRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	approvalService := service.NewApprovalService(referenceRepo, approvalRepo, auditRepo, txManager, sender, baseURL, wsHub.Broadcast)
	referenceService := service.NewReferenceService(referenceRepo, companyRepo, auditRepo, approvalService)
	companyService := service.NewCompanyService(companyRepo)
	dealService := service.NewDealService(dealRepo, referenceRepo, profileRepo, auditRepo, sender, managerEmail, baseURL)
	profileService := service.NewProfileService(profileRepo, orgRepo, txManager)
	inviteService := service.NewInviteService(orgRepo, auditRepo, sender, baseURL)
	favoriteService := service.NewFavoriteService(favoriteRepo, referenceRepo)
	statsService := service.NewStatsService(referenceRepo, approvalRepo, dealRepo)

	// Initialize Handlers
	authHandler := handler.NewAuthHandler(profileService)
	referenceHandler := handler.NewReferenceHandler(referenceService, approvalService, favoriteService)
	approvalHandler := handler.NewApprovalHandler(approvalService)
	companyHandler := handler.NewCompanyHandler(companyService)
	dealHandler := handler.NewDealHandler(dealService)
	adminHandler := handler.NewAdminHandler(statsService, inviteService, auditRepo)

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{baseURL, "http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, middleware.GetJWTSecret())
	})

	// Register API Routes
	api := router.Group("/api")
	authHandler.RegisterRoutes(api)
	referenceHandler.RegisterRoutes(api)
	approvalHandler.RegisterRoutes(api)
	companyHandler.RegisterRoutes(api)
	dealHandler.RegisterRoutes(api)
	adminHandler.RegisterRoutes(api)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server listening on :%s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
