package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"earn-quest-service/handlers"
	"earn-quest-service/middleware"
	"earn-quest-service/models"
	"earn-quest-service/services"
	"earn-quest-service/utils"
	"earn-quest-service/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 50 * 1024 * 1024, // 50MB — proof artifacts only
	})

	// 🔐❗ GLOBAL: Only Gateway requests allowed — no exceptions
	app.Use(middleware.GatewayAuthMiddleware())

	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}
	allowedOriginsString := strings.Join(allowedOriginsList, ",")

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOriginsString,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, User-Agent, Cache-Control, X-Service-Token, X-User-ID, X-User-Roles",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	if err := utils.InitR2(); err != nil {
		log.Fatal("failed to initialize R2 client:", err)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.Quest{},
		&models.QuestMetadata{},
		&models.Submission{},
		&models.EscrowInfo{},
		&models.TokenAccount{},
		&models.SecurityState{},
		&models.AdminAccount{},
		&models.UnpauseApproval{},
		&models.PlatformStats{},
		&models.CreatorStats{},
		&models.UserProgress{},
		&models.UserBadge{},
		&models.QuestEvent{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	ledger := services.NewTokenLedger()
	eventService := services.NewEventService(db)
	securityService := services.NewSecurityService(db, ledger, eventService)

	initialAdmin := os.Getenv("PLATFORM_ADMIN")
	if initialAdmin == "" {
		log.Fatal("PLATFORM_ADMIN environment variable not set")
	}
	if err := securityService.EnsureState(initialAdmin); err != nil {
		log.Fatal("failed to seed security state:", err)
	}

	statsService := services.NewStatsService(db)
	progressionService := services.NewProgressionService(db, securityService)
	questService := services.NewQuestService(db, securityService, statsService, eventService)
	escrowService := services.NewEscrowService(db, securityService, ledger, eventService)
	submissionService := services.NewSubmissionService(db, securityService, escrowService, statsService, progressionService, eventService)
	payoutService := services.NewPayoutService(db, securityService, ledger, escrowService, submissionService, statsService, progressionService, eventService)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	notifyWorker := workers.NewNotifyWorker(eventService)
	notifyWorker.Start(ctx)

	auditWorker := workers.NewEscrowAuditWorker(db, ledger)
	auditWorker.Start(ctx)

	questService.StartDeadlineScheduler()

	handlers.SetupQuestRoutes(app, questService)
	handlers.SetupSubmissionRoutes(app, submissionService, payoutService)
	handlers.SetupEscrowRoutes(app, escrowService)
	handlers.SetupSecurityRoutes(app, securityService)
	handlers.SetupStatsRoutes(app, statsService, progressionService, securityService)
	handlers.SetupEventRoutes(app, eventService)

	go func() {
		if err := app.Listen(":5300"); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Println("✅ Server running on http://localhost:5300")
	log.Println("✅ Notify Worker running")
	log.Println("✅ Escrow Audit Worker running")
	log.Println("✅ Deadline scheduler running (every 1m)")
	log.Println("✅ GatewayAuthMiddleware enforced globally — all requests must come from Gateway")
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
