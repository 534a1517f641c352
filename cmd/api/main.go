package main

import (
	"log"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"

	"github.com/studymart/studymart-api/internal/config"
	"github.com/studymart/studymart-api/internal/db"
	"github.com/studymart/studymart-api/internal/services/auth"
	"github.com/studymart/studymart-api/internal/services/conversation"
	"github.com/studymart/studymart-api/internal/services/item"
	"github.com/studymart/studymart-api/internal/services/message"
	"github.com/studymart/studymart-api/internal/services/rating"
	"github.com/studymart/studymart-api/internal/services/request"
	"github.com/studymart/studymart-api/internal/services/upload"
	ws "github.com/studymart/studymart-api/internal/websocket"
)

func main() {
	cfg := config.LoadConfig()

	if err := db.InitDB(cfg); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}
	defer db.CloseDB()

	app := fiber.New(fiber.Config{
		AppName:      "StudyMart API",
		ErrorHandler: errorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowCredentials: false,
	}))

	authService := auth.NewAuthService(cfg)

	manager := ws.NewManager()
	defer manager.Shutdown()

	// The realtime endpoint lives on its own listener: message delivery
	// keeps working even while the HTTP API is saturated.
	wsServer := ws.NewServer(":"+cfg.WSPort, manager, authService.GetJWTService())
	go func() {
		log.Printf("websocket server listening on %s", wsServer.Addr)
		if err := wsServer.ListenAndServe(); err != nil {
			log.Fatalf("websocket server failed: %v", err)
		}
	}()

	authService.SetupRoutes(app)
	item.NewItemService(cfg).SetupRoutes(app)
	request.NewRequestService(cfg).SetupRoutes(app)
	conversation.NewConversationService(cfg).SetupRoutes(app)
	message.NewMessageService(cfg, manager).SetupRoutes(app)
	rating.NewRatingService(cfg).SetupRoutes(app)
	upload.NewUploadService(cfg).SetupRoutes(app)

	log.Printf("StudyMart API listening on port %s", cfg.Port)
	log.Fatal(app.Listen(":" + cfg.Port))
}

func errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"message": err.Error(),
	})
}
