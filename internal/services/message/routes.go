package message

import (
	"github.com/gofiber/fiber/v3"
	"github.com/studymart/studymart-api/internal/middleware"
)

// SetupRoutes registers the message routes.
func (s *MessageService) SetupRoutes(app *fiber.App) {
	api := app.Group("/api/messages")
	api.Use(middleware.AuthMiddleware(s.jwtService))

	api.Post("/", s.SendMessage)
	api.Get("/:conversationId", s.GetMessages)
}
