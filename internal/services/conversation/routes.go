package conversation

import (
	"github.com/gofiber/fiber/v3"
	"github.com/studymart/studymart-api/internal/middleware"
)

// SetupRoutes registers the conversation directory routes.
func (s *ConversationService) SetupRoutes(app *fiber.App) {
	api := app.Group("/api/conversations")
	api.Use(middleware.AuthMiddleware(s.jwtService))

	api.Post("/", s.CreateConversation)
	api.Get("/", s.GetUserConversations)
	api.Get("/request/:requestId", s.GetConversationByRequest)
}
