package request

import (
	"github.com/gofiber/fiber/v3"
	"github.com/studymart/studymart-api/internal/middleware"
)

// SetupRoutes registers the request ledger routes.
func (s *RequestService) SetupRoutes(app *fiber.App) {
	api := app.Group("/api/requests")
	api.Use(middleware.AuthMiddleware(s.jwtService))

	api.Post("/", s.CreateRequest)
	api.Get("/incoming", s.GetIncomingRequests)
	api.Get("/outgoing", s.GetOutgoingRequests)
	api.Put("/:id", s.UpdateRequestStatus)
}
