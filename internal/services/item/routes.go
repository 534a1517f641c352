package item

import (
	"github.com/gofiber/fiber/v3"
	"github.com/studymart/studymart-api/internal/middleware"
)

// SetupRoutes registers the item catalog routes.
func (s *ItemService) SetupRoutes(app *fiber.App) {
	api := app.Group("/api/items")

	// Browsing the catalog is public.
	api.Get("/", s.GetItems)
	api.Get("/:id", s.GetItemByID)

	authRequired := middleware.AuthMiddleware(s.jwtService)
	api.Post("/", s.CreateItem, authRequired)
	api.Delete("/:id", s.DeleteItem, authRequired)
}
