package rating

import (
	"github.com/gofiber/fiber/v3"
	"github.com/studymart/studymart-api/internal/middleware"
)

// SetupRoutes registers the rating routes. Reading a user's ratings is
// public; submitting one requires authentication.
func (s *RatingService) SetupRoutes(app *fiber.App) {
	api := app.Group("/api/ratings")

	api.Get("/:userId", s.GetUserRatings)
	api.Post("/", s.CreateRating, middleware.AuthMiddleware(s.jwtService))
}
