package auth

import (
	"github.com/gofiber/fiber/v3"
	"github.com/studymart/studymart-api/internal/middleware"
)

// SetupRoutes registers the user routes.
func (s *AuthService) SetupRoutes(app *fiber.App) {
	api := app.Group("/api/users")

	api.Post("/register", s.Register)
	api.Post("/login", s.Login)

	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(s.jwtService))
	protected.Get("/me", s.GetMyProfile)
	protected.Put("/me", s.UpdateMyProfile)
}
