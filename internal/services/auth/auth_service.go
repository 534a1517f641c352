package auth

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/studymart/studymart-api/internal/config"
	"github.com/studymart/studymart-api/internal/db"
	"github.com/studymart/studymart-api/internal/models"
	"github.com/studymart/studymart-api/internal/utils"
)

// AuthService handles registration, login and profile access.
type AuthService struct {
	cfg        *config.Config
	jwtService *utils.JWTService
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg *config.Config) *AuthService {
	return &AuthService{
		cfg:        cfg,
		jwtService: utils.NewJWTService(cfg.JWTSecret),
	}
}

// GetJWTService exposes the JWT service for middleware wiring.
func (s *AuthService) GetJWTService() *utils.JWTService {
	return s.jwtService
}

// Register creates a new user with a campus email address.
func (s *AuthService) Register(c fiber.Ctx) error {
	var requestData struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := c.Bind().Body(&requestData); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid request body"})
	}

	email := strings.ToLower(strings.TrimSpace(requestData.Email))
	if !isCampusEmail(email, s.cfg.EmailDomain) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false, "message": "Only @" + s.cfg.EmailDomain + " email addresses are allowed",
		})
	}

	if len(requestData.Password) < 6 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false, "message": "Password must be at least 6 characters",
		})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(requestData.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("error hashing password: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Server error"})
	}

	user, err := db.CreateUser(email, string(hash))
	if err != nil {
		if db.IsUniqueViolation(err) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "User already exists"})
		}
		log.Printf("error creating user: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Error registering user"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "User registered successfully",
		"data":    fiber.Map{"id": user.ID, "email": user.Email},
	})
}

// Login verifies the credentials and issues a JWT.
func (s *AuthService) Login(c fiber.Ctx) error {
	var requestData struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := c.Bind().Body(&requestData); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid request body"})
	}

	email := strings.ToLower(strings.TrimSpace(requestData.Email))
	if !isCampusEmail(email, s.cfg.EmailDomain) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false, "message": "Only @" + s.cfg.EmailDomain + " email addresses are allowed",
		})
	}

	user, err := db.GetUserByEmail(email)
	if err != nil {
		if err == pgx.ErrNoRows {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "User not found"})
		}
		log.Printf("error loading user: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Server error"})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(requestData.Password)); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid credentials"})
	}

	token, err := s.jwtService.GenerateToken(user.ID.String())
	if err != nil {
		log.Printf("error generating token: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to generate token"})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Login successful",
		"token":   token,
		"user":    fiber.Map{"id": user.ID, "email": user.Email},
	})
}

// GetMyProfile returns the authenticated user's profile.
func (s *AuthService) GetMyProfile(c fiber.Ctx) error {
	userID, err := uuid.Parse(c.Locals("userID").(string))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid user ID"})
	}

	user, err := db.GetUserByID(userID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "User not found"})
		}
		log.Printf("error loading profile: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Server error"})
	}

	return c.JSON(fiber.Map{"success": true, "data": toAPIUser(user)})
}

// UpdateMyProfile overwrites the caller's editable profile fields.
func (s *AuthService) UpdateMyProfile(c fiber.Ctx) error {
	userID, err := uuid.Parse(c.Locals("userID").(string))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid user ID"})
	}

	var requestData struct {
		Name      string `json:"name"`
		RollNo    string `json:"roll_no"`
		Degree    string `json:"degree"`
		Bio       string `json:"bio"`
		Major     string `json:"major"`
		AvatarURL string `json:"avatar_url"`
	}

	if err := c.Bind().Body(&requestData); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid request body"})
	}

	user, err := db.UpdateProfile(userID, requestData.Name, requestData.RollNo,
		requestData.Degree, requestData.Bio, requestData.Major, requestData.AvatarURL)
	if err != nil {
		if err == pgx.ErrNoRows {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "User not found"})
		}
		log.Printf("error updating profile: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Server error"})
	}

	return c.JSON(fiber.Map{"success": true, "data": toAPIUser(user)})
}

// toAPIUser converts a db user into the public API view.
func toAPIUser(u *db.User) models.User {
	return models.User{
		ID:                  u.ID,
		Email:               u.Email,
		Name:                u.Name,
		RollNo:              u.RollNo,
		Degree:              u.Degree,
		Major:               u.Major,
		Bio:                 u.Bio,
		AvatarURL:           u.AvatarURL,
		SustainabilityScore: u.SustainabilityScore,
		CreatedAt:           u.CreatedAt,
	}
}
