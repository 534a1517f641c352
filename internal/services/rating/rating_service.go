package rating

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/studymart/studymart-api/internal/config"
	"github.com/studymart/studymart-api/internal/db"
	"github.com/studymart/studymart-api/internal/models"
	"github.com/studymart/studymart-api/internal/utils"
)

// RatingService lets requesters whose request was granted review the
// item's owner, and folds each review into the owner's trust score.
type RatingService struct {
	cfg        *config.Config
	jwtService *utils.JWTService
}

// NewRatingService creates a new RatingService.
func NewRatingService(cfg *config.Config) *RatingService {
	return &RatingService{
		cfg:        cfg,
		jwtService: utils.NewJWTService(cfg.JWTSecret),
	}
}

// CreateRating records a one-time review of an item owner.
func (s *RatingService) CreateRating(c fiber.Ctx) error {
	fromUserID, err := uuid.Parse(c.Locals("userID").(string))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid user ID"})
	}

	var requestData struct {
		ToUserID string `json:"to_user_id"`
		ItemID   string `json:"item_id"`
		Rating   int    `json:"rating"`
		Review   string `json:"review"`
	}

	if err := c.Bind().Body(&requestData); err != nil {
		log.Printf("error decoding request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid request body"})
	}

	if requestData.Rating < 1 || requestData.Rating > 5 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Rating must be between 1 and 5"})
	}

	review := strings.TrimSpace(requestData.Review)
	if !validReviewLength(review) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Review is too long"})
	}

	toUserID, err := uuid.Parse(requestData.ToUserID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid user ID"})
	}

	itemID, err := uuid.Parse(requestData.ItemID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid item ID"})
	}

	if fromUserID == toUserID {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "You cannot rate yourself"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	// The rated user must own the item being reviewed.
	var ownerID uuid.UUID
	err = db.Pool.QueryRow(ctx, `
        SELECT user_id FROM items WHERE id = $1
    `, itemID).Scan(&ownerID)

	if err != nil {
		if err == pgx.ErrNoRows {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "Item not found"})
		}
		log.Printf("error querying item: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Error checking item"})
	}

	if ownerID != toUserID {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "This user does not own the item"})
	}

	// Only a requester whose request was granted may rate.
	var qualifying int
	err = db.Pool.QueryRow(ctx, `
        SELECT COUNT(*) FROM requests
        WHERE item_id = $1 AND requester_id = $2 AND status IN ($3, $4)
    `, itemID, fromUserID, models.RequestAccepted, models.RequestCompleted).Scan(&qualifying)

	if err != nil {
		log.Printf("error checking requests: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Error checking request"})
	}

	if qualifying == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "You can only rate after your request is accepted"})
	}

	var existing int
	err = db.Pool.QueryRow(ctx, `
        SELECT COUNT(*) FROM ratings
        WHERE from_user_id = $1 AND to_user_id = $2 AND item_id = $3
    `, fromUserID, toUserID, itemID).Scan(&existing)

	if err != nil {
		log.Printf("error checking existing rating: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Error checking rating"})
	}

	if existing > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "You have already rated this user for this item"})
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		log.Printf("error starting transaction: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Database error"})
	}
	defer tx.Rollback(ctx)

	rating := models.Rating{
		ID:         uuid.New(),
		FromUserID: fromUserID,
		ToUserID:   toUserID,
		ItemID:     itemID,
		Rating:     requestData.Rating,
		Review:     review,
	}

	err = tx.QueryRow(ctx, `
        INSERT INTO ratings (id, from_user_id, to_user_id, item_id, rating, review)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING created_at
    `, rating.ID, rating.FromUserID, rating.ToUserID, rating.ItemID, rating.Rating, rating.Review).Scan(&rating.CreatedAt)

	if err != nil {
		if db.IsUniqueViolation(err) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "You have already rated this user for this item"})
		}
		log.Printf("error inserting rating: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Error saving rating"})
	}

	// Fold the new review into the owner's trust score and mark the
	// rater's request so clients stop offering the rating action.
	if err = db.RecomputeRatingScore(ctx, tx, toUserID); err != nil {
		log.Printf("error recomputing rating score: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Error updating score"})
	}

	_, err = tx.Exec(ctx, `
        UPDATE requests SET rated = true
        WHERE item_id = $1 AND requester_id = $2
    `, itemID, fromUserID)

	if err != nil {
		log.Printf("error marking request rated: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Error updating request"})
	}

	if err = tx.Commit(ctx); err != nil {
		log.Printf("error committing transaction: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Database error"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": rating})
}

// GetUserRatings returns all reviews a user has received, newest first,
// together with their average.
func (s *RatingService) GetUserRatings(c fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("userId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid user ID"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	rows, err := db.Pool.Query(ctx, `
        SELECT r.id, r.from_user_id, r.to_user_id, r.item_id, r.rating, r.review, r.created_at,
               u.name, u.email, u.avatar_url
        FROM ratings r
        JOIN users u ON u.id = r.from_user_id
        WHERE r.to_user_id = $1
        ORDER BY r.created_at DESC
    `, userID)

	if err != nil {
		log.Printf("error querying ratings: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Error fetching ratings"})
	}
	defer rows.Close()

	ratings := []models.Rating{}
	values := []int{}
	for rows.Next() {
		var r models.Rating
		var from models.UserRef

		if err := rows.Scan(
			&r.ID,
			&r.FromUserID,
			&r.ToUserID,
			&r.ItemID,
			&r.Rating,
			&r.Review,
			&r.CreatedAt,
			&from.Name,
			&from.Email,
			&from.AvatarURL,
		); err != nil {
			log.Printf("error scanning rating row: %v", err)
			continue
		}

		from.ID = r.FromUserID
		r.FromUser = &from
		ratings = append(ratings, r)
		values = append(values, r.Rating)
	}

	return c.JSON(fiber.Map{"success": true, "data": fiber.Map{
		"ratings": ratings,
		"count":   len(ratings),
		"average": MeanRating(values),
		"score":   ScoreFromRatings(values),
	}})
}
