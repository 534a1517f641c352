package conversation

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/studymart/studymart-api/internal/config"
	"github.com/studymart/studymart-api/internal/db"
	"github.com/studymart/studymart-api/internal/models"
	"github.com/studymart/studymart-api/internal/utils"
)

// ConversationService handles the conversation directory.
type ConversationService struct {
	cfg        *config.Config
	jwtService *utils.JWTService
}

// NewConversationService creates a new ConversationService.
func NewConversationService(cfg *config.Config) *ConversationService {
	return &ConversationService{
		cfg:        cfg,
		jwtService: utils.NewJWTService(cfg.JWTSecret),
	}
}

// CreateConversation opens the thread for an accepted request. Dedup is
// pair-level, not request-level: two users transacting on several items
// share one conversation. When the pair already has one, the response is
// 409 with the other participant's identity so the client can route into
// the existing thread.
func (s *ConversationService) CreateConversation(c fiber.Ctx) error {
	actingUserID, err := uuid.Parse(c.Locals("userID").(string))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid user ID"})
	}

	var requestData struct {
		RequestID string `json:"request_id"`
	}

	if err := c.Bind().Body(&requestData); err != nil {
		log.Printf("error decoding request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid request body"})
	}

	requestID, err := uuid.Parse(requestData.RequestID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid request ID"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	var status string
	var requesterID, ownerID uuid.UUID
	err = db.Pool.QueryRow(ctx, `
        SELECT r.status, r.requester_id, i.user_id
        FROM requests r
        JOIN items i ON i.id = r.item_id
        WHERE r.id = $1
    `, requestID).Scan(&status, &requesterID, &ownerID)

	if err != nil && err != pgx.ErrNoRows {
		log.Printf("error querying request: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Error fetching request"})
	}
	if err == pgx.ErrNoRows || status != models.RequestAccepted {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid or unaccepted request"})
	}

	if actingUserID != ownerID && actingUserID != requesterID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"success": false, "message": "Not authorized"})
	}

	pairKey := PairKey(ownerID, requesterID)

	if resp := s.existingPairConflict(ctx, c, pairKey, actingUserID); resp != nil {
		return resp()
	}

	convo := models.Conversation{
		ID:        uuid.New(),
		UserA:     ownerID,
		UserB:     requesterID,
		RequestID: requestID,
	}

	err = db.Pool.QueryRow(ctx, `
        INSERT INTO conversations (id, user_a, user_b, pair_key, request_id)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING created_at, updated_at
    `, convo.ID, convo.UserA, convo.UserB, pairKey, requestID).Scan(&convo.CreatedAt, &convo.UpdatedAt)

	if err != nil {
		// Concurrent acceptances between the same pair can both observe
		// "no existing conversation"; the unique pair_key index lets only
		// one insert through, and the loser reports the same conflict.
		if db.IsUniqueViolation(err) {
			if resp := s.existingPairConflict(ctx, c, pairKey, actingUserID); resp != nil {
				return resp()
			}
		}
		log.Printf("error inserting conversation: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Error creating conversation"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": convo})
}

// existingPairConflict looks for a conversation matching pairKey and, when
// found, returns a closure producing the 409 response with the other
// participant's identity. Nil means no existing conversation.
func (s *ConversationService) existingPairConflict(ctx context.Context, c fiber.Ctx, pairKey string, actingUserID uuid.UUID) func() error {
	var userA, userB uuid.UUID
	err := db.Pool.QueryRow(ctx, `
        SELECT user_a, user_b FROM conversations WHERE pair_key = $1
    `, pairKey).Scan(&userA, &userB)

	if err != nil {
		if err != pgx.ErrNoRows {
			log.Printf("error checking existing conversation: %v", err)
		}
		return nil
	}

	otherID := userA
	if otherID == actingUserID {
		otherID = userB
	}

	var name, email string
	err = db.Pool.QueryRow(ctx, `
        SELECT name, email FROM users WHERE id = $1
    `, otherID).Scan(&name, &email)
	if err != nil {
		log.Printf("error loading other participant %s: %v", otherID, err)
	}

	return func() error {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success":   false,
			"message":   "Conversation already exists between these users",
			"otherUser": fiber.Map{"name": name, "email": email},
		})
	}
}

// GetUserConversations lists the caller's conversations, most recently
// active first, each with the other participant, the item title of the
// originating request and the last message.
func (s *ConversationService) GetUserConversations(c fiber.Ctx) error {
	userID, err := uuid.Parse(c.Locals("userID").(string))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid user ID"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	rows, err := db.Pool.Query(ctx, `
        SELECT cv.id, cv.user_a, cv.user_b, cv.request_id, cv.last_message_id,
               cv.created_at, cv.updated_at,
               ou.id, ou.name, ou.email, ou.avatar_url,
               i.title,
               m.id, m.sender_id, m.text, m.created_at
        FROM conversations cv
        JOIN users ou ON ou.id = CASE WHEN cv.user_a = $1 THEN cv.user_b ELSE cv.user_a END
        JOIN requests r ON r.id = cv.request_id
        JOIN items i ON i.id = r.item_id
        LEFT JOIN messages m ON m.id = cv.last_message_id
        WHERE cv.user_a = $1 OR cv.user_b = $1
        ORDER BY cv.updated_at DESC
    `, userID)

	if err != nil {
		log.Printf("error querying conversations: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Error fetching conversations"})
	}
	defer rows.Close()

	conversations := []models.Conversation{}
	for rows.Next() {
		var convo models.Conversation
		var other models.UserRef
		var msgID, msgSenderID *uuid.UUID
		var msgText *string
		var msgCreatedAt *time.Time

		if err := rows.Scan(
			&convo.ID,
			&convo.UserA,
			&convo.UserB,
			&convo.RequestID,
			&convo.LastMessageID,
			&convo.CreatedAt,
			&convo.UpdatedAt,
			&other.ID,
			&other.Name,
			&other.Email,
			&other.AvatarURL,
			&convo.ItemTitle,
			&msgID,
			&msgSenderID,
			&msgText,
			&msgCreatedAt,
		); err != nil {
			log.Printf("error scanning conversation row: %v", err)
			continue
		}

		convo.OtherUser = &other
		if msgID != nil {
			convo.LastMessage = &models.Message{
				ID:             *msgID,
				ConversationID: convo.ID,
				SenderID:       *msgSenderID,
				Text:           *msgText,
				CreatedAt:      *msgCreatedAt,
			}
		}

		conversations = append(conversations, convo)
	}

	return c.JSON(fiber.Map{"success": true, "data": conversations})
}

// GetConversationByRequest is a point lookup by originating request.
func (s *ConversationService) GetConversationByRequest(c fiber.Ctx) error {
	requestID, err := uuid.Parse(c.Params("requestId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid request ID"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	var convo models.Conversation
	err = db.Pool.QueryRow(ctx, `
        SELECT id, user_a, user_b, request_id, last_message_id, created_at, updated_at
        FROM conversations
        WHERE request_id = $1
    `, requestID).Scan(
		&convo.ID,
		&convo.UserA,
		&convo.UserB,
		&convo.RequestID,
		&convo.LastMessageID,
		&convo.CreatedAt,
		&convo.UpdatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "Not found"})
		}
		log.Printf("error querying conversation: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Error fetching conversation"})
	}

	return c.JSON(fiber.Map{"success": true, "data": convo})
}
