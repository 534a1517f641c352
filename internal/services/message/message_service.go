package message

import (
	"context"
	"encoding/json"
	"log"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/studymart/studymart-api/internal/config"
	"github.com/studymart/studymart-api/internal/db"
	"github.com/studymart/studymart-api/internal/models"
	"github.com/studymart/studymart-api/internal/utils"
	ws "github.com/studymart/studymart-api/internal/websocket"
)

// MessageService persists chat messages and mirrors them to the realtime
// fan-out. Persistence is authoritative: a message is broadcast only
// after its transaction commits.
type MessageService struct {
	cfg        *config.Config
	jwtService *utils.JWTService
	manager    *ws.Manager
}

// NewMessageService creates a new MessageService.
func NewMessageService(cfg *config.Config, manager *ws.Manager) *MessageService {
	return &MessageService{
		cfg:        cfg,
		jwtService: utils.NewJWTService(cfg.JWTSecret),
		manager:    manager,
	}
}

// SendMessage appends a message to a conversation.
func (s *MessageService) SendMessage(c fiber.Ctx) error {
	senderID, err := uuid.Parse(c.Locals("userID").(string))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid user ID"})
	}

	var requestData struct {
		ConversationID string `json:"conversation_id"`
		Text           string `json:"text"`
	}

	if err := c.Bind().Body(&requestData); err != nil {
		log.Printf("error decoding request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid request body"})
	}

	conversationID, err := uuid.Parse(requestData.ConversationID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid conversation ID"})
	}

	text, ok := NormalizeText(requestData.Text)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Message text cannot be empty"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	// The sender must be a participant of the conversation.
	var userA, userB uuid.UUID
	err = db.Pool.QueryRow(ctx, `
        SELECT user_a, user_b FROM conversations WHERE id = $1
    `, conversationID).Scan(&userA, &userB)

	if err != nil {
		if err == pgx.ErrNoRows {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "Conversation not found"})
		}
		log.Printf("error querying conversation: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Error checking conversation"})
	}

	if senderID != userA && senderID != userB {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"success": false, "message": "You are not a participant of this conversation"})
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		log.Printf("error starting transaction: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Database error"})
	}
	defer tx.Rollback(ctx)

	msg := models.Message{
		ID:             uuid.New(),
		ConversationID: conversationID,
		SenderID:       senderID,
		Text:           text,
	}

	// created_at comes from the store, not the application clock, so
	// concurrent senders on different processes still yield one total
	// order all readers agree on. Senders can tie at now()'s resolution;
	// reads break ties on the message id.
	err = tx.QueryRow(ctx, `
        INSERT INTO messages (id, conversation_id, sender_id, text)
        VALUES ($1, $2, $3, $4)
        RETURNING created_at
    `, msg.ID, msg.ConversationID, msg.SenderID, msg.Text).Scan(&msg.CreatedAt)

	if err != nil {
		log.Printf("error inserting message: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Error saving message"})
	}

	_, err = tx.Exec(ctx, `
        UPDATE conversations
        SET last_message_id = $1, updated_at = $2
        WHERE id = $3
    `, msg.ID, msg.CreatedAt, conversationID)

	if err != nil {
		log.Printf("error updating conversation: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Error updating conversation"})
	}

	if err = tx.Commit(ctx); err != nil {
		log.Printf("error committing transaction: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Database error"})
	}

	msg.Sender = getUserRef(ctx, senderID)

	// Mirror to the other participant's live connections. Persistence
	// already succeeded; publish failures are logged and dropped.
	s.broadcast(conversationID, senderID, msg)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": msg})
}

// GetMessages returns the full history of a conversation, ascending by
// the store-assigned creation time.
func (s *MessageService) GetMessages(c fiber.Ctx) error {
	userID, err := uuid.Parse(c.Locals("userID").(string))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid user ID"})
	}

	conversationID, err := uuid.Parse(c.Params("conversationId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid conversation ID"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	var count int
	err = db.Pool.QueryRow(ctx, `
        SELECT COUNT(*) FROM conversations
        WHERE id = $1 AND (user_a = $2 OR user_b = $2)
    `, conversationID, userID).Scan(&count)

	if err != nil {
		log.Printf("error checking conversation access: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Error checking conversation"})
	}

	if count == 0 {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"success": false, "message": "You are not a participant of this conversation"})
	}

	rows, err := db.Pool.Query(ctx, `
        SELECT m.id, m.conversation_id, m.sender_id, m.text, m.created_at,
               u.name, u.email, u.avatar_url
        FROM messages m
        JOIN users u ON u.id = m.sender_id
        WHERE m.conversation_id = $1
        ORDER BY m.created_at ASC, m.id ASC
    `, conversationID)

	if err != nil {
		log.Printf("error querying messages: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Error fetching messages"})
	}
	defer rows.Close()

	messages := []models.Message{}
	for rows.Next() {
		var msg models.Message
		var sender models.UserRef

		if err := rows.Scan(
			&msg.ID,
			&msg.ConversationID,
			&msg.SenderID,
			&msg.Text,
			&msg.CreatedAt,
			&sender.Name,
			&sender.Email,
			&sender.AvatarURL,
		); err != nil {
			log.Printf("error scanning message row: %v", err)
			continue
		}

		sender.ID = msg.SenderID
		msg.Sender = &sender
		messages = append(messages, msg)
	}

	return c.JSON(fiber.Map{"success": true, "data": messages})
}

// broadcast mirrors a persisted message into the conversation's room,
// excluding the sender's own connections.
func (s *MessageService) broadcast(conversationID, senderID uuid.UUID, msg models.Message) {
	if s.manager == nil {
		return
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		log.Printf("error marshaling message payload: %v", err)
		return
	}

	s.manager.Publish(conversationID, ws.Event{
		Type:           ws.EventReceiveMessage,
		ConversationID: conversationID.String(),
		UserID:         senderID.String(),
		Payload:        payload,
	}, uuid.Nil, senderID.String())
}

// getUserRef loads the minimal identity attached to a message.
func getUserRef(ctx context.Context, userID uuid.UUID) *models.UserRef {
	var ref models.UserRef
	err := db.Pool.QueryRow(ctx, `
        SELECT id, name, email, avatar_url FROM users WHERE id = $1
    `, userID).Scan(&ref.ID, &ref.Name, &ref.Email, &ref.AvatarURL)

	if err != nil {
		log.Printf("error loading user %s: %v", userID, err)
		return nil
	}

	return &ref
}
