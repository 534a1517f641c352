package request

import (
	"log"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/studymart/studymart-api/internal/config"
	"github.com/studymart/studymart-api/internal/db"
	"github.com/studymart/studymart-api/internal/models"
	"github.com/studymart/studymart-api/internal/utils"
)

// completionCredit is the flat activity credit an owner earns for each
// completed exchange. It accrues separately from the rating-derived score.
const completionCredit = 10

// RequestService handles the exchange request ledger.
type RequestService struct {
	cfg        *config.Config
	jwtService *utils.JWTService
}

// NewRequestService creates a new RequestService.
func NewRequestService(cfg *config.Config) *RequestService {
	return &RequestService{
		cfg:        cfg,
		jwtService: utils.NewJWTService(cfg.JWTSecret),
	}
}

// CreateRequest submits a new exchange proposal for an item.
func (s *RequestService) CreateRequest(c fiber.Ctx) error {
	requesterID, err := uuid.Parse(c.Locals("userID").(string))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid user ID"})
	}

	var requestData struct {
		ItemID string `json:"item_id"`
	}

	if err := c.Bind().Body(&requestData); err != nil {
		log.Printf("error decoding request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid request body"})
	}

	itemID, err := uuid.Parse(requestData.ItemID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid item ID"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	var ownerID uuid.UUID
	var exchangeType string
	err = db.Pool.QueryRow(ctx, `
        SELECT user_id, exchange_type FROM items WHERE id = $1
    `, itemID).Scan(&ownerID, &exchangeType)

	if err != nil {
		if err == pgx.ErrNoRows {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "Item not found"})
		}
		log.Printf("error querying item: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Error checking item"})
	}

	if ownerID == requesterID {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "You can't request your own item"})
	}

	var existingCount int
	err = db.Pool.QueryRow(ctx, `
        SELECT COUNT(*) FROM requests WHERE item_id = $1 AND requester_id = $2
    `, itemID, requesterID).Scan(&existingCount)

	if err != nil {
		log.Printf("error checking existing requests: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Error checking existing requests"})
	}

	if existingCount > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "You already requested this item"})
	}

	req := models.Request{
		ID:          uuid.New(),
		ItemID:      itemID,
		RequesterID: requesterID,
		Type:        exchangeType,
		Status:      models.RequestPending,
	}

	err = db.Pool.QueryRow(ctx, `
        INSERT INTO requests (id, item_id, requester_id, type)
        VALUES ($1, $2, $3, $4)
        RETURNING created_at
    `, req.ID, req.ItemID, req.RequesterID, req.Type).Scan(&req.CreatedAt)

	if err != nil {
		// Two concurrent submissions can both pass the count check; the
		// unique index on (item_id, requester_id) keeps one of them out.
		if db.IsUniqueViolation(err) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "You already requested this item"})
		}
		log.Printf("error inserting request: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Error saving request"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": req})
}

// UpdateRequestStatus is the owner's accept/reject/complete decision.
func (s *RequestService) UpdateRequestStatus(c fiber.Ctx) error {
	deciderID, err := uuid.Parse(c.Locals("userID").(string))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid user ID"})
	}

	requestID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid request ID"})
	}

	var requestData struct {
		Status string `json:"status"`
	}

	if err := c.Bind().Body(&requestData); err != nil {
		log.Printf("error decoding request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid request body"})
	}

	if !IsValidDecision(requestData.Status) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid status"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	var req models.Request
	var itemOwnerID uuid.UUID
	err = db.Pool.QueryRow(ctx, `
        SELECT r.id, r.item_id, r.requester_id, r.type, r.status, r.rated, r.created_at, i.user_id
        FROM requests r
        JOIN items i ON i.id = r.item_id
        WHERE r.id = $1
    `, requestID).Scan(&req.ID, &req.ItemID, &req.RequesterID, &req.Type, &req.Status, &req.Rated, &req.CreatedAt, &itemOwnerID)

	if err != nil {
		if err == pgx.ErrNoRows {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "Request not found"})
		}
		log.Printf("error querying request: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Error fetching request"})
	}

	if itemOwnerID != deciderID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"success": false, "message": "Not authorized"})
	}

	// The status change and its item/score side effects commit together.
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		log.Printf("error starting transaction: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Database error"})
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
        UPDATE requests SET status = $1 WHERE id = $2
    `, requestData.Status, requestID)

	if err != nil {
		log.Printf("error updating request status: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Error updating request"})
	}

	switch requestData.Status {
	case models.RequestAccepted:
		_, err = tx.Exec(ctx, `UPDATE items SET status = $1 WHERE id = $2`, models.ItemClaimed, req.ItemID)
		if err != nil {
			log.Printf("error claiming item: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Error updating item"})
		}
	case models.RequestCompleted:
		_, err = tx.Exec(ctx, `UPDATE items SET status = $1 WHERE id = $2`, models.ItemCompleted, req.ItemID)
		if err != nil {
			log.Printf("error completing item: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Error updating item"})
		}
		if err = db.CreditActivityScore(ctx, tx, itemOwnerID, completionCredit); err != nil {
			log.Printf("error crediting owner: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Error updating score"})
		}
	}

	if err = tx.Commit(ctx); err != nil {
		log.Printf("error committing transaction: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Database error"})
	}

	req.Status = requestData.Status
	return c.JSON(fiber.Map{"success": true, "data": req})
}

// GetIncomingRequests lists requests on items owned by the caller. The
// owner predicate is part of the query, not an application-side filter.
func (s *RequestService) GetIncomingRequests(c fiber.Ctx) error {
	ownerID, err := uuid.Parse(c.Locals("userID").(string))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid user ID"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	rows, err := db.Pool.Query(ctx, `
        SELECT r.id, r.item_id, r.requester_id, r.type, r.status, r.rated, r.created_at,
               i.title, i.exchange_type, i.status,
               u.name, u.email, u.avatar_url
        FROM requests r
        JOIN items i ON i.id = r.item_id
        JOIN users u ON u.id = r.requester_id
        WHERE i.user_id = $1
        ORDER BY r.created_at DESC
    `, ownerID)

	if err != nil {
		log.Printf("error querying incoming requests: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Error fetching requests"})
	}
	defer rows.Close()

	requests := []models.Request{}
	for rows.Next() {
		var req models.Request
		var item models.Item
		var requester models.UserRef

		if err := rows.Scan(
			&req.ID,
			&req.ItemID,
			&req.RequesterID,
			&req.Type,
			&req.Status,
			&req.Rated,
			&req.CreatedAt,
			&item.Title,
			&item.ExchangeType,
			&item.Status,
			&requester.Name,
			&requester.Email,
			&requester.AvatarURL,
		); err != nil {
			log.Printf("error scanning request row: %v", err)
			continue
		}

		item.ID = req.ItemID
		item.UserID = ownerID
		requester.ID = req.RequesterID
		req.Item = &item
		req.Requester = &requester
		requests = append(requests, req)
	}

	return c.JSON(fiber.Map{"success": true, "data": requests})
}

// GetOutgoingRequests lists the caller's own requests. Each row carries a
// rated flag computed against the ratings table, which the client uses to
// gate the "leave a review" action.
func (s *RequestService) GetOutgoingRequests(c fiber.Ctx) error {
	requesterID, err := uuid.Parse(c.Locals("userID").(string))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid user ID"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	rows, err := db.Pool.Query(ctx, `
        SELECT r.id, r.item_id, r.requester_id, r.type, r.status, r.created_at,
               i.title, i.exchange_type, i.status, i.user_id,
               u.name, u.email, u.avatar_url,
               EXISTS (
                   SELECT 1 FROM ratings rt
                   WHERE rt.from_user_id = r.requester_id
                     AND rt.to_user_id = i.user_id
                     AND rt.item_id = r.item_id
               ) AS rated
        FROM requests r
        JOIN items i ON i.id = r.item_id
        JOIN users u ON u.id = i.user_id
        WHERE r.requester_id = $1
        ORDER BY r.created_at DESC
    `, requesterID)

	if err != nil {
		log.Printf("error querying outgoing requests: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Error fetching requests"})
	}
	defer rows.Close()

	requests := []models.Request{}
	for rows.Next() {
		var req models.Request
		var item models.Item
		var owner models.UserRef

		if err := rows.Scan(
			&req.ID,
			&req.ItemID,
			&req.RequesterID,
			&req.Type,
			&req.Status,
			&req.CreatedAt,
			&item.Title,
			&item.ExchangeType,
			&item.Status,
			&item.UserID,
			&owner.Name,
			&owner.Email,
			&owner.AvatarURL,
			&req.Rated,
		); err != nil {
			log.Printf("error scanning request row: %v", err)
			continue
		}

		item.ID = req.ItemID
		owner.ID = item.UserID
		item.Owner = &owner
		req.Item = &item
		requests = append(requests, req)
	}

	return c.JSON(fiber.Map{"success": true, "data": requests})
}
