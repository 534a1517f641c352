package item

import (
	"context"
	"log"
	"strconv"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/studymart/studymart-api/internal/config"
	"github.com/studymart/studymart-api/internal/db"
	"github.com/studymart/studymart-api/internal/models"
	"github.com/studymart/studymart-api/internal/utils"
)

var (
	validCategories = map[string]bool{"Textbooks": true, "Labkits": true, "Stationery": true}
	validExchange   = map[string]bool{models.ExchangeDonate: true, models.ExchangeSwap: true}
	validConditions = map[string]bool{"New": true, "Good": true, "Used": true, "Worn": true}
)

// ItemService handles the item catalog.
type ItemService struct {
	cfg        *config.Config
	jwtService *utils.JWTService
}

// NewItemService creates a new ItemService.
func NewItemService(cfg *config.Config) *ItemService {
	return &ItemService{
		cfg:        cfg,
		jwtService: utils.NewJWTService(cfg.JWTSecret),
	}
}

// RequestImage is an already-uploaded image reference in a create request.
type RequestImage struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id"`
}

// CreateItem lists a new item.
func (s *ItemService) CreateItem(c fiber.Ctx) error {
	userID := c.Locals("userID").(string)

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid user ID"})
	}

	var requestData struct {
		Title        string         `json:"title"`
		Description  string         `json:"description"`
		Category     string         `json:"category"`
		ExchangeType string         `json:"exchange_type"`
		CourseCode   string         `json:"course_code"`
		Department   string         `json:"department"`
		Condition    string         `json:"condition"`
		Images       []RequestImage `json:"images"`
	}

	if err := c.Bind().Body(&requestData); err != nil {
		log.Printf("error decoding request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid request body"})
	}

	if requestData.Title == "" || requestData.CourseCode == "" || requestData.Department == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Missing required fields"})
	}
	if !validCategories[requestData.Category] {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid category"})
	}
	if !validExchange[requestData.ExchangeType] {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid exchange type"})
	}
	if !validConditions[requestData.Condition] {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid condition"})
	}

	itemID := uuid.New()

	ctx, cancel := db.GetContext()
	defer cancel()

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		log.Printf("error starting transaction: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Database error"})
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
        INSERT INTO items (id, user_id, title, description, category, exchange_type, course_code, department, condition)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    `, itemID, userUUID, requestData.Title, requestData.Description, requestData.Category,
		requestData.ExchangeType, requestData.CourseCode, requestData.Department, requestData.Condition)

	if err != nil {
		log.Printf("error inserting item: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Error saving item"})
	}

	for i, img := range requestData.Images {
		_, err = tx.Exec(ctx, `
            INSERT INTO item_images (item_id, url, public_id, position)
            VALUES ($1, $2, $3, $4)
        `, itemID, img.URL, img.PublicID, i)

		if err != nil {
			log.Printf("error inserting item image: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Error saving images"})
		}
	}

	if err = tx.Commit(ctx); err != nil {
		log.Printf("error committing transaction: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Database error"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    fiber.Map{"id": itemID},
		"message": "Item listed successfully",
	})
}

// GetItems returns the public catalog with optional filters, all pushed
// into the SQL query.
func (s *ItemService) GetItems(c fiber.Ctx) error {
	search := c.Query("search")
	courseCode := c.Query("course_code")
	department := c.Query("department")
	category := c.Query("category")

	ctx, cancel := db.GetContext()
	defer cancel()

	query := `
        SELECT i.id, i.user_id, i.title, i.description, i.category, i.exchange_type,
               i.course_code, i.department, i.condition, i.status, i.created_at,
               u.name, u.email, u.roll_no, u.avatar_url
        FROM items i
        JOIN users u ON u.id = i.user_id
        WHERE i.status != 'Hidden'
    `
	var args []interface{}

	placeholder := func() string {
		return "$" + strconv.Itoa(len(args))
	}

	if search != "" {
		args = append(args, search)
		query += " AND i.title ILIKE '%' || " + placeholder() + " || '%'"
	}
	if courseCode != "" {
		args = append(args, courseCode)
		query += " AND i.course_code ILIKE '%' || " + placeholder() + " || '%'"
	}
	if department != "" {
		args = append(args, department)
		query += " AND i.department ILIKE '%' || " + placeholder() + " || '%'"
	}
	if category != "" {
		args = append(args, category)
		query += " AND i.category = " + placeholder()
	}

	query += " ORDER BY i.created_at DESC"

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		log.Printf("error querying items: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Error fetching items"})
	}
	defer rows.Close()

	items := []models.Item{}
	for rows.Next() {
		var item models.Item
		var owner models.UserRef

		if err := rows.Scan(
			&item.ID,
			&item.UserID,
			&item.Title,
			&item.Description,
			&item.Category,
			&item.ExchangeType,
			&item.CourseCode,
			&item.Department,
			&item.Condition,
			&item.Status,
			&item.CreatedAt,
			&owner.Name,
			&owner.Email,
			&owner.RollNo,
			&owner.AvatarURL,
		); err != nil {
			log.Printf("error scanning item row: %v", err)
			continue
		}

		owner.ID = item.UserID
		item.Owner = &owner
		item.Images = s.getItemImages(ctx, item.ID)
		items = append(items, item)
	}

	return c.JSON(fiber.Map{"success": true, "data": items})
}

// GetItemByID returns a single item with its owner's profile.
func (s *ItemService) GetItemByID(c fiber.Ctx) error {
	itemUUID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid item ID"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	var item models.Item
	var owner models.UserRef
	err = db.Pool.QueryRow(ctx, `
        SELECT i.id, i.user_id, i.title, i.description, i.category, i.exchange_type,
               i.course_code, i.department, i.condition, i.status, i.created_at,
               u.name, u.email, u.roll_no, u.avatar_url
        FROM items i
        JOIN users u ON u.id = i.user_id
        WHERE i.id = $1
    `, itemUUID).Scan(
		&item.ID,
		&item.UserID,
		&item.Title,
		&item.Description,
		&item.Category,
		&item.ExchangeType,
		&item.CourseCode,
		&item.Department,
		&item.Condition,
		&item.Status,
		&item.CreatedAt,
		&owner.Name,
		&owner.Email,
		&owner.RollNo,
		&owner.AvatarURL,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "Item not found"})
		}
		log.Printf("error querying item: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Error fetching item"})
	}

	owner.ID = item.UserID
	item.Owner = &owner
	item.Images = s.getItemImages(ctx, item.ID)

	return c.JSON(fiber.Map{"success": true, "data": item})
}

// DeleteItem removes an item. Only the owner may delete.
func (s *ItemService) DeleteItem(c fiber.Ctx) error {
	userUUID, err := uuid.Parse(c.Locals("userID").(string))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid user ID"})
	}

	itemUUID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid item ID"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	var ownerID uuid.UUID
	err = db.Pool.QueryRow(ctx, "SELECT user_id FROM items WHERE id = $1", itemUUID).Scan(&ownerID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "Item not found"})
		}
		log.Printf("error querying item: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Error fetching item"})
	}

	if ownerID != userUUID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"success": false, "message": "Not authorized to delete this item"})
	}

	_, err = db.Pool.Exec(ctx, "DELETE FROM items WHERE id = $1", itemUUID)
	if err != nil {
		log.Printf("error deleting item: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Error deleting item"})
	}

	return c.JSON(fiber.Map{"success": true, "message": "Item deleted successfully"})
}

// getItemImages loads the images of one item, ordered by position.
func (s *ItemService) getItemImages(ctx context.Context, itemID uuid.UUID) []models.ItemImage {
	rows, err := db.Pool.Query(ctx, `
        SELECT id, item_id, url, public_id, position
        FROM item_images
        WHERE item_id = $1
        ORDER BY position ASC
    `, itemID)

	if err != nil {
		log.Printf("error querying item images: %v", err)
		return nil
	}
	defer rows.Close()

	var images []models.ItemImage
	for rows.Next() {
		var img models.ItemImage
		if err := rows.Scan(&img.ID, &img.ItemID, &img.URL, &img.PublicID, &img.Position); err != nil {
			log.Printf("error scanning image row: %v", err)
			continue
		}
		images = append(images, img)
	}

	return images
}
