package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// User represents a user row.
type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	Name         string
	RollNo       string
	Degree       string
	Major        string
	Bio          string
	AvatarURL    string
	// Clamped sum of rating_score and activity_score, computed in SQL.
	SustainabilityScore int
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// scoreExpr derives the exposed sustainability score. rating_score is a
// snapshot of round(avg(rating)*20); activity_score accrues +10 per
// completed request. Keeping them in separate columns means the two update
// flows cannot overwrite each other.
const scoreExpr = "LEAST(100, GREATEST(0, rating_score + activity_score))"

// CreateUser inserts a new user with the given bcrypt hash.
func CreateUser(email, passwordHash string) (*User, error) {
	ctx, cancel := GetContext()
	defer cancel()

	user := User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: passwordHash,
	}

	err := Pool.QueryRow(ctx, `
        INSERT INTO users (id, email, password_hash)
        VALUES ($1, $2, $3)
        RETURNING created_at, updated_at
    `, user.ID, user.Email, user.PasswordHash).Scan(&user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("inserting user: %w", err)
	}

	return &user, nil
}

// GetUserByEmail loads a user by email, including the password hash.
// Returns pgx.ErrNoRows when no such user exists.
func GetUserByEmail(email string) (*User, error) {
	ctx, cancel := GetContext()
	defer cancel()

	var user User
	err := Pool.QueryRow(ctx, `
        SELECT id, email, password_hash, name, roll_no, degree, major, bio, avatar_url,
               `+scoreExpr+`, created_at, updated_at
        FROM users
        WHERE email = $1
    `, email).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Name,
		&user.RollNo,
		&user.Degree,
		&user.Major,
		&user.Bio,
		&user.AvatarURL,
		&user.SustainabilityScore,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		return nil, err
	}

	return &user, nil
}

// GetUserByID loads a user by id. Returns pgx.ErrNoRows when absent.
func GetUserByID(userID uuid.UUID) (*User, error) {
	ctx, cancel := GetContext()
	defer cancel()

	var user User
	err := Pool.QueryRow(ctx, `
        SELECT id, email, name, roll_no, degree, major, bio, avatar_url,
               `+scoreExpr+`, created_at, updated_at
        FROM users
        WHERE id = $1
    `, userID).Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.RollNo,
		&user.Degree,
		&user.Major,
		&user.Bio,
		&user.AvatarURL,
		&user.SustainabilityScore,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		return nil, err
	}

	return &user, nil
}

// UpdateProfile overwrites the editable profile fields of a user.
func UpdateProfile(userID uuid.UUID, name, rollNo, degree, bio, major, avatarURL string) (*User, error) {
	ctx, cancel := GetContext()
	defer cancel()

	tag, err := Pool.Exec(ctx, `
        UPDATE users
        SET name = $1, roll_no = $2, degree = $3, bio = $4, major = $5, avatar_url = $6, updated_at = now()
        WHERE id = $7
    `, name, rollNo, degree, bio, major, avatarURL, userID)

	if err != nil {
		return nil, fmt.Errorf("updating profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, pgx.ErrNoRows
	}

	return GetUserByID(userID)
}

// CreditActivityScore adds the flat completion credit to a user in a single
// atomic statement. Runs inside the caller's transaction so the credit and
// the request/item status change commit together.
func CreditActivityScore(ctx context.Context, tx pgx.Tx, userID uuid.UUID, points int) error {
	_, err := tx.Exec(ctx, `
        UPDATE users
        SET activity_score = activity_score + $1, updated_at = now()
        WHERE id = $2
    `, points, userID)
	if err != nil {
		return fmt.Errorf("crediting activity score: %w", err)
	}
	return nil
}

// RecomputeRatingScore overwrites a user's rating_score from the ratings
// table in a single statement, so concurrent raters cannot lose updates.
func RecomputeRatingScore(ctx context.Context, tx pgx.Tx, userID uuid.UUID) error {
	_, err := tx.Exec(ctx, `
        UPDATE users
        SET rating_score = COALESCE((
                SELECT ROUND(AVG(rating) * 20)::int
                FROM ratings
                WHERE to_user_id = users.id
            ), 0),
            updated_at = now()
        WHERE id = $1
    `, userID)
	if err != nil {
		return fmt.Errorf("recomputing rating score: %w", err)
	}
	return nil
}
