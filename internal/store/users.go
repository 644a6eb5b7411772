package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/rewear-app/rewear/internal/model"
)

const userColumns = `id, email, name, avatar_id, password_hash, points, role, created_at, updated_at, deleted_at`

// CreateUser creates a new user with the starting point balance.
func CreateUser(ctx context.Context, db *sql.DB, email, name, passwordHash, role string) (*model.User, error) {
	id := uuid.NewString()
	_, err := db.ExecContext(ctx,
		`INSERT INTO users (id, email, name, password_hash, role) VALUES (?, ?, ?, ?, ?)`,
		id, email, name, passwordHash, role,
	)
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	return GetUser(ctx, db, id)
}

// GetUser returns a user by ID, or nil if absent.
func GetUser(ctx context.Context, db *sql.DB, id string) (*model.User, error) {
	return scanUserRow(db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id,
	), "getting user")
}

// GetUserByEmail returns a user by email (including soft-deleted, for
// auth checks), or nil if absent.
func GetUserByEmail(ctx context.Context, db *sql.DB, email string) (*model.User, error) {
	return scanUserRow(db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ? ORDER BY deleted_at IS NOT NULL LIMIT 1`, email,
	), "getting user by email")
}

// UpdateUserProfile updates a user's display name and avatar reference.
func UpdateUserProfile(ctx context.Context, db *sql.DB, id, name, avatarID string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE users SET name = ?, avatar_id = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND deleted_at IS NULL`,
		name, avatarID, id,
	)
	if err != nil {
		return fmt.Errorf("updating user profile: %w", err)
	}
	return nil
}

// UpdateUserPassword updates a user's password hash.
func UpdateUserPassword(ctx context.Context, db *sql.DB, id, passwordHash string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND deleted_at IS NULL`,
		passwordHash, id,
	)
	if err != nil {
		return fmt.Errorf("updating user password: %w", err)
	}
	return nil
}

// DeleteUser soft-deletes a user so their items and swap history stay
// referencable.
func DeleteUser(ctx context.Context, db *sql.DB, id string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE users SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NULL`,
		id,
	)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	return nil
}

// GetDashboardStats returns the counters shown on a user's dashboard.
func GetDashboardStats(ctx context.Context, db *sql.DB, userID string) (*model.DashboardStats, error) {
	stats := &model.DashboardStats{}

	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM items WHERE user_id = ?`, userID,
	).Scan(&stats.TotalItems)
	if err != nil {
		return nil, fmt.Errorf("counting user items: %w", err)
	}

	err = db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM swaps
		 WHERE (initiator_id = ? OR receiver_id = ?) AND status = ?`,
		userID, userID, model.SwapPending,
	).Scan(&stats.ActiveSwaps)
	if err != nil {
		return nil, fmt.Errorf("counting active swaps: %w", err)
	}

	err = db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM swaps
		 WHERE (initiator_id = ? OR receiver_id = ?) AND status = ?`,
		userID, userID, model.SwapCompleted,
	).Scan(&stats.ItemsSwapped)
	if err != nil {
		return nil, fmt.Errorf("counting completed swaps: %w", err)
	}

	err = db.QueryRowContext(ctx,
		`SELECT points FROM users WHERE id = ?`, userID,
	).Scan(&stats.PointsBalance)
	if err != nil {
		return nil, fmt.Errorf("reading point balance: %w", err)
	}

	return stats, nil
}

func scanUserRow(row *sql.Row, action string) (*model.User, error) {
	u := &model.User{}
	var name, avatarID sql.NullString
	err := row.Scan(&u.ID, &u.Email, &name, &avatarID, &u.PasswordHash,
		&u.Points, &u.Role, &u.CreatedAt, &u.UpdatedAt, &u.DeletedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", action, err)
	}
	u.Name = name.String
	u.AvatarID = avatarID.String
	return u, nil
}
