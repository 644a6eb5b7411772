package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/rewear-app/rewear/internal/model"
)

// Business rule violations callers may want to report distinctly.
var (
	ErrItemNotAvailable   = errors.New("item is not available")
	ErrInsufficientPoints = errors.New("insufficient points")
)

// CreateSwapRequest records a pending request for an item. The item must
// be AVAILABLE and not owned by the requester; both are re-checked
// inside the transaction.
func CreateSwapRequest(ctx context.Context, db *sql.DB, itemID, requesterID, message string) (*model.SwapRequest, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var ownerID, status string
	err = tx.QueryRowContext(ctx,
		`SELECT user_id, status FROM items WHERE id = ?`, itemID,
	).Scan(&ownerID, &status)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("item not found")
	}
	if err != nil {
		return nil, fmt.Errorf("checking item: %w", err)
	}
	if status != model.ItemStatusAvailable {
		return nil, ErrItemNotAvailable
	}
	if ownerID == requesterID {
		return nil, fmt.Errorf("cannot request own item")
	}

	id := uuid.NewString()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO swap_requests (id, item_id, requester_id, message) VALUES (?, ?, ?, ?)`,
		id, itemID, requesterID, message,
	)
	if err != nil {
		return nil, fmt.Errorf("creating swap request: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing swap request: %w", err)
	}

	return GetSwapRequest(ctx, db, id)
}

// GetSwapRequest returns a swap request by ID with the requester's
// public fields and the owning item's id/owner/status, or nil if absent.
func GetSwapRequest(ctx context.Context, db *sql.DB, id string) (*model.SwapRequest, error) {
	row := db.QueryRowContext(ctx,
		`SELECT r.id, r.item_id, r.requester_id, r.message, r.status, r.created_at,
		        u.name, u.avatar_id, i.user_id, i.title, i.status, i.point_value
		 FROM swap_requests r
		 JOIN items i ON i.id = r.item_id
		 LEFT JOIN users u ON u.id = r.requester_id
		 WHERE r.id = ?`, id,
	)
	req, err := scanSwapRequest(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting swap request: %w", err)
	}
	return req, nil
}

// ListItemSwapRequests returns requests for an item, optionally filtered
// by status, newest first.
func ListItemSwapRequests(ctx context.Context, db *sql.DB, itemID, status string) ([]model.SwapRequest, error) {
	query := `SELECT r.id, r.item_id, r.requester_id, r.message, r.status, r.created_at,
	                 u.name, u.avatar_id, i.user_id, i.title, i.status, i.point_value
	          FROM swap_requests r
	          JOIN items i ON i.id = r.item_id
	          LEFT JOIN users u ON u.id = r.requester_id
	          WHERE r.item_id = ?`
	args := []any{itemID}

	if status != "" {
		query += ` AND r.status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY r.created_at DESC, r.id ASC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing item swap requests: %w", err)
	}
	return scanSwapRequests(rows)
}

// ListUserSwapRequests returns requests involving a user: those they
// made (outgoing) and those targeting their items (incoming).
func ListUserSwapRequests(ctx context.Context, db *sql.DB, userID string) (incoming, outgoing []model.SwapRequest, err error) {
	base := `SELECT r.id, r.item_id, r.requester_id, r.message, r.status, r.created_at,
	                u.name, u.avatar_id, i.user_id, i.title, i.status, i.point_value
	         FROM swap_requests r
	         JOIN items i ON i.id = r.item_id
	         LEFT JOIN users u ON u.id = r.requester_id`

	rows, err := db.QueryContext(ctx,
		base+` WHERE i.user_id = ? ORDER BY r.created_at DESC, r.id ASC`, userID,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("listing incoming swap requests: %w", err)
	}
	incoming, err = scanSwapRequests(rows)
	if err != nil {
		return nil, nil, err
	}

	rows, err = db.QueryContext(ctx,
		base+` WHERE r.requester_id = ? ORDER BY r.created_at DESC, r.id ASC`, userID,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("listing outgoing swap requests: %w", err)
	}
	outgoing, err = scanSwapRequests(rows)
	if err != nil {
		return nil, nil, err
	}
	return incoming, outgoing, nil
}

// AcceptSwapRequest accepts a pending request: the request becomes
// ACCEPTED, sibling pending requests become REJECTED, the item moves to
// PENDING_SWAP, and a pending swap is created between the requester and
// the item owner. All in one transaction.
func AcceptSwapRequest(ctx context.Context, db *sql.DB, requestID, ownerID string) (*model.Swap, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var itemID, requesterID, reqStatus, itemOwner, itemStatus string
	err = tx.QueryRowContext(ctx,
		`SELECT r.item_id, r.requester_id, r.status, i.user_id, i.status
		 FROM swap_requests r JOIN items i ON i.id = r.item_id
		 WHERE r.id = ?`, requestID,
	).Scan(&itemID, &requesterID, &reqStatus, &itemOwner, &itemStatus)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("swap request not found")
	}
	if err != nil {
		return nil, fmt.Errorf("checking swap request: %w", err)
	}
	if itemOwner != ownerID {
		return nil, fmt.Errorf("only the item owner can accept a request")
	}
	if reqStatus != model.SwapRequestPending {
		return nil, fmt.Errorf("request is not pending")
	}
	if itemStatus != model.ItemStatusAvailable {
		return nil, ErrItemNotAvailable
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE swap_requests SET status = ? WHERE id = ?`,
		model.SwapRequestAccepted, requestID,
	); err != nil {
		return nil, fmt.Errorf("accepting swap request: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE swap_requests SET status = ? WHERE item_id = ? AND status = ?`,
		model.SwapRequestRejected, itemID, model.SwapRequestPending,
	); err != nil {
		return nil, fmt.Errorf("rejecting sibling requests: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE items SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		model.ItemStatusPendingSwap, itemID,
	); err != nil {
		return nil, fmt.Errorf("marking item pending swap: %w", err)
	}

	swapID := uuid.NewString()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO swaps (id, item_id, initiator_id, receiver_id) VALUES (?, ?, ?, ?)`,
		swapID, itemID, requesterID, ownerID,
	); err != nil {
		return nil, fmt.Errorf("creating swap: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing swap acceptance: %w", err)
	}

	return GetSwap(ctx, db, swapID)
}

// RejectSwapRequest rejects a pending request.
func RejectSwapRequest(ctx context.Context, db *sql.DB, requestID, ownerID string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE swap_requests SET status = ?
		 WHERE id = ? AND status = ?
		   AND item_id IN (SELECT id FROM items WHERE user_id = ?)`,
		model.SwapRequestRejected, requestID, model.SwapRequestPending, ownerID,
	)
	if err != nil {
		return fmt.Errorf("rejecting swap request: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rejecting swap request: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("request is not pending or not owned by caller")
	}
	return nil
}

// GetSwap returns a swap by ID with its item, or nil if absent.
func GetSwap(ctx context.Context, db *sql.DB, id string) (*model.Swap, error) {
	s := &model.Swap{Item: &model.Item{}}
	err := db.QueryRowContext(ctx,
		`SELECT s.id, s.item_id, s.initiator_id, s.receiver_id, s.status, s.created_at, s.completed_at,
		        i.id, i.user_id, i.title, i.status, i.point_value
		 FROM swaps s JOIN items i ON i.id = s.item_id
		 WHERE s.id = ?`, id,
	).Scan(&s.ID, &s.ItemID, &s.InitiatorID, &s.ReceiverID, &s.Status, &s.CreatedAt, &s.CompletedAt,
		&s.Item.ID, &s.Item.UserID, &s.Item.Title, &s.Item.Status, &s.Item.PointValue)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting swap: %w", err)
	}
	return s, nil
}

// CompleteSwap finishes a pending swap: the item becomes SWAPPED and its
// point value moves from the initiator (requester) to the receiver
// (former owner). Fails with ErrInsufficientPoints if the initiator
// cannot cover the item's point value.
func CompleteSwap(ctx context.Context, db *sql.DB, swapID string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var itemID, initiatorID, receiverID, status string
	var pointValue int
	err = tx.QueryRowContext(ctx,
		`SELECT s.item_id, s.initiator_id, s.receiver_id, s.status, i.point_value
		 FROM swaps s JOIN items i ON i.id = s.item_id
		 WHERE s.id = ?`, swapID,
	).Scan(&itemID, &initiatorID, &receiverID, &status, &pointValue)
	if err == sql.ErrNoRows {
		return fmt.Errorf("swap not found")
	}
	if err != nil {
		return fmt.Errorf("checking swap: %w", err)
	}
	if status != model.SwapPending {
		return fmt.Errorf("swap is not pending")
	}

	var balance int
	err = tx.QueryRowContext(ctx,
		`SELECT points FROM users WHERE id = ?`, initiatorID,
	).Scan(&balance)
	if err != nil {
		return fmt.Errorf("checking point balance: %w", err)
	}
	if balance < pointValue {
		return ErrInsufficientPoints
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET points = points - ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		pointValue, initiatorID,
	); err != nil {
		return fmt.Errorf("debiting initiator: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET points = points + ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		pointValue, receiverID,
	); err != nil {
		return fmt.Errorf("crediting receiver: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE items SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		model.ItemStatusSwapped, itemID,
	); err != nil {
		return fmt.Errorf("marking item swapped: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE swaps SET status = ?, completed_at = CURRENT_TIMESTAMP WHERE id = ?`,
		model.SwapCompleted, swapID,
	); err != nil {
		return fmt.Errorf("completing swap: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing swap completion: %w", err)
	}
	return nil
}

// CancelSwap cancels a pending swap and returns the item to AVAILABLE.
func CancelSwap(ctx context.Context, db *sql.DB, swapID string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var itemID, status string
	err = tx.QueryRowContext(ctx,
		`SELECT item_id, status FROM swaps WHERE id = ?`, swapID,
	).Scan(&itemID, &status)
	if err == sql.ErrNoRows {
		return fmt.Errorf("swap not found")
	}
	if err != nil {
		return fmt.Errorf("checking swap: %w", err)
	}
	if status != model.SwapPending {
		return fmt.Errorf("swap is not pending")
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE swaps SET status = ? WHERE id = ?`,
		model.SwapCancelled, swapID,
	); err != nil {
		return fmt.Errorf("cancelling swap: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE items SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		model.ItemStatusAvailable, itemID,
	); err != nil {
		return fmt.Errorf("restoring item status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing swap cancellation: %w", err)
	}
	return nil
}

// ListUserSwaps returns swaps the user participates in, newest first.
func ListUserSwaps(ctx context.Context, db *sql.DB, userID string) ([]model.Swap, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT s.id, s.item_id, s.initiator_id, s.receiver_id, s.status, s.created_at, s.completed_at,
		        i.id, i.user_id, i.title, i.status, i.point_value
		 FROM swaps s JOIN items i ON i.id = s.item_id
		 WHERE s.initiator_id = ? OR s.receiver_id = ?
		 ORDER BY s.created_at DESC, s.id ASC`, userID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing swaps: %w", err)
	}
	defer rows.Close()

	var swaps []model.Swap
	for rows.Next() {
		s := model.Swap{Item: &model.Item{}}
		err := rows.Scan(&s.ID, &s.ItemID, &s.InitiatorID, &s.ReceiverID, &s.Status, &s.CreatedAt, &s.CompletedAt,
			&s.Item.ID, &s.Item.UserID, &s.Item.Title, &s.Item.Status, &s.Item.PointValue)
		if err != nil {
			return nil, fmt.Errorf("scanning swap: %w", err)
		}
		swaps = append(swaps, s)
	}
	return swaps, rows.Err()
}

func scanSwapRequest(row rowScanner) (*model.SwapRequest, error) {
	req := &model.SwapRequest{Item: &model.Item{}}
	var message, requesterName, requesterAvatar sql.NullString
	err := row.Scan(&req.ID, &req.ItemID, &req.RequesterID, &message, &req.Status, &req.CreatedAt,
		&requesterName, &requesterAvatar,
		&req.Item.UserID, &req.Item.Title, &req.Item.Status, &req.Item.PointValue)
	if err != nil {
		return nil, err
	}
	req.Message = message.String
	req.Item.ID = req.ItemID
	req.Requester = &model.PublicUser{
		ID:       req.RequesterID,
		Name:     requesterName.String,
		AvatarID: requesterAvatar.String,
	}
	return req, nil
}

func scanSwapRequests(rows *sql.Rows) ([]model.SwapRequest, error) {
	defer rows.Close()

	var requests []model.SwapRequest
	for rows.Next() {
		req, err := scanSwapRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning swap request: %w", err)
		}
		requests = append(requests, *req)
	}
	return requests, rows.Err()
}
