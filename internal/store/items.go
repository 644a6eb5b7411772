package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/rewear-app/rewear/internal/catalog"
	"github.com/rewear-app/rewear/internal/model"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// itemColumns are the item fields selected by every item query, joined
// with the owner's public fields.
const itemColumns = `items.id, items.user_id, items.title, items.description,
       items.category, items.type, items.size, items.condition,
       items.point_value, items.status, items.created_at, items.updated_at,
       u.name, u.avatar_id`

// NewItem holds the fields for item creation. Validation happens at the
// API boundary; the store only applies the point value default.
type NewItem struct {
	Title       string
	Description string
	Category    string
	Type        string
	Size        string
	Condition   string
	Tags        []string
	Images      []string
	PointValue  int
}

// ItemPatch holds a partial item update. Nil fields are left unchanged.
type ItemPatch struct {
	Title       *string
	Description *string
	Category    *string
	Type        *string
	Size        *string
	Condition   *string
	Tags        *[]string
	Images      *[]string
	PointValue  *int
	Status      *string
}

// CreateItem creates an item owned by userID, with its tags and image
// references, in a single transaction.
func CreateItem(ctx context.Context, db *sql.DB, userID string, in NewItem) (*model.Item, error) {
	if in.PointValue < 1 {
		in.PointValue = model.DefaultPointValue
	}

	id := uuid.NewString()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO items (id, user_id, title, description, category, type, size, condition, point_value)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, userID, in.Title, in.Description, in.Category, in.Type, in.Size, in.Condition, in.PointValue,
	)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	if err := replaceItemLists(ctx, tx, id, in.Tags, in.Images); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing item creation: %w", err)
	}

	return GetItem(ctx, db, id)
}

// GetItem returns an item by ID with its tags, image references, and
// owner public fields, or nil if absent.
func GetItem(ctx context.Context, db *sql.DB, id string) (*model.Item, error) {
	return getItem(ctx, db, id)
}

func getItem(ctx context.Context, q querier, id string) (*model.Item, error) {
	row := q.QueryRowContext(ctx,
		`SELECT `+itemColumns+`
		 FROM items LEFT JOIN users u ON u.id = items.user_id
		 WHERE items.id = ?`, id,
	)
	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	if err := loadItemLists(ctx, q, item); err != nil {
		return nil, err
	}
	return item, nil
}

// GetItemDetail returns an item together with its pending swap requests
// (each with the requester's public fields), or nil if absent.
func GetItemDetail(ctx context.Context, db *sql.DB, id string) (*model.Item, []model.SwapRequest, error) {
	item, err := GetItem(ctx, db, id)
	if err != nil || item == nil {
		return item, nil, err
	}

	requests, err := ListItemSwapRequests(ctx, db, id, model.SwapRequestPending)
	if err != nil {
		return nil, nil, err
	}
	return item, requests, nil
}

// ListCatalog runs a catalog query against the items table. The match
// count and the page slice are read inside one transaction so the
// pagination envelope always agrees with the returned slice.
func ListCatalog(ctx context.Context, db *sql.DB, q catalog.Query) ([]model.Item, catalog.Page, error) {
	q = q.Normalize()
	conds, args := q.Predicates()
	where := strings.Join(conds, " AND ")

	tx, err := db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, catalog.Page{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var total int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM items WHERE `+where, args...,
	).Scan(&total)
	if err != nil {
		return nil, catalog.Page{}, fmt.Errorf("counting catalog items: %w", err)
	}

	pageArgs := append(args, q.Limit, q.Offset())
	rows, err := tx.QueryContext(ctx,
		`SELECT `+itemColumns+`
		 FROM items LEFT JOIN users u ON u.id = items.user_id
		 WHERE `+where+`
		 ORDER BY `+q.OrderBy()+`
		 LIMIT ? OFFSET ?`, pageArgs...,
	)
	if err != nil {
		return nil, catalog.Page{}, fmt.Errorf("listing catalog items: %w", err)
	}
	items, err := scanItems(rows)
	if err != nil {
		return nil, catalog.Page{}, err
	}

	for i := range items {
		if err := loadItemLists(ctx, tx, &items[i]); err != nil {
			return nil, catalog.Page{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, catalog.Page{}, fmt.Errorf("committing catalog read: %w", err)
	}

	if items == nil {
		items = []model.Item{}
	}
	return items, catalog.PageFor(q.Page, q.Limit, total), nil
}

// ListUserItems returns all items owned by a user, newest first.
func ListUserItems(ctx context.Context, db *sql.DB, userID string) ([]model.Item, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+itemColumns+`
		 FROM items LEFT JOIN users u ON u.id = items.user_id
		 WHERE items.user_id = ?
		 ORDER BY items.created_at DESC, items.id ASC`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing user items: %w", err)
	}
	items, err := scanItems(rows)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if err := loadItemLists(ctx, db, &items[i]); err != nil {
			return nil, err
		}
	}
	return items, nil
}

// UpdateItem applies a partial update to an item.
func UpdateItem(ctx context.Context, db *sql.DB, id string, patch ItemPatch) (*model.Item, error) {
	sets := []string{`updated_at = CURRENT_TIMESTAMP`}
	var args []any

	set := func(column string, value any) {
		sets = append(sets, column+` = ?`)
		args = append(args, value)
	}
	if patch.Title != nil {
		set("title", *patch.Title)
	}
	if patch.Description != nil {
		set("description", *patch.Description)
	}
	if patch.Category != nil {
		set("category", *patch.Category)
	}
	if patch.Type != nil {
		set("type", *patch.Type)
	}
	if patch.Size != nil {
		set("size", *patch.Size)
	}
	if patch.Condition != nil {
		set("condition", *patch.Condition)
	}
	if patch.PointValue != nil {
		set("point_value", *patch.PointValue)
	}
	if patch.Status != nil {
		set("status", *patch.Status)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	args = append(args, id)
	if _, err := tx.ExecContext(ctx,
		`UPDATE items SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...,
	); err != nil {
		return nil, fmt.Errorf("updating item: %w", err)
	}

	if patch.Tags != nil {
		if _, err := tx.ExecContext(ctx, `DELETE FROM item_tags WHERE item_id = ?`, id); err != nil {
			return nil, fmt.Errorf("clearing item tags: %w", err)
		}
	}
	if patch.Images != nil {
		if _, err := tx.ExecContext(ctx, `DELETE FROM item_images WHERE item_id = ?`, id); err != nil {
			return nil, fmt.Errorf("clearing item images: %w", err)
		}
	}
	var tags, images []string
	if patch.Tags != nil {
		tags = *patch.Tags
	}
	if patch.Images != nil {
		images = *patch.Images
	}
	if err := replaceItemLists(ctx, tx, id, tags, images); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing item update: %w", err)
	}

	return GetItem(ctx, db, id)
}

// DeleteItem removes an item. Tag and image link rows, swap requests
// and swaps cascade with it.
func DeleteItem(ctx context.Context, db *sql.DB, id string) error {
	_, err := db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	return nil
}

// replaceItemLists inserts tag and image rows for an item. Position
// preserves insertion order; duplicate tags are kept as given.
func replaceItemLists(ctx context.Context, q querier, itemID string, tags, images []string) error {
	for i, tag := range tags {
		if _, err := q.ExecContext(ctx,
			`INSERT INTO item_tags (item_id, position, tag) VALUES (?, ?, ?)`,
			itemID, i, tag,
		); err != nil {
			return fmt.Errorf("inserting item tag: %w", err)
		}
	}
	for i, imageID := range images {
		if _, err := q.ExecContext(ctx,
			`INSERT INTO item_images (item_id, position, image_id) VALUES (?, ?, ?)`,
			itemID, i, imageID,
		); err != nil {
			return fmt.Errorf("inserting item image: %w", err)
		}
	}
	return nil
}

// loadItemLists populates an item's tags and image references in
// insertion order.
func loadItemLists(ctx context.Context, q querier, item *model.Item) error {
	rows, err := q.QueryContext(ctx,
		`SELECT tag FROM item_tags WHERE item_id = ? ORDER BY position`, item.ID,
	)
	if err != nil {
		return fmt.Errorf("loading item tags: %w", err)
	}
	defer rows.Close()

	item.Tags = []string{}
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return fmt.Errorf("scanning item tag: %w", err)
		}
		item.Tags = append(item.Tags, tag)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = q.QueryContext(ctx,
		`SELECT image_id FROM item_images WHERE item_id = ? ORDER BY position`, item.ID,
	)
	if err != nil {
		return fmt.Errorf("loading item images: %w", err)
	}
	defer rows.Close()

	item.Images = []string{}
	for rows.Next() {
		var imageID string
		if err := rows.Scan(&imageID); err != nil {
			return fmt.Errorf("scanning item image: %w", err)
		}
		item.Images = append(item.Images, imageID)
	}
	return rows.Err()
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*model.Item, error) {
	item := &model.Item{}
	var ownerName, ownerAvatar sql.NullString
	err := row.Scan(&item.ID, &item.UserID, &item.Title, &item.Description,
		&item.Category, &item.Type, &item.Size, &item.Condition,
		&item.PointValue, &item.Status, &item.CreatedAt, &item.UpdatedAt,
		&ownerName, &ownerAvatar)
	if err != nil {
		return nil, err
	}
	item.User = &model.PublicUser{
		ID:       item.UserID,
		Name:     ownerName.String,
		AvatarID: ownerAvatar.String,
	}
	return item, nil
}

func scanItems(rows *sql.Rows) ([]model.Item, error) {
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}
