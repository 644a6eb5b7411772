package model

import "time"

// Item represents a listed clothing article.
type Item struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Type        string    `json:"type"`
	Size        string    `json:"size"`
	Condition   string    `json:"condition"`
	Tags        []string  `json:"tags"`
	Images      []string  `json:"images"`
	Status      string    `json:"status"`
	PointValue  int       `json:"pointValue"`
	UserID      string    `json:"userId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	// Joined owner (not always populated).
	User *PublicUser `json:"user,omitempty"`
}

// Item statuses.
const (
	ItemStatusAvailable   = "AVAILABLE"
	ItemStatusPendingSwap = "PENDING_SWAP"
	ItemStatusSwapped     = "SWAPPED"
	ItemStatusRemoved     = "REMOVED"
)

// DefaultPointValue is assigned when a new item omits its point value.
const DefaultPointValue = 10

// ValidItemStatus reports whether status belongs to the closed status set.
func ValidItemStatus(status string) bool {
	switch status {
	case ItemStatusAvailable, ItemStatusPendingSwap, ItemStatusSwapped, ItemStatusRemoved:
		return true
	}
	return false
}
