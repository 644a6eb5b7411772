package model

import "time"

// SwapRequest is a proposal by one user to exchange for another user's item.
type SwapRequest struct {
	ID          string    `json:"id"`
	ItemID      string    `json:"itemId"`
	RequesterID string    `json:"requesterId"`
	Message     string    `json:"message,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`

	// Joined fields (not always populated).
	Requester *PublicUser `json:"requester,omitempty"`
	Item      *Item       `json:"item,omitempty"`
}

// Swap is an accepted exchange in progress or finished.
type Swap struct {
	ID          string     `json:"id"`
	ItemID      string     `json:"itemId"`
	InitiatorID string     `json:"initiatorId"`
	ReceiverID  string     `json:"receiverId"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`

	// Joined item (not always populated).
	Item *Item `json:"item,omitempty"`
}

// Swap request statuses.
const (
	SwapRequestPending  = "PENDING"
	SwapRequestAccepted = "ACCEPTED"
	SwapRequestRejected = "REJECTED"
)

// Swap statuses.
const (
	SwapPending   = "PENDING"
	SwapCompleted = "COMPLETED"
	SwapCancelled = "CANCELLED"
)
