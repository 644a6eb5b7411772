package model

import "time"

// User represents a registered member of the swap platform.
type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	AvatarID     string     `json:"image,omitempty"`
	PasswordHash string     `json:"-"`
	Points       int        `json:"points"`
	Role         string     `json:"role"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
	DeletedAt    *time.Time `json:"deletedAt,omitempty"`
}

// PublicUser is the subset of user fields exposed alongside other
// users' items and swap requests.
type PublicUser struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	AvatarID string `json:"image,omitempty"`
}

// Public returns the user's publicly visible fields.
func (u *User) Public() *PublicUser {
	return &PublicUser{ID: u.ID, Name: u.Name, AvatarID: u.AvatarID}
}

// DashboardStats are the counters shown on a user's dashboard.
type DashboardStats struct {
	TotalItems    int `json:"totalItems"`
	ActiveSwaps   int `json:"activeSwaps"`
	PointsBalance int `json:"pointsBalance"`
	ItemsSwapped  int `json:"itemsSwapped"`
}

// Roles.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// StartingPoints is the point balance granted on registration.
const StartingPoints = 100

// ValidRole reports whether role belongs to the closed role set.
func ValidRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}
