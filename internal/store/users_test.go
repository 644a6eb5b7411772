package store

import (
	"context"
	"testing"

	"github.com/rewear-app/rewear/internal/db"
	"github.com/rewear-app/rewear/internal/model"
)

func TestCreateAndGetUser(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, err := CreateUser(ctx, database, "new@example.com", "Newcomer", "hash", model.RoleUser)
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if user.Points != model.StartingPoints {
		t.Errorf("expected starting balance %d, got %d", model.StartingPoints, user.Points)
	}
	if user.Role != model.RoleUser {
		t.Errorf("expected role USER, got %q", user.Role)
	}

	got, err := GetUserByEmail(ctx, database, "new@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if got == nil || got.ID != user.ID {
		t.Error("expected to find user by email")
	}
}

func TestDuplicateEmailRejected(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	if _, err := CreateUser(ctx, database, "dup@example.com", "First", "hash", model.RoleUser); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if _, err := CreateUser(ctx, database, "dup@example.com", "Second", "hash", model.RoleUser); err == nil {
		t.Error("expected duplicate active email to fail")
	}
}

func TestSoftDeleteFreesEmail(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, _ := CreateUser(ctx, database, "gone@example.com", "Leaver", "hash", model.RoleUser)
	if err := DeleteUser(ctx, database, user.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}

	// The email becomes reusable, and lookups prefer the active account.
	fresh, err := CreateUser(ctx, database, "gone@example.com", "Returner", "hash", model.RoleUser)
	if err != nil {
		t.Fatalf("CreateUser after soft delete: %v", err)
	}

	got, _ := GetUserByEmail(ctx, database, "gone@example.com")
	if got == nil || got.ID != fresh.ID {
		t.Error("expected email lookup to return the active account")
	}

	old, _ := GetUser(ctx, database, user.ID)
	if old == nil || old.DeletedAt == nil {
		t.Error("expected soft-deleted user to remain fetchable by ID")
	}
}

func TestUpdateUserProfile(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, _ := CreateUser(ctx, database, "p@example.com", "Before", "hash", model.RoleUser)
	if err := UpdateUserProfile(ctx, database, user.ID, "After", "avatar-1"); err != nil {
		t.Fatalf("UpdateUserProfile: %v", err)
	}

	got, _ := GetUser(ctx, database, user.ID)
	if got.Name != "After" || got.AvatarID != "avatar-1" {
		t.Errorf("profile not updated: %q %q", got.Name, got.AvatarID)
	}
}

func TestDashboardStats(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	owner := createTestUser(t, database, "owner@example.com")
	requester := createTestUser(t, database, "req@example.com")

	item, _ := CreateItem(ctx, database, owner.ID, testNewItem("Stat item"))
	CreateItem(ctx, database, owner.ID, testNewItem("Second item"))

	req, err := CreateSwapRequest(ctx, database, item.ID, requester.ID, "")
	if err != nil {
		t.Fatalf("CreateSwapRequest: %v", err)
	}
	if _, err := AcceptSwapRequest(ctx, database, req.ID, owner.ID); err != nil {
		t.Fatalf("AcceptSwapRequest: %v", err)
	}

	stats, err := GetDashboardStats(ctx, database, owner.ID)
	if err != nil {
		t.Fatalf("GetDashboardStats: %v", err)
	}
	if stats.TotalItems != 2 {
		t.Errorf("expected 2 items, got %d", stats.TotalItems)
	}
	if stats.ActiveSwaps != 1 {
		t.Errorf("expected 1 active swap, got %d", stats.ActiveSwaps)
	}
	if stats.ItemsSwapped != 0 {
		t.Errorf("expected 0 completed swaps, got %d", stats.ItemsSwapped)
	}
	if stats.PointsBalance != model.StartingPoints {
		t.Errorf("expected untouched balance, got %d", stats.PointsBalance)
	}
}
