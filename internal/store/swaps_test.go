package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/rewear-app/rewear/internal/db"
	"github.com/rewear-app/rewear/internal/model"
)

// swapFixture sets up an owner with an item and a requester.
func swapFixture(t *testing.T, database *sql.DB) (owner, requester *model.User, item *model.Item) {
	t.Helper()
	ctx := context.Background()

	owner = createTestUser(t, database, "owner@example.com")
	requester = createTestUser(t, database, "requester@example.com")

	in := testNewItem("Swappable")
	in.PointValue = 30
	var err error
	item, err = CreateItem(ctx, database, owner.ID, in)
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	return owner, requester, item
}

func TestCreateSwapRequest(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	owner, requester, item := swapFixture(t, database)

	req, err := CreateSwapRequest(ctx, database, item.ID, requester.ID, "Trade?")
	if err != nil {
		t.Fatalf("CreateSwapRequest: %v", err)
	}
	if req.Status != model.SwapRequestPending {
		t.Errorf("expected PENDING, got %q", req.Status)
	}
	if req.Message != "Trade?" {
		t.Errorf("expected message, got %q", req.Message)
	}
	if req.Requester == nil || req.Requester.ID != requester.ID {
		t.Error("expected joined requester")
	}

	// Owners cannot request their own items.
	if _, err := CreateSwapRequest(ctx, database, item.ID, owner.ID, ""); err == nil {
		t.Error("expected request for own item to fail")
	}
}

func TestCreateSwapRequestUnavailableItem(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	_, requester, item := swapFixture(t, database)

	status := model.ItemStatusSwapped
	UpdateItem(ctx, database, item.ID, ItemPatch{Status: &status})

	_, err := CreateSwapRequest(ctx, database, item.ID, requester.ID, "")
	if !errors.Is(err, ErrItemNotAvailable) {
		t.Errorf("expected ErrItemNotAvailable, got %v", err)
	}
}

func TestAcceptSwapRequest(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	owner, requester, item := swapFixture(t, database)
	other := createTestUser(t, database, "other@example.com")

	req, _ := CreateSwapRequest(ctx, database, item.ID, requester.ID, "")
	sibling, _ := CreateSwapRequest(ctx, database, item.ID, other.ID, "")

	swap, err := AcceptSwapRequest(ctx, database, req.ID, owner.ID)
	if err != nil {
		t.Fatalf("AcceptSwapRequest: %v", err)
	}
	if swap.Status != model.SwapPending {
		t.Errorf("expected pending swap, got %q", swap.Status)
	}
	if swap.InitiatorID != requester.ID || swap.ReceiverID != owner.ID {
		t.Errorf("swap parties wrong: %s -> %s", swap.InitiatorID, swap.ReceiverID)
	}

	updated, _ := GetItem(ctx, database, item.ID)
	if updated.Status != model.ItemStatusPendingSwap {
		t.Errorf("expected item PENDING_SWAP, got %q", updated.Status)
	}

	// Sibling pending requests are rejected in the same transaction.
	sib, _ := GetSwapRequest(ctx, database, sibling.ID)
	if sib.Status != model.SwapRequestRejected {
		t.Errorf("expected sibling request REJECTED, got %q", sib.Status)
	}
}

func TestAcceptSwapRequestOnlyOwner(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	_, requester, item := swapFixture(t, database)

	req, _ := CreateSwapRequest(ctx, database, item.ID, requester.ID, "")
	if _, err := AcceptSwapRequest(ctx, database, req.ID, requester.ID); err == nil {
		t.Error("expected non-owner accept to fail")
	}
}

func TestCompleteSwapTransfersPoints(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	owner, requester, item := swapFixture(t, database)

	req, _ := CreateSwapRequest(ctx, database, item.ID, requester.ID, "")
	swap, _ := AcceptSwapRequest(ctx, database, req.ID, owner.ID)

	if err := CompleteSwap(ctx, database, swap.ID); err != nil {
		t.Fatalf("CompleteSwap: %v", err)
	}

	gotRequester, _ := GetUser(ctx, database, requester.ID)
	gotOwner, _ := GetUser(ctx, database, owner.ID)
	if gotRequester.Points != model.StartingPoints-30 {
		t.Errorf("expected requester debited to %d, got %d", model.StartingPoints-30, gotRequester.Points)
	}
	if gotOwner.Points != model.StartingPoints+30 {
		t.Errorf("expected owner credited to %d, got %d", model.StartingPoints+30, gotOwner.Points)
	}

	updated, _ := GetItem(ctx, database, item.ID)
	if updated.Status != model.ItemStatusSwapped {
		t.Errorf("expected item SWAPPED, got %q", updated.Status)
	}

	done, _ := GetSwap(ctx, database, swap.ID)
	if done.Status != model.SwapCompleted || done.CompletedAt == nil {
		t.Errorf("expected completed swap with timestamp, got %+v", done)
	}
}

func TestCompleteSwapInsufficientPoints(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	owner, requester, item := swapFixture(t, database)

	req, _ := CreateSwapRequest(ctx, database, item.ID, requester.ID, "")
	swap, _ := AcceptSwapRequest(ctx, database, req.ID, owner.ID)

	database.Exec(`UPDATE users SET points = 5 WHERE id = ?`, requester.ID)

	err := CompleteSwap(ctx, database, swap.ID)
	if !errors.Is(err, ErrInsufficientPoints) {
		t.Fatalf("expected ErrInsufficientPoints, got %v", err)
	}

	// Nothing moved.
	gotOwner, _ := GetUser(ctx, database, owner.ID)
	if gotOwner.Points != model.StartingPoints {
		t.Errorf("owner balance changed on failed completion: %d", gotOwner.Points)
	}
	still, _ := GetSwap(ctx, database, swap.ID)
	if still.Status != model.SwapPending {
		t.Errorf("expected swap still pending, got %q", still.Status)
	}
}

func TestCancelSwapRestoresItem(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	owner, requester, item := swapFixture(t, database)

	req, _ := CreateSwapRequest(ctx, database, item.ID, requester.ID, "")
	swap, _ := AcceptSwapRequest(ctx, database, req.ID, owner.ID)

	if err := CancelSwap(ctx, database, swap.ID); err != nil {
		t.Fatalf("CancelSwap: %v", err)
	}

	updated, _ := GetItem(ctx, database, item.ID)
	if updated.Status != model.ItemStatusAvailable {
		t.Errorf("expected item back to AVAILABLE, got %q", updated.Status)
	}

	cancelled, _ := GetSwap(ctx, database, swap.ID)
	if cancelled.Status != model.SwapCancelled {
		t.Errorf("expected CANCELLED, got %q", cancelled.Status)
	}

	// A cancelled swap cannot be completed afterwards.
	if err := CompleteSwap(ctx, database, swap.ID); err == nil {
		t.Error("expected completing a cancelled swap to fail")
	}
}

func TestListUserSwapRequests(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	owner, requester, item := swapFixture(t, database)

	CreateSwapRequest(ctx, database, item.ID, requester.ID, "")

	incoming, outgoing, err := ListUserSwapRequests(ctx, database, owner.ID)
	if err != nil {
		t.Fatalf("ListUserSwapRequests: %v", err)
	}
	if len(incoming) != 1 || len(outgoing) != 0 {
		t.Errorf("owner: expected 1 incoming, 0 outgoing, got %d/%d", len(incoming), len(outgoing))
	}

	incoming, outgoing, _ = ListUserSwapRequests(ctx, database, requester.ID)
	if len(incoming) != 0 || len(outgoing) != 1 {
		t.Errorf("requester: expected 0 incoming, 1 outgoing, got %d/%d", len(incoming), len(outgoing))
	}
}
