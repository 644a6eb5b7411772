package api

import (
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/rewear-app/rewear/internal/model"
	"github.com/rewear-app/rewear/internal/store"
)

// SwapsHandler handles swap request and swap lifecycle endpoints.
type SwapsHandler struct {
	DB *sql.DB
}

type createSwapRequestRequest struct {
	Message string `json:"message"`
}

type listSwapRequestsResponse struct {
	Incoming []model.SwapRequest `json:"incoming"`
	Outgoing []model.SwapRequest `json:"outgoing"`
}

// CreateRequest handles POST /api/items/{id}/swap-requests.
func (h *SwapsHandler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	itemID := r.PathValue("id")

	// The message is optional; an empty body is fine.
	var req createSwapRequestRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := store.GetItem(r.Context(), h.DB, itemID)
	if err != nil {
		slog.Error("failed to get item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to fetch item")
		return
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}
	if item.UserID == claims.UserID {
		jsonError(w, http.StatusBadRequest, "cannot request your own item")
		return
	}

	created, err := store.CreateSwapRequest(r.Context(), h.DB, itemID, claims.UserID, req.Message)
	if err != nil {
		if errors.Is(err, store.ErrItemNotAvailable) {
			jsonError(w, http.StatusConflict, "item is not available")
			return
		}
		slog.Error("failed to create swap request", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to create swap request")
		return
	}

	jsonResponse(w, http.StatusCreated, created)
}

// ListRequests handles GET /api/swap-requests — the caller's incoming
// and outgoing requests.
func (h *SwapsHandler) ListRequests(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	incoming, outgoing, err := store.ListUserSwapRequests(r.Context(), h.DB, claims.UserID)
	if err != nil {
		slog.Error("failed to list swap requests", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to fetch swap requests")
		return
	}
	if incoming == nil {
		incoming = []model.SwapRequest{}
	}
	if outgoing == nil {
		outgoing = []model.SwapRequest{}
	}

	jsonResponse(w, http.StatusOK, listSwapRequestsResponse{Incoming: incoming, Outgoing: outgoing})
}

// ListSwaps handles GET /api/swaps — swaps the caller participates in.
func (h *SwapsHandler) ListSwaps(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	swaps, err := store.ListUserSwaps(r.Context(), h.DB, claims.UserID)
	if err != nil {
		slog.Error("failed to list swaps", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to fetch swaps")
		return
	}
	if swaps == nil {
		swaps = []model.Swap{}
	}

	jsonResponse(w, http.StatusOK, map[string][]model.Swap{"swaps": swaps})
}

// AcceptRequest handles POST /api/swap-requests/{id}/accept.
func (h *SwapsHandler) AcceptRequest(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	req, err := store.GetSwapRequest(r.Context(), h.DB, r.PathValue("id"))
	if err != nil {
		slog.Error("failed to get swap request", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to fetch swap request")
		return
	}
	if req == nil {
		jsonError(w, http.StatusNotFound, "swap request not found")
		return
	}
	if req.Item.UserID != claims.UserID {
		jsonError(w, http.StatusForbidden, "forbidden")
		return
	}
	if req.Status != model.SwapRequestPending {
		jsonError(w, http.StatusConflict, "request is not pending")
		return
	}

	swap, err := store.AcceptSwapRequest(r.Context(), h.DB, req.ID, claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrItemNotAvailable) {
			jsonError(w, http.StatusConflict, "item is not available")
			return
		}
		slog.Error("failed to accept swap request", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to accept swap request")
		return
	}

	jsonResponse(w, http.StatusOK, swap)
}

// RejectRequest handles POST /api/swap-requests/{id}/reject.
func (h *SwapsHandler) RejectRequest(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	req, err := store.GetSwapRequest(r.Context(), h.DB, r.PathValue("id"))
	if err != nil {
		slog.Error("failed to get swap request", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to fetch swap request")
		return
	}
	if req == nil {
		jsonError(w, http.StatusNotFound, "swap request not found")
		return
	}
	if req.Item.UserID != claims.UserID {
		jsonError(w, http.StatusForbidden, "forbidden")
		return
	}
	if req.Status != model.SwapRequestPending {
		jsonError(w, http.StatusConflict, "request is not pending")
		return
	}

	if err := store.RejectSwapRequest(r.Context(), h.DB, req.ID, claims.UserID); err != nil {
		slog.Error("failed to reject swap request", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to reject swap request")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "swap request rejected"})
}

// Complete handles POST /api/swaps/{id}/complete.
func (h *SwapsHandler) Complete(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	swap, err := h.pendingSwapForCaller(w, r, claims.UserID)
	if swap == nil || err != nil {
		return
	}

	if err := store.CompleteSwap(r.Context(), h.DB, swap.ID); err != nil {
		if errors.Is(err, store.ErrInsufficientPoints) {
			jsonError(w, http.StatusBadRequest, "insufficient points")
			return
		}
		slog.Error("failed to complete swap", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to complete swap")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "swap completed"})
}

// Cancel handles POST /api/swaps/{id}/cancel.
func (h *SwapsHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	swap, err := h.pendingSwapForCaller(w, r, claims.UserID)
	if swap == nil || err != nil {
		return
	}

	if err := store.CancelSwap(r.Context(), h.DB, swap.ID); err != nil {
		slog.Error("failed to cancel swap", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to cancel swap")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "swap cancelled"})
}

// pendingSwapForCaller loads the swap in the path and writes the error
// response itself if the swap is absent, not the caller's, or not
// pending.
func (h *SwapsHandler) pendingSwapForCaller(w http.ResponseWriter, r *http.Request, userID string) (*model.Swap, error) {
	swap, err := store.GetSwap(r.Context(), h.DB, r.PathValue("id"))
	if err != nil {
		slog.Error("failed to get swap", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to fetch swap")
		return nil, err
	}
	if swap == nil {
		jsonError(w, http.StatusNotFound, "swap not found")
		return nil, nil
	}
	if swap.InitiatorID != userID && swap.ReceiverID != userID {
		jsonError(w, http.StatusForbidden, "forbidden")
		return nil, nil
	}
	if swap.Status != model.SwapPending {
		jsonError(w, http.StatusConflict, "swap is not pending")
		return nil, nil
	}
	return swap, nil
}
