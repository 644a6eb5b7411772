package web

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/rewear-app/rewear/internal/model"
	"github.com/rewear-app/rewear/internal/store"
)

// SwapRequestSubmit handles POST /items/{id}/request.
func (s *Server) SwapRequestSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	itemID := r.PathValue("id")

	_, err := store.CreateSwapRequest(r.Context(), s.DB, itemID, claims.UserID, r.FormValue("message"))
	if err != nil && !errors.Is(err, store.ErrItemNotAvailable) {
		slog.Error("failed to create swap request", "error", err)
	}

	http.Redirect(w, r, "/items/"+itemID, http.StatusSeeOther)
}

// SwapRequestAccept handles POST /requests/{id}/accept.
func (s *Server) SwapRequestAccept(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())

	if _, err := store.AcceptSwapRequest(r.Context(), s.DB, r.PathValue("id"), claims.UserID); err != nil {
		slog.Error("failed to accept swap request", "error", err)
	}
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// SwapRequestReject handles POST /requests/{id}/reject.
func (s *Server) SwapRequestReject(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())

	if err := store.RejectSwapRequest(r.Context(), s.DB, r.PathValue("id"), claims.UserID); err != nil {
		slog.Error("failed to reject swap request", "error", err)
	}
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// SwapComplete handles POST /swaps/{id}/complete.
func (s *Server) SwapComplete(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())

	swap, err := store.GetSwap(r.Context(), s.DB, r.PathValue("id"))
	if err != nil || swap == nil {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	if swap.InitiatorID != claims.UserID && swap.ReceiverID != claims.UserID {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	if swap.Status == model.SwapPending {
		if err := store.CompleteSwap(r.Context(), s.DB, swap.ID); err != nil {
			slog.Error("failed to complete swap", "error", err)
		}
	}
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// SwapCancel handles POST /swaps/{id}/cancel.
func (s *Server) SwapCancel(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())

	swap, err := store.GetSwap(r.Context(), s.DB, r.PathValue("id"))
	if err != nil || swap == nil {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	if swap.InitiatorID != claims.UserID && swap.ReceiverID != claims.UserID {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	if swap.Status == model.SwapPending {
		if err := store.CancelSwap(r.Context(), s.DB, swap.ID); err != nil {
			slog.Error("failed to cancel swap", "error", err)
		}
	}
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}
