package web

import (
	"log/slog"
	"net/http"

	"github.com/rewear-app/rewear/internal/model"
	"github.com/rewear-app/rewear/internal/store"
)

// DashboardPage handles GET /dashboard.
func (s *Server) DashboardPage(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())

	stats, err := store.GetDashboardStats(r.Context(), s.DB, claims.UserID)
	if err != nil {
		slog.Error("failed to get dashboard stats", "error", err)
	}
	items, err := store.ListUserItems(r.Context(), s.DB, claims.UserID)
	if err != nil {
		slog.Error("failed to list user items", "error", err)
	}
	incoming, outgoing, err := store.ListUserSwapRequests(r.Context(), s.DB, claims.UserID)
	if err != nil {
		slog.Error("failed to list swap requests", "error", err)
	}
	swaps, err := store.ListUserSwaps(r.Context(), s.DB, claims.UserID)
	if err != nil {
		slog.Error("failed to list swaps", "error", err)
	}

	s.Templates.Render(w, "dashboard.html", &struct {
		PageData
		Stats    *model.DashboardStats
		Items    []model.Item
		Incoming []model.SwapRequest
		Outgoing []model.SwapRequest
		Swaps    []model.Swap
	}{
		PageData: PageData{Title: "Dashboard", User: claims},
		Stats:    stats,
		Items:    items,
		Incoming: incoming,
		Outgoing: outgoing,
		Swaps:    swaps,
	})
}
