package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/rewear-app/rewear/internal/model"
	"github.com/rewear-app/rewear/internal/store"
)

// UsersHandler handles the caller's profile and dashboard endpoints.
type UsersHandler struct {
	DB *sql.DB
}

type updateProfileRequest struct {
	Name  *string `json:"name"`
	Image *string `json:"image"`
}

type meResponse struct {
	User  *model.User           `json:"user"`
	Stats *model.DashboardStats `json:"stats"`
}

// Me handles GET /api/me — profile plus dashboard stats.
func (h *UsersHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	user, err := store.GetUser(r.Context(), h.DB, claims.UserID)
	if err != nil || user == nil {
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}

	stats, err := store.GetDashboardStats(r.Context(), h.DB, claims.UserID)
	if err != nil {
		slog.Error("failed to get dashboard stats", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to fetch stats")
		return
	}

	jsonResponse(w, http.StatusOK, meResponse{User: user, Stats: stats})
}

// UpdateMe handles PUT /api/me — display name and avatar reference.
func (h *UsersHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	var req updateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := store.GetUser(r.Context(), h.DB, claims.UserID)
	if err != nil || user == nil {
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}

	name := user.Name
	avatarID := user.AvatarID
	if req.Name != nil {
		name = *req.Name
	}
	if req.Image != nil {
		avatarID = *req.Image
	}

	if err := store.UpdateUserProfile(r.Context(), h.DB, claims.UserID, name, avatarID); err != nil {
		slog.Error("failed to update profile", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to update profile")
		return
	}

	updated, err := store.GetUser(r.Context(), h.DB, claims.UserID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	jsonResponse(w, http.StatusOK, updated)
}
