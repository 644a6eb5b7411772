package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/rewear-app/rewear/internal/catalog"
	"github.com/rewear-app/rewear/internal/model"
	"github.com/rewear-app/rewear/internal/store"
)

// ItemsHandler handles item CRUD and catalog listing endpoints.
type ItemsHandler struct {
	DB *sql.DB
}

type createItemRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Type        string   `json:"type"`
	Size        string   `json:"size"`
	Condition   string   `json:"condition"`
	Tags        []string `json:"tags"`
	Images      []string `json:"images"`
	PointValue  *int     `json:"pointValue"`
}

type updateItemRequest struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Category    *string   `json:"category"`
	Type        *string   `json:"type"`
	Size        *string   `json:"size"`
	Condition   *string   `json:"condition"`
	Tags        *[]string `json:"tags"`
	Images      *[]string `json:"images"`
	PointValue  *int      `json:"pointValue"`
	Status      *string   `json:"status"`
}

type listItemsResponse struct {
	Items      []model.Item `json:"items"`
	Pagination catalog.Page `json:"pagination"`
}

type itemDetailResponse struct {
	*model.Item
	SwapRequests []model.SwapRequest `json:"swapRequests"`
}

// List handles GET /api/items — the public catalog listing. Filter,
// sort and page parameters are silently defaulted, never rejected.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := catalog.ParseValues(r.URL.Query())

	items, page, err := store.ListCatalog(r.Context(), h.DB, q)
	if err != nil {
		slog.Error("failed to list catalog", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to fetch items")
		return
	}

	jsonResponse(w, http.StatusOK, listItemsResponse{Items: items, Pagination: page})
}

// Get handles GET /api/items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	item, requests, err := store.GetItemDetail(r.Context(), h.DB, r.PathValue("id"))
	if err != nil {
		slog.Error("failed to get item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to fetch item")
		return
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}
	if requests == nil {
		requests = []model.SwapRequest{}
	}

	jsonResponse(w, http.StatusOK, itemDetailResponse{Item: item, SwapRequests: requests})
}

// Create handles POST /api/items.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	var req createItemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	details := map[string]string{}
	requireText(details, "title", req.Title)
	requireText(details, "description", req.Description)
	requireText(details, "category", req.Category)
	requireText(details, "type", req.Type)
	requireText(details, "size", req.Size)
	requireText(details, "condition", req.Condition)
	if req.PointValue != nil && *req.PointValue < 1 {
		details["pointValue"] = "must be at least 1"
	}
	if len(details) > 0 {
		jsonValidationError(w, details)
		return
	}

	in := store.NewItem{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Type:        req.Type,
		Size:        req.Size,
		Condition:   req.Condition,
		Tags:        req.Tags,
		Images:      req.Images,
	}
	if req.PointValue != nil {
		in.PointValue = *req.PointValue
	}

	item, err := store.CreateItem(r.Context(), h.DB, claims.UserID, in)
	if err != nil {
		slog.Error("failed to create item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to create item")
		return
	}

	jsonResponse(w, http.StatusCreated, item)
}

// Update handles PUT /api/items/{id}. Only the item's owner may update.
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	id := r.PathValue("id")

	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("failed to get item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to fetch item")
		return
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}
	if item.UserID != claims.UserID {
		jsonError(w, http.StatusForbidden, "forbidden")
		return
	}

	var req updateItemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	details := map[string]string{}
	requireProvidedText(details, "title", req.Title)
	requireProvidedText(details, "description", req.Description)
	requireProvidedText(details, "category", req.Category)
	requireProvidedText(details, "type", req.Type)
	requireProvidedText(details, "size", req.Size)
	requireProvidedText(details, "condition", req.Condition)
	if req.PointValue != nil && *req.PointValue < 1 {
		details["pointValue"] = "must be at least 1"
	}
	if req.Status != nil && !model.ValidItemStatus(*req.Status) {
		details["status"] = "invalid status"
	}
	if len(details) > 0 {
		jsonValidationError(w, details)
		return
	}

	updated, err := store.UpdateItem(r.Context(), h.DB, id, store.ItemPatch{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Type:        req.Type,
		Size:        req.Size,
		Condition:   req.Condition,
		Tags:        req.Tags,
		Images:      req.Images,
		PointValue:  req.PointValue,
		Status:      req.Status,
	})
	if err != nil {
		slog.Error("failed to update item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to update item")
		return
	}

	jsonResponse(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/items/{id}. Only the item's owner may delete.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	id := r.PathValue("id")

	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("failed to get item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to fetch item")
		return
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}
	if item.UserID != claims.UserID {
		jsonError(w, http.StatusForbidden, "forbidden")
		return
	}

	if err := store.DeleteItem(r.Context(), h.DB, id); err != nil {
		slog.Error("failed to delete item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to delete item")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "item deleted"})
}

// requireText records a violation if a required field is empty.
func requireText(details map[string]string, field, value string) {
	if value == "" {
		details[field] = "required"
	}
}

// requireProvidedText records a violation if an optional field was
// provided but empty.
func requireProvidedText(details map[string]string, field string, value *string) {
	if value != nil && *value == "" {
		details[field] = "must not be empty"
	}
}
