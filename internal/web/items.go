package web

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/rewear-app/rewear/internal/catalog"
	"github.com/rewear-app/rewear/internal/imaging"
	"github.com/rewear-app/rewear/internal/model"
	"github.com/rewear-app/rewear/internal/store"
)

// BrowsePage handles GET /browse — the public catalog with filters,
// driven by the same query engine as the API.
func (s *Server) BrowsePage(w http.ResponseWriter, r *http.Request) {
	q := catalog.ParseValues(r.URL.Query())

	items, page, err := store.ListCatalog(r.Context(), s.DB, q)
	if err != nil {
		slog.Error("failed to list catalog", "error", err)
	}

	s.Templates.Render(w, "browse.html", &struct {
		PageData
		Items []model.Item
		Query catalog.Query
		Page  catalog.Page
	}{
		PageData: PageData{Title: "Browse items", User: GetWebClaims(r.Context())},
		Items:    items,
		Query:    q,
		Page:     page,
	})
}

// ItemDetailPage handles GET /items/{id}.
func (s *Server) ItemDetailPage(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())

	item, requests, err := store.GetItemDetail(r.Context(), s.DB, r.PathValue("id"))
	if err != nil {
		slog.Error("failed to get item", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if item == nil {
		http.Error(w, "item not found", http.StatusNotFound)
		return
	}

	isOwner := claims != nil && claims.UserID == item.UserID

	s.Templates.Render(w, "item_detail.html", &struct {
		PageData
		Item     *model.Item
		Requests []model.SwapRequest
		IsOwner  bool
	}{
		PageData: PageData{Title: item.Title, User: claims},
		Item:     item,
		Requests: requests,
		IsOwner:  isOwner,
	})
}

// ItemNewPage handles GET /items/new.
func (s *Server) ItemNewPage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, "item_new.html", &PageData{
		Title: "List an item",
		User:  GetWebClaims(r.Context()),
	})
}

// ItemCreateSubmit handles POST /items/new: form fields plus optional
// photo uploads, processed through the imaging pipeline.
func (s *Server) ItemCreateSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())

	// Up to ~20 MB of photos per submission.
	r.Body = http.MaxBytesReader(w, r.Body, 20<<20)
	if err := r.ParseMultipartForm(20 << 20); err != nil {
		s.renderItemNewError(w, r, "Form too large or invalid.")
		return
	}

	in := store.NewItem{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Category:    r.FormValue("category"),
		Type:        r.FormValue("type"),
		Size:        r.FormValue("size"),
		Condition:   r.FormValue("condition"),
	}
	if in.Title == "" || in.Description == "" || in.Category == "" ||
		in.Type == "" || in.Size == "" || in.Condition == "" {
		s.renderItemNewError(w, r, "All fields except tags and photos are required.")
		return
	}

	if tags := strings.TrimSpace(r.FormValue("tags")); tags != "" {
		for _, tag := range strings.Split(tags, ",") {
			in.Tags = append(in.Tags, strings.TrimSpace(tag))
		}
	}
	if pv := r.FormValue("pointValue"); pv != "" {
		n, err := strconv.Atoi(pv)
		if err != nil || n < 1 {
			s.renderItemNewError(w, r, "Point value must be a positive number.")
			return
		}
		in.PointValue = n
	}

	if r.MultipartForm != nil {
		for _, header := range r.MultipartForm.File["photos"] {
			file, err := header.Open()
			if err != nil {
				continue
			}
			result, err := imaging.Process(file)
			file.Close()
			if err != nil {
				s.renderItemNewError(w, r, "One of the photos is not a valid JPEG or PNG.")
				return
			}
			id, err := store.SaveImage(r.Context(), s.DB, result.Data, result.MIME)
			if err != nil {
				slog.Error("failed to save photo", "error", err)
				s.renderItemNewError(w, r, "Saving a photo failed, try again.")
				return
			}
			in.Images = append(in.Images, id)
		}
	}

	item, err := store.CreateItem(r.Context(), s.DB, claims.UserID, in)
	if err != nil {
		slog.Error("failed to create item", "error", err)
		s.renderItemNewError(w, r, "Listing the item failed, try again.")
		return
	}

	http.Redirect(w, r, "/items/"+item.ID, http.StatusSeeOther)
}

func (s *Server) renderItemNewError(w http.ResponseWriter, r *http.Request, msg string) {
	s.Templates.Render(w, "item_new.html", &PageData{
		Title: "List an item",
		User:  GetWebClaims(r.Context()),
		Error: msg,
	})
}
