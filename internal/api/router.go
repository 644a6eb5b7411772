package api

import (
	"database/sql"
	"net/http"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, jwtSecret string) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret}
	itemsHandler := &ItemsHandler{DB: db}
	swapsHandler := &SwapsHandler{DB: db}
	usersHandler := &UsersHandler{DB: db}
	imagesHandler := &ImagesHandler{DB: db}

	authMW := AuthMiddleware(jwtSecret, db)

	// Public: registration, login, catalog browsing, images.
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("GET /api/items", itemsHandler.List)
	mux.HandleFunc("GET /api/items/{id}", itemsHandler.Get)
	mux.HandleFunc("GET /api/images/{id}", imagesHandler.Get)

	// Session.
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))
	mux.Handle("PUT /api/auth/password", authMW(http.HandlerFunc(authHandler.ChangePassword)))

	// Items (owner-enforced in handlers).
	mux.Handle("POST /api/items", authMW(http.HandlerFunc(itemsHandler.Create)))
	mux.Handle("PUT /api/items/{id}", authMW(http.HandlerFunc(itemsHandler.Update)))
	mux.Handle("DELETE /api/items/{id}", authMW(http.HandlerFunc(itemsHandler.Delete)))

	// Swap requests and swaps.
	mux.Handle("POST /api/items/{id}/swap-requests", authMW(http.HandlerFunc(swapsHandler.CreateRequest)))
	mux.Handle("GET /api/swap-requests", authMW(http.HandlerFunc(swapsHandler.ListRequests)))
	mux.Handle("POST /api/swap-requests/{id}/accept", authMW(http.HandlerFunc(swapsHandler.AcceptRequest)))
	mux.Handle("POST /api/swap-requests/{id}/reject", authMW(http.HandlerFunc(swapsHandler.RejectRequest)))
	mux.Handle("GET /api/swaps", authMW(http.HandlerFunc(swapsHandler.ListSwaps)))
	mux.Handle("POST /api/swaps/{id}/complete", authMW(http.HandlerFunc(swapsHandler.Complete)))
	mux.Handle("POST /api/swaps/{id}/cancel", authMW(http.HandlerFunc(swapsHandler.Cancel)))

	// Profile and dashboard.
	mux.Handle("GET /api/me", authMW(http.HandlerFunc(usersHandler.Me)))
	mux.Handle("PUT /api/me", authMW(http.HandlerFunc(usersHandler.UpdateMe)))

	// Images.
	mux.Handle("POST /api/images", authMW(http.HandlerFunc(imagesHandler.Upload)))

	return mux
}
