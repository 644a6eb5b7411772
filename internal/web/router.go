package web

import (
	"database/sql"
	"net/http"

	webembed "github.com/rewear-app/rewear/web"
)

// NewRouter creates the web page router with all page routes registered.
func NewRouter(db *sql.DB, jwtSecret string) (http.Handler, error) {
	templates, err := LoadTemplates()
	if err != nil {
		return nil, err
	}

	s := &Server{
		DB:        db,
		Templates: templates,
		JWTSecret: jwtSecret,
	}

	mux := http.NewServeMux()
	cookieAuth := CookieAuthMiddleware(jwtSecret, db)
	optionalAuth := OptionalCookieAuth(jwtSecret, db)

	// Static assets.
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(webembed.StaticFS()))))

	// Public routes. The catalog is open to anonymous browsing.
	mux.Handle("GET /{$}", optionalAuth(http.RedirectHandler("/browse", http.StatusSeeOther)))
	mux.Handle("GET /browse", optionalAuth(http.HandlerFunc(s.BrowsePage)))
	mux.Handle("GET /items/{id}", optionalAuth(http.HandlerFunc(s.ItemDetailPage)))

	mux.HandleFunc("GET /login", s.LoginPage)
	mux.HandleFunc("POST /login", s.LoginSubmit)
	mux.HandleFunc("GET /register", s.RegisterPage)
	mux.HandleFunc("POST /register", s.RegisterSubmit)
	mux.Handle("POST /logout", optionalAuth(http.HandlerFunc(s.Logout)))

	// Authenticated routes.
	mux.Handle("GET /dashboard", cookieAuth(http.HandlerFunc(s.DashboardPage)))
	mux.Handle("GET /items/new", cookieAuth(http.HandlerFunc(s.ItemNewPage)))
	mux.Handle("POST /items/new", cookieAuth(http.HandlerFunc(s.ItemCreateSubmit)))
	mux.Handle("POST /items/{id}/request", cookieAuth(http.HandlerFunc(s.SwapRequestSubmit)))
	mux.Handle("POST /requests/{id}/accept", cookieAuth(http.HandlerFunc(s.SwapRequestAccept)))
	mux.Handle("POST /requests/{id}/reject", cookieAuth(http.HandlerFunc(s.SwapRequestReject)))
	mux.Handle("POST /swaps/{id}/complete", cookieAuth(http.HandlerFunc(s.SwapComplete)))
	mux.Handle("POST /swaps/{id}/cancel", cookieAuth(http.HandlerFunc(s.SwapCancel)))

	return mux, nil
}
