package web

import (
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/rewear-app/rewear/internal/auth"
	"github.com/rewear-app/rewear/internal/model"
	"github.com/rewear-app/rewear/internal/store"
)

// LoginPage handles GET /login.
func (s *Server) LoginPage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, "login.html", &PageData{Title: "Sign in"})
}

// LoginSubmit handles POST /login.
func (s *Server) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	email := r.FormValue("email")
	password := r.FormValue("password")

	if email == "" || password == "" {
		s.Templates.Render(w, "login.html", &PageData{
			Title: "Sign in",
			Error: "Enter your email and password.",
		})
		return
	}

	user, err := store.GetUserByEmail(r.Context(), s.DB, email)
	if err != nil || user == nil || user.DeletedAt != nil {
		s.Templates.Render(w, "login.html", &PageData{
			Title: "Sign in",
			Error: "Wrong email or password.",
		})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.Templates.Render(w, "login.html", &PageData{
			Title: "Sign in",
			Error: "Wrong email or password.",
		})
		return
	}

	s.setAuthCookie(w, user)
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// RegisterPage handles GET /register.
func (s *Server) RegisterPage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, "register.html", &PageData{Title: "Join"})
}

// RegisterSubmit handles POST /register.
func (s *Server) RegisterSubmit(w http.ResponseWriter, r *http.Request) {
	email := r.FormValue("email")
	name := r.FormValue("name")
	password := r.FormValue("password")

	if email == "" || !strings.Contains(email, "@") || len(password) < 8 {
		s.Templates.Render(w, "register.html", &PageData{
			Title: "Join",
			Error: "Enter a valid email and a password of at least 8 characters.",
		})
		return
	}

	existing, err := store.GetUserByEmail(r.Context(), s.DB, email)
	if err == nil && existing != nil && existing.DeletedAt == nil {
		s.Templates.Render(w, "register.html", &PageData{
			Title: "Join",
			Error: "That email is already registered.",
		})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		s.Templates.Render(w, "register.html", &PageData{
			Title: "Join",
			Error: "Registration failed, try again.",
		})
		return
	}

	user, err := store.CreateUser(r.Context(), s.DB, email, name, string(hash), model.RoleUser)
	if err != nil {
		s.Templates.Render(w, "register.html", &PageData{
			Title: "Join",
			Error: "Registration failed, try again.",
		})
		return
	}

	s.setAuthCookie(w, user)
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// Logout handles POST /logout.
func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	if claims := GetWebClaims(r.Context()); claims != nil && claims.ID != "" && claims.ExpiresAt != nil {
		_ = store.RevokeToken(r.Context(), s.DB, claims.ID, claims.ExpiresAt.Time)
	}
	clearAuthCookie(w)
	http.Redirect(w, r, "/browse", http.StatusSeeOther)
}

func (s *Server) setAuthCookie(w http.ResponseWriter, user *model.User) {
	token, err := auth.GenerateToken(s.JWTSecret, user.ID, user.Email, user.Role)
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   86400, // 24 hours
	})
}
