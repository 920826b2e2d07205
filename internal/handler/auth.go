package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/photo-share/internal/auth"
	"github.com/sakif/photo-share/internal/service"
)

// AuthHandler serves signup, login and logout.
//
//   - GET  /signup, /login → HTML forms
//   - POST /signup, /login → JSON or form body {username, password};
//     a success sets the session cookie
//   - GET  /logout         → clears the cookie, redirects to /login
//   - GET  /               → /feed when logged in, else /login
type AuthHandler struct {
	auth   *service.AuthService
	tokens *auth.TokenService
	pages  *Pages
	logger *slog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(authSvc *service.AuthService, tokens *auth.TokenService, pages *Pages, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:   authSvc,
		tokens: tokens,
		pages:  pages,
		logger: logger,
	}
}

// HandleIndex redirects to the feed or the login page. The route runs
// behind auth.OptionalSession.
func (h *AuthHandler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.SessionFromContext(r.Context()); ok {
		http.Redirect(w, r, "/feed", http.StatusFound)
		return
	}
	http.Redirect(w, r, "/login", http.StatusFound)
}

func (h *AuthHandler) HandleLoginPage(w http.ResponseWriter, r *http.Request) {
	h.pages.render(w, "login.html", pageData{Title: "Log in"})
}

func (h *AuthHandler) HandleSignupPage(w http.ResponseWriter, r *http.Request) {
	h.pages.render(w, "signup.html", pageData{Title: "Sign up"})
}

// HandleSignup creates an account and logs the new user in.
//
// HTTP: POST /signup
func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	fields, err := decodeFields(r, "username", "password")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	res, err := h.auth.Register(r.Context(), fields["username"], fields["password"])
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	auth.SetSessionCookie(w, h.tokens, res.Token)
	writeOK(w, "")
}

// HandleLogin checks credentials and sets the session cookie.
//
// HTTP: POST /login
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	fields, err := decodeFields(r, "username", "password")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	res, err := h.auth.Authenticate(r.Context(), fields["username"], fields["password"])
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	auth.SetSessionCookie(w, h.tokens, res.Token)
	writeOK(w, "")
}

// HandleLogout drops the session cookie. The token itself stays valid
// until it expires; without the cookie the browser no longer sends it.
//
// HTTP: GET /logout
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusFound)
}
