package auth

import (
	"context"
	"net/http"
)

// CookieName is the HttpOnly cookie holding the session token.
const CookieName = "session"

// contextKey is unexported so no other package can read or overwrite the
// session stored in a request context.
type contextKey string

const sessionKey contextKey = "session"

// RequireSession enforces a valid session on the wrapped routes.
//
// When the cookie is missing or invalid the request is handed to
// onMissing instead of next: API routes pass a handler that writes a 401
// JSON body, page routes one that redirects to /login.
func RequireSession(tokens *TokenService, onMissing http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := sessionFromRequest(r, tokens)
			if err != nil {
				onMissing.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
		})
	}
}

// OptionalSession attaches the session when a valid cookie is present and
// never blocks the request.
func OptionalSession(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if sess, err := sessionFromRequest(r, tokens); err == nil {
				r = r.WithContext(WithSession(r.Context(), sess))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithSession returns a copy of ctx carrying sess.
func WithSession(ctx context.Context, sess Session) context.Context {
	return context.WithValue(ctx, sessionKey, sess)
}

// SessionFromContext returns the session attached by RequireSession or
// OptionalSession. ok is false for anonymous requests.
func SessionFromContext(ctx context.Context) (Session, bool) {
	sess, ok := ctx.Value(sessionKey).(Session)
	return sess, ok && sess.UserID > 0
}

// SetSessionCookie stores token in the session cookie for the TTL of the
// token service.
func SetSessionCookie(w http.ResponseWriter, tokens *TokenService, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(tokens.TTL().Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie tells the browser to drop the session cookie.
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func sessionFromRequest(r *http.Request, tokens *TokenService) (Session, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return Session{}, err
	}
	return tokens.Validate(cookie.Value)
}
