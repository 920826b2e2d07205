package handler

// RESPONSE HELPERS:
// Every JSON endpoint answers with the same envelope:
//
//	{"success": true, ...payload}
//	{"success": false, "message": "comment cannot be empty"}
//
// Business failures the user can fix (bad input, wrong password, duplicate
// like) are reported with 200 and success=false, so the page scripts only
// have to check one field. Missing sessions, ownership failures, unknown
// resources and internal errors use real status codes.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/photo-share/internal/apperror"
)

// Response is the envelope shared by all JSON endpoints.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// LikeResponse answers POST and DELETE /api/like/{post_id}.
type LikeResponse struct {
	Success   bool `json:"success"`
	Liked     bool `json:"liked"`
	LikeCount int  `json:"like_count"`
}

// writeJSON sends data as JSON with the given status.
// Headers must be set before WriteHeader; anything after is ignored.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent; all we can do is log.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeOK sends {"success": true} with an optional message.
func writeOK(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusOK, Response{Success: true, Message: message})
}

// statusFor maps a domain error to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, apperror.ErrValidation),
		errors.Is(err, apperror.ErrInvalidCredentials),
		errors.Is(err, apperror.ErrConflict):
		return http.StatusOK
	case errors.Is(err, apperror.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, apperror.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeError sends {"success": false, "message": ...}.
//
// Only AppError messages reach the client. Anything else may carry SQL or
// file paths, so it is logged and replaced with a generic message.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status := statusFor(err)

	var appErr *apperror.AppError
	if status == http.StatusInternalServerError || !errors.As(err, &appErr) {
		logger.Error("request failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, Response{
			Success: false,
			Message: "an internal error occurred",
		})
		return
	}

	writeJSON(w, status, Response{Success: false, Message: appErr.Message})
}

// RejectUnauthorized answers API requests that carry no valid session.
func RejectUnauthorized(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusUnauthorized, Response{
		Success: false,
		Message: apperror.Unauthorized().Message,
	})
}

// RedirectToLogin answers page requests that carry no valid session.
func RedirectToLogin(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/login", http.StatusFound)
}

// postIDParam parses the {post_id} route parameter.
func postIDParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "post_id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.ValidationFailed("post_id", "post id must be a positive integer")
	}
	return id, nil
}

func isJSON(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}

// decodeFields reads the named string fields from a JSON object body or,
// for any other content type, from the form. Unknown JSON fields are
// ignored.
func decodeFields(r *http.Request, names ...string) (map[string]string, error) {
	out := make(map[string]string, len(names))

	if isJSON(r) {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return nil, apperror.ValidationFailed("body", "invalid JSON body")
		}
		for _, name := range names {
			if s, ok := body[name].(string); ok {
				out[name] = s
			}
		}
		return out, nil
	}

	if err := r.ParseForm(); err != nil {
		return nil, apperror.ValidationFailed("body", "invalid form body")
	}
	for _, name := range names {
		out[name] = r.PostFormValue(name)
	}
	return out, nil
}
