package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/photo-share/internal/apperror"
	"github.com/sakif/photo-share/internal/auth"
	"github.com/sakif/photo-share/internal/service"
)

// DefaultMaxUploadBytes caps the whole upload request body at 16 MiB.
const DefaultMaxUploadBytes int64 = 16 << 20

// PostHandler serves uploads and post deletion.
type PostHandler struct {
	posts          *service.PostService
	pages          *Pages
	maxUploadBytes int64
	logger         *slog.Logger
}

// NewPostHandler creates a PostHandler. A non-positive maxUploadBytes
// falls back to DefaultMaxUploadBytes.
func NewPostHandler(posts *service.PostService, pages *Pages, maxUploadBytes int64, logger *slog.Logger) *PostHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	return &PostHandler{
		posts:          posts,
		pages:          pages,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// HandleUploadPage renders the upload form.
//
// HTTP: GET /upload
func (h *PostHandler) HandleUploadPage(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.SessionFromContext(r.Context())
	h.pages.render(w, "upload.html", pageData{
		Title:    "Upload",
		Username: sess.Username,
		UserID:   sess.UserID,
	})
}

// HandleUpload accepts a multipart form with an "image" file and an
// optional "caption".
//
// HTTP: POST /upload
//
// The body is wrapped in http.MaxBytesReader, so an oversized request
// fails while parsing instead of filling the disk.
func (h *PostHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	sess, ok := auth.SessionFromContext(r.Context())
	if !ok {
		writeError(w, h.logger, apperror.Unauthorized())
		return
	}

	if r.ContentLength > h.maxUploadBytes {
		writeTooLarge(w)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeTooLarge(w)
			return
		}
		writeError(w, h.logger, apperror.ValidationFailed("image", "please choose an image file"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, h.logger, apperror.ValidationFailed("image", "please choose an image file"))
		return
	}
	defer file.Close()

	if header.Filename == "" {
		writeError(w, h.logger, apperror.ValidationFailed("image", "please choose a file"))
		return
	}

	if _, err := h.posts.Create(r.Context(), sess, header.Filename, file, r.FormValue("caption")); err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeOK(w, "")
}

// HandleDelete deletes a post owned by the caller.
//
// HTTP: DELETE /api/post/{post_id}
//
// A malformed id, a missing post and someone else's post all answer 403
// with the same message, so the endpoint does not reveal which ids exist.
func (h *PostHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	sess, ok := auth.SessionFromContext(r.Context())
	if !ok {
		writeError(w, h.logger, apperror.Unauthorized())
		return
	}

	postID, err := postIDParam(r)
	if err == nil {
		err = h.posts.Delete(r.Context(), postID, sess.UserID)
	}
	if errors.Is(err, apperror.ErrValidation) || errors.Is(err, apperror.ErrNotFound) || errors.Is(err, apperror.ErrForbidden) {
		err = apperror.Forbidden("post not found or you are not allowed to delete it")
	}
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeOK(w, "post deleted")
}

func writeTooLarge(w http.ResponseWriter) {
	writeJSON(w, http.StatusRequestEntityTooLarge, Response{
		Success: false,
		Message: "file is too large",
	})
}
