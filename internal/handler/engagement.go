package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/sakif/photo-share/internal/apperror"
	"github.com/sakif/photo-share/internal/auth"
	"github.com/sakif/photo-share/internal/model"
	"github.com/sakif/photo-share/internal/service"
)

// CommentResponse answers POST /api/comment/{post_id}.
type CommentResponse struct {
	Success bool           `json:"success"`
	Comment *model.Comment `json:"comment"`
}

// EngagementHandler serves the like toggle and comment endpoints.
type EngagementHandler struct {
	engagement *service.EngagementService
	logger     *slog.Logger
}

// NewEngagementHandler creates an EngagementHandler.
func NewEngagementHandler(engagement *service.EngagementService, logger *slog.Logger) *EngagementHandler {
	return &EngagementHandler{engagement: engagement, logger: logger}
}

// HandleLike adds the caller's like.
//
// HTTP: POST /api/like/{post_id}
//
// Liking twice answers {"success": false, "message": ...} and the count is
// left as it was.
func (h *EngagementHandler) HandleLike(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.engagement.Like)
}

// HandleUnlike removes the caller's like, whether or not one existed.
//
// HTTP: DELETE /api/like/{post_id}
func (h *EngagementHandler) HandleUnlike(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.engagement.Unlike)
}

func (h *EngagementHandler) toggle(
	w http.ResponseWriter,
	r *http.Request,
	apply func(ctx context.Context, userID, postID int64) (model.LikeState, error),
) {
	sess, ok := auth.SessionFromContext(r.Context())
	if !ok {
		writeError(w, h.logger, apperror.Unauthorized())
		return
	}

	postID, err := postIDParam(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	state, err := apply(r.Context(), sess.UserID, postID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, LikeResponse{
		Success:   true,
		Liked:     state.Liked,
		LikeCount: state.LikeCount,
	})
}

// HandleComment adds a comment and returns it with its id and timestamp.
//
// HTTP: POST /api/comment/{post_id}
// Body: {"content": "..."} (form-encoded also accepted)
func (h *EngagementHandler) HandleComment(w http.ResponseWriter, r *http.Request) {
	sess, ok := auth.SessionFromContext(r.Context())
	if !ok {
		writeError(w, h.logger, apperror.Unauthorized())
		return
	}

	postID, err := postIDParam(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	fields, err := decodeFields(r, "content")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	comment, err := h.engagement.AddComment(r.Context(), sess, postID, fields["content"])
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, CommentResponse{Success: true, Comment: comment})
}
