package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/photo-share/internal/apperror"
	"github.com/sakif/photo-share/internal/auth"
	"github.com/sakif/photo-share/internal/model"
	"github.com/sakif/photo-share/internal/service"
)

// FeedResponse answers GET /api/feed.
type FeedResponse struct {
	Success bool                 `json:"success"`
	Posts   []model.EnrichedPost `json:"posts"`
}

// FeedHandler renders the public feed as HTML or JSON.
type FeedHandler struct {
	feed   *service.FeedService
	pages  *Pages
	logger *slog.Logger
}

// NewFeedHandler creates a FeedHandler.
func NewFeedHandler(feed *service.FeedService, pages *Pages, logger *slog.Logger) *FeedHandler {
	return &FeedHandler{feed: feed, pages: pages, logger: logger}
}

// HandleFeedPage renders every post for the logged-in viewer.
//
// HTTP: GET /feed
func (h *FeedHandler) HandleFeedPage(w http.ResponseWriter, r *http.Request) {
	sess, ok := auth.SessionFromContext(r.Context())
	if !ok {
		RedirectToLogin(w, r)
		return
	}

	posts, err := h.feed.Assemble(r.Context(), sess.UserID)
	if err != nil {
		h.logger.Error("failed to assemble feed",
			slog.Int64("userID", sess.UserID),
			slog.String("error", err.Error()),
		)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.pages.render(w, "feed.html", pageData{
		Title:    "Feed",
		Username: sess.Username,
		UserID:   sess.UserID,
		Posts:    posts,
	})
}

// HandleFeedAPI returns the same enriched feed as JSON.
//
// HTTP: GET /api/feed
func (h *FeedHandler) HandleFeedAPI(w http.ResponseWriter, r *http.Request) {
	sess, ok := auth.SessionFromContext(r.Context())
	if !ok {
		writeError(w, h.logger, apperror.Unauthorized())
		return
	}

	posts, err := h.feed.Assemble(r.Context(), sess.UserID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, FeedResponse{Success: true, Posts: posts})
}
