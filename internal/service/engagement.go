package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/photo-share/internal/apperror"
	"github.com/sakif/photo-share/internal/auth"
	"github.com/sakif/photo-share/internal/model"
	"github.com/sakif/photo-share/internal/repository"
)

// EngagementService handles likes and comments.
type EngagementService struct {
	repo   repository.EngagementRepository
	logger *slog.Logger
}

// NewEngagementService creates an EngagementService.
func NewEngagementService(repo repository.EngagementRepository, logger *slog.Logger) *EngagementService {
	return &EngagementService{repo: repo, logger: logger}
}

// Like records that userID likes postID and returns the new state.
//
// A second like by the same user fails with apperror.ErrConflict and leaves
// the count unchanged; the UNIQUE(user_id, post_id) constraint decides, so
// two concurrent requests cannot both succeed.
func (s *EngagementService) Like(ctx context.Context, userID, postID int64) (model.LikeState, error) {
	if err := validatePostID(postID); err != nil {
		return model.LikeState{}, err
	}

	if err := s.repo.AddLike(ctx, userID, postID); err != nil {
		if errors.Is(err, apperror.ErrConflict) || errors.Is(err, apperror.ErrNotFound) {
			return model.LikeState{}, err
		}
		return model.LikeState{}, fmt.Errorf("service/engagement: liking post %d: %w", postID, err)
	}

	count, err := s.LikeCount(ctx, postID)
	if err != nil {
		return model.LikeState{}, err
	}

	s.logger.Debug("post liked", slog.Int64("postID", postID), slog.Int64("userID", userID))
	return model.LikeState{Liked: true, LikeCount: count}, nil
}

// Unlike removes userID's like from postID. Removing a like that does not
// exist still succeeds.
func (s *EngagementService) Unlike(ctx context.Context, userID, postID int64) (model.LikeState, error) {
	if err := validatePostID(postID); err != nil {
		return model.LikeState{}, err
	}

	if err := s.repo.RemoveLike(ctx, userID, postID); err != nil {
		return model.LikeState{}, fmt.Errorf("service/engagement: unliking post %d: %w", postID, err)
	}

	count, err := s.LikeCount(ctx, postID)
	if err != nil {
		return model.LikeState{}, err
	}

	s.logger.Debug("post unliked", slog.Int64("postID", postID), slog.Int64("userID", userID))
	return model.LikeState{Liked: false, LikeCount: count}, nil
}

// AddComment attaches content to postID as author and returns the persisted
// comment. Content is trimmed and must not be empty afterwards.
func (s *EngagementService) AddComment(ctx context.Context, author auth.Session, postID int64, content string) (*model.Comment, error) {
	if err := validatePostID(postID); err != nil {
		return nil, err
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperror.ValidationFailed("content", "comment cannot be empty")
	}

	comment := &model.Comment{
		PostID:   postID,
		UserID:   author.UserID,
		Username: author.Username,
		Content:  content,
	}
	if err := s.repo.AddComment(ctx, comment); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("service/engagement: commenting on post %d: %w", postID, err)
	}

	// Return the row as stored, with the database's own timestamp.
	stored, err := s.repo.GetCommentByID(ctx, comment.ID)
	if err != nil {
		return nil, fmt.Errorf("service/engagement: reading comment %d: %w", comment.ID, err)
	}

	s.logger.Info("comment added",
		slog.Int64("commentID", stored.ID),
		slog.Int64("postID", postID),
		slog.Int64("userID", author.UserID),
	)
	return stored, nil
}

func (s *EngagementService) LikeCount(ctx context.Context, postID int64) (int, error) {
	count, err := s.repo.CountLikes(ctx, postID)
	if err != nil {
		return 0, fmt.Errorf("service/engagement: counting likes on post %d: %w", postID, err)
	}
	return count, nil
}

func (s *EngagementService) HasLiked(ctx context.Context, userID, postID int64) (bool, error) {
	liked, err := s.repo.HasLiked(ctx, userID, postID)
	if err != nil {
		return false, fmt.Errorf("service/engagement: checking like on post %d: %w", postID, err)
	}
	return liked, nil
}

// Comments returns the post's comments, oldest first.
func (s *EngagementService) Comments(ctx context.Context, postID int64) ([]model.Comment, error) {
	comments, err := s.repo.ListComments(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("service/engagement: listing comments on post %d: %w", postID, err)
	}
	return comments, nil
}

func validatePostID(id int64) error {
	if id <= 0 {
		return apperror.ValidationFailed("post_id", "post id must be positive")
	}
	return nil
}
