package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/sakif/photo-share/internal/apperror"
	"github.com/sakif/photo-share/internal/auth"
	"github.com/sakif/photo-share/internal/model"
	"github.com/sakif/photo-share/internal/repository"
	"github.com/sakif/photo-share/internal/storage"
)

// allowedExtensions are the image types an upload may have, lower-cased.
var allowedExtensions = map[string]bool{
	"png":  true,
	"jpg":  true,
	"jpeg": true,
	"gif":  true,
}

// AllowedImage reports whether filename has an accepted image extension.
// The check is case-insensitive: "CAT.PNG" is accepted.
func AllowedImage(filename string) bool {
	return allowedExtensions[storage.Extension(filename)]
}

// PostService creates, lists and deletes posts together with their image
// files.
type PostService struct {
	posts  repository.PostRepository
	images storage.ImageStore
	logger *slog.Logger
}

// NewPostService creates a PostService.
func NewPostService(posts repository.PostRepository, images storage.ImageStore, logger *slog.Logger) *PostService {
	return &PostService{
		posts:  posts,
		images: images,
		logger: logger,
	}
}

// Create stores the uploaded image and records a post for owner.
//
// The extension is checked before anything touches the disk. If the row
// cannot be inserted the stored file is removed again, so a failed upload
// leaves nothing behind.
func (s *PostService) Create(ctx context.Context, owner auth.Session, filename string, image io.Reader, caption string) (*model.Post, error) {
	if strings.TrimSpace(filename) == "" || image == nil {
		return nil, apperror.ValidationFailed("image", "no image selected")
	}
	if !AllowedImage(filename) {
		return nil, apperror.ValidationFailed("image", "invalid file type: allowed types are png, jpg, jpeg, gif")
	}

	stored, err := s.images.Save(filename, image)
	if err != nil {
		return nil, fmt.Errorf("service/post: saving image: %w", err)
	}

	post := &model.Post{
		UserID:    owner.UserID,
		Username:  owner.Username,
		ImagePath: stored,
		Caption:   caption,
	}
	if err := s.posts.CreatePost(ctx, post); err != nil {
		if rmErr := s.images.Remove(stored); rmErr != nil {
			s.logger.Warn("failed to remove orphaned image",
				slog.String("image", stored),
				slog.String("error", rmErr.Error()),
			)
		}
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("service/post: creating post: %w", err)
	}

	s.logger.Info("post created",
		slog.Int64("postID", post.ID),
		slog.Int64("userID", post.UserID),
		slog.String("image", post.ImagePath),
	)

	return post, nil
}

// Get returns a single post.
func (s *PostService) Get(ctx context.Context, id int64) (*model.Post, error) {
	if id <= 0 {
		return nil, apperror.ValidationFailed("post_id", "post id must be positive")
	}
	return s.posts.GetPostByID(ctx, id)
}

// List returns every post, newest first. No pagination.
func (s *PostService) List(ctx context.Context) ([]model.Post, error) {
	posts, err := s.posts.ListPosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/post: listing posts: %w", err)
	}
	return posts, nil
}

// Delete removes a post owned by requesterID.
//
//  1. NotFound if the post does not exist.
//  2. Forbidden if someone else owns it.
//  3. Likes, comments and the post row go in one transaction.
//  4. The image file is removed after the commit. A failure there is
//     logged and does not fail the request: the rows are already gone.
func (s *PostService) Delete(ctx context.Context, postID, requesterID int64) error {
	post, err := s.Get(ctx, postID)
	if err != nil {
		return err
	}
	if post.UserID != requesterID {
		return apperror.Forbidden("you can only delete your own posts")
	}

	if err := s.posts.DeletePostCascade(ctx, postID); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return err
		}
		s.logger.Error("failed to delete post",
			slog.Int64("postID", postID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("service/post: deleting post %d: %w", postID, err)
	}

	if err := s.images.Remove(post.ImagePath); err != nil {
		s.logger.Warn("post deleted but image file could not be removed",
			slog.Int64("postID", postID),
			slog.String("image", post.ImagePath),
			slog.String("error", err.Error()),
		)
	}

	s.logger.Info("post deleted",
		slog.Int64("postID", postID),
		slog.Int64("userID", requesterID),
	)
	return nil
}
