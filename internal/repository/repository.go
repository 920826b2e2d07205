// Package repository declares the storage interfaces the service layer
// depends on. internal/repository/sqlite provides the implementation.
package repository

import (
	"context"

	"github.com/sakif/photo-share/internal/model"
)

// UserRepository persists user accounts.
type UserRepository interface {
	// CreateUser inserts the user and fills in ID and CreatedAt.
	// Returns an apperror.ErrConflict error if the username is taken.
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
}

// PostRepository persists posts.
type PostRepository interface {
	CreatePost(ctx context.Context, post *model.Post) error
	GetPostByID(ctx context.Context, id int64) (*model.Post, error)
	// ListPosts returns every post, newest first.
	ListPosts(ctx context.Context) ([]model.Post, error)
	// DeletePostCascade removes the post together with its likes and
	// comments in a single transaction.
	DeletePostCascade(ctx context.Context, id int64) error
}

// EngagementRepository persists likes and comments.
type EngagementRepository interface {
	// AddLike returns an apperror.ErrConflict error when the user already
	// likes the post.
	AddLike(ctx context.Context, userID, postID int64) error
	// RemoveLike is a no-op when no like exists.
	RemoveLike(ctx context.Context, userID, postID int64) error
	CountLikes(ctx context.Context, postID int64) (int, error)
	HasLiked(ctx context.Context, userID, postID int64) (bool, error)

	AddComment(ctx context.Context, comment *model.Comment) error
	GetCommentByID(ctx context.Context, id int64) (*model.Comment, error)
	// ListComments returns the post's comments, oldest first.
	ListComments(ctx context.Context, postID int64) ([]model.Comment, error)
}
