package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sakif/photo-share/internal/apperror"
	"github.com/sakif/photo-share/internal/model"
	"github.com/sakif/photo-share/internal/repository"
)

var _ repository.EngagementRepository = (*DB)(nil)

// AddLike records that userID likes postID.
//
// Duplicate likes are rejected by UNIQUE(user_id, post_id) in the store, not
// by a prior SELECT, so two concurrent requests cannot both insert.
func (db *DB) AddLike(ctx context.Context, userID, postID int64) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO likes (user_id, post_id, created_at) VALUES (?, ?, ?)`,
		userID, postID, time.Now().UTC(),
	)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return apperror.Conflict("you already liked this post")
		case isForeignKeyViolation(err):
			return apperror.NotFound("post", postID)
		}
		return fmt.Errorf("sqlite: adding like (user=%d post=%d): %w", userID, postID, err)
	}
	return nil
}

// RemoveLike deletes the like if present. Removing a like that does not
// exist is not an error.
func (db *DB) RemoveLike(ctx context.Context, userID, postID int64) error {
	_, err := db.conn.ExecContext(ctx,
		`DELETE FROM likes WHERE user_id = ? AND post_id = ?`,
		userID, postID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: removing like (user=%d post=%d): %w", userID, postID, err)
	}
	return nil
}

// CountLikes returns the number of likes on a post.
func (db *DB) CountLikes(ctx context.Context, postID int64) (int, error) {
	var count int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM likes WHERE post_id = ?`, postID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("sqlite: counting likes of post %d: %w", postID, err)
	}
	return count, nil
}

// HasLiked reports whether userID likes postID.
func (db *DB) HasLiked(ctx context.Context, userID, postID int64) (bool, error) {
	var count int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM likes WHERE post_id = ? AND user_id = ?`, postID, userID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking like (user=%d post=%d): %w", userID, postID, err)
	}
	return count > 0, nil
}

// AddComment inserts a comment and fills in ID and CreatedAt.
// Returns apperror.ErrNotFound if the post does not exist.
func (db *DB) AddComment(ctx context.Context, comment *model.Comment) error {
	comment.CreatedAt = time.Now().UTC()

	result, err := db.conn.ExecContext(ctx,
		`INSERT INTO comments (post_id, user_id, username, content, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		comment.PostID,
		comment.UserID,
		comment.Username,
		comment.Content,
		comment.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperror.NotFound("post", comment.PostID)
		}
		return fmt.Errorf("sqlite: adding comment to post %d: %w", comment.PostID, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading new comment id: %w", err)
	}
	comment.ID = id

	return nil
}

// GetCommentByID reads a single comment back as stored.
func (db *DB) GetCommentByID(ctx context.Context, id int64) (*model.Comment, error) {
	var c model.Comment

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, post_id, user_id, username, content, created_at
		 FROM comments WHERE id = ?`,
		id,
	).Scan(&c.ID, &c.PostID, &c.UserID, &c.Username, &c.Content, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("comment", id)
		}
		return nil, fmt.Errorf("sqlite: getting comment %d: %w", id, err)
	}

	return &c, nil
}

// ListComments returns a post's comments oldest first, with id as the
// tie-break for comments written in the same instant.
func (db *DB) ListComments(ctx context.Context, postID int64) ([]model.Comment, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, post_id, user_id, username, content, created_at
		 FROM comments
		 WHERE post_id = ?
		 ORDER BY created_at ASC, id ASC`,
		postID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing comments of post %d: %w", postID, err)
	}
	defer rows.Close()

	comments := make([]model.Comment, 0)
	for rows.Next() {
		var c model.Comment
		if err := rows.Scan(
			&c.ID, &c.PostID, &c.UserID, &c.Username, &c.Content, &c.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning comment row: %w", err)
		}
		comments = append(comments, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating comments: %w", err)
	}

	return comments, nil
}
