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

var _ repository.PostRepository = (*DB)(nil)

// CreatePost inserts a new post and fills in ID and CreatedAt.
// Returns apperror.ErrNotFound if post.UserID does not reference a user.
func (db *DB) CreatePost(ctx context.Context, post *model.Post) error {
	post.CreatedAt = time.Now().UTC()

	result, err := db.conn.ExecContext(ctx,
		`INSERT INTO posts (user_id, username, image_path, caption, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		post.UserID,
		post.Username,
		post.ImagePath,
		post.Caption,
		post.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperror.NotFound("user", post.UserID)
		}
		return fmt.Errorf("sqlite: creating post: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading new post id: %w", err)
	}
	post.ID = id

	return nil
}

// GetPostByID retrieves a single post.
// Returns apperror.ErrNotFound if the post doesn't exist.
func (db *DB) GetPostByID(ctx context.Context, id int64) (*model.Post, error) {
	var p model.Post

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, user_id, username, image_path, caption, created_at
		 FROM posts
		 WHERE id = ?`,
		id,
	).Scan(&p.ID, &p.UserID, &p.Username, &p.ImagePath, &p.Caption, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("post", id)
		}
		return nil, fmt.Errorf("sqlite: getting post %d: %w", id, err)
	}

	return &p, nil
}

// ListPosts returns every post, newest first. There is no pagination: the
// feed always shows the full set. Equal timestamps fall back to id order so
// the result is deterministic.
func (db *DB) ListPosts(ctx context.Context) ([]model.Post, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, user_id, username, image_path, caption, created_at
		 FROM posts
		 ORDER BY created_at DESC, id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing posts: %w", err)
	}
	defer rows.Close()

	posts := make([]model.Post, 0)
	for rows.Next() {
		var p model.Post
		if err := rows.Scan(
			&p.ID, &p.UserID, &p.Username, &p.ImagePath, &p.Caption, &p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning post row: %w", err)
		}
		posts = append(posts, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating posts: %w", err)
	}

	return posts, nil
}

// DeletePostCascade removes a post's likes, its comments and the post row
// inside one transaction. If any step fails, everything is rolled back and
// the post stays fully intact. The image file is not touched here.
//
// Returns apperror.ErrNotFound if the post row does not exist (nothing is
// deleted in that case either).
func (db *DB) DeletePostCascade(ctx context.Context, id int64) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning delete of post %d: %w", id, err)
	}
	// Rollback after a successful Commit returns sql.ErrTxDone and is harmless.
	defer tx.Rollback()

	steps := []struct {
		name  string
		query string
	}{
		{"likes", `DELETE FROM likes WHERE post_id = ?`},
		{"comments", `DELETE FROM comments WHERE post_id = ?`},
	}
	for _, step := range steps {
		if _, err := tx.ExecContext(ctx, step.query, id); err != nil {
			return fmt.Errorf("sqlite: deleting %s of post %d: %w", step.name, id, err)
		}
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting post %d: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("post", id)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing delete of post %d: %w", id, err)
	}

	return nil
}
