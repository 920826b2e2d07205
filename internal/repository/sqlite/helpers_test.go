package sqlite

import (
	"context"
	"testing"

	"github.com/sakif/photo-share/internal/model"
)

// newTestDB returns a fresh in-memory database, closed when the test ends.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestUser(t *testing.T, db *DB, username string) *model.User {
	t.Helper()
	user := &model.User{Username: username, PasswordHash: "$2a$04$not-a-real-hash"}
	if err := db.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

func createTestPost(t *testing.T, db *DB, owner *model.User, image, caption string) *model.Post {
	t.Helper()
	post := &model.Post{
		UserID:    owner.ID,
		Username:  owner.Username,
		ImagePath: image,
		Caption:   caption,
	}
	if err := db.CreatePost(context.Background(), post); err != nil {
		t.Fatalf("failed to create test post: %v", err)
	}
	return post
}

func createTestComment(t *testing.T, db *DB, post *model.Post, author *model.User, content string) *model.Comment {
	t.Helper()
	c := &model.Comment{
		PostID:   post.ID,
		UserID:   author.ID,
		Username: author.Username,
		Content:  content,
	}
	if err := db.AddComment(context.Background(), c); err != nil {
		t.Fatalf("failed to create test comment: %v", err)
	}
	return c
}
