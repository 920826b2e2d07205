package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/sakif/photo-share/internal/auth"
	"github.com/sakif/photo-share/internal/model"
	"github.com/sakif/photo-share/internal/repository/sqlite"
	"github.com/sakif/photo-share/internal/storage"
)

// =========================================================================
// FAKES AND HELPERS
// =========================================================================

// fakeImageStore keeps "files" in a map. saveErr and removeErr simulate a
// full disk or a permission problem.
type fakeImageStore struct {
	mu        sync.Mutex
	files     map[string][]byte
	next      int
	saveErr   error
	removeErr error
	removed   []string
}

var _ storage.ImageStore = (*fakeImageStore)(nil)

func newFakeImageStore() *fakeImageStore {
	return &fakeImageStore{files: make(map[string][]byte)}
}

func (f *fakeImageStore) Save(originalName string, content io.Reader) (string, error) {
	if f.saveErr != nil {
		return "", f.saveErr
	}
	data, err := io.ReadAll(content)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	name := fmt.Sprintf("%d_%s", f.next, storage.SecureFilename(originalName))
	f.files[name] = data
	return name, nil
}

func (f *fakeImageStore) Remove(storedName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, storedName)
	if f.removeErr != nil {
		return f.removeErr
	}
	delete(f.files, storedName)
	return nil
}

func (f *fakeImageStore) has(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.files[name]
	return ok
}

// failingPostRepo wraps the real database but fails every CreatePost.
type failingPostRepo struct {
	*sqlite.DB
}

func (failingPostRepo) CreatePost(context.Context, *model.Post) error {
	return errors.New("disk I/O error")
}

// unreadableCommentRepo stores comments but cannot read them back.
type unreadableCommentRepo struct {
	*sqlite.DB
}

func (unreadableCommentRepo) GetCommentByID(context.Context, int64) (*model.Comment, error) {
	return nil, errors.New("database is locked")
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestTokens(t *testing.T) *auth.TokenService {
	t.Helper()
	tokens, err := auth.NewTokenService("service-test-secret-0123456789", 0)
	if err != nil {
		t.Fatalf("NewTokenService() error = %v", err)
	}
	return tokens
}

// testEnv wires every service against one in-memory database.
type testEnv struct {
	db         *sqlite.DB
	images     *fakeImageStore
	auth       *AuthService
	posts      *PostService
	engagement *EngagementService
	feed       *FeedService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)
	images := newFakeImageStore()
	logger := newTestLogger()

	posts := NewPostService(db, images, logger)
	engagement := NewEngagementService(db, logger)

	return &testEnv{
		db:         db,
		images:     images,
		auth:       NewAuthService(db, auth.NewPasswordServiceForTest(bcrypt.MinCost), newTestTokens(t), logger),
		posts:      posts,
		engagement: engagement,
		feed:       NewFeedService(posts, engagement),
	}
}

// register creates a user and returns its session.
func (e *testEnv) register(t *testing.T, username string) auth.Session {
	t.Helper()
	res, err := e.auth.Register(context.Background(), username, "secret123")
	if err != nil {
		t.Fatalf("Register(%q) error = %v", username, err)
	}
	return auth.Session{UserID: res.User.ID, Username: res.User.Username}
}

func (e *testEnv) upload(t *testing.T, owner auth.Session, filename, caption string) *model.Post {
	t.Helper()
	post, err := e.posts.Create(context.Background(), owner, filename, strings.NewReader("img"), caption)
	if err != nil {
		t.Fatalf("Create(%q) error = %v", filename, err)
	}
	return post
}
