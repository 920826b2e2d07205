package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/sakif/photo-share/internal/apperror"
	"github.com/sakif/photo-share/internal/auth"
	"github.com/sakif/photo-share/internal/model"
	"github.com/sakif/photo-share/internal/repository/sqlite"
)

// brokenUserRepo fails every username lookup the way a dead database would.
type brokenUserRepo struct {
	*sqlite.DB
}

func (brokenUserRepo) GetUserByUsername(context.Context, string) (*model.User, error) {
	return nil, errors.New("database is locked")
}

// =========================================================================
// REGISTER
// =========================================================================

func TestRegister_Success(t *testing.T) {
	env := newTestEnv(t)

	res, err := env.auth.Register(context.Background(), "  alice  ", "secret123")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if res.User.ID <= 0 {
		t.Errorf("User.ID = %d, want positive", res.User.ID)
	}
	if res.User.Username != "alice" {
		t.Errorf("Username = %q, want trimmed %q", res.User.Username, "alice")
	}
	if res.Token == "" {
		t.Error("expected a session token so signup logs the user in")
	}
}

func TestRegister_StoresOnlyHash(t *testing.T) {
	env := newTestEnv(t)

	res, err := env.auth.Register(context.Background(), "alice", "secret123")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	stored, err := env.db.GetUserByUsername(context.Background(), res.User.Username)
	if err != nil {
		t.Fatalf("GetUserByUsername() error = %v", err)
	}
	if stored.PasswordHash == "secret123" || !strings.HasPrefix(stored.PasswordHash, "$2") {
		t.Errorf("PasswordHash = %q, want a bcrypt hash", stored.PasswordHash)
	}
}

func TestRegister_TokenCarriesSession(t *testing.T) {
	env := newTestEnv(t)
	tokens := newTestTokens(t)
	env.auth = NewAuthService(env.db, auth.NewPasswordServiceForTest(bcrypt.MinCost), tokens, newTestLogger())

	res, err := env.auth.Register(context.Background(), "alice", "secret123")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	sess, err := tokens.Validate(res.Token)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if sess.UserID != res.User.ID || sess.Username != "alice" {
		t.Errorf("session = %+v, want {%d alice}", sess, res.User.ID)
	}
}

func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
		field    string
	}{
		{"empty username", "", "secret123", "username"},
		{"whitespace username", "   ", "secret123", "username"},
		{"empty password", "alice", "", "username"},
		{"short password", "alice", "12345", "password"},
		{"password over 72 bytes", "alice", strings.Repeat("p", auth.MaxPasswordBytes+1), "password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)

			_, err := env.auth.Register(context.Background(), tt.username, tt.password)
			if !errors.Is(err, apperror.ErrValidation) {
				t.Fatalf("error = %v, want ErrValidation", err)
			}
			var appErr *apperror.AppError
			if errors.As(err, &appErr) && appErr.Field != tt.field {
				t.Errorf("Field = %q, want %q", appErr.Field, tt.field)
			}
		})
	}
}

func TestRegister_SixCharPasswordAccepted(t *testing.T) {
	env := newTestEnv(t)

	if _, err := env.auth.Register(context.Background(), "alice", "123456"); err != nil {
		t.Fatalf("Register() with a 6-character password error = %v", err)
	}
}

func TestRegister_DuplicateUsername(t *testing.T) {
	env := newTestEnv(t)
	first := env.register(t, "alice")

	_, err := env.auth.Register(context.Background(), "alice", "another-pass")
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("error = %v, want ErrConflict", err)
	}

	// The original account still logs in with its original password.
	res, err := env.auth.Authenticate(context.Background(), "alice", "secret123")
	if err != nil {
		t.Fatalf("Authenticate() after duplicate signup error = %v", err)
	}
	if res.User.ID != first.UserID {
		t.Errorf("User.ID = %d, want %d", res.User.ID, first.UserID)
	}
}

// =========================================================================
// AUTHENTICATE
// =========================================================================

func TestAuthenticate_Success(t *testing.T) {
	env := newTestEnv(t)
	sess := env.register(t, "alice")

	res, err := env.auth.Authenticate(context.Background(), "alice", "secret123")
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if res.User.ID != sess.UserID {
		t.Errorf("User.ID = %d, want %d", res.User.ID, sess.UserID)
	}
	if res.Token == "" {
		t.Error("expected a session token")
	}
}

// TestAuthenticate_SameErrorForUnknownAndWrong checks that the error does
// not reveal whether the username exists.
func TestAuthenticate_SameErrorForUnknownAndWrong(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "alice")

	_, wrongPass := env.auth.Authenticate(context.Background(), "alice", "nope-nope")
	_, unknown := env.auth.Authenticate(context.Background(), "mallory", "secret123")

	for name, err := range map[string]error{"wrong password": wrongPass, "unknown user": unknown} {
		if !errors.Is(err, apperror.ErrInvalidCredentials) {
			t.Errorf("%s: error = %v, want ErrInvalidCredentials", name, err)
		}
	}
	if wrongPass.Error() != unknown.Error() {
		t.Errorf("messages differ: %q vs %q", wrongPass.Error(), unknown.Error())
	}
}

func TestAuthenticate_MissingFields(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.auth.Authenticate(context.Background(), "", "")
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("error = %v, want ErrValidation", err)
	}
}

func TestAuthenticate_DatabaseFailureIsNotInvalidCredentials(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(brokenUserRepo{db}, auth.NewPasswordServiceForTest(bcrypt.MinCost), newTestTokens(t), newTestLogger())

	_, err := svc.Authenticate(context.Background(), "alice", "secret123")
	if err == nil {
		t.Fatal("Authenticate() should fail when the lookup fails")
	}
	if errors.Is(err, apperror.ErrInvalidCredentials) {
		t.Errorf("error = %v, should not be reported as bad credentials", err)
	}
}

func TestAuthenticate_RepeatedWrongPasswords(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "alice")
	ctx := context.Background()

	for i := range 5 {
		if _, err := env.auth.Authenticate(ctx, "alice", "guess-"+strconv.Itoa(i)); !errors.Is(err, apperror.ErrInvalidCredentials) {
			t.Fatalf("attempt %d: error = %v, want ErrInvalidCredentials", i, err)
		}
	}

	// Failed attempts leave the account usable and change nothing stored.
	res, err := env.auth.Authenticate(ctx, "alice", "secret123")
	if err != nil {
		t.Fatalf("Authenticate() after failures error = %v", err)
	}
	if res.Token == "" {
		t.Error("expected a session token")
	}

	if _, err := env.auth.Authenticate(ctx, "alice", "guess-0"); !errors.Is(err, apperror.ErrInvalidCredentials) {
		t.Errorf("wrong password after a success: error = %v, want ErrInvalidCredentials", err)
	}
}
