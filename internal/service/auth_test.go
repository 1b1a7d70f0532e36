package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/sakif/goal-tracker/internal/apperror"
	"github.com/sakif/goal-tracker/internal/auth"
	"github.com/sakif/goal-tracker/internal/model"
)

// fakeUserRepo is an in-memory UserRepository keyed by email.
type fakeUserRepo struct {
	users  map[string]*model.User
	nextID int

	createCalls int
	failWith    error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User)}
}

func (f *fakeUserRepo) Create(ctx context.Context, user *model.User) error {
	f.createCalls++
	if f.failWith != nil {
		return f.failWith
	}
	if _, exists := f.users[user.Email]; exists {
		return apperror.Conflict("user", user.Email)
	}
	f.nextID++
	user.ID = fmt.Sprintf("user-%d", f.nextID)
	u := *user
	f.users[user.Email] = &u
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	for _, u := range f.users {
		if u.ID == id {
			out := *u
			return &out, nil
		}
	}
	return nil, apperror.NotFound("user", id)
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	if u, ok := f.users[email]; ok {
		out := *u
		return &out, nil
	}
	return nil, apperror.NotFound("user", email)
}

func (f *fakeUserRepo) UpsertByGitHubID(ctx context.Context, user *model.User) error {
	if f.failWith != nil {
		return f.failWith
	}
	for email, u := range f.users {
		if u.GitHubID == user.GitHubID && u.GitHubID != 0 {
			user.ID = u.ID
			delete(f.users, email)
			out := *user
			f.users[user.Email] = &out
			return nil
		}
	}
	return f.Create(ctx, user)
}

func newTestAuthService(t *testing.T) (*AuthService, *fakeUserRepo, *auth.TokenService) {
	t.Helper()

	repo := newFakeUserRepo()
	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars!!", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	passwords := auth.NewPasswordServiceForTest(4)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return NewAuthService(repo, tokens, passwords, logger), repo, tokens
}

func TestSignup_CreatesAccount(t *testing.T) {
	svc, repo, _ := newTestAuthService(t)

	user, err := svc.Signup(context.Background(), "Ann", "  Ann@X.com  ", "secret1")
	if err != nil {
		t.Fatalf("Signup() error = %v", err)
	}

	if user.ID == "" {
		t.Error("Signup() did not assign an ID")
	}
	if user.Email != "ann@x.com" {
		t.Errorf("Email = %q, want normalized %q", user.Email, "ann@x.com")
	}
	if user.PasswordHash == "secret1" || user.PasswordHash == "" {
		t.Error("Signup() must store a hash, not the plaintext")
	}
	if repo.createCalls != 1 {
		t.Errorf("createCalls = %d, want 1", repo.createCalls)
	}
}

func TestSignup_ValidationNeverReachesStore(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"empty email", "", "secret1"},
		{"malformed email", "not-an-email", "secret1"},
		{"short password", "ann@x.com", "12345"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _ := newTestAuthService(t)

			_, err := svc.Signup(context.Background(), "Ann", tt.email, tt.password)
			if !errors.Is(err, apperror.ErrValidation) {
				t.Errorf("Signup() error = %v, want ErrValidation", err)
			}
			if repo.createCalls != 0 {
				t.Errorf("createCalls = %d, want 0", repo.createCalls)
			}
		})
	}
}

func TestSignup_DuplicateEmail(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	ctx := context.Background()

	if _, err := svc.Signup(ctx, "Ann", "ann@x.com", "secret1"); err != nil {
		t.Fatalf("Signup() error = %v", err)
	}

	_, err := svc.Signup(ctx, "Imposter", "ann@x.com", "secret2")
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("Signup() with duplicate email error = %v, want ErrConflict", err)
	}

	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("Signup() error is not an *AppError: %v", err)
	}
	if appErr.Message != "email already in use" {
		t.Errorf("Message = %q, want %q", appErr.Message, "email already in use")
	}
}

func TestLogin_IssuesValidToken(t *testing.T) {
	svc, _, tokens := newTestAuthService(t)
	ctx := context.Background()

	signedUp, err := svc.Signup(ctx, "Ann", "ann@x.com", "secret1")
	if err != nil {
		t.Fatalf("Signup() error = %v", err)
	}

	result, err := svc.Login(ctx, "Ann@X.com", "secret1")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if result.User.ID != signedUp.ID {
		t.Errorf("Login() user ID = %q, want %q", result.User.ID, signedUp.ID)
	}

	sess, err := tokens.Validate(result.Token)
	if err != nil {
		t.Fatalf("issued token does not validate: %v", err)
	}
	if sess.UserID != signedUp.ID || sess.Email != "ann@x.com" {
		t.Errorf("session = %+v, want userID=%q email=%q", sess, signedUp.ID, "ann@x.com")
	}
}

func TestLogin_BadCredentialsLookAlike(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	ctx := context.Background()

	if _, err := svc.Signup(ctx, "Ann", "ann@x.com", "secret1"); err != nil {
		t.Fatalf("Signup() error = %v", err)
	}

	// Wrong password and unknown account must be indistinguishable, so the
	// login endpoint cannot confirm which emails exist.
	_, wrongPw := svc.Login(ctx, "ann@x.com", "wrong-password")
	_, noUser := svc.Login(ctx, "nobody@x.com", "secret1")

	if !errors.Is(wrongPw, apperror.ErrUnauthorized) {
		t.Errorf("wrong password error = %v, want ErrUnauthorized", wrongPw)
	}
	if !errors.Is(noUser, apperror.ErrUnauthorized) {
		t.Errorf("unknown email error = %v, want ErrUnauthorized", noUser)
	}
	if wrongPw.Error() != noUser.Error() {
		t.Errorf("messages differ: %q vs %q", wrongPw.Error(), noUser.Error())
	}
}

func TestLogin_OAuthOnlyAccountHasNoPasswordPath(t *testing.T) {
	svc, repo, _ := newTestAuthService(t)
	ctx := context.Background()

	repo.users["gh@x.com"] = &model.User{ID: "user-gh", Email: "gh@x.com", GitHubID: 42}

	_, err := svc.Login(ctx, "gh@x.com", "anything")
	if !errors.Is(err, apperror.ErrUnauthorized) {
		t.Errorf("Login() on OAuth-only account error = %v, want ErrUnauthorized", err)
	}
}

func TestLogin_EmptyNameGetsFallback(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	ctx := context.Background()

	if _, err := svc.Signup(ctx, "", "ann@x.com", "secret1"); err != nil {
		t.Fatalf("Signup() error = %v", err)
	}

	result, err := svc.Login(ctx, "ann@x.com", "secret1")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if result.User.Name != "Boss" {
		t.Errorf("Name = %q, want fallback %q", result.User.Name, "Boss")
	}
}

func TestLoginOrRegisterGitHub(t *testing.T) {
	svc, _, tokens := newTestAuthService(t)
	ctx := context.Background()

	first, err := svc.LoginOrRegisterGitHub(ctx, &auth.GitHubUser{
		ID: 42, Login: "ann", Email: "ann@x.com",
	})
	if err != nil {
		t.Fatalf("LoginOrRegisterGitHub() error = %v", err)
	}
	// Name falls back to the login when GitHub has no display name.
	if first.User.Name != "ann" {
		t.Errorf("Name = %q, want login fallback %q", first.User.Name, "ann")
	}
	if _, err := tokens.Validate(first.Token); err != nil {
		t.Fatalf("issued token does not validate: %v", err)
	}

	// Second sign-in keeps the internal ID.
	second, err := svc.LoginOrRegisterGitHub(ctx, &auth.GitHubUser{
		ID: 42, Login: "ann", Name: "Ann Renamed", Email: "ann@x.com",
	})
	if err != nil {
		t.Fatalf("LoginOrRegisterGitHub() second error = %v", err)
	}
	if second.User.ID != first.User.ID {
		t.Errorf("second sign-in ID = %q, want %q", second.User.ID, first.User.ID)
	}
	if second.User.Name != "Ann Renamed" {
		t.Errorf("Name = %q, want refreshed %q", second.User.Name, "Ann Renamed")
	}
}

func TestGetUserByID(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	ctx := context.Background()

	user, err := svc.Signup(ctx, "Ann", "ann@x.com", "secret1")
	if err != nil {
		t.Fatalf("Signup() error = %v", err)
	}

	got, err := svc.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserByID() error = %v", err)
	}
	if got.Email != "ann@x.com" {
		t.Errorf("Email = %q, want %q", got.Email, "ann@x.com")
	}

	if _, err := svc.GetUserByID(ctx, "missing"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetUserByID(missing) error = %v, want ErrNotFound", err)
	}
}

func TestSignupThenLoginFlow(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	ctx := context.Background()

	// Signup alone does not open a session; the user signs in afterwards.
	user, err := svc.Signup(ctx, "Ann", "ann@x.com", "secret1")
	if err != nil {
		t.Fatalf("Signup() error = %v", err)
	}

	result, err := svc.Login(ctx, "ann@x.com", "secret1")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if result.Token == "" {
		t.Error("Login() issued no token")
	}
	if result.User.ID != user.ID {
		t.Errorf("logged-in ID = %q, want %q", result.User.ID, user.ID)
	}
}
