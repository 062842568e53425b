package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
	"prepify-quiz/internal/domain"
	"prepify-quiz/internal/infra/memory"
)

func newTestService() (*Service, *memory.UserStore) {
	users := memory.NewUserStore(memory.NewResultStore())
	return NewService(users, bcrypt.MinCost), users
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	if err := svc.Register(ctx, "alice", "s3cret"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := svc.Register(ctx, "alice", "other"); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected duplicate rejected, got %v", err)
	}
	if err := svc.Register(ctx, "  ", "x"); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected blank username rejected, got %v", err)
	}

	user, err := svc.Login(ctx, "alice", "s3cret")
	if err != nil || user.Username != "alice" || user.IsAdmin {
		t.Fatalf("login: %+v %v", user, err)
	}
	if _, err := svc.Login(ctx, "alice", "wrong"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	if _, err := svc.Login(ctx, "nobody", "s3cret"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected unknown user to look like bad credentials, got %v", err)
	}
}

func TestResetPasswordAndDelete(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	if err := svc.AddAdmin(ctx, "root", "first"); err != nil {
		t.Fatalf("add admin: %v", err)
	}
	if err := svc.Register(ctx, "bob", "pw"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := svc.ResetPassword(ctx, "bob", "pw2"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if _, err := svc.Login(ctx, "bob", "pw2"); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
	if err := svc.ResetPassword(ctx, "ghost", "pw"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected user not found, got %v", err)
	}

	users, _ := svc.ListUsers(ctx, "root", "")
	if len(users) != 1 || users[0].Username != "bob" {
		t.Fatalf("expected only bob listed, got %+v", users)
	}
	if err := svc.DeleteUser(ctx, "bob"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Login(ctx, "bob", "pw2"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected deleted user unable to log in, got %v", err)
	}

	admin, err := svc.Login(ctx, "root", "first")
	if err != nil || !admin.IsAdmin {
		t.Fatalf("expected admin login, got %+v %v", admin, err)
	}
}

func TestTokensRoundTripAndExpiry(t *testing.T) {
	tokens := NewTokens("test-secret", time.Hour)
	now := time.Now()
	tokens.now = func() time.Time { return now }

	raw, err := tokens.Issue(domain.User{Username: "alice", IsAdmin: true})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims, err := tokens.Parse(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Username != "alice" || !claims.Admin {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	if _, err := NewTokens("other-secret", time.Hour).Parse(raw); err == nil {
		t.Fatalf("expected foreign signature rejected")
	}

	tokens.now = func() time.Time { return now.Add(-2 * time.Hour) }
	stale, _ := tokens.Issue(domain.User{Username: "alice"})
	if _, err := tokens.Parse(stale); err == nil {
		t.Fatalf("expected expired token rejected")
	}
}

func TestMiddleware(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	if err := svc.Register(ctx, "alice", "pw"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := svc.AddAdmin(ctx, "root", "pw"); err != nil {
		t.Fatalf("add admin: %v", err)
	}

	tokens := NewTokens("test-secret", time.Hour)
	userTok, _ := tokens.Issue(domain.User{Username: "alice"})
	adminTok, _ := tokens.Issue(domain.User{Username: "root", IsAdmin: true})
	forgedTok, _ := tokens.Issue(domain.User{Username: "alice", IsAdmin: true})
	ghostTok, _ := tokens.Issue(domain.User{Username: "ghost", IsAdmin: true})

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, _ := ClaimsFromContext(r.Context())
		_, _ = w.Write([]byte(claims.Username))
	})
	h := Middleware(tokens, svc)(RequireAdmin(ok))

	cases := []struct {
		name   string
		header string
		query  string
		status int
	}{
		{name: "missing", status: http.StatusUnauthorized},
		{name: "garbage", header: "Bearer nope", status: http.StatusUnauthorized},
		{name: "not admin", header: "Bearer " + userTok, status: http.StatusForbidden},
		{name: "stale admin flag", header: "Bearer " + forgedTok, status: http.StatusForbidden},
		{name: "unknown account", header: "Bearer " + ghostTok, status: http.StatusUnauthorized},
		{name: "admin header", header: "Bearer " + adminTok, status: http.StatusOK},
		{name: "admin query", query: "?token=" + adminTok, status: http.StatusOK},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/admin"+tc.query, nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != tc.status {
			t.Fatalf("%s: expected %d, got %d", tc.name, tc.status, rec.Code)
		}
	}
}
